package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/conduit-lang/attrkit/internal/cli/ui"
	"github.com/conduit-lang/attrkit/internal/codec/xmlio"
	"github.com/conduit-lang/attrkit/internal/logger"
)

// newUpgradeCommand creates the upgrade command
func newUpgradeCommand(a *app) *cobra.Command {
	var (
		output string
		force  bool
	)
	cmd := &cobra.Command{
		Use:   "upgrade <file>",
		Short: "Rewrite a document in the current format",
		Long: fmt.Sprintf(`Read a document in any supported format version and write it back as
version %d. The result goes to stdout unless --output is given.

Documents with parse errors are not written unless --force is set.`, xmlio.CurrentVersion),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			res, log, err := a.readDocument(path)
			if err != nil {
				return a.reportFailure(cmd.ErrOrStderr(), path, log, err)
			}
			if log.HasErrors() && !force {
				return a.reportFailure(cmd.ErrOrStderr(), path, log, nil)
			}
			ui.WriteRecords(cmd.ErrOrStderr(), log.Records(), logger.Warning, a.noColor)

			if output == "" {
				return xmlio.Write(cmd.OutOrStdout(), res)
			}
			if err := xmlio.WriteFile(output, res); err != nil {
				return err
			}
			ui.Success(cmd.OutOrStdout(), fmt.Sprintf("wrote %s (version %d)", output, xmlio.CurrentVersion), a.noColor)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file")
	cmd.Flags().BoolVar(&force, "force", false, "Write even when the document has errors")
	return cmd
}
