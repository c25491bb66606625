package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/conduit-lang/attrkit/internal/cli/ui"
	"github.com/conduit-lang/attrkit/internal/codec/jsonio"
	"github.com/conduit-lang/attrkit/internal/docs"
)

// newDocsCommand creates the docs command
func newDocsCommand(a *app) *cobra.Command {
	var (
		output     string
		title      string
		categories string
	)
	cmd := &cobra.Command{
		Use:   "docs <file>",
		Short: "Generate Markdown reference pages for the definitions of a document",
		Long: `Write README.md with the categories, analyses and definitions of a document,
plus one page per definition listing its items, tags and constraints.
With --categories only definitions relevant to those categories are documented.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, log, err := a.readDocument(args[0])
			if err != nil {
				return a.reportFailure(cmd.ErrOrStderr(), args[0], log, err)
			}
			desc := jsonio.Describe(res, jsonio.Options{
				AdvanceLevel: ^uint(0),
				Categories:   splitList(categories),
			})

			written, err := docs.NewMarkdownGenerator(&docs.Config{Title: title, OutputDir: output}).Generate(desc)
			if err != nil {
				return err
			}
			ui.Success(cmd.OutOrStdout(), fmt.Sprintf("wrote %d pages to %s", len(written), output), a.noColor)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "docs", "Output directory")
	cmd.Flags().StringVar(&title, "title", "", "Index page title (default resource name)")
	cmd.Flags().StringVar(&categories, "categories", "", "Comma separated active categories")
	return cmd
}
