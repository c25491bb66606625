package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/conduit-lang/attrkit/internal/category"
	"github.com/conduit-lang/attrkit/internal/cli/ui"
	"github.com/conduit-lang/attrkit/internal/logger"
	"github.com/conduit-lang/attrkit/internal/watch"
)

// newValidateCommand creates the validate command
func newValidateCommand(a *app) *cobra.Command {
	var (
		strict     bool
		categories string
		watchFiles bool
	)
	cmd := &cobra.Command{
		Use:   "validate <file>...",
		Short: "Check attribute resource documents",
		Long: `Read each document and report the problems found while parsing it.

Attributes whose items are not valid (unset values, values out of range) are
reported as warnings. With --categories only items relevant to those
categories are checked. With --strict warnings fail the command too.
With --watch the files are checked again each time they are written.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v := &validator{app: a, out: cmd.OutOrStdout(), strict: strict}
			if cats := splitList(categories); len(cats) > 0 {
				v.active = category.Active(cats...)
			}
			failed := v.files(args)
			if watchFiles {
				return v.watch(cmd.Context(), args)
			}
			if failed > 0 {
				return errReported
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&strict, "strict", false, "Treat warnings as errors")
	cmd.Flags().StringVar(&categories, "categories", "", "Comma separated active categories")
	cmd.Flags().BoolVarP(&watchFiles, "watch", "w", false, "Validate again whenever a file changes")
	return cmd
}

type validator struct {
	*app
	out    io.Writer
	strict bool
	active map[string]struct{}
}

// files validates each path and returns how many failed
func (v *validator) files(paths []string) int {
	failed := 0
	for _, path := range paths {
		if !v.file(path) {
			failed++
		}
	}
	return failed
}

func (v *validator) file(path string) bool {
	res, log, err := v.readDocument(path)
	if err != nil {
		v.reportFailure(v.out, path, log, err)
		return false
	}
	for _, att := range res.Attributes() {
		if v.active != nil && !att.IsRelevant(v.active) {
			continue
		}
		if !att.IsValid(v.active) {
			log.Warnf("attribute %s (%s) is not valid", att.Name(), att.Type())
		}
	}

	min := logger.Warning
	if v.verbose {
		min = logger.Info
	}
	ui.WriteRecords(v.out, log.Records(), min, v.noColor)

	if log.HasErrors() || (v.strict && log.Count(logger.Warning) > 0) {
		fmt.Fprint(v.out, ui.FormatProblem(ui.Problem{Context: "invalid", Message: path}, v.noColor))
		return false
	}
	ui.Success(v.out, fmt.Sprintf("%s: %d definitions, %d attributes",
		path, len(res.Definitions()), len(res.Attributes())), v.noColor)
	return true
}

// watch validates changed files until interrupted
func (v *validator) watch(ctx context.Context, paths []string) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	w, err := watch.New(paths, watch.DefaultDelay, v.log)
	if err != nil {
		return err
	}
	color.New(color.FgCyan).Fprintln(v.out, "Watching for changes, press Ctrl+C to stop")
	return w.Run(ctx, func(changed []string) {
		fmt.Fprintln(v.out)
		v.files(changed)
	})
}
