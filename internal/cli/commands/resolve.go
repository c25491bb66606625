package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/conduit-lang/attrkit/internal/attribute"
	"github.com/conduit-lang/attrkit/internal/cli/ui"
	"github.com/conduit-lang/attrkit/internal/codec/jsonio"
	"github.com/conduit-lang/attrkit/internal/resource"
)

// newResolveCommand creates the resolve command
func newResolveCommand(a *app) *cobra.Command {
	var (
		with   []string
		strict bool
	)
	cmd := &cobra.Command{
		Use:   "resolve <file>",
		Short: "List the references of a document and whether they resolve",
		Long: `Load a document, and every document given with --with, into one resource
manager, then list each association and reference item of the first
document with the object it points at.

References into documents that are not loaded are listed as unresolved
with the surrogate recorded for their target resource.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			manager := resource.NewManager()
			var main *attribute.Resource
			for i, path := range append([]string{args[0]}, with...) {
				res, log, err := a.readDocument(path)
				if err != nil {
					return a.reportFailure(cmd.ErrOrStderr(), path, log, err)
				}
				res.SetFinder(manager)
				if err := manager.Register(res); err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
				if i == 0 {
					main = res
				}
			}

			desc := jsonio.Describe(main, jsonio.Options{AdvanceLevel: ^uint(0)})
			out := cmd.OutOrStdout()
			table := ui.NewTable(out, a.noColor, "ATTRIBUTE", "ITEM", "TARGET", "STATUS")
			for _, att := range desc.Attributes {
				for _, ref := range att.Associations {
					table.AddRow(att.Name, "(associations)", referenceTarget(ref), referenceStatus(ref))
				}
				walkReferences(att.Items, "", func(path string, ref jsonio.Reference) {
					table.AddRow(att.Name, path, referenceTarget(ref), referenceStatus(ref))
				})
			}
			if table.Len() == 0 {
				fmt.Fprintln(out, "no references")
				return nil
			}
			table.Render()
			fmt.Fprintf(out, "\n%d references, %d unresolved\n", table.Len(), desc.Unresolved)

			if strict && desc.Unresolved > 0 {
				return errReported
			}
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&with, "with", nil, "Additional documents to load")
	cmd.Flags().BoolVar(&strict, "strict", false, "Fail when any reference is unresolved")
	return cmd
}

// walkReferences calls fn for every set reference below items. Paths use
// "/" between items and "[row]" for group rows.
func walkReferences(items []jsonio.Item, prefix string, fn func(string, jsonio.Reference)) {
	for _, it := range items {
		path := prefix + it.Name
		for _, ref := range it.References {
			if ref.Set {
				fn(path, ref)
			}
		}
		for row, group := range it.Groups {
			walkReferences(group, fmt.Sprintf("%s[%d]/", path, row), fn)
		}
		walkReferences(it.Children, path+"/", fn)
	}
}

func referenceTarget(ref jsonio.Reference) string {
	if ref.Name != "" {
		return fmt.Sprintf("%s (%s)", ref.Name, ref.Type)
	}
	return fmt.Sprintf("%s (%s)", ref.ID, ref.Type)
}

func referenceStatus(ref jsonio.Reference) string {
	switch {
	case ref.Resolved:
		return "resolved"
	case ref.Unresolved != "":
		return "unresolved: " + ref.Unresolved
	default:
		return "missing"
	}
}
