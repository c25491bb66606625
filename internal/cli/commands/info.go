package commands

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/conduit-lang/attrkit/internal/cli/ui"
	"github.com/conduit-lang/attrkit/internal/codec/jsonio"
)

// newInfoCommand creates the info command
func newInfoCommand(a *app) *cobra.Command {
	var (
		asJSON     bool
		categories string
		level      uint
	)
	cmd := &cobra.Command{
		Use:   "info <file>",
		Short: "Describe the definitions and attributes of a document",
		Long: `Print the definitions and attributes of a document.

--level hides items above the given advance read level and --categories
hides whatever is not relevant to those categories. Both default to the
reader section of the configuration.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, log, err := a.readDocument(args[0])
			if err != nil {
				return a.reportFailure(cmd.ErrOrStderr(), args[0], log, err)
			}

			opts := jsonio.Options{
				AdvanceLevel: a.cfg.Reader.AdvanceLevel,
				Categories:   a.cfg.Reader.Categories,
			}
			if cmd.Flags().Changed("level") {
				opts.AdvanceLevel = level
			}
			if cmd.Flags().Changed("categories") {
				opts.Categories = splitList(categories)
			}

			if asJSON {
				return jsonio.Write(cmd.OutOrStdout(), res, opts)
			}
			renderDescription(cmd.OutOrStdout(), jsonio.Describe(res, opts), a.noColor)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the description as JSON")
	cmd.Flags().StringVar(&categories, "categories", "", "Comma separated active categories")
	cmd.Flags().UintVar(&level, "level", 0, "Advance read level")
	return cmd
}

func renderDescription(w io.Writer, desc *jsonio.Resource, noColor bool) {
	kv := ui.NewKeyValueTable(w, noColor)
	kv.AddRow("ID", desc.ID.String())
	if desc.Name != "" {
		kv.AddRow("Name", desc.Name)
	}
	if desc.Location != "" {
		kv.AddRow("Location", desc.Location)
	}
	kv.AddRow("Categories", orNone(strings.Join(desc.Categories, ", ")))
	names := make([]string, 0, len(desc.Analyses))
	for _, an := range desc.Analyses {
		names = append(names, an.Name)
	}
	kv.AddRow("Analyses", orNone(strings.Join(names, ", ")))
	kv.AddRow("Unresolved", strconv.Itoa(desc.Unresolved))
	kv.Render()

	fmt.Fprintln(w)
	ui.Header(w, fmt.Sprintf("Definitions (%d)", len(desc.Definitions)), noColor)
	defs := ui.NewTable(w, noColor, "TYPE", "BASE", "CATEGORIES", "ITEMS", "FLAGS")
	for _, d := range desc.Definitions {
		defs.AddRow(d.Type, d.Base, strings.Join(d.Categories, ","), strconv.Itoa(len(d.Items)), definitionFlags(d))
	}
	defs.Render()

	fmt.Fprintln(w)
	ui.Header(w, fmt.Sprintf("Attributes (%d)", len(desc.Attributes)), noColor)
	atts := ui.NewTable(w, noColor, "NAME", "TYPE", "VALID", "ITEMS", "ASSOCIATIONS")
	for _, att := range desc.Attributes {
		valid := "yes"
		if !att.Valid {
			valid = "no"
		}
		atts.AddRow(att.Name, att.Type, valid, itemSummary(att.Items), strconv.Itoa(len(att.Associations)))
	}
	atts.Render()
}

func definitionFlags(d jsonio.Definition) string {
	var flags []string
	if d.Abstract {
		flags = append(flags, "abstract")
	}
	if d.Unique {
		flags = append(flags, "unique")
	}
	if d.Associations {
		flags = append(flags, "associations")
	}
	return strings.Join(flags, ",")
}

// itemSummary renders "name=value" pairs for the top-level items
func itemSummary(items []jsonio.Item) string {
	parts := make([]string, 0, len(items))
	for _, it := range items {
		switch {
		case !it.Enabled:
			parts = append(parts, it.Name+"=off")
		case len(it.Values) > 0:
			vals := make([]string, len(it.Values))
			for i, v := range it.Values {
				if v == nil {
					vals[i] = "?"
					continue
				}
				vals[i] = fmt.Sprint(v)
			}
			parts = append(parts, it.Name+"="+strings.Join(vals, "|"))
		case len(it.Groups) > 0:
			parts = append(parts, fmt.Sprintf("%s[%d]", it.Name, len(it.Groups)))
		case len(it.References) > 0:
			parts = append(parts, fmt.Sprintf("%s->%d", it.Name, len(it.References)))
		default:
			parts = append(parts, it.Name)
		}
	}
	return strings.Join(parts, " ")
}

func orNone(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
