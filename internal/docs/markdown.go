// Package docs renders Markdown reference documentation for the definitions
// of an attribute resource.
package docs

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/conduit-lang/attrkit/internal/codec/jsonio"
)

// Config holds configuration for documentation generation
type Config struct {
	// Title heads the index page; the resource name is used when empty
	Title string

	// OutputDir receives README.md and one page per definition
	OutputDir string
}

// MarkdownGenerator generates Markdown documentation
type MarkdownGenerator struct {
	config *Config
}

// NewMarkdownGenerator creates a new Markdown generator
func NewMarkdownGenerator(config *Config) *MarkdownGenerator {
	return &MarkdownGenerator{config: config}
}

// Generate writes the index and the definition pages for desc and returns
// the paths written
func (g *MarkdownGenerator) Generate(desc *jsonio.Resource) ([]string, error) {
	if err := os.MkdirAll(g.config.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	pages := make(map[string]string, len(desc.Definitions))
	for _, def := range desc.Definitions {
		pages[def.Type] = uniqueFileName(pageName(def.Type), pages)
	}

	written := make([]string, 0, len(desc.Definitions)+1)
	index := filepath.Join(g.config.OutputDir, "README.md")
	if err := os.WriteFile(index, []byte(g.index(desc, pages)), 0o644); err != nil {
		return nil, err
	}
	written = append(written, index)

	derived := derivedTypes(desc.Definitions)
	for _, def := range desc.Definitions {
		path := filepath.Join(g.config.OutputDir, pages[def.Type])
		if err := os.WriteFile(path, []byte(definitionPage(def, derived[def.Type], pages)), 0o644); err != nil {
			return nil, err
		}
		written = append(written, path)
	}
	return written, nil
}

func (g *MarkdownGenerator) index(desc *jsonio.Resource, pages map[string]string) string {
	var buf strings.Builder

	title := g.config.Title
	if title == "" {
		title = desc.Name
	}
	if title == "" {
		title = "Attribute Resource"
	}
	fmt.Fprintf(&buf, "# %s\n\n", title)
	fmt.Fprintf(&buf, "**Resource:** `%s`\n\n", desc.ID)

	if len(desc.Categories) > 0 {
		buf.WriteString("## Categories\n\n")
		for _, c := range desc.Categories {
			fmt.Fprintf(&buf, "- %s\n", c)
		}
		buf.WriteString("\n")
	}

	if len(desc.Analyses) > 0 {
		buf.WriteString("## Analyses\n\n")
		buf.WriteString("| Name | Parent | Categories |\n")
		buf.WriteString("|------|--------|------------|\n")
		for _, an := range desc.Analyses {
			fmt.Fprintf(&buf, "| %s | %s | %s |\n", an.Name, dash(an.Parent), dash(strings.Join(an.Categories, ", ")))
		}
		buf.WriteString("\n")
	}

	buf.WriteString("## Definitions\n\n")
	if len(desc.Definitions) == 0 {
		buf.WriteString("No definitions.\n")
		return buf.String()
	}
	buf.WriteString("| Type | Base | Categories | Items |\n")
	buf.WriteString("|------|------|------------|-------|\n")
	for _, def := range desc.Definitions {
		base := "-"
		if def.Base != "" {
			base = link(def.Base, pages)
		}
		fmt.Fprintf(&buf, "| %s | %s | %s | %d |\n",
			link(def.Type, pages), base, dash(strings.Join(def.Categories, ", ")), len(def.Items))
	}
	return buf.String()
}

func definitionPage(def jsonio.Definition, derived []string, pages map[string]string) string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "# %s\n\n", def.Type)
	if def.Label != "" {
		fmt.Fprintf(&buf, "> %s\n\n", def.Label)
	}
	if def.Base != "" {
		fmt.Fprintf(&buf, "- **Derives from:** %s\n", link(def.Base, pages))
	}
	if len(derived) > 0 {
		links := make([]string, len(derived))
		for i, d := range derived {
			links[i] = link(d, pages)
		}
		fmt.Fprintf(&buf, "- **Derived:** %s\n", strings.Join(links, ", "))
	}
	fmt.Fprintf(&buf, "- **Categories:** %s\n", dash(strings.Join(def.Categories, ", ")))
	if def.Abstract {
		buf.WriteString("- **Abstract:** yes\n")
	}
	if def.Unique {
		buf.WriteString("- **Unique:** yes\n")
	}
	if def.Associations {
		buf.WriteString("- **Associations:** allowed\n")
	}
	writeTypeList(&buf, "Excludes", def.Exclusions, pages)
	writeTypeList(&buf, "Requires", def.Prerequisites, pages)
	buf.WriteString("\n")

	if len(def.Tags) > 0 {
		buf.WriteString("## Tags\n\n")
		names := make([]string, 0, len(def.Tags))
		for name := range def.Tags {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			if values := def.Tags[name]; len(values) > 0 {
				fmt.Fprintf(&buf, "- `%s`: %s\n", name, strings.Join(values, ", "))
			} else {
				fmt.Fprintf(&buf, "- `%s`\n", name)
			}
		}
		buf.WriteString("\n")
	}

	buf.WriteString("## Items\n\n")
	if len(def.Items) == 0 {
		buf.WriteString("No items defined.\n")
		return buf.String()
	}
	buf.WriteString("| Name | Kind | Optional | Label |\n")
	buf.WriteString("|------|------|----------|-------|\n")
	writeItems(&buf, def.Items, "")
	return buf.String()
}

func writeItems(buf *strings.Builder, items []jsonio.ItemDefinition, prefix string) {
	for _, it := range items {
		optional := "No"
		if it.Optional {
			optional = "Yes"
		}
		fmt.Fprintf(buf, "| `%s%s` | %s | %s | %s |\n", prefix, it.Name, it.Kind, optional, dash(it.Label))
		writeItems(buf, it.Children, prefix+it.Name+"/")
	}
}

func writeTypeList(buf *strings.Builder, title string, types []string, pages map[string]string) {
	if len(types) == 0 {
		return
	}
	links := make([]string, len(types))
	for i, t := range types {
		links[i] = link(t, pages)
	}
	fmt.Fprintf(buf, "- **%s:** %s\n", title, strings.Join(links, ", "))
}

// derivedTypes maps each type to the types that name it as their base
func derivedTypes(defs []jsonio.Definition) map[string][]string {
	out := make(map[string][]string)
	for _, def := range defs {
		if def.Base != "" {
			out[def.Base] = append(out[def.Base], def.Type)
		}
	}
	return out
}

// link renders typeName as a link to its page, or as code when the type
// has no page (filtered out or unknown)
func link(typeName string, pages map[string]string) string {
	if page, ok := pages[typeName]; ok {
		return fmt.Sprintf("[%s](%s)", typeName, page)
	}
	return "`" + typeName + "`"
}

// pageName turns a definition type into a safe file name
func pageName(typeName string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(typeName) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_', r == '-':
			b.WriteRune(r)
		default:
			b.WriteRune('-')
		}
	}
	name := strings.Trim(b.String(), "-")
	switch name {
	case "":
		return "definition"
	case "readme":
		return "definition-readme"
	}
	return name
}

func uniqueFileName(base string, taken map[string]string) string {
	used := make(map[string]struct{}, len(taken))
	for _, f := range taken {
		used[f] = struct{}{}
	}
	name := base + ".md"
	for n := 2; ; n++ {
		if _, ok := used[name]; !ok {
			return name
		}
		name = fmt.Sprintf("%s-%d.md", base, n)
	}
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
