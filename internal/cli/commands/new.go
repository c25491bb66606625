package commands

import (
	"fmt"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/conduit-lang/attrkit/internal/attribute"
	"github.com/conduit-lang/attrkit/internal/cli/ui"
	"github.com/conduit-lang/attrkit/internal/codec/xmlio"
)

const noBase = "(none)"

var itemKinds = []string{"double", "int", "string", "bool", "void"}

// prompter asks the questions of the interactive new command
type prompter interface {
	Input(message, def string, required bool) (string, error)
	Confirm(message string, def bool) (bool, error)
	Select(message string, options []string, def string) (string, error)
	MultiSelect(message string, options []string) ([]string, error)
}

type surveyPrompter struct{}

func (surveyPrompter) Input(message, def string, required bool) (string, error) {
	var answer string
	var opts []survey.AskOpt
	if required {
		opts = append(opts, survey.WithValidator(survey.Required))
	}
	err := survey.AskOne(&survey.Input{Message: message, Default: def}, &answer, opts...)
	return strings.TrimSpace(answer), err
}

func (surveyPrompter) Confirm(message string, def bool) (bool, error) {
	answer := def
	err := survey.AskOne(&survey.Confirm{Message: message, Default: def}, &answer)
	return answer, err
}

func (surveyPrompter) Select(message string, options []string, def string) (string, error) {
	var answer string
	err := survey.AskOne(&survey.Select{Message: message, Options: options, Default: def}, &answer)
	return answer, err
}

func (surveyPrompter) MultiSelect(message string, options []string) ([]string, error) {
	var answer []string
	err := survey.AskOne(&survey.MultiSelect{Message: message, Options: options}, &answer)
	return answer, err
}

// newNewCommand creates the new command
func newNewCommand(a *app) *cobra.Command {
	return newNewCommandWithPrompter(a, surveyPrompter{})
}

func newNewCommandWithPrompter(a *app, p prompter) *cobra.Command {
	var (
		output      string
		name        string
		categories  []string
		definitions []string
	)
	cmd := &cobra.Command{
		Use:   "new",
		Short: "Create a new attribute resource document",
		Long: `Create a document with categories, definitions and one attribute per
definition, then write it in the current format.

Without --definition the command asks for everything interactively.
Definitions are given as Type:item=kind,item=kind where kind is one of
double, int, string, bool or void.`,
		Example: `  attrkit new -o bc.xml
  attrkit new --category Fluid --definition "Inlet:velocity=double,steps=int" -o bc.xml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res := attribute.NewResource(uuid.New())
			res.SetName(name)

			var err error
			if len(definitions) > 0 {
				err = buildFromFlags(res, categories, definitions)
			} else {
				err = buildInteractive(res, p, name)
			}
			if err != nil {
				return err
			}
			for _, def := range res.Definitions() {
				if def.IsAbstract() {
					continue
				}
				if _, err := res.CreateAttribute(res.GenerateAttributeName(def.Type()), def.Type()); err != nil {
					return err
				}
			}
			res.UpdateCategories()

			if output == "" {
				return xmlio.Write(cmd.OutOrStdout(), res)
			}
			if err := xmlio.WriteFile(output, res); err != nil {
				return err
			}
			ui.Success(cmd.OutOrStdout(), fmt.Sprintf("created %s with %d definitions", output, len(res.Definitions())), a.noColor)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default stdout)")
	cmd.Flags().StringVar(&name, "name", "", "Resource name")
	cmd.Flags().StringSliceVar(&categories, "category", nil, "Category to declare (repeatable)")
	cmd.Flags().StringArrayVar(&definitions, "definition", nil, "Definition as Type:item=kind,... (repeatable)")
	return cmd
}

func buildFromFlags(res *attribute.Resource, categories, definitions []string) error {
	for _, c := range categories {
		res.AddCategory(c)
	}
	for _, spec := range definitions {
		typeName, items, _ := strings.Cut(spec, ":")
		def, err := res.CreateDefinition(strings.TrimSpace(typeName), "")
		if err != nil {
			return err
		}
		for _, c := range categories {
			def.LocalCategories().InsertInclusion(c)
		}
		for _, item := range splitList(items) {
			itemName, kind, ok := strings.Cut(item, "=")
			if !ok {
				kind = "double"
			}
			idef, err := newItemDefinition(strings.TrimSpace(itemName), strings.TrimSpace(kind))
			if err != nil {
				return err
			}
			if err := def.AddItemDefinition(idef); err != nil {
				return err
			}
		}
	}
	return nil
}

func buildInteractive(res *attribute.Resource, p prompter, name string) error {
	if name == "" {
		n, err := p.Input("Resource name:", "", false)
		if err != nil {
			return err
		}
		res.SetName(n)
	}
	cats, err := p.Input("Categories (comma separated):", "", false)
	if err != nil {
		return err
	}
	declared := splitList(cats)
	for _, c := range declared {
		res.AddCategory(c)
	}

	for {
		typeName, err := p.Input("Definition type:", "", true)
		if err != nil {
			return err
		}
		bases := []string{noBase}
		for _, d := range res.Definitions() {
			bases = append(bases, d.Type())
		}
		base := noBase
		if len(bases) > 1 {
			if base, err = p.Select("Derives from:", bases, noBase); err != nil {
				return err
			}
		}
		if base == noBase {
			base = ""
		}
		def, err := res.CreateDefinition(typeName, base)
		if err != nil {
			color.New(color.FgRed).Fprintf(color.Error, "%v\n", err)
			continue
		}
		if len(declared) > 0 {
			picked, err := p.MultiSelect("Categories of "+typeName+":", declared)
			if err != nil {
				return err
			}
			for _, c := range picked {
				def.LocalCategories().InsertInclusion(c)
			}
		}
		if err := askItems(def, p); err != nil {
			return err
		}
		more, err := p.Confirm("Add another definition?", false)
		if err != nil {
			return err
		}
		if !more {
			return nil
		}
	}
}

func askItems(def *attribute.Definition, p prompter) error {
	for {
		itemName, err := p.Input("Item name (empty to finish):", "", false)
		if err != nil || itemName == "" {
			return err
		}
		kind, err := p.Select("Item kind:", itemKinds, "double")
		if err != nil {
			return err
		}
		idef, err := newItemDefinition(itemName, kind)
		if err != nil {
			return err
		}
		if err := def.AddItemDefinition(idef); err != nil {
			color.New(color.FgRed).Fprintf(color.Error, "%v\n", err)
		}
	}
}

func newItemDefinition(name, kind string) (attribute.ItemDefinition, error) {
	if name == "" {
		return nil, fmt.Errorf("item name must not be empty")
	}
	switch strings.ToLower(kind) {
	case "double":
		return attribute.NewDoubleItemDefinition(name), nil
	case "int":
		return attribute.NewIntItemDefinition(name), nil
	case "string":
		return attribute.NewStringItemDefinition(name), nil
	case "bool":
		return attribute.NewValueItemDefinition(name, attribute.BoolType), nil
	case "void":
		return attribute.NewVoidItemDefinition(name), nil
	default:
		return nil, fmt.Errorf("unknown item kind %q, expected one of %s", kind, strings.Join(itemKinds, ", "))
	}
}
