package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/conduit-lang/attrkit/internal/cli/ui"
	"github.com/conduit-lang/attrkit/internal/codec/xmlio"
	"github.com/conduit-lang/attrkit/internal/logger"
	"github.com/conduit-lang/attrkit/internal/store"
	"github.com/conduit-lang/attrkit/internal/workspace"
)

// newStoreCommand creates the store command and its subcommands
func newStoreCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "store",
		Short: "Manage documents in the document store",
		Long: `Put, fetch, list and remove attribute resource documents in the database
configured under store. Documents are always stored in the current format.`,
	}
	cmd.AddCommand(newStorePutCommand(a))
	cmd.AddCommand(newStoreGetCommand(a))
	cmd.AddCommand(newStoreListCommand(a))
	cmd.AddCommand(newStoreRemoveCommand(a))
	return cmd
}

// withWorkspace opens the configured workspace around fn
func (a *app) withWorkspace(ctx context.Context, fn func(*workspace.Workspace) error) error {
	ws, cleanup, err := a.openWorkspace(ctx)
	if err != nil {
		return err
	}
	defer cleanup()
	return fn(ws)
}

// notFound prints name with the stored names closest to it
func (a *app) notFound(ctx context.Context, w io.Writer, ws *workspace.Workspace, name string) error {
	var known []string
	if docs, err := ws.List(ctx); err == nil {
		for _, d := range docs {
			known = append(known, d.Name)
		}
	}
	fmt.Fprint(w, ui.DocumentNotFound(name, known, a.noColor))
	return errReported
}

func newStorePutCommand(a *app) *cobra.Command {
	var (
		name    string
		replace bool
	)
	cmd := &cobra.Command{
		Use:   "put <file>",
		Short: "Store a document",
		Long:  "Parse a document and store it, by default under the file name without its extension.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			if name == "" {
				name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
			}
			f, err := os.Open(path)
			if err != nil {
				return err
			}
			defer f.Close()

			ctx := cmd.Context()
			return a.withWorkspace(ctx, func(ws *workspace.Workspace) error {
				loaded, err := ws.Import(ctx, name, f, replace)
				if store.IsExists(err) {
					fmt.Fprint(cmd.ErrOrStderr(), ui.FormatProblem(ui.Problem{
						Context: "document exists",
						Message: name,
						Hints:   []string{"Overwrite it: attrkit store put --replace " + path},
					}, a.noColor))
					return errReported
				}
				if err != nil {
					return err
				}
				ui.WriteRecords(cmd.ErrOrStderr(), loaded.Log.Records(), logger.Warning, a.noColor)
				ui.Success(cmd.OutOrStdout(), fmt.Sprintf("stored %s (%s, version %d)",
					loaded.Document.Name, loaded.Document.ID, loaded.Document.Version), a.noColor)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Document name")
	cmd.Flags().BoolVar(&replace, "replace", false, "Replace a document with the same name")
	return cmd
}

func newStoreGetCommand(a *app) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "get <name>",
		Short: "Print a stored document",
		Args:  cobra.ExactArgs(1),

		ValidArgsFunction: a.completeDocumentNames,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return a.withWorkspace(ctx, func(ws *workspace.Workspace) error {
				loaded, err := ws.Load(ctx, args[0])
				if store.IsNotFound(err) {
					return a.notFound(ctx, cmd.ErrOrStderr(), ws, args[0])
				}
				if err != nil {
					return err
				}
				if output == "" {
					return xmlio.Write(cmd.OutOrStdout(), loaded.Resource)
				}
				return xmlio.WriteFile(output, loaded.Resource)
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default stdout)")
	return cmd
}

func newStoreListCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List stored documents",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return a.withWorkspace(ctx, func(ws *workspace.Workspace) error {
				docs, err := ws.List(ctx)
				if err != nil {
					return err
				}
				if len(docs) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "no documents")
					return nil
				}
				table := ui.NewTable(cmd.OutOrStdout(), a.noColor, "NAME", "ID", "VERSION", "UPDATED")
				for _, d := range docs {
					table.AddRow(d.Name, d.ID.String(), fmt.Sprint(d.Version), d.UpdatedAt.Format("2006-01-02 15:04:05"))
				}
				table.Render()
				return nil
			})
		},
	}
}

func newStoreRemoveCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <name>",
		Aliases: []string{"remove"},
		Short:   "Remove a stored document",
		Args:    cobra.ExactArgs(1),

		ValidArgsFunction: a.completeDocumentNames,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return a.withWorkspace(ctx, func(ws *workspace.Workspace) error {
				err := ws.Delete(ctx, args[0])
				if store.IsNotFound(err) {
					return a.notFound(ctx, cmd.ErrOrStderr(), ws, args[0])
				}
				if err != nil {
					return err
				}
				ui.Success(cmd.OutOrStdout(), "removed "+args[0], a.noColor)
				return nil
			})
		},
	}
}
