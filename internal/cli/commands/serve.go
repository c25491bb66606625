package commands

import (
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/conduit-lang/attrkit/internal/api"
	"github.com/conduit-lang/attrkit/internal/workspace"
)

// newServeCommand creates the serve command
func newServeCommand(a *app) *cobra.Command {
	var (
		host string
		port int
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve stored documents over HTTP",
		Long: `Start the HTTP API over the configured document store:

  GET    /resources               list stored documents
  GET    /resources/{name}        describe (?level=N&categories=a,b)
  GET    /resources/{name}/xml    current format document
  POST   /resources/{name}        import a new document
  PUT    /resources/{name}        import, replacing an existing one
  DELETE /resources/{name}        remove

When server.jwt_secret is set, POST, PUT and DELETE require a bearer
token carrying the write scope (see "attrkit token").

The server stops on SIGINT or SIGTERM.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			srvCfg := a.cfg.Server
			if cmd.Flags().Changed("host") {
				srvCfg.Host = host
			}
			if cmd.Flags().Changed("port") {
				srvCfg.Port = port
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return a.withWorkspace(ctx, func(ws *workspace.Workspace) error {
				h := api.NewHandler(ws, a.log)
				if srvCfg.JWTSecret != "" {
					h.WithAuth(api.NewAuthenticator(srvCfg.JWTSecret, srvCfg.TokenTTL))
				}
				handler := h.Router()
				ready := func(addr net.Addr) {
					color.New(color.FgGreen, color.Bold).Fprintf(cmd.OutOrStdout(), "Serving on http://%s\n", addr)
				}
				return api.Serve(ctx, api.DefaultServerConfig(srvCfg.Address()), handler, a.log, ready)
			})
		},
	}
	cmd.Flags().StringVar(&host, "host", "", "Listen host (overrides server.host)")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "Listen port (overrides server.port)")
	return cmd
}
