package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sygmaprotocol/bridge-indexer/api"
)

const defaultListen = ":8000"

func serveCmd(a *AppState) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the synchronized domains, tokens and resources over http",
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.InitAppState()
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			listen, err := cmd.Flags().GetString(flagListen)
			if err != nil {
				return err
			}
			if listen == "" {
				listen = a.Config.API.Listen
			}
			if listen == "" {
				listen = defaultListen
			}

			st, err := OpenStore(a)
			if err != nil {
				return err
			}
			defer st.Close()

			srv, err := api.NewServer(st, a.Logger, a.Config.API.TrustedProxies)
			if err != nil {
				return err
			}

			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()
			return srv.Run(ctx, listen)
		},
	}
	addListenFlag(cmd)
	return cmd
}
