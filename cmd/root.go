package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

const (
	appName           = "bridge-indexer"
	defaultConfigPath = "./config.yaml"
)

// NewRootCmd returns the root command with all subcommands sharing a.
func NewRootCmd(a *AppState) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           appName,
		Short:         "Synchronizes the bridge shared configuration into a local database",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	addAppPersistantFlags(rootCmd, a)

	rootCmd.AddCommand(
		syncCmd(a),
		serveCmd(a),
		verifyCmd(a),
		configShowCmd(a),
		versionCmd(),
	)
	return rootCmd
}

func Execute() {
	a := NewAppState()
	rootCmd := NewRootCmd(a)
	if err := rootCmd.Execute(); err != nil {
		if a.Logger == nil {
			a.InitLogger()
		}
		a.Logger.Error(err.Error())
		os.Exit(1)
	}
}
