package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/spf13/cobra"

	"github.com/sygmaprotocol/bridge-indexer/indexer"
	"github.com/sygmaprotocol/bridge-indexer/sharedconfig"
	"github.com/sygmaprotocol/bridge-indexer/store"
)

func syncCmd(a *AppState) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Synchronize the supported domains from the shared config",
		Long: `Fetch the shared config once and upsert every supported domain, its native token,
resources and resource tokens. With --interval the synchronization is repeated until interrupted.`,
		Example: strings.TrimSpace(fmt.Sprintf(`
$ %s sync --config %s
$ %s sync --interval 300`, appName, defaultConfigPath, appName)),
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.InitAppState()
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			interval := a.Config.SyncInterval
			if cmd.Flags().Changed(flagInterval) {
				var err error
				if interval, err = cmd.Flags().GetInt(flagInterval); err != nil {
					return err
				}
			}

			port, err := cmd.Flags().GetInt16(flagMetricsPort)
			if err != nil {
				return err
			}
			var metrics *indexer.PromMetrics
			if port != 0 {
				metrics = indexer.InitPromMetrics(a.Logger, port)
			}

			st, err := OpenStore(a)
			if err != nil {
				return err
			}
			defer st.Close()

			if interval <= 0 {
				return Sync(cmd.Context(), a, st, metrics)
			}

			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()
			return syncEvery(ctx, a, st, metrics, interval)
		},
	}
	addIntervalFlag(cmd)
	return cmd
}

// OpenStore connects to the configured database and migrates its schema.
func OpenStore(a *AppState) (*store.Store, error) {
	st, err := store.Open(a.Config.Database.Driver, a.Config.Database.DSN)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(); err != nil {
		st.Close()
		return nil, fmt.Errorf("unable to migrate database: %w", err)
	}
	return st, nil
}

// Sync performs one complete synchronization run.
func Sync(ctx context.Context, a *AppState, st *store.Store, metrics *indexer.PromMetrics) error {
	fetcher := sharedconfig.NewFetcher(a.Logger, a.Config.Stage)
	synchronizer := indexer.NewSynchronizer(st, a.Config, a.Logger, metrics)

	start := time.Now()
	if err := synchronizer.Run(ctx, fetcher, a.Config.SharedConfigURL, a.Config.SupportedDomains); err != nil {
		return err
	}
	a.Logger.Info("Synchronization complete", "domains", len(a.Config.SupportedDomains), "took", time.Since(start))
	return nil
}

// syncEvery runs Sync every interval seconds until ctx is done. A failed run
// is logged and the next tick starts a fresh one.
func syncEvery(ctx context.Context, a *AppState, st *store.Store, metrics *indexer.PromMetrics, interval int) error {
	s := gocron.NewScheduler(time.UTC)
	_, err := s.Every(interval).Seconds().SingletonMode().Do(func() {
		if err := Sync(ctx, a, st, metrics); err != nil {
			a.Logger.Error("Synchronization failed", "err", err)
		}
	})
	if err != nil {
		return fmt.Errorf("unable to schedule synchronization: %w", err)
	}

	a.Logger.Info("Scheduled synchronization", "interval", time.Duration(interval)*time.Second)
	s.StartAsync()
	<-ctx.Done()
	s.Stop()
	return nil
}
