package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"cosmossdk.io/log"

	"github.com/sygmaprotocol/bridge-indexer/types"
)

// AppState is the modifiable state of the application.
type AppState struct {
	Config *types.Config

	ConfigPath string

	Debug bool

	LogLevel string

	Logger log.Logger
}

func NewAppState() *AppState {
	return &AppState{}
}

// InitAppState checks if a logger and config are present. If not, it adds them to the AppState
func (a *AppState) InitAppState() error {
	if a.Logger == nil {
		a.InitLogger()
	}
	if a.Config == nil {
		return a.loadConfigFile()
	}
	return nil
}

func (a *AppState) InitLogger() {
	// info level is default
	level := zerolog.InfoLevel
	switch a.LogLevel {
	case "debug":
		level = zerolog.DebugLevel
	case "warn":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	}

	// a.Debug overrides a.loglevel
	if a.Debug {
		a.Logger = log.NewLogger(os.Stdout, log.LevelOption(zerolog.DebugLevel))
	} else {
		a.Logger = log.NewLogger(os.Stdout, log.LevelOption(level))
	}
}

// loadConfigFile loads a configuration into the AppState. It uses the AppState ConfigPath
// to determine file path to config. Variables from a .env file in the working directory
// and the process environment override the file.
func (a *AppState) loadConfigFile() error {
	if a.Logger == nil {
		a.InitLogger()
	}
	config, err := ParseConfig(a.ConfigPath)
	if err != nil {
		a.Logger.Error("Unable to parse config file", "location", a.ConfigPath, "err", err)
		return err
	}
	a.Logger.Info("Successfully parsed config file", "location", a.ConfigPath)

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		a.Logger.Error("Unable to load .env file", "err", err)
		return err
	}
	if err := config.ApplyEnv(); err != nil {
		a.Logger.Error("Invalid environment override", "err", err)
		return err
	}
	a.Config = config

	if err := a.validateConfig(); err != nil {
		a.Logger.Error("Invalid config", "err", err)
		return err
	}
	return nil
}

// validateConfig checks the AppState Config for any invalid settings.
func (a *AppState) validateConfig() error {
	if a.Config.SharedConfigURL == "" {
		return fmt.Errorf("shared-config-url must be set in the config")
	}

	if len(a.Config.SupportedDomains) == 0 {
		return fmt.Errorf("at least one supported domain must be set in the config")
	}

	switch a.Config.Database.Driver {
	case types.DriverSqlite, types.DriverMysql:
	default:
		return fmt.Errorf("database driver must be %q or %q in the config (driver: %s)", types.DriverSqlite, types.DriverMysql, a.Config.Database.Driver)
	}

	if a.Config.Database.DSN == "" {
		return fmt.Errorf("database dsn must be set in the config")
	}

	if a.Config.SyncInterval < 0 {
		return fmt.Errorf("sync-interval must not be negative in the config (sync-interval: %d)", a.Config.SyncInterval)
	}

	for id, rpc := range a.Config.RPCs {
		if rpc == "" {
			return fmt.Errorf("rpc url must be set in the config (domain: %d)", id)
		}
	}

	return nil
}
