package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"cosmossdk.io/log"

	"github.com/sygmaprotocol/bridge-indexer/cmd"
	"github.com/sygmaprotocol/bridge-indexer/store"
	"github.com/sygmaprotocol/bridge-indexer/types"
)

// SharedConfigFile is the shared configuration fixture, relative to any package directory.
const SharedConfigFile = "../types/testdata/shared-config.json"

var logger log.Logger

func init() {
	logger = log.NewLogger(os.Stdout, log.LevelOption(zerolog.ErrorLevel))
}

func Logger() log.Logger {
	return logger
}

// NewStore opens a migrated sqlite store in a temporary directory.
func NewStore(t *testing.T) *store.Store {
	t.Helper()

	s, err := store.Open(types.DriverSqlite, filepath.Join(t.TempDir(), "indexer.db"))
	require.NoError(t, err, "Error opening store")
	require.NoError(t, s.Migrate(), "Error migrating store")
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func SharedConfigBytes(t *testing.T) []byte {
	t.Helper()

	bz, err := os.ReadFile(SharedConfigFile)
	require.NoError(t, err, "Error reading shared config fixture")
	return bz
}

func SharedConfig(t *testing.T) *types.SharedConfig {
	t.Helper()

	cfg := &types.SharedConfig{}
	require.NoError(t, json.Unmarshal(SharedConfigBytes(t), cfg))
	return cfg
}

// SharedConfigServer serves body as the shared configuration on every path.
func SharedConfigServer(t *testing.T, status int, body []byte) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write(body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

// ConfigSetup returns an AppState configured against sharedConfigURL with a
// temporary sqlite database.
func ConfigSetup(t *testing.T, sharedConfigURL string) *cmd.AppState {
	t.Helper()

	var testConfig = types.Config{
		SharedConfigURL:  sharedConfigURL,
		Stage:            "devnet",
		SupportedDomains: []types.DomainID{1, 3},
		Database: types.DatabaseSettings{
			Driver: types.DriverSqlite,
			DSN:    filepath.Join(t.TempDir(), "indexer.db"),
		},
		DomainMetadata: map[types.DomainID]types.DomainMetadata{
			1: {
				IconURL:     "https://scan.buildwithsygma.com/assets/icons/evm.svg",
				ExplorerURL: "https://sepolia.etherscan.io",
			},
		},
		API: types.APISettings{
			Listen: "127.0.0.1:0",
		},
	}

	a := cmd.NewAppState()
	a.LogLevel = "error"
	a.InitLogger()
	a.Config = &testConfig

	return a
}
