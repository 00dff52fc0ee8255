package indexer_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"cosmossdk.io/log"
	"github.com/prometheus/client_golang/prometheus"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/sygmaprotocol/bridge-indexer/indexer"
	"github.com/sygmaprotocol/bridge-indexer/sharedconfig"
	"github.com/sygmaprotocol/bridge-indexer/store"
	testutil "github.com/sygmaprotocol/bridge-indexer/test_util"
	"github.com/sygmaprotocol/bridge-indexer/types"
)

const xcmUSDC = `{"concrete":{"interior":{"x3":[{"parachain":2004},{"generalKey":"0x7379676d61"},{"generalKey":"0x75736463"}]},"parents":1}}`

func strPtr(s string) *string { return &s }

type snapshot struct {
	Domains   []store.Domain
	Tokens    []store.Token
	Resources []store.Resource
}

func takeSnapshot(t *testing.T, s *store.Store) snapshot {
	t.Helper()
	ctx := context.Background()

	domains, err := s.Domains(ctx)
	require.NoError(t, err)
	tokens, err := s.Tokens(ctx)
	require.NoError(t, err)
	resources, err := s.Resources(ctx)
	require.NoError(t, err)
	return snapshot{domains, tokens, resources}
}

// withoutIDs drops synthetic token keys so rows can be compared by value.
func withoutIDs(tokens []store.Token) []store.Token {
	out := make([]store.Token, 0, len(tokens))
	for _, tok := range tokens {
		tok.ID = ""
		out = append(out, tok)
	}
	return out
}

func newSynchronizer(s indexer.Store, cfg *types.Config) *indexer.Synchronizer {
	return indexer.NewSynchronizer(s, cfg, log.NewNopLogger(), nil)
}

func TestInsertDomainsScenario(t *testing.T) {
	s := testutil.NewStore(t)
	domains := []types.ConfigDomain{{
		ID:                  1,
		Type:                types.EVM,
		Name:                "Test",
		NativeTokenSymbol:   "TST",
		NativeTokenDecimals: 18,
		Resources: []types.ConfigResource{
			&types.EvmResource{
				ResourceInfo: types.ResourceInfo{ResourceID: "0xAA", Type: types.Fungible, Symbol: "TST2", Decimals: 6},
				Address:      "0xCAFE",
			},
		},
	}}

	err := newSynchronizer(s, &types.Config{}).InsertDomains(context.Background(), domains, []types.DomainID{1})
	require.NoError(t, err)

	snap := takeSnapshot(t, s)
	require.Equal(t, []store.Domain{{ID: "1", Type: "evm", Name: "Test"}}, snap.Domains)
	require.Equal(t, []store.Resource{{ID: "0xaa", Type: "fungible"}}, snap.Resources)
	require.Equal(t, []store.Token{
		{TokenAddress: types.NativeTokenAddress, DomainID: "1", TokenSymbol: "TST", Decimals: 18},
		{TokenAddress: "0xCAFE", DomainID: "1", TokenSymbol: "TST2", Decimals: 6, ResourceID: strPtr("0xAA")},
	}, withoutIDs(snap.Tokens))
}

func TestInsertDomainsIsIdempotent(t *testing.T) {
	s := testutil.NewStore(t)
	cfg := testutil.SharedConfig(t)
	sync := newSynchronizer(s, &types.Config{})
	supported := []types.DomainID{1, 3}

	require.NoError(t, sync.InsertDomains(context.Background(), cfg.Domains, supported))
	first := takeSnapshot(t, s)

	require.NoError(t, sync.InsertDomains(context.Background(), cfg.Domains, supported))
	require.Equal(t, first, takeSnapshot(t, s))
}

func TestInsertDomainsFixture(t *testing.T) {
	s := testutil.NewStore(t)
	cfg := testutil.SharedConfig(t)
	appCfg := &types.Config{
		DomainMetadata: map[types.DomainID]types.DomainMetadata{
			1: {IconURL: "https://icons.example/eth.svg", ExplorerURL: "https://sepolia.etherscan.io"},
		},
	}

	err := newSynchronizer(s, appCfg).InsertDomains(context.Background(), cfg.Domains, []types.DomainID{1, 3})
	require.NoError(t, err)

	snap := takeSnapshot(t, s)
	require.Equal(t, []store.Domain{
		{ID: "1", Type: "evm", Name: "ethereum", IconURL: "https://icons.example/eth.svg", ExplorerURL: "https://sepolia.etherscan.io"},
		{ID: "3", Type: "substrate", Name: "rococo-phala"},
	}, snap.Domains)

	// both resource kinds are recorded, only the fungible one gets a token
	require.Equal(t, []store.Resource{
		{ID: "0x0000000000000000000000000000000000000000000000000000000000000300", Type: "fungible"},
		{ID: "0x0000000000000000000000000000000000000000000000000000000000000500", Type: "permissionlessGeneric"},
	}, snap.Resources)

	resourceID := "0x0000000000000000000000000000000000000000000000000000000000000300"
	require.Equal(t, []store.Token{
		{TokenAddress: types.NativeTokenAddress, DomainID: "1", TokenSymbol: "eth", Decimals: 18},
		{TokenAddress: "0x7d58589b6C1Ba455c4060a3B3e9C1E4aF4EA7Bc8", DomainID: "1", TokenSymbol: "ERC20LRTest", Decimals: 18, ResourceID: &resourceID},
		{TokenAddress: types.NativeTokenAddress, DomainID: "3", TokenSymbol: "pha", Decimals: 12},
		{TokenAddress: xcmUSDC, DomainID: "3", TokenSymbol: "USDC", Decimals: 18, ResourceID: &resourceID},
	}, withoutIDs(snap.Tokens))
}

func TestInsertDomainsResourceIDCasing(t *testing.T) {
	s := testutil.NewStore(t)
	domains := []types.ConfigDomain{{
		ID:   1,
		Type: types.EVM,
		Name: "Test",
		Resources: []types.ConfigResource{
			&types.EvmResource{
				ResourceInfo: types.ResourceInfo{ResourceID: "0xAbCdEf", Type: types.NonFungible, Symbol: "NFT"},
				Address:      "0xBEEF",
			},
		},
	}}

	require.NoError(t, newSynchronizer(s, &types.Config{}).InsertDomains(context.Background(), domains, []types.DomainID{1}))

	snap := takeSnapshot(t, s)
	require.Equal(t, []store.Resource{{ID: "0xabcdef", Type: "nonfungible"}}, snap.Resources)

	tokens, err := s.TokensByDomain(context.Background(), "1")
	require.NoError(t, err)
	require.Len(t, tokens, 2)
	require.Equal(t, "0xBEEF", tokens[1].TokenAddress)
	require.Equal(t, "0xAbCdEf", *tokens[1].ResourceID)
}

func TestInsertDomainsEqualXcmIdentifiersShareToken(t *testing.T) {
	s := testutil.NewStore(t)
	cfg := &types.SharedConfig{}
	err := json.Unmarshal([]byte(`{"domains":[{"id":5,"type":"substrate","name":"phala","nativeTokenSymbol":"pha","nativeTokenDecimals":12,"resources":[
		{"resourceId":"0x01","type":"fungible","symbol":"A","decimals":6,"xcmMultiAssetId":{"parents":1,"interior":"here"}},
		{"resourceId":"0x02","type":"fungible","symbol":"B","decimals":8,"xcmMultiAssetId":{"interior":"here","parents":1}}
	]}]}`), cfg)
	require.NoError(t, err)

	require.NoError(t, newSynchronizer(s, &types.Config{}).InsertDomains(context.Background(), cfg.Domains, []types.DomainID{5}))

	tokens, err := s.TokensByDomain(context.Background(), "5")
	require.NoError(t, err)
	require.Len(t, tokens, 2)
	require.Equal(t, `{"interior":"here","parents":1}`, tokens[1].TokenAddress)
	// the later resource wins the shared natural key
	require.Equal(t, "B", tokens[1].TokenSymbol)
	require.Equal(t, "0x02", *tokens[1].ResourceID)
}

func TestInsertDomainsFailsFastOnMissingDomain(t *testing.T) {
	s := testutil.NewStore(t)
	cfg := testutil.SharedConfig(t)

	err := newSynchronizer(s, &types.Config{}).InsertDomains(context.Background(), cfg.Domains[:1], []types.DomainID{1, 2})
	var notFound *types.DomainNotFoundError
	require.ErrorAs(t, err, &notFound)
	require.Equal(t, types.DomainID(2), notFound.DomainID)

	snap := takeSnapshot(t, s)
	require.Len(t, snap.Domains, 1)
	require.Equal(t, "1", snap.Domains[0].ID)

	tokens, err := s.TokensByDomain(context.Background(), "2")
	require.NoError(t, err)
	require.Empty(t, tokens)
}

func TestInsertDomainsRejectsUnknownFamily(t *testing.T) {
	s := testutil.NewStore(t)
	cfg := testutil.SharedConfig(t)

	err := newSynchronizer(s, &types.Config{}).InsertDomains(context.Background(), cfg.Domains, []types.DomainID{4})
	var typeErr *types.UnsupportedDomainTypeError
	require.ErrorAs(t, err, &typeErr)
	require.Equal(t, types.DomainType("btc"), typeErr.Type)
	require.Empty(t, takeSnapshot(t, s).Domains)
}

func TestInsertDomainsRejectsSubstrateResourceWithoutXcmID(t *testing.T) {
	s := testutil.NewStore(t)
	domains := []types.ConfigDomain{{
		ID:   3,
		Type: types.Substrate,
		Name: "phala",
		Resources: []types.ConfigResource{
			&types.SubstrateResource{ResourceInfo: types.ResourceInfo{ResourceID: "0x01", Type: types.Fungible}},
		},
	}}

	err := newSynchronizer(s, &types.Config{}).InsertDomains(context.Background(), domains, []types.DomainID{3})
	require.ErrorContains(t, err, "no xcm asset id")
	require.Equal(t, snapshot{[]store.Domain{}, []store.Token{}, []store.Resource{}}, takeSnapshot(t, s))
}

var errWrite = errors.New("disk full")

// failingStore fails the first resource upsert inside a transaction.
type failingStore struct {
	*store.Store
}

type failingWriter struct {
	store.Writer
}

func (f failingWriter) UpsertResource(context.Context, store.Resource) error {
	return errWrite
}

func (f failingStore) Transaction(ctx context.Context, fn func(w store.Writer) error) error {
	return f.Store.Transaction(ctx, func(w store.Writer) error {
		return fn(failingWriter{w})
	})
}

func TestInsertDomainsRollsBackFailedDomain(t *testing.T) {
	s := testutil.NewStore(t)
	cfg := testutil.SharedConfig(t)

	err := newSynchronizer(failingStore{s}, &types.Config{}).InsertDomains(context.Background(), cfg.Domains, []types.DomainID{1, 3})
	require.Equal(t, errWrite, err)

	// domain and native token of the failed domain are rolled back too
	require.Equal(t, snapshot{[]store.Domain{}, []store.Token{}, []store.Resource{}}, takeSnapshot(t, s))
}

func TestRun(t *testing.T) {
	s := testutil.NewStore(t)
	srv := testutil.SharedConfigServer(t, http.StatusOK, testutil.SharedConfigBytes(t))
	reg := prometheus.NewRegistry()
	metrics := indexer.NewPromMetrics(reg)
	fetcher := sharedconfig.NewFetcher(log.NewNopLogger(), "devnet")

	sync := indexer.NewSynchronizer(s, &types.Config{}, log.NewNopLogger(), metrics)
	require.NoError(t, sync.Run(context.Background(), fetcher, srv.URL, []types.DomainID{1, 3}))

	require.Len(t, takeSnapshot(t, s).Domains, 2)
	require.Equal(t, float64(1), promtestutil.ToFloat64(metrics.DomainSyncs.WithLabelValues("1", "success")))
	require.Equal(t, float64(1), promtestutil.ToFloat64(metrics.DomainSyncs.WithLabelValues("3", "success")))
	require.Equal(t, float64(2), promtestutil.ToFloat64(metrics.Upserts.WithLabelValues("domain")))
	require.Equal(t, float64(3), promtestutil.ToFloat64(metrics.Upserts.WithLabelValues("resource")))
	require.Equal(t, float64(4), promtestutil.ToFloat64(metrics.Upserts.WithLabelValues("token")))
	require.NotZero(t, promtestutil.ToFloat64(metrics.LastSync))

	require.Error(t, sync.Run(context.Background(), fetcher, srv.URL, []types.DomainID{1, 2}))
	require.Equal(t, float64(1), promtestutil.ToFloat64(metrics.DomainSyncs.WithLabelValues("2", "failure")))
}

func TestRunFetchFailure(t *testing.T) {
	s := testutil.NewStore(t)
	srv := testutil.SharedConfigServer(t, http.StatusInternalServerError, []byte(`{}`))
	fetcher := sharedconfig.NewFetcher(log.NewNopLogger(), "devnet")

	err := newSynchronizer(s, &types.Config{}).Run(context.Background(), fetcher, srv.URL, []types.DomainID{1})
	var fetchErr *types.FetchError
	require.ErrorAs(t, err, &fetchErr)
	require.Empty(t, takeSnapshot(t, s).Domains)
}
