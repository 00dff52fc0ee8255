package indexer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"cosmossdk.io/log"

	"github.com/sygmaprotocol/bridge-indexer/store"
	"github.com/sygmaprotocol/bridge-indexer/types"
)

// Store runs a set of upserts atomically.
type Store interface {
	Transaction(ctx context.Context, fn func(w store.Writer) error) error
}

// MetadataLookup supplies display metadata for a domain. *types.Config implements it.
type MetadataLookup interface {
	Metadata(id types.DomainID) types.DomainMetadata
}

type ConfigFetcher interface {
	Fetch(url string) (*types.SharedConfig, error)
}

// Synchronizer reconciles the shared configuration into the store.
type Synchronizer struct {
	store    Store
	metadata MetadataLookup
	logger   log.Logger
	metrics  *PromMetrics
}

// NewSynchronizer returns a Synchronizer. metrics may be nil.
func NewSynchronizer(s Store, metadata MetadataLookup, logger log.Logger, metrics *PromMetrics) *Synchronizer {
	return &Synchronizer{
		store:    s,
		metadata: metadata,
		logger:   logger,
		metrics:  metrics,
	}
}

// Run fetches the shared configuration from url and synchronizes the supported domains.
func (s *Synchronizer) Run(ctx context.Context, fetcher ConfigFetcher, url string, supported []types.DomainID) error {
	cfg, err := fetcher.Fetch(url)
	if err != nil {
		return err
	}
	return s.InsertDomains(ctx, cfg.Domains, supported)
}

// InsertDomains upserts each supported domain, its native token, resources and
// resource tokens, in the order of supported. Every domain is committed in its
// own transaction; the first failure aborts the run and leaves earlier domains
// committed.
func (s *Synchronizer) InsertDomains(ctx context.Context, domains []types.ConfigDomain, supported []types.DomainID) error {
	cfg := types.SharedConfig{Domains: domains}
	for _, id := range supported {
		domain, ok := cfg.Domain(id)
		if !ok {
			err := &types.DomainNotFoundError{DomainID: id}
			s.logger.Error("Supported domain missing from shared config", "domain", id, "err", err)
			s.metrics.observeDomain(id.String(), statusFailure)
			return err
		}

		if err := s.syncDomain(ctx, domain); err != nil {
			s.logger.Error("Failed to synchronize domain", "domain", id, "name", domain.Name, "err", err)
			s.metrics.observeDomain(id.String(), statusFailure)
			return err
		}
		s.metrics.observeDomain(id.String(), statusSuccess)
	}
	s.metrics.setLastSync(time.Now())
	return nil
}

func (s *Synchronizer) syncDomain(ctx context.Context, domain types.ConfigDomain) error {
	switch domain.Type {
	case types.EVM, types.Substrate:
	default:
		return &types.UnsupportedDomainTypeError{DomainID: domain.ID, Type: domain.Type}
	}

	logger := s.logger.With("domain", domain.ID)
	meta := s.metadata.Metadata(domain.ID)
	domainID := domain.ID.String()
	upserts := make(map[string]int)

	err := s.store.Transaction(ctx, func(w store.Writer) error {
		err := w.UpsertDomain(ctx, store.Domain{
			ID:          domainID,
			Type:        string(domain.Type),
			Name:        domain.Name,
			IconURL:     meta.IconURL,
			ExplorerURL: meta.ExplorerURL,
		})
		if err != nil {
			return err
		}
		upserts["domain"]++

		err = w.UpsertToken(ctx, store.Token{
			TokenAddress: types.NativeTokenAddress,
			DomainID:     domainID,
			TokenSymbol:  domain.NativeTokenSymbol,
			Decimals:     domain.NativeTokenDecimals,
		})
		if err != nil {
			return err
		}
		upserts["token"]++

		for _, r := range domain.Resources {
			info := r.Info()
			err := w.UpsertResource(ctx, store.Resource{
				ID:   strings.ToLower(info.ResourceID),
				Type: string(info.Type),
			})
			if err != nil {
				return err
			}
			upserts["resource"]++

			// generic resources carry no token
			if info.Type == types.PermissionlessGeneric {
				continue
			}

			address, err := tokenAddress(r)
			if err != nil {
				return err
			}
			resourceID := info.ResourceID
			err = w.UpsertToken(ctx, store.Token{
				TokenAddress: address,
				DomainID:     domainID,
				TokenSymbol:  info.Symbol,
				Decimals:     info.Decimals,
				ResourceID:   &resourceID,
			})
			if err != nil {
				return err
			}
			upserts["token"]++
		}
		return nil
	})
	if err != nil {
		return err
	}

	for entity, n := range upserts {
		s.metrics.observeUpserts(entity, n)
	}
	logger.Info("Synchronized domain", "name", domain.Name, "type", domain.Type, "resources", len(domain.Resources))
	return nil
}

// tokenAddress derives the token address of a resource from its chain family.
func tokenAddress(r types.ConfigResource) (string, error) {
	switch r := r.(type) {
	case *types.EvmResource:
		return r.Address, nil
	case *types.SubstrateResource:
		if r.XcmMultiAssetID.IsZero() {
			return "", fmt.Errorf("resource %s has no xcm asset id", r.ResourceID)
		}
		return r.XcmMultiAssetID.String(), nil
	default:
		return "", fmt.Errorf("unknown resource variant %T", r)
	}
}
