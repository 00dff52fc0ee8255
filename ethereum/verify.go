package ethereum

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"cosmossdk.io/log"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"

	"github.com/sygmaprotocol/bridge-indexer/types"
)

// Mismatch is a difference between the shared configuration and chain state.
type Mismatch struct {
	DomainID   types.DomainID
	ResourceID string
	Field      string
	Declared   string
	OnChain    string
}

func (m Mismatch) String() string {
	return fmt.Sprintf("domain %d resource %s: %s declared %q, on-chain %q",
		m.DomainID, m.ResourceID, m.Field, m.Declared, m.OnChain)
}

// Verifier checks the resources an EVM domain declares against its contracts.
type Verifier struct {
	backend bind.ContractBackend
	logger  log.Logger
}

func NewVerifier(backend bind.ContractBackend, logger log.Logger) *Verifier {
	return &Verifier{backend: backend, logger: logger}
}

// Verify compares every fungible resource of domain with its token contract.
// When the domain has a fee router, the fee handler of each resource towards
// every domain in destinations must be one of the declared fee handlers.
func (v *Verifier) Verify(ctx context.Context, domain types.ConfigDomain, destinations []types.DomainID) ([]Mismatch, error) {
	if domain.Type != types.EVM {
		return nil, &types.UnsupportedDomainTypeError{DomainID: domain.ID, Type: domain.Type}
	}
	logger := v.logger.With("domain", domain.ID)

	var mismatches []Mismatch
	for _, r := range domain.Resources {
		res, ok := r.(*types.EvmResource)
		if !ok || res.Type != types.Fungible {
			continue
		}
		if !common.IsHexAddress(res.Address) {
			mismatches = append(mismatches, Mismatch{domain.ID, res.ResourceID, "address", res.Address, ""})
			continue
		}

		token, err := BindERC20(v.backend, common.HexToAddress(res.Address))
		if err != nil {
			return nil, err
		}
		symbol, err := token.Symbol(ctx)
		if err != nil {
			return nil, err
		}
		if symbol != res.Symbol {
			mismatches = append(mismatches, Mismatch{domain.ID, res.ResourceID, "symbol", res.Symbol, symbol})
		}
		decimals, err := token.Decimals(ctx)
		if err != nil {
			return nil, err
		}
		if decimals != res.Decimals {
			mismatches = append(mismatches, Mismatch{
				domain.ID, res.ResourceID, "decimals",
				strconv.Itoa(int(res.Decimals)), strconv.Itoa(int(decimals)),
			})
		}
		logger.Debug("Verified token", "resource", res.ResourceID, "symbol", symbol, "decimals", decimals)
	}

	if domain.FeeRouter == "" {
		return mismatches, nil
	}
	feeMismatches, err := v.verifyFeeHandlers(ctx, domain, destinations)
	if err != nil {
		return nil, err
	}
	return append(mismatches, feeMismatches...), nil
}

func (v *Verifier) verifyFeeHandlers(ctx context.Context, domain types.ConfigDomain, destinations []types.DomainID) ([]Mismatch, error) {
	router, err := BindFeeRouter(v.backend, common.HexToAddress(domain.FeeRouter))
	if err != nil {
		return nil, err
	}

	declared := make(map[common.Address]bool, len(domain.FeeHandlers))
	names := make([]string, 0, len(domain.FeeHandlers))
	for _, h := range domain.FeeHandlers {
		declared[common.HexToAddress(h.Address)] = true
		names = append(names, h.Address)
	}

	var mismatches []Mismatch
	for _, r := range domain.Resources {
		info := r.Info()
		if info.Type == types.PermissionlessGeneric {
			continue
		}
		for _, dest := range destinations {
			if dest == domain.ID {
				continue
			}
			handler, err := router.FeeHandler(ctx, dest, common.HexToHash(info.ResourceID))
			if err != nil {
				return nil, err
			}
			if !declared[handler] {
				mismatches = append(mismatches, Mismatch{
					domain.ID, info.ResourceID, fmt.Sprintf("feeHandler[%d]", dest),
					strings.Join(names, ","), handler.Hex(),
				})
			}
		}
	}
	return mismatches, nil
}
