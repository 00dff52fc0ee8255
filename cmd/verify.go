package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/spf13/cobra"

	"github.com/sygmaprotocol/bridge-indexer/ethereum"
	"github.com/sygmaprotocol/bridge-indexer/sharedconfig"
	"github.com/sygmaprotocol/bridge-indexer/types"
)

// Dialer connects to the chain of a domain.
type Dialer func(ctx context.Context, rpcURL string) (bind.ContractBackend, func(), error)

func dialEthclient(ctx context.Context, rpcURL string) (bind.ContractBackend, func(), error) {
	client, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, nil, err
	}
	return client, client.Close, nil
}

func verifyCmd(a *AppState) *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Compare the resources of supported EVM domains with their contracts",
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.InitAppState()
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return Verify(cmd.Context(), a, dialEthclient, cmd.OutOrStdout())
		},
	}
}

// Verify checks every supported EVM domain that has an rpc url configured and
// prints the mismatches found to out.
func Verify(ctx context.Context, a *AppState, dial Dialer, out io.Writer) error {
	cfg, err := sharedconfig.NewFetcher(a.Logger, a.Config.Stage).Fetch(a.Config.SharedConfigURL)
	if err != nil {
		return err
	}

	total := 0
	for _, id := range a.Config.SupportedDomains {
		domain, ok := cfg.Domain(id)
		if !ok {
			return &types.DomainNotFoundError{DomainID: id}
		}
		if domain.Type != types.EVM {
			continue
		}
		rpcURL, ok := a.Config.RPCs[id]
		if !ok {
			a.Logger.Info("Skipping domain without rpc url", "domain", id)
			continue
		}

		n, err := verifyDomain(ctx, a, dial, rpcURL, domain, out)
		if err != nil {
			return fmt.Errorf("domain %d: %w", id, err)
		}
		total += n
	}

	if total > 0 {
		return fmt.Errorf("found %d mismatches", total)
	}
	return nil
}

func verifyDomain(ctx context.Context, a *AppState, dial Dialer, rpcURL string, domain types.ConfigDomain, out io.Writer) (int, error) {
	backend, closeFn, err := dial(ctx, rpcURL)
	if err != nil {
		return 0, err
	}
	defer closeFn()

	mismatches, err := ethereum.NewVerifier(backend, a.Logger).Verify(ctx, domain, a.Config.SupportedDomains)
	if err != nil {
		return 0, err
	}
	for _, m := range mismatches {
		fmt.Fprintln(out, m.String())
	}
	a.Logger.Info("Verified domain", "domain", domain.ID, "name", domain.Name, "mismatches", len(mismatches))
	return len(mismatches), nil
}
