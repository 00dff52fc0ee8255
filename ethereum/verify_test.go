package ethereum_test

import (
	"context"
	"errors"
	"testing"

	"cosmossdk.io/log"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"github.com/sygmaprotocol/bridge-indexer/ethereum"
	testutil "github.com/sygmaprotocol/bridge-indexer/test_util"
	"github.com/sygmaprotocol/bridge-indexer/types"
)

var (
	tokenAddr  = common.HexToAddress("0x7d58589b6C1Ba455c4060a3B3e9C1E4aF4EA7Bc8")
	routerAddr = common.HexToAddress("0x1CcB4231f2ff299E1E049De76F0a1D2B415C563A")
	feeHandler = common.HexToAddress("0x9f9778DA7c1D6c0b9D0c2B0c0D0E4B4e4F4F4F4F")
)

func evmDomain(t *testing.T) types.ConfigDomain {
	cfg := testutil.SharedConfig(t)
	d, ok := cfg.Domain(1)
	require.True(t, ok)
	return d
}

func TestVerifyMatchingDomain(t *testing.T) {
	backend := testutil.NewFakeBackend()
	backend.Set(t, tokenAddr, ethereum.ERC20, "symbol", testutil.Returns("ERC20LRTest"))
	backend.Set(t, tokenAddr, ethereum.ERC20, "decimals", testutil.Returns(uint8(18)))
	backend.Set(t, routerAddr, ethereum.FeeRouter, "_domainResourceIDToFeeHandlerAddress", testutil.Returns(feeHandler))

	v := ethereum.NewVerifier(backend, log.NewNopLogger())
	mismatches, err := v.Verify(context.Background(), evmDomain(t), []types.DomainID{1, 3})
	require.NoError(t, err)
	require.Empty(t, mismatches)
}

func TestVerifyReportsMismatches(t *testing.T) {
	backend := testutil.NewFakeBackend()
	backend.Set(t, tokenAddr, ethereum.ERC20, "symbol", testutil.Returns("LRT"))
	backend.Set(t, tokenAddr, ethereum.ERC20, "decimals", testutil.Returns(uint8(6)))
	backend.Set(t, routerAddr, ethereum.FeeRouter, "_domainResourceIDToFeeHandlerAddress", testutil.Returns(common.Address{}))

	v := ethereum.NewVerifier(backend, log.NewNopLogger())
	mismatches, err := v.Verify(context.Background(), evmDomain(t), []types.DomainID{1, 3})
	require.NoError(t, err)

	resourceID := "0x0000000000000000000000000000000000000000000000000000000000000300"
	require.Equal(t, []ethereum.Mismatch{
		{DomainID: 1, ResourceID: resourceID, Field: "symbol", Declared: "ERC20LRTest", OnChain: "LRT"},
		{DomainID: 1, ResourceID: resourceID, Field: "decimals", Declared: "18", OnChain: "6"},
		{DomainID: 1, ResourceID: resourceID, Field: "feeHandler[3]", Declared: "0x9f9778DA7c1D6c0b9D0c2B0c0D0E4B4e4F4F4F4F", OnChain: common.Address{}.Hex()},
	}, mismatches)
}

func TestVerifyPropagatesRPCErrors(t *testing.T) {
	backend := testutil.NewFakeBackend()
	backend.Err = errors.New("connection refused")

	v := ethereum.NewVerifier(backend, log.NewNopLogger())
	_, err := v.Verify(context.Background(), evmDomain(t), nil)
	require.ErrorIs(t, err, backend.Err)
}

func TestVerifyRejectsSubstrateDomain(t *testing.T) {
	cfg := testutil.SharedConfig(t)
	d, ok := cfg.Domain(3)
	require.True(t, ok)

	v := ethereum.NewVerifier(testutil.NewFakeBackend(), log.NewNopLogger())
	_, err := v.Verify(context.Background(), d, nil)
	var typeErr *types.UnsupportedDomainTypeError
	require.ErrorAs(t, err, &typeErr)
	require.Equal(t, types.DomainID(3), typeErr.DomainID)
}
