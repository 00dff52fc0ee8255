package testutil

import (
	"context"
	"fmt"
	"math/big"
	"testing"

	geth "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"github.com/sygmaprotocol/bridge-indexer/ethereum"
)

// CallResult computes the outputs of a contract call from its decoded arguments.
type CallResult func(args []interface{}) []interface{}

func Returns(values ...interface{}) CallResult {
	return func([]interface{}) []interface{} { return values }
}

// FakeBackend answers eth_call with canned results per contract and method.
// Anything other than CallContract panics.
type FakeBackend struct {
	bind.ContractBackend

	Err error

	abis    map[common.Address]abi.ABI
	results map[common.Address]map[string]CallResult
}

func NewFakeBackend() *FakeBackend {
	return &FakeBackend{
		abis:    make(map[common.Address]abi.ABI),
		results: make(map[common.Address]map[string]CallResult),
	}
}

func (b *FakeBackend) Set(t *testing.T, addr common.Address, kind ethereum.ContractType, method string, res CallResult) {
	t.Helper()

	parsed, err := ethereum.ABI(kind)
	require.NoError(t, err)
	b.abis[addr] = parsed
	if b.results[addr] == nil {
		b.results[addr] = make(map[string]CallResult)
	}
	b.results[addr][method] = res
}

func (b *FakeBackend) CallContract(_ context.Context, msg geth.CallMsg, _ *big.Int) ([]byte, error) {
	if b.Err != nil {
		return nil, b.Err
	}
	parsed, ok := b.abis[*msg.To]
	if !ok {
		return nil, fmt.Errorf("no contract at %s", msg.To)
	}
	method, err := parsed.MethodById(msg.Data[:4])
	if err != nil {
		return nil, err
	}
	res, ok := b.results[*msg.To][method.Name]
	if !ok {
		return nil, fmt.Errorf("unexpected call to %s", method.Name)
	}
	args, err := method.Inputs.Unpack(msg.Data[4:])
	if err != nil {
		return nil, err
	}
	return method.Outputs.Pack(res(args)...)
}
