package ethereum

import (
	"context"
	"embed"
	"fmt"
	"math/big"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"

	"github.com/sygmaprotocol/bridge-indexer/types"
)

//go:embed abi/*.json
var abiFS embed.FS

// ContractType is the on-chain interface a Contract is bound with.
type ContractType uint8

const (
	ERC20 ContractType = iota
	FeeRouter

	numContractTypes
)

// Adding a ContractType without an ABI entry below must fail the build:
// update abiFiles and the index in this guard together.
func _() {
	var x [1]struct{}
	_ = x[numContractTypes-2]
}

var abiFiles = [numContractTypes]string{
	ERC20:     "abi/ERC20.json",
	FeeRouter: "abi/FeeHandlerRouter.json",
}

var contractTypeNames = [numContractTypes]string{
	ERC20:     "ERC20",
	FeeRouter: "FeeRouter",
}

func (t ContractType) String() string {
	if t < numContractTypes {
		return contractTypeNames[t]
	}
	return fmt.Sprintf("ContractType(%d)", uint8(t))
}

// ParseContractType maps a contract type name (case insensitive) to its ContractType.
func ParseContractType(name string) (ContractType, error) {
	for i, n := range contractTypeNames {
		if strings.EqualFold(n, name) {
			return ContractType(i), nil
		}
	}
	return 0, &types.UnsupportedKindError{Kind: name}
}

var (
	abiOnce   sync.Once
	parsedABI [numContractTypes]abi.ABI
	abiErr    error
)

// ABI returns the parsed interface for kind.
func ABI(kind ContractType) (abi.ABI, error) {
	if kind >= numContractTypes {
		return abi.ABI{}, &types.UnsupportedKindError{Kind: kind.String()}
	}
	abiOnce.Do(func() {
		for i, file := range abiFiles {
			f, err := abiFS.Open(file)
			if err != nil {
				abiErr = fmt.Errorf("unable to open %s: %w", file, err)
				return
			}
			parsedABI[i], err = abi.JSON(f)
			f.Close()
			if err != nil {
				abiErr = fmt.Errorf("unable to parse %s: %w", file, err)
				return
			}
		}
	})
	if abiErr != nil {
		return abi.ABI{}, abiErr
	}
	return parsedABI[kind], nil
}

// Contract is a deployed contract bound to the interface of its ContractType.
type Contract struct {
	*bind.BoundContract

	Kind    ContractType
	Address common.Address
	ABI     abi.ABI
}

// Bind selects the interface for kind and binds it to address over backend.
func Bind(backend bind.ContractBackend, address common.Address, kind ContractType) (*Contract, error) {
	parsed, err := ABI(kind)
	if err != nil {
		return nil, err
	}
	return &Contract{
		BoundContract: bind.NewBoundContract(address, parsed, backend, backend, backend),
		Kind:          kind,
		Address:       address,
		ABI:           parsed,
	}, nil
}

func (c *Contract) call(ctx context.Context, method string, params ...interface{}) ([]interface{}, error) {
	var out []interface{}
	err := c.Call(&bind.CallOpts{Context: ctx}, &out, method, params...)
	if err != nil {
		return nil, fmt.Errorf("%s.%s at %s: %w", c.Kind, method, c.Address, err)
	}
	return out, nil
}

type ERC20Token struct {
	*Contract
}

func BindERC20(backend bind.ContractBackend, address common.Address) (*ERC20Token, error) {
	c, err := Bind(backend, address, ERC20)
	if err != nil {
		return nil, err
	}
	return &ERC20Token{c}, nil
}

func (t *ERC20Token) Symbol(ctx context.Context) (string, error) {
	out, err := t.call(ctx, "symbol")
	if err != nil {
		return "", err
	}
	return *abi.ConvertType(out[0], new(string)).(*string), nil
}

func (t *ERC20Token) Decimals(ctx context.Context) (uint8, error) {
	out, err := t.call(ctx, "decimals")
	if err != nil {
		return 0, err
	}
	return *abi.ConvertType(out[0], new(uint8)).(*uint8), nil
}

func (t *ERC20Token) BalanceOf(ctx context.Context, account common.Address) (*big.Int, error) {
	out, err := t.call(ctx, "balanceOf", account)
	if err != nil {
		return nil, err
	}
	return *abi.ConvertType(out[0], new(*big.Int)).(**big.Int), nil
}

type FeeRouterContract struct {
	*Contract
}

func BindFeeRouter(backend bind.ContractBackend, address common.Address) (*FeeRouterContract, error) {
	c, err := Bind(backend, address, FeeRouter)
	if err != nil {
		return nil, err
	}
	return &FeeRouterContract{c}, nil
}

// FeeHandler returns the fee handler registered for deposits of resourceID
// towards destination. The zero address means none is registered.
func (r *FeeRouterContract) FeeHandler(ctx context.Context, destination types.DomainID, resourceID common.Hash) (common.Address, error) {
	if destination > 255 {
		return common.Address{}, fmt.Errorf("domain %d does not fit the fee router domain width", destination)
	}
	out, err := r.call(ctx, "_domainResourceIDToFeeHandlerAddress", uint8(destination), [32]byte(resourceID))
	if err != nil {
		return common.Address{}, err
	}
	return *abi.ConvertType(out[0], new(common.Address)).(*common.Address), nil
}
