package types

import (
	"strconv"
	"strings"
)

// NativeTokenAddress is the token address recorded for a domain's native currency.
const NativeTokenAddress = "0x0000000000000000000000000000000000000000"

// DomainID is the bridge-wide numeric identifier of a chain.
type DomainID uint32

// String returns the decimal form used as the persisted domain key.
func (d DomainID) String() string {
	return strconv.FormatUint(uint64(d), 10)
}

// ParseDomainID parses a decimal domain ID.
func ParseDomainID(s string) (DomainID, error) {
	id, err := strconv.ParseUint(strings.TrimSpace(s), 10, 32)
	if err != nil {
		return 0, err
	}
	return DomainID(id), nil
}

// DomainType is the chain family of a domain.
type DomainType string

const (
	EVM       DomainType = "evm"
	Substrate DomainType = "substrate"
)

// ResourceType is the declared kind of a bridge resource.
type ResourceType string

const (
	Fungible              ResourceType = "fungible"
	NonFungible           ResourceType = "nonfungible"
	PermissionedGeneric   ResourceType = "permissionedGeneric"
	PermissionlessGeneric ResourceType = "permissionlessGeneric"
)
