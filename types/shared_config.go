package types

import (
	"encoding/json"
	"fmt"
)

// SharedConfig is the upstream published bridge topology.
type SharedConfig struct {
	Domains []ConfigDomain `json:"domains"`
}

// Domain returns the domain with the given ID.
func (c *SharedConfig) Domain(id DomainID) (ConfigDomain, bool) {
	for _, d := range c.Domains {
		if d.ID == id {
			return d, true
		}
	}
	return ConfigDomain{}, false
}

// ConfigDomain describes one chain of the shared configuration.
type ConfigDomain struct {
	ID                  DomainID         `json:"id"`
	Name                string           `json:"name"`
	Type                DomainType       `json:"type"`
	Bridge              string           `json:"bridge"`
	FeeRouter           string           `json:"feeRouter"`
	FeeHandlers         []Handler        `json:"feeHandlers"`
	Handlers            []Handler        `json:"handlers"`
	NativeTokenSymbol   string           `json:"nativeTokenSymbol"`
	NativeTokenDecimals uint8            `json:"nativeTokenDecimals"`
	StartBlock          uint64           `json:"startBlock"`
	Resources           []ConfigResource `json:"resources"`
}

type Handler struct {
	Type    string `json:"type"`
	Address string `json:"address"`
}

// UnmarshalJSON decodes resources into the variant matching the domain type.
// Resources of an unknown chain family are dropped; the synchronizer refuses
// such domains before writing anything.
func (d *ConfigDomain) UnmarshalJSON(bz []byte) error {
	type domainAlias ConfigDomain
	var aux struct {
		domainAlias
		Resources []json.RawMessage `json:"resources"`
	}
	if err := json.Unmarshal(bz, &aux); err != nil {
		return err
	}

	*d = ConfigDomain(aux.domainAlias)
	d.Resources = nil

	switch d.Type {
	case EVM, Substrate:
	default:
		return nil
	}

	d.Resources = make([]ConfigResource, 0, len(aux.Resources))
	for i, raw := range aux.Resources {
		var r ConfigResource
		if d.Type == EVM {
			r = &EvmResource{}
		} else {
			r = &SubstrateResource{}
		}
		if err := json.Unmarshal(raw, r); err != nil {
			return fmt.Errorf("domain %d: resource %d: %w", d.ID, i, err)
		}
		d.Resources = append(d.Resources, r)
	}
	return nil
}

// ConfigResource is either an *EvmResource or a *SubstrateResource.
type ConfigResource interface {
	Info() ResourceInfo
	configResource()
}

// ResourceInfo holds the fields shared by both resource variants.
type ResourceInfo struct {
	ResourceID string       `json:"resourceId"`
	Type       ResourceType `json:"type"`
	Symbol     string       `json:"symbol"`
	Decimals   uint8        `json:"decimals"`
}

func (r ResourceInfo) Info() ResourceInfo {
	return r
}

type EvmResource struct {
	ResourceInfo
	Address string `json:"address"`
}

type SubstrateResource struct {
	ResourceInfo
	Address         string     `json:"address,omitempty"`
	AssetName       string     `json:"assetName"`
	XcmMultiAssetID XcmAssetID `json:"xcmMultiAssetId"`
}

func (*EvmResource) configResource()       {}
func (*SubstrateResource) configResource() {}
