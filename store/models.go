package store

// Domain is a chain known to the indexer, keyed by its decimal domain ID.
type Domain struct {
	ID          string `gorm:"primaryKey;size:16" json:"id"`
	Type        string `gorm:"size:32" json:"type"`
	Name        string `json:"name"`
	IconURL     string `json:"iconURL"`
	ExplorerURL string `json:"explorerURL"`
}

// Token is the on-chain representation of an asset on one domain.
// (TokenAddress, DomainID) is the natural key; ID is assigned on first insert.
type Token struct {
	ID           string  `gorm:"primaryKey;size:36" json:"id"`
	TokenAddress string  `gorm:"size:512;uniqueIndex:idx_token_address_domain" json:"tokenAddress"`
	DomainID     string  `gorm:"size:16;uniqueIndex:idx_token_address_domain" json:"domainID"`
	TokenSymbol  string  `json:"tokenSymbol"`
	Decimals     uint8   `json:"decimals"`
	ResourceID   *string `gorm:"size:66" json:"resourceID,omitempty"`
}

// Resource is a bridge resource keyed by its lowercased resource ID.
type Resource struct {
	ID   string `gorm:"primaryKey;size:66" json:"id"`
	Type string `gorm:"size:32" json:"type"`
}
