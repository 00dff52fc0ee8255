package types

import "fmt"

// FetchError is returned when the shared configuration can not be retrieved or parsed.
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("unable to fetch shared config from %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// DomainNotFoundError is returned when a supported domain is missing from the shared configuration.
type DomainNotFoundError struct {
	DomainID DomainID
}

func (e *DomainNotFoundError) Error() string {
	return fmt.Sprintf("domain with id %d not found in shared-config", e.DomainID)
}

// UnsupportedDomainTypeError is returned for a supported domain of an unknown chain family.
type UnsupportedDomainTypeError struct {
	DomainID DomainID
	Type     DomainType
}

func (e *UnsupportedDomainTypeError) Error() string {
	return fmt.Sprintf("domain %d has unsupported type %q", e.DomainID, e.Type)
}

// UnsupportedKindError is returned when a contract binding is requested for an unknown kind.
type UnsupportedKindError struct {
	Kind string
}

func (e *UnsupportedKindError) Error() string {
	return fmt.Sprintf("unsupported contract type %q", e.Kind)
}
