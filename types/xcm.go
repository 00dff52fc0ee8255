package types

import (
	"bytes"
	"encoding/json"
	"errors"
)

// XcmAssetID is a structured cross-chain asset identifier of a Substrate resource.
// Its contents are opaque; String returns a canonical JSON form (object keys sorted,
// numbers kept verbatim) so that equal identifiers always produce equal strings.
type XcmAssetID struct {
	canonical string
}

func (x *XcmAssetID) UnmarshalJSON(bz []byte) error {
	dec := json.NewDecoder(bytes.NewReader(bz))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return err
	}
	if v == nil {
		return errors.New("xcmMultiAssetId is null")
	}

	canonical, err := json.Marshal(v)
	if err != nil {
		return err
	}
	x.canonical = string(canonical)
	return nil
}

func (x XcmAssetID) MarshalJSON() ([]byte, error) {
	if x.canonical == "" {
		return []byte("null"), nil
	}
	return []byte(x.canonical), nil
}

func (x XcmAssetID) String() string {
	return x.canonical
}

// IsZero reports whether the identifier was never set.
func (x XcmAssetID) IsZero() bool {
	return x.canonical == ""
}
