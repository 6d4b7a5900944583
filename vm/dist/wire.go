package dist

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// cborEncMode uses canonical mode so equal states encode to equal bytes.
var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("dist: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// MarshalState serializes a StateRecord to CBOR bytes.
func MarshalState(r *StateRecord) ([]byte, error) {
	return cborEncMode.Marshal(r)
}

// UnmarshalState deserializes a StateRecord from CBOR bytes.
func UnmarshalState(data []byte) (*StateRecord, error) {
	var r StateRecord
	if err := cbor.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("dist: unmarshal state: %w", err)
	}
	if r.Version != FormatVersion {
		return nil, fmt.Errorf("dist: unsupported state version %d", r.Version)
	}
	return &r, nil
}
