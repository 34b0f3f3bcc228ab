package store

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// encMode encodes canonically so that re-encoding a value always produces
// identical bytes, keeping content hashes stable. decMode decodes integers
// as int64 so a value read back from the cache has the same dynamic type as
// the value that was computed.
var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("store: failed to create CBOR enc mode: %v", err))
	}
	encMode = em
	dm, err := cbor.DecOptions{IntDec: cbor.IntDecConvertSignedOrFail}.DecMode()
	if err != nil {
		panic(fmt.Sprintf("store: failed to create CBOR dec mode: %v", err))
	}
	decMode = dm
}

// EncodeValue serializes a computed value to CBOR bytes.
func EncodeValue(value any) ([]byte, error) {
	data, err := encMode.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("store: encode value: %w", err)
	}
	return data, nil
}

// DecodeValue deserializes a computed value from CBOR bytes.
func DecodeValue(data []byte, out any) error {
	if err := decMode.Unmarshal(data, out); err != nil {
		return fmt.Errorf("store: decode value: %w", err)
	}
	return nil
}

func encodeMetadata(meta Metadata) ([]byte, error) {
	data, err := encMode.Marshal(meta)
	if err != nil {
		return nil, fmt.Errorf("store: encode metadata: %w", err)
	}
	return data, nil
}

func decodeMetadata(data []byte) (Metadata, error) {
	var meta Metadata
	if err := decMode.Unmarshal(data, &meta); err != nil {
		return Metadata{}, fmt.Errorf("store: decode metadata: %w", err)
	}
	return meta, nil
}

// ContentHash returns the hex SHA-256 digest of artifact bytes.
func ContentHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
