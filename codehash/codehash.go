// Package codehash computes deterministic fingerprints over a closure's
// code and its transitive references, for use as cache keys. A change to a
// function's logic, or to the logic of anything it references, changes the
// fingerprint and thereby invalidates cached values.
package codehash

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"hash"

	"github.com/fxamacker/cbor/v2"

	"github.com/HiveWang/bionic/bytecode"
	"github.com/HiveWang/bionic/coderefs"
	"github.com/HiveWang/bionic/object"
)

// encMode encodes values canonically so that equal values always produce
// identical bytes.
var encMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("codehash: failed to create CBOR enc mode: %v", err))
	}
	encMode = em
}

// Option configures fingerprint computation.
type Option func(*config)

type config struct {
	version string
}

// WithVersion folds an explicit user-declared version tag into the
// fingerprint. Bumping the tag forces invalidation even when the code and
// its references are unchanged, which covers dependencies the extractor
// cannot see (external data sources, native libraries).
func WithVersion(tag string) Option {
	return func(c *config) {
		c.version = tag
	}
}

// Fingerprint computes the version hash for a closure: a digest over its
// code, every reference the code reads, and recursively the code and
// references of any reference that is itself a closure. Self-referential
// and mutually-referential closures terminate via an identity-keyed
// visited set.
func Fingerprint(fn *object.Closure, opts ...Option) (string, error) {
	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}
	h := newHasher()
	if cfg.version != "" {
		h.writeLabel("version")
		h.writeString(cfg.version)
	}
	if err := h.hashClosure(fn); err != nil {
		return "", err
	}
	return h.digest(), nil
}

// FingerprintBuiltin computes the version hash for a Go-native function,
// which has no inspectable code: the digest covers its name and version
// tag only.
func FingerprintBuiltin(name, version string) string {
	h := newHasher()
	h.writeLabel("builtin")
	h.writeString(name)
	h.writeLabel("version")
	h.writeString(version)
	return h.digest()
}

// FingerprintValue computes the version hash for a fixed value.
func FingerprintValue(value any) (string, error) {
	h := newHasher()
	if err := h.hashValue(value); err != nil {
		return "", err
	}
	return h.digest(), nil
}

// Combine folds several fingerprints into one, order-sensitively. Used to
// derive an entity's provenance from its own fingerprint plus those of its
// dependencies.
func Combine(parts ...string) string {
	h := newHasher()
	for _, part := range parts {
		h.writeString(part)
	}
	return h.digest()
}

type hasher struct {
	h       hash.Hash
	visited map[any]struct{}
}

func newHasher() *hasher {
	return &hasher{
		h:       sha256.New(),
		visited: make(map[any]struct{}),
	}
}

func (h *hasher) digest() string {
	return hex.EncodeToString(h.h.Sum(nil))
}

func (h *hasher) writeLabel(label string) {
	// Labels separate fields so that adjacent variable-length values
	// cannot alias each other.
	h.writeString("\x00" + label)
}

func (h *hasher) writeString(s string) {
	var length [8]byte
	binary.BigEndian.PutUint64(length[:], uint64(len(s)))
	h.h.Write(length[:])
	h.h.Write([]byte(s))
}

func (h *hasher) writeEncoded(value any) error {
	data, err := encMode.Marshal(value)
	if err != nil {
		return fmt.Errorf("codehash: unable to encode %T value: %w", value, err)
	}
	h.writeString(string(data))
	return nil
}

func (h *hasher) hashClosure(fn *object.Closure) error {
	if _, seen := h.visited[fn]; seen {
		h.writeLabel("cycle")
		h.writeString(fn.Name())
		return nil
	}
	h.visited[fn] = struct{}{}

	if err := h.hashCode(fn.Code()); err != nil {
		return err
	}
	refs, err := coderefs.Extract(fn)
	if err != nil {
		return err
	}
	for _, ref := range refs {
		if err := h.hashReference(ref); err != nil {
			return err
		}
	}
	return nil
}

func (h *hasher) hashCode(code *bytecode.Code) error {
	h.writeLabel("code")
	h.writeString(code.Name())

	instructions := make([]byte, 0, code.InstructionCount()*2)
	for i := 0; i < code.InstructionCount(); i++ {
		word := code.InstructionAt(i)
		instructions = append(instructions, byte(word>>8), byte(word))
	}
	h.writeString(string(instructions))

	for i := 0; i < code.NameCount(); i++ {
		h.writeString(code.NameAt(i))
	}
	for i := 0; i < code.GlobalCount(); i++ {
		h.writeString(code.GlobalNameAt(i))
	}
	for i := 0; i < code.LocalCount(); i++ {
		h.writeString(code.LocalNameAt(i))
	}
	for _, name := range code.FreeNames() {
		h.writeString(name)
	}
	for _, name := range code.CellNames() {
		h.writeString(name)
	}

	h.writeLabel("constants")
	for i := 0; i < code.ConstantCount(); i++ {
		constant := code.ConstantAt(i)
		if fn, ok := constant.(*bytecode.Function); ok {
			// Nested function template: hash its code. Its references are
			// hashed when the nested closure is traced on its own.
			if err := h.hashCode(fn.Code()); err != nil {
				return err
			}
			continue
		}
		if err := h.writeEncoded(constant); err != nil {
			return err
		}
	}
	return nil
}

func (h *hasher) hashReference(ref coderefs.Reference) error {
	if !ref.IsResolved() {
		h.writeLabel("name")
		h.writeString(ref.Name())
		return nil
	}
	return h.hashValue(ref.Value())
}

func (h *hasher) hashValue(value any) error {
	switch v := value.(type) {
	case *object.Closure:
		return h.hashClosure(v)
	case *object.Builtin:
		h.writeLabel("builtin")
		h.writeString(v.Name())
		return nil
	case *object.Module:
		return h.hashModule(v)
	case *object.Instance:
		return h.hashInstance(v)
	case *object.Cell:
		h.writeLabel("cell")
		return h.hashValue(v.Value())
	case *bytecode.Function:
		return h.hashCode(v.Code())
	default:
		h.writeLabel("value")
		return h.writeEncoded(value)
	}
}

func (h *hasher) hashModule(m *object.Module) error {
	h.writeLabel("module")
	h.writeString(m.Name())
	if _, seen := h.visited[m]; seen {
		return nil
	}
	h.visited[m] = struct{}{}
	for _, name := range m.AttrNames() {
		h.writeString(name)
		attr, _ := m.GetAttr(name)
		if err := h.hashValue(attr); err != nil {
			return err
		}
	}
	return nil
}

func (h *hasher) hashInstance(inst *object.Instance) error {
	h.writeLabel("instance")
	h.writeString(inst.Name())
	return nil
}
