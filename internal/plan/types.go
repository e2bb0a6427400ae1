package plan

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"

	"mapgen/internal/analyze"
)

// MappingModel is everything needed to analyze and emit one mapping. It is
// built once per directive and never modified afterwards.
type MappingModel struct {
	// Namespace is the destination package path; empty for the root namespace.
	Namespace string
	// PkgName is the destination package clause name.
	PkgName string
	Dest    analyze.TypeDescriptor
	Src     analyze.TypeDescriptor
	// DestProps are in declaration order, which fixes both diagnostic order
	// and assignment order.
	DestProps []analyze.PropertyDescriptor
	SrcProps  []analyze.PropertyDescriptor
	// DirectiveLocation is used for diagnostics on properties without a
	// location of their own.
	DirectiveLocation analyze.Location
}

// SourceFor returns the first source property named exactly name.
func (m *MappingModel) SourceFor(name string) (analyze.PropertyDescriptor, bool) {
	for _, sp := range m.SrcProps {
		if sp.Name == name {
			return sp, true
		}
	}

	return analyze.PropertyDescriptor{}, false
}

// LocationOf returns where diagnostics about dp should point.
func (m *MappingModel) LocationOf(dp analyze.PropertyDescriptor) analyze.Location {
	if dp.Location.IsValid() {
		return dp.Location
	}

	return m.DirectiveLocation
}

// SamePackage reports whether source and destination share a package.
func (m *MappingModel) SamePackage() bool {
	return m.Src.ID.PkgPath == m.Dest.ID.PkgPath
}

// String identifies the model in logs: "Order -> OrderDto".
func (m *MappingModel) String() string {
	return fmt.Sprintf("%s -> %s", m.Src.ID, m.Dest.ID)
}

// Digest is a SHA-256 content hash.
type Digest [sha256.Size]byte

// String returns the hex form of the digest.
func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}

// Fingerprint hashes the canonical msgpack encoding of the model. Equal
// models always have equal fingerprints, across processes.
func (m *MappingModel) Fingerprint() (Digest, error) {
	data, err := msgpack.Marshal(m)
	if err != nil {
		return Digest{}, fmt.Errorf("encoding model %s: %w", m, err)
	}

	return sha256.Sum256(data), nil
}
