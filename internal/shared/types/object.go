package types

import (
	"fmt"

	"github.com/bytedance/sonic"
)

// ObjectID is a globally unique, immutable object identity: 20 bytes,
// hex-encoded with a 0x prefix. Assigned once at creation, never reassigned,
// never reused after deletion.
type ObjectID string

// Address is a 20-byte account address, hex-encoded with a 0x prefix.
type Address string

// Version is a strictly increasing per-object sequence number. The first
// committed state of an object is version 1.
type Version uint64

// ObjectDigest is a content hash of an object's committed state, recomputed
// on every write.
type ObjectDigest string

// TransactionDigest identifies a committed transaction by content hash.
type TransactionDigest string

// TypeTag names the structural type of an object, fixed for the object's
// lifetime. Format: <package>::<module>::<struct>, e.g. "0x2::coin::Coin".
type TypeTag string

func (id ObjectID) String() string        { return string(id) }
func (a Address) String() string          { return string(a) }
func (d ObjectDigest) String() string     { return string(d) }
func (d TransactionDigest) String() string { return string(d) }
func (t TypeTag) String() string          { return string(t) }

// OwnerKind discriminates the four ownership forms.
type OwnerKind string

const (
	OwnerAddress   OwnerKind = "address"
	OwnerObject    OwnerKind = "object"
	OwnerShared    OwnerKind = "shared"
	OwnerImmutable OwnerKind = "immutable"
)

// Owner is the single-owner marker every live object carries. Exactly one of
// the optional fields is set, matching Kind; shared and immutable owners
// carry no payload.
type Owner struct {
	Kind    OwnerKind `json:"kind"`
	Address *Address  `json:"address,omitempty"`
	Object  *ObjectID `json:"object,omitempty"`
}

// OwnedByAddress builds an address owner.
func OwnedByAddress(addr Address) Owner {
	return Owner{Kind: OwnerAddress, Address: &addr}
}

// OwnedByObject builds an object (parent/child) owner.
func OwnedByObject(id ObjectID) Owner {
	return Owner{Kind: OwnerObject, Object: &id}
}

// SharedOwner builds the shared-state marker.
func SharedOwner() Owner {
	return Owner{Kind: OwnerShared}
}

// ImmutableOwner builds the immutable marker. Immutable objects reject
// mutation and transfer.
func ImmutableOwner() Owner {
	return Owner{Kind: OwnerImmutable}
}

// Equal reports whether two owners denote the same ownership.
func (o Owner) Equal(other Owner) bool {
	if o.Kind != other.Kind {
		return false
	}
	switch o.Kind {
	case OwnerAddress:
		return o.Address != nil && other.Address != nil && *o.Address == *other.Address
	case OwnerObject:
		return o.Object != nil && other.Object != nil && *o.Object == *other.Object
	default:
		return true
	}
}

func (o Owner) String() string {
	switch o.Kind {
	case OwnerAddress:
		if o.Address != nil {
			return fmt.Sprintf("address(%s)", *o.Address)
		}
	case OwnerObject:
		if o.Object != nil {
			return fmt.Sprintf("object(%s)", *o.Object)
		}
	case OwnerShared:
		return "shared"
	case OwnerImmutable:
		return "immutable"
	}
	return "invalid"
}

// ObjectRef pins an exact object state: identity, version, and the digest of
// the state at that version.
type ObjectRef struct {
	ID      ObjectID     `json:"id"`
	Version Version      `json:"version"`
	Digest  ObjectDigest `json:"digest"`
}

// VersionedObject is a live registry record. Version starts at 1 and
// increases by exactly 1 on every successful mutation or transfer. TypeTag
// is fixed for the object's lifetime.
type VersionedObject struct {
	ID         ObjectID               `json:"id"`
	Version    Version                `json:"version"`
	Owner      Owner                  `json:"owner"`
	TypeTag    TypeTag                `json:"type"`
	Fields     map[string]interface{} `json:"fields"`
	Digest     ObjectDigest           `json:"digest"`
	PreviousTx TransactionDigest      `json:"previous_tx,omitempty"`
}

// Ref returns the (id, version, digest) triple for the current state.
func (o *VersionedObject) Ref() ObjectRef {
	return ObjectRef{ID: o.ID, Version: o.Version, Digest: o.Digest}
}

// Clone returns a deep copy. Fields are copied through a canonical JSON
// round-trip so callers can never alias registry-held state.
func (o *VersionedObject) Clone() *VersionedObject {
	dup := *o
	dup.Fields = CloneFields(o.Fields)
	if o.Owner.Address != nil {
		addr := *o.Owner.Address
		dup.Owner.Address = &addr
	}
	if o.Owner.Object != nil {
		obj := *o.Owner.Object
		dup.Owner.Object = &obj
	}
	return &dup
}

// CloneFields deep-copies a field map via a JSON round-trip. A nil map
// clones to an empty map so callers can always index the result.
func CloneFields(fields map[string]interface{}) map[string]interface{} {
	if len(fields) == 0 {
		return map[string]interface{}{}
	}
	raw, err := sonic.Marshal(fields)
	if err != nil {
		// Field maps come from JSON-compatible sources; marshal failure
		// indicates a programming error upstream.
		panic(fmt.Sprintf("types: unmarshalable fields: %v", err))
	}
	out := make(map[string]interface{}, len(fields))
	if err := sonic.Unmarshal(raw, &out); err != nil {
		panic(fmt.Sprintf("types: field round-trip failed: %v", err))
	}
	return out
}
