// Package id provides centralized identity generation for the ledger.
//
// Two identity families exist:
//   - Object identities and digests: content-derived via SHA3, matching the
//     ledger rule that an ObjectID is a function of the creating
//     transaction's digest and a creation counter. Never random, never
//     reused.
//   - Operational identities (subscriptions, packages): prefixed ULIDs,
//     lexicographically sortable and readable in logs (sub_*, pkg_*).
//
// Design Principles:
//   - Deterministic object IDs: replaying a transaction derives the same IDs
//   - Prefixed ULIDs: type-specific prefixes for debugging
//   - Zero conflicts: derivation namespace and ULID namespace never overlap
package id

import (
	"crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"golang.org/x/crypto/sha3"

	"github.com/lagoonledger/lagoon/internal/shared/types"
)

// AddressLength is the byte length of addresses and object IDs.
const AddressLength = 20

// SubscriptionID identifies a live event subscription.
type SubscriptionID string

func (id SubscriptionID) String() string { return string(id) }

const (
	subscriptionPrefix = "sub"
	packagePrefix      = "pkg"
)

// Generator generates prefixed ULIDs.
type Generator struct {
	entropy   io.Reader
	entropyMu sync.Mutex // Protects entropy reader
}

var (
	defaultGenerator *Generator
	once             sync.Once
)

// Default returns the singleton generator instance.
func Default() *Generator {
	once.Do(func() {
		defaultGenerator = NewGenerator()
	})
	return defaultGenerator
}

// NewGenerator creates a generator backed by crypto/rand entropy.
func NewGenerator() *Generator {
	return &Generator{entropy: rand.Reader}
}

// NewGeneratorWithEntropy creates a generator with a custom entropy source.
// Useful for deterministic tests.
func NewGeneratorWithEntropy(entropy io.Reader) *Generator {
	return &Generator{entropy: entropy}
}

// Generate creates a new ULID.
func (g *Generator) Generate() ulid.ULID {
	g.entropyMu.Lock()
	defer g.entropyMu.Unlock()

	return ulid.MustNew(ulid.Timestamp(time.Now()), g.entropy)
}

// GenerateWithPrefix creates a prefixed ULID string.
func (g *Generator) GenerateWithPrefix(prefix string) string {
	return fmt.Sprintf("%s_%s", prefix, g.Generate().String())
}

// NewSubscriptionID generates a subscription identity.
func NewSubscriptionID() SubscriptionID {
	return SubscriptionID(Default().GenerateWithPrefix(subscriptionPrefix))
}

// NewPackageID generates a package registration identity.
func NewPackageID() string {
	return Default().GenerateWithPrefix(packagePrefix)
}

// DeriveObjectID derives a fresh object identity from the creating
// transaction's digest and the zero-based creation counter within that
// transaction. The derivation is deterministic: re-running the same
// transaction yields the same identities.
func DeriveObjectID(tx types.TransactionDigest, counter uint64) types.ObjectID {
	h := sha3.New256()
	h.Write([]byte(tx))
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], counter)
	h.Write(buf[:])
	sum := h.Sum(nil)
	return types.ObjectID("0x" + hex.EncodeToString(sum[:AddressLength]))
}

// ObjectDigest hashes an object's canonical encoding.
func ObjectDigest(canonical []byte) types.ObjectDigest {
	sum := sha3.Sum256(canonical)
	return types.ObjectDigest("0x" + hex.EncodeToString(sum[:]))
}

// TransactionDigest hashes a transaction's canonical encoding.
func TransactionDigest(canonical []byte) types.TransactionDigest {
	sum := sha3.Sum256(canonical)
	return types.TransactionDigest("0x" + hex.EncodeToString(sum[:]))
}

// RandomAddress generates a fresh account address. Test and genesis use
// only; real addresses are derived from key material outside this library.
func RandomAddress() types.Address {
	var raw [AddressLength]byte
	if _, err := rand.Read(raw[:]); err != nil {
		panic(fmt.Sprintf("id: entropy unavailable: %v", err))
	}
	return types.Address("0x" + hex.EncodeToString(raw[:]))
}

// ParseAddress validates and normalizes a hex address string.
func ParseAddress(s string) (types.Address, error) {
	raw, err := decodeHex(s, AddressLength)
	if err != nil {
		return "", fmt.Errorf("invalid address %q: %w", s, err)
	}
	return types.Address("0x" + hex.EncodeToString(raw)), nil
}

// ParseObjectID validates and normalizes a hex object identity string.
func ParseObjectID(s string) (types.ObjectID, error) {
	raw, err := decodeHex(s, AddressLength)
	if err != nil {
		return "", fmt.Errorf("invalid object id %q: %w", s, err)
	}
	return types.ObjectID("0x" + hex.EncodeToString(raw)), nil
}

// IsValidAddress reports whether s is a well-formed address.
func IsValidAddress(s string) bool {
	_, err := ParseAddress(s)
	return err == nil
}

func decodeHex(s string, want int) ([]byte, error) {
	trimmed := strings.TrimPrefix(strings.ToLower(s), "0x")
	raw, err := hex.DecodeString(trimmed)
	if err != nil {
		return nil, err
	}
	if len(raw) != want {
		return nil, fmt.Errorf("expected %d bytes, got %d", want, len(raw))
	}
	return raw, nil
}
