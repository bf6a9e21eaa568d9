package schema

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"

	"github.com/lagoonledger/lagoon/internal/shared/errs"
	"github.com/lagoonledger/lagoon/internal/shared/id"
	"github.com/lagoonledger/lagoon/internal/shared/types"
)

// FieldKind is the declared kind of a struct field. JSON values are checked
// against it: numeric kinds accept JSON numbers within range (u64/u128 also
// accept decimal strings, since JSON numbers lose precision past 2^53),
// address accepts 20-byte hex strings.
type FieldKind string

const (
	KindBool    FieldKind = "bool"
	KindU8      FieldKind = "u8"
	KindU64     FieldKind = "u64"
	KindU128    FieldKind = "u128"
	KindAddress FieldKind = "address"
	KindString  FieldKind = "string"
	KindVector  FieldKind = "vector"
	KindStruct  FieldKind = "struct"
)

// Field is one declared struct field.
type Field struct {
	Name string    `json:"name"`
	Kind FieldKind `json:"kind"`
}

// StructDef declares the shape of a type tag. Field order is the
// declaration order, preserved for normalized metadata.
type StructDef struct {
	Tag    types.TypeTag `json:"tag"`
	Fields []Field       `json:"fields"`
}

// FunctionDef declares a function exposed by a module, for normalized
// metadata only; this library does not execute them.
type FunctionDef struct {
	Name       string      `json:"name"`
	Parameters []FieldKind `json:"parameters"`
	Returns    []FieldKind `json:"returns"`
}

// Module groups the structs and functions of one module within a package.
type Module struct {
	Name      string                 `json:"name"`
	Structs   map[string]StructDef   `json:"structs"`
	Functions map[string]FunctionDef `json:"functions"`
}

// Package is a registered package: an address plus its modules.
type Package struct {
	ID      string            `json:"id"`
	Address types.Address     `json:"address"`
	Modules map[string]Module `json:"modules"`
}

// Registry is the thread-safe type registry.
type Registry struct {
	mu       sync.RWMutex
	packages map[types.Address]*Package
	structs  map[types.TypeTag]StructDef
}

// NewRegistry creates an empty type registry.
func NewRegistry() *Registry {
	return &Registry{
		packages: make(map[types.Address]*Package),
		structs:  make(map[types.TypeTag]StructDef),
	}
}

// RegisterPackage registers a package and indexes every struct it declares
// under its full tag. Re-registering an address replaces the previous
// registration.
func (r *Registry) RegisterPackage(addr types.Address, modules map[string]Module) *Package {
	r.mu.Lock()
	defer r.mu.Unlock()

	pkg := &Package{ID: id.NewPackageID(), Address: addr, Modules: modules}
	r.packages[addr] = pkg
	for modName, mod := range modules {
		for structName, def := range mod.Structs {
			tag := types.TypeTag(fmt.Sprintf("%s::%s::%s", addr, modName, structName))
			def.Tag = tag
			r.structs[tag] = def
		}
	}
	return pkg
}

// RegisterStruct registers a single struct under an explicit tag. Intended
// for tests and ad-hoc types without a full package.
func (r *Registry) RegisterStruct(tag types.TypeTag, fields []Field) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.structs[tag] = StructDef{Tag: tag, Fields: fields}
}

// Lookup returns the struct definition for a tag.
func (r *Registry) Lookup(tag types.TypeTag) (StructDef, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.structs[tag]
	return def, ok
}

// PackageByAddress returns a registered package.
func (r *Registry) PackageByAddress(addr types.Address) (*Package, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	pkg, ok := r.packages[addr]
	return pkg, ok
}

// Tags returns every registered tag, sorted.
func (r *Registry) Tags() []types.TypeTag {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tags := make([]types.TypeTag, 0, len(r.structs))
	for tag := range r.structs {
		tags = append(tags, tag)
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i] < tags[j] })
	return tags
}

// Validate checks a full field map against the registered shape of tag.
// Every declared field must be present with a kind-compatible value, and no
// undeclared fields may appear. Unknown tags fail the same way shape
// violations do.
func (r *Registry) Validate(tag types.TypeTag, fields map[string]interface{}) error {
	def, ok := r.Lookup(tag)
	if !ok {
		return errs.InvalidType(string(tag), "type not registered")
	}

	declared := make(map[string]FieldKind, len(def.Fields))
	for _, f := range def.Fields {
		declared[f.Name] = f.Kind
		value, present := fields[f.Name]
		if !present {
			return errs.InvalidType(string(tag), "missing field %q", f.Name)
		}
		if err := checkKind(f.Kind, value); err != nil {
			return errs.InvalidType(string(tag), "field %q: %v", f.Name, err)
		}
	}
	for name := range fields {
		if _, ok := declared[name]; !ok {
			return errs.InvalidType(string(tag), "unknown field %q", name)
		}
	}
	return nil
}

// ValidatePartial checks a subset of fields against the shape of tag. Used
// for mutations, which set some fields and leave the rest untouched.
func (r *Registry) ValidatePartial(tag types.TypeTag, fields map[string]interface{}) error {
	def, ok := r.Lookup(tag)
	if !ok {
		return errs.InvalidType(string(tag), "type not registered")
	}

	declared := make(map[string]FieldKind, len(def.Fields))
	for _, f := range def.Fields {
		declared[f.Name] = f.Kind
	}
	for name, value := range fields {
		kind, ok := declared[name]
		if !ok {
			return errs.InvalidType(string(tag), "unknown field %q", name)
		}
		if err := checkKind(kind, value); err != nil {
			return errs.InvalidType(string(tag), "field %q: %v", name, err)
		}
	}
	return nil
}

func checkKind(kind FieldKind, value interface{}) error {
	switch kind {
	case KindBool:
		if _, ok := value.(bool); !ok {
			return fmt.Errorf("expected bool, got %T", value)
		}
	case KindU8:
		n, err := asUint(value)
		if err != nil {
			return err
		}
		if n > math.MaxUint8 {
			return fmt.Errorf("value %d exceeds u8", n)
		}
	case KindU64, KindU128:
		// u128 shares the u64 JSON representation; values past u64 range
		// must arrive as decimal strings and are accepted unparsed.
		if s, ok := value.(string); ok {
			if !isDecimal(s) {
				return fmt.Errorf("expected unsigned integer, got %q", s)
			}
			return nil
		}
		if _, err := asUint(value); err != nil {
			return err
		}
	case KindAddress:
		s, ok := value.(string)
		if !ok {
			return fmt.Errorf("expected address string, got %T", value)
		}
		if !id.IsValidAddress(s) {
			return fmt.Errorf("malformed address %q", s)
		}
	case KindString:
		if _, ok := value.(string); !ok {
			return fmt.Errorf("expected string, got %T", value)
		}
	case KindVector:
		if _, ok := value.([]interface{}); !ok {
			return fmt.Errorf("expected array, got %T", value)
		}
	case KindStruct:
		if _, ok := value.(map[string]interface{}); !ok {
			return fmt.Errorf("expected object, got %T", value)
		}
	default:
		return fmt.Errorf("unknown field kind %q", kind)
	}
	return nil
}

// asUint accepts the numeric shapes a JSON decode can produce.
func asUint(value interface{}) (uint64, error) {
	switch n := value.(type) {
	case float64:
		if n < 0 || n != math.Trunc(n) {
			return 0, fmt.Errorf("expected unsigned integer, got %v", n)
		}
		return uint64(n), nil
	case int:
		if n < 0 {
			return 0, fmt.Errorf("expected unsigned integer, got %d", n)
		}
		return uint64(n), nil
	case int64:
		if n < 0 {
			return 0, fmt.Errorf("expected unsigned integer, got %d", n)
		}
		return uint64(n), nil
	case uint64:
		return n, nil
	default:
		return 0, fmt.Errorf("expected unsigned integer, got %T", value)
	}
}

func isDecimal(s string) bool {
	if s == "" {
		return false
	}
	return strings.IndexFunc(s, func(r rune) bool { return r < '0' || r > '9' }) == -1
}
