package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lagoonledger/lagoon/internal/infrastructure/logging"
	"github.com/lagoonledger/lagoon/internal/infrastructure/monitoring"
	"github.com/lagoonledger/lagoon/internal/schema"
	"github.com/lagoonledger/lagoon/internal/shared/errs"
	"github.com/lagoonledger/lagoon/internal/shared/id"
	"github.com/lagoonledger/lagoon/internal/shared/types"
	"github.com/lagoonledger/lagoon/internal/shared/utils"
)

// Updater mutates a record's field map in place. It runs on a deep copy;
// returning an error abandons the mutation with the record untouched.
type Updater func(fields map[string]interface{}) error

// SetFields returns an updater that merges the given fields into the record.
func SetFields(fields map[string]interface{}) Updater {
	return func(dst map[string]interface{}) error {
		for k, v := range fields {
			dst[k] = v
		}
		return nil
	}
}

// Registry is the typed object store. Safe for concurrent use.
type Registry struct {
	mu         sync.RWMutex
	objects    map[types.ObjectID]*types.VersionedObject
	tombstones map[types.ObjectID]types.Version

	schemas *schema.Registry
	limits  *utils.SizeValidator
	log     *logging.Logger
	metrics *monitoring.Metrics

	// Identity derivation state for creations outside a transaction: a
	// per-registry random origin plus a counter, so two registries never
	// derive colliding identities.
	origin  types.TransactionDigest
	counter uint64
}

// New creates an empty registry. log and metrics may be nil.
func New(schemas *schema.Registry, log *logging.Logger, metrics *monitoring.Metrics) *Registry {
	if log == nil {
		log = logging.NewNop()
	}
	return &Registry{
		objects:    make(map[types.ObjectID]*types.VersionedObject),
		tombstones: make(map[types.ObjectID]types.Version),
		schemas:    schemas,
		limits:     utils.FieldsValidator(),
		log:        log.Named("registry"),
		metrics:    metrics,
		origin:     types.TransactionDigest("origin-" + uuid.NewString()),
	}
}

// Schemas exposes the schema registry backing shape checks.
func (r *Registry) Schemas() *schema.Registry { return r.schemas }

// Create allocates a fresh identity and stores a new record at version 1.
// Fields must match the registered shape of typeTag.
func (r *Registry) Create(typeTag types.TypeTag, fields map[string]interface{}, owner types.Owner) (types.ObjectRef, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	oid := id.DeriveObjectID(r.origin, r.counter)
	r.counter++
	return r.createLocked(oid, typeTag, fields, owner, "")
}

// CreateFromTx allocates an identity derived from the creating transaction's
// digest and the zero-based creation counter within it, then stores the
// record. Used by backends so replays derive identical identities.
func (r *Registry) CreateFromTx(tx types.TransactionDigest, counter uint64, typeTag types.TypeTag, fields map[string]interface{}, owner types.Owner) (types.ObjectRef, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.createLocked(id.DeriveObjectID(tx, counter), typeTag, fields, owner, tx)
}

func (r *Registry) createLocked(oid types.ObjectID, typeTag types.TypeTag, fields map[string]interface{}, owner types.Owner, tx types.TransactionDigest) (types.ObjectRef, error) {
	if err := r.schemas.Validate(typeTag, fields); err != nil {
		return types.ObjectRef{}, err
	}
	if err := r.limits.ValidateFields(fields); err != nil {
		return types.ObjectRef{}, err
	}
	if _, exists := r.objects[oid]; exists {
		return types.ObjectRef{}, fmt.Errorf("identity collision on %s", oid)
	}
	if _, deleted := r.tombstones[oid]; deleted {
		return types.ObjectRef{}, fmt.Errorf("identity %s was deleted and cannot be reused", oid)
	}

	obj := &types.VersionedObject{
		ID:         oid,
		Version:    1,
		Owner:      owner,
		TypeTag:    typeTag,
		Fields:     types.CloneFields(fields),
		PreviousTx: tx,
	}
	obj.Digest = digestOf(obj)
	r.objects[oid] = obj

	if r.metrics != nil {
		r.metrics.ObjectsCreated.Inc()
		r.metrics.ObjectsLive.Set(float64(len(r.objects)))
	}
	r.log.Debug("object created",
		zap.String("id", string(oid)),
		zap.String("type", string(typeTag)),
		zap.String("owner", owner.String()))
	return obj.Ref(), nil
}

// Get returns a deep copy of the record for the given identity.
func (r *Registry) Get(oid types.ObjectID) (*types.VersionedObject, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	obj, ok := r.objects[oid]
	if !ok {
		return nil, errs.NotFound(string(oid))
	}
	return obj.Clone(), nil
}

// Mutate applies updater to the record and increments its version by 1.
//
// The version check is an optimistic-concurrency guard: the updater runs on
// a private copy without any lock held, and the result is swapped in only
// if the record is still at expectedVersion. A concurrent writer that got
// there first surfaces as a VersionConflict, never a silent overwrite.
func (r *Registry) Mutate(oid types.ObjectID, expectedVersion types.Version, updater Updater) (*types.VersionedObject, error) {
	r.mu.RLock()
	current, ok := r.objects[oid]
	if !ok {
		r.mu.RUnlock()
		return nil, errs.NotFound(string(oid))
	}
	if current.Version != expectedVersion {
		actual := current.Version
		r.mu.RUnlock()
		r.conflict(oid, expectedVersion, actual)
		return nil, errs.VersionConflict(string(oid), uint64(expectedVersion), uint64(actual))
	}
	if current.Owner.Kind == types.OwnerImmutable {
		r.mu.RUnlock()
		return nil, errs.Immutable(string(oid))
	}
	draft := current.Clone()
	r.mu.RUnlock()

	if err := updater(draft.Fields); err != nil {
		return nil, fmt.Errorf("updater failed: %w", err)
	}
	if err := r.schemas.Validate(draft.TypeTag, draft.Fields); err != nil {
		return nil, err
	}
	if err := r.limits.ValidateFields(draft.Fields); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok = r.objects[oid]
	if !ok {
		return nil, errs.NotFound(string(oid))
	}
	if current.Version != expectedVersion {
		r.conflict(oid, expectedVersion, current.Version)
		return nil, errs.VersionConflict(string(oid), uint64(expectedVersion), uint64(current.Version))
	}

	draft.Version = expectedVersion + 1
	draft.Digest = digestOf(draft)
	r.objects[oid] = draft

	if r.metrics != nil {
		r.metrics.ObjectsMutated.Inc()
	}
	r.log.Debug("object mutated",
		zap.String("id", string(oid)),
		zap.Uint64("version", uint64(draft.Version)))
	return draft.Clone(), nil
}

// Transfer atomically swaps the record's owner and increments its version.
// At no point can a reader observe the record without exactly one owner.
func (r *Registry) Transfer(oid types.ObjectID, newOwner types.Owner) (types.ObjectRef, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.objects[oid]
	if !ok {
		return types.ObjectRef{}, errs.NotFound(string(oid))
	}
	if current.Owner.Kind == types.OwnerImmutable {
		return types.ObjectRef{}, errs.Immutable(string(oid))
	}

	next := current.Clone()
	next.Owner = newOwner
	next.Version = current.Version + 1
	next.Digest = digestOf(next)
	r.objects[oid] = next

	if r.metrics != nil {
		r.metrics.ObjectsTransferred.Inc()
	}
	r.log.Debug("object transferred",
		zap.String("id", string(oid)),
		zap.String("owner", newOwner.String()))
	return next.Ref(), nil
}

// Delete removes the record permanently and tombstones its identity.
func (r *Registry) Delete(oid types.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.objects[oid]
	if !ok {
		return errs.NotFound(string(oid))
	}
	delete(r.objects, oid)
	r.tombstones[oid] = current.Version

	if r.metrics != nil {
		r.metrics.ObjectsDeleted.Inc()
		r.metrics.ObjectsLive.Set(float64(len(r.objects)))
	}
	r.log.Debug("object deleted", zap.String("id", string(oid)))
	return nil
}

// OwnedBy returns deep copies of every record with the given owner, sorted
// by identity for stable output.
func (r *Registry) OwnedBy(owner types.Owner) []*types.VersionedObject {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*types.VersionedObject
	for _, obj := range r.objects {
		if obj.Owner.Equal(owner) {
			out = append(out, obj.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Len returns the number of live records.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.objects)
}

// LiveRefs returns the (id, version, digest) triples of every live record,
// sorted by identity.
func (r *Registry) LiveRefs() []types.ObjectRef {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.liveRefsLocked()
}

func (r *Registry) liveRefsLocked() []types.ObjectRef {
	refs := make([]types.ObjectRef, 0, len(r.objects))
	for _, obj := range r.objects {
		refs = append(refs, obj.Ref())
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i].ID < refs[j].ID })
	return refs
}

func (r *Registry) conflict(oid types.ObjectID, expected, actual types.Version) {
	if r.metrics != nil {
		r.metrics.VersionConflicts.Inc()
	}
	r.log.Debug("version conflict",
		zap.String("id", string(oid)),
		zap.Uint64("expected", uint64(expected)),
		zap.Uint64("actual", uint64(actual)))
}

// digestOf hashes the record's canonical encoding. ConfigStd sorts map keys,
// so equal states always hash equally.
func digestOf(obj *types.VersionedObject) types.ObjectDigest {
	shadow := *obj
	shadow.Digest = ""
	raw, err := sonic.ConfigStd.Marshal(&shadow)
	if err != nil {
		panic(fmt.Sprintf("registry: object not canonically encodable: %v", err))
	}
	return id.ObjectDigest(raw)
}
