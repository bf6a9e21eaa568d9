package registry

import (
	"fmt"
	"io"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"

	"github.com/lagoonledger/lagoon/internal/shared/types"
	"github.com/lagoonledger/lagoon/internal/shared/utils"
)

// snapshot is the serialized registry state.
type snapshot struct {
	Objects    []*types.VersionedObject        `json:"objects"`
	Tombstones map[types.ObjectID]types.Version `json:"tombstones"`
	Counter    uint64                           `json:"counter"`
}

// Clone returns an isolated deep copy sharing the schema registry but no
// mutable state. Dry-run execution runs against a clone so the live store
// is never touched.
func (r *Registry) Clone() *Registry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	dup := &Registry{
		objects:    make(map[types.ObjectID]*types.VersionedObject, len(r.objects)),
		tombstones: make(map[types.ObjectID]types.Version, len(r.tombstones)),
		schemas:    r.schemas,
		limits:     r.limits,
		log:        r.log,
		// Clones are scratch space; their activity must not skew metrics.
		metrics: nil,
		origin:  types.TransactionDigest("origin-" + uuid.NewString()),
		counter: r.counter,
	}
	for oid, obj := range r.objects {
		dup.objects[oid] = obj.Clone()
	}
	for oid, v := range r.tombstones {
		dup.tombstones[oid] = v
	}
	return dup
}

// Adopt replaces the registry's state with that of src, typically a clone
// the caller has finished mutating. The swap is wholesale: either the whole
// of src's state becomes visible or none of it. src must not be used after
// the call.
func (r *Registry) Adopt(src *Registry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.objects = src.objects
	r.tombstones = src.tombstones
	r.counter = src.counter
	if r.metrics != nil {
		r.metrics.ObjectsLive.Set(float64(len(r.objects)))
	}
}

// Export writes the full registry state to w as zstd-compressed canonical
// JSON.
func (r *Registry) Export(w io.Writer) error {
	r.mu.RLock()
	snap := snapshot{
		Objects:    make([]*types.VersionedObject, 0, len(r.objects)),
		Tombstones: make(map[types.ObjectID]types.Version, len(r.tombstones)),
		Counter:    r.counter,
	}
	for _, ref := range r.liveRefsLocked() {
		snap.Objects = append(snap.Objects, r.objects[ref.ID].Clone())
	}
	for oid, v := range r.tombstones {
		snap.Tombstones[oid] = v
	}
	r.mu.RUnlock()

	raw, err := sonic.ConfigStd.Marshal(&snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	enc, err := zstd.NewWriter(w)
	if err != nil {
		return fmt.Errorf("open zstd writer: %w", err)
	}
	if _, err := enc.Write(raw); err != nil {
		enc.Close()
		return fmt.Errorf("write snapshot: %w", err)
	}
	return enc.Close()
}

// Import replaces the registry state with a snapshot previously written by
// Export. Existing state is discarded.
func (r *Registry) Import(rd io.Reader) error {
	dec, err := zstd.NewReader(rd)
	if err != nil {
		return fmt.Errorf("open zstd reader: %w", err)
	}
	defer dec.Close()

	raw, err := io.ReadAll(io.LimitReader(dec, utils.MaxSnapshotSize+1))
	if err != nil {
		return fmt.Errorf("read snapshot: %w", err)
	}
	if len(raw) > utils.MaxSnapshotSize {
		return fmt.Errorf("snapshot exceeds maximum size %d bytes", utils.MaxSnapshotSize)
	}
	var snap snapshot
	if err := sonic.Unmarshal(raw, &snap); err != nil {
		return fmt.Errorf("decode snapshot: %w", err)
	}

	// Validate the whole snapshot before touching registry state, so a bad
	// entry cannot leave the store half-replaced.
	objects := make(map[types.ObjectID]*types.VersionedObject, len(snap.Objects))
	for i, obj := range snap.Objects {
		if obj == nil {
			return fmt.Errorf("snapshot object %d is null", i)
		}
		if obj.ID == "" {
			return fmt.Errorf("snapshot object %d has no identity", i)
		}
		if _, dup := objects[obj.ID]; dup {
			return fmt.Errorf("snapshot names object %s twice", obj.ID)
		}
		objects[obj.ID] = obj
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.objects = objects
	r.tombstones = snap.Tombstones
	if r.tombstones == nil {
		r.tombstones = make(map[types.ObjectID]types.Version)
	}
	r.counter = snap.Counter

	if r.metrics != nil {
		r.metrics.ObjectsLive.Set(float64(len(r.objects)))
	}
	return nil
}

