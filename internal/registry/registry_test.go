package registry

import (
	"errors"
	"sync"
	"testing"

	"github.com/lagoonledger/lagoon/internal/schema"
	"github.com/lagoonledger/lagoon/internal/shared/errs"
	"github.com/lagoonledger/lagoon/internal/shared/id"
	"github.com/lagoonledger/lagoon/internal/shared/types"
)

const colorTag = types.TypeTag("0x2::display::Color")

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	schemas := schema.NewRegistry()
	schemas.RegisterStruct(colorTag, []schema.Field{
		{Name: "red", Kind: schema.KindU8},
		{Name: "green", Kind: schema.KindU8},
		{Name: "blue", Kind: schema.KindU8},
	})
	return New(schemas, nil, nil)
}

func colorFields(r, g, b int) map[string]interface{} {
	return map[string]interface{}{
		"red": float64(r), "green": float64(g), "blue": float64(b),
	}
}

func TestCreateGet(t *testing.T) {
	reg := newTestRegistry(t)
	owner := types.OwnedByAddress(id.RandomAddress())

	ref, err := reg.Create(colorTag, colorFields(0, 0, 0), owner)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if ref.Version != 1 {
		t.Errorf("fresh object should be at version 1, got %d", ref.Version)
	}

	obj, err := reg.Get(ref.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if obj.TypeTag != colorTag {
		t.Errorf("unexpected type tag: %s", obj.TypeTag)
	}
	if !obj.Owner.Equal(owner) {
		t.Errorf("unexpected owner: %s", obj.Owner)
	}
	if obj.Digest == "" {
		t.Error("object should carry a digest")
	}
}

func TestCreateRejectsBadShape(t *testing.T) {
	reg := newTestRegistry(t)
	owner := types.OwnedByAddress(id.RandomAddress())

	_, err := reg.Create(colorTag, map[string]interface{}{"red": float64(0)}, owner)
	if !errors.Is(err, errs.ErrInvalidType) {
		t.Errorf("expected InvalidType, got %v", err)
	}
	if reg.Len() != 0 {
		t.Error("failed create should store nothing")
	}

	_, err = reg.Create("0x9::no::Such", map[string]interface{}{}, owner)
	if !errors.Is(err, errs.ErrInvalidType) {
		t.Errorf("unknown tag should be InvalidType, got %v", err)
	}
}

func TestGetMissing(t *testing.T) {
	reg := newTestRegistry(t)
	if _, err := reg.Get("0xdeadbeef"); !errors.Is(err, errs.ErrNotFound) {
		t.Errorf("expected NotFound, got %v", err)
	}
}

// Mirrors the canonical object lifecycle: create at version 1, mutate with
// the right expected version, then retry with the stale one.
func TestMutateOptimisticConcurrency(t *testing.T) {
	reg := newTestRegistry(t)
	owner := types.OwnedByAddress(id.RandomAddress())
	ref, err := reg.Create(colorTag, colorFields(0, 0, 0), owner)
	if err != nil {
		t.Fatal(err)
	}

	obj, err := reg.Mutate(ref.ID, 1, SetFields(map[string]interface{}{"red": float64(255)}))
	if err != nil {
		t.Fatalf("Mutate failed: %v", err)
	}
	if obj.Version != 2 {
		t.Errorf("version should be 2, got %d", obj.Version)
	}
	if obj.Fields["red"] != float64(255) {
		t.Errorf("field not applied: %v", obj.Fields["red"])
	}

	_, err = reg.Mutate(ref.ID, 1, SetFields(map[string]interface{}{"green": float64(9)}))
	if !errors.Is(err, errs.ErrVersionConflict) {
		t.Fatalf("stale version should conflict, got %v", err)
	}
	var vc *errs.VersionConflictError
	if !errors.As(err, &vc) || vc.Expected != 1 || vc.Actual != 2 {
		t.Errorf("conflict detail wrong: %+v", vc)
	}

	// The rejected mutation must leave the object unchanged.
	after, err := reg.Get(ref.ID)
	if err != nil {
		t.Fatal(err)
	}
	if after.Version != 2 || after.Fields["green"] != float64(0) {
		t.Errorf("conflicting mutate must not change state: %+v", after)
	}
}

func TestMutateValidationRollsBack(t *testing.T) {
	reg := newTestRegistry(t)
	ref, err := reg.Create(colorTag, colorFields(1, 2, 3), types.SharedOwner())
	if err != nil {
		t.Fatal(err)
	}

	_, err = reg.Mutate(ref.ID, 1, SetFields(map[string]interface{}{"red": "not a number"}))
	if !errors.Is(err, errs.ErrInvalidType) {
		t.Fatalf("shape violation should be InvalidType, got %v", err)
	}

	obj, _ := reg.Get(ref.ID)
	if obj.Version != 1 || obj.Fields["red"] != float64(1) {
		t.Errorf("failed mutate must leave record untouched: %+v", obj)
	}
}

func TestMutateUpdaterError(t *testing.T) {
	reg := newTestRegistry(t)
	ref, _ := reg.Create(colorTag, colorFields(0, 0, 0), types.SharedOwner())

	boom := errors.New("boom")
	_, err := reg.Mutate(ref.ID, 1, func(map[string]interface{}) error { return boom })
	if !errors.Is(err, boom) {
		t.Fatalf("updater error should propagate, got %v", err)
	}

	obj, _ := reg.Get(ref.ID)
	if obj.Version != 1 {
		t.Error("failed updater must not bump version")
	}
}

func TestConcurrentMutateSerializes(t *testing.T) {
	reg := newTestRegistry(t)
	ref, _ := reg.Create(colorTag, colorFields(0, 0, 0), types.SharedOwner())

	const writers = 32
	var wg sync.WaitGroup
	succeeded := make(chan types.Version, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			obj, err := reg.Mutate(ref.ID, 1, SetFields(map[string]interface{}{"red": float64(n % 256)}))
			if err == nil {
				succeeded <- obj.Version
			} else if !errors.Is(err, errs.ErrVersionConflict) {
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	wg.Wait()
	close(succeeded)

	var wins int
	for v := range succeeded {
		wins++
		if v != 2 {
			t.Errorf("winning mutation should land at version 2, got %d", v)
		}
	}
	if wins != 1 {
		t.Errorf("exactly one of %d writers should win, got %d", writers, wins)
	}
}

func TestTransferAtomicOwnership(t *testing.T) {
	reg := newTestRegistry(t)
	a := id.RandomAddress()
	b := id.RandomAddress()
	ref, _ := reg.Create(colorTag, colorFields(0, 0, 0), types.OwnedByAddress(a))

	const transfers = 50
	var wg sync.WaitGroup
	for i := 0; i < transfers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			to := a
			if n%2 == 0 {
				to = b
			}
			if _, err := reg.Transfer(ref.ID, types.OwnedByAddress(to)); err != nil {
				t.Errorf("Transfer failed: %v", err)
			}
		}(i)
	}

	// Readers racing the transfers must always observe exactly one owner.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 200; i++ {
			obj, err := reg.Get(ref.ID)
			if err != nil {
				t.Errorf("Get during transfer: %v", err)
				return
			}
			if obj.Owner.Kind != types.OwnerAddress || obj.Owner.Address == nil {
				t.Errorf("observed object without a single owner: %+v", obj.Owner)
				return
			}
		}
	}()
	wg.Wait()
	<-done

	obj, _ := reg.Get(ref.ID)
	if obj.Version != 1+transfers {
		t.Errorf("each transfer should bump version: got %d", obj.Version)
	}
}

func TestDeleteTombstones(t *testing.T) {
	reg := newTestRegistry(t)
	ref, _ := reg.Create(colorTag, colorFields(0, 0, 0), types.SharedOwner())

	if err := reg.Delete(ref.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := reg.Get(ref.ID); !errors.Is(err, errs.ErrNotFound) {
		t.Errorf("deleted object should be NotFound, got %v", err)
	}
	if err := reg.Delete(ref.ID); !errors.Is(err, errs.ErrNotFound) {
		t.Errorf("double delete should be NotFound, got %v", err)
	}
	if _, err := reg.createLockedForTest(ref.ID); err == nil {
		t.Error("tombstoned identity must never be reused")
	}
}

// createLockedForTest attempts to resurrect an identity, which must fail.
func (r *Registry) createLockedForTest(oid types.ObjectID) (types.ObjectRef, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.createLocked(oid, colorTag, colorFields(0, 0, 0), types.SharedOwner(), "")
}

func TestIdentityUniqueness(t *testing.T) {
	reg := newTestRegistry(t)
	seen := make(map[types.ObjectID]bool)
	for i := 0; i < 200; i++ {
		ref, err := reg.Create(colorTag, colorFields(i%256, 0, 0), types.SharedOwner())
		if err != nil {
			t.Fatal(err)
		}
		if seen[ref.ID] {
			t.Fatalf("duplicate identity issued: %s", ref.ID)
		}
		seen[ref.ID] = true
		if i%3 == 0 {
			if err := reg.Delete(ref.ID); err != nil {
				t.Fatal(err)
			}
		}
	}
}

func TestImmutableRejectsWrites(t *testing.T) {
	reg := newTestRegistry(t)
	ref, _ := reg.Create(colorTag, colorFields(0, 0, 0), types.ImmutableOwner())

	if _, err := reg.Mutate(ref.ID, 1, SetFields(colorFields(1, 1, 1))); !errors.Is(err, errs.ErrImmutable) {
		t.Errorf("mutating immutable object should fail, got %v", err)
	}
	if _, err := reg.Transfer(ref.ID, types.SharedOwner()); !errors.Is(err, errs.ErrImmutable) {
		t.Errorf("transferring immutable object should fail, got %v", err)
	}
}

func TestOwnedBy(t *testing.T) {
	reg := newTestRegistry(t)
	a := id.RandomAddress()
	b := id.RandomAddress()
	for i := 0; i < 3; i++ {
		if _, err := reg.Create(colorTag, colorFields(i, 0, 0), types.OwnedByAddress(a)); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := reg.Create(colorTag, colorFields(9, 0, 0), types.OwnedByAddress(b)); err != nil {
		t.Fatal(err)
	}

	owned := reg.OwnedBy(types.OwnedByAddress(a))
	if len(owned) != 3 {
		t.Errorf("expected 3 objects for owner a, got %d", len(owned))
	}
	for i := 1; i < len(owned); i++ {
		if owned[i-1].ID >= owned[i].ID {
			t.Error("OwnedBy should sort by identity")
		}
	}
}

func TestGetReturnsIsolatedCopy(t *testing.T) {
	reg := newTestRegistry(t)
	ref, _ := reg.Create(colorTag, colorFields(5, 5, 5), types.SharedOwner())

	obj, _ := reg.Get(ref.ID)
	obj.Fields["red"] = float64(99)

	again, _ := reg.Get(ref.ID)
	if again.Fields["red"] != float64(5) {
		t.Error("mutating a returned copy must not affect registry state")
	}
}
