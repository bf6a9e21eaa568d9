package registry

import (
	"bytes"
	"errors"
	"testing"

	"github.com/klauspost/compress/zstd"

	"github.com/lagoonledger/lagoon/internal/shared/errs"
	"github.com/lagoonledger/lagoon/internal/shared/types"
)

func TestCloneIsIsolated(t *testing.T) {
	reg := newTestRegistry(t)
	ref, _ := reg.Create(colorTag, colorFields(1, 2, 3), types.SharedOwner())

	clone := reg.Clone()
	if _, err := clone.Mutate(ref.ID, 1, SetFields(map[string]interface{}{"red": float64(200)})); err != nil {
		t.Fatalf("clone mutate failed: %v", err)
	}
	if err := clone.Delete(ref.ID); err != nil {
		t.Fatalf("clone delete failed: %v", err)
	}

	// Live registry unaffected.
	obj, err := reg.Get(ref.ID)
	if err != nil {
		t.Fatalf("original should still hold the object: %v", err)
	}
	if obj.Version != 1 || obj.Fields["red"] != float64(1) {
		t.Errorf("clone writes leaked into the original: %+v", obj)
	}

	// New identities in clone and original must not collide.
	cRef, err := clone.Create(colorTag, colorFields(0, 0, 0), types.SharedOwner())
	if err != nil {
		t.Fatal(err)
	}
	oRef, err := reg.Create(colorTag, colorFields(0, 0, 0), types.SharedOwner())
	if err != nil {
		t.Fatal(err)
	}
	if cRef.ID == oRef.ID {
		t.Error("clone and original derived the same identity")
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	reg := newTestRegistry(t)
	ref1, _ := reg.Create(colorTag, colorFields(10, 20, 30), types.SharedOwner())
	ref2, _ := reg.Create(colorTag, colorFields(40, 50, 60), types.SharedOwner())
	if _, err := reg.Mutate(ref2.ID, 1, SetFields(map[string]interface{}{"blue": float64(99)})); err != nil {
		t.Fatal(err)
	}
	if err := reg.Delete(ref1.ID); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := reg.Export(&buf); err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	restored := newTestRegistry(t)
	if err := restored.Import(&buf); err != nil {
		t.Fatalf("Import failed: %v", err)
	}

	if restored.Len() != 1 {
		t.Fatalf("expected 1 live object after import, got %d", restored.Len())
	}
	obj, err := restored.Get(ref2.ID)
	if err != nil {
		t.Fatal(err)
	}
	if obj.Version != 2 || obj.Fields["blue"] != float64(99) {
		t.Errorf("state not preserved: %+v", obj)
	}

	// Tombstones survive the round trip: the deleted identity stays dead.
	if _, err := restored.Get(ref1.ID); !errors.Is(err, errs.ErrNotFound) {
		t.Errorf("deleted object should stay deleted after import: %v", err)
	}
	if _, err := restored.createLockedForTest(ref1.ID); err == nil {
		t.Error("tombstoned identity must stay unusable after import")
	}
}

func TestImportRejectsGarbage(t *testing.T) {
	reg := newTestRegistry(t)
	if err := reg.Import(bytes.NewReader([]byte("not a snapshot"))); err == nil {
		t.Error("garbage input should fail")
	}
}

// compressSnapshot zstd-encodes a raw JSON snapshot body for Import.
func compressSnapshot(t *testing.T, raw string) *bytes.Reader {
	t.Helper()
	var buf bytes.Buffer
	enc, err := zstd.NewWriter(&buf)
	if err != nil {
		t.Fatalf("zstd writer: %v", err)
	}
	if _, err := enc.Write([]byte(raw)); err != nil {
		t.Fatalf("compress: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	return bytes.NewReader(buf.Bytes())
}

func TestImportRejectsBadEntriesAndKeepsState(t *testing.T) {
	reg := newTestRegistry(t)
	ref, _ := reg.Create(colorTag, colorFields(7, 7, 7), types.SharedOwner())

	cases := []string{
		`{"objects":[null],"tombstones":{},"counter":0}`,
		`{"objects":[{"id":"","version":1}],"tombstones":{},"counter":0}`,
	}
	for _, raw := range cases {
		if err := reg.Import(compressSnapshot(t, raw)); err == nil {
			t.Errorf("snapshot %s should fail", raw)
		}
	}

	// A rejected snapshot must not disturb the existing state.
	obj, err := reg.Get(ref.ID)
	if err != nil {
		t.Fatalf("existing object lost after failed import: %v", err)
	}
	if obj.Fields["red"] != float64(7) {
		t.Errorf("fields = %v", obj.Fields)
	}
}

func TestAdoptSwapsStateWholesale(t *testing.T) {
	reg := newTestRegistry(t)
	stale, _ := reg.Create(colorTag, colorFields(1, 1, 1), types.SharedOwner())

	scratch := reg.Clone()
	if err := scratch.Delete(stale.ID); err != nil {
		t.Fatal(err)
	}
	fresh, err := scratch.Create(colorTag, colorFields(2, 2, 2), types.SharedOwner())
	if err != nil {
		t.Fatal(err)
	}

	reg.Adopt(scratch)
	if _, err := reg.Get(stale.ID); !errors.Is(err, errs.ErrNotFound) {
		t.Errorf("deleted object survived adoption: %v", err)
	}
	if _, err := reg.Get(fresh.ID); err != nil {
		t.Errorf("adopted object missing: %v", err)
	}
}
