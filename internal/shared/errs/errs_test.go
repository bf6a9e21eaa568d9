package errs

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestSentinelMatching(t *testing.T) {
	cases := []struct {
		err      error
		sentinel error
	}{
		{NotFound("0xabc"), ErrNotFound},
		{VersionConflict("0xabc", 1, 3), ErrVersionConflict},
		{InvalidType("0x2::coin::Coin", "missing field %q", "balance"), ErrInvalidType},
		{Immutable("0xabc"), ErrImmutable},
		{Unimplemented("GetObject"), ErrUnimplemented},
	}

	for _, c := range cases {
		if !errors.Is(c.err, c.sentinel) {
			t.Errorf("%v should match sentinel %v", c.err, c.sentinel)
		}
	}
}

func TestSentinelsAreDistinct(t *testing.T) {
	if errors.Is(NotFound("0x1"), ErrVersionConflict) {
		t.Error("NotFound should not match ErrVersionConflict")
	}
	if errors.Is(Unimplemented("Op"), ErrInvalidType) {
		t.Error("Unimplemented should not match ErrInvalidType")
	}
	if errors.Is(Immutable("0x1"), ErrInvalidType) {
		t.Error("Immutable should not match ErrInvalidType")
	}
}

func TestWrappingPreservesMatch(t *testing.T) {
	wrapped := fmt.Errorf("execute transaction: %w", VersionConflict("0x9", 2, 5))
	if !errors.Is(wrapped, ErrVersionConflict) {
		t.Error("wrapped error should still match sentinel")
	}

	var vc *VersionConflictError
	if !errors.As(wrapped, &vc) {
		t.Fatal("errors.As should recover VersionConflictError")
	}
	if vc.Expected != 2 || vc.Actual != 5 {
		t.Errorf("unexpected detail: expected=%d actual=%d", vc.Expected, vc.Actual)
	}
}

func TestUnimplementedNamesOperation(t *testing.T) {
	err := Unimplemented("SubscribeEvent")
	if !strings.Contains(err.Error(), "SubscribeEvent") {
		t.Errorf("error should name the operation: %v", err)
	}
}
