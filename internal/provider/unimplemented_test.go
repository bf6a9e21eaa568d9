package provider

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/lagoonledger/lagoon/internal/shared/errs"
	"github.com/lagoonledger/lagoon/internal/shared/id"
	"github.com/lagoonledger/lagoon/internal/shared/types"
)

// Every placeholder operation must fail with an Unimplemented error naming
// itself without producing anything else.
func TestUnimplementedFailsEveryOperation(t *testing.T) {
	ctx := context.Background()
	var p Unimplemented

	oid := types.ObjectID("0x01")
	addr := types.Address("0x02")
	digest := types.TransactionDigest("0x03")
	tx := types.Transaction{Sender: addr}

	calls := map[string]func() error{
		"GetObject":      func() error { _, err := p.GetObject(ctx, oid); return err },
		"GetObjectRef":   func() error { _, err := p.GetObjectRef(ctx, oid); return err },
		"MultiGetObjects": func() error {
			_, err := p.MultiGetObjects(ctx, []types.ObjectID{oid})
			return err
		},
		"GetObjectsOwnedByAddress": func() error { _, err := p.GetObjectsOwnedByAddress(ctx, addr); return err },
		"GetObjectsOwnedByObject":  func() error { _, err := p.GetObjectsOwnedByObject(ctx, oid); return err },
		"GetCoinBalances":          func() error { _, err := p.GetCoinBalances(ctx, addr); return err },
		"SelectCoinsWithBalanceGreaterThanOrEqual": func() error {
			_, err := p.SelectCoinsWithBalanceGreaterThanOrEqual(ctx, addr, 10, nil)
			return err
		},
		"SelectCoinSetWithCombinedBalanceGreaterThanOrEqual": func() error {
			_, err := p.SelectCoinSetWithCombinedBalanceGreaterThanOrEqual(ctx, addr, 10, nil)
			return err
		},
		"GetTotalTransactionNumber": func() error { _, err := p.GetTotalTransactionNumber(ctx); return err },
		"GetTransaction":            func() error { _, err := p.GetTransaction(ctx, digest); return err },
		"MultiGetTransactions": func() error {
			_, err := p.MultiGetTransactions(ctx, []types.TransactionDigest{digest})
			return err
		},
		"GetTransactionsForObject":  func() error { _, err := p.GetTransactionsForObject(ctx, oid); return err },
		"GetTransactionsForAddress": func() error { _, err := p.GetTransactionsForAddress(ctx, addr); return err },
		"QueryTransactions": func() error {
			_, err := p.QueryTransactions(ctx, nil, nil, nil, types.Ascending)
			return err
		},
		"ExecuteTransaction":    func() error { _, err := p.ExecuteTransaction(ctx, tx); return err },
		"DryRunTransaction":     func() error { _, err := p.DryRunTransaction(ctx, tx); return err },
		"DevInspectTransaction": func() error { _, err := p.DevInspectTransaction(ctx, addr, tx); return err },
		"QueryEvents": func() error {
			_, err := p.QueryEvents(ctx, nil, nil, nil, types.Descending)
			return err
		},
		"GetEventsByTransaction": func() error { _, err := p.GetEventsByTransaction(ctx, digest); return err },
		"SubscribeEvent":         func() error { _, err := p.SubscribeEvent(ctx, nil); return err },
		"UnsubscribeEvent": func() error {
			ok, err := p.UnsubscribeEvent(ctx, id.SubscriptionID("sub_x"))
			if ok {
				t.Error("UnsubscribeEvent on placeholder should report false")
			}
			return err
		},
		"GetNormalizedModulesByPackage": func() error { _, err := p.GetNormalizedModulesByPackage(ctx, addr); return err },
		"GetNormalizedModule":           func() error { _, err := p.GetNormalizedModule(ctx, addr, "coin"); return err },
		"GetNormalizedFunction": func() error {
			_, err := p.GetNormalizedFunction(ctx, addr, "coin", "split")
			return err
		},
		"GetNormalizedStruct": func() error {
			_, err := p.GetNormalizedStruct(ctx, addr, "coin", "Coin")
			return err
		},
		"GetReferenceGasPrice": func() error { _, err := p.GetReferenceGasPrice(ctx); return err },
	}

	for op, call := range calls {
		err := call()
		if !errors.Is(err, errs.ErrUnimplemented) {
			t.Errorf("%s: expected Unimplemented, got %v", op, err)
			continue
		}
		var ue *errs.UnimplementedError
		if !errors.As(err, &ue) {
			t.Errorf("%s: error should carry operation detail", op)
			continue
		}
		if ue.Op != op {
			t.Errorf("%s: error names wrong operation %q", op, ue.Op)
		}
		if !strings.Contains(err.Error(), op) {
			t.Errorf("%s: message should name the operation: %v", op, err)
		}
	}
}

func TestCursorRoundTrip(t *testing.T) {
	for _, seq := range []uint64{0, 1, 42, 1 << 50} {
		c := EncodeCursor(seq)
		got, err := DecodeCursor(c)
		if err != nil {
			t.Fatalf("DecodeCursor(%q) failed: %v", c, err)
		}
		if got != seq {
			t.Errorf("round trip lost value: %d != %d", got, seq)
		}
	}

	if _, err := DecodeCursor("!!not base64!!"); err == nil {
		t.Error("malformed cursor should fail")
	}
	if _, err := DecodeCursor(EncodeCursor(7) + "x"); err == nil {
		t.Error("tampered cursor should fail")
	}
}

func TestClampLimit(t *testing.T) {
	five := 5
	huge := 10000
	zero := 0

	if got := ClampLimit(nil, 50, 1000); got != 50 {
		t.Errorf("nil limit should default: %d", got)
	}
	if got := ClampLimit(&five, 50, 1000); got != 5 {
		t.Errorf("explicit limit should pass through: %d", got)
	}
	if got := ClampLimit(&huge, 50, 1000); got != 1000 {
		t.Errorf("limit should clamp to max: %d", got)
	}
	if got := ClampLimit(&zero, 50, 1000); got != 50 {
		t.Errorf("non-positive limit should default: %d", got)
	}
}
