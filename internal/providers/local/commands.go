package local

import (
	"fmt"
	"math/bits"

	"github.com/lagoonledger/lagoon/internal/registry"
	"github.com/lagoonledger/lagoon/internal/shared/types"
)

func (p *Provider) runCreate(reg *registry.Registry, tx *types.Transaction, txd types.TransactionDigest, created *uint64, idx int, cmd *types.Command, out *outcome) error {
	owner := types.OwnedByAddress(tx.Sender)
	if cmd.Owner != nil {
		owner = *cmd.Owner
	}

	ref, err := reg.CreateFromTx(txd, *created, cmd.TypeTag, cmd.Fields, owner)
	if err != nil {
		return err
	}
	*created++

	out.effects.Created = append(out.effects.Created, ref)
	out.succeed(idx, cmd.Kind, ref)
	tag := cmd.TypeTag
	out.emit(txd, types.EventObjectCreated, tx.Sender, &ref.ID, &tag, &owner, types.CloneFields(cmd.Fields))
	return nil
}

func (p *Provider) runMutate(reg *registry.Registry, tx *types.Transaction, txd types.TransactionDigest, idx int, cmd *types.Command, out *outcome) error {
	current, err := reg.Get(cmd.Object)
	if err != nil {
		return err
	}
	if err := checkUsable(current, tx.Sender); err != nil {
		return err
	}
	expected := cmd.ExpectedVersion
	if expected == 0 {
		// Convenience for single-writer flows: resolve the current
		// version. Concurrent-writer callers pass it explicitly.
		expected = current.Version
	}

	obj, err := reg.Mutate(cmd.Object, expected, registry.SetFields(cmd.Fields))
	if err != nil {
		return err
	}

	ref := obj.Ref()
	out.effects.Mutated = append(out.effects.Mutated, ref)
	out.succeed(idx, cmd.Kind, ref)
	tag := obj.TypeTag
	out.emit(txd, types.EventObjectMutated, tx.Sender, &ref.ID, &tag, nil, types.CloneFields(cmd.Fields))
	return nil
}

func (p *Provider) runTransfer(reg *registry.Registry, tx *types.Transaction, txd types.TransactionDigest, idx int, cmd *types.Command, out *outcome) error {
	if cmd.Recipient == nil {
		return fmt.Errorf("transfer command missing recipient")
	}
	current, err := reg.Get(cmd.Object)
	if err != nil {
		return err
	}
	if err := checkUsable(current, tx.Sender); err != nil {
		return err
	}

	ref, err := reg.Transfer(cmd.Object, *cmd.Recipient)
	if err != nil {
		return err
	}

	out.effects.Mutated = append(out.effects.Mutated, ref)
	out.succeed(idx, cmd.Kind, ref)
	obj, err := reg.Get(ref.ID)
	if err != nil {
		return err
	}
	tag := obj.TypeTag
	out.emit(txd, types.EventObjectTransferred, tx.Sender, &ref.ID, &tag, cmd.Recipient, nil)
	return nil
}

func (p *Provider) runDelete(reg *registry.Registry, tx *types.Transaction, txd types.TransactionDigest, idx int, cmd *types.Command, out *outcome) error {
	obj, err := reg.Get(cmd.Object)
	if err != nil {
		return err
	}
	if err := checkUsable(obj, tx.Sender); err != nil {
		return err
	}
	if err := reg.Delete(cmd.Object); err != nil {
		return err
	}

	ref := obj.Ref()
	out.effects.Deleted = append(out.effects.Deleted, ref)
	out.succeed(idx, cmd.Kind, ref)
	tag := obj.TypeTag
	out.emit(txd, types.EventObjectDeleted, tx.Sender, &ref.ID, &tag, nil, nil)
	return nil
}

// runPay debits the named sender coins and mints one coin per recipient.
// The first input coin keeps any change; exhausted inputs are deleted.
func (p *Provider) runPay(reg *registry.Registry, tx *types.Transaction, txd types.TransactionDigest, created *uint64, idx int, cmd *types.Command, out *outcome) error {
	if len(cmd.Recipients) == 0 || len(cmd.Recipients) != len(cmd.Amounts) {
		return fmt.Errorf("pay command needs matching recipients and amounts")
	}
	if len(cmd.Coins) == 0 {
		return fmt.Errorf("pay command names no input coins")
	}

	var total uint64
	seen := make(map[types.ObjectID]struct{}, len(cmd.Coins))
	inputs := make([]*types.VersionedObject, 0, len(cmd.Coins))
	for _, coinID := range cmd.Coins {
		if _, dup := seen[coinID]; dup {
			return fmt.Errorf("coin %s named more than once in pay inputs", coinID)
		}
		seen[coinID] = struct{}{}
		obj, err := reg.Get(coinID)
		if err != nil {
			return err
		}
		if obj.TypeTag != CoinType {
			return fmt.Errorf("object %s is not a coin", coinID)
		}
		senderOwner := types.OwnedByAddress(tx.Sender)
		if !obj.Owner.Equal(senderOwner) {
			return fmt.Errorf("coin %s is not owned by sender %s", coinID, tx.Sender)
		}
		balance, err := coinBalance(obj)
		if err != nil {
			return err
		}
		var carry uint64
		total, carry = bits.Add64(total, balance, 0)
		if carry != 0 {
			return fmt.Errorf("pay input balances overflow uint64")
		}
		inputs = append(inputs, obj)
	}

	var need uint64
	for _, amount := range cmd.Amounts {
		var carry uint64
		need, carry = bits.Add64(need, amount, 0)
		if carry != 0 {
			return fmt.Errorf("pay amounts overflow uint64")
		}
	}
	if total < need {
		return fmt.Errorf("%w: have %d, need %d", ErrInsufficientBalance, total, need)
	}

	var firstRef *types.ObjectRef
	for i, recipient := range cmd.Recipients {
		owner := types.OwnedByAddress(recipient)
		ref, err := reg.CreateFromTx(txd, *created, CoinType, map[string]interface{}{
			"balance": float64(cmd.Amounts[i]),
		}, owner)
		if err != nil {
			return err
		}
		*created++
		out.effects.Created = append(out.effects.Created, ref)
		if firstRef == nil {
			r := ref
			firstRef = &r
		}
		coinTag := CoinType
		out.emit(txd, types.EventCoinBalanceChange, tx.Sender, &ref.ID, &coinTag, &owner, map[string]interface{}{
			"amount": float64(cmd.Amounts[i]),
			"change": "credit",
		})
	}

	// Change policy: the first input keeps the remainder, every other
	// input is consumed.
	change := total - need
	keep := inputs[0]
	if _, err := reg.Mutate(keep.ID, keep.Version, registry.SetFields(map[string]interface{}{
		"balance": float64(change),
	})); err != nil {
		return err
	}
	kept, err := reg.Get(keep.ID)
	if err != nil {
		return err
	}
	out.effects.Mutated = append(out.effects.Mutated, kept.Ref())
	coinTag := CoinType
	out.emit(txd, types.EventCoinBalanceChange, tx.Sender, &keep.ID, &coinTag, nil, map[string]interface{}{
		"amount": float64(change),
		"change": "debit",
	})

	for _, input := range inputs[1:] {
		if err := reg.Delete(input.ID); err != nil {
			return err
		}
		out.effects.Deleted = append(out.effects.Deleted, input.Ref())
		out.emit(txd, types.EventObjectDeleted, tx.Sender, &input.ID, &coinTag, nil, nil)
	}

	result := types.CommandResult{Index: idx, Kind: cmd.Kind, Success: true}
	if firstRef != nil {
		result.Ref = firstRef
	}
	out.results = append(out.results, result)
	return nil
}

// emit queues an event for commit. EventSeq is the position within the
// transaction; the global Seq and timestamp are assigned at commit time.
func (out *outcome) emit(txd types.TransactionDigest, evType types.EventType, sender types.Address, obj *types.ObjectID, tag *types.TypeTag, recipient *types.Owner, fields map[string]interface{}) {
	out.events = append(out.events, types.Event{
		ID:        types.EventID{TxDigest: txd, EventSeq: uint64(len(out.events))},
		Type:      evType,
		Sender:    sender,
		Object:    obj,
		TypeTag:   tag,
		Recipient: recipient,
		Fields:    fields,
	})
}

// checkUsable gates mutating command inputs on ownership: address-owned
// objects are usable only by their owner, child objects only through their
// parent, shared objects by anyone. Immutable objects are rejected later by
// the registry itself.
func checkUsable(obj *types.VersionedObject, sender types.Address) error {
	switch obj.Owner.Kind {
	case types.OwnerAddress:
		if *obj.Owner.Address != sender {
			return fmt.Errorf("object %s is owned by %s, not sender %s", obj.ID, *obj.Owner.Address, sender)
		}
	case types.OwnerObject:
		return fmt.Errorf("object %s is a child of %s and cannot be used directly", obj.ID, *obj.Owner.Object)
	}
	return nil
}

// coinBalance reads a coin's balance field, accepting both JSON number and
// decimal-string encodings.
func coinBalance(obj *types.VersionedObject) (uint64, error) {
	raw, ok := obj.Fields["balance"]
	if !ok {
		return 0, fmt.Errorf("coin %s has no balance field", obj.ID)
	}
	switch v := raw.(type) {
	case float64:
		if v < 0 {
			return 0, fmt.Errorf("coin %s has negative balance", obj.ID)
		}
		return uint64(v), nil
	case string:
		var n uint64
		if _, err := fmt.Sscanf(v, "%d", &n); err != nil {
			return 0, fmt.Errorf("coin %s has malformed balance %q", obj.ID, v)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("coin %s has malformed balance %T", obj.ID, raw)
	}
}
