package local

import (
	"context"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lagoonledger/lagoon/internal/provider"
	"github.com/lagoonledger/lagoon/internal/registry"
	"github.com/lagoonledger/lagoon/internal/shared/errs"
	"github.com/lagoonledger/lagoon/internal/shared/id"
	"github.com/lagoonledger/lagoon/internal/shared/types"
)

// outcome collects everything one execution pass produced. err is the
// command failure, if any; hard infrastructure errors surface separately.
type outcome struct {
	effects types.Effects
	events  []types.Event
	results []types.CommandResult
	err     error
}

// ExecuteTransaction applies the transaction atomically and commits it to
// the log. Any command failure aborts the whole transaction with no state
// change.
func (p *Provider) ExecuteTransaction(ctx context.Context, tx types.Transaction) (rec *types.TransactionRecord, err error) {
	start := time.Now()
	defer func() { p.metrics.ObserveProviderCall("ExecuteTransaction", start, err) }()
	if err = ctx.Err(); err != nil {
		return nil, err
	}
	return p.execute(tx)
}

// DryRunTransaction executes against an isolated snapshot and reports the
// would-be effects. Nothing commits: no log entry, no events, no state.
// Command failures are reported in the effects, not as an error.
func (p *Provider) DryRunTransaction(ctx context.Context, tx types.Transaction) (eff *types.Effects, err error) {
	start := time.Now()
	defer func() { p.metrics.ObserveProviderCall("DryRunTransaction", start, err) }()
	if err = ctx.Err(); err != nil {
		return nil, err
	}

	out, err := p.trialRun(tx)
	if err != nil {
		return nil, err
	}
	return &out.effects, nil
}

// DevInspectTransaction is a dry run that additionally reports the would-be
// events and per-command results. The sender argument overrides the
// transaction's sender, letting integrators inspect execution on behalf of
// any address.
func (p *Provider) DevInspectTransaction(ctx context.Context, sender types.Address, tx types.Transaction) (res *types.DevInspectResult, err error) {
	start := time.Now()
	defer func() { p.metrics.ObserveProviderCall("DevInspectTransaction", start, err) }()
	if err = ctx.Err(); err != nil {
		return nil, err
	}

	if sender != "" {
		tx.Sender = sender
	}
	out, err := p.trialRun(tx)
	if err != nil {
		return nil, err
	}
	return &types.DevInspectResult{
		Effects: out.effects,
		Events:  out.events,
		Results: out.results,
	}, nil
}

// GetTotalTransactionNumber returns the committed transaction count.
func (p *Provider) GetTotalTransactionNumber(ctx context.Context) (n uint64, err error) {
	start := time.Now()
	defer func() { p.metrics.ObserveProviderCall("GetTotalTransactionNumber", start, err) }()
	p.mu.RLock()
	defer p.mu.RUnlock()
	return uint64(len(p.txLog)), nil
}

// GetTransaction returns a committed transaction by digest.
func (p *Provider) GetTransaction(ctx context.Context, digest types.TransactionDigest) (rec *types.TransactionRecord, err error) {
	start := time.Now()
	defer func() { p.metrics.ObserveProviderCall("GetTransaction", start, err) }()
	p.mu.RLock()
	defer p.mu.RUnlock()
	idx, ok := p.txIndex[digest]
	if !ok {
		return nil, errs.NotFound(string(digest))
	}
	cp := p.txLog[idx]
	return &cp, nil
}

// MultiGetTransactions returns committed transactions in input order. One
// missing digest fails the whole call.
func (p *Provider) MultiGetTransactions(ctx context.Context, digests []types.TransactionDigest) (recs []*types.TransactionRecord, err error) {
	start := time.Now()
	defer func() { p.metrics.ObserveProviderCall("MultiGetTransactions", start, err) }()
	p.mu.RLock()
	defer p.mu.RUnlock()
	recs = make([]*types.TransactionRecord, 0, len(digests))
	for _, digest := range digests {
		idx, ok := p.txIndex[digest]
		if !ok {
			return nil, errs.NotFound(string(digest))
		}
		cp := p.txLog[idx]
		recs = append(recs, &cp)
	}
	return recs, nil
}

// GetTransactionsForObject returns the digests of every committed
// transaction that created, mutated, transferred, or deleted the object,
// oldest first.
func (p *Provider) GetTransactionsForObject(ctx context.Context, oid types.ObjectID) (digests []types.TransactionDigest, err error) {
	start := time.Now()
	defer func() { p.metrics.ObserveProviderCall("GetTransactionsForObject", start, err) }()
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]types.TransactionDigest(nil), p.byObject[oid]...), nil
}

// GetTransactionsForAddress returns the digests of every committed
// transaction sent by or crediting the address, oldest first.
func (p *Provider) GetTransactionsForAddress(ctx context.Context, addr types.Address) (digests []types.TransactionDigest, err error) {
	start := time.Now()
	defer func() { p.metrics.ObserveProviderCall("GetTransactionsForAddress", start, err) }()
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]types.TransactionDigest(nil), p.byAddress[addr]...), nil
}

// QueryTransactions pages through the committed log in the caller's order.
// The cursor is the checkpoint of the last record of the previous page.
func (p *Provider) QueryTransactions(ctx context.Context, filter *types.TransactionFilter, cursor *types.Cursor, limit *int, order types.Order) (page *types.Page[types.TransactionRecord], err error) {
	start := time.Now()
	defer func() { p.metrics.ObserveProviderCall("QueryTransactions", start, err) }()

	max := provider.ClampLimit(limit, p.cfg.Pagination.DefaultLimit, p.cfg.Pagination.MaxLimit)
	pos, err := resolveCursor(cursor)
	if err != nil {
		return nil, err
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	if pos > uint64(len(p.txLog)) {
		return nil, fmt.Errorf("malformed cursor: position %d beyond log of %d", pos, len(p.txLog))
	}

	page = &types.Page[types.TransactionRecord]{Items: make([]types.TransactionRecord, 0, max)}
	walkLog(len(p.txLog), pos, order, func(idx int) bool {
		rec := p.txLog[idx]
		if !filter.Matches(&rec) {
			return true
		}
		page.Items = append(page.Items, rec)
		if len(page.Items) == max {
			next := provider.EncodeCursor(rec.Checkpoint)
			page.NextCursor = &next
			return false
		}
		return true
	})
	return page, nil
}

// execute is the commit path, shared by ExecuteTransaction and genesis.
func (p *Provider) execute(tx types.Transaction) (*types.TransactionRecord, error) {
	p.execMu.Lock()
	defer p.execMu.Unlock()

	if tx.Sender == "" {
		return nil, fmt.Errorf("transaction has no sender")
	}
	if len(tx.Commands) == 0 {
		return nil, fmt.Errorf("transaction has no commands")
	}
	if tx.Nonce == "" {
		tx.Nonce = uuid.NewString()
	}
	digest := txDigest(&tx)

	p.mu.RLock()
	_, dup := p.txIndex[digest]
	p.mu.RUnlock()
	if dup {
		return nil, fmt.Errorf("duplicate transaction %s", digest)
	}

	// Run the whole transaction against a clone, then adopt the clone's
	// state wholesale. A failure at any command leaves the live registry
	// untouched, and a success becomes visible in a single swap.
	scratch := p.reg.Clone()
	committed, err := p.runCommands(scratch, &tx, digest)
	if err != nil {
		return nil, err
	}
	if committed.err != nil {
		if p.metrics != nil {
			p.metrics.TransactionsFailed.Inc()
		}
		return nil, fmt.Errorf("execute transaction %s: %w", digest, committed.err)
	}
	p.reg.Adopt(scratch)
	p.accountCommit(committed)

	now := time.Now().UTC()
	rec := types.TransactionRecord{
		Digest:      digest,
		Transaction: tx,
		Effects:     committed.effects,
		Timestamp:   now,
	}

	p.mu.Lock()
	rec.Checkpoint = uint64(len(p.txLog) + 1)
	p.txLog = append(p.txLog, rec)
	p.txIndex[digest] = len(p.txLog) - 1
	for i := range committed.events {
		committed.events[i].Seq = uint64(len(p.eventLog) + 1)
		committed.events[i].Timestamp = now
		p.eventLog = append(p.eventLog, committed.events[i])
	}
	p.indexRecord(&rec)
	p.mu.Unlock()

	for _, ev := range committed.events {
		p.bus.Publish(ev)
	}
	if p.metrics != nil {
		p.metrics.TransactionsExecuted.Inc()
	}
	p.log.Debug("transaction committed",
		zap.String("digest", string(digest)),
		zap.Uint64("checkpoint", rec.Checkpoint),
		zap.Int("commands", len(tx.Commands)))
	return &rec, nil
}

// accountCommit ticks the per-object counters for a committed transaction.
// Execution runs on a metrics-less clone, so the counters are settled here
// from the committed effects.
func (p *Provider) accountCommit(out *outcome) {
	if p.metrics == nil {
		return
	}
	transfers := 0
	for _, ev := range out.events {
		if ev.Type == types.EventObjectTransferred {
			transfers++
		}
	}
	p.metrics.ObjectsCreated.Add(float64(len(out.effects.Created)))
	p.metrics.ObjectsMutated.Add(float64(len(out.effects.Mutated) - transfers))
	p.metrics.ObjectsTransferred.Add(float64(transfers))
	p.metrics.ObjectsDeleted.Add(float64(len(out.effects.Deleted)))
}

// trialRun executes on a snapshot only.
func (p *Provider) trialRun(tx types.Transaction) (*outcome, error) {
	p.execMu.Lock()
	defer p.execMu.Unlock()

	if tx.Sender == "" {
		return nil, fmt.Errorf("transaction has no sender")
	}
	if tx.Nonce == "" {
		tx.Nonce = uuid.NewString()
	}
	return p.runCommands(p.reg.Clone(), &tx, txDigest(&tx))
}

// runCommands applies the command list in order, stopping at the first
// failure. A failure lands in out.err with failure effects; only
// infrastructure problems return a second-value error.
func (p *Provider) runCommands(reg *registry.Registry, tx *types.Transaction, digest types.TransactionDigest) (*outcome, error) {
	out := &outcome{}
	out.effects.Status = types.ExecutionSuccess
	out.effects.GasUsed = p.gasFor(tx)

	if tx.GasBudget > 0 && out.effects.GasUsed > tx.GasBudget {
		out.fail(-1, types.CommandKind(""), fmt.Errorf("gas budget %d below required %d", tx.GasBudget, out.effects.GasUsed))
		return out, nil
	}

	var created uint64 // per-transaction creation counter for ID derivation
	for i, cmd := range tx.Commands {
		var err error
		switch cmd.Kind {
		case types.CommandCreate:
			err = p.runCreate(reg, tx, digest, &created, i, &cmd, out)
		case types.CommandMutate:
			err = p.runMutate(reg, tx, digest, i, &cmd, out)
		case types.CommandTransfer:
			err = p.runTransfer(reg, tx, digest, i, &cmd, out)
		case types.CommandDelete:
			err = p.runDelete(reg, tx, digest, i, &cmd, out)
		case types.CommandPay:
			err = p.runPay(reg, tx, digest, &created, i, &cmd, out)
		default:
			err = fmt.Errorf("unknown command kind %q", cmd.Kind)
		}
		if err != nil {
			out.fail(i, cmd.Kind, err)
			return out, nil
		}
	}
	return out, nil
}

func (out *outcome) fail(idx int, kind types.CommandKind, err error) {
	msg := err.Error()
	out.effects = types.Effects{
		Status:  types.ExecutionFailure,
		Error:   &msg,
		GasUsed: out.effects.GasUsed,
	}
	out.events = nil
	if idx >= 0 {
		out.results = append(out.results, types.CommandResult{
			Index: idx, Kind: kind, Error: &msg, Success: false,
		})
	}
	out.err = err
}

func (out *outcome) succeed(idx int, kind types.CommandKind, ref types.ObjectRef) {
	out.results = append(out.results, types.CommandResult{
		Index: idx, Kind: kind, Ref: &ref, Success: true,
	})
}

func (p *Provider) gasFor(tx *types.Transaction) uint64 {
	price := p.cfg.Genesis.GasPrice
	if price == 0 {
		price = 1
	}
	return price * uint64(len(tx.Commands))
}

// txDigest hashes the canonical transaction encoding. ConfigStd sorts map
// keys, so equal transactions always hash equally.
func txDigest(tx *types.Transaction) types.TransactionDigest {
	raw, err := sonic.ConfigStd.Marshal(tx)
	if err != nil {
		panic(fmt.Sprintf("local: transaction not canonically encodable: %v", err))
	}
	return id.TransactionDigest(raw)
}

// indexRecord adds the committed record to the per-object and per-address
// lookup tables. Callers hold p.mu.
func (p *Provider) indexRecord(rec *types.TransactionRecord) {
	seen := map[types.ObjectID]bool{}
	for _, refs := range [][]types.ObjectRef{rec.Effects.Created, rec.Effects.Mutated, rec.Effects.Deleted} {
		for _, ref := range refs {
			if !seen[ref.ID] {
				seen[ref.ID] = true
				p.byObject[ref.ID] = append(p.byObject[ref.ID], rec.Digest)
			}
		}
	}

	addrs := map[types.Address]bool{rec.Transaction.Sender: true}
	for _, cmd := range rec.Transaction.Commands {
		if cmd.Owner != nil && cmd.Owner.Kind == types.OwnerAddress && cmd.Owner.Address != nil {
			addrs[*cmd.Owner.Address] = true
		}
		if cmd.Recipient != nil && cmd.Recipient.Kind == types.OwnerAddress && cmd.Recipient.Address != nil {
			addrs[*cmd.Recipient.Address] = true
		}
		for _, a := range cmd.Recipients {
			addrs[a] = true
		}
	}
	for addr := range addrs {
		p.byAddress[addr] = append(p.byAddress[addr], rec.Digest)
	}
}

// resolveCursor decodes an optional cursor into an exclusive log position.
func resolveCursor(cursor *types.Cursor) (uint64, error) {
	if cursor == nil {
		return 0, nil
	}
	return provider.DecodeCursor(*cursor)
}

// walkLog visits log indices in the requested order, starting after the
// cursor position. pos is the 1-based sequence (checkpoint or event seq) of
// the last record the caller already saw; 0 means start from the edge.
// visit returns false to stop.
func walkLog(length int, pos uint64, order types.Order, visit func(idx int) bool) {
	if order == types.Descending {
		start := length - 1
		if pos > 0 {
			start = int(pos) - 2
		}
		for idx := start; idx >= 0; idx-- {
			if !visit(idx) {
				return
			}
		}
		return
	}
	for idx := int(pos); idx < length; idx++ {
		if !visit(idx) {
			return
		}
	}
}
