package provider

import (
	"context"

	"github.com/lagoonledger/lagoon/internal/events"
	"github.com/lagoonledger/lagoon/internal/schema"
	"github.com/lagoonledger/lagoon/internal/shared/errs"
	"github.com/lagoonledger/lagoon/internal/shared/id"
	"github.com/lagoonledger/lagoon/internal/shared/types"
)

// Unimplemented is the placeholder backend: every operation fails fast and
// uniformly with an error naming the operation, and nothing has side
// effects. Embed it so a partial backend can never silently absorb a call
// it does not handle.
type Unimplemented struct{}

// Unimplemented must satisfy the full contract.
var _ Provider = (*Unimplemented)(nil)

func (Unimplemented) GetObject(ctx context.Context, oid types.ObjectID) (*types.VersionedObject, error) {
	return nil, errs.Unimplemented("GetObject")
}

func (Unimplemented) GetObjectRef(ctx context.Context, oid types.ObjectID) (types.ObjectRef, error) {
	return types.ObjectRef{}, errs.Unimplemented("GetObjectRef")
}

func (Unimplemented) MultiGetObjects(ctx context.Context, oids []types.ObjectID) ([]*types.VersionedObject, error) {
	return nil, errs.Unimplemented("MultiGetObjects")
}

func (Unimplemented) GetObjectsOwnedByAddress(ctx context.Context, addr types.Address) ([]*types.VersionedObject, error) {
	return nil, errs.Unimplemented("GetObjectsOwnedByAddress")
}

func (Unimplemented) GetObjectsOwnedByObject(ctx context.Context, oid types.ObjectID) ([]*types.VersionedObject, error) {
	return nil, errs.Unimplemented("GetObjectsOwnedByObject")
}

func (Unimplemented) GetCoinBalances(ctx context.Context, addr types.Address) ([]Coin, error) {
	return nil, errs.Unimplemented("GetCoinBalances")
}

func (Unimplemented) SelectCoinsWithBalanceGreaterThanOrEqual(ctx context.Context, addr types.Address, amount uint64, exclude []types.ObjectID) ([]Coin, error) {
	return nil, errs.Unimplemented("SelectCoinsWithBalanceGreaterThanOrEqual")
}

func (Unimplemented) SelectCoinSetWithCombinedBalanceGreaterThanOrEqual(ctx context.Context, addr types.Address, amount uint64, exclude []types.ObjectID) ([]Coin, error) {
	return nil, errs.Unimplemented("SelectCoinSetWithCombinedBalanceGreaterThanOrEqual")
}

func (Unimplemented) GetTotalTransactionNumber(ctx context.Context) (uint64, error) {
	return 0, errs.Unimplemented("GetTotalTransactionNumber")
}

func (Unimplemented) GetTransaction(ctx context.Context, digest types.TransactionDigest) (*types.TransactionRecord, error) {
	return nil, errs.Unimplemented("GetTransaction")
}

func (Unimplemented) MultiGetTransactions(ctx context.Context, digests []types.TransactionDigest) ([]*types.TransactionRecord, error) {
	return nil, errs.Unimplemented("MultiGetTransactions")
}

func (Unimplemented) GetTransactionsForObject(ctx context.Context, oid types.ObjectID) ([]types.TransactionDigest, error) {
	return nil, errs.Unimplemented("GetTransactionsForObject")
}

func (Unimplemented) GetTransactionsForAddress(ctx context.Context, addr types.Address) ([]types.TransactionDigest, error) {
	return nil, errs.Unimplemented("GetTransactionsForAddress")
}

func (Unimplemented) QueryTransactions(ctx context.Context, filter *types.TransactionFilter, cursor *types.Cursor, limit *int, order types.Order) (*types.Page[types.TransactionRecord], error) {
	return nil, errs.Unimplemented("QueryTransactions")
}

func (Unimplemented) ExecuteTransaction(ctx context.Context, tx types.Transaction) (*types.TransactionRecord, error) {
	return nil, errs.Unimplemented("ExecuteTransaction")
}

func (Unimplemented) DryRunTransaction(ctx context.Context, tx types.Transaction) (*types.Effects, error) {
	return nil, errs.Unimplemented("DryRunTransaction")
}

func (Unimplemented) DevInspectTransaction(ctx context.Context, sender types.Address, tx types.Transaction) (*types.DevInspectResult, error) {
	return nil, errs.Unimplemented("DevInspectTransaction")
}

func (Unimplemented) QueryEvents(ctx context.Context, filter *types.EventFilter, cursor *types.Cursor, limit *int, order types.Order) (*types.Page[types.Event], error) {
	return nil, errs.Unimplemented("QueryEvents")
}

func (Unimplemented) GetEventsByTransaction(ctx context.Context, digest types.TransactionDigest) ([]types.Event, error) {
	return nil, errs.Unimplemented("GetEventsByTransaction")
}

func (Unimplemented) SubscribeEvent(ctx context.Context, filter *types.EventFilter) (*events.Subscription, error) {
	return nil, errs.Unimplemented("SubscribeEvent")
}

func (Unimplemented) UnsubscribeEvent(ctx context.Context, subID id.SubscriptionID) (bool, error) {
	return false, errs.Unimplemented("UnsubscribeEvent")
}

func (Unimplemented) GetNormalizedModulesByPackage(ctx context.Context, addr types.Address) (map[string]schema.Module, error) {
	return nil, errs.Unimplemented("GetNormalizedModulesByPackage")
}

func (Unimplemented) GetNormalizedModule(ctx context.Context, addr types.Address, module string) (*schema.Module, error) {
	return nil, errs.Unimplemented("GetNormalizedModule")
}

func (Unimplemented) GetNormalizedFunction(ctx context.Context, addr types.Address, module, function string) (*schema.FunctionDef, error) {
	return nil, errs.Unimplemented("GetNormalizedFunction")
}

func (Unimplemented) GetNormalizedStruct(ctx context.Context, addr types.Address, module, structName string) (*schema.StructDef, error) {
	return nil, errs.Unimplemented("GetNormalizedStruct")
}

func (Unimplemented) GetReferenceGasPrice(ctx context.Context) (uint64, error) {
	return 0, errs.Unimplemented("GetReferenceGasPrice")
}
