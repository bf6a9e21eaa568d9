package provider

import (
	"context"

	"github.com/lagoonledger/lagoon/internal/events"
	"github.com/lagoonledger/lagoon/internal/schema"
	"github.com/lagoonledger/lagoon/internal/shared/id"
	"github.com/lagoonledger/lagoon/internal/shared/types"
)

// Coin summarizes one coin object for balance queries.
type Coin struct {
	Ref     types.ObjectRef `json:"ref"`
	Type    types.TypeTag   `json:"type"`
	Balance uint64          `json:"balance"`
}

// Provider is the full backend capability set. Every concrete backend
// implements all of it with matching success and error semantics; the
// Unimplemented placeholder fails every call.
type Provider interface {
	// Object reads
	GetObject(ctx context.Context, oid types.ObjectID) (*types.VersionedObject, error)
	GetObjectRef(ctx context.Context, oid types.ObjectID) (types.ObjectRef, error)
	MultiGetObjects(ctx context.Context, oids []types.ObjectID) ([]*types.VersionedObject, error)
	GetObjectsOwnedByAddress(ctx context.Context, addr types.Address) ([]*types.VersionedObject, error)
	GetObjectsOwnedByObject(ctx context.Context, oid types.ObjectID) ([]*types.VersionedObject, error)

	// Coin queries
	GetCoinBalances(ctx context.Context, addr types.Address) ([]Coin, error)
	SelectCoinsWithBalanceGreaterThanOrEqual(ctx context.Context, addr types.Address, amount uint64, exclude []types.ObjectID) ([]Coin, error)
	SelectCoinSetWithCombinedBalanceGreaterThanOrEqual(ctx context.Context, addr types.Address, amount uint64, exclude []types.ObjectID) ([]Coin, error)

	// Transactions
	GetTotalTransactionNumber(ctx context.Context) (uint64, error)
	GetTransaction(ctx context.Context, digest types.TransactionDigest) (*types.TransactionRecord, error)
	MultiGetTransactions(ctx context.Context, digests []types.TransactionDigest) ([]*types.TransactionRecord, error)
	GetTransactionsForObject(ctx context.Context, oid types.ObjectID) ([]types.TransactionDigest, error)
	GetTransactionsForAddress(ctx context.Context, addr types.Address) ([]types.TransactionDigest, error)
	QueryTransactions(ctx context.Context, filter *types.TransactionFilter, cursor *types.Cursor, limit *int, order types.Order) (*types.Page[types.TransactionRecord], error)
	ExecuteTransaction(ctx context.Context, tx types.Transaction) (*types.TransactionRecord, error)
	DryRunTransaction(ctx context.Context, tx types.Transaction) (*types.Effects, error)
	DevInspectTransaction(ctx context.Context, sender types.Address, tx types.Transaction) (*types.DevInspectResult, error)

	// Events
	QueryEvents(ctx context.Context, filter *types.EventFilter, cursor *types.Cursor, limit *int, order types.Order) (*types.Page[types.Event], error)
	GetEventsByTransaction(ctx context.Context, digest types.TransactionDigest) ([]types.Event, error)
	SubscribeEvent(ctx context.Context, filter *types.EventFilter) (*events.Subscription, error)
	UnsubscribeEvent(ctx context.Context, subID id.SubscriptionID) (bool, error)

	// Normalized metadata
	GetNormalizedModulesByPackage(ctx context.Context, addr types.Address) (map[string]schema.Module, error)
	GetNormalizedModule(ctx context.Context, addr types.Address, module string) (*schema.Module, error)
	GetNormalizedFunction(ctx context.Context, addr types.Address, module, function string) (*schema.FunctionDef, error)
	GetNormalizedStruct(ctx context.Context, addr types.Address, module, structName string) (*schema.StructDef, error)

	// Chain info
	GetReferenceGasPrice(ctx context.Context) (uint64, error)
}
