package local

import (
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/lagoonledger/lagoon/internal/events"
	"github.com/lagoonledger/lagoon/internal/infrastructure/config"
	"github.com/lagoonledger/lagoon/internal/infrastructure/logging"
	"github.com/lagoonledger/lagoon/internal/infrastructure/monitoring"
	"github.com/lagoonledger/lagoon/internal/provider"
	"github.com/lagoonledger/lagoon/internal/registry"
	"github.com/lagoonledger/lagoon/internal/schema"
	"github.com/lagoonledger/lagoon/internal/shared/types"
)

// Built-in addresses. The system address signs genesis; the coin package
// hosts the built-in coin type.
const (
	SystemAddress      = types.Address("0x0000000000000000000000000000000000000001")
	CoinPackageAddress = types.Address("0x0000000000000000000000000000000000000002")
)

// CoinType is the type tag of the built-in coin.
const CoinType = types.TypeTag("0x0000000000000000000000000000000000000002::coin::Coin")

// ErrInsufficientBalance reports coin selection that cannot reach the
// requested amount.
var ErrInsufficientBalance = errors.New("insufficient coin balance")

// Provider is the in-memory backend. Safe for concurrent use.
type Provider struct {
	cfg     *config.Config
	log     *logging.Logger
	metrics *monitoring.Metrics

	reg *registry.Registry
	bus *events.Bus

	// execMu serializes transaction execution; reads go through mu.
	execMu sync.Mutex

	mu        sync.RWMutex
	txLog     []types.TransactionRecord
	txIndex   map[types.TransactionDigest]int
	eventLog  []types.Event
	byObject  map[types.ObjectID][]types.TransactionDigest
	byAddress map[types.Address][]types.TransactionDigest
}

// Provider implements the full backend contract.
var _ provider.Provider = (*Provider)(nil)

// New creates a local backend and runs genesis for the given addresses.
// cfg nil uses defaults; log and metrics may be nil.
func New(cfg *config.Config, log *logging.Logger, metrics *monitoring.Metrics, genesisAddrs ...types.Address) (*Provider, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if log == nil {
		log = logging.NewNop()
	}

	schemas := schema.NewRegistry()
	registerBuiltins(schemas)

	p := &Provider{
		cfg:     cfg,
		log:     log.Named("local"),
		metrics: metrics,
		reg:     registry.New(schemas, log, metrics),
		bus: events.NewBus(events.Options{
			BufferSize:       cfg.Events.BufferSize,
			MaxSubscriptions: cfg.Events.MaxSubscriptions,
			RateLimitPerSec:  cfg.Events.RateLimitPerSec,
		}, log, metrics),
		txIndex:   make(map[types.TransactionDigest]int),
		byObject:  make(map[types.ObjectID][]types.TransactionDigest),
		byAddress: make(map[types.Address][]types.TransactionDigest),
	}

	if err := p.genesis(genesisAddrs); err != nil {
		return nil, fmt.Errorf("genesis failed: %w", err)
	}
	return p, nil
}

// Registry exposes the backing object registry for reads, schema
// registration, and snapshots. Writing through it directly races with
// transaction execution; state changes belong in transactions.
func (p *Provider) Registry() *registry.Registry { return p.reg }

// Schemas exposes the type registry, for callers registering their own
// packages before creating objects.
func (p *Provider) Schemas() *schema.Registry { return p.reg.Schemas() }

// Close tears down the event bus.
func (p *Provider) Close() {
	p.bus.Close()
}

func registerBuiltins(schemas *schema.Registry) {
	schemas.RegisterPackage(CoinPackageAddress, map[string]schema.Module{
		"coin": {
			Name: "coin",
			Structs: map[string]schema.StructDef{
				"Coin": {Fields: []schema.Field{
					{Name: "balance", Kind: schema.KindU64},
				}},
			},
			Functions: map[string]schema.FunctionDef{
				"split": {
					Name:       "split",
					Parameters: []schema.FieldKind{schema.KindStruct, schema.KindU64},
					Returns:    []schema.FieldKind{schema.KindStruct},
				},
				"join": {
					Name:       "join",
					Parameters: []schema.FieldKind{schema.KindStruct, schema.KindStruct},
					Returns:    []schema.FieldKind{schema.KindStruct},
				},
			},
		},
	})
}

// genesis mints the configured coin allotment for each address through the
// ordinary execution path.
func (p *Provider) genesis(addrs []types.Address) error {
	if len(addrs) == 0 {
		return nil
	}
	var commands []types.Command
	for _, addr := range addrs {
		owner := types.OwnedByAddress(addr)
		for i := 0; i < p.cfg.Genesis.CoinsPerAddress; i++ {
			commands = append(commands, types.Command{
				Kind:    types.CommandCreate,
				TypeTag: CoinType,
				Fields:  map[string]interface{}{"balance": float64(p.cfg.Genesis.CoinBalance)},
				Owner:   &owner,
			})
		}
	}

	rec, err := p.execute(types.Transaction{
		Sender:   SystemAddress,
		Commands: commands,
	})
	if err != nil {
		return err
	}
	p.log.Info("genesis committed",
		zap.String("digest", string(rec.Digest)),
		zap.Int("addresses", len(addrs)),
		zap.Int("coins", len(commands)))
	return nil
}
