package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/bytedance/sonic"
	"go.uber.org/zap"

	"github.com/lagoonledger/lagoon/internal/infrastructure/config"
	"github.com/lagoonledger/lagoon/internal/infrastructure/logging"
	"github.com/lagoonledger/lagoon/internal/infrastructure/monitoring"
	"github.com/lagoonledger/lagoon/internal/infrastructure/resilience"
	"github.com/lagoonledger/lagoon/internal/providers/local"
	"github.com/lagoonledger/lagoon/internal/schema"
	"github.com/lagoonledger/lagoon/internal/shared/id"
	"github.com/lagoonledger/lagoon/internal/shared/types"
)

const itemPackage = types.Address("0x00000000000000000000000000000000000000de")
const itemTag = types.TypeTag("0x00000000000000000000000000000000000000de::demo::Item")

type summary struct {
	Alice        types.Address   `json:"alice"`
	Bob          types.Address   `json:"bob"`
	AliceTotal   uint64          `json:"alice_total"`
	BobTotal     uint64          `json:"bob_total"`
	Item         types.ObjectRef `json:"item"`
	Transactions uint64          `json:"transactions"`
}

func main() {
	configPath := flag.String("config", "", "YAML config file (overrides environment)")
	dev := flag.Bool("dev", false, "development logging (colored, debug level)")
	flag.Parse()

	cfg := config.LoadOrDefault()
	if *configPath != "" {
		loaded, err := config.LoadFile(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "load config: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}

	logCfg := logging.Config{Level: cfg.Logging.Level, Development: cfg.Logging.Development || *dev}
	log, err := logging.New(logCfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logging: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(cfg, log); err != nil {
		log.Error("demo failed", zap.Error(err))
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *logging.Logger) error {
	ctx := context.Background()
	metrics, _ := monitoring.New()

	alice := id.RandomAddress()
	bob := id.RandomAddress()

	backend, err := local.New(cfg, log, metrics, alice, bob)
	if err != nil {
		return fmt.Errorf("boot backend: %w", err)
	}
	defer backend.Close()

	backend.Schemas().RegisterPackage(itemPackage, map[string]schema.Module{
		"demo": {
			Name: "demo",
			Structs: map[string]schema.StructDef{
				"Item": {Fields: []schema.Field{
					{Name: "name", Kind: schema.KindString},
					{Name: "count", Kind: schema.KindU64},
				}},
			},
		},
	})

	// Payment: pick coins for the amount, then pay bob.
	coins, err := backend.SelectCoinSetWithCombinedBalanceGreaterThanOrEqual(ctx, alice, 30000, nil)
	if err != nil {
		return fmt.Errorf("select coins: %w", err)
	}
	inputs := make([]types.ObjectID, len(coins))
	for i, coin := range coins {
		inputs[i] = coin.Ref.ID
	}
	if _, err := backend.ExecuteTransaction(ctx, types.Transaction{
		Sender: alice,
		Commands: []types.Command{{
			Kind:       types.CommandPay,
			Coins:      inputs,
			Recipients: []types.Address{bob},
			Amounts:    []uint64{30000},
		}},
	}); err != nil {
		return fmt.Errorf("pay: %w", err)
	}
	log.Info("payment committed", zap.String("from", string(alice)), zap.String("to", string(bob)))

	// Object lifecycle: create, mutate under retry, transfer.
	rec, err := backend.ExecuteTransaction(ctx, types.Transaction{
		Sender: alice,
		Commands: []types.Command{{
			Kind:    types.CommandCreate,
			TypeTag: itemTag,
			Fields:  map[string]interface{}{"name": "crate", "count": float64(1)},
		}},
	})
	if err != nil {
		return fmt.Errorf("create item: %w", err)
	}
	item := rec.Effects.Created[0]

	err = resilience.Do(ctx, resilience.DefaultPolicy(), func() error {
		current, err := backend.GetObject(ctx, item.ID)
		if err != nil {
			return err
		}
		_, err = backend.ExecuteTransaction(ctx, types.Transaction{
			Sender: alice,
			Commands: []types.Command{{
				Kind:            types.CommandMutate,
				Object:          item.ID,
				ExpectedVersion: current.Version,
				Fields:          map[string]interface{}{"count": float64(2)},
			}},
		})
		return err
	})
	if err != nil {
		return fmt.Errorf("mutate item: %w", err)
	}

	recipient := types.OwnedByAddress(bob)
	if _, err := backend.ExecuteTransaction(ctx, types.Transaction{
		Sender:   alice,
		Commands: []types.Command{{Kind: types.CommandTransfer, Object: item.ID, Recipient: &recipient}},
	}); err != nil {
		return fmt.Errorf("transfer item: %w", err)
	}

	itemRef, err := backend.GetObjectRef(ctx, item.ID)
	if err != nil {
		return fmt.Errorf("read item: %w", err)
	}
	total, err := backend.GetTotalTransactionNumber(ctx)
	if err != nil {
		return err
	}

	out := summary{
		Alice: alice, Bob: bob,
		AliceTotal:   balanceOf(ctx, backend, alice),
		BobTotal:     balanceOf(ctx, backend, bob),
		Item:         itemRef,
		Transactions: total,
	}
	raw, err := sonic.ConfigDefault.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(raw))
	return nil
}

func balanceOf(ctx context.Context, backend *local.Provider, addr types.Address) uint64 {
	coins, err := backend.GetCoinBalances(ctx, addr)
	if err != nil {
		return 0
	}
	var total uint64
	for _, coin := range coins {
		total += coin.Balance
	}
	return total
}
