package local

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/lagoonledger/lagoon/internal/provider"
	"github.com/lagoonledger/lagoon/internal/shared/types"
)

// GetCoinBalances returns every coin owned by the address, smallest balance
// first. Ties break on object ID.
func (p *Provider) GetCoinBalances(ctx context.Context, addr types.Address) (coins []provider.Coin, err error) {
	start := time.Now()
	defer func() { p.metrics.ObserveProviderCall("GetCoinBalances", start, err) }()
	if err = ctx.Err(); err != nil {
		return nil, err
	}
	return p.coinsOwnedBy(addr, nil)
}

// SelectCoinsWithBalanceGreaterThanOrEqual returns the coins whose
// individual balance covers the amount, smallest first, skipping excluded
// IDs. The first entry is the smallest sufficient coin, the way the wallet
// chooses a gas object. Fails with ErrInsufficientBalance when no single
// coin is large enough.
func (p *Provider) SelectCoinsWithBalanceGreaterThanOrEqual(ctx context.Context, addr types.Address, amount uint64, exclude []types.ObjectID) (coins []provider.Coin, err error) {
	start := time.Now()
	defer func() { p.metrics.ObserveProviderCall("SelectCoinsWithBalanceGreaterThanOrEqual", start, err) }()
	if err = ctx.Err(); err != nil {
		return nil, err
	}

	all, err := p.coinsOwnedBy(addr, exclude)
	if err != nil {
		return nil, err
	}
	for _, coin := range all {
		if coin.Balance >= amount {
			coins = append(coins, coin)
		}
	}
	if len(coins) == 0 {
		return nil, fmt.Errorf("%w: no single coin of %s covers %d", ErrInsufficientBalance, addr, amount)
	}
	return coins, nil
}

// SelectCoinSetWithCombinedBalanceGreaterThanOrEqual accumulates coins
// smallest-first until their combined balance covers the amount, skipping
// excluded IDs. Fails with ErrInsufficientBalance when even the full set
// falls short.
func (p *Provider) SelectCoinSetWithCombinedBalanceGreaterThanOrEqual(ctx context.Context, addr types.Address, amount uint64, exclude []types.ObjectID) (coins []provider.Coin, err error) {
	start := time.Now()
	defer func() { p.metrics.ObserveProviderCall("SelectCoinSetWithCombinedBalanceGreaterThanOrEqual", start, err) }()
	if err = ctx.Err(); err != nil {
		return nil, err
	}

	all, err := p.coinsOwnedBy(addr, exclude)
	if err != nil {
		return nil, err
	}
	var total uint64
	for _, coin := range all {
		coins = append(coins, coin)
		total += coin.Balance
		if total >= amount {
			return coins, nil
		}
	}
	return nil, fmt.Errorf("%w: %s holds %d of %d", ErrInsufficientBalance, addr, total, amount)
}

// coinsOwnedBy lists the address's coins sorted by (balance, ID).
func (p *Provider) coinsOwnedBy(addr types.Address, exclude []types.ObjectID) ([]provider.Coin, error) {
	excluded := make(map[types.ObjectID]struct{}, len(exclude))
	for _, oid := range exclude {
		excluded[oid] = struct{}{}
	}

	coins := make([]provider.Coin, 0)
	for _, obj := range p.reg.OwnedBy(types.OwnedByAddress(addr)) {
		if obj.TypeTag != CoinType {
			continue
		}
		if _, skip := excluded[obj.ID]; skip {
			continue
		}
		balance, err := coinBalance(obj)
		if err != nil {
			return nil, err
		}
		coins = append(coins, provider.Coin{
			Ref:     obj.Ref(),
			Type:    obj.TypeTag,
			Balance: balance,
		})
	}
	sort.Slice(coins, func(i, j int) bool {
		if coins[i].Balance != coins[j].Balance {
			return coins[i].Balance < coins[j].Balance
		}
		return coins[i].Ref.ID < coins[j].Ref.ID
	})
	return coins, nil
}
