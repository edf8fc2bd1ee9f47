// Package app implements the Cycle-Path Algorithm: graph construction,
// cycle enumeration, forward amount-walk evaluation, and admissibility
// filtering under a hard wall-clock budget.
package app

import (
	"context"
	"runtime"
	"sort"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/vantos/triarb/business/solver/domain"
	"github.com/vantos/triarb/internal/logger"
	"github.com/vantos/triarb/internal/money"
)

// MinOrderSizeFunc looks up the minimum admissible traded amount for a
// currency (table lookup with an "OTHER" default, per spec.md §6).
type MinOrderSizeFunc func(currency string) (decimal.Decimal, error)

// USDRateFunc converts an amount in `currency` to USD via whatever
// reference price chain the caller has available (best bid of
// currency/USD, or a chained conversion).
type USDRateFunc func(currency string) (decimal.Decimal, bool)

// Params bundles one solve invocation's tunables, all sourced from
// internal/config.TradingConfig.
type Params struct {
	BaseCurrency  string
	StartAmount   decimal.Decimal
	MinPathLength int
	MaxPathLength int
	MinProfitUSD  decimal.Decimal
	TakerFee      decimal.Decimal
	MinOrderSize  MinOrderSizeFunc
	USDRate       USDRateFunc
}

// Solver runs the Cycle-Path Algorithm over a cloned book snapshot.
// Evaluation of distinct candidate cycles is the one place the engine
// permits physical parallelism, per spec.md §5.
type Solver struct {
	log logger.LoggerInterface
}

// New creates a Solver.
func New(log logger.LoggerInterface) *Solver {
	return &Solver{log: log}
}

// Solve searches g for the best admissible cycle through params.BaseCurrency
// within the context's deadline (T_max). It returns the admissible
// solution with the highest estimated USD profit, or nil if none
// qualifies or the budget is exhausted first.
func (s *Solver) Solve(ctx context.Context, g *domain.Graph, params Params) (*domain.Solution, error) {
	var root money.Currency
	found := false
	for _, v := range g.Vertices() {
		if v.Code() == params.BaseCurrency {
			root = v
			found = true
			break
		}
	}
	if !found {
		return nil, nil
	}

	cycles := findCycles(g, root, params.MinPathLength, params.MaxPathLength)
	if len(cycles) == 0 {
		return nil, nil
	}

	workers := runtime.GOMAXPROCS(0)
	if workers > len(cycles) {
		workers = len(cycles)
	}
	jobs := make(chan []domain.Edge)
	results := make(chan *domain.Solution, len(cycles))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for cycle := range jobs {
				select {
				case <-ctx.Done():
					return
				default:
				}
				sol, err := evaluateCycle(cycle, params)
				if err != nil {
					continue
				}
				if sol != nil {
					results <- sol
				}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, cycle := range cycles {
			select {
			case <-ctx.Done():
				return
			case jobs <- cycle:
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	var admissible []*domain.Solution
	for sol := range results {
		admissible = append(admissible, sol)
	}

	if err := ctx.Err(); err != nil {
		s.log.Warn(ctx, "solver: time budget exceeded", "evaluated", len(admissible))
		return nil, nil
	}

	if len(admissible) == 0 {
		return nil, nil
	}

	sort.Slice(admissible, func(i, j int) bool {
		c, _ := admissible[i].EstimatedProfitUSD.Cmp(admissible[j].EstimatedProfitUSD)
		return c > 0
	})
	return admissible[0], nil
}

// evaluateCycle walks a candidate cycle forward from params.StartAmount,
// applying capacity capping and the taker fee at each hop, and checks
// admissibility per spec.md §4.4.
func evaluateCycle(cycle []domain.Edge, params Params) (*domain.Solution, error) {
	a0 := params.StartAmount
	amount := a0

	// First pass: determine the binding capacity across the whole
	// path by walking forward once with no cap, tracking the implied
	// start amount each hop's capacity would allow, then retroactively
	// shrinking a0 to the tightest constraint (spec.md §4.4 step 1).
	walkAmount := amount
	bind := a0
	for _, e := range cycle {
		if walkAmount.GreaterThan(e.Cap) && !e.Cap.IsZero() {
			impliedStart := a0.Mul(e.Cap).Div(walkAmount)
			if impliedStart.LessThan(bind) {
				bind = impliedStart
			}
		}
		walkAmount = walkAmount.Mul(e.Rate)
	}
	if bind.LessThan(a0) {
		amount = bind
		a0 = bind
	}

	instructions := make([]domain.Instruction, 0, len(cycle))
	for _, e := range cycle {
		gross := amount.Mul(e.Rate)
		net := gross.Mul(decimal.NewFromInt(1).Sub(params.TakerFee))

		minSize, err := params.MinOrderSize(e.From.Code())
		if err == nil && amount.LessThan(minSize) {
			return nil, nil
		}

		// A buy's action amount is the base bought (e.To); a sell's is the
		// base sold (e.From), negated. Both are truncated to the currency's
		// precision.
		actionCur, actionAmountDec := e.From, amount.Neg()
		if e.IsBuy {
			actionCur, actionAmountDec = e.To, gross
		}
		actionAmount, err := money.ParseDecimal(actionCur, actionAmountDec.Truncate(int32(actionCur.Decimals())))
		if err != nil {
			return nil, nil
		}
		actionPrice, err := money.ParseDecimal(priceCurrencyFor(e), e.Price)
		if err != nil {
			return nil, nil
		}

		instructions = append(instructions, domain.Instruction{
			Symbol: e.Symbol, IsBuy: e.IsBuy,
			ActionAmount: actionAmount, ActionPrice: actionPrice,
		})

		amount = net
	}

	profitBaseDec := amount.Sub(a0)
	if !profitBaseDec.IsPositive() {
		return nil, nil
	}

	usdRate, ok := params.USDRate(cycle[0].From.Code())
	if !ok {
		return nil, nil
	}
	profitUSDDec := profitBaseDec.Mul(usdRate)
	if profitUSDDec.LessThan(params.MinProfitUSD) {
		return nil, nil
	}

	profitBase, err := money.ParseDecimal(cycle[0].From, profitBaseDec.Truncate(int32(cycle[0].From.Decimals())))
	if err != nil {
		return nil, nil
	}
	usd := money.NewCurrency("USD", 2)
	profitUSD, err := money.ParseDecimal(usd, profitUSDDec.Truncate(2))
	if err != nil {
		return nil, nil
	}

	return &domain.Solution{
		Instructions:        instructions,
		EstimatedProfitBase: profitBase,
		EstimatedProfitUSD:  profitUSD,
	}, nil
}

// priceCurrencyFor returns the currency a book price is denominated
// in: always the pair's quote currency, regardless of trade direction.
func priceCurrencyFor(e domain.Edge) money.Currency {
	if e.IsBuy {
		return e.From // From is the quote currency on a buy edge
	}
	return e.To // To is the quote currency on a sell edge
}
