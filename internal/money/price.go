package money

import (
	"fmt"
	"math/big"
	"time"

	"github.com/shopspring/decimal"
)

// RatePrecision is the internal fixed-point precision used for exchange
// rates, independent of either currency's wire decimals.
const RatePrecision = 18

var ratePrecisionMultiplier = new(big.Int).Exp(big.NewInt(10), big.NewInt(RatePrecision), nil)

// Price represents an exchange rate between two currencies, stored as a
// fixed-point integer with RatePrecision decimals to avoid the binary
// rounding hazard of floating point.
type Price struct {
	rate      *big.Int
	pair      Pair
	timestamp time.Time
}

// NewPrice creates a Price from a decimal rate (quote per unit base).
func NewPrice(pair Pair, rate decimal.Decimal, timestamp time.Time) Price {
	if rate.IsNegative() {
		panic("money: negative price rate")
	}
	scaled := rate.Shift(RatePrecision)
	return Price{rate: scaled.BigInt(), pair: pair, timestamp: timestamp}
}

// NewPriceNow creates a Price with the current timestamp.
func NewPriceNow(pair Pair, rate decimal.Decimal) Price {
	return NewPrice(pair, rate, time.Now())
}

// Rate returns the price rate as a decimal.
func (p Price) Rate() decimal.Decimal {
	if p.rate == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(p.rate, -RatePrecision)
}

// Pair returns the currency pair this price quotes.
func (p Price) Pair() Pair {
	return p.pair
}

// Timestamp returns when this price was observed.
func (p Price) Timestamp() time.Time {
	return p.timestamp
}

// IsZero reports whether the rate is zero.
func (p Price) IsZero() bool {
	return p.rate == nil || p.rate.Sign() == 0
}

// Invert returns the inverse price (e.g. BTC/USD -> USD/BTC).
func (p Price) Invert() Price {
	inverted := Price{pair: p.pair.Invert(), timestamp: p.timestamp}
	if p.IsZero() {
		inverted.rate = big.NewInt(0)
		return inverted
	}
	precisionSquared := new(big.Int).Mul(ratePrecisionMultiplier, ratePrecisionMultiplier)
	inverted.rate = new(big.Int).Div(precisionSquared, p.rate)
	return inverted
}

// Convert converts an amount in the base currency to the equivalent
// amount in the quote currency using this price.
func (p Price) Convert(amount Amount) (Amount, error) {
	if !amount.Currency().Equals(p.pair.Base) {
		return Amount{}, fmt.Errorf("%w: expected %s, got %s",
			ErrCurrencyMismatch, p.pair.Base, amount.Currency())
	}

	baseDecimals := int64(p.pair.Base.Decimals())
	quoteDecimals := int64(p.pair.Quote.Decimals())
	shift := quoteDecimals - baseDecimals

	temp := new(big.Int).Mul(amount.Raw(), p.rate)
	temp.Div(temp, ratePrecisionMultiplier)

	if shift > 0 {
		mul := new(big.Int).Exp(big.NewInt(10), big.NewInt(shift), nil)
		temp.Mul(temp, mul)
	} else if shift < 0 {
		div := new(big.Int).Exp(big.NewInt(10), big.NewInt(-shift), nil)
		temp.Div(temp, div)
	}

	return NewAmount(p.pair.Quote, temp), nil
}

// Age returns how long ago this price was observed.
func (p Price) Age() time.Duration {
	return time.Since(p.timestamp)
}

// IsStale reports whether the price is older than maxAge.
func (p Price) IsStale(maxAge time.Duration) bool {
	return p.Age() > maxAge
}

// String returns a human-readable representation.
func (p Price) String() string {
	return fmt.Sprintf("%s %s", p.Rate().String(), p.pair)
}

// RoundSignificant rounds a decimal to the given number of significant
// digits, matching the venue's ≤5-significant-digit price convention.
// Amounts retain their pair's full wire precision; only prices are
// rounded this way.
func RoundSignificant(d decimal.Decimal, digits int32) decimal.Decimal {
	if d.IsZero() || digits <= 0 {
		return d
	}
	coeff := new(big.Int).Abs(d.Coefficient())
	numDigits := int32(len(coeff.String()))
	dropDigits := numDigits - digits
	if dropDigits <= 0 {
		return d
	}
	newExp := d.Exponent() + dropDigits
	return d.Round(-newExp)
}
