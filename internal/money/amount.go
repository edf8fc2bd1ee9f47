package money

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

// Common errors.
var (
	ErrZeroCurrency    = errors.New("money: zero-value currency")
	ErrNilRaw          = errors.New("money: nil raw value")
	ErrCurrencyMismatch = errors.New("money: cannot operate on different currencies")
	ErrTooManyDecimals = errors.New("money: too many decimal places for currency")
	ErrDivisionByZero  = errors.New("money: division by zero")
)

// Amount is an immutable value object representing a signed quantity of
// a currency. The raw value is always in the smallest unit (satoshi,
// cents, etc). Unlike a balance, an Amount may be negative: order book
// levels encode side in the sign, and chain instructions encode
// buy/sell in the sign of action_amount.
type Amount struct {
	raw      *big.Int
	currency Currency
}

// NewAmount creates an Amount from a raw big.Int value in the smallest
// unit of currency.
func NewAmount(currency Currency, raw *big.Int) Amount {
	if currency.IsZero() {
		panic(ErrZeroCurrency)
	}
	if raw == nil {
		panic(ErrNilRaw)
	}
	return Amount{raw: new(big.Int).Set(raw), currency: currency}
}

// Zero returns a zero Amount for the given currency.
func Zero(currency Currency) Amount {
	return NewAmount(currency, big.NewInt(0))
}

// Raw returns a copy of the underlying fixed-point value.
func (a Amount) Raw() *big.Int {
	if a.raw == nil {
		return big.NewInt(0)
	}
	return new(big.Int).Set(a.raw)
}

// Currency returns the currency this amount is denominated in.
func (a Amount) Currency() Currency {
	return a.currency
}

// IsZero reports whether the amount is exactly zero.
func (a Amount) IsZero() bool {
	return a.raw == nil || a.raw.Sign() == 0
}

// Sign returns -1, 0, or 1 matching the sign of the amount.
func (a Amount) Sign() int {
	if a.raw == nil {
		return 0
	}
	return a.raw.Sign()
}

// IsPositive reports whether the amount is strictly greater than zero.
func (a Amount) IsPositive() bool {
	return a.Sign() > 0
}

// IsNegative reports whether the amount is strictly less than zero.
func (a Amount) IsNegative() bool {
	return a.Sign() < 0
}

// Neg returns the amount with its sign flipped.
func (a Amount) Neg() Amount {
	return NewAmount(a.currency, new(big.Int).Neg(a.Raw()))
}

// Abs returns the absolute value of the amount.
func (a Amount) Abs() Amount {
	return NewAmount(a.currency, new(big.Int).Abs(a.Raw()))
}

// Add adds two amounts of the same currency.
func (a Amount) Add(b Amount) (Amount, error) {
	if err := a.checkSameCurrency(b); err != nil {
		return Amount{}, err
	}
	return NewAmount(a.currency, new(big.Int).Add(a.raw, b.raw)), nil
}

// MustAdd adds two amounts, panics on currency mismatch.
func (a Amount) MustAdd(b Amount) Amount {
	r, err := a.Add(b)
	if err != nil {
		panic(err)
	}
	return r
}

// Sub subtracts b from a (same currency only). Unlike a non-negative
// balance type, the result may be negative.
func (a Amount) Sub(b Amount) (Amount, error) {
	if err := a.checkSameCurrency(b); err != nil {
		return Amount{}, err
	}
	return NewAmount(a.currency, new(big.Int).Sub(a.raw, b.raw)), nil
}

// MustSub subtracts b from a, panics on currency mismatch.
func (a Amount) MustSub(b Amount) Amount {
	r, err := a.Sub(b)
	if err != nil {
		panic(err)
	}
	return r
}

// MulBig multiplies the amount by a big.Int factor.
func (a Amount) MulBig(factor *big.Int) Amount {
	return NewAmount(a.currency, new(big.Int).Mul(a.Raw(), factor))
}

// DivBig divides the amount by a big.Int divisor (truncating division).
func (a Amount) DivBig(divisor *big.Int) (Amount, error) {
	if divisor.Sign() == 0 {
		return Amount{}, ErrDivisionByZero
	}
	return NewAmount(a.currency, new(big.Int).Quo(a.Raw(), divisor)), nil
}

// Cmp compares two amounts of the same currency.
// Returns -1 if a < b, 0 if a == b, 1 if a > b.
func (a Amount) Cmp(b Amount) (int, error) {
	if err := a.checkSameCurrency(b); err != nil {
		return 0, err
	}
	return a.raw.Cmp(b.raw), nil
}

// Equals reports whether both amounts have the same currency and value.
func (a Amount) Equals(b Amount) bool {
	if !a.currency.Equals(b.currency) {
		return false
	}
	return a.Raw().Cmp(b.Raw()) == 0
}

// Min returns the smaller of two same-currency amounts.
func Min(a, b Amount) (Amount, error) {
	cmp, err := a.Cmp(b)
	if err != nil {
		return Amount{}, err
	}
	if cmp <= 0 {
		return a, nil
	}
	return b, nil
}

// ToDecimal converts the amount to decimal.Decimal for display or
// threshold comparisons. This is a BOUNDARY function.
func (a Amount) ToDecimal() decimal.Decimal {
	if a.raw == nil || a.currency.IsZero() {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(a.raw, -int32(a.currency.Decimals()))
}

// ParseDecimal creates an Amount from a decimal value. A BOUNDARY
// function used when parsing wire or config values.
func ParseDecimal(currency Currency, d decimal.Decimal) (Amount, error) {
	if currency.IsZero() {
		return Amount{}, ErrZeroCurrency
	}
	scaled := d.Shift(int32(currency.Decimals()))
	if !scaled.Equal(scaled.Truncate(0)) {
		return Amount{}, ErrTooManyDecimals
	}
	return NewAmount(currency, scaled.BigInt()), nil
}

// ParseString creates an Amount from a decimal-formatted string, as
// the venue transmits prices and amounts.
func ParseString(currency Currency, s string) (Amount, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Amount{}, fmt.Errorf("money: invalid decimal string: %w", err)
	}
	return ParseDecimal(currency, d)
}

// String returns a human-readable representation (e.g. "1.5 ETH").
func (a Amount) String() string {
	if a.currency.IsZero() {
		return "0 ???"
	}
	return fmt.Sprintf("%s %s", a.ToDecimal().String(), a.currency)
}

func (a Amount) checkSameCurrency(b Amount) error {
	if a.currency.IsZero() || b.currency.IsZero() {
		return ErrZeroCurrency
	}
	if !a.currency.Equals(b.currency) {
		return fmt.Errorf("%w: %s vs %s", ErrCurrencyMismatch, a.currency, b.currency)
	}
	return nil
}
