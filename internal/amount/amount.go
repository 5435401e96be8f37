// Package amount implements arbitrary-precision token amounts.
//
// Token quantities in the ledger are not bounded by 64 bits, so every
// amount in the system — inbound request amounts, snapshot deltas, current
// balances — is backed by math/big and stored in PostgreSQL as NUMERIC.
package amount

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"math/big"
)

// Amount is a signed, arbitrary-precision quantity of a single token.
type Amount struct {
	v big.Int
}

// Zero returns the additive identity.
func Zero() Amount {
	return Amount{}
}

// FromInt64 builds an Amount from a fixed-width integer, mostly useful in
// tests and for well-known constants.
func FromInt64(n int64) Amount {
	var a Amount
	a.v.SetInt64(n)
	return a
}

// FromBigInt copies n into a new Amount; later changes to n do not affect it.
func FromBigInt(n *big.Int) Amount {
	var a Amount
	a.v.Set(n)
	return a
}

// ParseJSONNumber converts a decoded json.Number into an Amount, rejecting
// any value that is not an integer (the wire format only carries integer
// token amounts).
func ParseJSONNumber(n json.Number) (Amount, error) {
	var a Amount
	if _, ok := a.v.SetString(n.String(), 10); !ok {
		return Amount{}, fmt.Errorf("amount: %q is not an integer", n.String())
	}
	return a, nil
}

// ParseString parses a base-10 integer string.
func ParseString(s string) (Amount, error) {
	var a Amount
	if _, ok := a.v.SetString(s, 10); !ok {
		return Amount{}, fmt.Errorf("amount: %q is not an integer", s)
	}
	return a, nil
}

func (a Amount) BigInt() *big.Int {
	var cp big.Int
	cp.Set(&a.v)
	return &cp
}

func (a Amount) String() string { return a.v.String() }

func (a Amount) Sign() int { return a.v.Sign() }

func (a Amount) IsPositive() bool { return a.v.Sign() > 0 }

func (a Amount) IsNegative() bool { return a.v.Sign() < 0 }

func (a Amount) IsZero() bool { return a.v.Sign() == 0 }

func (a Amount) Cmp(b Amount) int { return a.v.Cmp(&b.v) }

func (a Amount) Add(b Amount) Amount {
	var r Amount
	r.v.Add(&a.v, &b.v)
	return r
}

func (a Amount) Sub(b Amount) Amount {
	var r Amount
	r.v.Sub(&a.v, &b.v)
	return r
}

func (a Amount) Neg() Amount {
	var r Amount
	r.v.Neg(&a.v)
	return r
}

// GreaterOrEqual reports whether a >= b.
func (a Amount) GreaterOrEqual(b Amount) bool { return a.v.Cmp(&b.v) >= 0 }

// MarshalJSON renders the amount as a bare JSON integer, matching the
// request/outcome wire format (§6) rather than a quoted string.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.v.String()), nil
}

func (a *Amount) UnmarshalJSON(data []byte) error {
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	parsed, err := ParseJSONNumber(n)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// Value implements driver.Valuer, storing the amount as its decimal string
// representation — the natural textual form for a PostgreSQL NUMERIC bind
// parameter.
func (a Amount) Value() (driver.Value, error) {
	return a.v.String(), nil
}

// Scan implements sql.Scanner for NUMERIC/DECIMAL columns returned by
// lib/pq as either []byte or string.
func (a *Amount) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		a.v.SetInt64(0)
		return nil
	case []byte:
		if _, ok := a.v.SetString(string(v), 10); !ok {
			return fmt.Errorf("amount: cannot scan %q", v)
		}
		return nil
	case string:
		if _, ok := a.v.SetString(v, 10); !ok {
			return fmt.Errorf("amount: cannot scan %q", v)
		}
		return nil
	case int64:
		a.v.SetInt64(v)
		return nil
	default:
		return fmt.Errorf("amount: unsupported scan type %T", src)
	}
}
