// Copyright (c) 2025 The OpenTON developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package tlb

import (
	"encoding/binary"

	"github.com/holiman/uint256"

	"github.com/openton/tonstate/cell"
)

// maxGrams is the largest VarUInteger 16 value, 2^120-1.
var maxGrams = func() *uint256.Int {
	v := new(uint256.Int).Lsh(uint256.NewInt(1), 120)
	return v.SubUint64(v, 1)
}()

// maxExtra is the largest VarUInteger 32 value, 2^248-1.
var maxExtra = func() *uint256.Int {
	v := new(uint256.Int).Lsh(uint256.NewInt(1), 248)
	return v.SubUint64(v, 1)
}()

// Grams is the native currency amount, a VarUInteger 16 (at most 120
// bits). The zero value is zero grams.
type Grams struct {
	v uint256.Int
}

// NewGrams creates a gram amount from a uint64.
func NewGrams(v uint64) Grams {
	var g Grams
	g.v.SetUint64(v)
	return g
}

// GramsFromUint256 creates a gram amount, failing when v exceeds 120 bits.
func GramsFromUint256(v *uint256.Int) (Grams, error) {
	if v.Gt(maxGrams) {
		return Grams{}, ErrVarUIntOverflow
	}
	var g Grams
	g.v.Set(v)
	return g, nil
}

// Uint256 returns a copy of the amount.
func (g Grams) Uint256() *uint256.Int {
	return new(uint256.Int).Set(&g.v)
}

// Uint64 returns the amount, saturating beyond 64 bits.
func (g Grams) Uint64() uint64 {
	if !g.v.IsUint64() {
		return ^uint64(0)
	}
	return g.v.Uint64()
}

// IsZero reports whether the amount is zero.
func (g Grams) IsZero() bool { return g.v.IsZero() }

// Cmp compares two amounts.
func (g Grams) Cmp(other *Grams) int { return g.v.Cmp(&other.v) }

// Add returns the sum, saturating at the VarUInteger 16 maximum.
func (g Grams) Add(other *Grams) Grams {
	var out Grams
	if _, overflow := out.v.AddOverflow(&g.v, &other.v); overflow || out.v.Gt(maxGrams) {
		out.v.Set(maxGrams)
	}
	return out
}

// Sub returns the difference and true, or the receiver unchanged and
// false when other exceeds it.
func (g Grams) Sub(other *Grams) (Grams, bool) {
	if g.v.Lt(&other.v) {
		var out Grams
		out.v.Set(&g.v)
		return out, false
	}
	var out Grams
	out.v.Sub(&g.v, &other.v)
	return out, true
}

// StoreTo implements Serializable.
func (g Grams) StoreTo(b *cell.Builder) error {
	return StoreVarUInt256(b, &g.v, 16)
}

// LoadFrom implements Deserializable.
func (g *Grams) LoadFrom(s *cell.Slice) error {
	v, err := LoadVarUInt256(s, 16)
	if err != nil {
		return err
	}
	g.v.Set(v)
	return nil
}

// String implements stringer.
func (g Grams) String() string { return g.v.Dec() }

// CurrencyCollection is a multi-currency balance: the native gram amount
// plus a sparse map of extra currencies (32-bit id to VarUInteger 32).
// It is mutated only through checked Add/Sub.
type CurrencyCollection struct {
	grams Grams
	extra *cell.Dictionary
}

// NewCurrencyCollection creates a balance holding only grams.
func NewCurrencyCollection(grams uint64) CurrencyCollection {
	return CurrencyCollection{grams: NewGrams(grams)}
}

// Grams returns a copy of the native amount.
func (c *CurrencyCollection) Grams() Grams {
	var g Grams
	g.v.Set(&c.grams.v)
	return g
}

// SetGrams replaces the native amount.
func (c *CurrencyCollection) SetGrams(g Grams) {
	c.grams.v.Set(&g.v)
}

func extraKey(id uint32) []byte {
	var key [4]byte
	binary.BigEndian.PutUint32(key[:], id)
	return key[:]
}

// SetExtra sets the amount of an extra currency. A zero amount removes
// the entry.
func (c *CurrencyCollection) SetExtra(id uint32, v *uint256.Int) error {
	if v.Gt(maxExtra) {
		return ErrVarUIntOverflow
	}
	if c.extra == nil {
		c.extra = cell.NewDict(32)
	}
	if v.IsZero() {
		_, err := c.extra.Delete(extraKey(id))
		return err
	}
	b := cell.NewBuilder()
	if err := StoreVarUInt256(b, v, 32); err != nil {
		return err
	}
	return c.extra.Set(extraKey(id), b)
}

// GetExtra returns the amount of an extra currency, zero when absent.
func (c *CurrencyCollection) GetExtra(id uint32) (*uint256.Int, error) {
	if c.extra == nil {
		return new(uint256.Int), nil
	}
	vs, err := c.extra.Get(extraKey(id))
	if err != nil {
		return nil, err
	}
	if vs == nil {
		return new(uint256.Int), nil
	}
	return LoadVarUInt256(vs, 32)
}

// forEachExtra visits extra currency entries.
func (c *CurrencyCollection) forEachExtra(fn func(id uint32, v *uint256.Int) error) error {
	if c.extra == nil {
		return nil
	}
	return c.extra.ForEach(func(key []byte, value *cell.Slice) (bool, error) {
		v, err := LoadVarUInt256(value, 32)
		if err != nil {
			return false, err
		}
		return true, fn(binary.BigEndian.Uint32(key), v)
	})
}

// Add accumulates other into the balance. Gram and extra amounts
// saturate at their representational maxima, so Add always succeeds on
// well-formed inputs.
func (c *CurrencyCollection) Add(other *CurrencyCollection) error {
	og := other.Grams()
	c.grams = c.grams.Add(&og)
	return other.forEachExtra(func(id uint32, v *uint256.Int) error {
		cur, err := c.GetExtra(id)
		if err != nil {
			return err
		}
		if _, overflow := cur.AddOverflow(cur, v); overflow || cur.Gt(maxExtra) {
			cur.Set(maxExtra)
		}
		return c.SetExtra(id, cur)
	})
}

// Sub subtracts other from the balance. It is all-or-nothing: when any
// component is insufficient it returns false and the balance is left
// unchanged.
func (c *CurrencyCollection) Sub(other *CurrencyCollection) (bool, error) {
	og := other.Grams()
	if c.grams.Cmp(&og) < 0 {
		return false, nil
	}
	sufficient := true
	if err := other.forEachExtra(func(id uint32, v *uint256.Int) error {
		cur, err := c.GetExtra(id)
		if err != nil {
			return err
		}
		if cur.Lt(v) {
			sufficient = false
		}
		return nil
	}); err != nil {
		return false, err
	}
	if !sufficient {
		return false, nil
	}
	c.grams, _ = c.grams.Sub(&og)
	return true, other.forEachExtra(func(id uint32, v *uint256.Int) error {
		cur, err := c.GetExtra(id)
		if err != nil {
			return err
		}
		return c.SetExtra(id, cur.Sub(cur, v))
	})
}

// Equal compares two balances by content.
func (c *CurrencyCollection) Equal(other *CurrencyCollection) bool {
	if c.grams.Cmp(&other.grams) != 0 {
		return false
	}
	ce, oe := c.extra, other.extra
	switch {
	case ce == nil && oe == nil:
		return true
	case ce == nil:
		return oe.IsEmpty()
	case oe == nil:
		return ce.IsEmpty()
	default:
		return ce.Equal(oe)
	}
}

// StoreTo implements Serializable.
func (c *CurrencyCollection) StoreTo(b *cell.Builder) error {
	if err := c.grams.StoreTo(b); err != nil {
		return err
	}
	if c.extra == nil {
		return b.StoreBool(false)
	}
	return c.extra.Store(b)
}

// LoadFrom implements Deserializable.
func (c *CurrencyCollection) LoadFrom(s *cell.Slice) error {
	if err := c.grams.LoadFrom(s); err != nil {
		return err
	}
	extra, err := cell.LoadDict(s, 32)
	if err != nil {
		return err
	}
	if extra.IsEmpty() {
		c.extra = nil
	} else {
		c.extra = extra
	}
	return nil
}

// String implements stringer.
func (c *CurrencyCollection) String() string {
	if c.extra == nil || c.extra.IsEmpty() {
		return c.grams.String()
	}
	return c.grams.String() + "+extra"
}
