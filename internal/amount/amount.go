// Package amount holds the only arithmetic allowed on money, budget and
// supply fields. Every operation is checked: nothing wraps and nothing clamps.
package amount

import (
	"errors"

	"github.com/holiman/uint256"
)

// MaxBps is 100% expressed in basis points.
const MaxBps = 10000

var (
	ErrOverflow   = errors.New("math_overflow")
	ErrUnderflow  = errors.New("math_underflow")
	ErrInvalidBps = errors.New("invalid_bps")
)

func Add(a, b uint64) (uint64, error) {
	sum := a + b
	if sum < a {
		return 0, ErrOverflow
	}
	return sum, nil
}

func Sub(a, b uint64) (uint64, error) {
	if b > a {
		return 0, ErrUnderflow
	}
	return a - b, nil
}

// BpsShare returns floor(v * bps / 10000).
func BpsShare(v uint64, bps uint16) (uint64, error) {
	if bps > MaxBps {
		return 0, ErrInvalidBps
	}
	x := new(uint256.Int).SetUint64(v)
	x.Mul(x, new(uint256.Int).SetUint64(uint64(bps)))
	x.Div(x, new(uint256.Int).SetUint64(MaxBps))
	if !x.IsUint64() {
		return 0, ErrOverflow
	}
	return x.Uint64(), nil
}

// Split is how one sale price is divided between the event organizer and
// the protocol treasury.
type Split struct {
	Organizer uint64 `json:"organizer_amount"`
	Protocol  uint64 `json:"protocol_amount"`
}

// SplitSale gives the organizer price*(10000-feeBps)/10000, truncated, and
// the protocol the remainder, so Organizer+Protocol always equals price.
func SplitSale(price uint64, feeBps uint16) (Split, error) {
	if feeBps > MaxBps {
		return Split{}, ErrInvalidBps
	}
	organizer, err := BpsShare(price, MaxBps-feeBps)
	if err != nil {
		return Split{}, err
	}
	protocol, err := Sub(price, organizer)
	if err != nil {
		return Split{}, err
	}
	return Split{Organizer: organizer, Protocol: protocol}, nil
}
