package loyalty

import (
	"encoding/hex"
	"fmt"
	"math/big"
	"time"
)

// CheckConstraints validates a swap against the merchant policy. It is the
// first gate in the pipeline and short-circuits on the first failure; any
// returned error must abort the enclosing swap before value moves.
//
// A nil context means the swap carries no loyalty intent and passes through
// without any policy check.
func (r *Registry) CheckConstraints(ctx *SwapContext, now time.Time, amount *big.Int) error {
	if ctx == nil {
		return nil
	}
	rec, ok := r.Get(ctx.Restaurant)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownRestaurant, hex.EncodeToString(ctx.Restaurant[:]))
	}
	if !rec.Active {
		return fmt.Errorf("%w: %s", ErrInactiveRestaurant, hex.EncodeToString(ctx.Restaurant[:]))
	}
	if rec.OpenHour != rec.CloseHour {
		hour := uint8(now.UTC().Hour())
		if !hourInWindow(hour, rec.OpenHour, rec.CloseHour) {
			return fmt.Errorf("%w: hour %d not in [%d,%d)", ErrOutsideOperatingHours, hour, rec.OpenHour, rec.CloseHour)
		}
	}
	if rec.MaxTxAmount != nil && rec.MaxTxAmount.Sign() > 0 && amount != nil && amount.Cmp(rec.MaxTxAmount) > 0 {
		return fmt.Errorf("%w: amount %s exceeds cap %s", ErrTransactionLimitExceeded, amount, rec.MaxTxAmount)
	}
	return nil
}

// hourInWindow checks [open, close) with midnight wraparound: open=22 close=6
// accepts 23 and 2 but rejects 10.
func hourInWindow(hour, open, close uint8) bool {
	if open < close {
		return hour >= open && hour < close
	}
	return hour >= open || hour < close
}
