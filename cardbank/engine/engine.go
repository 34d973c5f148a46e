// Package engine is the pure state machine for a single card. Apply has no
// I/O and no clock of its own: it is a deterministic function of the current
// snapshot, the command, and the caller-supplied timestamp.
package engine

import (
	"fmt"
	"time"

	"github.com/alovak/cardbank-playground/cardbank/models"
	"github.com/alovak/cardbank-playground/internal/caldate"
)

// Apply validates cmd against state and returns the next snapshot. On any
// failure the input state is returned unchanged, so a rejected command is
// always safe to retry.
func Apply(state models.CardState, cmd models.Command, now time.Time) (models.CardState, error) {
	switch c := cmd.(type) {
	case models.Activate:
		if state.State == models.StateActive {
			return state, models.NotAllowed(models.ReasonAlreadyActive)
		}
		state.State = models.StateActive
		return state, nil

	case models.Deactivate:
		if state.State == models.StateDeactivated {
			return state, models.NotAllowed(models.ReasonAlreadyDeactivated)
		}
		state.State = models.StateDeactivated
		return state, nil

	case models.SetDailyLimit:
		limit, err := models.NewDailyLimit(c.Limit)
		if err != nil {
			return state, err
		}
		state.DailyLimit = limit
		return state, nil

	case models.ProcessPayment:
		if state.State != models.StateActive {
			return state, models.NotAllowed(models.ReasonCardNotActive)
		}
		if c.Amount <= 0 {
			return state, models.NewValidationError("amount", "must be positive")
		}
		day := caldate.DayOf(now)
		spent := state.SpentToday
		if day != state.LastSpentDay {
			spent = 0
		}
		if spent+c.Amount > state.DailyLimit {
			return state, models.NotAllowed(models.ReasonDailyLimitExceeded)
		}
		if c.Amount > state.Balance {
			return state, models.NotAllowed(models.ReasonInsufficientFunds)
		}
		state.Balance -= c.Amount
		state.SpentToday = spent + c.Amount
		state.LastSpentDay = day
		return state, nil

	case models.TopUp:
		if state.State != models.StateActive {
			return state, models.NotAllowed(models.ReasonCardNotActive)
		}
		if c.Amount <= 0 {
			return state, models.NewValidationError("amount", "must be positive")
		}
		state.Balance += c.Amount
		return state, nil

	default:
		return state, models.Bug(fmt.Errorf("unknown command %T", cmd))
	}
}
