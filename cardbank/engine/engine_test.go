package engine_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/alovak/cardbank-playground/cardbank/engine"
	"github.com/alovak/cardbank-playground/cardbank/models"
)

func activeCard(balance, limit int64) models.CardState {
	return models.CardState{
		Number:         "4212345678901234",
		OwnerID:        "owner-1",
		HolderName:     "JOHN DOE",
		ExpirationDate: "2809",
		State:          models.StateActive,
		Balance:        balance,
		DailyLimit:     limit,
	}
}

var noon = time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)

func TestActivate(t *testing.T) {
	t.Run("deactivated card becomes active", func(t *testing.T) {
		card := activeCard(0, 50_00)
		card.State = models.StateDeactivated

		next, err := engine.Apply(card, models.Activate{}, noon)
		require.NoError(t, err)
		require.Equal(t, models.StateActive, next.State)
	})

	t.Run("already active is rejected unchanged", func(t *testing.T) {
		card := activeCard(10_00, 50_00)

		next, err := engine.Apply(card, models.Activate{}, noon)
		var ona *models.OperationNotAllowedError
		require.ErrorAs(t, err, &ona)
		require.Equal(t, models.ReasonAlreadyActive, ona.Reason)
		require.Equal(t, card, next)
	})
}

func TestDeactivate(t *testing.T) {
	t.Run("active card becomes deactivated", func(t *testing.T) {
		next, err := engine.Apply(activeCard(0, 50_00), models.Deactivate{}, noon)
		require.NoError(t, err)
		require.Equal(t, models.StateDeactivated, next.State)
	})

	t.Run("already deactivated is rejected unchanged", func(t *testing.T) {
		card := activeCard(0, 50_00)
		card.State = models.StateDeactivated

		next, err := engine.Apply(card, models.Deactivate{}, noon)
		var ona *models.OperationNotAllowedError
		require.ErrorAs(t, err, &ona)
		require.Equal(t, models.ReasonAlreadyDeactivated, ona.Reason)
		require.Equal(t, card, next)
	})
}

func TestSetDailyLimit(t *testing.T) {
	t.Run("positive limit is applied", func(t *testing.T) {
		next, err := engine.Apply(activeCard(0, 50_00), models.SetDailyLimit{Limit: 75_00}, noon)
		require.NoError(t, err)
		require.Equal(t, int64(75_00), next.DailyLimit)
	})

	t.Run("non-positive limit is a validation error", func(t *testing.T) {
		for _, limit := range []int64{0, -1} {
			card := activeCard(0, 50_00)
			next, err := engine.Apply(card, models.SetDailyLimit{Limit: limit}, noon)
			var ve *models.ValidationError
			require.ErrorAs(t, err, &ve)
			require.Equal(t, "daily_limit", ve.Field)
			require.Equal(t, card, next)
		}
	})

	t.Run("allowed on a deactivated card", func(t *testing.T) {
		card := activeCard(0, 50_00)
		card.State = models.StateDeactivated

		next, err := engine.Apply(card, models.SetDailyLimit{Limit: 20_00}, noon)
		require.NoError(t, err)
		require.Equal(t, int64(20_00), next.DailyLimit)
	})
}

func TestProcessPayment(t *testing.T) {
	t.Run("debits balance and accumulates spent", func(t *testing.T) {
		card := activeCard(100_00, 50_00)

		next, err := engine.Apply(card, models.ProcessPayment{Amount: 30_00}, noon)
		require.NoError(t, err)
		require.Equal(t, int64(70_00), next.Balance)
		require.Equal(t, int64(30_00), next.SpentToday)
		require.Equal(t, "2026-08-29", next.LastSpentDay)
	})

	t.Run("second payment over the daily limit is rejected unchanged", func(t *testing.T) {
		card := activeCard(100_00, 50_00)

		first, err := engine.Apply(card, models.ProcessPayment{Amount: 30_00}, noon)
		require.NoError(t, err)

		next, err := engine.Apply(first, models.ProcessPayment{Amount: 30_00}, noon)
		var ona *models.OperationNotAllowedError
		require.ErrorAs(t, err, &ona)
		require.Equal(t, models.ReasonDailyLimitExceeded, ona.Reason)
		require.Equal(t, int64(70_00), next.Balance)
		require.Equal(t, int64(30_00), next.SpentToday)
	})

	t.Run("insufficient funds", func(t *testing.T) {
		card := activeCard(10_00, 50_00)

		next, err := engine.Apply(card, models.ProcessPayment{Amount: 20_00}, noon)
		var ona *models.OperationNotAllowedError
		require.ErrorAs(t, err, &ona)
		require.Equal(t, models.ReasonInsufficientFunds, ona.Reason)
		require.Equal(t, card, next)
	})

	t.Run("deactivated card rejects payments", func(t *testing.T) {
		card := activeCard(100_00, 50_00)
		card.State = models.StateDeactivated

		next, err := engine.Apply(card, models.ProcessPayment{Amount: 10_00}, noon)
		var ona *models.OperationNotAllowedError
		require.ErrorAs(t, err, &ona)
		require.Equal(t, models.ReasonCardNotActive, ona.Reason)
		require.Equal(t, card, next)
	})

	t.Run("non-positive amount is a validation error", func(t *testing.T) {
		for _, amount := range []int64{0, -5_00} {
			card := activeCard(100_00, 50_00)
			next, err := engine.Apply(card, models.ProcessPayment{Amount: amount}, noon)
			var ve *models.ValidationError
			require.ErrorAs(t, err, &ve)
			require.Equal(t, card, next)
		}
	})

	t.Run("spent counter resets on a new calendar day", func(t *testing.T) {
		// Spent maxed out yesterday must not block today's payment.
		card := activeCard(100_00, 50_00)
		card.SpentToday = 50_00
		card.LastSpentDay = "2026-08-28"

		next, err := engine.Apply(card, models.ProcessPayment{Amount: 50_00}, noon)
		require.NoError(t, err)
		require.Equal(t, int64(50_00), next.Balance)
		require.Equal(t, int64(50_00), next.SpentToday)
		require.Equal(t, "2026-08-29", next.LastSpentDay)
	})

	t.Run("rollover happens within the same transition", func(t *testing.T) {
		card := activeCard(100_00, 50_00)
		card.SpentToday = 50_00
		card.LastSpentDay = "2026-08-28"

		// Over the limit even after rollover: state must stay fully intact,
		// including the stale spent day.
		next, err := engine.Apply(card, models.ProcessPayment{Amount: 60_00}, noon)
		require.Error(t, err)
		require.Equal(t, card, next)
	})
}

func TestTopUp(t *testing.T) {
	t.Run("credits balance", func(t *testing.T) {
		next, err := engine.Apply(activeCard(10_00, 50_00), models.TopUp{Amount: 5_00}, noon)
		require.NoError(t, err)
		require.Equal(t, int64(15_00), next.Balance)
	})

	t.Run("negative amount is a validation error", func(t *testing.T) {
		card := activeCard(10_00, 50_00)
		next, err := engine.Apply(card, models.TopUp{Amount: -5_00}, noon)
		var ve *models.ValidationError
		require.ErrorAs(t, err, &ve)
		require.Equal(t, card, next)
	})

	t.Run("deactivated card rejects top ups", func(t *testing.T) {
		card := activeCard(10_00, 50_00)
		card.State = models.StateDeactivated

		next, err := engine.Apply(card, models.TopUp{Amount: 5_00}, noon)
		var ona *models.OperationNotAllowedError
		require.ErrorAs(t, err, &ona)
		require.Equal(t, card, next)
	})
}

func TestBalanceNeverNegative(t *testing.T) {
	card := activeCard(25_00, 1000_00)
	amounts := []int64{10_00, 10_00, 10_00, 10_00}

	for _, amount := range amounts {
		next, err := engine.Apply(card, models.ProcessPayment{Amount: amount}, noon)
		if err == nil {
			card = next
		}
		require.GreaterOrEqual(t, card.Balance, int64(0))
	}
	require.Equal(t, int64(5_00), card.Balance)
}
