package cardbank

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/alovak/cardbank-playground/cardbank/models"
)

func TestRepositoryUsers(t *testing.T) {
	repo := NewRepository()
	ctx := context.Background()

	user := &models.User{ID: "u-1", Name: "Jane"}
	require.NoError(t, repo.CreateUser(ctx, user))

	t.Run("duplicate id conflicts", func(t *testing.T) {
		err := repo.CreateUser(ctx, &models.User{ID: "u-1", Name: "Other"})
		require.ErrorIs(t, err, ErrConflict)
	})

	t.Run("unknown id is not found", func(t *testing.T) {
		_, err := repo.GetUser(ctx, "nope")
		require.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("cardless user reads back with an empty set, not nil", func(t *testing.T) {
		got, err := repo.GetUser(ctx, "u-1")
		require.NoError(t, err)
		require.NotNil(t, got.Cards)
		require.Empty(t, got.Cards)
	})

	t.Run("card set is derived from card records", func(t *testing.T) {
		require.NoError(t, repo.CreateCard(ctx, &models.CardState{Number: "4212000000000002", OwnerID: "u-1", State: models.StateActive}))
		require.NoError(t, repo.CreateCard(ctx, &models.CardState{Number: "4212000000000001", OwnerID: "u-1", State: models.StateActive}))

		got, err := repo.GetUser(ctx, "u-1")
		require.NoError(t, err)
		require.Equal(t, []string{"4212000000000001", "4212000000000002"}, got.Cards)
	})
}

func TestRepositoryCards(t *testing.T) {
	repo := NewRepository()
	ctx := context.Background()

	card := &models.CardState{Number: "4212000000000001", OwnerID: "u-1", State: models.StateActive, Balance: 10_00}
	require.NoError(t, repo.CreateCard(ctx, card))
	require.Equal(t, int64(1), card.Version)

	t.Run("duplicate number conflicts", func(t *testing.T) {
		err := repo.CreateCard(ctx, &models.CardState{Number: "4212000000000001"})
		require.ErrorIs(t, err, ErrConflict)
	})

	t.Run("get returns a copy", func(t *testing.T) {
		a, err := repo.GetCard(ctx, card.Number)
		require.NoError(t, err)
		a.Balance = 999_99

		b, err := repo.GetCard(ctx, card.Number)
		require.NoError(t, err)
		require.Equal(t, int64(10_00), b.Balance)
	})

	t.Run("exists", func(t *testing.T) {
		ok, err := repo.ExistsCardNumber(ctx, card.Number)
		require.NoError(t, err)
		require.True(t, ok)

		ok, err = repo.ExistsCardNumber(ctx, "4212000000000009")
		require.NoError(t, err)
		require.False(t, ok)
	})

	t.Run("update advances the version", func(t *testing.T) {
		got, err := repo.GetCard(ctx, card.Number)
		require.NoError(t, err)

		got.Balance = 20_00
		require.NoError(t, repo.UpdateCard(ctx, got))
		require.Equal(t, int64(2), got.Version)

		reread, err := repo.GetCard(ctx, card.Number)
		require.NoError(t, err)
		require.Equal(t, int64(20_00), reread.Balance)
	})

	t.Run("stale version write is rejected", func(t *testing.T) {
		stale, err := repo.GetCard(ctx, card.Number)
		require.NoError(t, err)

		fresh, err := repo.GetCard(ctx, card.Number)
		require.NoError(t, err)
		require.NoError(t, repo.UpdateCard(ctx, fresh))

		stale.Balance = 0
		err = repo.UpdateCard(ctx, stale)
		require.ErrorIs(t, err, ErrConflict)

		reread, err := repo.GetCard(ctx, card.Number)
		require.NoError(t, err)
		require.Equal(t, fresh.Balance, reread.Balance)
	})

	t.Run("update of unknown card is not found", func(t *testing.T) {
		err := repo.UpdateCard(ctx, &models.CardState{Number: "4212000000000009", Version: 1})
		require.ErrorIs(t, err, ErrNotFound)
	})
}
