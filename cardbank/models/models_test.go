package models_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/alovak/cardbank-playground/cardbank/models"
)

func TestValidateCardNumber(t *testing.T) {
	require.NoError(t, models.ValidateCardNumber("4212345678901234"))

	for _, number := range []string{
		"",
		"421234567890123",   // too short
		"42123456789012345", // too long
		"4212 3456 7890 12", // separators not accepted
		"421234567890123a",
	} {
		err := models.ValidateCardNumber(number)
		var ve *models.ValidationError
		require.ErrorAs(t, err, &ve, number)
		require.Equal(t, "number", ve.Field)
	}
}

func TestNewMoney(t *testing.T) {
	m, err := models.NewMoney(0)
	require.NoError(t, err)
	require.Equal(t, int64(0), m)

	_, err = models.NewMoney(-1)
	var ve *models.ValidationError
	require.ErrorAs(t, err, &ve)
}

func TestNewDailyLimit(t *testing.T) {
	limit, err := models.NewDailyLimit(50_00)
	require.NoError(t, err)
	require.Equal(t, int64(50_00), limit)

	for _, amount := range []int64{0, -50_00} {
		_, err := models.NewDailyLimit(amount)
		var ve *models.ValidationError
		require.ErrorAs(t, err, &ve)
		require.Equal(t, "daily_limit", ve.Field)
	}
}

func TestBugErrorHidesDetail(t *testing.T) {
	cause := errors.New("connection refused to db-host:5432")
	err := models.Bug(cause)

	require.Equal(t, "internal fault", err.Error())
	require.ErrorIs(t, err, cause) // still unwrappable for internal logging
}
