package caldate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDayOf(t *testing.T) {
	at := time.Date(2026, 8, 29, 23, 59, 59, 0, time.UTC)
	require.Equal(t, "2026-08-29", DayOf(at))
	require.Equal(t, "2026-08-30", DayOf(at.Add(time.Second)))
}

func TestDayOfRespectsConfiguredLocation(t *testing.T) {
	sydney, err := time.LoadLocation("Australia/Sydney")
	require.NoError(t, err)

	SetDefaultLocation(sydney)
	defer SetDefaultLocation(time.UTC)

	// 15:00 UTC on the 29th is already the 30th in Sydney.
	at := time.Date(2026, 8, 29, 15, 0, 0, 0, time.UTC)
	require.Equal(t, "2026-08-30", DayOf(at))
}

func TestSetDefaultLocationIgnoresNil(t *testing.T) {
	SetDefaultLocation(nil)
	require.Equal(t, "2026-08-29", DayOf(time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)))
}
