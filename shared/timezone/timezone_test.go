package timezone_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wellness/shared/constant"
	"wellness/shared/timezone"
)

func TestNow_UsesStudioZone(t *testing.T) {
	assert.Equal(t, timezone.GetLocation(), timezone.Now().Location())
}

func TestParseAndFormat(t *testing.T) {
	parsed, err := timezone.Parse(constant.DayFormat, "2025-03-10")
	require.NoError(t, err)

	assert.Equal(t, timezone.GetLocation(), parsed.Location())
	assert.Equal(t, "2025-03-10", timezone.Format(parsed, constant.DayFormat))

	_, err = timezone.Parse(constant.DayFormat, "10/03/2025")
	assert.Error(t, err)
}

func TestStartOfDay(t *testing.T) {
	in := time.Date(2025, 3, 10, 18, 45, 12, 0, timezone.GetLocation())
	got := timezone.StartOfDay(in)

	assert.Equal(t, time.Date(2025, 3, 10, 0, 0, 0, 0, timezone.GetLocation()), got)
	assert.False(t, timezone.Today().After(timezone.Now()))
}

func TestSessionStart(t *testing.T) {
	start, err := timezone.SessionStart("2025-03-10", "18:00")
	require.NoError(t, err)
	assert.Equal(t, 18, start.Hour())
	assert.Equal(t, timezone.GetLocation(), start.Location())

	_, err = timezone.SessionStart("2025-03-10", "6pm")
	assert.Error(t, err)
}
