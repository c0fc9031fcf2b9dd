package timezone

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"wellness/config"
	"wellness/shared/constant"
)

const fallbackZone = "UTC"

// location resolves APP_TIMEZONE once. An unknown zone falls back to UTC rather than failing startup.
var location = sync.OnceValue(func() *time.Location {
	zone := config.Get().App.Timezone
	if zone == "" {
		log.Warn().Msg("No timezone configured, using UTC as default")

		return time.UTC
	}

	loc, err := time.LoadLocation(zone)
	if err != nil {
		log.Error().
			Err(err).
			Str("timezone", zone).
			Str("fallback", fallbackZone).
			Msg("Failed to load timezone, use an IANA name such as Europe/London")

		return time.UTC
	}

	log.Info().Str("timezone", loc.String()).Msg("Studio timezone initialized")

	return loc
})

// GetLocation returns the studio's timezone.
func GetLocation() *time.Location {
	return location()
}

// Now returns the current time in the studio's timezone.
func Now() time.Time {
	return time.Now().In(location())
}

func ToAppTime(t time.Time) time.Time {
	return t.In(location())
}

// Parse reads value as a wall-clock time in the studio's timezone.
func Parse(layout, value string) (time.Time, error) {
	return time.ParseInLocation(layout, value, location()) //nolint:wrapcheck
}

func Format(t time.Time, layout string) string {
	return ToAppTime(t).Format(layout)
}

// StartOfDay returns midnight of t's calendar day in the studio's timezone.
func StartOfDay(t time.Time) time.Time {
	local := ToAppTime(t)

	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, local.Location())
}

func Today() time.Time {
	return StartOfDay(Now())
}

// SessionStart combines a session day and clock into the instant the session begins.
func SessionStart(day, clock string) (time.Time, error) {
	return Parse(constant.DayFormat+" "+constant.ClockFormat, day+" "+clock)
}
