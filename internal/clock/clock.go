// Package clock resolves instants into local wall-clock time per IANA zone.
// Schedule matching compares resolved local minutes, never fixed UTC offsets,
// so DST transitions are handled by the zone database.
package clock

import (
	"fmt"
	"regexp"
	"time"

	"github.com/petfolio/reminder-dispatch/internal/domain"
)

const ClockTimeLayout = "15:04"

var clockTimePattern = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

// LocalStamp is an instant resolved into one zone's local date and minute.
type LocalStamp struct {
	Date      time.Time // midnight local, date component only meaningful
	ClockTime string    // HH:MM at minute resolution
	Location  *time.Location
}

// LocalNow resolves now into the given IANA zone's local date and wall-clock
// minute. Returns domain.ErrUnknownTimezone for zones the database does not
// know; the caller skips only the affected schedule.
func LocalNow(now time.Time, timezone string) (LocalStamp, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return LocalStamp{}, fmt.Errorf("%w: %q", domain.ErrUnknownTimezone, timezone)
	}

	local := now.In(loc)
	return LocalStamp{
		Date:      time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc),
		ClockTime: local.Format(ClockTimeLayout),
		Location:  loc,
	}, nil
}

// NormalizeClockTime validates a configured "HH:MM" value. Zero-padded
// 24-hour form only; anything else is a malformed schedule record.
func NormalizeClockTime(s string) (string, error) {
	if !clockTimePattern.MatchString(s) {
		return "", fmt.Errorf("%w: %q", domain.ErrMalformedClockTime, s)
	}
	return s, nil
}
