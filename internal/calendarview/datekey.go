package calendarview

import "time"

const keyLayout = "2006-01-02"

// DateKey canonicalizes t into a YYYY-MM-DD key using t's own calendar
// components in its own location. Two instants on the same local calendar day
// always yield the same key, regardless of the host timezone.
func DateKey(t time.Time) string {
	return t.Format(keyLayout)
}

// ParseKey is the inverse of DateKey for valid keys: it returns midnight of
// the named calendar day in the local timezone.
func ParseKey(key string) (time.Time, error) {
	return time.ParseInLocation(keyLayout, key, time.Local)
}

// StartOfWeek returns midnight of the Sunday on or before t, in t's location.
func StartOfWeek(t time.Time) time.Time {
	midnight := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return midnight.AddDate(0, 0, -int(midnight.Weekday()))
}
