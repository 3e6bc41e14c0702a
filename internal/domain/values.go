package domain

import (
	"fmt"
	"reflect"
	"time"
)

// TimestampLayout is the store-facing datetime format for valid_from/valid_to.
const TimestampLayout = "2006-01-02T15:04:05.000000Z"

var parseLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
}

// ParseTimestamp interprets a raw snapshot timestamp. Only string values are
// accepted; anything else reports false.
func ParseTimestamp(v any) (time.Time, bool) {
	s, ok := v.(string)
	if !ok || s == "" {
		return time.Time{}, false
	}

	for _, layout := range parseLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}

	return time.Time{}, false
}

// FormatTimestamp renders a timestamp in the store layout. The zero time
// collapses to the Unix epoch.
func FormatTimestamp(t time.Time) string {
	if t.IsZero() {
		t = time.Unix(0, 0).UTC()
	}
	return t.UTC().Format(TimestampLayout)
}

// RecordingTimestamp picks the validity timestamp for an emitted event:
// the named attribute first, then the base attribute, then - only when the
// caller opts in - the current time. A snapshot carrying none of these gets
// the epoch default.
func RecordingTimestamp(snap Snapshot, attribute, baseAttribute string, useNowIfMissing bool) string {
	t, ok := ParseTimestamp(snap[attribute])

	if !ok && baseAttribute != "" {
		t, ok = ParseTimestamp(snap[baseAttribute])
	}

	if !ok && useNowIfMissing {
		t, ok = time.Now().UTC(), true
	}

	if !ok {
		return FormatTimestamp(time.Time{})
	}
	return FormatTimestamp(t)
}

// ValuesEqual compares an event's stored value with an incoming one.
// Matching dynamic types compare directly; mismatched types fall back to
// string comparison, which deliberately tolerates numeric-vs-string
// representations of the same value.
func ValuesEqual(a, b any) bool {
	if reflect.TypeOf(a) == reflect.TypeOf(b) {
		return reflect.DeepEqual(a, b)
	}

	return fmt.Sprint(a) == fmt.Sprint(b)
}
