// Package conflict extracts the conflicting reservation window from the
// detail string Postgres attaches to an exclusion-constraint violation.
//
// Grounded on original_source/abi/src/error/conflict.rs, which parses a
// detail string shaped like:
//
//	Key (resource_id, timespan)=(resource_id, ["2024-01-02 07:00:00+00",
//	"2024-01-04 07:00:00+00")) conflicts with existing key (resource_id,
//	timespan)=(resource_id, ["2024-01-01 07:00:00+00","2024-01-03 07:00:00+00"))
//
// The regex only captures the *second* (existing) tuple, the one the new
// reservation collided with.
package conflict

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// detailPattern mirrors the Rust original's `(?:=\((?<old>[^\(\(]*)\){2})\.?$`:
// match the last `=(...))`.  group in the string, which is the existing-row
// tuple Postgres reports second.
var detailPattern = regexp.MustCompile(`=\(([^()]*)\)\)\.?$`)

// Window is the resource/interval pair a reservation collided with.
type Window struct {
	ResourceID string
	Start      time.Time
	End        time.Time
}

func (w Window) String() string {
	return fmt.Sprintf("%s [%s, %s)", w.ResourceID, w.Start.Format(time.RFC3339), w.End.Format(time.RFC3339))
}

// Info is the result of parsing an exclusion-violation detail string. When
// the shape doesn't match the expected pattern, Parsed is false and Raw
// holds the original string verbatim so callers never lose information.
type Info struct {
	Parsed bool
	Window Window
	Raw    string
}

func (i Info) String() string {
	if i.Parsed {
		return i.Window.String()
	}
	return i.Raw
}

// Parse extracts the conflicting window from a Postgres exclusion-violation
// detail string. It never errors: on any shape mismatch it returns an
// unparsed Info carrying the original string.
func Parse(detail string) Info {
	window, ok := parseWindow(detail)
	if !ok {
		return Info{Parsed: false, Raw: detail}
	}
	return Info{Parsed: true, Window: window}
}

func parseWindow(detail string) (Window, bool) {
	m := detailPattern.FindStringSubmatch(detail)
	if m == nil {
		return Window{}, false
	}
	parts := strings.SplitN(m[1], ",", 2)
	if len(parts) != 2 {
		return Window{}, false
	}
	resourceID := strings.TrimSpace(parts[0])
	timespan := strings.NewReplacer("[", "", "\"", "").Replace(strings.TrimSpace(parts[1]))
	bounds := strings.SplitN(timespan, ",", 2)
	if len(bounds) != 2 {
		return Window{}, false
	}
	start, ok := parseTimestamp(strings.TrimSpace(bounds[0]))
	if !ok {
		return Window{}, false
	}
	end, ok := parseTimestamp(strings.TrimSpace(bounds[1]))
	if !ok {
		return Window{}, false
	}
	return Window{ResourceID: resourceID, Start: start, End: end}, true
}

// postgresTimestampLayouts covers the formats Postgres emits in exclusion
// constraint detail text: with and without fractional seconds.
var postgresTimestampLayouts = []string{
	"2006-01-02 15:04:05.999999999-07",
	"2006-01-02 15:04:05-07",
}

func parseTimestamp(s string) (time.Time, bool) {
	for _, layout := range postgresTimestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}
