package lookup

import "strings"

// DayPart is the visual theme bucket derived from one observation.
type DayPart string

const (
	Morning   DayPart = "morning"
	Afternoon DayPart = "afternoon"
	Night     DayPart = "night"
)

// ClassifyDayPart buckets an observation into morning, afternoon or night.
//
// Icon codes ending in "n" are the upstream's own night flag, computed
// against the location's local day/night boundary, so they win over any
// timestamp arithmetic. Daytime observations are split at the midpoint of
// the sunrise-to-sunset span instead of a fixed clock hour, so the boundary
// tracks the location's actual day length. The comparison is strict: an
// observation exactly at the midpoint is afternoon, and a degenerate
// sunset == sunrise day classifies everything from sunrise on as afternoon.
func ClassifyDayPart(iconCode string, observedAt, sunrise, sunset int64) DayPart {
	if strings.HasSuffix(iconCode, "n") {
		return Night
	}

	solarNoon := sunrise + (sunset-sunrise)/2
	if observedAt < solarNoon {
		return Morning
	}
	return Afternoon
}
