package synth

import (
	"time"

	"etlgen/internal/random"
)

// WindowDays is the length of the order-date window ending at now.
const WindowDays = 730

// WindowStart is the first day an order date may fall on.
func WindowStart(now time.Time) time.Time {
	return random.Day(now).AddDate(0, 0, -WindowDays)
}

// PickOrderDate draws a day uniformly from [now-730d, now].
func PickOrderDate(src *random.Source, now time.Time) time.Time {
	return src.DateBetween(WindowStart(now), now)
}
