package schedule

import (
	"time"

	"github.com/jwalitptl/scheduler-api/internal/model"
)

// SlotInterval is the fixed width of every generated slot.
const SlotInterval = time.Hour

// Generate partitions a clinic's operating window into hourly slots,
// skipping any step whose start falls within the lunch break. Sequence
// numbers are assigned only to emitted slots, starting at 1.
//
// The window is walked in fixed steps from open to close; a step is emitted
// as [current, current+interval). When the window is not an exact multiple
// of the interval, the final slot's end overruns the close time rather than
// being truncated. A step that only partially overlaps lunch is dropped
// whole, not split. An empty window (open >= close) yields no slots.
func Generate(clinic *model.Clinic) []model.Slot {
	var slots []model.Slot

	number := 1
	for current := clinic.OpenTime; current.Before(clinic.CloseTime); current = current.Add(SlotInterval) {
		if withinLunch(current, clinic) {
			continue
		}

		slots = append(slots, model.Slot{
			Number:    number,
			StartTime: current,
			EndTime:   current.Add(SlotInterval),
			Available: true,
		})
		number++
	}

	return slots
}

// withinLunch reports whether a slot start falls in [lunchStart, lunchEnd).
func withinLunch(t time.Time, clinic *model.Clinic) bool {
	return !t.Before(clinic.LunchStart) && t.Before(clinic.LunchEnd)
}
