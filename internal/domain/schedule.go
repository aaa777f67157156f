package domain

// WorkSchedule is the shop's working calendar: which weekdays are working
// days (Sunday-indexed, matching time.Weekday) and the daily working window
// as "HH:MM" times of day. End must be strictly after Start and at least one
// day must be enabled; both are enforced at the settings boundary.
type WorkSchedule struct {
	Days  [7]bool `json:"days"`
	Start string  `json:"start"`
	End   string  `json:"end"`
}

// DefaultWorkSchedule is the fallback when nothing has been saved yet or the
// stored value cannot be decoded: Monday through Saturday, 08:00-22:00.
func DefaultWorkSchedule() WorkSchedule {
	return WorkSchedule{
		Days:  [7]bool{false, true, true, true, true, true, true},
		Start: "08:00",
		End:   "22:00",
	}
}

// SnapChoices are the grid granularities the settings API accepts, in
// minutes. Changing the granularity never rewrites existing placements.
var SnapChoices = []int32{15, 30, 60}

const DefaultSnapMinutes int32 = 15
