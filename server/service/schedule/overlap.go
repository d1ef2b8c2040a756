package schedule

import (
	"strings"
	"time"

	"github.com/Avaneesh16/Travel-Genie/plugin/calendar"
)

// placeholderMarkers flag summaries echoed from chat commands rather than real events.
var placeholderMarkers = []string{"to calendar", "add", "create", "schedule", "event"}

// IsValidEvent reports whether e is a real event. Summaries containing a
// command word, or of three characters or fewer, are placeholders.
func IsValidEvent(e *calendar.Event) bool {
	if e == nil {
		return false
	}
	if calendar.ContainsFold(e.Summary, placeholderMarkers...) {
		return false
	}
	return len(strings.TrimSpace(e.Summary)) > 3
}

// Overlap is a conflicting pair: First ends after Second starts.
type Overlap struct {
	First  *calendar.Event `json:"first"`
	Second *calendar.Event `json:"second"`
}

// FirstEnd returns when the first event ends.
func (o Overlap) FirstEnd() time.Time {
	return o.First.End.Instant()
}

// SecondStart returns when the second event starts.
func (o Overlap) SecondStart() time.Time {
	return o.Second.Start.Instant()
}

// OverlapReport lists conflicts in ascending start order of their first event.
type OverlapReport []Overlap

// Involves returns the overlaps that include e.
func (r OverlapReport) Involves(e *calendar.Event) OverlapReport {
	var out OverlapReport
	for _, o := range r {
		if o.First == e || o.Second == e {
			out = append(out, o)
		}
	}
	return out
}

// FindOverlaps drops invalid events, sorts the rest by start and reports each
// adjacent pair where the earlier event ends after the next one starts.
// Non-adjacent overlaps are not reported. events is not modified.
func FindOverlaps(events []*calendar.Event) OverlapReport {
	valid := make([]*calendar.Event, 0, len(events))
	for _, e := range events {
		if IsValidEvent(e) {
			valid = append(valid, e)
		}
	}
	calendar.SortByStart(valid)

	var report OverlapReport
	for i := 0; i+1 < len(valid); i++ {
		current, next := valid[i], valid[i+1]
		if current.End.Instant().After(next.Start.Instant()) {
			report = append(report, Overlap{First: current, Second: next})
		}
	}
	return report
}
