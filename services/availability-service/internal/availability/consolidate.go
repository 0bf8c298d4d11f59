package availability

import (
	"time"

	"github.com/md-rashed-zaman/slotserve/services/availability-service/internal/schedule"
)

// blockedInterval is a blocked period resolved to absolute instants,
// half-open [start, end).
type blockedInterval struct {
	start time.Time
	end   time.Time
}

// consolidateBlockedPeriods resolves every configured blocked period against
// the configured timezone. Recurring periods borrow refYear for their start;
// when the resolved end lands before the start the period wraps a year
// boundary (e.g. Dec 20 through Jan 5) and the end is pushed one year out.
// No window filtering happens here; the sweep filters per shift window.
func consolidateBlockedPeriods(periods []schedule.BlockedPeriod, loc *time.Location, refYear int) []blockedInterval {
	if len(periods) == 0 {
		return nil
	}
	out := make([]blockedInterval, 0, len(periods))
	for _, p := range periods {
		start := p.StartAt.Resolve(loc, refYear, false)
		end := p.EndAt.Resolve(loc, refYear, true)
		if p.StartAt.Recurring() && end.Before(start) {
			end = end.AddDate(1, 0, 0)
		}
		out = append(out, blockedInterval{start: start, end: end})
	}
	return out
}
