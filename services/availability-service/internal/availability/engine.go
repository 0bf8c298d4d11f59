package availability

import (
	"sort"
	"time"
)

type searchParams struct {
	duration        time.Duration
	before          time.Duration
	after           time.Duration
	stepMinutes     int
	durationMinutes int
}

// searchShiftWindow emits every aligned, buffer-compliant slot inside the
// half-open shift window [from, to). The before-buffer may reach back past
// the window start; the slot itself and its after-buffer must fit inside.
//
// The sweep is O(E log E) for the sort plus O(E + S) for the cursor walk:
// after dropping encompassed events the block list has strictly increasing
// ends, so each block is consumed at most once.
func searchShiftWindow(from, to time.Time, events []blockedInterval, p searchParams) []TimeSlot {
	blocks := relevantBlocks(events, from.Add(-p.before), to.Add(p.after))

	var slots []TimeSlot
	cursor := from.Add(-p.before)
	idx := 0
	for idx < len(blocks) && !blocks[idx].end.After(cursor) {
		idx++
	}

	for {
		start := nextAlignedStart(cursor, p.before, p.stepMinutes)
		freeEnd := start.Add(p.duration + p.after)
		if freeEnd.After(to) {
			return slots
		}
		if idx < len(blocks) && blocks[idx].start.Before(freeEnd) {
			// The free window would collide; jump past the block and re-align.
			cursor = blocks[idx].end
			idx++
			continue
		}
		slots = append(slots, TimeSlot{
			StartAt:         start,
			EndAt:           start.Add(p.duration),
			DurationMinutes: p.durationMinutes,
		})
		// The next iteration's rounding re-applies the before-buffer, so only
		// the part of the after-buffer it does not cover moves the cursor.
		cursor = start.Add(p.duration)
		if p.after > p.before {
			cursor = cursor.Add(p.after - p.before)
		}
	}
}

// relevantBlocks restricts the consolidated events to those overlapping
// [lo, hi), sorts them by start (ties broken by descending end so containment
// survives a forward scan), and drops events fully inside an earlier one.
func relevantBlocks(events []blockedInterval, lo, hi time.Time) []blockedInterval {
	overlapping := make([]blockedInterval, 0, len(events))
	for _, ev := range events {
		if ev.end.After(lo) && ev.start.Before(hi) {
			overlapping = append(overlapping, ev)
		}
	}
	if len(overlapping) < 2 {
		return overlapping
	}

	sort.Slice(overlapping, func(i, j int) bool {
		if overlapping[i].start.Equal(overlapping[j].start) {
			return overlapping[i].end.After(overlapping[j].end)
		}
		return overlapping[i].start.Before(overlapping[j].start)
	})

	kept := overlapping[:1]
	maxEnd := overlapping[0].end
	for _, ev := range overlapping[1:] {
		if !ev.end.After(maxEnd) {
			continue
		}
		kept = append(kept, ev)
		maxEnd = ev.end
	}
	return kept
}

// nextAlignedStart computes the earliest valid slot start at or after the
// cursor: round the cursor up to a whole minute, add the before-buffer, then
// round the minute up to the next multiple of the alignment step.
func nextAlignedStart(cursor time.Time, before time.Duration, stepMinutes int) time.Time {
	t := cursor.Truncate(time.Minute)
	if t.Before(cursor) {
		t = t.Add(time.Minute)
	}
	t = t.Add(before)
	if rem := t.Minute() % stepMinutes; rem != 0 {
		t = t.Add(time.Duration(stepMinutes-rem) * time.Minute)
	}
	return t
}
