package schedule

import "sort"

// MergeShifts returns a new list sorted by start time with overlapping or
// touching shifts collapsed into one. The input is never modified, and merging
// an already-merged list returns it unchanged. Lexical comparison is safe
// because shift times are fixed-width "HH:MM".
func MergeShifts(shifts []DailyShift) []DailyShift {
	out := make([]DailyShift, len(shifts))
	copy(out, shifts)
	if len(out) < 2 {
		return out
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].StartTime < out[j].StartTime
	})

	merged := make([]DailyShift, 0, len(out))
	pending := out[0]
	for _, next := range out[1:] {
		if pending.EndTime >= next.StartTime {
			if next.EndTime > pending.EndTime {
				pending.EndTime = next.EndTime
			}
			continue
		}
		merged = append(merged, pending)
		pending = next
	}
	return append(merged, pending)
}
