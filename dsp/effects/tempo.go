package effects

import (
	"sort"
	"strings"
)

// Note-division strings map to note lengths in beats (quarter note = one
// beat). A trailing "." marks a dotted division (1.5x), a trailing "T" a
// triplet (2/3x).
var noteDivisionBeats = map[string]float64{
	"1/1":  4.0,
	"1/2":  2.0,
	"1/4":  1.0,
	"1/8":  0.5,
	"1/16": 0.25,
	"1/32": 0.125,

	"1/1.":  6.0,
	"1/2.":  3.0,
	"1/4.":  1.5,
	"1/8.":  0.75,
	"1/16.": 0.375,
	"1/32.": 0.1875,

	"1/1T":  8.0 / 3.0,
	"1/2T":  4.0 / 3.0,
	"1/4T":  2.0 / 3.0,
	"1/8T":  1.0 / 3.0,
	"1/16T": 1.0 / 6.0,
	"1/32T": 1.0 / 12.0,
}

const (
	minTempoBPM = 20.0
	maxTempoBPM = 300.0

	// Tap intervals outside this window are implausible as beats and are
	// ignored by tap tempo.
	minTapIntervalSeconds = 0.1
	maxTapIntervalSeconds = 4.0
)

// DivisionBeats returns the length of a note-division string in beats, and
// whether the division is known.
func DivisionBeats(division string) (float64, bool) {
	beats, ok := noteDivisionBeats[division]
	return beats, ok
}

func isTripletDivision(division string) bool {
	return strings.HasSuffix(division, "T")
}

func isDottedDivision(division string) bool {
	return strings.HasSuffix(division, ".")
}

// tapTempoBPM derives a tempo from tap timestamps in seconds. It takes the
// median of consecutive intervals inside the plausible window and returns 0
// when no plausible interval exists.
func tapTempoBPM(taps []float64) float64 {
	if len(taps) < 2 {
		return 0
	}

	intervals := make([]float64, 0, len(taps)-1)
	for i := 1; i < len(taps); i++ {
		interval := taps[i] - taps[i-1]
		if interval < minTapIntervalSeconds || interval > maxTapIntervalSeconds {
			continue
		}
		intervals = append(intervals, interval)
	}

	if len(intervals) == 0 {
		return 0
	}

	sort.Float64s(intervals)

	var median float64

	mid := len(intervals) / 2
	if len(intervals)%2 == 1 {
		median = intervals[mid]
	} else {
		median = (intervals[mid-1] + intervals[mid]) / 2
	}

	return 60 / median
}
