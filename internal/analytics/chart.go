package analytics

// Chart geometry for fixed-width bar rendering. This is a thin mapping
// layer over Aggregate's output: it only looks at DayIndex, the sign of
// PnL, and the bar count, so the front end can place and color bars
// without re-deriving anything.

const barGapRatio = 0.2

// BarGeometry positions one bar inside a viewport of the given width.
// X and Width are in the same unit as the viewport width; Positive
// selects the profit or loss color class.
type BarGeometry struct {
	DayIndex int     `json:"day_index"`
	X        float64 `json:"x"`
	Width    float64 `json:"width"`
	Positive bool    `json:"positive"`
}

// Layout maps each bar to its x-position and width for a viewport of
// viewportWidth units. Bars are evenly spaced with a fixed gap ratio.
func Layout(bars []DailyBar, viewportWidth float64) []BarGeometry {
	if len(bars) == 0 || viewportWidth <= 0 {
		return nil
	}

	slot := viewportWidth / float64(len(bars))
	barWidth := slot * (1 - barGapRatio)

	geo := make([]BarGeometry, len(bars))
	for i, b := range bars {
		geo[i] = BarGeometry{
			DayIndex: b.DayIndex,
			X:        float64(i)*slot + (slot-barWidth)/2,
			Width:    barWidth,
			Positive: b.PnL >= 0,
		}
	}
	return geo
}

// BucketIndexAt maps a pointer x-coordinate to the bucket index under it,
// for hover tooltips. Returns -1 when the pointer is outside the viewport
// or there are no bars.
func BucketIndexAt(x, viewportWidth float64, barCount int) int {
	if barCount <= 0 || viewportWidth <= 0 || x < 0 || x >= viewportWidth {
		return -1
	}
	idx := int(x / viewportWidth * float64(barCount))
	if idx >= barCount {
		idx = barCount - 1
	}
	return idx
}
