// Package votechart lays out the pie chart shown for balance-game results.
//
// Angles are in degrees, measured clockwise from 12 o'clock. Label positions
// are relative to the chart centre with y growing downwards, the way SVG and
// terminal grids address points.
package votechart

import (
	"math"
	"strings"
)

// labelRadiusRatio places labels at 60% of the radius, inside the slice
const labelRadiusRatio = 0.6

// Option is one answer of a balance game with its vote count
type Option struct {
	Label string
	Count int64
}

// Slice is the laid-out piece of the chart for one option
type Slice struct {
	Label      string
	Count      int64
	Percent    float64
	StartAngle float64
	EndAngle   float64
	LabelX     float64
	LabelY     float64
}

// Chart holds all slices plus the total vote count
type Chart struct {
	Total  int64
	Slices []Slice
}

// Compute lays out the options on a chart of the given radius. With no votes
// every option gets an equal share of the circle and a percentage of zero.
func Compute(options []Option, radius float64) Chart {
	chart := Chart{Slices: make([]Slice, 0, len(options))}
	if len(options) == 0 {
		return chart
	}

	for _, o := range options {
		if o.Count > 0 {
			chart.Total += o.Count
		}
	}

	start := 0.0
	for i, o := range options {
		count := max(o.Count, 0)

		var share float64
		if chart.Total == 0 {
			share = 1 / float64(len(options))
		} else {
			share = float64(count) / float64(chart.Total)
		}

		end := start + share*360
		if i == len(options)-1 {
			// absorb float drift so the circle always closes
			end = 360
		}

		s := Slice{
			Label:      o.Label,
			Count:      count,
			StartAngle: start,
			EndAngle:   end,
		}
		if chart.Total > 0 {
			s.Percent = roundTenth(share * 100)
		}
		s.LabelX, s.LabelY = labelPosition(start, end, radius)

		chart.Slices = append(chart.Slices, s)
		start = end
	}

	return chart
}

func labelPosition(start, end, radius float64) (float64, float64) {
	mid := (start + end) / 2
	rad := mid * math.Pi / 180
	r := radius * labelRadiusRatio
	return roundTenth(r * math.Sin(rad)), roundTenth(-r * math.Cos(rad))
}

func roundTenth(v float64) float64 {
	r := math.Round(v*10) / 10
	if r == 0 {
		return 0 // drop negative zero
	}
	return r
}

// Bar renders a percentage as a fixed-width text bar
func Bar(percent float64, width int) string {
	if width <= 0 {
		return ""
	}
	filled := int(math.Round(percent / 100 * float64(width)))
	filled = min(max(filled, 0), width)
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}
