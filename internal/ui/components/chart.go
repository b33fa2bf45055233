// Package components provides reusable UI components for the TUI.
package components

import (
	"strings"

	"github.com/guptarohit/asciigraph"

	"github.com/aculich/gcp-billing-watcher/internal/ui/styles"
)

// Minimum chart dimensions.
const (
	minChartWidth  = 20
	minChartHeight = 3
)

var sparkChars = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// RenderLineChart plots a single series. emptyText is shown when data is empty.
func RenderLineChart(data []float64, width, height int, caption, emptyText string) string {
	if len(data) == 0 {
		return styles.HelpStyle.Render(emptyText)
	}

	width = max(width, minChartWidth)
	height = max(height, minChartHeight)

	// asciigraph needs two points to draw a line.
	if len(data) == 1 {
		data = []float64{data[0], data[0]}
	}

	return asciigraph.Plot(data,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(caption),
		asciigraph.SeriesColors(asciigraph.Blue),
	)
}

// RenderSparkline creates a compact inline sparkline scaled between the
// series minimum and maximum.
func RenderSparkline(values []float64, width int) string {
	if len(values) == 0 || width <= 0 {
		return ""
	}

	lo, hi := values[0], values[0]
	for _, v := range values {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	span := hi - lo

	// Keep the most recent values when the series is wider than the line.
	if len(values) > width {
		values = values[len(values)-width:]
	}

	var b strings.Builder
	for _, v := range values {
		idx := 0
		if span > 0 {
			idx = int((v - lo) / span * float64(len(sparkChars)-1))
		}
		idx = min(max(idx, 0), len(sparkChars)-1)
		b.WriteRune(sparkChars[idx])
	}
	return b.String()
}
