package export

import (
	"fmt"
	"math"
	"strings"
)

// Series is one labelled curve.
type Series struct {
	Label  string
	Values []float64
	Color  string
}

// SeriesToSVG draws curves sharing the time axis times. With logY the
// vertical axis is log10 and non-positive values are skipped.
func SeriesToSVG(times []float64, series []Series, width, height int, logY bool) string {
	if len(times) < 2 || len(series) == 0 {
		return ""
	}

	tr := func(v float64) (float64, bool) {
		if !logY {
			return v, !math.IsNaN(v) && !math.IsInf(v, 0)
		}
		if v <= 0 {
			return 0, false
		}
		return math.Log10(v), true
	}

	// Find bounds
	minX, maxX := times[0], times[len(times)-1]
	minY, maxY := math.Inf(1), math.Inf(-1)
	for _, s := range series {
		for _, v := range s.Values {
			y, ok := tr(v)
			if !ok {
				continue
			}
			minY = math.Min(minY, y)
			maxY = math.Max(maxY, y)
		}
	}
	if math.IsInf(minY, 1) {
		return ""
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeY = maxY - minY

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height))

	for k, s := range series {
		color := s.Color
		if color == "" {
			color = palette[k%len(palette)]
		}
		sb.WriteString(fmt.Sprintf(`<path fill="none" stroke="%s" stroke-width="1.5" d="`, color))
		move := true
		for i, v := range s.Values {
			if i >= len(times) {
				break
			}
			y, ok := tr(v)
			if !ok {
				move = true
				continue
			}
			px := (times[i] - minX) / rangeX * float64(width)
			py := float64(height) - (y-minY)/rangeY*float64(height)
			if move {
				sb.WriteString(fmt.Sprintf("M%.1f,%.1f", px, py))
				move = false
			} else {
				sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", px, py))
			}
		}
		sb.WriteString("\"/>\n")
		sb.WriteString(fmt.Sprintf(`<text x="8" y="%d" fill="%s" font-family="monospace" font-size="12">%s</text>
`, 16*(k+1), color, s.Label))
	}

	sb.WriteString("</svg>")
	return sb.String()
}

var palette = []string{"#00ff00", "#ff6b6b", "#4dabf7", "#ffd43b", "#cc5de8", "#20c997"}
