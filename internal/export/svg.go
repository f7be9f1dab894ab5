// Package export renders sweep curves for use outside the terminal.
package export

import (
	"fmt"
	"strings"

	"github.com/san-kum/hyperfem/internal/analysis"
)

// Field selects the curve value plotted on the vertical axis.
type Field int

const (
	FieldEnergy Field = iota
	FieldStress
)

func (f Field) value(p analysis.CurvePoint) float64 {
	if f == FieldStress {
		return p.Stress
	}
	return p.Energy
}

// CurveToSVG draws one field of a curve against its parameter as a
// polyline with a zero line.
func CurveToSVG(curve []analysis.CurvePoint, field Field, width, height int, strokeColor string) string {
	if len(curve) < 2 {
		return ""
	}

	minX, maxX := curve[0].Param, curve[0].Param
	minY, maxY := field.value(curve[0]), field.value(curve[0])
	for _, p := range curve {
		y := field.value(p)
		if p.Param < minX {
			minX = p.Param
		}
		if p.Param > maxX {
			maxX = p.Param
		}
		if y < minY {
			minY = y
		}
		if y > maxY {
			maxY = y
		}
	}

	// Add padding
	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	maxX += rangeX * 0.1
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeX = maxX - minX
	rangeY = maxY - minY

	toX := func(v float64) float64 { return (v - minX) / rangeX * float64(width) }
	toY := func(v float64) float64 { return float64(height) - (v-minY)/rangeY*float64(height) }

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height))

	if minY < 0 && maxY > 0 {
		y0 := toY(0)
		sb.WriteString(fmt.Sprintf(`<line x1="0" y1="%.1f" x2="%d" y2="%.1f" stroke="#444466" stroke-width="1"/>
`, y0, width, y0))
	}

	sb.WriteString(fmt.Sprintf(`<path fill="none" stroke="%s" stroke-width="1.5" d="M`, strokeColor))
	for i, p := range curve {
		if i == 0 {
			sb.WriteString(fmt.Sprintf("%.1f,%.1f", toX(p.Param), toY(field.value(p))))
		} else {
			sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", toX(p.Param), toY(field.value(p))))
		}
	}

	sb.WriteString(`"/>
</svg>`)
	return sb.String()
}
