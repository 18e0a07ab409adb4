package analytics

import (
	"fmt"
	"html/template"
	"strings"

	"github.com/sneakerstore/sneakerstore/internal/settings"
)

// Chart geometry.
const (
	chartWidth   = 720
	chartHeight  = 260
	chartPadding = 36.0
	chartTicks   = 5
)

const (
	colorTarget   = "#cbd5e1"
	colorAchieved = "#16a34a"
	colorAxis     = "#475569"
	colorGrid     = "#e2e8f0"
)

// GoalsChart renders a grouped bar chart of monthly targets against achieved
// amounts as a standalone SVG document.
func GoalsChart(year settings.YearGoals) (string, error) {
	if len(year.Goals) == 0 {
		return "", fmt.Errorf("analytics: no goals to chart")
	}
	plotW := float64(chartWidth) - 2*chartPadding
	plotH := float64(chartHeight) - 2*chartPadding

	var top int64
	for _, g := range year.Goals {
		top = max(top, g.Target, g.Achieved)
	}
	if top == 0 {
		top = 1
	}
	scale := plotH / float64(top)
	bottom := chartPadding + plotH
	group := plotW / float64(len(year.Goals))
	bar := group / 3

	title := template.HTMLEscapeString(fmt.Sprintf("Objectifs %d", year.Year))
	var b strings.Builder
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %d %d" role="img" aria-labelledby="goals-title">`, chartWidth, chartHeight)
	fmt.Fprintf(&b, `<title id="goals-title">%s</title>`, title)

	for i := 0; i <= chartTicks; i++ {
		ratio := float64(i) / chartTicks
		y := bottom - ratio*plotH
		fmt.Fprintf(&b, `<line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" stroke="%s" stroke-width="0.5"/>`, chartPadding, y, chartPadding+plotW, y, colorGrid)
		fmt.Fprintf(&b, `<text x="%.2f" y="%.2f" fill="%s" font-size="9" text-anchor="end">%s</text>`, chartPadding-4, y+3, colorAxis, compactAmount(float64(top)*ratio))
	}
	fmt.Fprintf(&b, `<line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" stroke="%s"/>`, chartPadding, bottom, chartPadding+plotW, bottom, colorAxis)

	for i, g := range year.Goals {
		x := chartPadding + float64(i)*group
		month := template.HTMLEscapeString(g.Month)
		targetH := float64(g.Target) * scale
		achievedH := float64(g.Achieved) * scale
		fmt.Fprintf(&b, `<rect x="%.2f" y="%.2f" width="%.2f" height="%.2f" fill="%s" aria-label="Objectif %s"/>`, x+bar*0.3, bottom-targetH, bar, targetH, colorTarget, month)
		fmt.Fprintf(&b, `<rect x="%.2f" y="%.2f" width="%.2f" height="%.2f" fill="%s" aria-label="Réalisé %s"/>`, x+bar*1.4, bottom-achievedH, bar, achievedH, colorAchieved, month)
		fmt.Fprintf(&b, `<text x="%.2f" y="%.2f" fill="%s" font-size="9" text-anchor="middle">%s</text>`, x+group/2, bottom+12, colorAxis, template.HTMLEscapeString(shortMonth(g.Month)))
	}

	legendY := chartPadding - 14
	fmt.Fprintf(&b, `<rect x="%.2f" y="%.2f" width="10" height="10" fill="%s"/>`, chartPadding, legendY-8, colorTarget)
	fmt.Fprintf(&b, `<text x="%.2f" y="%.2f" fill="%s" font-size="10">Objectif</text>`, chartPadding+14, legendY, colorAxis)
	fmt.Fprintf(&b, `<rect x="%.2f" y="%.2f" width="10" height="10" fill="%s"/>`, chartPadding+84, legendY-8, colorAchieved)
	fmt.Fprintf(&b, `<text x="%.2f" y="%.2f" fill="%s" font-size="10">Réalisé</text>`, chartPadding+98, legendY, colorAxis)

	b.WriteString("</svg>")
	return b.String(), nil
}

func shortMonth(name string) string {
	runes := []rune(name)
	if len(runes) <= 4 {
		return name
	}
	return string(runes[:3]) + "."
}

// compactAmount renders axis ticks as 1.5M or 800k.
func compactAmount(v float64) string {
	switch {
	case v >= 1_000_000:
		return strings.TrimSuffix(fmt.Sprintf("%.1f", v/1_000_000), ".0") + "M"
	case v >= 1_000:
		return fmt.Sprintf("%.0fk", v/1_000)
	default:
		return fmt.Sprintf("%.0f", v)
	}
}
