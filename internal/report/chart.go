package report

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/mazznoer/colorgrad"

	"pkdindustries/toolshack/internal/metrics"
)

const (
	chartWidth  = 640
	chartHeight = 420
	// maxSlices caps how many dimensions a chart shows before folding
	// the remainder into "other".
	maxSlices = 12
)

// palette returns n hex colors spread across the report gradient.
func palette(n int) []string {
	if n < 1 {
		n = 1
	}
	grad, _ := colorgrad.NewGradient().
		HtmlColors("#1115f0", "#18b6a8", "#f0a811", "#f0115f").
		Build()
	colors := grad.Colors(uint(n))
	hex := make([]string, n)
	for i, c := range colors {
		r, g, b, _ := c.RGBA255()
		hex[i] = fmt.Sprintf("#%02x%02x%02x", r, g, b)
	}
	return hex
}

// topRows sorts rows by amount descending and folds everything past
// maxSlices into a single "other" row.
func topRows(rows []metrics.Row) []metrics.Row {
	sorted := make([]metrics.Row, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Amount > sorted[j].Amount
	})
	if len(sorted) <= maxSlices {
		return sorted
	}
	rest := 0.0
	for _, row := range sorted[maxSlices:] {
		rest += row.Amount
	}
	return append(sorted[:maxSlices], metrics.Row{Dimension: "other", Amount: rest})
}

func svgHeader(title string) string {
	return fmt.Sprintf(
		`<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d" font-family="sans-serif">`+
			"\n"+`<text x="%d" y="24" font-size="18" text-anchor="middle">%s</text>`+"\n",
		chartWidth, chartHeight, chartWidth, chartHeight, chartWidth/2, escapeXML(title))
}

func escapeXML(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")
	return r.Replace(s)
}

// PieChartSVG renders rows as a pie with a side legend.
func PieChartSVG(title string, rows []metrics.Row) []byte {
	rows = topRows(rows)
	var sb strings.Builder
	sb.WriteString(svgHeader(title))

	total := 0.0
	for _, row := range rows {
		total += row.Amount
	}
	if total <= 0 || len(rows) == 0 {
		sb.WriteString(`<text x="320" y="210" text-anchor="middle">no data</text>` + "\n</svg>\n")
		return []byte(sb.String())
	}

	const cx, cy, r = 200.0, 230.0, 160.0
	colors := palette(len(rows))
	angle := -math.Pi / 2
	for i, row := range rows {
		sweep := 2 * math.Pi * row.Amount / total
		x1 := cx + r*math.Cos(angle)
		y1 := cy + r*math.Sin(angle)
		angle += sweep
		x2 := cx + r*math.Cos(angle)
		y2 := cy + r*math.Sin(angle)
		large := 0
		if sweep > math.Pi {
			large = 1
		}
		fmt.Fprintf(&sb,
			`<path d="M%.1f,%.1f L%.1f,%.1f A%.1f,%.1f 0 %d 1 %.1f,%.1f Z" fill="%s"/>`+"\n",
			cx, cy, x1, y1, r, r, large, x2, y2, colors[i])
	}
	writeLegend(&sb, rows, colors, 400)
	sb.WriteString("</svg>\n")
	return []byte(sb.String())
}

// BarChartSVG renders rows as vertical bars.
func BarChartSVG(title string, rows []metrics.Row) []byte {
	rows = topRows(rows)
	var sb strings.Builder
	sb.WriteString(svgHeader(title))
	if len(rows) == 0 {
		sb.WriteString(`<text x="320" y="210" text-anchor="middle">no data</text>` + "\n</svg>\n")
		return []byte(sb.String())
	}

	maxAmount := 0.0
	for _, row := range rows {
		if row.Amount > maxAmount {
			maxAmount = row.Amount
		}
	}
	if maxAmount <= 0 {
		maxAmount = 1
	}

	const left, bottom, plotW, plotH = 60.0, 360.0, 540.0, 300.0
	colors := palette(len(rows))
	step := plotW / float64(len(rows))
	barW := step * 0.7
	for i, row := range rows {
		h := plotH * row.Amount / maxAmount
		x := left + float64(i)*step + (step-barW)/2
		fmt.Fprintf(&sb,
			`<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="%s"/>`+"\n",
			x, bottom-h, barW, h, colors[i])
		fmt.Fprintf(&sb,
			`<text x="%.1f" y="%.1f" font-size="9" text-anchor="end" transform="rotate(-45 %.1f %.1f)">%s</text>`+"\n",
			x+barW/2, bottom+12, x+barW/2, bottom+12, escapeXML(clipLabel(row.Dimension)))
	}
	fmt.Fprintf(&sb, `<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="#333"/>`+"\n",
		left, bottom, left+plotW, bottom)
	sb.WriteString("</svg>\n")
	return []byte(sb.String())
}

// LineChartSVG renders per-day totals as a single polyline. Amounts are
// summed across services per date; dates keep their arrival order.
func LineChartSVG(title string, rows []metrics.DailyRow) []byte {
	var sb strings.Builder
	sb.WriteString(svgHeader(title))

	totals := make(map[string]float64)
	var dates []string
	for _, row := range rows {
		if _, seen := totals[row.Date]; !seen {
			dates = append(dates, row.Date)
		}
		totals[row.Date] += row.Amount
	}
	if len(dates) == 0 {
		sb.WriteString(`<text x="320" y="210" text-anchor="middle">no data</text>` + "\n</svg>\n")
		return []byte(sb.String())
	}

	maxAmount := 0.0
	for _, v := range totals {
		if v > maxAmount {
			maxAmount = v
		}
	}
	if maxAmount <= 0 {
		maxAmount = 1
	}

	const left, bottom, plotW, plotH = 60.0, 360.0, 540.0, 300.0
	var points []string
	for i, date := range dates {
		x := left
		if len(dates) > 1 {
			x = left + plotW*float64(i)/float64(len(dates)-1)
		}
		y := bottom - plotH*totals[date]/maxAmount
		points = append(points, fmt.Sprintf("%.1f,%.1f", x, y))
	}
	fmt.Fprintf(&sb, `<polyline points="%s" fill="none" stroke="%s" stroke-width="2"/>`+"\n",
		strings.Join(points, " "), palette(1)[0])
	fmt.Fprintf(&sb, `<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="#333"/>`+"\n",
		left, bottom, left+plotW, bottom)
	fmt.Fprintf(&sb, `<text x="%.1f" y="%.1f" font-size="10">%s</text>`+"\n",
		left, bottom+16, escapeXML(dates[0]))
	fmt.Fprintf(&sb, `<text x="%.1f" y="%.1f" font-size="10" text-anchor="end">%s</text>`+"\n",
		left+plotW, bottom+16, escapeXML(dates[len(dates)-1]))
	sb.WriteString("</svg>\n")
	return []byte(sb.String())
}

func writeLegend(sb *strings.Builder, rows []metrics.Row, colors []string, x int) {
	for i, row := range rows {
		y := 60 + i*22
		fmt.Fprintf(sb, `<rect x="%d" y="%d" width="14" height="14" fill="%s"/>`+"\n", x, y, colors[i])
		fmt.Fprintf(sb, `<text x="%d" y="%d" font-size="11">%s ($%.2f)</text>`+"\n",
			x+20, y+11, escapeXML(clipLabel(row.Dimension)), row.Amount)
	}
}

func clipLabel(s string) string {
	runes := []rune(s)
	if len(runes) <= 24 {
		return s
	}
	return string(runes[:24]) + "..."
}
