package report

import (
	"strings"
	"testing"

	"pkdindustries/toolshack/internal/metrics"
)

func TestPieChartSVG(t *testing.T) {
	svg := string(PieChartSVG("Cost by Service", []metrics.Row{
		{Dimension: "Amazon EC2", Amount: 75},
		{Dimension: "Amazon S3", Amount: 25},
	}))
	if !strings.HasPrefix(svg, "<svg") {
		t.Fatalf("not an svg document: %q", svg[:40])
	}
	if strings.Count(svg, "<path") != 2 {
		t.Errorf("want 2 pie slices, got:\n%s", svg)
	}
	if !strings.Contains(svg, "Amazon EC2") || !strings.Contains(svg, "$75.00") {
		t.Errorf("legend missing dimension or amount:\n%s", svg)
	}
}

func TestPieChartSVGEmpty(t *testing.T) {
	svg := string(PieChartSVG("Cost by Service", nil))
	if !strings.Contains(svg, "no data") {
		t.Errorf("empty chart should render a placeholder:\n%s", svg)
	}
}

func TestPieChartFoldsLongTail(t *testing.T) {
	var rows []metrics.Row
	for i := range 20 {
		rows = append(rows, metrics.Row{Dimension: string(rune('a' + i)), Amount: float64(20 - i)})
	}
	svg := string(PieChartSVG("Cost by Service", rows))
	if !strings.Contains(svg, "other") {
		t.Errorf("long tail should fold into other:\n%s", svg)
	}
	if got := strings.Count(svg, "<path"); got != maxSlices+1 {
		t.Errorf("slices = %d, want %d", got, maxSlices+1)
	}
}

func TestBarChartSVG(t *testing.T) {
	svg := string(BarChartSVG("Cost by Region", []metrics.Row{
		{Dimension: "us-east-1", Amount: 100},
		{Dimension: "eu-west-1", Amount: 10},
	}))
	if strings.Count(svg, "<rect") != 2 {
		t.Errorf("want 2 bars, got:\n%s", svg)
	}
	if !strings.Contains(svg, "us-east-1") {
		t.Errorf("bar labels missing:\n%s", svg)
	}
}

func TestLineChartSVG(t *testing.T) {
	svg := string(LineChartSVG("Daily Cost", []metrics.DailyRow{
		{Date: "2026-08-01", Service: "Amazon EC2", Amount: 4},
		{Date: "2026-08-01", Service: "Amazon S3", Amount: 1},
		{Date: "2026-08-02", Service: "Amazon EC2", Amount: 5},
	}))
	if !strings.Contains(svg, "<polyline") {
		t.Errorf("line chart missing polyline:\n%s", svg)
	}
	// two dates, so two points on the line
	if !strings.Contains(svg, "2026-08-01") || !strings.Contains(svg, "2026-08-02") {
		t.Errorf("axis labels missing:\n%s", svg)
	}
}

func TestEscapeXML(t *testing.T) {
	got := escapeXML(`AWS <Glue> & "Athena"`)
	want := "AWS &lt;Glue&gt; &amp; &quot;Athena&quot;"
	if got != want {
		t.Errorf("escapeXML = %q, want %q", got, want)
	}
}
