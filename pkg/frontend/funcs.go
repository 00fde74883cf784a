package frontend

import (
	"fmt"
	"html/template"
	"math"
	"strconv"
	"strings"

	"github.com/Masterminds/sprig/v3"
	"github.com/ethpandaops/rbi/pkg/convert"
	"github.com/ethpandaops/rbi/pkg/dashboard"
)

const (
	chartWidth  = 800.0
	chartHeight = 180.0
	chartPad    = 10.0
)

func funcMap() template.FuncMap {
	funcs := sprig.HtmlFuncMap()

	funcs["lineChart"] = lineChart
	funcs["maxValue"] = maxValue
	funcs["barWidth"] = barWidth
	funcs["fmtValue"] = fmtValue
	funcs["cell"] = convert.Label

	return funcs
}

// lineChart draws the points as an SVG polyline, first label on the left
// and last on the right.
func lineChart(points []dashboard.Point) template.HTML {
	if len(points) == 0 {
		return ""
	}

	lo, hi := points[0].Value, points[0].Value
	for _, p := range points {
		lo = math.Min(lo, p.Value)
		hi = math.Max(hi, p.Value)
	}

	step := chartWidth
	if len(points) > 1 {
		step = chartWidth / float64(len(points)-1)
	}

	coords := make([]string, 0, len(points))
	for i, p := range points {
		x := float64(i) * step
		y := chartHeight - scale(p.Value, lo, hi, chartPad, chartHeight-chartPad)
		coords = append(coords, fmt.Sprintf("%.1f,%.1f", x, y))
	}

	first := template.HTMLEscapeString(points[0].Label)
	last := template.HTMLEscapeString(points[len(points)-1].Label)

	//nolint:gosec // labels are escaped above, coordinates are numbers
	return template.HTML(fmt.Sprintf(
		`<svg viewBox="0 -4 %.0f %.0f" role="img">`+
			`<polyline points="%s" fill="none" stroke="#7aa2ff" stroke-width="2"/>`+
			`<line x1="0" y1="%.1f" x2="%.0f" y2="%.1f" stroke="#22305f"/>`+
			`<text x="0" y="%.0f" fill="#9aa7cf" font-size="11">%s</text>`+
			`<text x="%.0f" y="%.0f" fill="#9aa7cf" font-size="11" text-anchor="end">%s</text>`+
			`</svg>`,
		chartWidth, chartHeight+24,
		strings.Join(coords, " "),
		chartHeight-0.5, chartWidth, chartHeight-0.5,
		chartHeight+16, first,
		chartWidth, chartHeight+16, last,
	))
}

func scale(v, lo, hi, a, b float64) float64 {
	if hi == lo {
		return (a + b) / 2
	}

	return a + (v-lo)*(b-a)/(hi-lo)
}

func maxValue(points []dashboard.Point) float64 {
	hi := 0.0
	for _, p := range points {
		hi = math.Max(hi, math.Abs(p.Value))
	}

	return hi
}

// barWidth is the bar length in percent of the largest bar
func barWidth(value, hi float64) float64 {
	if hi <= 0 {
		return 0
	}

	return math.Round(math.Abs(value)/hi*1000) / 10
}

// fmtValue prints large values grouped and small ones with two decimals
func fmtValue(v float64) string {
	if math.Abs(v) >= 1000 {
		return convert.FmtMoney(v)
	}

	if v == math.Trunc(v) {
		return strconv.FormatFloat(v, 'f', 0, 64)
	}

	return strconv.FormatFloat(v, 'f', 2, 64)
}
