package statsdomain

import (
	"bytes"
	"fmt"
	"math"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// MaxChartBars caps the number of players drawn on the averages chart.
const MaxChartBars = 15

// ChartFileName is the attachment name used for the rendered chart.
const ChartFileName = "wordle-stats.png"

// RenderAverageChart draws a PNG bar chart of the best ranked players' averages.
// label turns a player into the text shown under its bar. It returns nil when
// there is nothing to draw.
func RenderAverageChart(players []PlayerStats, label func(PlayerStats) string) ([]byte, error) {
	if len(players) == 0 {
		return nil, nil
	}
	if len(players) > MaxChartBars {
		players = players[:MaxChartBars]
	}

	top := 1.0
	bars := make([]chart.Value, len(players))
	for i, p := range players {
		top = math.Max(top, p.Average())
		bars[i] = chart.Value{
			Label: label(p),
			Value: p.Average(),
			Style: chart.Style{
				FillColor:   drawing.ColorFromHex("6aaa64"),
				StrokeColor: drawing.ColorFromHex("538d4e"),
				StrokeWidth: 1,
			},
		}
	}

	graph := chart.BarChart{
		Title:      "Average Score",
		Width:      90*len(bars) + 120,
		Height:     420,
		BarWidth:   60,
		BarSpacing: 30,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 10, Right: 10, Bottom: 10},
		},
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: 0, Max: math.Ceil(top)},
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("%.1f", f)
				}
				return ""
			},
		},
		Bars: bars,
	}

	buf := bytes.NewBuffer(nil)
	if err := graph.Render(chart.PNG, buf); err != nil {
		return nil, fmt.Errorf("failed to render stats chart: %w", err)
	}
	return buf.Bytes(), nil
}
