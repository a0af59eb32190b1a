// Package charts renders report charts as PNG images.
package charts

import (
	"bytes"
	"fmt"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/ivanoskov/equilibra/internal/model"
	"github.com/ivanoskov/equilibra/internal/money"
	"github.com/ivanoskov/equilibra/internal/service"
)

// Palette holds the colours of one theme.
type Palette struct {
	Background drawing.Color
	Text       drawing.Color
	Income     drawing.Color
	Expense    drawing.Color
	Balance    drawing.Color
}

var (
	lightPalette = Palette{
		Background: chart.ColorWhite,
		Text:       chart.ColorBlack,
		Income:     drawing.ColorFromHex("16a34a"),
		Expense:    drawing.ColorFromHex("dc2626"),
		Balance:    drawing.ColorFromHex("2563eb"),
	}
	darkPalette = Palette{
		Background: drawing.ColorFromHex("111827"),
		Text:       drawing.ColorFromHex("f3f4f6"),
		Income:     drawing.ColorFromHex("4ade80"),
		Expense:    drawing.ColorFromHex("f87171"),
		Balance:    drawing.ColorFromHex("60a5fa"),
	}
)

// PaletteFor resolves the theme; a bot has no system preference, so system
// renders light.
func PaletteFor(mode model.ThemeMode) Palette {
	if mode.IsDark(false) {
		return darkPalette
	}
	return lightPalette
}

type ChartGenerator struct {
	palette Palette
}

func NewChartGenerator(mode model.ThemeMode) *ChartGenerator {
	return &ChartGenerator{palette: PaletteFor(mode)}
}

func (g *ChartGenerator) background() chart.Style {
	return chart.Style{
		Padding:   chart.Box{Top: 50, Left: 50, Right: 50, Bottom: 50},
		FillColor: g.palette.Background,
	}
}

func (g *ChartGenerator) axisStyle() chart.Style {
	return chart.Style{
		FontSize:  12,
		FontColor: g.palette.Text,
	}
}

func currencyTick(v interface{}) string {
	if f, ok := v.(float64); ok {
		return fmt.Sprintf("R$ %.0f", f)
	}
	return ""
}

// calculateMovingAverage averages each point with up to window-1 points before it.
func calculateMovingAverage(values []float64, window int) []float64 {
	result := make([]float64, len(values))
	for i := range values {
		count := 0
		sum := 0.0
		for j := max(0, i-window+1); j <= i; j++ {
			sum += values[j]
			count++
		}
		result[i] = sum / float64(count)
	}
	return result
}

// TrendChart plots daily income, expense and running balance. It returns nil
// when the window has no movement.
func (g *ChartGenerator) TrendChart(report *service.Report) ([]byte, error) {
	if len(report.Trend) < 2 || (report.Income == 0 && report.Expenses == 0) {
		return nil, nil
	}

	xValues := make([]time.Time, len(report.Trend))
	expenseValues := make([]float64, len(report.Trend))
	incomeValues := make([]float64, len(report.Trend))
	balanceValues := make([]float64, len(report.Trend))

	runningBalance := 0.0
	for i, point := range report.Trend {
		xValues[i] = point.Date.Time
		expenseValues[i] = point.Expense
		incomeValues[i] = point.Income
		runningBalance += point.Income - point.Expense
		balanceValues[i] = runningBalance
	}

	series := []chart.Series{
		chart.TimeSeries{
			Name:    "Expenses",
			XValues: xValues,
			YValues: expenseValues,
			Style:   chart.Style{StrokeColor: g.palette.Expense, StrokeWidth: 2},
		},
		chart.TimeSeries{
			Name:    "Income",
			XValues: xValues,
			YValues: incomeValues,
			Style:   chart.Style{StrokeColor: g.palette.Income, StrokeWidth: 2},
		},
		chart.TimeSeries{
			Name:    "Balance",
			XValues: xValues,
			YValues: balanceValues,
			Style:   chart.Style{StrokeColor: g.palette.Balance, StrokeWidth: 3},
		},
	}
	if len(report.Trend) > 7 {
		series = append(series, chart.TimeSeries{
			Name:    "Expense trend (7 days)",
			XValues: xValues,
			YValues: calculateMovingAverage(expenseValues, 7),
			Style: chart.Style{
				StrokeColor:     g.palette.Expense.WithAlpha(100),
				StrokeWidth:     2,
				StrokeDashArray: []float64{5.0, 5.0},
			},
		})
	}

	graph := chart.Chart{
		Width:      1200,
		Height:     600,
		Background: g.background(),
		Canvas:     chart.Style{FillColor: g.palette.Background},
		XAxis: chart.XAxis{
			ValueFormatter: chart.TimeValueFormatterWithFormat("02/01"),
			Style:          g.axisStyle(),
		},
		YAxis: chart.YAxis{
			ValueFormatter: currencyTick,
			Style:          g.axisStyle(),
		},
		Series: series,
	}
	graph.Elements = []chart.Renderable{
		chart.Legend(&graph, g.axisStyle()),
	}

	buffer := bytes.NewBuffer([]byte{})
	if err := graph.Render(chart.PNG, buffer); err != nil {
		return nil, fmt.Errorf("failed to render trend chart: %w", err)
	}
	return buffer.Bytes(), nil
}

// CategoryPie shows the expense split of the report window.
func (g *ChartGenerator) CategoryPie(report *service.Report) ([]byte, error) {
	values := make([]chart.Value, 0, len(report.Categories))
	for _, cat := range report.Categories {
		// slices under 1% are unreadable
		if cat.Amount <= 0 || cat.Share <= 1.0 {
			continue
		}
		values = append(values, chart.Value{
			Label: fmt.Sprintf("%s: %s (%.1f%%)", cat.Name, money.Format(cat.Amount), cat.Share),
			Value: cat.Amount,
			Style: g.axisStyle(),
		})
	}
	if len(values) == 0 {
		return nil, nil
	}

	pie := chart.PieChart{
		Title:      "Expenses by category",
		TitleStyle: g.axisStyle(),
		Width:      800,
		Height:     800,
		Values:     values,
		Background: g.background(),
		Canvas:     chart.Style{FillColor: g.palette.Background},
	}

	buffer := bytes.NewBuffer([]byte{})
	if err := pie.Render(chart.PNG, buffer); err != nil {
		return nil, fmt.Errorf("failed to render category pie chart: %w", err)
	}
	return buffer.Bytes(), nil
}

// MonthlyBars compares income and expenses of the last months, oldest first.
func (g *ChartGenerator) MonthlyBars(report *service.Report) ([]byte, error) {
	bars := make([]chart.Value, 0, 2*len(report.LastMonths))
	top := 0.0
	for _, m := range report.LastMonths {
		label := fmt.Sprintf("%s/%02d", m.Month.Month.String()[:3], m.Month.Year%100)
		bars = append(bars,
			chart.Value{
				Label: label + " in",
				Value: m.Income,
				Style: chart.Style{StrokeColor: g.palette.Income, FillColor: g.palette.Income},
			},
			chart.Value{
				Label: label + " out",
				Value: m.Expenses,
				Style: chart.Style{StrokeColor: g.palette.Expense, FillColor: g.palette.Expense},
			},
		)
		top = max(top, m.Income, m.Expenses)
	}
	if top <= 0 {
		return nil, nil
	}

	graph := chart.BarChart{
		Title:      "Last months",
		TitleStyle: g.axisStyle(),
		Width:      1200,
		Height:     600,
		BarWidth:   60,
		Background: g.background(),
		Canvas:     chart.Style{FillColor: g.palette.Background},
		XAxis:      g.axisStyle(),
		YAxis: chart.YAxis{
			ValueFormatter: currencyTick,
			Style:          g.axisStyle(),
			// anchored at zero so equal bars still have a range
			Range: &chart.ContinuousRange{Min: 0, Max: top},
		},
		Bars: bars,
	}

	buffer := bytes.NewBuffer([]byte{})
	if err := graph.Render(chart.PNG, buffer); err != nil {
		return nil, fmt.Errorf("failed to render monthly chart: %w", err)
	}
	return buffer.Bytes(), nil
}

// Render produces every chart that has data, in display order.
func (g *ChartGenerator) Render(report *service.Report) ([][]byte, error) {
	renderers := []func(*service.Report) ([]byte, error){
		g.TrendChart,
		g.CategoryPie,
		g.MonthlyBars,
	}

	images := make([][]byte, 0, len(renderers))
	for _, fn := range renderers {
		img, err := fn(report)
		if err != nil {
			return nil, err
		}
		if img != nil {
			images = append(images, img)
		}
	}
	return images, nil
}
