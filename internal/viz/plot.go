// Package viz renders trajectories and spectra in the terminal.
package viz

import (
	"fmt"
	"strings"

	"github.com/guptarohit/asciigraph"
)

// SeriesPlot renders one state component against step index.
func SeriesPlot(states [][]float64, component int, caption string, width, height int) string {
	series := make([]float64, len(states))
	for i, s := range states {
		series[i] = s[component]
	}
	return asciigraph.Plot(series,
		asciigraph.Width(width),
		asciigraph.Height(height),
		asciigraph.Caption(caption),
	)
}

// SpectrumPlot renders the convergence of every Lyapunov exponent on
// one plot.
func SpectrumPlot(exponents [][]float64, width, height int) string {
	if len(exponents) == 0 {
		return ""
	}
	d := len(exponents[0])
	series := make([][]float64, d)
	for i := 0; i < d; i++ {
		series[i] = make([]float64, len(exponents))
		for k := range exponents {
			series[i][k] = exponents[k][i]
		}
	}
	return asciigraph.PlotMany(series,
		asciigraph.Width(width),
		asciigraph.Height(height),
		asciigraph.Caption("lyapunov spectrum"),
	)
}

// SummaryTable renders a two-column key/value table.
func SummaryTable(pairs [][2]string) string {
	var b strings.Builder
	for _, kv := range pairs {
		b.WriteString(LabelStyle.Render(fmt.Sprintf("%-14s", kv[0])))
		b.WriteString(ValueStyle.Render(kv[1]))
		b.WriteString("\n")
	}
	return PanelStyle.Render(b.String())
}
