package service

import (
	"fmt"
	"math"
	"sort"

	"github.com/noah-isme/class-records-api/internal/models"
)

// histogramEdges are the fixed cut points shared by the histogram and the categories.
// Overall averages are percentages, so anything above 10 lands outside every bin.
var histogramEdges = []float64{0, 3, 5, 7, 9, 10}

type categoryBand struct {
	name         string
	lower, upper float64
}

var categoryBands = []categoryBand{
	{name: "Insufficient", lower: 0, upper: 5},
	{name: "Regular", lower: 5, upper: 7},
	{name: "Good", lower: 7, upper: 9},
	{name: "Excellent", lower: 9, upper: 10},
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// median sorts a copy; even counts average the two middle values.
func median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

// inBand treats the band as half-open except when upper is the last edge.
func inBand(v, lower, upper float64) bool {
	if upper == histogramEdges[len(histogramEdges)-1] {
		return v >= lower && v <= upper
	}
	return v >= lower && v < upper
}

func histogram(values []float64) []models.HistogramBin {
	bins := make([]models.HistogramBin, 0, len(histogramEdges)-1)
	for i := 0; i < len(histogramEdges)-1; i++ {
		lower, upper := histogramEdges[i], histogramEdges[i+1]
		label := fmt.Sprintf("[%g,%g)", lower, upper)
		if i == len(histogramEdges)-2 {
			label = fmt.Sprintf("[%g,%g]", lower, upper)
		}
		bin := models.HistogramBin{Label: label, Lower: lower, Upper: upper}
		for _, v := range values {
			if inBand(v, lower, upper) {
				bin.Count++
			}
		}
		bins = append(bins, bin)
	}
	return bins
}

func categorize(values []float64) []models.PerformanceCategory {
	total := len(values)
	categories := make([]models.PerformanceCategory, 0, len(categoryBands))
	for _, band := range categoryBands {
		category := models.PerformanceCategory{Name: band.name}
		for _, v := range values {
			if inBand(v, band.lower, band.upper) {
				category.Count++
			}
		}
		if total > 0 {
			category.Percent = round1(float64(category.Count) / float64(total) * 100)
		}
		categories = append(categories, category)
	}
	return categories
}

// performanceStats summarises the overall averages that are strictly positive.
func performanceStats(averages []float64) (models.PerformanceStats, []float64) {
	values := make([]float64, 0, len(averages))
	for _, v := range averages {
		if v > 0 {
			values = append(values, v)
		}
	}

	stats := models.PerformanceStats{Count: len(values)}
	if len(values) == 0 {
		return stats, values
	}

	m := mean(values)
	stats.Mean = round2(m)
	stats.Median = round2(median(values))
	stats.Max = values[0]
	stats.Min = values[0]
	for _, v := range values {
		if v > stats.Max {
			stats.Max = v
		}
		if v < stats.Min {
			stats.Min = v
		}
		switch {
		case v > m:
			stats.AboveMean++
		case v < m:
			stats.BelowMean++
		}
	}
	return stats, values
}

// performanceSentences renders the two fixed-template remarks of a performance report.
func performanceSentences(stats models.PerformanceStats) []string {
	var overall string
	switch {
	case stats.Count == 0:
		overall = "No graded results are available for this class yet."
	case stats.Mean >= 70:
		overall = fmt.Sprintf("The class average is %.2f%%, a good overall performance.", stats.Mean)
	case stats.Mean >= 50:
		overall = fmt.Sprintf("The class average is %.2f%%, a regular overall performance.", stats.Mean)
	default:
		overall = fmt.Sprintf("The class average is %.2f%%, the class needs attention.", stats.Mean)
	}

	var below string
	switch stats.BelowMean {
	case 0:
		below = "No student is below the class average."
	case 1:
		below = "1 student is below the class average and may need reinforcement."
	default:
		below = fmt.Sprintf("%d students are below the class average and may need reinforcement.", stats.BelowMean)
	}
	return []string{overall, below}
}
