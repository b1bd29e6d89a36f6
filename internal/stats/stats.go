// Package stats computes the derived metrics and aggregations the dashboard
// renders: headline summary numbers, per-category and per-year breakdowns,
// and the funding distribution histogram.
//
// All functions are pure transformations over a filtered view. Aggregate rows
// have no source order of their own, so breakdowns are sorted
// deterministically (category name ascending, year ascending).
package stats

import (
	"sort"

	"github.com/ecanbaykurt/Project-Explorer/pkg/explorer"
)

// DefaultHistogramBins matches the dashboard's funding histogram.
const DefaultHistogramBins = 20

// Summary holds the headline metrics shown above the charts.
type Summary struct {
	// TotalProjects is the number of records in the view
	TotalProjects int `json:"totalProjects"`

	// CategoryCount is the number of distinct categories in the view
	CategoryCount int `json:"categoryCount"`

	// AvgLaunchYear is the mean launch year (0 for an empty view)
	AvgLaunchYear float64 `json:"avgLaunchYear"`

	// TotalFunding is the sum of funding across the view
	TotalFunding float64 `json:"totalFunding"`
}

// CategoryCount is the number of projects in one category.
type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// CategoryFunding is the total funding across one category.
type CategoryFunding struct {
	Category string  `json:"category"`
	Funding  float64 `json:"funding"`
}

// YearCount is the number of projects launched in one year.
type YearCount struct {
	Year  int `json:"year"`
	Count int `json:"count"`
}

// HistogramBin is one equal-width bin of the funding distribution.
// Low is inclusive; High is exclusive except for the last bin.
type HistogramBin struct {
	Low   float64 `json:"low"`
	High  float64 `json:"high"`
	Count int     `json:"count"`
}

// Report bundles everything the stats endpoint returns.
type Report struct {
	Summary           Summary           `json:"summary"`
	ByCategory        []CategoryCount   `json:"byCategory"`
	FundingByCategory []CategoryFunding `json:"fundingByCategory"`
	ByYear            []YearCount       `json:"byYear"`
	FundingHistogram  []HistogramBin    `json:"fundingHistogram"`
}

// Summarize computes the headline metrics for a view.
func Summarize(view []explorer.ProjectRecord) Summary {
	s := Summary{TotalProjects: len(view)}
	if len(view) == 0 {
		return s
	}

	categories := make(map[string]struct{})
	yearSum := 0
	for _, rec := range view {
		categories[rec.Category] = struct{}{}
		yearSum += rec.LaunchYear
		s.TotalFunding += rec.Funding
	}
	s.CategoryCount = len(categories)
	s.AvgLaunchYear = float64(yearSum) / float64(len(view))
	return s
}

// CountByCategory returns per-category project counts, sorted by category.
func CountByCategory(view []explorer.ProjectRecord) []CategoryCount {
	counts := make(map[string]int)
	for _, rec := range view {
		counts[rec.Category]++
	}

	out := make([]CategoryCount, 0, len(counts))
	for category, count := range counts {
		out = append(out, CategoryCount{Category: category, Count: count})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Category < out[j].Category })
	return out
}

// FundingByCategory returns per-category funding totals, sorted by category.
func FundingByCategory(view []explorer.ProjectRecord) []CategoryFunding {
	totals := make(map[string]float64)
	for _, rec := range view {
		totals[rec.Category] += rec.Funding
	}

	out := make([]CategoryFunding, 0, len(totals))
	for category, funding := range totals {
		out = append(out, CategoryFunding{Category: category, Funding: funding})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Category < out[j].Category })
	return out
}

// CountByYear returns per-launch-year project counts, sorted by year.
func CountByYear(view []explorer.ProjectRecord) []YearCount {
	counts := make(map[int]int)
	for _, rec := range view {
		counts[rec.LaunchYear]++
	}

	out := make([]YearCount, 0, len(counts))
	for year, count := range counts {
		out = append(out, YearCount{Year: year, Count: count})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Year < out[j].Year })
	return out
}

// FundingHistogram builds an equal-width histogram of funding values over
// [min, max]. A view whose funding values are all identical collapses to a
// single bin. An empty view yields no bins.
func FundingHistogram(view []explorer.ProjectRecord, bins int) []HistogramBin {
	if len(view) == 0 {
		return nil
	}
	if bins < 1 {
		bins = DefaultHistogramBins
	}

	low, high := view[0].Funding, view[0].Funding
	for _, rec := range view[1:] {
		if rec.Funding < low {
			low = rec.Funding
		}
		if rec.Funding > high {
			high = rec.Funding
		}
	}

	if low == high {
		return []HistogramBin{{Low: low, High: high, Count: len(view)}}
	}

	width := (high - low) / float64(bins)
	out := make([]HistogramBin, bins)
	for i := range out {
		out[i].Low = low + float64(i)*width
		out[i].High = low + float64(i+1)*width
	}
	out[bins-1].High = high

	for _, rec := range view {
		idx := int((rec.Funding - low) / width)
		if idx >= bins {
			idx = bins - 1 // max value lands in the last bin
		}
		out[idx].Count++
	}
	return out
}

// Describe computes the full stats report for a view.
func Describe(view []explorer.ProjectRecord) Report {
	return Report{
		Summary:           Summarize(view),
		ByCategory:        CountByCategory(view),
		FundingByCategory: FundingByCategory(view),
		ByYear:            CountByYear(view),
		FundingHistogram:  FundingHistogram(view, DefaultHistogramBins),
	}
}
