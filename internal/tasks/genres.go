package tasks

import (
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/desertthunder/spotilytics/internal/models"
)

// Genre chart shape.
const (
	GenreChartTop   = 8
	GenreChartOther = "Other"
	GenreChartLabel = "Top Artist Genres"
)

// GenreChart counts artists per genre. Labels and Data are parallel.
type GenreChart struct {
	Label  string   `json:"label"`
	Labels []string `json:"labels"`
	Data   []int    `json:"data"`
}

// BuildGenreChart counts how many artists carry each genre.
//
// Genres are trimmed and lowercased before counting. The [GenreChartTop] most common
// genres are kept in descending order with ties in first-seen order, and the remaining
// counts are summed into [GenreChartOther]. Returns nil when no artist has a genre.
func BuildGenreChart(artists []models.Artist) *GenreChart {
	counts := map[string]int{}
	order := []string{}
	for _, a := range artists {
		for _, g := range a.Genres {
			g = strings.ToLower(strings.TrimSpace(g))
			if g == "" {
				continue
			}
			if _, seen := counts[g]; !seen {
				order = append(order, g)
			}
			counts[g]++
		}
	}
	if len(order) == 0 {
		return nil
	}

	slices.SortStableFunc(order, func(a, b string) int { return counts[b] - counts[a] })

	chart := &GenreChart{Label: GenreChartLabel}
	other := 0
	for i, g := range order {
		if i < GenreChartTop {
			chart.Labels = append(chart.Labels, titleWords(g))
			chart.Data = append(chart.Data, counts[g])
			continue
		}
		other += counts[g]
	}
	if other > 0 {
		chart.Labels = append(chart.Labels, GenreChartOther)
		chart.Data = append(chart.Data, other)
	}
	return chart
}

// titleWords capitalizes the first letter of every space-separated word.
func titleWords(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + w[size:]
	}
	return strings.Join(words, " ")
}
