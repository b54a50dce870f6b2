// Package ranking picks the subtitle listing that best matches a release.
//
// A candidate sharing the release's encoding source is preferred outright,
// the most downloaded one winning. Without such a candidate the labels
// closest to the release name by edit distance are kept and the most
// downloaded of those wins. Ties always go to the earlier candidate.
package ranking

import (
	"github.com/agnivade/levenshtein"

	"github.com/amaumene/gosubfetch/internal/release"
)

// Candidate is one row of a subtitle host listing.
type Candidate struct {
	Release     string `json:"release"`
	Downloads   int    `json:"downloads"`
	ArchiveLink string `json:"archiveLink"`
	DetailLink  string `json:"detailLink"`
}

// Strategy names the rule that produced a selection.
type Strategy string

const (
	StrategySource   Strategy = "source"
	StrategyDistance Strategy = "distance"
)

// Select returns the best candidate for filename and the strategy used.
// ok is false only when candidates is empty.
func Select(candidates []Candidate, filename string) (best Candidate, strategy Strategy, ok bool) {
	if len(candidates) == 0 {
		return Candidate{}, "", false
	}

	if matching := FilterBySource(candidates, filename); len(matching) > 0 {
		return mostDownloaded(matching), StrategySource, true
	}

	return mostDownloaded(Closest(candidates, filename)), StrategyDistance, true
}

// FilterBySource keeps the candidates whose source tag equals filename's.
// It returns nil when filename carries no source tag.
func FilterBySource(candidates []Candidate, filename string) []Candidate {
	if release.Source(filename) == "" {
		return nil
	}

	var matching []Candidate
	for _, c := range candidates {
		if release.SameSource(filename, c.Release) {
			matching = append(matching, c)
		}
	}
	return matching
}

// Closest returns, in their original order, the candidates whose label is at
// the minimum edit distance from filename.
func Closest(candidates []Candidate, filename string) []Candidate {
	distances := make([]int, len(candidates))
	minDistance := -1
	for i, c := range candidates {
		distances[i] = Distance(c.Release, filename)
		if minDistance < 0 || distances[i] < minDistance {
			minDistance = distances[i]
		}
	}

	var closest []Candidate
	for i, c := range candidates {
		if distances[i] == minDistance {
			closest = append(closest, c)
		}
	}
	return closest
}

// Distance is the Levenshtein distance between two labels.
func Distance(a, b string) int {
	return levenshtein.ComputeDistance(a, b)
}

// mostDownloaded assumes a non-empty slice.
func mostDownloaded(candidates []Candidate) Candidate {
	best := candidates[0]
	for _, c := range candidates[1:] {
		if c.Downloads > best.Downloads {
			best = c
		}
	}
	return best
}
