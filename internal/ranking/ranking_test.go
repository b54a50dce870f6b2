package ranking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const target = "Movie.Name.2020.1080p.BluRay.x264-GRP.mkv"

func TestSelectEmpty(t *testing.T) {
	_, _, ok := Select(nil, target)
	assert.False(t, ok)
}

func TestSelectPrefersSourceMatch(t *testing.T) {
	candidates := []Candidate{
		// Identical label but a different source
		{Release: "Movie.Name.2020.1080p.WEB.x264-GRP.mkv", Downloads: 9000, ArchiveLink: "/a"},
		{Release: "Some.Other.Cut.2020.bluray.AAC", Downloads: 10, ArchiveLink: "/b"},
		{Release: "Movie.Name.2020.720p.BLURAY.x264", Downloads: 50, ArchiveLink: "/c"},
	}

	best, strategy, ok := Select(candidates, target)
	require.True(t, ok)
	assert.Equal(t, StrategySource, strategy)
	assert.Equal(t, "/c", best.ArchiveLink)
}

func TestSelectSourceTieGoesToFirst(t *testing.T) {
	candidates := []Candidate{
		{Release: "A.2020.BluRay.x264", Downloads: 30, ArchiveLink: "/first"},
		{Release: "B.2020.BluRay.x265", Downloads: 30, ArchiveLink: "/second"},
	}

	best, _, ok := Select(candidates, target)
	require.True(t, ok)
	assert.Equal(t, "/first", best.ArchiveLink)
}

func TestSelectFallsBackToDistanceWhenFilterEmpty(t *testing.T) {
	candidates := []Candidate{
		{Release: "Totally.Different.2019.WEB", Downloads: 1000, ArchiveLink: "/far"},
		{Release: "Movie.Name.2020.1080p.WEB.x264-GRP.mkv", Downloads: 5, ArchiveLink: "/near"},
	}

	best, strategy, ok := Select(candidates, target)
	require.True(t, ok)
	assert.Equal(t, StrategyDistance, strategy)
	assert.Equal(t, "/near", best.ArchiveLink)
}

func TestSelectDistanceWithoutTargetSource(t *testing.T) {
	untagged := "Movie Name 2020"
	candidates := []Candidate{
		{Release: "Movie Name 2021", Downloads: 3, ArchiveLink: "/one"},
		{Release: "Movie Name 2020 extended cut", Downloads: 900, ArchiveLink: "/far"},
		{Release: "Movie Name 2022", Downloads: 7, ArchiveLink: "/two"},
		{Release: "Movie Name 2023", Downloads: 7, ArchiveLink: "/three"},
	}

	best, strategy, ok := Select(candidates, untagged)
	require.True(t, ok)
	assert.Equal(t, StrategyDistance, strategy)
	// /one, /two and /three share distance 1; /two is the first of the most downloaded.
	assert.Equal(t, "/two", best.ArchiveLink)
}

func TestSelectFuzzyPropertyMinimumDistance(t *testing.T) {
	filename := "Show.S01E02.720p.mkv"
	candidates := []Candidate{
		{Release: "Show S01E02", Downloads: 100},
		{Release: "Show.S01E02.720p", Downloads: 2},
		{Release: "Show.S01E02.720p.HDTV", Downloads: 400},
		{Release: "Show.S01E03.720p.mkv", Downloads: 1},
	}

	best, _, ok := Select(candidates, filename)
	require.True(t, ok)

	minDistance := -1
	for _, c := range candidates {
		d := Distance(c.Release, filename)
		if minDistance < 0 || d < minDistance {
			minDistance = d
		}
	}
	assert.Equal(t, minDistance, Distance(best.Release, filename))
	for _, c := range candidates {
		if Distance(c.Release, filename) == minDistance {
			assert.GreaterOrEqual(t, best.Downloads, c.Downloads)
		}
	}
}

func TestSelectIsDeterministic(t *testing.T) {
	candidates := []Candidate{
		{Release: "X.2020.WEB.x264", Downloads: 1, ArchiveLink: "/1"},
		{Release: "Y.2020.WEB.x264", Downloads: 1, ArchiveLink: "/2"},
		{Release: "Z.2020.HDTV.x264", Downloads: 1, ArchiveLink: "/3"},
	}

	first, _, _ := Select(candidates, "Q.2020.HDTV.mkv")
	second, _, _ := Select(candidates, "Q.2020.HDTV.mkv")
	assert.Equal(t, first, second)
	assert.Equal(t, "/3", first.ArchiveLink)
}

func TestFilterBySourceWithoutTag(t *testing.T) {
	assert.Nil(t, FilterBySource([]Candidate{{Release: "A.2020.WEB"}}, "A 2020"))
}

func TestClosestKeepsOrder(t *testing.T) {
	candidates := []Candidate{
		{Release: "ab"}, {Release: "zz"}, {Release: "ac"},
	}
	closest := Closest(candidates, "aa")
	require.Len(t, closest, 2)
	assert.Equal(t, "ab", closest[0].Release)
	assert.Equal(t, "ac", closest[1].Release)
}
