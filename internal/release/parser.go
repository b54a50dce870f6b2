// Package release infers title, year or episode, resolution and encoding
// source from dot-delimited video release file names.
package release

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/cehbz/torrentname"
)

var (
	episodeRegex    = regexp.MustCompile(`(?i)s\d{2}e\d{2}`)
	yearRegex       = regexp.MustCompile(`\.\d{4}\.`)
	resolutionRegex = regexp.MustCompile(`(?i)\.\d{3,4}p`)
	// Source tags must be surrounded by dots so that titles containing
	// "web" or "dvd" as words do not match.
	sourceRegex = regexp.MustCompile(`(?i)\.(web[^.]*|dvd[^.]*|bd(?:r(?:ip)?)?|blu-?ray|br?rip|hdtv[^.]*)\.`)
)

// Descriptor is the information inferred from one release file name.
// Empty fields were not detected.
type Descriptor struct {
	Name       string `json:"name"`
	Year       string `json:"year,omitempty"`
	Episode    string `json:"episode,omitempty"`
	Resolution string `json:"resolution,omitempty"`
	Source     string `json:"source,omitempty"`
	Codec      string `json:"codec,omitempty"`

	// yearHint is a looser year guess used only when building search text.
	yearHint string
}

// Parse never fails. Name is the prefix of filename that ends where the
// earliest detected tag (minus its leading separator) starts, or the whole
// string when no tag is present.
func Parse(filename string) Descriptor {
	var d Descriptor
	cut := len(filename)

	if loc := episodeRegex.FindStringIndex(filename); loc != nil {
		d.Episode = filename[loc[0]:loc[1]]
		cut = min(cut, max(loc[0]-1, 0))
	}

	if loc := yearRegex.FindStringIndex(filename); loc != nil {
		d.Year = filename[loc[0]+1 : loc[1]-1]
		cut = min(cut, loc[0])
	}

	if loc := resolutionRegex.FindStringIndex(filename); loc != nil {
		d.Resolution = filename[loc[0]+1 : loc[1]]
		cut = min(cut, loc[0])
	}

	if source, start, ok := findSource(filename); ok {
		d.Source = source
		cut = min(cut, start)
	}

	d.Name = filename[:cut]

	if parsed := torrentname.Parse(filename); parsed != nil {
		d.Codec = parsed.Codec
		if parsed.Year > 0 {
			d.yearHint = fmt.Sprintf("%d", parsed.Year)
		}
	}

	return d
}

// Source returns the encoding source tag of s without its surrounding dots,
// or "" when none of the known sources is present.
func Source(s string) string {
	source, _, _ := findSource(s)
	return source
}

// findSource returns the tag and the offset of the dot that precedes it.
func findSource(s string) (string, int, bool) {
	m := sourceRegex.FindStringSubmatchIndex(s)
	if m == nil {
		return "", 0, false
	}
	return s[m[2]:m[3]], m[0], true
}

// SearchText builds the "{name}+{year-or-episode}" query for catalog lookups.
func (d Descriptor) SearchText() string {
	switch {
	case d.Year != "":
		return d.Name + "+" + d.Year
	case d.Episode != "":
		return d.Name + "+" + d.Episode
	case d.yearHint != "":
		return d.Name + "+" + d.yearHint
	default:
		return d.Name
	}
}

// SameSource reports whether a and b carry the same source tag, ignoring case.
// Two untagged names never match.
func SameSource(a, b string) bool {
	sa := Source(a)
	return sa != "" && strings.EqualFold(sa, Source(b))
}
