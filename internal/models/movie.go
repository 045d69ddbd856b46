package models

import (
	"strconv"
	"strings"
)

// notAvailable is the placeholder OMDb returns for missing fields.
const notAvailable = "N/A"

// SearchResult represents one hit of an OMDb title search.
type SearchResult struct {
	ID        string `json:"imdbID"`
	Title     string `json:"Title"`
	Year      string `json:"Year"`
	PosterURL string `json:"Poster"`
	Type      string `json:"Type,omitempty"`
}

// MovieDetail is the full OMDb record for a single title.
type MovieDetail struct {
	ID         string `json:"imdbID"`
	Title      string `json:"Title"`
	Year       string `json:"Year"`
	PosterURL  string `json:"Poster"`
	Runtime    string `json:"Runtime"`
	IMDbRating string `json:"imdbRating"`
	Plot       string `json:"Plot"`
	Released   string `json:"Released"`
	Actors     string `json:"Actors"`
	Director   string `json:"Director"`
	Genre      string `json:"Genre"`
}

// Rating parses the IMDb rating, returning 0 for "N/A" or malformed values.
func (m MovieDetail) Rating() float64 {
	s := strings.TrimSpace(m.IMDbRating)
	if s == "" || s == notAvailable {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f < 0 {
		return 0
	}
	return f
}

// RuntimeMinutes parses the runtime with [ParseRuntime].
func (m MovieDetail) RuntimeMinutes() (int, bool) {
	return ParseRuntime(m.Runtime)
}

// ParseRuntime reads minutes from an OMDb runtime such as "142 min".
//
// Only the first whitespace separated token is considered. Empty, "N/A" and non-positive or non-numeric values report false.
func ParseRuntime(s string) (int, bool) {
	fields := strings.Fields(s)
	if len(fields) == 0 || fields[0] == notAvailable {
		return 0, false
	}
	n, err := strconv.Atoi(fields[0])
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}
