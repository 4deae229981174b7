package music

import (
	"fmt"
	"strconv"
	"strings"
)

// Record is a single entry of the music database. Records are immutable
// after load; duplicates are allowed and treated as distinct entries.
type Record struct {
	Title   string `json:"title"`
	Genre   string `json:"genre"`
	Authors string `json:"authors"`
	Country string `json:"country"`
	Year    int    `json:"year"`
}

// Field returns the value of a named record field as a string.
// Supported names: title, genre, authors, country, year.
func (r Record) Field(name string) (string, error) {
	switch strings.ToLower(name) {
	case "title":
		return r.Title, nil
	case "genre":
		return r.Genre, nil
	case "authors":
		return r.Authors, nil
	case "country":
		return r.Country, nil
	case "year":
		return strconv.Itoa(r.Year), nil
	default:
		return "", fmt.Errorf("unknown record field: %s", name)
	}
}

// Criteria is a partial record used for lookups. Empty strings and a zero
// year act as wildcards.
type Criteria struct {
	Title   string `json:"title,omitempty"`
	Genre   string `json:"genre,omitempty"`
	Authors string `json:"authors,omitempty"`
	Country string `json:"country,omitempty"`
	Year    int    `json:"year,omitempty"`
}

// IsZero reports whether no field constrains the lookup.
func (c Criteria) IsZero() bool {
	return c.Title == "" && c.Genre == "" && c.Authors == "" && c.Country == "" && c.Year == 0
}

// Matches reports whether the record satisfies every provided field of the
// criteria. String fields match case-insensitively by substring.
func (c Criteria) Matches(r Record) bool {
	if c.Year != 0 && c.Year != r.Year {
		return false
	}
	pairs := [][2]string{
		{c.Title, r.Title},
		{c.Genre, r.Genre},
		{c.Authors, r.Authors},
		{c.Country, r.Country},
	}
	for _, p := range pairs {
		if p[0] == "" {
			continue
		}
		if !strings.Contains(strings.ToLower(p[1]), strings.ToLower(p[0])) {
			return false
		}
	}
	return true
}
