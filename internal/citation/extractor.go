// Package citation validates that a bot response is grounded in the music
// database by matching quoted fragments of the response against records.
package citation

import (
	"fmt"
	"regexp"

	"music-chatter/internal/fuzzy"
	"music-chatter/internal/music"
)

// DefaultPattern captures substrings enclosed in double quotes.
const DefaultPattern = `"([^"]*)"`

// Citation is a database record matched from response text. It is produced
// per chat turn and never persisted.
type Citation struct {
	Record  music.Record `json:"record"`
	Matched string       `json:"matched"`
	Score   float64      `json:"score"`
}

// Extractor pulls quoted fragments out of a response and resolves them to
// records via fuzzy matching on a configured field. Safe for concurrent use.
type Extractor struct {
	pattern   *regexp.Regexp
	field     string
	threshold float64
}

// New compiles an extractor. An empty pattern falls back to DefaultPattern;
// the threshold must lie in [0,1] and the field must be a record field name.
func New(pattern, field string, threshold float64) (*Extractor, error) {
	if pattern == "" {
		pattern = DefaultPattern
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("compile citation pattern: %w", err)
	}
	if threshold < 0 || threshold > 1 {
		return nil, fmt.Errorf("citation threshold %v out of range [0,1]", threshold)
	}
	if field == "" {
		field = "title"
	}
	if _, err := (music.Record{}).Field(field); err != nil {
		return nil, fmt.Errorf("citation field: %w", err)
	}
	return &Extractor{pattern: re, field: field, threshold: threshold}, nil
}

// Field returns the record field citations are matched on.
func (e *Extractor) Field() string { return e.field }

// Threshold returns the minimum similarity score for a match.
func (e *Extractor) Threshold() float64 { return e.threshold }

// Extract matches the response text against the candidate records and
// returns the citations found, deduplicated per record, in discovery order.
//
// Two passes mirror each other: quoted fragments are resolved to their
// best-scoring record, then remaining candidates are checked for a partial
// match of their field value anywhere in the text.
func (e *Extractor) Extract(text string, candidates []music.Record) []Citation {
	if len(candidates) == 0 {
		return nil
	}

	selected := make(map[int]bool, len(candidates))
	var out []Citation

	for _, m := range e.pattern.FindAllStringSubmatch(text, -1) {
		fragment := m[0]
		if len(m) > 1 {
			fragment = m[1]
		}
		if fragment == "" {
			continue
		}

		best, bestScore := -1, 0.0
		for i, r := range candidates {
			value, err := r.Field(e.field)
			if err != nil {
				continue
			}
			if score := fuzzy.Ratio(fragment, value, false); score > bestScore {
				best, bestScore = i, score
			}
		}
		if best >= 0 && bestScore >= e.threshold && !selected[best] {
			selected[best] = true
			out = append(out, Citation{Record: candidates[best], Matched: fragment, Score: bestScore})
		}
	}

	for i, r := range candidates {
		if selected[i] {
			continue
		}
		value, err := r.Field(e.field)
		if err != nil || value == "" {
			continue
		}
		if score := fuzzy.PartialRatio(value, text, false); score >= e.threshold {
			selected[i] = true
			out = append(out, Citation{Record: r, Matched: value, Score: score})
		}
	}

	return out
}
