// Package fuzzy provides normalized string similarity scores used for
// citation matching.
package fuzzy

import (
	"strings"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"
)

// Ratio computes a normalized edit-distance similarity between a and b in
// [0,1]. Equal strings score 1.0. The score is symmetric and deterministic.
func Ratio(a, b string, caseSensitive bool) float64 {
	if !caseSensitive {
		a, b = strings.ToLower(a), strings.ToLower(b)
	}
	return strutil.Similarity(a, b, metrics.NewLevenshtein())
}

// PartialRatio computes a local-alignment similarity of needle against
// haystack in [0,1]. A needle that appears verbatim inside a longer haystack
// scores close to 1.0 even when the surrounding text differs.
func PartialRatio(needle, haystack string, caseSensitive bool) float64 {
	if !caseSensitive {
		needle, haystack = strings.ToLower(needle), strings.ToLower(haystack)
	}
	return strutil.Similarity(needle, haystack, metrics.NewSmithWatermanGotoh())
}
