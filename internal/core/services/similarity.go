package services

import (
	"strings"

	"github.com/agext/levenshtein"

	"github.com/custodia-labs/reqsift/internal/core/domain"
)

// DefaultNearDuplicateThreshold is the similarity at or above which two
// distinct records are reported as near-duplicates.
const DefaultNearDuplicateThreshold = 0.9

// findNearDuplicates reports pairs of records whose feature and
// description read almost the same. Records are never merged.
func findNearDuplicates(records []domain.Requirement, threshold float64) []domain.NearDuplicate {
	if threshold <= 0 || threshold > 1 || len(records) < 2 {
		return nil
	}

	texts := make([]string, len(records))
	for i, r := range records {
		texts[i] = strings.ToLower(strings.TrimSpace(r.Feature + " " + r.Description))
	}

	var out []domain.NearDuplicate
	for i := 0; i < len(records); i++ {
		for j := i + 1; j < len(records); j++ {
			if texts[i] == "" || texts[j] == "" {
				continue
			}
			score := levenshtein.Similarity(texts[i], texts[j], nil)
			if score >= threshold {
				out = append(out, domain.NearDuplicate{
					First:      records[i],
					Second:     records[j],
					Similarity: score,
				})
			}
		}
	}
	return out
}
