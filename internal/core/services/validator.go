package services

import (
	"sort"
	"strings"

	"github.com/lomnlabs/lomn-cli/internal/core/domain"
	"github.com/lomnlabs/lomn-cli/internal/core/ports/driven"
	"github.com/lomnlabs/lomn-cli/internal/core/ports/driving"
)

// Ensure ValidationService implements the interface.
var _ driving.ValidationService = (*ValidationService)(nil)

// ValidationService scans text for policy-violation language using the
// configured lexicon. It runs on both retrieved evidence (to flag
// problematic precedent before it is used) and on generated letters.
type ValidationService struct {
	lexicons driven.LexiconStore
}

// NewValidationService creates a new validation service.
func NewValidationService(lexicons driven.LexiconStore) *ValidationService {
	return &ValidationService{lexicons: lexicons}
}

// Validate returns all lexicon matches in the text, ordered by position.
// Matching is case-insensitive substring matching. Identical text and
// lexicon always produce the identical warning set.
func (s *ValidationService) Validate(text string) []domain.Warning {
	if s.lexicons == nil {
		return nil
	}
	lex := s.lexicons.Lexicon()
	if lex == nil || len(lex.Terms) == 0 || text == "" {
		return nil
	}

	lowered := strings.ToLower(text)

	var warnings []domain.Warning
	for _, category := range sortedCategories(lex) {
		for _, term := range lex.Terms[category] {
			needle := strings.ToLower(term)
			if needle == "" {
				continue
			}
			for offset := 0; ; {
				idx := strings.Index(lowered[offset:], needle)
				if idx < 0 {
					break
				}
				warnings = append(warnings, domain.Warning{
					Category: category,
					Term:     term,
					Offset:   offset + idx,
				})
				offset += idx + len(needle)
			}
		}
	}

	// Position order, with category then term as tie-breaks so equal
	// offsets are still deterministic.
	sort.SliceStable(warnings, func(i, j int) bool {
		if warnings[i].Offset != warnings[j].Offset {
			return warnings[i].Offset < warnings[j].Offset
		}
		if warnings[i].Category != warnings[j].Category {
			return warnings[i].Category < warnings[j].Category
		}
		return warnings[i].Term < warnings[j].Term
	})

	return warnings
}

// sortedCategories returns the lexicon categories in stable order.
func sortedCategories(lex *domain.Lexicon) []domain.WarningCategory {
	categories := make([]domain.WarningCategory, 0, len(lex.Terms))
	for category := range lex.Terms {
		categories = append(categories, category)
	}
	sort.Slice(categories, func(i, j int) bool {
		return categories[i] < categories[j]
	})
	return categories
}
