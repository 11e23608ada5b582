package usecase

import (
	"errors"
	"strconv"
	"strings"

	"github.com/kirillkom/compliance-checker/internal/core/domain"
)

// Score matches every rule against text as a case-insensitive substring and reports the
// share of matched rules as a percentage rounded to two decimals.
func Score(text string, rules []string) (domain.ComplianceReport, error) {
	if len(rules) == 0 {
		return domain.ComplianceReport{}, domain.WrapError(
			domain.ErrDegenerateRuleSet,
			"score document",
			errors.New("cannot compute a percentage over zero rules"),
		)
	}

	lowered := strings.ToLower(text)
	matched := make([]string, 0, len(rules))
	unmatched := make([]string, 0, len(rules))
	for _, rule := range rules {
		if strings.Contains(lowered, strings.ToLower(rule)) {
			matched = append(matched, rule)
			continue
		}
		unmatched = append(unmatched, rule)
	}

	return domain.ComplianceReport{
		Score:          roundPercent(float64(len(matched)) / float64(len(rules)) * 100),
		MatchedRules:   matched,
		UnmatchedRules: unmatched,
	}, nil
}

// roundPercent rounds the exact binary value of v to two decimals, sending ties to
// the even digit.
func roundPercent(v float64) float64 {
	rounded, err := strconv.ParseFloat(strconv.FormatFloat(v, 'f', 2, 64), 64)
	if err != nil {
		return v
	}
	return rounded
}
