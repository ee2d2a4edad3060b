package slug

import (
	"regexp"
	"strings"
)

// MinLength is the shortest token ValidateSlug accepts.
const MinLength = 3

var tokenPattern = regexp.MustCompile(`^[a-z0-9-]+$`)

// stopWords is the union of common French and English articles, conjunctions and prepositions.
var stopWords = map[string]struct{}{
	"le": {}, "la": {}, "les": {}, "l": {}, "un": {}, "une": {}, "des": {},
	"du": {}, "de": {}, "d": {}, "et": {}, "ou": {}, "a": {}, "au": {}, "aux": {},
	"en": {}, "dans": {}, "sur": {}, "pour": {}, "par": {}, "avec": {}, "sans": {},
	"sous": {}, "chez": {},
	"the": {}, "an": {}, "and": {}, "or": {}, "of": {}, "in": {}, "on": {},
	"at": {}, "to": {}, "for": {}, "with": {}, "by": {}, "from": {},
}

// IsStopWord reports whether word (already lowercase) is ignored for keywords.
func IsStopWord(word string) bool {
	_, ok := stopWords[word]
	return ok
}

func dropStopWords(words []string) []string {
	kept := make([]string, 0, len(words))
	for _, w := range words {
		if IsStopWord(strings.ToLower(w)) {
			continue
		}
		kept = append(kept, w)
	}
	return kept
}

// Validation is the outcome of ValidateSlug. Warnings never affect IsValid.
type Validation struct {
	IsValid  bool     `json:"isValid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

// ValidateSlug checks token against the public URL rules.
func ValidateSlug(token string) Validation {
	result := Validation{Errors: []string{}, Warnings: []string{}}

	if token == "" {
		result.Errors = append(result.Errors, "slug is required")
		return result
	}

	if len(token) < MinLength {
		result.Errors = append(result.Errors, "slug must be at least 3 characters")
	}
	if len(token) > DefaultMaxLength {
		result.Errors = append(result.Errors, "slug must be at most 100 characters")
	}
	if !tokenPattern.MatchString(token) {
		result.Errors = append(result.Errors, "slug may only contain lowercase letters, digits and hyphens")
	}

	if strings.Contains(token, "--") {
		result.Warnings = append(result.Warnings, "slug contains consecutive hyphens")
	}
	if strings.HasPrefix(token, "-") || strings.HasSuffix(token, "-") {
		result.Warnings = append(result.Warnings, "slug starts or ends with a hyphen")
	}

	segments := splitSegments(token)
	for _, s := range segments {
		if IsStopWord(s) {
			result.Warnings = append(result.Warnings, "slug contains stop words")
			break
		}
	}
	if len(segments) < 2 {
		result.Warnings = append(result.Warnings, "slug should contain at least 2 words")
	}

	result.IsValid = len(result.Errors) == 0
	return result
}

// ExtractKeywords returns the meaningful words of token: words longer than two
// characters that are not stop words, in order.
func ExtractKeywords(token string) []string {
	keywords := []string{}
	for _, w := range splitSegments(token) {
		if len(w) <= 2 || IsStopWord(w) {
			continue
		}
		keywords = append(keywords, w)
	}
	return keywords
}

func splitSegments(token string) []string {
	raw := strings.Split(token, DefaultSeparator)
	segments := make([]string, 0, len(raw))
	for _, s := range raw {
		if s != "" {
			segments = append(segments, s)
		}
	}
	return segments
}
