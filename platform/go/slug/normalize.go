// Package slug turns free text into URL-safe tokens for public listing URLs and
// resolves collisions between generated tokens.
package slug

import (
	"errors"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// DefaultSeparator joins words inside a token.
const DefaultSeparator = "-"

// DefaultMaxLength matches the upper bound enforced by ValidateSlug.
const DefaultMaxLength = 100

// ErrEmptySlugComponents is returned when every segment of a composite slug normalizes to nothing.
var ErrEmptySlugComponents = errors.New("slug components are empty")

// Options tunes GenerateSlug. The zero value produces a lowercase, hyphen-separated
// token capped at DefaultMaxLength with stop-words kept.
type Options struct {
	Separator       string
	MaxLength       int
	RemoveStopWords bool
	PreserveCase    bool
}

func (o Options) withDefaults() Options {
	if o.Separator == "" {
		o.Separator = DefaultSeparator
	}
	if o.MaxLength <= 0 {
		o.MaxLength = DefaultMaxLength
	}
	return o
}

// Normalize trims and lowercases text, folds accented letters to their base
// Latin letter, drops everything that is not a word character, whitespace or a
// hyphen, and collapses runs of whitespace to a single space.
// Empty input yields an empty string.
func Normalize(text string) string {
	return normalize(text, true)
}

func normalize(text string, lower bool) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	if lower {
		text = strings.ToLower(text)
	}

	decomposed := norm.NFD.String(text)

	var b strings.Builder
	b.Grow(len(decomposed))

	pendingSpace := false
	for _, r := range decomposed {
		switch {
		case unicode.Is(unicode.Mn, r):
			continue
		case unicode.IsSpace(r):
			pendingSpace = true
		case isWordRune(r) || r == '-':
			if pendingSpace && b.Len() > 0 {
				b.WriteByte(' ')
			}
			pendingSpace = false
			b.WriteRune(r)
		}
	}

	return b.String()
}

// isWordRune mirrors the ASCII word class [A-Za-z0-9_].
func isWordRune(r rune) bool {
	return r == '_' ||
		(r >= 'a' && r <= 'z') ||
		(r >= 'A' && r <= 'Z') ||
		(r >= '0' && r <= '9')
}

// GenerateSlug builds a single-segment token from text.
func GenerateSlug(text string, opts Options) string {
	opts = opts.withDefaults()

	normalized := normalize(text, !opts.PreserveCase)
	if normalized == "" {
		return ""
	}

	// underscores survive normalization but are not valid in a token
	words := strings.Fields(strings.ReplaceAll(normalized, "_", " "))
	if opts.RemoveStopWords {
		words = dropStopWords(words)
	}

	joined := strings.Join(words, opts.Separator)
	joined = collapseSeparator(joined, opts.Separator)
	joined = trimSeparator(joined, opts.Separator)
	joined = truncateAtWord(joined, opts.Separator, opts.MaxLength)

	if !opts.PreserveCase {
		joined = strings.ToLower(joined)
	}
	return joined
}

func collapseSeparator(s, sep string) string {
	double := sep + sep
	for strings.Contains(s, double) {
		s = strings.ReplaceAll(s, double, sep)
	}
	return s
}

func trimSeparator(s, sep string) string {
	for strings.HasPrefix(s, sep) {
		s = strings.TrimPrefix(s, sep)
	}
	for strings.HasSuffix(s, sep) {
		s = strings.TrimSuffix(s, sep)
	}
	return s
}

// truncateAtWord cuts s to at most max bytes, backing up to the last separator
// so a word is never split. A single word longer than max is hard-cut.
func truncateAtWord(s, sep string, max int) string {
	if len(s) <= max {
		return s
	}

	cut := s[:max]
	if strings.HasPrefix(s[max:], sep) {
		return trimSeparator(cut, sep)
	}
	if idx := strings.LastIndex(cut, sep); idx > 0 {
		cut = cut[:idx]
	}
	return trimSeparator(cut, sep)
}

// Segment caps used by GeneratePropertySlug.
const (
	maxTypeSegment   = 30
	maxCitySegment   = 30
	maxRegionSegment = 30
	maxTitleSegment  = 40
)

// GeneratePropertySlug composes "type-[region]-city-title". The region segment is
// only kept when present and not a catch-all value ("autre"/"other").
func GeneratePropertySlug(propertyType, city, title string, region *string) (string, error) {
	segments := []string{
		GenerateSlug(propertyType, Options{MaxLength: maxTypeSegment}),
	}
	if includeRegion(region) {
		segments = append(segments, GenerateSlug(*region, Options{MaxLength: maxRegionSegment}))
	}
	segments = append(segments,
		GenerateSlug(city, Options{MaxLength: maxCitySegment}),
		GenerateSlug(title, Options{MaxLength: maxTitleSegment}),
	)

	return joinSegments(segments)
}

func includeRegion(region *string) bool {
	if region == nil {
		return false
	}
	trimmed := strings.TrimSpace(*region)
	if trimmed == "" {
		return false
	}
	return !strings.EqualFold(trimmed, "autre") && !strings.EqualFold(trimmed, "other")
}

func joinSegments(segments []string) (string, error) {
	parts := make([]string, 0, len(segments))
	for _, s := range segments {
		if s != "" {
			parts = append(parts, s)
		}
	}
	if len(parts) == 0 {
		return "", ErrEmptySlugComponents
	}
	return strings.Join(parts, DefaultSeparator), nil
}
