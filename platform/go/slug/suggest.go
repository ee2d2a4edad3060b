package slug

const maxShortTitleSegment = 20

// DefaultSuggestionCount is used when callers ask for zero or fewer suggestions.
const DefaultSuggestionCount = 3

// GenerateSlugSuggestions returns up to count distinct candidates for a listing:
// the full composite slug, the same without stop words, a short-title variant
// and a city-title-type ordering. It fails with ErrEmptySlugComponents when no
// segment survives normalization.
func GenerateSlugSuggestions(propertyType, city, title string, region *string, count int) ([]string, error) {
	if count <= 0 {
		count = DefaultSuggestionCount
	}

	full, err := GeneratePropertySlug(propertyType, city, title, region)
	if err != nil {
		return nil, err
	}

	withoutStopWords, _ := joinSegments(regionAware(propertyType, city, title, region,
		Options{RemoveStopWords: true}, Options{RemoveStopWords: true, MaxLength: maxTitleSegment}))
	shortTitle, _ := joinSegments(regionAware(propertyType, city, title, region, Options{MaxLength: maxCitySegment}, Options{MaxLength: maxShortTitleSegment}))
	reordered, _ := joinSegments([]string{
		GenerateSlug(city, Options{MaxLength: maxCitySegment}),
		GenerateSlug(title, Options{MaxLength: maxTitleSegment}),
		GenerateSlug(propertyType, Options{MaxLength: maxTypeSegment}),
	})

	candidates := []string{full, withoutStopWords, shortTitle, reordered}

	seen := make(map[string]struct{}, len(candidates))
	suggestions := make([]string, 0, len(candidates))
	for _, c := range candidates {
		if c == "" {
			continue
		}
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		suggestions = append(suggestions, c)
		if len(suggestions) == count {
			break
		}
	}

	return suggestions, nil
}

// regionAware builds type-[region]-city-title segments using segOpts for the
// leading segments and titleOpts for the title.
func regionAware(propertyType, city, title string, region *string, segOpts, titleOpts Options) []string {
	segOpts.MaxLength = maxTypeSegment
	segments := []string{GenerateSlug(propertyType, segOpts)}
	if includeRegion(region) {
		segments = append(segments, GenerateSlug(*region, segOpts))
	}
	return append(segments,
		GenerateSlug(city, segOpts),
		GenerateSlug(title, titleOpts),
	)
}
