package gazetteer

import (
	"regexp"
	"strings"
)

// KnownEntity is one row of the curated known-entity table: a canonical name
// with optional descriptive metadata and the surface forms that resolve to it.
type KnownEntity struct {
	Name    string   `yaml:"name"`
	Title   string   `yaml:"title,omitempty"`
	Role    string   `yaml:"role,omitempty"`
	Aliases []string `yaml:"aliases,omitempty"`
}

// Bundle is the full static reference configuration consulted by the
// extraction pipeline: exclusion gazetteers, the classification lexicon and
// the curated known-entity table. A bundle is loaded once at startup and
// never mutated afterwards, so it can be shared by reference across
// goroutines.
type Bundle struct {
	countries         map[string]bool
	cities            map[string]bool
	usStates          map[string]bool
	regions           map[string]bool
	genericPhrases    map[string]bool
	documentArtifacts map[string]bool

	orgMarkers      map[string]bool
	notableOrgs     []*regexp.Regexp
	personParticles map[string]bool
	titlesOfAddress map[string]bool
	commonWords     map[string]bool
	noiseSuffixes   []string

	datePatterns []*regexp.Regexp

	knownEntities    []KnownEntity
	aliasToCanonical map[string]string
}

// IsCountry reports exact membership in the country set (canonical casing)
func (b *Bundle) IsCountry(s string) bool {
	return b.countries[s]
}

// IsCity reports exact membership in the city set (canonical casing)
func (b *Bundle) IsCity(s string) bool {
	return b.cities[s]
}

// IsUSState reports exact membership in the US state set (canonical casing)
func (b *Bundle) IsUSState(s string) bool {
	return b.usStates[s]
}

// IsRegion reports exact membership in the multi-word region/landmark set
func (b *Bundle) IsRegion(s string) bool {
	return b.regions[s]
}

// IsGenericPhrase reports exact membership in the generic-phrase set
func (b *Bundle) IsGenericPhrase(s string) bool {
	return b.genericPhrases[s]
}

// IsDocumentArtifact reports exact membership in the document-artifact set
func (b *Bundle) IsDocumentArtifact(s string) bool {
	return b.documentArtifacts[s]
}

// IsPlaceWord checks a single word against the country and city sets after
// normalizing it to canonical casing (lower-cased, then re-capitalized).
// This catches compound false positives like "Saudi Press".
func (b *Bundle) IsPlaceWord(word string) bool {
	normalized := Capitalize(word)
	return b.countries[normalized] || b.cities[normalized]
}

// IsOrgMarker reports whether a lowercased token is in the organization
// marker lexicon (legal suffixes, institutional/financial/media nouns)
func (b *Bundle) IsOrgMarker(token string) bool {
	return b.orgMarkers[strings.ToLower(token)]
}

// MatchesNotableOrg reports whether the candidate matches one of the compiled
// notable-organization patterns
func (b *Bundle) MatchesNotableOrg(s string) bool {
	for _, re := range b.notableOrgs {
		if re.MatchString(s) {
			return true
		}
	}
	return false
}

// IsPersonParticle reports whether a token is a recognized name particle or
// suffix (von, van, de, Jr., III, ...). Comparison is case-insensitive and
// ignores a trailing period.
func (b *Bundle) IsPersonParticle(token string) bool {
	return b.personParticles[strings.ToLower(strings.TrimSuffix(token, "."))]
}

// IsTitleOfAddress reports whether a token is a title of address (Mr., Dr.,
// President, ...). Comparison is case-insensitive and ignores a trailing period.
func (b *Bundle) IsTitleOfAddress(token string) bool {
	return b.titlesOfAddress[strings.ToLower(strings.TrimSuffix(token, "."))]
}

// IsCommonWord reports whether a token is an ordinary English word that often
// appears capitalized after a title in OCR text ("President Announced")
func (b *Bundle) IsCommonWord(token string) bool {
	return b.commonWords[strings.ToLower(token)]
}

// MatchesDatePattern reports whether the candidate matches any of the
// date-fragment patterns (day/month names, ordinals, relative-time phrases)
func (b *Bundle) MatchesDatePattern(s string) bool {
	for _, re := range b.datePatterns {
		if re.MatchString(s) {
			return true
		}
	}
	return false
}

// NoiseSuffixes returns the corpus-specific artifact tokens that may trail a
// real name ("Sent", "Part", "Defendant", ...)
func (b *Bundle) NoiseSuffixes() []string {
	return b.noiseSuffixes
}

// KnownEntities returns the curated known-entity table
func (b *Bundle) KnownEntities() []KnownEntity {
	return b.knownEntities
}

// ResolveAlias maps a surface form to its curated canonical name.
// Matching is case-insensitive and exact. The second return value is false
// when the surface form is not a known alias.
func (b *Bundle) ResolveAlias(surface string) (string, bool) {
	canonical, ok := b.aliasToCanonical[strings.ToLower(surface)]
	return canonical, ok
}

// KnownEntity returns the curated row for a canonical name, if any
func (b *Bundle) KnownEntity(name string) (KnownEntity, bool) {
	for _, known := range b.knownEntities {
		if strings.EqualFold(known.Name, name) {
			return known, true
		}
	}
	return KnownEntity{}, false
}

// Capitalize normalizes a word to canonical gazetteer casing:
// first letter upper, rest lower.
func Capitalize(word string) string {
	if word == "" {
		return word
	}
	return strings.ToUpper(word[:1]) + strings.ToLower(word[1:])
}
