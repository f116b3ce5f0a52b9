package gazetteer

import (
	_ "embed"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/docarchive/entreg/helper"
	"github.com/docarchive/entreg/model"
	"gopkg.in/yaml.v3"
)

//go:embed data/default.yaml
var defaultBundleYAML []byte

// bundleFile is the on-disk YAML shape of a gazetteer bundle
type bundleFile struct {
	Countries          []string      `yaml:"countries"`
	Cities             []string      `yaml:"cities"`
	USStates           []string      `yaml:"us_states"`
	Regions            []string      `yaml:"regions"`
	GenericPhrases     []string      `yaml:"generic_phrases"`
	DocumentArtifacts  []string      `yaml:"document_artifacts"`
	OrgMarkers         []string      `yaml:"org_markers"`
	NotableOrgPatterns []string      `yaml:"notable_org_patterns"`
	PersonParticles    []string      `yaml:"person_particles"`
	TitlesOfAddress    []string      `yaml:"titles_of_address"`
	CommonWords        []string      `yaml:"common_words"`
	NoiseSuffixes      []string      `yaml:"noise_suffixes"`
	DatePatterns       []string      `yaml:"date_patterns"`
	KnownEntities      []KnownEntity `yaml:"known_entities"`
}

// Default loads the embedded gazetteer bundle
func Default() (*Bundle, error) {
	return parseBundle(defaultBundleYAML)
}

// LoadFile loads a gazetteer bundle from a YAML file. This allows the
// reference sets to be updated without code changes.
func LoadFile(path string) (*Bundle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, helper.NewError("read gazetteer bundle", err)
	}
	return parseBundle(data)
}

func parseBundle(data []byte) (*Bundle, error) {
	file := &bundleFile{}
	err := yaml.Unmarshal(data, file)
	if err != nil {
		return nil, helper.NewError("parse gazetteer bundle", err)
	}

	bundle := &Bundle{
		countries:         toSet(file.Countries),
		cities:            toSet(file.Cities),
		usStates:          toSet(file.USStates),
		regions:           toSet(file.Regions),
		genericPhrases:    toSet(file.GenericPhrases),
		documentArtifacts: toSet(file.DocumentArtifacts),
		orgMarkers:        toLowerSet(file.OrgMarkers),
		personParticles:   toLowerSet(file.PersonParticles),
		titlesOfAddress:   toLowerSet(file.TitlesOfAddress),
		commonWords:       toLowerSet(file.CommonWords),
		noiseSuffixes:     file.NoiseSuffixes,
		knownEntities:     file.KnownEntities,
		aliasToCanonical:  map[string]string{},
	}

	for _, pattern := range file.NotableOrgPatterns {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, helper.NewError("compile notable org pattern", fmt.Errorf("pattern %q: %w", pattern, err))
		}
		bundle.notableOrgs = append(bundle.notableOrgs, re)
	}

	for _, pattern := range file.DatePatterns {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, helper.NewError("compile date pattern", fmt.Errorf("pattern %q: %w", pattern, err))
		}
		bundle.datePatterns = append(bundle.datePatterns, re)
	}

	err = buildAliasIndex(bundle)
	if err != nil {
		return nil, helper.NewError("validate known entities", err)
	}

	return bundle, nil
}

// buildAliasIndex indexes all curated aliases by lowercased surface form.
// An alias listed under two different canonical names is a configuration
// inconsistency and rejected at load time, so the pipeline never has to
// pick between two merge targets silently.
func buildAliasIndex(bundle *Bundle) error {
	canonicalNames := map[string]string{}
	for _, known := range bundle.knownEntities {
		key := strings.ToLower(known.Name)
		if other, exists := canonicalNames[key]; exists {
			return fmt.Errorf("canonical name %q listed twice (as %q and %q)", known.Name, other, known.Name)
		}
		canonicalNames[key] = known.Name
	}

	for _, known := range bundle.knownEntities {
		for _, alias := range known.Aliases {
			key := strings.ToLower(alias)
			if other, exists := bundle.aliasToCanonical[key]; exists && !strings.EqualFold(other, known.Name) {
				return fmt.Errorf("alias %q listed under both %q and %q: %w", alias, other, known.Name, model.ErrAmbiguousAlias)
			}
			if other, exists := canonicalNames[key]; exists && !strings.EqualFold(other, known.Name) {
				return fmt.Errorf("alias %q of %q collides with canonical name %q: %w", alias, known.Name, other, model.ErrAmbiguousAlias)
			}
			bundle.aliasToCanonical[key] = known.Name
		}
	}

	return nil
}

func toSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return set
}

func toLowerSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[strings.ToLower(v)] = true
	}
	return set
}
