// Package config loads the YAML vocabularies and settings that drive
// normalization, extraction, categorization and analysis.
package config

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/j-wow-shop/app-listing-integrations-analysis/pkg/appint/category"
	"github.com/j-wow-shop/app-listing-integrations-analysis/pkg/appint/internalerr"
)

//go:embed defaults/*.yaml
var defaults embed.FS

// Default file names inside the embedded defaults.
const (
	AliasesFile    = "aliases.yaml"
	DenylistFile   = "denylist.yaml"
	ExtractorFile  = "extractor.yaml"
	CategoriesFile = "categories.yaml"
	SettingsFile   = "settings.yaml"
)

// DefaultFile returns the raw bytes of an embedded default file.
func DefaultFile(name string) ([]byte, error) {
	return defaults.ReadFile("defaults/" + name)
}

// AliasEntry is one canonical label in aliases.yaml.
type AliasEntry struct {
	Canonical string   `yaml:"canonical"`
	Variants  []string `yaml:"variants,omitempty,flow"`
	Exact     []string `yaml:"exact,omitempty,flow"`
}

// Aliases is the aliases.yaml document.
type Aliases struct {
	Aliases []AliasEntry `yaml:"aliases"`
}

// Denylist is the denylist.yaml document.
type Denylist struct {
	Terms []string `yaml:"terms"`
}

// Extractor is the extractor.yaml document.
type Extractor struct {
	Triggers     []string `yaml:"triggers"`
	Negations    []string `yaml:"negations"`
	SkipPrefixes []string `yaml:"skip_prefixes"`
	MaxWords     int      `yaml:"max_words"`
	WindowChars  int      `yaml:"window_chars"`
}

// RuleSet is an ordered rule list with its fallback name.
type RuleSet struct {
	Fallback string          `yaml:"fallback"`
	Rules    []category.Rule `yaml:"rules"`
}

// Categories is the categories.yaml document.
type Categories struct {
	Categories RuleSet `yaml:"categories"`
	Purposes   RuleSet `yaml:"purposes"`
}

// Settings is the settings.yaml document. Zero fields mean "use the
// package default" in every consumer.
type Settings struct {
	Analysis AnalysisSettings `yaml:"analysis"`
	Cluster  ClusterSettings  `yaml:"cluster"`
	Segment  SegmentSettings  `yaml:"segment"`
	Fetch    FetchSettings    `yaml:"fetch"`
	Suggest  SuggestSettings  `yaml:"suggest"`
	Report   ReportSettings   `yaml:"report"`
}

type AnalysisSettings struct {
	Complementary float64 `yaml:"complementary"`
	Exclusive     float64 `yaml:"exclusive"`
	Primary       float64 `yaml:"primary"`
	Dependent     float64 `yaml:"dependent"`
	RareMax       int64   `yaml:"rare_max"`
	TopCo         int     `yaml:"top_co"`
	StackSize     int     `yaml:"stack_size"`
	StackMinApps  int64   `yaml:"stack_min_apps"`
}

type ClusterSettings struct {
	Threshold  float64 `yaml:"threshold"`
	MinPoints  int     `yaml:"min_points"`
	MinGram    int     `yaml:"min_gram"`
	MaxGram    int     `yaml:"max_gram"`
	MinNameLen int     `yaml:"min_name_len"`
}

type SegmentSettings struct {
	MaxK int `yaml:"max_k"`
	Top  int `yaml:"top"`
}

type FetchSettings struct {
	Concurrency   int           `yaml:"concurrency"`
	MinDelay      time.Duration `yaml:"min_delay"`
	MaxDelay      time.Duration `yaml:"max_delay"`
	MaxRetries    int           `yaml:"max_retries"`
	MaxTotalDelay time.Duration `yaml:"max_total_delay"`
	Timeout       time.Duration `yaml:"timeout"`
}

type SuggestSettings struct {
	MinConfidence float64 `yaml:"min_confidence"`
}

type ReportSettings struct {
	Top          int `yaml:"top"`
	TopRelations int `yaml:"top_relations"`
}

// LoadAliases loads aliases from a YAML file, or the defaults when path is
// empty.
func LoadAliases(path string) (*Aliases, error) {
	var a Aliases
	if err := load(path, AliasesFile, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

// LoadDenylist loads the deny-list.
func LoadDenylist(path string) (*Denylist, error) {
	var d Denylist
	if err := load(path, DenylistFile, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

// LoadExtractor loads the extractor vocabulary.
func LoadExtractor(path string) (*Extractor, error) {
	var e Extractor
	if err := load(path, ExtractorFile, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

// LoadCategories loads category and purpose rules.
func LoadCategories(path string) (*Categories, error) {
	var c Categories
	if err := load(path, CategoriesFile, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// LoadSettings loads thresholds and tuning.
func LoadSettings(path string) (*Settings, error) {
	var s Settings
	if err := load(path, SettingsFile, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func load(path, defaultName string, out any) error {
	var (
		data []byte
		err  error
	)
	if path == "" {
		data, err = DefaultFile(defaultName)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return err
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil && !errors.Is(err, io.EOF) {
		src := path
		if src == "" {
			src = "default " + defaultName
		}
		return fmt.Errorf("parse %s: %v: %w", src, err, internalerr.ErrInvalidConfig)
	}
	return nil
}
