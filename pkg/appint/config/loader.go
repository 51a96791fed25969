package config

import (
	"fmt"

	"github.com/j-wow-shop/app-listing-integrations-analysis/pkg/appint/assoc"
	"github.com/j-wow-shop/app-listing-integrations-analysis/pkg/appint/category"
	"github.com/j-wow-shop/app-listing-integrations-analysis/pkg/appint/cluster"
	"github.com/j-wow-shop/app-listing-integrations-analysis/pkg/appint/extract"
	"github.com/j-wow-shop/app-listing-integrations-analysis/pkg/appint/normalize"
	"github.com/j-wow-shop/app-listing-integrations-analysis/pkg/appint/segment"
)

// Loader loads all configuration files and constructs components.
// An empty path selects the embedded default for that file.
type Loader struct {
	AliasesPath    string
	DenylistPath   string
	ExtractorPath  string
	CategoriesPath string
	SettingsPath   string
}

// Components holds all loaded configuration components.
type Components struct {
	Normalizer *normalize.Normalizer
	Extractor  *extract.Extractor
	Categories *category.Categorizer
	Purposes   *category.Categorizer
	Settings   Settings
}

// Load reads all configuration files and returns initialized components.
func (l *Loader) Load() (*Components, error) {
	comp := &Components{}

	aliases, err := LoadAliases(l.AliasesPath)
	if err != nil {
		return nil, fmt.Errorf("load aliases: %w", err)
	}
	deny, err := LoadDenylist(l.DenylistPath)
	if err != nil {
		return nil, fmt.Errorf("load denylist: %w", err)
	}
	table, err := aliases.Table()
	if err != nil {
		return nil, fmt.Errorf("build alias table: %w", err)
	}
	comp.Normalizer, err = normalize.New(table, normalize.NewDenyList(deny.Terms))
	if err != nil {
		return nil, fmt.Errorf("build normalizer: %w", err)
	}

	ex, err := LoadExtractor(l.ExtractorPath)
	if err != nil {
		return nil, fmt.Errorf("load extractor: %w", err)
	}
	comp.Extractor, err = extract.New(ex.Config())
	if err != nil {
		return nil, fmt.Errorf("build extractor: %w", err)
	}

	cats, err := LoadCategories(l.CategoriesPath)
	if err != nil {
		return nil, fmt.Errorf("load categories: %w", err)
	}
	comp.Categories, err = category.New(cats.Categories.Rules, cats.Categories.Fallback)
	if err != nil {
		return nil, fmt.Errorf("build categories: %w", err)
	}
	comp.Purposes, err = category.New(cats.Purposes.Rules, cats.Purposes.Fallback)
	if err != nil {
		return nil, fmt.Errorf("build purposes: %w", err)
	}

	settings, err := LoadSettings(l.SettingsPath)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	comp.Settings = *settings

	return comp, nil
}

// Table builds an alias table from the document.
func (a *Aliases) Table() (*normalize.AliasTable, error) {
	t := normalize.NewAliasTable()
	for _, e := range a.Aliases {
		err := t.Add(normalize.AliasGroup{
			Canonical:     e.Canonical,
			Variants:      e.Variants,
			ExactVariants: e.Exact,
		})
		if err != nil {
			return nil, err
		}
	}
	return t, nil
}

// Config converts the document to an extractor configuration.
func (e *Extractor) Config() extract.Config {
	return extract.Config{
		Triggers:     e.Triggers,
		Negations:    e.Negations,
		SkipPrefixes: e.SkipPrefixes,
		MaxWords:     e.MaxWords,
		WindowChars:  e.WindowChars,
	}
}

// Thresholds converts analysis settings to classifier thresholds.
func (s AnalysisSettings) Thresholds() assoc.Thresholds {
	return assoc.Thresholds{
		Complementary: s.Complementary,
		Exclusive:     s.Exclusive,
		Primary:       s.Primary,
		Dependent:     s.Dependent,
		RareMax:       s.RareMax,
		TopCo:         s.TopCo,
		StackSize:     s.StackSize,
		StackMinApps:  s.StackMinApps,
	}
}

// Segmenter converts segment settings to an app segmenter.
func (s SegmentSettings) Segmenter() segment.Segmenter {
	return segment.Segmenter{MaxK: s.MaxK, Top: s.Top}
}

// Clusterer converts cluster settings to a clusterer.
func (s ClusterSettings) Clusterer() cluster.Clusterer {
	return cluster.Clusterer{
		Threshold:  s.Threshold,
		MinPoints:  s.MinPoints,
		MinGram:    s.MinGram,
		MaxGram:    s.MaxGram,
		MinNameLen: s.MinNameLen,
	}
}
