// Package maintenance keeps the alias vocabulary and previously built
// relations in step.
package maintenance

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/j-wow-shop/app-listing-integrations-analysis/pkg/appint/autotune/aliases"
)

// AliasWriter persists exported alias fragments (file, stdout, etc.).
type AliasWriter interface {
	WriteAliases(ctx context.Context, content string) error
}

// AliasExporter renders alias suggestions as an aliases.yaml fragment.
// Each variant carries its confidence and support as a line comment.
type AliasExporter struct {
	Writer AliasWriter
}

func (e *AliasExporter) Export(ctx context.Context, suggs []aliases.Suggestion) error {
	if e.Writer == nil {
		return fmt.Errorf("alias exporter: nil writer")
	}
	content, err := RenderAliases(suggs)
	if err != nil {
		return err
	}
	return e.Writer.WriteAliases(ctx, content)
}

// RenderAliases groups suggestions by canonical label and encodes them in
// the aliases.yaml layout.
func RenderAliases(suggs []aliases.Suggestion) (string, error) {
	byCanonical := make(map[string][]aliases.Suggestion)
	for _, s := range suggs {
		byCanonical[s.Canonical] = append(byCanonical[s.Canonical], s)
	}
	canonicals := make([]string, 0, len(byCanonical))
	for c := range byCanonical {
		canonicals = append(canonicals, c)
	}
	sort.Strings(canonicals)

	list := &yaml.Node{Kind: yaml.SequenceNode}
	for _, c := range canonicals {
		group := byCanonical[c]
		sort.Slice(group, func(i, j int) bool { return group[i].Variant < group[j].Variant })

		variants := &yaml.Node{Kind: yaml.SequenceNode}
		for _, s := range group {
			variants.Content = append(variants.Content, &yaml.Node{
				Kind:        yaml.ScalarNode,
				Value:       s.Variant,
				LineComment: fmt.Sprintf("confidence %.2f apps %d", s.Confidence, s.Apps),
			})
		}
		list.Content = append(list.Content, &yaml.Node{
			Kind: yaml.MappingNode,
			Content: []*yaml.Node{
				scalar("canonical"), scalar(c),
				scalar("variants"), variants,
			},
		})
	}

	doc := &yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{{
		Kind:    yaml.MappingNode,
		Content: []*yaml.Node{scalar("aliases"), list},
	}}}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return "", fmt.Errorf("encode aliases: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("encode aliases: %w", err)
	}
	return buf.String(), nil
}

func scalar(v string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Value: v}
}

// FileWriter writes alias fragments to Path.
type FileWriter struct {
	Path string
}

func (w FileWriter) WriteAliases(_ context.Context, content string) error {
	return os.WriteFile(w.Path, []byte(content), 0o644)
}
