package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/j-wow-shop/app-listing-integrations-analysis/pkg/appint/assoc"
	"github.com/j-wow-shop/app-listing-integrations-analysis/pkg/appint/autotune/aliases"
)

const none = "_None._"

// unverifiedMark flags labels that did not come from the alias vocabulary.
const unverifiedMark = "*"

func newTable(header ...any) table.Writer {
	t := table.NewWriter()
	t.AppendHeader(table.Row(header))
	return t
}

func render(t table.Writer) string {
	if t.Length() == 0 {
		return none
	}
	return t.RenderMarkdown()
}

func percent(part, total int64) string {
	if total == 0 {
		return "0.0%"
	}
	return fmt.Sprintf("%.1f%%", 100*float64(part)/float64(total))
}

func (in Input) label(l string) string {
	if in.Unverified[l] {
		return l + unverifiedMark
	}
	return l
}

func overview(in Input) string {
	a := in.Analysis
	var withAny, mentions int64
	for _, d := range a.Complexity.Density {
		if d.Integrations > 0 {
			withAny += int64(d.Apps)
		}
		mentions += int64(d.Integrations * d.Apps)
	}
	avg := 0.0
	if a.TotalApps > 0 {
		avg = float64(mentions) / float64(a.TotalApps)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "- Apps analyzed: %d\n", a.TotalApps)
	fmt.Fprintf(&sb, "- Apps with at least one integration: %d (%s)\n", withAny, percent(withAny, a.TotalApps))
	fmt.Fprintf(&sb, "- Distinct integrations: %d\n", len(a.Frequencies))
	fmt.Fprintf(&sb, "- Integrations per app: %.2f\n", avg)
	fmt.Fprintf(&sb, "- Co-occurring pairs: %d\n", len(a.Pairs))
	if len(in.Unverified) > 0 {
		fmt.Fprintf(&sb, "- Labels outside the alias vocabulary: %d (marked %s)\n", len(in.Unverified), unverifiedMark)
	}
	if in.Skipped > 0 {
		fmt.Fprintf(&sb, "- Input rows skipped: %d\n", in.Skipped)
	}
	return sb.String()
}

func frequencies(in Input) string {
	t := newTable("#", "Integration", "Apps", "Share")
	for i, f := range in.Analysis.TopFrequencies(in.Top) {
		t.AppendRow(table.Row{i + 1, in.label(f.Label), f.Count, fmt.Sprintf("%.1f%%", 100*f.Share)})
	}
	return render(t)
}

func pairTable(ps []assoc.PairStat) string {
	t := newTable("Integration A", "Integration B", "Apps", "Lift")
	for _, p := range ps {
		t.AppendRow(table.Row{p.A, p.B, p.Count, fmt.Sprintf("%.2f", p.Lift)})
	}
	return render(t)
}

func categories(in Input) string {
	if in.Categories == nil {
		return none
	}
	type agg struct {
		labels   []string
		mentions int64
	}
	byName := make(map[string]*agg)
	for _, f := range in.Analysis.Frequencies {
		name := in.Categories.Categorize(f.Label)
		g, ok := byName[name]
		if !ok {
			g = &agg{}
			byName[name] = g
		}
		g.labels = append(g.labels, f.Label)
		g.mentions += f.Count
	}

	t := newTable("Category", "Integrations", "Mentions", "Most common")
	for _, name := range in.Categories.Names() {
		g, ok := byName[name]
		if !ok {
			continue
		}
		t.AppendRow(table.Row{name, len(g.labels), g.mentions, strings.Join(head(g.labels, 3), ", ")})
	}
	return render(t)
}

func complexity(a *assoc.Analysis) string {
	t := newTable("Bucket", "Integrations", "Apps", "Share")
	for _, b := range a.Complexity.Buckets {
		rng := fmt.Sprintf("%d-%d", b.Min, b.Max)
		switch {
		case b.Max < 0:
			rng = fmt.Sprintf("%d+", b.Min)
		case b.Min == b.Max:
			rng = fmt.Sprint(b.Min)
		}
		t.AppendRow(table.Row{b.Name, rng, b.Apps, percent(int64(b.Apps), a.TotalApps)})
	}
	return render(t)
}

func standaloneTable(ss []assoc.Standalone) string {
	t := newTable("Integration", "Apps", "Standalone", "Ratio")
	for _, s := range ss {
		t.AppendRow(table.Row{s.Label, s.Apps, s.Solo, fmt.Sprintf("%.2f", s.Ratio)})
	}
	return render(t)
}

func stacks(ss []assoc.Stack) string {
	t := newTable("Integrations", "Apps")
	for _, s := range ss {
		t.AppendRow(table.Row{strings.Join(s.Integrations, " + "), s.Apps})
	}
	return render(t)
}

func rare(in Input) string {
	t := newTable("Integration", "Apps", "Likely purpose", "Seen with")
	for _, r := range head(in.Analysis.Rare, in.Top) {
		co := make([]string, 0, len(r.CoIntegrations))
		for _, c := range r.CoIntegrations {
			co = append(co, c.Label)
		}
		purpose := ""
		if in.Purposes != nil {
			purpose = in.Purposes.CategorizeWith(r.Label, co)
		}
		t.AppendRow(table.Row{in.label(r.Label), r.Count, purpose, strings.Join(co, ", ")})
	}
	return render(t)
}

func clusters(in Input) string {
	t := newTable("Cluster", "Members")
	for _, c := range in.Clusters {
		members := make([]string, len(c.Members))
		for i, m := range c.Members {
			members[i] = in.label(m)
		}
		t.AppendRow(table.Row{c.Name, strings.Join(members, ", ")})
	}
	body := render(t)
	if body == none {
		return body
	}
	return "Spelling clusters are advisory and never merged automatically.\n\n" + body
}

func segments(in Input) string {
	s := in.Segments
	if len(s.Segments) == 0 {
		return none
	}
	t := newTable("Segment", "Apps", "Top integrations", "Examples")
	for i, seg := range s.Segments {
		top := make([]string, len(seg.Top))
		for j, l := range seg.Top {
			top[j] = in.label(l)
		}
		t.AppendRow(table.Row{i + 1, len(seg.Apps), strings.Join(top, ", "), strings.Join(head(seg.Apps, 3), ", ")})
	}
	return fmt.Sprintf("%d segments, picked at the elbow of k-means inertia over k = 1..%d.\n\n", s.K, len(s.Inertias)) + render(t)
}

func suggestions(suggs []aliases.Suggestion) string {
	sorted := make([]aliases.Suggestion, len(suggs))
	copy(sorted, suggs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Confidence > sorted[j].Confidence
	})
	t := newTable("Variant", "Canonical", "Confidence", "Apps")
	for _, s := range sorted {
		t.AppendRow(table.Row{s.Variant, s.Canonical, fmt.Sprintf("%.2f", s.Confidence), s.Apps})
	}
	return render(t)
}
