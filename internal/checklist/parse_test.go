package checklist

import (
	"reflect"
	"testing"

	"pgregory.net/rapid"
)

func TestClassifyLine(t *testing.T) {
	tests := []struct {
		in   string
		want Line
	}{
		{"## Today", Line{Kind: KindSection, Title: "Today"}},
		{"##   Spaced  ", Line{Kind: KindSection, Title: "Spaced"}},
		{"##NoSpace", Line{Kind: KindOther}},
		{"### Deeper", Line{Kind: KindOther}},
		{"- [ ] buy milk", Line{Kind: KindItem, Text: "buy milk"}},
		{"- [x] done", Line{Kind: KindItem, Text: "done", Checked: true}},
		{"- [X] DONE", Line{Kind: KindItem, Text: "DONE", Checked: true}},
		{"    - [ ] nested", Line{Kind: KindItem, Text: "nested", MarkerOffset: 4}},
		{"\t- [x] tabbed", Line{Kind: KindItem, Text: "tabbed", Checked: true, MarkerOffset: 1}},
		{"- [ ] crlf\r", Line{Kind: KindItem, Text: "crlf"}},
		{"- [ ]", Line{Kind: KindOther}},
		{"- [y] nope", Line{Kind: KindOther}},
		{"* [ ] star", Line{Kind: KindOther}},
		{"-  [ ] wide", Line{Kind: KindOther}},
		{"plain prose", Line{Kind: KindOther}},
		{"", Line{Kind: KindOther}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ClassifyLine(tt.in); got != tt.want {
				t.Errorf("ClassifyLine(%q) = %+v, want %+v", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseSectionGrouping(t *testing.T) {
	doc := Parse([]string{"## A", "- [ ] x", "- [x] y", "## B", "- [ ] z"})
	want := Document{Sections: []Section{
		{Title: "A", Items: []Item{{Text: "x", Line: 1}, {Text: "y", Checked: true, Line: 2}}},
		{Title: "B", Items: []Item{{Text: "z", Line: 4}}},
	}}
	if !reflect.DeepEqual(doc, want) {
		t.Errorf("got %+v\nwant %+v", doc, want)
	}
}

func TestParseDropsOrphanItems(t *testing.T) {
	doc := Parse([]string{"- [ ] orphan", "## A", "- [ ] z"})
	if len(doc.Sections) != 1 {
		t.Fatalf("sections: got %d, want 1", len(doc.Sections))
	}
	sec := doc.Sections[0]
	if sec.Title != "A" || len(sec.Items) != 1 || sec.Items[0].Text != "z" || sec.Items[0].Line != 2 {
		t.Errorf("unexpected section %+v", sec)
	}
}

func TestParseOmitsEmptySections(t *testing.T) {
	doc := Parse([]string{"## Empty", "some prose", "## Full", "- [x] done", "## Trailing"})
	if len(doc.Sections) != 1 || doc.Sections[0].Title != "Full" {
		t.Errorf("got %+v", doc.Sections)
	}
}

func TestParseKeepsLineIndexesAcrossProse(t *testing.T) {
	lines := []string{
		"---",
		"title: plan",
		"---",
		"",
		"## Work",
		"Some intro text.",
		"```",
		"code",
		"```",
		"  - [x] indented",
	}
	doc := Parse(lines)
	if len(doc.Sections) != 1 || len(doc.Sections[0].Items) != 1 {
		t.Fatalf("got %+v", doc)
	}
	it := doc.Sections[0].Items[0]
	if it.Line != 9 || !it.Checked || it.Text != "indented" {
		t.Errorf("got %+v", it)
	}
}

func TestParseEmpty(t *testing.T) {
	if !Parse(nil).Empty() {
		t.Error("nil input should produce empty document")
	}
	if !Parse([]string{""}).Empty() {
		t.Error("empty line should produce empty document")
	}
}

func TestDocumentStats(t *testing.T) {
	doc := Parse([]string{"## A", "- [ ] x", "- [x] y", "## B", "- [X] z"})
	got := doc.Stats()
	want := Stats{Total: 3, Completed: 2, Open: 1}
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

// lineGen draws lines from a mix of markers, items and prose.
func lineGen() *rapid.Generator[string] {
	return rapid.OneOf(
		rapid.SampledFrom([]string{"", "## A", "## B", "prose", "- [ ] a", "- [x] b", "  - [ ] c", "- [X] d", "###  h", "-[ ] no"}),
		rapid.StringMatching(`(## |- \[[ x]\] |  - \[ \] )?[a-z ]{0,8}`),
	)
}

func TestParseIsIdempotent(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		lines := rapid.SliceOf(lineGen()).Draw(t, "lines")
		first := Parse(lines)
		second := Parse(lines)
		if !reflect.DeepEqual(first, second) {
			t.Fatalf("parse differs:\n%+v\n%+v", first, second)
		}
		for _, sec := range first.Sections {
			if len(sec.Items) == 0 {
				t.Fatalf("empty section %q in document", sec.Title)
			}
			for _, it := range sec.Items {
				if ClassifyLine(lines[it.Line]).Kind != KindItem {
					t.Fatalf("item %+v points at non-item line %q", it, lines[it.Line])
				}
			}
		}
	})
}
