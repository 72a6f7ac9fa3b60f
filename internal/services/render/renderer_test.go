package render

import (
	"strings"
	"testing"
)

func TestInline(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"bold", "**hot**", "<strong>hot</strong>"},
		{"italic", "*soft*", "<em>soft</em>"},
		{"bold then italic", "**a** and *b*", "<strong>a</strong> and <em>b</em>"},
		{"bold not eaten by italic", "**only bold**", "<strong>only bold</strong>"},
		{"plain text untouched", "no markup here", "no markup here"},
		{"unterminated bold left alone", "**dangling", "**dangling"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Inline(tt.input); got != tt.want {
				t.Errorf("Inline(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestInlineCode(t *testing.T) {
	got := Inline("check `AAPL` now")
	if !strings.Contains(got, "<code") || !strings.Contains(got, ">AAPL</code>") {
		t.Errorf("Inline code markup not rendered: %q", got)
	}
}

func TestToHTMLHeadings(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantTag string
		wantTxt string
	}{
		{"h2", "# Big View", "<h2", "Big View</h2>"},
		{"h3", "## Section", "<h3", "Section</h3>"},
		{"h4", "### Detail", "<h4", "Detail</h4>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ToHTML(tt.input)
			if !strings.Contains(got, tt.wantTag) || !strings.Contains(got, tt.wantTxt) {
				t.Errorf("ToHTML(%q) = %q, want tag %q with text %q", tt.input, got, tt.wantTag, tt.wantTxt)
			}
		})
	}
}

func TestToHTMLRules(t *testing.T) {
	for _, rule := range []string{"---", "***", "___", "  ---  "} {
		got := ToHTML(rule)
		if !strings.Contains(got, "<hr") {
			t.Errorf("ToHTML(%q) = %q, want horizontal rule", rule, got)
		}
	}
}

func TestToHTMLUnorderedList(t *testing.T) {
	got := ToHTML("- first\n- second\nplain")

	if strings.Count(got, "<ul") != 1 {
		t.Errorf("want exactly one <ul>, got: %q", got)
	}
	if strings.Count(got, "<li>") != 2 {
		t.Errorf("want two <li>, got: %q", got)
	}
	// The paragraph after the list must come after the list closes
	ulClose := strings.Index(got, "</ul>")
	para := strings.Index(got, "<p")
	if ulClose == -1 || para == -1 || para < ulClose {
		t.Errorf("list not closed before paragraph: %q", got)
	}
}

func TestToHTMLOrderedList(t *testing.T) {
	got := ToHTML("1. buy\n2. hold\n3. sell")

	if strings.Count(got, "<ol") != 1 {
		t.Errorf("want exactly one <ol>, got: %q", got)
	}
	if strings.Count(got, "<li>") != 3 {
		t.Errorf("want three <li>, got: %q", got)
	}
	if !strings.HasSuffix(strings.TrimSpace(got), "</ol>") {
		t.Errorf("ordered list left open at end of input: %q", got)
	}
}

func TestToHTMLListFlavorSwitch(t *testing.T) {
	got := ToHTML("- a\n1. b\n- c")

	// Switching flavors closes the open list before opening the other
	ulClose := strings.Index(got, "</ul>")
	olOpen := strings.Index(got, "<ol")
	if ulClose == -1 || olOpen == -1 || olOpen < ulClose {
		t.Errorf("unordered list not closed before ordered opened: %q", got)
	}
	olClose := strings.Index(got, "</ol>")
	ulReopen := strings.LastIndex(got, "<ul")
	if olClose == -1 || ulReopen < olClose {
		t.Errorf("ordered list not closed before unordered reopened: %q", got)
	}
	if strings.Count(got, "<ul") != 2 || strings.Count(got, "<ol") != 1 {
		t.Errorf("unexpected list structure: %q", got)
	}
}

func TestToHTMLBlankLineClosesList(t *testing.T) {
	got := ToHTML("- a\n\n- b")

	if strings.Count(got, "<ul") != 2 {
		t.Errorf("blank line should split into two lists, got: %q", got)
	}
}

func TestToHTMLTerminalClose(t *testing.T) {
	got := ToHTML("- trailing item")
	if !strings.HasSuffix(strings.TrimSpace(got), "</ul>") {
		t.Errorf("list left open at end of input: %q", got)
	}
}

func TestToHTMLBalancedListTags(t *testing.T) {
	inputs := []string{
		"- a\n- b",
		"1. a\n- b\n1. c",
		"# h\n- a\n## h2\n1. b\n\ntext",
		"",
		"- only",
	}
	for _, input := range inputs {
		got := ToHTML(input)
		if strings.Count(got, "<ul") != strings.Count(got, "</ul>") {
			t.Errorf("unbalanced <ul> for %q: %q", input, got)
		}
		if strings.Count(got, "<ol") != strings.Count(got, "</ol>") {
			t.Errorf("unbalanced <ol> for %q: %q", input, got)
		}
	}
}

func TestToHTMLDeterministic(t *testing.T) {
	input := "# Head\n- one\n- two\n1. three\n\ntext **bold**"
	first := ToHTML(input)
	for i := 0; i < 3; i++ {
		if got := ToHTML(input); got != first {
			t.Fatalf("ToHTML not deterministic: %q vs %q", got, first)
		}
	}
}

func TestToHTMLPlainParagraph(t *testing.T) {
	got := ToHTML("just a sentence")
	if !strings.Contains(got, "<p") || !strings.Contains(got, "just a sentence</p>") {
		t.Errorf("plain line should render as paragraph: %q", got)
	}
}

func TestStripTags(t *testing.T) {
	html := ToHTML("# Head\n- item **bold**")
	text := StripTags(html)
	if strings.ContainsAny(text, "<>") {
		t.Errorf("StripTags left markup behind: %q", text)
	}
	if !strings.Contains(text, "Head") || !strings.Contains(text, "item bold") {
		t.Errorf("StripTags dropped content: %q", text)
	}
}
