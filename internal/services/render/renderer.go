// -----------------------------------------------------------------------
// Markup Renderer - line-oriented markup to inline-styled email HTML
// -----------------------------------------------------------------------

package render

import (
	"regexp"
	"strings"
)

// listState tracks which list element, if any, is currently open.
// Exactly one list can be open at a time; switching list flavors or
// hitting any non-item line closes the open one first.
type listState int

const (
	listNone listState = iota
	listUnordered
	listOrdered
)

var (
	boldRe        = regexp.MustCompile(`\*\*(.+?)\*\*`)
	italicRe      = regexp.MustCompile(`\*(.+?)\*`)
	codeRe        = regexp.MustCompile("`(.+?)`")
	orderedItemRe = regexp.MustCompile(`^\d+\. `)
	tagRe         = regexp.MustCompile(`<[^>]+>`)
)

// Inline applies the span-level transforms. Bold runs first so that
// "**x**" never leaves a stray "*" for the italic pass to pick up.
func Inline(s string) string {
	s = boldRe.ReplaceAllString(s, "<strong>$1</strong>")
	s = italicRe.ReplaceAllString(s, "<em>$1</em>")
	s = codeRe.ReplaceAllString(s, "<code style='background:#f4f4f4;padding:1px 4px;border-radius:3px'>$1</code>")
	return s
}

// ToHTML converts line-oriented markup to email-safe HTML with inline
// styles. Supported: #/##/### headings, -/* and numbered list items,
// ---/***/___ rules, blank lines, and plain paragraphs. Unrecognized
// lines render as paragraphs, never as errors.
func ToHTML(text string) string {
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	state := listNone

	closeList := func() {
		switch state {
		case listUnordered:
			out = append(out, "</ul>")
		case listOrdered:
			out = append(out, "</ol>")
		}
		state = listNone
	}

	for _, line := range lines {
		switch {
		case strings.HasPrefix(line, "### "):
			closeList()
			out = append(out, `<h4 style="color:#555;font-size:13px;font-weight:700;margin:12px 0 3px">`+Inline(line[4:])+`</h4>`)

		case strings.HasPrefix(line, "## "):
			closeList()
			out = append(out, `<h3 style="color:#1a73e8;font-size:14px;font-weight:700;margin:14px 0 5px;padding-left:8px;border-left:3px solid #1a73e8">`+Inline(line[3:])+`</h3>`)

		case strings.HasPrefix(line, "# "):
			closeList()
			out = append(out, `<h2 style="color:#0b3d91;font-size:16px;margin:16px 0 8px">`+Inline(line[2:])+`</h2>`)

		case isRule(line):
			closeList()
			out = append(out, `<hr style="border:none;border-top:1px solid #eee;margin:10px 0">`)

		case strings.HasPrefix(line, "- ") || strings.HasPrefix(line, "* "):
			if state == listOrdered {
				out = append(out, "</ol>")
				state = listNone
			}
			if state != listUnordered {
				out = append(out, `<ul style="margin:4px 0;padding-left:18px;line-height:1.7">`)
				state = listUnordered
			}
			out = append(out, "<li>"+Inline(line[2:])+"</li>")

		case orderedItemRe.MatchString(line):
			if state == listUnordered {
				out = append(out, "</ul>")
				state = listNone
			}
			if state != listOrdered {
				out = append(out, `<ol style="margin:4px 0;padding-left:18px;line-height:1.7">`)
				state = listOrdered
			}
			out = append(out, "<li>"+Inline(orderedItemRe.ReplaceAllString(line, ""))+"</li>")

		case strings.TrimSpace(line) == "":
			closeList()
			out = append(out, "")

		default:
			closeList()
			out = append(out, `<p style="margin:4px 0;line-height:1.7">`+Inline(line)+`</p>`)
		}
	}

	closeList()
	return strings.Join(out, "\n")
}

// StripTags reduces HTML to its text content, for the plain-text
// alternative part of a digest email.
func StripTags(html string) string {
	return tagRe.ReplaceAllString(html, "")
}

func isRule(line string) bool {
	switch strings.TrimSpace(line) {
	case "---", "***", "___":
		return true
	}
	return false
}
