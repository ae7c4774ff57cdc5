package notify

import (
	"html"
	"regexp"
	"strings"
)

const (
	styleH1   = "color:#1f2937;"
	styleH2   = "color:#1f2937;margin-top:25px;border-bottom:1px solid #e5e7eb;padding-bottom:5px;"
	styleH3   = "color:#1f2937;margin-top:20px;"
	styleList = "margin:10px 0;padding-left:20px;"
	styleItem = "margin:5px 0;"
	stylePara = "margin:10px 0;"
)

const checkbox = "☐"

var (
	reBold   = regexp.MustCompile(`\*\*(.+?)\*\*`)
	reItalic = regexp.MustCompile(`\*([^*\s](?:[^*]*[^*\s])?)\*`)
)

// RenderMarkdown converts the report subset (#, ##, ### headings, **bold**,
// *italic*, "- " items and "☐ " checkbox items) to inline-styled HTML. Input is
// HTML-escaped before any markup is added.
func RenderMarkdown(md string) string {
	md = strings.ReplaceAll(md, "\r\n", "\n")

	var (
		out   strings.Builder
		para  []string
		items []string
	)
	flushPara := func() {
		if len(para) > 0 {
			out.WriteString(`<p style="` + stylePara + `">` + strings.Join(para, "<br>") + "</p>\n")
			para = nil
		}
	}
	flushList := func() {
		if len(items) > 0 {
			out.WriteString(`<ul style="` + styleList + `">`)
			for _, it := range items {
				out.WriteString(`<li style="` + styleItem + `">` + it + "</li>")
			}
			out.WriteString("</ul>\n")
			items = nil
		}
	}

	for _, line := range strings.Split(md, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			flushPara()
			flushList()
			continue
		}
		if tag, style, text, ok := heading(trimmed); ok {
			flushPara()
			flushList()
			out.WriteString("<" + tag + ` style="` + style + `">` + inline(text) + "</" + tag + ">\n")
			continue
		}
		if item, ok := listItem(trimmed); ok {
			flushPara()
			items = append(items, inline(item))
			continue
		}
		flushList()
		para = append(para, inline(trimmed))
	}
	flushPara()
	flushList()
	return strings.TrimSuffix(out.String(), "\n")
}

func heading(line string) (tag, style, text string, ok bool) {
	switch {
	case strings.HasPrefix(line, "### "):
		return "h3", styleH3, line[4:], true
	case strings.HasPrefix(line, "## "):
		return "h2", styleH2, line[3:], true
	case strings.HasPrefix(line, "# "):
		return "h1", styleH1, line[2:], true
	}
	return "", "", "", false
}

// listItem recognises "- x", "* x", "☐ x" and "- [ ] x"; checkbox items keep
// their box glyph.
func listItem(line string) (string, bool) {
	switch {
	case strings.HasPrefix(line, checkbox+" "):
		return line, true
	case strings.HasPrefix(line, "- [ ] "):
		return checkbox + " " + line[len("- [ ] "):], true
	case strings.HasPrefix(line, "- "), strings.HasPrefix(line, "* "):
		return line[2:], true
	}
	return "", false
}

func inline(s string) string {
	s = html.EscapeString(s)
	s = reBold.ReplaceAllString(s, "<strong>$1</strong>")
	return reItalic.ReplaceAllString(s, "<em>$1</em>")
}
