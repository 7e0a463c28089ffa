package feedback

import (
	"html"
	"regexp"
	"strings"
)

var (
	sectionExp = regexp.MustCompile(`^\d+\.\s+(.+)$`)
	bulletExp  = regexp.MustCompile(`^[-*]\s+(.+)$`)
	boldExp    = regexp.MustCompile(`\*\*([^*]+)\*\*`)
	quoteExp   = regexp.MustCompile(`&#34;(.+?)&#34;`)
)

// RenderHTML turns model output into escaped HTML: numbered lines become
// headings, dash or star lines become list items, **text** is bold and
// "text" is emphasised.
func RenderHTML(text string) string {
	var b strings.Builder
	inList := false
	closeList := func() {
		if inList {
			b.WriteString("</ul>")
			inList = false
		}
	}

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			closeList()
			continue
		}
		if m := sectionExp.FindStringSubmatch(line); m != nil {
			closeList()
			b.WriteString("<h4>" + inline(strings.Trim(m[1], "*: ")) + "</h4>")
			continue
		}
		if m := bulletExp.FindStringSubmatch(line); m != nil {
			if !inList {
				b.WriteString("<ul>")
				inList = true
			}
			b.WriteString("<li>" + inline(m[1]) + "</li>")
			continue
		}
		closeList()
		b.WriteString("<p>" + inline(line) + "</p>")
	}
	closeList()
	return b.String()
}

func inline(s string) string {
	s = html.EscapeString(s)
	s = boldExp.ReplaceAllString(s, "<strong>$1</strong>")
	return quoteExp.ReplaceAllString(s, "<em>$1</em>")
}
