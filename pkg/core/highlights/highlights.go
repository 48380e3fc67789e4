// Package highlights pulls the written commentary sections out of a report
// email body. Extraction is best effort: a report with no recognizable
// highlights still yields an empty record, never an error, so commentary
// problems cannot block table validation.
package highlights

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"hedgepnl/pkg/core/files"
	"hedgepnl/pkg/core/mail"
	"hedgepnl/pkg/models"
)

var (
	dynamicMarkerRe = regexp.MustCompile(`(?i)Dynamic.*P.*L.*Highlights`)
	dailyMarkerRe   = regexp.MustCompile(`(?i)daily highlights`)
	qtdMarkerRe     = regexp.MustCompile(`(?i)qtd highlights`)
	genericMarkerRe = regexp.MustCompile(`(?i)highlights`)

	// A short ALL-CAPS-leading line reads as the next section heading and
	// terminates collection.
	headingRe = regexp.MustCompile(`^[A-Z][A-Za-z0-9 &/:-]{2,}$`)

	multiBlankRe = regexp.MustCompile(`\n\s*\n\s*\n+`)
	multiSpaceRe = regexp.MustCompile(` +`)
)

// Extract collects the Daily and QTD highlight sections from the message
// body, and the report date from the subject line. The HTML rendering is
// preferred; the plain-text body is the fallback. Sections tagged only with
// a generic "Highlights" heading count as daily when no explicitly daily
// section was found.
func Extract(msg *mail.Message) models.HighlightRecord {
	date := files.DateCode(msg.Subject)

	var lines []string
	switch {
	case strings.TrimSpace(msg.HTMLBody) != "":
		lines = htmlLines(msg.HTMLBody)
	case strings.TrimSpace(msg.TextBody) != "":
		lines = textLines(msg.TextBody)
	default:
		return models.HighlightRecord{Date: date}
	}

	var daily, qtd, generic []string
	i := 0
	for i < len(lines) {
		line := strings.TrimSpace(lines[i])
		switch {
		case dynamicMarkerRe.MatchString(line):
			section, next := collectLoose(lines, i)
			daily = append(daily, section)
			i = next
		case dailyMarkerRe.MatchString(line):
			section, next := collectStrict(lines, i)
			daily = append(daily, section)
			i = next
		case qtdMarkerRe.MatchString(line):
			section, next := collectStrict(lines, i)
			qtd = append(qtd, section)
			i = next
		case genericMarkerRe.MatchString(line):
			section, next := collectStrict(lines, i)
			generic = append(generic, section)
			i = next
		default:
			i++
		}
	}

	if len(daily) == 0 && len(qtd) == 0 {
		daily = generic
	}

	return models.HighlightRecord{
		Daily: strings.Join(daily, "\n\n"),
		QTD:   strings.Join(qtd, "\n\n"),
		Date:  date,
	}
}

// collectLoose gathers a section that may span blank lines, stopping only at
// the next heading. Used for the main "Dynamic P&L Highlights" block, whose
// bullets are often separated by empty rendering artifacts.
func collectLoose(lines []string, start int) (string, int) {
	section := []string{strings.TrimSpace(lines[start])}
	i := start + 1
	for i < len(lines) && strings.TrimSpace(lines[i]) == "" {
		i++
	}
	for i < len(lines) {
		stripped := strings.TrimSpace(lines[i])
		if isHeading(stripped) || dailyMarkerRe.MatchString(stripped) || qtdMarkerRe.MatchString(stripped) {
			break
		}
		if stripped != "" {
			section = append(section, stripped)
		}
		i++
	}
	return cleanText(strings.Join(section, "\n")), i
}

// collectStrict gathers a section terminated by the first blank line or
// heading.
func collectStrict(lines []string, start int) (string, int) {
	section := []string{strings.TrimSpace(lines[start])}
	i := start + 1
	for i < len(lines) {
		stripped := strings.TrimSpace(lines[i])
		if stripped == "" || isHeading(stripped) {
			break
		}
		section = append(section, stripped)
		i++
	}
	return cleanText(strings.Join(section, "\n")), i
}

func isHeading(line string) bool {
	return headingRe.MatchString(line) && !genericMarkerRe.MatchString(line)
}

func cleanText(s string) string {
	s = multiBlankRe.ReplaceAllString(s, "\n\n")
	s = multiSpaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// =============================================================================
// BODY RENDERING
// =============================================================================

// htmlLines flattens an HTML body to text lines. Block-level and break tags
// become newlines first so goquery's text extraction keeps line structure.
func htmlLines(html string) []string {
	for _, tag := range []string{"<br>", "<br/>", "<br />"} {
		html = strings.ReplaceAll(html, tag, "\n")
	}
	for _, tag := range []string{"</p>", "</div>", "</li>", "</tr>", "</h1>", "</h2>", "</h3>"} {
		html = strings.ReplaceAll(html, tag, "\n"+tag)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return strings.Split(html, "\n")
	}
	return strings.Split(doc.Text(), "\n")
}

// textLines renders a plain or markdown-styled body to lines by walking the
// markdown AST, so bullet lists and headings in markdown-formatted emails
// keep their own lines.
func textLines(body string) []string {
	source := []byte(body)
	parser := goldmark.DefaultParser()
	root := parser.Parse(text.NewReader(source))

	var lines []string
	_ = ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch n.(type) {
		case *ast.Heading, *ast.Paragraph, *ast.TextBlock:
			lines = append(lines, blockText(n, source)...)
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})

	if len(lines) == 0 {
		return strings.Split(body, "\n")
	}
	return lines
}

func blockText(n ast.Node, source []byte) []string {
	var sb strings.Builder
	for i := 0; i < n.Lines().Len(); i++ {
		seg := n.Lines().At(i)
		sb.Write(seg.Value(source))
	}
	return strings.Split(strings.TrimRight(sb.String(), "\n"), "\n")
}
