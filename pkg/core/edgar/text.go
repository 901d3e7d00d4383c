package edgar

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

const (
	// MinDocumentChars is the smallest stripped document worth extracting from.
	MinDocumentChars = 5000
	// HeadChars of the document are always kept: cover page and "Copies to:" block.
	HeadChars = 25000
	// LegalMattersBefore / LegalMattersAfter bound the window around the legal matters anchor.
	LegalMattersBefore = 1000
	LegalMattersAfter  = 5000
	// MaxExcerptChars caps the excerpt handed to the extractors.
	MaxExcerptChars = 35000
)

var (
	blockElements = map[string]bool{
		"p": true, "div": true, "br": true, "tr": true, "li": true, "table": true, "td": true,
		"th": true, "h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
		"center": true, "hr": true, "pre": true, "ul": true, "ol": true,
		"document": true, "text": true, "type": true, "sequence": true, "filename": true,
	}

	inlineSpace     = regexp.MustCompile(`[ \t\r\f\v\x{00a0}\x{200b}]+`)
	legalMattersAny = regexp.MustCompile(`(?i)legal\s+matters`)
)

// HTMLToText strips markup and returns newline-separated text: block elements break
// lines, runs of whitespace collapse to one space, empty lines are dropped.
// Plain-text submissions pass through the same normalisation.
func HTMLToText(raw string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return normalizeLines(raw)
	}
	doc.Find("script, style, head, noscript").Remove()

	var sb strings.Builder
	for _, n := range doc.Nodes {
		writeNode(&sb, n)
	}
	return normalizeLines(sb.String())
}

func writeNode(sb *strings.Builder, n *html.Node) {
	switch n.Type {
	case html.TextNode:
		sb.WriteString(n.Data)
		return
	case html.CommentNode:
		return
	}

	block := n.Type == html.ElementNode && blockElements[strings.ToLower(n.Data)]
	if block {
		sb.WriteByte('\n')
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		writeNode(sb, c)
	}
	if block {
		sb.WriteByte('\n')
	}
}

func normalizeLines(s string) string {
	lines := strings.Split(s, "\n")
	out := lines[:0]
	for _, line := range lines {
		line = strings.TrimSpace(inlineSpace.ReplaceAllString(line, " "))
		if line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}

// BuildCounselExcerpt keeps the head of the document plus a window around the
// "legal matters" section when that section starts beyond the head. Counsel is named
// on the cover page or in that section, so the excerpt rarely loses either.
func BuildCounselExcerpt(text string) string {
	if len(text) <= HeadChars {
		return text
	}

	head := truncate(text, HeadChars)
	anchor := legalMattersAnchor(text)
	if anchor < len(head) {
		return head
	}

	start := anchor - LegalMattersBefore
	if start < len(head) {
		start = len(head)
	}
	start = runeFloor(text, start)
	end := anchor + LegalMattersAfter
	if end > len(text) {
		end = len(text)
	}
	end = runeFloor(text, end)

	excerpt := head + "\n...\n" + text[start:end]
	return truncate(excerpt, MaxExcerptChars)
}

// legalMattersAnchor prefers the last upper-case heading (the table of contents comes
// first), else the last match in any case. -1 when absent.
func legalMattersAnchor(text string) int {
	if idx := strings.LastIndex(text, "LEGAL MATTERS"); idx >= 0 {
		return idx
	}
	matches := legalMattersAny.FindAllStringIndex(text, -1)
	if len(matches) == 0 {
		return -1
	}
	return matches[len(matches)-1][0]
}

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:runeFloor(s, n)]
}

func runeFloor(s string, i int) int {
	if i >= len(s) {
		return len(s)
	}
	for i > 0 && !utf8.RuneStart(s[i]) {
		i--
	}
	return i
}
