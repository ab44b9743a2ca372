// Package markdown normalizes conversation transcripts before fact
// extraction. Chat exports arrive as markdown; extraction wants plain
// sentences with formatting noise removed.
package markdown

import (
	"regexp"
	"sort"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

var hashtagPattern = regexp.MustCompile(`#([A-Za-z][A-Za-z0-9_-]*)`)

// Normalize renders markdown down to plain text. Block boundaries become
// newlines, inline formatting is dropped, and code is skipped entirely
// since transcripts quote snippets that are never personal facts.
func Normalize(source string) string {
	src := []byte(source)
	doc := goldmark.New().Parser().Parse(text.NewReader(src))

	var b strings.Builder
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		switch node := n.(type) {
		case *ast.FencedCodeBlock, *ast.CodeBlock, *ast.HTMLBlock:
			return ast.WalkSkipChildren, nil
		case *ast.CodeSpan, *ast.RawHTML:
			return ast.WalkSkipChildren, nil
		case *ast.Text:
			if entering {
				b.Write(node.Segment.Value(src))
				if node.SoftLineBreak() || node.HardLineBreak() {
					b.WriteByte(' ')
				}
			}
		default:
			if !entering && n.Type() == ast.TypeBlock {
				b.WriteByte('\n')
			}
		}
		return ast.WalkContinue, nil
	})

	return collapseBlankLines(b.String())
}

// ExtractHashtags returns the distinct hashtags in the transcript,
// lowercased and sorted, without the leading '#'. Tags inside code are
// not counted.
func ExtractHashtags(source string) []string {
	normalized := Normalize(source)
	seen := map[string]bool{}
	for _, match := range hashtagPattern.FindAllStringSubmatch(normalized, -1) {
		seen[strings.ToLower(match[1])] = true
	}
	tags := make([]string, 0, len(seen))
	for tag := range seen {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

func collapseBlankLines(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}
