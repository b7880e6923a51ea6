// Package ingest loads the knowledge base documents, chunks them and pushes
// their embeddings into the vector store.
package ingest

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
)

// MarkdownParser extracts plain text from markdown content using goldmark
// AST parsing. Headings, emphasis and link syntax are stripped so the chunker
// sees prose only.
type MarkdownParser struct {
	parser goldmark.Markdown
}

// NewMarkdownParser creates a new markdown parser.
func NewMarkdownParser() *MarkdownParser {
	return &MarkdownParser{
		parser: goldmark.New(
			goldmark.WithExtensions(extension.Table),
		),
	}
}

// ExtractText parses markdown content and returns its plain text.
func (p *MarkdownParser) ExtractText(content []byte) string {
	if len(content) == 0 {
		return ""
	}

	reader := text.NewReader(content)
	doc := p.parser.Parser().Parse(reader)

	var builder strings.Builder

	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		switch node := n.(type) {
		case *ast.Text:
			builder.Write(node.Segment.Value(content))
			if node.SoftLineBreak() || node.HardLineBreak() {
				builder.WriteByte('\n')
			}
		case *ast.String:
			builder.Write(node.Value)
		case *ast.CodeBlock, *ast.FencedCodeBlock:
			lines := n.Lines()
			for i := 0; i < lines.Len(); i++ {
				line := lines.At(i)
				builder.Write(line.Value(content))
			}
		case *ast.Heading, *ast.Paragraph, *ast.ListItem, *ast.Blockquote:
			if builder.Len() > 0 && !strings.HasSuffix(builder.String(), "\n") {
				builder.WriteByte('\n')
			}
		}
		return ast.WalkContinue, nil
	})

	return strings.TrimSpace(builder.String())
}
