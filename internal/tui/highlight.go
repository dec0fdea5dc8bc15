package tui

import (
	"path/filepath"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

// HighlightDiffSide renders one side of an EventFileDiff's old/new content
// with chroma syntax highlighting inferred from path's extension, falling
// back to the plain text if no lexer matches. Grounded on
// internal/tui/editor/highlight.go's cachedHighlight, trimmed of its
// background-color cache (this renderer has no editor pane to repaint).
func HighlightDiffSide(path, content, theme string) string {
	lex := lexers.Match(filepath.Base(path))
	if lex == nil {
		lex = lexers.Get(strings.TrimPrefix(filepath.Ext(path), "."))
	}
	if lex == nil {
		return content
	}
	lex = chroma.Coalesce(lex)

	sty := styles.Get(theme)
	if sty == nil {
		sty = styles.Fallback
	}
	fmtr := formatters.Get("terminal16m")
	if fmtr == nil {
		fmtr = formatters.Fallback
	}

	it, err := lex.Tokenise(nil, content)
	if err != nil {
		return content
	}
	var buf strings.Builder
	if err := fmtr.Format(&buf, sty, it); err != nil {
		return content
	}
	return strings.TrimRight(buf.String(), "\n")
}
