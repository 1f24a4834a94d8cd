// Package richtext は質問・回答本文を保存用の安全なHTMLに変換する。
//
// 本文は html（エディタが出力したHTML）または markdown で受け付け、
// markdown は goldmark（GFM拡張）でHTMLに変換したうえで、いずれもサニタイズして保存する。
package richtext

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/hitoshi/qanda/internal/model"
	"github.com/hitoshi/qanda/internal/security"
)

// Format は本文の入力形式。
type Format string

const (
	FormatHTML     Format = "html"
	FormatMarkdown Format = "markdown"
)

// ParseFormat は入力形式を解釈する。空文字列はHTMLとして扱う。
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatHTML:
		return FormatHTML, nil
	case FormatMarkdown:
		return FormatMarkdown, nil
	}
	return "", model.NewValidationError("contentFormat", "html または markdown を指定してください")
}

// Renderer は本文を保存用HTMLに変換する。並行して使用できる。
type Renderer struct {
	markdown  goldmark.Markdown
	sanitizer security.ContentSanitizerService
}

// NewRenderer はRendererを生成する。
func NewRenderer(sanitizer security.ContentSanitizerService) *Renderer {
	md := goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			html.WithHardWraps(),
			html.WithXHTML(),
		),
	)
	return &Renderer{markdown: md, sanitizer: sanitizer}
}

// Render は本文を形式に応じてHTMLに変換し、サニタイズした結果を返す。
func (r *Renderer) Render(format Format, raw string) (string, error) {
	switch format {
	case FormatHTML, "":
		return r.sanitizer.Sanitize(raw), nil
	case FormatMarkdown:
		var buf bytes.Buffer
		if err := r.markdown.Convert([]byte(raw), &buf); err != nil {
			return "", fmt.Errorf("failed to render markdown: %w", err)
		}
		return r.sanitizer.Sanitize(buf.String()), nil
	}
	return "", model.NewValidationError("contentFormat", "html または markdown を指定してください")
}

// IsBlank はタグを除去した本文が空かどうかを返す。
// エディタが出力する <p><br></p> のような本文は空とみなす。
func (r *Renderer) IsBlank(renderedHTML string) bool {
	return r.sanitizer.PlainText(renderedHTML) == ""
}
