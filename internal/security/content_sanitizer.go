// Package security はアプリケーションのセキュリティ機能を提供する。
//
// ContentSanitizerService は質問・回答本文のHTMLをサニタイズし、
// XSS攻撃などのセキュリティリスクから閲覧者を保護する。
// bluemondayライブラリを使用した許可リストベースのポリシーで、
// リッチテキストエディタとMarkdownが出力するタグのみを通過させる。
package security

import (
	"html"
	"net/url"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// ContentSanitizerService はHTMLコンテンツのサニタイズ機能のインターフェースを定義する。
// 質問・回答の保存前に使用される。
type ContentSanitizerService interface {
	// Sanitize はHTMLコンテンツをサニタイズして安全なHTMLを返す。
	// 同一入力に対して常に同一出力を返す（冪等）。
	Sanitize(rawHTML string) string

	// PlainText はすべてのタグを除去したテキストを前後の空白を除いて返す。
	// 本文が実質的に空かどうかの判定に使用する。
	PlainText(rawHTML string) string
}

// codeLanguageClass はシンタックスハイライト用の class="language-xxx" にのみ一致する。
var codeLanguageClass = regexp.MustCompile(`^language-[\w+#-]+$`)

// contentSanitizer はContentSanitizerServiceの実装。
// bluemondayのポリシーは生成後に変更しないため、並行して使用できる。
type contentSanitizer struct {
	policy *bluemonday.Policy
	strict *bluemonday.Policy
}

// NewContentSanitizer はContentSanitizerServiceの新しいインスタンスを生成する。
// ポリシーの内容:
//   - 許可タグ: 段落・見出し・リスト・引用・コード・強調・表・リンク・画像
//   - script, iframe, style, form 等および全てのon*イベント属性は除去
//   - codeのclass属性は language-xxx のみ許可
//   - aのhrefは http, https, mailto のみ。target="_blank" と rel="noopener noreferrer" を付与
//   - imgのsrcはhttpsのみ
func NewContentSanitizer() *contentSanitizer {
	p := bluemonday.NewPolicy()

	p.AllowElements(
		"p", "br", "hr",
		"h1", "h2", "h3", "h4", "h5", "h6",
		"ul", "ol", "li",
		"blockquote", "pre", "code",
		"strong", "em", "b", "i", "u", "s", "del",
		"table", "thead", "tbody", "tr", "th", "td",
	)
	p.AllowAttrs("class").Matching(codeLanguageClass).OnElements("code")

	p.AllowAttrs("href").OnElements("a")
	p.AllowRelativeURLs(false)
	p.AllowURLSchemes("http", "https", "mailto")
	p.AddTargetBlankToFullyQualifiedLinks(true)
	p.RequireNoReferrerOnLinks(true)

	// imgのsrcはhttpsのみ。aのhttpは上のAllowURLSchemesで許可済みのため、要素単位で判定する
	p.AllowAttrs("alt").OnElements("img")
	p.AllowAttrs("src").Matching(regexp.MustCompile(`^https://`)).OnElements("img")
	p.AllowURLSchemeWithCustomPolicy("https", func(u *url.URL) bool {
		return u.Host != ""
	})

	return &contentSanitizer{
		policy: p,
		strict: bluemonday.StrictPolicy(),
	}
}

// Sanitize はHTMLコンテンツをサニタイズして安全なHTMLを返す。
func (s *contentSanitizer) Sanitize(rawHTML string) string {
	return s.policy.Sanitize(rawHTML)
}

// PlainText はタグを除去したテキストを返す。&nbsp; 等の文字参照は展開してから空白を除去する。
func (s *contentSanitizer) PlainText(rawHTML string) string {
	return strings.TrimSpace(html.UnescapeString(s.strict.Sanitize(rawHTML)))
}

// compile-time interface check
var _ ContentSanitizerService = (*contentSanitizer)(nil)
