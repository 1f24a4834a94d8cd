package middleware

import "net/http"

// apiContentSecurityPolicy はJSONしか返さないAPI向けのCSP。
// レスポンスがブラウザで文書として解釈されても、スクリプトや埋め込みを一切許可しない。
const apiContentSecurityPolicy = "default-src 'none'; frame-ancestors 'none'"

// NewSecurityHeadersMiddleware はJSON APIのレスポンスに付与するセキュリティヘッダーのミドルウェアを返す。
// 回答本文などのサニタイズ済みHTMLはクライアント側で描画されるため、API応答そのものは描画させない。
// 投票数などは投稿直後に変わるので、中間キャッシュにも保存させない。
func NewSecurityHeadersMiddleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("Content-Security-Policy", apiContentSecurityPolicy)
			h.Set("Referrer-Policy", "no-referrer")
			h.Set("Cross-Origin-Resource-Policy", "same-site")
			if r.Method == http.MethodGet || r.Method == http.MethodHead {
				h.Set("Cache-Control", "no-store")
			}
			next.ServeHTTP(w, r)
		})
	}
}
