package search

import (
	"fmt"
	"net/url"
	"strings"
)

const (
	// DefaultEndpoint は DuckDuckGo の JavaScript 不要な検索結果ページです。
	DefaultEndpoint = "https://html.duckduckgo.com/html/"
	// DefaultSite は検索対象とする求人ボードのホストです。
	DefaultSite = "job-boards.greenhouse.io"

	redirectParam = "uddg"
)

// Query は、1回の検索に対応する職種と勤務地の組み合わせです。
type Query struct {
	Role     string
	Location string
	Text     string // 検索エンジンに渡すクエリ文字列
}

// BuildQueries は、職種 × 勤務地 の組み合わせごとに site: 検索クエリを生成します。
// 勤務地が空の場合は職種のみで検索します。
func BuildQueries(site string, roles, locations []string) []Query {
	if site == "" {
		site = DefaultSite
	}
	if len(locations) == 0 {
		locations = []string{""}
	}

	var queries []Query
	for _, role := range roles {
		role = strings.TrimSpace(role)
		if role == "" {
			continue
		}
		for _, loc := range locations {
			loc = strings.TrimSpace(loc)
			text := fmt.Sprintf("site:%s %q", site, role)
			if loc != "" {
				text += fmt.Sprintf(" %q", loc)
			}
			queries = append(queries, Query{Role: role, Location: loc, Text: text})
		}
	}
	return queries
}

// URL は、クエリに対応する検索結果ページのURLを返します。
func (q Query) URL(endpoint string) string {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	return endpoint + "?" + url.Values{"q": {q.Text}}.Encode()
}

// ResolveRedirect は DuckDuckGo のリダイレクトリンク (/l/?uddg=...) を実際の遷移先に展開します。
// リダイレクトリンクでない場合は入力をそのまま返します。
func ResolveRedirect(u *url.URL) *url.URL {
	if u == nil {
		return nil
	}
	if !strings.HasSuffix(strings.ToLower(u.Hostname()), "duckduckgo.com") || !strings.HasPrefix(u.Path, "/l/") {
		return u
	}
	target := u.Query().Get(redirectParam)
	if target == "" {
		return nil
	}
	resolved, err := url.Parse(target)
	if err != nil || !resolved.IsAbs() {
		return nil
	}
	return resolved
}
