package jobboard

import (
	"context"
	"net/url"
)

// ----------------------------------------------------------------------
// 依存性の定義 (DIP)
// ----------------------------------------------------------------------

// Fetcher は、求人ボードの生バイト配列を取得する機能のインターフェースを定義します。
// *httpkit.Client はこのインターフェースを満たします。
type Fetcher interface {
	FetchBytes(ctx context.Context, url string) ([]byte, error)
}

// LinkResolver は、アンカーの解決済みURLを実際の遷移先URLに書き換えます。
// 検索エンジンのリダイレクトリンクなどを展開するために使用します。
type LinkResolver func(u *url.URL) *url.URL
