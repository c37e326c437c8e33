package types

import "time"

// DateLayout は scraped_date 列の日付フォーマットです。
const DateLayout = "2006-01-02"

// JobRecord は、求人ボードから抽出された1件の求人投稿を表します。
// URL は永続化された集合の中で一意なキーとして扱われます。
type JobRecord struct {
	Title       string    // 求人タイトル
	URL         string    // 求人詳細ページの絶対URL (一意キー)
	Company     string    // ボードのドメインから導出した会社名
	ScrapedDate time.Time // 初めて取得した日付
}

// DateString は ScrapedDate を CSV 用の文字列に変換します。
func (r JobRecord) DateString() string {
	if r.ScrapedDate.IsZero() {
		return ""
	}
	return r.ScrapedDate.Format(DateLayout)
}
