package feed

import (
	"net/url"
	"time"

	"github.com/mmcdole/gofeed"
	textUtils "github.com/shouni/go-utils/text"

	"github.com/shouni/go-job-exact/pkg/jobboard"
	"github.com/shouni/go-job-exact/pkg/types"
)

// FeedAdapter は gofeed.Feed を求人レコードの供給元に適合させるためのアダプターです。
// gofeed.Feed の具体的な構造への依存を内部に閉じ込めます。
type FeedAdapter struct {
	*gofeed.Feed
	feedURL string
}

// NewFeedAdapter は gofeed.Feed から新しいアダプターを作成します。
// feedURL は、アイテムのリンクから会社名を導出できない場合のフォールバックに使われます。
func NewFeedAdapter(feed *gofeed.Feed, feedURL string) *FeedAdapter {
	return &FeedAdapter{Feed: feed, feedURL: feedURL}
}

// GetRecords は、フィードのアイテムを JobRecord に変換します。
// リンクはフィードURL基準で絶対URLに解決・正規化されます。
// http(s) 以外のリンクやリンクのないアイテム、同じリンクを持つ2件目以降のアイテムは無視されます。
func (a *FeedAdapter) GetRecords(now time.Time) []types.JobRecord {
	if a.Feed == nil || len(a.Items) == 0 {
		return []types.JobRecord{}
	}

	y, m, d := now.Date()
	scrapedDate := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	base, err := url.Parse(a.feedURL)
	if err != nil || !base.IsAbs() {
		base = nil
	}
	fallbackCompany := jobboard.UnknownCompany
	if base != nil {
		fallbackCompany = jobboard.CompanyFromURL(base)
	}

	seen := make(map[string]bool, len(a.Items))
	records := make([]types.JobRecord, 0, len(a.Items))
	for _, item := range a.Items {
		if item == nil {
			continue
		}
		posting := jobboard.NormalizeURL(base, item.Link)
		if posting == nil {
			continue
		}
		link := posting.String()
		if seen[link] {
			continue
		}
		seen[link] = true

		company := jobboard.CompanyFromURL(posting)
		if company == jobboard.UnknownCompany {
			company = fallbackCompany
		}
		records = append(records, types.JobRecord{
			Title:       textUtils.NormalizeText(item.Title),
			URL:         link,
			Company:     company,
			ScrapedDate: scrapedDate,
		})
	}
	return records
}
