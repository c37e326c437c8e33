package jobboard_test

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shouni/go-job-exact/pkg/jobboard"
)

// ======================================================================
// モック (Mock) の定義
// ======================================================================

// MockFetcher はテスト用の jobboard.Fetcher インターフェースの実装です。
type MockFetcher struct {
	htmlContent string
	fetchError  error
	calledURL   string
}

// FetchBytes はモックされたHTMLをバイト配列として返すか、エラーを返します。
func (m *MockFetcher) FetchBytes(ctx context.Context, url string) ([]byte, error) {
	m.calledURL = url
	if m.fetchError != nil {
		return nil, m.fetchError
	}
	return []byte(m.htmlContent), nil
}

var fixedNow = time.Date(2026, 10, 16, 13, 45, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

const greenhouseBoard = "https://job-boards.greenhouse.io/acme"

const greenhouseHTML = `<html><body>
<div class="job-posts">
  <a href="/acme/jobs/4001001"><p class="body--medium">Data Scientist</p><p class="body__secondary">New York</p></a>
  <a href="https://job-boards.greenhouse.io/acme/jobs/4001002?utm_source=linkedin"><p class="body--medium">Machine Learning Engineer</p></a>
  <a href="/acme/jobs/4001003#apply">
     AI Engineer
  </a>
  <a href="/acme/jobs/4001001">Apply</a>
  <a href="/acme">Back to board</a>
  <a href="https://www.acme.com/about">About Acme</a>
  <a href="mailto:jobs@acme.com">Mail us</a>
</div>
</body></html>`

// ======================================================================
// テスト関数
// ======================================================================

func TestNewExtractor(t *testing.T) {
	t.Run("success_with_valid_fetcher", func(t *testing.T) {
		extractor, err := jobboard.NewExtractor(&MockFetcher{})
		assert.NoError(t, err)
		assert.NotNil(t, extractor)
	})

	t.Run("error_with_nil_fetcher", func(t *testing.T) {
		extractor, err := jobboard.NewExtractor(nil)
		assert.Error(t, err)
		assert.Nil(t, extractor)
		assert.Contains(t, err.Error(), "Fetcher cannot be nil")
	})
}

func TestExtract_Greenhouse(t *testing.T) {
	extractor, err := jobboard.NewExtractor(&MockFetcher{}, jobboard.WithClock(fixedClock))
	require.NoError(t, err)

	records, err := extractor.Extract([]byte(greenhouseHTML), greenhouseBoard)
	require.NoError(t, err)
	require.Len(t, records, 3, "投稿アンカーは3件 (重複と投稿以外のリンクは除外)")

	assert.Equal(t, "Data Scientist", records[0].Title)
	assert.Equal(t, "https://job-boards.greenhouse.io/acme/jobs/4001001", records[0].URL)
	assert.Equal(t, "acme", records[0].Company)
	assert.Equal(t, "2026-10-16", records[0].DateString())

	assert.Equal(t, "Machine Learning Engineer", records[1].Title)
	assert.Equal(t, "https://job-boards.greenhouse.io/acme/jobs/4001002", records[1].URL, "計測用パラメータは除去される")

	assert.Equal(t, "AI Engineer", records[2].Title)
	assert.Equal(t, "https://job-boards.greenhouse.io/acme/jobs/4001003", records[2].URL, "フラグメントは除去される")
}

func TestExtract_TrailingSlashVariants(t *testing.T) {
	html := `<html><body>
	  <a href="/acme/jobs/4001001">Data Scientist</a>
	  <a href="/acme/jobs/4001001/">Data Scientist</a>
	</body></html>`

	extractor, err := jobboard.NewExtractor(&MockFetcher{}, jobboard.WithClock(fixedClock))
	require.NoError(t, err)

	records, err := extractor.Extract([]byte(html), greenhouseBoard)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "https://job-boards.greenhouse.io/acme/jobs/4001001", records[0].URL)
}

func TestExtract_NAnchorsYieldNRecords(t *testing.T) {
	const n = 25
	var b strings.Builder
	b.WriteString("<html><body><ul>")
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, `<li><a href="https://jobs.lever.co/globex/%08d-0000-4000-8000-000000000000"><h5 data-qa="posting-name">Role %d</h5></a></li>`, i, i)
	}
	b.WriteString("</ul></body></html>")

	extractor, err := jobboard.NewExtractor(&MockFetcher{}, jobboard.WithClock(fixedClock))
	require.NoError(t, err)

	records, err := extractor.Extract([]byte(b.String()), "https://jobs.lever.co/globex")
	require.NoError(t, err)
	require.Len(t, records, n)

	urls := make(map[string]bool, n)
	for i, r := range records {
		assert.Equal(t, fmt.Sprintf("Role %d", i), r.Title)
		assert.Equal(t, "globex", r.Company)
		assert.False(t, urls[r.URL], "URLは一意であるべき: %s", r.URL)
		urls[r.URL] = true
	}
}

func TestExtract_GenericCareersPage(t *testing.T) {
	html := `<html><body>
	  <a href="/careers/">All openings</a>
	  <a href="/careers/backend-engineer-123">Backend Engineer</a>
	  <a href="https://jobs.initech.co.uk/jobs/987">Support Lead</a>
	  <a href="https://jobs.example.org/jobs/1">Elsewhere</a>
	  <a href="/blog/how-we-hire">Blog</a>
	</body></html>`

	extractor, err := jobboard.NewExtractor(&MockFetcher{}, jobboard.WithClock(fixedClock))
	require.NoError(t, err)

	records, err := extractor.Extract([]byte(html), "https://www.initech.co.uk/careers/")
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "https://www.initech.co.uk/careers/backend-engineer-123", records[0].URL)
	assert.Equal(t, "initech", records[0].Company)
	assert.Equal(t, "https://jobs.initech.co.uk/jobs/987", records[1].URL, "同じ登録可能ドメインのサブドメインは許可される")
	assert.Equal(t, "initech", records[1].Company)
}

func TestExtract_MalformedOrEmptyMarkup(t *testing.T) {
	testCases := []struct {
		name string
		html string
	}{
		{name: "empty", html: ""},
		{name: "plain_text", html: "this is not html at all"},
		{name: "broken_tags", html: `<html><body><a href="/acme/jobs/"><div <<<</a></p>`},
		{name: "no_postings", html: `<html><body><a href="/acme">Board</a></body></html>`},
	}

	extractor, err := jobboard.NewExtractor(&MockFetcher{}, jobboard.WithClock(fixedClock))
	require.NoError(t, err)

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			records, err := extractor.Extract([]byte(tc.html), greenhouseBoard)
			assert.NoError(t, err)
			assert.Empty(t, records)
		})
	}
}

func TestExtract_InvalidBoardURL(t *testing.T) {
	extractor, err := jobboard.NewExtractor(&MockFetcher{})
	require.NoError(t, err)

	_, err = extractor.Extract([]byte(greenhouseHTML), "/acme/jobs")
	assert.Error(t, err)
}

func TestExtract_AnyBoardWithResolver(t *testing.T) {
	// 検索結果のリダイレクトリンクを展開するリゾルバ
	resolver := func(u *url.URL) *url.URL {
		target := u.Query().Get("target")
		if target == "" {
			return u
		}
		parsed, err := url.Parse(target)
		if err != nil {
			return nil
		}
		return parsed
	}

	html := `<html><body>
	  <a href="/redirect?target=https%3A%2F%2Fjob-boards.greenhouse.io%2Fumbrella%2Fjobs%2F55">Data Analyst - Umbrella</a>
	  <a href="/redirect?target=https%3A%2F%2Fjobs.ashbyhq.com%2Fhooli%2F3f2504e0-4f89-41d3-9a0c-0305e82c3301">AI Engineer - Hooli</a>
	  <a href="/redirect?target=https%3A%2F%2Fnews.example.com%2Fjobs%2F1">News</a>
	  <a href="/settings">Settings</a>
	</body></html>`

	extractor, err := jobboard.NewExtractor(&MockFetcher{},
		jobboard.WithClock(fixedClock),
		jobboard.WithLinkResolver(resolver),
		jobboard.WithAnyBoard(),
	)
	require.NoError(t, err)

	records, err := extractor.Extract([]byte(html), "https://search.example.com/html/?q=jobs")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "umbrella", records[0].Company)
	assert.Equal(t, "https://job-boards.greenhouse.io/umbrella/jobs/55", records[0].URL)
	assert.Equal(t, "hooli", records[1].Company)
}

func TestFetchAndExtract(t *testing.T) {
	t.Run("fetch_error", func(t *testing.T) {
		fetcher := &MockFetcher{fetchError: errors.New("network timeout")}
		extractor, err := jobboard.NewExtractor(fetcher)
		require.NoError(t, err)

		records, err := extractor.FetchAndExtract(context.Background(), greenhouseBoard)
		assert.Error(t, err)
		assert.Nil(t, records)
		assert.Contains(t, err.Error(), "network timeout")
	})

	t.Run("success", func(t *testing.T) {
		fetcher := &MockFetcher{htmlContent: greenhouseHTML}
		extractor, err := jobboard.NewExtractor(fetcher, jobboard.WithClock(fixedClock))
		require.NoError(t, err)

		records, err := extractor.FetchAndExtract(context.Background(), greenhouseBoard)
		require.NoError(t, err)
		assert.Len(t, records, 3)
		assert.Equal(t, greenhouseBoard, fetcher.calledURL)
	})

	t.Run("idempotent_on_same_markup", func(t *testing.T) {
		fetcher := &MockFetcher{htmlContent: greenhouseHTML}
		extractor, err := jobboard.NewExtractor(fetcher, jobboard.WithClock(fixedClock))
		require.NoError(t, err)

		first, err := extractor.FetchAndExtract(context.Background(), greenhouseBoard)
		require.NoError(t, err)
		second, err := extractor.FetchAndExtract(context.Background(), greenhouseBoard)
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})
}
