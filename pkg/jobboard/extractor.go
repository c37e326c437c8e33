package jobboard

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"net/url"
	"time"

	"github.com/PuerkitoBio/goquery"
	textUtils "github.com/shouni/go-utils/text"

	"github.com/shouni/go-job-exact/pkg/types"
)

// ----------------------------------------------------------------------
// 定数定義 (解析関連のみ)
// ----------------------------------------------------------------------
const (
	anchorSelector = "a[href]"

	// titleSelectors はアンカー内で求人タイトルを保持する要素です (Lever, Greenhouse など)。
	titleSelectors = "[data-qa='posting-name'], .posting-name, .body--medium, h3, h4, h5"
)

// Extractor は、Fetcher を使って求人リンクの抽出プロセスを管理します。
type Extractor struct {
	fetcher  Fetcher
	now      func() time.Time
	resolve  LinkResolver
	anyBoard bool
}

// Option は Extractor の設定を行うための関数型です。
type Option func(*Extractor)

// WithClock は、scraped_date の打刻に使う時計を差し替えます。
func WithClock(now func() time.Time) Option {
	return func(e *Extractor) {
		if now != nil {
			e.now = now
		}
	}
}

// WithLinkResolver は、アンカーURLの展開処理を設定します。
func WithLinkResolver(resolve LinkResolver) Option {
	return func(e *Extractor) {
		e.resolve = resolve
	}
}

// WithAnyBoard は、ページのホストに関係なく既知のボードの投稿リンクをすべて受け入れます。
// 検索結果ページからの抽出に使用します。
func WithAnyBoard() Option {
	return func(e *Extractor) {
		e.anyBoard = true
	}
}

// NewExtractor は、新しいExtractorのインスタンスを生成します。
func NewExtractor(fetcher Fetcher, opts ...Option) (*Extractor, error) {
	if fetcher == nil {
		return nil, fmt.Errorf("jobboard.NewExtractor: Fetcher cannot be nil")
	}
	e := &Extractor{
		fetcher: fetcher,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// ----------------------------------------------------------------------
// メイン関数 (メソッド化)
// ----------------------------------------------------------------------

// FetchAndExtract は、指定されたボードURLからページを取得し、求人レコードを抽出します。
// 取得に失敗した場合はエラーを返します。解析に失敗した場合は空の結果を返します。
func (e *Extractor) FetchAndExtract(ctx context.Context, boardURL string) ([]types.JobRecord, error) {
	// 1. Fetcherから生のバイト配列を取得 (通信の責務)
	content, err := e.fetcher.FetchBytes(ctx, boardURL)
	if err != nil {
		return nil, fmt.Errorf("求人ボードの取得に失敗しました (URL: %s): %w", boardURL, err)
	}

	// 2. 解析 (抽出の責務)
	records, err := e.Extract(content, boardURL)
	if err != nil {
		log.Printf("求人リンクを解析できませんでした。空の結果として扱います (URL: %s): %v", boardURL, err)
		return nil, nil
	}
	return records, nil
}

// Extract は、生のHTMLから求人投稿アンカーを抽出し、JobRecord に正規化します。
// 同一ページ内で重複するURLは最初の出現のみを残します。
func (e *Extractor) Extract(content []byte, boardURL string) ([]types.JobRecord, error) {
	base, err := url.Parse(boardURL)
	if err != nil {
		return nil, fmt.Errorf("ボードURLのパースエラー: %w", err)
	}
	if !base.IsAbs() {
		return nil, fmt.Errorf("ボードURLは絶対URLである必要があります: %s", boardURL)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("HTML解析に失敗しました: %w", err)
	}

	return e.extractRecords(doc, base), nil
}

// extractRecords は goquery.Document から投稿アンカーを走査します。
func (e *Extractor) extractRecords(doc *goquery.Document, base *url.URL) []types.JobRecord {
	scrapedDate := truncateToDate(e.now())
	boardCompany := CompanyFromURL(base)
	board, isKnownBoard := LookupBoard(base.Host)

	seen := make(map[string]bool)
	var records []types.JobRecord

	doc.Find(anchorSelector).Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		posting := e.resolvePosting(href, base)
		if posting == nil {
			return
		}

		// 1. ボードのパターンに一致するか
		if !e.matchesBoard(posting, base, board, isKnownBoard) {
			return
		}

		// 2. ページ内の重複除去
		key := posting.String()
		if seen[key] {
			return
		}
		seen[key] = true

		company := CompanyFromURL(posting)
		if company == UnknownCompany {
			company = boardCompany
		}

		records = append(records, types.JobRecord{
			Title:       anchorTitle(a),
			URL:         key,
			Company:     company,
			ScrapedDate: scrapedDate,
		})
	})

	return records
}

// resolvePosting は href をボードURL基準で絶対URLに解決し、正規化します。
func (e *Extractor) resolvePosting(href string, base *url.URL) *url.URL {
	if e.resolve == nil {
		return NormalizeURL(base, href)
	}
	abs := resolveReference(base, href)
	if abs == nil {
		return nil
	}
	if abs = e.resolve(abs); abs == nil {
		return nil
	}
	return NormalizeURL(nil, abs.String())
}

// matchesBoard は、URL がボードの既知の投稿リンクパターンに一致するかを判定します。
func (e *Extractor) matchesBoard(posting, base *url.URL, board Board, isKnownBoard bool) bool {
	if e.anyBoard {
		b, ok := LookupBoard(posting.Host)
		return ok && b.IsPosting(posting)
	}
	if isKnownBoard {
		return board.IsPosting(posting)
	}
	return isGenericPosting(posting, base)
}

// anchorTitle はアンカーから求人タイトルを取り出します。
func anchorTitle(a *goquery.Selection) string {
	if t := textUtils.NormalizeText(a.Find(titleSelectors).First().Text()); t != "" {
		return t
	}
	if t := textUtils.NormalizeText(a.Text()); t != "" {
		return t
	}
	title, _ := a.Attr("title")
	return textUtils.NormalizeText(title)
}

func truncateToDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
