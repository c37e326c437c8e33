package jobboard

import (
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/net/publicsuffix"
)

// UnknownCompany は、URLから会社名を導出できなかった場合の値です。
const UnknownCompany = "unknown"

// Board は、ホスティング型の求人ボード (ATS) ごとの投稿リンクのパターンを表します。
type Board struct {
	Name  string
	Hosts []string
	// posting は URL のパス部分に適用されます。最初のパスセグメントが会社のスラッグです。
	posting *regexp.Regexp
}

var knownBoards = []Board{
	{
		Name:    "greenhouse",
		Hosts:   []string{"job-boards.greenhouse.io", "boards.greenhouse.io"},
		posting: regexp.MustCompile(`^/[^/]+/jobs/\d+/?$`),
	},
	{
		Name:    "lever",
		Hosts:   []string{"jobs.lever.co"},
		posting: regexp.MustCompile(`^/[^/]+/[0-9a-fA-F-]{36}/?$`),
	},
	{
		Name:    "ashby",
		Hosts:   []string{"jobs.ashbyhq.com"},
		posting: regexp.MustCompile(`^/[^/]+/[0-9a-fA-F-]{36}/?$`),
	},
	{
		Name:    "workable",
		Hosts:   []string{"apply.workable.com"},
		posting: regexp.MustCompile(`^/[^/]+/j/[0-9A-Za-z]+/?$`),
	},
}

// genericPosting は、自社ホストの採用ページで使われる一般的な投稿パスです。
var genericPosting = regexp.MustCompile(`(?i)/(job|jobs|careers|positions|openings)/[^/]+`)

// LookupBoard は、ホスト名に対応する既知の求人ボードを返します。
func LookupBoard(host string) (Board, bool) {
	host = normalizeHost(host)
	for _, b := range knownBoards {
		for _, h := range b.Hosts {
			if host == h {
				return b, true
			}
		}
	}
	return Board{}, false
}

// IsPosting は、URL がこのボードの個別求人ページを指しているかを判定します。
func (b Board) IsPosting(u *url.URL) bool {
	if u == nil || b.posting == nil {
		return false
	}
	for _, h := range b.Hosts {
		if normalizeHost(u.Host) == h {
			return b.posting.MatchString(u.EscapedPath())
		}
	}
	return false
}

// isGenericPosting は、既知のボードではないホストについて、
// ボードと同じ登録可能ドメイン上の求人パスかどうかを判定します。
func isGenericPosting(u, board *url.URL) bool {
	if u == nil || board == nil {
		return false
	}
	if registrableDomain(u.Host) != registrableDomain(board.Host) {
		return false
	}
	// ボードページ自身 (例: /careers/) は投稿ではない
	if strings.TrimSuffix(u.Path, "/") == strings.TrimSuffix(board.Path, "/") {
		return false
	}
	return genericPosting.MatchString(u.Path)
}

// CompanyFromURL は、URL から会社名を導出します。
// ホスティング型ボードではパスの最初のセグメント、それ以外は登録可能ドメインのラベルを使用します。
func CompanyFromURL(u *url.URL) string {
	if u == nil || u.Host == "" {
		return UnknownCompany
	}

	if _, ok := LookupBoard(u.Host); ok {
		slug := firstSegment(u.Path)
		switch slug {
		case "", "jobs", "embed", "www", "job-boards":
			return UnknownCompany
		}
		return strings.ToLower(strings.TrimSpace(slug))
	}

	domain := registrableDomain(u.Host)
	if domain == "" {
		return UnknownCompany
	}
	label, _, _ := strings.Cut(domain, ".")
	if label == "" {
		return UnknownCompany
	}
	return label
}

func firstSegment(p string) string {
	p = strings.TrimPrefix(p, "/")
	seg, _, _ := strings.Cut(p, "/")
	return seg
}

func normalizeHost(host string) string {
	host = strings.ToLower(host)
	if h, _, ok := strings.Cut(host, ":"); ok {
		host = h
	}
	return strings.TrimPrefix(host, "www.")
}

// registrableDomain は eTLD+1 を返します。IP アドレスや localhost の場合はホスト名をそのまま返します。
func registrableDomain(host string) string {
	host = normalizeHost(host)
	if host == "" {
		return ""
	}
	domain, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return host
	}
	return domain
}
