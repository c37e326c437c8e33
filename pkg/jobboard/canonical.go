package jobboard

import (
	"net/url"
	"strings"
)

// trackingParams は、同一投稿の重複判定を妨げる計測用クエリパラメータです。
var trackingParams = map[string]bool{
	"gclid":        true,
	"fbclid":       true,
	"msclkid":      true,
	"mc_cid":       true,
	"mc_eid":       true,
	"mkt_tok":      true,
	"gh_src":       true,
	"lever-source": true,
}

// canonicalizeURL は、重複判定のキーとして使えるよう URL を正規化します。
// スキームとホストを小文字化し、フラグメントと計測用パラメータを除去します。
func canonicalizeURL(u *url.URL) *url.URL {
	c := *u
	c.Scheme = strings.ToLower(c.Scheme)
	c.Host = strings.ToLower(c.Host)
	c.Fragment = ""
	c.RawFragment = ""
	c.User = nil
	if len(c.Path) > 1 {
		c.Path = strings.TrimSuffix(c.Path, "/")
		c.RawPath = ""
	}

	if c.RawQuery != "" {
		q := c.Query()
		for k := range q {
			lk := strings.ToLower(k)
			if strings.HasPrefix(lk, "utm_") || trackingParams[lk] {
				q.Del(k)
			}
		}
		// Encode はキーをソートするため、結果は決定的になる
		c.RawQuery = q.Encode()
	}
	return &c
}

// NormalizeURL は href を base 基準で絶対URLに解決し、重複判定のキーとなる形に正規化します。
// base が nil の場合は絶対URLのみを受け付けます。http(s) 以外や解決できないリンクには nil を返します。
func NormalizeURL(base *url.URL, href string) *url.URL {
	abs := resolveReference(base, href)
	if abs == nil || abs.Host == "" {
		return nil
	}
	if abs.Scheme != "http" && abs.Scheme != "https" {
		return nil
	}
	return canonicalizeURL(abs)
}

func resolveReference(base *url.URL, href string) *url.URL {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") {
		return nil
	}
	ref, err := url.Parse(href)
	if err != nil {
		return nil
	}
	if base == nil {
		if !ref.IsAbs() {
			return nil
		}
		return ref
	}
	return base.ResolveReference(ref)
}
