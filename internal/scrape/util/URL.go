package util

import (
	"net/url"
	"strings"
)

// ResolveLink makes href absolute against base, dropping the fragment and
// ad-tracking query parameters. When href cannot be parsed it falls back to
// joining base's origin and href.
func ResolveLink(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	ref, err := url.Parse(href)
	if err != nil {
		return Origin(base) + "/" + strings.TrimLeft(href, "/")
	}
	abs := base.ResolveReference(ref)
	abs.Fragment = ""
	stripTracking(abs)
	return abs.String()
}

// stripTracking removes utm_* and click-id parameters. The query is only
// re-encoded when something was removed so untouched links keep their order.
func stripTracking(u *url.URL) {
	if u.RawQuery == "" {
		return
	}
	q := u.Query()
	removed := false
	for k := range q {
		if isTrackingParam(k) {
			q.Del(k)
			removed = true
		}
	}
	if removed {
		u.RawQuery = q.Encode()
	}
}

func isTrackingParam(k string) bool {
	lk := strings.ToLower(k)
	if strings.HasPrefix(lk, "utm_") {
		return true
	}
	switch lk {
	case "gclid", "fbclid", "msclkid", "mc_cid", "mc_eid", "mkt_tok":
		return true
	}
	return false
}

// Origin returns scheme://host of u.
func Origin(u *url.URL) string {
	return u.Scheme + "://" + u.Host
}

// SameHost reports whether a and b share a case-insensitive host.
func SameHost(a, b *url.URL) bool {
	return strings.EqualFold(a.Host, b.Host)
}
