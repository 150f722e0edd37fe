package ucassist

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"strings"
)

// CanonicalURL resolves ref against base and normalizes the result so the
// same detail page always yields the same string: scheme and host are
// lowercased, default ports and fragments dropped, the query re-encoded in
// sorted order without the dropParams keys, and a trailing slash trimmed
// from non-root paths. Only http and https URLs are accepted.
func CanonicalURL(base *url.URL, ref string, dropParams []string) (string, error) {
	parsed, err := url.Parse(strings.TrimSpace(ref))
	if err != nil {
		return "", fmt.Errorf("parse %q: %w", ref, err)
	}

	u := parsed
	if base != nil {
		u = base.ResolveReference(parsed)
	}

	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return "", fmt.Errorf("unsupported scheme %q in %q", u.Scheme, ref)
	}
	u.Scheme = scheme
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""

	if (scheme == "http" && strings.HasSuffix(u.Host, ":80")) ||
		(scheme == "https" && strings.HasSuffix(u.Host, ":443")) {
		u.Host = u.Host[:strings.LastIndex(u.Host, ":")]
	}

	if u.Host == "" {
		return "", fmt.Errorf("no host in %q", ref)
	}

	q := u.Query()
	for _, p := range dropParams {
		for key := range q {
			if strings.EqualFold(key, p) {
				delete(q, key)
			}
		}
	}
	u.RawQuery = q.Encode() // Encode sorts keys

	if u.Path == "" {
		u.Path = "/"
	} else if u.Path != "/" && strings.HasSuffix(u.Path, "/") {
		u.Path = strings.TrimSuffix(u.Path, "/")
	}

	return u.String(), nil
}

// KeyForURL derives the record identity key from a canonical URL.
func KeyForURL(canonical string) string {
	sum := sha256.Sum256([]byte(canonical))
	return hex.EncodeToString(sum[:])
}
