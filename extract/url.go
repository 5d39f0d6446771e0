package extract

import (
	"net/url"
	"strings"
)

// AbsoluteURL rewrites candidate into an absolute URL using baseURL.
// Already-absolute candidates pass through unchanged, protocol-relative
// ones inherit the base scheme, and everything else goes through standard
// relative resolution. Malformed input comes back as-is; this never fails.
func AbsoluteURL(candidate, baseURL string) string {
	if strings.HasPrefix(candidate, "http://") || strings.HasPrefix(candidate, "https://") {
		return candidate
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		return candidate
	}

	if strings.HasPrefix(candidate, "//") {
		return base.Scheme + ":" + candidate
	}

	ref, err := url.Parse(candidate)
	if err != nil {
		return candidate
	}
	return base.ResolveReference(ref).String()
}

// absoluteSrcset rewrites each URL token in a srcset value, leaving width
// and density descriptors alone. Segments split on commas, the URL is the
// first whitespace-delimited token of each.
func absoluteSrcset(srcset, baseURL string) string {
	segments := strings.Split(srcset, ",")
	for i, segment := range segments {
		fields := strings.Fields(segment)
		if len(fields) == 0 {
			continue
		}
		fields[0] = AbsoluteURL(fields[0], baseURL)
		segments[i] = strings.Join(fields, " ")
	}
	return strings.Join(segments, ", ")
}

// validURL reports whether s parses as a well-formed absolute URL.
// Reachability is not checked.
func validURL(s string) bool {
	u, err := url.Parse(s)
	return err == nil && u.IsAbs() && u.Host != ""
}
