package software

import (
	"regexp"
	"strconv"
	"strings"
)

// genericVersionPatterns are tried in order when a dependency has no
// configured pattern. Most specific first.
var genericVersionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`v?(\d+\.\d+\.\d+(?:\.\d+)?)`),
	regexp.MustCompile(`v?(\d+\.\d+)`),
	regexp.MustCompile(`(\d+)`),
}

// ExtractVersion scrapes a version token from arbitrary tool output.
// A configured pattern takes precedence; its first capture group (or the
// whole match when it has none) is the token. Parse failure is never
// fatal; the second return reports whether a token was found.
func ExtractVersion(output, pattern string) (string, bool) {
	if pattern != "" {
		re, err := regexp.Compile(pattern)
		if err == nil {
			if m := re.FindStringSubmatch(output); m != nil {
				if len(m) > 1 && m[1] != "" {
					return m[1], true
				}
				return m[0], true
			}
		}
		// An unmatched or invalid custom pattern falls through to the
		// generic patterns rather than failing the scrape.
	}

	for _, re := range genericVersionPatterns {
		if m := re.FindStringSubmatch(output); m != nil {
			return m[1], true
		}
	}
	return "", false
}

// CompareVersions compares two dotted version strings component-wise.
// Numeric components compare as integers, so 1.9.0 < 1.10.0. A pair of
// components where either side is non-numeric falls back to string
// comparison for that component. Missing components count as zero.
// Returns -1, 0, or 1.
func CompareVersions(a, b string) int {
	as := strings.Split(strings.TrimPrefix(a, "v"), ".")
	bs := strings.Split(strings.TrimPrefix(b, "v"), ".")

	n := len(as)
	if len(bs) > n {
		n = len(bs)
	}

	for i := 0; i < n; i++ {
		ac, bc := "0", "0"
		if i < len(as) {
			ac = as[i]
		}
		if i < len(bs) {
			bc = bs[i]
		}

		ai, aErr := strconv.Atoi(ac)
		bi, bErr := strconv.Atoi(bc)
		if aErr == nil && bErr == nil {
			if ai != bi {
				if ai < bi {
					return -1
				}
				return 1
			}
			continue
		}

		if ac != bc {
			if ac < bc {
				return -1
			}
			return 1
		}
	}
	return 0
}
