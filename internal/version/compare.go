package version

import (
	"sort"
	"strconv"
	"strings"
)

// parsedVersion is the ephemeral result of pulling a version string apart.
// It is rebuilt on every comparison and never persisted.
type parsedVersion struct {
	parts        []int  // numeric dot components; unparseable segments are dropped
	isPrerelease bool   // true iff the string contains a '-'
	suffix       string // everything after the first '-', rejoined with '-'
}

// parse splits a version string into its numeric base components and an
// optional pre-release suffix. A segment like "0 EUS" contributes 0 (only the
// first whitespace token is considered); a segment like "abc" contributes
// nothing at all rather than zero.
func parse(v string) parsedVersion {
	pieces := strings.Split(v, "-")
	p := parsedVersion{
		isPrerelease: len(pieces) > 1,
		suffix:       strings.Join(pieces[1:], "-"),
	}

	for _, segment := range strings.Split(pieces[0], ".") {
		token := segment
		if fields := strings.Fields(segment); len(fields) > 0 {
			token = fields[0]
		}
		if n, err := strconv.Atoi(token); err == nil && n >= 0 {
			p.parts = append(p.parts, n)
		}
	}
	return p
}

// Compare orders two oc version strings. It returns a negative number when
// a < b, zero when equal, and a positive number when a > b.
//
// Base versions are compared numerically component by component, the shorter
// side padded with zeros. When the numeric components tie, a pre-release
// string sorts before its release counterpart; two pre-releases compare by
// their raw suffixes byte-wise, so "rc.10" sorts before "rc.2". That is a
// known quirk of the mirror's historical ordering and must not be "fixed" to
// numeric-aware comparison. Two releases whose numerics tie (e.g. trailing
// annotations such as "4.19.0 EUS") fall back to comparing the full original
// strings.
func Compare(a, b string) int {
	pa, pb := parse(a), parse(b)

	maxLen := len(pa.parts)
	if len(pb.parts) > maxLen {
		maxLen = len(pb.parts)
	}
	for i := 0; i < maxLen; i++ {
		var av, bv int
		if i < len(pa.parts) {
			av = pa.parts[i]
		}
		if i < len(pb.parts) {
			bv = pb.parts[i]
		}
		if av < bv {
			return -1
		}
		if av > bv {
			return 1
		}
	}

	switch {
	case pa.isPrerelease && !pb.isPrerelease:
		return -1 // 4.19.0-rc.1 < 4.19.0
	case !pa.isPrerelease && pb.isPrerelease:
		return 1
	case pa.isPrerelease && pb.isPrerelease:
		return strings.Compare(pa.suffix, pb.suffix)
	default:
		// Numerics tied with no pre-release on either side; the strings may
		// still differ ("4.1" vs "4.1.0", dropped annotations). Compare the
		// originals so the ordering stays a strict total preorder.
		return strings.Compare(a, b)
	}
}

// ExtractMajorMinor returns the "major.minor" prefix of a version string.
// The two tokens are taken verbatim with no numeric validation, so
// "x.y.z" yields "x.y". Returns false when fewer than two non-empty
// dot components are present.
func ExtractMajorMinor(version string) (string, bool) {
	parts := strings.SplitN(version, ".", 3)
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return "", false
	}
	return parts[0] + "." + parts[1], true
}

// ExtractVersionNumber returns the leading run of digits and dots in a string,
// useful for trimming annotations like "4.19.0-dirty" down to "4.19.0".
// A string starting with anything else yields "" (the run is empty).
func ExtractVersionNumber(s string) string {
	end := 0
	for end < len(s) {
		c := s[end]
		if (c < '0' || c > '9') && c != '.' {
			break
		}
		end++
	}
	return s[:end]
}

// prereleaseMarkers flag a version as unstable when present anywhere in the
// lowercased string. Containment is deliberately unanchored: "-rcfoo" counts.
var prereleaseMarkers = []string{"-rc", "-alpha", "-beta", "-nightly", "-dev", "-snapshot"}

// IsStable reports whether a version string looks like a stable release,
// i.e. carries none of the usual pre-release markers.
func IsStable(version string) bool {
	lower := strings.ToLower(version)
	for _, marker := range prereleaseMarkers {
		if strings.Contains(lower, marker) {
			return false
		}
	}
	return true
}

// FindMatchingVersion resolves a requested version against the available list.
//
// An exact match always wins, even over newer candidates. Otherwise the
// request needs at least two dot components; the first two are rejoined
// verbatim (an empty minor like "4." is allowed and matches the whole major
// series), candidates are selected by a plain string-prefix test on that
// "major.minor" (no boundary check; this is a lower-level primitive than
// MatchesPattern, keep them separate), and the highest per Compare is
// returned.
func FindMatchingVersion(requested string, available []string) (string, bool) {
	for _, v := range available {
		if v == requested {
			return requested, true
		}
	}

	parts := strings.Split(requested, ".")
	if len(parts) < 2 {
		return "", false
	}
	majorMinor := parts[0] + "." + parts[1]

	var candidates []string
	for _, v := range available {
		if strings.HasPrefix(v, majorMinor) {
			candidates = append(candidates, v)
		}
	}
	if len(candidates) == 0 {
		return "", false
	}

	sort.Slice(candidates, func(i, j int) bool {
		return Compare(candidates[i], candidates[j]) < 0
	})
	return candidates[len(candidates)-1], true
}

// MatchesPattern reports whether a version falls under a version pattern.
// Unlike FindMatchingVersion's raw prefix filter, the pattern must be followed
// by a '.' or '-' boundary, so "4.1" matches "4.1.0" but not "4.13.58".
func MatchesPattern(version, pattern string) bool {
	if version == pattern {
		return true
	}
	return strings.HasPrefix(version, pattern+".") || strings.HasPrefix(version, pattern+"-")
}

// Sort orders a slice of version strings ascending in place using Compare.
func Sort(versions []string) {
	sort.Slice(versions, func(i, j int) bool {
		return Compare(versions[i], versions[j]) < 0
	})
}
