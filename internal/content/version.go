package content

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/mod/semver"
)

// InitialVersion is the version of a curriculum that has never been optimized.
const InitialVersion = "1.0"

// NextVersion bumps a "major.minor" decimal version by 0.1, carrying into
// the major component: "1.9" becomes "2.0".
func NextVersion(v string) (string, error) {
	major, minor, err := parseVersion(v)
	if err != nil {
		return "", err
	}
	tenths := major*10 + minor + 1
	return fmt.Sprintf("%d.%d", tenths/10, tenths%10), nil
}

// CompareVersions orders two curriculum versions, returning -1, 0 or +1.
// Invalid versions sort before valid ones.
func CompareVersions(a, b string) int {
	return semver.Compare(canonical(a), canonical(b))
}

// ValidVersion reports whether v is a "major.minor" decimal version.
func ValidVersion(v string) bool {
	_, _, err := parseVersion(v)
	return err == nil
}

func canonical(v string) string {
	return "v" + strings.TrimPrefix(v, "v")
}

func parseVersion(v string) (major, minor int, err error) {
	c := canonical(v)
	if !semver.IsValid(c) || semver.Prerelease(c) != "" || semver.Build(c) != "" {
		return 0, 0, fmt.Errorf("invalid curriculum version %q", v)
	}
	parts := strings.Split(strings.TrimPrefix(c, "v"), ".")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid curriculum version %q: want major.minor", v)
	}
	major, _ = strconv.Atoi(parts[0])
	minor, _ = strconv.Atoi(parts[1])
	if minor > 9 {
		return 0, 0, fmt.Errorf("invalid curriculum version %q: minor must be a single digit", v)
	}
	return major, minor, nil
}
