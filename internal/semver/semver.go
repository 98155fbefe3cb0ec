// Package semver turns git describe labels into four-part binary versions.
package semver

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
)

// Named groups a label pattern may define. LABEL is optional.
const (
	GroupMajor = "MAJOR"
	GroupMinor = "MINOR"
	GroupPatch = "PATCH"
	GroupLabel = "LABEL"
)

// DefaultPattern matches tags such as v1.0.4 and describe output such as
// v1.0.4-14-g2414721.
const DefaultPattern = `^v?(?P<MAJOR>\d+)\.(?P<MINOR>\d+)\.(?P<PATCH>\d+)(?:-(?P<LABEL>.+))?$`

var (
	ErrMissingGroup = errors.New("label pattern is missing a required group")

	defaultPattern = regexp.MustCompile(DefaultPattern)

	// commitsAhead extracts N from the N-gHASH suffix describe appends.
	commitsAhead = regexp.MustCompile(`^(\d+)-g[0-9a-fA-F]`)
)

// Version is a major.minor.patch.revision version where the revision counts
// commits made after the tag.
type Version struct {
	Major    uint32
	Minor    uint32
	Patch    uint32
	Revision uint32
}

// Default is used whenever a label cannot be parsed.
var Default = Version{Major: 1}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d.%d", v.Major, v.Minor, v.Patch, v.Revision)
}

// Compile parses a label pattern and checks that it captures MAJOR, MINOR
// and PATCH.
func Compile(expr string) (*regexp.Regexp, error) {
	if expr == "" {
		return defaultPattern, nil
	}

	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("compile label pattern: %w", err)
	}

	for _, group := range []string{GroupMajor, GroupMinor, GroupPatch} {
		if re.SubexpIndex(group) < 0 {
			return nil, fmt.Errorf("%w: %s", ErrMissingGroup, group)
		}
	}

	return re, nil
}

// Derive parses label with pattern, falling back to Default when the label
// does not match. A nil pattern means DefaultPattern. Derive never fails.
func Derive(label string, pattern *regexp.Regexp) Version {
	if pattern == nil {
		pattern = defaultPattern
	}

	match := pattern.FindStringSubmatchIndex(label)
	if match == nil {
		return Default
	}

	major, okMajor := component(label, pattern, match, GroupMajor)
	minor, okMinor := component(label, pattern, match, GroupMinor)
	patch, okPatch := component(label, pattern, match, GroupPatch)

	if !okMajor || !okMinor || !okPatch {
		return Default
	}

	v := Version{Major: major, Minor: minor, Patch: patch}

	if suffix, ok := group(label, pattern, match, GroupLabel); ok {
		v.Revision = revision(suffix)
	}

	return v
}

// revision reads the commits-ahead count from a describe suffix. Anything
// else, including counts too large for 32 bits, means zero.
func revision(suffix string) uint32 {
	m := commitsAhead.FindStringSubmatch(suffix)
	if m == nil {
		return 0
	}

	n, err := strconv.ParseUint(m[1], 10, 32)
	if err != nil {
		return 0
	}

	return uint32(n)
}

func component(label string, pattern *regexp.Regexp, match []int, name string) (uint32, bool) {
	s, ok := group(label, pattern, match, name)
	if !ok {
		return 0, false
	}

	n, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, false
	}

	return uint32(n), true
}

// group returns the text captured by a named group, and false when the
// group is not defined or did not take part in the match.
func group(label string, pattern *regexp.Regexp, match []int, name string) (string, bool) {
	i := pattern.SubexpIndex(name)
	if i < 0 || match[2*i] < 0 {
		return "", false
	}

	return label[match[2*i]:match[2*i+1]], true
}
