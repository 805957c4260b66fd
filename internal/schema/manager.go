package schema

import "golang.org/x/mod/semver"

// compareVersions orders two semver strings. Stored versions omit the "v"
// prefix x/mod/semver expects.
func compareVersions(a, b string) int {
	return semver.Compare("v"+a, "v"+b)
}

// IsValidVersion reports whether s is a parseable semantic version.
func IsValidVersion(s string) bool {
	return semver.IsValid("v" + s)
}

// LatestStable returns the highest-semver version with status stable.
// A schema with no stable version is a normal condition: callers must handle
// the false return, not assume a stable version always exists.
func LatestStable(s *Schema) (Version, bool) {
	return latestWhere(s, func(v Version) bool { return v.Status == StatusStable })
}

// Latest returns the highest-semver version regardless of status.
func Latest(s *Schema) (Version, bool) {
	return latestWhere(s, func(Version) bool { return true })
}

func latestWhere(s *Schema, keep func(Version) bool) (Version, bool) {
	var best Version
	found := false
	for _, v := range s.Versions {
		if !keep(v) {
			continue
		}
		if !found || compareVersions(v.Version, best.Version) > 0 {
			best = v
			found = true
		}
	}
	return best, found
}

// UpsertVersion replaces the entry matching v.Version in place, or appends v
// when the version string is new. Reports whether an existing entry was
// replaced.
func UpsertVersion(s *Schema, v Version) bool {
	for i := range s.Versions {
		if s.Versions[i].Version == v.Version {
			s.Versions[i] = v
			return true
		}
	}
	s.Versions = append(s.Versions, v)
	return false
}

// FindVersion returns the entry matching version, if present.
func FindVersion(s *Schema, version string) (Version, bool) {
	for _, v := range s.Versions {
		if v.Version == version {
			return v, true
		}
	}
	return Version{}, false
}
