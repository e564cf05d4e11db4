// Package github provides typed views over the GitHub REST v3 resources the
// descriptor pipeline reads: repository, owner, license, branch head commit
// and tags.
//
// Each response is validated against a narrow JSON Schema when it is fetched,
// so a missing or mistyped key fails the lookup itself rather than surfacing
// later as an empty descriptor field.
package github
