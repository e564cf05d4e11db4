package github

// Repository is the subset of GET /repos/{owner}/{repo} the pipeline reads.
type Repository struct {
	Name          string   `json:"name"`
	FullName      string   `json:"full_name"`
	Description   *string  `json:"description"`
	HTMLURL       string   `json:"html_url"`
	DefaultBranch string   `json:"default_branch"`
	BranchesURL   string   `json:"branches_url"`
	TagsURL       string   `json:"tags_url"`
	Owner         OwnerRef `json:"owner"`
	License       *License `json:"license"`
}

// DescriptionOr returns the description, or fallback when GitHub reports none.
func (r *Repository) DescriptionOr(fallback string) string {
	if r.Description == nil || *r.Description == "" {
		return fallback
	}
	return *r.Description
}

// OwnerRef is the owner stub embedded in a repository.
type OwnerRef struct {
	Login string `json:"login"`
	URL   string `json:"url"`
}

// Owner is GET /users/{login}.
type Owner struct {
	Login   string  `json:"login"`
	Name    *string `json:"name"`
	HTMLURL string  `json:"html_url"`
}

// DisplayName is the profile name, or the login for accounts without one.
func (o *Owner) DisplayName() string {
	if o.Name == nil || *o.Name == "" {
		return o.Login
	}
	return *o.Name
}

// License is GET /licenses/{key}; the repository embeds the same shape
// without html_url.
type License struct {
	Key     string `json:"key"`
	Name    string `json:"name"`
	SPDXID  string `json:"spdx_id"`
	URL     string `json:"url"`
	HTMLURL string `json:"html_url"`
}

// Branch is GET /repos/{owner}/{repo}/branches/{branch}.
type Branch struct {
	Name   string       `json:"name"`
	Commit BranchCommit `json:"commit"`
}

// BranchCommit is the head commit of a branch.
type BranchCommit struct {
	SHA    string     `json:"sha"`
	Commit CommitData `json:"commit"`
}

// CommitData carries the git-level commit fields.
type CommitData struct {
	Message string `json:"message"`
}

// Tag is one entry of GET /repos/{owner}/{repo}/tags.
type Tag struct {
	Name string `json:"name"`
}
