// Package tracker resolves ticket and pull request references found in
// decision text.
package tracker

import (
	"fmt"
	"regexp"
	"strconv"
)

var (
	jiraPattern    = regexp.MustCompile(`\b([A-Z][A-Z0-9]+-\d+)\b`)
	fullPRPattern  = regexp.MustCompile(`https?://github\.com/([^/\s]+)/([^/\s]+)/pull/(\d+)`)
	shortPRPattern = regexp.MustCompile(`(?:^|[^\w])#(\d+)\b`)
)

// ExtractJiraKeys returns issue keys in first-seen order without duplicates.
func ExtractJiraKeys(text string) []string {
	keys := []string{}
	seen := map[string]struct{}{}
	for _, m := range jiraPattern.FindAllStringSubmatch(text, -1) {
		if _, dup := seen[m[1]]; dup {
			continue
		}
		seen[m[1]] = struct{}{}
		keys = append(keys, m[1])
	}
	return keys
}

// PRRef points at a pull request. Owner and Repo are empty for the short
// "#123" form and default to the workspace's repository.
type PRRef struct {
	Owner  string
	Repo   string
	Number int
	URL    string
}

func (r PRRef) Key() string {
	if r.Owner == "" {
		return fmt.Sprintf("#%d", r.Number)
	}
	return fmt.Sprintf("%s/%s#%d", r.Owner, r.Repo, r.Number)
}

// ExtractPRRefs finds full GitHub PR URLs first, then short "#n" forms.
func ExtractPRRefs(text string) []PRRef {
	refs := []PRRef{}
	seen := map[string]struct{}{}
	add := func(ref PRRef) {
		if _, dup := seen[ref.Key()]; dup {
			return
		}
		seen[ref.Key()] = struct{}{}
		refs = append(refs, ref)
	}

	for _, m := range fullPRPattern.FindAllStringSubmatch(text, -1) {
		n, err := strconv.Atoi(m[3])
		if err != nil {
			continue
		}
		add(PRRef{Owner: m[1], Repo: m[2], Number: n, URL: m[0]})
	}
	for _, m := range shortPRPattern.FindAllStringSubmatch(text, -1) {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		add(PRRef{Number: n})
	}
	return refs
}

// IsPullRequestURL reports whether url is a GitHub PR link.
func IsPullRequestURL(url string) bool {
	return fullPRPattern.MatchString(url)
}
