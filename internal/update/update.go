// Package update checks GitHub for a newer retromgr release.
package update

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/go-github/v68/github"
	"golang.org/x/oauth2"
)

// DefaultRepository is where retromgr releases are published.
const DefaultRepository = "zulandar/retromgr"

// Release is the latest published release.
type Release struct {
	Tag string
	URL string
}

// Result compares the running version with the latest release.
type Result struct {
	Current string
	Latest  Release
	Newer   bool
}

// Checker queries the releases of one repository.
type Checker struct {
	client *github.Client
	owner  string
	repo   string
}

// NewChecker returns a checker for "owner/name". A token raises the API
// rate limit but is not required for public repositories.
func NewChecker(ctx context.Context, repository, token string) (*Checker, error) {
	owner, repo, ok := strings.Cut(repository, "/")
	if !ok || owner == "" || repo == "" || strings.Contains(repo, "/") {
		return nil, fmt.Errorf("update: repository %q must be owner/name", repository)
	}
	var hc *http.Client
	if token != "" {
		hc = oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}))
	}
	return &Checker{client: github.NewClient(hc), owner: owner, repo: repo}, nil
}

// Check fetches the latest release and reports whether it is newer than
// current. Development builds are never considered up to date.
func (c *Checker) Check(ctx context.Context, current string) (Result, error) {
	rel, _, err := c.client.Repositories.GetLatestRelease(ctx, c.owner, c.repo)
	if err != nil {
		return Result{}, fmt.Errorf("update: latest release of %s/%s: %w", c.owner, c.repo, err)
	}
	res := Result{
		Current: current,
		Latest:  Release{Tag: rel.GetTagName(), URL: rel.GetHTMLURL()},
	}
	res.Newer = Newer(res.Latest.Tag, current)
	return res, nil
}

// Newer reports whether version tag a is greater than b. Tags are compared
// as dotted numbers with an optional leading "v"; anything that does not
// parse as such, like "dev", is older than every release.
func Newer(a, b string) bool {
	pa, okA := parse(a)
	pb, okB := parse(b)
	switch {
	case !okA:
		return false
	case !okB:
		return true
	}
	for i := range max(len(pa), len(pb)) {
		var x, y int
		if i < len(pa) {
			x = pa[i]
		}
		if i < len(pb) {
			y = pb[i]
		}
		if x != y {
			return x > y
		}
	}
	return false
}

func parse(v string) ([]int, bool) {
	v = strings.TrimPrefix(strings.TrimSpace(v), "v")
	if i := strings.IndexAny(v, "-+"); i >= 0 {
		v = v[:i]
	}
	if v == "" {
		return nil, false
	}
	parts := strings.Split(v, ".")
	out := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return nil, false
		}
		out[i] = n
	}
	return out, true
}
