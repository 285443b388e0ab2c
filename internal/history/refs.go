package history

import (
	"fmt"

	"github.com/Masterminds/semver/v3"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// DefaultBranch is reported when HEAD is detached or unreadable.
const DefaultBranch = "main"

// LatestVersionTag returns the tag with the highest semantic version and
// true, or ("", false) when no tag parses as a version. Lookup failures are
// soft and also report false; this never returns an error.
func (r *Repo) LatestVersionTag() (string, bool) {
	iter, err := r.repo.Tags()
	if err != nil {
		return "", false
	}
	defer iter.Close()

	var bestName string
	var best *semver.Version
	_ = iter.ForEach(func(ref *plumbing.Reference) error {
		name := ref.Name().Short()
		v, err := semver.NewVersion(name)
		if err != nil {
			// Not a version tag; skip.
			return nil
		}
		if best == nil || v.GreaterThan(best) {
			best = v
			bestName = name
		}
		return nil
	})

	if best == nil {
		return "", false
	}
	return bestName, true
}

// CurrentBranch returns the checked-out branch name, or DefaultBranch when
// HEAD is detached or unreadable. This never returns an error.
func (r *Repo) CurrentBranch() string {
	head, err := r.repo.Head()
	if err != nil {
		return DefaultBranch
	}
	if !head.Name().IsBranch() {
		return DefaultBranch
	}
	return head.Name().Short()
}

// IsDirty reports whether the worktree has uncommitted changes. Bare
// repositories and status failures report false.
func (r *Repo) IsDirty() bool {
	wt, err := r.repo.Worktree()
	if err != nil {
		return false
	}
	status, err := wt.Status()
	if err != nil {
		return false
	}
	return !status.IsClean()
}

// resolveCommit resolves a revision (tag, branch, hash, HEAD) to its commit.
func (r *Repo) resolveCommit(rev string) (*object.Commit, error) {
	h, err := r.repo.ResolveRevision(plumbing.Revision(rev))
	if err != nil {
		return nil, fmt.Errorf("unknown revision %q: %w", rev, err)
	}
	return r.peelToCommit(*h)
}

// peelToCommit follows annotated tag objects until a commit is reached.
func (r *Repo) peelToCommit(h plumbing.Hash) (*object.Commit, error) {
	for {
		if commit, err := r.repo.CommitObject(h); err == nil {
			return commit, nil
		}
		tag, err := r.repo.TagObject(h)
		if err != nil {
			return nil, fmt.Errorf("object %s is not a commit", h)
		}
		h = tag.Target
	}
}
