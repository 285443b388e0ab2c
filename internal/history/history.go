// Package history extracts structured snapshots of git revision ranges for
// the shiplog CLI: commit metadata, per-file insertion/deletion counts, and
// per-file unified diff text.
//
// The central operation is Extract, which resolves a (from, to] range and
// returns a ChangeSet:
//
//	repo, err := history.Open(".")
//	cs, err := repo.Extract(ctx, "v1.2.0", "HEAD")
//
// Unresolvable refs and unreadable repositories are hard errors. Per-file
// diff retrieval is best-effort: a file whose diff cannot be produced keeps
// its position with empty diff text, and the failure is recorded in
// ChangeSet.Warnings.
//
// Two soft lookups support defaulting of missing inputs:
//
//	repo.LatestVersionTag() // highest semantic-version tag, ok=false if none
//	repo.CurrentBranch()    // checked-out branch, "main" when detached
package history

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	fdiff "github.com/go-git/go-git/v5/plumbing/format/diff"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// Repo is a read-only handle on a git repository. It may be reused across
// sequential extractions but is not designed for concurrent use.
type Repo struct {
	repo *git.Repository
}

// Open opens the repository containing path, detecting the .git directory
// from any worktree subdirectory.
func Open(path string) (*Repo, error) {
	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("opening repository at %s: %w", path, err)
	}
	return &Repo{repo: repo}, nil
}

// Extract builds the ChangeSet for the range (fromRef, toRef]: commits
// reachable from toRef but not from fromRef, plus the file-level diff
// between the two trees. An empty fromRef means the whole history up to
// toRef, diffed against the empty tree.
func (r *Repo) Extract(ctx context.Context, fromRef, toRef string) (*ChangeSet, error) {
	to, err := r.resolveCommit(toRef)
	if err != nil {
		return nil, err
	}

	var from *object.Commit
	if fromRef != "" {
		from, err = r.resolveCommit(fromRef)
		if err != nil {
			return nil, err
		}
	}

	commits, err := r.logBetween(ctx, from, to)
	if err != nil {
		return nil, err
	}

	files, warnings, err := r.diffBetween(ctx, from, to)
	if err != nil {
		return nil, err
	}

	cs := &ChangeSet{
		Commits:  commits,
		Files:    files,
		FromRef:  fromRef,
		ToRef:    toRef,
		Warnings: warnings,
	}
	for _, f := range files {
		cs.TotalInsertions += f.Insertions
		cs.TotalDeletions += f.Deletions
	}
	return cs, nil
}

// logBetween walks commits reachable from to, stopping at anything reachable
// from from. The walker's order (newest first, depth-first through merge
// parents) is preserved as returned.
func (r *Repo) logBetween(ctx context.Context, from, to *object.Commit) ([]Commit, error) {
	exclude := make(map[plumbing.Hash]bool)
	if from != nil {
		iter := object.NewCommitPreorderIter(from, nil, nil)
		err := iter.ForEach(func(c *object.Commit) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			exclude[c.Hash] = true
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walking history of %s: %w", from.Hash, err)
		}
	}

	var commits []Commit
	iter := object.NewCommitPreorderIter(to, exclude, nil)
	err := iter.ForEach(func(c *object.Commit) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		commits = append(commits, newCommit(c))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking history of %s: %w", to.Hash, err)
	}
	return commits, nil
}

// diffBetween diffs the trees of from and to, one FileChange per changed
// path in tree order. Files are processed sequentially so warning order
// stays stable. A nil from diffs against the empty tree.
func (r *Repo) diffBetween(ctx context.Context, from, to *object.Commit) ([]FileChange, []string, error) {
	toTree, err := to.Tree()
	if err != nil {
		return nil, nil, fmt.Errorf("reading tree of %s: %w", to.Hash, err)
	}

	var fromTree *object.Tree
	if from != nil {
		fromTree, err = from.Tree()
		if err != nil {
			return nil, nil, fmt.Errorf("reading tree of %s: %w", from.Hash, err)
		}
	}

	changes, err := object.DiffTree(fromTree, toTree)
	if err != nil {
		return nil, nil, fmt.Errorf("diffing trees: %w", err)
	}

	var files []FileChange
	var warnings []string
	for _, change := range changes {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}

		name := change.To.Name
		if name == "" {
			name = change.From.Name
		}

		patch, err := change.Patch()
		if err != nil {
			// Keep the file's place in the set; the pipeline works from
			// counts alone when diff text is missing.
			files = append(files, FileChange{Path: name})
			warnings = append(warnings, fmt.Sprintf("diff unavailable for %s: %v", name, err))
			continue
		}

		fc := FileChange{Path: name, DiffText: patch.String()}
		for _, fp := range patch.FilePatches() {
			for _, chunk := range fp.Chunks() {
				switch chunk.Type() {
				case fdiff.Add:
					fc.Insertions += countLines(chunk.Content())
				case fdiff.Delete:
					fc.Deletions += countLines(chunk.Content())
				}
			}
		}
		files = append(files, fc)
	}
	return files, warnings, nil
}

// newCommit maps a git commit to the snapshot model. Message keeps the
// subject line only; When is the author timestamp.
func newCommit(c *object.Commit) Commit {
	message := c.Message
	if idx := strings.IndexByte(message, '\n'); idx != -1 {
		message = message[:idx]
	}

	hash := c.Hash.String()
	return Commit{
		Hash:        hash,
		Short:       hash[:8],
		Message:     strings.TrimSpace(message),
		AuthorName:  c.Author.Name,
		AuthorEmail: c.Author.Email,
		When:        c.Author.When,
	}
}

// countLines counts lines in chunk content, where a trailing newline does
// not open a new line.
func countLines(s string) int {
	if s == "" {
		return 0
	}
	n := strings.Count(s, "\n")
	if !strings.HasSuffix(s, "\n") {
		n++
	}
	return n
}
