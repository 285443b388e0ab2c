package history

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

func TestLatestVersionTag_SemverOrder(t *testing.T) {
	tr := newTestRepo(t)
	hash := tr.commit("feat: base", map[string]string{"a.txt": "one\n"})
	tr.tag("v1.0.0", hash)
	tr.tag("v1.9.0", hash)
	tr.tag("v1.10.0", hash)

	got, ok := tr.open().LatestVersionTag()
	if !ok {
		t.Fatal("expected a version tag")
	}
	// Semantic ordering, not lexicographic: 1.10.0 > 1.9.0.
	if got != "v1.10.0" {
		t.Errorf("LatestVersionTag() = %q, want v1.10.0", got)
	}
}

func TestLatestVersionTag_NoTags(t *testing.T) {
	tr := newTestRepo(t)
	tr.commit("feat: base", map[string]string{"a.txt": "one\n"})

	got, ok := tr.open().LatestVersionTag()
	if ok || got != "" {
		t.Errorf("LatestVersionTag() = (%q, %v), want (\"\", false)", got, ok)
	}
}

func TestLatestVersionTag_IgnoresNonVersionTags(t *testing.T) {
	tr := newTestRepo(t)
	hash := tr.commit("feat: base", map[string]string{"a.txt": "one\n"})
	tr.tag("release-latest", hash)
	tr.tag("nightly", hash)
	tr.tag("v0.1.0", hash)

	got, ok := tr.open().LatestVersionTag()
	if !ok || got != "v0.1.0" {
		t.Errorf("LatestVersionTag() = (%q, %v), want (v0.1.0, true)", got, ok)
	}
}

func TestLatestVersionTag_AnnotatedTags(t *testing.T) {
	tr := newTestRepo(t)
	first := tr.commit("feat: base", map[string]string{"a.txt": "one\n"})
	second := tr.commit("feat: more", map[string]string{"a.txt": "one\ntwo\n"})
	tr.annotatedTag("v1.0.0", first, "release v1.0.0")
	tr.annotatedTag("v1.1.0", second, "release v1.1.0")

	got, ok := tr.open().LatestVersionTag()
	if !ok || got != "v1.1.0" {
		t.Errorf("LatestVersionTag() = (%q, %v), want (v1.1.0, true)", got, ok)
	}
}

func TestCurrentBranch_AfterCommit(t *testing.T) {
	tr := newTestRepo(t)
	tr.commit("feat: base", map[string]string{"a.txt": "one\n"})

	// PlainInit names the initial branch master.
	if got := tr.open().CurrentBranch(); got != "master" {
		t.Errorf("CurrentBranch() = %q, want master", got)
	}
}

func TestCurrentBranch_NoCommits(t *testing.T) {
	tr := newTestRepo(t)

	if got := tr.open().CurrentBranch(); got != DefaultBranch {
		t.Errorf("CurrentBranch() = %q, want %q", got, DefaultBranch)
	}
}

func TestCurrentBranch_DetachedHead(t *testing.T) {
	tr := newTestRepo(t)
	hash := tr.commit("feat: base", map[string]string{"a.txt": "one\n"})
	tr.commit("feat: more", map[string]string{"a.txt": "one\ntwo\n"})

	w, err := tr.repo.Worktree()
	if err != nil {
		t.Fatalf("Worktree: %v", err)
	}
	if err := w.Checkout(&git.CheckoutOptions{Hash: plumbing.NewHash(hash)}); err != nil {
		t.Fatalf("Checkout: %v", err)
	}

	if got := tr.open().CurrentBranch(); got != DefaultBranch {
		t.Errorf("CurrentBranch() = %q, want %q", got, DefaultBranch)
	}
}

func TestPeelToCommit_RejectsNonCommit(t *testing.T) {
	tr := newTestRepo(t)
	tr.commit("feat: base", map[string]string{"a.txt": "one\n"})
	repo := tr.open()

	// A tree hash resolves but is neither a commit nor a tag.
	head, err := repo.repo.Head()
	if err != nil {
		t.Fatalf("Head: %v", err)
	}
	commit, err := repo.repo.CommitObject(head.Hash())
	if err != nil {
		t.Fatalf("CommitObject: %v", err)
	}

	if _, err := repo.peelToCommit(commit.TreeHash); err == nil {
		t.Error("expected error peeling a tree hash")
	}
}

func TestIsDirty_CleanWorktree(t *testing.T) {
	tr := newTestRepo(t)
	tr.commit("feat: base", map[string]string{"a.txt": "one\n"})

	if tr.open().IsDirty() {
		t.Error("IsDirty() = true for a clean worktree")
	}
}

func TestIsDirty_UncommittedChange(t *testing.T) {
	tr := newTestRepo(t)
	tr.commit("feat: base", map[string]string{"a.txt": "one\n"})

	if err := os.WriteFile(filepath.Join(tr.dir, "a.txt"), []byte("changed\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	if !tr.open().IsDirty() {
		t.Error("IsDirty() = false with uncommitted changes")
	}
}

func TestExtract_ContextCancelled(t *testing.T) {
	tr := newTestRepo(t)
	tr.commit("feat: base", map[string]string{"a.txt": "one\n"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := tr.open().Extract(ctx, "", "HEAD"); err == nil {
		t.Error("expected error from cancelled context")
	}
}
