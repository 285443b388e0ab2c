package history

import "time"

// Commit is one commit in an extracted range. Identity is the full Hash;
// Message holds the subject line only.
type Commit struct {
	Hash        string
	Short       string
	Message     string
	AuthorName  string
	AuthorEmail string
	When        time.Time
}

// FileChange is one changed file in the range. DiffText holds the unified
// diff for the file across the whole range; it is empty when retrieval
// failed, in which case the counts still stand.
type FileChange struct {
	Path       string
	Insertions int
	Deletions  int
	DiffText   string
}

// ChangeSet is the structured snapshot of a revision range. Commits and
// Files keep the order the repository returned them in. A ChangeSet with
// zero commits is a valid result meaning there is nothing to summarize.
//
// A ChangeSet belongs to the extraction that produced it and is never shared
// across concurrent runs.
type ChangeSet struct {
	Commits         []Commit
	Files           []FileChange
	TotalInsertions int
	TotalDeletions  int
	FromRef         string
	ToRef           string

	// Warnings lists per-file degradations hit during extraction, in the
	// order encountered. They are advisory; the ChangeSet is still usable.
	Warnings []string
}

// IsEmpty reports whether the range contained no commits.
func (cs *ChangeSet) IsEmpty() bool {
	return len(cs.Commits) == 0
}
