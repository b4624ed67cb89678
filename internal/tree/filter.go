package tree

import "strings"

// ApplyFilter recomputes every node's visibility for a case-insensitive
// substring query over repo names, branch names, and session summaries.
// Visibility propagates upward from a match; a direct repo or branch match
// exposes its descendants. Worktree rows follow their branch. Selection
// flags and chosen-worktree cursors are untouched.
func (t *Tree) ApplyFilter(query string) {
	q := strings.ToLower(query)
	all := q == ""

	for _, repo := range t.Repos {
		repoMatch := strings.Contains(strings.ToLower(repo.Name), q)
		repo.Visible = false

		for _, branch := range repo.Branches {
			branchMatch := !branch.Orphaned && strings.Contains(strings.ToLower(branch.Name), q)

			anySession := false
			for _, sess := range branch.Sessions {
				match := strings.Contains(strings.ToLower(sess.Title()), q)
				anySession = anySession || match
				sess.Visible = all || match || branchMatch || repoMatch
			}

			branch.Visible = all || branchMatch || repoMatch || anySession
			for _, wt := range branch.Worktrees {
				wt.Visible = branch.Visible
			}
			if branch.Visible {
				repo.Visible = true
			}
		}
	}
}

// RowKind tags a flattened tree row. Worktrees render inline on their
// branch row, so rows only exist for repos, branches, and sessions.
type RowKind int

const (
	RowRepo RowKind = iota
	RowBranch
	RowSession
)

type Row struct {
	Kind    RowKind
	Repo    *RepoNode
	Branch  *BranchNode
	Session *SessionNode
}

// VisibleRows flattens the tree depth-first, skipping invisible nodes. The
// result is what the cursor moves over.
func (t *Tree) VisibleRows() []Row {
	var rows []Row
	for _, repo := range t.Repos {
		if !repo.Visible {
			continue
		}
		rows = append(rows, Row{Kind: RowRepo, Repo: repo})
		for _, branch := range repo.Branches {
			if !branch.Visible {
				continue
			}
			rows = append(rows, Row{Kind: RowBranch, Repo: repo, Branch: branch})
			for _, sess := range branch.Sessions {
				if !sess.Visible {
					continue
				}
				rows = append(rows, Row{Kind: RowSession, Repo: repo, Branch: branch, Session: sess})
			}
		}
	}
	return rows
}
