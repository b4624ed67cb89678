// Package tree builds the navigable Repo → Branch → (Worktrees, Sessions)
// hierarchy from a scan snapshot and applies the live text filter to it.
// Facts never change after Build; only UI-transient fields (visibility,
// selection, chosen worktree, worktree state after a pause or resume)
// mutate in place.
package tree

import (
	"sort"
	"strings"

	"github.com/dimitarvdimitrov/ws/internal/snapshot"
)

// WorkState is a worktree's position in the clean/dirty/paused-work machine.
// The initial value comes from the scan; the picker only ever transitions it
// through a confirmed pause (Dirty → PausedWork) or a pre-launch resume
// (PausedWork → Clean).
type WorkState int

const (
	StateClean WorkState = iota
	StateDirty
	StatePausedWork
)

func (s WorkState) String() string {
	switch s {
	case StateDirty:
		return "dirty"
	case StatePausedWork:
		return "paused"
	default:
		return "clean"
	}
}

type Tree struct {
	Repos []*RepoNode
}

type RepoNode struct {
	Path     string
	Name     string
	Branches []*BranchNode
	Visible  bool
}

// BranchNode groups the worktrees checked out on a branch with the sessions
// recorded against it. A branch with Orphaned set is the synthetic bucket
// for sessions whose branch no longer exists in the repo.
type BranchNode struct {
	Repo      *RepoNode
	Name      string
	Orphaned  bool
	Worktrees []*WorktreeNode
	Sessions  []*SessionNode
	Visible   bool

	chosen int
}

type WorktreeNode struct {
	Path    string
	State   WorkState
	Visible bool
}

type SessionNode struct {
	snapshot.Session
	Selected bool
	Visible  bool
}

const (
	orphanLabel   = "(orphaned sessions)"
	detachedLabel = "(detached)"
)

// Label is the branch's display name.
func (b *BranchNode) Label() string {
	if b.Orphaned {
		return orphanLabel
	}
	if b.Name == "" {
		return detachedLabel
	}
	return b.Name
}

// ChosenWorktree returns the worktree the left/right cycle currently points
// at, or nil for a branch with no worktrees.
func (b *BranchNode) ChosenWorktree() *WorktreeNode {
	if len(b.Worktrees) == 0 {
		return nil
	}
	return b.Worktrees[b.chosen]
}

// ChosenIndex returns the chosen-worktree cursor. It is only meaningful when
// the branch has worktrees.
func (b *BranchNode) ChosenIndex() int {
	return b.chosen
}

// Cycle moves the chosen-worktree cursor by delta with wraparound. It is a
// no-op for branches with fewer than two worktrees.
func (b *BranchNode) Cycle(delta int) {
	n := len(b.Worktrees)
	if n < 2 {
		return
	}
	b.chosen = ((b.chosen+delta)%n + n) % n
}

// Build constructs the tree for a snapshot. It is deterministic: repos sort
// by display name (ties by path), branches by most-recent session descending
// with sessionless branches after (by name, ties by name then orphan bucket
// first), sessions by timestamp descending (ties by id). All nodes start
// visible and unselected.
func Build(snap *snapshot.Snapshot) *Tree {
	t := &Tree{}

	repoByPath := make(map[string]*RepoNode)
	branchByName := make(map[*RepoNode]map[string]*BranchNode)
	// Worktree paths map back to their repo so sessions recorded inside a
	// linked worktree still find the owning repository.
	repoByWorktree := make(map[string]*RepoNode)

	for _, r := range snap.Repos {
		repo := &RepoNode{Path: r.Path, Name: r.Name, Visible: true}
		t.Repos = append(t.Repos, repo)
		repoByPath[r.Path] = repo
		branchByName[repo] = make(map[string]*BranchNode)

		for _, wt := range r.Worktrees {
			repoByWorktree[wt.Path] = repo
			branch := ensureBranch(repo, branchByName[repo], wt.Branch, false)
			branch.Worktrees = append(branch.Worktrees, &WorktreeNode{
				Path:    wt.Path,
				State:   worktreeState(wt),
				Visible: true,
			})
		}
	}

	for _, sess := range snap.Sessions {
		repo := ownerRepo(sess.ProjectPath, repoByPath, repoByWorktree)
		if repo == nil {
			continue
		}
		branch, ok := branchByName[repo][sess.Branch]
		if !ok || sess.Branch == "" {
			branch = ensureBranch(repo, branchByName[repo], "", true)
		}
		branch.Sessions = append(branch.Sessions, &SessionNode{Session: sess, Visible: true})
	}

	sortTree(t)
	return t
}

// worktreeState derives the initial state from the scan flags. Dirty wins
// when both are set: uncommitted changes on top of a paused-work commit need
// pausing again before launch.
func worktreeState(wt snapshot.Worktree) WorkState {
	switch {
	case wt.Dirty:
		return StateDirty
	case wt.Paused:
		return StatePausedWork
	default:
		return StateClean
	}
}

// orphanKey keys the synthetic orphan bucket in the branch map. NUL cannot
// appear in a ref name, so it never collides with a real branch — in
// particular not with the empty name detached-HEAD worktrees report.
const orphanKey = "\x00orphans"

func ensureBranch(repo *RepoNode, byName map[string]*BranchNode, name string, orphaned bool) *BranchNode {
	key := name
	if orphaned {
		key = orphanKey
	}
	if b, ok := byName[key]; ok {
		return b
	}
	b := &BranchNode{Repo: repo, Name: name, Orphaned: orphaned, Visible: true}
	byName[key] = b
	repo.Branches = append(repo.Branches, b)
	return b
}

// ownerRepo resolves a session's project path to a scanned repo: an exact
// repo or worktree path first, then the longest repo prefix. Sessions with
// no owner are dropped from the tree.
func ownerRepo(projectPath string, byPath, byWorktree map[string]*RepoNode) *RepoNode {
	if r, ok := byPath[projectPath]; ok {
		return r
	}
	if r, ok := byWorktree[projectPath]; ok {
		return r
	}
	var best *RepoNode
	bestLen := -1
	for path, r := range byPath {
		if strings.HasPrefix(projectPath, path+"/") && len(path) > bestLen {
			best, bestLen = r, len(path)
		}
	}
	return best
}

func sortTree(t *Tree) {
	sort.SliceStable(t.Repos, func(i, j int) bool {
		if t.Repos[i].Name != t.Repos[j].Name {
			return t.Repos[i].Name < t.Repos[j].Name
		}
		return t.Repos[i].Path < t.Repos[j].Path
	})

	for _, repo := range t.Repos {
		for _, branch := range repo.Branches {
			sort.SliceStable(branch.Sessions, func(i, j int) bool {
				si, sj := branch.Sessions[i], branch.Sessions[j]
				if !si.Modified.Equal(sj.Modified) {
					return si.Modified.After(sj.Modified)
				}
				return si.ID < sj.ID
			})
			sort.SliceStable(branch.Worktrees, func(i, j int) bool {
				return branch.Worktrees[i].Path < branch.Worktrees[j].Path
			})
		}
		sort.SliceStable(repo.Branches, func(i, j int) bool {
			bi, bj := repo.Branches[i], repo.Branches[j]
			iHas, jHas := len(bi.Sessions) > 0, len(bj.Sessions) > 0
			if iHas != jHas {
				return iHas
			}
			if iHas {
				ti, tj := bi.Sessions[0].Modified, bj.Sessions[0].Modified
				if !ti.Equal(tj) {
					return ti.After(tj)
				}
			}
			return bi.Name < bj.Name
		})
	}
}
