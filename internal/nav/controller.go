// Package nav owns the interactive state over a built tree: the cursor, the
// per-branch worktree choice, session selection, and the confirm step that
// turns selections into a launch plan. All git side effects go through the
// WorktreeOps interface so the controller stays testable.
package nav

import (
	"fmt"
	"path/filepath"

	"github.com/dimitarvdimitrov/ws/internal/launch"
	"github.com/dimitarvdimitrov/ws/internal/tree"
)

// WorktreeOps are the two git mutations the worktree state machine needs.
// Both block; failures leave the worktree's recorded state untouched.
type WorktreeOps interface {
	PauseWork(path string) error
	ResumeWork(path string) error
}

type Controller struct {
	tree   *tree.Tree
	ops    WorktreeOps
	query  string
	cursor int

	// Dirty worktrees the user dismissed from the pending plan. Cleared
	// once a plan is emitted.
	dismissed map[string]bool
}

func New(t *tree.Tree, ops WorktreeOps, initialFilter string) *Controller {
	c := &Controller{
		tree:      t,
		ops:       ops,
		dismissed: make(map[string]bool),
	}
	c.SetFilter(initialFilter)
	return c
}

// Rows returns the flattened visible rows the cursor moves over.
func (c *Controller) Rows() []tree.Row {
	return c.tree.VisibleRows()
}

func (c *Controller) Cursor() int {
	return c.cursor
}

// CurrentRow returns the row under the cursor, if any row is visible.
func (c *Controller) CurrentRow() (tree.Row, bool) {
	rows := c.Rows()
	if c.cursor < 0 || c.cursor >= len(rows) {
		return tree.Row{}, false
	}
	return rows[c.cursor], true
}

// MoveUp and MoveDown clamp at the ends; rows only contain visible nodes,
// so the cursor can never land on a hidden one.
func (c *Controller) MoveUp() {
	if c.cursor > 0 {
		c.cursor--
	}
}

func (c *Controller) MoveDown() {
	if c.cursor < len(c.Rows())-1 {
		c.cursor++
	}
}

// CycleWorktree changes the active worktree of the branch under the cursor
// (a session row cycles its parent branch). Wraps around; no-op elsewhere
// or for branches with fewer than two worktrees.
func (c *Controller) CycleWorktree(delta int) {
	row, ok := c.CurrentRow()
	if !ok || row.Branch == nil {
		return
	}
	row.Branch.Cycle(delta)
}

// ToggleSession flips the selection flag of the session under the cursor.
// The cursor stays put.
func (c *Controller) ToggleSession() {
	row, ok := c.CurrentRow()
	if !ok || row.Kind != tree.RowSession {
		return
	}
	row.Session.Selected = !row.Session.Selected
}

func (c *Controller) Filter() string {
	return c.query
}

// SetFilter re-applies visibility for the query and clamps the cursor back
// into the visible range.
func (c *Controller) SetFilter(query string) {
	c.query = query
	c.tree.ApplyFilter(query)
	c.clampCursor()
}

func (c *Controller) ClearFilter() {
	c.SetFilter("")
}

func (c *Controller) clampCursor() {
	n := len(c.Rows())
	if n == 0 {
		c.cursor = 0
		return
	}
	if c.cursor >= n {
		c.cursor = n - 1
	}
	if c.cursor < 0 {
		c.cursor = 0
	}
}

// EntryError reports a per-worktree failure during confirm. One failing
// worktree never aborts the others.
type EntryError struct {
	WorktreePath string
	Err          error
}

func (e EntryError) Error() string {
	return fmt.Sprintf("%s: %v", filepath.Base(e.WorktreePath), e.Err)
}

// ConfirmationRequest lists the dirty worktrees standing between the current
// selection and a launch plan. The caller resolves each via PauseWorktree or
// DismissDirty and confirms again.
type ConfirmationRequest struct {
	DirtyWorktrees []string
}

// ConfirmResult carries exactly one of: a plan (possibly empty when nothing
// was selected), or a confirmation request. Errors hold per-entry failures
// that dropped entries from an emitted plan.
type ConfirmResult struct {
	Plan         *launch.Plan
	Confirmation *ConfirmationRequest
	Errors       []EntryError
}

// Confirm assembles the launch plan from every branch with at least one
// selected session and that branch's chosen worktree. Dirty worktrees block
// with a ConfirmationRequest before any side effect runs. PausedWork
// worktrees are rewound to Clean as the plan is built; a failed rewind drops
// only that entry. With nothing selected the result is an explicit empty
// plan.
func (c *Controller) Confirm() ConfirmResult {
	type candidate struct {
		branch   *tree.BranchNode
		worktree *tree.WorktreeNode
		sessions []launch.Session
	}

	var candidates []candidate
	var errs []EntryError
	selectedAny := false

	for _, repo := range c.tree.Repos {
		for _, branch := range repo.Branches {
			var selected []launch.Session
			for _, sess := range branch.Sessions {
				if sess.Selected {
					selected = append(selected, launch.Session{
						ID:          sess.ID,
						Title:       sess.Title(),
						Provider:    sess.Provider,
						ProjectPath: sess.ProjectPath,
					})
				}
			}
			if len(selected) == 0 {
				continue
			}
			selectedAny = true

			wt := branch.ChosenWorktree()
			if wt == nil {
				errs = append(errs, EntryError{
					WorktreePath: "",
					Err:          fmt.Errorf("branch %q has no worktree to launch into", branch.Label()),
				})
				continue
			}
			if c.dismissed[wt.Path] {
				continue
			}
			candidates = append(candidates, candidate{branch: branch, worktree: wt, sessions: selected})
		}
	}

	if !selectedAny {
		return ConfirmResult{Plan: &launch.Plan{}}
	}

	var dirty []string
	for _, cand := range candidates {
		if cand.worktree.State == tree.StateDirty {
			dirty = append(dirty, cand.worktree.Path)
		}
	}
	if len(dirty) > 0 {
		return ConfirmResult{Confirmation: &ConfirmationRequest{DirtyWorktrees: dirty}}
	}

	plan := &launch.Plan{}
	for _, cand := range candidates {
		if cand.worktree.State == tree.StatePausedWork {
			if err := c.ops.ResumeWork(cand.worktree.Path); err != nil {
				errs = append(errs, EntryError{WorktreePath: cand.worktree.Path, Err: err})
				continue
			}
			cand.worktree.State = tree.StateClean
		}
		plan.Entries = append(plan.Entries, launch.Entry{
			WorktreePath: cand.worktree.Path,
			Branch:       cand.branch.Name,
			Sessions:     cand.sessions,
		})
	}

	c.dismissed = make(map[string]bool)
	return ConfirmResult{Plan: plan, Errors: errs}
}

// PauseWorktree runs the confirmed Dirty → PausedWork transition for the
// worktree at path. On failure the state stays Dirty.
func (c *Controller) PauseWorktree(path string) error {
	wt := c.findWorktree(path)
	if wt == nil {
		return fmt.Errorf("unknown worktree %s", path)
	}
	if wt.State != tree.StateDirty {
		return fmt.Errorf("worktree %s is not dirty", filepath.Base(path))
	}
	if err := c.ops.PauseWork(path); err != nil {
		return err
	}
	wt.State = tree.StatePausedWork
	return nil
}

// DismissDirty drops the dirty worktree at path from the pending plan
// instead of pausing it. It is never launched dirty.
func (c *Controller) DismissDirty(path string) {
	c.dismissed[path] = true
}

// ClearDismissals forgets dismissals recorded for the pending plan. Called
// when the confirmation dialog is cancelled so the next confirm prompts for
// those worktrees again.
func (c *Controller) ClearDismissals() {
	c.dismissed = make(map[string]bool)
}

func (c *Controller) findWorktree(path string) *tree.WorktreeNode {
	for _, repo := range c.tree.Repos {
		for _, branch := range repo.Branches {
			for _, wt := range branch.Worktrees {
				if wt.Path == path {
					return wt
				}
			}
		}
	}
	return nil
}
