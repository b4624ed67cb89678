// Package launch holds the output contract of a confirmed selection and
// turns it into opened Warp windows via launch configurations.
package launch

// Session is one session to resume inside an entry's worktree.
type Session struct {
	ID          string
	Title       string
	Provider    string
	ProjectPath string
}

// Entry pairs one worktree with the sessions to resume inside it. The
// controller guarantees the worktree is clean when the entry is emitted.
type Entry struct {
	WorktreePath string
	Branch       string
	Sessions     []Session
}

// SessionIDs lists the ids of the entry's sessions in order.
func (e Entry) SessionIDs() []string {
	ids := make([]string, 0, len(e.Sessions))
	for _, s := range e.Sessions {
		ids = append(ids, s.ID)
	}
	return ids
}

type Plan struct {
	Entries []Entry
}

// Empty reports whether there is nothing to launch.
func (p *Plan) Empty() bool {
	return len(p.Entries) == 0
}
