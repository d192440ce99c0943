package resultview

import (
	"sort"

	"yc/internal/domain"
)

// View holds the ranked commands of the current search and a selection
// cursor. The cursor always points inside the list unless the list is empty.
// A View is owned by the foreground and is not safe for concurrent use.
type View struct {
	commands []domain.Command
	selected int
}

func New() *View { return &View{} }

// Update appends cmds and re-ranks the whole list.
func (v *View) Update(cmds []domain.Command) {
	v.commands = append(v.commands, cmds...)
	v.rank()
}

// Replace discards the current list in favour of cmds.
func (v *View) Replace(cmds []domain.Command) {
	v.commands = append([]domain.Command(nil), cmds...)
	v.rank()
}

func (v *View) Clear() {
	v.commands = nil
	v.selected = 0
}

// rank sorts by descending score, keeping arrival order on ties.
func (v *View) rank() {
	sort.SliceStable(v.commands, func(i, j int) bool {
		return v.commands[i].Score() > v.commands[j].Score()
	})
	v.clamp()
}

func (v *View) clamp() {
	switch {
	case len(v.commands) == 0:
		v.selected = 0
	case v.selected >= len(v.commands):
		v.selected = len(v.commands) - 1
	case v.selected < 0:
		v.selected = 0
	}
}

// SelectNext moves the cursor n places forward, wrapping around.
func (v *View) SelectNext(n int) {
	l := len(v.commands)
	if l == 0 {
		return
	}
	v.selected = ((v.selected+n)%l + l) % l
}

// SelectPrevious moves the cursor n places back, wrapping around.
func (v *View) SelectPrevious(n int) { v.SelectNext(-n) }

// Selected returns the cursor position; it is meaningless when Len is zero.
func (v *View) Selected() int { return v.selected }

// Selection returns the command under the cursor.
func (v *View) Selection() (domain.Command, bool) {
	if len(v.commands) == 0 {
		return nil, false
	}
	return v.commands[v.selected], true
}

func (v *View) Len() int { return len(v.commands) }

// Commands returns the ranked list. Callers must not modify it.
func (v *View) Commands() []domain.Command { return v.commands }

// Window returns the [start, end) range of at most height rows to display,
// keeping the selection roughly centred.
func (v *View) Window(height int) (int, int) {
	n := len(v.commands)
	if height <= 0 || n == 0 {
		return 0, 0
	}
	half := height / 2
	switch {
	case v.selected < half:
		return 0, min(height, n)
	case v.selected+half >= n:
		return max(0, n-height), n
	default:
		start := max(0, v.selected-half)
		return start, min(start+height, n)
	}
}
