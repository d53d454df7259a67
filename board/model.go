package board

import "time"

// Tree is everything one owner can see: their boards and all descendants.
type Tree struct {
	OwnerID string  `json:"ownerId"`
	Boards  []Board `json:"boards"`
}

type Board struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"ownerId"`
	Name      string    `json:"name"`
	Index     int       `json:"index"`
	Current   bool      `json:"current"`
	Columns   []Column  `json:"columns"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Column struct {
	ID        string    `json:"id"`
	BoardID   string    `json:"boardId"`
	Name      string    `json:"name"`
	Index     int       `json:"index"`
	Tasks     []Task    `json:"tasks"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Task struct {
	ID        string    `json:"id"`
	ColumnID  string    `json:"columnId"`
	Name      string    `json:"name"`
	Completed bool      `json:"completed"`
	Index     int       `json:"index"`
	Subtasks  []Subtask `json:"subtasks"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Subtask struct {
	ID        string    `json:"id"`
	TaskID    string    `json:"taskId"`
	Name      string    `json:"name"`
	Completed bool      `json:"completed"`
	Index     int       `json:"index"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Name length limits, counted in runes after normalization.
const (
	MaxBoardNameLength   = 20
	MaxColumnNameLength  = 30
	MaxTaskNameLength    = 50
	MaxSubtaskNameLength = 30
)

// Clone returns a deep copy of the tree. Empty child slices stay non-nil so
// JSON output is stable.
func (t Tree) Clone() Tree {
	out := Tree{OwnerID: t.OwnerID, Boards: make([]Board, len(t.Boards))}
	for i, b := range t.Boards {
		out.Boards[i] = b.clone()
	}
	return out
}

func (b Board) clone() Board {
	cols := make([]Column, len(b.Columns))
	for i, c := range b.Columns {
		cols[i] = c.clone()
	}
	b.Columns = cols
	return b
}

func (c Column) clone() Column {
	tasks := make([]Task, len(c.Tasks))
	for i, t := range c.Tasks {
		tasks[i] = t.clone()
	}
	c.Tasks = tasks
	return c
}

func (t Task) clone() Task {
	subs := make([]Subtask, len(t.Subtasks))
	copy(subs, t.Subtasks)
	t.Subtasks = subs
	return t
}

// CurrentBoard returns the owner's current board, if any.
func (t Tree) CurrentBoard() (Board, bool) {
	for _, b := range t.Boards {
		if b.Current {
			return b, true
		}
	}
	return Board{}, false
}

// WithoutTimestamps returns a copy with every timestamp zeroed. Two trees that
// differ only in when rows were written compare equal after this.
func (t Tree) WithoutTimestamps() Tree {
	out := t.Clone()
	for bi := range out.Boards {
		b := &out.Boards[bi]
		b.CreatedAt, b.UpdatedAt = time.Time{}, time.Time{}
		for ci := range b.Columns {
			c := &b.Columns[ci]
			c.CreatedAt, c.UpdatedAt = time.Time{}, time.Time{}
			for ti := range c.Tasks {
				tk := &c.Tasks[ti]
				tk.CreatedAt, tk.UpdatedAt = time.Time{}, time.Time{}
				for si := range tk.Subtasks {
					tk.Subtasks[si].CreatedAt, tk.Subtasks[si].UpdatedAt = time.Time{}, time.Time{}
				}
			}
		}
	}
	return out
}
