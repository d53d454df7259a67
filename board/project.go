package board

// Project returns the tree that results from applying a to t. It never fails:
// an action that fails Validate, names an id that is not in the tree, creates
// an id that already exists anywhere in the tree, or uses an index outside the
// sibling group leaves the tree unchanged. t itself is never modified.
func Project(t Tree, a Action) Tree {
	if Validate(a) != nil {
		return t
	}
	next := t.Clone()
	if !apply(&next, a) {
		return t
	}
	return next
}

// ProjectAll folds Project over actions in order.
func ProjectAll(t Tree, actions []Action) Tree {
	for _, a := range actions {
		t = Project(t, a)
	}
	return t
}

func apply(t *Tree, a Action) bool {
	switch v := a.(type) {
	case BoardCreate:
		if find(t.Boards, v.BoardID) >= 0 {
			return false
		}
		boards, ok := insert(t.Boards, Board{
			ID:      v.BoardID,
			OwnerID: t.OwnerID,
			Name:    NormalizeName(v.Name),
			Columns: []Column{},
		}, v.Index)
		if !ok {
			return false
		}
		t.Boards = boards
		makeCurrent(t.Boards, v.BoardID)
		return true

	case BoardRename:
		b := t.board(v.BoardID)
		if b == nil {
			return false
		}
		b.Name = NormalizeName(v.Name)
		return true

	case BoardDelete:
		boards, removed, ok := remove(t.Boards, v.BoardID)
		if !ok {
			return false
		}
		t.Boards = boards
		if removed.Current {
			for i := range t.Boards {
				t.Boards[i].Current = t.Boards[i].Index == 1
			}
		}
		return true

	case BoardMakeCurrent:
		if t.board(v.BoardID) == nil {
			return false
		}
		makeCurrent(t.Boards, v.BoardID)
		return true

	case ColumnCreate:
		b := t.board(v.BoardID)
		if b == nil || t.column(v.ColumnID) != nil {
			return false
		}
		cols, ok := insert(b.Columns, Column{
			ID:      v.ColumnID,
			BoardID: v.BoardID,
			Name:    NormalizeName(v.Name),
			Tasks:   []Task{},
		}, v.Index)
		b.Columns = cols
		return ok

	case ColumnRename:
		c := t.column(v.ColumnID)
		if c == nil || c.BoardID != v.BoardID {
			return false
		}
		c.Name = NormalizeName(v.Name)
		return true

	case ColumnDelete:
		b := t.board(v.BoardID)
		if b == nil {
			return false
		}
		cols, _, ok := remove(b.Columns, v.ColumnID)
		b.Columns = cols
		return ok

	case TaskCreate:
		c := t.column(v.ColumnID)
		if c == nil || t.taskByID(v.TaskID) != nil {
			return false
		}
		tasks, ok := insert(c.Tasks, Task{
			ID:       v.TaskID,
			ColumnID: v.ColumnID,
			Name:     NormalizeName(v.Name),
			Subtasks: []Subtask{},
		}, v.Index)
		c.Tasks = tasks
		return ok

	case TaskRename:
		tk := t.task(v.ColumnID, v.TaskID)
		if tk == nil {
			return false
		}
		tk.Name = NormalizeName(v.Name)
		return true

	case TaskDelete:
		c := t.column(v.ColumnID)
		if c == nil {
			return false
		}
		tasks, _, ok := remove(c.Tasks, v.TaskID)
		c.Tasks = tasks
		return ok

	case TaskToggle:
		tk := t.task(v.ColumnID, v.TaskID)
		if tk == nil {
			return false
		}
		tk.Completed = v.Completed
		return true

	case TaskSwitchColumn:
		return t.switchColumn(v)

	case SubtaskCreate:
		tk := t.taskByID(v.TaskID)
		if tk == nil || t.subtaskByID(v.SubtaskID) != nil {
			return false
		}
		subs, ok := insert(tk.Subtasks, Subtask{
			ID:     v.SubtaskID,
			TaskID: v.TaskID,
			Name:   NormalizeName(v.Name),
		}, v.Index)
		tk.Subtasks = subs
		return ok

	case SubtaskRename:
		s := t.subtask(v.TaskID, v.SubtaskID)
		if s == nil {
			return false
		}
		s.Name = NormalizeName(v.Name)
		return true

	case SubtaskDelete:
		tk := t.taskByID(v.TaskID)
		if tk == nil {
			return false
		}
		subs, _, ok := remove(tk.Subtasks, v.SubtaskID)
		tk.Subtasks = subs
		return ok

	case SubtaskToggle:
		s := t.subtask(v.TaskID, v.SubtaskID)
		if s == nil {
			return false
		}
		s.Completed = v.Completed
		return true
	}
	return false
}

func (t *Tree) switchColumn(v TaskSwitchColumn) bool {
	src := t.column(v.OldColumnID)
	if src == nil {
		return false
	}
	i := find(src.Tasks, v.TaskID)
	if i < 0 || src.Tasks[i].Index != v.OldIndex {
		return false
	}

	if v.OldColumnID == v.NewColumnID {
		return move(src.Tasks, i, v.OldIndex, v.NewIndex)
	}

	dst := t.column(v.NewColumnID)
	if dst == nil || v.NewIndex < 1 || v.NewIndex > len(dst.Tasks)+1 {
		return false
	}
	tasks, moved, _ := remove(src.Tasks, v.TaskID)
	src.Tasks = tasks
	moved.ColumnID = v.NewColumnID
	dst.Tasks, _ = insert(dst.Tasks, moved, v.NewIndex)
	return true
}

func makeCurrent(boards []Board, id string) {
	for i := range boards {
		boards[i].Current = boards[i].ID == id
	}
}

func (t *Tree) board(id string) *Board {
	if i := find(t.Boards, id); i >= 0 {
		return &t.Boards[i]
	}
	return nil
}

func (t *Tree) column(id string) *Column {
	for bi := range t.Boards {
		b := &t.Boards[bi]
		if i := find(b.Columns, id); i >= 0 {
			return &b.Columns[i]
		}
	}
	return nil
}

func (t *Tree) task(columnID, id string) *Task {
	c := t.column(columnID)
	if c == nil {
		return nil
	}
	if i := find(c.Tasks, id); i >= 0 {
		return &c.Tasks[i]
	}
	return nil
}

func (t *Tree) taskByID(id string) *Task {
	for bi := range t.Boards {
		for ci := range t.Boards[bi].Columns {
			c := &t.Boards[bi].Columns[ci]
			if i := find(c.Tasks, id); i >= 0 {
				return &c.Tasks[i]
			}
		}
	}
	return nil
}

func (t *Tree) subtask(taskID, id string) *Subtask {
	tk := t.taskByID(taskID)
	if tk == nil {
		return nil
	}
	if i := find(tk.Subtasks, id); i >= 0 {
		return &tk.Subtasks[i]
	}
	return nil
}

func (t *Tree) subtaskByID(id string) *Subtask {
	for bi := range t.Boards {
		for ci := range t.Boards[bi].Columns {
			c := &t.Boards[bi].Columns[ci]
			for ti := range c.Tasks {
				if i := find(c.Tasks[ti].Subtasks, id); i >= 0 {
					return &c.Tasks[ti].Subtasks[i]
				}
			}
		}
	}
	return nil
}
