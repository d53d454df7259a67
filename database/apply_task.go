package database

import "github.com/CrowderSoup/taskboard/board"

func (x *txn) createTask(v board.TaskCreate) error {
	if _, err := x.ownedColumn(v.ColumnID); err != nil {
		return err
	}
	if err := x.validate(v); err != nil {
		return err
	}
	if err := x.ensureAbsent(tasksOf, v.TaskID); err != nil {
		return err
	}
	if err := x.openSlot(tasksOf, v.ColumnID, v.Index); err != nil {
		return err
	}
	_, err := x.exec(`
		INSERT INTO tasks (id, column_id, name, completed, "index", created_at, updated_at)
		VALUES (?, ?, ?, 0, ?, ?, ?)
	`, v.TaskID, v.ColumnID, board.NormalizeName(v.Name), v.Index, x.now, x.now)
	if err != nil {
		return storeError("insert task", err)
	}
	return nil
}

func (x *txn) taskIn(columnID, taskID string) (taskRow, error) {
	row, err := x.ownedTask(taskID)
	if err != nil {
		return row, err
	}
	if row.columnID != columnID {
		return row, board.Failf(board.CodeNotFound, "task %s not found in column %s", taskID, columnID)
	}
	return row, nil
}

func (x *txn) renameTask(v board.TaskRename) error {
	if _, err := x.taskIn(v.ColumnID, v.TaskID); err != nil {
		return err
	}
	if err := x.validate(v); err != nil {
		return err
	}
	if _, err := x.exec(`UPDATE tasks SET name = ?, updated_at = ? WHERE id = ?`,
		board.NormalizeName(v.Name), x.now, v.TaskID); err != nil {
		return storeError("rename task", err)
	}
	return nil
}

func (x *txn) toggleTask(v board.TaskToggle) error {
	if _, err := x.taskIn(v.ColumnID, v.TaskID); err != nil {
		return err
	}
	if err := x.validate(v); err != nil {
		return err
	}
	if _, err := x.exec(`UPDATE tasks SET completed = ?, updated_at = ? WHERE id = ?`,
		v.Completed, x.now, v.TaskID); err != nil {
		return storeError("toggle task", err)
	}
	return nil
}

func (x *txn) deleteTask(v board.TaskDelete) error {
	row, err := x.taskIn(v.ColumnID, v.TaskID)
	if err != nil {
		return err
	}
	if err := x.validate(v); err != nil {
		return err
	}
	if err := x.deleteSubtasksOfTask(v.TaskID); err != nil {
		return err
	}
	if _, err := x.exec(`DELETE FROM tasks WHERE id = ?`, v.TaskID); err != nil {
		return storeError("delete task", err)
	}
	return x.closeGap(tasksOf, row.columnID, row.index)
}

// switchColumn moves a task within its column or into another one.
//
// Within a column, newIndex is the slot before which the task is placed,
// counted with the task still in place, so 1..count+1 are all valid:
//
//	old > new: siblings in [new, old) move down one, the task lands at new
//	old < new: siblings in (old, new) move up one, the task lands at new-1
//
// Across columns the source closes its gap and the destination opens a slot
// at newIndex.
func (x *txn) switchColumn(v board.TaskSwitchColumn) error {
	row, err := x.ownedTask(v.TaskID)
	if err != nil {
		return err
	}
	if _, err := x.ownedColumn(v.NewColumnID); err != nil {
		return err
	}
	if err := x.validate(v); err != nil {
		return err
	}
	if row.columnID != v.OldColumnID || row.index != v.OldIndex {
		return invariantf("task %s is at %s/%d, not %s/%d",
			v.TaskID, row.columnID, row.index, v.OldColumnID, v.OldIndex)
	}

	if v.NewColumnID == v.OldColumnID {
		return x.moveWithin(row, v.NewIndex)
	}

	dstMax, err := x.maxIndex(tasksOf, v.NewColumnID)
	if err != nil {
		return err
	}
	if v.NewIndex > dstMax+1 {
		return invariantf("task index %d is outside 1..%d", v.NewIndex, dstMax+1)
	}
	if err := x.closeGap(tasksOf, row.columnID, row.index); err != nil {
		return err
	}
	if err := x.shift(tasksOf, v.NewColumnID, v.NewIndex, -1, 1); err != nil {
		return err
	}
	return x.placeTask(v.TaskID, v.NewColumnID, v.NewIndex)
}

func (x *txn) moveWithin(row taskRow, newIndex int) error {
	max, err := x.maxIndex(tasksOf, row.columnID)
	if err != nil {
		return err
	}
	if newIndex > max+1 {
		return invariantf("task index %d is outside 1..%d", newIndex, max+1)
	}

	old := row.index
	switch {
	case newIndex < old:
		if err := x.shift(tasksOf, row.columnID, newIndex, old-1, 1); err != nil {
			return err
		}
		return x.placeTask(row.id, row.columnID, newIndex)
	case newIndex > old+1:
		if err := x.shift(tasksOf, row.columnID, old+1, newIndex-1, -1); err != nil {
			return err
		}
		return x.placeTask(row.id, row.columnID, newIndex-1)
	}
	// new == old or new == old+1 leaves the task where it is.
	return nil
}

func (x *txn) placeTask(taskID, columnID string, index int) error {
	if _, err := x.exec(`UPDATE tasks SET column_id = ?, "index" = ?, updated_at = ? WHERE id = ?`,
		columnID, index, x.now, taskID); err != nil {
		return storeError("place task", err)
	}
	return nil
}
