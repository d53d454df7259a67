package database

import "github.com/CrowderSoup/taskboard/board"

func (x *txn) createSubtask(v board.SubtaskCreate) error {
	if _, err := x.ownedTask(v.TaskID); err != nil {
		return err
	}
	if err := x.validate(v); err != nil {
		return err
	}
	if err := x.ensureAbsent(subtasksOf, v.SubtaskID); err != nil {
		return err
	}
	if err := x.openSlot(subtasksOf, v.TaskID, v.Index); err != nil {
		return err
	}
	_, err := x.exec(`
		INSERT INTO subtasks (id, task_id, name, completed, "index", created_at, updated_at)
		VALUES (?, ?, ?, 0, ?, ?, ?)
	`, v.SubtaskID, v.TaskID, board.NormalizeName(v.Name), v.Index, x.now, x.now)
	if err != nil {
		return storeError("insert subtask", err)
	}
	return nil
}

func (x *txn) subtaskOn(taskID, subtaskID string) (subtaskRow, error) {
	row, err := x.ownedSubtask(subtaskID)
	if err != nil {
		return row, err
	}
	if row.taskID != taskID {
		return row, board.Failf(board.CodeNotFound, "subtask %s not found on task %s", subtaskID, taskID)
	}
	return row, nil
}

func (x *txn) renameSubtask(v board.SubtaskRename) error {
	if _, err := x.subtaskOn(v.TaskID, v.SubtaskID); err != nil {
		return err
	}
	if err := x.validate(v); err != nil {
		return err
	}
	if _, err := x.exec(`UPDATE subtasks SET name = ?, updated_at = ? WHERE id = ?`,
		board.NormalizeName(v.Name), x.now, v.SubtaskID); err != nil {
		return storeError("rename subtask", err)
	}
	return nil
}

func (x *txn) toggleSubtask(v board.SubtaskToggle) error {
	if _, err := x.subtaskOn(v.TaskID, v.SubtaskID); err != nil {
		return err
	}
	if err := x.validate(v); err != nil {
		return err
	}
	if _, err := x.exec(`UPDATE subtasks SET completed = ?, updated_at = ? WHERE id = ?`,
		v.Completed, x.now, v.SubtaskID); err != nil {
		return storeError("toggle subtask", err)
	}
	return nil
}

func (x *txn) deleteSubtask(v board.SubtaskDelete) error {
	row, err := x.subtaskOn(v.TaskID, v.SubtaskID)
	if err != nil {
		return err
	}
	if err := x.validate(v); err != nil {
		return err
	}
	if _, err := x.exec(`DELETE FROM subtasks WHERE id = ?`, v.SubtaskID); err != nil {
		return storeError("delete subtask", err)
	}
	return x.closeGap(subtasksOf, row.taskID, row.index)
}
