package database

// The cascade removes descendants bottom-up: subtasks, then tasks, then
// columns. Whole sibling groups disappear, so only the group that lost the
// top-level entity needs its gap closed, which the callers do.

func (x *txn) deleteSubtasksOfTask(taskID string) error {
	if _, err := x.exec(`DELETE FROM subtasks WHERE task_id = ?`, taskID); err != nil {
		return storeError("delete subtasks of task "+taskID, err)
	}
	return nil
}

func (x *txn) deleteTasksOfColumn(columnID string) error {
	if _, err := x.exec(`
		DELETE FROM subtasks
		WHERE task_id IN (SELECT id FROM tasks WHERE column_id = ?)
	`, columnID); err != nil {
		return storeError("delete subtasks of column "+columnID, err)
	}
	if _, err := x.exec(`DELETE FROM tasks WHERE column_id = ?`, columnID); err != nil {
		return storeError("delete tasks of column "+columnID, err)
	}
	return nil
}

func (x *txn) deleteColumnsOfBoard(boardID string) error {
	rows, err := x.tx.QueryContext(x.ctx, `SELECT id FROM columns WHERE board_id = ?`, boardID)
	if err != nil {
		return storeError("list columns of board "+boardID, err)
	}
	var columnIDs []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return storeError("scan column id", err)
		}
		columnIDs = append(columnIDs, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return storeError("list columns of board "+boardID, err)
	}

	for _, id := range columnIDs {
		if err := x.deleteTasksOfColumn(id); err != nil {
			return err
		}
	}
	if _, err := x.exec(`DELETE FROM columns WHERE board_id = ?`, boardID); err != nil {
		return storeError("delete columns of board "+boardID, err)
	}
	return nil
}
