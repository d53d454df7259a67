package database

import "github.com/CrowderSoup/taskboard/board"

func (x *txn) createColumn(v board.ColumnCreate) error {
	if _, err := x.ownedBoard(v.BoardID); err != nil {
		return err
	}
	if err := x.validate(v); err != nil {
		return err
	}
	if err := x.ensureAbsent(columnsOf, v.ColumnID); err != nil {
		return err
	}
	if err := x.openSlot(columnsOf, v.BoardID, v.Index); err != nil {
		return err
	}
	_, err := x.exec(`
		INSERT INTO columns (id, board_id, name, "index", created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, v.ColumnID, v.BoardID, board.NormalizeName(v.Name), v.Index, x.now, x.now)
	if err != nil {
		return storeError("insert column", err)
	}
	return nil
}

// columnOn loads a column and checks it sits on the board the action names.
func (x *txn) columnOn(boardID, columnID string) (columnRow, error) {
	row, err := x.ownedColumn(columnID)
	if err != nil {
		return row, err
	}
	if row.boardID != boardID {
		return row, board.Failf(board.CodeNotFound, "column %s not found on board %s", columnID, boardID)
	}
	return row, nil
}

func (x *txn) renameColumn(v board.ColumnRename) error {
	if _, err := x.columnOn(v.BoardID, v.ColumnID); err != nil {
		return err
	}
	if err := x.validate(v); err != nil {
		return err
	}
	if _, err := x.exec(`UPDATE columns SET name = ?, updated_at = ? WHERE id = ?`,
		board.NormalizeName(v.Name), x.now, v.ColumnID); err != nil {
		return storeError("rename column", err)
	}
	return nil
}

func (x *txn) deleteColumn(v board.ColumnDelete) error {
	row, err := x.columnOn(v.BoardID, v.ColumnID)
	if err != nil {
		return err
	}
	if err := x.validate(v); err != nil {
		return err
	}
	if err := x.deleteTasksOfColumn(v.ColumnID); err != nil {
		return err
	}
	if _, err := x.exec(`DELETE FROM columns WHERE id = ?`, v.ColumnID); err != nil {
		return storeError("delete column", err)
	}
	return x.closeGap(columnsOf, row.boardID, row.index)
}
