package database

import "github.com/CrowderSoup/taskboard/board"

func (x *txn) createBoard(v board.BoardCreate) error {
	// The actor becomes the owner, so there is nothing to authorize against.
	if err := x.validate(v); err != nil {
		return err
	}
	if err := x.ensureAbsent(boardsOf, v.BoardID); err != nil {
		return err
	}
	if err := x.openSlot(boardsOf, x.actor, v.Index); err != nil {
		return err
	}
	if err := x.clearCurrent(""); err != nil {
		return err
	}
	_, err := x.exec(`
		INSERT INTO boards (id, owner_id, name, "index", is_current, created_at, updated_at)
		VALUES (?, ?, ?, ?, 1, ?, ?)
	`, v.BoardID, x.actor, board.NormalizeName(v.Name), v.Index, x.now, x.now)
	if err != nil {
		return storeError("insert board", err)
	}
	return nil
}

func (x *txn) renameBoard(v board.BoardRename) error {
	if _, err := x.ownedBoard(v.BoardID); err != nil {
		return err
	}
	if err := x.validate(v); err != nil {
		return err
	}
	if _, err := x.exec(`UPDATE boards SET name = ?, updated_at = ? WHERE id = ?`,
		board.NormalizeName(v.Name), x.now, v.BoardID); err != nil {
		return storeError("rename board", err)
	}
	return nil
}

// deleteBoard removes the board and everything under it, closes the gap in
// the owner's boards and, if the board was current, hands the flag to the
// board that is now first.
func (x *txn) deleteBoard(v board.BoardDelete) error {
	row, err := x.ownedBoard(v.BoardID)
	if err != nil {
		return err
	}
	if err := x.validate(v); err != nil {
		return err
	}
	if err := x.deleteColumnsOfBoard(v.BoardID); err != nil {
		return err
	}
	if _, err := x.exec(`DELETE FROM boards WHERE id = ?`, v.BoardID); err != nil {
		return storeError("delete board", err)
	}
	if err := x.closeGap(boardsOf, x.actor, row.index); err != nil {
		return err
	}
	if row.current {
		if _, err := x.exec(`
			UPDATE boards SET is_current = 1, updated_at = ?
			WHERE owner_id = ? AND "index" = 1
		`, x.now, x.actor); err != nil {
			return storeError("promote first board", err)
		}
	}
	return nil
}

func (x *txn) makeCurrent(v board.BoardMakeCurrent) error {
	row, err := x.ownedBoard(v.BoardID)
	if err != nil {
		return err
	}
	if err := x.validate(v); err != nil {
		return err
	}
	if row.current {
		return nil
	}
	if err := x.clearCurrent(v.BoardID); err != nil {
		return err
	}
	if _, err := x.exec(`UPDATE boards SET is_current = 1, updated_at = ? WHERE id = ?`, x.now, v.BoardID); err != nil {
		return storeError("make board current", err)
	}
	return nil
}

// clearCurrent unsets the flag on every board of the actor except keep.
func (x *txn) clearCurrent(keep string) error {
	if _, err := x.exec(`
		UPDATE boards SET is_current = 0, updated_at = ?
		WHERE owner_id = ? AND is_current = 1 AND id <> ?
	`, x.now, x.actor, keep); err != nil {
		return storeError("clear current board", err)
	}
	return nil
}
