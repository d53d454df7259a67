package database

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/CrowderSoup/taskboard/board"
)

type boardRow struct {
	id      string
	index   int
	current bool
}

type columnRow struct {
	id      string
	boardID string
	index   int
}

type taskRow struct {
	id       string
	columnID string
	index    int
}

type subtaskRow struct {
	id     string
	taskID string
	index  int
}

// owned runs a lookup that also selects the root board's owner_id as its
// last column, and turns the outcome into the authorization result.
func (x *txn) owned(kind, id, query string, dest ...any) error {
	if err := board.ValidateID(kind+"Id", id); err != nil {
		return board.Fail(board.CodeValidation, err)
	}
	var owner string
	err := x.queryRow(query, id).Scan(append(dest, &owner)...)
	if errors.Is(err, sql.ErrNoRows) {
		return board.Failf(board.CodeNotFound, "%s %s not found", kind, id)
	}
	if err != nil {
		return storeError(fmt.Sprintf("load %s %s", kind, id), err)
	}
	if owner != x.actor {
		return board.Failf(board.CodeUnauthorized, "%s %s is not owned by actor", kind, id)
	}
	return nil
}

func (x *txn) ownedBoard(id string) (boardRow, error) {
	r := boardRow{id: id}
	err := x.owned("board", id, `
		SELECT "index", is_current, owner_id FROM boards WHERE id = ?
	`, &r.index, &r.current)
	return r, err
}

func (x *txn) ownedColumn(id string) (columnRow, error) {
	r := columnRow{id: id}
	err := x.owned("column", id, `
		SELECT c.board_id, c."index", b.owner_id
		FROM columns c
		JOIN boards b ON b.id = c.board_id
		WHERE c.id = ?
	`, &r.boardID, &r.index)
	return r, err
}

func (x *txn) ownedTask(id string) (taskRow, error) {
	r := taskRow{id: id}
	err := x.owned("task", id, `
		SELECT t.column_id, t."index", b.owner_id
		FROM tasks t
		JOIN columns c ON c.id = t.column_id
		JOIN boards b ON b.id = c.board_id
		WHERE t.id = ?
	`, &r.columnID, &r.index)
	return r, err
}

func (x *txn) ownedSubtask(id string) (subtaskRow, error) {
	r := subtaskRow{id: id}
	err := x.owned("subtask", id, `
		SELECT s.task_id, s."index", b.owner_id
		FROM subtasks s
		JOIN tasks t ON t.id = s.task_id
		JOIN columns c ON c.id = t.column_id
		JOIN boards b ON b.id = c.board_id
		WHERE s.id = ?
	`, &r.taskID, &r.index)
	return r, err
}

// ensureAbsent rejects a create whose id is already taken.
func (x *txn) ensureAbsent(g group, id string) error {
	var one int
	err := x.queryRow(`SELECT 1 FROM `+g.table+` WHERE id = ?`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return storeError("check "+g.table, err)
	}
	return board.Failf(board.CodeInvariant, "%s %s already exists", g.noun, id)
}
