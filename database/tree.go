package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/CrowderSoup/taskboard/board"
)

// Tree reads the owner's full tree. Every level is ordered by index and
// every child slice is non-nil.
func (s *Store) Tree(ctx context.Context, ownerID string) (board.Tree, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return board.Tree{}, fmt.Errorf("read tree: begin tx: %w", err)
	}
	defer tx.Rollback()

	tree, err := readTree(ctx, tx, ownerID)
	if err != nil {
		return board.Tree{}, fmt.Errorf("read tree: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return board.Tree{}, fmt.Errorf("read tree: commit: %w", err)
	}
	return tree, nil
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func readTree(ctx context.Context, q querier, ownerID string) (board.Tree, error) {
	subtasks := make(map[string][]board.Subtask)
	err := each(ctx, q, `
		SELECT s.id, s.task_id, s.name, s.completed, s."index", s.created_at, s.updated_at
		FROM subtasks s
		JOIN tasks t ON t.id = s.task_id
		JOIN columns c ON c.id = t.column_id
		JOIN boards b ON b.id = c.board_id
		WHERE b.owner_id = ?
		ORDER BY s.task_id, s."index"
	`, ownerID, func(rows *sql.Rows) error {
		var st board.Subtask
		if err := rows.Scan(&st.ID, &st.TaskID, &st.Name, &st.Completed, &st.Index, &st.CreatedAt, &st.UpdatedAt); err != nil {
			return err
		}
		subtasks[st.TaskID] = append(subtasks[st.TaskID], st)
		return nil
	})
	if err != nil {
		return board.Tree{}, fmt.Errorf("subtasks: %w", err)
	}

	tasks := make(map[string][]board.Task)
	err = each(ctx, q, `
		SELECT t.id, t.column_id, t.name, t.completed, t."index", t.created_at, t.updated_at
		FROM tasks t
		JOIN columns c ON c.id = t.column_id
		JOIN boards b ON b.id = c.board_id
		WHERE b.owner_id = ?
		ORDER BY t.column_id, t."index"
	`, ownerID, func(rows *sql.Rows) error {
		var tk board.Task
		if err := rows.Scan(&tk.ID, &tk.ColumnID, &tk.Name, &tk.Completed, &tk.Index, &tk.CreatedAt, &tk.UpdatedAt); err != nil {
			return err
		}
		tk.Subtasks = nonNil(subtasks[tk.ID])
		tasks[tk.ColumnID] = append(tasks[tk.ColumnID], tk)
		return nil
	})
	if err != nil {
		return board.Tree{}, fmt.Errorf("tasks: %w", err)
	}

	columns := make(map[string][]board.Column)
	err = each(ctx, q, `
		SELECT c.id, c.board_id, c.name, c."index", c.created_at, c.updated_at
		FROM columns c
		JOIN boards b ON b.id = c.board_id
		WHERE b.owner_id = ?
		ORDER BY c.board_id, c."index"
	`, ownerID, func(rows *sql.Rows) error {
		var c board.Column
		if err := rows.Scan(&c.ID, &c.BoardID, &c.Name, &c.Index, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return err
		}
		c.Tasks = nonNil(tasks[c.ID])
		columns[c.BoardID] = append(columns[c.BoardID], c)
		return nil
	})
	if err != nil {
		return board.Tree{}, fmt.Errorf("columns: %w", err)
	}

	tree := board.Tree{OwnerID: ownerID, Boards: []board.Board{}}
	err = each(ctx, q, `
		SELECT id, owner_id, name, "index", is_current, created_at, updated_at
		FROM boards
		WHERE owner_id = ?
		ORDER BY "index"
	`, ownerID, func(rows *sql.Rows) error {
		var b board.Board
		if err := rows.Scan(&b.ID, &b.OwnerID, &b.Name, &b.Index, &b.Current, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return err
		}
		b.Columns = nonNil(columns[b.ID])
		tree.Boards = append(tree.Boards, b)
		return nil
	})
	if err != nil {
		return board.Tree{}, fmt.Errorf("boards: %w", err)
	}
	return tree, nil
}

func each(ctx context.Context, q querier, query string, arg any, fn func(*sql.Rows) error) error {
	rows, err := q.QueryContext(ctx, query, arg)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		if err := fn(rows); err != nil {
			return err
		}
	}
	return rows.Err()
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
