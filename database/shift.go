package database

import "fmt"

// group names a kind of sibling set: rows of table sharing a parent value.
type group struct {
	table  string
	parent string
	noun   string
}

var (
	boardsOf   = group{table: "boards", parent: "owner_id", noun: "board"}
	columnsOf  = group{table: "columns", parent: "board_id", noun: "column"}
	tasksOf    = group{table: "tasks", parent: "column_id", noun: "task"}
	subtasksOf = group{table: "subtasks", parent: "task_id", noun: "subtask"}
)

// maxIndex returns the highest index in the group, 0 when it is empty.
func (x *txn) maxIndex(g group, parentID string) (int, error) {
	var n int
	err := x.queryRow(
		`SELECT COALESCE(MAX("index"), 0) FROM `+g.table+` WHERE `+g.parent+` = ?`,
		parentID,
	).Scan(&n)
	if err != nil {
		return 0, storeError("max index of "+g.table, err)
	}
	return n, nil
}

// shift adds delta to the index of every sibling with lo <= index <= hi.
// hi < 0 means no upper bound.
func (x *txn) shift(g group, parentID string, lo, hi, delta int) error {
	query := `UPDATE ` + g.table + ` SET "index" = "index" + ?, updated_at = ? WHERE ` + g.parent + ` = ? AND "index" >= ?`
	args := []any{delta, x.now, parentID, lo}
	if hi >= 0 {
		query += ` AND "index" <= ?`
		args = append(args, hi)
	}
	if _, err := x.exec(query, args...); err != nil {
		return storeError(fmt.Sprintf("shift %s [%d,%d] by %d", g.table, lo, hi, delta), err)
	}
	return nil
}

// openSlot makes room at index at for an insert: siblings at or after it move
// up by one. at must be within 1..max+1.
func (x *txn) openSlot(g group, parentID string, at int) error {
	max, err := x.maxIndex(g, parentID)
	if err != nil {
		return err
	}
	if at < 1 || at > max+1 {
		return invariantf("%s index %d is outside 1..%d", g.noun, at, max+1)
	}
	if at <= max {
		return x.shift(g, parentID, at, -1, 1)
	}
	return nil
}

// closeGap pulls every sibling after a removed index down by one.
func (x *txn) closeGap(g group, parentID string, removed int) error {
	return x.shift(g, parentID, removed+1, -1, -1)
}
