package board

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrNotDense is returned when a sibling group's indices are not exactly 1..N.
var ErrNotDense = errors.New("sibling indices are not dense")

// ErrCurrentBoard is returned when an owner with boards does not have exactly
// one current board, or an owner without boards has one.
var ErrCurrentBoard = errors.New("current board is not a singleton")

// CheckDensity verifies that every sibling group in t is indexed 1..N with no
// gaps or duplicates, and that exactly one board is current when any exist.
func CheckDensity(t Tree) error {
	idx := make([]int, 0, len(t.Boards))
	current := 0
	for _, b := range t.Boards {
		idx = append(idx, b.Index)
		if b.Current {
			current++
		}
	}
	if err := dense("boards of "+t.OwnerID, idx); err != nil {
		return err
	}
	if (len(t.Boards) > 0 && current != 1) || (len(t.Boards) == 0 && current != 0) {
		return fmt.Errorf("%w: %d current of %d", ErrCurrentBoard, current, len(t.Boards))
	}

	for _, b := range t.Boards {
		idx = idx[:0]
		for _, c := range b.Columns {
			idx = append(idx, c.Index)
		}
		if err := dense("columns of board "+b.ID, idx); err != nil {
			return err
		}
		for _, c := range b.Columns {
			idx = idx[:0]
			for _, tk := range c.Tasks {
				idx = append(idx, tk.Index)
			}
			if err := dense("tasks of column "+c.ID, idx); err != nil {
				return err
			}
			for _, tk := range c.Tasks {
				idx = idx[:0]
				for _, s := range tk.Subtasks {
					idx = append(idx, s.Index)
				}
				if err := dense("subtasks of task "+tk.ID, idx); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func dense(group string, indices []int) error {
	sorted := append([]int(nil), indices...)
	sort.Ints(sorted)
	for i, v := range sorted {
		if v != i+1 {
			return fmt.Errorf("%w: %s has %v", ErrNotDense, group, sorted)
		}
	}
	return nil
}

// Outline renders t as an indented list, one entity per line, in index
// order. Completed tasks and subtasks are marked [x] and the current board
// is marked with a trailing *.
func Outline(t Tree) string {
	var sb strings.Builder
	for _, b := range t.Boards {
		fmt.Fprintf(&sb, "%d. %s", b.Index, b.Name)
		if b.Current {
			sb.WriteString(" *")
		}
		sb.WriteByte('\n')
		for _, c := range b.Columns {
			fmt.Fprintf(&sb, "  %d. %s\n", c.Index, c.Name)
			for _, tk := range c.Tasks {
				fmt.Fprintf(&sb, "    %d. %s %s\n", tk.Index, checkbox(tk.Completed), tk.Name)
				for _, s := range tk.Subtasks {
					fmt.Fprintf(&sb, "      %d. %s %s\n", s.Index, checkbox(s.Completed), s.Name)
				}
			}
		}
	}
	return sb.String()
}

func checkbox(done bool) string {
	if done {
		return "[x]"
	}
	return "[ ]"
}
