package board

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"
)

var (
	// ErrEmptyName is returned when a name is empty after trimming.
	ErrEmptyName = errors.New("name cannot be empty")

	// ErrNameTooLong is returned when a name exceeds its entity's limit.
	ErrNameTooLong = errors.New("name exceeds maximum length")

	// ErrInvalidID is returned when an id is not a UUID.
	ErrInvalidID = errors.New("invalid id")

	// ErrInvalidIndex is returned when an index is not a positive integer.
	ErrInvalidIndex = errors.New("index must be a positive integer")
)

// NormalizeName trims surrounding whitespace and applies NFC so that the
// stored form and the length check agree across clients.
func NormalizeName(name string) string {
	return norm.NFC.String(strings.TrimSpace(name))
}

// ValidateName checks a name against a rune limit.
func ValidateName(name string, max int) error {
	n := NormalizeName(name)
	if n == "" {
		return ErrEmptyName
	}
	if l := utf8.RuneCountInString(n); l > max {
		return fmt.Errorf("%w: %d > %d", ErrNameTooLong, l, max)
	}
	return nil
}

// ValidateID checks that id is a UUID string.
func ValidateID(field, id string) error {
	if err := uuid.Validate(id); err != nil {
		return fmt.Errorf("%w: %s %q", ErrInvalidID, field, id)
	}
	return nil
}

func validateIndex(field string, index int) error {
	if index < 1 {
		return fmt.Errorf("%w: %s = %d", ErrInvalidIndex, field, index)
	}
	return nil
}

type check func() error

func idChecks(pairs ...string) []check {
	out := make([]check, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		field, id := pairs[i], pairs[i+1]
		out = append(out, func() error { return ValidateID(field, id) })
	}
	return out
}

func nameCheck(n string, max int) check { return func() error { return ValidateName(n, max) } }

func indexCheck(field string, i int) check { return func() error { return validateIndex(field, i) } }

// Validate re-checks an action's schema: id format, name rules, and index
// positivity. It does not look at stored state.
func Validate(a Action) error {
	var checks []check
	switch v := a.(type) {
	case BoardCreate:
		checks = append(idChecks("boardId", v.BoardID), nameCheck(v.Name, MaxBoardNameLength), indexCheck("index", v.Index))
	case BoardRename:
		checks = append(idChecks("boardId", v.BoardID), nameCheck(v.Name, MaxBoardNameLength))
	case BoardDelete:
		checks = idChecks("boardId", v.BoardID)
	case BoardMakeCurrent:
		checks = idChecks("boardId", v.BoardID)
	case ColumnCreate:
		checks = append(idChecks("boardId", v.BoardID, "columnId", v.ColumnID), nameCheck(v.Name, MaxColumnNameLength), indexCheck("index", v.Index))
	case ColumnRename:
		checks = append(idChecks("boardId", v.BoardID, "columnId", v.ColumnID), nameCheck(v.Name, MaxColumnNameLength))
	case ColumnDelete:
		checks = idChecks("boardId", v.BoardID, "columnId", v.ColumnID)
	case TaskCreate:
		checks = append(idChecks("columnId", v.ColumnID, "taskId", v.TaskID), nameCheck(v.Name, MaxTaskNameLength), indexCheck("index", v.Index))
	case TaskRename:
		checks = append(idChecks("columnId", v.ColumnID, "taskId", v.TaskID), nameCheck(v.Name, MaxTaskNameLength))
	case TaskDelete:
		checks = idChecks("columnId", v.ColumnID, "taskId", v.TaskID)
	case TaskToggle:
		checks = idChecks("columnId", v.ColumnID, "taskId", v.TaskID)
	case TaskSwitchColumn:
		checks = append(idChecks("taskId", v.TaskID, "oldColumnId", v.OldColumnID, "newColumnId", v.NewColumnID),
			indexCheck("oldIndex", v.OldIndex), indexCheck("newIndex", v.NewIndex))
	case SubtaskCreate:
		checks = append(idChecks("taskId", v.TaskID, "subtaskId", v.SubtaskID), nameCheck(v.Name, MaxSubtaskNameLength), indexCheck("index", v.Index))
	case SubtaskRename:
		checks = append(idChecks("taskId", v.TaskID, "subtaskId", v.SubtaskID), nameCheck(v.Name, MaxSubtaskNameLength))
	case SubtaskDelete:
		checks = idChecks("taskId", v.TaskID, "subtaskId", v.SubtaskID)
	case SubtaskToggle:
		checks = idChecks("taskId", v.TaskID, "subtaskId", v.SubtaskID)
	default:
		return fmt.Errorf("%w: %T", ErrUnknownKind, a)
	}

	for _, c := range checks {
		if err := c(); err != nil {
			return err
		}
	}
	return nil
}
