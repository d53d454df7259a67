package board

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		max     int
		wantErr error
	}{
		{"ok", "Roadmap", 20, nil},
		{"trimmed to empty", "   ", 20, ErrEmptyName},
		{"empty", "", 20, ErrEmptyName},
		{"exactly max", strings.Repeat("a", 20), 20, nil},
		{"over max", strings.Repeat("a", 21), 20, ErrNameTooLong},
		{"surrounding space not counted", "  " + strings.Repeat("a", 20) + "  ", 20, nil},
		{"runes not bytes", strings.Repeat("é", 20), 20, nil},
		// "e" + combining acute composes to a single rune under NFC.
		{"composed before counting", strings.Repeat("e\u0301", 20), 20, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateName(tt.input, tt.max)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
		})
	}
}

func TestValidate(t *testing.T) {
	good := uid("x")
	tests := []struct {
		name    string
		action  Action
		wantErr error
	}{
		{"board create", BoardCreate{BoardID: good, Name: "Main", Index: 1}, nil},
		{"board name too long", BoardCreate{BoardID: good, Name: strings.Repeat("b", 21), Index: 1}, ErrNameTooLong},
		{"column name limit", ColumnCreate{BoardID: good, ColumnID: good, Name: strings.Repeat("c", 30), Index: 1}, nil},
		{"task name limit", TaskRename{ColumnID: good, TaskID: good, Name: strings.Repeat("t", 51)}, ErrNameTooLong},
		{"subtask empty name", SubtaskRename{TaskID: good, SubtaskID: good, Name: " "}, ErrEmptyName},
		{"bad id", TaskDelete{ColumnID: good, TaskID: "not-a-uuid"}, ErrInvalidID},
		{"zero index", ColumnCreate{BoardID: good, ColumnID: good, Name: "c", Index: 0}, ErrInvalidIndex},
		{"switch negative", TaskSwitchColumn{TaskID: good, OldColumnID: good, NewColumnID: good, OldIndex: 1, NewIndex: -2}, ErrInvalidIndex},
		{"toggle", SubtaskToggle{TaskID: good, SubtaskID: good, Completed: true}, nil},
		{"make current", BoardMakeCurrent{BoardID: ""}, ErrInvalidID},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.action)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestMutationError(t *testing.T) {
	err := Fail(CodeValidation, ErrEmptyName)
	assert.True(t, IsValidation(err))
	assert.ErrorIs(t, err, ErrEmptyName)
	assert.Equal(t, "VALIDATION: name cannot be empty", err.Error())

	err.Action = 2
	assert.Equal(t, "VALIDATION: name cannot be empty (action 2)", err.Error())

	nf := Failf(CodeNotFound, "task %s not found", "t1")
	assert.True(t, IsNotFound(nf))
	assert.False(t, IsUnauthorized(nf))
	assert.Equal(t, ErrorCode(""), CodeOf(errors.New("plain")))
}
