package board

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode_WireShape(t *testing.T) {
	raw := `{"type":"task.switchColumn","payload":{"taskId":"t","oldColumnId":"a","newColumnId":"b","oldIndex":2,"newIndex":1}}`

	var env Envelope
	require.NoError(t, json.Unmarshal([]byte(raw), &env))
	a, err := Decode(env)
	require.NoError(t, err)

	assert.Equal(t, TaskSwitchColumn{TaskID: "t", OldColumnID: "a", NewColumnID: "b", OldIndex: 2, NewIndex: 1}, a)
}

func TestDecode_RejectsUnknownTypeAndFields(t *testing.T) {
	_, err := Decode(Envelope{Type: "task.archive", Payload: json.RawMessage(`{}`)})
	assert.ErrorIs(t, err, ErrUnknownKind)

	_, err = Decode(Envelope{Type: KindTaskToggle, Payload: json.RawMessage(`{"taskId":"t","done":true}`)})
	assert.Error(t, err)

	_, err = Decode(Envelope{Type: KindBoardDelete})
	assert.Error(t, err)
}

func TestEncodeBatch_PreservesOrder(t *testing.T) {
	actions := []Action{
		BoardRename{BoardID: "b", Name: "x"},
		ColumnCreate{BoardID: "b", ColumnID: "c", Name: "Todo", Index: 1},
		SubtaskToggle{TaskID: "t", SubtaskID: "s", Completed: true},
	}

	envs, err := EncodeBatch(actions)
	require.NoError(t, err)
	require.Len(t, envs, 3)
	assert.Equal(t, KindColumnCreate, envs[1].Type)

	back, err := DecodeBatch(envs)
	require.NoError(t, err)
	assert.Equal(t, actions, back)
}

func TestDecodeBatch_ReportsPosition(t *testing.T) {
	_, err := DecodeBatch([]Envelope{
		{Type: KindBoardDelete, Payload: json.RawMessage(`{"boardId":"b"}`)},
		{Type: "nope", Payload: json.RawMessage(`{}`)},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "action 1")
}
