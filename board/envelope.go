package board

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrUnknownKind is returned when an envelope's type tag names no action.
var ErrUnknownKind = errors.New("unknown action type")

// Envelope is the wire form of an Action.
type Envelope struct {
	Type    Kind            `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Encode wraps an action in its envelope.
func Encode(a Action) (Envelope, error) {
	payload, err := json.Marshal(a)
	if err != nil {
		return Envelope{}, fmt.Errorf("encode %s: %w", a.Kind(), err)
	}
	return Envelope{Type: a.Kind(), Payload: payload}, nil
}

// EncodeBatch wraps each action in order.
func EncodeBatch(actions []Action) ([]Envelope, error) {
	out := make([]Envelope, 0, len(actions))
	for _, a := range actions {
		env, err := Encode(a)
		if err != nil {
			return nil, err
		}
		out = append(out, env)
	}
	return out, nil
}

// Decode turns an envelope back into a typed action. Unknown payload fields
// are rejected.
func Decode(env Envelope) (Action, error) {
	var a Action
	switch env.Type {
	case KindBoardCreate:
		a = &BoardCreate{}
	case KindBoardRename:
		a = &BoardRename{}
	case KindBoardDelete:
		a = &BoardDelete{}
	case KindBoardMakeCurrent:
		a = &BoardMakeCurrent{}
	case KindColumnCreate:
		a = &ColumnCreate{}
	case KindColumnRename:
		a = &ColumnRename{}
	case KindColumnDelete:
		a = &ColumnDelete{}
	case KindTaskCreate:
		a = &TaskCreate{}
	case KindTaskRename:
		a = &TaskRename{}
	case KindTaskDelete:
		a = &TaskDelete{}
	case KindTaskToggle:
		a = &TaskToggle{}
	case KindTaskSwitchColumn:
		a = &TaskSwitchColumn{}
	case KindSubtaskCreate:
		a = &SubtaskCreate{}
	case KindSubtaskRename:
		a = &SubtaskRename{}
	case KindSubtaskDelete:
		a = &SubtaskDelete{}
	case KindSubtaskToggle:
		a = &SubtaskToggle{}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, env.Type)
	}

	if len(env.Payload) == 0 {
		return nil, fmt.Errorf("decode %s: missing payload", env.Type)
	}
	dec := json.NewDecoder(bytes.NewReader(env.Payload))
	dec.DisallowUnknownFields()
	if err := dec.Decode(a); err != nil {
		return nil, fmt.Errorf("decode %s: %w", env.Type, err)
	}
	return deref(a), nil
}

// DecodeBatch decodes envelopes in order, stopping at the first failure.
func DecodeBatch(envs []Envelope) ([]Action, error) {
	out := make([]Action, 0, len(envs))
	for i, env := range envs {
		a, err := Decode(env)
		if err != nil {
			return nil, fmt.Errorf("action %d: %w", i, err)
		}
		out = append(out, a)
	}
	return out, nil
}

// deref converts the pointer used for decoding into the value type the rest
// of the package switches on.
func deref(a Action) Action {
	switch v := a.(type) {
	case *BoardCreate:
		return *v
	case *BoardRename:
		return *v
	case *BoardDelete:
		return *v
	case *BoardMakeCurrent:
		return *v
	case *ColumnCreate:
		return *v
	case *ColumnRename:
		return *v
	case *ColumnDelete:
		return *v
	case *TaskCreate:
		return *v
	case *TaskRename:
		return *v
	case *TaskDelete:
		return *v
	case *TaskToggle:
		return *v
	case *TaskSwitchColumn:
		return *v
	case *SubtaskCreate:
		return *v
	case *SubtaskRename:
		return *v
	case *SubtaskDelete:
		return *v
	case *SubtaskToggle:
		return *v
	}
	return a
}
