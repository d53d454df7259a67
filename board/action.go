package board

// Kind tags an Action on the wire.
type Kind string

const (
	KindBoardCreate      Kind = "board.create"
	KindBoardRename      Kind = "board.rename"
	KindBoardDelete      Kind = "board.delete"
	KindBoardMakeCurrent Kind = "board.makeCurrent"

	KindColumnCreate Kind = "column.create"
	KindColumnRename Kind = "column.rename"
	KindColumnDelete Kind = "column.delete"

	KindTaskCreate       Kind = "task.create"
	KindTaskRename       Kind = "task.rename"
	KindTaskDelete       Kind = "task.delete"
	KindTaskToggle       Kind = "task.toggle"
	KindTaskSwitchColumn Kind = "task.switchColumn"

	KindSubtaskCreate Kind = "subtask.create"
	KindSubtaskRename Kind = "subtask.rename"
	KindSubtaskDelete Kind = "subtask.delete"
	KindSubtaskToggle Kind = "subtask.toggle"
)

// Action is a mutation intent. The set of implementations is closed; every
// action carries the ids and values needed to compute the next state without
// looking anything else up, so the same value can be projected locally and
// applied by the store.
type Action interface {
	Kind() Kind
	isAction()
}

type BoardCreate struct {
	BoardID string `json:"boardId"`
	Name    string `json:"name"`
	Index   int    `json:"index"`
}

type BoardRename struct {
	BoardID string `json:"boardId"`
	Name    string `json:"name"`
}

type BoardDelete struct {
	BoardID string `json:"boardId"`
}

type BoardMakeCurrent struct {
	BoardID string `json:"boardId"`
}

type ColumnCreate struct {
	BoardID  string `json:"boardId"`
	ColumnID string `json:"columnId"`
	Name     string `json:"name"`
	Index    int    `json:"index"`
}

type ColumnRename struct {
	BoardID  string `json:"boardId"`
	ColumnID string `json:"columnId"`
	Name     string `json:"name"`
}

type ColumnDelete struct {
	BoardID  string `json:"boardId"`
	ColumnID string `json:"columnId"`
}

type TaskCreate struct {
	ColumnID string `json:"columnId"`
	TaskID   string `json:"taskId"`
	Name     string `json:"name"`
	Index    int    `json:"index"`
}

type TaskRename struct {
	ColumnID string `json:"columnId"`
	TaskID   string `json:"taskId"`
	Name     string `json:"name"`
}

type TaskDelete struct {
	ColumnID string `json:"columnId"`
	TaskID   string `json:"taskId"`
}

type TaskToggle struct {
	ColumnID  string `json:"columnId"`
	TaskID    string `json:"taskId"`
	Completed bool   `json:"completed"`
}

// TaskSwitchColumn moves a task to NewIndex in NewColumnID. When both columns
// are the same and the task moves later (OldIndex < NewIndex), NewIndex names
// the slot before the task currently at NewIndex, so the task ends up at
// NewIndex-1.
type TaskSwitchColumn struct {
	TaskID      string `json:"taskId"`
	OldColumnID string `json:"oldColumnId"`
	NewColumnID string `json:"newColumnId"`
	OldIndex    int    `json:"oldIndex"`
	NewIndex    int    `json:"newIndex"`
}

type SubtaskCreate struct {
	TaskID    string `json:"taskId"`
	SubtaskID string `json:"subtaskId"`
	Name      string `json:"name"`
	Index     int    `json:"index"`
}

type SubtaskRename struct {
	TaskID    string `json:"taskId"`
	SubtaskID string `json:"subtaskId"`
	Name      string `json:"name"`
}

type SubtaskDelete struct {
	TaskID    string `json:"taskId"`
	SubtaskID string `json:"subtaskId"`
}

type SubtaskToggle struct {
	TaskID    string `json:"taskId"`
	SubtaskID string `json:"subtaskId"`
	Completed bool   `json:"completed"`
}

func (BoardCreate) Kind() Kind      { return KindBoardCreate }
func (BoardRename) Kind() Kind      { return KindBoardRename }
func (BoardDelete) Kind() Kind      { return KindBoardDelete }
func (BoardMakeCurrent) Kind() Kind { return KindBoardMakeCurrent }
func (ColumnCreate) Kind() Kind     { return KindColumnCreate }
func (ColumnRename) Kind() Kind     { return KindColumnRename }
func (ColumnDelete) Kind() Kind     { return KindColumnDelete }
func (TaskCreate) Kind() Kind       { return KindTaskCreate }
func (TaskRename) Kind() Kind       { return KindTaskRename }
func (TaskDelete) Kind() Kind       { return KindTaskDelete }
func (TaskToggle) Kind() Kind       { return KindTaskToggle }
func (TaskSwitchColumn) Kind() Kind { return KindTaskSwitchColumn }
func (SubtaskCreate) Kind() Kind    { return KindSubtaskCreate }
func (SubtaskRename) Kind() Kind    { return KindSubtaskRename }
func (SubtaskDelete) Kind() Kind    { return KindSubtaskDelete }
func (SubtaskToggle) Kind() Kind    { return KindSubtaskToggle }

func (BoardCreate) isAction()      {}
func (BoardRename) isAction()      {}
func (BoardDelete) isAction()      {}
func (BoardMakeCurrent) isAction() {}
func (ColumnCreate) isAction()     {}
func (ColumnRename) isAction()     {}
func (ColumnDelete) isAction()     {}
func (TaskCreate) isAction()       {}
func (TaskRename) isAction()       {}
func (TaskDelete) isAction()       {}
func (TaskToggle) isAction()       {}
func (TaskSwitchColumn) isAction() {}
func (SubtaskCreate) isAction()    {}
func (SubtaskRename) isAction()    {}
func (SubtaskDelete) isAction()    {}
func (SubtaskToggle) isAction()    {}
