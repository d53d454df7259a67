package board

import (
	"math/rand"
	"strconv"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testOwner = "owner-1"

// uid derives a stable UUID from a readable name.
func uid(name string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(name)).String()
}

type col struct {
	name  string
	tasks []string
}

// boardWith builds a single-board tree whose columns and tasks are created
// through Project, so fixtures obey the same rules as everything else.
func boardWith(t *testing.T, cols ...col) Tree {
	t.Helper()
	actions := []Action{BoardCreate{BoardID: uid("board"), Name: "Main", Index: 1}}
	for ci, c := range cols {
		actions = append(actions, ColumnCreate{BoardID: uid("board"), ColumnID: uid(c.name), Name: c.name, Index: ci + 1})
		for ti, task := range c.tasks {
			actions = append(actions, TaskCreate{ColumnID: uid(c.name), TaskID: uid(task), Name: task, Index: ti + 1})
		}
	}
	tree := ProjectAll(Tree{OwnerID: testOwner}, actions)
	require.NoError(t, CheckDensity(tree))
	return tree
}

func columnOf(t *testing.T, tree Tree, name string) Column {
	t.Helper()
	c := tree.column(uid(name))
	require.NotNil(t, c, "column %s", name)
	return *c
}

func taskNames(c Column) []string {
	out := make([]string, len(c.Tasks))
	for i, tk := range c.Tasks {
		out[i] = tk.Name
	}
	return out
}

func taskIndices(c Column) []int {
	out := make([]int, len(c.Tasks))
	for i, tk := range c.Tasks {
		out[i] = tk.Index
	}
	return out
}

func TestProject_DeleteTaskCompactsIndices(t *testing.T) {
	tree := boardWith(t, col{"Todo", []string{"a", "b", "c", "d"}})

	next := Project(tree, TaskDelete{ColumnID: uid("Todo"), TaskID: uid("b")})

	c := columnOf(t, next, "Todo")
	assert.Equal(t, []string{"a", "c", "d"}, taskNames(c))
	assert.Equal(t, []int{1, 2, 3}, taskIndices(c))
	require.NoError(t, CheckDensity(next))
}

func TestProject_SwitchColumn_SameColumnUp(t *testing.T) {
	tree := boardWith(t, col{"Todo", []string{"a", "b", "c", "d", "e"}})

	next := Project(tree, TaskSwitchColumn{
		TaskID: uid("d"), OldColumnID: uid("Todo"), NewColumnID: uid("Todo"), OldIndex: 4, NewIndex: 2,
	})

	c := columnOf(t, next, "Todo")
	assert.Equal(t, []string{"a", "d", "b", "c", "e"}, taskNames(c))
	assert.Equal(t, []int{1, 2, 3, 4, 5}, taskIndices(c))
}

func TestProject_SwitchColumn_SameColumnDownLandsOneBefore(t *testing.T) {
	tree := boardWith(t, col{"Todo", []string{"a", "b", "c", "d", "e"}})

	next := Project(tree, TaskSwitchColumn{
		TaskID: uid("b"), OldColumnID: uid("Todo"), NewColumnID: uid("Todo"), OldIndex: 2, NewIndex: 4,
	})

	c := columnOf(t, next, "Todo")
	// b lands at 3, c moves from 3 to 2, d and e keep their slots.
	assert.Equal(t, []string{"a", "c", "b", "d", "e"}, taskNames(c))
	assert.Equal(t, []int{1, 2, 3, 4, 5}, taskIndices(c))
}

func TestProject_SwitchColumn_SameColumnToEnd(t *testing.T) {
	tree := boardWith(t, col{"Todo", []string{"a", "b", "c"}})

	next := Project(tree, TaskSwitchColumn{
		TaskID: uid("a"), OldColumnID: uid("Todo"), NewColumnID: uid("Todo"), OldIndex: 1, NewIndex: 4,
	})

	assert.Equal(t, []string{"b", "c", "a"}, taskNames(columnOf(t, next, "Todo")))
}

func TestProject_SwitchColumn_AdjacentSlotIsNoChange(t *testing.T) {
	tree := boardWith(t, col{"Todo", []string{"a", "b", "c"}})

	next := Project(tree, TaskSwitchColumn{
		TaskID: uid("b"), OldColumnID: uid("Todo"), NewColumnID: uid("Todo"), OldIndex: 2, NewIndex: 3,
	})

	assert.Equal(t, tree, next)
}

func TestProject_SwitchColumn_CrossColumn(t *testing.T) {
	tree := boardWith(t,
		col{"A", []string{"a1", "a2", "a3"}},
		col{"B", []string{"b1", "b2"}},
	)

	next := Project(tree, TaskSwitchColumn{
		TaskID: uid("a2"), OldColumnID: uid("A"), NewColumnID: uid("B"), OldIndex: 2, NewIndex: 2,
	})

	a := columnOf(t, next, "A")
	b := columnOf(t, next, "B")
	assert.Equal(t, []string{"a1", "a3"}, taskNames(a))
	assert.Equal(t, []int{1, 2}, taskIndices(a))
	assert.Equal(t, []string{"b1", "a2", "b2"}, taskNames(b))
	assert.Equal(t, []int{1, 2, 3}, taskIndices(b))
	assert.Equal(t, uid("B"), b.Tasks[1].ColumnID)
	require.NoError(t, CheckDensity(next))
}

func TestProject_SwitchColumn_StaleOldIndexIsNoop(t *testing.T) {
	tree := boardWith(t, col{"Todo", []string{"a", "b", "c"}})

	next := Project(tree, TaskSwitchColumn{
		TaskID: uid("b"), OldColumnID: uid("Todo"), NewColumnID: uid("Todo"), OldIndex: 3, NewIndex: 1,
	})

	assert.Equal(t, tree, next)
}

func TestProject_SwitchColumn_TargetOutOfRangeIsNoop(t *testing.T) {
	tree := boardWith(t, col{"A", []string{"a1"}}, col{"B", []string{"b1"}})

	next := Project(tree, TaskSwitchColumn{
		TaskID: uid("a1"), OldColumnID: uid("A"), NewColumnID: uid("B"), OldIndex: 1, NewIndex: 5,
	})

	assert.Equal(t, tree, next)
}

func TestProject_UnknownIDIsNoop(t *testing.T) {
	tree := boardWith(t, col{"Todo", []string{"a"}})

	for _, a := range []Action{
		BoardRename{BoardID: uid("nope"), Name: "x"},
		ColumnDelete{BoardID: uid("board"), ColumnID: uid("nope")},
		TaskToggle{ColumnID: uid("Todo"), TaskID: uid("nope"), Completed: true},
		SubtaskCreate{TaskID: uid("nope"), SubtaskID: uid("s"), Name: "s", Index: 1},
	} {
		assert.Equal(t, tree, Project(tree, a), "%s", a.Kind())
	}
}

func TestProject_DoesNotModifyInput(t *testing.T) {
	tree := boardWith(t, col{"Todo", []string{"a", "b", "c"}})
	before := tree.Clone()

	_ = Project(tree, TaskSwitchColumn{
		TaskID: uid("c"), OldColumnID: uid("Todo"), NewColumnID: uid("Todo"), OldIndex: 3, NewIndex: 1,
	})
	_ = Project(tree, TaskDelete{ColumnID: uid("Todo"), TaskID: uid("a")})

	assert.Equal(t, before, tree)
}

func TestProject_CreateWithinShiftsLaterSiblings(t *testing.T) {
	tree := boardWith(t, col{"Todo", []string{"a", "b"}})

	next := Project(tree, TaskCreate{ColumnID: uid("Todo"), TaskID: uid("first"), Name: "  first  ", Index: 1})

	c := columnOf(t, next, "Todo")
	assert.Equal(t, []string{"first", "a", "b"}, taskNames(c))
	assert.Equal(t, []int{1, 2, 3}, taskIndices(c))
}

func TestProject_CreateOutOfRangeIsNoop(t *testing.T) {
	tree := boardWith(t, col{"Todo", []string{"a"}})

	next := Project(tree, TaskCreate{ColumnID: uid("Todo"), TaskID: uid("x"), Name: "x", Index: 3})

	assert.Equal(t, tree, next)
}

// Ids are unique across the whole tree, not just within a sibling group.
func TestProject_CreateWithExistingIDIsNoop(t *testing.T) {
	tree := boardWith(t, col{"Todo", []string{"a"}}, col{"Done", nil})
	tree = Project(tree, SubtaskCreate{TaskID: uid("a"), SubtaskID: uid("s"), Name: "s", Index: 1})
	tree = Project(tree, TaskCreate{ColumnID: uid("Done"), TaskID: uid("b"), Name: "b", Index: 1})

	for _, a := range []Action{
		BoardCreate{BoardID: uid("board"), Name: "again", Index: 1},
		ColumnCreate{BoardID: uid("board"), ColumnID: uid("Done"), Name: "again", Index: 1},
		TaskCreate{ColumnID: uid("Done"), TaskID: uid("a"), Name: "again", Index: 1},
		SubtaskCreate{TaskID: uid("b"), SubtaskID: uid("s"), Name: "again", Index: 1},
	} {
		assert.Equal(t, tree, Project(tree, a), "%s", a.Kind())
	}
}

// Replaying a create-then-move batch onto a tree that already holds its
// result changes nothing.
func TestProject_ReplayOfCommittedBatchIsNoop(t *testing.T) {
	tree := boardWith(t, col{"Todo", nil}, col{"Done", nil})
	batch := []Action{
		TaskCreate{ColumnID: uid("Todo"), TaskID: uid("x"), Name: "x", Index: 1},
		TaskSwitchColumn{TaskID: uid("x"), OldColumnID: uid("Todo"), NewColumnID: uid("Done"), OldIndex: 1, NewIndex: 1},
	}
	committed := ProjectAll(tree, batch)

	assert.Equal(t, committed, ProjectAll(committed, batch))
	assert.Equal(t, []string{"x"}, taskNames(columnOf(t, committed, "Done")))
}

func TestProject_InvalidActionIsNoop(t *testing.T) {
	tree := boardWith(t, col{"Todo", []string{"a"}})

	for _, a := range []Action{
		TaskCreate{ColumnID: uid("Todo"), TaskID: uid("x"), Name: "   ", Index: 1},
		TaskRename{ColumnID: uid("Todo"), TaskID: uid("a"), Name: strings.Repeat("y", MaxTaskNameLength+1)},
		BoardRename{BoardID: uid("board"), Name: strings.Repeat("y", MaxBoardNameLength+1)},
		TaskCreate{ColumnID: uid("Todo"), TaskID: "not-a-uuid", Name: "x", Index: 1},
	} {
		assert.Equal(t, tree, Project(tree, a), "%s", a.Kind())
	}
}

func TestProject_CurrentBoardSingleton(t *testing.T) {
	tree := Tree{OwnerID: testOwner}
	for i, n := range []string{"one", "two", "three"} {
		tree = Project(tree, BoardCreate{BoardID: uid(n), Name: n, Index: i + 1})
		require.NoError(t, CheckDensity(tree))
	}
	cur, ok := tree.CurrentBoard()
	require.True(t, ok)
	assert.Equal(t, "three", cur.Name, "new board becomes current")

	tree = Project(tree, BoardMakeCurrent{BoardID: uid("two")})
	cur, _ = tree.CurrentBoard()
	assert.Equal(t, "two", cur.Name)
	require.NoError(t, CheckDensity(tree))

	tree = Project(tree, BoardDelete{BoardID: uid("two")})
	cur, _ = tree.CurrentBoard()
	assert.Equal(t, "one", cur.Name, "board now at index 1 takes over")
	require.NoError(t, CheckDensity(tree))

	tree = Project(tree, BoardDelete{BoardID: uid("three")})
	cur, _ = tree.CurrentBoard()
	assert.Equal(t, "one", cur.Name, "deleting a non-current board keeps the current one")

	tree = Project(tree, BoardDelete{BoardID: uid("one")})
	_, ok = tree.CurrentBoard()
	assert.False(t, ok)
	assert.Empty(t, tree.Boards)
	require.NoError(t, CheckDensity(tree))
}

func TestProject_DeleteNonFirstCurrentBoard(t *testing.T) {
	tree := Tree{OwnerID: testOwner}
	tree = Project(tree, BoardCreate{BoardID: uid("one"), Name: "one", Index: 1})
	tree = Project(tree, BoardCreate{BoardID: uid("two"), Name: "two", Index: 2})
	tree = Project(tree, BoardDelete{BoardID: uid("one")})

	require.Len(t, tree.Boards, 1)
	assert.Equal(t, 1, tree.Boards[0].Index)
	assert.True(t, tree.Boards[0].Current)
}

func TestProject_Subtasks(t *testing.T) {
	tree := boardWith(t, col{"Todo", []string{"a"}})
	tree = ProjectAll(tree, []Action{
		SubtaskCreate{TaskID: uid("a"), SubtaskID: uid("s1"), Name: "s1", Index: 1},
		SubtaskCreate{TaskID: uid("a"), SubtaskID: uid("s2"), Name: "s2", Index: 2},
		SubtaskCreate{TaskID: uid("a"), SubtaskID: uid("s0"), Name: "s0", Index: 1},
		SubtaskToggle{TaskID: uid("a"), SubtaskID: uid("s1"), Completed: true},
		SubtaskRename{TaskID: uid("a"), SubtaskID: uid("s2"), Name: "second"},
		SubtaskDelete{TaskID: uid("a"), SubtaskID: uid("s0")},
	})

	subs := columnOf(t, tree, "Todo").Tasks[0].Subtasks
	require.Len(t, subs, 2)
	assert.Equal(t, "s1", subs[0].Name)
	assert.Equal(t, 1, subs[0].Index)
	assert.True(t, subs[0].Completed)
	assert.Equal(t, "second", subs[1].Name)
	assert.Equal(t, 2, subs[1].Index)
	require.NoError(t, CheckDensity(tree))
}

func TestProject_ColumnDeleteDropsDescendants(t *testing.T) {
	tree := boardWith(t, col{"A", []string{"a1"}}, col{"B", []string{"b1"}}, col{"C", nil})

	next := Project(tree, ColumnDelete{BoardID: uid("board"), ColumnID: uid("A")})

	cols := next.Boards[0].Columns
	require.Len(t, cols, 2)
	assert.Equal(t, "B", cols[0].Name)
	assert.Equal(t, 1, cols[0].Index)
	assert.Equal(t, "C", cols[1].Name)
	assert.Equal(t, 2, cols[1].Index)
	assert.Nil(t, next.taskByID(uid("a1")))
}

// Random create/delete/move sequences never break density.
func TestProject_DensityUnderRandomActions(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	names := []string{"A", "B", "C"}
	tree := boardWith(t, col{"A", nil}, col{"B", nil}, col{"C", nil})
	next := 0

	for step := 0; step < 2000; step++ {
		c := columnOf(t, tree, names[rng.Intn(len(names))])
		n := len(c.Tasks)
		var a Action
		switch op := rng.Intn(4); {
		case op == 0 || n == 0:
			next++
			a = TaskCreate{ColumnID: c.ID, TaskID: uid("task-" + strconv.Itoa(next)), Name: "t", Index: 1 + rng.Intn(n+1)}
		case op == 1:
			a = TaskDelete{ColumnID: c.ID, TaskID: c.Tasks[rng.Intn(n)].ID}
		default:
			tk := c.Tasks[rng.Intn(n)]
			dst := columnOf(t, tree, names[rng.Intn(len(names))])
			a = TaskSwitchColumn{
				TaskID: tk.ID, OldColumnID: c.ID, NewColumnID: dst.ID,
				OldIndex: tk.Index, NewIndex: 1 + rng.Intn(len(dst.Tasks)+1),
			}
		}
		tree = Project(tree, a)
		require.NoError(t, CheckDensity(tree), "step %d: %#v", step, a)
	}
}
