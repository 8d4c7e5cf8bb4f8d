package views

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tgienger/taskflow/internal/models"
	"github.com/tgienger/taskflow/internal/store"
)

func newTestTaskView(t *testing.T) (*TaskView, *store.Store, models.Task) {
	t.Helper()
	st := newTestStore(t)
	task := addTasks(t, st, "Work", "Read the manual")[0]
	v := NewTaskView(st, newTestStyles(), task.ID)
	v.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	v.Update(v.Init()())
	return v, st, task
}

func TestTaskViewComments(t *testing.T) {
	t.Parallel()
	v, st, task := newTestTaskView(t)

	assert.Contains(t, plain(v), "Read the manual")
	assert.Contains(t, plain(v), "No comments yet")

	press(v, keyRunes("c"))
	require.True(t, v.commentInputFocused)
	press(v, keyRunes("chapter one"), keySave)
	assert.False(t, v.commentInputFocused)

	got, err := st.Task(task.ID)
	require.NoError(t, err)
	require.Len(t, got.Comments, 1)
	assert.Equal(t, "chapter one", got.Comments[0].Text)
	assert.Contains(t, plain(v), "chapter one")

	press(v, keyRunes("d"))
	assert.Contains(t, plain(v), "Delete Comment?")
	press(v, keyRunes("y"))
	got, err = st.Task(task.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Comments)
}

func TestTaskViewEmptyComment(t *testing.T) {
	t.Parallel()
	v, _, _ := newTestTaskView(t)

	press(v, keyRunes("c"), keySave)
	assert.True(t, v.commentInputFocused)
	assert.Equal(t, statusError, v.status.level)
	press(v, keyEsc)
	assert.False(t, v.commentInputFocused)
}

func TestTaskViewEditAndComplete(t *testing.T) {
	t.Parallel()
	v, st, task := newTestTaskView(t)

	press(v, keyRunes("e"))
	v.editInput.SetValue("Read the whole manual")
	press(v, keyEnter)
	got, err := st.Task(task.ID)
	require.NoError(t, err)
	assert.Equal(t, "Read the whole manual", got.Text)

	press(v, keyRunes("x"))
	assert.True(t, v.task.Completed)
	assert.Contains(t, plain(v), "Completed just now")
	press(v, keyRunes("x"))
	assert.False(t, v.task.Completed)
}

func TestTaskViewDeletedTaskGoesBack(t *testing.T) {
	t.Parallel()
	v, st, task := newTestTaskView(t)
	require.NoError(t, st.DeleteTask(task.ID))

	cmd := v.Init()
	_, back := v.Update(cmd())
	require.NotNil(t, back)
	assert.Equal(t, BackToBoard{}, back())
}
