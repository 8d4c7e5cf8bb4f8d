package views

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tgienger/taskflow/internal/store"
)

func newTestProjectList(t *testing.T) (*ProjectListView, *store.Store) {
	t.Helper()
	st := newTestStore(t)
	v := NewProjectListView(st, newTestStyles())
	v.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	v.Update(v.Init()())
	return v, st
}

// settle feeds a reload command back into the view
func settle(t *testing.T, v tea.Model, cmd tea.Cmd) tea.Msg {
	t.Helper()
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if _, ok := msg.(projectsLoadedMsg); ok {
		v.Update(msg)
	}
	return msg
}

func TestProjectListLoads(t *testing.T) {
	t.Parallel()
	v, st := newTestProjectList(t)
	addTasks(t, st, "Work", "A", "B")
	settle(t, v, v.Init())

	require.Len(t, v.list.Items(), 2)
	item := v.list.Items()[0].(projectItem)
	assert.Equal(t, "Work", item.project.Name)
	assert.Equal(t, 2, item.open)
	assert.Contains(t, plain(v), "Personal")
}

func TestProjectListCreate(t *testing.T) {
	t.Parallel()
	v, st := newTestProjectList(t)

	press(v, keyRunes("n"), keyRunes("Errands"), keyTab, keyRunes("#ff0000"))
	cmd := press(v, keySave)
	require.NotNil(t, cmd)
	assert.Equal(t, SelectedProject{Name: "Errands"}, cmd())

	p, err := st.Project("Errands")
	require.NoError(t, err)
	assert.Equal(t, "#ff0000", p.Color)
	assert.False(t, v.creating)
}

func TestProjectListCreateDuplicate(t *testing.T) {
	t.Parallel()
	v, st := newTestProjectList(t)

	press(v, keyRunes("n"), keyRunes("Work"))
	cmd := press(v, keySave)
	assert.Nil(t, cmd)
	assert.True(t, v.creating)
	assert.Equal(t, statusError, v.status.level)
	assert.Len(t, st.ListProjects(), 2)
}

func TestProjectListRename(t *testing.T) {
	t.Parallel()
	v, st := newTestProjectList(t)
	addTasks(t, st, "Work", "A")

	press(v, keyRunes("r"))
	require.True(t, v.renaming)
	v.newName.SetValue("Office")
	settle(t, v, press(v, keyEnter))

	assert.False(t, v.renaming)
	assert.Equal(t, []string{"A"}, texts(st.ListTasksByProject("Office", false)))
	assert.Equal(t, "Office", v.list.Items()[0].(projectItem).project.Name)
}

func TestProjectListRecolor(t *testing.T) {
	t.Parallel()
	v, st := newTestProjectList(t)

	press(v, keyRunes("C"))
	require.True(t, v.recoloring)
	v.newColor.SetValue("zzz")
	press(v, keyEnter)
	assert.True(t, v.recoloring, "invalid color keeps the form open")

	v.newColor.SetValue("00FF00")
	settle(t, v, press(v, keyEnter))
	p, err := st.Project("Work")
	require.NoError(t, err)
	assert.Equal(t, "#00ff00", p.Color)
}

func TestProjectListHideAndOpen(t *testing.T) {
	t.Parallel()
	v, st := newTestProjectList(t)

	settle(t, v, press(v, keyRunes("v")))
	assert.Len(t, st.ListVisibleProjects(), 1)
	assert.Contains(t, v.list.Items()[0].(projectItem).Title(), "(hidden)")

	// opening a hidden project shows it again
	cmd := press(v, keyEnter)
	require.NotNil(t, cmd)
	assert.Equal(t, SelectedProject{Name: "Work"}, cmd())
	assert.Len(t, st.ListVisibleProjects(), 2)
}

func TestProjectListDelete(t *testing.T) {
	t.Parallel()
	v, st := newTestProjectList(t)
	addTasks(t, st, "Work", "A")

	press(v, keyRunes("d"))
	assert.Contains(t, plain(v), "Delete Project?")
	settle(t, v, press(v, keyRunes("y")))

	assert.Len(t, st.ListProjects(), 1)
	assert.Empty(t, st.ListTasksByProject("Work", true))
	assert.Len(t, v.list.Items(), 1)
}

func TestProjectListBack(t *testing.T) {
	t.Parallel()
	v, _ := newTestProjectList(t)

	cmd := press(v, keyEsc)
	require.NotNil(t, cmd)
	assert.Equal(t, BackToBoard{}, cmd())
}
