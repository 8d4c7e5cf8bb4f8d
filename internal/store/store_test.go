package store

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tgienger/taskflow/internal/models"
)

type memPersister struct {
	state   models.State
	saves   int
	loadErr error
	saveErr error
}

func (m *memPersister) Load() (models.State, error) {
	return m.state, m.loadErr
}

func (m *memPersister) Save(st models.State) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saves++
	m.state = st
	return nil
}

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time {
	c.t = c.t.Add(time.Minute)
	return c.t
}

func newTestStore(t *testing.T, projects ...string) (*Store, *memPersister) {
	t.Helper()
	clock := &fakeClock{t: time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)}
	n := 0
	ids := func() models.ID {
		n++
		return models.ID(fmt.Sprintf("id-%03d", n))
	}
	p := &memPersister{}
	if len(projects) == 0 {
		projects = []string{"Work", "Personal"}
	}
	s, err := New(p, WithClock(clock.now), WithIDs(ids), WithDefaultProjects(projects))
	require.NoError(t, err)
	return s, p
}

func addTasks(t *testing.T, s *Store, project string, texts ...string) []models.Task {
	t.Helper()
	out := make([]models.Task, 0, len(texts))
	for _, text := range texts {
		task, err := s.AddTask(text, project)
		require.NoError(t, err)
		out = append(out, task)
	}
	return out
}

func texts(tasks []models.Task) []string {
	out := make([]string, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.Text)
	}
	return out
}

// requireDense checks that every project's incomplete tasks are ranked 0..n-1
func requireDense(t *testing.T, s *Store) {
	t.Helper()
	byProject := map[string][]int{}
	for _, task := range s.Snapshot().Todos {
		if !task.Completed {
			byProject[task.Project] = append(byProject[task.Project], task.Priority)
		}
	}
	for project, prios := range byProject {
		sort.Ints(prios)
		for i, p := range prios {
			require.Equalf(t, i, p, "project %s priorities %v", project, prios)
		}
	}
}

func TestAddTask_AppendsToColumn(t *testing.T) {
	t.Parallel()
	s, p := newTestStore(t)

	tasks := addTasks(t, s, "Work", "Buy milk", "Write report")

	assert.Equal(t, 0, tasks[0].Priority)
	assert.Equal(t, 1, tasks[1].Priority)
	assert.Equal(t, []string{"Buy milk", "Write report"}, texts(s.ListTasksByProject("Work", false)))
	assert.Empty(t, tasks[0].Comments)
	assert.False(t, tasks[0].Completed)
	assert.Nil(t, tasks[0].CompletedAt)
	assert.Equal(t, 2, p.saves)
}

func TestAddTask_Validation(t *testing.T) {
	t.Parallel()
	s, p := newTestStore(t)

	_, err := s.AddTask("   ", "Work")
	require.ErrorIs(t, err, ErrValidation)

	_, err = s.AddTask("Buy milk", "Nope")
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "project", ve.Field)

	assert.Empty(t, s.Snapshot().Todos)
	assert.Zero(t, p.saves)
}

func TestDeleteTask_ClosesGap(t *testing.T) {
	t.Parallel()
	s, _ := newTestStore(t)
	tasks := addTasks(t, s, "Work", "a", "b", "c")

	require.NoError(t, s.DeleteTask(tasks[1].ID))

	got := s.ListTasksByProject("Work", false)
	assert.Equal(t, []string{"a", "c"}, texts(got))
	assert.Equal(t, 0, got[0].Priority)
	assert.Equal(t, 1, got[1].Priority)

	require.ErrorIs(t, s.DeleteTask(tasks[1].ID), ErrNotFound)
}

func TestToggleComplete_RoundTrip(t *testing.T) {
	t.Parallel()
	s, _ := newTestStore(t)
	tasks := addTasks(t, s, "Work", "a", "b", "c")
	_, err := s.AddComment(tasks[0].ID, "first")
	require.NoError(t, err)
	_, err = s.AddComment(tasks[0].ID, "second")
	require.NoError(t, err)
	withComments, err := s.Task(tasks[0].ID)
	require.NoError(t, err)

	done, err := s.ToggleComplete(tasks[0].ID)
	require.NoError(t, err)
	require.True(t, done.Completed)
	require.NotNil(t, done.CompletedAt)
	assert.Equal(t, []string{"b", "c"}, texts(s.ListTasksByProject("Work", false)))
	requireDense(t, s)

	reopened, err := s.ToggleComplete(tasks[0].ID)
	require.NoError(t, err)
	assert.False(t, reopened.Completed)
	assert.Nil(t, reopened.CompletedAt)
	assert.Equal(t, 2, reopened.Priority)
	assert.Equal(t, withComments.Comments, reopened.Comments)
	assert.Equal(t, []string{"b", "c", "a"}, texts(s.ListTasksByProject("Work", false)))
	requireDense(t, s)

	_, err = s.ToggleComplete("missing")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestListCompletedTasks_NewestFirst(t *testing.T) {
	t.Parallel()
	s, _ := newTestStore(t)
	w := addTasks(t, s, "Work", "w1", "w2")
	p := addTasks(t, s, "Personal", "p1")

	for _, id := range []models.ID{w[1].ID, p[0].ID, w[0].ID} {
		_, err := s.ToggleComplete(id)
		require.NoError(t, err)
	}

	assert.Equal(t, []string{"w1", "p1", "w2"}, texts(s.ListCompletedTasks("")))
	assert.Equal(t, []string{"w1", "w2"}, texts(s.ListCompletedTasks("Work")))
	assert.Equal(t, []string{"w1", "w2"}, texts(s.ListTasksByProject("Work", true)))
}

func TestMoveTask_SameProject(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		move   int
		before int // -1 means end of column
		want   []string
	}{
		{name: "already before target", move: 0, before: 1, want: []string{"a", "b", "c", "d"}},
		{name: "down one", move: 0, before: 2, want: []string{"b", "a", "c", "d"}},
		{name: "down to end", move: 0, before: -1, want: []string{"b", "c", "d", "a"}},
		{name: "up to top", move: 3, before: 0, want: []string{"d", "a", "b", "c"}},
		{name: "up one", move: 2, before: 1, want: []string{"a", "c", "b", "d"}},
		{name: "last to end", move: 3, before: -1, want: []string{"a", "b", "c", "d"}},
		{name: "onto itself", move: 1, before: 1, want: []string{"a", "b", "c", "d"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s, _ := newTestStore(t)
			tasks := addTasks(t, s, "Work", "a", "b", "c", "d")

			var before models.ID
			if tt.before >= 0 {
				before = tasks[tt.before].ID
			}
			require.NoError(t, s.MoveTask(tasks[tt.move].ID, "Work", before))

			assert.Equal(t, tt.want, texts(s.ListTasksByProject("Work", false)))
			requireDense(t, s)
		})
	}
}

func TestMoveTask_AcrossProjects(t *testing.T) {
	t.Parallel()
	s, _ := newTestStore(t)
	w := addTasks(t, s, "Work", "w1", "w2", "w3")
	p := addTasks(t, s, "Personal", "p1", "p2")

	require.NoError(t, s.MoveTask(w[0].ID, "Personal", p[1].ID))
	assert.Equal(t, []string{"w2", "w3"}, texts(s.ListTasksByProject("Work", false)))
	assert.Equal(t, []string{"p1", "w1", "p2"}, texts(s.ListTasksByProject("Personal", false)))
	requireDense(t, s)

	require.NoError(t, s.MoveTask(w[2].ID, "Personal", ""))
	moved, err := s.Task(w[2].ID)
	require.NoError(t, err)
	assert.Equal(t, "Personal", moved.Project)
	assert.Equal(t, 3, moved.Priority)
	requireDense(t, s)
}

func TestMoveTask_OnlyTaskToOtherProject(t *testing.T) {
	t.Parallel()
	s, _ := newTestStore(t)
	a := addTasks(t, s, "Work", "a")[0]
	addTasks(t, s, "Personal", "p1", "p2")

	require.NoError(t, s.MoveTask(a.ID, "Personal", ""))

	assert.Empty(t, s.ListTasksByProject("Work", false))
	moved, err := s.Task(a.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, moved.Priority)
}

func TestMoveTask_Validation(t *testing.T) {
	t.Parallel()
	s, p := newTestStore(t)
	w := addTasks(t, s, "Work", "w1", "w2", "w3")
	pt := addTasks(t, s, "Personal", "p1")
	_, err := s.ToggleComplete(w[2].ID)
	require.NoError(t, err)
	before := s.Snapshot()
	saves := p.saves

	require.ErrorIs(t, s.MoveTask("missing", "Work", ""), ErrNotFound)
	require.ErrorIs(t, s.MoveTask(w[0].ID, "Work", "missing"), ErrNotFound)
	require.ErrorIs(t, s.MoveTask(w[0].ID, "Nope", ""), ErrValidation)
	require.ErrorIs(t, s.MoveTask(w[0].ID, "Work", w[2].ID), ErrValidation)
	require.ErrorIs(t, s.MoveTask(w[0].ID, "Work", pt[0].ID), ErrValidation)
	require.ErrorIs(t, s.MoveTask(w[2].ID, "Work", ""), ErrValidation)

	assert.Equal(t, before, s.Snapshot())
	assert.Equal(t, saves, p.saves)
}

func TestMoveTaskUpDown(t *testing.T) {
	t.Parallel()
	s, _ := newTestStore(t)
	tasks := addTasks(t, s, "Work", "a", "b", "c")

	require.NoError(t, s.MoveTaskDown(tasks[0].ID))
	assert.Equal(t, []string{"b", "a", "c"}, texts(s.ListTasksByProject("Work", false)))

	require.NoError(t, s.MoveTaskDown(tasks[0].ID))
	assert.Equal(t, []string{"b", "c", "a"}, texts(s.ListTasksByProject("Work", false)))

	require.NoError(t, s.MoveTaskDown(tasks[0].ID))
	assert.Equal(t, []string{"b", "c", "a"}, texts(s.ListTasksByProject("Work", false)))

	require.NoError(t, s.MoveTaskUp(tasks[2].ID))
	assert.Equal(t, []string{"c", "b", "a"}, texts(s.ListTasksByProject("Work", false)))

	require.NoError(t, s.MoveTaskUp(tasks[2].ID))
	assert.Equal(t, []string{"c", "b", "a"}, texts(s.ListTasksByProject("Work", false)))
	requireDense(t, s)
}

func TestComments(t *testing.T) {
	t.Parallel()
	s, _ := newTestStore(t)
	task := addTasks(t, s, "Work", "a")[0]

	_, err := s.AddComment(task.ID, "  ")
	require.ErrorIs(t, err, ErrValidation)
	_, err = s.AddComment("missing", "hi")
	require.ErrorIs(t, err, ErrNotFound)

	c1, err := s.AddComment(task.ID, "one")
	require.NoError(t, err)
	c2, err := s.AddComment(task.ID, "two")
	require.NoError(t, err)
	require.NotEqual(t, c1.ID, c2.ID)
	assert.True(t, c2.CreatedAt.After(c1.CreatedAt))

	require.NoError(t, s.DeleteComment(task.ID, c1.ID))
	got, err := s.Task(task.ID)
	require.NoError(t, err)
	require.Len(t, got.Comments, 1)
	assert.Equal(t, "two", got.Comments[0].Text)

	require.ErrorIs(t, s.DeleteComment(task.ID, c1.ID), ErrNotFound)
	require.ErrorIs(t, s.DeleteComment("missing", c2.ID), ErrNotFound)
}

func TestProjects(t *testing.T) {
	t.Parallel()
	s, _ := newTestStore(t)

	_, err := s.AddProject("", "")
	require.ErrorIs(t, err, ErrValidation)
	_, err = s.AddProject("Work", "")
	require.ErrorIs(t, err, ErrValidation)
	_, err = s.AddProject("Home", "not-a-color")
	require.ErrorIs(t, err, ErrValidation)

	home, err := s.AddProject("Home", "F80")
	require.NoError(t, err)
	assert.Equal(t, "#ff8800", home.Color)
	assert.False(t, home.Hidden)

	garden, err := s.AddProject("Garden", "")
	require.NoError(t, err)
	assert.NotEmpty(t, garden.Color)

	names := []string{}
	for _, p := range s.ListProjects() {
		names = append(names, p.Name)
	}
	assert.Equal(t, []string{"Work", "Personal", "Home", "Garden"}, names)
}

func TestRemoveProject_Cascades(t *testing.T) {
	t.Parallel()
	s, p := newTestStore(t)
	_, err := s.AddProject("X", "#123456")
	require.NoError(t, err)
	x := addTasks(t, s, "X", "x1", "x2")
	addTasks(t, s, "Work", "w1")
	_, err = s.ToggleComplete(x[0].ID)
	require.NoError(t, err)
	require.NoError(t, s.SetProjectHidden("X", true))

	require.NoError(t, s.RemoveProject("X"))

	assert.Empty(t, s.ListTasksByProject("X", true))
	for _, project := range s.ListProjects() {
		assert.NotEqual(t, "X", project.Name)
	}
	assert.NotContains(t, p.state.ProjectColors, "X")
	assert.NotContains(t, p.state.HiddenProjects, "X")
	assert.Len(t, s.ListTasksByProject("Work", false), 1)

	require.ErrorIs(t, s.RemoveProject("X"), ErrNotFound)
}

func TestRenameProject(t *testing.T) {
	t.Parallel()
	s, _ := newTestStore(t)
	addTasks(t, s, "Work", "a", "b")
	work, err := s.Project("Work")
	require.NoError(t, err)

	_, err = s.RenameProject("Work", "Personal")
	require.ErrorIs(t, err, ErrValidation)
	_, err = s.RenameProject("Nope", "Other")
	require.ErrorIs(t, err, ErrNotFound)

	renamed, err := s.RenameProject("Work", "Job")
	require.NoError(t, err)
	assert.Equal(t, work.Color, renamed.Color)
	assert.Equal(t, []string{"a", "b"}, texts(s.ListTasksByProject("Job", false)))
	assert.Empty(t, s.ListTasksByProject("Work", true))
}

func TestProjectVisibility(t *testing.T) {
	t.Parallel()
	s, _ := newTestStore(t)
	addTasks(t, s, "Personal", "p1")

	hidden, err := s.ToggleProjectHidden("Personal")
	require.NoError(t, err)
	assert.True(t, hidden)
	assert.Equal(t, 1, s.HiddenCount())
	require.Len(t, s.ListVisibleProjects(), 1)
	assert.Len(t, s.ListTasksByProject("Personal", false), 1)

	require.NoError(t, s.ShowAllProjects())
	assert.Zero(t, s.HiddenCount())

	_, err = s.ToggleProjectHidden("Nope")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestSetProjectColor(t *testing.T) {
	t.Parallel()
	s, _ := newTestStore(t)

	require.NoError(t, s.SetProjectColor("Work", "#ABCDEF"))
	work, err := s.Project("Work")
	require.NoError(t, err)
	assert.Equal(t, "#abcdef", work.Color)

	require.ErrorIs(t, s.SetProjectColor("Work", "zz"), ErrValidation)
	require.ErrorIs(t, s.SetProjectColor("Nope", "#000"), ErrNotFound)
}

func TestEditTask(t *testing.T) {
	t.Parallel()
	s, _ := newTestStore(t)
	task := addTasks(t, s, "Work", "a")[0]

	edited, err := s.EditTask(task.ID, " b ")
	require.NoError(t, err)
	assert.Equal(t, "b", edited.Text)
	_, err = s.EditTask(task.ID, "")
	require.ErrorIs(t, err, ErrValidation)
}

func TestRenumber_Idempotent(t *testing.T) {
	t.Parallel()
	s, _ := newTestStore(t)
	tasks := addTasks(t, s, "Work", "a", "b", "c", "d")

	// damage the ranking directly
	s.task(tasks[0].ID).Priority = 7
	s.task(tasks[1].ID).Priority = 3
	s.task(tasks[2].ID).Priority = 3
	s.task(tasks[3].ID).Priority = -2

	s.renumber("Work")
	once := s.Snapshot()
	s.renumber("Work")

	assert.Equal(t, once, s.Snapshot())
	assert.Equal(t, []string{"d", "b", "c", "a"}, texts(s.ListTasksByProject("Work", false)))
	requireDense(t, s)
}

func TestSaveFailure_KeepsMutation(t *testing.T) {
	t.Parallel()
	s, p := newTestStore(t)
	p.saveErr = errors.New("disk full")

	task, err := s.AddTask("a", "Work")
	require.Error(t, err)
	assert.True(t, IsStorageWarning(err))
	require.ErrorIs(t, err, ErrStorage)
	assert.Equal(t, "a", task.Text)
	assert.Len(t, s.ListTasksByProject("Work", false), 1)
}

func TestNew_SeedsDefaultsOnlyWhenEmpty(t *testing.T) {
	t.Parallel()

	s, err := New(&memPersister{})
	require.NoError(t, err)
	require.Len(t, s.ListProjects(), 2)
	assert.NotEqual(t, s.ListProjects()[0].Color, s.ListProjects()[1].Color)

	s, err = New(&memPersister{state: models.State{Projects: []string{}}})
	require.NoError(t, err)
	assert.Empty(t, s.ListProjects())

	_, err = New(&memPersister{loadErr: errors.New("corrupt")})
	require.ErrorIs(t, err, ErrStorage)
}

func TestNew_RepairsLoadedState(t *testing.T) {
	t.Parallel()
	done := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	p := &memPersister{state: models.State{
		Projects: []string{"Work"},
		Todos: []models.Task{
			{ID: "1", Text: "a", Project: "Work", Priority: 4},
			{ID: "2", Text: "b", Project: "Work", Priority: 4},
			{ID: "3", Text: "c", Project: "Errands", Priority: 9},
			{ID: "4", Text: "d", Project: "Work", Completed: true, CompletedAt: &done, Priority: 0},
		},
		HiddenProjects: []string{"Errands"},
		ProjectColors:  map[string]string{"Work": "#00ff00", "Errands": "bogus"},
	}}

	s, err := New(p)
	require.NoError(t, err)
	requireDense(t, s)
	assert.Equal(t, []string{"a", "b"}, texts(s.ListTasksByProject("Work", false)))

	errands, err := s.Project("Errands")
	require.NoError(t, err)
	assert.True(t, errands.Hidden)
	assert.NotEqual(t, "bogus", errands.Color)
	assert.Equal(t, 0, s.ListTasksByProject("Errands", false)[0].Priority)
}

func TestReplace_Validation(t *testing.T) {
	t.Parallel()
	s, _ := newTestStore(t)
	addTasks(t, s, "Work", "keep")
	before := s.Snapshot()

	require.ErrorIs(t, s.Replace(models.State{Projects: []string{"A"}}), ErrValidation)
	require.ErrorIs(t, s.Replace(models.State{Todos: []models.Task{}}), ErrValidation)
	require.ErrorIs(t, s.Replace(models.State{
		Projects: []string{"A"},
		Todos: []models.Task{
			{ID: "1", Text: "x", Project: "A"},
			{ID: "1", Text: "y", Project: "A"},
		},
	}), ErrValidation)
	require.ErrorIs(t, s.Replace(models.State{
		Projects: []string{"A"},
		Todos:    []models.Task{{ID: "1", Text: " ", Project: "A"}},
	}), ErrValidation)

	assert.Equal(t, before, s.Snapshot())
}

func TestRoundTrip_SnapshotReplace(t *testing.T) {
	t.Parallel()
	s, _ := newTestStore(t)
	w := addTasks(t, s, "Work", "w1", "w2", "w3")
	addTasks(t, s, "Personal", "p1")
	_, err := s.AddComment(w[1].ID, "note")
	require.NoError(t, err)
	_, err = s.ToggleComplete(w[0].ID)
	require.NoError(t, err)
	require.NoError(t, s.MoveTask(w[2].ID, "Work", w[1].ID))

	fresh, _ := newTestStore(t, "Other")
	require.NoError(t, fresh.Replace(s.Snapshot()))

	assert.Equal(t, s.ListProjects(), fresh.ListProjects())
	for _, p := range s.ListProjects() {
		assert.Equal(t, s.ListTasksByProject(p.Name, true), fresh.ListTasksByProject(p.Name, true))
	}
	requireDense(t, fresh)
}

func TestInvariant_RandomOperations(t *testing.T) {
	t.Parallel()
	s, _ := newTestStore(t, "A", "B", "C")
	rng := rand.New(rand.NewSource(42))
	projects := []string{"A", "B", "C"}

	pick := func() (models.Task, bool) {
		all := s.Snapshot().Todos
		if len(all) == 0 {
			return models.Task{}, false
		}
		return all[rng.Intn(len(all))], true
	}

	for i := 0; i < 2000; i++ {
		switch op := rng.Intn(10); {
		case op < 3:
			_, err := s.AddTask(fmt.Sprintf("task %d", i), projects[rng.Intn(len(projects))])
			require.NoError(t, err)
		case op < 5:
			if task, ok := pick(); ok {
				_, err := s.ToggleComplete(task.ID)
				require.NoError(t, err)
			}
		case op < 6:
			if task, ok := pick(); ok {
				require.NoError(t, s.DeleteTask(task.ID))
			}
		default:
			task, ok := pick()
			if !ok || task.Completed {
				continue
			}
			target := projects[rng.Intn(len(projects))]
			var before models.ID
			if col := s.ListTasksByProject(target, false); len(col) > 0 && rng.Intn(3) > 0 {
				before = col[rng.Intn(len(col))].ID
			}
			require.NoError(t, s.MoveTask(task.ID, target, before))
			if before == "" {
				moved, err := s.Task(task.ID)
				require.NoError(t, err)
				require.Equal(t, len(s.ListTasksByProject(target, false))-1, moved.Priority)
			}
		}
		requireDense(t, s)
	}
}
