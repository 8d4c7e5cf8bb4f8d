package store

import (
	"slices"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/tgienger/taskflow/internal/models"
)

// AddTask creates a task at the end of project's column
func (s *Store) AddTask(text, project string) (models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	text = strings.TrimSpace(text)
	if text == "" {
		return models.Task{}, invalid("text", "task text is empty")
	}
	if s.project(project) == nil {
		return models.Task{}, invalid("project", "project %q does not exist", project)
	}

	t := &models.Task{
		ID:        s.newID(),
		Text:      text,
		Project:   project,
		CreatedAt: s.now(),
		Priority:  len(s.column(project)),
		Comments:  []models.Comment{},
	}
	s.tasks = append(s.tasks, t)

	log.Debug().Str("op", "add").Str("task", string(t.ID)).Str("project", project).Int("priority", t.Priority).Msg("store: task added")
	return t.Clone(), s.commit("add task")
}

// ToggleComplete flips a task between incomplete and complete. Completing
// closes the gap in its column; reopening appends it to the end.
func (s *Store) ToggleComplete(id models.ID) (models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := s.task(id)
	if t == nil {
		return models.Task{}, notFound("task", string(id))
	}

	if t.Completed {
		t.Priority = len(s.column(t.Project))
		t.Completed = false
		t.CompletedAt = nil
	} else {
		removed := t.Priority
		now := s.now()
		t.Completed = true
		t.CompletedAt = &now
		for _, o := range s.column(t.Project) {
			if o.Priority > removed {
				o.Priority--
			}
		}
		// a damaged ranking cannot survive the decrement above
		s.renumber(t.Project)
	}

	log.Debug().Str("op", "toggle").Str("task", string(id)).Bool("completed", t.Completed).Msg("store: task toggled")
	return t.Clone(), s.commit("toggle task")
}

// DeleteTask removes a task and closes the gap it leaves
func (s *Store) DeleteTask(id models.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := s.task(id)
	if t == nil {
		return notFound("task", string(id))
	}
	s.tasks = slices.DeleteFunc(s.tasks, func(x *models.Task) bool { return x.ID == id })
	if !t.Completed {
		s.renumber(t.Project)
	}

	log.Debug().Str("op", "delete").Str("task", string(id)).Msg("store: task deleted")
	return s.commit("delete task")
}

// EditTask replaces a task's text
func (s *Store) EditTask(id models.ID, text string) (models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	text = strings.TrimSpace(text)
	if text == "" {
		return models.Task{}, invalid("text", "task text is empty")
	}
	t := s.task(id)
	if t == nil {
		return models.Task{}, notFound("task", string(id))
	}
	t.Text = text
	return t.Clone(), s.commit("edit task")
}

// Task returns a copy of one task
func (s *Store) Task(id models.ID) (models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := s.task(id)
	if t == nil {
		return models.Task{}, notFound("task", string(id))
	}
	return t.Clone(), nil
}

// ListTasksByProject returns project's incomplete tasks by priority, followed
// by its completed tasks newest first when includeCompleted is set. Unknown
// projects yield an empty list.
func (s *Store) ListTasksByProject(project string, includeCompleted bool) []models.Task {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := clones(s.column(project))
	if includeCompleted {
		out = append(out, clones(s.completed(project))...)
	}
	return out
}

// ListCompletedTasks returns completed tasks newest first. An empty project
// lists every project.
func (s *Store) ListCompletedTasks(project string) []models.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return clones(s.completed(project))
}

func (s *Store) completed(project string) []*models.Task {
	var out []*models.Task
	for _, t := range s.tasks {
		if t.Completed && (project == "" || t.Project == project) {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CompletedAt.After(*out[j].CompletedAt)
	})
	return out
}

func clones(ts []*models.Task) []models.Task {
	out := make([]models.Task, 0, len(ts))
	for _, t := range ts {
		out = append(out, t.Clone())
	}
	return out
}
