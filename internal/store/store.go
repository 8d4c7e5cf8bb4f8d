// Package store owns the board's tasks and projects and keeps every project's
// incomplete tasks densely ranked 0..n-1.
package store

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/tgienger/taskflow/internal/models"
	"github.com/tgienger/taskflow/internal/palette"
)

// DefaultProjects are created when the cache holds no board yet
var DefaultProjects = []string{"Work", "Personal"}

// Persister reads and writes the whole board
type Persister interface {
	Load() (models.State, error)
	Save(models.State) error
}

// Store is the single owner of board state. Every exported method either
// applies fully and leaves priorities dense, or returns an error before
// touching anything.
type Store struct {
	mu       sync.Mutex
	tasks    []*models.Task
	projects []*models.Project
	persist  Persister
	now      func() time.Time
	newID    func() models.ID
	defaults []string
}

// Option configures a Store
type Option func(*Store)

// WithClock overrides the time source
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDs overrides id generation
func WithIDs(next func() models.ID) Option {
	return func(s *Store) { s.newID = next }
}

// WithDefaultProjects sets the projects seeded into an empty cache
func WithDefaultProjects(names []string) Option {
	return func(s *Store) { s.defaults = names }
}

// New loads the board from p. A cache that has never been written is seeded
// with the default projects.
func New(p Persister, opts ...Option) (*Store, error) {
	s := &Store{
		persist:  p,
		now:      func() time.Time { return time.Now().UTC() },
		newID:    func() models.ID { return models.ID(uuid.NewString()) },
		defaults: DefaultProjects,
	}
	for _, opt := range opts {
		opt(s)
	}

	var state models.State
	if p != nil {
		var err error
		if state, err = p.Load(); err != nil {
			return nil, &StorageError{Op: "load", Err: err}
		}
	}

	if state.Projects == nil && len(state.Todos) == 0 {
		for _, name := range s.defaults {
			name = strings.TrimSpace(name)
			if name == "" || s.project(name) != nil {
				continue
			}
			s.projects = append(s.projects, &models.Project{Name: name, Color: palette.Next(s.colors())})
		}
		log.Debug().Strs("projects", s.projectNames()).Msg("store: seeded default projects")
		return s, nil
	}

	tasks, projects, err := s.build(state)
	if err != nil {
		return nil, fmt.Errorf("load board: %w", err)
	}
	s.tasks, s.projects = tasks, projects
	for _, p := range s.projects {
		s.renumber(p.Name)
	}
	return s, nil
}

// Replace swaps the whole board for state, as done by a backup import.
// The incoming document is validated first and priorities are rebuilt
// rather than trusted.
func (s *Store) Replace(state models.State) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if state.Todos == nil {
		return invalid("todos", "missing")
	}
	if state.Projects == nil {
		return invalid("projects", "missing")
	}
	tasks, projects, err := s.build(state)
	if err != nil {
		return err
	}
	s.tasks, s.projects = tasks, projects
	for _, p := range s.projects {
		s.renumber(p.Name)
	}
	log.Debug().Int("tasks", len(s.tasks)).Int("projects", len(s.projects)).Msg("store: replaced board")
	return s.commit("replace")
}

// Snapshot returns a deep copy of the board in its persisted shape
func (s *Store) Snapshot() models.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state()
}

// build validates state and converts it into fresh collections without
// touching the store.
func (s *Store) build(state models.State) ([]*models.Task, []*models.Project, error) {
	var projects []*models.Project
	byName := make(map[string]*models.Project)
	addProject := func(name string) *models.Project {
		if p, ok := byName[name]; ok {
			return p
		}
		p := &models.Project{Name: name}
		projects = append(projects, p)
		byName[name] = p
		return p
	}

	for i, name := range state.Projects {
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, nil, invalid(fmt.Sprintf("projects[%d]", i), "empty project name")
		}
		addProject(name)
	}

	seen := make(map[models.ID]bool, len(state.Todos))
	tasks := make([]*models.Task, 0, len(state.Todos))
	for i, in := range state.Todos {
		path := fmt.Sprintf("todos[%d]", i)
		t := in.Clone()
		t.Text = strings.TrimSpace(t.Text)
		t.Project = strings.TrimSpace(t.Project)
		if t.Text == "" {
			return nil, nil, invalid(path+".text", "empty task text")
		}
		if t.Project == "" {
			return nil, nil, invalid(path+".project", "empty project name")
		}
		if t.ID == "" {
			t.ID = s.newID()
		}
		if seen[t.ID] {
			return nil, nil, invalid(path+".id", "duplicate task id %q", t.ID)
		}
		seen[t.ID] = true
		if t.CreatedAt.IsZero() {
			t.CreatedAt = s.now()
		}
		switch {
		case !t.Completed:
			t.CompletedAt = nil
		case t.CompletedAt == nil:
			at := s.now()
			t.CompletedAt = &at
		}
		for j := range t.Comments {
			if t.Comments[j].ID == "" {
				t.Comments[j].ID = s.newID()
			}
		}
		// todos may reference a project missing from the list; keep the task
		addProject(t.Project)
		tasks = append(tasks, &t)
	}

	for _, name := range state.HiddenProjects {
		if p, ok := byName[strings.TrimSpace(name)]; ok {
			p.Hidden = true
		}
	}
	var used []string
	for _, p := range projects {
		if c, err := palette.Normalize(state.ProjectColors[p.Name]); err == nil {
			p.Color = c
			used = append(used, c)
		}
	}
	for _, p := range projects {
		if p.Color == "" {
			p.Color = palette.Next(used)
			used = append(used, p.Color)
		}
	}
	return tasks, projects, nil
}

// state must be called with mu held
func (s *Store) state() models.State {
	st := models.State{
		Todos:          make([]models.Task, 0, len(s.tasks)),
		Projects:       make([]string, 0, len(s.projects)),
		HiddenProjects: []string{},
		ProjectColors:  make(map[string]string, len(s.projects)),
	}
	for _, t := range s.tasks {
		st.Todos = append(st.Todos, t.Clone())
	}
	for _, p := range s.projects {
		st.Projects = append(st.Projects, p.Name)
		st.ProjectColors[p.Name] = p.Color
		if p.Hidden {
			st.HiddenProjects = append(st.HiddenProjects, p.Name)
		}
	}
	return st
}

// commit persists the current state. A failed save is reported but the
// in-memory mutation stands.
func (s *Store) commit(op string) error {
	if s.persist == nil {
		return nil
	}
	if err := s.persist.Save(s.state()); err != nil {
		log.Warn().Err(err).Str("op", op).Msg("store: save failed, in-memory state kept")
		return &StorageError{Op: "save after " + op, Err: err}
	}
	return nil
}

func (s *Store) task(id models.ID) *models.Task {
	for _, t := range s.tasks {
		if t.ID == id {
			return t
		}
	}
	return nil
}

func (s *Store) project(name string) *models.Project {
	for _, p := range s.projects {
		if p.Name == name {
			return p
		}
	}
	return nil
}

func (s *Store) colors() []string {
	out := make([]string, 0, len(s.projects))
	for _, p := range s.projects {
		out = append(out, p.Color)
	}
	return out
}

func (s *Store) projectNames() []string {
	out := make([]string, 0, len(s.projects))
	for _, p := range s.projects {
		out = append(out, p.Name)
	}
	return out
}
