package store

import (
	"slices"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/tgienger/taskflow/internal/models"
	"github.com/tgienger/taskflow/internal/palette"
)

// AddProject creates a project. An empty color picks the next palette color.
func (s *Store) AddProject(name, color string) (models.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	name = strings.TrimSpace(name)
	if err := s.checkName(name); err != nil {
		return models.Project{}, err
	}
	if color == "" {
		color = palette.Next(s.colors())
	} else {
		c, err := palette.Normalize(color)
		if err != nil {
			return models.Project{}, invalid("color", "%v", err)
		}
		color = c
	}

	p := &models.Project{Name: name, Color: color}
	s.projects = append(s.projects, p)

	log.Debug().Str("op", "add project").Str("project", name).Str("color", color).Msg("store: project added")
	return *p, s.commit("add project")
}

// RemoveProject deletes a project together with all of its tasks
func (s *Store) RemoveProject(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.project(name) == nil {
		return notFound("project", name)
	}
	before := len(s.tasks)
	s.tasks = slices.DeleteFunc(s.tasks, func(t *models.Task) bool { return t.Project == name })
	s.projects = slices.DeleteFunc(s.projects, func(p *models.Project) bool { return p.Name == name })

	log.Debug().Str("op", "remove project").Str("project", name).Int("tasks", before-len(s.tasks)).Msg("store: project removed")
	return s.commit("remove project")
}

// RenameProject renames a project and every task that belongs to it
func (s *Store) RenameProject(oldName, newName string) (models.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.project(oldName)
	if p == nil {
		return models.Project{}, notFound("project", oldName)
	}
	newName = strings.TrimSpace(newName)
	if newName == oldName {
		return *p, nil
	}
	if err := s.checkName(newName); err != nil {
		return models.Project{}, err
	}
	for _, t := range s.tasks {
		if t.Project == oldName {
			t.Project = newName
		}
	}
	p.Name = newName
	return *p, s.commit("rename project")
}

// SetProjectColor changes a project's color
func (s *Store) SetProjectColor(name, color string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.project(name)
	if p == nil {
		return notFound("project", name)
	}
	c, err := palette.Normalize(color)
	if err != nil {
		return invalid("color", "%v", err)
	}
	p.Color = c
	return s.commit("set project color")
}

// SetProjectHidden shows or hides a project's column. Tasks are unaffected.
func (s *Store) SetProjectHidden(name string, hidden bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.project(name)
	if p == nil {
		return notFound("project", name)
	}
	if p.Hidden == hidden {
		return nil
	}
	p.Hidden = hidden
	return s.commit("set project visibility")
}

// ToggleProjectHidden flips a project's visibility and returns the new value
func (s *Store) ToggleProjectHidden(name string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.project(name)
	if p == nil {
		return false, notFound("project", name)
	}
	p.Hidden = !p.Hidden
	return p.Hidden, s.commit("toggle project visibility")
}

// ShowAllProjects clears every hidden flag
func (s *Store) ShowAllProjects() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	changed := false
	for _, p := range s.projects {
		if p.Hidden {
			p.Hidden = false
			changed = true
		}
	}
	if !changed {
		return nil
	}
	return s.commit("show all projects")
}

// Project returns one project
func (s *Store) Project(name string) (models.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.project(name)
	if p == nil {
		return models.Project{}, notFound("project", name)
	}
	return *p, nil
}

// ListProjects returns all projects in creation order
func (s *Store) ListProjects() []models.Project {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Project, 0, len(s.projects))
	for _, p := range s.projects {
		out = append(out, *p)
	}
	return out
}

// ListVisibleProjects returns the projects that are not hidden
func (s *Store) ListVisibleProjects() []models.Project {
	return slices.DeleteFunc(s.ListProjects(), func(p models.Project) bool { return p.Hidden })
}

// HiddenCount returns the number of hidden projects
func (s *Store) HiddenCount() int {
	return len(s.ListProjects()) - len(s.ListVisibleProjects())
}

func (s *Store) checkName(name string) error {
	if name == "" {
		return invalid("name", "project name is empty")
	}
	if s.project(name) != nil {
		return invalid("name", "project %q already exists", name)
	}
	return nil
}
