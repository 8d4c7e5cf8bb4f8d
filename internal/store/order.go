package store

import (
	"slices"
	"sort"

	"github.com/rs/zerolog/log"
	"github.com/tgienger/taskflow/internal/models"
)

// column returns the incomplete tasks of project in display order.
// Ties are broken by insertion order so a damaged ranking still sorts stably.
func (s *Store) column(project string) []*models.Task {
	var out []*models.Task
	for _, t := range s.tasks {
		if !t.Completed && t.Project == project {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Priority < out[j].Priority })
	return out
}

// renumber rewrites the priorities of project's incomplete tasks as 0..n-1
// keeping their relative order. Running it twice changes nothing.
func (s *Store) renumber(project string) {
	rank(s.column(project))
}

func rank(col []*models.Task) {
	for i, t := range col {
		t.Priority = i
	}
}

// MoveTask places a task in target, immediately before the task before, or at
// the end of the column when before is empty. The task is taken out of its
// column first and the position of before is looked up afterwards, so moves
// within one column and across columns use the same arithmetic.
func (s *Store) MoveTask(id models.ID, target string, before models.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := s.task(id)
	if t == nil {
		return notFound("task", string(id))
	}
	if t.Completed {
		return invalid("task", "completed tasks cannot be moved")
	}
	if s.project(target) == nil {
		return invalid("project", "project %q does not exist", target)
	}
	if before != "" {
		b := s.task(before)
		if b == nil {
			return notFound("task", string(before))
		}
		if b.Completed {
			return invalid("before", "completed tasks are not drop targets")
		}
		if b.Project != target {
			return invalid("before", "task %q is not in project %q", before, target)
		}
		if b.ID == t.ID {
			// dropped onto itself
			return nil
		}
	}

	source := t.Project
	col := slices.DeleteFunc(s.column(target), func(x *models.Task) bool { return x.ID == t.ID })
	at := len(col)
	if before != "" {
		at = slices.IndexFunc(col, func(x *models.Task) bool { return x.ID == before })
	}
	col = slices.Insert(col, at, t)

	t.Project = target
	rank(col)
	if source != target {
		s.renumber(source)
	}

	log.Debug().Str("op", "move").Str("task", string(id)).Str("from", source).Str("to", target).Int("priority", t.Priority).Msg("store: task moved")
	return s.commit("move task")
}

// MoveTaskUp swaps a task with the one above it. The top task stays put.
func (s *Store) MoveTaskUp(id models.ID) error {
	project, prev, _, err := s.neighbours(id)
	if err != nil || prev == "" {
		return err
	}
	return s.MoveTask(id, project, prev)
}

// MoveTaskDown swaps a task with the one below it. The bottom task stays put.
func (s *Store) MoveTaskDown(id models.ID) error {
	project, _, next, err := s.neighbours(id)
	if err != nil || next == nil {
		return err
	}
	// placing before the task after next, or at the end
	return s.MoveTask(id, project, next[1])
}

// neighbours returns the id above id and the two ids below it ("" marks the
// end of the column). next is nil when id is already last.
func (s *Store) neighbours(id models.ID) (string, models.ID, []models.ID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := s.task(id)
	if t == nil {
		return "", "", nil, notFound("task", string(id))
	}
	if t.Completed {
		return "", "", nil, invalid("task", "completed tasks cannot be moved")
	}
	col := s.column(t.Project)
	i := slices.IndexFunc(col, func(x *models.Task) bool { return x.ID == id })

	var prev models.ID
	if i > 0 {
		prev = col[i-1].ID
	}
	var next []models.ID
	if i+1 < len(col) {
		next = []models.ID{col[i+1].ID, ""}
		if i+2 < len(col) {
			next[1] = col[i+2].ID
		}
	}
	return t.Project, prev, next, nil
}
