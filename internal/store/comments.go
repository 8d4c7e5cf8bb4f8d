package store

import (
	"slices"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/tgienger/taskflow/internal/models"
)

// AddComment appends a comment to a task
func (s *Store) AddComment(taskID models.ID, text string) (models.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	text = strings.TrimSpace(text)
	if text == "" {
		return models.Comment{}, invalid("text", "comment text is empty")
	}
	t := s.task(taskID)
	if t == nil {
		return models.Comment{}, notFound("task", string(taskID))
	}

	c := models.Comment{ID: s.newID(), Text: text, CreatedAt: s.now()}
	t.Comments = append(t.Comments, c)

	log.Debug().Str("op", "comment").Str("task", string(taskID)).Str("comment", string(c.ID)).Msg("store: comment added")
	return c, s.commit("add comment")
}

// DeleteComment removes one comment from a task
func (s *Store) DeleteComment(taskID, commentID models.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := s.task(taskID)
	if t == nil {
		return notFound("task", string(taskID))
	}
	i := slices.IndexFunc(t.Comments, func(c models.Comment) bool { return c.ID == commentID })
	if i < 0 {
		return notFound("comment", string(commentID))
	}
	t.Comments = slices.Delete(t.Comments, i, i+1)
	return s.commit("delete comment")
}
