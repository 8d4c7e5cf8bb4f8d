package views

import (
	"errors"
	"fmt"
	"time"

	"github.com/tgienger/taskflow/internal/models"
	"github.com/tgienger/taskflow/internal/store"
	"github.com/tgienger/taskflow/internal/ui/styles"
)

// Settings persists UI preferences between runs
type Settings interface {
	GetSetting(key string) (string, error)
	SetSetting(key, value string) error
	GetBool(key string, def bool) bool
	SetBool(key string, value bool) error
}

// SelectedProject signals to focus a project's column on the board
type SelectedProject struct {
	Name string
}

// ShowProjects signals to open the project manager
type ShowProjects struct{}

// BackToBoard signals to return to the board
type BackToBoard struct{}

// OpenTask signals to open the detail view of a task
type OpenTask struct {
	ID models.ID
}

// ToggleTheme signals to switch between the dark and light theme
type ToggleTheme struct{}

// ShowTutorial signals to open the tutorial
type ShowTutorial struct{}

// clamp returns val clamped between minVal and maxVal
func clamp(val, minVal, maxVal int) int {
	if val < minVal {
		return minVal
	}
	if val > maxVal {
		return maxVal
	}
	return val
}

type statusLevel int

const (
	statusInfo statusLevel = iota
	statusWarn
	statusError
)

// status is the one-line message under a view
type status struct {
	text  string
	level statusLevel
}

// statusFor describes the outcome of a store call. A failed save still
// applied the change, so it is a warning rather than an error.
func statusFor(err error, ok string) status {
	switch {
	case err == nil:
		return status{text: ok}
	case store.IsStorageWarning(err):
		var se *store.StorageError
		errors.As(err, &se)
		return status{text: "changed in memory only: " + se.Error(), level: statusWarn}
	default:
		return status{text: err.Error(), level: statusError}
	}
}

func (st status) render(s *styles.Styles) string {
	if st.text == "" {
		return ""
	}
	switch st.level {
	case statusWarn:
		return s.StatusWarn.Render(st.text)
	case statusError:
		return s.StatusError.Render(st.text)
	}
	return s.StatusBar.Render(st.text)
}

// Ago renders t relative to now: "just now", "5 minutes ago", "1 day ago"
func Ago(t, now time.Time) string {
	d := now.Sub(t)
	days := int(d.Hours()) / 24
	hours := int(d.Hours())
	minutes := int(d.Minutes())
	switch {
	case days > 0:
		return plural(days, "day")
	case hours > 0:
		return plural(hours, "hour")
	case minutes > 0:
		return plural(minutes, "minute")
	}
	return "just now"
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s ago", unit)
	}
	return fmt.Sprintf("%d %ss ago", n, unit)
}

func truncate(s string, width int) string {
	r := []rune(s)
	if width <= 1 || len(r) <= width {
		return s
	}
	return string(r[:width-1]) + "…"
}
