package views

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tgienger/taskflow/internal/db"
)

func TestTutorialPages(t *testing.T) {
	t.Parallel()
	settings := memSettings{}
	v := NewTutorialView(settings, newTestStyles())
	v.Update(tea.WindowSizeMsg{Width: 100, Height: 40})

	require.Greater(t, len(v.pages), 2)
	assert.Contains(t, plain(v), "Welcome to TaskFlow")

	press(v, keyRight)
	assert.Equal(t, 1, v.Page())
	press(v, keyLeft, keyLeft)
	assert.Equal(t, 0, v.Page())

	var cmd tea.Cmd
	for range v.pages {
		cmd = press(v, keyEnter)
	}
	require.NotNil(t, cmd)
	assert.Equal(t, BackToBoard{}, cmd())
	assert.Equal(t, "true", settings[db.SettingTutorialSeen])
}

func TestTutorialSkip(t *testing.T) {
	t.Parallel()
	settings := memSettings{}
	v := NewTutorialView(settings, newTestStyles())

	cmd := press(v, keyEsc)
	require.NotNil(t, cmd)
	assert.Equal(t, BackToBoard{}, cmd())
	assert.Equal(t, "true", settings[db.SettingTutorialSeen])
}
