package views

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog/log"
	"github.com/tgienger/taskflow/internal/db"
	"github.com/tgienger/taskflow/internal/ui/keys"
	"github.com/tgienger/taskflow/internal/ui/styles"
)

//go:embed tutorial.md
var tutorialMarkdown string

// TutorialView walks a first-time user through the board one page at a time
type TutorialView struct {
	settings Settings
	styles   *styles.Styles
	keys     keys.KeyMap
	pages    []string
	page     int

	width  int
	height int

	// rendered pages keyed by page, width and theme
	cache map[string]string
}

// NewTutorialView creates the tutorial
func NewTutorialView(settings Settings, s *styles.Styles) *TutorialView {
	var pages []string
	for _, p := range strings.Split(tutorialMarkdown, "\n---\n") {
		if p = strings.TrimSpace(p); p != "" {
			pages = append(pages, p)
		}
	}
	return &TutorialView{
		settings: settings,
		styles:   s,
		keys:     keys.DefaultKeyMap(),
		pages:    pages,
		cache:    make(map[string]string),
	}
}

// Init initializes the view
func (v *TutorialView) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (v *TutorialView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		return v, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, v.keys.Quit):
			return v, tea.Quit
		case key.Matches(msg, v.keys.Back):
			return v, v.finish()
		case key.Matches(msg, v.keys.Right), key.Matches(msg, v.keys.Enter), msg.String() == " ":
			if v.page == len(v.pages)-1 {
				return v, v.finish()
			}
			v.page++
		case key.Matches(msg, v.keys.Left):
			if v.page > 0 {
				v.page--
			}
		}
	}
	return v, nil
}

// finish marks the tutorial as seen and returns to the board
func (v *TutorialView) finish() tea.Cmd {
	if err := v.settings.SetBool(db.SettingTutorialSeen, true); err != nil {
		log.Warn().Err(err).Msg("tutorial: save setting")
	}
	return func() tea.Msg { return BackToBoard{} }
}

// Page returns the current page index
func (v *TutorialView) Page() int {
	return v.page
}

func (v *TutorialView) render(page, width int) string {
	cacheKey := fmt.Sprintf("%d/%d/%s", page, width, styles.ThemeName())
	if out, ok := v.cache[cacheKey]; ok {
		return out
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(styles.ThemeName()),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return v.pages[page]
	}
	out, err := r.Render(v.pages[page])
	if err != nil {
		return v.pages[page]
	}
	v.cache[cacheKey] = out
	return out
}

// View renders the view
func (v *TutorialView) View() string {
	if len(v.pages) == 0 {
		return ""
	}
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)
	if contentWidth <= 0 {
		contentWidth = styles.MaxWidth
	}

	body := v.render(v.page, clamp(contentWidth-8, 20, 72))
	next := "next"
	if v.page == len(v.pages)-1 {
		next = "start"
	}
	footer := s.Help.Render(fmt.Sprintf("%s %d/%d • %s back • %s %s • %s skip",
		s.TitleMuted.Render("page"),
		v.page+1, len(v.pages),
		s.HelpKey.Render("←"),
		s.HelpKey.Render("→"),
		next,
		s.HelpKey.Render("esc"),
	))

	content := s.Popup.Render(lipgloss.JoinVertical(lipgloss.Left, body, footer))
	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		content,
	)
	return styles.CenterView(centered, v.width, v.height)
}
