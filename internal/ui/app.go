// Package ui is the terminal front end of the board.
package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"
	"github.com/tgienger/taskflow/internal/db"
	"github.com/tgienger/taskflow/internal/store"
	"github.com/tgienger/taskflow/internal/ui/styles"
	"github.com/tgienger/taskflow/internal/ui/views"
)

// Currently active view
type View int

const (
	ViewBoard View = iota
	ViewProjects
	ViewTask
	ViewTutorial
)

// Options carries the startup preferences taken from configuration
type Options struct {
	Theme         string
	ShowCompleted bool
	DataPath      string
}

type App struct {
	store       *store.Store
	settings    views.Settings
	styles      *styles.Styles
	currentView View
	board       *views.BoardView
	projectList *views.ProjectListView
	taskView    *views.TaskView
	tutorial    *views.TutorialView
	width       int
	height      int
}

// Creates a new application
func NewApp(st *store.Store, settings views.Settings, opts Options) *App {
	theme, err := settings.GetSetting(db.SettingTheme)
	if err != nil || theme == "" {
		theme = opts.Theme
	}
	styles.SetTheme(theme)
	s := styles.NewStyles()

	return &App{
		store:       st,
		settings:    settings,
		styles:      s,
		currentView: ViewBoard,
		board:       views.NewBoardView(st, settings, s, opts.DataPath, opts.ShowCompleted),
		projectList: views.NewProjectListView(st, s),
		tutorial:    views.NewTutorialView(settings, s),
	}
}

// CurrentView reports which view has focus
func (a *App) CurrentView() View {
	return a.currentView
}

func (a *App) Init() tea.Cmd {
	a.board.Update(a.board.Init()())

	// Check for last focused project
	if last, err := a.settings.GetSetting(db.SettingLastProject); err == nil && last != "" {
		a.board.Focus(last)
	}

	if !a.settings.GetBool(db.SettingTutorialSeen, false) {
		a.currentView = ViewTutorial
	}
	return nil
}

func (a *App) resize() tea.Cmd {
	return func() tea.Msg {
		return tea.WindowSizeMsg{Width: a.width, Height: a.height}
	}
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		// every view keeps its size, not only the active one
		a.board.Update(msg)
		a.projectList.Update(msg)
		a.tutorial.Update(msg)
		if a.taskView != nil {
			a.taskView.Update(msg)
		}
		return a, nil

	case views.SelectedProject:
		a.currentView = ViewBoard
		cmd := a.board.Init()
		a.board.Update(cmd())
		a.board.Focus(msg.Name)
		a.rememberProject()
		return a, nil

	case views.BackToBoard:
		a.currentView = ViewBoard
		a.taskView = nil
		a.rememberProject()
		return a, a.board.Init()

	case views.ShowProjects:
		a.currentView = ViewProjects
		return a, tea.Batch(a.projectList.Init(), a.resize())

	case views.OpenTask:
		a.currentView = ViewTask
		a.taskView = views.NewTaskView(a.store, a.styles, msg.ID)
		return a, tea.Batch(a.taskView.Init(), a.resize())

	case views.ShowTutorial:
		a.currentView = ViewTutorial
		a.tutorial = views.NewTutorialView(a.settings, a.styles)
		return a, a.resize()

	case views.ToggleTheme:
		if styles.Current.Dark {
			styles.SetTheme("light")
		} else {
			styles.SetTheme("dark")
		}
		// every view shares this pointer
		*a.styles = *styles.NewStyles()
		if err := a.settings.SetSetting(db.SettingTheme, styles.ThemeName()); err != nil {
			log.Warn().Err(err).Msg("app: save theme")
		}
		return a, nil
	}

	var cmd tea.Cmd
	switch a.currentView {
	case ViewBoard:
		_, cmd = a.board.Update(msg)
		if !a.board.Busy() {
			a.rememberProject()
		}
	case ViewProjects:
		_, cmd = a.projectList.Update(msg)
	case ViewTask:
		if a.taskView != nil {
			_, cmd = a.taskView.Update(msg)
		}
	case ViewTutorial:
		_, cmd = a.tutorial.Update(msg)
	}

	return a, cmd
}

// rememberProject stores the focused column so the next run opens on it
func (a *App) rememberProject() {
	name := a.board.FocusedProject()
	if name == "" {
		return
	}
	if last, _ := a.settings.GetSetting(db.SettingLastProject); last == name {
		return
	}
	if err := a.settings.SetSetting(db.SettingLastProject, name); err != nil {
		log.Warn().Err(err).Msg("app: save last project")
	}
}

func (a *App) View() string {
	switch a.currentView {
	case ViewProjects:
		return a.projectList.View()
	case ViewTask:
		if a.taskView != nil {
			return a.taskView.View()
		}
	case ViewTutorial:
		return a.tutorial.View()
	}
	return a.board.View()
}
