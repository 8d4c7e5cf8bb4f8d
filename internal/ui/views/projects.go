package views

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tgienger/taskflow/internal/models"
	"github.com/tgienger/taskflow/internal/palette"
	"github.com/tgienger/taskflow/internal/store"
	"github.com/tgienger/taskflow/internal/ui/keys"
	"github.com/tgienger/taskflow/internal/ui/styles"
)

type projectItem struct {
	project models.Project
	open    int
	done    int
}

func (i projectItem) Title() string {
	if i.project.Hidden {
		return i.project.Name + " (hidden)"
	}
	return i.project.Name
}
func (i projectItem) Description() string { return fmt.Sprintf("%d open • %d done", i.open, i.done) }
func (i projectItem) FilterValue() string { return i.project.Name }

type projectDelegate struct {
	styles *styles.Styles
	width  int
}

func (d projectDelegate) Height() int                               { return 2 }
func (d projectDelegate) Spacing() int                              { return 1 }
func (d projectDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }

func (d projectDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	p, ok := item.(projectItem)
	if !ok {
		return
	}

	selected := index == m.Index()
	width := max(d.width-4, 20)

	var titleStyle, descStyle lipgloss.Style
	if selected {
		titleStyle = d.styles.ListSelected.Width(width)
		descStyle = d.styles.ListSelected.Foreground(styles.Current.ForegroundDim).Width(width)
	} else {
		titleStyle = d.styles.ListItem.Width(width)
		descStyle = d.styles.ListItem.Foreground(styles.Current.ForegroundDim).Width(width)
	}

	title := titleStyle.Render(d.styles.ProjectDot(p.project.Color) + " " + p.Title())
	desc := descStyle.Render("  " + p.Description())

	fmt.Fprintf(w, "%s\n%s", title, desc)
}

// ProjectListView manages projects: create, rename, recolor, hide and delete
type ProjectListView struct {
	store            *store.Store
	list             list.Model
	delegate         *projectDelegate
	styles           *styles.Styles
	keys             keys.KeyMap
	width            int
	height           int
	loaded           bool
	creating         bool
	renaming         bool
	recoloring       bool
	confirmingDelete bool
	targetName       string
	newName          textinput.Model
	newColor         textinput.Model
	focusIdx         int // 0=name, 1=color, 2=confirm
	status           status

	// Help popup (shown with ?)
	showHelpPopup bool
}

// NewProjectListView creates the project manager
func NewProjectListView(st *store.Store, s *styles.Styles) *ProjectListView {
	newName := textinput.New()
	newName.Placeholder = "Project name"
	newName.CharLimit = 100

	newColor := textinput.New()
	newColor.Placeholder = "#7aa2f7 (optional)"
	newColor.CharLimit = 7

	// Setup custom delegate
	delegate := &projectDelegate{styles: s, width: 80}

	l := list.New([]list.Item{}, delegate, 0, 0)
	l.Title = "Projects"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.Styles.Title = s.Title
	l.SetShowHelp(false)

	return &ProjectListView{
		store:    st,
		list:     l,
		delegate: delegate,
		styles:   s,
		keys:     keys.DefaultKeyMap(),
		newName:  newName,
		newColor: newColor,
	}
}

// Init initializes the view
func (v *ProjectListView) Init() tea.Cmd {
	return v.loadProjects
}

func (v *ProjectListView) loadProjects() tea.Msg {
	var items []projectItem
	for _, p := range v.store.ListProjects() {
		item := projectItem{project: p}
		for _, t := range v.store.ListTasksByProject(p.Name, true) {
			if t.Completed {
				item.done++
			} else {
				item.open++
			}
		}
		items = append(items, item)
	}
	return projectsLoadedMsg{projects: items}
}

type projectsLoadedMsg struct {
	projects []projectItem
}

// Update handles messages
func (v *ProjectListView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		// Use content width (capped at MaxWidth) for internal layout
		contentWidth := styles.ContentWidth(msg.Width)
		v.delegate.width = contentWidth
		v.list.SetSize(contentWidth-4, msg.Height-8)
		return v, nil

	case projectsLoadedMsg:
		items := make([]list.Item, len(msg.projects))
		for i, p := range msg.projects {
			items[i] = p
		}
		cmd := v.list.SetItems(items)
		v.loaded = true
		return v, cmd

	case tea.KeyMsg:
		// Handle help popup first - any key closes it
		if v.showHelpPopup {
			v.showHelpPopup = false
			return v, nil
		}

		if v.confirmingDelete {
			return v.updateConfirmDelete(msg)
		}

		if v.creating {
			return v.updateCreating(msg)
		}

		if v.renaming {
			return v.updateRenaming(msg)
		}

		if v.recoloring {
			return v.updateRecoloring(msg)
		}

		// typing into the list filter
		if v.list.FilterState() == list.Filtering {
			break
		}

		v.status = status{}
		switch {
		case key.Matches(msg, v.keys.Quit):
			return v, tea.Quit
		case key.Matches(msg, v.keys.Back):
			if v.list.FilterState() == list.FilterApplied {
				v.list.ResetFilter()
				return v, nil
			}
			return v, func() tea.Msg { return BackToBoard{} }
		case key.Matches(msg, v.keys.New):
			v.creating = true
			v.focusIdx = 0
			v.newName.Reset()
			v.newColor.Reset()
			v.newColor.Placeholder = palette.Next(v.usedColors()) + " (optional)"
			v.updateFocus()
			return v, textinput.Blink
		case key.Matches(msg, v.keys.Help):
			v.showHelpPopup = true
			return v, nil
		case key.Matches(msg, v.keys.Enter):
			if item, ok := v.list.SelectedItem().(projectItem); ok {
				name := item.project.Name
				var err error
				if item.project.Hidden {
					// opening a hidden project makes its column visible again
					err = v.store.SetProjectHidden(name, false)
				}
				if err != nil && !store.IsStorageWarning(err) {
					v.status = statusFor(err, "")
					return v, nil
				}
				return v, func() tea.Msg { return SelectedProject{Name: name} }
			}
		case key.Matches(msg, v.keys.Delete):
			if item, ok := v.list.SelectedItem().(projectItem); ok {
				v.confirmingDelete = true
				v.targetName = item.project.Name
				return v, nil
			}
		case key.Matches(msg, v.keys.Rename):
			if item, ok := v.list.SelectedItem().(projectItem); ok {
				v.renaming = true
				v.targetName = item.project.Name
				v.newName.SetValue(item.project.Name)
				v.newName.CursorEnd()
				v.newName.Focus()
				return v, textinput.Blink
			}
		case key.Matches(msg, v.keys.Recolor):
			if item, ok := v.list.SelectedItem().(projectItem); ok {
				v.recoloring = true
				v.targetName = item.project.Name
				v.newColor.SetValue(item.project.Color)
				v.newColor.CursorEnd()
				v.newColor.Focus()
				return v, textinput.Blink
			}
		case key.Matches(msg, v.keys.Hide):
			if item, ok := v.list.SelectedItem().(projectItem); ok {
				hidden, err := v.store.ToggleProjectHidden(item.project.Name)
				label := "showing "
				if hidden {
					label = "hid "
				}
				v.status = statusFor(err, label+item.project.Name)
				return v, v.loadProjects
			}
		}
	}

	var cmd tea.Cmd
	v.list, cmd = v.list.Update(msg)
	return v, cmd
}

func (v *ProjectListView) usedColors() []string {
	var used []string
	for _, item := range v.list.Items() {
		if p, ok := item.(projectItem); ok {
			used = append(used, p.project.Color)
		}
	}
	return used
}

func (v *ProjectListView) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		v.status = statusFor(v.store.RemoveProject(v.targetName), "deleted "+v.targetName)
		v.confirmingDelete = false
		return v, v.loadProjects
	case "n", "N", "esc":
		v.confirmingDelete = false
		return v, nil
	}
	return v, nil
}

func (v *ProjectListView) updateRenaming(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Back):
		v.renaming = false
		v.newName.Blur()
		return v, nil

	case key.Matches(msg, v.keys.Enter), key.Matches(msg, v.keys.Save):
		p, err := v.store.RenameProject(v.targetName, v.newName.Value())
		if err != nil && !store.IsStorageWarning(err) {
			v.status = statusFor(err, "")
			return v, nil
		}
		v.status = statusFor(err, "renamed to "+p.Name)
		v.renaming = false
		v.newName.Blur()
		return v, v.loadProjects
	}

	var cmd tea.Cmd
	v.newName, cmd = v.newName.Update(msg)
	return v, cmd
}

func (v *ProjectListView) updateRecoloring(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Back):
		v.recoloring = false
		v.newColor.Blur()
		return v, nil

	case key.Matches(msg, v.keys.Enter), key.Matches(msg, v.keys.Save):
		err := v.store.SetProjectColor(v.targetName, v.newColor.Value())
		if err != nil && !store.IsStorageWarning(err) {
			v.status = statusFor(err, "")
			return v, nil
		}
		v.status = statusFor(err, "recolored "+v.targetName)
		v.recoloring = false
		v.newColor.Blur()
		return v, v.loadProjects
	}

	var cmd tea.Cmd
	v.newColor, cmd = v.newColor.Update(msg)
	return v, cmd
}

func (v *ProjectListView) updateCreating(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Back):
		v.creating = false
		return v, nil

	case key.Matches(msg, v.keys.Save):
		return v, v.createProject()

	case msg.String() == "shift+tab":
		v.focusIdx = (v.focusIdx + 2) % 3
		v.updateFocus()
		return v, nil

	case key.Matches(msg, v.keys.Tab):
		v.focusIdx = (v.focusIdx + 1) % 3
		v.updateFocus()
		return v, nil

	case key.Matches(msg, v.keys.Enter):
		if v.focusIdx == 0 || v.focusIdx == 1 {
			v.focusIdx++
			v.updateFocus()
			return v, nil
		}
		return v, v.createProject()
	}

	var cmd tea.Cmd
	switch v.focusIdx {
	case 0:
		v.newName, cmd = v.newName.Update(msg)
	case 1:
		v.newColor, cmd = v.newColor.Update(msg)
	}
	return v, cmd
}

func (v *ProjectListView) createProject() tea.Cmd {
	p, err := v.store.AddProject(v.newName.Value(), strings.TrimSpace(v.newColor.Value()))
	if err != nil && !store.IsStorageWarning(err) {
		v.status = statusFor(err, "")
		return nil
	}
	v.status = statusFor(err, "")
	v.creating = false
	return func() tea.Msg {
		return SelectedProject{Name: p.Name}
	}
}

func (v *ProjectListView) updateFocus() {
	v.newName.Blur()
	v.newColor.Blur()
	switch v.focusIdx {
	case 0:
		v.newName.Focus()
	case 1:
		v.newColor.Focus()
	}
}

// View renders the view
func (v *ProjectListView) View() string {
	if v.showHelpPopup {
		return v.renderHelpPopup()
	}

	if v.confirmingDelete {
		return v.renderDeleteConfirm()
	}

	if v.creating {
		return v.renderCreateForm()
	}

	if v.renaming {
		return v.renderRenameForm()
	}

	if v.recoloring {
		return v.renderRecolorForm()
	}

	if !v.loaded {
		return v.styles.TitleMuted.Render("Loading...")
	}

	if len(v.list.Items()) == 0 {
		return v.renderEmpty()
	}

	content := v.list.View() + "\n" + v.status.render(v.styles) + "\n" + v.renderHelp()
	return styles.CenterView(content, v.width, v.height)
}

func (v *ProjectListView) renderEmpty() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	content := lipgloss.JoinVertical(lipgloss.Center,
		s.Title.Render("No Projects"),
		"",
		s.TitleMuted.Render("Press 'n' to create your first project"),
		"",
		s.ButtonPrimary.Render(" New Project "),
	)

	// Center within content width, then center that in terminal
	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		content,
	)
	return styles.CenterView(centered, v.width, v.height)
}

func (v *ProjectListView) renderCreateForm() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	nameStyle := s.Input
	colorStyle := s.Input
	btnStyle := s.Button

	switch v.focusIdx {
	case 0:
		nameStyle = s.InputFocused
	case 1:
		colorStyle = s.InputFocused
	case 2:
		btnStyle = s.ButtonFocused
	}

	// Dynamic input width based on content width
	inputWidth := clamp(contentWidth-6, 20, 50)

	swatch := ""
	if c, err := palette.Normalize(v.newColor.Value()); err == nil {
		swatch = " " + s.ProjectDot(c)
	}

	form := lipgloss.JoinVertical(lipgloss.Left,
		s.Title.Render("New Project"),
		"",
		"Name:",
		nameStyle.Width(inputWidth).Render(v.newName.View()),
		"",
		"Color:"+swatch,
		colorStyle.Width(inputWidth).Render(v.newColor.View()),
		"",
		btnStyle.Render(" Create "),
		"",
		v.status.render(s),
		s.TitleMuted.Render("Tab: next • Ctrl+S: save • Esc: cancel"),
	)

	// Center within content width, then center that in terminal
	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		form,
	)
	return styles.CenterView(centered, v.width, v.height)
}

func (v *ProjectListView) renderRenameForm() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)
	inputWidth := clamp(contentWidth-6, 20, 50)

	form := lipgloss.JoinVertical(lipgloss.Left,
		s.Title.Render("Rename "+v.targetName),
		"",
		s.InputFocused.Width(inputWidth).Render(v.newName.View()),
		"",
		v.status.render(s),
		s.TitleMuted.Render("↵: save • Esc: cancel"),
	)

	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		form,
	)
	return styles.CenterView(centered, v.width, v.height)
}

func (v *ProjectListView) renderRecolorForm() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	swatch := ""
	if c, err := palette.Normalize(v.newColor.Value()); err == nil {
		swatch = " " + s.ProjectDot(c)
	}

	form := lipgloss.JoinVertical(lipgloss.Left,
		s.Title.Render("Color for "+v.targetName+swatch),
		"",
		s.InputFocused.Width(20).Render(v.newColor.View()),
		"",
		v.status.render(s),
		s.TitleMuted.Render("#rrggbb • ↵: save • Esc: cancel"),
	)

	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		form,
	)
	return styles.CenterView(centered, v.width, v.height)
}

func (v *ProjectListView) renderHelp() string {
	contentWidth := styles.ContentWidth(v.width)
	// At narrow widths, show hint to press ? for help
	if contentWidth > 0 && contentWidth < 50 {
		return v.styles.Help.Render(v.styles.HelpKey.Render("?") + " help")
	}
	return v.styles.Help.Render(
		fmt.Sprintf("%s open • %s new • %s rename • %s hide • %s del • %s board",
			v.styles.HelpKey.Render("↵"),
			v.styles.HelpKey.Render("n"),
			v.styles.HelpKey.Render("r"),
			v.styles.HelpKey.Render("v"),
			v.styles.HelpKey.Render("d"),
			v.styles.HelpKey.Render("esc"),
		),
	)
}

func (v *ProjectListView) renderHelpPopup() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	helpItems := []string{
		s.HelpKey.Render("↵") + "      show on board",
		s.HelpKey.Render("n") + "      new project",
		s.HelpKey.Render("r") + "      rename project",
		s.HelpKey.Render("C") + "      change color",
		s.HelpKey.Render("v") + "      hide or show column",
		s.HelpKey.Render("d") + "      delete project and its tasks",
		s.HelpKey.Render("/") + "      filter",
		s.HelpKey.Render("esc") + "    back to board",
		s.HelpKey.Render("q") + "      quit",
		"",
		s.TitleMuted.Render("Press any key to close"),
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		append([]string{s.Title.Render("Keyboard Shortcuts"), ""}, helpItems...)...,
	)

	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		s.Popup.Render(content),
	)
	return styles.CenterView(centered, v.width, v.height)
}

func (v *ProjectListView) renderDeleteConfirm() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	content := lipgloss.JoinVertical(lipgloss.Center,
		s.Title.Foreground(styles.Current.Error).Render("Delete Project?"),
		"",
		s.TitleMuted.Render(fmt.Sprintf("Are you sure you want to delete %q?", v.targetName)),
		s.TitleMuted.Render("This will also delete all tasks in this project."),
		"",
		lipgloss.JoinHorizontal(lipgloss.Center,
			s.ButtonPrimary.Render(" Y - Yes "),
			"  ",
			s.Button.Render(" N - No "),
		),
	)

	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		content,
	)
	return styles.CenterView(centered, v.width, v.height)
}
