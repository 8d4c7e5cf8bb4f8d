package views

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog/log"
	"github.com/tgienger/taskflow/internal/db"
	"github.com/tgienger/taskflow/internal/models"
	"github.com/tgienger/taskflow/internal/store"
	"github.com/tgienger/taskflow/internal/ui/keys"
	"github.com/tgienger/taskflow/internal/ui/styles"
)

// column is one visible project and the tasks rendered under it. Open tasks
// come first in priority order, completed ones after them.
type column struct {
	project models.Project
	tasks   []models.Task
	open    int
}

// grab remembers where a grabbed task started so the gesture can be undone
type grab struct {
	id      models.ID
	project string
	before  models.ID
}

// BoardView shows every visible project as a column
type BoardView struct {
	store    *store.Store
	settings Settings
	styles   *styles.Styles
	keys     keys.KeyMap
	help     help.Model
	now      func() time.Time

	width  int
	height int

	columns   []column
	completed int
	hidden    int
	loaded    bool

	col    int
	row    int
	offset int // first column on screen

	// Keyboard drag and drop
	grabbing bool
	grab     grab

	showCompleted   bool
	noticeMinimized bool
	dataPath        string

	// New task / edit text
	adding  bool
	editing bool
	input   textinput.Model

	// Delete confirmation
	confirmingDelete bool
	deleteTargetID   models.ID
	deleteTargetName string

	showHelpPopup bool
	status        status
}

// NewBoardView creates the board
func NewBoardView(st *store.Store, settings Settings, s *styles.Styles, dataPath string, showCompleted bool) *BoardView {
	input := textinput.New()
	input.Placeholder = "What needs to be done?"
	input.CharLimit = 500

	return &BoardView{
		store:           st,
		settings:        settings,
		styles:          s,
		keys:            keys.DefaultKeyMap(),
		help:            help.New(),
		now:             time.Now,
		input:           input,
		dataPath:        dataPath,
		showCompleted:   settings.GetBool(db.SettingShowCompleted, showCompleted),
		noticeMinimized: settings.GetBool(db.SettingNoticeMinimized, false),
	}
}

type boardLoadedMsg struct {
	columns   []column
	completed int
	hidden    int
}

// Init initializes the view
func (v *BoardView) Init() tea.Cmd {
	return v.load
}

func (v *BoardView) load() tea.Msg {
	msg := boardLoadedMsg{
		completed: len(v.store.ListCompletedTasks("")),
		hidden:    v.store.HiddenCount(),
	}
	for _, p := range v.store.ListVisibleProjects() {
		tasks := v.store.ListTasksByProject(p.Name, v.showCompleted)
		open := 0
		for _, t := range tasks {
			if !t.Completed {
				open++
			}
		}
		msg.columns = append(msg.columns, column{project: p, tasks: tasks, open: open})
	}
	return msg
}

// reload refreshes the columns after a store call
func (v *BoardView) reload() {
	v.apply(v.load().(boardLoadedMsg))
}

func (v *BoardView) apply(msg boardLoadedMsg) {
	v.columns = msg.columns
	v.completed = msg.completed
	v.hidden = msg.hidden
	v.loaded = true

	if v.grabbing {
		// the cursor follows the grabbed task wherever it landed
		for ci, c := range v.columns {
			for ri, t := range c.tasks {
				if t.ID == v.grab.id {
					v.col, v.row = ci, ri
				}
			}
		}
	}
	v.col = clamp(v.col, 0, max(len(v.columns)-1, 0))
	v.row = clamp(v.row, 0, max(v.rows()-1, 0))
}

// Focus moves the cursor to the named project's column
func (v *BoardView) Focus(project string) {
	for i, c := range v.columns {
		if c.project.Name == project {
			v.col = i
			v.row = 0
			return
		}
	}
}

// FocusedProject returns the project under the cursor, "" on an empty board
func (v *BoardView) FocusedProject() string {
	if v.col < len(v.columns) {
		return v.columns[v.col].project.Name
	}
	return ""
}

// Busy reports whether the board is capturing keys for an overlay or input
func (v *BoardView) Busy() bool {
	return v.adding || v.editing || v.confirmingDelete || v.grabbing || v.showHelpPopup
}

func (v *BoardView) rows() int {
	if v.col < len(v.columns) {
		return len(v.columns[v.col].tasks)
	}
	return 0
}

func (v *BoardView) current() (models.Task, bool) {
	if v.col >= len(v.columns) {
		return models.Task{}, false
	}
	c := v.columns[v.col]
	if v.row >= len(c.tasks) {
		return models.Task{}, false
	}
	return c.tasks[v.row], true
}

// Update handles messages
func (v *BoardView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		v.input.Width = clamp(styles.ContentWidth(v.width)-10, 20, 60)
		v.help.Width = v.width
		return v, nil

	case boardLoadedMsg:
		v.apply(msg)
		return v, nil

	case tea.KeyMsg:
		// Handle help popup first - any key closes it
		if v.showHelpPopup {
			v.showHelpPopup = false
			return v, nil
		}

		if v.confirmingDelete {
			return v.updateConfirmDelete(msg)
		}

		if v.adding || v.editing {
			return v.updateInput(msg)
		}

		if v.grabbing {
			return v.updateGrabbing(msg)
		}

		return v.updateNormal(msg)
	}

	return v, nil
}

func (v *BoardView) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	v.status = status{}

	switch {
	case key.Matches(msg, v.keys.Quit):
		return v, tea.Quit

	case key.Matches(msg, v.keys.Help):
		v.showHelpPopup = true
		return v, nil

	case key.Matches(msg, v.keys.Left):
		if v.col > 0 {
			v.col--
			v.row = clamp(v.row, 0, max(v.rows()-1, 0))
		}
		return v, nil

	case key.Matches(msg, v.keys.Right):
		if v.col < len(v.columns)-1 {
			v.col++
			v.row = clamp(v.row, 0, max(v.rows()-1, 0))
		}
		return v, nil

	case key.Matches(msg, v.keys.Up):
		if v.row > 0 {
			v.row--
		}
		return v, nil

	case key.Matches(msg, v.keys.Down):
		if v.row < v.rows()-1 {
			v.row++
		}
		return v, nil

	case key.Matches(msg, v.keys.Enter):
		if t, ok := v.current(); ok {
			return v, func() tea.Msg { return OpenTask{ID: t.ID} }
		}
		return v, nil

	case key.Matches(msg, v.keys.Grab):
		v.startGrab()
		return v, nil

	case key.Matches(msg, v.keys.New):
		if len(v.columns) == 0 {
			v.status = status{text: "no visible project to add to", level: statusError}
			return v, nil
		}
		v.adding = true
		v.input.Reset()
		v.input.Focus()
		return v, textinput.Blink

	case key.Matches(msg, v.keys.Edit):
		if t, ok := v.current(); ok {
			v.editing = true
			v.input.SetValue(t.Text)
			v.input.CursorEnd()
			v.input.Focus()
			return v, textinput.Blink
		}
		return v, nil

	case key.Matches(msg, v.keys.Delete):
		if t, ok := v.current(); ok {
			v.confirmingDelete = true
			v.deleteTargetID = t.ID
			v.deleteTargetName = t.Text
		}
		return v, nil

	case key.Matches(msg, v.keys.Complete):
		if t, ok := v.current(); ok {
			updated, err := v.store.ToggleComplete(t.ID)
			done := "reopened"
			if updated.Completed {
				done = "completed"
			}
			v.status = statusFor(err, done+" "+truncate(t.Text, 30))
			v.reload()
		}
		return v, nil

	case key.Matches(msg, v.keys.ShowCompleted):
		v.showCompleted = !v.showCompleted
		v.saveBool(db.SettingShowCompleted, v.showCompleted)
		v.reload()
		return v, nil

	case key.Matches(msg, v.keys.Hide):
		if name := v.FocusedProject(); name != "" {
			hidden, err := v.store.ToggleProjectHidden(name)
			if hidden {
				v.status = statusFor(err, "hid "+name+" (V shows all)")
			} else {
				v.status = statusFor(err, "showing "+name)
			}
			v.reload()
		}
		return v, nil

	case key.Matches(msg, v.keys.ShowAll):
		v.status = statusFor(v.store.ShowAllProjects(), "showing all projects")
		v.reload()
		return v, nil

	case key.Matches(msg, v.keys.Projects):
		return v, func() tea.Msg { return ShowProjects{} }

	case key.Matches(msg, v.keys.Tutorial):
		return v, func() tea.Msg { return ShowTutorial{} }

	case key.Matches(msg, v.keys.Theme):
		return v, func() tea.Msg { return ToggleTheme{} }

	case key.Matches(msg, v.keys.Notice):
		v.noticeMinimized = !v.noticeMinimized
		v.saveBool(db.SettingNoticeMinimized, v.noticeMinimized)
		return v, nil
	}

	return v, nil
}

func (v *BoardView) startGrab() {
	t, ok := v.current()
	if !ok {
		return
	}
	if t.Completed {
		v.status = status{text: "completed tasks cannot be moved", level: statusError}
		return
	}
	c := v.columns[v.col]
	var before models.ID
	if v.row+1 < c.open {
		before = c.tasks[v.row+1].ID
	}
	v.grabbing = true
	v.grab = grab{id: t.ID, project: t.Project, before: before}
	v.status = status{text: "moving " + truncate(t.Text, 30) + ": arrows move, space drops, esc cancels"}
}

// updateGrabbing moves the grabbed task with the cursor keys. Every step is a
// MoveTask call so the board is consistent after each key press.
func (v *BoardView) updateGrabbing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var err error
	switch {
	case key.Matches(msg, v.keys.Quit):
		return v, tea.Quit

	case key.Matches(msg, v.keys.Grab), key.Matches(msg, v.keys.Enter):
		v.grabbing = false
		v.status = status{text: "dropped"}
		log.Debug().Str("task", string(v.grab.id)).Str("project", v.FocusedProject()).Msg("board: task dropped")
		return v, nil

	case key.Matches(msg, v.keys.Back):
		err = v.store.MoveTask(v.grab.id, v.grab.project, v.grab.before)
		v.reload()
		v.grabbing = false
		v.status = statusFor(err, "move cancelled")
		return v, nil

	case key.Matches(msg, v.keys.Up):
		err = v.store.MoveTaskUp(v.grab.id)

	case key.Matches(msg, v.keys.Down):
		err = v.store.MoveTaskDown(v.grab.id)

	case key.Matches(msg, v.keys.Left):
		err = v.moveAcross(-1)

	case key.Matches(msg, v.keys.Right):
		err = v.moveAcross(1)

	default:
		return v, nil
	}

	if err != nil {
		v.status = statusFor(err, "")
	}
	v.reload()
	return v, nil
}

// moveAcross drops the grabbed task into the neighbouring column at the same height
func (v *BoardView) moveAcross(dir int) error {
	target := v.col + dir
	if target < 0 || target >= len(v.columns) {
		return nil
	}
	c := v.columns[target]
	var before models.ID
	if v.row < c.open {
		before = c.tasks[v.row].ID
	}
	return v.store.MoveTask(v.grab.id, c.project.Name, before)
}

func (v *BoardView) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Back):
		v.adding, v.editing = false, false
		v.input.Blur()
		return v, nil

	case key.Matches(msg, v.keys.Enter):
		text := strings.TrimSpace(v.input.Value())
		if text == "" {
			v.status = status{text: "task text is empty", level: statusError}
			return v, nil
		}
		if v.adding {
			project := v.FocusedProject()
			t, err := v.store.AddTask(text, project)
			v.status = statusFor(err, "added to "+project)
			v.reload()
			if err == nil || store.IsStorageWarning(err) {
				v.row = t.Priority
			}
		} else if t, ok := v.current(); ok {
			_, err := v.store.EditTask(t.ID, text)
			v.status = statusFor(err, "updated")
			v.reload()
		}
		v.adding, v.editing = false, false
		v.input.Blur()
		return v, nil
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

func (v *BoardView) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		v.status = statusFor(v.store.DeleteTask(v.deleteTargetID), "deleted")
		v.confirmingDelete = false
		v.reload()
		return v, nil
	case "n", "N", "esc":
		v.confirmingDelete = false
		return v, nil
	}
	return v, nil
}

func (v *BoardView) saveBool(key string, value bool) {
	if err := v.settings.SetBool(key, value); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("board: save setting")
	}
}

// View renders the view
func (v *BoardView) View() string {
	if v.showHelpPopup {
		return v.renderHelpPopup()
	}

	if v.confirmingDelete {
		return v.renderDeleteConfirm()
	}

	if !v.loaded {
		return v.styles.TitleMuted.Render("Loading...")
	}

	parts := []string{v.renderHeader()}
	if len(v.columns) == 0 {
		parts = append(parts, v.renderEmpty())
	} else {
		parts = append(parts, v.renderColumns())
	}
	if v.adding || v.editing {
		parts = append(parts, v.renderInput())
	}
	if st := v.status.render(v.styles); st != "" {
		parts = append(parts, st)
	}
	parts = append(parts, v.renderNotice(), v.renderHelp())
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (v *BoardView) renderHeader() string {
	s := v.styles
	open := 0
	for _, c := range v.columns {
		open += c.open
	}
	info := fmt.Sprintf("%d open • %d done", open, v.completed)
	if v.hidden > 0 {
		info += fmt.Sprintf(" • %d hidden", v.hidden)
	}
	return s.TitleBar.Render(s.Title.Render("TaskFlow") + "  " + s.TitleMuted.Render(info))
}

func (v *BoardView) renderEmpty() string {
	s := v.styles
	msg := "No projects yet. Press 'p' to create one."
	if v.hidden > 0 {
		msg = "Every project is hidden. Press 'V' to show them."
	}
	return lipgloss.Place(max(v.width, 40), max(v.height-8, 3),
		lipgloss.Center, lipgloss.Center,
		s.TitleMuted.Render(msg),
	)
}

// visibleColumns returns how many columns fit and keeps the cursor column on screen
func (v *BoardView) visibleColumns() int {
	n := 1
	if v.width > 0 {
		n = max(v.width/(styles.ColumnWidth+4), 1)
	}
	if v.col < v.offset {
		v.offset = v.col
	} else if v.col >= v.offset+n {
		v.offset = v.col - n + 1
	}
	v.offset = clamp(v.offset, 0, max(len(v.columns)-n, 0))
	return n
}

func (v *BoardView) renderColumns() string {
	n := v.visibleColumns()
	end := min(v.offset+n, len(v.columns))
	height := max(v.height-10, 5)

	var cols []string
	for i := v.offset; i < end; i++ {
		cols = append(cols, v.renderColumn(i, height))
	}
	board := lipgloss.JoinHorizontal(lipgloss.Top, cols...)

	var more []string
	if v.offset > 0 {
		more = append(more, fmt.Sprintf("← %d more", v.offset))
	}
	if end < len(v.columns) {
		more = append(more, fmt.Sprintf("%d more →", len(v.columns)-end))
	}
	if len(more) > 0 {
		board = lipgloss.JoinVertical(lipgloss.Left, board, v.styles.TitleMuted.Render(strings.Join(more, "   ")))
	}
	return board
}

func (v *BoardView) renderColumn(i, height int) string {
	s := v.styles
	c := v.columns[i]
	focused := i == v.col
	width := styles.ColumnWidth

	header := s.ProjectHeader(c.project.Color).Width(width).
		Render(truncate(fmt.Sprintf("%s (%d)", c.project.Name, c.open), width-2))

	lines := []string{header, ""}
	if len(c.tasks) == 0 {
		lines = append(lines, s.TitleMuted.Render("no tasks"))
	}

	rows := max(height-3, 1)
	start, stop := window(len(c.tasks), v.row, rows, focused)
	for r := start; r < stop; r++ {
		t := c.tasks[r]
		if r == c.open && r > 0 {
			lines = append(lines, s.TitleMuted.Render(strings.Repeat("─", width-2)))
		}
		lines = append(lines, v.renderTask(t, c.project.Color, width, focused && r == v.row))
	}

	style := s.Column
	if focused {
		style = s.ColumnFocused
	}
	return style.Width(width + 2).Height(height).Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

// window returns the slice of n rows to draw so that cursor stays visible
func window(n, cursor, size int, focused bool) (int, int) {
	if n <= size {
		return 0, n
	}
	start := 0
	if focused && cursor >= size {
		start = cursor - size + 1
	}
	return start, min(start+size, n)
}

func (v *BoardView) renderTask(t models.Task, color string, width int, selected bool) string {
	s := v.styles
	if t.Completed {
		when := ""
		if t.CompletedAt != nil {
			when = " " + Ago(*t.CompletedAt, v.now())
		}
		style := s.TaskCompleted.Foreground(s.Faded(color).GetForeground())
		if selected {
			style = style.Background(styles.Current.Selection)
		}
		return style.Width(width).Render(truncate(t.Text, width-len(when)-3) + s.TitleMuted.Render(when))
	}

	text := truncate(fmt.Sprintf("%d. %s", t.Priority+1, t.Text), width-2)
	if len(t.Comments) > 0 {
		text = truncate(fmt.Sprintf("%d. %s", t.Priority+1, t.Text), width-6) + s.TitleMuted.Render(fmt.Sprintf(" ✎%d", len(t.Comments)))
	}
	switch {
	case v.grabbing && t.ID == v.grab.id:
		return s.TaskGrabbed.Width(width).Render(text)
	case selected:
		return s.ListSelected.Padding(0, 1).Width(width).Render(text)
	}
	return s.TaskItem.Width(width).Render(text)
}

func (v *BoardView) renderInput() string {
	s := v.styles
	label := "New task in " + v.FocusedProject()
	if v.editing {
		label = "Edit task"
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		s.Title.Render(label),
		s.InputFocused.Render(v.input.View()),
		s.TitleMuted.Render("↵ save • esc cancel"),
	)
}

func (v *BoardView) renderNotice() string {
	s := v.styles
	if v.noticeMinimized {
		return s.TitleMuted.Render(" ⓘ stored locally (i)")
	}
	return s.Notice.Width(max(v.width-2, 20)).Render(fmt.Sprintf(
		"Your board is stored only on this machine in %s. Use `taskflow export` for backups. Press i to minimize.",
		v.dataPath))
}

func (v *BoardView) renderHelp() string {
	s := v.styles
	if v.grabbing {
		return s.Help.Render(fmt.Sprintf("%s move • %s drop • %s cancel",
			s.HelpKey.Render("←↑↓→"),
			s.HelpKey.Render("space"),
			s.HelpKey.Render("esc"),
		))
	}
	v.help.Styles.ShortKey = s.HelpKey
	v.help.Styles.ShortDesc = s.HelpDesc
	v.help.Styles.FullKey = s.HelpKey
	v.help.Styles.FullDesc = s.HelpDesc
	return s.Help.Render(v.help.ShortHelpView(v.keys.ShortHelp()))
}

func (v *BoardView) renderHelpPopup() string {
	s := v.styles
	v.help.Styles.FullKey = s.HelpKey
	v.help.Styles.FullDesc = s.HelpDesc

	content := lipgloss.JoinVertical(lipgloss.Left,
		s.Title.Render("Keyboard Shortcuts"),
		"",
		v.help.FullHelpView(v.keys.FullHelp()),
		"",
		s.TitleMuted.Render("Press any key to close"),
	)

	return lipgloss.Place(max(v.width, 40), max(v.height, 10),
		lipgloss.Center, lipgloss.Center,
		s.Popup.Render(content),
	)
}

func (v *BoardView) renderDeleteConfirm() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	content := lipgloss.JoinVertical(lipgloss.Center,
		s.Title.Foreground(styles.Current.Error).Render("Delete Task?"),
		"",
		s.TitleMuted.Render(truncate(v.deleteTargetName, max(contentWidth-4, 10))),
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
