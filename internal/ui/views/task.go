package views

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tgienger/taskflow/internal/models"
	"github.com/tgienger/taskflow/internal/store"
	"github.com/tgienger/taskflow/internal/ui/keys"
	"github.com/tgienger/taskflow/internal/ui/styles"
)

// TaskView shows one task with its comments
type TaskView struct {
	store  *store.Store
	styles *styles.Styles
	keys   keys.KeyMap
	now    func() time.Time

	width  int
	height int

	id      models.ID
	task    models.Task
	project models.Project
	cursor  int // selected comment

	// Comment input
	commentInput        textarea.Model
	commentInputFocused bool

	// Task text edit
	editing   bool
	editInput textinput.Model

	// Delete comment confirmation
	confirmingDelete bool

	status status
}

// NewTaskView creates the detail view for task id
func NewTaskView(st *store.Store, s *styles.Styles, id models.ID) *TaskView {
	commentInput := textarea.New()
	commentInput.Placeholder = "Add a comment..."
	commentInput.CharLimit = 2000
	commentInput.SetWidth(50)
	commentInput.SetHeight(3)
	commentInput.ShowLineNumbers = false

	editInput := textinput.New()
	editInput.Placeholder = "Task text"
	editInput.CharLimit = 500

	return &TaskView{
		store:        st,
		styles:       s,
		keys:         keys.DefaultKeyMap(),
		now:          time.Now,
		id:           id,
		commentInput: commentInput,
		editInput:    editInput,
	}
}

type taskLoadedMsg struct {
	task    models.Task
	project models.Project
	err     error
}

// Init initializes the view
func (v *TaskView) Init() tea.Cmd {
	return v.loadTask
}

func (v *TaskView) loadTask() tea.Msg {
	t, err := v.store.Task(v.id)
	if err != nil {
		return taskLoadedMsg{err: err}
	}
	p, err := v.store.Project(t.Project)
	return taskLoadedMsg{task: t, project: p, err: err}
}

// reload refreshes the task after a store call. A task that vanished sends
// the user back to the board.
func (v *TaskView) reload() tea.Cmd {
	return v.apply(v.loadTask().(taskLoadedMsg))
}

func (v *TaskView) apply(msg taskLoadedMsg) tea.Cmd {
	if errors.Is(msg.err, store.ErrNotFound) && msg.task.ID == "" {
		return func() tea.Msg { return BackToBoard{} }
	}
	v.task = msg.task
	v.project = msg.project
	v.cursor = clamp(v.cursor, 0, max(len(v.task.Comments)-1, 0))
	return nil
}

// Update handles messages
func (v *TaskView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		// Update input widths dynamically based on content width
		contentWidth := styles.ContentWidth(v.width)
		inputWidth := clamp(contentWidth-10, 20, 50)
		v.commentInput.SetWidth(inputWidth)
		v.editInput.Width = inputWidth
		return v, nil

	case taskLoadedMsg:
		return v, v.apply(msg)

	case tea.KeyMsg:
		if v.confirmingDelete {
			return v.updateConfirmDelete(msg)
		}

		if v.editing {
			return v.updateEditing(msg)
		}

		if v.commentInputFocused {
			return v.updateComment(msg)
		}

		return v.updateNormal(msg)
	}

	return v, nil
}

func (v *TaskView) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	v.status = status{}

	switch {
	case key.Matches(msg, v.keys.Back):
		return v, func() tea.Msg { return BackToBoard{} }

	case key.Matches(msg, v.keys.Quit):
		return v, tea.Quit

	case key.Matches(msg, v.keys.Up):
		if v.cursor > 0 {
			v.cursor--
		}
		return v, nil

	case key.Matches(msg, v.keys.Down):
		if v.cursor < len(v.task.Comments)-1 {
			v.cursor++
		}
		return v, nil

	case key.Matches(msg, v.keys.Edit):
		v.editing = true
		v.editInput.SetValue(v.task.Text)
		v.editInput.CursorEnd()
		v.editInput.Focus()
		return v, textinput.Blink

	case key.Matches(msg, v.keys.Comment):
		// Focus comment input (c for comment, a for add)
		v.commentInputFocused = true
		v.commentInput.Focus()
		return v, textarea.Blink

	case key.Matches(msg, v.keys.Delete):
		if len(v.task.Comments) > 0 {
			v.confirmingDelete = true
		}
		return v, nil

	case key.Matches(msg, v.keys.Complete):
		t, err := v.store.ToggleComplete(v.id)
		label := "reopened"
		if t.Completed {
			label = "completed"
		}
		v.status = statusFor(err, label)
		return v, v.reload()
	}
	return v, nil
}

func (v *TaskView) updateComment(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Back):
		v.commentInputFocused = false
		v.commentInput.Blur()
		return v, nil
	case key.Matches(msg, v.keys.Save):
		// Submit comment
		return v, v.submitComment()
	}

	var cmd tea.Cmd
	v.commentInput, cmd = v.commentInput.Update(msg)
	return v, cmd
}

// submitComment adds a new comment to the task
func (v *TaskView) submitComment() tea.Cmd {
	_, err := v.store.AddComment(v.id, v.commentInput.Value())
	if err != nil && !store.IsStorageWarning(err) {
		v.status = statusFor(err, "")
		return nil
	}
	v.status = statusFor(err, "comment added")

	// Clear the input and reload
	v.commentInput.Reset()
	v.commentInputFocused = false
	v.commentInput.Blur()
	cmd := v.reload()
	v.cursor = max(len(v.task.Comments)-1, 0)
	return cmd
}

func (v *TaskView) updateEditing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Back):
		v.editing = false
		v.editInput.Blur()
		return v, nil
	case key.Matches(msg, v.keys.Enter), key.Matches(msg, v.keys.Save):
		_, err := v.store.EditTask(v.id, v.editInput.Value())
		if err != nil && !store.IsStorageWarning(err) {
			v.status = statusFor(err, "")
			return v, nil
		}
		v.status = statusFor(err, "updated")
		v.editing = false
		v.editInput.Blur()
		return v, v.reload()
	}

	var cmd tea.Cmd
	v.editInput, cmd = v.editInput.Update(msg)
	return v, cmd
}

func (v *TaskView) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		v.confirmingDelete = false
		if v.cursor < len(v.task.Comments) {
			err := v.store.DeleteComment(v.id, v.task.Comments[v.cursor].ID)
			v.status = statusFor(err, "comment deleted")
		}
		return v, v.reload()
	case "n", "N", "esc":
		v.confirmingDelete = false
		return v, nil
	}
	return v, nil
}

// View renders the view
func (v *TaskView) View() string {
	if v.confirmingDelete {
		return v.renderDeleteConfirm()
	}

	s := v.styles
	task := v.task
	maxContentWidth := styles.ContentWidth(v.width)
	textWidth := clamp(maxContentWidth-10, 20, 70)

	// Status line
	stateText := s.TaskPriority.Render(fmt.Sprintf("#%d in %s", task.Priority+1, task.Project))
	if task.Completed && task.CompletedAt != nil {
		stateText = lipgloss.NewStyle().Foreground(styles.Current.Success).
			Render("Completed " + Ago(*task.CompletedAt, v.now()))
	}

	// Build the view - use content width for text wrapping
	titleStyle := s.Title.MarginBottom(1)
	labelStyle := s.TitleMuted

	title := titleStyle.Width(textWidth).Render(task.Text)
	if v.editing {
		title = s.InputFocused.Width(textWidth).Render(v.editInput.View())
	}

	// Build comments section
	var commentsContent string
	if len(task.Comments) == 0 {
		commentsContent = s.TitleMuted.Render("No comments yet")
	} else {
		var commentLines []string
		for i, comment := range task.Comments {
			timestamp := comment.CreatedAt.Local().Format("Jan 2, 2006 3:04 PM")
			textStyle := lipgloss.NewStyle().Width(textWidth)
			if i == v.cursor && !v.commentInputFocused && !v.editing {
				textStyle = s.ListSelected.Padding(0).Width(textWidth)
			}
			commentLine := lipgloss.JoinVertical(lipgloss.Left,
				s.TitleMuted.Render(timestamp),
				textStyle.Render(comment.Text),
			)
			commentLines = append(commentLines, commentLine)
		}
		commentsContent = lipgloss.JoinVertical(lipgloss.Left, commentLines...)
	}

	// Comment input styling
	commentInputStyle := s.Input
	if v.commentInputFocused {
		commentInputStyle = s.InputFocused
	}

	// Help text changes based on what has focus
	var helpText string
	switch {
	case v.commentInputFocused:
		helpText = s.Help.Render(
			fmt.Sprintf("%s submit • %s cancel",
				s.HelpKey.Render("ctrl+s"),
				s.HelpKey.Render("esc"),
			),
		)
	case v.editing:
		helpText = s.Help.Render(
			fmt.Sprintf("%s save • %s cancel",
				s.HelpKey.Render("↵"),
				s.HelpKey.Render("esc"),
			),
		)
	default:
		helpText = s.Help.Render(
			fmt.Sprintf("%s edit • %s comment • %s del comment • %s done/undo • %s back",
				s.HelpKey.Render("e"),
				s.HelpKey.Render("c"),
				s.HelpKey.Render("d"),
				s.HelpKey.Render("x"),
				s.HelpKey.Render("esc"),
			),
		)
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		s.ProjectHeader(v.project.Color).Render(task.Project),
		"",
		title,
		stateText,
		labelStyle.Render("Created "+Ago(task.CreatedAt, v.now())),
		"",
		labelStyle.Render("Comments"),
		commentsContent,
		"",
		commentInputStyle.Render(v.commentInput.View()),
		v.status.render(s),
		helpText,
	)

	// Return with padding, not centered vertically, but horizontally centered if wide
	padded := lipgloss.NewStyle().Padding(1, 2).Render(content)
	return styles.CenterView(padded, v.width, v.height)
}

func (v *TaskView) renderDeleteConfirm() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	preview := ""
	if v.cursor < len(v.task.Comments) {
		preview = strings.SplitN(v.task.Comments[v.cursor].Text, "\n", 2)[0]
	}

	content := lipgloss.JoinVertical(lipgloss.Center,
		s.Title.Foreground(styles.Current.Error).Render("Delete Comment?"),
		"",
		s.TitleMuted.Render(truncate(preview, max(contentWidth-4, 10))),
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
