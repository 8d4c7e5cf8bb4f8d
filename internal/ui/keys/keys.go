// Package keys defines the key bindings shared by every view.
package keys

import "github.com/charmbracelet/bubbles/key"

// KeyMap holds all key bindings
type KeyMap struct {
	Up    key.Binding
	Down  key.Binding
	Left  key.Binding
	Right key.Binding
	Enter key.Binding
	Back  key.Binding
	Quit  key.Binding
	Tab   key.Binding
	Save  key.Binding

	New      key.Binding
	Edit     key.Binding
	Delete   key.Binding
	Rename   key.Binding
	Recolor  key.Binding
	Comment  key.Binding
	Grab     key.Binding
	Complete key.Binding

	ShowCompleted key.Binding
	Hide          key.Binding
	ShowAll       key.Binding
	Projects      key.Binding
	Theme         key.Binding
	Notice        key.Binding
	Tutorial      key.Binding
	Help          key.Binding
}

// DefaultKeyMap returns the default key bindings
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Left: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←/h", "left"),
		),
		Right: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→/l", "right"),
		),
		Enter: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("↵", "open"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Tab: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next field"),
		),
		Save: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("ctrl+s", "save"),
		),
		New: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "new"),
		),
		Edit: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "edit"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete"),
		),
		Rename: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "rename"),
		),
		Recolor: key.NewBinding(
			key.WithKeys("C"),
			key.WithHelp("C", "color"),
		),
		Comment: key.NewBinding(
			key.WithKeys("c", "a"),
			key.WithHelp("c", "comment"),
		),
		Grab: key.NewBinding(
			key.WithKeys("m", " "),
			key.WithHelp("m/space", "grab/drop"),
		),
		Complete: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "done/undo"),
		),
		ShowCompleted: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "completed"),
		),
		Hide: key.NewBinding(
			key.WithKeys("v"),
			key.WithHelp("v", "hide column"),
		),
		ShowAll: key.NewBinding(
			key.WithKeys("V"),
			key.WithHelp("V", "show all"),
		),
		Projects: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "projects"),
		),
		Theme: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "theme"),
		),
		Notice: key.NewBinding(
			key.WithKeys("i"),
			key.WithHelp("i", "storage info"),
		),
		Tutorial: key.NewBinding(
			key.WithKeys("T"),
			key.WithHelp("T", "tutorial"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
	}
}

// ShortHelp is shown in the board footer
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Enter, k.New, k.Grab, k.Complete, k.Delete, k.Projects, k.Help, k.Quit}
}

// FullHelp is shown in the help overlay
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right, k.Enter},
		{k.New, k.Edit, k.Delete, k.Complete, k.Grab},
		{k.ShowCompleted, k.Hide, k.ShowAll, k.Projects},
		{k.Theme, k.Notice, k.Tutorial, k.Help, k.Quit},
	}
}
