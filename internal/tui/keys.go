package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Quit       key.Binding
	SwitchTab  key.Binding
	Up         key.Binding
	Down       key.Binding
	PrevPage   key.Binding
	NextPage   key.Binding
	GoToPage   key.Binding
	FirstPage  key.Binding
	LastPage   key.Binding
	Sort       key.Binding
	Filter     key.Binding
	EnumFilter key.Binding
	Edit       key.Binding
	Convert    key.Binding
	Detail     key.Binding
	Close      key.Binding
	Retry      key.Binding
	ClearState key.Binding
	Help       key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		SwitchTab:  key.NewBinding(key.WithKeys("tab", "shift+tab"), key.WithHelp("tab", "leads/opportunities")),
		Up:         key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:       key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		PrevPage:   key.NewBinding(key.WithKeys("left", "h", "["), key.WithHelp("←/[", "prev page")),
		NextPage:   key.NewBinding(key.WithKeys("right", "l", "]"), key.WithHelp("→/]", "next page")),
		GoToPage:   key.NewBinding(key.WithKeys("1", "2", "3", "4", "5", "6", "7", "8", "9"), key.WithHelp("1-9", "go to page")),
		FirstPage:  key.NewBinding(key.WithKeys("g", "home"), key.WithHelp("g", "first page")),
		LastPage:   key.NewBinding(key.WithKeys("G", "end"), key.WithHelp("G", "last page")),
		Sort:       key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "sort")),
		Filter:     key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "filter")),
		EnumFilter: key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "status/stage")),
		Edit:       key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit")),
		Convert:    key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "convert")),
		Detail:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "details")),
		Close:      key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "close")),
		Retry:      key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		ClearState: key.NewBinding(key.WithKeys("X"), key.WithHelp("X", "reset view")),
		Help:       key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.SwitchTab, k.Filter, k.Sort, k.Edit, k.Convert, k.Detail, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.PrevPage, k.NextPage},
		{k.GoToPage, k.FirstPage, k.LastPage},
		{k.SwitchTab, k.Filter, k.EnumFilter, k.Sort},
		{k.Edit, k.Convert, k.Detail, k.Close},
		{k.Retry, k.ClearState, k.Help, k.Quit},
	}
}

// editKeyMap is active while a row is being edited.
type editKeyMap struct {
	Save      key.Binding
	Cancel    key.Binding
	NextField key.Binding
	Prev      key.Binding
	Next      key.Binding
}

func defaultEditKeyMap() editKeyMap {
	return editKeyMap{
		Save:      key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "save")),
		Cancel:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		NextField: key.NewBinding(key.WithKeys("tab", "shift+tab"), key.WithHelp("tab", "next field")),
		Prev:      key.NewBinding(key.WithKeys("left"), key.WithHelp("←", "previous")),
		Next:      key.NewBinding(key.WithKeys("right", " "), key.WithHelp("→", "next")),
	}
}

func (k editKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Save, k.Cancel, k.NextField, k.Prev, k.Next}
}

func (k editKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}
