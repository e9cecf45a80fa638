// Package ui provides the interactive terminal interface.
package ui

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"daytask/internal/output"
	"daytask/internal/session"
	"daytask/internal/task"
)

// keyPanelCloseDelay is how long the key panel stays open after a
// successful connection test.
const keyPanelCloseDelay = 1500 * time.Millisecond

var (
	titleStyle    = lipgloss.NewStyle().Bold(true)
	selectedStyle = lipgloss.NewStyle().Reverse(true)
	todayStyle    = lipgloss.NewStyle().Underline(true)
	otherStyle    = lipgloss.NewStyle().Faint(true)
	doneStyle     = lipgloss.NewStyle().Strikethrough(true).Faint(true)
	cursorStyle   = lipgloss.NewStyle().Bold(true)
	statusStyle   = lipgloss.NewStyle().Italic(true)
	panelStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

type mode int

const (
	modeBrowse mode = iota
	modeAdd
	modeKey
	modeDir
)

type suggestionsMsg session.Suggestions

type keyTestMsg struct {
	ok  bool
	msg string
}

type closeKeyPanelMsg struct{}

// Run starts the terminal interface on sess.
func Run(ctx context.Context, sess *session.Session) error {
	if !IsTTY(os.Stdout) {
		return fmt.Errorf("tui requires a TTY")
	}
	program := tea.NewProgram(newModel(ctx, sess), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := program.Run()
	return err
}

type model struct {
	ctx  context.Context
	sess *session.Session

	mode       mode
	cursor     int
	input      textinput.Model
	status     string
	generating bool
	testing    bool
}

func newModel(ctx context.Context, sess *session.Session) *model {
	ti := textinput.New()
	ti.CharLimit = 256
	ti.Width = 40
	return &model{ctx: ctx, sess: sess, input: ti}
}

func (m *model) Init() tea.Cmd {
	return nil
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch m.mode {
		case modeAdd:
			return m.updateAdd(msg)
		case modeKey:
			return m.updateKey(msg)
		case modeDir:
			return m.updateDir(msg)
		}
		return m.updateBrowse(msg)

	case suggestionsMsg:
		m.generating = false
		sg := session.Suggestions(msg)
		if sg.Err != nil {
			m.status = "could not generate suggestions"
			return m, nil
		}
		added, err := m.sess.ApplySuggestions(m.ctx, sg)
		switch {
		case err != nil:
			m.status = err.Error()
		case added:
			m.status = fmt.Sprintf("added %d suggestions", len(sg.Tasks))
		case len(sg.Tasks) == 0:
			m.status = "no suggestions"
		default:
			m.status = "suggestions discarded (date changed)"
		}
		return m, nil

	case keyTestMsg:
		m.testing = false
		m.status = msg.msg
		if msg.ok {
			return m, tea.Tick(keyPanelCloseDelay, func(time.Time) tea.Msg { return closeKeyPanelMsg{} })
		}
		return m, nil

	case closeKeyPanelMsg:
		if m.mode == modeKey {
			m.closeInput()
		}
		return m, nil
	}
	return m, nil
}

func (m *model) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc":
		return m, tea.Quit
	case "left", "h":
		m.moveDays(-1)
	case "right", "l":
		m.moveDays(1)
	case "[":
		m.moveDays(-7)
	case "]":
		m.moveDays(7)
	case "p":
		m.moveMonths(-1)
	case "n":
		m.moveMonths(1)
	case "t":
		m.selectDate(m.sess.Today())
	case "up":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down":
		if m.cursor < len(m.tasks())-1 {
			m.cursor++
		}
	case " ", "space", "enter":
		if t, ok := m.current(); ok {
			m.mutate(func(ctx context.Context, key string) error {
				_, err := m.sess.Store.ToggleTask(ctx, key, t.ID)
				return err
			})
		}
	case "x", "d", "delete":
		if t, ok := m.current(); ok {
			m.mutate(func(ctx context.Context, key string) error {
				_, err := m.sess.Store.DeleteTask(ctx, key, t.ID)
				return err
			})
		}
	case "a":
		return m, m.openInput(modeAdd, "What needs doing?", "")
	case "k":
		return m, m.openInput(modeKey, "API key", m.sess.Keys.Input())
	case "g":
		return m, m.generate()
	case "c":
		return m, m.openInput(modeDir, "Directory path", m.sess.Directory())
	case "u":
		if m.sess.Directory() == "" {
			m.status = "no directory connected"
			return m, nil
		}
		m.sess.Disconnect()
		m.status = "directory disconnected, changes are no longer saved"
	}
	return m, nil
}

func (m *model) updateAdd(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.closeInput()
		return m, nil
	case "enter":
		text := strings.TrimSpace(m.input.Value())
		if text == "" {
			return m, nil
		}
		m.mutate(func(ctx context.Context, key string) error {
			_, err := m.sess.Store.AddTask(ctx, key, text)
			return err
		})
		m.closeInput()
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *model) updateDir(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.closeInput()
		return m, nil
	case "enter":
		dir := strings.TrimSpace(m.input.Value())
		if dir == "" {
			return m, nil
		}
		if err := m.sess.Connect(m.ctx, dir); err != nil {
			m.status = err.Error()
			return m, nil
		}
		m.closeInput()
		m.cursor = 0
		m.status = "connected to " + dir
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *model) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.closeInput()
		return m, nil
	case "enter":
		if m.testing {
			return m, nil
		}
		m.sess.Keys.SetInput(m.input.Value())
		m.testing = true
		m.status = "testing connection..."
		keys, ctx := m.sess.Keys, m.ctx
		return m, func() tea.Msg {
			ok, msg := keys.TestAndApply(ctx)
			return keyTestMsg{ok: ok, msg: msg}
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// generate starts a suggestion request for the selected date. The reply is
// tagged with that date and applied only if it is still selected.
func (m *model) generate() tea.Cmd {
	if m.generating {
		return nil
	}
	if m.sess.Keys.Key() == "" {
		m.status = "API key required"
		return m.openInput(modeKey, "API key", m.sess.Keys.Input())
	}
	m.generating = true
	m.status = "generating..."
	sess, ctx, key := m.sess, m.ctx, m.sess.Selected()
	return func() tea.Msg {
		return suggestionsMsg(sess.RequestSuggestionsFor(ctx, key))
	}
}

func (m *model) openInput(md mode, placeholder, value string) tea.Cmd {
	m.mode = md
	m.input.Placeholder = placeholder
	m.input.SetValue(value)
	m.input.EchoMode = textinput.EchoNormal
	if md == modeKey {
		m.input.EchoMode = textinput.EchoPassword
	}
	return m.input.Focus()
}

func (m *model) closeInput() {
	m.mode = modeBrowse
	m.input.Reset()
	m.input.Blur()
}

func (m *model) mutate(op func(ctx context.Context, key string) error) {
	if err := op(m.ctx, m.sess.Selected()); err != nil {
		m.status = err.Error()
		return
	}
	if n := len(m.tasks()); m.cursor >= n {
		m.cursor = max(n-1, 0)
	}
}

func (m *model) selectDate(key string) {
	if err := m.sess.Select(key); err != nil {
		m.status = err.Error()
		return
	}
	m.cursor = 0
}

func (m *model) moveDays(n int) {
	m.selectDate(task.KeyOf(m.selectedDay().AddDate(0, 0, n)))
}

func (m *model) moveMonths(n int) {
	d := m.selectedDay()
	first := time.Date(d.Year(), d.Month()+time.Month(n), 1, 0, 0, 0, 0, d.Location())
	day := min(d.Day(), first.AddDate(0, 1, -1).Day())
	m.selectDate(task.KeyOf(first.AddDate(0, 0, day-1)))
}

func (m *model) selectedDay() time.Time {
	d, err := task.DateOf(m.sess.Selected(), m.sess.Now().Location())
	if err != nil {
		return m.sess.Now()
	}
	return d
}

func (m *model) tasks() []task.Task {
	return task.SortForDisplay(m.sess.Store.Bucket(m.sess.Selected()))
}

func (m *model) current() (task.Task, bool) {
	ts := m.tasks()
	if m.cursor < 0 || m.cursor >= len(ts) {
		return task.Task{}, false
	}
	return ts[m.cursor], true
}

func (m *model) View() string {
	var b strings.Builder
	day := m.selectedDay()

	writeCalendar(&b, day, m.sess.Selected(), m.sess.Today(), m.sess.Store.Statuses())
	b.WriteString("\n")
	writeTasks(&b, day, m.tasks(), m.cursor)

	switch m.mode {
	case modeAdd:
		b.WriteString("\n" + panelStyle.Render("New task\n"+m.input.View()) + "\n")
	case modeKey:
		b.WriteString("\n" + panelStyle.Render("API key (kept for this session only)\n"+m.input.View()) + "\n")
	case modeDir:
		b.WriteString("\n" + panelStyle.Render("Save to directory\n"+m.input.View()) + "\n")
	}

	if m.status != "" {
		b.WriteString("\n" + statusStyle.Render(m.status) + "\n")
	}
	b.WriteString("\n" + footer(m.mode) + "\n")
	return b.String()
}

func writeCalendar(b *strings.Builder, anchor time.Time, selected, today string, statuses map[string]task.DayStatus) {
	first := time.Date(anchor.Year(), anchor.Month(), 1, 0, 0, 0, 0, anchor.Location())
	last := first.AddDate(0, 1, -1)
	start := first.AddDate(0, 0, -int(first.Weekday()))
	end := last.AddDate(0, 0, 6-int(last.Weekday()))

	b.WriteString(titleStyle.Render(fmt.Sprintf("%s %d", first.Month(), first.Year())) + "\n")
	b.WriteString(" Su   Mo   Tu   We   Th   Fr   Sa\n")

	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		key := task.KeyOf(d)
		mark := " "
		if st := statuses[key]; st.HasTasks {
			mark = string(output.MarkOpen)
			if st.AllCompleted {
				mark = string(output.MarkDone)
			}
		}
		cell := fmt.Sprintf("%2d%s", d.Day(), mark)
		switch {
		case key == selected:
			cell = selectedStyle.Render(cell)
		case d.Month() != first.Month():
			cell = otherStyle.Render(cell)
		case key == today:
			cell = todayStyle.Render(cell)
		}
		b.WriteString(" " + cell + " ")
		if d.Weekday() == time.Saturday {
			b.WriteString("\n")
		}
	}
}

func writeTasks(b *strings.Builder, day time.Time, ts []task.Task, cursor int) {
	done := 0
	for _, t := range ts {
		if t.IsCompleted {
			done++
		}
	}
	b.WriteString(titleStyle.Render(output.DayTitle(day)))
	b.WriteString(fmt.Sprintf("  %d/%d done (%d%%)\n", done, len(ts), task.Progress(ts)))

	if len(ts) == 0 {
		b.WriteString("  no tasks\n")
		return
	}
	for i, t := range ts {
		box := "[ ]"
		text := t.Text
		if t.IsCompleted {
			box = "[x]"
			text = doneStyle.Render(text)
		}
		prefix := "  "
		if i == cursor {
			prefix = cursorStyle.Render("> ")
		}
		b.WriteString(fmt.Sprintf("%s%s %s\n", prefix, box, text))
	}
}

func footer(md mode) string {
	switch md {
	case modeAdd:
		return "enter: add  esc: cancel"
	case modeKey:
		return "enter: test and apply  esc: close"
	case modeDir:
		return "enter: connect  esc: cancel"
	}
	return "←/→ day  [/] week  p/n month  t today  ↑/↓ task  space toggle  x delete  a add  g suggest  k key  c connect dir  u disconnect  q quit"
}

// IsTTY checks if the writer is a TTY.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
