package ui

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"daytask/internal/persist"
	"daytask/internal/testutil"
)

func key(s string) tea.KeyMsg {
	switch s {
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func typeText(m *model, s string) {
	for _, r := range s {
		m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

func newTestModel(sugg *testutil.FakeSuggester) *model {
	return newModel(context.Background(), testutil.NewSession(persist.Nop{}, sugg))
}

func TestNavigation(t *testing.T) {
	m := newTestModel(nil)
	assert.Equal(t, "2024-03-15", m.sess.Selected())

	m.Update(key("right"))
	assert.Equal(t, "2024-03-16", m.sess.Selected())
	m.Update(key("["))
	assert.Equal(t, "2024-03-09", m.sess.Selected())
	m.Update(key("n"))
	assert.Equal(t, "2024-04-09", m.sess.Selected())
	m.Update(key("t"))
	assert.Equal(t, "2024-03-15", m.sess.Selected())
}

func TestMonthMoveClampsDay(t *testing.T) {
	m := newTestModel(nil)
	require.NoError(t, m.sess.Select("2024-01-31"))
	m.Update(key("n"))
	assert.Equal(t, "2024-02-29", m.sess.Selected())
}

func TestAddToggleDelete(t *testing.T) {
	m := newTestModel(nil)

	m.Update(key("a"))
	require.Equal(t, modeAdd, m.mode)
	typeText(m, "Buy milk")
	m.Update(key("enter"))
	assert.Equal(t, modeBrowse, m.mode)

	bucket := m.sess.Store.Bucket("2024-03-15")
	require.Len(t, bucket, 1)
	assert.Equal(t, "Buy milk", bucket[0].Text)

	m.Update(tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	assert.True(t, m.sess.Store.Bucket("2024-03-15")[0].IsCompleted)

	m.Update(key("x"))
	assert.Empty(t, m.sess.Store.Bucket("2024-03-15"))
}

func TestAdd_BlankIgnored(t *testing.T) {
	m := newTestModel(nil)
	m.Update(key("a"))
	typeText(m, "   ")
	m.Update(key("enter"))
	assert.Equal(t, modeAdd, m.mode)
	assert.Empty(t, m.sess.Store.Bucket("2024-03-15"))

	m.Update(key("esc"))
	assert.Equal(t, modeBrowse, m.mode)
}

func TestGenerate_WithoutKeyOpensPanel(t *testing.T) {
	sugg := &testutil.FakeSuggester{Texts: []string{"a"}}
	m := newTestModel(sugg)

	m.Update(key("g"))
	assert.Equal(t, modeKey, m.mode)
	assert.Equal(t, "API key required", m.status)
	assert.Equal(t, 0, sugg.SuggestCalls)
}

func TestGenerate_Applies(t *testing.T) {
	sugg := &testutil.FakeSuggester{Texts: []string{"Plan", "Walk"}}
	m := newTestModel(sugg)
	m.sess.Keys.SetKey("k")

	_, cmd := m.Update(key("g"))
	require.NotNil(t, cmd)
	m.Update(cmd())

	assert.Len(t, m.sess.Store.Bucket("2024-03-15"), 2)
	assert.Equal(t, "added 2 suggestions", m.status)
	assert.False(t, m.generating)
}

func TestGenerate_StaleDiscarded(t *testing.T) {
	sugg := &testutil.FakeSuggester{Texts: []string{"Plan"}}
	m := newTestModel(sugg)
	m.sess.Keys.SetKey("k")

	_, cmd := m.Update(key("g"))
	require.NotNil(t, cmd)
	m.Update(key("right"))
	m.Update(cmd())

	assert.Empty(t, m.sess.Store.Bucket("2024-03-15"))
	assert.Empty(t, m.sess.Store.Bucket("2024-03-16"))
	assert.Equal(t, "suggestions discarded (date changed)", m.status)
}

func TestKeyPanel_TestAndClose(t *testing.T) {
	sugg := &testutil.FakeSuggester{ValidKey: "good"}
	m := newTestModel(sugg)

	m.Update(key("k"))
	require.Equal(t, modeKey, m.mode)
	typeText(m, "bad")
	_, cmd := m.Update(key("enter"))
	require.NotNil(t, cmd)
	_, next := m.Update(cmd())
	assert.Nil(t, next)
	assert.Equal(t, modeKey, m.mode)
	assert.Equal(t, "", m.sess.Keys.Key())

	m.input.SetValue("good")
	_, cmd = m.Update(key("enter"))
	_, next = m.Update(cmd())
	assert.NotNil(t, next)
	assert.Equal(t, "good", m.sess.Keys.Key())

	m.Update(closeKeyPanelMsg{})
	assert.Equal(t, modeBrowse, m.mode)
}

func TestDirectoryConnectAndDisconnect(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "2024-03-15.json"),
		[]byte(`[{"id":"a","text":"From disk","isCompleted":false,"createdAt":1}]`), 0o644))
	m := newTestModel(nil)

	m.Update(key("c"))
	require.Equal(t, modeDir, m.mode)
	typeText(m, dir)
	m.Update(key("enter"))
	assert.Equal(t, modeBrowse, m.mode)
	assert.Equal(t, "connected to "+dir, m.status)
	require.Len(t, m.tasks(), 1)
	assert.Equal(t, "From disk", m.tasks()[0].Text)

	m.Update(key("u"))
	assert.Equal(t, "", m.sess.Directory())
	m.Update(key("a"))
	typeText(m, "Not saved")
	m.Update(key("enter"))
	assert.Len(t, m.tasks(), 2)
	data, err := os.ReadFile(filepath.Join(dir, "2024-03-15.json"))
	require.NoError(t, err)
	assert.NotContains(t, string(data), "Not saved")

	m.Update(key("u"))
	assert.Equal(t, "no directory connected", m.status)
}

func TestDirectoryConnectFailure(t *testing.T) {
	m := newTestModel(nil)
	m.Update(key("c"))
	typeText(m, filepath.Join(t.TempDir(), "missing"))
	m.Update(key("enter"))

	assert.Equal(t, modeDir, m.mode)
	assert.Contains(t, m.status, "directory unavailable")
}

func TestView(t *testing.T) {
	m := newTestModel(nil)
	_, err := m.sess.Store.AddTask(context.Background(), "2024-03-15", "Buy milk")
	require.NoError(t, err)

	v := m.View()
	assert.Contains(t, v, "March 2024")
	assert.Contains(t, v, "Friday, March 15")
	assert.Contains(t, v, "0/1 done (0%)")
	assert.Contains(t, v, "Buy milk")
}

func TestIsTTY(t *testing.T) {
	assert.False(t, IsTTY(&bytes.Buffer{}))
}
