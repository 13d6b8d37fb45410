package main

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/wippyai/ucode-layout/command"
	"github.com/wippyai/ucode-layout/engine"
	"github.com/wippyai/ucode-layout/host/memhost"
	"github.com/wippyai/ucode-layout/image"
	"github.com/wippyai/ucode-layout/layout"
)

func newTestBrowser(size int) *browserModel {
	img := image.NewBytes(make([]byte, size))
	db := memhost.New(img)
	a := &app{log: zap.NewNop(), img: img, db: db, eng: engine.New(db)}
	return newBrowserModel(a, "test", 0)
}

func key(s string) tea.KeyMsg {
	switch s {
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

func TestBrowserMovement(t *testing.T) {
	m := newTestBrowser(0x1000)

	tests := []struct {
		key  string
		want uint64
	}{
		{"down", 0x10},
		{"l", 0x11},
		{"h", 0x10},
		{"up", 0x00},
		{"up", 0x00},
		{"k", 0x00},
	}
	for _, tc := range tests {
		m.Update(key(tc.key))
		if m.cursor != tc.want {
			t.Fatalf("after %s cursor = 0x%x, want 0x%x", tc.key, m.cursor, tc.want)
		}
	}

	m.moveTo(0x5000)
	if m.cursor != 0xFFF {
		t.Errorf("cursor past end = 0x%x, want 0xfff", m.cursor)
	}
	if m.top > m.cursor || m.cursor >= m.top+bytesPerRow*viewRows {
		t.Errorf("cursor 0x%x outside view at 0x%x", m.cursor, m.top)
	}
}

func TestBrowserGoto(t *testing.T) {
	m := newTestBrowser(0x1000)

	m.Update(key("g"))
	if m.state != stateGoto {
		t.Fatal("g did not open goto")
	}
	m.input.SetValue("0x320")
	m.Update(key("enter"))
	if m.state != stateBrowse || m.cursor != 0x320 {
		t.Errorf("state %d cursor 0x%x", m.state, m.cursor)
	}

	m.Update(key("g"))
	m.input.SetValue("nowhere")
	m.Update(key("enter"))
	if m.err == nil || m.cursor != 0x320 {
		t.Errorf("bad address: err %v cursor 0x%x", m.err, m.cursor)
	}

	m.Update(key("g"))
	m.Update(key("esc"))
	if m.state != stateBrowse {
		t.Error("esc did not leave goto")
	}
}

func TestBrowserApplyAtCursor(t *testing.T) {
	m := newTestBrowser(0x100 + layout.PatchSize)
	m.moveTo(0x100)

	_, cmd := m.Update(key("a"))
	if cmd == nil {
		t.Fatal("apply returned no command")
	}
	m.Update(cmd())

	if m.err != nil {
		t.Fatalf("apply: %v", m.err)
	}
	if m.report == nil || m.report.Base != 0x100 {
		t.Fatalf("report = %+v", m.report)
	}
	if v, ok := m.a.db.VarAt(0x100 + layout.RegionOffset + 8); !ok || v.TypeName() != layout.TypeRegion {
		t.Errorf("region var = %+v, %v", v, ok)
	}

	view := m.View()
	for _, want := range []string{"cursor 0x100", layout.TypeHeader, layout.SymbolHeader} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestBrowserCommandsMatchRegistry(t *testing.T) {
	m := newTestBrowser(0)
	for _, k := range []string{"a", "z", "t"} {
		_, cmd := m.Update(key(k))
		if cmd == nil {
			t.Fatalf("%s returned no command", k)
		}
		msg, ok := cmd().(commandResultMsg)
		if !ok {
			t.Fatalf("%s produced %T", k, msg)
		}
		m.Update(msg)
	}
	if _, ok := m.cmds.Lookup(command.ApplyAtCursor); !ok {
		t.Error("registry missing apply at cursor")
	}
}

func TestBrowserIgnoresCommandsWhileBusy(t *testing.T) {
	m := newTestBrowser(layout.PatchSize)

	_, first := m.Update(key("a"))
	if first == nil {
		t.Fatal("apply returned no command")
	}
	for _, k := range []string{"a", "z", "t"} {
		if _, cmd := m.Update(key(k)); cmd != nil {
			t.Errorf("%s started a command while one was running", k)
		}
	}
	if !strings.Contains(m.View(), "running") {
		t.Error("view does not show the running command")
	}

	// Movement still works while busy.
	m.Update(key("down"))
	if m.cursor != bytesPerRow {
		t.Errorf("cursor = 0x%x", m.cursor)
	}

	m.Update(first())
	if m.err != nil {
		t.Fatalf("apply: %v", m.err)
	}
	if _, cmd := m.Update(key("z")); cmd == nil {
		t.Error("command refused after the first finished")
	}
}
