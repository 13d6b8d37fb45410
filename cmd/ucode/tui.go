package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/wippyai/ucode-layout/command"
	"github.com/wippyai/ucode-layout/engine"
	"github.com/wippyai/ucode-layout/internal/config"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	addrStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	typedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	cursorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFD700"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

const (
	bytesPerRow = 16
	viewRows    = 16
)

type viewState int

const (
	stateBrowse viewState = iota
	stateGoto
)

type browserModel struct {
	err    error
	a      *app
	cmds   *command.Registry
	report *engine.Report
	input  textinput.Model
	title  string
	cursor uint64
	top    uint64
	state  viewState
	// busy is set while a command runs. Commands run off the update loop,
	// so a second one would race the first on the database.
	busy bool
}

func newBrowserModel(a *app, title string, start uint64) *browserModel {
	ti := textinput.New()
	ti.Placeholder = "0x0"
	ti.Prompt = "goto: "
	ti.Width = 20

	m := &browserModel{
		a:     a,
		cmds:  command.Default(),
		input: ti,
		title: title,
	}
	m.moveTo(start)
	return m
}

type commandResultMsg struct {
	err    error
	report *engine.Report
}

func (m *browserModel) Init() tea.Cmd {
	return nil
}

// run starts the named command unless one is already running.
func (m *browserModel) run(name string) tea.Cmd {
	if m.busy {
		return nil
	}
	m.busy = true
	addr := m.cursor
	return func() tea.Msg {
		rep, err := m.cmds.Run(name, m.a.eng, addr)
		if err == nil {
			err = m.a.save()
		}
		return commandResultMsg{report: rep, err: err}
	}
}

func (m *browserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.state == stateGoto {
			return m.updateGoto(msg)
		}
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "up", "k":
			m.step(-bytesPerRow)
		case "down", "j":
			m.step(bytesPerRow)
		case "left", "h":
			m.step(-1)
		case "right", "l":
			m.step(1)
		case "pgup":
			m.step(-bytesPerRow * viewRows)
		case "pgdown":
			m.step(bytesPerRow * viewRows)
		case "home":
			m.moveTo(0)
		case "g":
			m.state = stateGoto
			m.input.SetValue("")
			m.input.Focus()
			return m, textinput.Blink
		case "a":
			return m, m.run(command.ApplyAtCursor)
		case "z":
			return m, m.run(command.ApplyAtZero)
		case "t":
			return m, m.run(command.DefineTypes)
		}

	case commandResultMsg:
		m.busy = false
		m.report = msg.report
		m.err = msg.err
	}
	return m, nil
}

func (m *browserModel) updateGoto(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.state = stateBrowse
		m.input.Blur()
		return m, nil
	case "enter":
		m.state = stateBrowse
		m.input.Blur()
		addr, err := config.ParseAddr(m.input.Value())
		if err != nil {
			m.err = err
			return m, nil
		}
		m.err = nil
		m.moveTo(addr)
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *browserModel) step(delta int64) {
	if delta < 0 {
		d := uint64(-delta)
		if d > m.cursor {
			m.moveTo(0)
			return
		}
		m.moveTo(m.cursor - d)
		return
	}
	m.moveTo(m.cursor + uint64(delta))
}

// moveTo places the cursor, clamped to the image, and scrolls it into view.
func (m *browserModel) moveTo(addr uint64) {
	end := m.a.img.End()
	if end == 0 {
		m.cursor, m.top = 0, 0
		return
	}
	if addr >= end {
		addr = end - 1
	}
	m.cursor = addr
	row := addr - addr%bytesPerRow
	switch {
	case row < m.top:
		m.top = row
	case row >= m.top+bytesPerRow*viewRows:
		m.top = row - bytesPerRow*(viewRows-1)
	}
}

func (m *browserModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("AMD Microcode"))
	b.WriteString(" ")
	b.WriteString(m.title)
	fmt.Fprintf(&b, "  end 0x%x\n\n", m.a.img.End())

	data, _ := m.a.img.Read(m.top, bytesPerRow*viewRows)
	for row := 0; row*bytesPerRow < len(data); row++ {
		rowAddr := m.top + uint64(row*bytesPerRow)
		b.WriteString(addrStyle.Render(fmt.Sprintf("%08x", rowAddr)))
		b.WriteString("  ")
		for col := 0; col < bytesPerRow; col++ {
			i := row*bytesPerRow + col
			if i >= len(data) {
				b.WriteString("   ")
				continue
			}
			cell := fmt.Sprintf("%02x", data[i])
			addr := rowAddr + uint64(col)
			switch {
			case addr == m.cursor:
				cell = cursorStyle.Render(cell)
			case m.typed(addr):
				cell = typedStyle.Render(cell)
			}
			b.WriteString(cell)
			b.WriteString(" ")
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	fmt.Fprintf(&b, "cursor 0x%x", m.cursor)
	if v, ok := m.a.db.VarAt(m.cursor); ok {
		fmt.Fprintf(&b, "  %s +0x%x", typedStyle.Render(v.TypeName()), m.cursor-v.Addr)
		if v.Symbol != "" {
			fmt.Fprintf(&b, " (%s)", v.Symbol)
		}
	}
	b.WriteString("\n")

	if m.report != nil {
		b.WriteString("\n")
		for _, ap := range m.report.Applied {
			b.WriteString(typedStyle.Render(ap.String()))
			b.WriteString("\n")
		}
		for _, d := range m.report.Diagnostics {
			line := d.String()
			switch d.Severity {
			case engine.SeverityError:
				line = errorStyle.Render(line)
			case engine.SeverityWarning:
				line = warnStyle.Render(line)
			}
			b.WriteString(line)
			b.WriteString("\n")
		}
	}
	if m.err != nil {
		b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if m.busy {
		b.WriteString(helpStyle.Render("running…"))
		b.WriteString("\n")
	}
	if m.state == stateGoto {
		b.WriteString(m.input.View())
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("enter jump • esc cancel"))
	} else {
		b.WriteString(helpStyle.Render("←↑↓→ move • g goto • a apply at cursor • z apply at 0x0 • t define types • q quit"))
	}
	return b.String()
}

func (m *browserModel) typed(addr uint64) bool {
	_, ok := m.a.db.VarAt(addr)
	return ok
}

func newTUICmd(a *app) *cobra.Command {
	var start string
	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Browse the image and apply the layout interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !term.IsTerminal(int(os.Stdout.Fd())) {
				return fmt.Errorf("tui needs a terminal on stdout")
			}
			addr, err := config.ParseAddr(start)
			if err != nil {
				return err
			}
			if err := a.open(cmd.Context(), true); err != nil {
				return err
			}
			// Log lines would tear the alternate screen; reports carry the
			// same diagnostics.
			setLoggers(zap.NewNop())

			title := a.cfg.Image
			if a.cfg.Wasm != "" {
				title = a.cfg.Wasm
			}
			p := tea.NewProgram(newBrowserModel(a, title, addr), tea.WithAltScreen())
			_, err = p.Run()
			return err
		},
	}
	cmd.Flags().StringVar(&start, "at", "0x0", "initial cursor address")
	return cmd
}
