package main

import (
	"context"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	yogi "github.com/wippyai/yogi-go"
	"github.com/wippyai/yogi-go/bridge"
	"github.com/wippyai/yogi-go/core"
	"github.com/wippyai/yogi-go/duration"
	"github.com/wippyai/yogi-go/resource"
	"github.com/wippyai/yogi-go/result"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	typeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	disposedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			Strikethrough(true)

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

const refreshInterval = 200 * time.Millisecond

func monitorCommand() *cli.Command {
	return &cli.Command{
		Name:  "monitor",
		Usage: "Interactive view of live objects and pending operations",
		Action: func(_ context.Context, cmd *cli.Command) error {
			if !term.IsTerminal(int(os.Stdout.Fd())) {
				return fmt.Errorf("monitor needs a terminal")
			}
			return runMonitor(cmd)
		},
	}
}

type monitorState int

const (
	stateBrowse monitorState = iota
	stateInputTimeout
)

type monitorModel struct {
	err      error
	lib      *yogi.Library
	ctx      *yogi.Context
	set      *yogi.SignalSet
	timers   map[resource.ID]*yogi.Timer
	events   chan string
	objects  []resource.Info
	pending  []bridge.Pending
	log      []string
	input    textinput.Model
	selected int
	state    monitorState
	raised   int
}

type tickMsg time.Time

type completionMsg string

func newMonitorModel(lib *yogi.Library) (*monitorModel, error) {
	ctx, err := lib.NewContext()
	if err != nil {
		return nil, err
	}
	if err := ctx.RunInBackground(); err != nil {
		return nil, err
	}
	set, err := lib.NewSignalSet(ctx, core.SigAll)
	if err != nil {
		return nil, err
	}

	ti := textinput.New()
	ti.Placeholder = "seconds"
	ti.Prompt = "timer: "
	ti.Width = 20

	m := &monitorModel{
		lib:    lib,
		ctx:    ctx,
		set:    set,
		timers: make(map[resource.ID]*yogi.Timer),
		events: make(chan string, 64),
		input:  ti,
	}
	if err := m.awaitSignal(); err != nil {
		return nil, err
	}
	m.refresh()
	return m, nil
}

// awaitSignal keeps one await pending on the set at all times.
func (m *monitorModel) awaitSignal() error {
	return m.set.AwaitSignalAsync(func(res result.Result, sig core.Signals, arg any) {
		if res.Code() == result.ErrCanceled {
			return
		}
		m.emit(fmt.Sprintf("signal %v arg=%v: %v", sig, arg, res))
		if err := m.awaitSignal(); err != nil {
			m.emit("await failed: " + err.Error())
		}
	})
}

// emit runs on the context goroutine and must not block it.
func (m *monitorModel) emit(s string) {
	select {
	case m.events <- s:
	default:
	}
}

func (m *monitorModel) waitForCompletion() tea.Msg {
	return completionMsg(<-m.events)
}

func tick() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m *monitorModel) Init() tea.Cmd {
	return tea.Batch(tick(), m.waitForCompletion)
}

func (m *monitorModel) refresh() {
	m.objects = m.lib.Objects().Snapshot()
	m.pending = m.lib.Bridge().Pending()
	slices.SortFunc(m.pending, func(a, b bridge.Pending) int {
		return int(a.Token) - int(b.Token)
	})
	if m.selected >= len(m.objects) {
		m.selected = max(0, len(m.objects)-1)
	}
}

func (m *monitorModel) addLog(s string) {
	m.log = append(m.log, time.Now().Format("15:04:05.000")+" "+s)
	if len(m.log) > 8 {
		m.log = m.log[len(m.log)-8:]
	}
}

func (m *monitorModel) startTimer(secs string) {
	var f float64
	if _, err := fmt.Sscan(secs, &f); err != nil {
		m.err = fmt.Errorf("bad timeout %q", secs)
		return
	}
	d, err := duration.FromSecondsFloat(f)
	if err != nil {
		m.err = err
		return
	}

	tmr, err := m.lib.NewTimer(m.ctx)
	if err != nil {
		m.err = err
		return
	}
	id := tmr.ID()
	m.timers[id] = tmr
	err = tmr.StartAsync(d, func(res result.Result) {
		m.emit(fmt.Sprintf("timer %s: %v", id, res))
	})
	if err != nil {
		m.err = err
		return
	}
	m.addLog(fmt.Sprintf("started timer %s for %s", id, d))
}

func (m *monitorModel) disposeSelected() {
	if len(m.objects) == 0 {
		return
	}
	info := m.objects[m.selected]
	if tmr, ok := m.timers[info.ID]; ok {
		tmr.Dispose()
		delete(m.timers, info.ID)
		m.addLog("disposed timer " + info.ID.String())
		return
	}
	m.addLog(info.TypeName + " " + info.ID.String() + " is owned by the monitor")
}

func (m *monitorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.state == stateInputTimeout {
			switch msg.String() {
			case "enter":
				m.startTimer(m.input.Value())
				m.input.Reset()
				m.input.Blur()
				m.state = stateBrowse
				return m, nil
			case "esc":
				m.input.Reset()
				m.input.Blur()
				m.state = stateBrowse
				return m, nil
			}
			var cmd tea.Cmd
			m.input, cmd = m.input.Update(msg)
			return m, cmd
		}

		m.err = nil
		switch msg.String() {
		case "ctrl+c", "q":
			m.ctx.Stop()
			return m, tea.Quit

		case "up", "k":
			if m.selected > 0 {
				m.selected--
			}

		case "down", "j":
			if m.selected < len(m.objects)-1 {
				m.selected++
			}

		case "t":
			m.state = stateInputTimeout
			return m, m.input.Focus()

		case "c":
			for id, tmr := range m.timers {
				if ok, err := tmr.Cancel(); err == nil && ok {
					m.addLog("canceled timer " + id.String())
				}
			}

		case "d":
			m.disposeSelected()

		case "s":
			m.raised++
			n := m.raised
			if err := m.lib.RaiseSignalWithArg(core.SigUsr1, n, nil); err != nil {
				m.err = err
			}
		}
		m.refresh()

	case tickMsg:
		m.refresh()
		return m, tick()

	case completionMsg:
		m.addLog(string(msg))
		m.refresh()
		return m, m.waitForCompletion
	}

	return m, nil
}

func (m *monitorModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Yogi Monitor"))
	fmt.Fprintf(&b, " core %s • %d objects • %d tokens • %d rejected • %d panics\n\n",
		m.lib.Version(), len(m.objects), len(m.pending),
		m.lib.Bridge().RejectedFires(), m.lib.Bridge().Panics())

	b.WriteString("Objects:\n")
	for i, o := range m.objects {
		line := fmt.Sprintf("%-10s %s refs=%d native=%#x", o.ID, typeStyle.Render(fmt.Sprintf("%-13s", o.TypeName)), o.Refs, uintptr(o.Native))
		switch {
		case i == m.selected:
			b.WriteString(selectedStyle.Render("> " + line))
		case o.Disposed:
			b.WriteString("  " + disposedStyle.Render(line))
		default:
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}

	b.WriteString("\nPending:\n")
	if len(m.pending) == 0 {
		b.WriteString(helpStyle.Render("  none") + "\n")
	}
	for _, p := range m.pending {
		kind := p.Kind.String()
		if p.Persistent {
			kind += "*"
		}
		fmt.Fprintf(&b, "  #%-4d %-11s %-28s %s\n", p.Token, kind, p.Label, time.Since(p.Started).Truncate(time.Millisecond))
	}

	b.WriteString("\nCompletions:\n")
	for _, l := range m.log {
		b.WriteString("  " + resultStyle.Render(l) + "\n")
	}

	if m.err != nil {
		b.WriteString("\n" + errorStyle.Render(fmt.Sprintf("Error: %v", m.err)) + "\n")
	}

	b.WriteString("\n")
	if m.state == stateInputTimeout {
		b.WriteString(m.input.View() + "\n")
		b.WriteString(helpStyle.Render("enter start • esc back"))
	} else {
		b.WriteString(helpStyle.Render("↑/↓ select • t timer • c cancel timers • s raise SIGUSR1 • d dispose • q quit"))
	}
	return b.String()
}

func runMonitor(cmd *cli.Command) error {
	lib, _, err := openLibrary(cmd)
	if err != nil {
		return err
	}
	defer lib.Close()

	m, err := newMonitorModel(lib)
	if err != nil {
		return err
	}
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err = p.Run()
	return err
}
