package tui

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/indecision/internal/config"
	"github.com/san-kum/indecision/internal/experiment"
	"github.com/san-kum/indecision/internal/sim"
)

const (
	maxSpeed     = 64
	occupancyTop = 5
	sparkWidth   = 40
)

type screen int

const (
	screenMenu screen = iota
	screenSim
)

type entry struct {
	particle string
	preset   string
}

// Model is the bubbletea model behind the preset menu and the live viewer.
type Model struct {
	screen  screen
	reg     *experiment.Registry
	entries []entry
	cursor  int

	cfg       *config.Config
	run       experiment.Run
	steady    float64
	hasSteady bool
	speed     int
	paused    bool
	done      bool
	err       error
	lastFrame time.Time
	fps       float64

	width  int
	height int
}

// NewApp returns the interactive viewer starting at the preset menu.
func NewApp(reg *experiment.Registry) Model {
	m := Model{screen: screenMenu, reg: reg, speed: 1, width: 80, height: 24}
	for _, particle := range reg.ListModels() {
		for _, preset := range config.ListPresets(particle) {
			m.entries = append(m.entries, entry{particle: particle, preset: preset})
		}
	}
	return m
}

// NewLive returns a viewer already running cfg.
func NewLive(reg *experiment.Registry, cfg *config.Config) (Model, error) {
	m := NewApp(reg)
	if err := m.start(cfg); err != nil {
		return m, err
	}
	return m, nil
}

func (m Model) Init() tea.Cmd {
	if m.screen == screenSim {
		return tick()
	}
	return nil
}

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(33*time.Millisecond, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tickMsg:
		if m.screen != screenSim {
			return m, nil
		}
		if !m.paused && !m.done && m.err == nil {
			now := time.Time(msg)
			if !m.lastFrame.IsZero() {
				if d := now.Sub(m.lastFrame).Seconds(); d > 0 {
					m.fps = 1 / d
				}
			}
			m.lastFrame = now
			m.step()
		}
		return m, tick()
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch m.screen {
	case screenMenu:
		return m.menuKey(msg)
	case screenSim:
		return m.simKey(msg)
	}
	return m, nil
}

func (m Model) menuKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.entries)-1 {
			m.cursor++
		}
	case "enter", " ":
		if len(m.entries) == 0 {
			return m, nil
		}
		e := m.entries[m.cursor]
		if err := m.start(config.GetPreset(e.particle, e.preset)); err != nil {
			m.err = err
		}
		return m, tea.Batch(tea.ClearScreen, tick())
	}
	return m, nil
}

func (m Model) simKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "q", "esc":
		if len(m.entries) == 0 {
			return m, tea.Quit
		}
		m.screen = screenMenu
		m.run = nil
		m.err = nil
		return m, tea.ClearScreen
	case " ", "p":
		m.paused = !m.paused
	case "r":
		if err := m.start(m.cfg); err != nil {
			m.err = err
		}
		return m, tea.ClearScreen
	case "+", "=":
		m.speed = min(m.speed*2, maxSpeed)
	case "-", "_":
		m.speed = max(m.speed/2, 1)
	case "0":
		m.speed = 1
	}
	return m, nil
}

func (m *Model) start(cfg *config.Config) error {
	m.screen = screenSim
	m.cfg = cfg
	m.run = nil
	m.err = nil
	m.done = false
	m.paused = false
	m.speed = 1
	m.lastFrame = time.Time{}
	m.hasSteady = false

	if cfg == nil {
		return fmt.Errorf("no configuration")
	}
	mdl, err := m.reg.GetModel(cfg)
	if err != nil {
		return err
	}
	run, err := mdl.Simulate(cfg.Particles, sim.Options{Seed: cfg.Seed, Dt: cfg.Dt, Workers: cfg.Workers})
	if err != nil {
		return err
	}
	m.run = run
	if ss, err := mdl.SteadyState(); err == nil {
		m.steady, m.hasSteady = ss, true
	}
	return nil
}

// step advances the run by speed ticks, stopping at the configured duration.
func (m *Model) step() {
	if m.run == nil {
		return
	}
	target := math.Min(m.run.Time()+float64(m.speed)*m.cfg.Dt, m.cfg.Duration)
	if err := m.run.AdvanceUntil(context.Background(), target); err != nil {
		m.err = err
		return
	}
	if m.run.Time() >= m.cfg.Duration {
		m.done = true
	}
}

func (m Model) View() string {
	switch m.screen {
	case screenMenu:
		return m.viewMenu()
	case screenSim:
		return m.viewSim()
	}
	return ""
}

func (m Model) viewMenu() string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(dimmer.Render("    ╺━━━━━━━━━━━━━━━━━━━━━━━━━━━━╸") + "\n")
	b.WriteString("           " + cyan.Render("i n d e c i s i o n") + "\n")
	b.WriteString(dimmer.Render("    ╺━━━━━━━━━━━━━━━━━━━━━━━━━━━━╸") + "\n")
	b.WriteString("\n")

	for i, e := range m.entries {
		name := fmt.Sprintf("%-14s %-10s", e.particle, e.preset)
		desc := particleInfo[e.particle]
		if i == m.cursor {
			b.WriteString("      " + cyan.Render("▸ ") + white.Render(name) + " " + dim.Render(desc) + "\n")
		} else {
			b.WriteString("        " + dim.Render(name) + " " + dimmer.Render(desc) + "\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(dim.Render("      ↑↓ select   enter start   q quit") + "\n")
	return b.String()
}

func (m Model) viewSim() string {
	var b strings.Builder

	name := "?"
	if m.cfg != nil {
		name = m.cfg.Particle
	}

	if m.err != nil {
		b.WriteString(fmt.Sprintf("\n   %s %s  %s\n", red.Render("●"), cyan.Render(name), red.Render("error")))
		b.WriteString("   " + red.Render(m.err.Error()) + "\n")
		b.WriteString("\n" + dim.Render("   r restart  q back") + "\n")
		return b.String()
	}
	if m.run == nil {
		return ""
	}

	statusIcon, statusText := green.Render("●"), green.Render("running")
	switch {
	case m.done:
		statusIcon, statusText = magenta.Render("■"), magenta.Render("done")
	case m.paused:
		statusIcon, statusText = yellow.Render("○"), yellow.Render("paused")
	}
	b.WriteString(fmt.Sprintf("\n   %s %s  %s  %s\n",
		statusIcon, cyan.Render(name), statusText, dim.Render(fmt.Sprintf("x%d", m.speed))))

	frac := 1.0
	if m.cfg.Duration > 0 {
		frac = m.run.Time() / m.cfg.Duration
	}
	timeStr := fmt.Sprintf("t=%.1f/%.0f", m.run.Time(), m.cfg.Duration)
	b.WriteString(fmt.Sprintf("   %s %s  %s\n\n", progressBar(frac, 36), dim.Render(timeStr), dim.Render(fmt.Sprintf("%.0ffps", m.fps))))

	pw, ph := m.plotSize()
	_, thetas := m.run.History()
	if len(thetas) > pw {
		thetas = thetas[len(thetas)-pw:]
	}
	if len(thetas) >= 2 {
		graph := asciigraph.Plot(thetas,
			asciigraph.Height(ph),
			asciigraph.Width(pw),
			asciigraph.LowerBound(0),
			asciigraph.UpperBound(1),
			asciigraph.Precision(2),
			asciigraph.Caption("theta"),
		)
		for _, line := range strings.Split(graph, "\n") {
			b.WriteString("   " + line + "\n")
		}
	} else {
		b.WriteString(strings.Repeat("\n", ph+1))
	}

	b.WriteString("\n   ")
	b.WriteString(dim.Render("θ=") + white.Render(fmt.Sprintf("%.4f", m.run.LastTheta())) + "  ")
	if m.hasSteady {
		b.WriteString(dim.Render("θ∞=") + white.Render(fmt.Sprintf("%.4f", m.steady)) + "  ")
	}
	b.WriteString(dim.Render("n=") + white.Render(fmt.Sprint(m.run.Len())) + "  ")
	b.WriteString(dim.Render("steps=") + white.Render(fmt.Sprint(m.run.Steps())) + "\n")
	if spark := sparkline(m.run.Thetas(sparkWidth), sparkWidth, 0, 1); spark != "" {
		b.WriteString("   " + dim.Render("run ") + cyan.Render(spark) + "\n")
	}

	for i, c := range m.run.Occupancy() {
		if i >= occupancyTop {
			break
		}
		bar := int(c.Fraction * 30)
		b.WriteString(fmt.Sprintf("   %s %s %s\n",
			dim.Render(fmt.Sprintf("%-22s", truncate(c.State, 22))),
			cyan.Render(strings.Repeat("█", bar))+dimmer.Render(strings.Repeat("░", 30-bar)),
			dim.Render(fmt.Sprintf("%5.1f%%", 100*c.Fraction))))
	}

	b.WriteString("\n" + dim.Render("   space pause  ±speed  r reset  q back") + "\n")
	return b.String()
}

func (m Model) plotSize() (w, h int) {
	w = max(m.width-16, 40)
	h = max(m.height-18, 8)
	return w, h
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

// RunInteractive opens the preset menu.
func RunInteractive(reg *experiment.Registry) error {
	_, err := tea.NewProgram(NewApp(reg), tea.WithAltScreen()).Run()
	return err
}

// RunLive shows cfg evolving until the user quits.
func RunLive(reg *experiment.Registry, cfg *config.Config) error {
	m, err := NewLive(reg, cfg)
	if err != nil {
		return err
	}
	m.entries = nil
	_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
