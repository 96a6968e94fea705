package tui

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/airhockey/internal/game"
	"github.com/lox/airhockey/internal/runner"
)

const (
	defaultCols = 32
	defaultRows = 24
	minCols     = 12
	minRows     = 8

	// The court grid starts below the header line and the top border
	gridTop  = 2
	gridLeft = 1

	keyStep          = 16.0
	keyReleaseFrames = 6
	flashFrames      = 90
)

// Pointer ids used by the terminal host
const (
	MousePointer    game.PointerID = 0
	Player1Keyboard game.PointerID = 1
	Player2Keyboard game.PointerID = 2
)

// frameMsg is delivered once per frame interval
type frameMsg time.Time

type keyDrag struct {
	target game.Vec2
	idle   int
}

// Model is the Bubble Tea model hosting a local two player match. Both
// players share one terminal: the mouse drags whichever paddle it lands on,
// WASD drives player1 and the arrow keys drive player2.
type Model struct {
	runner   *runner.Runner
	cfg      game.Config
	clock    quartz.Clock
	interval time.Duration
	logger   *log.Logger

	keys      keyMap
	help      help.Model
	formatter *game.EventFormatter

	snap       game.Snapshot
	cols, rows int
	width      int
	height     int

	mouseDown bool
	keyDrags  map[game.PointerID]*keyDrag

	flash     string
	flashLeft int
	quitting  bool
	err       error
}

// NewModel creates a TUI host for r. The model steps the runner itself on
// every frame, so r must not be started.
func NewModel(r *runner.Runner, cfg game.Config, clock quartz.Clock, interval time.Duration, logger *log.Logger) *Model {
	m := &Model{
		runner:    r,
		cfg:       cfg,
		clock:     clock,
		interval:  interval,
		logger:    logger.WithPrefix("tui"),
		keys:      defaultKeyMap(),
		help:      help.New(),
		formatter: game.NewEventFormatter(game.FormattingOptions{}),
		snap:      r.Snapshot(),
		cols:      defaultCols,
		rows:      defaultRows,
		keyDrags:  make(map[game.PointerID]*keyDrag),
	}
	r.OnEvent(game.EventSubscriberFunc(m.onGameEvent))
	return m
}

// Err returns the error that stopped the match, if any
func (m *Model) Err() error {
	return m.err
}

// Snapshot returns the last frame drawn
func (m *Model) Snapshot() game.Snapshot {
	return m.snap
}

// Init starts the frame clock
func (m *Model) Init() tea.Cmd {
	return m.tick()
}

func (m *Model) tick() tea.Cmd {
	timer := m.clock.NewTimer(m.interval, "tui", "frame")
	return func() tea.Msg {
		return frameMsg(<-timer.C)
	}
}

// Update handles messages in the TUI
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case frameMsg:
		return m, m.step()

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		m.logger.Debug("Resized court", "cols", m.cols, "rows", m.rows)

	case tea.MouseMsg:
		m.handleMouse(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m *Model) step() tea.Cmd {
	snap, err := m.runner.Step(m.interval)
	if err != nil {
		m.logger.Error("Frame failed", "error", err)
		m.err = err
		m.quitting = true
		return tea.Quit
	}
	m.snap = snap

	for id, drag := range m.keyDrags {
		drag.idle++
		if drag.idle > keyReleaseFrames {
			m.runner.PointerUp(id)
			delete(m.keyDrags, id)
		}
	}

	if m.flashLeft > 0 {
		m.flashLeft--
		if m.flashLeft == 0 {
			m.flash = ""
		}
	}

	return m.tick()
}

// onGameEvent runs inside the runner, on the Update goroutine
func (m *Model) onGameEvent(event game.GameEvent) {
	switch e := event.(type) {
	case game.GoalEvent:
		m.flash = m.formatter.FormatGoal(e)
		m.flashLeft = flashFrames
		m.logger.Info("Goal", "scorer", e.Scorer, "score1", e.Score1, "score2", e.Score2)
	case game.RoundResetEvent:
		// The match dropped every pointer binding
		m.mouseDown = false
		m.keyDrags = make(map[game.PointerID]*keyDrag)
	}
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, m.keys.Reset):
		m.runner.ResetRound()
		m.snap = m.runner.Snapshot()
	case key.Matches(msg, m.keys.P1Up):
		m.nudge(game.Player1, game.Vec2{Y: keyStep})
	case key.Matches(msg, m.keys.P1Down):
		m.nudge(game.Player1, game.Vec2{Y: -keyStep})
	case key.Matches(msg, m.keys.P1Left):
		m.nudge(game.Player1, game.Vec2{X: -keyStep})
	case key.Matches(msg, m.keys.P1Right):
		m.nudge(game.Player1, game.Vec2{X: keyStep})
	case key.Matches(msg, m.keys.P2Up):
		m.nudge(game.Player2, game.Vec2{Y: keyStep})
	case key.Matches(msg, m.keys.P2Down):
		m.nudge(game.Player2, game.Vec2{Y: -keyStep})
	case key.Matches(msg, m.keys.P2Left):
		m.nudge(game.Player2, game.Vec2{X: -keyStep})
	case key.Matches(msg, m.keys.P2Right):
		m.nudge(game.Player2, game.Vec2{X: keyStep})
	}
	return m, nil
}

// nudge drags a paddle one step with a keyboard pointer, grabbing it first
// if the key pointer is not already holding it
func (m *Model) nudge(p game.Player, delta game.Vec2) {
	id, body := Player1Keyboard, m.snap.Paddle1
	if p == game.Player2 {
		id, body = Player2Keyboard, m.snap.Paddle2
	}

	drag, ok := m.keyDrags[id]
	if !ok {
		m.runner.PointerDown(id, body.Position.X, body.Position.Y)
		drag = &keyDrag{target: body.Position}
		m.keyDrags[id] = drag
	}

	lo, hi := m.cfg.PaddleArea(p)
	target := drag.target.Add(delta)
	drag.target = game.Vec2{
		X: math.Max(lo.X, math.Min(hi.X, target.X)),
		Y: math.Max(lo.Y, math.Min(hi.Y, target.Y)),
	}
	drag.idle = 0
	m.runner.PointerMove(id, drag.target.X, drag.target.Y)
}

func (m *Model) handleMouse(msg tea.MouseMsg) {
	p := m.cellToCourt(msg.X-gridLeft, msg.Y-gridTop)

	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft {
			return
		}
		m.mouseDown = true
		m.runner.PointerDown(MousePointer, p.X, p.Y)
	case tea.MouseActionMotion:
		if m.mouseDown {
			m.runner.PointerMove(MousePointer, p.X, p.Y)
		}
	case tea.MouseActionRelease:
		if m.mouseDown {
			m.mouseDown = false
			m.runner.PointerUp(MousePointer)
		}
	}
}

// resize fits the court grid to the terminal. Cells are roughly twice as
// tall as they are wide.
func (m *Model) resize() {
	rows := m.height - 5
	if rows < minRows {
		rows = minRows
	}
	cols := int(float64(rows) * m.cfg.Width / m.cfg.Height * 2)
	if m.width > 2 && cols > m.width-2 {
		cols = m.width - 2
	}
	if cols < minCols {
		cols = minCols
	}
	m.cols, m.rows = cols, rows
}

// cellToCourt returns the court point at the centre of a grid cell. Row 0
// is the top of the screen, which is the far end of the court.
func (m *Model) cellToCourt(col, row int) game.Vec2 {
	cw := m.cfg.Width / float64(m.cols)
	ch := m.cfg.Height / float64(m.rows)
	return game.Vec2{
		X: (float64(col) + 0.5) * cw,
		Y: m.cfg.Height - (float64(row)+0.5)*ch,
	}
}

func (m *Model) courtToCell(p game.Vec2) (col, row int) {
	col = int(p.X * float64(m.cols) / m.cfg.Width)
	row = int((m.cfg.Height - p.Y) * float64(m.rows) / m.cfg.Height)
	col = max(0, min(m.cols-1, col))
	row = max(0, min(m.rows-1, row))
	return col, row
}

// View renders the TUI
func (m *Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderCourt())
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m *Model) renderHeader() string {
	header := HeaderStyle.Render(fmt.Sprintf(" P1 %d : %d P2 ", m.snap.Score1, m.snap.Score2))
	if m.flash != "" {
		return header + " " + FlashStyle.Render(m.flash)
	}
	return header + " " + InfoStyle.Render(fmt.Sprintf("frame %d", m.snap.Frame))
}

func (m *Model) renderCourt() string {
	grid := make([][]string, m.rows)
	for row := range grid {
		grid[row] = make([]string, m.cols)
		for col := range grid[row] {
			grid[row][col] = " "
		}
	}

	_, midRow := m.courtToCell(game.Vec2{Y: m.cfg.Midline()})
	for col := range grid[midRow] {
		grid[midRow][col] = MidlineStyle.Render("─")
	}

	m.paint(grid, m.snap.Paddle1, Paddle1Style.Render("█"))
	m.paint(grid, m.snap.Paddle2, Paddle2Style.Render("█"))
	m.paint(grid, m.snap.Puck, PuckStyle.Render("●"))

	var b strings.Builder
	b.WriteString(m.renderGoalLine("┌", "┐"))
	b.WriteString("\n")
	side := BorderStyle.Render("│")
	for _, row := range grid {
		b.WriteString(side)
		b.WriteString(strings.Join(row, ""))
		b.WriteString(side)
		b.WriteString("\n")
	}
	b.WriteString(m.renderGoalLine("└", "┘"))
	return b.String()
}

// renderGoalLine draws an end wall with its goal mouth highlighted
func (m *Model) renderGoalLine(left, right string) string {
	goalLeft, goalRight := m.cfg.GoalMouth()

	var b strings.Builder
	b.WriteString(BorderStyle.Render(left))
	for col := 0; col < m.cols; col++ {
		x := m.cellToCourt(col, 0).X
		if x >= goalLeft && x <= goalRight {
			b.WriteString(GoalStyle.Render("═"))
		} else {
			b.WriteString(BorderStyle.Render("─"))
		}
	}
	b.WriteString(BorderStyle.Render(right))
	return b.String()
}

// paint fills every cell whose centre lies inside body, plus the cell
// holding its centre so small bodies never vanish
func (m *Model) paint(grid [][]string, body game.BodyState, glyph string) {
	col, row := m.courtToCell(body.Position)
	grid[row][col] = glyph

	r2 := body.Radius * body.Radius
	for row := range grid {
		for col := range grid[row] {
			if m.cellToCourt(col, row).DistanceSquared(body.Position) <= r2 {
				grid[row][col] = glyph
			}
		}
	}
}
