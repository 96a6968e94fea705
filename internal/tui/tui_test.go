package tui

import (
	"io"
	"os"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/airhockey/internal/game"
	"github.com/lox/airhockey/internal/runner"
)

const interval = 16 * time.Millisecond

func TestMain(m *testing.M) {
	lipgloss.SetColorProfile(termenv.Ascii)
	os.Exit(m.Run())
}

func newTestModel(t *testing.T, opts ...game.TestMatchOption) *Model {
	t.Helper()

	logger := log.New(io.Discard)
	match := game.NewTestMatch(opts...)
	mClock := quartz.NewMock(t)
	r := runner.New(match, mClock, interval, logger)
	return NewModel(r, match.Config(), mClock, interval, logger)
}

func frame(m *Model) {
	m.Update(frameMsg(time.Time{}))
}

func keyPress(s string) tea.KeyMsg {
	switch s {
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestModel_FrameAdvancesMatch(t *testing.T) {
	m := newTestModel(t)

	_, cmd := m.Update(frameMsg(time.Time{}))
	require.NotNil(t, cmd, "each frame schedules the next")
	assert.Equal(t, uint64(1), m.Snapshot().Frame)

	frame(m)
	assert.Equal(t, uint64(2), m.Snapshot().Frame)
}

func TestModel_MouseDrag(t *testing.T) {
	m := newTestModel(t)

	col, row := m.courtToCell(m.Snapshot().Paddle1.Position)
	require.Equal(t, 16, col)
	require.Equal(t, 23, row)

	m.Update(tea.MouseMsg{X: col + gridLeft, Y: row + gridTop, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	m.Update(tea.MouseMsg{X: 10 + gridLeft, Y: 18 + gridTop, Action: tea.MouseActionMotion, Button: tea.MouseButtonLeft})
	frame(m)

	snap := m.Snapshot()
	assert.Equal(t, game.Vec2{X: 105, Y: 110}, snap.Paddle1.Position)
	assert.True(t, snap.Paddle1.Dragged)

	m.Update(tea.MouseMsg{X: 10 + gridLeft, Y: 18 + gridTop, Action: tea.MouseActionRelease})
	frame(m)
	assert.False(t, m.Snapshot().Paddle1.Dragged)
}

func TestModel_MouseMotionWithoutPressIsIgnored(t *testing.T) {
	m := newTestModel(t)

	m.Update(tea.MouseMsg{X: 10 + gridLeft, Y: 18 + gridTop, Action: tea.MouseActionMotion})
	frame(m)
	assert.Equal(t, game.Vec2{X: 160, Y: 20}, m.Snapshot().Paddle1.Position)
}

func TestModel_KeyboardDrivesPaddles(t *testing.T) {
	m := newTestModel(t)

	m.Update(keyPress("w"))
	m.Update(keyPress("down"))
	frame(m)

	snap := m.Snapshot()
	assert.Equal(t, game.Vec2{X: 160, Y: 20 + keyStep}, snap.Paddle1.Position)
	assert.Equal(t, game.Vec2{X: 160, Y: 460 - keyStep}, snap.Paddle2.Position)
	assert.True(t, snap.Paddle1.Dragged)
	assert.True(t, snap.Paddle2.Dragged)
}

func TestModel_KeyboardStaysInHalf(t *testing.T) {
	m := newTestModel(t)

	for i := 0; i < 40; i++ {
		m.Update(keyPress("a"))
		frame(m)
	}

	lo, _ := game.DefaultConfig().PaddleArea(game.Player1)
	assert.Equal(t, game.Vec2{X: lo.X, Y: 20}, m.Snapshot().Paddle1.Position)
}

func TestModel_KeyboardPointerReleasedWhenIdle(t *testing.T) {
	m := newTestModel(t)

	m.Update(keyPress("d"))
	for i := 0; i < keyReleaseFrames; i++ {
		frame(m)
	}
	assert.True(t, m.Snapshot().Paddle1.Dragged)

	frame(m)
	assert.False(t, m.Snapshot().Paddle1.Dragged)
	assert.Empty(t, m.keyDrags)
}

func TestModel_ResetKey(t *testing.T) {
	m := newTestModel(t)

	m.Update(keyPress("w"))
	frame(m)
	m.Update(keyPress("r"))

	snap := m.Snapshot()
	assert.Equal(t, game.Vec2{X: 160, Y: 0}, snap.Paddle1.Position)
	assert.Equal(t, game.Vec2{X: 160, Y: 480}, snap.Paddle2.Position)
	assert.False(t, snap.Paddle1.Dragged)
	assert.Empty(t, m.keyDrags)
}

func TestModel_GoalFlash(t *testing.T) {
	m := newTestModel(t, game.WithPuck(game.Vec2{X: 160, Y: 5}, game.Vec2{}))

	frame(m)
	assert.Equal(t, 1, m.Snapshot().Score2)
	assert.Contains(t, m.View(), "GOAL! player2 scores")
	assert.Contains(t, m.View(), "P1 0 : 1 P2")

	for i := 0; i < flashFrames; i++ {
		frame(m)
	}
	assert.NotContains(t, m.View(), "GOAL!")
}

func TestModel_GoalDropsKeyboardDrags(t *testing.T) {
	m := newTestModel(t, game.WithPuck(game.Vec2{X: 160, Y: 5}, game.Vec2{}))

	m.Update(keyPress("a"))
	require.Len(t, m.keyDrags, 1)
	frame(m)
	assert.Empty(t, m.keyDrags)

	// A fresh key press grabs the paddle again from its serve position
	m.Update(keyPress("w"))
	frame(m)
	assert.Equal(t, game.Vec2{X: 160, Y: 20}, m.Snapshot().Paddle1.Position)
	assert.True(t, m.Snapshot().Paddle1.Dragged)
}

func TestModel_Quit(t *testing.T) {
	for _, k := range []string{"q", "ctrl+c"} {
		t.Run(k, func(t *testing.T) {
			m := newTestModel(t)

			_, cmd := m.Update(keyPress(k))
			require.NotNil(t, cmd)
			assert.IsType(t, tea.QuitMsg{}, cmd())
			assert.Empty(t, m.View())
		})
	}
}

func TestModel_HelpToggle(t *testing.T) {
	m := newTestModel(t)

	assert.Contains(t, m.View(), "reset round")
	assert.NotContains(t, m.View(), "p1 up")

	m.Update(keyPress("?"))
	assert.Contains(t, m.View(), "p1 up")
}

func TestModel_View(t *testing.T) {
	m := newTestModel(t)
	view := m.View()

	lines := strings.Split(view, "\n")
	// header, top wall, rows, bottom wall, help
	require.Len(t, lines, defaultRows+4)
	assert.Contains(t, lines[0], "P1 0 : 0 P2")
	assert.Contains(t, lines[1], "═", "far goal mouth")
	assert.Contains(t, lines[defaultRows+2], "═", "near goal mouth")
	assert.Contains(t, lines[defaultRows/2+1], "●")

	// Paddle1 sits at the bottom of the screen, paddle2 at the top
	assert.Contains(t, lines[defaultRows+1], "█")
	assert.Contains(t, lines[2], "█")
}

func TestModel_Resize(t *testing.T) {
	m := newTestModel(t)

	m.Update(tea.WindowSizeMsg{Width: 100, Height: 29})
	assert.Equal(t, 32, m.cols)
	assert.Equal(t, 24, m.rows)

	m.Update(tea.WindowSizeMsg{Width: 20, Height: 10})
	assert.Equal(t, minCols, m.cols)
	assert.Equal(t, minRows, m.rows)
}
