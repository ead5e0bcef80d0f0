// Package viewer replays a solution in the terminal.
package viewer

import (
	"context"
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/pdrpinto/sokoban"
)

var (
	styleDefault = tcell.StyleDefault
	styleWall    = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleBox     = tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	styleTarget  = tcell.StyleDefault.Foreground(tcell.ColorGreen)
	styleWorker  = tcell.StyleDefault.Foreground(tcell.ColorAqua).Bold(true)
	styleTaboo   = tcell.StyleDefault.Foreground(tcell.ColorRed).Dim(true)
	styleHeader  = tcell.StyleDefault.Reverse(true)
)

const (
	boardTop = 2
	helpText = "←/→ step  space play  g/G first/last  t taboo  q quit"
)

// Player steps through the warehouse states of an action sequence.
type Player struct {
	screen    tcell.Screen
	frames    []*sokoban.Warehouse
	costs     []int
	actions   []sokoban.Action
	taboo     sokoban.TabooSet
	index     int
	showTaboo bool
	playing   bool
	interval  time.Duration
}

// NewPlayer precomputes every frame of actions applied to w. It fails if an
// action is illegal.
func NewPlayer(screen tcell.Screen, w *sokoban.Warehouse, actions []sokoban.Action) (*Player, error) {
	puzzle := sokoban.NewPuzzle(w)
	p := &Player{
		screen:   screen,
		frames:   []*sokoban.Warehouse{w},
		costs:    []int{0},
		actions:  actions,
		taboo:    puzzle.Taboo(),
		interval: 300 * time.Millisecond,
	}
	current := w
	cost := 0.0
	for i, a := range actions {
		next, ok := sokoban.Apply(current, a)
		if !ok {
			return nil, fmt.Errorf("action %d (%s) is illegal", i, a)
		}
		cost = puzzle.PathCost(cost, current.State(), a, next.State())
		p.frames = append(p.frames, next)
		p.costs = append(p.costs, int(cost))
		current = next
	}
	return p, nil
}

// Frame is the index of the displayed state; 0 is the initial warehouse.
func (p *Player) Frame() int { return p.index }

// Frames is the number of states, one more than the number of actions.
func (p *Player) Frames() int { return len(p.frames) }

// SetInterval sets the delay between frames while playing.
func (p *Player) SetInterval(d time.Duration) {
	if d > 0 {
		p.interval = d
	}
}

func (p *Player) seek(i int) {
	p.index = max(0, min(i, len(p.frames)-1))
	if p.index == len(p.frames)-1 {
		p.playing = false
	}
}

// HandleKey applies a key press and reports whether the player should quit.
func (p *Player) HandleKey(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return true
	case tcell.KeyRight:
		p.seek(p.index + 1)
	case tcell.KeyLeft:
		p.seek(p.index - 1)
	case tcell.KeyHome:
		p.seek(0)
	case tcell.KeyEnd:
		p.seek(len(p.frames) - 1)
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'q':
			return true
		case 'l', 'n':
			p.seek(p.index + 1)
		case 'h', 'p':
			p.seek(p.index - 1)
		case 'g':
			p.seek(0)
		case 'G':
			p.seek(len(p.frames) - 1)
		case 't':
			p.showTaboo = !p.showTaboo
		case ' ':
			p.playing = !p.playing && p.index < len(p.frames)-1
		}
	}
	return false
}

func (p *Player) drawText(x, y int, style tcell.Style, text string) {
	for _, r := range text {
		p.screen.SetContent(x, y, r, nil, style)
		x++
	}
}

// Draw renders the current frame and shows it.
func (p *Player) Draw() {
	p.screen.Clear()

	last := "start"
	if p.index > 0 {
		last = p.actions[p.index-1].String()
	}
	header := fmt.Sprintf(" step %d/%d  cost %d  last %s ", p.index, len(p.actions), p.costs[p.index], last)
	if p.playing {
		header += " ▶ "
	}
	p.drawText(0, 0, styleHeader, header)

	w := p.frames[p.index]
	grid := w.Grid
	for y := 0; y < grid.Height; y++ {
		for x := 0; x < grid.Width; x++ {
			r, style := p.cell(w, sokoban.Coord{X: x, Y: y})
			p.screen.SetContent(x, boardTop+y, r, nil, style)
		}
	}
	p.drawText(0, boardTop+grid.Height+1, styleDefault, helpText)
	p.screen.Show()
}

func (p *Player) cell(w *sokoban.Warehouse, c sokoban.Coord) (rune, tcell.Style) {
	grid := w.Grid
	target := grid.IsTarget(c)
	switch {
	case grid.IsWall(c):
		return '#', styleWall
	case w.Worker == c && target:
		return '!', styleWorker
	case w.Worker == c:
		return '@', styleWorker
	case w.State().BoxAt(c) >= 0 && target:
		return '*', styleBox
	case w.State().BoxAt(c) >= 0:
		return '$', styleBox
	case target:
		return '.', styleTarget
	case p.showTaboo && p.taboo.Contains(c):
		return 'X', styleTaboo
	}
	return ' ', styleDefault
}

type tick struct{}

// Run draws and handles input until the user quits or ctx is done. The
// screen must already be initialised; Run does not finalise it.
func (p *Player) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				_ = p.screen.PostEvent(tcell.NewEventInterrupt(nil))
				return
			case <-ticker.C:
				_ = p.screen.PostEvent(tcell.NewEventInterrupt(tick{}))
			}
		}
	}()

	p.Draw()
	for {
		switch ev := p.screen.PollEvent().(type) {
		case nil:
			return nil
		case *tcell.EventKey:
			if p.HandleKey(ev) {
				return nil
			}
		case *tcell.EventInterrupt:
			if _, ok := ev.Data().(tick); !ok {
				return ctx.Err()
			}
			if !p.playing {
				continue
			}
			p.seek(p.index + 1)
		case *tcell.EventResize:
			p.screen.Sync()
		}
		p.Draw()
	}
}
