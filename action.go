package sokoban

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownAction is returned when an action token is not Up, Down, Left or Right.
var ErrUnknownAction = errors.New("unknown action")

// Coord is a grid position: X is the column, Y the row, growing downward.
type Coord struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Add returns c translated by d.
func (c Coord) Add(d Coord) Coord { return Coord{X: c.X + d.X, Y: c.Y + d.Y} }

// Manhattan returns the L1 distance between two coordinates.
func (c Coord) Manhattan(o Coord) int {
	dx := c.X - o.X
	if dx < 0 {
		dx = -dx
	}
	dy := c.Y - o.Y
	if dy < 0 {
		dy = -dy
	}
	return dx + dy
}

func (c Coord) String() string { return fmt.Sprintf("(%d,%d)", c.X, c.Y) }

// Action is one of the four worker moves.
type Action uint8

const (
	Up Action = iota
	Down
	Left
	Right
)

// AllActions lists every action in the order legal moves are generated.
var AllActions = [...]Action{Up, Down, Left, Right}

var (
	actionNames  = [...]string{Up: "Up", Down: "Down", Left: "Left", Right: "Right"}
	actionDeltas = [...]Coord{Up: {0, -1}, Down: {0, 1}, Left: {-1, 0}, Right: {1, 0}}
)

// Delta is the fixed coordinate offset of the action.
func (a Action) Delta() Coord {
	if int(a) >= len(actionDeltas) {
		return Coord{}
	}
	return actionDeltas[a]
}

func (a Action) String() string {
	if int(a) >= len(actionNames) {
		return fmt.Sprintf("Action(%d)", uint8(a))
	}
	return actionNames[a]
}

// MarshalText encodes the action as its token.
func (a Action) MarshalText() ([]byte, error) {
	if int(a) >= len(actionNames) {
		return nil, fmt.Errorf("%w: %d", ErrUnknownAction, uint8(a))
	}
	return []byte(actionNames[a]), nil
}

// UnmarshalText decodes a token produced by MarshalText.
func (a *Action) UnmarshalText(text []byte) error {
	parsed, err := ParseAction(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// ParseAction converts a token such as "Left" into an Action. Matching is
// case-insensitive.
func ParseAction(token string) (Action, error) {
	for i, name := range actionNames {
		if strings.EqualFold(strings.TrimSpace(token), name) {
			return Action(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownAction, token)
}

// ParseActions converts a token list, failing on the first unknown token.
func ParseActions(tokens []string) ([]Action, error) {
	actions := make([]Action, 0, len(tokens))
	for i, token := range tokens {
		a, err := ParseAction(token)
		if err != nil {
			return nil, fmt.Errorf("action %d: %w", i, err)
		}
		actions = append(actions, a)
	}
	return actions, nil
}

// FormatActions returns the tokens of actions.
func FormatActions(actions []Action) []string {
	tokens := make([]string, len(actions))
	for i, a := range actions {
		tokens[i] = a.String()
	}
	return tokens
}
