// Package game contains the rules of a two-player tic-tac-toe match.
// No runtime, network, or storage logic should be added here.
package game

import "github.com/google/uuid"

type Symbol string

const (
	SymbolX Symbol = "X"
	SymbolO Symbol = "O"
	Empty   Symbol = ""
)

// Other returns the opposing symbol.
func (s Symbol) Other() Symbol {
	if s == SymbolX {
		return SymbolO
	}
	return SymbolX
}

// Board is the 3x3 grid in row-major order.
type Board [9]Symbol

// winLines are the 3 rows, 3 columns and 2 diagonals.
var winLines = [8][3]int{
	{0, 1, 2}, {3, 4, 5}, {6, 7, 8},
	{0, 3, 6}, {1, 4, 7}, {2, 5, 8},
	{0, 4, 8}, {2, 4, 6},
}

type Player struct {
	ConnID   string `json:"-"`
	Username string `json:"username"`
}

// Match is one ephemeral game instance. X always moves first and is
// always the inviter; O is the acceptor.
type Match struct {
	ID           uuid.UUID         `json:"id"`
	Players      map[Symbol]Player `json:"playerNames"`
	Board        Board             `json:"board"`
	CurrentTurn  Symbol            `json:"currentTurn"`
	Winner       Symbol            `json:"winner"`
	GameOver     bool              `json:"gameOver"`
	Draw         bool              `json:"draw"`
	Forfeit      bool              `json:"forfeit"`
	Disconnected bool              `json:"disconnected"`
}

// NewMatch creates an in-progress match between the inviter (X) and the
// acceptor (O), with an empty board and X to move.
func NewMatch(inviter, acceptor Player) *Match {
	return &Match{
		ID: uuid.New(),
		Players: map[Symbol]Player{
			SymbolX: inviter,
			SymbolO: acceptor,
		},
		CurrentTurn: SymbolX,
	}
}

// Snapshot returns an independent copy of the match, safe to hand to
// encoders running outside the engine's lock.
func (m *Match) Snapshot() *Match {
	clone := *m
	clone.Players = make(map[Symbol]Player, len(m.Players))
	for symbol, p := range m.Players {
		clone.Players[symbol] = p
	}
	return &clone
}

// SymbolOf resolves which side a connection plays, or Empty if the
// connection is not bound to this match.
func (m *Match) SymbolOf(connID string) Symbol {
	for symbol, p := range m.Players {
		if p.ConnID == connID {
			return symbol
		}
	}
	return Empty
}

// Opponent returns the player facing the given symbol.
func (m *Match) Opponent(s Symbol) Player {
	return m.Players[s.Other()]
}

// Move applies one move for the given connection. It reports whether the
// match state changed. Rejections are silent: a move on a finished match,
// out of turn, out of range, or on an occupied cell is simply ignored so
// that a client replaying stale state cannot corrupt the board.
func (m *Match) Move(connID string, position int) bool {
	if m.GameOver {
		return false
	}
	symbol := m.SymbolOf(connID)
	if symbol == Empty || symbol != m.CurrentTurn {
		return false
	}
	if position < 0 || position >= len(m.Board) || m.Board[position] != Empty {
		return false
	}

	m.Board[position] = symbol

	switch {
	case m.hasWon(symbol):
		// Win takes precedence over draw when the last cell completes a line.
		m.Winner = symbol
		m.GameOver = true
	case m.full():
		m.Draw = true
		m.GameOver = true
	default:
		m.CurrentTurn = symbol.Other()
	}
	return true
}

// Resolve terminates the match in favor of the opponent of the acting
// connection. Used for explicit quits and disconnections.
func (m *Match) Resolve(connID string, disconnected bool) {
	loser := m.SymbolOf(connID)
	if loser == Empty {
		return
	}
	m.Winner = loser.Other()
	m.GameOver = true
	m.Forfeit = true
	m.Disconnected = disconnected
}

func (m *Match) hasWon(s Symbol) bool {
	for _, line := range winLines {
		if m.Board[line[0]] == s && m.Board[line[1]] == s && m.Board[line[2]] == s {
			return true
		}
	}
	return false
}

func (m *Match) full() bool {
	for _, cell := range m.Board {
		if cell == Empty {
			return false
		}
	}
	return true
}
