package game

import (
	"fmt"

	"github.com/oddsworks/pointbook/internal/rng"
)

// All mini games pay ×1.95 on a won binary pick (hundredths).
const miniGamePayout = 195

// MiniOutcome is the resolved result of one mini-game round. Detail
// carries the game-specific data the client animates (drawn number,
// die face, ladder path).
type MiniOutcome struct {
	Result string `json:"result"`
	Detail any    `json:"detail,omitempty"`
}

// OddEvenDetail is the drawn number behind an odd/even round.
type OddEvenDetail struct {
	Number int `json:"number"`
}

// playOddEven draws a number in [1,100]; its parity is the result.
func playOddEven(src rng.Source) (*MiniOutcome, error) {
	n, err := src.IntRange(1, 100)
	if err != nil {
		return nil, err
	}
	result := "odd"
	if n%2 == 0 {
		result = "even"
	}
	return &MiniOutcome{Result: result, Detail: OddEvenDetail{Number: int(n)}}, nil
}

// playCoin flips a fair coin.
func playCoin(src rng.Source) (*MiniOutcome, error) {
	n, err := src.Int(2)
	if err != nil {
		return nil, err
	}
	result := "heads"
	if n == 1 {
		result = "tails"
	}
	return &MiniOutcome{Result: result}, nil
}

// DiceDetail is the die face behind a high/low round.
type DiceDetail struct {
	Roll int `json:"roll"`
}

// playDice rolls one die; 4-6 is "high", 1-3 is "low".
func playDice(src rng.Source) (*MiniOutcome, error) {
	roll, err := src.IntRange(1, 6)
	if err != nil {
		return nil, err
	}
	result := "low"
	if roll >= 4 {
		result = "high"
	}
	return &MiniOutcome{Result: result, Detail: DiceDetail{Roll: int(roll)}}, nil
}

// LadderDetail is the generated ladder behind a left/right round:
// the random start side, the five rung booleans and the token's path.
type LadderDetail struct {
	Start   string   `json:"start"`
	Bridges []bool   `json:"bridges"`
	Path    []string `json:"path"`
}

const ladderRungs = 5

// playLadder generates a random start side and five random rungs, then
// walks the token down: it flips sides at every rung present. The
// generation is fully random per round and never seeded by the
// player's pick - the rails are symmetric.
func playLadder(src rng.Source) (*MiniOutcome, error) {
	n, err := src.Int(2)
	if err != nil {
		return nil, err
	}
	left := n == 0

	side := func(l bool) string {
		if l {
			return "left"
		}
		return "right"
	}

	detail := LadderDetail{
		Start:   side(left),
		Bridges: make([]bool, ladderRungs),
		Path:    []string{side(left)},
	}
	pos := left
	for i := 0; i < ladderRungs; i++ {
		b, err := src.Int(2)
		if err != nil {
			return nil, err
		}
		if b == 1 {
			detail.Bridges[i] = true
			pos = !pos
		}
		detail.Path = append(detail.Path, side(pos))
	}

	return &MiniOutcome{Result: side(pos), Detail: detail}, nil
}

// describeMini builds the transaction description for a round.
func describeMini(product Product, out *MiniOutcome, won bool) string {
	result := "lost"
	if won {
		result = "won"
	}
	switch d := out.Detail.(type) {
	case OddEvenDetail:
		return fmt.Sprintf("%s [%d/%s] %s", product, d.Number, out.Result, result)
	case DiceDetail:
		return fmt.Sprintf("%s [%d/%s] %s", product, d.Roll, out.Result, result)
	default:
		return fmt.Sprintf("%s [%s] %s", product, out.Result, result)
	}
}
