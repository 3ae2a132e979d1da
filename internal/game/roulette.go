package game

import (
	"fmt"

	"github.com/oddsworks/pointbook/internal/rng"
)

// RouletteBetType is the single bet type of one roulette wager.
type RouletteBetType string

const (
	RouletteNumber RouletteBetType = "number"
	RouletteRed    RouletteBetType = "red"
	RouletteBlack  RouletteBetType = "black"
	RouletteOdd    RouletteBetType = "odd"
	RouletteEven   RouletteBetType = "even"
	RouletteLow    RouletteBetType = "1-18"
	RouletteHigh   RouletteBetType = "19-36"
	RouletteDozen1 RouletteBetType = "dozen1"
	RouletteDozen2 RouletteBetType = "dozen2"
	RouletteDozen3 RouletteBetType = "dozen3"
)

// The 18 red pockets of a European wheel.
var rouletteRed = map[int]bool{
	1: true, 3: true, 5: true, 7: true, 9: true, 12: true,
	14: true, 16: true, 18: true, 19: true, 21: true, 23: true,
	25: true, 27: true, 30: true, 32: true, 34: true, 36: true,
}

// RouletteOutcome is the drawn number with its classification.
// Zero is green and has no parity: an odd or even bet on zero loses.
type RouletteOutcome struct {
	Number     int    `json:"number"`
	Color      string `json:"color"` // "green", "red" or "black"
	IsRed      bool   `json:"is_red"`
	IsOdd      bool   `json:"is_odd"`
	Won        bool   `json:"won"`
	Multiplier int64  `json:"multiplier"` // hundredths, 0 on loss
}

// spinRoulette draws one number uniformly in [0,36] and resolves the
// bet type against it.
//
// An unrecognized bet type resolves as a loss rather than an error,
// matching the platform's historical behavior.
func spinRoulette(src rng.Source, betType RouletteBetType, betNumber int) (*RouletteOutcome, error) {
	n, err := src.Int(37)
	if err != nil {
		return nil, err
	}
	out := classifyRoulette(int(n))

	won, mult := resolveRoulette(betType, betNumber, out)
	out.Won = won
	if won {
		out.Multiplier = mult
	}
	return out, nil
}

// classifyRoulette computes the color and parity of a drawn number.
func classifyRoulette(n int) *RouletteOutcome {
	out := &RouletteOutcome{Number: n}
	switch {
	case n == 0:
		out.Color = "green"
	case rouletteRed[n]:
		out.Color = "red"
		out.IsRed = true
	default:
		out.Color = "black"
	}
	out.IsOdd = n != 0 && n%2 != 0
	return out
}

// resolveRoulette resolves one bet type against the classification.
// Multipliers are in hundredths of the stake.
func resolveRoulette(betType RouletteBetType, betNumber int, out *RouletteOutcome) (bool, int64) {
	n := out.Number
	switch betType {
	case RouletteNumber:
		return betNumber == n, 3600
	case RouletteRed:
		return out.IsRed, 200
	case RouletteBlack:
		return !out.IsRed && n != 0, 200
	case RouletteOdd:
		return out.IsOdd, 200
	case RouletteEven:
		return !out.IsOdd && n != 0, 200
	case RouletteLow:
		return n >= 1 && n <= 18, 200
	case RouletteHigh:
		return n >= 19 && n <= 36, 200
	case RouletteDozen1:
		return n >= 1 && n <= 12, 300
	case RouletteDozen2:
		return n >= 13 && n <= 24, 300
	case RouletteDozen3:
		return n >= 25 && n <= 36, 300
	}
	return false, 0
}

// describeRoulette builds the transaction description for a spin.
func describeRoulette(out *RouletteOutcome, betType RouletteBetType) string {
	result := "lost"
	if out.Won {
		result = "won"
	}
	return fmt.Sprintf("roulette [%d %s] - %s %s", out.Number, out.Color, betType, result)
}
