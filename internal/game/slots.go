package game

import (
	"fmt"
	"strings"

	"github.com/oddsworks/pointbook/internal/rng"
)

// Symbol is one slot reel symbol.
type Symbol string

// The reel alphabet with its relative weights. Heavier weights are the
// common low-value symbols; 💎 is the rarest and pays the most.
var (
	slotSymbols = []Symbol{"🍒", "🍊", "🍋", "🔔", "⭐", "💎", "7️⃣", "🃏"}
	slotWeights = []int{20, 18, 18, 15, 12, 5, 8, 10}
)

// Payout tables in hundredths of the stake. The three-symbol table is
// consulted first; if the combination is absent and the first two
// reels match, the two-symbol table is consulted. A match that does
// not start at reel 1 never pays - reels 2+3 matching alone is a loss.
var slotPays3 = map[string]int64{
	"💎💎💎":    5000, // ×50
	"7️⃣7️⃣7️⃣": 3000, // ×30
	"⭐⭐⭐":    2000, // ×20
	"🃏🃏🃏":    1500, // ×15
	"🔔🔔🔔":    1000, // ×10
	"🍒🍒🍒":    800,  // ×8
	"🍊🍊🍊":    600,  // ×6
	"🍋🍋🍋":    500,  // ×5
}

var slotPays2 = map[string]int64{
	"💎💎":    300, // ×3
	"7️⃣7️⃣": 250, // ×2.5
	"⭐⭐":    200, // ×2
	"🃏🃏":    200, // ×2
	"🍒🍒":    150, // ×1.5
}

// SlotOutcome is the result of one spin.
type SlotOutcome struct {
	Reels      []Symbol `json:"reels"`
	Multiplier int64    `json:"multiplier"` // hundredths
	Won        bool     `json:"won"`
}

// spinSlots performs three independent weighted reel draws and
// evaluates the payline.
func spinSlots(src rng.Source) (*SlotOutcome, error) {
	reels := make([]Symbol, 3)
	for i := range reels {
		idx, err := src.Weighted(slotWeights)
		if err != nil {
			return nil, err
		}
		reels[i] = slotSymbols[idx]
	}

	mult := slotMultiplier(reels)
	return &SlotOutcome{
		Reels:      reels,
		Multiplier: mult,
		Won:        mult > 0,
	}, nil
}

// slotMultiplier evaluates the payline against the payout tables.
func slotMultiplier(reels []Symbol) int64 {
	key3 := string(reels[0]) + string(reels[1]) + string(reels[2])
	if pay, ok := slotPays3[key3]; ok {
		return pay
	}
	if reels[0] == reels[1] {
		if pay, ok := slotPays2[string(reels[0])+string(reels[1])]; ok {
			return pay
		}
	}
	return 0
}

// describeSlots builds the transaction description for a spin.
func describeSlots(out *SlotOutcome) string {
	parts := make([]string, len(out.Reels))
	for i, s := range out.Reels {
		parts[i] = string(s)
	}
	line := strings.Join(parts, " ")
	if out.Won {
		return fmt.Sprintf("slots [%s] x%.2f", line, float64(out.Multiplier)/100)
	}
	return fmt.Sprintf("slots [%s] no match", line)
}
