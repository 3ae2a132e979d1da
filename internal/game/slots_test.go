package game

import "testing"

func TestSlotMultiplier(t *testing.T) {
	testCases := []struct {
		name  string
		reels []Symbol
		mult  int64
	}{
		{"TripleDiamond", []Symbol{"💎", "💎", "💎"}, 5000},
		{"TripleSeven", []Symbol{"7️⃣", "7️⃣", "7️⃣"}, 3000},
		{"TripleStar", []Symbol{"⭐", "⭐", "⭐"}, 2000},
		{"TripleJoker", []Symbol{"🃏", "🃏", "🃏"}, 1500},
		{"TripleBell", []Symbol{"🔔", "🔔", "🔔"}, 1000},
		{"TripleCherry", []Symbol{"🍒", "🍒", "🍒"}, 800},
		{"TripleOrange", []Symbol{"🍊", "🍊", "🍊"}, 600},
		{"TripleLemon", []Symbol{"🍋", "🍋", "🍋"}, 500},
		{"DoubleDiamond", []Symbol{"💎", "💎", "🍒"}, 300},
		{"DoubleSeven", []Symbol{"7️⃣", "7️⃣", "🍋"}, 250},
		{"DoubleCherry", []Symbol{"🍒", "🍒", "🍊"}, 150},
		{"DoubleLemonPaysNothing", []Symbol{"🍋", "🍋", "🍒"}, 0},
		{"SplitPairPaysNothing", []Symbol{"🍒", "🍊", "🍒"}, 0},
		{"TrailingPairPaysNothing", []Symbol{"🍊", "🍒", "🍒"}, 0},
		{"NoMatch", []Symbol{"🍒", "🍊", "🍋"}, 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := slotMultiplier(tc.reels); got != tc.mult {
				t.Errorf("slotMultiplier(%v): got %d, want %d", tc.reels, got, tc.mult)
			}
		})
	}
}

func TestSpinSlots(t *testing.T) {
	t.Run("ScriptedReels", func(t *testing.T) {
		// Indices 5,5,0 select 💎,💎,🍒.
		src := &scriptSource{weights: []int{5, 5, 0}}

		out, err := spinSlots(src)
		if err != nil {
			t.Fatalf("spinSlots failed: %v", err)
		}
		if out.Reels[0] != "💎" || out.Reels[1] != "💎" || out.Reels[2] != "🍒" {
			t.Errorf("Reels: got %v", out.Reels)
		}
		if !out.Won || out.Multiplier != 300 {
			t.Errorf("Expected 💎💎 pair at ×3, got won=%v mult=%d", out.Won, out.Multiplier)
		}
	})

	t.Run("LossHasZeroMultiplier", func(t *testing.T) {
		src := &scriptSource{weights: []int{0, 1, 2}}

		out, err := spinSlots(src)
		if err != nil {
			t.Fatalf("spinSlots failed: %v", err)
		}
		if out.Won || out.Multiplier != 0 {
			t.Errorf("Expected loss, got won=%v mult=%d", out.Won, out.Multiplier)
		}
	})
}

func TestSlotTablesConsistent(t *testing.T) {
	for _, s := range slotSymbols {
		if _, ok := slotPays3[string(s)+string(s)+string(s)]; !ok {
			t.Errorf("Symbol %s has no triple payout", s)
		}
	}
	if len(slotSymbols) != len(slotWeights) {
		t.Fatalf("Symbols and weights diverge: %d vs %d", len(slotSymbols), len(slotWeights))
	}
}
