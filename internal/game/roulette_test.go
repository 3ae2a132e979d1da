package game

import "testing"

func TestClassifyRoulette(t *testing.T) {
	t.Run("ZeroIsGreenWithoutParity", func(t *testing.T) {
		out := classifyRoulette(0)
		if out.Color != "green" {
			t.Errorf("Color of 0: got %s, want green", out.Color)
		}
		if out.IsRed || out.IsOdd {
			t.Errorf("Zero must be neither red nor odd, got red=%v odd=%v", out.IsRed, out.IsOdd)
		}
	})

	t.Run("RedPockets", func(t *testing.T) {
		for _, n := range []int{1, 3, 5, 7, 9, 12, 14, 16, 18, 19, 21, 23, 25, 27, 30, 32, 34, 36} {
			if out := classifyRoulette(n); !out.IsRed || out.Color != "red" {
				t.Errorf("%d should be red, got %s", n, out.Color)
			}
		}
	})

	t.Run("BlackPockets", func(t *testing.T) {
		for _, n := range []int{2, 4, 6, 8, 10, 11, 13, 15, 17, 20, 22, 24, 26, 28, 29, 31, 33, 35} {
			if out := classifyRoulette(n); out.IsRed || out.Color != "black" {
				t.Errorf("%d should be black, got %s", n, out.Color)
			}
		}
	})
}

func TestResolveRoulette(t *testing.T) {
	testCases := []struct {
		name      string
		betType   RouletteBetType
		betNumber int
		number    int
		won       bool
		mult      int64
	}{
		{"NumberHit", RouletteNumber, 17, 17, true, 3600},
		{"NumberMiss", RouletteNumber, 17, 18, false, 0},
		{"RedHit", RouletteRed, 0, 1, true, 200},
		{"RedMissOnZero", RouletteRed, 0, 0, false, 0},
		{"BlackHit", RouletteBlack, 0, 2, true, 200},
		{"BlackMissOnZero", RouletteBlack, 0, 0, false, 0},
		{"OddHit", RouletteOdd, 0, 9, true, 200},
		{"OddMissOnZero", RouletteOdd, 0, 0, false, 0},
		{"EvenHit", RouletteEven, 0, 8, true, 200},
		{"EvenMissOnZero", RouletteEven, 0, 0, false, 0},
		{"LowHit", RouletteLow, 0, 18, true, 200},
		{"LowMissOnZero", RouletteLow, 0, 0, false, 0},
		{"HighHit", RouletteHigh, 0, 19, true, 200},
		{"HighMiss", RouletteHigh, 0, 18, false, 0},
		{"Dozen1Hit", RouletteDozen1, 0, 12, true, 300},
		{"Dozen2Hit", RouletteDozen2, 0, 13, true, 300},
		{"Dozen3Hit", RouletteDozen3, 0, 36, true, 300},
		{"Dozen1MissOnZero", RouletteDozen1, 0, 0, false, 0},
		{"UnknownTypeLoses", RouletteBetType("corner"), 0, 17, false, 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			out := classifyRoulette(tc.number)
			won, mult := resolveRoulette(tc.betType, tc.betNumber, out)
			if won != tc.won {
				t.Errorf("won: got %v, want %v", won, tc.won)
			}
			if won && mult != tc.mult {
				t.Errorf("multiplier: got %d, want %d", mult, tc.mult)
			}
		})
	}
}

func TestSpinRoulette(t *testing.T) {
	t.Run("ScriptedWin", func(t *testing.T) {
		src := &scriptSource{ints: []int64{17}}

		out, err := spinRoulette(src, RouletteNumber, 17)
		if err != nil {
			t.Fatalf("spinRoulette failed: %v", err)
		}
		if !out.Won || out.Multiplier != 3600 {
			t.Errorf("Expected ×36 number hit, got won=%v mult=%d", out.Won, out.Multiplier)
		}
	})

	t.Run("LossHasZeroMultiplier", func(t *testing.T) {
		src := &scriptSource{ints: []int64{18}}

		out, err := spinRoulette(src, RouletteNumber, 17)
		if err != nil {
			t.Fatalf("spinRoulette failed: %v", err)
		}
		if out.Won || out.Multiplier != 0 {
			t.Errorf("Expected loss, got won=%v mult=%d", out.Won, out.Multiplier)
		}
	})
}
