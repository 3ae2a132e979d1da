package game

import "testing"

func TestCardPoint(t *testing.T) {
	testCases := []struct {
		rank  Rank
		point int
	}{
		{"A", 1},
		{"2", 2},
		{"5", 5},
		{"9", 9},
		{"10", 0},
		{"J", 0},
		{"Q", 0},
		{"K", 0},
	}

	for _, tc := range testCases {
		c := Card{Suit: Spades, Rank: tc.rank}
		if got := c.Point(); got != tc.point {
			t.Errorf("Point of %s: got %d, want %d", tc.rank, got, tc.point)
		}
	}
}

func TestHandTotal(t *testing.T) {
	testCases := []struct {
		name  string
		hand  Hand
		total int
	}{
		{"Empty", Hand{}, 0},
		{"SingleCard", Hand{{Spades, "7"}}, 7},
		{"WrapsAtTen", Hand{{Spades, "7"}, {Hearts, "8"}}, 5},
		{"FacesAreZero", Hand{{Spades, "K"}, {Hearts, "Q"}}, 0},
		{"NaturalNine", Hand{{Spades, "4"}, {Hearts, "5"}}, 9},
		{"ThreeCards", Hand{{Spades, "9"}, {Hearts, "9"}, {Clubs, "9"}}, 7},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.hand.Total(); got != tc.total {
				t.Errorf("Total: got %d, want %d", got, tc.total)
			}
		})
	}
}

func TestCardString(t *testing.T) {
	c := Card{Suit: Spades, Rank: "A"}
	if c.String() != "♠A" {
		t.Errorf("String: got %q, want %q", c.String(), "♠A")
	}
}

func TestDrawCard(t *testing.T) {
	src := &scriptSource{ints: cardScript("K")}
	c, err := drawCard(src)
	if err != nil {
		t.Fatalf("drawCard failed: %v", err)
	}
	if c.Rank != "K" || c.Suit != Spades {
		t.Errorf("drawCard: got %s, want ♠K", c)
	}
}
