// Package game implements the randomized game engines (baccarat,
// slots, roulette and the mini games) and the wager pipeline that
// validates stakes and funnels every resolved outcome through the
// settlement ledger.
package game

import (
	"github.com/oddsworks/pointbook/internal/rng"
)

// Suit is a playing card suit.
type Suit string

const (
	Spades   Suit = "♠"
	Hearts   Suit = "♥"
	Diamonds Suit = "♦"
	Clubs    Suit = "♣"
)

var suits = []Suit{Spades, Hearts, Diamonds, Clubs}

// Rank is a playing card rank.
type Rank string

var ranks = []Rank{"A", "2", "3", "4", "5", "6", "7", "8", "9", "10", "J", "Q", "K"}

// Card is one playing card. Cards are drawn from an infinite shoe:
// every draw is independent and sampled with replacement over the 52
// suit-rank combinations. There is no shoe depletion or reshuffling.
type Card struct {
	Suit Suit `json:"suit"`
	Rank Rank `json:"rank"`
}

// Point returns the baccarat point value: A=1, 2-9 face value,
// 10/J/Q/K=0.
func (c Card) Point() int {
	switch c.Rank {
	case "A":
		return 1
	case "10", "J", "Q", "K":
		return 0
	default:
		return int(c.Rank[0] - '0')
	}
}

// String renders the card the way the frontend shows it, e.g. "♠A".
func (c Card) String() string {
	return string(c.Suit) + string(c.Rank)
}

// Hand is an ordered sequence of cards for one baccarat side.
type Hand []Card

// Total is the baccarat hand total: sum of point values mod 10.
func (h Hand) Total() int {
	sum := 0
	for _, c := range h {
		sum += c.Point()
	}
	return sum % 10
}

// drawCard samples one card uniformly over the 52 combinations.
func drawCard(src rng.Source) (Card, error) {
	r, err := src.Int(int64(len(ranks)))
	if err != nil {
		return Card{}, err
	}
	s, err := src.Int(int64(len(suits)))
	if err != nil {
		return Card{}, err
	}
	return Card{Suit: suits[s], Rank: ranks[r]}, nil
}
