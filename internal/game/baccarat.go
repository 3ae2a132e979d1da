package game

import (
	"fmt"
	"strings"

	"github.com/oddsworks/pointbook/internal/rng"
)

// Payout multipliers in hundredths, so floor(stake × multiplier) is
// exact integer arithmetic: win = stake * multiplier / 100.
const (
	payoutPlayer     = 200  // ×2.00
	payoutBanker     = 195  // ×1.95, 5% commission
	payoutTie        = 900  // ×9.00
	payoutPlayerPair = 1200 // ×12.00
	payoutBankerPair = 1200 // ×12.00
)

// BaccaratLegs holds the stake on each of the five bet legs of one
// baccarat deal. Legs are a fixed set, not an open map, so an
// unknown leg name can never silently contribute zero. A zero leg is
// inert: it is not validated against stake bounds and never wins.
type BaccaratLegs struct {
	Player     int64 `json:"player"`
	Banker     int64 `json:"banker"`
	Tie        int64 `json:"tie"`
	PlayerPair int64 `json:"player_pair"`
	BankerPair int64 `json:"banker_pair"`
}

// Total is the full stake debited from the user for the deal.
func (l BaccaratLegs) Total() int64 {
	return l.Player + l.Banker + l.Tie + l.PlayerPair + l.BankerPair
}

// each visits every leg with its name and stake, in a fixed order.
func (l BaccaratLegs) each(fn func(name string, stake int64)) {
	fn("player", l.Player)
	fn("banker", l.Banker)
	fn("tie", l.Tie)
	fn("player_pair", l.PlayerPair)
	fn("banker_pair", l.BankerPair)
}

// BaccaratOutcome is the immutable result of one deal.
type BaccaratOutcome struct {
	PlayerCards Hand     `json:"player_cards"`
	BankerCards Hand     `json:"banker_cards"`
	PlayerTotal int      `json:"player_total"`
	BankerTotal int      `json:"banker_total"`
	Winner      string   `json:"winner"` // "player", "banker" or "tie"
	Natural     bool     `json:"natural"`
	PlayerPair  bool     `json:"player_pair"`
	BankerPair  bool     `json:"banker_pair"`
	WonLegs     []string `json:"won_legs,omitempty"`
}

// dealBaccarat runs one full deal under the traditional third-card
// rule:
//
//  1. Two cards each. If either total is 8 or 9 (a natural), no third
//     cards are drawn for either side.
//  2. Player draws a third card iff their total is 0-5.
//  3. If the player stood, banker draws iff their total is 0-5. If the
//     player drew, the banker decision follows the drawing table keyed
//     on the banker total and the player's third card value.
//  4. Higher final total wins; equal totals tie.
func dealBaccarat(src rng.Source) (*BaccaratOutcome, error) {
	player := make(Hand, 0, 3)
	banker := make(Hand, 0, 3)

	for i := 0; i < 2; i++ {
		c, err := drawCard(src)
		if err != nil {
			return nil, err
		}
		player = append(player, c)
	}
	for i := 0; i < 2; i++ {
		c, err := drawCard(src)
		if err != nil {
			return nil, err
		}
		banker = append(banker, c)
	}

	natural := player.Total() >= 8 || banker.Total() >= 8

	if !natural {
		var playerThird *Card
		if player.Total() <= 5 {
			c, err := drawCard(src)
			if err != nil {
				return nil, err
			}
			player = append(player, c)
			playerThird = &c
		}

		bankerDraws := false
		if playerThird == nil {
			bankerDraws = banker.Total() <= 5
		} else {
			bankerDraws = bankerDrawsOn(banker.Total(), playerThird.Point())
		}
		if bankerDraws {
			c, err := drawCard(src)
			if err != nil {
				return nil, err
			}
			banker = append(banker, c)
		}
	}

	pt, bt := player.Total(), banker.Total()
	winner := "tie"
	if pt > bt {
		winner = "player"
	} else if bt > pt {
		winner = "banker"
	}

	return &BaccaratOutcome{
		PlayerCards: player,
		BankerCards: banker,
		PlayerTotal: pt,
		BankerTotal: bt,
		Winner:      winner,
		Natural:     natural,
		PlayerPair:  player[0].Rank == player[1].Rank,
		BankerPair:  banker[0].Rank == banker[1].Rank,
	}, nil
}

// bankerDrawsOn is the banker third-card table. bankerTotal is the
// banker's two-card total (0-7 when consulted), p3 the point value of
// the player's third card.
func bankerDrawsOn(bankerTotal, p3 int) bool {
	switch bankerTotal {
	case 0, 1, 2:
		return true
	case 3:
		return p3 != 8
	case 4:
		return p3 >= 2 && p3 <= 7
	case 5:
		return p3 >= 4 && p3 <= 7
	case 6:
		return p3 == 6 || p3 == 7
	default: // 7 stands; 8-9 never consulted (natural)
		return false
	}
}

// evaluateBaccarat applies the payout table to the staked legs.
// Each leg pays floor(stake × multiplier) when it wins and zero
// otherwise; the pair legs resolve independently of the hand winner.
// Tie outcomes do not push the player/banker legs - they lose.
func evaluateBaccarat(out *BaccaratOutcome, legs BaccaratLegs) int64 {
	var win int64
	legWon := func(name string) bool {
		switch name {
		case "player", "banker", "tie":
			return out.Winner == name
		case "player_pair":
			return out.PlayerPair
		case "banker_pair":
			return out.BankerPair
		}
		return false
	}
	legs.each(func(name string, stake int64) {
		if stake <= 0 || !legWon(name) {
			return
		}
		win += stake * legMultiplier(name) / 100
		out.WonLegs = append(out.WonLegs, name)
	})
	return win
}

func legMultiplier(name string) int64 {
	switch name {
	case "player":
		return payoutPlayer
	case "banker":
		return payoutBanker
	case "tie":
		return payoutTie
	case "player_pair":
		return payoutPlayerPair
	case "banker_pair":
		return payoutBankerPair
	}
	return 0
}

// describeBaccarat builds the transaction description for a deal.
func describeBaccarat(out *BaccaratOutcome) string {
	desc := fmt.Sprintf("baccarat [P:%d B:%d] winner %s", out.PlayerTotal, out.BankerTotal, out.Winner)
	if len(out.WonLegs) > 0 {
		desc += ", won " + strings.Join(out.WonLegs, "+")
	} else {
		desc += ", no winning legs"
	}
	return desc
}
