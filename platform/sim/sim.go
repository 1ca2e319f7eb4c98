// Package sim plays whole games between simple bots. It drives the engine exactly as the server
// does, so it doubles as a soak test for the rules.
package sim

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/DedS3t/monopoly-engine/app/models"
	"github.com/DedS3t/monopoly-engine/platform/rules"
	"github.com/sirupsen/logrus"
)

// reserve is the cash a bot keeps back when buying; building and redeeming keep twice as much.
const reserve = 200

type Recorder interface {
	Record(ctx context.Context, room, actor string, action models.ActionDto, events []models.Event) error
}

type Options struct {
	Room       string
	Players    int
	Seed       int64
	Rules      models.Rules
	MaxActions int
	Journal    Recorder
	Log        *logrus.Entry
}

type Result struct {
	Room     string
	Winner   string
	Turns    int
	Actions  int
	Finished bool
	State    *models.GameState
}

// Run plays one game until someone wins or MaxActions is reached. The same seed replays the same game.
func Run(ctx context.Context, e *rules.Engine, opts Options) (*Result, error) {
	src := rand.New(rand.NewSource(opts.Seed))
	seats := make([]models.Seat, opts.Players)
	for i := range seats {
		seats[i] = models.Seat{Id: fmt.Sprintf("bot-%d", i+1), Username: fmt.Sprintf("Bot %d", i+1)}
	}
	st, err := e.InitializeGame(opts.Rules, seats, src)
	if err != nil {
		return nil, err
	}

	res := &Result{Room: opts.Room}
	for res.Actions < opts.MaxActions && st.Winner == "" {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		actor, act := NextMove(e, st)
		next, events, err := e.Resolve(st, actor, act, src)
		if err != nil {
			return res, fmt.Errorf("sim: %s %s rejected: %w", actor, act.Kind(), err)
		}
		if opts.Journal != nil {
			if err := opts.Journal.Record(ctx, opts.Room, actor, rules.EncodeAction(act), events); err != nil {
				return res, err
			}
		}
		if opts.Log != nil {
			for _, ev := range events {
				opts.Log.WithFields(logrus.Fields{"player": ev.Player, "space": ev.Space, "amount": ev.Amount}).Debug(ev.Kind)
			}
		}
		st = next
		res.Actions++
	}

	res.State = st
	res.Winner = st.Winner
	res.Finished = st.Winner != ""
	res.Turns = st.TurnCount
	return res, nil
}

// NextMove picks the bot move for whoever has to act next: an insolvent player first, otherwise
// the current player.
func NextMove(e *rules.Engine, st *models.GameState) (string, rules.Action) {
	if len(st.Insolvencies) > 0 {
		p := &st.Players[st.PlayerIndex(st.Insolvencies[0].Player)]
		return p.Id, liquidate(e, st, p)
	}

	p := st.Current()
	switch st.Phase {
	case models.PhaseBuying:
		space := e.Board().Space(*st.PendingPurchase)
		if p.Balance-space.Price >= reserve {
			return p.Id, rules.Purchase{}
		}
		return p.Id, rules.Decline{}
	case models.PhaseTurnOver:
		if act := improve(e, st, p); act != nil {
			return p.Id, act
		}
		return p.Id, rules.EndTurn{}
	}
	if p.Jail && p.JailFreeCards > 0 {
		return p.Id, rules.UseJailCard{}
	}
	return p.Id, rules.Roll{}
}

// liquidate sells buildings before mortgaging, and gives up when nothing is left to raise.
func liquidate(e *rules.Engine, st *models.GameState, p *models.Player) rules.Action {
	for _, h := range p.Properties {
		if e.CanSellHouse(p, h.SpaceId, st.Rules) {
			return rules.SellBuilding{Space: h.SpaceId}
		}
	}
	for _, h := range p.Properties {
		if e.CanMortgage(p, h.SpaceId, st.Rules) {
			return rules.MortgageProperty{Space: h.SpaceId}
		}
	}
	return rules.DeclareBankruptcy{}
}

func improve(e *rules.Engine, st *models.GameState, p *models.Player) rules.Action {
	b := e.Board()
	for _, h := range p.Properties {
		if e.CanUnmortgage(p, h.SpaceId, st.Rules) && p.Balance-b.Space(h.SpaceId).MortgageValue() >= 2*reserve {
			return rules.UnmortgageProperty{Space: h.SpaceId}
		}
	}
	for _, h := range p.Properties {
		if e.CanBuild(p, h.SpaceId, st.Rules) && p.Balance-b.Space(h.SpaceId).HouseCost >= 2*reserve {
			return rules.BuildHouse{Space: h.SpaceId}
		}
	}
	return nil
}
