package veto

import (
	"fmt"
	"math/rand/v2"
)

// tossCoin is swapped out in tests.
var tossCoin = func() CoinSide {
	if rand.IntN(2) == 0 {
		return CoinHeads
	}
	return CoinTails
}

// ClaimSide puts team on a coin side. The second claim tosses the coin and
// fixes winner and loser.
func (s *Session) ClaimSide(team Team, side CoinSide) ([]Event, error) {
	if !team.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTeam, team)
	}
	if !side.Valid() {
		return nil, fmt.Errorf("%w: coin side %q", ErrInvalidSide, side)
	}
	if s.CoinFlip.Resolved() {
		return nil, fmt.Errorf("%w: coin already flipped", ErrAlreadyClaimed)
	}

	slot, other := &s.CoinFlip.Heads, s.CoinFlip.Tails
	if side == CoinTails {
		slot, other = &s.CoinFlip.Tails, s.CoinFlip.Heads
	}
	if *slot != nil {
		return nil, fmt.Errorf("%w: %s held by %s", ErrAlreadyClaimed, side, **slot)
	}
	if other != nil && *other == team {
		return nil, fmt.Errorf("%w: %s already holds a side", ErrAlreadyClaimed, team)
	}

	t := team
	*slot = &t
	events := []Event{{Type: EvtCoinClaimed, Team: team, CoinSide: side}}

	if s.CoinFlip.Heads == nil || s.CoinFlip.Tails == nil {
		return events, nil
	}

	result := tossCoin()
	winner := *s.CoinFlip.Heads
	if result == CoinTails {
		winner = *s.CoinFlip.Tails
	}
	loser := winner.Other()
	s.CoinFlip.Result = &result
	s.CoinFlip.Winner = &winner
	s.CoinFlip.Loser = &loser
	events = append(events, Event{Type: EvtCoinFlipped, Team: winner, CoinSide: result})

	if s.Settings.Type == TypeCoinFlipOnly {
		s.Started = true
		s.CurrentSequence = len(s.Sequence)
		return append(events, Event{Type: EvtVetoCompleted}), nil
	}
	return append(events, s.tryAutoStart()...), nil
}

// ResolveActor turns a symbolic actor into a concrete team. The zero ref
// resolves to "" and means either team.
func (s Session) ResolveActor(ref ActorRef) (Team, error) {
	switch ref.kind {
	case refFixed:
		return ref.team, nil
	case refWinner:
		if !s.CoinFlip.Resolved() {
			return "", ErrNotResolved
		}
		return *s.CoinFlip.Winner, nil
	case refLoser:
		if !s.CoinFlip.Resolved() {
			return "", ErrNotResolved
		}
		return *s.CoinFlip.Loser, nil
	default:
		return "", nil
	}
}

// authorize checks that team may act for ref.
func (s Session) authorize(ref ActorRef, team Team) error {
	if !team.Valid() {
		return fmt.Errorf("%w: %q cannot act", ErrWrongActor, team)
	}
	want, err := s.ResolveActor(ref)
	if err != nil {
		return err
	}
	if want != "" && want != team {
		return fmt.Errorf("%w: expected %s, got %s", ErrWrongActor, want, team)
	}
	return nil
}
