package veto

import (
	"fmt"
	"slices"
)

type Stage string

const (
	StageMap  Stage = "map"
	StageSide Stage = "side"
)

// Turn is the step the session is waiting on. Team is nil when either team
// may act.
type Turn struct {
	Index  int    `json:"index"`
	Action Action `json:"action"`
	Stage  Stage  `json:"stage"`
	Team   *Team  `json:"team"`
	Timer  *int   `json:"timer,omitempty"`
}

// Turn returns the pending step, or false when the session has not started
// or is finished.
func (s Session) Turn() (Turn, bool) {
	if !s.Started || s.Complete() {
		return Turn{}, false
	}
	item := s.Sequence[s.CurrentSequence]

	turn := Turn{Index: s.CurrentSequence, Action: item.Action, Timer: s.Settings.Timer}
	ref := item.MapActor
	switch item.Status {
	case StatusPending, StatusAwaitingMapPick:
		turn.Stage = StageMap
	case StatusAwaitingSidePick:
		turn.Stage = StageSide
		ref = item.SideActor
	default:
		return Turn{}, false
	}

	if team, err := s.ResolveActor(ref); err == nil && team != "" {
		turn.Team = &team
	}
	return turn, true
}

// RemainingMaps lists the maps step index may still choose, in pool order.
func (s Session) RemainingMaps(index int) []string {
	if index < 0 || index >= len(s.Sequence) {
		return nil
	}
	consumed := make(map[string]struct{})
	for _, item := range s.Sequence[:index] {
		if item.MapPicked != nil {
			consumed[*item.MapPicked] = struct{}{}
		}
	}

	var remaining []string
	for _, id := range s.Settings.poolFor(s.Sequence[index].Mode) {
		if _, used := consumed[id]; !used {
			remaining = append(remaining, id)
		}
	}
	return remaining
}

func (s Session) checkTurn(seriesID string, index int, statuses ...ItemStatus) error {
	if s.Complete() {
		return ErrSessionComplete
	}
	if seriesID != "" && seriesID != s.SeriesID {
		return fmt.Errorf("%w: got %q, session is %q", ErrSeriesMismatch, seriesID, s.SeriesID)
	}
	if !s.Started {
		return fmt.Errorf("%w: veto not started", ErrOutOfTurn)
	}
	if index != s.CurrentSequence {
		return fmt.Errorf("%w: step %d, current is %d", ErrOutOfTurn, index, s.CurrentSequence)
	}
	if status := s.Sequence[index].Status; !slices.Contains(statuses, status) {
		return fmt.Errorf("%w: step %d is %s", ErrOutOfTurn, index, status)
	}
	return nil
}

func (s *Session) SubmitMapPick(team Team, seriesID string, index int, mapID string) ([]Event, error) {
	if err := s.checkTurn(seriesID, index, StatusPending, StatusAwaitingMapPick); err != nil {
		return nil, err
	}
	item := s.Sequence[index]
	if err := s.authorize(item.MapActor, team); err != nil {
		return nil, err
	}
	if !slices.Contains(s.RemainingMaps(index), mapID) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidMap, mapID)
	}
	return s.recordMap(team, mapID), nil
}

func (s *Session) recordMap(team Team, mapID string) []Event {
	item := &s.Sequence[s.CurrentSequence]
	item.MapPicked = &mapID

	evt := Event{Type: EvtMapBanned, Team: team, Index: s.CurrentSequence, MapID: mapID}
	if item.Action == ActionPick {
		evt.Type = EvtMapPicked
	}
	events := []Event{evt}

	if item.Action == ActionPick && !item.SideActor.IsZero() {
		item.Status = StatusAwaitingSidePick
		return events
	}
	return append(events, s.advance()...)
}

func (s *Session) SubmitSidePick(team Team, seriesID string, index int, side Side) ([]Event, error) {
	if err := s.checkTurn(seriesID, index, StatusAwaitingSidePick); err != nil {
		return nil, err
	}
	if err := s.authorize(s.Sequence[index].SideActor, team); err != nil {
		return nil, err
	}
	if !side.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSide, side)
	}
	return s.recordSide(team, side), nil
}

func (s *Session) recordSide(team Team, side Side) []Event {
	item := &s.Sequence[s.CurrentSequence]
	item.SidePicked = &side

	// The side picker either is the map actor or plays against it.
	sideTeam, _ := s.ResolveActor(item.SideActor)
	mapTeam, _ := s.ResolveActor(item.MapActor)
	if sideTeam == "" {
		sideTeam = team
	}
	if mapTeam != "" {
		mapSide := side
		if mapTeam != sideTeam {
			mapSide = side.Other()
		}
		item.MapActorSide = &mapSide
	}

	events := []Event{{Type: EvtSidePicked, Team: team, Index: s.CurrentSequence, Side: side}}
	return append(events, s.advance()...)
}

// advance completes the current step and activates the next one.
func (s *Session) advance() []Event {
	s.Sequence[s.CurrentSequence].Status = StatusComplete
	s.CurrentSequence++
	return append([]Event{{Type: EvtTurnAdvanced, Index: s.CurrentSequence}}, s.activate()...)
}

// activate opens the current step. Deciders take the first map left in
// their pool and complete on their own.
func (s *Session) activate() []Event {
	if s.CurrentSequence >= len(s.Sequence) {
		return []Event{{Type: EvtVetoCompleted}}
	}

	item := &s.Sequence[s.CurrentSequence]
	if item.Action != ActionDecider {
		item.Status = StatusAwaitingMapPick
		return nil
	}

	evt := Event{Type: EvtDeciderAssigned, Index: s.CurrentSequence}
	if remaining := s.RemainingMaps(s.CurrentSequence); len(remaining) > 0 {
		mapID := remaining[0]
		item.MapPicked = &mapID
		evt.MapID = mapID
	}
	return append([]Event{evt}, s.advance()...)
}

func (s Session) canStart() error {
	if s.Started {
		return ErrAlreadyStarted
	}
	for _, t := range []ActorType{ActorTeamA, ActorTeamB} {
		if !s.teamReady(t) {
			return fmt.Errorf("%w: %s", ErrNotReady, t)
		}
	}
	if !s.CoinFlip.Resolved() {
		return ErrNotResolved
	}
	return nil
}

// Start opens the first step once both teams are ready and the coin has
// been flipped.
func (s *Session) Start() ([]Event, error) {
	if err := s.canStart(); err != nil {
		return nil, err
	}
	s.Started = true
	return append([]Event{{Type: EvtSequenceStarted}}, s.activate()...), nil
}

func (s *Session) tryAutoStart() []Event {
	if !s.Settings.AutoStart || s.canStart() != nil {
		return nil
	}
	events, _ := s.Start()
	return events
}

// ForceTurn resolves the pending step without its actor: the first legal
// map, or the red side.
func (s *Session) ForceTurn() ([]Event, error) {
	turn, ok := s.Turn()
	if !ok {
		if s.Complete() {
			return nil, ErrSessionComplete
		}
		return nil, fmt.Errorf("%w: veto not started", ErrOutOfTurn)
	}

	var team Team
	if turn.Team != nil {
		team = *turn.Team
	}
	events := []Event{{Type: EvtTurnTimedOut, Team: team, Index: turn.Index}}

	if turn.Stage == StageSide {
		return append(events, s.recordSide(team, SideRed)...), nil
	}
	remaining := s.RemainingMaps(turn.Index)
	if len(remaining) == 0 {
		return nil, fmt.Errorf("%w: no maps left for step %d", ErrInvalidMap, turn.Index)
	}
	return append(events, s.recordMap(team, chooseTimeoutMap(remaining))...), nil
}

var chooseTimeoutMap = func(legal []string) string {
	return legal[0]
}
