package veto

import (
	"fmt"
	"slices"
)

type Passwords struct {
	TeamA string `json:"teamA"`
	TeamB string `json:"teamB"`
	Host  string `json:"host"`
}

func (p Passwords) secret(a ActorType) string {
	switch a {
	case ActorTeamA:
		return p.TeamA
	case ActorTeamB:
		return p.TeamB
	case ActorHost:
		return p.Host
	default:
		return ""
	}
}

type CoinFlip struct {
	Heads  *Team     `json:"heads"`
	Tails  *Team     `json:"tails"`
	Result *CoinSide `json:"result"`
	Winner *Team     `json:"winner"`
	Loser  *Team     `json:"loser"`
}

func (c CoinFlip) Resolved() bool { return c.Result != nil }

type SequenceItem struct {
	Action       Action     `json:"action"`
	Mode         *string    `json:"mode"`
	Status       ItemStatus `json:"status"`
	MapActor     ActorRef   `json:"mapActor"`
	MapActorSide *Side      `json:"mapActorSide"`
	MapPicked    *string    `json:"mapPicked"`
	SideActor    ActorRef   `json:"sideActor"`
	SidePicked   *Side      `json:"sidePicked"`
}

type Actor struct {
	Type     ActorType `json:"type"`
	Name     string    `json:"name"`
	SocketID string    `json:"socketId"`
	Ready    bool      `json:"ready"`
	UUID     string    `json:"uuid"`
}

// Session is the runtime state of one veto. Settings never change after
// NewSession; everything else moves only through the Session methods or Apply.
type Session struct {
	SeriesID        string         `json:"seriesId"`
	Settings        Settings       `json:"settings"`
	Passwords       Passwords      `json:"-"`
	Started         bool           `json:"started"`
	CurrentSequence int            `json:"currentSequence"`
	CoinFlip        CoinFlip       `json:"coinFlip"`
	Sequence        []SequenceItem `json:"sequence"`
	Actors          []Actor        `json:"actors"`
}

func NewSession(seriesID string, settings Settings, passwords Passwords) (Session, error) {
	if err := settings.Validate(); err != nil {
		return Session{}, fmt.Errorf("new session %s: %w", seriesID, err)
	}

	seq := make([]SequenceItem, 0, len(settings.Sequence))
	for _, item := range settings.Sequence {
		seq = append(seq, SequenceItem{
			Action:    item.Action,
			Mode:      copyPtr(item.Mode),
			Status:    StatusPending,
			MapActor:  item.MapActor,
			SideActor: item.SideActor,
		})
	}

	return Session{
		SeriesID:  seriesID,
		Settings:  settings,
		Passwords: passwords,
		Sequence:  seq,
		Actors:    []Actor{},
	}, nil
}

// Complete reports whether the session has run past its last step.
func (s Session) Complete() bool {
	return s.Started && s.CurrentSequence >= len(s.Sequence)
}

func (s Session) Actor(uuid string) (Actor, bool) {
	for _, a := range s.Actors {
		if a.UUID == uuid {
			return a, true
		}
	}
	return Actor{}, false
}

// Clone deep-copies the mutable parts of the session. Settings are shared.
func (s Session) Clone() Session {
	c := s
	c.CoinFlip = CoinFlip{
		Heads:  copyPtr(s.CoinFlip.Heads),
		Tails:  copyPtr(s.CoinFlip.Tails),
		Result: copyPtr(s.CoinFlip.Result),
		Winner: copyPtr(s.CoinFlip.Winner),
		Loser:  copyPtr(s.CoinFlip.Loser),
	}
	c.Sequence = make([]SequenceItem, len(s.Sequence))
	for i, item := range s.Sequence {
		item.Mode = copyPtr(item.Mode)
		item.MapActorSide = copyPtr(item.MapActorSide)
		item.MapPicked = copyPtr(item.MapPicked)
		item.SidePicked = copyPtr(item.SidePicked)
		c.Sequence[i] = item
	}
	c.Actors = slices.Clone(s.Actors)
	return c
}

func copyPtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
