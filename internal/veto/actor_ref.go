package veto

import (
	"encoding/json"
	"fmt"
)

type refKind uint8

const (
	refNone refKind = iota
	refFixed
	refWinner
	refLoser
)

// ActorRef names who acts on a sequence step: a fixed team, or whichever
// team won or lost the coin flip. The zero value means nobody in particular,
// so either team may act.
type ActorRef struct {
	kind refKind
	team Team
}

var (
	CoinWinner = ActorRef{kind: refWinner}
	CoinLoser  = ActorRef{kind: refLoser}
)

func FixedTeam(t Team) ActorRef { return ActorRef{kind: refFixed, team: t} }

func (r ActorRef) IsZero() bool { return r.kind == refNone }

func (r ActorRef) String() string {
	switch r.kind {
	case refFixed:
		return string(r.team)
	case refWinner:
		return "winner"
	case refLoser:
		return "loser"
	default:
		return ""
	}
}

func (r ActorRef) MarshalJSON() ([]byte, error) {
	if r.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(r.String())
}

func (r *ActorRef) UnmarshalJSON(data []byte) error {
	var raw *string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("actor ref: %w", err)
	}
	if raw == nil || *raw == "" {
		*r = ActorRef{}
		return nil
	}

	switch *raw {
	case "winner":
		*r = CoinWinner
	case "loser":
		*r = CoinLoser
	case string(TeamA), string(TeamB):
		*r = FixedTeam(Team(*raw))
	default:
		return fmt.Errorf("actor ref: unknown actor %q", *raw)
	}
	return nil
}
