package veto

type Team string

const (
	TeamA Team = "teamA"
	TeamB Team = "teamB"
)

func (t Team) Valid() bool { return t == TeamA || t == TeamB }

func (t Team) Other() Team {
	if t == TeamA {
		return TeamB
	}
	return TeamA
}

type ActorType string

const (
	ActorTeamA ActorType = "teamA"
	ActorTeamB ActorType = "teamB"
	ActorHost  ActorType = "host"
)

func (a ActorType) Valid() bool {
	return a == ActorTeamA || a == ActorTeamB || a == ActorHost
}

// Team returns the team an actor type plays for. Hosts play for nobody.
func (a ActorType) Team() (Team, bool) {
	switch a {
	case ActorTeamA:
		return TeamA, true
	case ActorTeamB:
		return TeamB, true
	default:
		return "", false
	}
}

type Side string

const (
	SideRed  Side = "red"
	SideBlue Side = "blue"
)

func (s Side) Valid() bool { return s == SideRed || s == SideBlue }

func (s Side) Other() Side {
	if s == SideRed {
		return SideBlue
	}
	return SideRed
}

type CoinSide string

const (
	CoinHeads CoinSide = "heads"
	CoinTails CoinSide = "tails"
)

func (c CoinSide) Valid() bool { return c == CoinHeads || c == CoinTails }

type Action string

const (
	ActionBan     Action = "ban"
	ActionPick    Action = "pick"
	ActionDecider Action = "decider"
)

func (a Action) Valid() bool {
	return a == ActionBan || a == ActionPick || a == ActionDecider
}

type ItemStatus string

const (
	StatusPending          ItemStatus = "pending"
	StatusAwaitingMapPick  ItemStatus = "awaitingMapPick"
	StatusAwaitingSidePick ItemStatus = "awaitingSidePick"
	StatusComplete         ItemStatus = "complete"
)

type SettingsType string

const (
	TypeStandard     SettingsType = "standard"
	TypeCoinFlipOnly SettingsType = "coinFlipOnly"
)
