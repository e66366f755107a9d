package veto

type CommandType string

const (
	CmdJoin           CommandType = "Join"
	CmdSetReady       CommandType = "SetReady"
	CmdClaimCoin      CommandType = "ClaimCoin"
	CmdMapPick        CommandType = "MapPick"
	CmdSidePick       CommandType = "SidePick"
	CmdStart          CommandType = "Start"
	CmdDisconnect     CommandType = "Disconnect"
	CmdTimeoutAdvance CommandType = "TimeoutAdvance"
)

/*
	CmdJoin           -> EvtActorJoined
	CmdSetReady       -> EvtActorReady -> (autoStart) EvtSequenceStarted
	CmdClaimCoin      -> EvtCoinClaimed -> EvtCoinFlipped once both sides are taken
	CmdMapPick        -> EvtMapBanned | EvtMapPicked -> EvtTurnAdvanced unless a side pick follows
	CmdSidePick       -> EvtSidePicked -> EvtTurnAdvanced
	CmdTimeoutAdvance -> EvtTurnTimedOut -> whatever the forced pick produces
	Deciders emit EvtDeciderAssigned as soon as they are reached; the last
	step is followed by EvtVetoCompleted.
*/

// Command is one request against a session. Actor is the identity bound to
// the connection that sent it.
type Command struct {
	Type     CommandType
	Actor    ActorType
	SeriesID string
	Index    int
	MapID    string
	Side     Side
	CoinSide CoinSide
	Password string
	Name     string
	UUID     string
	SocketID string
	Ready    bool
}

type EventType string

const (
	EvtActorJoined       EventType = "ActorJoined"
	EvtActorReady        EventType = "ActorReady"
	EvtActorDisconnected EventType = "ActorDisconnected"
	EvtCoinClaimed       EventType = "CoinClaimed"
	EvtCoinFlipped       EventType = "CoinFlipped"
	EvtSequenceStarted   EventType = "SequenceStarted"
	EvtMapBanned         EventType = "MapBanned"
	EvtMapPicked         EventType = "MapPicked"
	EvtDeciderAssigned   EventType = "DeciderAssigned"
	EvtSidePicked        EventType = "SidePicked"
	EvtTurnAdvanced      EventType = "TurnAdvanced"
	EvtTurnTimedOut      EventType = "TurnTimedOut"
	EvtVetoCompleted     EventType = "VetoCompleted"
)

type Event struct {
	Type     EventType `json:"type"`
	Team     Team      `json:"team,omitempty"`
	Index    int       `json:"index"`
	MapID    string    `json:"mapId,omitempty"`
	Side     Side      `json:"side,omitempty"`
	CoinSide CoinSide  `json:"coinSide,omitempty"`
	Actor    *Actor    `json:"actor,omitempty"`
}

// Machine applies commands with a fixed password scheme.
type Machine struct {
	Checker PasswordChecker
}

// Apply runs cmd against a copy of s. On error the original session is
// returned untouched.
func (m Machine) Apply(s Session, cmd Command) ([]Event, Session, error) {
	next := s.Clone()
	team := Team(cmd.Actor)

	var (
		events []Event
		err    error
	)
	switch cmd.Type {
	case CmdJoin:
		events, err = next.Join(m.Checker, cmd.Password, cmd.Actor, cmd.Name, cmd.UUID, cmd.SocketID)
	case CmdSetReady:
		events, err = next.SetReady(cmd.UUID, cmd.Ready)
	case CmdClaimCoin:
		events, err = next.ClaimSide(team, cmd.CoinSide)
	case CmdMapPick:
		events, err = next.SubmitMapPick(team, cmd.SeriesID, cmd.Index, cmd.MapID)
	case CmdSidePick:
		events, err = next.SubmitSidePick(team, cmd.SeriesID, cmd.Index, cmd.Side)
	case CmdStart:
		if cmd.Actor != ActorHost {
			return nil, s, ErrWrongActor
		}
		events, err = next.Start()
	case CmdDisconnect:
		events = next.Disconnect(cmd.SocketID)
	case CmdTimeoutAdvance:
		events, err = next.ForceTurn()
	default:
		return nil, s, ErrUnsupportedCommand
	}

	if err != nil {
		return nil, s, err
	}
	return events, next, nil
}

// Apply uses plaintext password checks.
func Apply(s Session, cmd Command) ([]Event, Session, error) {
	return Machine{Checker: PlainChecker{}}.Apply(s, cmd)
}

func ContainsEvent(events []Event, eventType EventType) bool {
	for _, event := range events {
		if event.Type == eventType {
			return true
		}
	}
	return false
}
