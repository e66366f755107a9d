package veto

import "fmt"

// Join authenticates an actor and records it with ready=false. Team slots
// are keyed by type and held by one uuid; hosts are keyed by uuid.
func (s *Session) Join(checker PasswordChecker, password string, typ ActorType, name, uuid, socketID string) ([]Event, error) {
	if !typ.Valid() {
		return nil, fmt.Errorf("%w: actor type %q", ErrInvalidTeam, typ)
	}
	if checker == nil {
		checker = PlainChecker{}
	}
	if !checker.Check(s.Passwords.secret(typ), password) {
		return nil, fmt.Errorf("%w for %s", ErrInvalidPassword, typ)
	}

	actor := Actor{Type: typ, Name: name, SocketID: socketID, UUID: uuid}
	idx := -1
	for i, a := range s.Actors {
		if typ == ActorHost {
			if a.Type == ActorHost && a.UUID == uuid {
				idx = i
			}
			continue
		}
		if a.Type == typ {
			if a.UUID != uuid {
				return nil, fmt.Errorf("%w: %s", ErrAlreadyJoined, typ)
			}
			idx = i
		}
	}

	if idx >= 0 {
		s.Actors[idx] = actor
	} else {
		s.Actors = append(s.Actors, actor)
	}
	return []Event{{Type: EvtActorJoined, Actor: &actor}}, nil
}

func (s *Session) SetReady(uuid string, ready bool) ([]Event, error) {
	for i := range s.Actors {
		if s.Actors[i].UUID != uuid {
			continue
		}
		s.Actors[i].Ready = ready
		actor := s.Actors[i]
		events := []Event{{Type: EvtActorReady, Actor: &actor}}
		return append(events, s.tryAutoStart()...), nil
	}
	return nil, fmt.Errorf("%w: %s", ErrNotJoined, uuid)
}

// Disconnect unbinds every actor attached to socketID. The actors keep their
// slots so they can rejoin with the same uuid.
func (s *Session) Disconnect(socketID string) []Event {
	if socketID == "" {
		return nil
	}
	var events []Event
	for i := range s.Actors {
		if s.Actors[i].SocketID != socketID {
			continue
		}
		s.Actors[i].SocketID = ""
		actor := s.Actors[i]
		events = append(events, Event{Type: EvtActorDisconnected, Actor: &actor})
	}
	return events
}

func (s Session) teamReady(typ ActorType) bool {
	for _, a := range s.Actors {
		if a.Type == typ && a.Ready {
			return true
		}
	}
	return false
}
