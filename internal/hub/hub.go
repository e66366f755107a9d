package hub

import (
	"context"

	"github.com/DoyleJ11/veto-bracket-backend/internal/lobby"
	"github.com/DoyleJ11/veto-bracket-backend/internal/veto"
)

type HubMsg interface{ isHubMsg() }

// CreateLobby replies nil when the series already has a lobby.
type CreateLobby struct {
	SeriesID string
	Session  veto.Session
	Reply    chan *lobby.Lobby
}

type GetLobby struct {
	SeriesID string
	Reply    chan *lobby.Lobby
}

type EnsureLobby struct {
	SeriesID string
	Session  veto.Session // only used if creation happens
	Reply    chan *lobby.Lobby
}

// RemoveLobby shuts the series' lobby down. Reply, when set, reports whether
// there was one.
type RemoveLobby struct {
	SeriesID string
	Reply    chan bool
}

type ShutdownHub struct{}

type Hub struct {
	inbox   chan HubMsg
	lobbies map[string]*lobby.Lobby
	opts    lobby.Options
	ctx     context.Context
	cancel  context.CancelFunc
}

func (CreateLobby) isHubMsg() {}
func (GetLobby) isHubMsg()    {}
func (EnsureLobby) isHubMsg() {}
func (RemoveLobby) isHubMsg() {}
func (ShutdownHub) isHubMsg() {}

// NewHub starts the hub loop. Every lobby it creates gets opts.
func NewHub(parent context.Context, opts lobby.Options) *Hub {
	ctx, cancel := context.WithCancel(parent)
	h := &Hub{
		inbox:   make(chan HubMsg, 64),
		lobbies: make(map[string]*lobby.Lobby),
		opts:    opts,
		ctx:     ctx,
		cancel:  cancel,
	}
	go h.loop()
	return h
}

func (h *Hub) Inbox() chan<- HubMsg { return h.inbox }

// Lookup asks the hub for a series' lobby. It returns nil if there is none
// or ctx ends first.
func (h *Hub) Lookup(ctx context.Context, seriesID string) *lobby.Lobby {
	reply := make(chan *lobby.Lobby, 1)
	select {
	case h.inbox <- GetLobby{SeriesID: seriesID, Reply: reply}:
	case <-ctx.Done():
		return nil
	}
	select {
	case lb := <-reply:
		return lb
	case <-ctx.Done():
		return nil
	}
}

func (h *Hub) loop() {
	for {
		select {
		case <-h.ctx.Done():
			h.shutdown()
			return

		case m := <-h.inbox:
			switch msg := m.(type) {
			case CreateLobby:
				if h.lobbies[msg.SeriesID] != nil {
					msg.Reply <- nil
					break
				}
				msg.Reply <- h.create(msg.SeriesID, msg.Session)

			case GetLobby:
				msg.Reply <- h.lobbies[msg.SeriesID] // May be nil

			case EnsureLobby:
				if lb := h.lobbies[msg.SeriesID]; lb != nil {
					msg.Reply <- lb
					break
				}
				msg.Reply <- h.create(msg.SeriesID, msg.Session)

			case RemoveLobby:
				lb, ok := h.lobbies[msg.SeriesID]
				if ok {
					lb.Send(lobby.Shutdown{})
					delete(h.lobbies, msg.SeriesID)
				}
				if msg.Reply != nil {
					msg.Reply <- ok
				}

			case ShutdownHub:
				h.shutdown()
				h.cancel()
				return
			}
		}
	}
}

func (h *Hub) create(seriesID string, session veto.Session) *lobby.Lobby {
	lb := lobby.NewLobby(h.ctx, session, h.opts)
	h.lobbies[seriesID] = lb
	return lb
}

func (h *Hub) shutdown() {
	for _, lb := range h.lobbies {
		lb.Send(lobby.Shutdown{})
	}
	clear(h.lobbies)
}
