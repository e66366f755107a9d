package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/DoyleJ11/veto-bracket-backend/internal/hub"
	"github.com/DoyleJ11/veto-bracket-backend/internal/lobby"
	"github.com/DoyleJ11/veto-bracket-backend/internal/logging"
	"github.com/DoyleJ11/veto-bracket-backend/internal/types"
	"github.com/DoyleJ11/veto-bracket-backend/internal/veto"
)

const (
	readTimeout  = 60 * time.Second
	writeTimeout = 3 * time.Second
	replyTimeout = 5 * time.Second
)

// binding is the actor a connection joined as. Every later command is sent
// on its behalf.
type binding struct {
	actor veto.ActorType
	uuid  string
}

func Handler(h *hub.Hub, logger *zap.Logger) http.HandlerFunc {
	logger = logging.OrNop(logger)

	return func(w http.ResponseWriter, r *http.Request) {
		seriesID := r.URL.Query().Get("seriesId")
		if seriesID == "" {
			http.Error(w, "missing seriesId", http.StatusBadRequest)
			return
		}

		lb := h.Lookup(r.Context(), seriesID)
		if lb == nil {
			http.Error(w, "veto not found", http.StatusNotFound)
			return
		}

		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")

		clientID := uuid.NewString()
		log := logger.With(zap.String("series_id", seriesID), zap.String("client_id", clientID))

		out := make(chan lobby.Snapshot, 8)
		if !lb.Send(lobby.Join{ClientID: clientID, Outbox: out}) {
			return
		}
		defer lb.Send(lobby.Leave{ClientID: clientID})

		writeCtx, writeCancel := context.WithCancel(r.Context())
		defer writeCancel()
		msgs := make(chan types.ServerMessage, 8)
		go writeLoop(writeCtx, conn, out, msgs, log)

		var bound binding
		for {
			ctx, cancel := context.WithTimeout(r.Context(), readTimeout)
			_, data, err := conn.Read(ctx)
			cancel()
			if err != nil {
				switch websocket.CloseStatus(err) {
				case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				default:
					log.Debug("read failed", zap.Error(err))
				}
				return
			}

			var cm types.ClientMessage
			if err := json.Unmarshal(data, &cm); err != nil {
				res := types.Fail(types.KindBadRequest, "bad json")
				queue(writeCtx, msgs, types.ServerMessage{Type: "result", Result: &res})
				continue
			}

			res := handleMessage(r.Context(), lb, clientID, &bound, cm)
			queue(writeCtx, msgs, types.ServerMessage{Type: "result", RequestID: cm.RequestID, Result: &res})
		}
	}
}

func handleMessage(ctx context.Context, lb *lobby.Lobby, clientID string, bound *binding, cm types.ClientMessage) types.Result {
	cmd, err := toVetoCommand(cm, *bound, clientID)
	if err != nil {
		return types.FromError(err)
	}

	reply := make(chan error, 1)
	if !lb.Send(lobby.FromClient{ClientID: clientID, Cmd: cmd, Reply: reply}) {
		return types.Fail(types.KindNotFound, "veto closed")
	}

	ctx, cancel := context.WithTimeout(ctx, replyTimeout)
	defer cancel()
	select {
	case err := <-reply:
		if err != nil {
			return types.FromError(err)
		}
	case <-ctx.Done():
		return types.Fail(types.KindInternal, "veto did not answer")
	}

	if cmd.Type == veto.CmdJoin {
		*bound = binding{actor: cmd.Actor, uuid: cmd.UUID}
		return types.Ok(map[string]string{"uuid": cmd.UUID, "actorType": string(cmd.Actor)})
	}
	return types.Ok(nil)
}

func toVetoCommand(m types.ClientMessage, b binding, clientID string) (veto.Command, error) {
	if m.Type == "join" {
		actor := veto.ActorType(m.ActorType)
		if !actor.Valid() {
			return veto.Command{}, fmt.Errorf("%w: actor type %q", veto.ErrInvalidTeam, m.ActorType)
		}
		id := m.UUID
		if id == "" {
			id = uuid.NewString()
		} else if _, err := uuid.Parse(id); err != nil {
			return veto.Command{}, fmt.Errorf("%w: uuid %q", types.ErrBadRequest, id)
		}
		return veto.Command{
			Type:     veto.CmdJoin,
			Actor:    actor,
			Password: m.Password,
			Name:     m.Name,
			UUID:     id,
			SocketID: clientID,
		}, nil
	}

	if b.actor == "" {
		return veto.Command{}, veto.ErrNotJoined
	}
	if m.ActorType != "" && veto.ActorType(m.ActorType) != b.actor {
		return veto.Command{}, fmt.Errorf("%w: connection joined as %s", veto.ErrWrongActor, b.actor)
	}

	cmd := veto.Command{Actor: b.actor, UUID: b.uuid, SocketID: clientID, SeriesID: m.SeriesID}
	switch m.Type {
	case "ready":
		cmd.Type = veto.CmdSetReady
		cmd.Ready = m.Ready == nil || *m.Ready
	case "claimCoin":
		cmd.Type = veto.CmdClaimCoin
		cmd.CoinSide = veto.CoinSide(m.CoinSide)
	case "mapPick":
		cmd.Type = veto.CmdMapPick
		cmd.Index = m.SequenceIndex
		cmd.MapID = m.Map
	case "sidePick":
		cmd.Type = veto.CmdSidePick
		cmd.Index = m.SequenceIndex
		cmd.Side = veto.Side(m.Side)
	case "start":
		cmd.Type = veto.CmdStart
	default:
		return veto.Command{}, fmt.Errorf("%w: %q", veto.ErrUnsupportedCommand, m.Type)
	}
	return cmd, nil
}

func writeLoop(ctx context.Context, conn *websocket.Conn, out <-chan lobby.Snapshot, msgs <-chan types.ServerMessage, log *zap.Logger) {
	for {
		var msg types.ServerMessage
		select {
		case <-ctx.Done():
			return
		case snap, ok := <-out:
			if !ok {
				// lobby closed or dropped us
				conn.Close(websocket.StatusGoingAway, "veto closed")
				return
			}
			msg = types.ServerMessage{
				Type:     "state",
				Version:  snap.Version,
				State:    &snap.Session,
				Events:   snap.Events,
				Deadline: snap.Deadline,
			}
		case msg = <-msgs:
		}

		payload, err := json.Marshal(msg)
		if err != nil {
			log.Error("encode message", zap.Error(err))
			continue
		}
		wctx, cancel := context.WithTimeout(ctx, writeTimeout)
		err = conn.Write(wctx, websocket.MessageText, payload)
		cancel()
		if err != nil {
			log.Debug("write failed", zap.Error(err))
			return
		}
	}
}

func queue(ctx context.Context, msgs chan<- types.ServerMessage, msg types.ServerMessage) {
	select {
	case msgs <- msg:
	case <-ctx.Done():
	}
}
