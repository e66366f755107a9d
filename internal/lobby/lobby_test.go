package lobby

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DoyleJ11/veto-bracket-backend/internal/veto"
)

// helper: receive one snapshot with a timeout so tests never hang
func recvSnapshot(t *testing.T, ch <-chan Snapshot, within time.Duration) Snapshot {
	t.Helper()
	select {
	case snap, ok := <-ch:
		if !ok {
			t.Fatalf("client outbox closed unexpectedly")
		}
		return snap
	case <-time.After(within):
		t.Fatalf("timed out waiting for snapshot")
		return Snapshot{} // unreachable
	}
}

func recvNoSnapshot(t *testing.T, ch <-chan Snapshot, within time.Duration) {
	t.Helper()
	select {
	case s, ok := <-ch:
		if !ok {
			// channel closed → that's fine; no further snapshots possible
			return
		}
		t.Fatalf("expected no snapshot within %v, but got version %d", within, s.Version)
	case <-time.After(within):
		// good: no snapshot
	}
}

// recvEvent drains snapshots until one carries the wanted event.
func recvEvent(t *testing.T, ch <-chan Snapshot, want veto.EventType, within time.Duration) Snapshot {
	t.Helper()
	deadline := time.After(within)
	for {
		select {
		case snap, ok := <-ch:
			if !ok {
				t.Fatalf("client outbox closed while waiting for %s", want)
			}
			if veto.ContainsEvent(snap.Events, want) {
				return snap
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %s", want)
			return Snapshot{} // unreachable
		}
	}
}

func recvView(t *testing.T, ch <-chan View, within time.Duration) View {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(within):
		t.Fatalf("timed out waiting for view")
		return View{} // unreachable
	}
}

func send(t *testing.T, l *Lobby, clientID string, cmd veto.Command) error {
	t.Helper()
	reply := make(chan error, 1)
	l.Inbox() <- FromClient{ClientID: clientID, Cmd: cmd, Reply: reply}
	select {
	case err := <-reply:
		return err
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for %s reply", cmd.Type)
		return nil
	}
}

func newSession(t *testing.T, timer *int) veto.Session {
	t.Helper()
	s, err := veto.NewSession("series-1", veto.Settings{
		Type:      veto.TypeStandard,
		AutoStart: true,
		Sequence: []veto.SequenceSettingsItem{
			{Action: veto.ActionBan, MapActor: veto.FixedTeam(veto.TeamA)},
			{Action: veto.ActionBan, MapActor: veto.FixedTeam(veto.TeamB)},
			{Action: veto.ActionDecider},
		},
		MapPool: []veto.Map{{ID: "dust"}, {ID: "mirage"}, {ID: "inferno"}},
		Timer:   timer,
	}, veto.Passwords{TeamA: "alpha", TeamB: "bravo", Host: "hosty"})
	require.NoError(t, err)
	return s
}

// startVeto joins and readies both teams and flips the coin.
func startVeto(t *testing.T, l *Lobby) {
	t.Helper()
	steps := []veto.Command{
		{Type: veto.CmdJoin, Actor: veto.ActorTeamA, Password: "alpha", Name: "A", UUID: "uuid-a", SocketID: "c1"},
		{Type: veto.CmdJoin, Actor: veto.ActorTeamB, Password: "bravo", Name: "B", UUID: "uuid-b", SocketID: "c2"},
		{Type: veto.CmdSetReady, UUID: "uuid-a", Ready: true},
		{Type: veto.CmdSetReady, UUID: "uuid-b", Ready: true},
		{Type: veto.CmdClaimCoin, Actor: veto.ActorTeamA, CoinSide: veto.CoinHeads},
		{Type: veto.CmdClaimCoin, Actor: veto.ActorTeamB, CoinSide: veto.CoinTails},
	}
	for _, cmd := range steps {
		require.NoError(t, send(t, l, "", cmd), "step %s", cmd.Type)
	}
}

func TestLobby_Join_BroadcastsSnapshotAndVersionIncrements(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	l := NewLobby(ctx, newSession(t, nil), Options{})

	clientOut := make(chan Snapshot, 2)
	l.Inbox() <- Join{ClientID: "c1", Outbox: clientOut}

	first := recvSnapshot(t, clientOut, 100*time.Millisecond)
	assert.Equal(t, 0, first.Version)
	assert.Empty(t, first.Session.Actors)

	err := send(t, l, "c1", veto.Command{Type: veto.CmdJoin, Actor: veto.ActorTeamA, Password: "alpha", Name: "A", UUID: "uuid-a", SocketID: "c1"})
	require.NoError(t, err)

	next := recvSnapshot(t, clientOut, 100*time.Millisecond)
	assert.Equal(t, 1, next.Version)
	require.Len(t, next.Session.Actors, 1)
	assert.Equal(t, veto.ActorTeamA, next.Session.Actors[0].Type)
	assert.True(t, veto.ContainsEvent(next.Events, veto.EvtActorJoined))

	l.Inbox() <- Shutdown{}
}

func TestLobby_RejectedCommand_RepliesWithoutBroadcast(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	l := NewLobby(ctx, newSession(t, nil), Options{})
	out := make(chan Snapshot, 2)
	l.Inbox() <- Join{ClientID: "c1", Outbox: out}
	_ = recvSnapshot(t, out, 100*time.Millisecond)

	err := send(t, l, "c1", veto.Command{Type: veto.CmdJoin, Actor: veto.ActorTeamA, Password: "nope", UUID: "uuid-a"})
	assert.ErrorIs(t, err, veto.ErrInvalidPassword)
	recvNoSnapshot(t, out, 50*time.Millisecond)
}

func TestLobby_DropSlowClient(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	l := NewLobby(ctx, newSession(t, nil), Options{})

	clientOut := make(chan Snapshot, 1)
	l.Inbox() <- Join{ClientID: "c1", Outbox: clientOut}

	l.Inbox() <- FromClient{Cmd: veto.Command{Type: veto.CmdJoin, Actor: veto.ActorTeamA, Password: "alpha", UUID: "uuid-a"}}

	reply := make(chan View, 1)
	l.Inbox() <- GetState{Reply: reply}
	view := recvView(t, reply, 100*time.Millisecond)

	assert.Equal(t, 0, view.NumClients, "slow client should be dropped")
	assert.Equal(t, 1, view.Version)
}

func TestLobby_Leave_UnbindsActor(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	l := NewLobby(ctx, newSession(t, nil), Options{})
	out := make(chan Snapshot, 4)
	l.Inbox() <- Join{ClientID: "c1", Outbox: out}

	require.NoError(t, send(t, l, "c1", veto.Command{Type: veto.CmdJoin, Actor: veto.ActorTeamA, Password: "alpha", UUID: "uuid-a", SocketID: "c1"}))
	l.Inbox() <- Leave{ClientID: "c1"}

	reply := make(chan View, 1)
	l.Inbox() <- GetState{Reply: reply}
	view := recvView(t, reply, 100*time.Millisecond)

	assert.Equal(t, 0, view.NumClients)
	require.Len(t, view.Session.Actors, 1)
	assert.Empty(t, view.Session.Actors[0].SocketID)
	assert.Equal(t, 2, view.Version)
}

func TestLobby_TimerFires_TimeoutAdvanceEmitsSnapshot(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	l := NewLobby(ctx, newSession(t, ptr(1)), Options{TimerUnit: 20 * time.Millisecond})
	out := make(chan Snapshot, 32)
	l.Inbox() <- Join{ClientID: "watcher", Outbox: out}

	startVeto(t, l)
	started := recvEvent(t, out, veto.EvtSequenceStarted, 200*time.Millisecond)
	require.NotNil(t, started.Deadline)

	timedOut := recvEvent(t, out, veto.EvtTurnTimedOut, 500*time.Millisecond)
	assert.Equal(t, "dust", *timedOut.Session.Sequence[0].MapPicked)

	// second ban times out too, then the decider finishes the veto
	done := recvEvent(t, out, veto.EvtVetoCompleted, 500*time.Millisecond)
	assert.True(t, done.Session.Complete())
	assert.Equal(t, "inferno", *done.Session.Sequence[2].MapPicked)
	assert.Nil(t, done.Deadline)

	l.Inbox() <- Shutdown{}
}

func TestLobby_TimerGen_DropsStaleFires(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	l := NewLobby(ctx, newSession(t, ptr(1)), Options{TimerUnit: 150 * time.Millisecond})
	out := make(chan Snapshot, 32)
	l.Inbox() <- Join{ClientID: "watcher", Outbox: out}

	startVeto(t, l)
	_ = recvEvent(t, out, veto.EvtSequenceStarted, 200*time.Millisecond)

	// BEFORE the first deadline, teamA bans by hand
	require.NoError(t, send(t, l, "c1", veto.Command{Type: veto.CmdMapPick, Actor: veto.ActorTeamA, SeriesID: "series-1", Index: 0, MapID: "inferno"}))
	postBan := recvEvent(t, out, veto.EvtMapBanned, 100*time.Millisecond)

	recvNoSnapshot(t, out, 75*time.Millisecond)

	next := recvEvent(t, out, veto.EvtTurnTimedOut, 500*time.Millisecond)
	assert.Equal(t, postBan.Version+1, next.Version)
	for _, evt := range next.Events {
		if evt.Type == veto.EvtTurnTimedOut {
			assert.Equal(t, 1, evt.Index, "only the second ban may time out")
		}
	}

	l.Inbox() <- Shutdown{}
}

func TestLobby_Shutdown_StopsTimer_NoFire(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	l := NewLobby(ctx, newSession(t, ptr(1)), Options{TimerUnit: 100 * time.Millisecond})
	out := make(chan Snapshot, 32)
	l.Inbox() <- Join{ClientID: "watcher", Outbox: out}

	startVeto(t, l)
	_ = recvEvent(t, out, veto.EvtSequenceStarted, 200*time.Millisecond)

	l.Inbox() <- Shutdown{}
	select {
	case <-l.Done():
	case <-time.After(time.Second):
		t.Fatalf("lobby did not stop")
	}

	for {
		select {
		case _, ok := <-out:
			if !ok {
				return
			}
		case <-time.After(300 * time.Millisecond):
			t.Fatalf("outbox not closed after shutdown")
		}
	}
}

func ptr[T any](v T) *T { return &v }
