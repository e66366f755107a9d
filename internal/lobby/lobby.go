package lobby

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/DoyleJ11/veto-bracket-backend/internal/logging"
	"github.com/DoyleJ11/veto-bracket-backend/internal/metrics"
	"github.com/DoyleJ11/veto-bracket-backend/internal/veto"
)

type Msg interface{ isLobbyMsg() }

// FromClient carries a command from one connection. Reply, when set, gets
// exactly one value: nil on success or the rejection.
type FromClient struct {
	ClientID string
	Cmd      veto.Command
	Reply    chan error
}

func (FromClient) isLobbyMsg() {}

type Join struct {
	ClientID string
	Outbox   chan Snapshot // where this client wants to receive snapshots
}

func (Join) isLobbyMsg() {}

// Leave unregisters the client and unbinds any actor joined through it.
type Leave struct{ ClientID string }

func (Leave) isLobbyMsg() {}

type Shutdown struct{}

func (Shutdown) isLobbyMsg() {}

type GetState struct {
	Reply chan View
}

func (GetState) isLobbyMsg() {}

// PrimeTimer re-arms the deadline for the current turn.
type PrimeTimer struct{}

func (PrimeTimer) isLobbyMsg() {}

type timerFired struct{ gen int }

func (timerFired) isLobbyMsg() {}

type Snapshot struct {
	Version  int          `json:"version"`
	Session  veto.Session `json:"session"`
	Events   []veto.Event `json:"events,omitempty"`
	Deadline *time.Time   `json:"deadline,omitempty"`
}

type View struct {
	Version    int
	NumClients int
	Session    veto.Session
	Deadline   *time.Time
}

type Options struct {
	Machine veto.Machine
	// TimerUnit scales Settings.Timer. Defaults to a second.
	TimerUnit time.Duration
	Logger    *zap.Logger
	Metrics   *metrics.Recorder
}

type turnKey struct {
	index int
	stage veto.Stage
}

type Lobby struct {
	inbox   chan Msg
	session veto.Session
	version int
	clients map[string]chan Snapshot

	machine   veto.Machine
	timerUnit time.Duration
	timer     *time.Timer
	timerGen  int
	armedFor  *turnKey
	deadline  *time.Time

	logger  *zap.Logger
	metrics *metrics.Recorder
	ctx     context.Context
	cancel  context.CancelFunc
	done    chan struct{}
}

func NewLobby(parent context.Context, initial veto.Session, opts Options) *Lobby {
	ctx, cancel := context.WithCancel(parent)

	if opts.TimerUnit <= 0 {
		opts.TimerUnit = time.Second
	}
	if opts.Machine.Checker == nil {
		opts.Machine.Checker = veto.PlainChecker{}
	}

	l := &Lobby{
		inbox:     make(chan Msg, 64), // Small buffer
		session:   initial,
		clients:   make(map[string]chan Snapshot),
		machine:   opts.Machine,
		timerUnit: opts.TimerUnit,
		logger:    logging.OrNop(opts.Logger).With(zap.String("series_id", initial.SeriesID)),
		metrics:   opts.Metrics,
		ctx:       ctx,
		cancel:    cancel,
		done:      make(chan struct{}),
	}
	l.metrics.LobbyOpened()

	go l.loop()
	return l
}

func (l *Lobby) loop() {
	defer close(l.done)
	l.syncTimer(false)

	for {
		select {
		case <-l.ctx.Done():
			l.shutdown()
			return

		case m := <-l.inbox:
			switch msg := m.(type) {
			case Join:
				// Register client + send current snapshot immediately
				l.clients[msg.ClientID] = msg.Outbox
				msg.Outbox <- l.snapshot(nil)

			case Leave:
				delete(l.clients, msg.ClientID)
				l.apply(veto.Command{Type: veto.CmdDisconnect, SocketID: msg.ClientID})

			case FromClient:
				err := l.apply(msg.Cmd)
				if msg.Reply != nil {
					select {
					case msg.Reply <- err:
					default:
					}
				}

			case PrimeTimer:
				l.syncTimer(true)

			case timerFired:
				if msg.gen != l.timerGen {
					break // stale
				}
				l.logger.Info("turn timed out", zap.Int("index", l.session.CurrentSequence))
				l.apply(veto.Command{Type: veto.CmdTimeoutAdvance})

			case GetState:
				msg.Reply <- View{
					Version:    l.version,
					NumClients: len(l.clients),
					Session:    l.session,
					Deadline:   l.deadline,
				}

			case Shutdown:
				l.shutdown()
				return
			}
		}
	}
}

// apply runs cmd through the state machine and broadcasts the result when
// anything happened.
func (l *Lobby) apply(cmd veto.Command) error {
	events, next, err := l.machine.Apply(l.session, cmd)
	kind := veto.KindOf(err)
	if cmd.Type != veto.CmdDisconnect {
		l.metrics.RecordCommand(string(cmd.Type), kind)
	}
	if err != nil {
		l.logger.Debug("command rejected",
			zap.String("command", string(cmd.Type)),
			zap.String("kind", kind),
			zap.Error(err))
		return err
	}
	if len(events) == 0 {
		return nil
	}

	l.session = next
	l.version++
	l.syncTimer(false)
	if veto.ContainsEvent(events, veto.EvtVetoCompleted) {
		l.logger.Info("veto completed", zap.Int("version", l.version))
	}
	l.broadcast(l.snapshot(events))
	return nil
}

// syncTimer arms a deadline for the current turn. Unless forced, a turn that
// already has a timer keeps it.
func (l *Lobby) syncTimer(force bool) {
	turn, ok := l.session.Turn()
	if !ok || turn.Timer == nil {
		l.stopTimer()
		return
	}
	key := turnKey{index: turn.Index, stage: turn.Stage}
	if !force && l.armedFor != nil && *l.armedFor == key {
		return
	}

	l.stopTimer()
	d := time.Duration(*turn.Timer) * l.timerUnit
	gen := l.timerGen
	deadline := time.Now().Add(d)
	l.armedFor = &key
	l.deadline = &deadline
	l.timer = time.AfterFunc(d, func() {
		select {
		case l.inbox <- timerFired{gen: gen}:
		case <-l.ctx.Done():
		}
	})
}

// stopTimer cancels the pending deadline. Bumping the generation discards a
// fire that is already queued.
func (l *Lobby) stopTimer() {
	if l.timer != nil {
		l.timer.Stop()
		l.timer = nil
	}
	l.timerGen++
	l.armedFor = nil
	l.deadline = nil
}

func (l *Lobby) snapshot(events []veto.Event) Snapshot {
	return Snapshot{Version: l.version, Session: l.session, Events: events, Deadline: l.deadline}
}

func (l *Lobby) shutdown() {
	l.stopTimer()
	for id, ch := range l.clients {
		close(ch) // Tell client no more snapshots
		delete(l.clients, id)
	}
	l.cancel()
	l.metrics.LobbyClosed()
}

func (l *Lobby) broadcast(snap Snapshot) {
	for id, ch := range l.clients {
		select {
		case ch <- snap:
			//ok
		default:
			// Client is slow/full - drop them.
			l.logger.Warn("dropping slow client", zap.String("client_id", id))
			close(ch)
			delete(l.clients, id)
		}
	}
}

// Expose the inbox so tests or WS layer can send messages.
func (l *Lobby) Inbox() chan<- Msg { return l.inbox }

// Done is closed once the lobby loop has exited.
func (l *Lobby) Done() <-chan struct{} { return l.done }

// Send delivers msg unless the lobby has already stopped.
func (l *Lobby) Send(msg Msg) bool {
	select {
	case l.inbox <- msg:
		return true
	case <-l.done:
		return false
	}
}
