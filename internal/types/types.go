package types

import (
	"errors"
	"time"

	"github.com/DoyleJ11/veto-bracket-backend/internal/bracket"
	"github.com/DoyleJ11/veto-bracket-backend/internal/veto"
)

type ClientMessage struct {
	Type      string `json:"type"` // "join" | "ready" | "claimCoin" | "mapPick" | "sidePick" | "start"
	RequestID string `json:"requestId,omitempty"`

	SeriesID      string `json:"seriesId,omitempty"`
	ActorType     string `json:"actorType,omitempty"`
	Password      string `json:"password,omitempty"`
	Name          string `json:"name,omitempty"`
	UUID          string `json:"uuid,omitempty"`
	Ready         *bool  `json:"ready,omitempty"`
	CoinSide      string `json:"coinSide,omitempty"`
	SequenceIndex int    `json:"sequenceIndex"`
	Map           string `json:"map,omitempty"`
	Side          string `json:"side,omitempty"`
}

type ServerMessage struct {
	Type      string        `json:"type"` // "state" | "result"
	Version   int           `json:"version,omitempty"`
	State     *veto.Session `json:"state,omitempty"`
	Events    []veto.Event  `json:"events,omitempty"`
	Deadline  *time.Time    `json:"deadline,omitempty"`
	RequestID string        `json:"requestId,omitempty"`
	Result    *Result       `json:"result,omitempty"`
}

// Result is the answer to every caller-facing mutation.
type Result struct {
	OK      bool   `json:"ok"`
	Value   any    `json:"value,omitempty"`
	Kind    string `json:"kind,omitempty"`
	Message string `json:"message,omitempty"`
}

const (
	KindBadRequest = "BadRequest"
	KindNotFound   = "NotFound"
	KindConflict   = "Conflict"
	KindInternal   = "Internal"
)

var ErrBadRequest = errors.New("bad request")

func Ok(v any) Result { return Result{OK: true, Value: v} }

func Fail(kind, message string) Result {
	return Result{Kind: kind, Message: message}
}

// FromError classifies err by the package that raised it.
func FromError(err error) Result {
	if kind := veto.KindOf(err); kind != "" {
		return Fail(kind, err.Error())
	}
	if kind := bracket.KindOf(err); kind != "" {
		return Fail(kind, err.Error())
	}
	if errors.Is(err, ErrBadRequest) {
		return Fail(KindBadRequest, err.Error())
	}
	return Fail(KindInternal, err.Error())
}
