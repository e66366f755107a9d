package veto

import "errors"

var ErrValidation = errors.New("invalid veto settings")
var ErrOutOfTurn = errors.New("out of turn")
var ErrWrongActor = errors.New("wrong actor for this step")
var ErrInvalidMap = errors.New("invalid map")
var ErrInvalidSide = errors.New("invalid side")
var ErrNotResolved = errors.New("coin flip not resolved")
var ErrInvalidPassword = errors.New("invalid password")
var ErrAlreadyJoined = errors.New("actor already joined")
var ErrSessionComplete = errors.New("veto already completed")
var ErrAlreadyClaimed = errors.New("coin side already claimed")
var ErrInvalidTeam = errors.New("invalid team")
var ErrNotJoined = errors.New("actor not joined")
var ErrNotReady = errors.New("teams not ready")
var ErrAlreadyStarted = errors.New("veto already started")
var ErrSeriesMismatch = errors.New("series mismatch")
var ErrUnsupportedCommand = errors.New("unsupported command")

var errorKinds = []struct {
	err  error
	kind string
}{
	{ErrValidation, "ValidationError"},
	{ErrOutOfTurn, "OutOfTurn"},
	{ErrWrongActor, "WrongActor"},
	{ErrInvalidMap, "InvalidMap"},
	{ErrInvalidSide, "InvalidSide"},
	{ErrNotResolved, "NotResolved"},
	{ErrInvalidPassword, "InvalidPassword"},
	{ErrAlreadyJoined, "AlreadyJoined"},
	{ErrSessionComplete, "SessionComplete"},
	{ErrAlreadyClaimed, "AlreadyClaimed"},
	{ErrInvalidTeam, "InvalidTeam"},
	{ErrNotJoined, "NotJoined"},
	{ErrNotReady, "NotReady"},
	{ErrAlreadyStarted, "AlreadyStarted"},
	{ErrSeriesMismatch, "SeriesMismatch"},
	{ErrUnsupportedCommand, "UnsupportedCommand"},
}

// KindOf returns the boundary kind for a veto error, or "" when err did not
// come from this package.
func KindOf(err error) string {
	for _, k := range errorKinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}
	return ""
}
