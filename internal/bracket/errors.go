package bracket

import "errors"

var ErrCyclicBracket = errors.New("bracket propagation exceeded round depth")
var ErrMatchNotFound = errors.New("match not found")

const (
	KindCyclicBracket = "CyclicBracket"
	KindMatchNotFound = "MatchNotFound"
)

// KindOf maps a bracket error to the kind reported at the boundary. It
// returns "" for errors this package does not own.
func KindOf(err error) string {
	switch {
	case errors.Is(err, ErrCyclicBracket):
		return KindCyclicBracket
	case errors.Is(err, ErrMatchNotFound):
		return KindMatchNotFound
	default:
		return ""
	}
}
