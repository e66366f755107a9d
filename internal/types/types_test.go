package types

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/DoyleJ11/veto-bracket-backend/internal/bracket"
	"github.com/DoyleJ11/veto-bracket-backend/internal/veto"
)

func TestFromError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		kind string
	}{
		{"veto sentinel", fmt.Errorf("%w: index 3", veto.ErrOutOfTurn), "OutOfTurn"},
		{"bracket sentinel", fmt.Errorf("%w: 42", bracket.ErrMatchNotFound), bracket.KindMatchNotFound},
		{"bad request", fmt.Errorf("%w: bad json", ErrBadRequest), KindBadRequest},
		{"anything else", errors.New("disk on fire"), KindInternal},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := FromError(tc.err)
			assert.False(t, res.OK)
			assert.Equal(t, tc.kind, res.Kind)
			assert.Equal(t, tc.err.Error(), res.Message)
		})
	}
}

func TestOk(t *testing.T) {
	res := Ok(3)
	assert.True(t, res.OK)
	assert.Equal(t, 3, res.Value)
	assert.Empty(t, res.Kind)
}
