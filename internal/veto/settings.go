package veto

import (
	"encoding/json"
	"fmt"

	"go.uber.org/multierr"
)

type Map struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	ImageURL string `json:"imageUrl,omitempty"`
}

type Mode struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	ImageURL string   `json:"imageUrl,omitempty"`
	MapPool  []string `json:"mapPool"`
}

type SequenceSettingsItem struct {
	Mode      *string  `json:"mode"`
	Action    Action   `json:"action"`
	MapActor  ActorRef `json:"mapActor"`
	SideActor ActorRef `json:"sideActor"`
}

type Settings struct {
	Type      SettingsType           `json:"type"`
	AutoStart bool                   `json:"autoStart"`
	Sequence  []SequenceSettingsItem `json:"sequence"`
	Modes     []Mode                 `json:"modes"`
	MapPool   []Map                  `json:"mapPool"`
	// Timer is seconds per turn; nil disables turn deadlines.
	Timer *int `json:"timer,omitempty"`
}

// UnmarshalJSON defaults AutoStart to true and Type to standard when the
// payload leaves them out.
func (s *Settings) UnmarshalJSON(data []byte) error {
	type plain Settings
	p := plain{AutoStart: true}
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	if p.Type == "" {
		p.Type = TypeStandard
	}
	*s = Settings(p)
	return nil
}

// Validate reports every inconsistency in the settings at once. Each
// violation wraps ErrValidation.
func (s Settings) Validate() error {
	var err error

	modes := make(map[string]struct{}, len(s.Modes))
	for _, m := range s.Modes {
		modes[m.ID] = struct{}{}
	}
	pool := make(map[string]struct{}, len(s.MapPool))
	for _, m := range s.MapPool {
		pool[m.ID] = struct{}{}
	}

	for i, item := range s.Sequence {
		if !item.Action.Valid() {
			err = multierr.Append(err, fmt.Errorf("%w: sequence[%d] has unknown action %q", ErrValidation, i, item.Action))
		}
		if item.Mode == nil {
			continue
		}
		if _, ok := modes[*item.Mode]; !ok {
			err = multierr.Append(err, fmt.Errorf("%w: sequence[%d] references unknown mode %q", ErrValidation, i, *item.Mode))
		}
	}

	for _, m := range s.Modes {
		for _, id := range m.MapPool {
			if _, ok := pool[id]; !ok {
				err = multierr.Append(err, fmt.Errorf("%w: mode %q lists map %q missing from map pool", ErrValidation, m.ID, id))
			}
		}
	}

	switch s.Type {
	case TypeCoinFlipOnly:
	case TypeStandard:
		if len(s.MapPool) == 0 || len(s.Sequence) == 0 {
			err = multierr.Append(err, fmt.Errorf("%w: standard veto needs a map pool and a sequence", ErrValidation))
		}
	default:
		err = multierr.Append(err, fmt.Errorf("%w: unknown type %q", ErrValidation, s.Type))
	}

	if s.Timer != nil && *s.Timer <= 0 {
		err = multierr.Append(err, fmt.Errorf("%w: timer must be positive", ErrValidation))
	}
	return err
}

func (s Settings) mode(id string) (Mode, bool) {
	for _, m := range s.Modes {
		if m.ID == id {
			return m, true
		}
	}
	return Mode{}, false
}

// poolFor returns the maps a step chooses from: its mode's pool, or the
// global pool when the step has no mode.
func (s Settings) poolFor(mode *string) []string {
	if mode != nil {
		if m, ok := s.mode(*mode); ok {
			return m.MapPool
		}
	}
	ids := make([]string, 0, len(s.MapPool))
	for _, m := range s.MapPool {
		ids = append(ids, m.ID)
	}
	return ids
}
