package bracket

// Participant is a registered team. ChalID references the external
// qualifier the team came through, when there was one.
type Participant struct {
	ID     int64   `json:"id"`
	ChalID *string `json:"chalId,omitempty"`
	Name   string  `json:"name"`
	Seed   int     `json:"seed"`
}

func ParticipantsByChalID(participants []Participant) map[string]Participant {
	byChal := make(map[string]Participant)
	for _, p := range participants {
		if p.ChalID == nil || *p.ChalID == "" {
			continue
		}
		byChal[*p.ChalID] = p
	}
	return byChal
}
