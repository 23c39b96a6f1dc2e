package experiment

import (
	"time"

	"github.com/blindpanel/blindpanel-go/internal/debate"
)

// BlindedResponse is one condition result with its provenance hidden
// behind an opaque blind id.
type BlindedResponse struct {
	BlindID    string        `json:"blind_id"`
	Answer     string        `json:"answer"`
	Transcript []debate.Turn `json:"transcript"`
}

// Run is one completed submission: four blinded responses in permuted
// order. Immutable once created. The label-to-condition mapping is kept
// unexported so serializing a Run never leaks provenance.
type Run struct {
	ID        string             `json:"id"`
	CreatedAt time.Time          `json:"created_at"`
	Question  string             `json:"question"`
	Responses [4]BlindedResponse `json:"responses"`

	reveal map[string]ConditionID
}

// Source reports which condition produced the given blind id.
func (r *Run) Source(blindID string) (ConditionID, bool) {
	id, ok := r.reveal[blindID]
	return id, ok
}

// Reveal returns a copy of the full label-to-condition mapping for the
// post-ranking reveal step.
func (r *Run) Reveal() map[string]ConditionID {
	out := make(map[string]ConditionID, len(r.reveal))
	for k, v := range r.reveal {
		out[k] = v
	}
	return out
}
