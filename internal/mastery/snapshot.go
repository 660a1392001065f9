package mastery

import (
	"encoding/json"
	"fmt"
	"maps"
)

// snapshot is the persisted form of a StudentState.
type snapshot struct {
	Estimate    int                   `json:"estimate"`
	Window      []Attempt             `json:"window"`
	SinceRetune int                   `json:"sinceRetune"`
	Topics      map[string]TopicStats `json:"topics"`
}

func encodeState(st *StudentState) ([]byte, error) {
	snap := snapshot{
		Estimate:    st.tracker.estimate,
		Window:      st.tracker.window,
		SinceRetune: st.tracker.sinceRetune,
		Topics:      st.topics,
	}
	b, err := json.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("encode tracker snapshot: %w", err)
	}
	return b, nil
}

func decodeState(payload []byte) (*StudentState, error) {
	var snap snapshot
	if err := json.Unmarshal(payload, &snap); err != nil {
		return nil, fmt.Errorf("decode tracker snapshot: %w", err)
	}
	st := newStudentState(snap.Estimate)
	st.tracker.window = snap.Window
	st.tracker.sinceRetune = snap.SinceRetune
	if snap.Topics != nil {
		maps.Copy(st.topics, snap.Topics)
	}
	return st, nil
}
