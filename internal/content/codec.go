package content

import (
	"encoding/json"
	"fmt"

	"github.com/abhisek/tutorloop/internal/store"
)

// EncodeCurriculum converts a curriculum into its persisted form.
func EncodeCurriculum(c *Curriculum) (store.CurriculumRecord, error) {
	payload, err := json.Marshal(c)
	if err != nil {
		return store.CurriculumRecord{}, fmt.Errorf("encode curriculum %s: %w", c.ID, err)
	}
	return store.CurriculumRecord{
		ID:         c.ID,
		GradeLevel: c.GradeLevel,
		Subject:    c.Subject,
		Version:    c.Version,
		Reason:     c.OptimizationReason,
		PreviousID: c.PreviousID,
		Payload:    payload,
		CreatedAt:  c.LastUpdated.UTC(),
	}, nil
}

// DecodeCurriculum restores a curriculum from a stored record. Record
// columns win over payload fields so the indexed values stay authoritative.
func DecodeCurriculum(rec *store.CurriculumRecord) (*Curriculum, error) {
	var c Curriculum
	if err := json.Unmarshal(rec.Payload, &c); err != nil {
		return nil, fmt.Errorf("decode curriculum %s: %w", rec.ID, err)
	}
	c.ID = rec.ID
	c.GradeLevel = rec.GradeLevel
	c.Subject = rec.Subject
	c.Version = rec.Version
	c.PreviousID = rec.PreviousID
	if rec.Reason != "" {
		c.OptimizationReason = rec.Reason
	}
	if c.LastUpdated.IsZero() {
		c.LastUpdated = rec.CreatedAt
	}
	return &c, nil
}
