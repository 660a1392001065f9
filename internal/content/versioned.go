package content

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/abhisek/tutorloop/internal/store"
)

// VersionedSource serves the newest persisted curriculum version for a
// grade and subject, falling back to the seed library when nothing has been
// published yet. Questions always come from the library.
type VersionedSource struct {
	lib  *Library
	repo store.CurriculumRepo
	now  func() time.Time
}

// NewVersionedSource returns a Source layered over repo and lib.
func NewVersionedSource(lib *Library, repo store.CurriculumRepo) *VersionedSource {
	return &VersionedSource{lib: lib, repo: repo, now: time.Now}
}

// Library returns the underlying seed library.
func (s *VersionedSource) Library() *Library {
	return s.lib
}

func (s *VersionedSource) GetCurriculum(ctx context.Context, gradeLevel int, subject string) (*Curriculum, error) {
	rec, err := s.repo.LatestCurriculum(ctx, gradeLevel, subject)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return s.lib.GetCurriculum(ctx, gradeLevel, subject)
	case err != nil:
		return nil, fmt.Errorf("load curriculum: %w", err)
	}
	return DecodeCurriculum(rec)
}

func (s *VersionedSource) GetQuestionsForTopic(ctx context.Context, topicID string, q QuestionQuery) ([]Question, error) {
	return s.lib.GetQuestionsForTopic(ctx, topicID, q)
}

func (s *VersionedSource) GetLearningPath(ctx context.Context, gradeLevel int, subject string, progress Progress) ([]PathStep, error) {
	c, err := s.GetCurriculum(ctx, gradeLevel, subject)
	if err != nil {
		return nil, err
	}
	return BuildLearningPath(c, progress), nil
}

// Keys returns every grade and subject known to the library or the store.
func (s *VersionedSource) Keys(ctx context.Context) ([]Key, error) {
	keys := s.lib.Keys()
	stored, err := s.repo.ListCurriculumKeys(ctx)
	if err != nil {
		return nil, fmt.Errorf("list curriculum keys: %w", err)
	}
	for _, k := range stored {
		key := Key{GradeLevel: k.GradeLevel, Subject: k.Subject}
		if !slices.Contains(keys, key) {
			keys = append(keys, key)
		}
	}
	return keys, nil
}

// Publish persists c as a new version. The version must be strictly greater
// than the current one.
func (s *VersionedSource) Publish(ctx context.Context, c *Curriculum) error {
	if !ValidVersion(c.Version) {
		return fmt.Errorf("publish curriculum: invalid version %q", c.Version)
	}
	current, err := s.GetCurriculum(ctx, c.GradeLevel, c.Subject)
	if err != nil && !errors.Is(err, ErrNoActiveContent) {
		return err
	}
	if current != nil && CompareVersions(c.Version, current.Version) <= 0 {
		return fmt.Errorf("publish curriculum: version %s is not newer than %s", c.Version, current.Version)
	}
	if err := ValidatePrerequisites(c.Topics); err != nil {
		return fmt.Errorf("publish curriculum: %w", err)
	}
	rec, err := EncodeCurriculum(c)
	if err != nil {
		return err
	}
	if err := s.repo.SaveCurriculum(ctx, rec); err != nil {
		return fmt.Errorf("publish curriculum: %w", err)
	}
	return nil
}

// History returns every version for the key, newest first, ending with the
// seed version when it is not itself persisted.
func (s *VersionedSource) History(ctx context.Context, gradeLevel int, subject string) ([]*Curriculum, error) {
	recs, err := s.repo.ListCurriculumVersions(ctx, gradeLevel, subject)
	if err != nil {
		return nil, fmt.Errorf("list curriculum versions: %w", err)
	}
	out := make([]*Curriculum, 0, len(recs)+1)
	for i := range recs {
		c, err := DecodeCurriculum(&recs[i])
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	seed, err := s.lib.GetCurriculum(ctx, gradeLevel, subject)
	if err == nil && !slices.ContainsFunc(out, func(c *Curriculum) bool { return c.ID == seed.ID }) {
		out = append(out, seed)
	}
	return out, nil
}

// Version returns a specific curriculum version by id, searching the store
// and then the seed library.
func (s *VersionedSource) Version(ctx context.Context, id string) (*Curriculum, error) {
	rec, err := s.repo.GetCurriculum(ctx, id)
	if err == nil {
		return DecodeCurriculum(rec)
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("load curriculum %s: %w", id, err)
	}
	for _, k := range s.lib.Keys() {
		c, _ := s.lib.GetCurriculum(ctx, k.GradeLevel, k.Subject)
		if c != nil && c.ID == id {
			return c, nil
		}
	}
	return nil, fmt.Errorf("curriculum %s: %w", id, store.ErrNotFound)
}

// Rollback republishes the topics of the version the current one replaced,
// under a new version number. Versions only move forward.
func (s *VersionedSource) Rollback(ctx context.Context, gradeLevel int, subject string) (*Curriculum, error) {
	current, err := s.GetCurriculum(ctx, gradeLevel, subject)
	if err != nil {
		return nil, err
	}
	if current.PreviousID == "" {
		return nil, fmt.Errorf("rollback grade %d %s version %s: %w", gradeLevel, subject, current.Version, ErrNoPreviousVersion)
	}
	prev, err := s.Version(ctx, current.PreviousID)
	if err != nil {
		return nil, fmt.Errorf("rollback: %w", err)
	}
	version, err := NextVersion(current.Version)
	if err != nil {
		return nil, err
	}

	restored := *prev
	restored.Topics = slices.Clone(prev.Topics)
	restored.ID = VersionID(gradeLevel, subject, version)
	restored.Version = version
	restored.PreviousID = current.ID
	restored.PreviousVersion = current.Version
	restored.LastUpdated = s.now().UTC()
	restored.OptimizationReason = fmt.Sprintf("rollback to version %s", prev.Version)
	if err := s.Publish(ctx, &restored); err != nil {
		return nil, err
	}
	return &restored, nil
}

// VersionID is the persisted id of a curriculum version.
func VersionID(gradeLevel int, subject, version string) string {
	return fmt.Sprintf("g%d-%s-v%s", gradeLevel, subject, version)
}
