package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by single-row lookups that match nothing.
var ErrNotFound = errors.New("not found")

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit  int       // max results (0 = unlimited)
	After  int64     // sequence > After
	Before int64     // sequence < Before
	From   time.Time // timestamp >= From
	To     time.Time // timestamp <= To
}

// StudentRecord is the persisted student profile.
type StudentRecord struct {
	ID                string
	GradeLevel        int
	MasteredTopics    []string
	CurrentTopic      string
	CurrentDifficulty int
	UpdatedAt         time.Time
}

// MistakeRecord is one entry of a student's append-only mistake log.
type MistakeRecord struct {
	ID            string
	StudentID     string
	QuestionID    string
	TopicID       string
	Subject       string
	GradeLevel    int
	StudentAnswer string
	CorrectAnswer string
	Difficulty    int
	Timestamp     time.Time

	// MisconceptionID is empty until analysis classifies the mistake.
	MisconceptionID string
}

// ReviewCard is the spaced-repetition state of one question for one student.
type ReviewCard struct {
	ID           string
	StudentID    string
	TopicID      string
	QuestionID   string
	Difficulty   int
	NextReviewAt time.Time
	Repetition   int
	IntervalDays int
	Ease         float64
	LastQuality  int
	Reviews      int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// PerformanceRecord is the outcome of one completed session, the raw
// material for curriculum performance aggregates.
type PerformanceRecord struct {
	ID                string
	SessionID         string
	StudentID         string
	GradeLevel        int
	Subject           string
	TopicID           string
	SessionType       string
	Correct           int
	Total             int
	Accuracy          float64 // percent, 0-100
	DurationSeconds   float64
	ExpectedSeconds   float64
	AverageDifficulty float64
	CompletedAt       time.Time
}

// CurriculumKey identifies a curriculum independent of its version.
type CurriculumKey struct {
	GradeLevel int
	Subject    string
}

// CurriculumRecord is one persisted curriculum version. Payload holds the
// JSON-encoded curriculum.
type CurriculumRecord struct {
	ID         string
	GradeLevel int
	Subject    string
	Version    string
	Reason     string
	PreviousID string
	Payload    []byte
	CreatedAt  time.Time
}

// FeedbackRecord is a student or teacher rating of curriculum content.
type FeedbackRecord struct {
	ID         string
	GradeLevel int
	Subject    string
	TopicID    string
	StudentID  string
	Rating     int // 1-5
	Comment    string
	CreatedAt  time.Time
}

// Plan statuses.
const (
	PlanActive     = "active"
	PlanCompleted  = "completed"
	PlanSuperseded = "superseded"
)

// PlanRecord is a persisted remediation plan. Payload holds the JSON plan.
type PlanRecord struct {
	ID        string
	StudentID string
	Subject   string
	Priority  string
	Status    string
	Payload   []byte
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TrackerSnapshot is the JSON-encoded adaptive tracker state of a student.
type TrackerSnapshot struct {
	StudentID string
	Payload   []byte
	UpdatedAt time.Time
}

// SessionEventData captures one session lifecycle or engagement event.
type SessionEventData struct {
	SessionID string
	StudentID string
	Kind      string
	Payload   []byte
}

// SessionEvent is a stored SessionEventData.
type SessionEvent struct {
	Sequence  int64
	Timestamp time.Time
	SessionEventData
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMRequestEvent is a stored LLMRequestEventData.
type LLMRequestEvent struct {
	Sequence  int64
	Timestamp time.Time
	LLMRequestEventData
}

// OptimizationRunData summarizes one batch optimization run.
type OptimizationRunData struct {
	StartedAt  time.Time
	FinishedAt time.Time
	Processed  int
	Optimized  int
	Skipped    int
	Failed     int
	Summary    []byte
}

// StudentRepo stores student profiles.
type StudentRepo interface {
	GetStudent(ctx context.Context, id string) (*StudentRecord, error)
	SaveStudent(ctx context.Context, s StudentRecord) error
}

// MistakeRepo stores the per-student mistake log.
type MistakeRepo interface {
	AppendMistake(ctx context.Context, m MistakeRecord) error

	// ListMistakes returns a student's mistakes oldest first. An empty
	// subject returns every subject.
	ListMistakes(ctx context.Context, studentID, subject string) ([]MistakeRecord, error)

	SetMisconception(ctx context.Context, mistakeID, misconceptionID string) error
}

// CardRepo stores review cards. Cards are never deleted.
type CardRepo interface {
	GetCard(ctx context.Context, id string) (*ReviewCard, error)
	FindCard(ctx context.Context, studentID, questionID string) (*ReviewCard, error)

	// SaveCard inserts or replaces a card by ID.
	SaveCard(ctx context.Context, c ReviewCard) error

	// DueCards returns cards with NextReviewAt <= now, oldest-due first.
	// An empty topicID matches every topic; limit <= 0 means no limit.
	DueCards(ctx context.Context, studentID, topicID string, now time.Time, limit int) ([]ReviewCard, error)
}

// PerformanceRepo stores completed-session performance records.
type PerformanceRepo interface {
	AppendPerformance(ctx context.Context, r PerformanceRecord) error
	ListPerformance(ctx context.Context, gradeLevel int, subject string) ([]PerformanceRecord, error)
}

// CurriculumRepo stores curriculum versions. Old versions are retained.
type CurriculumRepo interface {
	SaveCurriculum(ctx context.Context, r CurriculumRecord) error
	GetCurriculum(ctx context.Context, id string) (*CurriculumRecord, error)

	// LatestCurriculum returns the highest version for the key.
	LatestCurriculum(ctx context.Context, gradeLevel int, subject string) (*CurriculumRecord, error)

	// ListCurriculumVersions returns every version for the key, newest first.
	ListCurriculumVersions(ctx context.Context, gradeLevel int, subject string) ([]CurriculumRecord, error)

	ListCurriculumKeys(ctx context.Context) ([]CurriculumKey, error)
}

// FeedbackRepo stores curriculum feedback ratings.
type FeedbackRepo interface {
	AppendFeedback(ctx context.Context, f FeedbackRecord) error
	ListFeedback(ctx context.Context, gradeLevel int, subject string) ([]FeedbackRecord, error)
}

// PlanRepo stores remediation plans.
type PlanRepo interface {
	// SavePlan inserts or replaces a plan by ID.
	SavePlan(ctx context.Context, p PlanRecord) error
	GetPlan(ctx context.Context, id string) (*PlanRecord, error)

	// ActivePlan returns the newest active plan for the student and subject.
	ActivePlan(ctx context.Context, studentID, subject string) (*PlanRecord, error)
}

// TrackerRepo stores adaptive tracker snapshots, one per student.
type TrackerRepo interface {
	LoadTracker(ctx context.Context, studentID string) (*TrackerSnapshot, error)
	SaveTracker(ctx context.Context, s TrackerSnapshot) error
}

// EventRepo provides append and query access to domain events.
type EventRepo interface {
	AppendSessionEvent(ctx context.Context, data SessionEventData) error
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error
	AppendOptimizationRun(ctx context.Context, data OptimizationRunData) error

	// QuerySessionEvents returns a student's events in sequence order.
	QuerySessionEvents(ctx context.Context, studentID string, opts QueryOpts) ([]SessionEvent, error)

	// QueryLLMRequests returns LLM request events, newest first.
	QueryLLMRequests(ctx context.Context, opts QueryOpts) ([]LLMRequestEvent, error)
}

// Repos bundles every repository. Both *Store and *Memory satisfy it.
type Repos interface {
	Students() StudentRepo
	Mistakes() MistakeRepo
	Cards() CardRepo
	Performance() PerformanceRepo
	Curricula() CurriculumRepo
	Feedback() FeedbackRepo
	Plans() PlanRepo
	Trackers() TrackerRepo
	Events() EventRepo
}
