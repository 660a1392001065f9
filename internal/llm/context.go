package llm

import "context"

// Purpose labels what a generative request is for. It is recorded on every
// request event and metric sample.
type Purpose string

const (
	PurposeHint       Purpose = "hint"
	PurposeLesson     Purpose = "lesson"
	PurposeDiagnosis  Purpose = "mistake-diagnosis"
	PurposeRefinement Purpose = "curriculum-refinement"
	PurposeUnknown    Purpose = "unknown"
)

type ctxKey int

const (
	purposeKey ctxKey = iota
	studentKey
)

// WithPurpose tags ctx with the purpose of the requests made under it.
func WithPurpose(ctx context.Context, p Purpose) context.Context {
	return context.WithValue(ctx, purposeKey, p)
}

// PurposeFrom returns the purpose tagged on ctx, or PurposeUnknown.
func PurposeFrom(ctx context.Context) Purpose {
	if p, ok := ctx.Value(purposeKey).(Purpose); ok && p != "" {
		return p
	}
	return PurposeUnknown
}

// WithStudent tags ctx with the student a request is generated for, so
// request logs can be traced back to a session.
func WithStudent(ctx context.Context, studentID string) context.Context {
	return context.WithValue(ctx, studentKey, studentID)
}

// StudentFrom returns the student tagged on ctx, or "".
func StudentFrom(ctx context.Context) string {
	s, _ := ctx.Value(studentKey).(string)
	return s
}
