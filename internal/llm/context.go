package llm

import "context"

// Purpose labels recorded with each event. They are also the values
// accepted by `evalai llm list --purpose`.
const (
	PurposeQuizSAQ   = "quiz-saq"
	PurposeQuizMCQ   = "quiz-mcq"
	PurposeKeyphrase = "keyphrase"
	PurposeDedup     = "dedup"

	purposeUnknown = "unknown"
)

type purposeKey struct{}

// WithPurpose tags ctx so the logging middleware can attribute the call.
func WithPurpose(ctx context.Context, purpose string) context.Context {
	return context.WithValue(ctx, purposeKey{}, purpose)
}

// PurposeFrom returns the tag set by WithPurpose, or "unknown".
func PurposeFrom(ctx context.Context) string {
	if p, ok := ctx.Value(purposeKey{}).(string); ok && p != "" {
		return p
	}
	return purposeUnknown
}
