// Package messages resolves error codes to user-facing text.
package messages

// Table maps error codes to messages.
type Table map[string]string

// Error codes returned by the API.
const (
	CodeInvalidJSON       = "invalid_json"
	CodeInvalidPlan       = "invalid_plan"
	CodeTemplateNotFound  = "template_not_found"
	CodeWorkoutNotFound   = "workout_not_found"
	CodeSessionNotFound   = "session_not_found"
	CodeNoActiveExercise  = "no_active_exercise"
	CodeEmptySet          = "empty_set"
	CodeAlreadyFinalized  = "already_finalized"
	CodeSessionFinished   = "session_finished"
	CodeMissingAPIKey     = "missing_api_key"
	CodeInvalidAPIKey     = "invalid_api_key"
	CodeStorage           = "storage_error"
	CodeInvalidTimeRange  = "invalid_time_range"
	CodeInvalidIdentifier = "invalid_identifier"
	CodeInvalidBucket     = "invalid_bucket"
	CodeInternal          = "internal_error"
)

// DefaultFallback is used when a code has no entry.
const DefaultFallback = "Something went wrong. Please try again."

// DefaultAPIMessages is the stock table for the HTTP API.
func DefaultAPIMessages() Table {
	return Table{
		CodeInvalidJSON:       "The request body is not valid JSON.",
		CodeInvalidPlan:       "The workout plan has no valid exercises.",
		CodeTemplateNotFound:  "Workout template not found.",
		CodeWorkoutNotFound:   "Workout not found.",
		CodeSessionNotFound:   "Workout session not found or already finished.",
		CodeNoActiveExercise:  "All planned exercises are already completed.",
		CodeEmptySet:          "A set needs at least one recorded rep.",
		CodeAlreadyFinalized:  "Rewards for this workout were already awarded.",
		CodeSessionFinished:   "This workout is already finished.",
		CodeMissingAPIKey:     "Missing API key.",
		CodeInvalidAPIKey:     "Invalid API key.",
		CodeStorage:           "Could not reach workout storage.",
		CodeInvalidTimeRange:  "Invalid start or end date.",
		CodeInvalidIdentifier: "Invalid identifier.",
		CodeInvalidBucket:     "Bucket must be week or month.",
	}
}

// Lookup returns the message for code, or fallback when the table has none.
func Lookup(table Table, code, fallback string) string {
	if msg, ok := table[code]; ok && msg != "" {
		return msg
	}
	return fallback
}
