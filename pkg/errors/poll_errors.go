package errors

import "fmt"

// Stable error codes for the voting domain. The HTTP layer and the command
// handlers branch on these, never on message text.
const (
	CodeAlreadyVoted     = "ALREADY_VOTED"
	CodeInvalidSelection = "INVALID_SELECTION"
	CodePollClosed       = "POLL_CLOSED"
	CodeNotOwner         = "NOT_OWNER"
	CodeVersionConflict  = "VERSION_CONFLICT"
)

// NewAlreadyVotedError reports a second ballot from the same voter.
func NewAlreadyVotedError(userID string) *AppError {
	return NewConflictError(fmt.Sprintf("user %s has already voted on this poll", userID)).
		WithCode(CodeAlreadyVoted)
}

// NewInvalidSelectionError reports a malformed ballot.
func NewInvalidSelectionError(message string) *AppError {
	return NewValidationError(message).WithCode(CodeInvalidSelection)
}

// NewPollClosedError reports a ballot cast after the poll expired.
func NewPollClosedError() *AppError {
	return NewConflictError("poll is closed to new votes").WithCode(CodePollClosed)
}

// NewNotOwnerError reports a mutation attempted by someone other than the
// poll's author.
func NewNotOwnerError() *AppError {
	return NewForbiddenError("only the poll owner may perform this action").
		WithCode(CodeNotOwner)
}

// NewVersionConflictError reports a lost optimistic-concurrency race. The
// caller may reload and retry; the write did not happen.
func NewVersionConflictError(pollID string) *AppError {
	return NewConflictError(fmt.Sprintf("poll %s was modified concurrently", pollID)).
		WithCode(CodeVersionConflict)
}

// IsAlreadyVoted checks for the duplicate-ballot error.
func IsAlreadyVoted(err error) bool { return HasCode(err, CodeAlreadyVoted) }

// IsInvalidSelection checks for the malformed-ballot error.
func IsInvalidSelection(err error) bool { return HasCode(err, CodeInvalidSelection) }

// IsPollClosed checks for the expired-poll error.
func IsPollClosed(err error) bool { return HasCode(err, CodePollClosed) }

// IsNotOwner checks for the ownership error.
func IsNotOwner(err error) bool { return HasCode(err, CodeNotOwner) }

// IsVersionConflict checks for the optimistic-concurrency error.
func IsVersionConflict(err error) bool { return HasCode(err, CodeVersionConflict) }
