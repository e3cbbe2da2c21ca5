package errors

import (
	"context"
	"errors"
	"net/http"
)

var (
	// ErrUnauthenticated is returned when the caller does not resolve to a stored voter.
	ErrUnauthenticated = errors.New("user session not found, please log in again")
	// ErrForbidden is returned when the caller's role may not use a route.
	ErrForbidden = errors.New("your role is not authorized to access this route")
	// ErrInvalidCredentials is returned when email/student id or password is incorrect.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidRefreshToken is returned when refresh token is invalid or expired.
	ErrInvalidRefreshToken = errors.New("invalid or expired refresh token")
	// ErrUserAlreadyExists is returned when email, phone or student id is taken.
	ErrUserAlreadyExists = errors.New("user already exists")
	// ErrUserNotFound is returned when a user is not found.
	ErrUserNotFound = errors.New("user not found")
	// ErrCannotDeleteAdmin is returned when deleting an admin account.
	ErrCannotDeleteAdmin = errors.New("cannot delete an admin account")
	// ErrInvalidOTP is returned when a verification code is wrong or expired.
	ErrInvalidOTP = errors.New("invalid or expired OTP")

	// ErrAlreadyVoted is returned when the voter has already cast a vote.
	ErrAlreadyVoted = errors.New("you have already cast your vote")
	// ErrElectionNotFound is returned when an election is not found.
	ErrElectionNotFound = errors.New("election not found")
	// ErrElectionNotActive is returned when voting on a pending or ended election.
	ErrElectionNotActive = errors.New("this election is not currently active")
	// ErrVotingWindowClosed is returned when the election end date has passed.
	ErrVotingWindowClosed = errors.New("the voting period for this election has ended")
	// ErrCandidateNotFound is returned when a candidate is not found.
	ErrCandidateNotFound = errors.New("selected candidate was not found")

	// ErrElectionNotEnded is returned when certifying an election that has not ended.
	ErrElectionNotEnded = errors.New("election must be ended before certifying")
	// ErrElectionCertified is returned when changing an already certified election.
	ErrElectionCertified = errors.New("election is already certified")
	// ErrNoCandidates is returned when certifying an election without candidates.
	ErrNoCandidates = errors.New("no candidates found for this election")
	// ErrInvalidElection is returned when election fields are missing or inconsistent.
	ErrInvalidElection = errors.New("election requires a title and an end date after the start date")
	// ErrInvalidStatus is returned for an unknown election status.
	ErrInvalidStatus = errors.New("status must be one of pending, active, ended")
	// ErrInvalidCandidate is returned when a candidate has no name.
	ErrInvalidCandidate = errors.New("candidate requires a name")
	// ErrInvalidFileType is returned when a candidate upload is not an image.
	ErrInvalidFileType = errors.New("please upload an image file")
	// ErrFileTooLarge is returned when a candidate upload exceeds the size limit.
	ErrFileTooLarge = errors.New("image exceeds the upload size limit")
)

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Response represents a standardized success response.
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// OK builds a success response.
func OK(message string, data interface{}) Response {
	return Response{Success: true, Message: message, Data: data}
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Success: false,
		Message: e.Message,
		Code:    e.Code,
	}
}

var mappings = []struct {
	err    error
	status int
	code   string
}{
	{ErrUnauthenticated, http.StatusUnauthorized, "UNAUTHENTICATED"},
	{ErrInvalidCredentials, http.StatusUnauthorized, "INVALID_CREDENTIALS"},
	{ErrInvalidRefreshToken, http.StatusUnauthorized, "INVALID_REFRESH_TOKEN"},
	{ErrForbidden, http.StatusForbidden, "FORBIDDEN"},
	{ErrCannotDeleteAdmin, http.StatusForbidden, "CANNOT_DELETE_ADMIN"},
	{ErrUserAlreadyExists, http.StatusConflict, "USER_ALREADY_EXISTS"},
	{ErrUserNotFound, http.StatusNotFound, "USER_NOT_FOUND"},
	{ErrInvalidOTP, http.StatusBadRequest, "INVALID_OTP"},
	{ErrAlreadyVoted, http.StatusBadRequest, "ALREADY_VOTED"},
	{ErrElectionNotFound, http.StatusNotFound, "ELECTION_NOT_FOUND"},
	{ErrElectionNotActive, http.StatusBadRequest, "ELECTION_NOT_ACTIVE"},
	{ErrVotingWindowClosed, http.StatusBadRequest, "VOTING_WINDOW_CLOSED"},
	{ErrCandidateNotFound, http.StatusNotFound, "CANDIDATE_NOT_FOUND"},
	{ErrElectionNotEnded, http.StatusBadRequest, "ELECTION_NOT_ENDED"},
	{ErrElectionCertified, http.StatusConflict, "ELECTION_CERTIFIED"},
	{ErrNoCandidates, http.StatusBadRequest, "NO_CANDIDATES"},
	{ErrInvalidElection, http.StatusBadRequest, "INVALID_ELECTION"},
	{ErrInvalidStatus, http.StatusBadRequest, "INVALID_STATUS"},
	{ErrInvalidCandidate, http.StatusBadRequest, "INVALID_CANDIDATE"},
	{ErrInvalidFileType, http.StatusBadRequest, "INVALID_FILE_TYPE"},
	{ErrFileTooLarge, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE"},
}

// MapErrorToHTTP maps domain errors to HTTP errors. Unknown errors become an
// opaque internal error so storage details never reach the client.
func MapErrorToHTTP(err error) *HTTPError {
	for _, m := range mappings {
		if errors.Is(err, m.err) {
			return NewHTTPError(m.status, m.err.Error(), m.code)
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return NewHTTPError(http.StatusServiceUnavailable, "the request timed out, please retry", "TIMEOUT")
	}
	return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
}

// Code returns the stable machine code for err, as used in audit records.
func Code(err error) string {
	if err == nil {
		return ""
	}
	return MapErrorToHTTP(err).Code
}
