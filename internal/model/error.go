package model

// Error codes carried in ErrorResponse.ErrorCode.
const (
	CodeInvalidID       = "INVALID_ID"
	CodeValidationError = "VALIDATION_ERROR"
	CodeDuplicate       = "DUPLICATE"
	CodeNotFound        = "NOT_FOUND"
	CodeUnauthorized    = "UNAUTHORIZED"
	CodeDBError         = "DB_ERROR"
	CodeBadRequest      = "BAD_REQUEST"
	CodeServerError     = "SERVER_ERROR"
	CodeRateLimited     = "RATE_LIMITED"
)

// ErrorResponse is the body of every 4xx and 5xx response.
type ErrorResponse struct {
	ErrorCode string `json:"error_code"`
	Message   string `json:"message"`
	Details   string `json:"details,omitempty"`
}
