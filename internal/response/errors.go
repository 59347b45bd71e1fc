package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrInvalidCredentials ErrCode = "INVALID_CREDENTIALS"
	ErrEmailTaken         ErrCode = "EMAIL_ALREADY_REGISTERED"
	ErrTokenRequired      ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid       ErrCode = "TOKEN_INVALID"
	ErrTokenExpired       ErrCode = "TOKEN_EXPIRED"

	// ─── Authorization ─────────────────────────────────────────────────
	ErrForbidden       ErrCode = "FORBIDDEN"
	ErrNotEnrolled     ErrCode = "NOT_ENROLLED"
	ErrAdminAccessOnly ErrCode = "ADMIN_ACCESS_ONLY"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidID      ErrCode = "INVALID_ID"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound ErrCode = "NOT_FOUND"
	ErrConflict ErrCode = "CONFLICT"

	// ─── Test sessions ─────────────────────────────────────────────────
	ErrInvalidDuration      ErrCode = "INVALID_DURATION"
	ErrSessionSubmitted     ErrCode = "SESSION_ALREADY_SUBMITTED"
	ErrSessionExpired       ErrCode = "SESSION_EXPIRED"
	ErrResponseNotInSession ErrCode = "RESPONSE_NOT_IN_SESSION"
	ErrResultNotReady       ErrCode = "RESULT_NOT_READY"
	ErrSolutionsLocked      ErrCode = "SOLUTIONS_LOCKED"

	// ─── Enrollment ────────────────────────────────────────────────────
	ErrEnrollmentExists  ErrCode = "ENROLLMENT_ALREADY_REQUESTED"
	ErrEnrollmentDecided ErrCode = "ENROLLMENT_ALREADY_DECIDED"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Authentication ────────────────────────────────────────────────
	case ErrInvalidCredentials:
		return "Email or password is incorrect."
	case ErrEmailTaken:
		return "An account with this email already exists."
	case ErrTokenRequired:
		return "An authentication token is required."
	case ErrTokenInvalid:
		return "The authentication token is invalid."
	case ErrTokenExpired:
		return "The authentication token has expired."

	// ─── Authorization ─────────────────────────────────────────────────
	case ErrForbidden:
		return "You do not have permission to access this resource."
	case ErrNotEnrolled:
		return "You are not enrolled in this course."
	case ErrAdminAccessOnly:
		return "This resource is restricted to administrators."

	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "Validation failed. Please check your input."
	case ErrInvalidID:
		return "Invalid ID format."
	case ErrInvalidPayload:
		return "Invalid request payload."

	// ─── Resources ─────────────────────────────────────────────────────
	case ErrNotFound:
		return "The requested resource was not found."
	case ErrConflict:
		return "The resource already exists."

	// ─── Test sessions ─────────────────────────────────────────────────
	case ErrInvalidDuration:
		return "Invalid duration for exam mode."
	case ErrSessionSubmitted:
		return "Cannot modify responses after submission."
	case ErrSessionExpired:
		return "The exam time is over. The session can no longer be modified."
	case ErrResponseNotInSession:
		return "Response not found for the given question."
	case ErrResultNotReady:
		return "No result exists for this session yet."
	case ErrSolutionsLocked:
		return "Solutions are available only after submission."

	// ─── Enrollment ────────────────────────────────────────────────────
	case ErrEnrollmentExists:
		return "You have already requested enrollment in this course."
	case ErrEnrollmentDecided:
		return "This enrollment request has already been decided."

	// ─── Rate Limiting ─────────────────────────────────────────────────
	case ErrRateLimitExceeded:
		return "Too many requests. Please try again later."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrInternal:
		return "An internal server error occurred."
	default:
		return "An unexpected error occurred."
	}
}
