package apperror

// Stable machine-readable error codes. Clients switch on these, so
// they are part of the API contract.
const (
	CodeValidationError   = "VALIDATION_ERROR"
	CodeInvalidRequest    = "INVALID_REQUEST_BODY"
	CodeNotFound          = "NOT_FOUND"
	CodeAuthFailed        = "AUTHENTICATION_FAILED"
	CodeTokenExpired      = "TOKEN_EXPIRED"
	CodeTokenInvalid      = "TOKEN_INVALID"
	CodePermissionDenied  = "PERMISSION_DENIED"
	CodeConflict          = "CONFLICT"
	CodeRateLimited       = "RATE_LIMIT_EXCEEDED"
	CodeInternalError     = "INTERNAL_ERROR"
	CodeDatabaseError     = "DATABASE_ERROR"
	CodeEmailFailed       = "EMAIL_SERVICE_FAILED"
	CodeUserAlreadyExists = "USER_ALREADY_EXISTS"
	CodeUserNotFound      = "USER_NOT_FOUND"
	CodeUserNotActive     = "USER_NOT_ACTIVE"
	CodeEventNotFound     = "EVENT_NOT_FOUND"
	CodeEventFull         = "EVENT_FULL"
	CodePrayerNotFound    = "PRAYER_NOT_FOUND"
	CodeDonationNotFound  = "DONATION_NOT_FOUND"
	CodeSermonNotFound    = "SERMON_NOT_FOUND"

	CodeSermonAlreadyPublished = "SERMON_ALREADY_PUBLISHED"
)
