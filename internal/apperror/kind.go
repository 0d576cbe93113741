package apperror

import "net/http"

// Kind is the closed set of error categories. Every Error belongs to
// exactly one Kind, and the Kind alone determines the default HTTP
// status and user-facing message.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindAuthentication
	KindAuthorization
	KindConflict
	KindRateLimit
	KindIntegration
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindAuthentication:
		return "authentication"
	case KindAuthorization:
		return "authorization"
	case KindConflict:
		return "conflict"
	case KindRateLimit:
		return "rate_limit"
	case KindIntegration:
		return "integration"
	default:
		return "internal"
	}
}

func (k Kind) defaultStatus() int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindAuthentication:
		return http.StatusUnauthorized
	case KindAuthorization:
		return http.StatusForbidden
	case KindConflict:
		return http.StatusConflict
	case KindRateLimit:
		return http.StatusTooManyRequests
	case KindIntegration:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (k Kind) defaultUserMessage() string {
	switch k {
	case KindValidation:
		return "The request contains invalid data."
	case KindNotFound:
		return "The requested resource was not found."
	case KindAuthentication:
		return "Invalid or expired token."
	case KindAuthorization:
		return "You do not have permission to perform this action."
	case KindConflict:
		return "The request conflicts with the current state."
	case KindRateLimit:
		return "Too many requests. Please try again later."
	case KindIntegration:
		return "An external service is currently unavailable."
	default:
		return "An unexpected error occurred. Please try again later."
	}
}
