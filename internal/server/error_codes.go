package server

const (
	// Validation (1xxx)
	ErrCodeInvalidArgument   = 1000
	ErrCodeInvalidJSON       = 1001
	ErrCodeRequestTooLarge   = 1002
	ErrCodeInvalidID         = 1004
	ErrCodeMissingRequired   = 1009
	ErrCodeInvalidForm       = 1015
	ErrCodeInvalidImage      = 1016
	ErrCodeInvalidLink       = 1017
	ErrCodeInvalidAuthor     = 1018
	ErrCodeInvalidApproval   = 1019
	ErrCodeInvalidImageKey   = 1020
	ErrCodeInvalidVisibility = 1021

	// Domain state (2xxx)
	ErrCodeBlogNotFound  = 2001
	ErrCodeUserNotFound  = 2002
	ErrCodeImageNotFound = 2003
	ErrCodeConflict      = 2102
	ErrCodeArticleFetch  = 2201

	// Auth & limits (3xxx)
	ErrCodeUnauthorized      = 3001
	ErrCodeForbidden         = 3002
	ErrCodeResourceExhausted = 3003

	// Internal/system (4xxx)
	ErrCodeInternal       = 4001
	ErrCodeStoreFailure   = 4002
	ErrCodeBlobFailure    = 4003
	ErrCodeNotImplemented = 4005
)

func defaultErrorCodeByStatus(status int) int {
	switch status {
	case 400:
		return ErrCodeInvalidArgument
	case 401:
		return ErrCodeUnauthorized
	case 403:
		return ErrCodeForbidden
	case 404:
		return ErrCodeBlogNotFound
	case 409:
		return ErrCodeConflict
	case 413:
		return ErrCodeRequestTooLarge
	case 429:
		return ErrCodeResourceExhausted
	case 500:
		return ErrCodeInternal
	case 501:
		return ErrCodeNotImplemented
	case 502:
		return ErrCodeArticleFetch
	default:
		return 0
	}
}
