// Package handlers defines HTTP-layer error codes used by the gateway.
//
// The codes are stable, lowercase snake_case strings that supplement the
// human-readable message in the error envelope, so the delivering relay can
// branch on them programmatically.
package handlers

const (
	ErrCodeBadRequest       = "bad_request"
	ErrCodeUnauthorized     = "unauthorized"
	ErrCodeNotFound         = "not_found"
	ErrCodeMethodNotAllowed = "method_not_allowed"
	ErrCodeInternal         = "internal_error"

	// Domain-specific:
	ErrCodeModerationFailed = "moderation_failed"
	ErrCodeListFailed       = "list_failed"
)
