// internal/app/system/normalize/normalize.go

// Package normalize canonicalizes free-form and legacy field values.
//
// Registration rows were written by two earlier generations of the app: one
// stored upper-case English statuses ("PENDING", "CONFIRMED"), the other
// Indonesian words ("menunggu", "disetujui"). Status and RegRole fold both
// vocabularies into one canonical lower-case set. Both are total (any input
// yields a canonical value) and idempotent (canonical input passes through).
package normalize

import "strings"

// Canonical registration statuses.
const (
	StatusPending   = "pending"
	StatusApproved  = "approved"
	StatusRejected  = "rejected"
	StatusCancelled = "cancelled"
)

// Canonical registration roles.
const (
	RoleParticipant = "participant"
	RoleVolunteer   = "volunteer"
)

// Email lowercases and trims an email address.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name trims surrounding whitespace; case is preserved.
func Name(s string) string {
	return strings.TrimSpace(s)
}

// AuthMethod lowercases and trims an auth method identifier.
func AuthMethod(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Status maps any legacy registration status spelling onto the canonical
// set. Unrecognized values fall back to StatusPending so every row renders
// and every moderation action starts from a known state.
func Status(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case StatusPending, "menunggu":
		return StatusPending
	case StatusApproved, "confirmed", "disetujui":
		return StatusApproved
	case StatusRejected, "ditolak":
		return StatusRejected
	case StatusCancelled, "canceled", "dibatalkan":
		return StatusCancelled
	default:
		return StatusPending
	}
}

// RegRole maps any legacy registration role spelling onto the canonical
// set. Unrecognized values fall back to RoleParticipant.
func RegRole(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case RoleParticipant, "peserta":
		return RoleParticipant
	case RoleVolunteer, "relawan":
		return RoleVolunteer
	default:
		return RoleParticipant
	}
}

// IsValidStatus reports whether s is already canonical.
func IsValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected, StatusCancelled:
		return true
	}
	return false
}

// IsValidRegRole reports whether s is already canonical.
func IsValidRegRole(s string) bool {
	return s == RoleParticipant || s == RoleVolunteer
}
