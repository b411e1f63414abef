package domain

import "time"

// DigestFrequency enumerates how often a user receives email digests.
type DigestFrequency int

const (
	DigestNever  DigestFrequency = 0
	DigestDaily  DigestFrequency = 1
	DigestWeekly DigestFrequency = 2
)

// Window returns the time span a digest of this frequency covers.
// DigestNever has no window.
func (f DigestFrequency) Window() (time.Duration, bool) {
	switch f {
	case DigestDaily:
		return 24 * time.Hour, true
	case DigestWeekly:
		return 7 * 24 * time.Hour, true
	default:
		return 0, false
	}
}

func (f DigestFrequency) String() string {
	switch f {
	case DigestDaily:
		return "daily"
	case DigestWeekly:
		return "weekly"
	default:
		return "never"
	}
}

// ParseDigestFrequency maps a frequency name to its value.
func ParseDigestFrequency(s string) (DigestFrequency, bool) {
	switch s {
	case "never":
		return DigestNever, true
	case "daily":
		return DigestDaily, true
	case "weekly":
		return DigestWeekly, true
	default:
		return DigestNever, false
	}
}

// User is an analyst account.
type User struct {
	ID               string
	Username         string
	Email            string
	PasswordHash     string
	IsStaff          bool
	InvitesRemaining int
	JoinedAt         time.Time
	UpdatedAt        time.Time
}

// UserSettings holds per-account preferences.
type UserSettings struct {
	UserID          string
	DigestFrequency DigestFrequency
	UpdatedAt       time.Time
}
