package audit

import (
	"fmt"
	"strconv"
)

// LoginEvent records a login attempt.
type LoginEvent struct {
	Email        string
	ClientIP     string
	Success      bool
	ErrorMessage string
}

func (e LoginEvent) MessageID() string { return "login" }

func (e LoginEvent) Message() string {
	if e.Success {
		return fmt.Sprintf("%s successfully logged in", e.Email)
	}
	msg := fmt.Sprintf("failed login attempt for %s", e.Email)
	if e.ErrorMessage != "" {
		msg += ": " + e.ErrorMessage
	}
	return msg
}

func (e LoginEvent) Severity() Severity {
	if e.Success {
		return SeverityInfo
	}
	return SeverityWarning
}

func (e LoginEvent) Facility() int { return FacilityAuthPriv }

func (e LoginEvent) StructuredData() map[string]map[string]string {
	return map[string]map[string]string{
		SDIDAuth:   {"user": e.Email},
		SDIDClient: {"ip": e.ClientIP},
	}
}

// SignupEvent records an account registration attempt.
type SignupEvent struct {
	Email        string
	ClientIP     string
	Success      bool
	ErrorMessage string
}

func (e SignupEvent) MessageID() string { return "signup" }

func (e SignupEvent) Message() string {
	if e.Success {
		return fmt.Sprintf("account registered for %s", e.Email)
	}
	msg := fmt.Sprintf("failed registration for %s", e.Email)
	if e.ErrorMessage != "" {
		msg += ": " + e.ErrorMessage
	}
	return msg
}

func (e SignupEvent) Severity() Severity {
	if e.Success {
		return SeverityInfo
	}
	return SeverityWarning
}

func (e SignupEvent) Facility() int { return FacilityAuthPriv }

func (e SignupEvent) StructuredData() map[string]map[string]string {
	return map[string]map[string]string{
		SDIDAuth:   {"user": e.Email},
		SDIDClient: {"ip": e.ClientIP},
	}
}

// FetchEvent records a vault listing.
type FetchEvent struct {
	UserID   int64
	ClientIP string
	Count    int
}

func (e FetchEvent) MessageID() string { return "fetch" }

func (e FetchEvent) Message() string {
	return fmt.Sprintf("user %d listed %d credential(s)", e.UserID, e.Count)
}

func (e FetchEvent) Severity() Severity { return SeverityInfo }

func (e FetchEvent) Facility() int { return FacilityAuth }

func (e FetchEvent) StructuredData() map[string]map[string]string {
	return map[string]map[string]string{
		SDIDSubject: {"user": strconv.FormatInt(e.UserID, 10), "count": strconv.Itoa(e.Count)},
		SDIDClient:  {"ip": e.ClientIP},
	}
}

// UpdateEvent records a credential create or update.
type UpdateEvent struct {
	UserID       int64
	ClientIP     string
	CredentialID int64
	Service      string
	Success      bool
	ErrorMessage string
}

func (e UpdateEvent) MessageID() string { return "update" }

func (e UpdateEvent) Message() string {
	if e.Success {
		return fmt.Sprintf("user %d stored credential %d for service %s", e.UserID, e.CredentialID, e.Service)
	}
	msg := fmt.Sprintf("user %d failed to store credential for service %s", e.UserID, e.Service)
	if e.ErrorMessage != "" {
		msg += ": " + e.ErrorMessage
	}
	return msg
}

func (e UpdateEvent) Severity() Severity {
	if e.Success {
		return SeverityInfo
	}
	return SeverityWarning
}

func (e UpdateEvent) Facility() int { return FacilityAuth }

func (e UpdateEvent) StructuredData() map[string]map[string]string {
	return map[string]map[string]string{
		SDIDSubject: {
			"user":       strconv.FormatInt(e.UserID, 10),
			"credential": strconv.FormatInt(e.CredentialID, 10),
			"service":    e.Service,
		},
		SDIDClient: {"ip": e.ClientIP},
	}
}

// DeleteEvent records a credential deletion attempt.
type DeleteEvent struct {
	UserID       int64
	ClientIP     string
	CredentialID int64
	Success      bool
	ErrorMessage string
}

func (e DeleteEvent) MessageID() string { return "delete" }

func (e DeleteEvent) Message() string {
	if e.Success {
		return fmt.Sprintf("user %d deleted credential %d", e.UserID, e.CredentialID)
	}
	msg := fmt.Sprintf("user %d failed to delete credential %d", e.UserID, e.CredentialID)
	if e.ErrorMessage != "" {
		msg += ": " + e.ErrorMessage
	}
	return msg
}

func (e DeleteEvent) Severity() Severity {
	if e.Success {
		return SeverityInfo
	}
	return SeverityWarning
}

func (e DeleteEvent) Facility() int { return FacilityAuth }

func (e DeleteEvent) StructuredData() map[string]map[string]string {
	return map[string]map[string]string{
		SDIDSubject: {
			"user":       strconv.FormatInt(e.UserID, 10),
			"credential": strconv.FormatInt(e.CredentialID, 10),
		},
		SDIDClient: {"ip": e.ClientIP},
	}
}
