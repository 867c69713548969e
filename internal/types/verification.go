package types

import (
	"encoding/json"
	"github.com/samber/lo"
	"time"
)

// TXTRecordPrefix is what clients are told to put in front of the token in their TXT record.
// Matching is by substring, so the prefix is a convention, not a requirement.
const TXTRecordPrefix = "accordee-verification="

type VerificationState string

const (
	StateUnconfigured          VerificationState = "unconfigured"
	StatePendingVerification   VerificationState = "pending_verification"
	StateVerifiedUnprovisioned VerificationState = "verified_unprovisioned"
	StateVerified              VerificationState = "verified"
)

type (
	VerificationRecord struct {
		DashboardID       uint
		CustomDomain      string
		VerificationToken string
		IsVerified        bool
		ProvisionedDomain string
		ProxyHostResponse json.RawMessage
		VerifiedAt        *time.Time
	}

	// VerificationPair is the token/domain pair a verification outcome was computed against.
	VerificationPair struct {
		Token  string
		Domain string
	}

	VerificationStatus struct {
		DashboardID       uint              `json:"dashboardId"`
		VerificationToken *string           `json:"verificationToken"`
		CustomDomain      *string           `json:"customDomain"`
		TXTRecord         *string           `json:"txtRecord"`
		IsVerified        bool              `json:"isVerified"`
		IsProvisioned     bool              `json:"isProvisioned"`
		State             VerificationState `json:"state"`
		VerifiedAt        *time.Time        `json:"verifiedAt,omitempty"`
	}

	VerificationResult struct {
		IsVerified        bool              `json:"isVerified"`
		IsProvisioned     bool              `json:"isProvisioned"`
		State             VerificationState `json:"state"`
		ProxyHostResponse json.RawMessage   `json:"proxyHostResponse,omitempty"`
	}

	VerificationEvent struct {
		DashboardID uint              `json:"dashboardId"`
		Stage       string            `json:"stage"`
		State       VerificationState `json:"state"`
		Message     string            `json:"message"`
	}
)

func (r *VerificationRecord) Pair() VerificationPair {
	return VerificationPair{Token: r.VerificationToken, Domain: r.CustomDomain}
}

func (r *VerificationRecord) IsProvisioned() bool {
	return r.ProvisionedDomain != "" && r.ProvisionedDomain == r.CustomDomain
}

func (r *VerificationRecord) State() VerificationState {
	switch {
	case r.CustomDomain == "" || r.VerificationToken == "":
		return StateUnconfigured
	case !r.IsVerified:
		return StatePendingVerification
	case !r.IsProvisioned():
		return StateVerifiedUnprovisioned
	default:
		return StateVerified
	}
}

func (r *VerificationRecord) Status() *VerificationStatus {
	var txt *string
	if r.VerificationToken != "" {
		txt = lo.ToPtr(TXTRecordPrefix + r.VerificationToken)
	}

	return &VerificationStatus{
		DashboardID:       r.DashboardID,
		VerificationToken: lo.EmptyableToPtr(r.VerificationToken),
		CustomDomain:      lo.EmptyableToPtr(r.CustomDomain),
		TXTRecord:         txt,
		IsVerified:        r.IsVerified,
		IsProvisioned:     r.IsVerified && r.IsProvisioned(),
		State:             r.State(),
		VerifiedAt:        r.VerifiedAt,
	}
}
