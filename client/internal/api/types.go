package api

import (
	"encoding/json"
	"fmt"
	"time"
)

type (
	Config struct {
		Host  string
		Token string
	}

	LoginParams struct {
		Login    string `json:"login"`
		Password string `json:"password"`
	}

	SignupParams struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	AuthResponse struct {
		UserID   uint   `json:"userId"`
		Username string `json:"username"`
		Token    string `json:"token"`
	}

	Dashboard struct {
		ID        uint      `json:"id"`
		URL       string    `json:"url"`
		Title     string    `json:"title"`
		Layout    string    `json:"layout"`
		CreatedAt time.Time `json:"created_at"`
	}

	IssueTokenParams struct {
		CustomDomain      string `json:"customDomain"`
		VerificationToken string `json:"verificationToken,omitempty"`
	}

	VerificationStatus struct {
		DashboardID       uint       `json:"dashboardId"`
		VerificationToken *string    `json:"verificationToken"`
		CustomDomain      *string    `json:"customDomain"`
		TXTRecord         *string    `json:"txtRecord"`
		IsVerified        bool       `json:"isVerified"`
		IsProvisioned     bool       `json:"isProvisioned"`
		State             string     `json:"state"`
		VerifiedAt        *time.Time `json:"verifiedAt,omitempty"`
	}

	VerificationResult struct {
		IsVerified        bool            `json:"isVerified"`
		IsProvisioned     bool            `json:"isProvisioned"`
		State             string          `json:"state"`
		ProxyHostResponse json.RawMessage `json:"proxyHostResponse,omitempty"`
	}

	Media struct {
		ID          uint      `json:"id"`
		Key         string    `json:"key"`
		URL         string    `json:"url"`
		ContentType string    `json:"content_type"`
		Size        int64     `json:"size"`
		CreatedAt   time.Time `json:"created_at"`
	}

	Event struct {
		Type    EventType       `json:"type"`
		Message string          `json:"message"`
		Data    json.RawMessage `json:"data,omitempty"`
	}

	EventType string

	// Error is a failed API call. Kind mirrors the server's error kinds, e.g. "verification_failed".
	Error struct {
		StatusCode int
		Kind       string
		Message    string
		Data       json.RawMessage
	}
)

const (
	Info     EventType = "info"
	Failed   EventType = "error"
	Success  EventType = "success"
	Complete EventType = "complete"
)

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("request failed with status %d", e.StatusCode)
	}
	return e.Message
}
