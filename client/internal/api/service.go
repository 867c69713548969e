package api

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
)

type (
	Service interface {
		AuthService
		DashboardService
		DomainService
		MediaService
	}

	AuthService interface {
		Login(ctx context.Context, params LoginParams) (AuthResponse, error)
		Signup(ctx context.Context, params SignupParams) (AuthResponse, error)
	}

	DashboardService interface {
		ListDashboards(ctx context.Context, username string) ([]Dashboard, error)
	}

	DomainService interface {
		IssueToken(ctx context.Context, dashboardID uint, params IssueTokenParams) (VerificationStatus, error)
		Verify(ctx context.Context, dashboardID uint) (VerificationResult, error)
		Status(ctx context.Context, dashboardID uint) (VerificationStatus, error)
		WatchVerification(ctx context.Context, dashboardID uint) (<-chan Event, error)
	}

	MediaService interface {
		UploadMedia(ctx context.Context, name string, content io.Reader) (Media, error)
		ListMedia(ctx context.Context) ([]Media, error)
	}
)

type service struct {
	apiClient Client
}

func NewService(apiClient Client) Service {
	return service{apiClient: apiClient}
}

func (s service) Login(ctx context.Context, params LoginParams) (AuthResponse, error) {
	response := AuthResponse{}
	err := s.apiClient.Do(ctx, Params{
		Method:   http.MethodPost,
		Path:     "auth/login",
		Body:     params,
		Response: &response,
	})
	return response, err
}

func (s service) Signup(ctx context.Context, params SignupParams) (AuthResponse, error) {
	response := AuthResponse{}
	err := s.apiClient.Do(ctx, Params{
		Method:   http.MethodPost,
		Path:     "auth/signup",
		Body:     params,
		Response: &response,
	})
	return response, err
}

func (s service) ListDashboards(ctx context.Context, username string) ([]Dashboard, error) {
	response := make([]Dashboard, 0)
	err := s.apiClient.Do(ctx, Params{
		Method:   http.MethodGet,
		Path:     "users/" + username + "/dashboards",
		Response: &response,
	})
	return response, err
}

func (s service) IssueToken(ctx context.Context, dashboardID uint, params IssueTokenParams) (VerificationStatus, error) {
	response := VerificationStatus{}
	err := s.apiClient.Do(ctx, Params{
		Method:   http.MethodPost,
		Path:     verificationPath(dashboardID) + "/token",
		Body:     params,
		Response: &response,
	})
	return response, err
}

// Verify asks the server to check the TXT record now. A failed check still returns the result the
// server reported alongside the error.
func (s service) Verify(ctx context.Context, dashboardID uint) (VerificationResult, error) {
	response := VerificationResult{}
	err := s.apiClient.Do(ctx, Params{
		Method:   http.MethodPost,
		Path:     verificationPath(dashboardID) + "/verify",
		Response: &response,
	})
	var apiErr *Error
	if errors.As(err, &apiErr) && len(apiErr.Data) > 0 {
		_ = json.Unmarshal(apiErr.Data, &response)
	}
	return response, err
}

func (s service) Status(ctx context.Context, dashboardID uint) (VerificationStatus, error) {
	response := VerificationStatus{}
	err := s.apiClient.Do(ctx, Params{
		Method:   http.MethodGet,
		Path:     verificationPath(dashboardID),
		Response: &response,
	})
	return response, err
}

func (s service) WatchVerification(ctx context.Context, dashboardID uint) (<-chan Event, error) {
	body, err := s.apiClient.SSE(ctx, Params{
		Method: http.MethodGet,
		Path:   verificationPath(dashboardID) + "/events",
	})
	if err != nil {
		return nil, err
	}

	ch := make(chan Event, 100)
	go func() {
		defer close(ch)
		defer func() {
			_ = body.Close()
		}()

		sc := bufio.NewScanner(body)
		for sc.Scan() {
			ev := Event{}
			if err := json.Unmarshal(sc.Bytes(), &ev); err != nil {
				continue
			}

			select {
			case ch <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()
	return ch, nil
}

func (s service) UploadMedia(ctx context.Context, name string, content io.Reader) (Media, error) {
	response := Media{}
	err := s.apiClient.DoMultipart(ctx, "media", MultipartFile{Content: content, Name: name}, Params{
		Method:   http.MethodPost,
		Path:     "media",
		Response: &response,
	})
	return response, err
}

func (s service) ListMedia(ctx context.Context) ([]Media, error) {
	response := make([]Media, 0)
	err := s.apiClient.Do(ctx, Params{
		Method:   http.MethodGet,
		Path:     "media",
		Response: &response,
	})
	return response, err
}

func verificationPath(dashboardID uint) string {
	return "dashboards/" + strconv.FormatUint(uint64(dashboardID), 10) + "/verification"
}
