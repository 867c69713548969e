package service

import (
	"accordee/internal/database"
	"accordee/internal/dnscheck"
	"accordee/internal/eventbus"
	"accordee/internal/integrations/npm"
	"accordee/internal/misc"
	"accordee/internal/types"
	"accordee/logger"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"strings"
)

const (
	StageIssued       = "issued"
	StageResolving    = "resolving"
	StageProvisioning = "provisioning"
	StageVerified     = "verified"
	StageFailed       = "failed"
)

type (
	VerificationService interface {
		IssueToken(ctx context.Context, dashboardID uint, token, domain string) (*types.VerificationStatus, error)
		// Verify checks DNS for the stored token and registers the domain with the reverse proxy on a
		// match. On VerificationFailed and ProvisionError the returned result is non-nil and describes
		// the persisted state alongside the error.
		Verify(ctx context.Context, dashboardID uint) (*types.VerificationResult, error)
		GetStatus(ctx context.Context, dashboardID uint) (*types.VerificationStatus, error)
		AwaitingVerification(ctx context.Context) ([]*types.VerificationRecord, error)
	}

	verificationService struct {
		repository  database.VerificationRepository
		checker     dnscheck.Checker
		provisioner npm.Provisioner
		bus         eventbus.Bus
		locks       *misc.KeyedMutex
	}
)

func NewVerificationService(
	repository database.VerificationRepository,
	checker dnscheck.Checker,
	provisioner npm.Provisioner,
	bus eventbus.Bus) VerificationService {
	return &verificationService{
		repository:  repository,
		checker:     checker,
		provisioner: provisioner,
		bus:         bus,
		locks:       misc.NewKeyedMutex(),
	}
}

// VerificationTopic is the event bus identifier verification progress for a dashboard is sent on.
func VerificationTopic(dashboardID uint) string {
	return fmt.Sprintf("verification:%d", dashboardID)
}

func (v *verificationService) IssueToken(ctx context.Context, dashboardID uint, token, domain string) (*types.VerificationStatus, error) {
	domain = misc.NormalizeDomain(domain)
	token = strings.TrimSpace(token)
	if domain == "" || token == "" {
		return nil, types.ErrConfiguration("custom domain and verification token are required")
	}
	if !misc.IsFQDN(domain) {
		return nil, types.ErrConfiguration("invalid custom domain: " + domain)
	}

	unlock := v.locks.Lock(dashboardID)
	defer unlock()

	if err := v.repository.SetToken(ctx, dashboardID, token, domain); err != nil {
		return nil, storeError(err)
	}

	rec, err := v.repository.GetVerification(ctx, dashboardID)
	if err != nil {
		return nil, storeError(err)
	}

	logger.Info("verification token issued",
		zap.Uint("dashboard_id", dashboardID),
		zap.String("domain", domain))
	v.publish(dashboardID, eventbus.Info, StageIssued, rec.State(), "verification token issued for "+domain)
	return rec.Status(), nil
}

func (v *verificationService) Verify(ctx context.Context, dashboardID uint) (*types.VerificationResult, error) {
	unlock := v.locks.Lock(dashboardID)
	defer unlock()

	rec, err := v.repository.GetVerification(ctx, dashboardID)
	if err != nil {
		return nil, storeError(err)
	}

	if rec.CustomDomain == "" || rec.VerificationToken == "" {
		return nil, types.ErrConfiguration("custom domain or verification token not set")
	}
	domain := misc.NormalizeDomain(rec.CustomDomain)
	if !misc.IsFQDN(domain) {
		return nil, types.ErrConfiguration("invalid custom domain: " + rec.CustomDomain)
	}

	v.publish(dashboardID, eventbus.Info, StageResolving, rec.State(), "resolving TXT records for "+domain)
	check, err := v.checker.Check(ctx, domain, rec.VerificationToken)
	if err != nil {
		if types.IsKind(err, types.KindConfiguration) {
			return nil, err
		}
		if !types.IsKind(err, types.KindResolution) {
			err = types.NewError(types.KindResolution, "failed to resolve TXT records for "+domain, err)
		}

		logger.Warn("domain verification lookup failed",
			zap.Uint("dashboard_id", dashboardID),
			zap.String("domain", domain),
			zap.Error(err))
		if perr := v.setVerified(ctx, rec, false); perr != nil {
			return nil, perr
		}
		v.publish(dashboardID, eventbus.Complete, StageFailed, rec.State(), types.MessageOf(err))
		return nil, err
	}

	if err := v.setVerified(ctx, rec, check.Matched); err != nil {
		return nil, err
	}

	if !check.Matched {
		logger.Info("verification token not found in TXT records",
			zap.Uint("dashboard_id", dashboardID),
			zap.String("domain", domain),
			zap.Int("records", len(check.Records)))
		message := "no TXT record on " + domain + " contains the verification token"
		v.publish(dashboardID, eventbus.Complete, StageFailed, rec.State(), message)
		return resultOf(rec), types.NewError(types.KindVerificationFailed, message, nil)
	}

	if rec.IsProvisioned() {
		v.publish(dashboardID, eventbus.Complete, StageVerified, rec.State(), domain+" is verified")
		return resultOf(rec), nil
	}

	return v.provision(ctx, rec, domain)
}

func (v *verificationService) provision(ctx context.Context, rec *types.VerificationRecord, domain string) (*types.VerificationResult, error) {
	v.publish(rec.DashboardID, eventbus.Info, StageProvisioning, rec.State(), "registering "+domain+" with the reverse proxy")

	response, err := v.provisioner.RegisterHost(ctx, domain)
	if err != nil {
		if !types.IsKind(err, types.KindProvision) {
			err = types.NewError(types.KindProvision, "failed to register proxy host for "+domain, err)
		}
		logger.Error("proxy host registration failed",
			zap.Uint("dashboard_id", rec.DashboardID),
			zap.String("domain", domain),
			zap.Error(err))
		v.publish(rec.DashboardID, eventbus.Complete, StageFailed, rec.State(), types.MessageOf(err))
		return resultOf(rec), err
	}

	if err := v.repository.SetProvisioned(ctx, rec.DashboardID, rec.CustomDomain, response); err != nil {
		logger.Error("proxy host registered but not recorded",
			zap.Uint("dashboard_id", rec.DashboardID),
			zap.String("domain", domain),
			zap.ByteString("response", response),
			zap.Error(err))
		return nil, storeError(err)
	}

	rec.ProvisionedDomain = rec.CustomDomain
	rec.ProxyHostResponse = response
	logger.Info("custom domain verified",
		zap.Uint("dashboard_id", rec.DashboardID),
		zap.String("domain", domain))
	v.publish(rec.DashboardID, eventbus.Complete, StageVerified, rec.State(), domain+" is verified")
	return resultOf(rec), nil
}

func (v *verificationService) GetStatus(ctx context.Context, dashboardID uint) (*types.VerificationStatus, error) {
	rec, err := v.repository.GetVerification(ctx, dashboardID)
	if err != nil {
		return nil, storeError(err)
	}
	return rec.Status(), nil
}

func (v *verificationService) AwaitingVerification(ctx context.Context) ([]*types.VerificationRecord, error) {
	return v.repository.FindAwaitingVerification(ctx)
}

func (v *verificationService) setVerified(ctx context.Context, rec *types.VerificationRecord, verified bool) error {
	if err := v.repository.SetVerified(ctx, rec.DashboardID, rec.Pair(), verified); err != nil {
		return storeError(err)
	}
	rec.IsVerified = verified
	return nil
}

func (v *verificationService) publish(dashboardID uint, evType eventbus.Type, stage string, state types.VerificationState, message string) {
	if v.bus == nil {
		return
	}

	data, err := json.Marshal(types.VerificationEvent{
		DashboardID: dashboardID,
		Stage:       stage,
		State:       state,
		Message:     message,
	})
	if err != nil {
		return
	}
	v.bus.BroadcastWithData(VerificationTopic(dashboardID), evType, message, data)
}

func resultOf(rec *types.VerificationRecord) *types.VerificationResult {
	provisioned := rec.IsVerified && rec.IsProvisioned()
	result := &types.VerificationResult{
		IsVerified:    rec.IsVerified,
		IsProvisioned: provisioned,
		State:         rec.State(),
	}
	if provisioned {
		result.ProxyHostResponse = rec.ProxyHostResponse
	}
	return result
}

// storeError maps repository errors onto the error kinds callers see.
func storeError(err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return types.ErrNotFound("dashboard not found")
	case errors.Is(err, database.ErrStaleVerification):
		return types.ErrConflict("verification settings changed while verifying, verify again")
	default:
		return types.ErrInternal(err)
	}
}
