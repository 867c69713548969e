package manager

import (
	"accordee/internal/eventbus"
	"accordee/internal/misc"
	"accordee/internal/service"
	"accordee/internal/storage"
	"accordee/internal/types"
	"context"
	"strings"
)

type (
	// Manager is what the HTTP API talks to. It applies ownership rules on top of the services.
	Manager interface {
		Signup(ctx context.Context, params types.SignupParams) (*types.AuthResponse, error)
		Login(ctx context.Context, params types.LoginParams) (*types.AuthResponse, error)
		Authenticate(ctx context.Context, token string) (*types.User, error)

		CreateDashboard(ctx context.Context, owner *types.User, params types.CreateDashboardParams) (*types.Dashboard, error)
		ListDashboards(ctx context.Context, username string) ([]*types.Dashboard, error)
		GetPage(ctx context.Context, url string) (*types.Dashboard, error)
		UpdateDashboard(ctx context.Context, owner *types.User, id uint, params types.UpdateDashboardParams) (*types.Dashboard, error)
		DeleteDashboard(ctx context.Context, owner *types.User, id uint) error
		ReplaceSections(ctx context.Context, owner *types.User, id uint, params types.ReplaceSectionsParams) ([]*types.Section, error)

		IssueVerificationToken(ctx context.Context, owner *types.User, id uint, params types.IssueTokenParams) (*types.VerificationStatus, error)
		VerifyDomain(ctx context.Context, owner *types.User, id uint) (*types.VerificationResult, error)
		VerificationStatus(ctx context.Context, id uint) (*types.VerificationStatus, error)
		SubscribeVerification(ctx context.Context, owner *types.User, id uint) (<-chan eventbus.Event, func(), error)

		UploadMedia(ctx context.Context, owner *types.User, file types.File) (*types.Media, error)
		ListMedia(ctx context.Context, owner *types.User) ([]*types.Media, error)
		DeleteMedia(ctx context.Context, owner *types.User, id uint) error

		Ping(ctx context.Context) error
	}
)

type manager struct {
	userService         service.UserService
	dashboardService    service.DashboardService
	verificationService service.VerificationService
	mediaService        service.MediaService
	bus                 eventbus.Bus
	store               storage.Storage
	tokens              misc.RandomIdGenerator
}

func New(
	userService service.UserService,
	dashboardService service.DashboardService,
	verificationService service.VerificationService,
	mediaService service.MediaService,
	bus eventbus.Bus,
	store storage.Storage) Manager {
	return &manager{
		userService:         userService,
		dashboardService:    dashboardService,
		verificationService: verificationService,
		mediaService:        mediaService,
		bus:                 bus,
		store:               store,
		tokens:              misc.DefaultRandomIdGenerator,
	}
}

func (m *manager) Signup(ctx context.Context, params types.SignupParams) (*types.AuthResponse, error) {
	return m.userService.Signup(ctx, params)
}

func (m *manager) Login(ctx context.Context, params types.LoginParams) (*types.AuthResponse, error) {
	return m.userService.Login(ctx, params)
}

func (m *manager) Authenticate(ctx context.Context, token string) (*types.User, error) {
	return m.userService.Authenticate(ctx, token)
}

func (m *manager) CreateDashboard(ctx context.Context, owner *types.User, params types.CreateDashboardParams) (*types.Dashboard, error) {
	return m.dashboardService.Create(ctx, owner, params)
}

func (m *manager) ListDashboards(ctx context.Context, username string) ([]*types.Dashboard, error) {
	return m.dashboardService.ListByUsername(ctx, username)
}

func (m *manager) GetPage(ctx context.Context, url string) (*types.Dashboard, error) {
	return m.dashboardService.GetByURL(ctx, url)
}

func (m *manager) UpdateDashboard(ctx context.Context, owner *types.User, id uint, params types.UpdateDashboardParams) (*types.Dashboard, error) {
	return m.dashboardService.Update(ctx, owner, id, params)
}

func (m *manager) DeleteDashboard(ctx context.Context, owner *types.User, id uint) error {
	return m.dashboardService.Delete(ctx, owner, id)
}

func (m *manager) ReplaceSections(ctx context.Context, owner *types.User, id uint, params types.ReplaceSectionsParams) ([]*types.Section, error) {
	return m.dashboardService.ReplaceSections(ctx, owner, id, params)
}

// IssueVerificationToken generates a token when the client did not bring its own.
func (m *manager) IssueVerificationToken(ctx context.Context, owner *types.User, id uint, params types.IssueTokenParams) (*types.VerificationStatus, error) {
	if _, err := m.dashboardService.GetOwned(ctx, owner, id); err != nil {
		return nil, err
	}

	token := strings.TrimSpace(params.VerificationToken)
	if token == "" {
		generated, err := m.tokens.Generate(misc.VerificationTokenLength)
		if err != nil {
			return nil, types.ErrInternal(err)
		}
		token = generated
	}
	return m.verificationService.IssueToken(ctx, id, token, params.CustomDomain)
}

func (m *manager) VerifyDomain(ctx context.Context, owner *types.User, id uint) (*types.VerificationResult, error) {
	if _, err := m.dashboardService.GetOwned(ctx, owner, id); err != nil {
		return nil, err
	}
	return m.verificationService.Verify(ctx, id)
}

func (m *manager) VerificationStatus(ctx context.Context, id uint) (*types.VerificationStatus, error) {
	return m.verificationService.GetStatus(ctx, id)
}

func (m *manager) SubscribeVerification(ctx context.Context, owner *types.User, id uint) (<-chan eventbus.Event, func(), error) {
	if _, err := m.dashboardService.GetOwned(ctx, owner, id); err != nil {
		return nil, nil, err
	}
	ch, unsubscribe := m.bus.Register(service.VerificationTopic(id))
	return ch, unsubscribe, nil
}

func (m *manager) UploadMedia(ctx context.Context, owner *types.User, file types.File) (*types.Media, error) {
	return m.mediaService.Upload(ctx, owner, file)
}

func (m *manager) ListMedia(ctx context.Context, owner *types.User) ([]*types.Media, error) {
	return m.mediaService.List(ctx, owner)
}

func (m *manager) DeleteMedia(ctx context.Context, owner *types.User, id uint) error {
	return m.mediaService.Delete(ctx, owner, id)
}

func (m *manager) Ping(ctx context.Context) error {
	if m.store == nil {
		return nil
	}
	if err := m.store.Ping(ctx); err != nil {
		return types.NewError(types.KindInternal, "object storage unreachable", err)
	}
	return nil
}
