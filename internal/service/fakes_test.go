package service

import (
	"accordee/internal/database"
	"accordee/internal/dnscheck"
	"accordee/internal/types"
	"context"
	"encoding/json"
	"gorm.io/gorm"
	"strings"
	"sync"
)

type verifiedWrite struct {
	pair     types.VerificationPair
	verified bool
}

type fakeVerificationRepository struct {
	mu             sync.Mutex
	records        map[uint]*types.VerificationRecord
	verifiedWrites []verifiedWrite
	tokenWrites    int
}

func newFakeVerificationRepository(ids ...uint) *fakeVerificationRepository {
	f := &fakeVerificationRepository{records: make(map[uint]*types.VerificationRecord)}
	for _, id := range ids {
		f.records[id] = &types.VerificationRecord{DashboardID: id}
	}
	return f
}

func (f *fakeVerificationRepository) GetVerification(_ context.Context, dashboardID uint) (*types.VerificationRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.records[dashboardID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *rec
	return &cp, nil
}

func (f *fakeVerificationRepository) SetToken(_ context.Context, dashboardID uint, token, domain string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.records[dashboardID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	f.tokenWrites++
	rec.VerificationToken = token
	rec.CustomDomain = domain
	rec.IsVerified = false
	rec.VerifiedAt = nil
	return nil
}

func (f *fakeVerificationRepository) SetVerified(_ context.Context, dashboardID uint, expect types.VerificationPair, verified bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.records[dashboardID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if rec.Pair() != expect {
		return database.ErrStaleVerification
	}
	f.verifiedWrites = append(f.verifiedWrites, verifiedWrite{pair: expect, verified: verified})
	rec.IsVerified = verified
	return nil
}

func (f *fakeVerificationRepository) SetProvisioned(_ context.Context, dashboardID uint, domain string, response json.RawMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.records[dashboardID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if rec.CustomDomain != domain {
		return database.ErrStaleVerification
	}
	rec.ProvisionedDomain = domain
	rec.ProxyHostResponse = response
	return nil
}

func (f *fakeVerificationRepository) FindAwaitingVerification(_ context.Context) ([]*types.VerificationRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	result := make([]*types.VerificationRecord, 0)
	for _, rec := range f.records {
		state := rec.State()
		if state == types.StatePendingVerification || state == types.StateVerifiedUnprovisioned {
			cp := *rec
			result = append(result, &cp)
		}
	}
	return result, nil
}

func (f *fakeVerificationRepository) record(id uint) types.VerificationRecord {
	f.mu.Lock()
	defer f.mu.Unlock()
	return *f.records[id]
}

func (f *fakeVerificationRepository) writes() []verifiedWrite {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]verifiedWrite(nil), f.verifiedWrites...)
}

// fakeResolver serves TXT records from a map, or err for every name when set.
type fakeResolver struct {
	mu      sync.Mutex
	records map[string][]string
	err     error
	calls   int
	onCall  func()
}

func (f *fakeResolver) LookupTXT(_ context.Context, name string) ([]string, error) {
	f.mu.Lock()
	f.calls++
	hook := f.onCall
	records, err := f.records[strings.ToLower(name)], f.err
	f.mu.Unlock()

	if hook != nil {
		hook()
	}
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (f *fakeResolver) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeProvisioner struct {
	mu      sync.Mutex
	domains []string
	err     error
}

func (f *fakeProvisioner) RegisterHost(_ context.Context, domain string) (json.RawMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.domains = append(f.domains, domain)
	if f.err != nil {
		return nil, f.err
	}
	return json.RawMessage(`{"id":1,"domain_names":["` + domain + `"]}`), nil
}

func (f *fakeProvisioner) calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.domains...)
}

var _ dnscheck.Resolver = (*fakeResolver)(nil)
