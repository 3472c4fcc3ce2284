package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vbonduro/estatedocs/internal/db"
	"github.com/vbonduro/estatedocs/internal/domain"
	"github.com/vbonduro/estatedocs/internal/remote"
	"github.com/vbonduro/estatedocs/internal/store"
)

// stubRemote is an in-memory remoteClient for tests.
type stubRemote struct {
	locators   map[domain.Estate][]domain.Locator
	listErr    error
	listCalls  int
	uploadErr  error
	uploaded   []byte
	exported   []domain.Locator
	exportURL  string
	mutateErr  error
	nextID     int
	loginUser  *domain.User
	loginErr   error
	loginAdmin *domain.Admin
}

func (s *stubRemote) CreateUser(_ context.Context, _, _ string) error { return s.mutateErr }

func (s *stubRemote) LoginUser(_ context.Context, _, _ string, _ domain.Estate) (*domain.User, error) {
	return s.loginUser, s.loginErr
}

func (s *stubRemote) LoginAdmin(_ context.Context, _, _ string) (*domain.Admin, error) {
	return s.loginAdmin, s.loginErr
}

func (s *stubRemote) ListLocators(_ context.Context, estate domain.Estate) ([]domain.Locator, error) {
	s.listCalls++
	if s.listErr != nil {
		return nil, s.listErr
	}
	out := append([]domain.Locator{}, s.locators[estate]...)
	return out, nil
}

func (s *stubRemote) AddLocator(_ context.Context, fields domain.LocatorFields) (*domain.Locator, error) {
	if s.mutateErr != nil {
		return nil, s.mutateErr
	}
	s.nextID++
	return &domain.Locator{
		ID: "new-" + string(rune('0'+s.nextID)), Estate: fields.Estate, Name: fields.Name,
		Address: fields.Address, LotArea: fields.LotArea, IndustryType: fields.IndustryType,
		Contracts: []domain.Contract{},
	}, nil
}

func (s *stubRemote) DeleteLocator(_ context.Context, _ string) error { return s.mutateErr }

func (s *stubRemote) UploadContract(_ context.Context, _ string, ct domain.ContractType, file remote.Attachment) (*domain.Contract, error) {
	data, err := io.ReadAll(file.Content)
	if err != nil {
		return nil, err
	}
	s.uploaded = data
	if s.uploadErr != nil {
		return nil, s.uploadErr
	}
	return &domain.Contract{ID: "C-new", Type: ct, FileName: file.FileName, DocumentURL: "https://drive/new/view?usp=sharing"}, nil
}

func (s *stubRemote) DeleteContract(_ context.Context, _ string) error { return s.mutateErr }

func (s *stubRemote) ExportToSheet(_ context.Context, locators []domain.Locator, _ domain.Estate) (string, error) {
	if s.mutateErr != nil {
		return "", s.mutateErr
	}
	s.exported = locators
	return s.exportURL, nil
}

func limaLocators() []domain.Locator {
	return []domain.Locator{
		{ID: "loc1", Estate: domain.EstateLima, Name: "Acme Foods", Contracts: []domain.Contract{
			{ID: "C1", Type: domain.ContractRA, FileName: "ra.pdf", DocumentURL: "https://drive/c1/view?usp=sharing"},
		}},
		{ID: "loc2", Estate: domain.EstateLima, Name: "Blue Steel", Contracts: []domain.Contract{}},
		{ID: "loc3", Estate: domain.EstateLima, Name: "acme logistics", Contracts: []domain.Contract{}},
	}
}

type fixture struct {
	svc       *PortalService
	remote    *stubRemote
	snapshots *store.SnapshotStore
	token     string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	d, err := db.OpenForTesting()
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close() })

	sess, err := store.NewSessionStore(d, time.Hour).Create(context.Background())
	require.NoError(t, err)

	rem := &stubRemote{
		locators:  map[domain.Estate][]domain.Locator{domain.EstateLima: limaLocators()},
		exportURL: "https://sheets/new",
	}
	snaps := store.NewSnapshotStore(d)
	return &fixture{
		svc:       NewPortalService(rem, snaps, slog.Default()),
		remote:    rem,
		snapshots: snaps,
		token:     sess.Token,
	}
}

func names(locs []domain.Locator) []string {
	out := make([]string, 0, len(locs))
	for _, l := range locs {
		out = append(out, l.Name)
	}
	return out
}

func TestLoadDashboard_Ready(t *testing.T) {
	f := newFixture(t)

	dash := f.svc.LoadDashboard(context.Background(), f.token, domain.EstateLima, "")
	assert.Equal(t, DashboardReady, dash.Status)
	assert.Equal(t, []string{"Acme Foods", "Blue Steel", "acme logistics"}, names(dash.Locators))
	assert.Equal(t, 3, dash.Total)
	assert.False(t, dash.Empty())

	snap, err := f.snapshots.Get(context.Background(), f.token)
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.Len(t, snap.Locators, 3)
}

func TestLoadDashboard_EmptyEstateIsNotAnError(t *testing.T) {
	f := newFixture(t)

	dash := f.svc.LoadDashboard(context.Background(), f.token, domain.EstateWestCebu, "")
	assert.Equal(t, DashboardReady, dash.Status)
	assert.True(t, dash.Empty())
	assert.Empty(t, dash.Message)
}

func TestLoadDashboard_Error(t *testing.T) {
	f := newFixture(t)
	f.remote.listErr = &remote.RemoteError{Action: remote.ActionGetLocators, Message: "Sheet not found"}

	dash := f.svc.LoadDashboard(context.Background(), f.token, domain.EstateLima, "")
	assert.Equal(t, DashboardError, dash.Status)
	assert.Equal(t, "Sheet not found", dash.Message)
	assert.Empty(t, dash.Locators)
}

func TestSearchDashboard_UsesSnapshot(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.svc.LoadDashboard(ctx, f.token, domain.EstateLima, "")
	require.Equal(t, 1, f.remote.listCalls)

	dash := f.svc.SearchDashboard(ctx, f.token, domain.EstateLima, "ACME")
	assert.Equal(t, DashboardReady, dash.Status)
	assert.Equal(t, []string{"Acme Foods", "acme logistics"}, names(dash.Locators))
	assert.Equal(t, 3, dash.Total)
	assert.Equal(t, 1, f.remote.listCalls, "search must not refetch")

	dash = f.svc.SearchDashboard(ctx, f.token, domain.EstateLima, "")
	assert.Equal(t, []string{"Acme Foods", "Blue Steel", "acme logistics"}, names(dash.Locators))
}

func TestSearchDashboard_DoesNotTrimTerm(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.svc.LoadDashboard(ctx, f.token, domain.EstateLima, "")

	dash := f.svc.SearchDashboard(ctx, f.token, domain.EstateLima, "steel ")
	assert.True(t, dash.Empty())

	dash = f.svc.SearchDashboard(ctx, f.token, domain.EstateLima, "acme ")
	assert.Equal(t, []string{"Acme Foods", "acme logistics"}, names(dash.Locators))
}

func TestSearchDashboard_FetchesWhenSnapshotIsForAnotherEstate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.svc.LoadDashboard(ctx, f.token, domain.EstateTari, "")
	dash := f.svc.SearchDashboard(ctx, f.token, domain.EstateLima, "steel")

	assert.Equal(t, 2, f.remote.listCalls)
	assert.Equal(t, []string{"Blue Steel"}, names(dash.Locators))
}

func TestExport_UsesFilteredCollection(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.svc.LoadDashboard(ctx, f.token, domain.EstateLima, "")

	u, err := f.svc.Export(ctx, f.token, domain.EstateLima, "acme")
	require.NoError(t, err)
	assert.Equal(t, "https://sheets/new", u)
	assert.Equal(t, []string{"Acme Foods", "acme logistics"}, names(f.remote.exported))
}

func TestExport_Failure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.svc.LoadDashboard(ctx, f.token, domain.EstateLima, "")
	f.remote.mutateErr = &remote.RemoteError{Message: "Drive full"}

	_, err := f.svc.Export(ctx, f.token, domain.EstateLima, "")
	assert.EqualError(t, err, "Drive full")
}

func TestUploadContract_AppendsToSnapshot(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.svc.LoadDashboard(ctx, f.token, domain.EstateLima, "")

	c, err := f.svc.UploadContract(ctx, f.token, domain.EstateLima, "loc2", domain.ContractLOI, remote.Attachment{
		FileName: "loi.pdf", Content: strings.NewReader("%PDF-1.4"),
	})
	require.NoError(t, err)
	assert.Equal(t, "C-new", c.ID)
	assert.Equal(t, []byte("%PDF-1.4"), f.remote.uploaded)

	snap, err := f.snapshots.Get(ctx, f.token)
	require.NoError(t, err)
	require.Len(t, snap.Locators[1].Contracts, 1)
	assert.Equal(t, "C-new", snap.Locators[1].Contracts[0].ID)
}

func TestUploadContract_RemoteFailureLeavesContractsUnchanged(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.svc.LoadDashboard(ctx, f.token, domain.EstateLima, "")
	f.remote.uploadErr = &remote.RemoteError{Action: remote.ActionUploadContract, Message: "quota exceeded"}

	_, err := f.svc.UploadContract(ctx, f.token, domain.EstateLima, "loc1", domain.ContractLOI, remote.Attachment{
		FileName: "loi.pdf", Content: strings.NewReader("%PDF-1.4"),
	})
	require.Error(t, err)
	assert.Equal(t, "quota exceeded", err.Error())

	snap, err := f.snapshots.Get(ctx, f.token)
	require.NoError(t, err)
	assert.Equal(t, limaLocators()[0].Contracts, snap.Locators[0].Contracts)
}

func TestDeleteContract_RemovesFromSnapshot(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.svc.LoadDashboard(ctx, f.token, domain.EstateLima, "")

	require.NoError(t, f.svc.DeleteContract(ctx, f.token, domain.EstateLima, "C1"))

	_, err := f.svc.Contract(ctx, f.token, domain.EstateLima, "C1")
	assert.ErrorIs(t, err, ErrContractNotFound)
}

func TestAddAndDeleteLocator(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.svc.LoadDashboard(ctx, f.token, domain.EstateLima, "")

	loc, err := f.svc.AddLocator(ctx, f.token, domain.LocatorFields{Estate: domain.EstateLima, Name: "Zeta Corp", LotArea: 10})
	require.NoError(t, err)

	dash := f.svc.SearchDashboard(ctx, f.token, domain.EstateLima, "zeta")
	require.Len(t, dash.Locators, 1)
	assert.Equal(t, loc.ID, dash.Locators[0].ID)

	require.NoError(t, f.svc.DeleteLocator(ctx, f.token, domain.EstateLima, "loc2"))
	dash = f.svc.SearchDashboard(ctx, f.token, domain.EstateLima, "")
	assert.Equal(t, []string{"Acme Foods", "acme logistics", "Zeta Corp"}, names(dash.Locators))
}

func TestDeleteLocator_FailureLeavesSnapshot(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.svc.LoadDashboard(ctx, f.token, domain.EstateLima, "")
	f.remote.mutateErr = errors.New("boom")

	assert.Error(t, f.svc.DeleteLocator(ctx, f.token, domain.EstateLima, "loc2"))
	dash := f.svc.SearchDashboard(ctx, f.token, domain.EstateLima, "")
	assert.Len(t, dash.Locators, 3)
}

func TestContract(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.svc.LoadDashboard(ctx, f.token, domain.EstateLima, "")

	c, err := f.svc.Contract(ctx, f.token, domain.EstateLima, "C1")
	require.NoError(t, err)
	assert.Equal(t, "ra.pdf", c.FileName)
}

func TestDiscard(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.svc.LoadDashboard(ctx, f.token, domain.EstateLima, "")

	require.NoError(t, f.svc.Discard(ctx, f.token))

	snap, err := f.snapshots.Get(ctx, f.token)
	require.NoError(t, err)
	assert.Nil(t, snap)
}

func TestLoginUser(t *testing.T) {
	f := newFixture(t)
	f.remote.loginUser = &domain.User{SessionID: "abc", Email: "a@x.com"}

	u, err := f.svc.LoginUser(context.Background(), "a@x.com", "pw", domain.EstateLima)
	require.NoError(t, err)
	assert.Equal(t, "abc", u.SessionID)

	f.remote.loginErr = &remote.RemoteError{Message: "Invalid credentials"}
	_, err = f.svc.LoginUser(context.Background(), "a@x.com", "bad", domain.EstateLima)
	assert.EqualError(t, err, "Invalid credentials")
}

func TestRegister(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.svc.Register(context.Background(), "a@x.com", "pw"))

	f.remote.mutateErr = &remote.RemoteError{Message: "Email already registered."}
	assert.EqualError(t, f.svc.Register(context.Background(), "a@x.com", "pw"), "Email already registered.")
}
