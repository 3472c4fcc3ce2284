package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/vbonduro/estatedocs/internal/domain"
	"github.com/vbonduro/estatedocs/internal/remote"
	"github.com/vbonduro/estatedocs/internal/store"
)

// remoteClient is the subset of remote.Client that PortalService requires.
type remoteClient interface {
	CreateUser(ctx context.Context, email, password string) error
	LoginUser(ctx context.Context, email, password string, estate domain.Estate) (*domain.User, error)
	LoginAdmin(ctx context.Context, email, password string) (*domain.Admin, error)
	ListLocators(ctx context.Context, estate domain.Estate) ([]domain.Locator, error)
	AddLocator(ctx context.Context, fields domain.LocatorFields) (*domain.Locator, error)
	DeleteLocator(ctx context.Context, locatorID string) error
	UploadContract(ctx context.Context, locatorID string, contractType domain.ContractType, file remote.Attachment) (*domain.Contract, error)
	DeleteContract(ctx context.Context, contractID string) error
	ExportToSheet(ctx context.Context, locators []domain.Locator, estate domain.Estate) (string, error)
}

// snapshotRepository is the subset of store.SnapshotStore that PortalService requires.
type snapshotRepository interface {
	Put(ctx context.Context, token string, estate domain.Estate, locators []domain.Locator) error
	Get(ctx context.Context, token string) (*store.Snapshot, error)
	Delete(ctx context.Context, token string) error
}

// ErrContractNotFound is returned when a contract id is not in the
// session's current locator collection.
var ErrContractNotFound = errors.New("contract not found")

// PortalService orchestrates the remote store and the per-session locator
// snapshot on behalf of the web handlers.
type PortalService struct {
	remote    remoteClient
	snapshots snapshotRepository
	logger    *slog.Logger
}

func NewPortalService(remote remoteClient, snapshots snapshotRepository, logger *slog.Logger) *PortalService {
	return &PortalService{remote: remote, snapshots: snapshots, logger: logger}
}

func (s *PortalService) Register(ctx context.Context, email, password string) error {
	if err := s.remote.CreateUser(ctx, email, password); err != nil {
		return err
	}
	s.logger.Info("user registered", "email", email)
	return nil
}

func (s *PortalService) LoginUser(ctx context.Context, email, password string, estate domain.Estate) (*domain.User, error) {
	user, err := s.remote.LoginUser(ctx, email, password, estate)
	if err != nil {
		s.logger.Info("user login rejected", "email", email, "estate", estate, "error", err)
		return nil, err
	}
	s.logger.Info("user logged in", "email", user.Email, "estate", estate)
	return user, nil
}

func (s *PortalService) LoginAdmin(ctx context.Context, email, password string) (*domain.Admin, error) {
	admin, err := s.remote.LoginAdmin(ctx, email, password)
	if err != nil {
		s.logger.Info("admin login rejected", "email", email, "error", err)
		return nil, err
	}
	s.logger.Info("admin logged in", "email", admin.Email)
	return admin, nil
}

type DashboardStatus string

const (
	DashboardLoading DashboardStatus = "loading"
	DashboardReady   DashboardStatus = "ready"
	DashboardError   DashboardStatus = "error"
)

// Dashboard is what the user dashboard renders for one estate.
type Dashboard struct {
	Status   DashboardStatus
	Estate   domain.Estate
	Term     string
	Locators []domain.Locator
	Total    int
	Message  string
}

// Empty reports whether a ready dashboard has nothing to show.
func (d *Dashboard) Empty() bool {
	return d.Status == DashboardReady && len(d.Locators) == 0
}

// LoadDashboard fetches the estate's locators afresh, replaces the session
// snapshot and returns the view filtered by term.
func (s *PortalService) LoadDashboard(ctx context.Context, token string, estate domain.Estate, term string) *Dashboard {
	locators, err := s.fetch(ctx, token, estate)
	if err != nil {
		return &Dashboard{Status: DashboardError, Estate: estate, Term: term, Message: remote.UserMessage(err)}
	}
	return readyDashboard(estate, term, locators)
}

// SearchDashboard filters the session snapshot by term without going back
// to the remote store, fetching only if no snapshot for estate is held.
func (s *PortalService) SearchDashboard(ctx context.Context, token string, estate domain.Estate, term string) *Dashboard {
	locators, err := s.current(ctx, token, estate)
	if err != nil {
		return &Dashboard{Status: DashboardError, Estate: estate, Term: term, Message: remote.UserMessage(err)}
	}
	return readyDashboard(estate, term, locators)
}

func readyDashboard(estate domain.Estate, term string, locators []domain.Locator) *Dashboard {
	return &Dashboard{
		Status:   DashboardReady,
		Estate:   estate,
		Term:     term,
		Locators: domain.FilterLocators(locators, term),
		Total:    len(locators),
	}
}

// Export sends the locators matching term to a new spreadsheet and returns
// its URL.
func (s *PortalService) Export(ctx context.Context, token string, estate domain.Estate, term string) (string, error) {
	locators, err := s.current(ctx, token, estate)
	if err != nil {
		return "", err
	}
	filtered := domain.FilterLocators(locators, term)
	u, err := s.remote.ExportToSheet(ctx, filtered, estate)
	if err != nil {
		return "", err
	}
	s.logger.Info("locators exported", "estate", estate, "count", len(filtered))
	return u, nil
}

// Contract looks up a contract in the session's current collection.
func (s *PortalService) Contract(ctx context.Context, token string, estate domain.Estate, contractID string) (*domain.Contract, error) {
	locators, err := s.current(ctx, token, estate)
	if err != nil {
		return nil, err
	}
	c, ok := domain.FindContract(locators, contractID)
	if !ok {
		return nil, ErrContractNotFound
	}
	return c, nil
}

func (s *PortalService) AddLocator(ctx context.Context, token string, fields domain.LocatorFields) (*domain.Locator, error) {
	loc, err := s.remote.AddLocator(ctx, fields)
	if err != nil {
		return nil, err
	}
	s.logger.Info("locator added", "estate", fields.Estate, "locator_id", loc.ID)
	s.updateSnapshot(ctx, token, fields.Estate, func(locs []domain.Locator) []domain.Locator {
		return append(locs, *loc)
	})
	return loc, nil
}

func (s *PortalService) DeleteLocator(ctx context.Context, token string, estate domain.Estate, locatorID string) error {
	if err := s.remote.DeleteLocator(ctx, locatorID); err != nil {
		return err
	}
	s.logger.Info("locator deleted", "estate", estate, "locator_id", locatorID)
	s.updateSnapshot(ctx, token, estate, func(locs []domain.Locator) []domain.Locator {
		out := locs[:0]
		for _, l := range locs {
			if l.ID != locatorID {
				out = append(out, l)
			}
		}
		return out
	})
	return nil
}

// UploadContract attaches file to a locator. The snapshot only changes once
// the remote store has accepted the document.
func (s *PortalService) UploadContract(ctx context.Context, token string, estate domain.Estate, locatorID string, contractType domain.ContractType, file remote.Attachment) (*domain.Contract, error) {
	contract, err := s.remote.UploadContract(ctx, locatorID, contractType, file)
	if err != nil {
		s.logger.Error("contract upload failed", "estate", estate, "locator_id", locatorID, "error", err)
		return nil, err
	}
	s.logger.Info("contract uploaded", "estate", estate, "locator_id", locatorID, "contract_id", contract.ID)
	s.updateSnapshot(ctx, token, estate, func(locs []domain.Locator) []domain.Locator {
		for i := range locs {
			if locs[i].ID == locatorID {
				locs[i].Contracts = append(locs[i].Contracts, *contract)
			}
		}
		return locs
	})
	return contract, nil
}

func (s *PortalService) DeleteContract(ctx context.Context, token string, estate domain.Estate, contractID string) error {
	if err := s.remote.DeleteContract(ctx, contractID); err != nil {
		return err
	}
	s.logger.Info("contract deleted", "estate", estate, "contract_id", contractID)
	s.updateSnapshot(ctx, token, estate, func(locs []domain.Locator) []domain.Locator {
		for i := range locs {
			kept := locs[i].Contracts[:0]
			for _, c := range locs[i].Contracts {
				if c.ID != contractID {
					kept = append(kept, c)
				}
			}
			locs[i].Contracts = kept
		}
		return locs
	})
	return nil
}

// Discard drops the session's snapshot, as happens when the user leaves the
// estate view.
func (s *PortalService) Discard(ctx context.Context, token string) error {
	return s.snapshots.Delete(ctx, token)
}

func (s *PortalService) fetch(ctx context.Context, token string, estate domain.Estate) ([]domain.Locator, error) {
	locators, err := s.remote.ListLocators(ctx, estate)
	if err != nil {
		s.logger.Error("list locators failed", "estate", estate, "error", err)
		return nil, err
	}
	if err := s.snapshots.Put(ctx, token, estate, locators); err != nil {
		return nil, fmt.Errorf("failed to store locators: %w", err)
	}
	s.logger.Debug("locators loaded", "estate", estate, "count", len(locators))
	return locators, nil
}

// current returns the session snapshot for estate, fetching it when absent
// or held for a different estate.
func (s *PortalService) current(ctx context.Context, token string, estate domain.Estate) ([]domain.Locator, error) {
	snap, err := s.snapshots.Get(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("failed to read locators: %w", err)
	}
	if snap != nil && snap.Estate == estate {
		return snap.Locators, nil
	}
	return s.fetch(ctx, token, estate)
}

// updateSnapshot applies fn to the held snapshot for estate. A missing
// snapshot is left missing; the next dashboard load fetches afresh.
func (s *PortalService) updateSnapshot(ctx context.Context, token string, estate domain.Estate, fn func([]domain.Locator) []domain.Locator) {
	snap, err := s.snapshots.Get(ctx, token)
	if err != nil {
		s.logger.Error("failed to read snapshot for update", "error", err)
		return
	}
	if snap == nil || snap.Estate != estate {
		return
	}
	if err := s.snapshots.Put(ctx, token, estate, fn(snap.Locators)); err != nil {
		s.logger.Error("failed to update snapshot", "error", err)
	}
}
