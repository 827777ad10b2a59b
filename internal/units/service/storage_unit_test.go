package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	reservationserrors "stowaway/internal/reservations/errors"
	unitserrors "stowaway/internal/units/errors"
	"stowaway/internal/units/validator"
	"stowaway/pkg/config"
	mongotx "stowaway/pkg/db/mongo"
	apperrors "stowaway/pkg/errors"
	"stowaway/pkg/identity"
	"stowaway/pkg/logger"
	"stowaway/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ────────────────────────────────────────────────
// In-memory storage for testing
// ────────────────────────────────────────────────

type memoryUnitRepository struct {
	units  map[string]*model.StorageUnit
	nextID int
}

func newMemoryUnitRepository(units ...*model.StorageUnit) *memoryUnitRepository {
	repo := &memoryUnitRepository{units: map[string]*model.StorageUnit{}}
	for _, u := range units {
		_ = repo.Create(context.Background(), u)
	}
	return repo
}

func (m *memoryUnitRepository) Create(_ context.Context, unit *model.StorageUnit) error {
	m.nextID++
	unit.ID = fmt.Sprintf("%024x", m.nextID)
	copied := *unit
	m.units[unit.ID] = &copied
	return nil
}

func (m *memoryUnitRepository) FindByID(_ context.Context, id string) (*model.StorageUnit, error) {
	if len(id) != 24 {
		return nil, unitserrors.ErrInvalidID
	}
	unit, ok := m.units[id]
	if !ok {
		return nil, unitserrors.ErrNotFound
	}
	copied := *unit
	return &copied, nil
}

func (m *memoryUnitRepository) FindByIDs(_ context.Context, ids []string) (map[string]*model.StorageUnit, error) {
	result := map[string]*model.StorageUnit{}
	for _, id := range ids {
		if unit, ok := m.units[id]; ok {
			result[id] = unit
		}
	}
	return result, nil
}

func (m *memoryUnitRepository) sorted(filter func(*model.StorageUnit) bool) []*model.StorageUnit {
	var units []*model.StorageUnit
	for _, u := range m.units {
		if filter(u) {
			units = append(units, u)
		}
	}
	sort.Slice(units, func(i, j int) bool { return units[i].MonthlyPrice < units[j].MonthlyPrice })
	return units
}

func (m *memoryUnitRepository) FindAll(context.Context) ([]*model.StorageUnit, error) {
	return m.sorted(func(*model.StorageUnit) bool { return true }), nil
}

func (m *memoryUnitRepository) FindActive(context.Context) ([]*model.StorageUnit, error) {
	return m.sorted(func(u *model.StorageUnit) bool { return u.IsActive }), nil
}

func (m *memoryUnitRepository) Update(_ context.Context, id string, unit *model.StorageUnit) error {
	if _, ok := m.units[id]; !ok {
		return unitserrors.ErrNotFound
	}
	copied := *unit
	m.units[id] = &copied
	return nil
}

func (m *memoryUnitRepository) Delete(_ context.Context, id string) error {
	if _, ok := m.units[id]; !ok {
		return unitserrors.ErrNotFound
	}
	delete(m.units, id)
	return nil
}

func (m *memoryUnitRepository) Count(context.Context) (int64, error) {
	return int64(len(m.units)), nil
}

func (m *memoryUnitRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return mongotx.InlineTransaction(ctx, fn)
}

type mockReservationStore struct {
	byUnit map[string][]*model.Reservation
}

func (m *mockReservationStore) FindByUnit(_ context.Context, unitID string) ([]*model.Reservation, error) {
	return m.byUnit[unitID], nil
}

func (m *mockReservationStore) CountByUnit(_ context.Context, unitID string) (int64, error) {
	return int64(len(m.byUnit[unitID])), nil
}

func (m *mockReservationStore) DeleteByUnit(_ context.Context, unitID string) (int64, error) {
	n := int64(len(m.byUnit[unitID]))
	delete(m.byUnit, unitID)
	return n, nil
}

type mockRecorder struct {
	calls []string
}

func (m *mockRecorder) RecordUnit(operation, outcome string) {
	m.calls = append(m.calls, operation+":"+outcome)
}

var (
	admin = identity.Identity{UserID: "admin-1", IsAdmin: true}
	user  = identity.Identity{UserID: "user-1"}
)

// memoryLocks gives each unit a one-slot semaphore.
type memoryLocks struct {
	mu    sync.Mutex
	slots map[string]chan struct{}
	busy  bool
}

func (l *memoryLocks) slot(unitID string) chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.slots == nil {
		l.slots = map[string]chan struct{}{}
	}
	if _, ok := l.slots[unitID]; !ok {
		l.slots[unitID] = make(chan struct{}, 1)
	}
	return l.slots[unitID]
}

func (l *memoryLocks) Acquire(ctx context.Context, unitID string) (string, error) {
	if l.busy {
		return "", reservationserrors.ErrLockBusy
	}
	select {
	case l.slot(unitID) <- struct{}{}:
		return "owner-" + unitID, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (l *memoryLocks) Release(_ context.Context, unitID, _ string) error {
	<-l.slot(unitID)
	return nil
}

func newTestService(t *testing.T, policy config.UnitDeletePolicy, units ...*model.StorageUnit) (StorageUnitService, *memoryUnitRepository, *mockReservationStore, *mockRecorder) {
	svc, repo, reservations, recorder, _ := newLockedTestService(t, policy, units...)
	return svc, repo, reservations, recorder
}

func newLockedTestService(t *testing.T, policy config.UnitDeletePolicy, units ...*model.StorageUnit) (StorageUnitService, *memoryUnitRepository, *mockReservationStore, *mockRecorder, *memoryLocks) {
	t.Helper()
	log := logger.Discard()
	cfg := &config.Config{Log: log, UnitDeletePolicy: policy}
	repo := newMemoryUnitRepository(units...)
	reservations := &mockReservationStore{byUnit: map[string][]*model.Reservation{}}
	recorder := &mockRecorder{}
	locks := &memoryLocks{}
	svc := NewStorageUnitService(repo, reservations, locks, validator.NewStorageUnitValidator(log), recorder, cfg)
	return svc, repo, reservations, recorder, locks
}

func boolPtr(b bool) *bool { return &b }

// ────────────────────────────────────────────────
// Tests
// ────────────────────────────────────────────────

func TestList_OrderedByPrice(t *testing.T) {
	svc, _, _, _ := newTestService(t, config.UnitDeleteCascade,
		&model.StorageUnit{Name: "Large Unit C", Size: "10x10", MonthlyPrice: 12999, IsActive: true},
		&model.StorageUnit{Name: "Small Locker A", Size: "5x5", MonthlyPrice: 3999, IsActive: true},
		&model.StorageUnit{Name: "Retired", Size: "5x10", MonthlyPrice: 1000, IsActive: false},
	)

	all, err := svc.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "Retired", all[0].Name)

	active, err := svc.ListActive(context.Background())
	require.NoError(t, err)
	require.Len(t, active, 2)
	assert.Equal(t, "Small Locker A", active[0].Name)
	assert.Equal(t, "Large Unit C", active[1].Name)
}

func TestCreate_AdminOnly(t *testing.T) {
	svc, _, _, recorder := newTestService(t, config.UnitDeleteCascade)
	input := &model.StorageUnitInput{Name: "Unit", Size: "5x5", MonthlyPrice: 100}

	_, err := svc.Create(context.Background(), input, identity.Identity{})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeUnauthorized))

	_, err = svc.Create(context.Background(), input, user)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeForbidden))

	assert.Equal(t, []string{"create:unauthorized", "create:unauthorized"}, recorder.calls)
}

func TestCreate_NormalizesAndDefaultsActive(t *testing.T) {
	svc, repo, _, _ := newTestService(t, config.UnitDeleteCascade)

	unit, err := svc.Create(context.Background(), &model.StorageUnitInput{
		Name:         "  Small   Locker A ",
		Size:         "5 X 5",
		MonthlyPrice: model.MustParseMoney("39.99"),
	}, admin)

	require.NoError(t, err)
	assert.Equal(t, "Small Locker A", unit.Name)
	assert.Equal(t, "5x5", unit.Size)
	assert.True(t, unit.IsActive)
	assert.Equal(t, int64(3999), unit.MonthlyPrice.Cents())

	stored, err := repo.FindByID(context.Background(), unit.ID)
	require.NoError(t, err)
	assert.Equal(t, unit.Name, stored.Name)
}

func TestCreate_ValidationFields(t *testing.T) {
	svc, _, _, _ := newTestService(t, config.UnitDeleteCascade)

	_, err := svc.Create(context.Background(), &model.StorageUnitInput{Name: "   ", MonthlyPrice: -5}, admin)

	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))
	fields := apperrors.FieldErrors(err)
	assert.Contains(t, fields, "name")
	assert.Contains(t, fields, "size")
	assert.Contains(t, fields, "monthly_price")
}

func TestCreate_NegativePriceFromJSONIsValidationError(t *testing.T) {
	svc, repo, _, _ := newTestService(t, config.UnitDeleteCascade)

	var input model.StorageUnitInput
	require.NoError(t, json.Unmarshal([]byte(`{"name":"Promo","size":"5x5","monthly_price":-5}`), &input))

	_, err := svc.Create(context.Background(), &input, admin)

	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))
	fields := apperrors.FieldErrors(err)
	assert.Len(t, fields, 1)
	assert.Contains(t, fields, "monthly_price")
	assert.Empty(t, repo.units)
}

func TestUpdate_ReplacesFieldsAndKeepsActiveWhenOmitted(t *testing.T) {
	svc, _, _, _ := newTestService(t, config.UnitDeleteCascade,
		&model.StorageUnit{Name: "Unit", Size: "5x5", MonthlyPrice: 100, IsActive: false, CreatedAt: time.Unix(0, 0)},
	)
	id := fmt.Sprintf("%024x", 1)

	updated, err := svc.Update(context.Background(), id, &model.StorageUnitInput{Name: "Renamed", Size: "5x10", MonthlyPrice: 200}, admin)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)
	assert.False(t, updated.IsActive)
	assert.Equal(t, time.Unix(0, 0), updated.CreatedAt)

	updated, err = svc.Update(context.Background(), id, &model.StorageUnitInput{Name: "Renamed", Size: "5x10", MonthlyPrice: 200, IsActive: boolPtr(true)}, admin)
	require.NoError(t, err)
	assert.True(t, updated.IsActive)
}

func TestUpdate_NotFound(t *testing.T) {
	svc, _, _, _ := newTestService(t, config.UnitDeleteCascade)

	_, err := svc.Update(context.Background(), fmt.Sprintf("%024x", 99), &model.StorageUnitInput{Name: "A", Size: "5x5"}, admin)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))

	_, err = svc.Update(context.Background(), "bad", &model.StorageUnitInput{Name: "A", Size: "5x5"}, admin)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))
}

func TestGetDetails_ReservationsForAdminsOnly(t *testing.T) {
	svc, _, reservations, _ := newTestService(t, config.UnitDeleteCascade,
		&model.StorageUnit{Name: "Unit", Size: "5x5", MonthlyPrice: 100, IsActive: true},
	)
	id := fmt.Sprintf("%024x", 1)
	reservations.byUnit[id] = []*model.Reservation{{ID: "r1", UnitID: id, UserID: "user-2"}}

	details, err := svc.GetDetails(context.Background(), id, user)
	require.NoError(t, err)
	assert.Nil(t, details.Reservations)

	details, err = svc.GetDetails(context.Background(), id, admin)
	require.NoError(t, err)
	require.Len(t, details.Reservations, 1)
	assert.Equal(t, "r1", details.Reservations[0].ID)
}

func TestDelete_CascadeRemovesReservations(t *testing.T) {
	svc, repo, reservations, _ := newTestService(t, config.UnitDeleteCascade,
		&model.StorageUnit{Name: "Unit", Size: "5x5", MonthlyPrice: 100, IsActive: true},
	)
	id := fmt.Sprintf("%024x", 1)
	reservations.byUnit[id] = []*model.Reservation{{ID: "r1", UnitID: id}}

	require.NoError(t, svc.Delete(context.Background(), id, admin))

	count, _ := repo.Count(context.Background())
	assert.Zero(t, count)
	assert.Empty(t, reservations.byUnit[id])
}

func TestDelete_RestrictRefusesWhileReserved(t *testing.T) {
	svc, repo, reservations, recorder := newTestService(t, config.UnitDeleteRestrict,
		&model.StorageUnit{Name: "Unit", Size: "5x5", MonthlyPrice: 100, IsActive: true},
	)
	id := fmt.Sprintf("%024x", 1)
	reservations.byUnit[id] = []*model.Reservation{{ID: "r1", UnitID: id}}

	err := svc.Delete(context.Background(), id, admin)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeConflict))
	count, _ := repo.Count(context.Background())
	assert.Equal(t, int64(1), count)

	delete(reservations.byUnit, id)
	require.NoError(t, svc.Delete(context.Background(), id, admin))
	assert.Equal(t, []string{"delete:conflict", "delete:success"}, recorder.calls)
}

func TestDelete_NonAdmin(t *testing.T) {
	svc, _, _, _ := newTestService(t, config.UnitDeleteCascade,
		&model.StorageUnit{Name: "Unit", Size: "5x5", MonthlyPrice: 100, IsActive: true},
	)

	err := svc.Delete(context.Background(), fmt.Sprintf("%024x", 1), user)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeForbidden))
}

func TestDelete_WaitsForReservationWriteOnSameUnit(t *testing.T) {
	svc, repo, reservations, _, locks := newLockedTestService(t, config.UnitDeleteCascade,
		&model.StorageUnit{Name: "Unit", Size: "5x5", MonthlyPrice: 100, IsActive: true},
	)
	id := fmt.Sprintf("%024x", 1)

	// A reservation write on the unit is in progress.
	owner, err := locks.Acquire(context.Background(), id)
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		done <- svc.Delete(context.Background(), id, admin)
	}()

	select {
	case err := <-done:
		t.Fatalf("delete finished while the unit was locked: %v", err)
	case <-time.After(50 * time.Millisecond):
	}

	reservations.byUnit[id] = []*model.Reservation{{ID: "r1", UnitID: id}}
	require.NoError(t, locks.Release(context.Background(), id, owner))

	require.NoError(t, <-done)
	count, _ := repo.Count(context.Background())
	assert.Zero(t, count)
	assert.Empty(t, reservations.byUnit[id])
}

func TestDelete_LockBusy(t *testing.T) {
	svc, repo, _, _, locks := newLockedTestService(t, config.UnitDeleteCascade,
		&model.StorageUnit{Name: "Unit", Size: "5x5", MonthlyPrice: 100, IsActive: true},
	)
	locks.busy = true

	err := svc.Delete(context.Background(), fmt.Sprintf("%024x", 1), admin)

	assert.True(t, apperrors.HasCode(err, apperrors.CodeInternal))
	count, _ := repo.Count(context.Background())
	assert.Equal(t, int64(1), count)
}
