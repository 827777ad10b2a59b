package service

import (
	"context"
	"errors"
	"fmt"

	reservationserrors "stowaway/internal/reservations/errors"
	unitserrors "stowaway/internal/units/errors"
	"stowaway/internal/units/repository"
	"stowaway/internal/units/validator"
	"stowaway/pkg/config"
	apperrors "stowaway/pkg/errors"
	"stowaway/pkg/identity"
	"stowaway/pkg/metrics"
	"stowaway/pkg/model"
	"stowaway/pkg/sanitizer"
	"stowaway/pkg/validation"

	"go.mongodb.org/mongo-driver/mongo"
)

type StorageUnitService interface {
	ListActive(ctx context.Context) ([]*model.StorageUnit, error)
	ListAll(ctx context.Context) ([]*model.StorageUnit, error)
	GetByID(ctx context.Context, id string) (*model.StorageUnit, error)
	GetDetails(ctx context.Context, id string, requester identity.Identity) (*model.StorageUnitDetails, error)
	Create(ctx context.Context, input *model.StorageUnitInput, requester identity.Identity) (*model.StorageUnit, error)
	Update(ctx context.Context, id string, input *model.StorageUnitInput, requester identity.Identity) (*model.StorageUnit, error)
	Delete(ctx context.Context, id string, requester identity.Identity) error
}

// ReservationStore is the slice of the reservation store the catalog needs.
type ReservationStore interface {
	FindByUnit(ctx context.Context, unitID string) ([]*model.Reservation, error)
	CountByUnit(ctx context.Context, unitID string) (int64, error)
	DeleteByUnit(ctx context.Context, unitID string) (int64, error)
}

// UnitLocker serialises deletes with reservation writes on the same unit.
type UnitLocker interface {
	Acquire(ctx context.Context, unitID string) (owner string, err error)
	Release(ctx context.Context, unitID, owner string) error
}

type Recorder interface {
	RecordUnit(operation, outcome string)
}

type storageUnitService struct {
	repo         repository.StorageUnitRepository
	reservations ReservationStore
	locks        UnitLocker
	validator    *validator.StorageUnitValidator
	recorder     Recorder
	cfg          *config.Config
}

func NewStorageUnitService(
	repo repository.StorageUnitRepository,
	reservations ReservationStore,
	locks UnitLocker,
	validator *validator.StorageUnitValidator,
	recorder Recorder,
	cfg *config.Config,
) StorageUnitService {
	return &storageUnitService{
		repo:         repo,
		reservations: reservations,
		locks:        locks,
		validator:    validator,
		recorder:     recorder,
		cfg:          cfg,
	}
}

func (s *storageUnitService) ListActive(ctx context.Context) ([]*model.StorageUnit, error) {
	units, err := s.repo.FindActive(ctx)
	if err != nil {
		s.cfg.Log.Error("Failed to list active storage units", "error", err)
		return nil, apperrors.Internal("Failed to retrieve storage units", err)
	}
	return units, nil
}

func (s *storageUnitService) ListAll(ctx context.Context) ([]*model.StorageUnit, error) {
	units, err := s.repo.FindAll(ctx)
	if err != nil {
		s.cfg.Log.Error("Failed to list storage units", "error", err)
		return nil, apperrors.Internal("Failed to retrieve storage units", err)
	}
	return units, nil
}

func (s *storageUnitService) GetByID(ctx context.Context, id string) (*model.StorageUnit, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Storage unit ID cannot be empty")
	}

	unit, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.translateRepoError(err, id, "Failed to retrieve storage unit")
	}
	return unit, nil
}

// GetDetails attaches the unit's reservations for administrators only.
func (s *storageUnitService) GetDetails(ctx context.Context, id string, requester identity.Identity) (*model.StorageUnitDetails, error) {
	unit, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	details := &model.StorageUnitDetails{StorageUnit: unit}
	if !requester.IsAdmin {
		return details, nil
	}

	reservations, err := s.reservations.FindByUnit(ctx, id)
	if err != nil {
		s.cfg.Log.Error("Failed to list unit reservations", "unit_id", id, "error", err)
		return nil, apperrors.Internal("Failed to retrieve unit reservations", err)
	}
	details.Reservations = reservations
	return details, nil
}

func (s *storageUnitService) Create(ctx context.Context, input *model.StorageUnitInput, requester identity.Identity) (unit *model.StorageUnit, err error) {
	defer func() { s.record("create", err) }()

	if err := requireAdmin(requester); err != nil {
		return nil, err
	}
	if input == nil {
		return nil, apperrors.InvalidInput("Storage unit input is required")
	}

	unit = &model.StorageUnit{IsActive: true}
	applyInput(unit, input)
	if err := s.validate(unit); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, unit); err != nil {
		s.cfg.Log.Error("Failed to create storage unit", "error", err)
		return nil, apperrors.Internal("Failed to create storage unit", err)
	}

	s.cfg.Log.Info("Storage unit created successfully",
		"id", unit.ID,
		"name", unit.Name,
		"monthly_price", unit.MonthlyPrice.String(),
		"by", requester.UserID,
	)
	return unit, nil
}

// Update replaces the editable fields. A missing is_active keeps the current value.
func (s *storageUnitService) Update(ctx context.Context, id string, input *model.StorageUnitInput, requester identity.Identity) (unit *model.StorageUnit, err error) {
	defer func() { s.record("update", err) }()

	if err := requireAdmin(requester); err != nil {
		return nil, err
	}
	if input == nil {
		return nil, apperrors.InvalidInput("Storage unit input is required")
	}

	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	merged := *existing
	applyInput(&merged, input)
	if err := s.validate(&merged); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, id, &merged); err != nil {
		return nil, s.translateRepoError(err, id, "Failed to update storage unit")
	}

	s.cfg.Log.Info("Storage unit updated successfully", "id", id, "by", requester.UserID)
	return &merged, nil
}

// Delete removes a unit according to the configured UnitDeletePolicy.
func (s *storageUnitService) Delete(ctx context.Context, id string, requester identity.Identity) (err error) {
	defer func() { s.record("delete", err) }()

	if err := requireAdmin(requester); err != nil {
		return err
	}
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}

	owner, lockErr := s.locks.Acquire(ctx, id)
	if lockErr != nil {
		if errors.Is(lockErr, reservationserrors.ErrLockBusy) {
			s.cfg.Log.Warn("Unit lock wait timed out", "id", id)
			return apperrors.Internal("Storage unit is busy, please retry", lockErr)
		}
		s.cfg.Log.Error("Failed to acquire unit lock", "id", id, "error", lockErr)
		return apperrors.Internal("Failed to delete storage unit", lockErr)
	}
	defer func() {
		if err := s.locks.Release(context.WithoutCancel(ctx), id, owner); err != nil {
			s.cfg.Log.Warn("Failed to release unit lock", "id", id, "error", err)
		}
	}()

	var removed int64
	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		switch s.cfg.UnitDeletePolicy {
		case config.UnitDeleteRestrict:
			count, err := s.reservations.CountByUnit(sessCtx, id)
			if err != nil {
				return apperrors.Internal("Failed to check unit reservations", err)
			}
			if count > 0 {
				return apperrors.Conflict(fmt.Sprintf("Storage unit has %d reservation(s) and cannot be deleted", count))
			}
		default:
			n, err := s.reservations.DeleteByUnit(sessCtx, id)
			if err != nil {
				return apperrors.Internal("Failed to delete unit reservations", err)
			}
			removed = n
		}

		if err := s.repo.Delete(sessCtx, id); err != nil {
			return s.translateRepoError(err, id, "Failed to delete storage unit")
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Warn("Failed to delete storage unit", "id", id, "error", err)
		return err
	}

	s.cfg.Log.Info("Storage unit deleted successfully",
		"id", id,
		"policy", s.cfg.UnitDeletePolicy,
		"reservations_removed", removed,
		"by", requester.UserID,
	)
	return nil
}

// --- Helpers ---

func requireAdmin(requester identity.Identity) error {
	if !requester.Authenticated() {
		return apperrors.Unauthorized("Authentication required")
	}
	if !requester.IsAdmin {
		return apperrors.AccessDenied()
	}
	return nil
}

func applyInput(unit *model.StorageUnit, input *model.StorageUnitInput) {
	unit.Name = sanitizer.NormalizeName(input.Name)
	unit.Size = sanitizer.NormalizeSize(input.Size)
	unit.MonthlyPrice = input.MonthlyPrice
	if input.IsActive != nil {
		unit.IsActive = *input.IsActive
	}
}

func (s *storageUnitService) validate(unit *model.StorageUnit) error {
	if err := s.validator.Validate(unit); err != nil {
		s.cfg.Log.Warn("Storage unit validation failed", "error", err)
		var fieldErrs validation.FieldErrors
		if errors.As(err, &fieldErrs) {
			return apperrors.ValidationFields("Storage unit validation failed", fieldErrs.Map())
		}
		return apperrors.Validation("Storage unit validation failed", map[string]any{"error": err.Error()})
	}
	return nil
}

func (s *storageUnitService) translateRepoError(err error, id, message string) error {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	if errors.Is(err, unitserrors.ErrNotFound) {
		return apperrors.NotFoundWithID("Storage unit", id)
	}
	if errors.Is(err, unitserrors.ErrInvalidID) {
		return apperrors.NotFoundWithID("Storage unit", id)
	}
	s.cfg.Log.Error(message, "id", id, "error", err)
	return apperrors.Internal(message, err)
}

func (s *storageUnitService) record(operation string, err error) {
	if s.recorder != nil {
		s.recorder.RecordUnit(operation, metrics.OutcomeOf(err))
	}
}
