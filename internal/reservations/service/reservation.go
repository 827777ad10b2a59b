package service

import (
	"context"
	"errors"
	"time"

	reservationserrors "stowaway/internal/reservations/errors"
	"stowaway/internal/reservations/events"
	"stowaway/internal/reservations/overlap"
	"stowaway/internal/reservations/repository"
	"stowaway/internal/reservations/validator"
	unitserrors "stowaway/internal/units/errors"
	"stowaway/pkg/calendar"
	"stowaway/pkg/config"
	apperrors "stowaway/pkg/errors"
	"stowaway/pkg/identity"
	"stowaway/pkg/metrics"
	"stowaway/pkg/model"
	"stowaway/pkg/validation"

	"go.mongodb.org/mongo-driver/mongo"
)

const (
	MsgConflict        = "That unit is already reserved for part of your selected dates. Try different dates or another unit."
	MsgUnitNotFound    = "Storage unit not found"
	MsgUnitUnavailable = "Storage unit is not available for booking"
	MsgUnitBusy        = "Storage unit is busy, please retry"
)

type ReservationService interface {
	Create(ctx context.Context, req *model.ReservationRequest, requester identity.Identity) (*model.Reservation, error)
	Edit(ctx context.Context, id string, req *model.ReservationRequest, requester identity.Identity) (*model.Reservation, error)
	Cancel(ctx context.Context, id string, requester identity.Identity) error
	ListMine(ctx context.Context, requester identity.Identity) ([]*model.ReservationDetails, error)
	ListAll(ctx context.Context, requester identity.Identity) ([]*model.ReservationDetails, error)
	GetDetails(ctx context.Context, id string, requester identity.Identity) (*model.ReservationDetails, error)
}

// UnitCatalog is the slice of the unit store reservations read from.
type UnitCatalog interface {
	FindByID(ctx context.Context, id string) (*model.StorageUnit, error)
	FindByIDs(ctx context.Context, ids []string) (map[string]*model.StorageUnit, error)
}

type Recorder interface {
	RecordReservation(operation, outcome string)
	RecordLockWait(duration time.Duration)
}

type reservationService struct {
	repo       repository.ReservationRepository
	locks      repository.UnitLockRepository
	units      UnitCatalog
	checker    *overlap.Checker
	validator  *validator.ReservationValidator
	normalizer *calendar.Normalizer
	publisher  events.Publisher
	recorder   Recorder
	cfg        *config.Config
}

func NewReservationService(
	repo repository.ReservationRepository,
	locks repository.UnitLockRepository,
	units UnitCatalog,
	validator *validator.ReservationValidator,
	normalizer *calendar.Normalizer,
	publisher events.Publisher,
	recorder Recorder,
	cfg *config.Config,
) ReservationService {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	return &reservationService{
		repo:       repo,
		locks:      locks,
		units:      units,
		checker:    overlap.NewChecker(repo),
		validator:  validator,
		normalizer: normalizer,
		publisher:  publisher,
		recorder:   recorder,
		cfg:        cfg,
	}
}

func (s *reservationService) Create(ctx context.Context, req *model.ReservationRequest, requester identity.Identity) (reservation *model.Reservation, err error) {
	defer func() { s.record("create", err) }()

	if !requester.Authenticated() {
		return nil, apperrors.Unauthorized("Authentication required")
	}
	if req == nil {
		return nil, apperrors.InvalidInput("Reservation input is required")
	}

	interval, err := s.validate(ctx, req, requester)
	if err != nil {
		return nil, err
	}

	reservation = &model.Reservation{
		UnitID:    interval.UnitID,
		StartUTC:  interval.StartUTC,
		EndUTC:    interval.EndUTC,
		UserID:    requester.UserID,
		Notes:     interval.Notes,
		CreatedAt: s.normalizer.Now().Truncate(time.Millisecond),
	}

	err = s.writeLocked(ctx, interval, "", func(sessCtx mongo.SessionContext) error {
		return s.repo.Create(sessCtx, reservation)
	})
	if err != nil {
		return nil, err
	}

	s.cfg.Log.Info("Reservation created successfully",
		"id", reservation.ID,
		"unit_id", reservation.UnitID,
		"user_id", reservation.UserID,
		"start_utc", reservation.StartUTC,
		"end_utc", reservation.EndUTC,
	)
	s.publish(ctx, events.TypeCreated, reservation, requester)
	return reservation, nil
}

// Edit moves an existing reservation. Its owner and created_at are kept.
func (s *reservationService) Edit(ctx context.Context, id string, req *model.ReservationRequest, requester identity.Identity) (reservation *model.Reservation, err error) {
	defer func() { s.record("edit", err) }()

	if req == nil {
		return nil, apperrors.InvalidInput("Reservation input is required")
	}

	existing, err := s.authorize(ctx, id, requester)
	if err != nil {
		return nil, err
	}

	interval, err := s.validate(ctx, req, requester)
	if err != nil {
		return nil, err
	}

	updated := *existing
	updated.UnitID = interval.UnitID
	updated.StartUTC = interval.StartUTC
	updated.EndUTC = interval.EndUTC
	updated.Notes = interval.Notes

	err = s.writeLocked(ctx, interval, existing.ID, func(sessCtx mongo.SessionContext) error {
		if err := s.repo.Update(sessCtx, &updated); err != nil {
			return s.translateRepoError(err, existing.ID, "Failed to update reservation")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.cfg.Log.Info("Reservation updated successfully",
		"id", updated.ID,
		"unit_id", updated.UnitID,
		"start_utc", updated.StartUTC,
		"end_utc", updated.EndUTC,
		"by", requester.UserID,
	)
	s.publish(ctx, events.TypeUpdated, &updated, requester)
	return &updated, nil
}

func (s *reservationService) Cancel(ctx context.Context, id string, requester identity.Identity) (err error) {
	defer func() { s.record("cancel", err) }()

	existing, err := s.authorize(ctx, id, requester)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, existing.ID); err != nil {
		return s.translateRepoError(err, id, "Failed to cancel reservation")
	}

	s.cfg.Log.Info("Reservation cancelled successfully", "id", id, "unit_id", existing.UnitID, "by", requester.UserID)
	s.publish(ctx, events.TypeCancelled, existing, requester)
	return nil
}

func (s *reservationService) ListMine(ctx context.Context, requester identity.Identity) ([]*model.ReservationDetails, error) {
	if !requester.Authenticated() {
		return nil, apperrors.Unauthorized("Authentication required")
	}

	reservations, err := s.repo.FindByOwner(ctx, requester.UserID)
	if err != nil {
		s.cfg.Log.Error("Failed to list reservations", "user_id", requester.UserID, "error", err)
		return nil, apperrors.Internal("Failed to retrieve reservations", err)
	}
	return s.join(ctx, reservations)
}

func (s *reservationService) ListAll(ctx context.Context, requester identity.Identity) ([]*model.ReservationDetails, error) {
	if !requester.Authenticated() {
		return nil, apperrors.Unauthorized("Authentication required")
	}
	if !requester.IsAdmin {
		return nil, apperrors.AccessDenied()
	}

	reservations, err := s.repo.FindAll(ctx)
	if err != nil {
		s.cfg.Log.Error("Failed to list all reservations", "error", err)
		return nil, apperrors.Internal("Failed to retrieve reservations", err)
	}
	return s.join(ctx, reservations)
}

func (s *reservationService) GetDetails(ctx context.Context, id string, requester identity.Identity) (*model.ReservationDetails, error) {
	reservation, err := s.authorize(ctx, id, requester)
	if err != nil {
		return nil, err
	}

	details, err := s.join(ctx, []*model.Reservation{reservation})
	if err != nil {
		return nil, err
	}
	return details[0], nil
}

// --- Helpers ---

// authorize loads a reservation and checks the caller may act on it.
// Missing reservations are reported before ownership.
func (s *reservationService) authorize(ctx context.Context, id string, requester identity.Identity) (*model.Reservation, error) {
	if !requester.Authenticated() {
		return nil, apperrors.Unauthorized("Authentication required")
	}
	if id == "" {
		return nil, apperrors.InvalidInput("Reservation ID cannot be empty")
	}

	reservation, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.translateRepoError(err, id, "Failed to retrieve reservation")
	}

	if !requester.CanAccess(reservation.UserID) {
		s.cfg.Log.Warn("Reservation access denied", "id", id, "user_id", requester.UserID)
		return nil, apperrors.AccessDenied()
	}
	return reservation, nil
}

// validate collects request field errors together with the unit checks.
func (s *reservationService) validate(ctx context.Context, req *model.ReservationRequest, requester identity.Identity) (*validator.Interval, error) {
	interval, err := s.validator.Validate(req)

	var fieldErrs validation.FieldErrors
	if err != nil && !errors.As(err, &fieldErrs) {
		return nil, apperrors.Internal("Failed to validate reservation", err)
	}

	if !fieldErrs.Has("unit_id") {
		if err := s.checkUnit(ctx, req.UnitID, requester, &fieldErrs); err != nil {
			return nil, err
		}
	}

	if err := fieldErrs.OrNil(); err != nil {
		return nil, apperrors.ValidationFields("Reservation validation failed", fieldErrs.Map())
	}
	return interval, nil
}

func (s *reservationService) checkUnit(ctx context.Context, unitID string, requester identity.Identity, fieldErrs *validation.FieldErrors) error {
	unit, err := s.units.FindByID(ctx, unitID)
	if err != nil {
		if errors.Is(err, unitserrors.ErrNotFound) || errors.Is(err, unitserrors.ErrInvalidID) {
			fieldErrs.Add("unit_id", MsgUnitNotFound)
			return nil
		}
		s.cfg.Log.Error("Failed to load storage unit", "unit_id", unitID, "error", err)
		return apperrors.Internal("Failed to retrieve storage unit", err)
	}

	if unit.IsActive {
		return nil
	}
	switch s.cfg.InactiveUnitPolicy {
	case config.InactiveUnitDeny:
		fieldErrs.Add("unit_id", MsgUnitUnavailable)
	case config.InactiveUnitAdminOnly:
		if !requester.IsAdmin {
			fieldErrs.Add("unit_id", MsgUnitUnavailable)
		}
	}
	return nil
}

// writeLocked holds the unit lock while the overlap check and write run in
// one transaction.
func (s *reservationService) writeLocked(ctx context.Context, interval *validator.Interval, excludeID string, write func(sessCtx mongo.SessionContext) error) error {
	waitStart := time.Now()
	owner, err := s.locks.Acquire(ctx, interval.UnitID)
	if s.recorder != nil {
		s.recorder.RecordLockWait(time.Since(waitStart))
	}
	if err != nil {
		if errors.Is(err, reservationserrors.ErrLockBusy) {
			s.cfg.Log.Warn("Unit lock wait timed out", "unit_id", interval.UnitID)
			return apperrors.Internal(MsgUnitBusy, err)
		}
		s.cfg.Log.Error("Failed to acquire unit lock", "unit_id", interval.UnitID, "error", err)
		return apperrors.Internal("Failed to save reservation", err)
	}
	defer func() {
		if err := s.locks.Release(context.WithoutCancel(ctx), interval.UnitID, owner); err != nil {
			s.cfg.Log.Warn("Failed to release unit lock", "unit_id", interval.UnitID, "error", err)
		}
	}()

	return s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		// The unit may have been deleted after validation; deletes take the
		// same lock, so this read is final for the duration of the write.
		if _, err := s.units.FindByID(sessCtx, interval.UnitID); err != nil {
			if errors.Is(err, unitserrors.ErrNotFound) || errors.Is(err, unitserrors.ErrInvalidID) {
				return apperrors.ValidationFields("Reservation validation failed", map[string]string{"unit_id": MsgUnitNotFound})
			}
			s.cfg.Log.Error("Failed to load storage unit", "unit_id", interval.UnitID, "error", err)
			return apperrors.Internal("Failed to retrieve storage unit", err)
		}

		conflict, err := s.checker.HasConflict(sessCtx, interval.UnitID, interval.StartUTC, interval.EndUTC, excludeID)
		if err != nil {
			s.cfg.Log.Error("Failed to check reservation overlap", "unit_id", interval.UnitID, "error", err)
			return apperrors.Internal("Failed to save reservation", err)
		}
		if conflict {
			s.cfg.Log.Info("Reservation rejected, dates overlap",
				"unit_id", interval.UnitID,
				"start_utc", interval.StartUTC,
				"end_utc", interval.EndUTC,
			)
			return apperrors.Conflict(MsgConflict)
		}
		if err := write(sessCtx); err != nil {
			var appErr *apperrors.AppError
			if errors.As(err, &appErr) {
				return appErr
			}
			s.cfg.Log.Error("Failed to save reservation", "unit_id", interval.UnitID, "error", err)
			return apperrors.Internal("Failed to save reservation", err)
		}
		return nil
	})
}

// join attaches each reservation's unit. A missing unit leaves Unit nil.
func (s *reservationService) join(ctx context.Context, reservations []*model.Reservation) ([]*model.ReservationDetails, error) {
	seen := make(map[string]struct{}, len(reservations))
	ids := make([]string, 0, len(reservations))
	for _, r := range reservations {
		if _, ok := seen[r.UnitID]; !ok {
			seen[r.UnitID] = struct{}{}
			ids = append(ids, r.UnitID)
		}
	}

	units, err := s.units.FindByIDs(ctx, ids)
	if err != nil {
		s.cfg.Log.Error("Failed to load reservation units", "error", err)
		return nil, apperrors.Internal("Failed to retrieve storage units", err)
	}

	details := make([]*model.ReservationDetails, 0, len(reservations))
	for _, r := range reservations {
		details = append(details, &model.ReservationDetails{Reservation: r, Unit: units[r.UnitID]})
	}
	return details, nil
}

func (s *reservationService) publish(ctx context.Context, eventType string, reservation *model.Reservation, actor identity.Identity) {
	event := events.NewReservationEvent(eventType, reservation, actor, s.normalizer.Now())
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.cfg.Log.Warn("Failed to publish reservation event", "type", eventType, "id", reservation.ID, "error", err)
	}
}

func (s *reservationService) translateRepoError(err error, id, message string) error {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	if errors.Is(err, reservationserrors.ErrNotFound) || errors.Is(err, reservationserrors.ErrInvalidID) {
		return apperrors.NotFoundWithID("Reservation", id)
	}
	s.cfg.Log.Error(message, "id", id, "error", err)
	return apperrors.Internal(message, err)
}

func (s *reservationService) record(operation string, err error) {
	if s.recorder != nil {
		s.recorder.RecordReservation(operation, metrics.OutcomeOf(err))
	}
}
