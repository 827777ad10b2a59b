package validator

import (
	"errors"
	"time"

	"stowaway/pkg/calendar"
	"stowaway/pkg/logger"
	"stowaway/pkg/model"
	"stowaway/pkg/sanitizer"
	"stowaway/pkg/validation"

	"github.com/go-playground/validator/v10"
)

const (
	MsgStartInPast    = "Start date cannot be in the past."
	MsgEndBeforeStart = "End date must be after start date."
)

// Interval is a validated request with its dates resolved to UTC instants.
type Interval struct {
	UnitID    string
	StartDate calendar.Date
	EndDate   calendar.Date
	StartUTC  time.Time
	EndUTC    time.Time
	Location  *time.Location
	Notes     string
}

type ReservationValidator struct {
	validate   *validator.Validate
	normalizer *calendar.Normalizer
	logger     *logger.Logger
}

func NewReservationValidator(normalizer *calendar.Normalizer, log *logger.Logger) *ReservationValidator {
	log.Info("Reservation validator initialized successfully")

	return &ReservationValidator{
		validate:   validation.New(),
		normalizer: normalizer,
		logger:     log,
	}
}

// Validate checks req and resolves its dates. All failing fields are reported
// together as validation.FieldErrors.
func (v *ReservationValidator) Validate(req *model.ReservationRequest) (*Interval, error) {
	req.UnitID = sanitizer.TrimAndNormalize(req.UnitID)
	req.StartDate = sanitizer.TrimAndNormalize(req.StartDate)
	req.EndDate = sanitizer.TrimAndNormalize(req.EndDate)
	req.TimeZone = sanitizer.TrimAndNormalize(req.TimeZone)
	req.Notes = sanitizer.NormalizeNotes(req.Notes)

	var fieldErrs validation.FieldErrors
	if err := validation.Struct(v.validate, req); err != nil {
		if !errors.As(err, &fieldErrs) {
			return nil, err
		}
	}

	loc, err := v.normalizer.Location(req.TimeZone)
	if err != nil {
		fieldErrs.Add("time_zone", "time_zone must be a valid IANA time zone")
		loc, _ = v.normalizer.Location("")
	}
	today := v.normalizer.Today(loc)

	start, startOK := v.parseDate(&fieldErrs, "start_date", req.StartDate)
	if startOK && start.Before(today) {
		fieldErrs.Add("start_date", MsgStartInPast)
	}

	end, endOK := v.parseDate(&fieldErrs, "end_date", req.EndDate)
	if startOK && endOK && !end.After(start) {
		fieldErrs.Add("end_date", MsgEndBeforeStart)
	}

	if err := fieldErrs.OrNil(); err != nil {
		v.logger.Debug("Reservation request rejected", "fields", fieldErrs.Map())
		return nil, err
	}

	return &Interval{
		UnitID:    req.UnitID,
		StartDate: start,
		EndDate:   end,
		StartUTC:  v.normalizer.ToUTC(start, loc),
		EndUTC:    v.normalizer.ToUTC(end, loc),
		Location:  loc,
		Notes:     req.Notes,
	}, nil
}

func (v *ReservationValidator) parseDate(fieldErrs *validation.FieldErrors, field, raw string) (calendar.Date, bool) {
	if fieldErrs.Has(field) {
		return calendar.Date{}, false
	}
	d, err := calendar.ParseDate(raw)
	if err != nil {
		fieldErrs.Add(field, field+" must be a date in YYYY-MM-DD format")
		return calendar.Date{}, false
	}
	return d, true
}
