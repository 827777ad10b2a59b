package service

import (
	"context"
	"errors"
	"time"

	"stowaway/pkg/config"
	apperrors "stowaway/pkg/errors"
	"stowaway/pkg/metrics"
	"stowaway/pkg/model"
	"stowaway/pkg/sanitizer"
	"stowaway/pkg/validation"

	"github.com/go-playground/validator/v10"
)

type ShippingService interface {
	Estimate(ctx context.Context, req *model.ShippingEstimateRequest) (*model.ShippingEstimate, error)
}

// RateLookup is implemented by usps.Client.
type RateLookup interface {
	PriorityRate(ctx context.Context, destZip string, ounces int) (model.Money, error)
}

type Recorder interface {
	RecordShippingLookup(outcome string, duration time.Duration)
}

type shippingService struct {
	rates    RateLookup
	validate *validator.Validate
	recorder Recorder
	cfg      *config.Config
}

func NewShippingService(rates RateLookup, recorder Recorder, cfg *config.Config) ShippingService {
	return &shippingService{
		rates:    rates,
		validate: validation.New(),
		recorder: recorder,
		cfg:      cfg,
	}
}

func (s *shippingService) Estimate(ctx context.Context, req *model.ShippingEstimateRequest) (*model.ShippingEstimate, error) {
	if req == nil {
		return nil, apperrors.InvalidInput("Shipping estimate input is required")
	}

	req.DestinationZip = sanitizer.NormalizeZip(req.DestinationZip)
	if err := validation.Struct(s.validate, req); err != nil {
		var fieldErrs validation.FieldErrors
		if errors.As(err, &fieldErrs) {
			return nil, apperrors.ValidationFields("Shipping estimate validation failed", fieldErrs.Map())
		}
		return nil, apperrors.Internal("Failed to validate shipping estimate", err)
	}

	ounces := model.WeightOunces(req.WeightLbs)

	start := time.Now()
	rate, err := s.rates.PriorityRate(ctx, req.DestinationZip, ounces)
	s.record(err, time.Since(start))
	if err != nil {
		s.cfg.Log.Warn("Shipping rate lookup failed",
			"destination_zip", req.DestinationZip,
			"ounces", ounces,
			"error", err,
		)
		return nil, apperrors.RateUnavailable(err)
	}

	s.cfg.Log.Info("Shipping rate estimated",
		"destination_zip", req.DestinationZip,
		"ounces", ounces,
		"rate", rate.String(),
	)
	return &model.ShippingEstimate{
		DestinationZip: req.DestinationZip,
		WeightLbs:      req.WeightLbs,
		WeightOunces:   ounces,
		Service:        model.ShippingServicePriority,
		Rate:           rate,
	}, nil
}

func (s *shippingService) record(err error, duration time.Duration) {
	if s.recorder == nil {
		return
	}
	outcome := metrics.OutcomeSuccess
	if err != nil {
		outcome = metrics.OutcomeError
	}
	s.recorder.RecordShippingLookup(outcome, duration)
}
