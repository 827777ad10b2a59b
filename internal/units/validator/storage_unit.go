package validator

import (
	"stowaway/pkg/logger"
	"stowaway/pkg/model"
	"stowaway/pkg/validation"

	"github.com/go-playground/validator/v10"
)

type StorageUnitValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewStorageUnitValidator(log *logger.Logger) *StorageUnitValidator {
	log.Info("Storage unit validator initialized successfully")

	return &StorageUnitValidator{
		validate: validation.New(),
		logger:   log,
	}
}

// Validate returns validation.FieldErrors keyed by JSON field name.
func (v *StorageUnitValidator) Validate(unit *model.StorageUnit) error {
	if err := validation.Struct(v.validate, unit); err != nil {
		return err
	}

	if unit.MonthlyPrice < 0 {
		return validation.FieldErrors{{Field: "monthly_price", Message: "monthly_price cannot be negative"}}
	}
	if unit.MonthlyPrice > model.MaxMonthlyPrice {
		return validation.FieldErrors{{Field: "monthly_price", Message: "monthly_price must be at most " + model.MaxMonthlyPrice.String()}}
	}

	return nil
}
