package metrics

import apperrors "stowaway/pkg/errors"

// OutcomeOf maps a service error to an outcome label.
func OutcomeOf(err error) string {
	if err == nil {
		return OutcomeSuccess
	}
	switch apperrors.AsAppError(err).Code {
	case apperrors.CodeValidation, apperrors.CodeInvalidInput:
		return OutcomeValidation
	case apperrors.CodeConflict:
		return OutcomeConflict
	case apperrors.CodeNotFound:
		return OutcomeNotFound
	case apperrors.CodeForbidden, apperrors.CodeUnauthorized:
		return OutcomeUnauthorized
	default:
		return OutcomeError
	}
}
