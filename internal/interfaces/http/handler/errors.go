package handler

import (
	"errors"
	"fmt"

	"github.com/erp/marketsync/internal/domain/integration"
	"github.com/erp/marketsync/internal/domain/shared"
	"github.com/erp/marketsync/internal/infrastructure/scheduler"
)

var errSchedulerDisabled = shared.NewDomainError("CONFLICT", "Listing sync scheduler is disabled")

// toDomainError maps listing sync errors to coded domain errors.
// It returns nil for errors that have no client-facing meaning.
func toDomainError(err error) *shared.DomainError {
	var missing *integration.MissingRequiredFieldError
	switch {
	case errors.As(err, &missing):
		return shared.NewDomainError("MISSING_REQUIRED_FIELD",
			fmt.Sprintf("Required feed field %s cannot be derived", missing.Field))
	case errors.Is(err, integration.ErrRecordNotFound):
		return shared.NewDomainError(shared.ErrNotFound.Code, "Record not found")
	case errors.Is(err, integration.ErrInvalidSyncHead):
		return shared.NewDomainError(shared.ErrInvalidInput.Code, err.Error())
	case errors.Is(err, integration.ErrUnsupportedOperation):
		return shared.NewDomainError("UNSUPPORTED_OPERATION", err.Error())
	case errors.Is(err, scheduler.ErrRunInProgress):
		return shared.NewDomainError("CONFLICT", "A sync run is already in progress")
	default:
		return nil
	}
}
