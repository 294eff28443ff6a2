package services

import (
	"errors"

	apperrors "attire-service/common/errors"
	"attire-service/models"
)

var (
	notFound = []error{
		models.ErrOrderNotFound,
		models.ErrCustomerNotFound,
		models.ErrItemNotFound,
		models.ErrNotificationMissing,
	}
	conflicts = []error{
		models.ErrInvalidTransition,
		models.ErrOrderCancelled,
		models.ErrDuplicateCustomer,
	}
	validation = []error{
		models.ErrNonPositiveAmount,
		models.ErrExceedsBalance,
		models.ErrNoValidItems,
		models.ErrBlankItemName,
		models.ErrNegativePrice,
		models.ErrTotalBelowPaid,
		models.ErrInvalidOrderType,
		models.ErrInvalidCourier,
		models.ErrReturnDateRequired,
		models.ErrReturnDateOnSale,
		models.ErrDepositOnSale,
		models.ErrNegativeDeposit,
		models.ErrNotRental,
		models.ErrNoDeposit,
		models.ErrBlankCustomerName,
	}
)

// mapError turns a domain sentinel into the matching HTTP error. Anything
// else is treated as a collaborator failure and reported with fallback.
func mapError(err error, fallback string) error {
	if err == nil {
		return nil
	}
	var appErr *apperrors.Error
	if errors.As(err, &appErr) {
		return appErr
	}
	switch {
	case isAny(err, notFound):
		return apperrors.NotFound(err)
	case isAny(err, conflicts):
		return apperrors.Conflict(err)
	case isAny(err, validation):
		return apperrors.BadRequest(err)
	}
	return apperrors.Internal(fallback, err)
}

func isAny(err error, targets []error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// Page is the pagination envelope shared by list endpoints.
type Page struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"total_pages"`
	HasMore    bool  `json:"has_more"`
}

func newPage(page, limit int, total int64) Page {
	totalPages := int64(0)
	if limit > 0 {
		totalPages = (total + int64(limit) - 1) / int64(limit)
	}
	return Page{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
		HasMore:    int64(page) < totalPages,
	}
}

func clampPage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	return page, limit
}
