package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"marketplace-settlement/internal/service"
)

// httpError maps service sentinels to HTTP statuses. Anything unrecognized
// surfaces as an opaque 500; echo's error handler logs it.
func httpError(err error) error {
	switch {
	case errors.Is(err, service.ErrEmptyCart),
		errors.Is(err, service.ErrInvalidItems),
		errors.Is(err, service.ErrInvalidHoldDays),
		errors.Is(err, service.ErrInvalidSchedule),
		errors.Is(err, service.ErrNoPayoutAccount),
		errors.Is(err, service.ErrBadSignature):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrAlreadyReleased),
		errors.Is(err, service.ErrPaymentNotSucceeded),
		errors.Is(err, service.ErrPayoutNotRetriable):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrOrderNotFound),
		errors.Is(err, service.ErrPayoutNotFound),
		errors.Is(err, service.ErrSellerNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	default:
		return err
	}
}
