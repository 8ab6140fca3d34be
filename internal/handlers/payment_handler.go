package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"smartentrance/internal/api/middleware"
	"smartentrance/internal/payments"
	"smartentrance/internal/selection"
	"smartentrance/internal/services"
)

type PaymentHandler struct{}

func NewPaymentHandler() *PaymentHandler {
	return &PaymentHandler{}
}

// PaymentOutcome is the localized interpretation of a card result.
type PaymentOutcome struct {
	payments.Outcome
	Message string `json:"message"`
}

// Record books a cash, bank or card payment against a unit of the scoped building
// @Summary Record payment
// @Tags payments
// @Accept json
// @Produce json
// @Param request body services.RecordPaymentRequest true "Payment"
// @Success 201 {object} models.Transaction
// @Failure 400 {object} middleware.ErrorBody "No scope or validation error"
// @Router /app/payments [post]
func (h *PaymentHandler) Record(c echo.Context) error {
	var req services.RecordPaymentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	if _, err := scopedBuilding(c); err != nil {
		return err
	}

	tx, err := middleware.GetServices(c).Transactions.RecordPayment(c.Request().Context(), req)
	if err != nil {
		return backendError(c, err)
	}
	return c.JSON(http.StatusCreated, tx)
}

// CardIntent asks the backend for the client secret of a card payment. The unit
// defaults to the tab's unit.
// @Summary Start card payment
// @Tags payments
// @Accept json
// @Produce json
// @Param request body services.CardIntentRequest true "Amount"
// @Success 200 {object} models.CardIntent
// @Router /app/payments/card/intent [post]
func (h *PaymentHandler) CardIntent(c echo.Context) error {
	var req services.CardIntentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body: "+err.Error())
	}
	if req.UnitID == 0 {
		if unit := selection.UnitOf(middleware.CurrentScope(c)); unit != nil {
			req.UnitID = unit.UnitID
		}
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	intent, err := middleware.GetServices(c).Transactions.CreateCardIntent(c.Request().Context(), req)
	if err != nil {
		return backendError(c, err)
	}
	return c.JSON(http.StatusOK, intent)
}

// CardResult maps what the payment element reported to a user-facing message
// @Summary Card payment result
// @Tags payments
// @Accept json
// @Produce json
// @Param request body payments.Result true "Widget result"
// @Success 200 {object} PaymentOutcome
// @Router /app/payments/card/result [post]
func (h *PaymentHandler) CardResult(c echo.Context) error {
	var res payments.Result
	if err := bindAndValidate(c, &res); err != nil {
		return err
	}

	outcome := payments.Describe(res)
	return c.JSON(http.StatusOK, PaymentOutcome{
		Outcome: outcome,
		Message: middleware.GetPrinter(c).T(outcome.MessageKey),
	})
}
