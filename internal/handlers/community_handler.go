package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"smartentrance/internal/api/middleware"
	"smartentrance/internal/api/validator"
	"smartentrance/internal/models"
	"smartentrance/internal/selection"
	"smartentrance/internal/services"
	"smartentrance/internal/utils/logger"
)

// CommunityHandler covers the building's shared life: units, polls, notices and
// invitations.
type CommunityHandler struct {
	log *logger.Logger
}

func NewCommunityHandler() *CommunityHandler {
	return &CommunityHandler{log: logger.New("CommunityHandler")}
}

func pathID(c echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name)
	}
	return id, nil
}

// CreateUnit adds a unit to the scoped building
// @Summary Create unit
// @Tags units
// @Accept json
// @Produce json
// @Param request body services.CreateUnitRequest true "Unit"
// @Success 201 {object} models.UnitDetails
// @Router /app/units [post]
func (h *CommunityHandler) CreateUnit(c echo.Context) error {
	var req services.CreateUnitRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	buildingID, err := scopedBuilding(c)
	if err != nil {
		return err
	}

	unit, err := middleware.GetServices(c).Units.Create(c.Request().Context(), buildingID, req)
	if err != nil {
		return backendError(c, err)
	}
	return c.JSON(http.StatusCreated, unit)
}

// UpdateFee changes a unit's monthly fee
// @Summary Update monthly fee
// @Tags units
// @Accept json
// @Produce json
// @Param id path int true "Unit ID"
// @Param request body validator.UpdateFeeRequest true "Fee"
// @Success 200 {object} models.UnitDetails
// @Router /app/units/{id}/fee [put]
func (h *CommunityHandler) UpdateFee(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req validator.UpdateFeeRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	unit, err := middleware.GetServices(c).Units.UpdateFee(c.Request().Context(), id, req.MonthlyFee)
	if err != nil {
		return backendError(c, err)
	}
	return c.JSON(http.StatusOK, unit)
}

// CreatePoll opens a poll in the scoped building
// @Summary Create poll
// @Tags polls
// @Accept json
// @Produce json
// @Param request body services.CreatePollRequest true "Poll"
// @Success 201 {object} models.Poll
// @Router /app/polls [post]
func (h *CommunityHandler) CreatePoll(c echo.Context) error {
	var req services.CreatePollRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	buildingID, err := scopedBuilding(c)
	if err != nil {
		return err
	}

	poll, err := middleware.GetServices(c).Polls.Create(c.Request().Context(), buildingID, req)
	if err != nil {
		return backendError(c, err)
	}
	return c.JSON(http.StatusCreated, poll)
}

// Vote casts the user's vote
// @Summary Vote
// @Tags polls
// @Accept json
// @Produce json
// @Param id path int true "Poll ID"
// @Param request body services.VoteRequest true "Option"
// @Success 200 {object} models.Poll
// @Router /app/polls/{id}/votes [post]
func (h *CommunityHandler) Vote(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req services.VoteRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	poll, err := middleware.GetServices(c).Polls.Vote(c.Request().Context(), id, req)
	if err != nil {
		return backendError(c, err)
	}
	return c.JSON(http.StatusOK, poll)
}

// CreateNotice posts a notice or event to the scoped building
// @Summary Create notice
// @Tags notices
// @Accept json
// @Produce json
// @Param request body services.CreateNoticeRequest true "Notice"
// @Success 201 {object} models.Notice
// @Router /app/notices [post]
func (h *CommunityHandler) CreateNotice(c echo.Context) error {
	var req services.CreateNoticeRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	buildingID, err := scopedBuilding(c)
	if err != nil {
		return err
	}

	notice, err := middleware.GetServices(c).Notices.Create(c.Request().Context(), buildingID, req)
	if err != nil {
		return backendError(c, err)
	}
	return c.JSON(http.StatusCreated, notice)
}

// CreateInvitation invites a resident to a unit
// @Summary Invite resident
// @Tags invitations
// @Accept json
// @Produce json
// @Param request body services.CreateInvitationRequest true "Invitation"
// @Success 201 {object} models.Invitation
// @Router /app/invitations [post]
func (h *CommunityHandler) CreateInvitation(c echo.Context) error {
	var req services.CreateInvitationRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	if _, err := scopedBuilding(c); err != nil {
		return err
	}

	inv, err := middleware.GetServices(c).Invitations.Create(c.Request().Context(), req)
	if err != nil {
		return backendError(c, err)
	}
	return c.JSON(http.StatusCreated, inv)
}

// AcceptedInvitation is the unit an invitation linked to the account. Selected is false
// when the unit could not be made the tab's scope; the page can select it again
// through /app/selection/unit.
type AcceptedInvitation struct {
	Unit     models.Unit        `json:"unit"`
	Scope    selection.Envelope `json:"scope"`
	Selected bool               `json:"selected"`
}

// AcceptInvitation links the invited unit to the account and makes it the tab's scope
// @Summary Accept invitation
// @Tags invitations
// @Accept json
// @Produce json
// @Param request body services.AcceptInvitationRequest true "Code"
// @Success 200 {object} AcceptedInvitation
// @Failure 400 {object} middleware.ErrorBody "Invalid invitation code"
// @Router /app/invitations/accept [post]
func (h *CommunityHandler) AcceptInvitation(c echo.Context) error {
	var req services.AcceptInvitationRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	unit, err := middleware.GetServices(c).Invitations.Accept(ctx, req)
	if err != nil {
		return rejectedAs(c, err, "error.invalid_invitation", []int{http.StatusBadRequest, http.StatusNotFound}, "invalid")
	}

	res := AcceptedInvitation{Unit: *unit, Selected: true}
	if err := middleware.GetSelection(c).SelectUnit(ctx, *unit); err != nil {
		h.log.Warn("Accepted invitation for unit %d but could not select it: %v", unit.UnitID, err)
		res.Selected = false
	}
	res.Scope = scopeEnvelope(c)
	return c.JSON(http.StatusOK, res)
}
