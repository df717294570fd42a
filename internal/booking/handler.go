package booking

import (
	"errors"
	"net/http"
	"strconv"

	"stallbook/internal/api"
	"stallbook/internal/auth"
	"stallbook/internal/logger"
	"stallbook/internal/provider"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service      Service
	providerRepo provider.Repository
}

func NewHandler(service Service, providerRepo provider.Repository) *Handler {
	return &Handler{
		service:      service,
		providerRepo: providerRepo,
	}
}

// Create godoc
// @Summary      Create booking
// @Description  Books a time slot with the given provider. Returns 409 when the slot is already taken.
// @Tags         bookings
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        booking  body      CreateBookingRequest  true  "Booking details"
// @Success      201      {object}  BookingWithRelations
// @Failure      400      {object}  api.ErrorResponse
// @Failure      404      {object}  api.ErrorResponse
// @Failure      409      {object}  api.ConflictResponse
// @Failure      500      {object}  api.ErrorResponse
// @Router       /bookings [post]
func (h *Handler) Create(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated"})
		return
	}

	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid request body"})
		return
	}

	created, err := h.service.Create(c.Request.Context(), userID, req)
	if err != nil {
		h.writeCreateError(c, err)
		return
	}

	c.JSON(http.StatusCreated, created)
}

// CreateManual godoc
// @Summary      Create manual booking
// @Description  Lets a provider enter a booking on behalf of a customer, e.g. one taken over the phone.
// @Tags         bookings
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        booking  body      ManualBookingRequest  true  "Booking details"
// @Success      201      {object}  BookingWithRelations
// @Failure      400      {object}  api.ErrorResponse
// @Failure      404      {object}  api.ErrorResponse
// @Failure      409      {object}  api.ConflictResponse
// @Failure      500      {object}  api.ErrorResponse
// @Router       /provider/bookings [post]
func (h *Handler) CreateManual(c *gin.Context) {
	prov, ok := h.currentProvider(c)
	if !ok {
		return
	}

	var req ManualBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid request body"})
		return
	}

	created, err := h.service.CreateManual(c.Request.Context(), prov.ID, req)
	if err != nil {
		h.writeCreateError(c, err)
		return
	}

	c.JSON(http.StatusCreated, created)
}

// ListMine godoc
// @Summary      List own bookings
// @Description  Returns the current customer's bookings with service and provider details.
// @Tags         bookings
// @Security     BearerAuth
// @Produce      json
// @Success      200  {array}   CustomerBookingView
// @Failure      500  {object}  api.ErrorResponse
// @Router       /bookings [get]
func (h *Handler) ListMine(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated"})
		return
	}

	bookings, err := h.service.CustomerBookings(c.Request.Context(), userID)
	if err != nil {
		logger.Errorf("Failed to list customer bookings: %v", err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Database error"})
		return
	}

	c.JSON(http.StatusOK, bookings)
}

// ListForProvider godoc
// @Summary      List provider bookings
// @Description  Returns the bookings of the current provider, including customer contact details.
// @Tags         bookings
// @Security     BearerAuth
// @Produce      json
// @Success      200  {array}   ProviderBookingView
// @Failure      404  {object}  api.ErrorResponse
// @Failure      500  {object}  api.ErrorResponse
// @Router       /provider/bookings [get]
func (h *Handler) ListForProvider(c *gin.Context) {
	prov, ok := h.currentProvider(c)
	if !ok {
		return
	}

	bookings, err := h.service.ProviderBookings(c.Request.Context(), prov.ID)
	if err != nil {
		logger.Errorf("Failed to list provider bookings: %v", err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Database error"})
		return
	}

	c.JSON(http.StatusOK, bookings)
}

// UpdateStatus godoc
// @Summary      Update booking status
// @Description  Moves a booking to a new status. Only the booking's customer or provider may do this, and only along a legal transition.
// @Tags         bookings
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        bookingID  path      int                  true  "Booking ID"
// @Param        status     body      UpdateStatusRequest  true  "Target status"
// @Success      200        {object}  Booking
// @Failure      400        {object}  api.ErrorResponse
// @Failure      404        {object}  api.ErrorResponse
// @Failure      500        {object}  api.ErrorResponse
// @Router       /bookings/{bookingID}/status [patch]
func (h *Handler) UpdateStatus(c *gin.Context) {
	actor, ok := h.currentActor(c)
	if !ok {
		return
	}

	id, err := strconv.Atoi(c.Param("bookingID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid booking ID"})
		return
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid request body"})
		return
	}

	updated, err := h.service.UpdateStatus(c.Request.Context(), id, req.Status, actor)
	if err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: verr.Message})
			return
		}
		logger.Errorf("Failed to update booking status: %v", err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Database error"})
		return
	}
	if updated == nil {
		// Missing, owned by someone else, or an illegal transition. The
		// store cannot tell them apart and neither may the caller.
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Booking not found"})
		return
	}

	c.JSON(http.StatusOK, updated)
}

// Delete godoc
// @Summary      Delete booking
// @Description  Removes a booking owned by the caller.
// @Tags         bookings
// @Security     BearerAuth
// @Produce      json
// @Param        bookingID  path      int  true  "Booking ID"
// @Success      200        {object}  api.MessageResponse
// @Failure      400        {object}  api.ErrorResponse
// @Failure      404        {object}  api.ErrorResponse
// @Failure      500        {object}  api.ErrorResponse
// @Router       /bookings/{bookingID} [delete]
func (h *Handler) Delete(c *gin.Context) {
	actor, ok := h.currentActor(c)
	if !ok {
		return
	}

	id, err := strconv.Atoi(c.Param("bookingID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid booking ID"})
		return
	}

	deleted, err := h.service.Delete(c.Request.Context(), id, actor)
	if err != nil {
		logger.Errorf("Failed to delete booking: %v", err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Database error"})
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Booking not found"})
		return
	}

	c.JSON(http.StatusOK, api.MessageResponse{Message: "Booking deleted"})
}

func (h *Handler) writeCreateError(c *gin.Context, err error) {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: verr.Message})
	case errors.Is(err, ErrProviderNotFound):
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Provider not found"})
	case errors.Is(err, ErrServiceNotFound):
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Service not found"})
	case errors.Is(err, ErrSlotTaken):
		c.JSON(http.StatusConflict, api.ErrorResponse{Error: ErrSlotTaken.Error()})
	default:
		logger.Errorf("Failed to create booking: %v", err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Database error"})
	}
}

// currentActor derives the mutation actor from the token role. Customers
// act as themselves, providers through their provider profile.
func (h *Handler) currentActor(c *gin.Context) (Actor, bool) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated"})
		return Actor{}, false
	}

	role, _ := auth.GetRole(c)
	if role != auth.RoleProvider {
		return CustomerActor(userID), true
	}

	prov, ok := h.currentProvider(c)
	if !ok {
		return Actor{}, false
	}
	return ProviderActor(prov.ID), true
}

func (h *Handler) currentProvider(c *gin.Context) (*provider.Provider, bool) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated"})
		return nil, false
	}

	prov, err := h.providerRepo.GetByUserID(c.Request.Context(), userID)
	if err != nil {
		logger.Errorf("Failed to load provider profile: %v", err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Database error"})
		return nil, false
	}
	if prov == nil {
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Provider profile not found"})
		return nil, false
	}
	return prov, true
}
