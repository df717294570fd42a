package provider

import (
	"net/http"
	"strconv"

	"stallbook/internal/api"
	"stallbook/internal/auth"
	"stallbook/internal/location"
	"stallbook/internal/logger"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	repo Repository
}

func NewHandler(repo Repository) *Handler {
	return &Handler{repo: repo}
}

func validateCoordinates(lat, lon *float64) (string, bool) {
	if lat == nil || lon == nil {
		return "", true
	}
	if loc := location.New(*lat, *lon, ""); loc.IsFail() {
		return loc.Err(), false
	}
	return "", true
}

// CreateProfile godoc
// @Summary      Create provider profile
// @Description  Creates the provider profile for the current user. One profile per user.
// @Tags         providers
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        profile  body      CreateProviderRequest  true  "Provider profile"
// @Success      201      {object}  Provider
// @Failure      400      {object}  api.ErrorResponse
// @Failure      409      {object}  api.ErrorResponse
// @Failure      500      {object}  api.ErrorResponse
// @Router       /provider/profile [post]
func (h *Handler) CreateProfile(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated"})
		return
	}

	var req CreateProviderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if msg, ok := validateCoordinates(req.Latitude, req.Longitude); !ok {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: msg})
		return
	}

	existing, err := h.repo.GetByUserID(c.Request.Context(), userID)
	if err != nil {
		logger.Errorf("Failed to check provider profile: %v", err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Database error"})
		return
	}
	if existing != nil {
		c.JSON(http.StatusConflict, api.ErrorResponse{Error: "Provider profile already exists"})
		return
	}

	created, err := h.repo.Create(c.Request.Context(), userID, req)
	if err != nil {
		logger.Errorf("Failed to create provider profile: %v", err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Database error"})
		return
	}

	c.JSON(http.StatusCreated, created)
}

// List godoc
// @Summary      List providers
// @Description  Returns the provider directory, alphabetical by business name.
// @Tags         providers
// @Produce      json
// @Success      200  {array}   Provider
// @Failure      500  {object}  api.ErrorResponse
// @Router       /providers [get]
func (h *Handler) List(c *gin.Context) {
	providers, err := h.repo.List(c.Request.Context())
	if err != nil {
		logger.Errorf("Failed to list providers: %v", err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Database error"})
		return
	}

	c.JSON(http.StatusOK, providers)
}

// Get godoc
// @Summary      Get provider
// @Description  Returns a single provider profile.
// @Tags         providers
// @Produce      json
// @Param        providerID  path      int  true  "Provider ID"
// @Success      200         {object}  Provider
// @Failure      400         {object}  api.ErrorResponse
// @Failure      404         {object}  api.ErrorResponse
// @Failure      500         {object}  api.ErrorResponse
// @Router       /providers/{providerID} [get]
func (h *Handler) Get(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("providerID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid provider ID"})
		return
	}

	p, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		logger.Errorf("Failed to load provider: %v", err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Database error"})
		return
	}
	if p == nil {
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Provider not found"})
		return
	}

	c.JSON(http.StatusOK, p)
}

// UpdateProfile godoc
// @Summary      Update provider profile
// @Description  Updates a provider profile owned by the current user.
// @Tags         providers
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        providerID  path      int                    true  "Provider ID"
// @Param        profile     body      UpdateProviderRequest  true  "Provider profile"
// @Success      200         {object}  Provider
// @Failure      400         {object}  api.ErrorResponse
// @Failure      404         {object}  api.ErrorResponse
// @Failure      500         {object}  api.ErrorResponse
// @Router       /providers/{providerID} [put]
func (h *Handler) UpdateProfile(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated"})
		return
	}

	id, err := strconv.Atoi(c.Param("providerID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid provider ID"})
		return
	}

	var req UpdateProviderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if msg, ok := validateCoordinates(req.Latitude, req.Longitude); !ok {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: msg})
		return
	}

	updated, err := h.repo.UpdateWithAuth(c.Request.Context(), id, userID, req)
	if err != nil {
		logger.Errorf("Failed to update provider profile: %v", err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Database error"})
		return
	}
	if updated == nil {
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Provider not found"})
		return
	}

	c.JSON(http.StatusOK, updated)
}

// CreateService godoc
// @Summary      Add service to catalog
// @Description  Adds a service to the current provider's catalog.
// @Tags         providers
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        service  body      CreateServiceRequest  true  "Service"
// @Success      201      {object}  Service
// @Failure      400      {object}  api.ErrorResponse
// @Failure      404      {object}  api.ErrorResponse
// @Failure      500      {object}  api.ErrorResponse
// @Router       /provider/services [post]
func (h *Handler) CreateService(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated"})
		return
	}

	p, err := h.repo.GetByUserID(c.Request.Context(), userID)
	if err != nil {
		logger.Errorf("Failed to load provider profile: %v", err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Database error"})
		return
	}
	if p == nil {
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Provider profile not found"})
		return
	}

	var req CreateServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid request body"})
		return
	}

	created, err := h.repo.CreateService(c.Request.Context(), p.ID, req)
	if err != nil {
		logger.Errorf("Failed to create service: %v", err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Database error"})
		return
	}

	c.JSON(http.StatusCreated, created)
}

// ListServices godoc
// @Summary      List provider services
// @Description  Returns a provider's service catalog.
// @Tags         providers
// @Produce      json
// @Param        providerID  path      int  true  "Provider ID"
// @Success      200         {array}   Service
// @Failure      400         {object}  api.ErrorResponse
// @Failure      500         {object}  api.ErrorResponse
// @Router       /providers/{providerID}/services [get]
func (h *Handler) ListServices(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("providerID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid provider ID"})
		return
	}

	services, err := h.repo.ListServices(c.Request.Context(), id)
	if err != nil {
		logger.Errorf("Failed to list services: %v", err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Database error"})
		return
	}

	c.JSON(http.StatusOK, services)
}

// DeleteService godoc
// @Summary      Delete service
// @Description  Removes a service from the current provider's catalog.
// @Tags         providers
// @Security     BearerAuth
// @Produce      json
// @Param        serviceID  path      int  true  "Service ID"
// @Success      200        {object}  api.MessageResponse
// @Failure      400        {object}  api.ErrorResponse
// @Failure      404        {object}  api.ErrorResponse
// @Failure      500        {object}  api.ErrorResponse
// @Router       /provider/services/{serviceID} [delete]
func (h *Handler) DeleteService(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated"})
		return
	}

	id, err := strconv.Atoi(c.Param("serviceID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid service ID"})
		return
	}

	deleted, err := h.repo.DeleteServiceWithAuth(c.Request.Context(), id, userID)
	if err != nil {
		logger.Errorf("Failed to delete service: %v", err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Database error"})
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Service not found"})
		return
	}

	c.JSON(http.StatusOK, api.MessageResponse{Message: "Service deleted"})
}
