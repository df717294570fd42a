package review

import (
	"errors"
	"net/http"
	"strconv"

	"stallbook/internal/api"
	"stallbook/internal/auth"
	"stallbook/internal/logger"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	repo Repository
}

func NewHandler(repo Repository) *Handler {
	return &Handler{repo: repo}
}

// Create godoc
// @Summary      Create review
// @Description  Reviews a completed booking of the current customer. One review per booking.
// @Tags         reviews
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        review  body      CreateReviewRequest  true  "Review"
// @Success      201     {object}  Review
// @Failure      400     {object}  api.ErrorResponse
// @Failure      404     {object}  api.ErrorResponse
// @Failure      409     {object}  api.ErrorResponse
// @Failure      500     {object}  api.ErrorResponse
// @Router       /reviews [post]
func (h *Handler) Create(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated"})
		return
	}

	var req CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if v := ValidateRating(req.Rating, req.Comment); v.IsFail() {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: v.Err()})
		return
	}

	created, err := h.repo.CreateForCompletedBooking(c.Request.Context(), userID, req)
	if errors.Is(err, ErrAlreadyReviewed) {
		c.JSON(http.StatusConflict, api.ErrorResponse{Error: "Booking already reviewed"})
		return
	}
	if err != nil {
		logger.Errorf("Failed to create review: %v", err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Database error"})
		return
	}
	if created == nil {
		// Booking missing, not the caller's, or not completed yet.
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "No completed booking to review"})
		return
	}

	c.JSON(http.StatusCreated, created)
}

// ListByProvider godoc
// @Summary      List provider reviews
// @Description  Returns a provider's reviews with reviewer names, newest first.
// @Tags         reviews
// @Produce      json
// @Param        providerID  path      int  true  "Provider ID"
// @Success      200         {array}   ReviewWithCustomer
// @Failure      400         {object}  api.ErrorResponse
// @Failure      500         {object}  api.ErrorResponse
// @Router       /providers/{providerID}/reviews [get]
func (h *Handler) ListByProvider(c *gin.Context) {
	providerID, err := strconv.Atoi(c.Param("providerID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid provider ID"})
		return
	}

	reviews, err := h.repo.ListByProvider(c.Request.Context(), providerID)
	if err != nil {
		logger.Errorf("Failed to list reviews: %v", err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Database error"})
		return
	}

	c.JSON(http.StatusOK, reviews)
}

// RatingSummary godoc
// @Summary      Provider rating summary
// @Description  Returns the review count and average rating for a provider.
// @Tags         reviews
// @Produce      json
// @Param        providerID  path      int  true  "Provider ID"
// @Success      200         {object}  ProviderRatingSummary
// @Failure      400         {object}  api.ErrorResponse
// @Failure      500         {object}  api.ErrorResponse
// @Router       /providers/{providerID}/rating [get]
func (h *Handler) RatingSummary(c *gin.Context) {
	providerID, err := strconv.Atoi(c.Param("providerID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid provider ID"})
		return
	}

	summary, err := h.repo.RatingSummary(c.Request.Context(), providerID)
	if err != nil {
		logger.Errorf("Failed to load rating summary: %v", err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Database error"})
		return
	}

	c.JSON(http.StatusOK, summary)
}

// Update godoc
// @Summary      Update review
// @Description  Rewrites a review owned by the current customer.
// @Tags         reviews
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        reviewID  path      int                  true  "Review ID"
// @Param        review    body      UpdateReviewRequest  true  "Review"
// @Success      200       {object}  Review
// @Failure      400       {object}  api.ErrorResponse
// @Failure      404       {object}  api.ErrorResponse
// @Failure      500       {object}  api.ErrorResponse
// @Router       /reviews/{reviewID} [put]
func (h *Handler) Update(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated"})
		return
	}

	id, err := strconv.Atoi(c.Param("reviewID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid review ID"})
		return
	}

	var req UpdateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if v := ValidateRating(req.Rating, req.Comment); v.IsFail() {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: v.Err()})
		return
	}

	updated, err := h.repo.UpdateWithAuth(c.Request.Context(), id, userID, req)
	if err != nil {
		logger.Errorf("Failed to update review: %v", err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Database error"})
		return
	}
	if updated == nil {
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Review not found"})
		return
	}

	c.JSON(http.StatusOK, updated)
}

// Delete godoc
// @Summary      Delete review
// @Description  Removes a review owned by the current customer.
// @Tags         reviews
// @Security     BearerAuth
// @Produce      json
// @Param        reviewID  path      int  true  "Review ID"
// @Success      200       {object}  api.MessageResponse
// @Failure      400       {object}  api.ErrorResponse
// @Failure      404       {object}  api.ErrorResponse
// @Failure      500       {object}  api.ErrorResponse
// @Router       /reviews/{reviewID} [delete]
func (h *Handler) Delete(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated"})
		return
	}

	id, err := strconv.Atoi(c.Param("reviewID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid review ID"})
		return
	}

	deleted, err := h.repo.DeleteWithAuth(c.Request.Context(), id, userID)
	if err != nil {
		logger.Errorf("Failed to delete review: %v", err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Database error"})
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Review not found"})
		return
	}

	c.JSON(http.StatusOK, api.MessageResponse{Message: "Review deleted"})
}
