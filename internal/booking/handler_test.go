package booking

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"stallbook/internal/auth"
	"stallbook/internal/provider"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockBookingService struct{ mock.Mock }

func (m *MockBookingService) Create(ctx context.Context, customerID int, req CreateBookingRequest) (*BookingWithRelations, error) {
	args := m.Called(ctx, customerID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*BookingWithRelations), args.Error(1)
}

func (m *MockBookingService) CreateManual(ctx context.Context, providerID int, req ManualBookingRequest) (*BookingWithRelations, error) {
	args := m.Called(ctx, providerID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*BookingWithRelations), args.Error(1)
}

func (m *MockBookingService) UpdateStatus(ctx context.Context, id int, status Status, actor Actor) (*Booking, error) {
	args := m.Called(ctx, id, status, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Booking), args.Error(1)
}

func (m *MockBookingService) Delete(ctx context.Context, id int, actor Actor) (bool, error) {
	args := m.Called(ctx, id, actor)
	return args.Bool(0), args.Error(1)
}

func (m *MockBookingService) ProviderBookings(ctx context.Context, providerID int) ([]ProviderBookingView, error) {
	args := m.Called(ctx, providerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ProviderBookingView), args.Error(1)
}

func (m *MockBookingService) CustomerBookings(ctx context.Context, customerID int) ([]CustomerBookingView, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]CustomerBookingView), args.Error(1)
}

// fakeAuth injects the claims the auth middleware would set.
func fakeAuth(userID int, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", userID)
		c.Set("user_role", role)
		c.Next()
	}
}

func setupRouter(svc Service, provRepo provider.Repository, userID int, role string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(svc, provRepo)

	r := gin.New()
	r.Use(fakeAuth(userID, role))
	r.POST("/bookings", h.Create)
	r.GET("/bookings", h.ListMine)
	r.PATCH("/bookings/:bookingID/status", h.UpdateStatus)
	r.DELETE("/bookings/:bookingID", h.Delete)
	r.POST("/provider/bookings", h.CreateManual)
	r.GET("/provider/bookings", h.ListForProvider)
	return r
}

func doJSON(r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHandlerCreate_Created(t *testing.T) {
	svc := new(MockBookingService)
	svc.On("Create", mock.Anything, 1, mock.Anything).
		Return(&BookingWithRelations{Booking: Booking{ID: 10}}, nil)

	r := setupRouter(svc, new(MockProviderRepo), 1, auth.RoleCustomer)
	w := doJSON(r, http.MethodPost, "/bookings", validRequest())

	require.Equal(t, http.StatusCreated, w.Code)
	var got BookingWithRelations
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, 10, got.ID)
}

func TestHandlerCreate_Conflict(t *testing.T) {
	svc := new(MockBookingService)
	svc.On("Create", mock.Anything, 1, mock.Anything).Return(nil, ErrSlotTaken)

	r := setupRouter(svc, new(MockProviderRepo), 1, auth.RoleCustomer)
	w := doJSON(r, http.MethodPost, "/bookings", validRequest())

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "time slot unavailable")
}

func TestHandlerCreate_ValidationError(t *testing.T) {
	svc := new(MockBookingService)
	svc.On("Create", mock.Anything, 1, mock.Anything).
		Return(nil, &ValidationError{Message: "Sluttid måste vara efter starttid"})

	r := setupRouter(svc, new(MockProviderRepo), 1, auth.RoleCustomer)
	w := doJSON(r, http.MethodPost, "/bookings", validRequest())

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Sluttid")
}

func TestHandlerCreate_MissingFields(t *testing.T) {
	svc := new(MockBookingService)
	r := setupRouter(svc, new(MockProviderRepo), 1, auth.RoleCustomer)

	w := doJSON(r, http.MethodPost, "/bookings", gin.H{"provider_id": 2})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
}

func TestHandlerCreate_UnknownProvider(t *testing.T) {
	svc := new(MockBookingService)
	svc.On("Create", mock.Anything, 1, mock.Anything).Return(nil, ErrProviderNotFound)

	r := setupRouter(svc, new(MockProviderRepo), 1, auth.RoleCustomer)
	w := doJSON(r, http.MethodPost, "/bookings", validRequest())

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandlerCreateManual_ResolvesProviderProfile(t *testing.T) {
	svc := new(MockBookingService)
	provRepo := new(MockProviderRepo)

	provRepo.On("GetByUserID", mock.Anything, 20).Return(testProvider(), nil)
	svc.On("CreateManual", mock.Anything, 2, mock.MatchedBy(func(req ManualBookingRequest) bool {
		return req.CustomerID == 5
	})).Return(&BookingWithRelations{Booking: Booking{ID: 11, Status: StatusConfirmed}}, nil)

	r := setupRouter(svc, provRepo, 20, auth.RoleProvider)
	w := doJSON(r, http.MethodPost, "/provider/bookings", ManualBookingRequest{
		CustomerID:  5,
		ServiceID:   3,
		BookingDate: "2026-03-14",
		StartTime:   "10:00",
		EndTime:     "11:00",
	})

	require.Equal(t, http.StatusCreated, w.Code)
	svc.AssertExpectations(t)
}

func TestHandlerCreateManual_NoProviderProfile(t *testing.T) {
	svc := new(MockBookingService)
	provRepo := new(MockProviderRepo)
	provRepo.On("GetByUserID", mock.Anything, 20).Return(nil, nil)

	r := setupRouter(svc, provRepo, 20, auth.RoleProvider)
	w := doJSON(r, http.MethodPost, "/provider/bookings", ManualBookingRequest{
		CustomerID:  5,
		ServiceID:   3,
		BookingDate: "2026-03-14",
		StartTime:   "10:00",
	})

	assert.Equal(t, http.StatusNotFound, w.Code)
	svc.AssertNotCalled(t, "CreateManual", mock.Anything, mock.Anything, mock.Anything)
}

func TestHandlerUpdateStatus_CustomerActor(t *testing.T) {
	svc := new(MockBookingService)
	svc.On("UpdateStatus", mock.Anything, 10, StatusCancelled, CustomerActor(1)).
		Return(&Booking{ID: 10, Status: StatusCancelled}, nil)

	r := setupRouter(svc, new(MockProviderRepo), 1, auth.RoleCustomer)
	w := doJSON(r, http.MethodPatch, "/bookings/10/status", UpdateStatusRequest{Status: StatusCancelled})

	require.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

func TestHandlerUpdateStatus_ProviderActor(t *testing.T) {
	svc := new(MockBookingService)
	provRepo := new(MockProviderRepo)
	provRepo.On("GetByUserID", mock.Anything, 20).Return(testProvider(), nil)
	svc.On("UpdateStatus", mock.Anything, 10, StatusConfirmed, ProviderActor(2)).
		Return(&Booking{ID: 10, Status: StatusConfirmed}, nil)

	r := setupRouter(svc, provRepo, 20, auth.RoleProvider)
	w := doJSON(r, http.MethodPatch, "/bookings/10/status", UpdateStatusRequest{Status: StatusConfirmed})

	require.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

func TestHandlerUpdateStatus_NilIsNotFound(t *testing.T) {
	svc := new(MockBookingService)
	svc.On("UpdateStatus", mock.Anything, 99, StatusCancelled, CustomerActor(1)).Return(nil, nil)

	r := setupRouter(svc, new(MockProviderRepo), 1, auth.RoleCustomer)
	w := doJSON(r, http.MethodPatch, "/bookings/99/status", UpdateStatusRequest{Status: StatusCancelled})

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandlerUpdateStatus_BadID(t *testing.T) {
	svc := new(MockBookingService)
	r := setupRouter(svc, new(MockProviderRepo), 1, auth.RoleCustomer)

	w := doJSON(r, http.MethodPatch, "/bookings/abc/status", UpdateStatusRequest{Status: StatusCancelled})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandlerDelete(t *testing.T) {
	svc := new(MockBookingService)
	svc.On("Delete", mock.Anything, 10, CustomerActor(1)).Return(true, nil)

	r := setupRouter(svc, new(MockProviderRepo), 1, auth.RoleCustomer)
	w := doJSON(r, http.MethodDelete, "/bookings/10", nil)

	assert.Equal(t, http.StatusOK, w.Code)

	svc.On("Delete", mock.Anything, 11, CustomerActor(1)).Return(false, nil)
	w = doJSON(r, http.MethodDelete, "/bookings/11", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandlerListMine(t *testing.T) {
	svc := new(MockBookingService)
	svc.On("CustomerBookings", mock.Anything, 1).Return([]CustomerBookingView{
		{Booking: Booking{ID: 10}, ServiceName: "Hovslagning"},
	}, nil)

	r := setupRouter(svc, new(MockProviderRepo), 1, auth.RoleCustomer)
	w := doJSON(r, http.MethodGet, "/bookings", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Hovslagning")
}

func TestHandlerListForProvider(t *testing.T) {
	svc := new(MockBookingService)
	provRepo := new(MockProviderRepo)
	provRepo.On("GetByUserID", mock.Anything, 20).Return(testProvider(), nil)
	svc.On("ProviderBookings", mock.Anything, 2).Return([]ProviderBookingView{
		{Booking: Booking{ID: 10}, CustomerEmail: "anna@example.com"},
	}, nil)

	r := setupRouter(svc, provRepo, 20, auth.RoleProvider)
	w := doJSON(r, http.MethodGet, "/provider/bookings", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "anna@example.com")
}

func TestHandlerListForProvider_DBError(t *testing.T) {
	svc := new(MockBookingService)
	provRepo := new(MockProviderRepo)
	provRepo.On("GetByUserID", mock.Anything, 20).Return(nil, errors.New("connection refused"))

	r := setupRouter(svc, provRepo, 20, auth.RoleProvider)
	w := doJSON(r, http.MethodGet, "/provider/bookings", nil)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
