package booking

import (
	"context"
	"errors"
	"math"
	"time"

	"stallbook/internal/location"
	"stallbook/internal/logger"
	"stallbook/internal/metrics"
	"stallbook/internal/provider"
	"stallbook/internal/result"
	"stallbook/internal/timeslot"
)

var (
	// ErrSlotTaken means another active booking already occupies the
	// requested window. It maps to 409, never to a server error.
	ErrSlotTaken = errors.New("time slot unavailable")

	ErrProviderNotFound = errors.New("provider not found")
	ErrServiceNotFound  = errors.New("service not found")

	MsgTravelTimeTooTight = "För kort tid för resa till angränsande bokning"
	MsgInvalidDate        = "Ogiltigt bokningsdatum, förväntat format ÅÅÅÅ-MM-DD"
)

// ValidationError is a caller error: recoverable by fixing input,
// surfaced as 400, never logged as a fault.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func validationErr(msg string) error {
	return &ValidationError{Message: msg}
}

// Notifier receives booking lifecycle events. Implementations must not
// block the request path; failures are their own concern.
type Notifier interface {
	BookingCreated(ctx context.Context, b *BookingWithRelations)
	BookingStatusChanged(ctx context.Context, b *Booking)
}

type Service interface {
	Create(ctx context.Context, customerID int, req CreateBookingRequest) (*BookingWithRelations, error)
	CreateManual(ctx context.Context, providerID int, req ManualBookingRequest) (*BookingWithRelations, error)
	UpdateStatus(ctx context.Context, id int, status Status, actor Actor) (*Booking, error)
	Delete(ctx context.Context, id int, actor Actor) (bool, error)
	ProviderBookings(ctx context.Context, providerID int) ([]ProviderBookingView, error)
	CustomerBookings(ctx context.Context, customerID int) ([]CustomerBookingView, error)
}

type service struct {
	repo           Repository
	providerRepo   provider.Repository
	notifier       Notifier
	travelSpeedKmh float64
}

func NewService(repo Repository, providerRepo provider.Repository, notifier Notifier, travelSpeedKmh float64) Service {
	if travelSpeedKmh <= 0 {
		travelSpeedKmh = location.DefaultSpeedKmh
	}
	return &service{
		repo:           repo,
		providerRepo:   providerRepo,
		notifier:       notifier,
		travelSpeedKmh: travelSpeedKmh,
	}
}

func (s *service) Create(ctx context.Context, customerID int, req CreateBookingRequest) (*BookingWithRelations, error) {
	return s.create(ctx, createInput{
		customerID:      customerID,
		providerID:      req.ProviderID,
		serviceID:       req.ServiceID,
		bookingDate:     req.BookingDate,
		startTime:       req.StartTime,
		endTime:         req.EndTime,
		durationMinutes: req.DurationMinutes,
		horseID:         req.HorseID,
		horseName:       req.HorseName,
		latitude:        req.Latitude,
		longitude:       req.Longitude,
		address:         req.Address,
		manual:          false,
	})
}

func (s *service) CreateManual(ctx context.Context, providerID int, req ManualBookingRequest) (*BookingWithRelations, error) {
	return s.create(ctx, createInput{
		customerID:      req.CustomerID,
		providerID:      providerID,
		serviceID:       req.ServiceID,
		bookingDate:     req.BookingDate,
		startTime:       req.StartTime,
		endTime:         req.EndTime,
		durationMinutes: req.DurationMinutes,
		horseID:         req.HorseID,
		horseName:       req.HorseName,
		latitude:        req.Latitude,
		longitude:       req.Longitude,
		address:         req.Address,
		manual:          true,
	})
}

type createInput struct {
	customerID      int
	providerID      int
	serviceID       int
	bookingDate     string
	startTime       string
	endTime         string
	durationMinutes int
	horseID         *int
	horseName       *string
	latitude        *float64
	longitude       *float64
	address         string
	manual          bool
}

func (s *service) create(ctx context.Context, in createInput) (*BookingWithRelations, error) {
	date, err := time.Parse("2006-01-02", in.bookingDate)
	if err != nil {
		return nil, validationErr(MsgInvalidDate)
	}

	prov, err := s.providerRepo.GetByID(ctx, in.providerID)
	if err != nil {
		return nil, err
	}
	if prov == nil {
		return nil, ErrProviderNotFound
	}

	svc, err := s.providerRepo.GetServiceByID(ctx, in.serviceID)
	if err != nil {
		return nil, err
	}
	if svc == nil || svc.ProviderID != prov.ID {
		return nil, ErrServiceNotFound
	}

	slot, err := resolveSlot(in.startTime, in.endTime, in.durationMinutes, svc.DurationMinutes)
	if err != nil {
		return nil, err
	}

	travelMinutes, err := s.travelTime(prov, in.latitude, in.longitude, in.address)
	if err != nil {
		return nil, err
	}

	if travelMinutes > 0 {
		if err := s.checkTravelFeasibility(ctx, prov.ID, date, slot, travelMinutes); err != nil {
			return nil, err
		}
	}

	created, err := s.repo.CreateWithOverlapCheck(ctx, CreateParams{
		CustomerID:        in.customerID,
		ProviderID:        prov.ID,
		ServiceID:         svc.ID,
		BookingDate:       date,
		StartTime:         slot.Start(),
		EndTime:           slot.End(),
		HorseID:           in.horseID,
		HorseName:         in.horseName,
		TravelTimeMinutes: travelMinutes,
		IsManual:          in.manual,
	})
	if err != nil {
		return nil, err
	}
	if created == nil {
		metrics.RecordBookingConflict()
		return nil, ErrSlotTaken
	}

	metrics.RecordBookingCreated(string(created.Status))
	logger.Infof("Booking %d created for provider %d on %s %s",
		created.ID, created.ProviderID, in.bookingDate, slot)

	if s.notifier != nil {
		s.notifier.BookingCreated(ctx, created)
	}

	return created, nil
}

// resolveSlot builds the requested slot from an explicit end time, an
// explicit duration, or the service's default duration, in that order.
func resolveSlot(start, end string, durationMinutes, serviceDuration int) (timeslot.TimeSlot, error) {
	var r result.Result[timeslot.TimeSlot]
	switch {
	case end != "":
		r = timeslot.New(start, end)
	case durationMinutes > 0:
		r = timeslot.FromDuration(start, durationMinutes)
	default:
		r = timeslot.FromDuration(start, serviceDuration)
	}
	if r.IsFail() {
		return timeslot.TimeSlot{}, validationErr(r.Err())
	}
	return r.Value(), nil
}

// travelTime derives the travel time from the provider's base to the
// booking address. Zero when either side lacks coordinates.
func (s *service) travelTime(prov *provider.Provider, lat, lon *float64, address string) (int, error) {
	if lat == nil || lon == nil || prov.Latitude == nil || prov.Longitude == nil {
		return 0, nil
	}

	dest := location.New(*lat, *lon, address)
	if dest.IsFail() {
		return 0, validationErr(dest.Err())
	}

	base := location.New(*prov.Latitude, *prov.Longitude, prov.Address)
	if base.IsFail() {
		return 0, validationErr(base.Err())
	}

	minutes := base.Value().TravelTimeTo(dest.Value(), s.travelSpeedKmh)
	return int(math.Ceil(minutes)), nil
}

// checkTravelFeasibility rejects a slot whose gap to any neighbouring
// active booking on the same day is shorter than the travel time.
// Back-to-back slots are fine when no travel is needed, hence the
// caller's travelMinutes > 0 gate.
func (s *service) checkTravelFeasibility(ctx context.Context, providerID int, date time.Time, slot timeslot.TimeSlot, travelMinutes int) error {
	existing, err := s.repo.FindActiveByProviderAndDate(ctx, providerID, date)
	if err != nil {
		return err
	}

	for _, b := range existing {
		other := timeslot.New(b.StartTime, b.EndTime)
		if other.IsFail() {
			continue
		}
		o := other.Value()
		if o.Overlaps(slot) {
			// The overlap check inside the transaction is authoritative;
			// no point computing gaps here.
			continue
		}
		var gap int
		if o.EndMinutes() <= slot.StartMinutes() {
			gap = slot.StartMinutes() - o.EndMinutes()
		} else {
			gap = o.StartMinutes() - slot.EndMinutes()
		}
		if gap < travelMinutes {
			return validationErr(MsgTravelTimeTooTight)
		}
	}
	return nil
}

func (s *service) UpdateStatus(ctx context.Context, id int, status Status, actor Actor) (*Booking, error) {
	if !status.Valid() || len(TransitionSources(status)) == 0 {
		return nil, validationErr("invalid booking status")
	}

	updated, err := s.repo.UpdateStatusWithAuth(ctx, id, status, actor)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, nil
	}

	metrics.RecordStatusChange(string(status))
	logger.Infof("Booking %d moved to %s", updated.ID, updated.Status)

	if s.notifier != nil {
		s.notifier.BookingStatusChanged(ctx, updated)
	}

	return updated, nil
}

func (s *service) Delete(ctx context.Context, id int, actor Actor) (bool, error) {
	return s.repo.DeleteWithAuth(ctx, id, actor)
}

func (s *service) ProviderBookings(ctx context.Context, providerID int) ([]ProviderBookingView, error) {
	return s.repo.FindByProviderIDWithDetails(ctx, providerID)
}

func (s *service) CustomerBookings(ctx context.Context, customerID int) ([]CustomerBookingView, error) {
	return s.repo.FindByCustomerIDWithDetails(ctx, customerID)
}
