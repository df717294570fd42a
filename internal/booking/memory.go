package booking

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"stallbook/internal/timeslot"
)

type customerInfo struct {
	Name  string
	Email string
	Phone string
}

type serviceInfo struct {
	Name            string
	PriceCents      int64
	DurationMinutes int
}

// MemoryRepository is an in-memory Repository used in tests and local
// development. It reproduces the exact overlap predicate (strict
// inequality, active statuses, same provider, same date) and the fused
// ownership semantics of the SQL repository: every mutation holds the
// lock for the whole check-and-write, so it is a faithful stand-in for
// the serializable transaction.
type MemoryRepository struct {
	mu        sync.Mutex
	nextID    int
	bookings  map[int]*Booking
	customers map[int]customerInfo
	services  map[int]serviceInfo
	providers map[int]string
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		nextID:    1,
		bookings:  make(map[int]*Booking),
		customers: make(map[int]customerInfo),
		services:  make(map[int]serviceInfo),
		providers: make(map[int]string),
	}
}

func (m *MemoryRepository) SeedCustomer(id int, name, email, phone string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.customers[id] = customerInfo{Name: name, Email: email, Phone: phone}
}

func (m *MemoryRepository) SeedService(id int, name string, priceCents int64, durationMinutes int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.services[id] = serviceInfo{Name: name, PriceCents: priceCents, DurationMinutes: durationMinutes}
}

func (m *MemoryRepository) SeedProvider(id int, businessName string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.providers[id] = businessName
}

func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func isActive(s Status) bool {
	for _, active := range ActiveStatuses {
		if s == active {
			return true
		}
	}
	return false
}

func (m *MemoryRepository) CreateWithOverlapCheck(ctx context.Context, params CreateParams) (*BookingWithRelations, error) {
	requested := timeslot.New(params.StartTime, params.EndTime)
	if requested.IsFail() {
		return nil, fmt.Errorf("invalid time slot reached repository: %s", requested.Err())
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, b := range m.bookings {
		if b.ProviderID != params.ProviderID || !sameDate(b.BookingDate, params.BookingDate) || !isActive(b.Status) {
			continue
		}
		slot := timeslot.New(b.StartTime, b.EndTime)
		if slot.IsFail() {
			return nil, fmt.Errorf("stored booking %d has invalid slot: %s", b.ID, slot.Err())
		}
		if slot.Value().Overlaps(requested.Value()) {
			return nil, nil
		}
	}

	status := StatusPending
	if params.IsManual {
		status = StatusConfirmed
	}

	now := time.Now()
	created := &Booking{
		ID:                m.nextID,
		CustomerID:        params.CustomerID,
		ProviderID:        params.ProviderID,
		ServiceID:         params.ServiceID,
		BookingDate:       params.BookingDate,
		StartTime:         requested.Value().Start(),
		EndTime:           requested.Value().End(),
		Status:            status,
		HorseID:           params.HorseID,
		HorseName:         params.HorseName,
		TravelTimeMinutes: params.TravelTimeMinutes,
		IsManual:          params.IsManual,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	m.nextID++
	m.bookings[created.ID] = created

	customer := m.customers[params.CustomerID]
	service := m.services[params.ServiceID]

	return &BookingWithRelations{
		Booking:                *created,
		CustomerName:           customer.Name,
		ServiceName:            service.Name,
		ServicePriceCents:      service.PriceCents,
		ServiceDurationMinutes: service.DurationMinutes,
		ProviderBusinessName:   m.providers[params.ProviderID],
	}, nil
}

func (m *MemoryRepository) FindActiveByProviderAndDate(ctx context.Context, providerID int, date time.Time) ([]Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var bookings []Booking
	for _, b := range m.bookings {
		if b.ProviderID == providerID && sameDate(b.BookingDate, date) && isActive(b.Status) {
			bookings = append(bookings, *b)
		}
	}
	sort.Slice(bookings, func(i, j int) bool { return bookings[i].StartTime < bookings[j].StartTime })
	return bookings, nil
}

func (m *MemoryRepository) FindByProviderIDWithDetails(ctx context.Context, providerID int) ([]ProviderBookingView, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var views []ProviderBookingView
	for _, b := range m.bookings {
		if b.ProviderID != providerID {
			continue
		}
		customer := m.customers[b.CustomerID]
		views = append(views, ProviderBookingView{
			Booking:       *b,
			CustomerName:  customer.Name,
			CustomerEmail: customer.Email,
			CustomerPhone: customer.Phone,
			ServiceName:   m.services[b.ServiceID].Name,
		})
	}
	sort.Slice(views, func(i, j int) bool {
		if !views[i].BookingDate.Equal(views[j].BookingDate) {
			return views[i].BookingDate.After(views[j].BookingDate)
		}
		return views[i].StartTime < views[j].StartTime
	})
	return views, nil
}

func (m *MemoryRepository) FindByCustomerIDWithDetails(ctx context.Context, customerID int) ([]CustomerBookingView, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var views []CustomerBookingView
	for _, b := range m.bookings {
		if b.CustomerID != customerID {
			continue
		}
		service := m.services[b.ServiceID]
		views = append(views, CustomerBookingView{
			Booking:                *b,
			ServiceName:            service.Name,
			ServicePriceCents:      service.PriceCents,
			ServiceDurationMinutes: service.DurationMinutes,
			ProviderBusinessName:   m.providers[b.ProviderID],
		})
	}
	sort.Slice(views, func(i, j int) bool {
		if !views[i].BookingDate.Equal(views[j].BookingDate) {
			return views[i].BookingDate.After(views[j].BookingDate)
		}
		return views[i].StartTime < views[j].StartTime
	})
	return views, nil
}

func ownsBooking(b *Booking, actor Actor) bool {
	if actor.CustomerID != nil {
		return b.CustomerID == *actor.CustomerID
	}
	if actor.ProviderID != nil {
		return b.ProviderID == *actor.ProviderID
	}
	return false
}

func (m *MemoryRepository) UpdateStatusWithAuth(ctx context.Context, id int, status Status, actor Actor) (*Booking, error) {
	sources := TransitionSources(status)
	if len(sources) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	// Ownership, existence and transition legality are checked under the
	// same lock as the write, mirroring the SQL WHERE predicate.
	b, ok := m.bookings[id]
	if !ok || !ownsBooking(b, actor) {
		return nil, nil
	}

	legal := false
	for _, from := range sources {
		if b.Status == from {
			legal = true
			break
		}
	}
	if !legal {
		return nil, nil
	}

	b.Status = status
	b.UpdatedAt = time.Now()
	copied := *b
	return &copied, nil
}

func (m *MemoryRepository) DeleteWithAuth(ctx context.Context, id int, actor Actor) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	b, ok := m.bookings[id]
	if !ok || !ownsBooking(b, actor) {
		return false, nil
	}

	delete(m.bookings, id)
	return true, nil
}
