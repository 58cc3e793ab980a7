package services

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"fleetrent/internal/common"
	"fleetrent/internal/models"
	"fleetrent/internal/repositories"

	"github.com/google/uuid"
)

// memFleet is an in-memory store behind the repository interfaces. Its transactor restores
// the previous state when the unit of work fails, so tests can observe rollbacks.
type memFleet struct {
	mu       sync.Mutex
	txMu     sync.Mutex
	vehicles map[uuid.UUID]models.Vehicle
	clients  map[uuid.UUID]models.Client
	bookings map[uuid.UUID]models.Booking
	exts     []models.BookingExtension

	// failVehicleStatus, when set, is returned by the next vehicle status write.
	failVehicleStatus error
}

func newMemFleet() *memFleet {
	return &memFleet{
		vehicles: map[uuid.UUID]models.Vehicle{},
		clients:  map[uuid.UUID]models.Client{},
		bookings: map[uuid.UUID]models.Booking{},
	}
}

func (f *memFleet) stores() repositories.Stores {
	return repositories.Stores{
		Vehicles:   &memVehicles{f},
		Clients:    &memClients{f},
		Bookings:   &memBookings{f},
		Extensions: &memExtensions{f},
	}
}

func (f *memFleet) WithinTx(ctx context.Context, fn func(s repositories.Stores) error) error {
	f.txMu.Lock()
	defer f.txMu.Unlock()

	f.mu.Lock()
	vehicles := cloneMap(f.vehicles)
	clients := cloneMap(f.clients)
	bookings := cloneMap(f.bookings)
	exts := append([]models.BookingExtension(nil), f.exts...)
	f.mu.Unlock()

	if err := fn(f.stores()); err != nil {
		f.mu.Lock()
		f.vehicles, f.clients, f.bookings, f.exts = vehicles, clients, bookings, exts
		f.mu.Unlock()
		return err
	}
	return nil
}

func cloneMap[V any](m map[uuid.UUID]V) map[uuid.UUID]V {
	out := make(map[uuid.UUID]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (f *memFleet) addVehicle(tenantID uuid.UUID, registration string, rate float64) models.Vehicle {
	f.mu.Lock()
	defer f.mu.Unlock()
	v := models.Vehicle{
		ID:                 uuid.New(),
		TenantID:           tenantID,
		Brand:              "Toyota",
		Model:              "Corolla",
		Year:               2022,
		RegistrationNumber: registration,
		DailyRate:          rate,
		Status:             models.VehicleStatusAvailable,
	}
	f.vehicles[v.ID] = v
	return v
}

func (f *memFleet) addClient(tenantID uuid.UUID, name, idNumber string) models.Client {
	f.mu.Lock()
	defer f.mu.Unlock()
	c := models.Client{ID: uuid.New(), TenantID: tenantID, Name: name, IDNumber: idNumber}
	f.clients[c.ID] = c
	return c
}

func (f *memFleet) vehicle(id uuid.UUID) models.Vehicle {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.vehicles[id]
}

func (f *memFleet) booking(id uuid.UUID) (models.Booking, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bookings[id]
	return b, ok
}

func (f *memFleet) extensionCount(bookingID uuid.UUID) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, e := range f.exts {
		if e.BookingID == bookingID {
			n++
		}
	}
	return n
}

type memVehicles struct{ f *memFleet }

func (r *memVehicles) Create(ctx context.Context, vehicle *models.Vehicle) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	for _, v := range r.f.vehicles {
		if v.TenantID == vehicle.TenantID && v.RegistrationNumber == vehicle.RegistrationNumber {
			return common.ConflictError("registration_number", "already exists for this account")
		}
	}
	r.f.vehicles[vehicle.ID] = *vehicle
	return nil
}

func (r *memVehicles) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Vehicle, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	v, ok := r.f.vehicles[id]
	if !ok || v.TenantID != tenantID {
		return nil, common.NotFoundError("vehicle")
	}
	return &v, nil
}

func (r *memVehicles) GetForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*models.Vehicle, error) {
	return r.GetByID(ctx, tenantID, id)
}

func (r *memVehicles) GetByRegistration(ctx context.Context, tenantID uuid.UUID, registration string) (*models.Vehicle, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	for _, v := range r.f.vehicles {
		if v.TenantID == tenantID && v.RegistrationNumber == registration {
			return &v, nil
		}
	}
	return nil, common.NotFoundError("vehicle")
}

func (r *memVehicles) List(ctx context.Context, tenantID uuid.UUID, filter models.VehicleFilter) ([]*models.Vehicle, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	out := []*models.Vehicle{}
	for _, v := range r.f.vehicles {
		if v.TenantID == tenantID && (filter.Status == nil || v.Status == *filter.Status) {
			v := v
			out = append(out, &v)
		}
	}
	return out, nil
}

func (r *memVehicles) Update(ctx context.Context, vehicle *models.Vehicle) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	v, ok := r.f.vehicles[vehicle.ID]
	if !ok || v.TenantID != vehicle.TenantID {
		return common.NotFoundError("vehicle")
	}
	r.f.vehicles[vehicle.ID] = *vehicle
	return nil
}

func (r *memVehicles) UpdateStatus(ctx context.Context, tenantID, id uuid.UUID, status models.VehicleStatus) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	if err := r.f.failVehicleStatus; err != nil {
		r.f.failVehicleStatus = nil
		return err
	}
	v, ok := r.f.vehicles[id]
	if !ok || v.TenantID != tenantID {
		return common.NotFoundError("vehicle")
	}
	v.Status = status
	r.f.vehicles[id] = v
	return nil
}

func (r *memVehicles) UpdateImage(ctx context.Context, tenantID, id uuid.UUID, imageURL *string) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	v, ok := r.f.vehicles[id]
	if !ok || v.TenantID != tenantID {
		return common.NotFoundError("vehicle")
	}
	v.ImageURL = imageURL
	r.f.vehicles[id] = v
	return nil
}

func (r *memVehicles) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	v, ok := r.f.vehicles[id]
	if !ok || v.TenantID != tenantID {
		return common.NotFoundError("vehicle")
	}
	delete(r.f.vehicles, id)
	for bid, b := range r.f.bookings {
		if b.VehicleID == id {
			delete(r.f.bookings, bid)
		}
	}
	return nil
}

type memClients struct{ f *memFleet }

func (r *memClients) Create(ctx context.Context, client *models.Client) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	r.f.clients[client.ID] = *client
	return nil
}

func (r *memClients) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Client, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	c, ok := r.f.clients[id]
	if !ok || c.TenantID != tenantID {
		return nil, common.NotFoundError("client")
	}
	return &c, nil
}

func (r *memClients) GetForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*models.Client, error) {
	return r.GetByID(ctx, tenantID, id)
}

func (r *memClients) GetByIDNumber(ctx context.Context, tenantID uuid.UUID, idNumber string) (*models.Client, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	for _, c := range r.f.clients {
		if c.TenantID == tenantID && c.IDNumber == idNumber {
			return &c, nil
		}
	}
	return nil, common.NotFoundError("client")
}

func (r *memClients) GetByEmail(ctx context.Context, tenantID uuid.UUID, email string) (*models.Client, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	for _, c := range r.f.clients {
		if c.TenantID == tenantID && c.Email != nil && strings.EqualFold(*c.Email, email) {
			return &c, nil
		}
	}
	return nil, common.NotFoundError("client")
}

func (r *memClients) List(ctx context.Context, tenantID uuid.UUID, filter models.ClientFilter) ([]*models.Client, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	out := []*models.Client{}
	for _, c := range r.f.clients {
		if c.TenantID == tenantID {
			c := c
			out = append(out, &c)
		}
	}
	return out, nil
}

func (r *memClients) Update(ctx context.Context, client *models.Client) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	c, ok := r.f.clients[client.ID]
	if !ok || c.TenantID != client.TenantID {
		return common.NotFoundError("client")
	}
	r.f.clients[client.ID] = *client
	return nil
}

func (r *memClients) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	c, ok := r.f.clients[id]
	if !ok || c.TenantID != tenantID {
		return common.NotFoundError("client")
	}
	delete(r.f.clients, id)
	return nil
}

type memBookings struct{ f *memFleet }

func (r *memBookings) Create(ctx context.Context, booking *models.Booking) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	booking.CreatedAt = time.Now()
	booking.UpdatedAt = booking.CreatedAt
	r.f.bookings[booking.ID] = *booking
	return nil
}

func (r *memBookings) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Booking, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	b, ok := r.f.bookings[id]
	if !ok || b.TenantID != tenantID {
		return nil, common.NotFoundError("booking")
	}
	return &b, nil
}

func (r *memBookings) GetForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*models.Booking, error) {
	return r.GetByID(ctx, tenantID, id)
}

func (r *memBookings) List(ctx context.Context, tenantID uuid.UUID, filter models.BookingFilter) ([]*models.BookingView, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	out := []*models.BookingView{}
	for _, b := range r.f.bookings {
		if b.TenantID != tenantID {
			continue
		}
		if filter.VehicleID != nil && b.VehicleID != *filter.VehicleID {
			continue
		}
		if filter.ClientID != nil && b.ClientID != *filter.ClientID {
			continue
		}
		if len(filter.Statuses) > 0 && !containsStatus(filter.Statuses, b.Status) {
			continue
		}
		out = append(out, &models.BookingView{Booking: b})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartDate.After(out[j].StartDate) })
	return out, nil
}

func containsStatus(statuses []models.BookingStatus, s models.BookingStatus) bool {
	for _, st := range statuses {
		if st == s {
			return true
		}
	}
	return false
}

func (r *memBookings) CountOverlapping(ctx context.Context, tenantID, vehicleID uuid.UUID, start, end time.Time, excludeID *uuid.UUID) (int, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	n := 0
	for _, b := range r.f.bookings {
		if b.TenantID != tenantID || b.VehicleID != vehicleID || !b.Status.Blocking() {
			continue
		}
		if excludeID != nil && b.ID == *excludeID {
			continue
		}
		if Overlaps(b.StartDate, b.EndDate, start, end) {
			n++
		}
	}
	return n, nil
}

func (r *memBookings) countActive(tenantID uuid.UUID, match func(b models.Booking) bool) int {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	n := 0
	for _, b := range r.f.bookings {
		if b.TenantID == tenantID && b.Status == models.BookingStatusActive && match(b) {
			n++
		}
	}
	return n
}

func (r *memBookings) CountActiveByVehicle(ctx context.Context, tenantID, vehicleID uuid.UUID) (int, error) {
	return r.countActive(tenantID, func(b models.Booking) bool { return b.VehicleID == vehicleID }), nil
}

func (r *memBookings) CountActiveByClient(ctx context.Context, tenantID, clientID uuid.UUID) (int, error) {
	return r.countActive(tenantID, func(b models.Booking) bool { return b.ClientID == clientID }), nil
}

func (r *memBookings) update(tenantID, id uuid.UUID, fn func(b *models.Booking)) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	b, ok := r.f.bookings[id]
	if !ok || b.TenantID != tenantID {
		return common.NotFoundError("booking")
	}
	fn(&b)
	r.f.bookings[id] = b
	return nil
}

func (r *memBookings) UpdateStatus(ctx context.Context, tenantID, id uuid.UUID, status models.BookingStatus) error {
	return r.update(tenantID, id, func(b *models.Booking) { b.Status = status })
}

func (r *memBookings) UpdateVehicle(ctx context.Context, tenantID, id, vehicleID uuid.UUID) error {
	return r.update(tenantID, id, func(b *models.Booking) { b.VehicleID = vehicleID })
}

func (r *memBookings) UpdateSchedule(ctx context.Context, tenantID, id uuid.UUID, endDate time.Time, endAt *time.Time, totalPrice float64) error {
	return r.update(tenantID, id, func(b *models.Booking) {
		b.EndDate, b.EndAt, b.TotalPrice = endDate, endAt, totalPrice
	})
}

func (r *memBookings) UpdateNotes(ctx context.Context, tenantID, id uuid.UUID, notes *string) error {
	return r.update(tenantID, id, func(b *models.Booking) { b.Notes = notes })
}

func (r *memBookings) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	b, ok := r.f.bookings[id]
	if !ok || b.TenantID != tenantID {
		return common.NotFoundError("booking")
	}
	delete(r.f.bookings, id)
	return nil
}

type memExtensions struct{ f *memFleet }

func (r *memExtensions) Create(ctx context.Context, extension *models.BookingExtension) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	extension.CreatedAt = time.Now()
	r.f.exts = append(r.f.exts, *extension)
	return nil
}

func (r *memExtensions) ListByBooking(ctx context.Context, tenantID, bookingID uuid.UUID) ([]*models.BookingExtension, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	out := []*models.BookingExtension{}
	if b, ok := r.f.bookings[bookingID]; !ok || b.TenantID != tenantID {
		return out, nil
	}
	for _, e := range r.f.exts {
		if e.BookingID == bookingID {
			e := e
			out = append(out, &e)
		}
	}
	return out, nil
}

func (r *memExtensions) DeleteByBooking(ctx context.Context, tenantID, bookingID uuid.UUID) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	kept := r.f.exts[:0]
	for _, e := range r.f.exts {
		if e.BookingID != bookingID {
			kept = append(kept, e)
		}
	}
	r.f.exts = kept
	return nil
}
