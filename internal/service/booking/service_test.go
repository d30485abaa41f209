package booking

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/scheduler-api/internal/model"
	"github.com/jwalitptl/scheduler-api/internal/repository"
	apperrors "github.com/jwalitptl/scheduler-api/pkg/errors"
	"github.com/jwalitptl/scheduler-api/pkg/metrics"
)

var testMetrics = metrics.NewMetrics("test", "booking")

// fakeStore backs both repository fakes so slot state and bookings share one
// lock, the way a database would.
type fakeStore struct {
	mu       sync.Mutex
	doctors  map[uuid.UUID]*model.Doctor
	bookings []*model.Booking

	// injected once, consumed on the next Allocate call
	allocateErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{doctors: make(map[uuid.UUID]*model.Doctor)}
}

type fakeDoctorRepo struct{ store *fakeStore }

func (r *fakeDoctorRepo) Create(_ context.Context, doctor *model.Doctor) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.doctors[doctor.ID] = doctor
	return nil
}

func (r *fakeDoctorRepo) Get(_ context.Context, id uuid.UUID) (*model.Doctor, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	doctor, ok := r.store.doctors[id]
	if !ok {
		return nil, repository.ErrNotFound
	}

	// Copy so callers see a snapshot, as a real read would return.
	copied := *doctor
	copied.Slots = append([]model.Slot(nil), doctor.Slots...)
	return &copied, nil
}

func (r *fakeDoctorRepo) List(_ context.Context) ([]*model.Doctor, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var doctors []*model.Doctor
	for _, d := range r.store.doctors {
		doctors = append(doctors, d)
	}
	return doctors, nil
}

type fakeBookingRepo struct{ store *fakeStore }

func (r *fakeBookingRepo) Allocate(_ context.Context, booking *model.Booking) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if err := r.store.allocateErr; err != nil {
		r.store.allocateErr = nil
		return err
	}

	doctor, ok := r.store.doctors[booking.DoctorID]
	if !ok {
		return repository.ErrNotFound
	}

	for i := range doctor.Slots {
		if doctor.Slots[i].ID != booking.SlotID {
			continue
		}
		if !doctor.Slots[i].Available {
			return repository.ErrSlotUnavailable
		}
		doctor.Slots[i].Available = false
		booking.ID = uuid.New()
		r.store.bookings = append(r.store.bookings, booking)
		return nil
	}
	return repository.ErrSlotUnavailable
}

func (r *fakeBookingRepo) ReleaseSlot(_ context.Context, doctorID, slotID uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	doctor, ok := r.store.doctors[doctorID]
	if !ok {
		return repository.ErrNotFound
	}

	for i := range doctor.Slots {
		if doctor.Slots[i].ID == slotID {
			doctor.Slots[i].Available = true
			return nil
		}
	}
	return repository.ErrNotFound
}

func newTestService(store *fakeStore) *Service {
	return NewService(&fakeDoctorRepo{store: store}, &fakeBookingRepo{store: store}, testMetrics)
}

func seedDoctor(store *fakeStore, availability ...bool) *model.Doctor {
	base := time.Date(2024, time.March, 4, 9, 0, 0, 0, time.UTC)
	doctor := &model.Doctor{FullName: "Dr. Test"}
	doctor.ID = uuid.New()
	for i, available := range availability {
		start := base.Add(time.Duration(i) * time.Hour)
		doctor.Slots = append(doctor.Slots, model.Slot{
			ID:        uuid.New(),
			DoctorID:  doctor.ID,
			Number:    i + 1,
			StartTime: start,
			EndTime:   start.Add(time.Hour),
			Available: available,
		})
	}
	store.doctors[doctor.ID] = doctor
	return doctor
}

func allocateReq(doctorID uuid.UUID) *model.CreateBookingRequest {
	return &model.CreateBookingRequest{
		FullName: "Pat Example",
		Email:    "pat@example.com",
		DoctorID: doctorID.String(),
	}
}

func TestAllocate_PicksFirstAvailable(t *testing.T) {
	store := newFakeStore()
	doctor := seedDoctor(store, true, true, false)
	svc := newTestService(store)

	resp, err := svc.Allocate(context.Background(), allocateReq(doctor.ID))
	require.NoError(t, err)

	assert.Equal(t, doctor.Slots[0].ID, resp.Slot.ID)
	assert.Equal(t, 1, resp.Slot.Number)
	assert.False(t, resp.Slot.Available)
	assert.Equal(t, "Pat Example", resp.Patient.FullName)

	require.Len(t, store.bookings, 1)
	assert.Equal(t, doctor.Slots[0].ID, store.bookings[0].SlotID)
	assert.False(t, store.doctors[doctor.ID].Slots[0].Available)
	assert.True(t, store.doctors[doctor.ID].Slots[1].Available)
}

func TestAllocate_SkipsTakenSlots(t *testing.T) {
	store := newFakeStore()
	doctor := seedDoctor(store, false, false, true)
	svc := newTestService(store)

	resp, err := svc.Allocate(context.Background(), allocateReq(doctor.ID))
	require.NoError(t, err)
	assert.Equal(t, 3, resp.Slot.Number)
}

func TestAllocate_NoAvailability(t *testing.T) {
	store := newFakeStore()
	doctor := seedDoctor(store, false, false)
	svc := newTestService(store)

	_, err := svc.Allocate(context.Background(), allocateReq(doctor.ID))
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrNoAvailability))
	assert.Empty(t, store.bookings, "no booking must be created without an allocation")
}

func TestAllocate_DoctorNotFound(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)

	_, err := svc.Allocate(context.Background(), allocateReq(uuid.New()))
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrNotFound))
}

func TestAllocate_RejectsMalformedEmail(t *testing.T) {
	store := newFakeStore()
	seedDoctor(store, true, true)
	svc := newTestService(store)

	_, err := svc.Allocate(context.Background(), &model.CreateBookingRequest{
		FullName: "Pat Example",
		Email:    "not-an-email",
		DoctorID: uuid.New().String(),
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrInvalidInput))
	assert.Empty(t, store.bookings)
}

func TestAllocate_InvalidDoctorID(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)

	_, err := svc.Allocate(context.Background(), &model.CreateBookingRequest{
		FullName: "Pat Example",
		Email:    "pat@example.com",
		DoctorID: "not-a-uuid",
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrInvalidInput))
}

func TestAllocate_RetriesWhenClaimLost(t *testing.T) {
	store := newFakeStore()
	doctor := seedDoctor(store, true, true)
	store.allocateErr = repository.ErrSlotUnavailable
	svc := newTestService(store)

	resp, err := svc.Allocate(context.Background(), allocateReq(doctor.ID))
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Slot.Number)
	require.Len(t, store.bookings, 1)
}

func TestAllocate_PersistenceFailureLeavesSlotFree(t *testing.T) {
	store := newFakeStore()
	doctor := seedDoctor(store, true)
	store.allocateErr = fmt.Errorf("connection reset")
	svc := newTestService(store)

	_, err := svc.Allocate(context.Background(), allocateReq(doctor.ID))
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrPersistence))

	assert.True(t, store.doctors[doctor.ID].Slots[0].Available, "failed write must not strand a claimed slot")
	assert.Empty(t, store.bookings)
}

func TestAllocate_ConcurrentRequestsNeverDoubleBook(t *testing.T) {
	const free = 5
	const requests = 20

	store := newFakeStore()
	availability := make([]bool, free+3)
	for i := 0; i < free; i++ {
		availability[i] = true
	}
	doctor := seedDoctor(store, availability...)
	svc := newTestService(store)

	var wg sync.WaitGroup
	results := make(chan error, requests)
	for i := 0; i < requests; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Allocate(context.Background(), allocateReq(doctor.ID))
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var successes, unavailable int
	for err := range results {
		switch {
		case err == nil:
			successes++
		case apperrors.IsCode(err, apperrors.ErrNoAvailability):
			unavailable++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}

	assert.Equal(t, free, successes)
	assert.Equal(t, requests-free, unavailable)

	require.Len(t, store.bookings, free)
	seen := make(map[uuid.UUID]bool)
	for _, b := range store.bookings {
		assert.False(t, seen[b.SlotID], "slot %s booked twice", b.SlotID)
		seen[b.SlotID] = true
	}
}

func TestRelease_FlipsSlotBack(t *testing.T) {
	store := newFakeStore()
	doctor := seedDoctor(store, false, false)
	svc := newTestService(store)

	err := svc.Release(context.Background(), doctor.ID, doctor.Slots[0].ID)
	require.NoError(t, err)
	assert.True(t, store.doctors[doctor.ID].Slots[0].Available)
	assert.False(t, store.doctors[doctor.ID].Slots[1].Available)
}

func TestRelease_IdempotentOnAvailableSlot(t *testing.T) {
	store := newFakeStore()
	doctor := seedDoctor(store, true)
	svc := newTestService(store)

	err := svc.Release(context.Background(), doctor.ID, doctor.Slots[0].ID)
	require.NoError(t, err)
	assert.True(t, store.doctors[doctor.ID].Slots[0].Available)
}

func TestRelease_KeepsBooking(t *testing.T) {
	store := newFakeStore()
	doctor := seedDoctor(store, true)
	svc := newTestService(store)

	_, err := svc.Allocate(context.Background(), allocateReq(doctor.ID))
	require.NoError(t, err)
	require.Len(t, store.bookings, 1)

	err = svc.Release(context.Background(), doctor.ID, doctor.Slots[0].ID)
	require.NoError(t, err)

	assert.Len(t, store.bookings, 1, "historical booking must survive a release")
}

func TestRelease_UnknownSlot(t *testing.T) {
	store := newFakeStore()
	doctor := seedDoctor(store, true, false)
	svc := newTestService(store)

	err := svc.Release(context.Background(), doctor.ID, uuid.New())
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrNotFound))

	assert.True(t, store.doctors[doctor.ID].Slots[0].Available)
	assert.False(t, store.doctors[doctor.ID].Slots[1].Available)
}

func TestRelease_UnknownDoctor(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)

	err := svc.Release(context.Background(), uuid.New(), uuid.New())
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrNotFound))
}

func TestAllocate_ThenReleaseThenReallocate(t *testing.T) {
	store := newFakeStore()
	doctor := seedDoctor(store, true)
	svc := newTestService(store)

	first, err := svc.Allocate(context.Background(), allocateReq(doctor.ID))
	require.NoError(t, err)

	_, err = svc.Allocate(context.Background(), allocateReq(doctor.ID))
	require.Error(t, err)

	require.NoError(t, svc.Release(context.Background(), doctor.ID, first.Slot.ID))

	second, err := svc.Allocate(context.Background(), allocateReq(doctor.ID))
	require.NoError(t, err)
	assert.Equal(t, first.Slot.ID, second.Slot.ID)
}
