package appointment

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/mariodiaz1375/consultorio-supabase/internal/domain/audit"
	"github.com/mariodiaz1375/consultorio-supabase/internal/domain/catalog"
	"github.com/mariodiaz1375/consultorio-supabase/internal/platform/apierr"
	"github.com/mariodiaz1375/consultorio-supabase/internal/platform/auth"
	"github.com/mariodiaz1375/consultorio-supabase/internal/platform/cache"
	"github.com/mariodiaz1375/consultorio-supabase/internal/platform/db"
	"github.com/mariodiaz1375/consultorio-supabase/pkg/civil"
	"github.com/mariodiaz1375/consultorio-supabase/pkg/pagination"
)

// -- Mocks --

var (
	dentists = map[int64]string{1: "Ana Ruiz", 2: "Pedro Sosa"}
	patients = map[int64][2]string{10: {"Lucía Gómez", "30111222"}, 11: {"Mario Díaz", "28999000"}}
	slots    = map[int64]string{1: "09:00", 2: "09:30", 3: "10:00"}
	statuses = map[int64]string{1: catalog.StatusScheduled, 2: catalog.StatusAttended, 3: catalog.StatusCancelled, 4: "En espera"}
)

type mockRepo struct {
	store  map[int64]*Appointment
	notes  map[int64][]*Note
	nextID int64
	// skipPrecheck makes ExistsBooking always answer false, as a racing
	// writer would observe.
	skipPrecheck bool
}

func newMockRepo() *mockRepo {
	return &mockRepo{store: make(map[int64]*Appointment), notes: make(map[int64][]*Note)}
}

func (m *mockRepo) taken(a *Appointment, excludeID int64) bool {
	if a.SlotID == nil {
		return false
	}
	for _, o := range m.store {
		if o.ID != excludeID && o.DentistID == a.DentistID && o.Date.Equal(a.Date) &&
			o.SlotID != nil && *o.SlotID == *a.SlotID {
			return true
		}
	}
	return false
}

func (m *mockRepo) Create(_ context.Context, a *Appointment) error {
	if m.taken(a, 0) {
		return &db.ConstraintError{Kind: db.ErrConflict, Constraint: "turnos_agenda_unica"}
	}
	m.nextID++
	a.ID = m.nextID
	m.store[a.ID] = clone(a)
	return nil
}

// clone copies a row so callers never share the stored slot pointer.
func clone(a *Appointment) *Appointment {
	cp := *a
	if a.SlotID != nil {
		sid := *a.SlotID
		cp.SlotID = &sid
	}
	return &cp
}

func (m *mockRepo) GetByID(_ context.Context, id int64) (*Appointment, error) {
	a, ok := m.store[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	cp := clone(a)
	cp.DentistName = dentists[cp.DentistID]
	cp.PatientName = patients[cp.PatientID][0]
	cp.PatientDNI = patients[cp.PatientID][1]
	cp.StatusName = statuses[cp.StatusID]
	cp.SlotTime = ""
	if cp.SlotID != nil {
		cp.SlotTime = slots[*cp.SlotID]
	}
	return cp, nil
}

func (m *mockRepo) Update(_ context.Context, a *Appointment) error {
	if _, ok := m.store[a.ID]; !ok {
		return db.ErrNotFound
	}
	if m.taken(a, a.ID) {
		return &db.ConstraintError{Kind: db.ErrConflict, Constraint: "turnos_agenda_unica"}
	}
	m.store[a.ID] = clone(a)
	return nil
}

func (m *mockRepo) Delete(_ context.Context, id int64) error {
	if _, ok := m.store[id]; !ok {
		return db.ErrNotFound
	}
	delete(m.store, id)
	return nil
}

func (m *mockRepo) Search(ctx context.Context, params map[string]string, limit, offset int) ([]*Appointment, int, error) {
	var all []*Appointment
	for id, a := range m.store {
		if v, ok := params["fecha"]; ok && a.Date.String() != v {
			continue
		}
		cp, _ := m.GetByID(ctx, id)
		all = append(all, cp)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	total := len(all)
	if offset >= total {
		return []*Appointment{}, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return all[offset:end], total, nil
}

func (m *mockRepo) ExistsBooking(_ context.Context, dentistID int64, date civil.Date, slotID, excludeID int64) (bool, error) {
	if m.skipPrecheck {
		return false, nil
	}
	return m.taken(&Appointment{DentistID: dentistID, Date: date, SlotID: &slotID}, excludeID), nil
}

func (m *mockRepo) Availability(_ context.Context, dentistID int64, date civil.Date) ([]*SlotAvailability, error) {
	var ids []int64
	for id := range slots {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	items := []*SlotAvailability{}
	for _, id := range ids {
		s := &SlotAvailability{SlotID: id, Time: slots[id], Available: true}
		for _, a := range m.store {
			if a.DentistID == dentistID && a.Date.Equal(date) && a.SlotID != nil && *a.SlotID == id {
				aid := a.ID
				s.Available, s.AppointmentID = false, &aid
			}
		}
		items = append(items, s)
	}
	return items, nil
}

func (m *mockRepo) ListNotes(_ context.Context, appointmentID int64) ([]*Note, error) {
	return append([]*Note{}, m.notes[appointmentID]...), nil
}

func (m *mockRepo) AddNote(_ context.Context, n *Note) error {
	n.ID = int64(len(m.notes[n.AppointmentID]) + 1)
	n.Date = time.Now()
	cp := *n
	m.notes[n.AppointmentID] = append(m.notes[n.AppointmentID], &cp)
	return nil
}

type mockAuditRepo struct {
	records []*audit.AppointmentRecord
	err     error
}

func (m *mockAuditRepo) Insert(_ context.Context, r *audit.AppointmentRecord) error {
	if m.err != nil {
		return m.err
	}
	r.ID = int64(len(m.records) + 1)
	m.records = append(m.records, r)
	return nil
}

func (m *mockAuditRepo) GetByID(_ context.Context, id int64) (*audit.AppointmentRecord, error) {
	if id < 1 || int(id) > len(m.records) {
		return nil, db.ErrNotFound
	}
	return m.records[id-1], nil
}

func (m *mockAuditRepo) Search(_ context.Context, _ audit.AppointmentFilter, _ pagination.Page) ([]*audit.AppointmentRecord, int, error) {
	return m.records, len(m.records), nil
}

type mockLookup struct{}

func (mockLookup) FindByName(_ context.Context, slug, name string) (*catalog.Item, error) {
	if slug != catalog.KindStatuses {
		return nil, db.ErrNotFound
	}
	for id, n := range statuses {
		if n == name {
			return &catalog.Item{ID: id, Name: n}, nil
		}
	}
	return nil, db.ErrNotFound
}

type busyLocker struct{}

func (busyLocker) WithSlotLock(context.Context, cache.SlotKey, func(context.Context) error) error {
	return cache.ErrLockNotAcquired
}

// recordingLocker remembers the keys it was asked to lock.
type recordingLocker struct{ keys []string }

func (l *recordingLocker) WithSlotLock(ctx context.Context, key cache.SlotKey, fn func(context.Context) error) error {
	l.keys = append(l.keys, key.String())
	return fn(ctx)
}

type testEnv struct {
	svc    *Service
	repo   *mockRepo
	audits *mockAuditRepo
}

func newTestEnvWithLocker(locker cache.Locker) *testEnv {
	repo := newMockRepo()
	audits := &mockAuditRepo{}
	events := audit.NewDispatcher[Appointment]("turno", db.NopTransactor{}, zerolog.Nop(), NewAuditHook(audits))
	svc := NewService(repo, db.NopTransactor{}, locker, mockLookup{}, events)
	svc.now = func() time.Time { return time.Date(2024, 4, 20, 12, 0, 0, 0, time.UTC) }
	return &testEnv{svc: svc, repo: repo, audits: audits}
}

func newTestEnv() *testEnv { return newTestEnvWithLocker(nil) }

func ptr[T any](v T) *T { return &v }

func booking(dentist int64, date civil.Date, slot *int64) *Appointment {
	return &Appointment{DentistID: dentist, PatientID: 10, Date: date, SlotID: slot, Reason: "Control"}
}

var may1 = civil.NewDate(2024, time.May, 1)

func expectSlotConflict(t *testing.T, err error) {
	t.Helper()
	var ve *apierr.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if ve.Fields["horario_id"] == "" {
		t.Errorf("expected horario_id conflict, got %v", ve.Fields)
	}
}

// -- Booking guard --

func TestService_Create_DoubleBookingRejected(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	if _, err := env.svc.Create(ctx, booking(1, may1, ptr(int64(1)))); err != nil {
		t.Fatalf("first booking: %v", err)
	}
	_, err := env.svc.Create(ctx, booking(1, may1, ptr(int64(1))))
	expectSlotConflict(t, err)

	if len(env.repo.store) != 1 {
		t.Errorf("expected a single stored appointment, got %d", len(env.repo.store))
	}
	if len(env.audits.records) != 1 {
		t.Errorf("expected the rejected booking to leave no audit row, got %d", len(env.audits.records))
	}
}

func TestService_Create_NullSlotsExempt(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, err := env.svc.Create(ctx, booking(1, may1, nil)); err != nil {
			t.Fatalf("unscheduled booking %d: %v", i, err)
		}
	}
	if len(env.repo.store) != 2 {
		t.Errorf("expected 2 unscheduled appointments, got %d", len(env.repo.store))
	}
}

func TestService_Create_SameSlotOtherDentistOrDay(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	slot := ptr(int64(1))

	for _, a := range []*Appointment{
		booking(1, may1, slot),
		booking(2, may1, slot),
		booking(1, civil.NewDate(2024, time.May, 2), slot),
	} {
		if _, err := env.svc.Create(ctx, a); err != nil {
			t.Fatalf("booking %+v: %v", a, err)
		}
	}
}

func TestService_Create_StorageDecidesUnderRace(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	env.svc.Create(ctx, booking(1, may1, ptr(int64(1))))

	env.repo.skipPrecheck = true
	_, err := env.svc.Create(ctx, booking(1, may1, ptr(int64(1))))
	expectSlotConflict(t, err)
}

func TestService_Create_LockBusy(t *testing.T) {
	env := newTestEnvWithLocker(busyLocker{})
	_, err := env.svc.Create(context.Background(), booking(1, may1, ptr(int64(1))))
	expectSlotConflict(t, err)

	// Unscheduled bookings do not take the lock.
	if _, err := env.svc.Create(context.Background(), booking(1, may1, nil)); err != nil {
		t.Errorf("expected unscheduled booking to bypass the lock, got %v", err)
	}
}

func TestService_Create_LocksSlotKey(t *testing.T) {
	locker := &recordingLocker{}
	env := newTestEnvWithLocker(locker)
	env.svc.Create(context.Background(), booking(1, may1, ptr(int64(3))))

	if len(locker.keys) != 1 || locker.keys[0] != "lock:slot:1:2024-05-01:3" {
		t.Errorf("unexpected lock keys %v", locker.keys)
	}
}

func TestService_Update_MoveOntoTakenSlot(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	env.svc.Create(ctx, booking(1, may1, ptr(int64(1))))
	b := booking(1, may1, ptr(int64(2)))
	env.svc.Create(ctx, b)

	b.SlotID = ptr(int64(1))
	_, err := env.svc.Update(ctx, b)
	expectSlotConflict(t, err)
}

func TestService_Update_KeepOwnSlot(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	a := booking(1, may1, ptr(int64(1)))
	env.svc.Create(ctx, a)

	a.Reason = "Dolor"
	if _, err := env.svc.Update(ctx, a); err != nil {
		t.Errorf("expected update on own slot to pass the guard, got %v", err)
	}
}

// -- Defaults and validation --

func TestService_Create_DefaultStatus(t *testing.T) {
	env := newTestEnv()
	a := booking(1, may1, nil)
	if _, err := env.svc.Create(context.Background(), a); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if a.StatusName != catalog.StatusScheduled {
		t.Errorf("expected status %q, got %q", catalog.StatusScheduled, a.StatusName)
	}
}

func TestService_Create_Validation(t *testing.T) {
	env := newTestEnv()
	_, err := env.svc.Create(context.Background(), &Appointment{SlotID: ptr(int64(0))})

	var ve *apierr.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	for _, f := range []string{"odontologo_id", "paciente_id", "fecha", "horario_id"} {
		if _, ok := ve.Fields[f]; !ok {
			t.Errorf("expected %s to be flagged", f)
		}
	}
}

// -- Audit --

func TestService_Create_Audited(t *testing.T) {
	env := newTestEnv()
	ctx := auth.ContextWithUser(context.Background(), "5", []string{auth.RoleSecretaria})
	a := booking(1, may1, ptr(int64(1)))

	rec, err := env.svc.Create(ctx, a)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(env.audits.records) != 1 {
		t.Fatalf("expected 1 audit row, got %d", len(env.audits.records))
	}
	got := env.audits.records[0]
	if got.Action != audit.ActionCreate {
		t.Errorf("expected %s, got %s", audit.ActionCreate, got.Action)
	}
	want := "Turno agendado para Lucía Gómez con Ana Ruiz el 01/05/2024 a las 09:00."
	if got.Observations != want {
		t.Errorf("observations = %q, want %q", got.Observations, want)
	}
	if got.UserID == nil || *got.UserID != 5 {
		t.Errorf("expected acting user 5, got %v", got.UserID)
	}
	if got.TurnoID == nil || *got.TurnoID != a.ID || got.TurnoNumber != a.ID {
		t.Errorf("expected turno reference %d, got %v/%d", a.ID, got.TurnoID, got.TurnoNumber)
	}
	if got.NewStatus == nil || *got.NewStatus != catalog.StatusScheduled || got.PreviousStatus != nil {
		t.Errorf("unexpected statuses %v → %v", got.PreviousStatus, got.NewStatus)
	}
	if rec == nil || rec.Observations != want {
		t.Errorf("expected computed record to be returned, got %+v", rec)
	}
}

func TestService_Create_NoSlotMessage(t *testing.T) {
	env := newTestEnv()
	env.svc.Create(context.Background(), booking(1, may1, nil))

	got := env.audits.records[0]
	if got.Observations != "Turno agendado para Lucía Gómez con Ana Ruiz el 01/05/2024 a las N/A." {
		t.Errorf("unexpected observations %q", got.Observations)
	}
	if got.AppointmentTime != nil {
		t.Errorf("expected no horario_turno, got %q", *got.AppointmentTime)
	}
}

func TestService_Update_StatusChanges(t *testing.T) {
	tests := []struct {
		name   string
		status int64
		want   string
	}{
		{"attended", 2, "Turno marcado como ATENDIDO (antes: Agendado)."},
		{"cancelled", 3, "Turno CANCELADO por inasistencia o imposibilidad (antes: Agendado). El horario NO fue liberado."},
		{"other", 4, "Estado cambiado de 'Agendado' a 'En espera'."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv()
			ctx := context.Background()
			a := booking(1, may1, ptr(int64(1)))
			env.svc.Create(ctx, a)

			// A status change wins over a simultaneous reschedule.
			a.StatusID = tt.status
			a.Date = civil.NewDate(2024, time.May, 3)
			if _, err := env.svc.Update(ctx, a); err != nil {
				t.Fatalf("Update: %v", err)
			}
			if len(env.audits.records) != 2 {
				t.Fatalf("expected 2 audit rows, got %d", len(env.audits.records))
			}
			got := env.audits.records[1]
			if got.Action != audit.ActionStatusChange {
				t.Errorf("expected %s, got %s", audit.ActionStatusChange, got.Action)
			}
			if got.Observations != tt.want {
				t.Errorf("observations = %q, want %q", got.Observations, tt.want)
			}
			if *got.PreviousStatus != catalog.StatusScheduled || *got.NewStatus != statuses[tt.status] {
				t.Errorf("unexpected statuses %s → %s", *got.PreviousStatus, *got.NewStatus)
			}
		})
	}
}

func TestService_Update_Reschedule(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	a := booking(1, may1, ptr(int64(1)))
	env.svc.Create(ctx, a)

	a.Date = civil.NewDate(2024, time.May, 2)
	a.SlotID = ptr(int64(3))
	a.DentistID = 2
	a.PatientID = 11
	if _, err := env.svc.Update(ctx, a); err != nil {
		t.Fatalf("Update: %v", err)
	}

	got := env.audits.records[len(env.audits.records)-1]
	if got.Action != audit.ActionModify {
		t.Fatalf("expected %s, got %s", audit.ActionModify, got.Action)
	}
	want := "Turno reprogramado: fecha (01/05/2024 → 02/05/2024), horario (09:00 → 10:00), " +
		"odontólogo (Ana Ruiz → Pedro Sosa), paciente (Lucía Gómez → Mario Díaz)."
	if got.Observations != want {
		t.Errorf("observations = %q, want %q", got.Observations, want)
	}
	if got.PatientDNI != "28999000" {
		t.Errorf("expected snapshot of the new patient, got %q", got.PatientDNI)
	}
}

func TestService_Update_UnscheduleListsOnlySlot(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	a := booking(1, may1, ptr(int64(2)))
	env.svc.Create(ctx, a)

	a.SlotID = nil
	env.svc.Update(ctx, a)

	got := env.audits.records[len(env.audits.records)-1]
	if got.Observations != "Turno reprogramado: horario (09:30 → N/A)." {
		t.Errorf("unexpected observations %q", got.Observations)
	}
}

func TestService_Update_UntrackedChangeNotAudited(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	a := booking(1, may1, ptr(int64(1)))
	env.svc.Create(ctx, a)

	a.Reason = "Extracción"
	rec, err := env.svc.Update(ctx, a)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if rec != nil {
		t.Errorf("expected no audit record, got %+v", rec)
	}
	if len(env.audits.records) != 1 {
		t.Errorf("expected only the creation row, got %d", len(env.audits.records))
	}
}

func TestService_Delete_Audited(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	a := booking(1, may1, ptr(int64(1)))
	env.svc.Create(ctx, a)
	env.svc.ChangeStatus(ctx, a.ID, 2)
	before := len(env.audits.records)

	if _, err := env.svc.Delete(ctx, a.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if len(env.audits.records) != before+1 {
		t.Fatalf("expected exactly one deletion row, got %d", len(env.audits.records)-before)
	}
	got := env.audits.records[len(env.audits.records)-1]
	if got.Action != audit.ActionDelete {
		t.Errorf("expected %s, got %s", audit.ActionDelete, got.Action)
	}
	if got.TurnoID != nil {
		t.Error("expected no live reference to the deleted turno")
	}
	if got.TurnoNumber != a.ID || got.PatientName != "Lucía Gómez" || got.PatientDNI != "30111222" || got.DentistName != "Ana Ruiz" {
		t.Errorf("expected last known snapshot, got %+v", got)
	}
	if got.AppointmentDate == nil || !got.AppointmentDate.Equal(may1) {
		t.Errorf("expected fecha_turno %s, got %v", may1, got.AppointmentDate)
	}
	if got.AppointmentTime == nil || *got.AppointmentTime != "09:00" {
		t.Errorf("expected horario_turno 09:00, got %v", got.AppointmentTime)
	}
	if *got.PreviousStatus != catalog.StatusAttended || *got.NewStatus != "ELIMINADO" {
		t.Errorf("unexpected statuses %s → %s", *got.PreviousStatus, *got.NewStatus)
	}
	if got.Observations != "Turno eliminado. El horario quedó liberado." {
		t.Errorf("unexpected observations %q", got.Observations)
	}

	// The slot is free again.
	if _, err := env.svc.Create(ctx, booking(1, may1, ptr(int64(1)))); err != nil {
		t.Errorf("expected freed slot to be bookable, got %v", err)
	}
}

func TestService_Delete_NotFound(t *testing.T) {
	env := newTestEnv()
	if _, err := env.svc.Delete(context.Background(), 9); !errors.Is(err, db.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if len(env.audits.records) != 0 {
		t.Error("expected no audit row for a missing appointment")
	}
}

func TestService_AuditFailureDoesNotBlockWrite(t *testing.T) {
	env := newTestEnv()
	env.audits.err = errors.New("audit table unavailable")

	a := booking(1, may1, ptr(int64(1)))
	rec, err := env.svc.Create(context.Background(), a)
	if err != nil {
		t.Fatalf("expected write to succeed despite audit failure, got %v", err)
	}
	if rec != nil {
		t.Errorf("expected no audit record when the insert failed, got %+v", rec)
	}
	if _, ok := env.repo.store[a.ID]; !ok {
		t.Error("expected appointment to be stored")
	}
}

func TestService_ChangeStatus(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	a := booking(1, may1, ptr(int64(1)))
	env.svc.Create(ctx, a)

	got, rec, err := env.svc.ChangeStatus(ctx, a.ID, 3)
	if err != nil {
		t.Fatalf("ChangeStatus: %v", err)
	}
	if got.StatusName != catalog.StatusCancelled || got.Reason != "Control" {
		t.Errorf("unexpected appointment %+v", got)
	}
	if rec == nil || rec.Action != audit.ActionStatusChange {
		t.Errorf("expected status change record, got %+v", rec)
	}

	if _, _, err := env.svc.ChangeStatus(ctx, a.ID, 0); err == nil {
		t.Error("expected error for missing status")
	}
}

func TestService_StatusByName(t *testing.T) {
	env := newTestEnv()
	id, err := env.svc.StatusByName(context.Background(), " Atendido ")
	if err != nil || id != 2 {
		t.Errorf("expected id 2, got %d (%v)", id, err)
	}
	var ve *apierr.ValidationError
	if _, err := env.svc.StatusByName(context.Background(), "Perdido"); !errors.As(err, &ve) {
		t.Errorf("expected ValidationError, got %v", err)
	}
}

// -- Notes and availability --

func TestService_Notes(t *testing.T) {
	env := newTestEnv()
	a := booking(1, may1, nil)
	env.svc.Create(context.Background(), a)

	ctx := auth.ContextWithUser(context.Background(), "8", []string{auth.RoleAsistente})
	n := &Note{AppointmentID: a.ID, Description: "Paciente llamó para confirmar"}
	if err := env.svc.AddNote(ctx, n); err != nil {
		t.Fatalf("AddNote: %v", err)
	}
	if n.AuthorID == nil || *n.AuthorID != 8 {
		t.Errorf("expected author 8, got %v", n.AuthorID)
	}

	notes, err := env.svc.ListNotes(ctx, a.ID)
	if err != nil || len(notes) != 1 {
		t.Errorf("expected 1 note, got %d (%v)", len(notes), err)
	}

	if err := env.svc.AddNote(ctx, &Note{AppointmentID: a.ID}); err == nil {
		t.Error("expected error for empty note")
	}
	if err := env.svc.AddNote(ctx, &Note{AppointmentID: 99, Description: "x"}); !errors.Is(err, db.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestService_Availability(t *testing.T) {
	env := newTestEnv()
	env.svc.Create(context.Background(), booking(1, may1, ptr(int64(2))))

	items, err := env.svc.Availability(context.Background(), 1, may1)
	if err != nil {
		t.Fatalf("Availability: %v", err)
	}
	for _, s := range items {
		if (s.SlotID == 2) == s.Available {
			t.Errorf("slot %d: available = %v", s.SlotID, s.Available)
		}
	}
}
