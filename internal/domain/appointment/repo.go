package appointment

import (
	"context"

	"github.com/mariodiaz1375/consultorio-supabase/pkg/civil"
)

type Repository interface {
	Create(ctx context.Context, a *Appointment) error
	GetByID(ctx context.Context, id int64) (*Appointment, error)
	Update(ctx context.Context, a *Appointment) error
	Delete(ctx context.Context, id int64) error
	Search(ctx context.Context, params map[string]string, limit, offset int) ([]*Appointment, int, error)

	// ExistsBooking reports whether another appointment (not excludeID)
	// holds the dentist's slot on date.
	ExistsBooking(ctx context.Context, dentistID int64, date civil.Date, slotID, excludeID int64) (bool, error)
	Availability(ctx context.Context, dentistID int64, date civil.Date) ([]*SlotAvailability, error)

	ListNotes(ctx context.Context, appointmentID int64) ([]*Note, error)
	AddNote(ctx context.Context, n *Note) error
}
