package appointment

import (
	"context"
	"fmt"

	"github.com/mariodiaz1375/consultorio-supabase/internal/domain/audit"
	"github.com/mariodiaz1375/consultorio-supabase/internal/domain/catalog"
)

const deletedStatus = "ELIMINADO"

// trackedFields are the scheduling attributes whose change is a
// rescheduling. Status is classified separately and takes priority.
var trackedFields = []audit.Field[Appointment]{
	audit.Track("fecha",
		func(a *Appointment) string { return a.Date.String() },
		func(a *Appointment) string { return a.Date.Display() }),
	audit.Track("horario",
		func(a *Appointment) int64 { return a.slotKey() },
		func(a *Appointment) string { return a.slotDisplay() }),
	audit.Track("odontólogo",
		func(a *Appointment) int64 { return a.DentistID },
		func(a *Appointment) string { return a.DentistName }),
	audit.Track("paciente",
		func(a *Appointment) int64 { return a.PatientID },
		func(a *Appointment) string { return a.PatientName }),
}

// Classify turns a completed write into the audit row it deserves, or nil
// when nothing worth recording changed.
func Classify(ev audit.Event[Appointment]) *audit.AppointmentRecord {
	switch {
	case ev.Op == audit.OpCreate && ev.After != nil:
		a := ev.After
		rec := snapshot(a, ev)
		rec.Action = audit.ActionCreate
		rec.NewStatus = strPtr(a.StatusName)
		rec.Observations = fmt.Sprintf("Turno agendado para %s con %s el %s a las %s.",
			a.PatientName, a.DentistName, a.Date.Display(), a.slotDisplay())
		return rec

	case ev.Op == audit.OpDelete && ev.Before != nil:
		b := ev.Before
		rec := snapshot(b, ev)
		rec.TurnoID = nil
		rec.Action = audit.ActionDelete
		rec.PreviousStatus = strPtr(b.StatusName)
		rec.NewStatus = strPtr(deletedStatus)
		rec.Observations = "Turno eliminado. El horario quedó liberado."
		return rec

	case ev.Op == audit.OpUpdate && ev.Before != nil && ev.After != nil:
		b, a := ev.Before, ev.After
		if b.StatusID != a.StatusID {
			rec := snapshot(a, ev)
			rec.Action = audit.ActionStatusChange
			rec.PreviousStatus = strPtr(b.StatusName)
			rec.NewStatus = strPtr(a.StatusName)
			rec.Observations = statusMessage(b.StatusName, a.StatusName)
			return rec
		}
		changes := audit.Diff(trackedFields, b, a)
		if len(changes) == 0 {
			return nil
		}
		rec := snapshot(a, ev)
		rec.Action = audit.ActionModify
		rec.NewStatus = strPtr(a.StatusName)
		rec.Observations = "Turno reprogramado: " + audit.JoinChanges(changes) + "."
		return rec
	}
	return nil
}

func statusMessage(from, to string) string {
	switch to {
	case catalog.StatusAttended:
		return fmt.Sprintf("Turno marcado como ATENDIDO (antes: %s).", from)
	case catalog.StatusCancelled:
		return fmt.Sprintf("Turno CANCELADO por inasistencia o imposibilidad (antes: %s). El horario NO fue liberado.", from)
	}
	return fmt.Sprintf("Estado cambiado de '%s' a '%s'.", from, to)
}

func snapshot(a *Appointment, ev audit.Event[Appointment]) *audit.AppointmentRecord {
	id := a.ID
	date := a.Date
	rec := &audit.AppointmentRecord{
		TurnoID:         &id,
		UserID:          ev.ActorID,
		ActionAt:        ev.At,
		TurnoNumber:     a.ID,
		PatientName:     a.PatientName,
		PatientDNI:      a.PatientDNI,
		DentistName:     a.DentistName,
		AppointmentDate: &date,
	}
	if a.SlotID != nil && a.SlotTime != "" {
		rec.AppointmentTime = strPtr(a.SlotTime)
	}
	return rec
}

func strPtr(s string) *string { return &s }

// NewAuditHook records every classified write in auditoria_turnos.
func NewAuditHook(repo audit.AppointmentRepository) audit.Hook[Appointment] {
	return audit.HookFunc[Appointment](func(ctx context.Context, ev audit.Event[Appointment]) error {
		rec := Classify(ev)
		if rec == nil {
			return nil
		}
		return repo.Insert(ctx, rec)
	})
}
