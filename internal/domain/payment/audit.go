package payment

import (
	"context"

	"github.com/mariodiaz1375/consultorio-supabase/internal/domain/audit"
)

// Classify maps a completed write to its audit row. Only transitions of
// pagado are recorded, plus deletions.
func Classify(ev audit.Event[Payment]) *audit.PaymentRecord {
	switch {
	case ev.Op == audit.OpCreate && ev.After != nil:
		if !ev.After.Paid {
			return nil
		}
		return record(ev.After, ev, audit.ActionRegister, "Pago registrado como pagado al momento de crear.")

	case ev.Op == audit.OpDelete && ev.Before != nil:
		rec := record(ev.Before, ev, audit.ActionCancel, "Pago eliminado.")
		rec.PagoID = nil
		return rec

	case ev.Op == audit.OpUpdate && ev.Before != nil && ev.After != nil:
		switch {
		case !ev.Before.Paid && ev.After.Paid:
			return record(ev.After, ev, audit.ActionRegister, "Pago marcado como pagado.")
		case ev.Before.Paid && !ev.After.Paid:
			return record(ev.After, ev, audit.ActionCancel, "Pago cancelado (desmarcado).")
		}
	}
	return nil
}

func record(p *Payment, ev audit.Event[Payment], action, msg string) *audit.PaymentRecord {
	id := p.ID
	return &audit.PaymentRecord{
		PagoID:          &id,
		Action:          action,
		UserID:          ev.ActorID,
		ActionAt:        ev.At,
		PagoNumber:      p.ID,
		HistoryNumber:   p.HistoryID,
		PaymentTypeName: p.PaymentTypeName,
		PatientName:     p.PatientName,
		PatientDNI:      p.PatientDNI,
		Amount:          p.Amount,
		Paid:            p.Paid,
		PaidAt:          p.PaidAt,
		Observations:    msg,
	}
}

// NewAuditHook records every classified write in auditoria_pagos.
func NewAuditHook(repo audit.PaymentRepository) audit.Hook[Payment] {
	return audit.HookFunc[Payment](func(ctx context.Context, ev audit.Event[Payment]) error {
		rec := Classify(ev)
		if rec == nil {
			return nil
		}
		return repo.Insert(ctx, rec)
	})
}
