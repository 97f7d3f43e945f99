package audit

import (
	"context"

	"github.com/mariodiaz1375/consultorio-supabase/pkg/pagination"
)

// Service is the read side of the audit trail. Records are written by the
// hooks of the appointment and payment services.
type Service struct {
	appointments AppointmentRepository
	payments     PaymentRepository
}

func NewService(appts AppointmentRepository, pays PaymentRepository) *Service {
	return &Service{appointments: appts, payments: pays}
}

func (s *Service) GetAppointmentRecord(ctx context.Context, id int64) (*AppointmentRecord, error) {
	return s.appointments.GetByID(ctx, id)
}

func (s *Service) SearchAppointmentRecords(ctx context.Context, f AppointmentFilter, page pagination.Page) ([]*AppointmentRecord, int, error) {
	return s.appointments.Search(ctx, f, page)
}

func (s *Service) GetPaymentRecord(ctx context.Context, id int64) (*PaymentRecord, error) {
	return s.payments.GetByID(ctx, id)
}

func (s *Service) SearchPaymentRecords(ctx context.Context, f PaymentFilter, page pagination.Page) ([]*PaymentRecord, int, error) {
	return s.payments.Search(ctx, f, page)
}
