package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/mariodiaz1375/consultorio-supabase/internal/config"
	"github.com/mariodiaz1375/consultorio-supabase/internal/domain/appointment"
	"github.com/mariodiaz1375/consultorio-supabase/internal/domain/catalog"
	"github.com/mariodiaz1375/consultorio-supabase/internal/domain/clinicalhistory"
	"github.com/mariodiaz1375/consultorio-supabase/internal/domain/patient"
	"github.com/mariodiaz1375/consultorio-supabase/internal/domain/payment"
	"github.com/mariodiaz1375/consultorio-supabase/internal/domain/staff"
	"github.com/mariodiaz1375/consultorio-supabase/internal/platform/apierr"
	"github.com/mariodiaz1375/consultorio-supabase/internal/platform/auth"
	"github.com/mariodiaz1375/consultorio-supabase/internal/platform/cache"
	"github.com/mariodiaz1375/consultorio-supabase/pkg/civil"
)

const positionDentist = "Odontólogo"

type seedOptions struct {
	Seed         int64
	Dentists     int
	Patients     int
	Appointments int
	Days         int
}

func seedCmd() *cobra.Command {
	opts := seedOptions{}
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Fill the database with fake dentists, patients, appointments and payments",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger := newLogger(cfg)

			ctx := context.Background()
			pool, err := connect(ctx, cfg)
			if err != nil {
				return err
			}
			defer pool.Close()

			svcs := newServices(pool, cache.NoopLocker{}, logger)
			return runSeed(ctx, svcs, opts, logger)
		},
	}
	cmd.Flags().Int64Var(&opts.Seed, "seed", 0, "Random seed (0 = time based)")
	cmd.Flags().IntVar(&opts.Dentists, "dentists", 3, "Number of dentists to create")
	cmd.Flags().IntVar(&opts.Patients, "patients", 30, "Number of patients to create")
	cmd.Flags().IntVar(&opts.Appointments, "appointments", 60, "Number of appointments to try to book")
	cmd.Flags().IntVar(&opts.Days, "days", 10, "Working days ahead to spread appointments over")
	return cmd
}

func runSeed(ctx context.Context, svcs *services, opts seedOptions, logger zerolog.Logger) error {
	if opts.Dentists < 1 || opts.Patients < 1 {
		return errors.New("seed needs at least one dentist and one patient")
	}
	if opts.Seed == 0 {
		opts.Seed = time.Now().UnixNano()
	}
	gofakeit.Seed(opts.Seed)
	ctx = auth.ContextWithUser(ctx, "seed", []string{auth.RoleAdmin})

	position, err := svcs.catalog.FindByName(ctx, catalog.KindPositions, positionDentist)
	if err != nil {
		return fmt.Errorf("lookup position %s: %w", positionDentist, err)
	}
	slots, err := svcs.catalog.ListTimeSlots(ctx)
	if err != nil {
		return fmt.Errorf("list time slots: %w", err)
	}
	payTypes, err := svcs.catalog.List(ctx, catalog.KindPaymentTypes)
	if err != nil {
		return fmt.Errorf("list payment types: %w", err)
	}
	if len(slots) == 0 || len(payTypes) == 0 {
		return errors.New("reference data missing, run migrate up first")
	}

	dentists := make([]*staff.Member, 0, opts.Dentists)
	for i := 0; i < opts.Dentists; i++ {
		m := &staff.Member{
			FirstName:     gofakeit.FirstName(),
			LastName:      gofakeit.LastName(),
			DNI:           gofakeit.Numerify("########"),
			Phone:         gofakeit.Phone(),
			Email:         gofakeit.Email(),
			LicenseNumber: gofakeit.Numerify("MP-#####"),
			PositionIDs:   []int64{position.ID},
		}
		if err := svcs.staff.Create(ctx, m); err != nil {
			return fmt.Errorf("create dentist: %w", err)
		}
		dentists = append(dentists, m)
	}
	logger.Info().Int("count", len(dentists)).Msg("dentists created")

	patients := make([]*patient.Patient, 0, opts.Patients)
	histories := make([]*clinicalhistory.History, 0, opts.Patients)
	for i := 0; i < opts.Patients; i++ {
		birth := civil.DateOf(gofakeit.DateRange(time.Now().AddDate(-80, 0, 0), time.Now().AddDate(-5, 0, 0)))
		p := &patient.Patient{
			FirstName: gofakeit.FirstName(),
			LastName:  gofakeit.LastName(),
			DNI:       gofakeit.Numerify("########"),
			BirthDate: &birth,
			Address:   gofakeit.Street(),
			Phone:     gofakeit.Phone(),
			Email:     gofakeit.Email(),
		}
		if err := svcs.patients.Create(ctx, p); err != nil {
			return fmt.Errorf("create patient: %w", err)
		}
		patients = append(patients, p)

		h := &clinicalhistory.History{
			PatientID:   p.ID,
			DentistID:   pick(dentists).ID,
			Description: gofakeit.RandomString([]string{"Control general", "Caries múltiples", "Limpieza y fluor", "Tratamiento de conducto", "Ortodoncia"}),
		}
		if err := svcs.histories.Create(ctx, h); err != nil {
			return fmt.Errorf("create history: %w", err)
		}
		histories = append(histories, h)
	}
	logger.Info().Int("count", len(patients)).Msg("patients and histories created")

	days := workdays(time.Now(), opts.Days)
	booked, skipped := 0, 0
	for i := 0; i < opts.Appointments && len(days) > 0; i++ {
		slotID := pick(slots).ID
		a := &appointment.Appointment{
			DentistID: pick(dentists).ID,
			PatientID: pick(patients).ID,
			Date:      pick(days),
			SlotID:    &slotID,
			Reason:    gofakeit.RandomString([]string{"Control", "Dolor de muela", "Limpieza", "Urgencia", "Extracción"}),
		}
		if _, err := svcs.appointments.Create(ctx, a); err != nil {
			if isSlotConflict(err) {
				skipped++
				continue
			}
			return fmt.Errorf("create appointment: %w", err)
		}
		booked++
	}
	logger.Info().Int("booked", booked).Int("skipped", skipped).Msg("appointments created")

	paid := 0
	for _, h := range histories {
		p := &payment.Payment{
			PaymentTypeID: pick(payTypes).ID,
			HistoryID:     h.ID,
			Amount:        float64(gofakeit.Number(5, 120)) * 1000,
			Paid:          gofakeit.Bool(),
		}
		if _, err := svcs.payments.Create(ctx, p); err != nil {
			return fmt.Errorf("create payment: %w", err)
		}
		if p.Paid {
			paid++
		}
	}
	logger.Info().Int("count", len(histories)).Int("paid", paid).Msg("payments created")

	fmt.Printf("Seed %d: %d dentists, %d patients, %d appointments (%d slot clashes skipped), %d payments\n",
		opts.Seed, len(dentists), len(patients), booked, skipped, len(histories))
	return nil
}

// workdays returns the next n Monday-to-Friday dates after from.
func workdays(from time.Time, n int) []civil.Date {
	days := make([]civil.Date, 0, n)
	d := civil.DateOf(from)
	for len(days) < n {
		d = civil.DateOf(d.AddDate(0, 0, 1))
		if wd := d.Weekday(); wd == time.Saturday || wd == time.Sunday {
			continue
		}
		days = append(days, d)
	}
	return days
}

func isSlotConflict(err error) bool {
	var ve *apierr.ValidationError
	return errors.As(err, &ve) && ve.Fields["horario_id"] != ""
}

func pick[T any](items []T) T {
	return items[gofakeit.Number(0, len(items)-1)]
}
