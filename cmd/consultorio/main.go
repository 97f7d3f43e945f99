package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/mariodiaz1375/consultorio-supabase/internal/config"
	"github.com/mariodiaz1375/consultorio-supabase/internal/domain/appointment"
	"github.com/mariodiaz1375/consultorio-supabase/internal/domain/audit"
	"github.com/mariodiaz1375/consultorio-supabase/internal/domain/catalog"
	"github.com/mariodiaz1375/consultorio-supabase/internal/domain/clinicalhistory"
	"github.com/mariodiaz1375/consultorio-supabase/internal/domain/patient"
	"github.com/mariodiaz1375/consultorio-supabase/internal/domain/payment"
	"github.com/mariodiaz1375/consultorio-supabase/internal/domain/staff"
	"github.com/mariodiaz1375/consultorio-supabase/internal/platform/auth"
	"github.com/mariodiaz1375/consultorio-supabase/internal/platform/cache"
	"github.com/mariodiaz1375/consultorio-supabase/internal/platform/db"
	"github.com/mariodiaz1375/consultorio-supabase/internal/platform/middleware"
	"github.com/mariodiaz1375/consultorio-supabase/internal/platform/notification"
	"github.com/mariodiaz1375/consultorio-supabase/migrations"
)

const version = "0.1.0"

func main() {
	rootCmd := &cobra.Command{
		Use:   "consultorio",
		Short: "Dental clinic API server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(seedCmd())
	rootCmd.AddCommand(userCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger(cfg *config.Config) zerolog.Logger {
	if cfg != nil && cfg.IsDev() {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}
	return zerolog.New(os.Stdout).With().Timestamp().Logger()
}

func connect(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	return db.NewPool(ctx, cfg.DatabaseURL, cfg.DBSchema, cfg.DBMaxConns, cfg.DBMinConns)
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			to, _ := cmd.Flags().GetInt("to")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := connect(ctx, cfg)
			if err != nil {
				return err
			}
			defer pool.Close()

			if err := db.EnsureSchema(ctx, pool, cfg.DBSchema); err != nil {
				return err
			}

			migrator := db.NewMigrator(pool, migrations.FS)
			fmt.Printf("Running migrations on schema: %s\n", cfg.DBSchema)

			var count int
			if to > 0 {
				count, err = migrator.UpTo(ctx, cfg.DBSchema, to)
			} else {
				count, err = migrator.Up(ctx, cfg.DBSchema)
			}
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			fmt.Printf("Applied %d migration(s) successfully.\n", count)
			return nil
		},
	}
	upCmd.Flags().Int("to", 0, "Stop after this migration version (0 = all)")
	cmd.AddCommand(upCmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := connect(ctx, cfg)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, migrations.FS)
			statuses, err := migrator.Status(ctx, cfg.DBSchema)
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}

			fmt.Printf("Migration status for schema: %s\n", cfg.DBSchema)
			fmt.Printf("%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
			fmt.Println("---------- ---------------------------------------- ---------- --------------------")
			for _, s := range statuses {
				status := "pending"
				appliedAt := ""
				if s.Applied {
					status = "applied"
					if s.AppliedAt != nil {
						appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
					}
				}
				fmt.Printf("%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
			}
			return nil
		},
	})

	return cmd
}

func userCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage login accounts",
	}

	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a login account",
		RunE: func(cmd *cobra.Command, args []string) error {
			username, _ := cmd.Flags().GetString("username")
			email, _ := cmd.Flags().GetString("email")
			password, _ := cmd.Flags().GetString("password")
			roles, _ := cmd.Flags().GetStringSlice("roles")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := connect(ctx, cfg)
			if err != nil {
				return err
			}
			defer pool.Close()

			svc := auth.NewService(auth.NewUserRepoPG(pool), nil, nil, nil, nil, auth.ServiceConfig{}, newLogger(cfg))
			u, err := svc.CreateUser(ctx, username, email, password, roles)
			if err != nil {
				return err
			}
			fmt.Printf("Created user %q (id %d) with roles %s\n", u.Username, u.ID, strings.Join(u.Roles, ","))
			return nil
		},
	}
	createCmd.Flags().String("username", "", "Login name")
	createCmd.Flags().String("email", "", "E-mail address used for password resets")
	createCmd.Flags().String("password", "", "Initial password")
	createCmd.Flags().StringSlice("roles", []string{auth.RoleAdmin}, "Comma-separated roles: admin, odontologo, secretaria, asistente")
	_ = createCmd.MarkFlagRequired("username")
	_ = createCmd.MarkFlagRequired("email")
	_ = createCmd.MarkFlagRequired("password")

	cmd.AddCommand(createCmd)
	return cmd
}

// services holds every domain service built on one pool.
type services struct {
	tx           db.Transactor
	users        auth.UserRepository
	catalog      *catalog.Service
	patients     *patient.Service
	staff        *staff.Service
	histories    *clinicalhistory.Service
	appointments *appointment.Service
	payments     *payment.Service
	audit        *audit.Service
}

func newServices(pool *pgxpool.Pool, locker cache.Locker, logger zerolog.Logger) *services {
	tx := db.NewTransactor(pool)
	users := auth.NewUserRepoPG(pool)

	catalogSvc := catalog.NewService(catalog.NewItemRepoPG(pool), catalog.NewTimeSlotRepoPG(pool), catalog.NewWeekdayRepoPG(pool))
	staffSvc := staff.NewService(staff.NewRepoPG(pool), users, tx)

	apptAudit := audit.NewAppointmentRepoPG(pool)
	payAudit := audit.NewPaymentRepoPG(pool)
	apptEvents := audit.NewDispatcher[appointment.Appointment]("turno", tx, logger, appointment.NewAuditHook(apptAudit))
	payEvents := audit.NewDispatcher[payment.Payment]("pago", tx, logger, payment.NewAuditHook(payAudit))

	return &services{
		tx:           tx,
		users:        users,
		catalog:      catalogSvc,
		patients:     patient.NewService(patient.NewRepoPG(pool), tx, catalogSvc),
		staff:        staffSvc,
		histories:    clinicalhistory.NewService(clinicalhistory.NewRepoPG(pool), tx, staffSvc),
		appointments: appointment.NewService(appointment.NewRepoPG(pool), tx, locker, catalogSvc, apptEvents),
		payments:     payment.NewService(payment.NewRepoPG(pool), tx, staffSvc, payEvents),
		audit:        audit.NewService(apptAudit, payAudit),
	}
}

func runServer() error {
	cfg, err := config.Load()
	if err != nil {
		logger := newLogger(nil)
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	logger := newLogger(cfg)
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}

	// Database
	ctx := context.Background()
	pool, err := connect(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Str("schema", cfg.DBSchema).Msg("connected to database")

	// Redis is optional: without it slot locking is skipped and tokens live
	// in process memory.
	var (
		locker  cache.Locker = cache.NoopLocker{}
		resets  cache.TokenStore
		revoked cache.TokenStore
		rdb     *redis.Client
	)
	if cfg.RedisURL != "" {
		rdb, err = cache.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to redis")
		}
		defer rdb.Close()
		locker = cache.NewRedisSlotLocker(rdb, cfg.SlotLockTTL, logger)
		resets = cache.NewRedisTokenStore(rdb, "consultorio:reset:")
		revoked = cache.NewRedisTokenStore(rdb, "consultorio:revoked:")
		logger.Info().Msg("connected to redis")
	} else {
		resetMem, revokedMem := cache.NewMemoryTokenStore(), cache.NewMemoryTokenStore()
		defer resetMem.Close()
		defer revokedMem.Close()
		resets, revoked = resetMem, revokedMem
		logger.Warn().Msg("REDIS_URL not set, using in-memory token stores and no slot locking")
	}

	svcs := newServices(pool, locker, logger)

	mailer := notification.NewMailer(
		notification.LogEmailSender{Logger: logger, From: cfg.MailFrom},
		notification.NewTemplateEngine(),
	)
	issuer := auth.NewTokenIssuer([]byte(cfg.AuthSigningKey), cfg.AuthIssuer, cfg.AuthAccessTTL, cfg.AuthRefreshTTL)
	authSvc := auth.NewService(svcs.users, issuer, auth.NewRevoker(revoked), resets, mailer,
		auth.ServiceConfig{ResetTTL: cfg.PasswordResetTTL, ResetURL: cfg.PasswordResetURL}, logger)

	// Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.SecurityHeaders(middleware.SecurityHeadersConfig{
		HSTS:          cfg.IsProduction(),
		NoStorePrefix: "/api/",
	}))
	e.Use(middleware.BodyLimit(cfg.BodyLimit))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))

	// Auth middleware
	jwtCfg := auth.JWTConfig{
		Issuer:     cfg.AuthIssuer,
		SigningKey: []byte(cfg.AuthSigningKey),
		Skipper:    auth.AuthSkipper,
	}
	if cfg.IsDev() {
		e.Use(auth.DevAuthMiddleware(jwtCfg))
	} else {
		e.Use(auth.JWTMiddleware(jwtCfg))
	}

	e.Use(middleware.AccessLog(logger))

	// Health checks
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": version,
		})
	})
	e.GET("/health/db", db.HealthHandler(pool, cfg.DBSchema))

	// API group
	api := e.Group("/api")
	rateLimitCfg := middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
	}
	if rateLimitCfg.RequestsPerSecond <= 0 {
		rateLimitCfg = middleware.DefaultRateLimitConfig()
	}
	api.Use(middleware.RateLimit(rateLimitCfg))
	api.Use(middleware.RequestTimeout(cfg.RequestTimeout))
	api.Use(db.ConnMiddleware(pool))

	auth.NewHandler(authSvc).RegisterRoutes(api)
	catalog.NewHandler(svcs.catalog).RegisterRoutes(api)
	patient.NewHandler(svcs.patients).RegisterRoutes(api)
	staff.NewHandler(svcs.staff).RegisterRoutes(api)
	clinicalhistory.NewHandler(svcs.histories).RegisterRoutes(api)
	appointment.NewHandler(svcs.appointments).RegisterRoutes(api)
	payment.NewHandler(svcs.payments).RegisterRoutes(api)
	audit.NewHandler(svcs.audit, time.Local, logger).RegisterRoutes(api)

	logger.Info().Int("routes", len(e.Routes())).Msg("routes registered")

	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server shutdown failed")
	}
	logger.Info().Msg("server stopped")
	return nil
}
