package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	cancelAppointmentHandler "github.com/simaclinic/booking-service/internal/api/handlers/cancel_appointment"
	completeAppointmentHandler "github.com/simaclinic/booking-service/internal/api/handlers/complete_appointment"
	createAppointmentHandler "github.com/simaclinic/booking-service/internal/api/handlers/create_appointment"
	getAppointmentHandler "github.com/simaclinic/booking-service/internal/api/handlers/get_appointment"
	getAvailableSlotsHandler "github.com/simaclinic/booking-service/internal/api/handlers/get_available_slots"
	getDayAppointmentsHandler "github.com/simaclinic/booking-service/internal/api/handlers/get_day_appointments"
	getGroupDetailHandler "github.com/simaclinic/booking-service/internal/api/handlers/get_group_detail"
	getPatientAppointmentsHandler "github.com/simaclinic/booking-service/internal/api/handlers/get_patient_appointments"
	listServiceGroupsHandler "github.com/simaclinic/booking-service/internal/api/handlers/list_service_groups"
	paymentCallbackHandler "github.com/simaclinic/booking-service/internal/api/handlers/payment_callback"
	startPaymentHandler "github.com/simaclinic/booking-service/internal/api/handlers/start_payment"
	trackAppointmentHandler "github.com/simaclinic/booking-service/internal/api/handlers/track_appointment"
	"github.com/simaclinic/booking-service/internal/api/middleware"
	"github.com/simaclinic/booking-service/internal/config"
	"github.com/simaclinic/booking-service/internal/domain"
	appointmentRepo "github.com/simaclinic/booking-service/internal/infra/storage/appointment"
	catalogRepo "github.com/simaclinic/booking-service/internal/infra/storage/catalog"
	discountRepo "github.com/simaclinic/booking-service/internal/infra/storage/discount"
	patientRepo "github.com/simaclinic/booking-service/internal/infra/storage/patient"
	paymentRepo "github.com/simaclinic/booking-service/internal/infra/storage/payment"
	"github.com/simaclinic/booking-service/internal/integrations/events"
	"github.com/simaclinic/booking-service/internal/integrations/paymentgateway"
	appointmentsService "github.com/simaclinic/booking-service/internal/service/appointments"
	catalogService "github.com/simaclinic/booking-service/internal/service/catalog"
	createBookingUC "github.com/simaclinic/booking-service/internal/usecase/create_booking"
	getAvailableSlotsUC "github.com/simaclinic/booking-service/internal/usecase/get_available_slots"
	processPaymentUC "github.com/simaclinic/booking-service/internal/usecase/process_payment"
	"github.com/simaclinic/booking-service/internal/worker/expirer"
	"github.com/simaclinic/booking-service/pkg/dbmetrics"
	"github.com/simaclinic/booking-service/pkg/logger"
	"github.com/simaclinic/booking-service/pkg/metrics"
	"github.com/simaclinic/booking-service/pkg/simpletxmanager"
	"github.com/simaclinic/booking-service/pkg/txmanager"
)

func main() {
	// Загружаем конфигурацию
	cfg, err := config.Load("config.toml")
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Инициализируем логгер
	log, err := logger.New(cfg.Logs.File, cfg.Logs.Level)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	log.Info("Starting clinic booking service...")
	log.Info("Configuration loaded from config.toml")

	// Таймзона клиники: вся интервальная арифметика выполняется в ней
	loc, err := cfg.Clinic.Location()
	if err != nil {
		log.Fatal("Failed to load clinic timezone: %v", err)
	}
	log.Info("Clinic timezone: %s", cfg.Clinic.Timezone)

	// Инициализируем метрики (если включены)
	var metricsCollector *metrics.Metrics
	var wrappedDB *dbmetrics.DB
	stopMetricsCh := make(chan struct{})

	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName)
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}

	// Подключаемся к базе данных
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Настраиваем connection pool
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

	// Проверяем соединение
	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database: %v", err)
	}
	log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

	// Клиент платежного шлюза
	gatewayClient := paymentgateway.NewClient(
		cfg.Payment.BaseURL,
		cfg.Payment.MerchantID,
		cfg.Payment.CallbackURL,
		time.Duration(cfg.Payment.Timeout)*time.Second,
		log,
	)
	log.Info("Payment gateway client initialized (url=%s, sandbox=%t)", cfg.Payment.BaseURL, cfg.Payment.Sandbox)

	// Publisher событий жизненного цикла записей
	var publisher interface {
		Publish(ctx context.Context, routingKey string, event events.AppointmentEvent) error
	}
	publisher = events.NopPublisher{}
	if cfg.Events.Enabled {
		amqpPublisher, err := events.NewPublisher(cfg.Events.URL, cfg.Events.Exchange, log)
		if err != nil {
			log.Fatal("Failed to connect to rabbitmq: %v", err)
		}
		defer amqpPublisher.Close()
		publisher = amqpPublisher
	} else {
		log.Info("Events publishing disabled")
	}

	// Инициализируем репозитории (с метриками или без)
	var (
		appointmentRepository *appointmentRepo.Repository
		catalogRepository     *catalogRepo.Repository
		discountRepository    *discountRepo.Repository
		patientRepository     *patientRepo.Repository
		paymentRepository     *paymentRepo.Repository
	)

	// Интерфейс transaction manager, общий для обеих реализаций
	type TxManager interface {
		Do(ctx context.Context, fn func(ctx context.Context) error) error
		DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
	}
	var txMgr TxManager

	if cfg.Metrics.Enabled {
		wrappedDB = dbmetrics.WrapWithDefault(db, metricsCollector, cfg.Metrics.ServiceName, stopMetricsCh)
		log.Info("Database metrics collection started")

		appointmentRepository = appointmentRepo.NewRepository(wrappedDB)
		catalogRepository = catalogRepo.NewRepository(wrappedDB)
		discountRepository = discountRepo.NewRepository(wrappedDB)
		patientRepository = patientRepo.NewRepository(wrappedDB)
		paymentRepository = paymentRepo.NewRepository(wrappedDB)
		txMgr = txmanager.NewTransactionManager(wrappedDB)
	} else {
		appointmentRepository = appointmentRepo.NewRepository(db)
		catalogRepository = catalogRepo.NewRepository(db)
		discountRepository = discountRepo.NewRepository(db)
		patientRepository = patientRepo.NewRepository(db)
		paymentRepository = paymentRepo.NewRepository(db)
		txMgr = simpletxmanager.NewTransactionManager(db)
	}

	// Инициализируем сервисы
	appointmentsSvc := appointmentsService.NewService(
		appointmentRepository,
		patientRepository,
		txMgr,
		publisher,
		loc,
		int64(cfg.Clinic.PointsEarnRate),
		log,
	)
	catalogSvc := catalogService.NewService(catalogRepository, log)

	// Инициализируем use cases
	getAvailableSlotsUseCase := getAvailableSlotsUC.NewUseCase(
		catalogRepository,
		appointmentRepository,
		loc,
		domain.GenderScope(cfg.Clinic.GuestGenderScope),
		log,
	)

	createBookingUseCase := createBookingUC.NewUseCase(
		catalogRepository,
		appointmentRepository,
		patientRepository,
		discountRepository,
		txMgr,
		publisher,
		loc,
		int64(cfg.Clinic.PointsToTomanRate),
		log,
	)

	processPaymentUseCase := processPaymentUC.NewUseCase(
		appointmentRepository,
		paymentRepository,
		gatewayClient,
		txMgr,
		publisher,
		log,
	)

	// Инициализируем handlers
	getAvailableSlots := getAvailableSlotsHandler.NewHandler(
		getAvailableSlotsUseCase, patientRepository, cfg.Clinic.SlotRangeDays, log)
	// Типизированный nil в интерфейсе обходит проверку metrics != nil в handler-е
	var bookingMetrics createAppointmentHandler.Metrics
	if cfg.Metrics.Enabled {
		bookingMetrics = metricsCollector
	}
	createAppointment := createAppointmentHandler.NewHandler(createBookingUseCase, bookingMetrics, log)
	getAppointment := getAppointmentHandler.NewHandler(appointmentsSvc, log)
	trackAppointment := trackAppointmentHandler.NewHandler(appointmentsSvc, log)
	cancelAppointment := cancelAppointmentHandler.NewHandler(appointmentsSvc, log)
	completeAppointment := completeAppointmentHandler.NewHandler(appointmentsSvc, log)
	getPatientAppointments := getPatientAppointmentsHandler.NewHandler(appointmentsSvc, log)
	getDayAppointments := getDayAppointmentsHandler.NewHandler(appointmentsSvc, log)
	listServiceGroups := listServiceGroupsHandler.NewHandler(catalogSvc, log)
	getGroupDetail := getGroupDetailHandler.NewHandler(catalogSvc, log)
	startPayment := startPaymentHandler.NewHandler(processPaymentUseCase, log)
	paymentCallback := paymentCallbackHandler.NewHandler(processPaymentUseCase, log)

	// Фоновая отмена записей, не оплаченных вовремя
	var expirerWorker *expirer.Worker
	if cfg.Expirer.Enabled {
		expirerWorker = expirer.New(
			appointmentRepository,
			time.Duration(cfg.Expirer.IntervalMinutes)*time.Minute,
			time.Duration(cfg.Expirer.PendingTTLMinutes)*time.Minute,
			log,
		)
		if err := expirerWorker.Start(); err != nil {
			log.Fatal("Failed to start expirer: %v", err)
		}
	}

	// Настраиваем роутер
	r := mux.NewRouter()

	// Добавляем metrics middleware (если метрики включены)
	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector, cfg.Metrics.ServiceName))
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	// API prefix
	api := r.PathPrefix("/api/v1").Subrouter()

	// ============================================================
	// PUBLIC ROUTES (без аутентификации)
	// ============================================================

	// Доступные слоты для записи
	api.HandleFunc("/slots", getAvailableSlots.Handle).Methods(http.MethodGet)

	// Каталог услуг
	api.HandleFunc("/service-groups", listServiceGroups.Handle).Methods(http.MethodGet)
	api.HandleFunc("/service-groups/{groupId}", getGroupDetail.Handle).Methods(http.MethodGet)

	// Поиск записи по коду отслеживания (для гостей)
	api.HandleFunc("/appointments/track/{trackingCode}", trackAppointment.Handle).Methods(http.MethodGet)

	// Callback платежного шлюза
	api.HandleFunc("/payments/callback", paymentCallback.Handle).Methods(http.MethodGet)

	// ============================================================
	// PROTECTED ROUTES (требуют X-User-ID header)
	// ============================================================

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth)

	// --- Записи на прием ---
	protected.HandleFunc("/appointments", createAppointment.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/appointments/day", getDayAppointments.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/appointments/{appointmentId}", getAppointment.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/appointments/{appointmentId}/cancel", cancelAppointment.Handle).Methods(http.MethodPatch)
	protected.HandleFunc("/appointments/{appointmentId}/complete", completeAppointment.Handle).Methods(http.MethodPatch)

	// История записей пациента
	protected.HandleFunc("/patients/{patientId}/appointments", getPatientAppointments.Handle).Methods(http.MethodGet)

	// --- Оплата ---
	protected.HandleFunc("/appointments/{appointmentId}/payment", startPayment.Handle).Methods(http.MethodPost)

	// Создаем HTTP сервер
	addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info("Starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start: %v", err)
		}
	}()

	// Ожидаем сигнал завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	if expirerWorker != nil {
		expirerWorker.Stop()
	}

	// Останавливаем сбор метрик connection pool
	if cfg.Metrics.Enabled {
		close(stopMetricsCh)
		log.Info("Metrics collection stopped")
	}

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	log.Info("Server stopped gracefully")
}
