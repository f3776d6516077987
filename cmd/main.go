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

	cancelBookingHandler "github.com/atlas-marketplace/ATLAS-SchedulingService/internal/api/handlers/cancel_booking"
	completeSweepHandler "github.com/atlas-marketplace/ATLAS-SchedulingService/internal/api/handlers/complete_sweep"
	createBookingHandler "github.com/atlas-marketplace/ATLAS-SchedulingService/internal/api/handlers/create_booking"
	getAvailableSlotsHandler "github.com/atlas-marketplace/ATLAS-SchedulingService/internal/api/handlers/get_available_slots"
	getBookingHandler "github.com/atlas-marketplace/ATLAS-SchedulingService/internal/api/handlers/get_booking"
	getBusinessBookingsHandler "github.com/atlas-marketplace/ATLAS-SchedulingService/internal/api/handlers/get_business_bookings"
	getClientBookingsHandler "github.com/atlas-marketplace/ATLAS-SchedulingService/internal/api/handlers/get_client_bookings"
	getWeeklyScheduleHandler "github.com/atlas-marketplace/ATLAS-SchedulingService/internal/api/handlers/get_weekly_schedule"
	rescheduleBookingHandler "github.com/atlas-marketplace/ATLAS-SchedulingService/internal/api/handlers/reschedule_booking"
	specialDayHandler "github.com/atlas-marketplace/ATLAS-SchedulingService/internal/api/handlers/special_day"
	updateBookingStatusHandler "github.com/atlas-marketplace/ATLAS-SchedulingService/internal/api/handlers/update_booking_status"
	updateWeeklyScheduleHandler "github.com/atlas-marketplace/ATLAS-SchedulingService/internal/api/handlers/update_weekly_schedule"
	"github.com/atlas-marketplace/ATLAS-SchedulingService/internal/api/middleware"
	"github.com/atlas-marketplace/ATLAS-SchedulingService/internal/config"
	bookingRepo "github.com/atlas-marketplace/ATLAS-SchedulingService/internal/infra/storage/booking"
	scheduleRepo "github.com/atlas-marketplace/ATLAS-SchedulingService/internal/infra/storage/schedule"
	catalogServiceClient "github.com/atlas-marketplace/ATLAS-SchedulingService/internal/integrations/catalogservice"
	notifyServiceClient "github.com/atlas-marketplace/ATLAS-SchedulingService/internal/integrations/notifyservice"
	bookingsService "github.com/atlas-marketplace/ATLAS-SchedulingService/internal/service/bookings"
	scheduleService "github.com/atlas-marketplace/ATLAS-SchedulingService/internal/service/schedule"
	completePastBookingsUC "github.com/atlas-marketplace/ATLAS-SchedulingService/internal/usecase/complete_past_bookings"
	createBookingUC "github.com/atlas-marketplace/ATLAS-SchedulingService/internal/usecase/create_booking"
	getAvailableSlotsUC "github.com/atlas-marketplace/ATLAS-SchedulingService/internal/usecase/get_available_slots"
	rescheduleBookingUC "github.com/atlas-marketplace/ATLAS-SchedulingService/internal/usecase/reschedule_booking"
	"github.com/atlas-marketplace/ATLAS-SchedulingService/pkg/dbmetrics"
	"github.com/atlas-marketplace/ATLAS-SchedulingService/pkg/logger"
	"github.com/atlas-marketplace/ATLAS-SchedulingService/pkg/metrics"
	"github.com/atlas-marketplace/ATLAS-SchedulingService/pkg/simpletxmanager"
	"github.com/atlas-marketplace/ATLAS-SchedulingService/pkg/txmanager"
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

	log.Info("Starting ATLAS-SchedulingService...")
	log.Info("Configuration loaded from config.toml")

	// Референсная таймзона: все вычисления "сегодня" и lead time в ней
	location, err := time.LoadLocation(cfg.Server.Timezone)
	if err != nil {
		log.Fatal("Failed to load timezone %q: %v", cfg.Server.Timezone, err)
	}
	log.Info("Reference timezone: %s", cfg.Server.Timezone)

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

	// Инициализируем интеграционных клиентов
	catalogClient := catalogServiceClient.NewClient(
		cfg.CatalogService.URL,
		time.Duration(cfg.CatalogService.Timeout)*time.Second,
		log,
	)
	notifyClient := notifyServiceClient.NewClient(
		cfg.NotifyService.URL,
		time.Duration(cfg.NotifyService.Timeout)*time.Second,
		log,
	)
	log.Info("Integration clients initialized (CatalogService=%s timeout=%ds, NotifyService=%s timeout=%ds)",
		cfg.CatalogService.URL, cfg.CatalogService.Timeout, cfg.NotifyService.URL, cfg.NotifyService.Timeout)

	// Инициализируем репозитории (с метриками или без)
	var (
		bookingRepository  *bookingRepo.Repository
		scheduleRepository *scheduleRepo.Repository
	)

	// Интерфейс для transaction manager (используется в usecases и сервисах)
	type TxManager interface {
		Do(ctx context.Context, fn func(ctx context.Context) error) error
		DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
	}
	var txMgr TxManager

	if cfg.Metrics.Enabled {
		wrappedDB = dbmetrics.WrapWithDefault(db, metricsCollector, cfg.Metrics.ServiceName, stopMetricsCh)
		log.Info("Database metrics collection started")

		bookingRepository = bookingRepo.NewRepository(wrappedDB)
		scheduleRepository = scheduleRepo.NewRepository(wrappedDB)
		txMgr = txmanager.NewTransactionManager(wrappedDB)
	} else {
		bookingRepository = bookingRepo.NewRepository(db)
		scheduleRepository = scheduleRepo.NewRepository(db)
		txMgr = simpletxmanager.NewTransactionManager(db)
	}

	// Инициализируем сервисы
	bookingSvc := bookingsService.NewService(
		bookingRepository,
		catalogClient,
		notifyClient,
		log,
	)
	scheduleSvc := scheduleService.NewService(
		scheduleRepository,
		catalogClient,
		txMgr,
		log,
	)

	// Дефолтные параметры генерации слотов
	slotDefaults := getAvailableSlotsUC.Defaults{
		GranularityMinutes: cfg.Scheduling.DefaultGranularityMinutes,
		LeadTimeMinutes:    cfg.Scheduling.DefaultLeadTimeMinutes,
	}

	// Инициализируем use cases
	getAvailableSlotsUseCase := getAvailableSlotsUC.NewUseCase(
		bookingRepository,
		scheduleRepository,
		catalogClient,
		slotDefaults,
		location,
		log,
	)
	createBookingUseCase := createBookingUC.NewUseCase(
		bookingRepository,
		scheduleRepository,
		catalogClient,
		notifyClient,
		txMgr,
		createBookingUC.Defaults{
			GranularityMinutes: cfg.Scheduling.DefaultGranularityMinutes,
			LeadTimeMinutes:    cfg.Scheduling.DefaultLeadTimeMinutes,
			AutoConfirm:        cfg.Scheduling.DefaultAutoConfirm,
		},
		location,
		log,
	)
	rescheduleBookingUseCase := rescheduleBookingUC.NewUseCase(
		bookingRepository,
		scheduleRepository,
		catalogClient,
		notifyClient,
		txMgr,
		rescheduleBookingUC.Defaults{
			GranularityMinutes: cfg.Scheduling.DefaultGranularityMinutes,
			LeadTimeMinutes:    cfg.Scheduling.DefaultLeadTimeMinutes,
		},
		location,
		log,
	)
	completePastBookingsUseCase := completePastBookingsUC.NewUseCase(
		bookingRepository,
		location,
		log,
	)

	// Инициализируем handlers
	getAvailableSlots := getAvailableSlotsHandler.NewHandler(getAvailableSlotsUseCase, log)
	createBooking := createBookingHandler.NewHandler(createBookingUseCase, log)
	rescheduleBooking := rescheduleBookingHandler.NewHandler(rescheduleBookingUseCase, log)
	getBooking := getBookingHandler.NewHandler(bookingSvc, log)
	cancelBooking := cancelBookingHandler.NewHandler(bookingSvc, log)
	updateBookingStatus := updateBookingStatusHandler.NewHandler(bookingSvc, log)
	getClientBookings := getClientBookingsHandler.NewHandler(bookingSvc, log)
	getBusinessBookings := getBusinessBookingsHandler.NewHandler(bookingSvc, log)
	getWeeklySchedule := getWeeklyScheduleHandler.NewHandler(scheduleSvc, log)
	updateWeeklySchedule := updateWeeklyScheduleHandler.NewHandler(scheduleSvc, log)
	specialDay := specialDayHandler.NewHandler(scheduleSvc, log)
	completeSweep := completeSweepHandler.NewHandler(completePastBookingsUseCase, log)

	// Настраиваем роутер
	r := mux.NewRouter()
	r.Use(middleware.RequestID)

	// Добавляем metrics middleware (если метрики включены)
	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector, cfg.Metrics.ServiceName))
		log.Info("HTTP metrics middleware enabled")
	}

	// Metrics endpoint (публичный, без аутентификации)
	if cfg.Metrics.Enabled {
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	// Внутренний endpoint для планировщика
	r.HandleFunc("/internal/sweep/completed", completeSweep.Handle).Methods(http.MethodPost)

	// API prefix
	api := r.PathPrefix("/api/v1").Subrouter()

	// ============================================================
	// PUBLIC ROUTES (без аутентификации)
	// ============================================================

	// Получение доступных слотов для бронирования
	api.HandleFunc("/businesses/{businessId}/available-slots",
		getAvailableSlots.Handle).Methods(http.MethodGet)

	// Получение недельного расписания бизнеса
	api.HandleFunc("/businesses/{businessId}/schedule",
		getWeeklySchedule.Handle).Methods(http.MethodGet)

	// ============================================================
	// PROTECTED ROUTES (требуют X-User-ID header)
	// ============================================================

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth)

	// --- Бронирования ---
	// Создание бронирования
	protected.HandleFunc("/bookings", createBooking.Handle).Methods(http.MethodPost)

	// Получение бронирования по ID
	protected.HandleFunc("/bookings/{bookingId}", getBooking.Handle).Methods(http.MethodGet)

	// Перенос бронирования на другой слот
	protected.HandleFunc("/bookings/{bookingId}/reschedule", rescheduleBooking.Handle).Methods(http.MethodPost)

	// Отмена бронирования
	protected.HandleFunc("/bookings/{bookingId}/cancel", cancelBooking.Handle).Methods(http.MethodPatch)

	// Подтверждение/завершение бронирования менеджером
	protected.HandleFunc("/bookings/{bookingId}/status", updateBookingStatus.Handle).Methods(http.MethodPatch)

	// История бронирований клиента
	protected.HandleFunc("/clients/{clientId}/bookings", getClientBookings.Handle).Methods(http.MethodGet)

	// --- Управление бизнесом (для менеджеров) ---
	// Список бронирований бизнеса
	protected.HandleFunc("/businesses/{businessId}/bookings", getBusinessBookings.Handle).Methods(http.MethodGet)

	// Полная замена недельного расписания
	protected.HandleFunc("/businesses/{businessId}/schedule", updateWeeklySchedule.Handle).Methods(http.MethodPut)

	// Переопределения на дату (праздники, особые дни)
	protected.HandleFunc("/businesses/{businessId}/special-days/{date}", specialDay.HandleGet).Methods(http.MethodGet)
	protected.HandleFunc("/businesses/{businessId}/special-days/{date}", specialDay.HandlePut).Methods(http.MethodPut)
	protected.HandleFunc("/businesses/{businessId}/special-days/{date}", specialDay.HandleDelete).Methods(http.MethodDelete)

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
