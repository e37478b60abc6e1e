package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	changeStatusHandler "github.com/m04kA/SMC-BarberService/internal/api/handlers/change_appointment_status"
	createAppointmentHandler "github.com/m04kA/SMC-BarberService/internal/api/handlers/create_appointment"
	deleteAppointmentHandler "github.com/m04kA/SMC-BarberService/internal/api/handlers/delete_appointment"
	getAppointmentHandler "github.com/m04kA/SMC-BarberService/internal/api/handlers/get_appointment"
	getAvailableSlotsHandler "github.com/m04kA/SMC-BarberService/internal/api/handlers/get_available_slots"
	getClientAppointmentsHandler "github.com/m04kA/SMC-BarberService/internal/api/handlers/get_client_appointments"
	getEmployeeAppointmentsHandler "github.com/m04kA/SMC-BarberService/internal/api/handlers/get_employee_appointments"
	rescheduleHandler "github.com/m04kA/SMC-BarberService/internal/api/handlers/reschedule_appointment"
	webhookHandler "github.com/m04kA/SMC-BarberService/internal/api/handlers/whatsapp_webhook"
	"github.com/m04kA/SMC-BarberService/internal/api/middleware"
	"github.com/m04kA/SMC-BarberService/internal/bot"
	"github.com/m04kA/SMC-BarberService/internal/config"
	appointmentRepo "github.com/m04kA/SMC-BarberService/internal/infra/storage/appointment"
	clientRepo "github.com/m04kA/SMC-BarberService/internal/infra/storage/client"
	conversationRepo "github.com/m04kA/SMC-BarberService/internal/infra/storage/conversation"
	employeeRepo "github.com/m04kA/SMC-BarberService/internal/infra/storage/employee"
	ledgerRepo "github.com/m04kA/SMC-BarberService/internal/infra/storage/ledger"
	serviceRepo "github.com/m04kA/SMC-BarberService/internal/infra/storage/service"
	"github.com/m04kA/SMC-BarberService/internal/integrations/calendar"
	"github.com/m04kA/SMC-BarberService/internal/integrations/whatsapp"
	appointmentsService "github.com/m04kA/SMC-BarberService/internal/service/appointments"
	clientsService "github.com/m04kA/SMC-BarberService/internal/service/clients"
	conversationsService "github.com/m04kA/SMC-BarberService/internal/service/conversations"
	"github.com/m04kA/SMC-BarberService/internal/service/overlap"
	createAppointmentUC "github.com/m04kA/SMC-BarberService/internal/usecase/create_appointment"
	getAvailableSlotsUC "github.com/m04kA/SMC-BarberService/internal/usecase/get_available_slots"
	"github.com/m04kA/SMC-BarberService/internal/worker/sweeper"
	"github.com/m04kA/SMC-BarberService/pkg/besteffort"
	"github.com/m04kA/SMC-BarberService/pkg/dbmetrics"
	"github.com/m04kA/SMC-BarberService/pkg/locker"
	"github.com/m04kA/SMC-BarberService/pkg/logger"
	"github.com/m04kA/SMC-BarberService/pkg/metrics"
	"github.com/m04kA/SMC-BarberService/pkg/redisclient"
	"github.com/m04kA/SMC-BarberService/pkg/trackingcode"
	"github.com/m04kA/SMC-BarberService/pkg/txmanager"
)

func main() {
	configPath := "config.toml"
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		configPath = p
	}

	// Загружаем конфигурацию
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Инициализируем логгер
	log, err := logger.NewWithOptions(cfg.Logs.File, cfg.Logs.Level, logger.Options{
		MaxSizeMB:  cfg.Logs.MaxSizeMB,
		MaxBackups: cfg.Logs.MaxBackups,
		MaxAgeDays: cfg.Logs.MaxAgeDays,
		Compress:   cfg.Logs.Compress,
	})
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	log.Info("Starting SMC-BarberService...")
	log.Info("Configuration loaded from %s", configPath)

	loc, err := cfg.Business.Location()
	if err != nil {
		log.Fatal("Failed to load business timezone: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Метрики собираются всегда; при выключенных метриках registry приватный и наружу не отдается
	var metricsCollector *metrics.Metrics
	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName)
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	} else {
		metricsCollector = metrics.NewWithRegisterer(cfg.Metrics.ServiceName, prometheus.NewRegistry())
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
	if err := db.PingContext(ctx); err != nil {
		log.Fatal("Failed to ping database: %v", err)
	}
	log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

	stopMetricsCh := make(chan struct{})
	wrappedDB := dbmetrics.WrapWithDefault(db, metricsCollector, cfg.Metrics.ServiceName, stopMetricsCh)
	txMgr := txmanager.NewTransactionManager(wrappedDB)

	// Репозитории
	appointmentRepository := appointmentRepo.NewRepository(wrappedDB)
	employeeRepository := employeeRepo.NewRepository(wrappedDB)
	clientRepository := clientRepo.NewRepository(wrappedDB)
	serviceRepository := serviceRepo.NewRepository(wrappedDB)
	ledgerRepository := ledgerRepo.NewRepository(wrappedDB)
	conversationRepository := conversationRepo.NewRepository(wrappedDB)

	// Блокировки по телефону: Redis для нескольких инстансов, иначе в памяти процесса
	var phoneLocker bot.Locker
	if cfg.Redis.Enabled {
		redisClient, err := redisclient.New(ctx, redisclient.Config{
			Addr:     cfg.Redis.Addr,
			DB:       cfg.Redis.DB,
			Password: cfg.Redis.Password,
			PoolSize: cfg.Redis.PoolSize,
		})
		if err != nil {
			log.Fatal("Failed to connect to redis: %v", err)
		}
		defer redisClient.Close()

		phoneLocker = locker.NewRedisLocker(redisClient, cfg.Redis.KeyPrefix, cfg.Bot.LockTTL())
		log.Info("Redis locker enabled (addr=%s)", cfg.Redis.Addr)
	} else {
		phoneLocker = locker.NewMemoryLocker()
		log.Info("In-process locker enabled")
	}

	// Интеграции
	var calendarProvider calendar.Provider = calendar.Disabled{}
	if cfg.Calendar.Enabled() {
		calendarClient := calendar.NewClient(
			cfg.Calendar.URL,
			cfg.Calendar.APIKey,
			time.Duration(cfg.Calendar.Timeout)*time.Second,
			loc,
			log,
		)
		calendarProvider = calendar.NewCachedClient(
			calendarClient,
			cfg.Calendar.CacheSize,
			time.Duration(cfg.Calendar.CacheTTLSeconds)*time.Second,
			loc,
		)
		log.Info("Calendar integration enabled (url=%s, timeout=%ds)", cfg.Calendar.URL, cfg.Calendar.Timeout)
	} else {
		log.Warn("Calendar integration disabled")
	}

	messenger := whatsapp.NewClient(
		cfg.WhatsApp.BaseURL,
		cfg.WhatsApp.PhoneNumberID,
		cfg.WhatsApp.AccessToken,
		time.Duration(cfg.WhatsApp.Timeout)*time.Second,
		log,
	)

	sideEffects := besteffort.NewDispatcher(log, cfg.Bot.SideEffectTimeout(), metricsCollector)

	// Сервисы
	validator := overlap.NewValidator(employeeRepository, appointmentRepository, cfg.Business.Lunch(), loc)
	appointmentSvc := appointmentsService.NewService(
		appointmentRepository,
		ledgerRepository,
		calendarProvider,
		validator,
		txMgr,
		sideEffects,
		cfg.Business.DefaultPhoneRegion,
		log,
	)
	clientSvc := clientsService.NewService(clientRepository, cfg.Business.DefaultPhoneRegion, log)
	conversationSvc := conversationsService.NewService(
		conversationRepository,
		cfg.Bot.IdleTimeout(),
		metricsCollector,
		log,
	)

	// Use cases
	createAppointmentUseCase := createAppointmentUC.NewUseCase(
		appointmentRepository,
		employeeRepository,
		clientRepository,
		serviceRepository,
		ledgerRepository,
		calendarProvider,
		validator,
		trackingcode.NewGenerator(cfg.Business.TrackingCodePrefix),
		txMgr,
		sideEffects,
		metricsCollector,
		cfg.Business.DefaultSlotMinutes,
		log,
	)
	getAvailableSlotsUseCase := getAvailableSlotsUC.NewUseCase(
		employeeRepository,
		appointmentRepository,
		calendarProvider,
		cfg.Business.Lunch(),
		loc,
		log,
	)

	// Диалоговый движок
	engine := bot.NewEngine(bot.Deps{
		Conversations: conversationRepository,
		Employees:     employeeRepository,
		Catalog:       serviceRepository,
		Clients:       clientRepository,
		Resolver:      clientSvc,
		Slots:         getAvailableSlotsUseCase,
		Creator:       createAppointmentUseCase,
		Appointments:  appointmentSvc,
		Messenger:     messenger,
		Locker:        phoneLocker,
		TxManager:     txMgr,
		SideEffects:   sideEffects,
		Metrics:       metricsCollector,
		Logger:        log,
	}, bot.Settings{
		BusinessName:       cfg.Business.Name,
		Address:            cfg.Business.Address,
		Location:           loc,
		IdleTimeout:        cfg.Bot.IdleTimeout(),
		LockWait:           cfg.Bot.LockWait(),
		DefaultSlotMinutes: cfg.Business.DefaultSlotMinutes,
		PhoneRegion:        cfg.Business.DefaultPhoneRegion,
	})

	// Инициализируем handlers
	webhook := webhookHandler.NewHandler(engine, cfg.WhatsApp.VerifyToken, cfg.WhatsApp.AppSecret, log)
	getAvailableSlots := getAvailableSlotsHandler.NewHandler(getAvailableSlotsUseCase, loc, cfg.Business.DefaultSlotMinutes, log)
	createAppointment := createAppointmentHandler.NewHandler(createAppointmentUseCase, clientSvc, loc, log)
	getAppointment := getAppointmentHandler.NewHandler(appointmentSvc, loc, log)
	reschedule := rescheduleHandler.NewHandler(appointmentSvc, loc, log)
	changeStatus := changeStatusHandler.NewHandler(appointmentSvc, loc, log)
	deleteAppointment := deleteAppointmentHandler.NewHandler(appointmentSvc, loc, log)
	getClientAppointments := getClientAppointmentsHandler.NewHandler(appointmentSvc, loc, log)
	getEmployeeAppointments := getEmployeeAppointmentsHandler.NewHandler(appointmentSvc, loc, log)

	// Настраиваем роутер
	r := mux.NewRouter()

	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector))
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	// API prefix
	api := r.PathPrefix("/api/v1").Subrouter()

	// --- WhatsApp ---
	api.HandleFunc("/webhooks/whatsapp", webhook.HandleVerify).Methods(http.MethodGet)
	api.HandleFunc("/webhooks/whatsapp", webhook.Handle).Methods(http.MethodPost)

	// --- Мастера ---
	api.HandleFunc("/employees/{employeeId}/available-slots", getAvailableSlots.Handle).Methods(http.MethodGet)
	api.HandleFunc("/employees/{employeeId}/appointments", getEmployeeAppointments.Handle).Methods(http.MethodGet)

	// --- Клиенты ---
	api.HandleFunc("/clients/{phone}/appointments", getClientAppointments.Handle).Methods(http.MethodGet)

	// --- Записи ---
	api.HandleFunc("/appointments", createAppointment.Handle).Methods(http.MethodPost)
	api.HandleFunc("/appointments/by-code/{trackingCode}", getAppointment.HandleByTrackingCode).Methods(http.MethodGet)
	api.HandleFunc("/appointments/{appointmentId}", getAppointment.Handle).Methods(http.MethodGet)
	api.HandleFunc("/appointments/{appointmentId}", reschedule.Handle).Methods(http.MethodPatch)
	api.HandleFunc("/appointments/{appointmentId}", deleteAppointment.Handle).Methods(http.MethodDelete)
	api.HandleFunc("/appointments/{appointmentId}/status", changeStatus.Handle).Methods(http.MethodPatch)

	// Создаем HTTP сервер
	addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("Starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	// Закрытие простаивающих диалогов
	g.Go(func() error {
		return sweeper.New(conversationSvc, cfg.Bot.SweepInterval(), log).Run(gCtx)
	})

	// Graceful shutdown по сигналу или при падении одной из горутин
	g.Go(func() error {
		<-gCtx.Done()
		log.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(
			context.Background(),
			time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
		)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("Server forced to shutdown: %v", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Error("Service stopped with error: %v", err)
	}

	// Останавливаем сбор метрик connection pool
	close(stopMetricsCh)

	log.Info("Server stopped gracefully")
}
