package main

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/clinicadelvalle/asistente/internal/infra/cache"
	"github.com/clinicadelvalle/asistente/internal/infra/database"
	"github.com/clinicadelvalle/asistente/internal/infra/http/handlers"
	"github.com/clinicadelvalle/asistente/internal/infra/http/middleware"
	"github.com/clinicadelvalle/asistente/internal/infra/integration/openai"
	"github.com/clinicadelvalle/asistente/internal/infra/integration/tokko"
	"github.com/clinicadelvalle/asistente/internal/infra/mail"
	"github.com/clinicadelvalle/asistente/internal/infra/queue"
	"github.com/clinicadelvalle/asistente/internal/usecase"
	logx "github.com/clinicadelvalle/asistente/pkg/logger"
)

type Config struct {
	Environment string `envconfig:"ENVIRONMENT" default:"development"`
	Port        string `envconfig:"PORT" default:"8080"`

	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`

	OpenAIAPIKey  string `envconfig:"OPENAI_API_KEY" required:"true"`
	OpenAIBaseURL string `envconfig:"OPENAI_BASE_URL"`
	AssistantID   string `envconfig:"ASSISTANT_ID"`

	RabbitUser string `envconfig:"RABBITMQ_USER" default:"guest"`
	RabbitPass string `envconfig:"RABBITMQ_PASS" default:"guest"`
	RabbitHost string `envconfig:"RABBITMQ_HOST" default:"localhost"`
	RabbitPort string `envconfig:"RABBITMQ_PORT" default:"5672"`

	RedisAddr string `envconfig:"REDIS_ADDR"`
	RedisPass string `envconfig:"REDIS_PASS"`

	MailHost string `envconfig:"MAIL_HOST"`
	MailPort int    `envconfig:"MAIL_PORT" default:"587"`
	MailUser string `envconfig:"MAIL_USER"`
	MailPass string `envconfig:"MAIL_PASS"`
	MailFrom string `envconfig:"MAIL_FROM"`

	TokkoAPIKey  string `envconfig:"TOKKO_API_KEY"`
	TokkoBaseURL string `envconfig:"TOKKO_BASE_URL"`

	Timezone string `envconfig:"CLINIC_TIMEZONE" default:"America/Argentina/Buenos_Aires"`
}

func main() {
	godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		panic(err)
	}

	logx.Init(cfg.Environment)

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		logx.Fatal().Err(err).Str("timezone", cfg.Timezone).Msg("Zona horaria inválida")
	}

	db, err := database.NewDBConnection(cfg.DatabaseURL)
	if err != nil {
		logx.Fatal().Err(err).Msg("No se pudo conectar a la base de datos")
	}
	defer db.Close()

	rabbitMQ, err := queue.NewRabbitMQ(cfg.RabbitUser, cfg.RabbitPass, cfg.RabbitHost, cfg.RabbitPort)
	if err != nil {
		logx.Fatal().Err(err).Msg("No se pudo conectar a RabbitMQ")
	}
	defer rabbitMQ.Conn.Close()
	defer rabbitMQ.Ch.Close()

	// 1. Repositorios
	leadRepo := database.NewLeadRepository(db)
	appointmentRepo := database.NewAppointmentRepository(db, loc)
	contextRepo := database.NewContextRepository(db)

	// 2. Integraciones y adapters
	assistantClient := openai.NewClient(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL)
	producer := queue.NewProducer(rabbitMQ.Conn, rabbitMQ.Ch)
	mailSender := mail.NewEmailSender(cfg.MailHost, cfg.MailPort, cfg.MailUser, cfg.MailPass, cfg.MailFrom)
	tokkoClient := tokko.NewClient(cfg.TokkoAPIKey, cfg.TokkoBaseURL)

	var propertyCache *cache.PropertyCache
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPass})
		propertyCache = cache.NewPropertyCache(rdb)
	}

	// El assistant se crea una sola vez; en ambientes nuevos arranca sin ID.
	assistantID, err := assistantClient.EnsureAssistant(context.Background(), cfg.AssistantID)
	if err != nil {
		logx.Fatal().Err(err).Msg("No se pudo inicializar el assistant")
	}

	// 3. Worker (consume la cola y manda confirmaciones por email)
	worker := queue.NewWorker(rabbitMQ.Ch, mailSender)
	go worker.Start(queue.NotificationsQueue)

	// 4. Motor de conversación
	validator := usecase.NewSchedulingValidator(appointmentRepo, loc)
	dispatcher := usecase.NewToolDispatcher(leadRepo, appointmentRepo, contextRepo, validator, producer)

	engine, err := usecase.NewConversationEngine(assistantClient, contextRepo, dispatcher, usecase.EngineConfig{
		AssistantID: assistantID,
	})
	if err != nil {
		logx.Fatal().Err(err).Msg("No se pudo crear el motor de conversación")
	}

	// 5. Handlers
	chatHandler := handlers.NewChatHandler(engine)
	propertiesHandler := handlers.NewPropertiesHandler(tokkoClient, propertyCache)
	healthHandler := handlers.NewHealthHandler(db, rabbitMQ.Conn)

	// 6. Router
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(middleware.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
	}))

	r.Post("/chat", chatHandler.Handle)
	r.Get("/propiedades", propertiesHandler.Handle)
	r.Get("/health", healthHandler.Handle)
	r.Handle("/metrics", promhttp.Handler())

	addr := ":" + cfg.Port
	logx.Info().Str("addr", addr).Msg("🔥 Asistente de la clínica escuchando")
	if err := http.ListenAndServe(addr, r); err != nil {
		logx.Fatal().Err(err).Msg("El servidor HTTP terminó con error")
	}
}
