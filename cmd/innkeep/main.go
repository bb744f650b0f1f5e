package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"innkeep/internal/app/commands"
	availabilityapp "innkeep/internal/app/handlers/availability"
	bookingapp "innkeep/internal/app/handlers/booking"
	paymentapp "innkeep/internal/app/handlers/payment"
	webhookapp "innkeep/internal/app/handlers/webhook"
	"innkeep/internal/app/middleware"
	appoutbox "innkeep/internal/app/outbox"
	"innkeep/internal/app/policies"
	"innkeep/internal/app/queries"
	authsvc "innkeep/internal/app/services/auth"
	"innkeep/internal/app/uow"
	domainpricing "innkeep/internal/domain/pricing"
	domainroom "innkeep/internal/domain/room"
	domainuser "innkeep/internal/domain/user"
	"innkeep/internal/domain/shared/money"
	"innkeep/internal/infra/broker/kafka"
	"innkeep/internal/infra/config"
	"innkeep/internal/infra/db/postgres"
	"innkeep/internal/infra/gateway/bank"
	"innkeep/internal/infra/gateway/card"
	ginserver "innkeep/internal/infra/http/gin"
	"innkeep/internal/infra/obs"
	infraoutbox "innkeep/internal/infra/outbox"
	"innkeep/internal/infra/security"
	"innkeep/internal/infra/storage/memory"
	redisstore "innkeep/internal/infra/storage/redis"
	"innkeep/internal/infra/storage/s3"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	_ = godotenv.Load()

	env := getenv("APP_ENV", "dev")
	logger := obs.NewLogger(env)

	cfg, err := config.Load()
	if err != nil {
		logger.Warn("using fallback configuration", "error", err)
		cfg.Env = env
	}
	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = ":8080"
	}

	app := buildApplication(ctx, cfg, logger)
	defer app.close()

	server := ginserver.NewServer(cfg, obs.Middleware{Logger: logger}, obs.HealthHandlers{
		Ready: app.ready,
	}, app.handlers)

	fixturesPath := getenv("ROOM_FIXTURES", "")
	if fixturesPath == "" {
		fixturesPath = filepath.Join("data", "rooms.json")
	}
	if err := app.loadRoomFixtures(ctx, fixturesPath, logger); err != nil {
		logger.Warn("room fixtures load failed", "error", err, "path", fixturesPath)
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("http shutdown failed", "error", err)
		}
	}()

	logger.Info("HTTP server starting", "addr", cfg.HTTPAddr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("http server failed", "error", err)
		os.Exit(1)
	}
	logger.Info("HTTP server stopped")
}

type application struct {
	handlers ginserver.Handlers
	factory  uow.UoWFactory
	producer *kafka.Producer
	ready    func() error
}

func (a application) close() {
	if a.producer != nil {
		_ = a.producer.Close()
	}
}

func buildApplication(ctx context.Context, cfg config.Config, logger *slog.Logger) application {
	var (
		factory    uow.UoWFactory
		box        appoutbox.Outbox
		eventStore infraoutbox.Store
		idStore    middleware.IdempotencyStore
		usersRepo  domainuser.Repository
	)
	readyCheck := func() error { return nil }

	if cfg.PostgresDSN != "" {
		db, err := postgres.Open(cfg.PostgresDSN)
		if err != nil {
			logger.Error("postgres unavailable, falling back to in-memory storage", "error", err)
		} else {
			factory = postgres.NewFactory(db)
			box = postgres.NewOutbox(db)
			eventStore = postgres.NewOutboxStore(db)
			idStore = postgres.NewIdempotencyStore(db, cfg.IdempotencyTTL)
			usersRepo = postgres.NewUserRepository(db)
			readyCheck = func() error {
				sqlDB, err := db.DB()
				if err != nil {
					return err
				}
				return sqlDB.Ping()
			}
		}
	}
	if factory == nil {
		memStore := memory.NewOutboxStore()
		memBox := memory.NewOutbox()
		memBox.Store = memStore
		factory = memory.NewFactory()
		box = memBox
		eventStore = memStore
		idStore = memory.NewIdempotencyStore()
		usersRepo = memory.NewUserRepository()
	}

	if cfg.RedisAddr != "" {
		client, err := redisstore.NewClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			logger.Warn("redis unavailable, idempotency falls back to primary storage", "error", err)
		} else {
			idStore = redisstore.NewIdempotencyStore(client, cfg.IdempotencyTTL)
		}
	}

	tokens := security.JWTManager{
		Secret: []byte(cfg.JWTSecret),
		Issuer: cfg.JWTIssuer,
	}
	authService := &authsvc.Service{
		Users:     usersRepo,
		Passwords: security.BcryptHasher{},
		Tokens:    tokens,
		TokenTTL:  cfg.TokenTTL,
		Logger:    logger,
	}

	gatewayClient := &http.Client{Timeout: cfg.GatewayTimeout}
	gateways := policies.GatewayRouter{
		Bank: &bank.Gateway{
			Client:       gatewayClient,
			BaseURL:      cfg.BankGatewayURL,
			ClientID:     cfg.BankClientID,
			ClientSecret: cfg.BankClientSecret,
			Tokens:       security.RandomTokenGenerator{},
			Logger:       logger,
		},
		Card: &card.Gateway{
			Client:  gatewayClient,
			BaseURL: cfg.CardGatewayURL,
			APIKey:  cfg.CardAPIKey,
			Logger:  logger,
		},
	}

	var archive s3.Archiver = s3.NoopArchiver{}
	if cfg.S3Endpoint != "" {
		client, err := s3.NewClient(cfg.S3Endpoint, cfg.S3UseSSL, cfg.S3AccessKey, cfg.S3SecretKey, cfg.S3Bucket, logger)
		if err != nil {
			logger.Warn("webhook archive unavailable", "error", err)
		} else {
			archive = client
		}
	}

	encoder := appoutbox.JSONEventEncoder{}

	commandBus := commands.NewInMemoryBus()
	commands.RegisterHandler(commandBus, bookingapp.CreateBookingCommand{}.Key(), &bookingapp.CreateBookingHandler{
		UoWFactory: factory,
		Pricing:    domainpricing.QuotePricing{},
		Outbox:     box,
		Encoder:    encoder,
	})
	commands.RegisterHandler(commandBus, bookingapp.DirectBookingCommand{}.Key(), &bookingapp.DirectBookingHandler{
		UoWFactory: factory,
		Pricing:    domainpricing.DirectBookingPricing{},
		Outbox:     box,
		Encoder:    encoder,
	})
	commands.RegisterHandler(commandBus, bookingapp.AssignRoomsCommand{}.Key(), &bookingapp.AssignRoomsHandler{
		UoWFactory: factory,
		Outbox:     box,
		Encoder:    encoder,
	})
	commands.RegisterHandler(commandBus, bookingapp.CheckInCommand{}.Key(), &bookingapp.CheckInHandler{
		UoWFactory: factory,
		Outbox:     box,
		Encoder:    encoder,
	})
	commands.RegisterHandler(commandBus, bookingapp.CheckOutCommand{}.Key(), &bookingapp.CheckOutHandler{
		UoWFactory: factory,
		Outbox:     box,
		Encoder:    encoder,
	})
	commands.RegisterHandler(commandBus, bookingapp.CancelBookingCommand{}.Key(), &bookingapp.CancelBookingHandler{
		UoWFactory: factory,
		Outbox:     box,
		Encoder:    encoder,
	})
	commands.RegisterHandler(commandBus, bookingapp.NoShowCommand{}.Key(), &bookingapp.NoShowHandler{
		UoWFactory: factory,
		Outbox:     box,
		Encoder:    encoder,
	})
	commands.RegisterHandler(commandBus, bookingapp.EditDatesCommand{}.Key(), &bookingapp.EditDatesHandler{
		UoWFactory: factory,
		Outbox:     box,
		Encoder:    encoder,
	})
	commands.RegisterHandler(commandBus, paymentapp.CreatePaymentCommand{}.Key(), &paymentapp.CreatePaymentHandler{
		UoWFactory: factory,
		Gateways:   gateways,
	})
	commands.RegisterHandler(commandBus, paymentapp.RequestRefundCommand{}.Key(), &paymentapp.RequestRefundHandler{
		UoWFactory: factory,
		Gateways:   gateways,
		Outbox:     box,
		Encoder:    encoder,
	})
	commands.RegisterHandler(commandBus, webhookapp.BankCallbackCommand{}.Key(), &webhookapp.BankCallbackHandler{
		UoWFactory: factory,
		Outbox:     box,
		Encoder:    encoder,
		Logger:     logger,
	})
	commands.RegisterHandler(commandBus, webhookapp.CardEventCommand{}.Key(), &webhookapp.CardEventHandler{
		UoWFactory: factory,
		Outbox:     box,
		Encoder:    encoder,
		Logger:     logger,
	})

	queryBus := queries.NewInMemoryBus()
	queries.RegisterHandler(queryBus, bookingapp.GetBookingQuery{}.Key(), &bookingapp.GetBookingHandler{UoWFactory: factory})
	queries.RegisterHandler(queryBus, bookingapp.GuestBookingsQuery{}.Key(), &bookingapp.GuestBookingsHandler{UoWFactory: factory})
	queries.RegisterHandler(queryBus, availabilityapp.AvailableRoomsQuery{}.Key(), &availabilityapp.AvailableRoomsHandler{UoWFactory: factory})
	queries.RegisterHandler(queryBus, paymentapp.GetPaymentQuery{}.Key(), &paymentapp.GetPaymentHandler{UoWFactory: factory})
	queries.RegisterHandler(queryBus, paymentapp.BookingPaymentsQuery{}.Key(), &paymentapp.BookingPaymentsHandler{UoWFactory: factory})

	commandBusWithMiddleware := middleware.ChainCommands(
		commandBus,
		middleware.Idempotency(idStore, nil),
		middleware.Transaction(factory, bookingapp.TransactionOptions),
		middleware.OutboxFlush(box),
	)
	queryBusWithMiddleware := middleware.ChainQueries(queryBus)

	producer := startPublisher(ctx, cfg, eventStore, logger)

	return application{
		handlers: ginserver.Handlers{
			Booking: ginserver.BookingHandler{
				Commands: commandBusWithMiddleware,
				Queries:  queryBusWithMiddleware,
			},
			Availability: ginserver.AvailabilityHandler{
				Queries: queryBusWithMiddleware,
			},
			Payment: ginserver.PaymentHandler{
				Commands: commandBusWithMiddleware,
				Queries:  queryBusWithMiddleware,
			},
			Webhook: ginserver.WebhookHandler{
				Commands:   commandBusWithMiddleware,
				BankSecret: []byte(cfg.BankWebhookSecret),
				CardSecret: []byte(cfg.CardWebhookSecret),
				Archive:    archive,
				Logger:     logger,
			},
			Auth: ginserver.AuthHandler{
				Service: authService,
				Logger:  logger,
			},
			AuthMiddleware: ginserver.AuthMiddleware{Service: authService, Logger: logger}.Handle,
		},
		factory:  factory,
		producer: producer,
		ready:    readyCheck,
	}
}

func startPublisher(ctx context.Context, cfg config.Config, store infraoutbox.Store, logger *slog.Logger) *kafka.Producer {
	if len(cfg.KafkaBrokers) == 0 || store == nil {
		logger.Warn("event publishing disabled, outbox events stay queued")
		return nil
	}
	producer, err := kafka.NewProducer(cfg.KafkaBrokers, nil)
	if err != nil {
		logger.Error("kafka unavailable, outbox events stay queued", "error", err)
		return nil
	}
	worker := &infraoutbox.Worker{
		Store:       store,
		Producer:    producer,
		Interval:    cfg.OutboxPollInterval,
		TopicPrefix: cfg.KafkaTopicPrefix,
		Backoff:     cfg.RetryBackoff,
	}
	go func() {
		if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("outbox worker stopped", "error", err)
		}
	}()
	return producer
}

func (a application) loadRoomFixtures(ctx context.Context, path string, logger *slog.Logger) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Info("room fixtures file not found, skipping", "path", path)
			return nil
		}
		return fmt.Errorf("read fixtures: %w", err)
	}

	var fixtures roomFixtures
	if err := json.Unmarshal(data, &fixtures); err != nil {
		return fmt.Errorf("decode fixtures: %w", err)
	}
	if len(fixtures.Types) == 0 && len(fixtures.Rooms) == 0 {
		return nil
	}

	unit, err := a.factory.Begin(ctx, uow.TxOptions{})
	if err != nil {
		return err
	}
	defer unit.Rollback(ctx)

	now := time.Now().UTC()
	for _, ft := range fixtures.Types {
		roomType := &domainroom.RoomType{
			ID:          domainroom.TypeID(ft.ID),
			Name:        domainroom.BilingualText{EN: ft.NameEN, TH: ft.NameTH},
			Description: domainroom.BilingualText{EN: ft.DescriptionEN, TH: ft.DescriptionTH},
			NightlyRate: money.THB(ft.NightlyRate),
			Capacity:    ft.Capacity,
			BedCount:    ft.BedCount,
			BedKind:     ft.BedKind,
		}
		if err := unit.Rooms().SaveType(ctx, roomType); err != nil {
			logger.Error("cannot store fixture room type", "type_id", ft.ID, "error", err)
			continue
		}
	}
	for _, fr := range fixtures.Rooms {
		rm := &domainroom.Room{
			ID:        domainroom.RoomID(fr.ID),
			Number:    fr.Number,
			Floor:     fr.Floor,
			TypeID:    domainroom.TypeID(fr.TypeID),
			Status:    domainroom.StatusAvailable,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := unit.Rooms().Save(ctx, rm); err != nil {
			logger.Error("cannot store fixture room", "room_id", fr.ID, "error", err)
			continue
		}
	}
	if err := unit.Commit(ctx); err != nil {
		return err
	}
	logger.Info("room fixtures imported", "types", len(fixtures.Types), "rooms", len(fixtures.Rooms))
	return nil
}

type roomFixtures struct {
	Types []roomTypeFixture `json:"types"`
	Rooms []roomFixture     `json:"rooms"`
}

type roomTypeFixture struct {
	ID            string `json:"id"`
	NameEN        string `json:"name_en"`
	NameTH        string `json:"name_th"`
	DescriptionEN string `json:"description_en"`
	DescriptionTH string `json:"description_th"`
	NightlyRate   int64  `json:"nightly_rate"`
	Capacity      int    `json:"capacity"`
	BedCount      int    `json:"bed_count"`
	BedKind       string `json:"bed_kind"`
}

type roomFixture struct {
	ID     string `json:"id"`
	Number string `json:"number"`
	Floor  int    `json:"floor"`
	TypeID string `json:"type_id"`
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
