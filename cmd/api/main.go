package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"glalex-shop/internal/config"
	"glalex-shop/internal/db"
	"glalex-shop/internal/httpserver"
	"glalex-shop/internal/invoice"
	"glalex-shop/internal/notify"
	categoryrepo "glalex-shop/internal/repository/category"
	messagerepo "glalex-shop/internal/repository/message"
	orderrepo "glalex-shop/internal/repository/order"
	productrepo "glalex-shop/internal/repository/product"
	profilerepo "glalex-shop/internal/repository/profile"
	tokenrepo "glalex-shop/internal/repository/token"
	userrepo "glalex-shop/internal/repository/user"
	accountsvc "glalex-shop/internal/service/account"
	cartsvc "glalex-shop/internal/service/cart"
	catalogsvc "glalex-shop/internal/service/catalog"
	messagingsvc "glalex-shop/internal/service/messaging"
	ordersvc "glalex-shop/internal/service/order"
	reportsvc "glalex-shop/internal/service/report"
	rolesvc "glalex-shop/internal/service/role"
	"glalex-shop/internal/session"
	"glalex-shop/internal/storage"
)

func main() {
	_ = godotenv.Load()
	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "[api] ", log.LstdFlags|log.LUTC|log.Lshortfile)

	ctx := context.Background()
	dbpool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.Fatalf("connect to db: %v", err)
	}
	defer dbpool.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Fatalf("connect to redis: %v", err)
	}
	defer redisClient.Close()

	images, err := storage.NewImageStore(cfg.MediaDir)
	if err != nil {
		logger.Fatalf("init media dir: %v", err)
	}

	users := userrepo.NewPostgres(dbpool, logger)
	categories := categoryrepo.NewPostgres(dbpool)
	products := productrepo.NewPostgres(dbpool, logger)
	tokens := tokenrepo.NewPostgres(dbpool)
	profiles := profilerepo.NewPostgresRepository(dbpool, logger)
	orders := orderrepo.NewPostgresRepository(dbpool, logger)
	messages := messagerepo.NewPostgresRepository(dbpool, logger)

	var mail notify.Mailer
	if cfg.SMTPAddr != "" {
		mail = notify.NewSMTPMailer(cfg.SMTPAddr, cfg.SMTPFrom, cfg.SMTPUsername, cfg.SMTPPassword, logger)
	} else {
		mail = notify.NewDisabled(logger)
	}

	cartStore := session.NewCartStore(redisClient, cfg.CartTTL)

	accountService := accountsvc.New(users, profiles, tokens, orders, logger)
	roleService := rolesvc.New(profiles)
	catalogService := catalogsvc.New(products, categories, images, logger)
	cartService := cartsvc.New(cartStore, products)
	orderService := ordersvc.New(orders, cartService, messages, users, mail, logger)
	messagingService := messagingsvc.New(messages, users, profiles, profiles, orders, mail, logger)
	reportService := reportsvc.New(orders)

	srv, err := httpserver.New(cfg.HTTPAddr, logger, dbpool, httpserver.Deps{
		AccountSvc:   accountService,
		RoleSvc:      roleService,
		CatalogSvc:   catalogService,
		CartSvc:      cartService,
		OrderSvc:     orderService,
		MessagingSvc: messagingService,
		ReportSvc:    reportService,
		Media:        images,
		Invoices:     invoice.NewHTMLRenderer(),
	})
	if err != nil {
		logger.Fatalf("init server: %v", err)
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Printf("starting http server on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		logger.Printf("received signal %s, shutting down", sig)
	case err := <-serverErr:
		logger.Printf("server error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Printf("graceful shutdown failed: %v", err)
	} else {
		logger.Printf("server stopped")
	}
}
