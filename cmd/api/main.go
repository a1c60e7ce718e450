package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/soukly/marketplace/internal/accounts"
	"github.com/soukly/marketplace/internal/cart"
	"github.com/soukly/marketplace/internal/catalog"
	"github.com/soukly/marketplace/internal/config"
	"github.com/soukly/marketplace/internal/coupon"
	"github.com/soukly/marketplace/internal/httpx"
	kafkax "github.com/soukly/marketplace/internal/kafka"
	"github.com/soukly/marketplace/internal/orders"
	"github.com/soukly/marketplace/internal/payment"
	"github.com/soukly/marketplace/internal/postgres"
	"github.com/soukly/marketplace/internal/redisx"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer db.Close()
	if err := postgres.Migrate(ctx, db); err != nil {
		log.Fatalf("db migrate: %v", err)
	}

	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	producers := map[string]*kafkax.Producer{
		orders.TopicOrderPlaced:      kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicOrderPlaced, 1024),
		orders.TopicOrderCanceled:    kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicOrderCanceled, 1024),
		orders.TopicSubOrderCanceled: kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicSubOrderCanceled, 1024),
		orders.TopicSubOrderStatus:   kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicSubOrderStatus, 1024),
	}
	for _, p := range producers {
		p.Start(ctx)
	}

	catalogRepo := &catalog.Repo{DB: db}
	couponEngine := &coupon.Engine{Repo: &coupon.Repo{DB: db}}
	cartRepo := &cart.Repo{DB: db}
	cartSvc := &cart.Service{Repo: cartRepo, Catalog: catalogRepo}

	svc := &orders.Service{
		Catalog:  catalogRepo,
		Coupons:  couponEngine,
		Cart:     cartRepo,
		Accounts: &accounts.Repo{DB: db},
		Orders:   &orders.Repo{DB: db},
		Policy: orders.PricingPolicy{
			TaxRatePct:      cfg.TaxRatePct,
			FreeShipOver:    cfg.ShipFreeOver,
			ReducedShipOver: cfg.ShipReducedOver,
			ReducedShipFee:  cfg.ShipReducedFee,
			BaseShipFee:     cfg.ShipBaseFee,
		},
		Currency:    cfg.Currency,
		ServiceName: cfg.ServiceName,
		Placed:      producers[orders.TopicOrderPlaced],
		Canceled:    producers[orders.TopicOrderCanceled],
		SubCanceled: producers[orders.TopicSubOrderCanceled],
		SubStatus:   producers[orders.TopicSubOrderStatus],
	}

	router := httpx.NewRouter()
	(&httpx.OrdersHandler{
		Svc:      svc,
		Payment:  payment.CashOnDelivery{},
		Redis:    rdb,
		Currency: cfg.Currency,
	}).Register(router)
	(&httpx.CatalogHandler{
		Catalog: catalogRepo,
		Cart:    cartSvc,
		Coupons: couponEngine,
	}).Register(router)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	go func() {
		log.Printf("HTTP listening at %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Println("shutting down...")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	for _, p := range producers {
		p.Close()
	}
	for _, p := range producers {
		p.WaitClosed()
	}
}
