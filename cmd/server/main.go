package main

import (
	"log"
	"net/http"

	"github.com/OG2511/maccabi-stickers-shop/internal/auth"
	"github.com/OG2511/maccabi-stickers-shop/internal/cart"
	"github.com/OG2511/maccabi-stickers-shop/internal/config"
	"github.com/OG2511/maccabi-stickers-shop/internal/db"
	"github.com/OG2511/maccabi-stickers-shop/internal/httpapi"
	"github.com/OG2511/maccabi-stickers-shop/internal/logger"
	"github.com/OG2511/maccabi-stickers-shop/internal/metrics"
	"github.com/OG2511/maccabi-stickers-shop/internal/middleware"
	"github.com/OG2511/maccabi-stickers-shop/internal/notify"
	"github.com/OG2511/maccabi-stickers-shop/internal/order"
	"github.com/OG2511/maccabi-stickers-shop/internal/pricing"
	"github.com/OG2511/maccabi-stickers-shop/internal/product"
)

func main() {
	cfg := config.LoadConfig()
	logger.Init(cfg.AppEnv)
	defer logger.Sync()

	database := db.InitDB(cfg)
	defer database.Close()

	rdb := db.InitRedis(cfg)
	defer rdb.Close()

	m := metrics.New()
	engine := pricing.NewEngine(pricing.DefaultRules())
	policy := cart.DefaultPolicy()

	productRepo := product.NewRepository(database)
	productSvc := product.NewService(productRepo)

	cartStore := cart.NewStore(rdb, cfg.CartTTL)
	cartSvc := cart.NewService(cartStore, productRepo, policy)

	feedRepo := notify.NewRepository(database)
	sender := notify.NewWhatsAppGateway(cfg.AdminWhatsAppNumber, cfg.CallMeBotAPIKey)
	notifier := notify.NewService(feedRepo, sender, m, cfg.SiteBaseURL)

	orderRepo := order.NewRepository(database)
	orderSvc := order.NewService(orderRepo, productRepo, engine, policy, notifier, m)

	sessions := auth.NewSessions(cfg.JWTSecret, cfg.AdminPasswordHash)

	h := httpapi.NewHandler(
		productSvc,
		cartSvc,
		orderSvc,
		feedRepo,
		sessions,
		engine,
		m,
		cfg.CartTTL,
	)

	mux := http.NewServeMux()
	h.RegisterRoutes(mux)

	var handler http.Handler = mux
	handler = m.Middleware(handler)
	handler = middleware.RateLimitMiddleware(handler)
	handler = logger.LoggingMiddleware(handler)
	handler = logger.RequestIDMiddleware(handler)

	log.Printf("🚀 sticker shop API running at http://localhost:%s/", cfg.AppPort)
	log.Fatal(http.ListenAndServe(":"+cfg.AppPort, handler))
}
