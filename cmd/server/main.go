package main

import (
	"context"

	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/pkg/errors"

	"github.com/linemk/ecommerce-api/internal/app"
	"github.com/linemk/ecommerce-api/internal/app/handlers"
	"github.com/linemk/ecommerce-api/internal/config"
	"github.com/linemk/ecommerce-api/internal/jwt-new/jwtmiddleware"
	"github.com/linemk/ecommerce-api/internal/lib/logger"
	"github.com/linemk/ecommerce-api/internal/lib/logger/handlers/urllog"
	"github.com/linemk/ecommerce-api/internal/service"
	"github.com/linemk/ecommerce-api/internal/storage"
)

func main() {
	// загрузка конфигурации
	cfg := config.MustLoad()

	// инициализация логгера, зависит от настройки окружения
	log := logger.SetupLogger(cfg.Env)
	log.Info("starting app", slog.String("env", cfg.Env))

	// загружаем объект приложения: конфиг, логгер и подключение к БД,
	// дальше всё передается явно — без глобального состояния
	application, err := app.NewApp(log, cfg)
	if err != nil {
		log.Error("failed to initialize app", slog.Any("error", err))
		panic(errors.Wrap(err, "failed to initialize app"))
	}
	defer application.DB.Close()

	router := chi.NewRouter()
	// настройка middleware
	router.Use(middleware.RequestID)
	router.Use(urllog.CustomLoggerMiddleware(log))
	router.Use(middleware.Recoverer)
	router.Use(middleware.URLFormat)

	// репозитории по каждой таблице
	userRepo := storage.NewUserRepository(application.DB)
	productRepo := storage.NewProductRepository(application.DB)
	orderRepo := storage.NewOrderRepository(application.DB)
	orderProdRepo := storage.NewOrderProductRepository(application.DB)

	authService := service.NewAuthService(application.Logger, userRepo, time.Duration(application.Config.JWT.TokenTTL)*time.Minute)
	userService := service.NewUserService(application.Logger, userRepo)
	productService := service.NewProductService(application.Logger, productRepo)
	orderService := service.NewOrderService(application.Logger, application.DB, userRepo, productRepo, orderRepo, orderProdRepo)

	// открытые эндпоинты: вход и регистрация
	router.Post("/login", handlers.LoginHandler(application.Logger, authService))
	router.Post("/users", handlers.CreateUserHandler(application.Logger, userService))

	router.Group(func(r chi.Router) {
		jwtMW := jwtmiddleware.NewJWTMiddleware()
		r.Use(jwtMW)

		// пользователи
		r.Get("/users", handlers.ListUsersHandler(application.Logger, userService))
		r.Get("/users/{id}", handlers.GetUserHandler(application.Logger, userService))
		r.Put("/users/{id}", handlers.UpdateUserHandler(application.Logger, userService))
		r.Delete("/users/{id}", handlers.DeleteUserHandler(application.Logger, userService))

		// товары
		r.Get("/products", handlers.ListProductsHandler(application.Logger, productService))
		r.Get("/products/{id}", handlers.GetProductHandler(application.Logger, productService))
		r.Post("/products", handlers.CreateProductHandler(application.Logger, productService))
		r.Put("/products/{id}", handlers.UpdateProductHandler(application.Logger, productService))
		r.Delete("/products/{id}", handlers.DeleteProductHandler(application.Logger, productService))

		// заказы и их состав
		r.Post("/orders", handlers.CreateOrderHandler(application.Logger, orderService))
		r.Post("/orders/{order_id}/add_product/{product_id}", handlers.AddProductToOrderHandler(application.Logger, orderService))
		r.Delete("/orders/{order_id}/remove_product", handlers.RemoveProductFromOrderHandler(application.Logger, orderService))
		r.Get("/orders/user/{user_id}", handlers.ListUserOrdersHandler(application.Logger, orderService))
		r.Get("/orders/{order_id}/products", handlers.ListOrderProductsHandler(application.Logger, orderService))
		r.Post("/orders/{order_id}/ship", handlers.ShipOrderHandler(application.Logger, orderService))
		r.Post("/orders/{order_id}/cancel", handlers.CancelOrderHandler(application.Logger, orderService))
	})

	srv := &http.Server{
		Addr:         cfg.HTTPServer.Address,
		Handler:      router,
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: cfg.HTTPServer.Timeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	go func() {
		log.Info("starting server", slog.String("address", cfg.HTTPServer.Address))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", slog.Any("error", err))
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	stopSign := <-stop
	log.Info("received shutdown signal", slog.String("signal", stopSign.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("server shutdown failed", slog.Any("error", err))
	}
	log.Info("server gracefully stopped")
}
