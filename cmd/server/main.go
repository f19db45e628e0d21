package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/rl1809/webshop/internal/adapter/auth"
	"github.com/rl1809/webshop/internal/adapter/handler"
	"github.com/rl1809/webshop/internal/adapter/session"
	"github.com/rl1809/webshop/internal/adapter/storage"
	"github.com/rl1809/webshop/internal/core/service"
)

var rootCmd = &cobra.Command{
	Use:   "webshop-server",
	Short: "E-commerce backend: catalog, cart, checkout and orders",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cfg := viper.GetString("config"); cfg != "" {
			viper.SetConfigFile(cfg)
			if err := viper.ReadInConfig(); err != nil {
				return err
			}
		}

		lvl := slog.LevelInfo
		switch strings.ToLower(viper.GetString("log-level")) {
		case "debug":
			lvl = slog.LevelDebug
		case "warn", "warning":
			lvl = slog.LevelWarn
		case "error":
			lvl = slog.LevelError
		}
		slog.SetDefault(slog.New(
			slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}),
		))
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return run()
	},
}

func init() {
	rootCmd.PersistentFlags().String("http-addr", ":8080", "HTTP listen address")
	rootCmd.PersistentFlags().String("mysql-dsn", "root:root@tcp(localhost:3306)/webshop?parseTime=true", "MySQL DSN")
	rootCmd.PersistentFlags().String("redis-addr", "localhost:6379", "Redis address")
	rootCmd.PersistentFlags().String("jwt-secret", "", "HMAC secret for bearer token verification")
	rootCmd.PersistentFlags().String("config", "", "config file")
	rootCmd.PersistentFlags().String("log-level", "info", "log level")

	for _, flag := range []string{"http-addr", "mysql-dsn", "redis-addr", "jwt-secret", "config", "log-level"} {
		viper.BindPFlag(flag, rootCmd.PersistentFlags().Lookup(flag))
	}
	viper.SetEnvPrefix("WEBSHOP")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

func run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if viper.GetString("jwt-secret") == "" {
		return fmt.Errorf("jwt-secret is required")
	}

	db, err := storage.OpenMySQL(ctx, viper.GetString("mysql-dsn"))
	if err != nil {
		return err
	}
	defer db.Close()
	slog.Info("connected to mysql")

	if err := storage.Migrate(ctx, db); err != nil {
		return err
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     viper.GetString("redis-addr"),
		PoolSize: 100,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	defer rdb.Close()
	slog.Info("connected to redis")

	productRepo := storage.NewProductRepository(db)
	categoryRepo := storage.NewCategoryRepository(db)
	cartRepo := storage.NewCartRepository(db)
	orderRepo := storage.NewOrderRepository(db)
	sessions := session.NewRedisStore(rdb)
	verifier := auth.NewJWTVerifier(viper.GetString("jwt-secret"))

	cartService := service.NewCartService(cartRepo, productRepo)
	orderService := service.NewOrderService(orderRepo, cartRepo, productRepo, sessions)
	categoryService := service.NewCategoryService(categoryRepo, productRepo)
	productService := service.NewProductService(productRepo, categoryRepo)

	identity := handler.NewIdentityResolver(verifier, sessions)
	mux := handler.NewRouter(
		handler.NewCartHandler(cartService, identity),
		handler.NewOrderHandler(orderService, identity),
		handler.NewCatalogHandler(productService, categoryService, identity),
		handler.NewWebHandler(cartService, orderService, sessions, identity),
	)

	httpServer := &http.Server{
		Addr:    viper.GetString("http-addr"),
		Handler: mux,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		slog.Info("shutting down", "signal", sig.String())
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown", "error", err)
	}
	slog.Info("HTTP server stopped")
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
