package main

import (
	"context"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/rl1809/webshop/internal/adapter/session"
	"github.com/rl1809/webshop/internal/adapter/storage"
	"github.com/rl1809/webshop/internal/core/domain"
	"github.com/rl1809/webshop/internal/core/service"
)

const (
	mysqlDSN      = "root:root@tcp(localhost:3306)/webshop?parseTime=true"
	redisAddr     = "localhost:6379"
	initialStock  = 20
	totalRequests = 50
)

// Drives concurrent single-item checkouts against one product and
// verifies stock is never oversold: with 20 on hand and 50 buyers,
// exactly 20 orders must succeed and final stock must be 0.
func main() {
	ctx := context.Background()

	db, err := storage.OpenMySQL(ctx, mysqlDSN)
	if err != nil {
		log.Fatalf("failed to connect mysql: %v", err)
	}
	defer db.Close()
	if err := storage.Migrate(ctx, db); err != nil {
		log.Fatalf("failed to migrate: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{Addr: redisAddr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatalf("failed to connect redis: %v", err)
	}
	defer rdb.Close()

	productRepo := storage.NewProductRepository(db)
	cartRepo := storage.NewCartRepository(db)
	orderRepo := storage.NewOrderRepository(db)
	sessions := session.NewRedisStore(rdb)

	cartService := service.NewCartService(cartRepo, productRepo)
	orderService := service.NewOrderService(orderRepo, cartRepo, productRepo, sessions)

	now := time.Now()
	product := domain.Product{
		ID:        uuid.NewString(),
		Name:      "stress-test-item",
		Price:     decimal.NewFromFloat(9.99),
		Quantity:  initialStock,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := productRepo.Create(ctx, product); err != nil {
		log.Fatalf("failed to seed product: %v", err)
	}

	details := domain.CheckoutDetails{
		CustomerName:    "Stress Tester",
		CustomerEmail:   "stress@example.com",
		CustomerPhone:   "+12025550123",
		ShippingAddress: "1 Test Street, Test City",
		PaymentMethod:   "card",
	}

	var successCount atomic.Int32
	var failCount atomic.Int32

	var wg sync.WaitGroup
	start := time.Now()

	for i := 0; i < totalRequests; i++ {
		wg.Add(1)
		go func(buyer int) {
			defer wg.Done()

			identity := domain.Identity{SessionID: fmt.Sprintf("stress-%d-%s", buyer, uuid.NewString())}
			if _, err := cartService.AddItem(ctx, identity.CartOwner(), product.ID, 1); err != nil {
				failCount.Add(1)
				return
			}
			if _, err := orderService.Checkout(ctx, identity, details); err != nil {
				failCount.Add(1)
				return
			}
			successCount.Add(1)
		}(i)
	}

	wg.Wait()
	elapsed := time.Since(start)

	success := successCount.Load()
	fail := failCount.Load()

	fmt.Println("========== STRESS TEST RESULTS ==========")
	fmt.Printf("Initial Stock:    %d\n", initialStock)
	fmt.Printf("Total Requests:   %d\n", totalRequests)
	fmt.Printf("Successful:       %d\n", success)
	fmt.Printf("Failed:           %d\n", fail)
	fmt.Printf("Duration:         %v\n", elapsed)
	fmt.Println("==========================================")

	if success == int32(initialStock) && fail == int32(totalRequests-initialStock) {
		fmt.Printf("PASS: Exactly %d orders succeeded, %d failed\n", initialStock, totalRequests-initialStock)
	} else {
		fmt.Printf("FAIL: Expected %d success/%d fail, got %d/%d\n",
			initialStock, totalRequests-initialStock, success, fail)
	}

	final, err := productRepo.FindByID(ctx, product.ID)
	if err != nil {
		log.Fatalf("failed to reload product: %v", err)
	}
	fmt.Printf("Final Stock: %d\n", final.Quantity)

	if final.Quantity == 0 {
		fmt.Println("PASS: Stock depleted to 0")
	} else {
		fmt.Printf("FAIL: Expected stock 0, got %d\n", final.Quantity)
	}
}
