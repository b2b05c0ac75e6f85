package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"

	"github.com/rl1809/stockroom/internal/adapter/handler"
	"github.com/rl1809/stockroom/internal/adapter/handler/pb"
	"github.com/rl1809/stockroom/internal/client"
)

// purchaser is one transport's view of the three calls the run needs.
type purchaser interface {
	seed(ctx context.Context, name string, quantity int) error
	purchase(ctx context.Context, name string) error
	quantity(ctx context.Context, name string) (int, error)
}

func main() {
	mode := flag.String("mode", "http", "transport to use: http or grpc")
	httpURL := flag.String("http", "http://127.0.0.1:5000", "base URL of the HTTP API")
	grpcAddr := flag.String("grpc", "127.0.0.1:50051", "address of the gRPC API")
	item := flag.String("item", "stress-item", "item to purchase")
	initialStock := flag.Int("stock", 20, "quantity the item is seeded with")
	totalRequests := flag.Int("requests", 50, "number of concurrent purchases")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	var p purchaser
	switch *mode {
	case "http":
		p = httpPurchaser{api: client.NewAPIClient(*httpURL, &http.Client{Timeout: 30 * time.Second})}
	case "grpc":
		conn, err := grpc.NewClient(*grpcAddr, grpc.WithTransportCredentials(insecure.NewCredentials()))
		if err != nil {
			fmt.Fprintln(os.Stderr, "failed to connect grpc:", err)
			os.Exit(1)
		}
		defer conn.Close()
		p = grpcPurchaser{client: pb.NewInventoryServiceClient(conn)}
	default:
		fmt.Fprintf(os.Stderr, "unknown mode %q\n", *mode)
		os.Exit(2)
	}

	if err := p.seed(ctx, *item, *initialStock); err != nil {
		fmt.Fprintln(os.Stderr, "failed to seed item:", err)
		os.Exit(1)
	}

	// Counters
	var successCount atomic.Int32
	var failCount atomic.Int32

	// Spawn concurrent requests
	var wg sync.WaitGroup
	start := time.Now()

	for i := 0; i < *totalRequests; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := p.purchase(ctx, *item); err == nil {
				successCount.Add(1)
			} else {
				failCount.Add(1)
			}
		}()
	}

	wg.Wait()
	elapsed := time.Since(start)

	success := int(successCount.Load())
	fail := int(failCount.Load())
	wantSuccess := min(*initialStock, *totalRequests)

	fmt.Println("========== STRESS TEST RESULTS ==========")
	fmt.Printf("Transport:        %s\n", *mode)
	fmt.Printf("Initial Stock:    %d\n", *initialStock)
	fmt.Printf("Total Requests:   %d\n", *totalRequests)
	fmt.Printf("Successful:       %d\n", success)
	fmt.Printf("Failed:           %d\n", fail)
	fmt.Printf("Duration:         %v\n", elapsed)
	fmt.Println("==========================================")

	passed := true
	if success == wantSuccess && fail == *totalRequests-wantSuccess {
		fmt.Printf("PASS: Exactly %d purchases succeeded, %d failed\n", success, fail)
	} else {
		fmt.Printf("FAIL: Expected %d success/%d fail, got %d/%d\n",
			wantSuccess, *totalRequests-wantSuccess, success, fail)
		passed = false
	}

	finalStock, err := p.quantity(ctx, *item)
	if err != nil {
		fmt.Println("FAIL: could not read final quantity:", err)
		os.Exit(1)
	}
	fmt.Printf("Final Quantity:   %d\n", finalStock)

	if want := *initialStock - wantSuccess; finalStock == want {
		fmt.Printf("PASS: Quantity settled at %d\n", want)
	} else {
		fmt.Printf("FAIL: Expected quantity %d, got %d\n", want, finalStock)
		passed = false
	}

	if !passed {
		os.Exit(1)
	}
}

type httpPurchaser struct {
	api *client.APIClient
}

func (h httpPurchaser) seed(ctx context.Context, name string, quantity int) error {
	_, err := h.api.Call(ctx, "add-item", map[string]any{"name": name, "quantity": quantity})
	var apiErr *client.APIError
	if errors.As(err, &apiErr) && apiErr.Code == handler.CodeAlreadyExists {
		_, err = h.api.Call(ctx, "update-quantity", map[string]any{"name": name, "new_quantity": quantity})
	}
	return err
}

func (h httpPurchaser) purchase(ctx context.Context, name string) error {
	_, err := h.api.Call(ctx, "purchase-item", map[string]any{"name": name})
	return err
}

func (h httpPurchaser) quantity(ctx context.Context, name string) (int, error) {
	payload, err := h.api.Call(ctx, "get-inventory", nil)
	if err != nil {
		return 0, err
	}
	var inv client.InventoryPayload
	if err := payload.Decode(&inv); err != nil {
		return 0, err
	}
	for _, item := range inv.Inventory {
		if item.Name == name {
			return item.Quantity, nil
		}
	}
	return 0, fmt.Errorf("item %q not in inventory", name)
}

type grpcPurchaser struct {
	client pb.InventoryServiceClient
}

func (g grpcPurchaser) seed(ctx context.Context, name string, quantity int) error {
	_, err := g.client.AddItem(ctx, &pb.AddItemRequest{Name: name, Quantity: int32(quantity)})
	if status.Code(err) == codes.AlreadyExists {
		_, err = g.client.UpdateQuantity(ctx, &pb.UpdateQuantityRequest{Name: name, NewQuantity: int32(quantity)})
	}
	return err
}

func (g grpcPurchaser) purchase(ctx context.Context, name string) error {
	_, err := g.client.PurchaseItem(ctx, &pb.StockRequest{Name: name})
	return err
}

func (g grpcPurchaser) quantity(ctx context.Context, name string) (int, error) {
	resp, err := g.client.GetInventory(ctx, &pb.GetInventoryRequest{})
	if err != nil {
		return 0, err
	}
	for _, item := range resp.GetInventory() {
		if item.Name == name {
			return int(item.Quantity), nil
		}
	}
	return 0, fmt.Errorf("item %q not in inventory", name)
}
