package handler

import (
	"context"
	"math"
	"net"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"github.com/rl1809/stockroom/internal/adapter/handler/pb"
	"github.com/rl1809/stockroom/internal/adapter/storage"
	"github.com/rl1809/stockroom/internal/core/service"
)

func newGRPCClient(t *testing.T) pb.InventoryServiceClient {
	t.Helper()

	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer()
	svc := service.NewInventoryService(storage.NewMemoryAdapter(""), nil, nil)
	pb.RegisterInventoryServiceServer(srv, NewGRPCHandler(svc, nil))

	go srv.Serve(lis)
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	return pb.NewInventoryServiceClient(conn)
}

func TestGRPC_Lifecycle(t *testing.T) {
	client := newGRPCClient(t)
	ctx := context.Background()

	resp, err := client.AddItem(ctx, &pb.AddItemRequest{Name: "bolt", Quantity: 1})
	require.NoError(t, err)
	assert.Equal(t, "Item added successfully", resp.GetMessage())

	_, err = client.AddItem(ctx, &pb.AddItemRequest{Name: "bolt", Quantity: 1})
	assert.Equal(t, codes.AlreadyExists, status.Code(err))

	stock, err := client.PurchaseItem(ctx, &pb.StockRequest{Name: "bolt"})
	require.NoError(t, err)
	assert.Equal(t, int32(0), stock.GetQuantity())

	_, err = client.PurchaseItem(ctx, &pb.StockRequest{Name: "bolt"})
	assert.Equal(t, codes.FailedPrecondition, status.Code(err))

	stock, err = client.ReturnItem(ctx, &pb.StockRequest{Name: "bolt"})
	require.NoError(t, err)
	assert.Equal(t, int32(1), stock.GetQuantity())

	_, err = client.UpdateQuantity(ctx, &pb.UpdateQuantityRequest{Name: "bolt", NewQuantity: 8})
	require.NoError(t, err)

	inv, err := client.GetInventory(ctx, &pb.GetInventoryRequest{})
	require.NoError(t, err)
	require.Len(t, inv.GetInventory(), 1)
	assert.Equal(t, "bolt", inv.GetInventory()[0].Name)
	assert.Equal(t, int32(8), inv.GetInventory()[0].Quantity)

	_, err = client.RemoveItem(ctx, &pb.RemoveItemRequest{Name: "bolt"})
	require.NoError(t, err)

	_, err = client.RemoveItem(ctx, &pb.RemoveItemRequest{Name: "bolt"})
	assert.Equal(t, codes.NotFound, status.Code(err))
}

func TestGRPC_InvalidArgument(t *testing.T) {
	client := newGRPCClient(t)
	ctx := context.Background()

	_, err := client.AddItem(ctx, &pb.AddItemRequest{Name: "", Quantity: 1})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = client.AddItem(ctx, &pb.AddItemRequest{Name: "bolt", Quantity: -1})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = client.PurchaseItem(ctx, &pb.StockRequest{})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestGRPC_QuantityLimit(t *testing.T) {
	client := newGRPCClient(t)
	ctx := context.Background()

	_, err := client.AddItem(ctx, &pb.AddItemRequest{Name: "bolt", Quantity: math.MaxInt32})
	require.NoError(t, err)

	_, err = client.ReturnItem(ctx, &pb.StockRequest{Name: "bolt"})
	assert.Equal(t, codes.OutOfRange, status.Code(err))

	inv, err := client.GetInventory(ctx, &pb.GetInventoryRequest{})
	require.NoError(t, err)
	require.Len(t, inv.GetInventory(), 1)
	assert.Equal(t, int32(math.MaxInt32), inv.GetInventory()[0].Quantity)

	stock, err := client.PurchaseItem(ctx, &pb.StockRequest{Name: "bolt"})
	require.NoError(t, err)
	assert.Equal(t, int32(math.MaxInt32-1), stock.GetQuantity())
}

func TestGRPC_EmptyInventory(t *testing.T) {
	client := newGRPCClient(t)

	inv, err := client.GetInventory(context.Background(), &pb.GetInventoryRequest{})
	require.NoError(t, err)
	assert.Empty(t, inv.GetInventory())
}

func TestGRPC_ConcurrentPurchases(t *testing.T) {
	client := newGRPCClient(t)
	ctx := context.Background()

	initialStock := 30
	totalRequests := 60
	_, err := client.AddItem(ctx, &pb.AddItemRequest{Name: "widget", Quantity: int32(initialStock)})
	require.NoError(t, err)

	var successCount atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < totalRequests; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := client.PurchaseItem(ctx, &pb.StockRequest{Name: "widget"}); err == nil {
				successCount.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(initialStock), successCount.Load())
}
