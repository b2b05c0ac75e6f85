package client

import (
	"bytes"
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rl1809/stockroom/internal/adapter/handler"
	"github.com/rl1809/stockroom/internal/adapter/storage"
	"github.com/rl1809/stockroom/internal/core/service"
)

func newTestServer(t *testing.T, delay time.Duration) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo := storage.NewMemoryAdapter("")
	require.NoError(t, repo.EnsureSchema(context.Background()))
	svc := service.NewInventoryService(repo, nil, nil)
	h := handler.NewHTTPHandler(svc, handler.FilePaths{}, nil)

	srv := httptest.NewServer(handler.NewRouter(h, handler.RouterConfig{RequestDelay: delay}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestApp(t *testing.T, baseURL string, workers int) (*App, *bytes.Buffer) {
	t.Helper()
	d := NewDispatcher(NewAPIClient(baseURL, nil), workers, 16)
	t.Cleanup(d.Close)

	out := &bytes.Buffer{}
	return NewApp(d, out), out
}

func settle(t *testing.T, app *App) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, app.Settle(ctx))
	require.Zero(t, app.Busy())
}

func TestApp_InventoryLifecycle(t *testing.T) {
	srv := newTestServer(t, 0)
	app, out := newTestApp(t, srv.URL, 2)

	app.Handle("add widget 1")
	settle(t, app)
	assert.Equal(t, []InventoryItem{{Name: "widget", Quantity: 1}}, app.Items())
	assert.Contains(t, out.String(), "Item added successfully")
	assert.Contains(t, out.String(), "  widget - 1")

	app.Handle("purchase widget")
	settle(t, app)
	assert.Equal(t, []InventoryItem{{Name: "widget", Quantity: 0}}, app.Items())

	out.Reset()
	app.Handle("purchase widget")
	settle(t, app)
	assert.Contains(t, out.String(), "Error: Item is out of stock")
	assert.Equal(t, []InventoryItem{{Name: "widget", Quantity: 0}}, app.Items())

	app.Handle("return widget")
	settle(t, app)
	app.Handle("update widget 7")
	settle(t, app)
	assert.Equal(t, []InventoryItem{{Name: "widget", Quantity: 7}}, app.Items())

	out.Reset()
	app.Handle("remove widget")
	settle(t, app)
	assert.Empty(t, app.Items())
	assert.Contains(t, out.String(), "No items in inventory.")

	out.Reset()
	app.Handle("purchase widget")
	settle(t, app)
	assert.Contains(t, out.String(), "Error: Item not found")
}

func TestApp_ItemsSortedByName(t *testing.T) {
	srv := newTestServer(t, 0)
	app, _ := newTestApp(t, srv.URL, 1)

	app.Handle("add nut 5")
	app.Handle("add bolt 3")
	app.Handle("add big washer 2")
	settle(t, app)

	assert.Equal(t, []InventoryItem{
		{Name: "big washer", Quantity: 2},
		{Name: "bolt", Quantity: 3},
		{Name: "nut", Quantity: 5},
	}, app.Items())
}

func TestApp_Duplicate(t *testing.T) {
	srv := newTestServer(t, 0)
	app, out := newTestApp(t, srv.URL, 1)

	app.Handle("add bolt 3")
	settle(t, app)
	app.Handle("add bolt 9")
	settle(t, app)

	assert.Contains(t, out.String(), "Error: Item already exists")
	assert.Equal(t, []InventoryItem{{Name: "bolt", Quantity: 3}}, app.Items())
}

func TestApp_ClientSideValidation(t *testing.T) {
	tests := []struct {
		line string
		want string
	}{
		{"add bolt", "Error: Both name and quantity are required."},
		{"add bolt many", "Error: Quantity must be a valid integer."},
		{"update bolt", "Error: Both name and new quantity are required."},
		{"update bolt 1.5", "Error: Quantity must be a valid integer."},
		{"remove", "Error: Item name is required."},
		{"purchase", "Error: Item name is required."},
		{"return", "Error: Item name is required."},
		{"fly away", `Error: Unknown command "fly", type help for a list.`},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			caller := &fakeCaller{}
			d := NewDispatcher(caller, 1, 4)
			defer d.Close()
			out := &bytes.Buffer{}
			app := NewApp(d, out)

			assert.True(t, app.Handle(tt.line))
			assert.Equal(t, tt.want+"\n", out.String())
			assert.Zero(t, app.Busy(), "no request is sent")
		})
	}
}

func TestApp_HandleReturnsWhileRequestIsSlow(t *testing.T) {
	srv := newTestServer(t, 300*time.Millisecond)
	app, _ := newTestApp(t, srv.URL, 2)

	start := time.Now()
	app.Handle("refresh")
	app.Handle("add bolt 1")
	assert.Less(t, time.Since(start), 100*time.Millisecond)
	assert.Equal(t, 2, app.Busy())

	settle(t, app)
	assert.Equal(t, []InventoryItem{{Name: "bolt", Quantity: 1}}, app.Items())
}

func TestApp_RunReadsUntilEOF(t *testing.T) {
	srv := newTestServer(t, 0)
	app, out := newTestApp(t, srv.URL, 1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := app.Run(ctx, strings.NewReader("add nut 2\nhelp\n"))
	require.NoError(t, err)

	assert.Equal(t, []InventoryItem{{Name: "nut", Quantity: 2}}, app.Items())
	assert.Contains(t, out.String(), "Commands:")
	assert.Zero(t, app.Busy())
}

func TestApp_RunStopsOnQuit(t *testing.T) {
	caller := &fakeCaller{}
	d := NewDispatcher(caller, 1, 4)
	defer d.Close()
	app := NewApp(d, &bytes.Buffer{})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	assert.NoError(t, app.Run(ctx, strings.NewReader("quit\nadd bolt 1\n")))
}
