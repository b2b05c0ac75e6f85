package handler

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/rl1809/stockroom/internal/logging"
	"github.com/rl1809/stockroom/internal/metrics"
)

type RouterConfig struct {
	Logger       *logging.Logger
	Metrics      *metrics.Metrics // nil disables /metrics
	RequestDelay time.Duration
	CORSOrigins  []string
}

// NewRouter wires the HTTP API onto a gin engine.
func NewRouter(h *HTTPHandler, cfg RouterConfig) *gin.Engine {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Nop()
	}

	r := gin.New()
	r.Use(RequestID())
	r.Use(RequestLogger(logger, "/metrics"))
	r.Use(Recovery(logger))
	if cfg.Metrics != nil {
		r.Use(Metrics(cfg.Metrics))
	}
	r.Use(cors.New(corsConfig(cfg.CORSOrigins)))
	r.Use(RequestDelay(cfg.RequestDelay, "/metrics"))

	r.GET("/", h.Home)
	r.GET("/ping", h.Ping)

	mutating := []struct {
		path    string
		hint    string
		handler gin.HandlerFunc
	}{
		{"/add-item", `Use POST with JSON { "name": "item_name", "quantity": 5 }`, h.AddItem},
		{"/remove-item", `Use POST with JSON { "name": "item_name" }`, h.RemoveItem},
		{"/update-quantity", `Use POST with JSON { "name": "item_name", "new_quantity": 10 }`, h.UpdateQuantity},
		{"/purchase-item", `Use POST with JSON { "name": "item_name" }`, h.PurchaseItem},
		{"/return-item", `Use POST with JSON { "name": "item_name" }`, h.ReturnItem},
	}
	for _, route := range mutating {
		r.GET(route.path, Usage(route.hint))
		r.POST(route.path, route.handler)
	}

	r.GET("/get-inventory", h.GetInventory)

	scene := []struct {
		path  string
		hint  string
		label string
	}{
		{"/transform", "Send a POST request with JSON data", "Transform"},
		{"/translation", "Send a POST request with position data", "Translation"},
		{"/rotation", "Send a POST request with rotation data", "Rotation"},
		{"/scale", "Send a POST request with scale data", "Scale"},
	}
	for _, route := range scene {
		r.GET(route.path, Usage(route.hint))
		r.POST(route.path, Echo(route.label))
	}

	r.GET("/file-path", h.FilePath)

	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", HeaderRequestID},
		ExposeHeaders: []string{HeaderRequestID},
		MaxAge:        12 * time.Hour,
	}

	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}
