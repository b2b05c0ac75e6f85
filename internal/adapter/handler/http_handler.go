package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/rl1809/stockroom/internal/core/domain"
	"github.com/rl1809/stockroom/internal/core/service"
	"github.com/rl1809/stockroom/internal/logging"
)

const serverRunningMessage = "Server is running"

// MessageResponse is the body of most successful requests.
type MessageResponse struct {
	Message string `json:"message"`
}

// StockResponse is returned by purchase and return.
type StockResponse struct {
	Message  string `json:"message"`
	Quantity int    `json:"quantity"`
}

type InventoryResponse struct {
	Inventory []domain.Item `json:"inventory"`
}

type EchoResponse struct {
	Message string `json:"message"`
	Data    any    `json:"data"`
}

type FilePathResponse struct {
	Path string `json:"path"`
}

// FilePaths are the values served by GET /file-path.
type FilePaths struct {
	File    string
	Project string
}

type HTTPHandler struct {
	inventory *service.InventoryService
	paths     FilePaths
	logger    *logging.Logger
}

func NewHTTPHandler(inventory *service.InventoryService, paths FilePaths, logger *logging.Logger) *HTTPHandler {
	if logger == nil {
		logger = logging.Nop()
	}
	return &HTTPHandler{
		inventory: inventory,
		paths:     paths,
		logger:    logger.WithComponent("http"),
	}
}

func (h *HTTPHandler) Home(c *gin.Context) {
	c.JSON(http.StatusOK, MessageResponse{Message: serverRunningMessage})
}

func (h *HTTPHandler) Ping(c *gin.Context) {
	c.JSON(http.StatusOK, MessageResponse{Message: serverRunningMessage})
}

// Usage returns a handler answering GET on a mutating route with a hint.
func Usage(hint string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, MessageResponse{Message: hint})
	}
}

func (h *HTTPHandler) AddItem(c *gin.Context) {
	body, apiErr := readObject(c)
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}

	const missing = "Name and quantity are required"
	name, apiErr := stringField(body, "name", missing)
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	quantity, apiErr := intField(body, "quantity", missing)
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}

	if err := h.inventory.AddItem(c.Request.Context(), name, quantity); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Message: "Item added successfully"})
}

func (h *HTTPHandler) RemoveItem(c *gin.Context) {
	body, apiErr := readObject(c)
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}

	name, apiErr := stringField(body, "name", "Name is required")
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}

	if err := h.inventory.RemoveItem(c.Request.Context(), name); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Message: "Item removed successfully"})
}

func (h *HTTPHandler) UpdateQuantity(c *gin.Context) {
	body, apiErr := readObject(c)
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}

	const missing = "Name and new_quantity are required"
	name, apiErr := stringField(body, "name", missing)
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	quantity, apiErr := intField(body, "new_quantity", missing)
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}

	if err := h.inventory.UpdateQuantity(c.Request.Context(), name, quantity); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Message: "Quantity updated successfully"})
}

func (h *HTTPHandler) GetInventory(c *gin.Context) {
	items, err := h.inventory.ListItems(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, InventoryResponse{Inventory: items})
}

func (h *HTTPHandler) PurchaseItem(c *gin.Context) {
	name, ok := h.itemName(c)
	if !ok {
		return
	}

	quantity, err := h.inventory.Purchase(c.Request.Context(), name)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, StockResponse{Message: "Item purchased successfully", Quantity: quantity})
}

func (h *HTTPHandler) ReturnItem(c *gin.Context) {
	name, ok := h.itemName(c)
	if !ok {
		return
	}

	quantity, err := h.inventory.Return(c.Request.Context(), name)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, StockResponse{Message: "Item returned successfully", Quantity: quantity})
}

// Echo acknowledges any JSON payload under label, e.g. "Transform received".
func Echo(label string) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, err := c.GetRawData()
		if err != nil {
			writeError(c, unsupportedMediaType())
			return
		}

		var data any
		if err := json.Unmarshal(raw, &data); err != nil || data == nil {
			writeError(c, unsupportedMediaType())
			return
		}
		c.JSON(http.StatusOK, EchoResponse{Message: label + " received", Data: data})
	}
}

func (h *HTTPHandler) FilePath(c *gin.Context) {
	path := h.paths.File
	if strings.EqualFold(c.DefaultQuery("projectpath", "false"), "true") {
		path = h.paths.Project
	}
	c.JSON(http.StatusOK, FilePathResponse{Path: path})
}

func (h *HTTPHandler) itemName(c *gin.Context) (string, bool) {
	body, apiErr := readObject(c)
	if apiErr != nil {
		writeError(c, apiErr)
		return "", false
	}
	name, apiErr := stringField(body, "name", "Item name is required")
	if apiErr != nil {
		writeError(c, apiErr)
		return "", false
	}
	return name, true
}

func (h *HTTPHandler) fail(c *gin.Context, err error) {
	apiErr := mapError(err)
	if apiErr.Status >= http.StatusInternalServerError {
		h.logger.WithContext(c.Request.Context()).WithError(err).Error("Request failed",
			"path", c.Request.URL.Path,
		)
	}
	writeError(c, apiErr)
}

// readObject parses the body as a JSON object regardless of Content-Type.
// A literal null yields an empty object so that field checks report it.
func readObject(c *gin.Context) (map[string]json.RawMessage, *apiError) {
	raw, err := c.GetRawData()
	if err != nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil, unsupportedMediaType()
	}

	var body map[string]json.RawMessage
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, unsupportedMediaType()
	}
	if body == nil {
		body = map[string]json.RawMessage{}
	}
	return body, nil
}

func stringField(body map[string]json.RawMessage, key, missing string) (string, *apiError) {
	raw, ok := body[key]
	if !ok || string(raw) == "null" {
		return "", validationError(missing)
	}

	var value string
	if err := json.Unmarshal(raw, &value); err != nil {
		return "", validationError(key + " must be a string")
	}
	if value == "" {
		return "", validationError(key + " must not be empty")
	}
	return value, nil
}

func intField(body map[string]json.RawMessage, key, missing string) (int, *apiError) {
	raw, ok := body[key]
	if !ok || string(raw) == "null" {
		return 0, validationError(missing)
	}

	var value int
	if err := json.Unmarshal(raw, &value); err != nil {
		return 0, validationError(key + " must be an integer")
	}
	if value < 0 {
		return 0, validationError(key + " must be a non-negative integer")
	}
	return value, nil
}
