package handlers

import (
	"errors"
	"log"
	"net/url"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"meetingroom/internal/models"
	"meetingroom/internal/storage"
)

// StorageHandler serves the remote key-value contract over a record store
type StorageHandler struct {
	store storage.RecordStore
}

// NewStorageHandler creates a storage handler
func NewStorageHandler(store storage.RecordStore) *StorageHandler {
	return &StorageHandler{store: store}
}

// StorageAppConfig is the fiber config of the storage server. Paths stay
// escaped so storageKey decodes each key exactly once.
func StorageAppConfig() fiber.Config {
	return fiber.Config{
		AppName:               "Meeting Room Storage v1.0",
		ReadTimeout:           30 * time.Second,
		WriteTimeout:          30 * time.Second,
		BodyLimit:             10 * 1024 * 1024,
		DisableStartupMessage: true,
	}
}

// Register mounts the storage contract routes
func (h *StorageHandler) Register(router fiber.Router) {
	router.Get("/health", h.Health)
	router.Get("/storage/:key", h.Get)
	router.Post("/storage", h.Put)
	router.Delete("/storage/:key", h.Delete)
}

func storageKey(c *fiber.Ctx) string {
	key := c.Params("key")
	if unescaped, err := url.PathUnescape(key); err == nil {
		return unescaped
	}
	return key
}

// Get returns the record for a key
// GET /storage/:key
func (h *StorageHandler) Get(c *fiber.Ctx) error {
	record, err := h.store.GetRecord(c.UserContext(), storageKey(c))
	if errors.Is(err, storage.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Key not found",
		})
	}
	if err != nil {
		log.Printf("❌ [STORAGE-API] Get failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to read key",
		})
	}
	return c.JSON(record)
}

// Put stores a value, creating or replacing the record
// POST /storage
func (h *StorageHandler) Put(c *fiber.Ctx) error {
	var req models.PutStorageRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if strings.TrimSpace(req.Key) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "key is required",
		})
	}

	updatedAt := time.Now().UTC()
	if req.UpdatedAt != nil && !req.UpdatedAt.IsZero() {
		updatedAt = req.UpdatedAt.UTC()
	}

	record, err := h.store.PutRecord(c.UserContext(), req.Key, req.Value, updatedAt)
	if errors.Is(err, storage.ErrQuotaExceeded) {
		return c.Status(fiber.StatusRequestEntityTooLarge).JSON(fiber.Map{
			"error": "Value too large",
		})
	}
	if err != nil {
		log.Printf("❌ [STORAGE-API] Put %s failed: %v", req.Key, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to store key",
		})
	}
	return c.JSON(record)
}

// Delete removes a key
// DELETE /storage/:key
func (h *StorageHandler) Delete(c *fiber.Ctx) error {
	key := storageKey(c)
	err := h.store.DeleteRecord(c.UserContext(), key)
	if errors.Is(err, storage.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Key not found",
		})
	}
	if err != nil {
		log.Printf("❌ [STORAGE-API] Delete %s failed: %v", key, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to delete key",
		})
	}
	return c.JSON(fiber.Map{
		"message": "Deleted",
		"key":     key,
	})
}

// Health pings the backing store
// GET /health
func (h *StorageHandler) Health(c *fiber.Ctx) error {
	if err := h.store.Ping(c.UserContext()); err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status": "unhealthy",
			"error":  err.Error(),
		})
	}
	return c.JSON(fiber.Map{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}
