package assets

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/RawMal/AlgoEstate-sub000/core/logger"
	"github.com/RawMal/AlgoEstate-sub000/core/ownership"
)

// Handler handles HTTP requests for monitored assets.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the asset routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/assets")
	group.Get("/", h.HandleList)
	group.Get("/stats", h.HandleStats)
	group.Get("/:id", h.HandleGet)
	group.Put("/:id", h.HandleRegister)
	group.Delete("/:id", h.HandleUnregister)
	group.Get("/:id/holdings", h.HandleHoldings)
	group.Get("/:id/holdings/:address", h.HandleVerify)
	group.Get("/:id/distribution", h.HandleDistribution)
	group.Get("/:id/transactions", h.HandleTransactions)
	group.Get("/:id/drift", h.HandleDrift)
	group.Post("/:id/sync", h.HandleSync)
}

// HandleList returns the state of every monitored asset.
func (h *Handler) HandleList(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"assets": h.service.List()})
}

// HandleStats returns the engine-wide monitoring snapshot.
func (h *Handler) HandleStats(c *fiber.Ctx) error {
	return c.JSON(h.service.Stats())
}

// HandleGet returns one asset's ownership state.
func (h *Handler) HandleGet(c *fiber.Ctx) error {
	view, err := h.service.Get(c.Params("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(view)
}

// HandleRegister adds the asset to the monitored set. Registering an
// already-monitored asset returns its current state.
func (h *Handler) HandleRegister(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	assetID := c.Params("id")

	view, err := h.service.Register(c.Context(), assetID)
	if err != nil {
		l.Error("Asset registration failed", zap.String("asset", assetID), zap.Error(err))
		return h.fail(c, err)
	}
	return c.JSON(view)
}

// HandleUnregister removes the asset from the monitored set.
func (h *Handler) HandleUnregister(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	assetID := c.Params("id")

	h.service.Unregister(assetID)
	l.Info("Asset unregistered via API", zap.String("asset", assetID))
	return c.JSON(fiber.Map{"status": "unregistered", "asset_id": assetID})
}

// HandleHoldings returns the asset's holdings, largest first.
func (h *Handler) HandleHoldings(c *fiber.Ctx) error {
	holdings, err := h.service.Holdings(c.Params("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"holdings": holdings})
}

// HandleVerify compares one holder's cached balance against the ledger.
func (h *Handler) HandleVerify(c *fiber.Ctx) error {
	v, err := h.service.Verify(c.Context(), c.Params("address"), c.Params("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(v)
}

// HandleDistribution returns ownership statistics over the holdings.
func (h *Handler) HandleDistribution(c *fiber.Ctx) error {
	topK, _ := strconv.Atoi(c.Query("top", "10"))
	dist, err := h.service.Distribution(c.Params("id"), topK)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(dist)
}

// HandleTransactions returns recent transactions, newest first.
func (h *Handler) HandleTransactions(c *fiber.Ctx) error {
	limit, err := strconv.Atoi(c.Query("limit", "50"))
	if err != nil || limit < 1 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "limit must be a positive integer",
		})
	}

	txs, err := h.service.Transactions(c.Params("id"), limit)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"transactions": txs})
}

// HandleDrift verifies every holding against the ledger and returns the
// mismatches without correcting anything.
func (h *Handler) HandleDrift(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	assetID := c.Params("id")

	mismatches, err := h.service.Drift(c.Context(), assetID)
	if err != nil {
		l.Error("Drift detection failed", zap.String("asset", assetID), zap.Error(err))
		return h.fail(c, err)
	}
	if len(mismatches) > 0 {
		l.Warn("Ownership drift detected",
			zap.String("asset", assetID), zap.Int("mismatches", len(mismatches)))
	}
	return c.JSON(fiber.Map{
		"asset_id":   assetID,
		"in_sync":    len(mismatches) == 0,
		"mismatches": mismatches,
	})
}

// HandleSync forces a full resynchronization of the asset.
func (h *Handler) HandleSync(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	assetID := c.Params("id")
	l.Info("Manual sync requested", zap.String("asset", assetID))

	view, err := h.service.Sync(c.Context(), assetID)
	if err != nil {
		l.Error("Manual sync failed", zap.String("asset", assetID), zap.Error(err))
		return h.fail(c, err)
	}
	return c.JSON(view)
}

func (h *Handler) fail(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, ownership.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, ownership.ErrNotTokenized):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": err.Error()})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
}
