package http

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/evetrack/corphangar/internal/application/dto"
	"github.com/evetrack/corphangar/internal/domain/repository"
)

// HangarHandler maneja las peticiones HTTP de consulta del hangar:
// items, transacciones, snapshots y log de contenedores.
type HangarHandler struct {
	itemRepo repository.HangarItemRepository
	txRepo   repository.TransactionRepository
	snapRepo repository.SnapshotRepository
	logRepo  repository.ContainerLogRepository
}

// NewHangarHandler construye el handler.
func NewHangarHandler(
	itemRepo repository.HangarItemRepository,
	txRepo repository.TransactionRepository,
	snapRepo repository.SnapshotRepository,
	logRepo repository.ContainerLogRepository,
) *HangarHandler {
	return &HangarHandler{itemRepo: itemRepo, txRepo: txRepo, snapRepo: snapRepo, logRepo: logRepo}
}

// Items devuelve los items activos del hangar; ?all=true incluye los inactivos.
func (h *HangarHandler) Items(c *fiber.Ctx) error {
	id, ok := corporationID(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "id inválido"})
	}
	list := h.itemRepo.ListActiveByCorporation
	if c.Query("all") == "true" {
		list = h.itemRepo.ListByCorporation
	}
	items, err := list(id)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	out := make([]dto.HangarItemResponse, 0, len(items))
	for _, item := range items {
		out = append(out, dto.ToHangarItemResponse(item))
	}
	return c.JSON(out)
}

// Transactions devuelve las transacciones de auditoría más recientes.
func (h *HangarHandler) Transactions(c *fiber.Ctx) error {
	id, ok := corporationID(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "id inválido"})
	}
	txs, err := h.txRepo.ListByCorporation(id, queryLimit(c, 100))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	out := make([]dto.TransactionResponse, 0, len(txs))
	for _, tx := range txs {
		out = append(out, dto.ToTransactionResponse(tx))
	}
	return c.JSON(out)
}

// Snapshots devuelve los snapshots de valuación más recientes.
func (h *HangarHandler) Snapshots(c *fiber.Ctx) error {
	id, ok := corporationID(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "id inválido"})
	}
	snaps, err := h.snapRepo.ListByCorporation(id, queryLimit(c, 48))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	out := make([]dto.SnapshotResponse, 0, len(snaps))
	for _, snap := range snaps {
		out = append(out, dto.ToSnapshotResponse(snap))
	}
	return c.JSON(out)
}

// ContainerLogs devuelve las entradas más recientes del log de contenedores.
func (h *HangarHandler) ContainerLogs(c *fiber.Ctx) error {
	id, ok := corporationID(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "id inválido"})
	}
	logs, err := h.logRepo.ListByCorporation(id, queryLimit(c, 200))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	out := make([]dto.ContainerLogResponse, 0, len(logs))
	for _, l := range logs {
		out = append(out, dto.ToContainerLogResponse(l))
	}
	return c.JSON(out)
}

// queryLimit parsea ?limit= con un default por endpoint.
func queryLimit(c *fiber.Ctx, def int) int {
	n, err := strconv.Atoi(c.Query("limit"))
	if err != nil || n <= 0 {
		return def
	}
	return n
}
