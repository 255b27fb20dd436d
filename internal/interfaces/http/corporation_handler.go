package http

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/evetrack/corphangar/internal/application/dto"
	"github.com/evetrack/corphangar/internal/application/sync"
	"github.com/evetrack/corphangar/internal/domain"
	"github.com/evetrack/corphangar/internal/domain/entity"
	"github.com/evetrack/corphangar/internal/domain/repository"
)

// CorporationHandler maneja las peticiones HTTP para corporaciones rastreadas.
type CorporationHandler struct {
	corpRepo repository.CorporationRepository
	syncUC   *sync.UseCase
}

// NewCorporationHandler construye el handler.
func NewCorporationHandler(corpRepo repository.CorporationRepository, syncUC *sync.UseCase) *CorporationHandler {
	return &CorporationHandler{corpRepo: corpRepo, syncUC: syncUC}
}

// List devuelve las corporaciones con rastreo habilitado.
func (h *CorporationHandler) List(c *fiber.Ctx) error {
	corps, err := h.corpRepo.ListTrackingEnabled()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	out := make([]dto.CorporationResponse, 0, len(corps))
	for _, corp := range corps {
		out = append(out, dto.ToCorporationResponse(corp))
	}
	return c.JSON(out)
}

// Register alta manual de una corporación a rastrear.
func (h *CorporationHandler) Register(c *fiber.Ctx) error {
	var in dto.RegisterCorporationRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if in.CorporationID <= 0 || in.CorporationName == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "corporation_id y corporation_name son requeridos"})
	}
	corp := &entity.Corporation{
		CorporationID:   in.CorporationID,
		CorporationName: in.CorporationName,
		TrackingEnabled: true,
	}
	if err := h.corpRepo.Create(corp); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "DUPLICATE", Message: "la corporación ya está registrada"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ToCorporationResponse(corp))
}

// GetByID devuelve una corporación por su ID.
func (h *CorporationHandler) GetByID(c *fiber.Ctx) error {
	id, ok := corporationID(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "id inválido"})
	}
	corp, err := h.corpRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "corporación no encontrada"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(dto.ToCorporationResponse(corp))
}

// SetTracking habilita o deshabilita el rastreo de una corporación.
func (h *CorporationHandler) SetTracking(c *fiber.Ctx) error {
	id, ok := corporationID(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "id inválido"})
	}
	var in struct {
		Enabled bool `json:"enabled"`
	}
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if err := h.corpRepo.SetTracking(id, in.Enabled); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "corporación no encontrada"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// TriggerSync dispara un ciclo de sincronización inmediato para la corporación.
func (h *CorporationHandler) TriggerSync(c *fiber.Ctx) error {
	id, ok := corporationID(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "id inválido"})
	}
	res, err := h.syncUC.SyncCorporation(c.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "corporación no encontrada"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	if res.Status == dto.SyncStatusSkipped {
		return c.Status(fiber.StatusConflict).JSON(res)
	}
	return c.JSON(res)
}

// corporationID parsea el path param :id.
func corporationID(c *fiber.Ctx) (int64, bool) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
