package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/customer-dedup/internal/application/dto"
	"github.com/jhoicas/customer-dedup/internal/application/duplicates"
)

// HeaderDegraded se envía con valor "1" cuando la base de datos falló y la lista vacía no es concluyente.
const HeaderDegraded = "X-Dedup-Degraded"

// DuplicatesHandler maneja la verificación de duplicados previa al alta de clientes.
type DuplicatesHandler struct {
	uc               *duplicates.DuplicateUseCase
	defaultThreshold int
}

// NewDuplicatesHandler construye el handler.
func NewDuplicatesHandler(uc *duplicates.DuplicateUseCase, defaultThreshold int) *DuplicatesHandler {
	return &DuplicatesHandler{uc: uc, defaultThreshold: defaultThreshold}
}

// Search godoc
// @Summary      Buscar posibles duplicados
// @Description  Puntúa los clientes existentes contra los datos ingresados y devuelve los que superan el umbral, ordenados.
// @Tags         customers
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.DuplicateSearchRequest  true  "Nombre, teléfono y/o AFM; threshold opcional (0-100)"
// @Success      200   {object}  dto.DuplicateSearchResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      401   {object}  dto.ErrorResponse
// @Router       /api/customers/duplicates [post]
func (h *DuplicatesHandler) Search(c *fiber.Ctx) error {
	var in dto.DuplicateSearchRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	threshold := h.defaultThreshold
	if in.Threshold != nil {
		threshold = *in.Threshold
	}
	if threshold < 0 || threshold > 100 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "threshold debe estar entre 0 y 100"})
	}
	rep := h.uc.DetectDuplicates(c.UserContext(), in.SearchInput(), threshold)
	return writeReport(c, rep)
}

// ExactPhone godoc
// @Summary      Buscar clientes por teléfono
// @Description  Recupera por teléfono (estrategias en cascada) y devuelve todos los candidatos puntuados, sin umbral.
// @Tags         customers
// @Security     Bearer
// @Produce      json
// @Param        phone         query  string  true   "Teléfono tal como lo ingresó el usuario"
// @Param        company_name  query  string  false  "Nombre de empresa para el puntaje"
// @Success      200  {object}  dto.DuplicateSearchResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Router       /api/customers/duplicates/phone [get]
func (h *DuplicatesHandler) ExactPhone(c *fiber.Ctx) error {
	phone := strings.TrimSpace(c.Query("phone"))
	if phone == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "phone es requerido"})
	}
	rep := h.uc.DetectExactPhone(c.UserContext(), phone, c.Query("company_name"))
	return writeReport(c, rep)
}

func writeReport(c *fiber.Ctx, rep duplicates.Report) error {
	if rep.Degraded {
		c.Set(HeaderDegraded, "1")
	}
	return c.JSON(dto.NewDuplicateSearchResponse(rep.SearchID, rep.Candidates, rep.Degraded))
}
