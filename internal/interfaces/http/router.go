package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/customer-dedup/internal/application/duplicates"
	"github.com/jhoicas/customer-dedup/pkg/jwt"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	DuplicateUC      *duplicates.DuplicateUseCase
	DefaultThreshold int
	// Verifier nil desactiva la autenticación (solo development; lo controla config.Validate).
	Verifier     *jwt.Verifier
	AllowedRoles []string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	var guards []fiber.Handler
	if deps.Verifier != nil {
		guards = append(guards, AuthMiddleware(deps.Verifier))
		if len(deps.AllowedRoles) > 0 {
			guards = append(guards, RequireRole(deps.AllowedRoles...))
		}
	}

	// Customers: verificación de duplicados (protegido)
	customers := api.Group("/customers", guards...)
	h := NewDuplicatesHandler(deps.DuplicateUC, deps.DefaultThreshold)
	customers.Post("/duplicates", h.Search)
	customers.Get("/duplicates/phone", h.ExactPhone)
}
