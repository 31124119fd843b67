package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrInvalidInput = errors.New("entrada inválida")
	ErrNoCriteria   = errors.New("sin criterios de búsqueda")
	ErrRetrieval    = errors.New("fallo al recuperar candidatos")
)
