package dedup

import (
	"strings"

	"github.com/jhoicas/customer-dedup/internal/domain/entity"
)

// DefaultThreshold puntaje mínimo por defecto para FindPotentialDuplicates.
const DefaultThreshold = 65

// Límites de filas por consulta de candidatos.
const (
	SearchLimit     = 100
	ExactPhoneLimit = 10
)

// SearchInput criterios parciales de búsqueda. Todos opcionales.
type SearchInput struct {
	CompanyName string
	Telephone   string
	AFM         string
}

// HasName indica si se informó el nombre de la empresa.
func (in SearchInput) HasName() bool { return strings.TrimSpace(in.CompanyName) != "" }

// HasPhone indica si se informó el teléfono.
func (in SearchInput) HasPhone() bool { return strings.TrimSpace(in.Telephone) != "" }

// HasAFM indica si se informó el AFM.
func (in SearchInput) HasAFM() bool { return strings.TrimSpace(in.AFM) != "" }

// HasCriteria es falso cuando no hay ningún criterio; la búsqueda no consulta la DB.
func (in SearchInput) HasCriteria() bool {
	return in.HasName() || in.HasPhone() || in.HasAFM()
}

// FieldScores puntajes crudos 0–100 por campo.
type FieldScores struct {
	Name  int
	Phone int
	AFM   int
}

// SimilarityResult salida de Similarity; nunca se persiste.
type SimilarityResult struct {
	Score   int
	Details FieldScores
}

// MatchType regla que produjo el puntaje compuesto.
type MatchType string

const (
	MatchCombined   MatchType = "combined"
	MatchPhoneOnly  MatchType = "phone-only"
	MatchNameOnly   MatchType = "name-only"
	MatchWeighted   MatchType = "weighted"
	MatchPhoneFloor MatchType = "phone-floor"
	MatchNameFloor  MatchType = "name-floor"
)

// MatchReasons banderas para resaltar campos en la UI (puntaje crudo > 30).
type MatchReasons struct {
	CompanyName bool
	Telephone   bool
	AFM         bool
}

// OriginalScores puntajes crudos por campo conservados para diagnóstico.
type OriginalScores struct {
	PhoneSimilarity int
	NameSimilarity  int
	AFMSimilarity   int
}

// ScoredCustomer copia en memoria del cliente más los campos transitorios de puntuación.
// El Customer original nunca se modifica.
type ScoredCustomer struct {
	entity.Customer
	SimilarityScore int
	MatchType       MatchType
	MatchReasons    MatchReasons
	OriginalScores  OriginalScores
}
