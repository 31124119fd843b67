package dto

import (
	"time"

	"github.com/jhoicas/customer-dedup/internal/domain/dedup"
)

// DuplicateSearchRequest body de POST /api/customers/duplicates.
// Threshold nil usa el umbral configurado.
type DuplicateSearchRequest struct {
	CompanyName string `json:"company_name"`
	Telephone   string `json:"telephone"`
	AFM         string `json:"afm"`
	Threshold   *int   `json:"threshold,omitempty"`
}

// SearchInput convierte el request al tipo de dominio.
func (r DuplicateSearchRequest) SearchInput() dedup.SearchInput {
	return dedup.SearchInput{CompanyName: r.CompanyName, Telephone: r.Telephone, AFM: r.AFM}
}

// MatchReasonsResponse campos que contribuyeron al puntaje (> 30).
type MatchReasonsResponse struct {
	CompanyName bool `json:"company_name"`
	Telephone   bool `json:"telephone"`
	AFM         bool `json:"afm"`
}

// OriginalScoresResponse puntajes por campo antes de componer.
type OriginalScoresResponse struct {
	PhoneSimilarity int `json:"phone_similarity"`
	NameSimilarity  int `json:"name_similarity"`
	AFMSimilarity   int `json:"afm_similarity"`
}

// CandidateResponse un cliente existente puntuado.
type CandidateResponse struct {
	ID              string                 `json:"id"`
	CompanyName     string                 `json:"company_name"`
	Telephone       string                 `json:"telephone"`
	AFM             string                 `json:"afm"`
	Address         string                 `json:"address,omitempty"`
	City            string                 `json:"city,omitempty"`
	PostalCode      string                 `json:"postal_code,omitempty"`
	Email           string                 `json:"email,omitempty"`
	ContactPerson   string                 `json:"contact_person,omitempty"`
	CreatedAt       *time.Time             `json:"created_at,omitempty"`
	SimilarityScore int                    `json:"similarity_score"`
	MatchType       string                 `json:"match_type"`
	MatchReasons    MatchReasonsResponse   `json:"match_reasons"`
	OriginalScores  OriginalScoresResponse `json:"original_scores"`
}

// DuplicateSearchResponse respuesta de las búsquedas de duplicados.
// Degraded=true indica que la base de datos falló y la lista vacía no es concluyente.
type DuplicateSearchResponse struct {
	SearchID   string              `json:"search_id"`
	Total      int                 `json:"total"`
	Degraded   bool                `json:"degraded"`
	Candidates []CandidateResponse `json:"candidates"`
}

// NewDuplicateSearchResponse arma la respuesta a partir de los candidatos puntuados.
func NewDuplicateSearchResponse(searchID string, list []dedup.ScoredCustomer, degraded bool) DuplicateSearchResponse {
	out := DuplicateSearchResponse{
		SearchID:   searchID,
		Total:      len(list),
		Degraded:   degraded,
		Candidates: make([]CandidateResponse, 0, len(list)),
	}
	for _, c := range list {
		item := CandidateResponse{
			ID:              c.ID,
			CompanyName:     c.CompanyName,
			Telephone:       c.Telephone,
			AFM:             c.AFM,
			Address:         c.Address,
			City:            c.City,
			PostalCode:      c.PostalCode,
			Email:           c.Email,
			ContactPerson:   c.ContactPerson,
			SimilarityScore: c.SimilarityScore,
			MatchType:       string(c.MatchType),
			MatchReasons: MatchReasonsResponse{
				CompanyName: c.MatchReasons.CompanyName,
				Telephone:   c.MatchReasons.Telephone,
				AFM:         c.MatchReasons.AFM,
			},
			OriginalScores: OriginalScoresResponse{
				PhoneSimilarity: c.OriginalScores.PhoneSimilarity,
				NameSimilarity:  c.OriginalScores.NameSimilarity,
				AFMSimilarity:   c.OriginalScores.AFMSimilarity,
			},
		}
		if !c.CreatedAt.IsZero() {
			created := c.CreatedAt
			item.CreatedAt = &created
		}
		out.Candidates = append(out.Candidates, item)
	}
	return out
}
