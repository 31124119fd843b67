package dedup

import "github.com/jhoicas/customer-dedup/internal/domain/entity"

// Constantes de negocio del puntaje compuesto. Sin derivación documentada;
// se conservan tal cual hasta que producto las valide.
const (
	combinedMinField  = 35
	combinedPhoneW    = 0.6
	combinedNameW     = 0.4
	combinedBonus     = 15
	combinedCap       = 99
	phoneOnlyMinPhone = 45
	phoneOnlyMaxName  = 30
	phoneOnlyFactor   = 0.9
	phoneOnlyCap      = 90
	nameOnlyMinName   = 55
	nameOnlyMaxPhone  = 30
	nameOnlyFactor    = 0.9
	nameOnlyCap       = 85
	weightedPhoneW    = 0.6
	weightedNameW     = 0.4
	weightedAFMW      = 0.1
	weightedCap       = 80
	floorScore        = 30
	reasonMinScore    = 30
)

// Rule regla de puntuación con nombre. Rules se evalúa en orden y gana la primera que aplica.
type Rule struct {
	Type    MatchType
	Applies func(s FieldScores, in SearchInput) bool
	Score   func(s FieldScores) int
}

// Rules conjunto ordenado de reglas. La última (weighted) aplica siempre.
var Rules = []Rule{
	{
		Type: MatchCombined,
		Applies: func(s FieldScores, _ SearchInput) bool {
			return s.Name >= combinedMinField && s.Phone >= combinedMinField
		},
		Score: func(s FieldScores) int {
			return min(round(float64(s.Phone)*combinedPhoneW+float64(s.Name)*combinedNameW+combinedBonus), combinedCap)
		},
	},
	{
		Type: MatchPhoneOnly,
		Applies: func(s FieldScores, in SearchInput) bool {
			return in.HasPhone() && s.Phone >= phoneOnlyMinPhone && s.Name < phoneOnlyMaxName
		},
		Score: func(s FieldScores) int {
			return min(round(float64(s.Phone)*phoneOnlyFactor), phoneOnlyCap)
		},
	},
	{
		Type: MatchNameOnly,
		Applies: func(s FieldScores, in SearchInput) bool {
			return in.HasName() && s.Name >= nameOnlyMinName && s.Phone < nameOnlyMaxPhone
		},
		Score: func(s FieldScores) int {
			return min(round(float64(s.Name)*nameOnlyFactor), nameOnlyCap)
		},
	},
	{
		Type:    MatchWeighted,
		Applies: func(FieldScores, SearchInput) bool { return true },
		Score:   weightedScore,
	},
}

// weightedScore pondera solo los campos con puntaje > 0 y renormaliza los pesos.
func weightedScore(s FieldScores) int {
	var sum, weights float64
	add := func(score int, w float64) {
		if score > 0 {
			sum += float64(score) * w
			weights += w
		}
	}
	add(s.Phone, weightedPhoneW)
	add(s.Name, weightedNameW)
	add(s.AFM, weightedAFMW)
	if weights == 0 {
		return 0
	}
	return min(round(sum/weights), weightedCap)
}

// Compose aplica las reglas en orden y después el piso de visibilidad:
// un candidato con coincidencia parcial real de teléfono o nombre nunca queda por debajo de 30.
func Compose(s FieldScores, in SearchInput) (int, MatchType) {
	score, mt := 0, MatchWeighted
	for _, r := range Rules {
		if r.Applies(s, in) {
			score, mt = r.Score(s), r.Type
			break
		}
	}
	switch {
	case in.HasPhone() && s.Phone > 0 && score < floorScore:
		score, mt = floorScore, MatchPhoneFloor
	case in.HasName() && s.Name > 0 && score < floorScore:
		score, mt = floorScore, MatchNameFloor
	}
	return clampScore(score), mt
}

// Score puntúa un candidato frente a la búsqueda. Trabaja sobre una copia del cliente.
func Score(in SearchInput, c entity.Customer) ScoredCustomer {
	s := fieldScores(in, c)
	score, mt := Compose(s, in)
	return ScoredCustomer{
		Customer:        c,
		SimilarityScore: score,
		MatchType:       mt,
		MatchReasons: MatchReasons{
			CompanyName: s.Name > reasonMinScore,
			Telephone:   s.Phone > reasonMinScore,
			AFM:         s.AFM > reasonMinScore,
		},
		OriginalScores: OriginalScores{
			PhoneSimilarity: s.Phone,
			NameSimilarity:  s.Name,
			AFMSimilarity:   s.AFM,
		},
	}
}

// ScoreAll puntúa cada candidato. Los nil se ignoran.
func ScoreAll(in SearchInput, candidates []*entity.Customer) []ScoredCustomer {
	out := make([]ScoredCustomer, 0, len(candidates))
	for _, c := range candidates {
		if c == nil {
			continue
		}
		out = append(out, Score(in, *c))
	}
	return out
}
