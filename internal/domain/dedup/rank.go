package dedup

import (
	"cmp"
	"slices"
	"strings"
	"unicode/utf8"
)

const (
	shortNameTermLen   = 5
	shortTermRelax     = 25
	minAdjustedScore   = 30
	phoneNetMinPhone   = 75
	phoneNetMinName    = 85
	combinedNetMinBoth = 35
)

// FilterOptions ajustes del filtrado.
type FilterOptions struct {
	// StrictFinalPass vuelve a filtrar por el umbral recibido (sin ajustar) al final.
	// Con true, el umbral relajado y las redes de rescate solo deciden qué
	// candidatos llegan a esa pasada final.
	StrictFinalPass bool
}

// DefaultFilterOptions comportamiento por defecto.
func DefaultFilterOptions() FilterOptions {
	return FilterOptions{StrictFinalPass: true}
}

// AdjustedThreshold relaja el umbral para términos de nombre cortos (≤5 caracteres):
// max(30, threshold-25).
func AdjustedThreshold(in SearchInput, threshold int) int {
	name := strings.TrimSpace(in.CompanyName)
	if name != "" && utf8.RuneCountInString(name) <= shortNameTermLen {
		return max(minAdjustedScore, threshold-shortTermRelax)
	}
	return threshold
}

// Filter conserva los candidatos que superan el umbral ajustado o alguna red de rescate.
//
// Búsquedas con teléfono: teléfono crudo ≥75 o nombre crudo ≥85.
// Resto: nombre y teléfono crudos ambos ≥35.
func Filter(scored []ScoredCustomer, in SearchInput, threshold int, opts FilterOptions) []ScoredCustomer {
	adjusted := AdjustedThreshold(in, threshold)
	phoneLed := in.HasPhone()

	out := make([]ScoredCustomer, 0, len(scored))
	for _, c := range scored {
		s := c.OriginalScores
		keep := c.SimilarityScore >= adjusted
		if !keep && phoneLed {
			keep = s.PhoneSimilarity >= phoneNetMinPhone || s.NameSimilarity >= phoneNetMinName
		}
		if !keep && !phoneLed {
			keep = s.NameSimilarity >= combinedNetMinBoth && s.PhoneSimilarity >= combinedNetMinBoth
		}
		if keep && opts.StrictFinalPass {
			keep = c.SimilarityScore >= threshold
		}
		if keep {
			out = append(out, c)
		}
	}
	return out
}

// Rank ordena en el lugar: puntaje descendente, luego candidatos con nombre y teléfono
// marcados, luego nombre de empresa.
func Rank(scored []ScoredCustomer) {
	slices.SortStableFunc(scored, func(a, b ScoredCustomer) int {
		if c := cmp.Compare(b.SimilarityScore, a.SimilarityScore); c != 0 {
			return c
		}
		ab, bb := bothReasons(a), bothReasons(b)
		if ab != bb {
			if ab {
				return -1
			}
			return 1
		}
		return strings.Compare(a.CompanyName, b.CompanyName)
	})
}

func bothReasons(c ScoredCustomer) bool {
	return c.MatchReasons.CompanyName && c.MatchReasons.Telephone
}

// FilterAndRank filtra y ordena en un solo paso.
func FilterAndRank(scored []ScoredCustomer, in SearchInput, threshold int, opts FilterOptions) []ScoredCustomer {
	out := Filter(scored, in, threshold, opts)
	Rank(out)
	return out
}
