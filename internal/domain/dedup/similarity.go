package dedup

import (
	"math"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
	"github.com/jhoicas/customer-dedup/internal/domain/entity"
)

// NameSimilarity compara nombres de empresa normalizados (minúsculas, sin acentos, recortados).
//
// Un prefijo corto y deliberado ("αερο" frente a "αεροπορια αιγαιου") puntúa alto
// pero nunca 100; una coincidencia en medio de la cadena puntúa menos que un prefijo.
// Si no hay inclusión, se usa token-sort ratio sobre Levenshtein.
func NameSimilarity(a, b string) int {
	na := strings.TrimSpace(NormalizeGreekText(a))
	nb := strings.TrimSpace(NormalizeGreekText(b))
	if na == "" || nb == "" {
		return 0
	}
	if na == nb {
		return 100
	}

	shorter, longer := na, nb
	if utf8.RuneCountInString(shorter) > utf8.RuneCountInString(longer) {
		shorter, longer = longer, shorter
	}
	minLen := utf8.RuneCountInString(shorter)
	ratio := float64(minLen) / float64(utf8.RuneCountInString(longer))

	if strings.HasPrefix(longer, shorter) {
		if minLen >= 2 && ratio >= 0.15 {
			return min(95, 65+round(ratio*30))
		}
		return min(90, 50+round(ratio*40))
	}
	if strings.Contains(longer, shorter) {
		return min(85, 45+round(ratio*40))
	}
	return tokenSortRatio(na, nb)
}

// tokenSortRatio similitud 0–100 independiente del orden de las palabras.
func tokenSortRatio(a, b string) int {
	sa, sb := sortTokens(a), sortTokens(b)
	maxLen := max(utf8.RuneCountInString(sa), utf8.RuneCountInString(sb))
	if maxLen == 0 {
		return 0
	}
	d := levenshtein.ComputeDistance(sa, sb)
	return clampScore(round(100 * (1 - float64(d)/float64(maxLen))))
}

func sortTokens(s string) string {
	tokens := strings.Fields(s)
	sort.Strings(tokens)
	return strings.Join(tokens, " ")
}

// PhoneSimilarity compara teléfonos normalizados (solo dígitos, truncados al formato griego).
//
// Inclusión de un número en otro: bandas por longitud del más corto
// (≥7 dígitos 80–95, 5–6 dígitos 70–79, <5 dígitos 10–40), con ventaja para el prefijo.
// Sin inclusión: bandas por cantidad de dígitos iniciales iguales.
// Para entradas con formato DDDD-DD.DD.DD se otorga 75 si el prefijo literal
// coincide con el valor crudo del otro lado.
func PhoneSimilarity(a, b string) int {
	ra, rb := strings.TrimSpace(a), strings.TrimSpace(b)
	if ra == "" || rb == "" {
		return 0
	}
	if ra == rb {
		return 100
	}
	pa, pb := NormalizePhone(ra), NormalizePhone(rb)
	if pa == "" || pb == "" {
		return 0
	}
	if pa == pb {
		return 100
	}

	score := digitSimilarity(pa, pb)
	if score < formattedPrefixScore && (formattedPrefixMatch(ra, rb) || formattedPrefixMatch(rb, ra)) {
		score = formattedPrefixScore
	}
	return clampScore(score)
}

const formattedPrefixScore = 75

// formattedPrefixMatch compara el prefijo literal de un teléfono con formato
// contra el valor crudo (o sus dígitos) del otro lado.
func formattedPrefixMatch(formatted, raw string) bool {
	prefix, ok := FormattedPhonePrefix(formatted)
	if !ok || len(prefix) < 4 {
		return false
	}
	return strings.HasPrefix(raw, prefix) || strings.HasPrefix(digitsOnly(raw), prefix)
}

func digitSimilarity(pa, pb string) int {
	shorter, longer := pa, pb
	if len(shorter) > len(longer) {
		shorter, longer = longer, shorter
	}
	n := len(shorter)

	if idx := strings.Index(longer, shorter); idx >= 0 {
		atStart := idx == 0
		switch {
		case n >= 7:
			if atStart {
				return min(95, 88+(n-7)*2)
			}
			return min(87, 80+(n-7)*2)
		case n >= 5:
			if atStart {
				return 75 + (n-5)*4
			}
			return 70 + (n-5)*3
		default:
			if atStart {
				return 10 + n*7
			}
			return 10 + n*5
		}
	}

	k := commonPrefixLen(pa, pb)
	switch {
	case k >= 7:
		return min(95, 70+(k-7)*10)
	case k >= 5:
		return 50 + (k-5)*10
	case k >= 3:
		return 30 + (k-3)*10
	case k >= 1:
		return 10 + (k-1)*10
	default:
		return 0
	}
}

func commonPrefixLen(a, b string) int {
	n := min(len(a), len(b))
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return i
		}
	}
	return n
}

// AFMSimilarity es binaria: 100 si los dígitos coinciden, 0 en cualquier otro caso.
func AFMSimilarity(a, b string) int {
	na, nb := NormalizeAFM(a), NormalizeAFM(b)
	if na == "" || nb == "" || na != nb {
		return 0
	}
	return 100
}

// Similarity calcula los tres puntajes de campo de un candidato frente a la búsqueda
// y el puntaje compuesto.
func Similarity(in SearchInput, c entity.Customer) SimilarityResult {
	scores := fieldScores(in, c)
	score, _ := Compose(scores, in)
	return SimilarityResult{Score: score, Details: scores}
}

func fieldScores(in SearchInput, c entity.Customer) FieldScores {
	return FieldScores{
		Name:  NameSimilarity(in.CompanyName, c.CompanyName),
		Phone: PhoneSimilarity(in.Telephone, c.Telephone),
		AFM:   AFMSimilarity(in.AFM, c.AFM),
	}
}

// round redondea mitades hacia arriba.
func round(x float64) int {
	return int(math.Floor(x + 0.5))
}

func clampScore(s int) int {
	if s < 0 {
		return 0
	}
	if s > 100 {
		return 100
	}
	return s
}
