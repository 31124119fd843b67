package dedup

import "strings"

const (
	minPhoneDigits     = 5
	interleaveMinDigit = 7
)

// CandidateQuery consulta amplia (orientada a recall) contra el almacén de clientes.
// Los predicados se combinan con OR; el adaptador excluye registros borrados y aplica Limit.
type CandidateQuery struct {
	// NameContains subcadena sin comodines, comparada sin distinguir mayúsculas.
	NameContains string
	// PhonePatterns patrones ILIKE ya armados (con % y comodines escapados).
	PhonePatterns []string
	// AFMEquals valores exactos de AFM.
	AFMEquals []string
	Limit     int
}

// Empty indica que no hay predicados: no se debe consultar.
func (q CandidateQuery) Empty() bool {
	return q.NameContains == "" && len(q.PhonePatterns) == 0 && len(q.AFMEquals) == 0
}

// NamePattern patrón ILIKE de NameContains, o "" si no hay nombre.
func (q CandidateQuery) NamePattern() string {
	if q.NameContains == "" {
		return ""
	}
	return containsPattern(q.NameContains)
}

// ExactPhoneStrategy estrategia con nombre para el camino de teléfono exacto.
type ExactPhoneStrategy struct {
	Name  string
	Query CandidateQuery
}

// BuildCandidateQuery arma la consulta de la búsqueda general.
// Un teléfono de solo dígitos con menos de 5 caracteres no genera predicado.
func BuildCandidateQuery(in SearchInput, limit int) CandidateQuery {
	q := CandidateQuery{Limit: limit}
	if name := strings.TrimSpace(in.CompanyName); name != "" {
		q.NameContains = name
	}
	if phone := strings.TrimSpace(in.Telephone); phone != "" {
		if !(isDigitsOnly(phone) && len(phone) < minPhoneDigits) {
			q.PhonePatterns = appendUnique(q.PhonePatterns, containsPattern(phone))
			if digits := digitsOnly(phone); len(digits) >= interleaveMinDigit {
				q.PhonePatterns = appendUnique(q.PhonePatterns, interleavedPattern(digits))
			}
			if prefix, ok := FormattedPhonePrefix(phone); ok {
				q.PhonePatterns = appendUnique(q.PhonePatterns, prefixPattern(prefix))
			}
		}
	}
	if afm := strings.TrimSpace(in.AFM); afm != "" {
		q.AFMEquals = appendUnique(q.AFMEquals, afm)
		if d := NormalizeAFM(afm); d != "" {
			q.AFMEquals = appendUnique(q.AFMEquals, d)
		}
	}
	return q
}

// ExactPhoneStrategies devuelve las estrategias de recuperación en orden de uso:
// amplia, solo prefijo con formato (si aplica) y primeros 5 dígitos.
// Devuelve nil si el teléfono tiene menos de 5 dígitos normalizados.
func ExactPhoneStrategies(phone string, limit int) []ExactPhoneStrategy {
	raw := strings.TrimSpace(phone)
	normalized := NormalizePhone(raw)
	if len(normalized) < minPhoneDigits {
		return nil
	}
	prefix, formatted := FormattedPhonePrefix(raw)

	broad := CandidateQuery{Limit: limit}
	broad.PhonePatterns = appendUnique(broad.PhonePatterns, containsPattern(raw))
	broad.PhonePatterns = appendUnique(broad.PhonePatterns, containsPattern(normalized))
	if digits := digitsOnly(raw); digits != normalized {
		broad.PhonePatterns = appendUnique(broad.PhonePatterns, containsPattern(digits))
	}
	if formatted {
		broad.PhonePatterns = appendUnique(broad.PhonePatterns, prefixPattern(prefix))
	}

	strategies := []ExactPhoneStrategy{{Name: "broad", Query: broad}}
	if formatted {
		strategies = append(strategies, ExactPhoneStrategy{
			Name:  "formatted-prefix",
			Query: CandidateQuery{PhonePatterns: []string{prefixPattern(prefix)}, Limit: limit},
		})
	}
	strategies = append(strategies, ExactPhoneStrategy{
		Name:  "first-digits",
		Query: CandidateQuery{PhonePatterns: []string{containsPattern(normalized[:minPhoneDigits])}, Limit: limit},
	})
	return strategies
}

// escapeLike escapa los comodines de LIKE con la barra invertida (escape por defecto en PostgreSQL).
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func containsPattern(s string) string { return "%" + escapeLike(s) + "%" }

func prefixPattern(s string) string { return escapeLike(s) + "%" }

// interleavedPattern "6944" → "%6%9%4%4%": encuentra el número aunque esté cargado con separadores.
func interleavedPattern(digits string) string {
	var b strings.Builder
	b.Grow(len(digits)*2 + 1)
	b.WriteByte('%')
	for i := 0; i < len(digits); i++ {
		b.WriteByte(digits[i])
		b.WriteByte('%')
	}
	return b.String()
}

func appendUnique(list []string, v string) []string {
	for _, x := range list {
		if x == v {
			return list
		}
	}
	return append(list, v)
}
