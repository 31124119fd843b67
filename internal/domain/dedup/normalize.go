// Package dedup contiene el núcleo de detección de clientes duplicados:
// normalización, estimadores de similitud por campo, puntuación compuesta
// por reglas y filtrado/ordenamiento de candidatos. Todo el paquete es puro:
// no accede a la base de datos ni mantiene estado compartido.
package dedup

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

// greekAccents tabla fija de vocales griegas acentuadas → sin acento.
// No se usa NFD + eliminación de marcas para no tocar acentos latinos.
var greekAccents = map[rune]rune{
	'ά': 'α', 'Ά': 'α',
	'έ': 'ε', 'Έ': 'ε',
	'ή': 'η', 'Ή': 'η',
	'ί': 'ι', 'Ί': 'ι', 'ϊ': 'ι', 'Ϊ': 'ι', 'ΐ': 'ι',
	'ό': 'ο', 'Ό': 'ο',
	'ύ': 'υ', 'Ύ': 'υ', 'ϋ': 'υ', 'Ϋ': 'υ', 'ΰ': 'υ',
	'ώ': 'ω', 'Ώ': 'ω',
}

// formattedPhoneRe detecta teléfonos cargados como "2310-55.12.34" o "2310 55 12 34".
// El grupo 1 es el prefijo literal antes del primer separador.
var formattedPhoneRe = regexp.MustCompile(`^(\d{4,5})[-\s](\d{2})[.\s](\d{2})[.\s](\d{2,3})$`)

func foldGreek(r rune) rune {
	if f, ok := greekAccents[r]; ok {
		return f
	}
	return r
}

// newTextFolder crea la cadena de transformación. cases.Caser tiene estado,
// por eso se construye una por llamada.
func newTextFolder() transform.Transformer {
	return transform.Chain(cases.Lower(language.Und), runes.Map(foldGreek))
}

// NormalizeGreekText pasa a minúsculas y quita los acentos de la tabla griega.
// No elimina puntuación ni espacios.
func NormalizeGreekText(s string) string {
	if s == "" {
		return ""
	}
	out, _, err := transform.String(newTextFolder(), s)
	if err != nil {
		return strings.Map(foldGreek, strings.ToLower(s))
	}
	return out
}

// NormalizeAFM deja solo los dígitos del AFM (NIF griego).
func NormalizeAFM(afm string) string {
	return digitsOnly(afm)
}

// NormalizePhone extrae los dígitos y aplica las reglas de formato griego:
//
//	≤6 dígitos         → sin cambios (entrada parcial mientras se escribe)
//	69… y ≥10 dígitos  → primeros 10 (móvil)
//	2… y ≥10 dígitos   → primeros 10 (fijo)
//	30… y >10 dígitos  → se quita el código de país y se vuelve a evaluar
//
// El resultado es estable: NormalizePhone(NormalizePhone(x)) == NormalizePhone(x).
func NormalizePhone(phone string) string {
	d := digitsOnly(phone)
	for {
		switch {
		case len(d) <= 6:
			return d
		case strings.HasPrefix(d, "69") && len(d) >= 10:
			return d[:10]
		case strings.HasPrefix(d, "2") && len(d) >= 10:
			return d[:10]
		case strings.HasPrefix(d, "30") && len(d) > 10:
			d = d[2:]
		default:
			return d
		}
	}
}

// FormattedPhonePrefix devuelve el prefijo literal (antes del primer separador)
// si el teléfono tiene formato tipo DDDD-DD.DD.DD.
func FormattedPhonePrefix(phone string) (string, bool) {
	m := formattedPhoneRe.FindStringSubmatch(strings.TrimSpace(phone))
	if m == nil {
		return "", false
	}
	return m[1], true
}

func digitsOnly(s string) string {
	if s == "" {
		return ""
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if c := s[i]; c >= '0' && c <= '9' {
			b.WriteByte(c)
		}
	}
	return b.String()
}

func isDigitsOnly(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
