package importer

import (
	"net/url"
	"strings"
)

// Normalizers are total functions. Garbage in produces a documented
// default out; nothing here fails a row.

// DefaultCategory absorbs every business the category mapper cannot place.
const DefaultCategory = "Outros Comércios"

// Validity periods.
const (
	ValidityBirthday = "aniversario"
	ValidityMonthly  = "mensal"
	ValidityWeekly   = "semanal"
)

// Digits strips every non-digit character.
func Digits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// fixedDigits pads with leading zeros (spreadsheet tools drop them from
// numeric cells) or truncates to exactly n digits. Empty stays empty.
func fixedDigits(s string, n int) string {
	d := Digits(s)
	if d == "" {
		return ""
	}
	if len(d) > n {
		return d[:n]
	}
	return strings.Repeat("0", n-len(d)) + d
}

// NormalizeCNPJ reduces a tax ID to its 14 digits.
func NormalizeCNPJ(s string) string {
	return fixedDigits(s, 14)
}

// NormalizeCEP reduces a postal code to its 8 digits.
func NormalizeCEP(s string) string {
	return fixedDigits(s, 8)
}

// NormalizePhone strips formatting from a phone number.
func NormalizePhone(s string) string {
	return Digits(s)
}

// NormalizeHandle cleans a social handle: a leading @ is stripped, and a
// full profile URL yields the path segment after the platform domain.
func NormalizeHandle(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}

	if strings.Contains(s, "instagram.com") {
		raw := s
		if !strings.Contains(raw, "://") {
			raw = "https://" + raw
		}
		if u, err := url.Parse(raw); err == nil {
			if seg := strings.Split(strings.Trim(u.Path, "/"), "/"); len(seg) > 0 && seg[0] != "" {
				return seg[0]
			}
		}
	}

	return strings.TrimPrefix(s, "@")
}

// stateByName maps folded full state names to their two-letter codes.
var stateByName = map[string]string{
	"acre":                "AC",
	"alagoas":             "AL",
	"amapa":               "AP",
	"amazonas":            "AM",
	"bahia":               "BA",
	"ceara":               "CE",
	"distrito federal":    "DF",
	"espirito santo":      "ES",
	"goias":               "GO",
	"maranhao":            "MA",
	"mato grosso":         "MT",
	"mato grosso do sul":  "MS",
	"minas gerais":        "MG",
	"para":                "PA",
	"paraiba":             "PB",
	"parana":              "PR",
	"pernambuco":          "PE",
	"piaui":               "PI",
	"rio de janeiro":      "RJ",
	"rio grande do norte": "RN",
	"rio grande do sul":   "RS",
	"rondonia":            "RO",
	"roraima":             "RR",
	"santa catarina":      "SC",
	"sao paulo":           "SP",
	"sergipe":             "SE",
	"tocantins":           "TO",
}

// NormalizeState maps a state name or code to a two-letter UF. Unrecognized
// longer names degrade to their first two letters uppercased; guessed
// reports that lossy path so the row can carry a warning.
func NormalizeState(s string) (uf string, guessed bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}

	runes := []rune(s)
	if len(runes) == 2 {
		return strings.ToUpper(s), false
	}

	if code, ok := stateByName[foldHeader(s)]; ok {
		return code, false
	}

	return strings.ToUpper(string(runes[:2])), true
}

// categories is the canonical category list.
var categories = []string{
	"Restaurante",
	"Saúde e Bem-estar",
	"Beleza e Estética",
	"Moda e Vestuário",
	"Esporte e Lazer",
	"Educação",
	"Pet",
	"Turismo e Hotelaria",
	"Serviços",
	DefaultCategory,
}

// categoryAliases maps folded common business descriptions to canonical
// categories.
var categoryAliases = map[string]string{
	"pizzaria":        "Restaurante",
	"lanchonete":      "Restaurante",
	"padaria":         "Restaurante",
	"bar":             "Restaurante",
	"cafeteria":       "Restaurante",
	"restaurantes":    "Restaurante",
	"alimentacao":     "Restaurante",
	"academia":        "Esporte e Lazer",
	"esportes":        "Esporte e Lazer",
	"farmacia":        "Saúde e Bem-estar",
	"clinica":         "Saúde e Bem-estar",
	"saude":           "Saúde e Bem-estar",
	"salao":           "Beleza e Estética",
	"salao de beleza": "Beleza e Estética",
	"barbearia":       "Beleza e Estética",
	"estetica":        "Beleza e Estética",
	"beleza":          "Beleza e Estética",
	"loja de roupas":  "Moda e Vestuário",
	"boutique":        "Moda e Vestuário",
	"moda":            "Moda e Vestuário",
	"vestuario":       "Moda e Vestuário",
	"escola":          "Educação",
	"curso":           "Educação",
	"cursos":          "Educação",
	"petshop":         "Pet",
	"pet shop":        "Pet",
	"veterinaria":     "Pet",
	"hotel":           "Turismo e Hotelaria",
	"pousada":         "Turismo e Hotelaria",
	"turismo":         "Turismo e Hotelaria",
	"servicos":        "Serviços",
}

// MapCategory resolves raw category text to a canonical category. Already
// canonical names map to themselves; known aliases map across; anything
// else lands in the default category with matched=false.
func MapCategory(s string) (category string, matched bool) {
	folded := foldHeader(s)
	if folded == "" {
		return DefaultCategory, false
	}

	for _, c := range categories {
		if foldHeader(c) == folded {
			return c, true
		}
	}
	if c, ok := categoryAliases[folded]; ok {
		return c, true
	}

	return DefaultCategory, false
}

// MapValidity selects a validity period from free text. Month and week
// keywords (Portuguese or English) pick the recurring periods; everything
// else defaults to day-of-birthday.
func MapValidity(s string) string {
	folded := foldHeader(s)
	switch {
	case strings.Contains(folded, "mes") || strings.Contains(folded, "mens") || strings.Contains(folded, "month"):
		return ValidityMonthly
	case strings.Contains(folded, "semana") || strings.Contains(folded, "week"):
		return ValidityWeekly
	default:
		return ValidityBirthday
	}
}

// SplitSpecialties splits a comma-separated list into at most three
// trimmed, non-empty tokens.
func SplitSpecialties(s string) []string {
	var out []string
	for _, tok := range strings.Split(s, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		out = append(out, tok)
		if len(out) == 3 {
			break
		}
	}
	return out
}

// FilterSpecialties keeps the tokens present in the category's known list
// (compared case- and accent-insensitively, returned in the known
// spelling) and reports the rest as dropped.
func FilterSpecialties(tokens, known []string) (kept, dropped []string) {
	for _, tok := range tokens {
		folded := foldHeader(tok)
		matched := ""
		for _, k := range known {
			if foldHeader(k) == folded {
				matched = k
				break
			}
		}
		if matched != "" {
			kept = append(kept, matched)
		} else {
			dropped = append(dropped, tok)
		}
	}
	return kept, dropped
}
