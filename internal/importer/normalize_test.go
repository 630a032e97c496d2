package importer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeCNPJ(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"formatted", "12.345.678/0001-90", "12345678000190"},
		{"leading zeros dropped by excel", "345678000190", "00345678000190"},
		{"too long", "123456780001901234", "12345678000190"},
		{"garbage", "n/a", ""},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeCNPJ(tt.input))
		})
	}
}

func TestNormalizeCEP(t *testing.T) {
	assert.Equal(t, "88000000", NormalizeCEP("88000-000"))
	assert.Equal(t, "01001000", NormalizeCEP("1001000"))
	assert.Equal(t, "", NormalizeCEP("sem cep"))
}

func TestNormalizePhone(t *testing.T) {
	assert.Equal(t, "47999990000", NormalizePhone("(47) 99999-0000"))
	assert.Equal(t, "", NormalizePhone(""))
}

func TestNormalizeHandle(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"at prefix", "@padariadoze", "padariadoze"},
		{"bare handle", "padariadoze", "padariadoze"},
		{"profile url", "https://www.instagram.com/padariadoze/", "padariadoze"},
		{"url without scheme", "instagram.com/padariadoze", "padariadoze"},
		{"url with extra path", "https://instagram.com/padariadoze/reels", "padariadoze"},
		{"empty", "  ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeHandle(tt.input))
		})
	}
}

func TestNormalizeState(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		want        string
		wantGuessed bool
	}{
		{"code lowercase", "sc", "SC", false},
		{"code uppercase", "SP", "SP", false},
		{"full name", "Santa Catarina", "SC", false},
		{"full name no diacritics", "sao paulo", "SP", false},
		{"full name with diacritics", "São Paulo", "SP", false},
		{"unrecognized falls back", "Republica Velha", "RE", true},
		{"empty", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, guessed := NormalizeState(tt.input)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantGuessed, guessed)
		})
	}
}

func TestMapCategory(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		want        string
		wantMatched bool
	}{
		{"canonical unchanged", "Restaurante", "Restaurante", true},
		{"canonical case-insensitive", "restaurante", "Restaurante", true},
		{"canonical with diacritics folded", "saude e bem-estar", "Saúde e Bem-estar", true},
		{"alias", "Pizzaria", "Restaurante", true},
		{"alias folded", "FARMÁCIA", "Saúde e Bem-estar", true},
		{"unknown", "Venda de Discos", DefaultCategory, false},
		{"empty", "", DefaultCategory, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, matched := MapCategory(tt.input)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantMatched, matched)
		})
	}
}

func TestMapCategory_Idempotent(t *testing.T) {
	for _, c := range categories {
		got, matched := MapCategory(c)
		assert.True(t, matched)
		assert.Equal(t, c, got)
	}
}

func TestMapValidity(t *testing.T) {
	assert.Equal(t, ValidityMonthly, MapValidity("mês do aniversário"))
	assert.Equal(t, ValidityMonthly, MapValidity("Mensal"))
	assert.Equal(t, ValidityMonthly, MapValidity("every month"))
	assert.Equal(t, ValidityWeekly, MapValidity("semana do aniversário"))
	assert.Equal(t, ValidityWeekly, MapValidity("birthday week"))
	assert.Equal(t, ValidityBirthday, MapValidity("no dia"))
	assert.Equal(t, ValidityBirthday, MapValidity(""))
}

func TestSplitSpecialties(t *testing.T) {
	assert.Equal(t, []string{"Pizzaria", "Churrascaria"}, SplitSpecialties(" Pizzaria , Churrascaria ,"))
	assert.Len(t, SplitSpecialties("a, b, c, d, e"), 3)
	assert.Nil(t, SplitSpecialties("  ,, "))
	assert.Nil(t, SplitSpecialties(""))
}

func TestFilterSpecialties(t *testing.T) {
	known := []string{"Pizzaria", "Churrascaria", "Cafeteria"}

	kept, dropped := FilterSpecialties([]string{"pizzaria", "Sushi", "CAFETERIA"}, known)
	assert.Equal(t, []string{"Pizzaria", "Cafeteria"}, kept, "kept tokens use the known spelling")
	assert.Equal(t, []string{"Sushi"}, dropped)

	kept, dropped = FilterSpecialties([]string{"Sushi"}, nil)
	assert.Empty(t, kept)
	assert.Equal(t, []string{"Sushi"}, dropped)
}
