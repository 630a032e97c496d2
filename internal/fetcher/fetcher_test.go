package fetcher

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"
)

func TestReadCSV_CommaDelimited(t *testing.T) {
	input := "Nome,CNPJ,CEP\nPadaria do Zé,12345678000190,88000000\nBarbearia Central,98765432000110,89000000\n"

	header, rows, err := ReadCSV(strings.NewReader(input), CSVOptions{DetectDelimiter: true, TrimSpace: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"Nome", "CNPJ", "CEP"}, header)
	require.Len(t, rows, 2)
	assert.Equal(t, "Padaria do Zé", rows[0][0])
	assert.Equal(t, "89000000", rows[1][2])
}

func TestReadCSV_SemicolonDetected(t *testing.T) {
	input := "Nome;CNPJ;Cidade\nLoja A;111;Blumenau\n"

	header, rows, err := ReadCSV(strings.NewReader(input), CSVOptions{DetectDelimiter: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"Nome", "CNPJ", "Cidade"}, header)
	require.Len(t, rows, 1)
	assert.Equal(t, "Blumenau", rows[0][2])
}

func TestReadCSV_VariableFieldCounts(t *testing.T) {
	input := "A,B,C\n1,2\n1,2,3,4\n"

	_, rows, err := ReadCSV(strings.NewReader(input), CSVOptions{})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Len(t, rows[0], 2)
	assert.Len(t, rows[1], 4)
}

func TestReadCSV_Empty(t *testing.T) {
	_, _, err := ReadCSV(strings.NewReader(""), CSVOptions{})
	assert.Error(t, err)
}

func writeTestXLSX(t *testing.T, rows [][]string) string {
	t.Helper()
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Planilha1")
	require.NoError(t, err)
	for _, r := range rows {
		row := sheet.AddRow()
		for _, v := range r {
			row.AddCell().Value = v
		}
	}
	path := filepath.Join(t.TempDir(), "test.xlsx")
	require.NoError(t, f.Save(path))
	return path
}

func TestReadXLSX(t *testing.T) {
	path := writeTestXLSX(t, [][]string{
		{"Nome", "Categoria"},
		{"Padaria do Zé", "Restaurante"},
	})

	header, rows, err := ReadXLSX(path, XLSXOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"Nome", "Categoria"}, header)
	require.Len(t, rows, 1)
	assert.Equal(t, "Padaria do Zé", rows[0][0])
}

func TestReadXLSX_SheetNotFound(t *testing.T) {
	path := writeTestXLSX(t, [][]string{{"A"}})

	_, _, err := ReadXLSX(path, XLSXOptions{SheetName: "Inexistente"})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestReadFile_DispatchAndUnsupported(t *testing.T) {
	csvPath := filepath.Join(t.TempDir(), "rows.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte("Nome\nLoja A\n"), 0o644))

	header, rows, err := ReadFile(csvPath)
	require.NoError(t, err)
	assert.Equal(t, []string{"Nome"}, header)
	assert.Len(t, rows, 1)

	_, _, err = ReadFile("dados.pdf")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported")
}
