package importer

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/clubelocal/partners-cli/internal/model"
)

// BuildReport aggregates per-row outcomes into the run report.
func BuildReport(runID, file string, outcomes []model.RowOutcome) *model.ImportReport {
	report := &model.ImportReport{
		RunID:    runID,
		File:     file,
		Total:    len(outcomes),
		Outcomes: outcomes,
	}

	for _, o := range outcomes {
		if o.Failed {
			report.Failed++
			report.Failures = append(report.Failures, model.RowFailure{
				RowNumber: o.RowNumber,
				Name:      o.Name,
				Error:     o.Error,
			})
			continue
		}
		report.Imported++
		if o.HadGeocode {
			report.Geocoded++
		}
		if o.HadPhoto {
			report.PhotosFound++
		}
	}

	return report
}

// FormatReport renders the report for terminal output.
func FormatReport(report *model.ImportReport) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Import %s\n", report.RunID)
	if report.File != "" {
		fmt.Fprintf(&b, "File:         %s\n", report.File)
	}
	fmt.Fprintf(&b, "Rows:         %d\n", report.Total)
	fmt.Fprintf(&b, "Imported:     %d\n", report.Imported)
	fmt.Fprintf(&b, "Failed:       %d\n", report.Failed)
	fmt.Fprintf(&b, "Geocoded:     %d\n", report.Geocoded)
	fmt.Fprintf(&b, "Photos found: %d\n", report.PhotosFound)

	warned := 0
	for _, o := range report.Outcomes {
		if !o.Failed && len(o.Warnings) > 0 {
			warned++
		}
	}
	if warned > 0 {
		fmt.Fprintf(&b, "\n%d row(s) imported with warnings:\n", warned)
		for _, o := range report.Outcomes {
			if o.Failed || len(o.Warnings) == 0 {
				continue
			}
			for _, w := range o.Warnings {
				fmt.Fprintf(&b, "  row %d (%s): [%s] %s\n", o.RowNumber, o.Name, w.Code, w.Message)
			}
		}
	}

	if len(report.Failures) > 0 {
		fmt.Fprintf(&b, "\n%d row(s) failed:\n", len(report.Failures))
		for _, f := range report.Failures {
			fmt.Fprintf(&b, "  row %d (%s): %s\n", f.RowNumber, f.Name, f.Error)
		}
	}

	return b.String()
}

// WriteErrorSheet writes the failure list as a workbook the operator can
// correct and re-upload. No file is written when there are no failures.
func WriteErrorSheet(report *model.ImportReport, path string) error {
	if len(report.Failures) == 0 {
		return nil
	}

	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Erros")
	if err != nil {
		return eris.Wrap(err, "importer: create error sheet")
	}

	header := sheet.AddRow()
	for _, h := range []string{"Linha", "Nome", "Erro"} {
		header.AddCell().Value = h
	}

	for _, failure := range report.Failures {
		row := sheet.AddRow()
		row.AddCell().Value = strconv.Itoa(failure.RowNumber)
		row.AddCell().Value = failure.Name
		row.AddCell().Value = failure.Error
	}

	if err := f.Save(path); err != nil {
		return eris.Wrap(err, "importer: save error sheet")
	}
	return nil
}
