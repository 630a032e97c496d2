package importer

import (
	"fmt"

	"github.com/clubelocal/partners-cli/internal/model"
)

// buildEstablishment maps one spreadsheet record into the normalized model.
// Nothing here fails: missing or unrecognizable values degrade to defaults
// and each degradation is recorded as a warning.
func buildEstablishment(res *Resolver, record []string, defaultName string) (*model.Establishment, []model.Warning) {
	var warnings []model.Warning
	warn := func(code, format string, args ...any) {
		warnings = append(warnings, model.Warning{Code: code, Message: fmt.Sprintf(format, args...)})
	}

	est := &model.Establishment{
		Name:         res.Value(record, aliasesName...),
		CNPJ:         NormalizeCNPJ(res.Value(record, aliasesCNPJ...)),
		Phone:        NormalizePhone(res.Value(record, aliasesPhone...)),
		WhatsApp:     NormalizePhone(res.Value(record, aliasesWhatsApp...)),
		Email:        res.Value(record, aliasesEmail...),
		CEP:          NormalizeCEP(res.Value(record, aliasesCEP...)),
		Street:       res.Value(record, aliasesStreet...),
		Number:       res.Value(record, aliasesNumber...),
		Complement:   res.Value(record, aliasesComplement...),
		Neighborhood: res.Value(record, aliasesNeighborhood...),
		City:         res.Value(record, aliasesCity...),
		Instagram:    NormalizeHandle(res.Value(record, aliasesInstagram...)),
		Website:      res.Value(record, aliasesWebsite...),
		Specialties:  SplitSpecialties(res.Value(record, aliasesSpecialties...)),
		Benefit:      res.Value(record, aliasesBenefit...),
		UsageRules:   res.Value(record, aliasesUsageRules...),
		Validity:     MapValidity(res.Value(record, aliasesValidity...)),
		OpeningHours: res.Value(record, aliasesOpeningHours...),
	}

	if est.Name == "" {
		est.Name = defaultName
		warn(model.WarnNameMissing, "name not informed, using %q", defaultName)
	}

	rawCategory := res.Value(record, aliasesCategory...)
	category, matched := MapCategory(rawCategory)
	est.Category = category
	switch {
	case rawCategory == "":
		warn(model.WarnCategoryMissing, "category not informed, using %q", category)
	case !matched:
		warn(model.WarnCategoryGuessed, "category %q not recognized, using %q", rawCategory, category)
	}

	state, guessed := NormalizeState(res.Value(record, aliasesState...))
	est.State = state
	if guessed {
		warn(model.WarnStateGuessed, "state %q not recognized, truncated to %q", res.Value(record, aliasesState...), state)
	}

	if est.CEP == "" {
		warn(model.WarnCEPMissing, "postal code not informed, skipping address lookup")
	}

	return est, warnings
}
