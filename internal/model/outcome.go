package model

import "time"

// Warning codes emitted by fallback paths. Every silent default in the
// normalizer maps to exactly one code so downstream tooling can filter.
const (
	WarnNameMissing      = "W_NAME_MISSING"
	WarnCategoryMissing  = "W_CATEGORY_MISSING"
	WarnCategoryGuessed  = "W_CATEGORY_GUESSED"
	WarnStateGuessed     = "W_STATE_GUESSED"
	WarnCEPMissing       = "W_CEP_MISSING"
	WarnAddressNotFound  = "W_ADDRESS_NOT_FOUND"
	WarnGeocodePending   = "W_GEOCODE_PENDING"
	WarnPhotoNotFound    = "W_PHOTO_NOT_FOUND"
	WarnSpecialtyDropped = "W_SPECIALTY_DROPPED"
)

// Warning is a recorded degradation on a row that still yields a stored record.
type Warning struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// RowOutcome is the per-row result of the import pipeline. A failed row
// produced no stored record; warnings never imply failure.
type RowOutcome struct {
	RowNumber  int       `json:"row_number"`
	Name       string    `json:"name"`
	Failed     bool      `json:"failed"`
	Error      string    `json:"error,omitempty"`
	HadGeocode bool      `json:"had_geocode"`
	HadPhoto   bool      `json:"had_photo"`
	Warnings   []Warning `json:"warnings,omitempty"`
}

// RowFailure is one entry of the report's failure list, addressable by the
// spreadsheet row number for correction and re-upload.
type RowFailure struct {
	RowNumber int    `json:"row_number"`
	Name      string `json:"name"`
	Error     string `json:"error"`
}

// ImportReport aggregates a run's outcome. Immutable after creation.
type ImportReport struct {
	RunID       string       `json:"run_id"`
	File        string       `json:"file,omitempty"`
	Total       int          `json:"total"`
	Imported    int          `json:"imported"`
	Failed      int          `json:"failed"`
	Geocoded    int          `json:"geocoded"`
	PhotosFound int          `json:"photos_found"`
	Failures    []RowFailure `json:"failures,omitempty"`
	Outcomes    []RowOutcome `json:"outcomes,omitempty"`
}

// ImportRun is the persisted record of one import invocation.
type ImportRun struct {
	ID          string     `json:"id"`
	File        string     `json:"file"`
	Status      string     `json:"status"`
	Total       int        `json:"total"`
	Imported    int        `json:"imported"`
	Failed      int        `json:"failed"`
	Geocoded    int        `json:"geocoded"`
	PhotosFound int        `json:"photos_found"`
	CreatedAt   time.Time  `json:"created_at"`
	FinishedAt  *time.Time `json:"finished_at,omitempty"`
}

// Run statuses.
const (
	RunStatusRunning  = "running"
	RunStatusComplete = "complete"
	RunStatusFailed   = "failed"
)
