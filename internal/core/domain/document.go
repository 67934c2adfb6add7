package domain

import (
	"fmt"
	"time"
)

// Category classifies a source document by its role as precedent.
type Category string

// Available document categories.
const (
	// CategoryApproved is a previously approved Letter of Medical Necessity.
	CategoryApproved Category = "approved"

	// CategoryDenied is a previously denied Letter of Medical Necessity.
	CategoryDenied Category = "denied"

	// CategoryPolicy is an insurance policy excerpt.
	CategoryPolicy Category = "policy"

	// CategoryGuideline is a clinical guideline.
	CategoryGuideline Category = "guideline"
)

// IsValid returns true if the category is recognised.
func (c Category) IsValid() bool {
	switch c {
	case CategoryApproved, CategoryDenied, CategoryPolicy, CategoryGuideline:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (c Category) String() string {
	return string(c)
}

// Categories lists all valid document categories.
func Categories() []Category {
	return []Category{CategoryApproved, CategoryDenied, CategoryPolicy, CategoryGuideline}
}

// Document represents an ingested source document.
// Documents are immutable after ingestion; re-ingestion under a new ID
// supersedes an earlier version rather than mutating it.
type Document struct {
	// ID is the unique identifier for the document.
	ID string

	// Category classifies the document (approved, denied, policy, guideline).
	Category Category

	// Payer is the insurance payer the document relates to, if any.
	Payer string

	// Diagnosis is the primary diagnosis the document concerns, if any.
	Diagnosis string

	// PatientAge is the patient age recorded with the document (0 = unknown).
	PatientAge int

	// AuthorRole is the clinical role of the document author.
	AuthorRole string

	// Body is the full text content.
	Body string

	// Metadata contains additional key-value pairs carried through to chunks.
	Metadata map[string]string

	// IngestedAt is when the document entered the index.
	IngestedAt time.Time
}

// Validate checks that the document can be ingested.
func (d *Document) Validate() error {
	if d.ID == "" {
		return fmt.Errorf("%w: document id is required", ErrInvalidInput)
	}
	if !d.Category.IsValid() {
		return fmt.Errorf("%w: unknown category %q", ErrInvalidInput, d.Category)
	}
	if d.Body == "" {
		return fmt.Errorf("%w: document body is empty", ErrInvalidInput)
	}
	return nil
}

// CaseFacts describes the patient case a letter is requested for.
// All fields are free text; empty fields are simply omitted from the prompt.
type CaseFacts struct {
	// Diagnosis is the primary diagnosis.
	Diagnosis string

	// Equipment is the requested equipment or treatment.
	Equipment string

	// FunctionalLimitations describes the patient's functional limitations.
	FunctionalLimitations string

	// Rationale is the clinician's rationale for the request.
	Rationale string

	// Payer is the insurance payer the letter is addressed to.
	Payer string

	// PatientAge is the patient's age (0 = unspecified).
	PatientAge int
}

// Query renders the case facts as a single retrieval query string.
func (f CaseFacts) Query() string {
	parts := make([]string, 0, 4)
	for _, p := range []string{f.Diagnosis, f.Equipment, f.FunctionalLimitations, f.Rationale} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	query := ""
	for i, p := range parts {
		if i > 0 {
			query += " "
		}
		query += p
	}
	return query
}
