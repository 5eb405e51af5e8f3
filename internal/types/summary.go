package types

// ImportSummary reports the outcome of one import batch.
type ImportSummary struct {
	RunID            string   `json:"runId,omitempty"`
	CreatedCount     int      `json:"createdCount"`
	SkippedCount     int      `json:"skippedCount"`
	ErrorCount       int      `json:"errorCount"`
	CreatedDates     []string `json:"createdDates"`
	SkippedDates     []string `json:"skippedDates"`
	ErrorMessages    []string `json:"errorMessages"`
	Warnings         []string `json:"warnings"`
	TemplatesCreated int      `json:"templatesCreated"`
	TemplatesUpdated int      `json:"templatesUpdated"`
}

// NewImportSummary returns a summary with non-nil lists so it always
// serializes as arrays.
func NewImportSummary() *ImportSummary {
	return &ImportSummary{
		CreatedDates:  []string{},
		SkippedDates:  []string{},
		ErrorMessages: []string{},
		Warnings:      []string{},
	}
}

// TemplateImportStats reports what a template import touched.
type TemplateImportStats struct {
	TemplateID      uint `json:"templateId"`
	Weeks           int  `json:"weeks"`
	Days            int  `json:"days"`
	Meals           int  `json:"meals"`
	Items           int  `json:"items"`
	DishesCreated   int  `json:"dishesCreated"`
	AllergensSeen   int  `json:"allergensSeen"`
	DuplicateMerged int  `json:"duplicateDaysMerged"`
}
