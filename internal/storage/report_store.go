// ABOUTME: Interface definition for clustering report storage.
// ABOUTME: Defines the contract for writing, reading, and listing saved reports.
package storage

import (
	"github.com/2389-research/dendro/internal/models"
)

// ReportStore defines operations for report persistence.
type ReportStore interface {
	// WriteReport persists a report and sets its FilePath.
	WriteReport(report *models.Report) error

	// ReadReport reads a report from the given file path.
	ReadReport(path string) (*models.Report, error)

	// ListReports lists reports, most recent first.
	// limit caps the number of results. days limits how far back to look (0 = no limit).
	ListReports(limit int, days int) ([]*models.Report, error)

	// Close releases any resources held by the store.
	Close() error
}
