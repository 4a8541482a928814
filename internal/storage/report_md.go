// ABOUTME: Markdown-based report storage under a single root directory.
// ABOUTME: Stores reports as markdown files with YAML frontmatter in date-based directories.
package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/2389-research/dendro/internal/errors"
	"github.com/2389-research/dendro/internal/models"
)

// ReportMDStore stores reports as markdown files below root.
type ReportMDStore struct {
	root string
}

// reportFrontmatter is the YAML frontmatter for report files. The body
// is a human-readable rendering; everything needed to reload the report
// lives here.
type reportFrontmatter struct {
	ID       string           `yaml:"id"`
	Date     string           `yaml:"date"`
	Source   string           `yaml:"source"`
	Method   string           `yaml:"method"`
	Strategy string           `yaml:"strategy"`
	TopK     int              `yaml:"top_k"`
	Labels   []string         `yaml:"labels"`
	Merges   []models.Merge   `yaml:"merges,omitempty"`
	Clusters []models.Cluster `yaml:"clusters"`
}

// NewReportMDStore creates a report store rooted at root.
func NewReportMDStore(root string) (*ReportMDStore, error) {
	if root == "" {
		return nil, errors.InvalidInputf("report root is required")
	}
	return &ReportMDStore{root: root}, nil
}

// Root returns the directory reports are written under.
func (s *ReportMDStore) Root() string {
	return s.root
}

// WriteReport persists a report under root/YYYY-MM-DD/.
func (s *ReportMDStore) WriteReport(report *models.Report) error {
	dateDir := report.CreatedAt.Format("2006-01-02")
	timeStr := report.CreatedAt.Format("15-04-05-000000")
	shortID := report.ID.String()[:8]
	path := filepath.Join(s.root, dateDir, timeStr+"-"+shortID+".md")

	fm := reportFrontmatter{
		ID:       report.ID.String(),
		Date:     formatTime(report.CreatedAt),
		Source:   report.Source,
		Method:   report.Method,
		Strategy: report.Strategy,
		TopK:     report.TopK,
		Labels:   report.Labels,
		Merges:   report.Merges,
		Clusters: report.Clusters,
	}

	content, err := renderFrontmatter(fm, renderReportBody(report))
	if err != nil {
		return errors.Wrap(err, "render frontmatter")
	}
	if err := atomicWrite(path, []byte(content)); err != nil {
		return errors.Wrap(err, "write report")
	}

	report.FilePath = path
	return nil
}

// ReadReport reads a report from the given file path.
// The path must be within the store root.
func (s *ReportMDStore) ReadReport(path string) (*models.Report, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Wrap(err, "invalid path")
	}
	absRoot, _ := filepath.Abs(s.root)

	if !strings.HasPrefix(absPath, absRoot+string(filepath.Separator)) {
		return nil, errors.InvalidInputf("path %q is outside the reports directory", path)
	}

	data, err := os.ReadFile(absPath)
	if err != nil {
		return nil, errors.Wrap(err, "read report")
	}
	return parseReport(absPath, string(data))
}

// ListReports lists reports, most recent first.
func (s *ReportMDStore) ListReports(limit int, days int) ([]*models.Report, error) {
	var cutoff time.Time
	if days > 0 {
		cutoff = time.Now().AddDate(0, 0, -days)
	}

	reports, err := listReportsInRoot(s.root, cutoff)
	if err != nil {
		return nil, errors.Wrapf(err, "list reports in %s", s.root)
	}

	sort.SliceStable(reports, func(i, j int) bool {
		return reports[i].CreatedAt.After(reports[j].CreatedAt)
	})

	if limit > 0 && len(reports) > limit {
		reports = reports[:limit]
	}
	return reports, nil
}

// Close releases any resources held by the store.
func (s *ReportMDStore) Close() error {
	return nil
}

func listReportsInRoot(root string, cutoff time.Time) ([]*models.Report, error) {
	if _, err := os.Stat(root); os.IsNotExist(err) {
		return nil, nil
	}

	dateDirs, err := os.ReadDir(root)
	if err != nil {
		return nil, err
	}

	var reports []*models.Report
	for _, dateDir := range dateDirs {
		if !dateDir.IsDir() {
			continue
		}

		if !cutoff.IsZero() {
			dirDate, err := time.Parse("2006-01-02", dateDir.Name())
			if err != nil {
				continue
			}
			// Compare dates only
			if dirDate.Before(cutoff.Truncate(24 * time.Hour)) {
				continue
			}
		}

		dirPath := filepath.Join(root, dateDir.Name())
		files, err := os.ReadDir(dirPath)
		if err != nil {
			continue
		}

		for _, file := range files {
			if file.IsDir() || !strings.HasSuffix(file.Name(), ".md") {
				continue
			}
			filePath := filepath.Join(dirPath, file.Name())
			data, err := os.ReadFile(filePath)
			if err != nil {
				continue
			}
			report, err := parseReport(filePath, string(data))
			if err != nil {
				continue
			}
			reports = append(reports, report)
		}
	}
	return reports, nil
}

func parseReport(path string, content string) (*models.Report, error) {
	yamlStr, _ := parseFrontmatter(content)
	if yamlStr == "" {
		return nil, errors.Newf("no frontmatter found in %s", path)
	}

	var fm reportFrontmatter
	if err := yaml.Unmarshal([]byte(yamlStr), &fm); err != nil {
		return nil, errors.Wrap(err, "parse frontmatter")
	}

	id, err := uuid.Parse(fm.ID)
	if err != nil {
		return nil, errors.Wrap(err, "invalid UUID in frontmatter")
	}
	createdAt, err := parseTime(fm.Date)
	if err != nil {
		return nil, errors.Wrap(err, "invalid date in frontmatter")
	}

	return &models.Report{
		ID:        id,
		CreatedAt: createdAt,
		Source:    fm.Source,
		Method:    fm.Method,
		Strategy:  fm.Strategy,
		TopK:      fm.TopK,
		Labels:    fm.Labels,
		Merges:    fm.Merges,
		Clusters:  fm.Clusters,
		FilePath:  path,
	}, nil
}

// renderReportBody lists each cluster with its member labels.
func renderReportBody(r *models.Report) string {
	var sb strings.Builder
	title := r.Source
	if title == "" {
		title = "clusters"
	}
	sb.WriteString(fmt.Sprintf("\n# %s\n", title))
	sb.WriteString(fmt.Sprintf("\n%d rows, %s linkage, %s top %d\n", len(r.Labels), r.Method, r.Strategy, r.TopK))

	sb.WriteString("\n## Clusters\n")
	for i, c := range r.Clusters {
		sb.WriteString(fmt.Sprintf("%d. node %d, %d rows, distance %.4g, cohesion %.3f: %s\n",
			i+1, c.Node, len(c.Members), c.Distance, c.Cohesion, models.JoinLabels(r.MemberLabels(c), 20)))
	}
	return sb.String()
}
