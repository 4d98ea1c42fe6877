package services

import (
	"fmt"
	"io"

	"github.com/alimgiray/contribsync/internal/models"
	"github.com/xuri/excelize/v2"
)

const contributorsSheet = "Contributors"

// ExportService renders contributor listings as Excel workbooks
type ExportService struct {
	contributorService *RepositoryContributorService
}

func NewExportService(contributorService *RepositoryContributorService) *ExportService {
	return &ExportService{contributorService: contributorService}
}

// ExportRepositoryContributors writes the repository's contributors to w as xlsx
func (s *ExportService) ExportRepositoryContributors(w io.Writer, repo *models.GitHubRepository) error {
	contributors, err := s.contributorService.GetRepositoryContributors(repo.ID)
	if err != nil {
		return fmt.Errorf("failed to load contributors: %w", err)
	}
	return WriteContributorsWorkbook(w, repo, contributors)
}

// WriteContributorsWorkbook writes one header row and one row per contributor
func WriteContributorsWorkbook(w io.Writer, repo *models.GitHubRepository, contributors []*models.ContributorDetails) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", contributorsSheet); err != nil {
		return err
	}

	header := []interface{}{"Repository", "Username", "Name", "Profile", "Contributions"}
	if err := f.SetSheetRow(contributorsSheet, "A1", &header); err != nil {
		return err
	}

	for i, c := range contributors {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}

		row := []interface{}{repo.FullName, c.Username, stringOrEmpty(c.DisplayName), stringOrEmpty(c.ProfileURL), c.ContributionsCount}
		if err := f.SetSheetRow(contributorsSheet, cell, &row); err != nil {
			return err
		}
	}

	if err := f.SetPanes(contributorsSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return err
	}

	return f.Write(w)
}

func stringOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
