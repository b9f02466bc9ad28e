// Package export writes analysis results to spreadsheet reports.
package export

import (
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/theduardomaciel/projeto-ia/internal/explain"
	"github.com/theduardomaciel/projeto-ia/internal/types"
)

// Sheet names
const (
	SummarySheet   = "Summary"
	RankingSheet   = "Ranked Candidates"
	BreakdownSheet = "Score Breakdown"
)

const headerColor = "4472C4"

// Row fill per recommendation label
var labelFill = map[string]string{
	explain.LabelStronglyRecommended: "C6EFCE",
	explain.LabelRecommended:         "E2EFDA",
	explain.LabelWithReservations:    "FFEB9C",
	explain.LabelNotRecommended:      "FFC7CE",
}

var thinBorder = []excelize.Border{
	{Type: "left", Color: "000000", Style: 1},
	{Type: "right", Color: "000000", Style: 1},
	{Type: "top", Color: "000000", Style: 1},
	{Type: "bottom", Color: "000000", Style: 1},
}

// ToExcel writes the result as an .xlsx workbook at path, adding the
// extension when missing. It returns the path written.
func ToExcel(result *types.AnalysisResult, path string) (string, error) {
	if !strings.HasSuffix(strings.ToLower(path), ".xlsx") {
		path += ".xlsx"
	}
	path = filepath.Clean(path)

	f, err := Build(result)
	if err != nil {
		return "", err
	}
	defer func() { _ = f.Close() }()

	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("failed to save workbook %s: %w", path, err)
	}
	return path, nil
}

// Write streams the workbook of result to w
func Write(result *types.AnalysisResult, w io.Writer) error {
	f, err := Build(result)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// Build creates the workbook with its three sheets. The caller closes it.
func Build(result *types.AnalysisResult) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SummarySheet); err != nil {
		_ = f.Close()
		return nil, err
	}
	for _, name := range []string{RankingSheet, BreakdownSheet} {
		if _, err := f.NewSheet(name); err != nil {
			_ = f.Close()
			return nil, err
		}
	}

	s := &sheets{f: f}
	if err := s.styles(); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("failed to create styles: %w", err)
	}

	for _, build := range []struct {
		name string
		fn   func(*types.AnalysisResult) error
	}{
		{SummarySheet, s.summary},
		{RankingSheet, s.ranking},
		{BreakdownSheet, s.breakdown},
	} {
		if err := build.fn(result); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("failed to create %s sheet: %w", build.name, err)
		}
	}
	return f, nil
}

type sheets struct {
	f      *excelize.File
	title  int
	header int
	label  int
	wrap   int
	rows   map[string]int
}

func (s *sheets) styles() error {
	var err error
	if s.title, err = s.f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{headerColor}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "left", Vertical: "center"},
	}); err != nil {
		return err
	}
	if s.header, err = s.f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{headerColor}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    thinBorder,
	}); err != nil {
		return err
	}
	if s.label, err = s.f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err != nil {
		return err
	}
	if s.wrap, err = s.f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"},
		Border:    thinBorder,
	}); err != nil {
		return err
	}

	s.rows = make(map[string]int, len(labelFill))
	for label, color := range labelFill {
		id, err := s.f.NewStyle(&excelize.Style{
			Fill:      excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1},
			Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"},
			Border:    thinBorder,
		})
		if err != nil {
			return err
		}
		s.rows[label] = id
	}
	return nil
}

func cell(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}

// setRow writes values from column A onwards
func (s *sheets) setRow(sheet string, row int, values ...any) error {
	return s.f.SetSheetRow(sheet, cell(1, row), &values)
}

func (s *sheets) headers(sheet string, names ...string) error {
	values := make([]any, len(names))
	for i, n := range names {
		values[i] = n
	}
	if err := s.setRow(sheet, 1, values...); err != nil {
		return err
	}
	return s.f.SetCellStyle(sheet, "A1", cell(len(names), 1), s.header)
}

func (s *sheets) freezeHeader(sheet string) error {
	return s.f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

func (s *sheets) summary(result *types.AnalysisResult) error {
	const sheet = SummarySheet
	if err := s.f.SetColWidth(sheet, "A", "A", 28); err != nil {
		return err
	}
	if err := s.f.SetColWidth(sheet, "B", "B", 50); err != nil {
		return err
	}

	if err := s.f.SetCellValue(sheet, "A1", "Relatório de Análise de Candidatos"); err != nil {
		return err
	}
	if err := s.f.MergeCell(sheet, "A1", "B1"); err != nil {
		return err
	}
	if err := s.f.SetCellStyle(sheet, "A1", "B1", s.title); err != nil {
		return err
	}

	job := "-"
	if result.Job != nil {
		job = result.Job.Title
	}
	rows := [][2]any{
		{"Vaga", job},
		{"Análise", result.ID.String()},
		{"Data", result.AnalyzedAt.Format("2006-01-02 15:04:05")},
		{"Candidatos ranqueados", len(result.Candidates)},
		{"Arquivos com falha", len(result.Failures)},
		{"Requisitos", result.Summary.Total},
	}
	for _, imp := range []types.Importance{types.ImportanceRequired, types.ImportancePreferred, types.ImportanceNiceToHave} {
		rows = append(rows, [2]any{"Requisitos " + string(imp), result.Summary.ByImportance[imp]})
	}
	if len(result.Candidates) > 0 {
		best, worst, total := result.Candidates[0].Score, result.Candidates[0].Score, 0.0
		for _, c := range result.Candidates {
			total += c.Score
			best = max(best, c.Score)
			worst = min(worst, c.Score)
		}
		rows = append(rows,
			[2]any{"Maior pontuação", best},
			[2]any{"Menor pontuação", worst},
			[2]any{"Pontuação média", types.Round(total/float64(len(result.Candidates)), 2)},
		)
	}
	if result.LLMProvider != "" {
		rows = append(rows, [2]any{"Provedor LLM", result.LLMProvider})
	}

	row := 3
	for _, r := range rows {
		if err := s.setRow(sheet, row, r[0], r[1]); err != nil {
			return err
		}
		if err := s.f.SetCellStyle(sheet, cell(1, row), cell(1, row), s.label); err != nil {
			return err
		}
		row++
	}

	for i, fail := range result.Failures {
		if i == 0 {
			row++
			if err := s.setRow(sheet, row, "Falhas"); err != nil {
				return err
			}
			if err := s.f.SetCellStyle(sheet, cell(1, row), cell(1, row), s.label); err != nil {
				return err
			}
			row++
		}
		if err := s.setRow(sheet, row, filepath.Base(fail.Path), fail.Error); err != nil {
			return err
		}
		row++
	}
	return nil
}

func (s *sheets) ranking(result *types.AnalysisResult) error {
	const sheet = RankingSheet
	widths := map[string]float64{"A": 8, "B": 28, "C": 12, "D": 26, "E": 12, "F": 12, "G": 40, "H": 30, "I": 70}
	for col, w := range widths {
		if err := s.f.SetColWidth(sheet, col, col, w); err != nil {
			return err
		}
	}
	if err := s.headers(sheet, "Posição", "Candidato", "Pontuação", "Recomendação",
		"Anos de Exp.", "Senioridade", "Hard Skills", "Soft Skills", "Justificativa"); err != nil {
		return err
	}

	for i, r := range result.Results() {
		row := i + 2
		label := explain.RecommendationLabel(r.MatchScore)
		if err := s.setRow(sheet, row,
			r.RankingPosition, r.CandidateName, r.MatchScore, label,
			r.ExperienceYears, r.Seniority,
			strings.Join(r.HardSkills, ", "), strings.Join(r.SoftSkills, ", "),
			r.Explanation,
		); err != nil {
			return err
		}
		if err := s.f.SetCellStyle(sheet, cell(1, row), cell(9, row), s.rows[label]); err != nil {
			return err
		}
	}

	if n := len(result.Candidates); n > 0 {
		if err := s.f.AutoFilter(sheet, "A1:"+cell(9, n+1), nil); err != nil {
			return err
		}
	}
	return s.freezeHeader(sheet)
}

func (s *sheets) breakdown(result *types.AnalysisResult) error {
	const sheet = BreakdownSheet
	if err := s.f.SetColWidth(sheet, "A", "A", 28); err != nil {
		return err
	}
	if err := s.f.SetColWidth(sheet, "B", "G", 14); err != nil {
		return err
	}
	if err := s.f.SetColWidth(sheet, "H", "H", 50); err != nil {
		return err
	}
	if err := s.headers(sheet, "Candidato", "Hard Skills", "Soft Skills", "Experiência",
		"Formação", "Total", "Confiança", "Detalhe Hard Skills"); err != nil {
		return err
	}

	for i, c := range result.Candidates {
		row := i + 2
		b := c.ScoreBreakdown
		var confidence any = "-"
		if c.Quality != nil {
			confidence = c.Quality.Confidence
		}
		if err := s.setRow(sheet, row,
			c.Name, b.HardSkills, b.SoftSkills, b.Experience, b.Education, b.Total(),
			confidence, detail(b.HardSkillsDetail),
		); err != nil {
			return err
		}
		if err := s.f.SetCellStyle(sheet, cell(1, row), cell(8, row), s.wrap); err != nil {
			return err
		}
	}
	return s.freezeHeader(sheet)
}

// detail renders per-skill values as "skill: value" sorted by skill
func detail(values map[string]float64) string {
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = fmt.Sprintf("%s: %.2f", name, values[name])
	}
	return strings.Join(parts, "; ")
}
