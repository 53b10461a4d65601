package services

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/votacontrol/attendance-api/internal/models"
	"github.com/votacontrol/attendance-api/internal/utils"
	"github.com/xuri/excelize/v2"
)

// utf8BOM makes Excel open the CSV as UTF-8.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// voterExportHeader is the fixed column layout shared by the CSV and
// XLSX exports.
var voterExportHeader = []string{
	"id",
	"cedula_votante",
	"nombres",
	"apellidos",
	"puesto_votacion",
	"mesa_votacion",
	"leader_id",
	"leader_nombre",
	"origen",
	"checked_in",
	"checked_in_at",
	"fecha_registro",
}

// ExportService renders voter listings and reports as CSV or XLSX
// bytes. Exports are never capped; callers pass the full result set.
type ExportService struct{}

// NewExportService creates a new ExportService
func NewExportService() *ExportService {
	return &ExportService{}
}

func derefOr(s *string, fallback string) string {
	if s == nil {
		return fallback
	}
	return *s
}

func voterRow(v models.Voter) []string {
	leaderID := ""
	leaderNombre := ""
	if v.LeaderID != nil {
		leaderID = strconv.FormatUint(*v.LeaderID, 10)
	}
	if v.Leader != nil {
		leaderNombre = v.Leader.Nombre()
	}
	checkedIn := "0"
	if v.CheckedIn {
		checkedIn = "1"
	}
	fechaRegistro := v.FechaRegistro
	return []string{
		strconv.FormatUint(v.ID, 10),
		v.CedulaVotante,
		v.Nombres,
		v.Apellidos,
		derefOr(v.DondeVota, ""),
		derefOr(v.MesaVotacion, ""),
		leaderID,
		leaderNombre,
		string(v.Origen),
		checkedIn,
		utils.FormatExport(v.CheckedInAt),
		utils.FormatExport(&fechaRegistro),
	}
}

// VotersCSV renders voters as UTF-8 CSV with a BOM. Fields containing
// commas, quotes or newlines are double-quote escaped by encoding/csv.
func (s *ExportService) VotersCSV(voters []models.Voter) ([]byte, error) {
	var buf bytes.Buffer
	buf.Write(utf8BOM)

	w := csv.NewWriter(&buf)
	if err := w.Write(voterExportHeader); err != nil {
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, v := range voters {
		if err := w.Write(voterRow(v)); err != nil {
			return nil, fmt.Errorf("failed to write CSV row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush CSV: %w", err)
	}
	return buf.Bytes(), nil
}

// VotersXLSX renders voters as a single-sheet workbook.
func (s *ExportService) VotersXLSX(voters []models.Voter, sheetName string) ([]byte, error) {
	if len(sheetName) > 31 {
		sheetName = sheetName[:31]
	}

	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	if err := setStringRow(f, sheetName, 1, voterExportHeader); err != nil {
		return nil, err
	}
	for i, v := range voters {
		if err := setStringRow(f, sheetName, i+2, voterRow(v)); err != nil {
			return nil, err
		}
	}

	if err := f.SetColWidth(sheetName, "A", "L", 18); err != nil {
		return nil, fmt.Errorf("failed to set column widths: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func setStringRow(f *excelize.File, sheet string, row int, values []string) error {
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("failed to build cell name: %w", err)
	}
	if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
		return fmt.Errorf("failed to write row %d: %w", row, err)
	}
	return nil
}

// resumenRows flattens the resumen into labeled key/value pairs in a
// fixed order.
func resumenRows(r Resumen) [][]string {
	return [][]string{
		{"generado", r.Generado},
		{"total_votantes", strconv.FormatInt(r.TotalVotantes, 10)},
		{"total_lideres", strconv.FormatInt(r.TotalLideres, 10)},
		{"independientes", strconv.FormatInt(r.Independientes, 10)},
		{"votantes_precargados", strconv.FormatInt(r.VotantesPrecargados, 10)},
		{"votantes_nuevos", strconv.FormatInt(r.VotantesNuevos, 10)},
		{"lideres_precargados", strconv.FormatInt(r.LideresPrecargados, 10)},
		{"lideres_nuevos", strconv.FormatInt(r.LideresNuevos, 10)},
		{"votantes_confirmados", strconv.FormatInt(r.VotantesConfirmados, 10)},
		{"lideres_confirmados", strconv.FormatInt(r.LideresConfirmados, 10)},
	}
}

// ReportCSV renders the general report as a multi-section CSV.
func (s *ExportService) ReportCSV(report *GeneralReport) ([]byte, error) {
	var buf bytes.Buffer
	buf.Write(utf8BOM)

	w := csv.NewWriter(&buf)
	write := func(row []string) error {
		return w.Write(row)
	}

	if err := write([]string{"REPORTE", "TOTAL"}); err != nil {
		return nil, err
	}
	for _, row := range resumenRows(report.Resumen) {
		if err := write(row); err != nil {
			return nil, err
		}
	}

	if err := write([]string{""}); err != nil {
		return nil, err
	}
	if err := write([]string{"POR LIDER"}); err != nil {
		return nil, err
	}
	if err := write([]string{"lider", "cantidad"}); err != nil {
		return nil, err
	}
	for _, row := range report.PorLider {
		if err := write([]string{row.Label, strconv.FormatInt(row.Count, 10)}); err != nil {
			return nil, err
		}
	}

	if err := write([]string{""}); err != nil {
		return nil, err
	}
	if err := write([]string{"POR COLEGIO"}); err != nil {
		return nil, err
	}
	if err := write([]string{"colegio", "cantidad"}); err != nil {
		return nil, err
	}
	for _, row := range report.PorColegio {
		if err := write([]string{row.Colegio, strconv.FormatInt(row.Count, 10)}); err != nil {
			return nil, err
		}
	}

	if err := write([]string{""}); err != nil {
		return nil, err
	}
	if err := write([]string{"POR MESA"}); err != nil {
		return nil, err
	}
	if err := write([]string{"colegio", "mesa", "cantidad"}); err != nil {
		return nil, err
	}
	for _, row := range report.PorMesa {
		if err := write([]string{row.Colegio, row.Mesa, strconv.FormatInt(row.Count, 10)}); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush CSV: %w", err)
	}
	return buf.Bytes(), nil
}

// ReportXLSX renders the general report as a four-sheet workbook.
func (s *ExportService) ReportXLSX(report *GeneralReport) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheets := []string{"Resumen", "Por Líder", "Por Colegio", "Por Mesa"}
	for i, name := range sheets {
		index, err := f.NewSheet(name)
		if err != nil {
			return nil, fmt.Errorf("failed to create sheet %s: %w", name, err)
		}
		if i == 0 {
			f.SetActiveSheet(index)
		}
	}
	f.DeleteSheet("Sheet1")

	if err := setStringRow(f, "Resumen", 1, []string{"Métrica", "Valor"}); err != nil {
		return nil, err
	}
	for i, row := range resumenRows(report.Resumen) {
		if err := setStringRow(f, "Resumen", i+2, row); err != nil {
			return nil, err
		}
	}
	if err := f.SetColWidth("Resumen", "A", "A", 28); err != nil {
		return nil, err
	}
	if err := f.SetColWidth("Resumen", "B", "B", 18); err != nil {
		return nil, err
	}

	if err := setStringRow(f, "Por Líder", 1, []string{"Líder", "Cantidad"}); err != nil {
		return nil, err
	}
	for i, row := range report.PorLider {
		if err := setStringRow(f, "Por Líder", i+2, []string{row.Label, strconv.FormatInt(row.Count, 10)}); err != nil {
			return nil, err
		}
	}
	if err := f.SetColWidth("Por Líder", "A", "A", 34); err != nil {
		return nil, err
	}
	if err := f.SetColWidth("Por Líder", "B", "B", 14); err != nil {
		return nil, err
	}

	if err := setStringRow(f, "Por Colegio", 1, []string{"Colegio", "Cantidad"}); err != nil {
		return nil, err
	}
	for i, row := range report.PorColegio {
		if err := setStringRow(f, "Por Colegio", i+2, []string{row.Colegio, strconv.FormatInt(row.Count, 10)}); err != nil {
			return nil, err
		}
	}
	if err := f.SetColWidth("Por Colegio", "A", "A", 40); err != nil {
		return nil, err
	}
	if err := f.SetColWidth("Por Colegio", "B", "B", 14); err != nil {
		return nil, err
	}

	if err := setStringRow(f, "Por Mesa", 1, []string{"Colegio", "Mesa", "Cantidad"}); err != nil {
		return nil, err
	}
	for i, row := range report.PorMesa {
		if err := setStringRow(f, "Por Mesa", i+2, []string{row.Colegio, row.Mesa, strconv.FormatInt(row.Count, 10)}); err != nil {
			return nil, err
		}
	}
	if err := f.SetColWidth("Por Mesa", "A", "A", 40); err != nil {
		return nil, err
	}
	if err := f.SetColWidth("Por Mesa", "B", "C", 16); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
