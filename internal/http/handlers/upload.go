package handlers

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"

	"github.com/salespulse/backend/internal/models"
)

// batchFields maps multipart field names onto RawData batches, in upload
// order. Trips is the only required file.
var batchFields = []string{"trips", "quotes", "passthroughs", "hot_pass", "bookings", "non_converted"}

type ImportSummary struct {
	DatasetID string         `json:"dataset_id"`
	RowCounts map[string]int `json:"row_counts"`
	Teams     int            `json:"teams"`
	Seniors   int            `json:"seniors"`
	Errors    []string       `json:"errors"`
}

// @Summary Import export files
// @Description Upload trips, quotes, passthroughs, hot_pass, bookings and non_converted exports (.csv or .xlsx) plus optional team/seniority rosters
// @Tags import
// @Accept multipart/form-data
// @Produce json
// @Param trips formData file true "trips export"
// @Success 200 {object} ImportSummary
// @Failure 400 {object} map[string]any
// @Router /api/import [post]
func (h *Handler) Import(c *gin.Context) {
	summary := ImportSummary{RowCounts: map[string]int{}, Errors: []string{}}

	var data models.RawData
	targets := map[string]*[]models.Row{
		"trips":         &data.Trips,
		"quotes":        &data.Quotes,
		"passthroughs":  &data.Passthroughs,
		"hot_pass":      &data.HotPass,
		"bookings":      &data.Bookings,
		"non_converted": &data.NonConverted,
	}

	for _, field := range batchFields {
		file, err := c.FormFile(field)
		if err != nil {
			if field == "trips" {
				writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "trips file required", nil)
				return
			}
			continue
		}
		rows, errs := parseRowsFile(file)
		for _, e := range errs {
			summary.Errors = append(summary.Errors, field+": "+e)
		}
		*targets[field] = rows
		summary.RowCounts[field] = len(rows)
	}

	if len(summary.Errors) > 0 {
		writeError(c, http.StatusBadRequest, "PARSE_ERROR", "Export validation errors", summary.Errors)
		return
	}

	teams, seniors, errs := h.parseRosters(c)
	if len(errs) > 0 {
		writeError(c, http.StatusBadRequest, "PARSE_ERROR", "Roster validation errors", errs)
		return
	}

	d := h.Store.CreateDataset(data, teams, seniors, h.now())
	summary.DatasetID = d.ID
	summary.Teams = len(teams)
	summary.Seniors = len(seniors)

	h.Logger.Info().Str("dataset_id", d.ID).Interface("row_counts", summary.RowCounts).Msg("dataset imported")
	c.JSON(http.StatusOK, summary)
}

// parseRosters reads the optional teams / senior_agents uploads. Each may
// arrive as a CSV file or as a JSON form value.
func (h *Handler) parseRosters(c *gin.Context) (map[string][]string, []string, []string) {
	var errs []string

	teams := map[string][]string{}
	if file, err := c.FormFile("teams"); err == nil {
		parsed, perrs := parseTeamsCSV(file)
		teams = parsed
		errs = append(errs, perrs...)
	} else if raw := c.PostForm("teams"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &teams); err != nil {
			errs = append(errs, "teams: invalid JSON")
		}
	}

	var seniors []string
	if file, err := c.FormFile("senior_agents"); err == nil {
		parsed, perrs := parseNamesCSV(file)
		seniors = parsed
		errs = append(errs, perrs...)
	} else if raw := c.PostForm("senior_agents"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &seniors); err != nil {
			errs = append(errs, "senior_agents: invalid JSON")
		}
	}

	return teams, seniors, errs
}

// parseRowsFile turns one uploaded export into generic rows. The first line
// is the header; column names are kept verbatim apart from BOM stripping and
// trimming so the analytics locator sees what the department exported.
func parseRowsFile(file *multipart.FileHeader) ([]models.Row, []string) {
	switch strings.ToLower(filepath.Ext(file.Filename)) {
	case ".csv":
		return parseRowsCSV(file)
	case ".xlsx":
		return parseRowsXLSX(file)
	default:
		return nil, []string{fmt.Sprintf("%s: unsupported file type (want .csv or .xlsx)", file.Filename)}
	}
}

func parseRowsCSV(file *multipart.FileHeader) ([]models.Row, []string) {
	f, err := file.Open()
	if err != nil {
		return nil, []string{err.Error()}
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1
	headers, err := reader.Read()
	if err != nil {
		return nil, []string{"failed to read header"}
	}
	headers = cleanHeaders(headers)

	var errs []string
	var out []models.Row
	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			errs = append(errs, err.Error())
			continue
		}
		if row := recordToRow(headers, rec); row != nil {
			out = append(out, row)
		}
	}
	return out, errs
}

func parseRowsXLSX(file *multipart.FileHeader) ([]models.Row, []string) {
	f, err := file.Open()
	if err != nil {
		return nil, []string{err.Error()}
	}
	defer f.Close()

	wb, err := excelize.OpenReader(f)
	if err != nil {
		return nil, []string{"failed to open workbook"}
	}
	defer wb.Close()

	sheets := wb.GetSheetList()
	if len(sheets) == 0 {
		return nil, []string{"workbook has no sheets"}
	}
	// serial date-numbers must survive as raw values for the normalizer
	rows, err := wb.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, []string{err.Error()}
	}
	if len(rows) == 0 {
		return nil, nil
	}

	headers := cleanHeaders(rows[0])
	var out []models.Row
	for _, rec := range rows[1:] {
		if row := recordToRow(headers, rec); row != nil {
			out = append(out, row)
		}
	}
	return out, nil
}

func cleanHeaders(headers []string) []string {
	out := make([]string, len(headers))
	for i, hd := range headers {
		out[i] = strings.TrimSpace(strings.ReplaceAll(hd, "\uFEFF", ""))
	}
	return out
}

// recordToRow maps one record onto its headers, returning nil for rows with
// no content at all (trailing blank lines in exports are routine).
func recordToRow(headers []string, rec []string) models.Row {
	row := models.Row{}
	empty := true
	for i, header := range headers {
		if header == "" {
			continue
		}
		var v string
		if i < len(rec) {
			v = strings.TrimSpace(rec[i])
		}
		row[header] = v
		if v != "" {
			empty = false
		}
	}
	if empty {
		return nil
	}
	return row
}

// parseTeamsCSV reads a two-column team,agent roster.
func parseTeamsCSV(file *multipart.FileHeader) (map[string][]string, []string) {
	records, errs := readAllCSV(file)
	teams := map[string][]string{}
	for i, rec := range records {
		if len(rec) < 2 {
			errs = append(errs, fmt.Sprintf("teams row %d: want team,agent", i+1))
			continue
		}
		team := strings.TrimSpace(rec[0])
		agent := strings.TrimSpace(rec[1])
		if i == 0 && strings.EqualFold(team, "team") {
			continue // header row
		}
		if team == "" || agent == "" {
			continue
		}
		teams[team] = append(teams[team], agent)
	}
	return teams, errs
}

// parseNamesCSV reads a one-name-per-line roster.
func parseNamesCSV(file *multipart.FileHeader) ([]string, []string) {
	records, errs := readAllCSV(file)
	var names []string
	for i, rec := range records {
		if len(rec) == 0 {
			continue
		}
		name := strings.TrimSpace(rec[0])
		if i == 0 && (strings.EqualFold(name, "name") || strings.EqualFold(name, "agent")) {
			continue
		}
		if name != "" {
			names = append(names, name)
		}
	}
	return names, errs
}

func readAllCSV(file *multipart.FileHeader) ([][]string, []string) {
	f, err := file.Open()
	if err != nil {
		return nil, []string{err.Error()}
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1
	var out [][]string
	var errs []string
	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			errs = append(errs, err.Error())
			continue
		}
		out = append(out, rec)
	}
	return out, errs
}
