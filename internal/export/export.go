// Package export flattens board issues into the task report and writes it as a
// spreadsheet or CSV.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	"issueboard/internal/board"
	"issueboard/internal/model"
)

const (
	SheetName  = "Tasks"
	TimeLayout = "2006-01-02 15:04:05"
)

// Header is the fixed column order of the report.
var Header = []string{
	"Issue Key",
	"Summary",
	"Description",
	"Status",
	"Internal Priority",
	"Client Priority",
	"Assignee",
	"Planned (days)",
	"Actual (days)",
	"Exposed to client",
	"Created",
}

// Row is one issue of the report. Missing optional values are empty strings.
type Row struct {
	Key              string `json:"issue_key"`
	Summary          string `json:"summary"`
	Description      string `json:"description"`
	Status           string `json:"status"`
	InternalPriority string `json:"internal_priority"`
	ClientPriority   string `json:"client_priority"`
	Assignee         string `json:"assignee"`
	Planned          string `json:"planned_days"`
	Actual           string `json:"actual_days"`
	Exposed          string `json:"exposed_to_client"`
	Created          string `json:"created"`
}

func (r Row) Values() []string {
	return []string{
		r.Key, r.Summary, r.Description, r.Status, r.InternalPriority, r.ClientPriority,
		r.Assignee, r.Planned, r.Actual, r.Exposed, r.Created,
	}
}

// Project maps issues to rows one-to-one and in order. Timestamps are shown in loc
// (UTC when nil).
func Project(issues []model.Issue, loc *time.Location) []Row {
	if loc == nil {
		loc = time.UTC
	}
	rows := make([]Row, len(issues))
	for i, is := range issues {
		rows[i] = Row{
			Key:              is.Key,
			Summary:          is.Summary,
			Description:      is.Description,
			Status:           is.Status.Label(),
			InternalPriority: string(is.InternalPriority),
			Assignee:         is.AssigneeEmail(),
			Planned:          optInt(is.EstimatedDays),
			Actual:           optInt(is.ActualDays),
			Exposed:          "No",
		}
		if is.ClientPriority != nil {
			rows[i].ClientPriority = string(*is.ClientPriority)
		}
		if is.ExposedToClient {
			rows[i].Exposed = "Yes"
		}
		if !is.CreatedAt.IsZero() {
			rows[i].Created = is.CreatedAt.In(loc).Format(TimeLayout)
		}
	}
	return rows
}

func optInt(n *int) string {
	if n == nil {
		return ""
	}
	return strconv.Itoa(*n)
}

// WriteXLSX writes a workbook with a single Tasks sheet: the header, then one row per entry.
// Day counts are stored as numbers.
func WriteXLSX(w io.Writer, rows []Row) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("xlsx sheet: %w", err)
	}
	header := make([]any, len(Header))
	for i, h := range Header {
		header[i] = h
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("xlsx header: %w", err)
	}
	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := r.Values()
		cells := make([]any, len(values))
		for j, v := range values {
			cells[j] = v
		}
		for _, j := range []int{7, 8} {
			if n, err := strconv.Atoi(values[j]); err == nil {
				cells[j] = n
			}
		}
		if err := f.SetSheetRow(SheetName, cell, &cells); err != nil {
			return fmt.Errorf("xlsx row %d: %w", i+1, err)
		}
	}
	if err := f.SetColWidth(SheetName, "A", "K", 18); err != nil {
		return fmt.Errorf("xlsx column width: %w", err)
	}
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}

// WriteCSV writes the same columns as WriteXLSX.
func WriteCSV(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}
	for _, r := range rows {
		if err := cw.Write(r.Values()); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// FileName is the download name of the workbook for a project key.
func FileName(projectKey string) string {
	if projectKey == "" {
		projectKey = "project"
	}
	return "tasks_" + projectKey + ".xlsx"
}

// Summary is the confirmation line shown before exporting.
func Summary(count int, projectKey string, f board.Filter) string {
	noun := "tasks"
	if count == 1 {
		noun = "task"
	}
	s := fmt.Sprintf("Exporting %d %s for project %s", count, noun, projectKey)
	if f.Status != "" && f.Status != board.StatusAll {
		s += " with status " + model.Status(f.Status).Label()
	}
	return s + "."
}
