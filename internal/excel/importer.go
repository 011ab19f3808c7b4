package excel

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/shershah1024/luna-student-v-5-sub005/internal/database"
	"github.com/shershah1024/luna-student-v-5-sub005/pkg/models"
)

// ImportConfig defines the import configuration
type ImportConfig struct {
	FilePath          string // Path to the Excel or CSV file
	TaskID            string // Task the word list belongs to
	CourseID          string // Course the task belongs to
	Title             string // Task title
	Language          string // Task language
	TermColumn        string // Column with the term
	TranslationColumn string // Column with the translation
	SheetName         string // Name of the sheet to import
	StartRow          int    // The row to start importing from (1-based index)
}

// DefaultImportConfig returns the default import configuration
func DefaultImportConfig() ImportConfig {
	return ImportConfig{
		TermColumn:        "A",
		TranslationColumn: "B",
		SheetName:         "Sheet1",
		StartRow:          2, // By default, start from the second row (skip header)
	}
}

// ImportResult holds the result of an import operation
type ImportResult struct {
	TotalProcessed int
	Imported       int
	Skipped        int
	Errors         []string
}

// Importer loads canonical word lists into the content store.
type Importer struct {
	tasks *database.TaskRepository
}

// NewImporter creates an importer writing through the given repository.
func NewImporter(tasks *database.TaskRepository) *Importer {
	return &Importer{tasks: tasks}
}

// ImportWordList imports a task word list from an Excel or CSV file.
func (im *Importer) ImportWordList(ctx context.Context, config ImportConfig) (*ImportResult, error) {
	if config.TaskID == "" {
		return nil, fmt.Errorf("task id is required for import")
	}

	var rows [][]string
	var err error
	if strings.ToLower(filepath.Ext(config.FilePath)) == ".csv" {
		rows, err = readCSV(config.FilePath)
	} else {
		rows, err = readExcel(config)
	}
	if err != nil {
		return nil, err
	}

	task := &models.Task{
		ID:       config.TaskID,
		CourseID: config.CourseID,
		Title:    config.Title,
		Language: config.Language,
	}
	if err := im.tasks.Upsert(ctx, task); err != nil {
		return nil, err
	}

	termIdx := columnToIndex(config.TermColumn)
	translationIdx := columnToIndex(config.TranslationColumn)

	result := &ImportResult{Errors: make([]string, 0)}
	position := 0
	for i, row := range rows {
		// Skip header rows
		if i < config.StartRow-1 {
			continue
		}
		result.TotalProcessed++

		var term, translation string
		if termIdx < len(row) {
			term = strings.TrimSpace(row[termIdx])
		}
		if translationIdx < len(row) {
			translation = strings.TrimSpace(row[translationIdx])
		}
		if term == "" {
			result.Skipped++
			continue
		}

		word := &models.TaskWord{
			TaskID:      config.TaskID,
			Term:        term,
			Translation: translation,
			Position:    position,
		}
		if err := im.tasks.AddWord(ctx, word); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", i+1, err))
			continue
		}
		position++
		result.Imported++
	}
	return result, nil
}

// readExcel loads all rows of the configured sheet.
func readExcel(config ImportConfig) ([][]string, error) {
	f, err := excelize.OpenFile(config.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(config.SheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to get rows: %w", err)
	}
	return rows, nil
}

// readCSV loads all rows of a CSV file.
func readCSV(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1 // Allow variable number of fields
	reader.LazyQuotes = true

	var rows [][]string
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading CSV: %w", err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// columnToIndex converts a spreadsheet column letter ("A", "B", ..., "AA")
// into a zero-based index.
func columnToIndex(column string) int {
	column = strings.ToUpper(strings.TrimSpace(column))
	index := 0
	for _, c := range column {
		if c < 'A' || c > 'Z' {
			return 0
		}
		index = index*26 + int(c-'A'+1)
	}
	if index == 0 {
		return 0
	}
	return index - 1
}
