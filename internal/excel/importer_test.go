package excel_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shershah1024/luna-student-v-5-sub005/internal/database"
	"github.com/shershah1024/luna-student-v-5-sub005/internal/excel"
)

func newTestRepo(t *testing.T) *database.TaskRepository {
	t.Helper()
	db, err := database.Connect(database.Options{Driver: "sqlite3", DSN: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return database.NewTaskRepository(db)
}

func writeTempCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "words.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestImportWordListFromCSV(t *testing.T) {
	tasks := newTestRepo(t)

	path := writeTempCSV(t, "term,translation\nhaus,house\nbaum,tree\nauto,car\n")

	cfg := excel.DefaultImportConfig()
	cfg.FilePath = path
	cfg.TaskID = "t1"
	cfg.CourseID = "c1"

	importer := excel.NewImporter(tasks)
	result, err := importer.ImportWordList(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, 3, result.TotalProcessed)
	assert.Equal(t, 3, result.Imported)
	assert.Empty(t, result.Errors)

	words, err := tasks.GetWordList(context.Background(), "t1")
	require.NoError(t, err)
	require.Len(t, words, 3)
	assert.Equal(t, "haus", words[0].Term)
	assert.Equal(t, "house", words[0].Translation)
	assert.Equal(t, "auto", words[2].Term)

	task, err := tasks.Get(context.Background(), "t1")
	require.NoError(t, err)
	assert.Equal(t, "c1", task.CourseID)
}

func TestImportSkipsRowsWithoutTerm(t *testing.T) {
	tasks := newTestRepo(t)

	path := writeTempCSV(t, "term,translation\nhaus,house\n,orphaned\n")

	cfg := excel.DefaultImportConfig()
	cfg.FilePath = path
	cfg.TaskID = "t1"

	importer := excel.NewImporter(tasks)
	result, err := importer.ImportWordList(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, 2, result.TotalProcessed)
	assert.Equal(t, 1, result.Imported)
	assert.Equal(t, 1, result.Skipped)
}

func TestImportIsRepeatable(t *testing.T) {
	tasks := newTestRepo(t)

	path := writeTempCSV(t, "term,translation\nhaus,house\n")

	cfg := excel.DefaultImportConfig()
	cfg.FilePath = path
	cfg.TaskID = "t1"

	importer := excel.NewImporter(tasks)
	_, err := importer.ImportWordList(context.Background(), cfg)
	require.NoError(t, err)
	_, err = importer.ImportWordList(context.Background(), cfg)
	require.NoError(t, err)

	words, err := tasks.GetWordList(context.Background(), "t1")
	require.NoError(t, err)
	assert.Len(t, words, 1)
}

func TestImportRequiresTaskID(t *testing.T) {
	tasks := newTestRepo(t)

	cfg := excel.DefaultImportConfig()
	cfg.FilePath = "whatever.csv"

	importer := excel.NewImporter(tasks)
	_, err := importer.ImportWordList(context.Background(), cfg)
	assert.Error(t, err)
}
