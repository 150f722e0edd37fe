package storage

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ucassist-scraper/models"
)

func TestCSVWriterColumnsAreFieldUnion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "services.csv")
	records := []models.ServiceRecord{
		{Key: "k1", URL: "u1", Fields: map[string]string{"Service Name": "A", "Phone": "570-555-0100"}},
		{Key: "k2", URL: "u2", Fields: map[string]string{"Service Name": "B", "Website": "https://b.example"}},
	}

	require.NoError(t, NewCSVWriter(path).Write(records))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, []string{"id", "url", "Phone", "Service Name", "Website"}, rows[0])
	assert.Equal(t, []string{"k1", "u1", "570-555-0100", "A", ""}, rows[1])
	assert.Equal(t, []string{"k2", "u2", "", "B", "https://b.example"}, rows[2])
}

func TestCSVWriterNoRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "services.csv")
	require.NoError(t, NewCSVWriter(path).Write(nil))

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err), "empty input should not create a file")
}
