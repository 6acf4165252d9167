package audit

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestLog builds a Log backed by a null console sink and returns the
// hook capturing console output.
func newTestLog(t *testing.T, format string) (*Log, *logtest.Hook) {
	t.Helper()

	console, hook := logtest.NewNullLogger()

	log, err := New(format, t.TempDir(), console)
	require.NoError(t, err)

	return log, hook
}

func TestNew(t *testing.T) {
	console, _ := logtest.NewNullLogger()

	t.Run("json format", func(t *testing.T) {
		log, err := New("json", t.TempDir(), console)
		require.NoError(t, err)
		assert.Regexp(t, regexp.MustCompile(`^org_user_removal_\d{8}_\d{6}\.json$`), filepath.Base(log.Path()))
	})

	t.Run("csv format", func(t *testing.T) {
		log, err := New("csv", t.TempDir(), console)
		require.NoError(t, err)
		assert.Regexp(t, regexp.MustCompile(`^org_user_removal_\d{8}_\d{6}\.csv$`), filepath.Base(log.Path()))
	})

	t.Run("format is case-insensitive", func(t *testing.T) {
		log, err := New("JSON", t.TempDir(), console)
		require.NoError(t, err)
		assert.True(t, strings.HasSuffix(log.Path(), ".json"))
	})

	t.Run("invalid format", func(t *testing.T) {
		_, err := New("xml", t.TempDir(), console)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInvalidFormat)
	})

	t.Run("creates log directory", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "nested", "logs")

		_, err := New("json", dir, console)
		require.NoError(t, err)

		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	})
}

func TestLogRemovalConsoleLevels(t *testing.T) {
	log, hook := newTestLog(t, "json")

	log.LogRemoval("alice", StatusSuccess, "", nil)
	log.LogRemoval("bob", StatusFailed, "boom", nil)
	log.LogRemoval("carol", StatusSkipped, "", nil)
	log.LogRemoval("dave", StatusInvalid, "Invalid username format: 'dave!'", nil)

	entries := hook.AllEntries()
	require.Len(t, entries, 4)

	assert.Equal(t, logrus.InfoLevel, entries[0].Level)
	assert.Equal(t, "alice: SUCCESS", entries[0].Message)

	assert.Equal(t, logrus.ErrorLevel, entries[1].Level)
	assert.Equal(t, "bob: FAILED - boom", entries[1].Message)

	assert.Equal(t, logrus.InfoLevel, entries[2].Level)
	assert.Equal(t, "carol: SKIPPED", entries[2].Message)

	assert.Equal(t, logrus.ErrorLevel, entries[3].Level)
	assert.Equal(t, "dave: INVALID - Invalid username format: 'dave!'", entries[3].Message)
}

func TestSaveJSONRoundTrip(t *testing.T) {
	log, _ := newTestLog(t, "json")

	log.LogRemoval("user1", StatusSuccess, "", nil)
	log.LogRemoval("user2", StatusFailed, "User not found", nil)
	log.LogRemoval("user3", StatusSkipped, "", map[string]any{"reason": "skip"})

	path, err := log.Save()
	require.NoError(t, err)
	assert.Equal(t, log.Path(), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	// Pretty-printed array
	assert.True(t, strings.HasPrefix(string(data), "[\n  {"))

	var records []map[string]any
	require.NoError(t, json.Unmarshal(data, &records))
	require.Len(t, records, 3)

	// Insertion order preserved
	assert.Equal(t, "user1", records[0]["username"])
	assert.Equal(t, "user2", records[1]["username"])
	assert.Equal(t, "user3", records[2]["username"])

	assert.Equal(t, "SUCCESS", records[0]["status"])
	_, hasError := records[0]["error_message"]
	assert.False(t, hasError)

	assert.Equal(t, "FAILED", records[1]["status"])
	assert.Equal(t, "User not found", records[1]["error_message"])

	// Extra data lands as a top-level key
	assert.Equal(t, "SKIPPED", records[2]["status"])
	assert.Equal(t, "skip", records[2]["reason"])

	for _, record := range records {
		assert.NotEmpty(t, record["timestamp"])
	}
}

func TestSaveJSONEmpty(t *testing.T) {
	log, _ := newTestLog(t, "json")

	path, err := log.Save()
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))
}

func TestSaveCSVZeroRecords(t *testing.T) {
	log, _ := newTestLog(t, "csv")

	path, err := log.Save()
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "timestamp,username,status,error_message\n", string(data))
}

func TestSaveCSVUnionHeader(t *testing.T) {
	log, _ := newTestLog(t, "csv")

	log.LogRemoval("user1", StatusSuccess, "", nil)
	log.LogRemoval("user2", StatusFailed, "oops", map[string]any{"attempt": 2})

	path, err := log.Save()
	require.NoError(t, err)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)

	// Union of all keys, sorted alphabetically
	assert.Equal(t, []string{"attempt", "error_message", "status", "timestamp", "username"}, rows[0])

	header := rows[0]
	byKey := func(row []string, key string) string {
		for i, name := range header {
			if name == key {
				return row[i]
			}
		}
		return ""
	}

	// Absent keys are written as empty cells
	assert.Equal(t, "", byKey(rows[1], "attempt"))
	assert.Equal(t, "", byKey(rows[1], "error_message"))
	assert.Equal(t, "user1", byKey(rows[1], "username"))

	assert.Equal(t, "2", byKey(rows[2], "attempt"))
	assert.Equal(t, "oops", byKey(rows[2], "error_message"))
	assert.Equal(t, "FAILED", byKey(rows[2], "status"))
}

func TestSaveIsIdempotent(t *testing.T) {
	log, _ := newTestLog(t, "json")

	log.LogRemoval("user1", StatusSuccess, "", nil)

	first, err := log.Save()
	require.NoError(t, err)

	log.LogRemoval("user2", StatusFailed, "boom", nil)

	second, err := log.Save()
	require.NoError(t, err)
	assert.Equal(t, first, second)

	data, err := os.ReadFile(second)
	require.NoError(t, err)

	var records []map[string]any
	require.NoError(t, json.Unmarshal(data, &records))

	// Rewritten, not appended: latest state only
	assert.Len(t, records, 2)
}

func TestRecordExtraOverwritesReservedField(t *testing.T) {
	record := Record{
		Timestamp:    "2026-01-02T15:04:05Z",
		Username:     "alice",
		Status:       StatusSuccess,
		ErrorMessage: "",
		Extra:        map[string]any{"status": "OVERRIDDEN"},
	}

	data, err := json.Marshal(record)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, "OVERRIDDEN", decoded["status"])
	assert.Len(t, decoded, 3)
}
