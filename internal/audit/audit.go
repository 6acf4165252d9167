// Package audit accumulates per-user removal outcomes in memory and
// persists them as a JSON or CSV log file at the end of a run. Every
// record is simultaneously echoed to a console sink.
package audit

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// Status classifies the outcome of processing one username.
type Status string

const (
	StatusSuccess Status = "SUCCESS"
	StatusFailed  Status = "FAILED"
	StatusSkipped Status = "SKIPPED"
	StatusInvalid Status = "INVALID"
)

// Supported log file formats
const (
	FormatJSON = "json"
	FormatCSV  = "csv"
)

var ErrInvalidFormat = errors.New("invalid log format")

// defaultHeader is the CSV header written when a run produced no records.
var defaultHeader = []string{"timestamp", "username", "status", "error_message"}

// Record is one removal outcome. Extra keys are merged into the
// serialized record at the top level; a colliding extra key overwrites
// the reserved field.
type Record struct {
	Timestamp    string
	Username     string
	Status       Status
	ErrorMessage string
	Extra        map[string]any
}

// fields returns the record's keys in serialization order together with
// the value for each key.
func (r Record) fields() ([]string, map[string]any) {
	keys := []string{"timestamp", "username", "status"}
	values := map[string]any{
		"timestamp": r.Timestamp,
		"username":  r.Username,
		"status":    string(r.Status),
	}

	if r.ErrorMessage != "" {
		keys = append(keys, "error_message")
		values["error_message"] = r.ErrorMessage
	}

	extraKeys := make([]string, 0, len(r.Extra))
	for key := range r.Extra {
		extraKeys = append(extraKeys, key)
	}
	sort.Strings(extraKeys)

	for _, key := range extraKeys {
		if _, reserved := values[key]; !reserved {
			keys = append(keys, key)
		}
		values[key] = r.Extra[key]
	}

	return keys, values
}

// MarshalJSON serializes the record as a flat object: the reserved fields
// first, then the extra keys in sorted order.
func (r Record) MarshalJSON() ([]byte, error) {
	keys, values := r.fields()

	var buf bytes.Buffer
	buf.WriteByte('{')

	for i, key := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}

		k, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')

		v, err := json.Marshal(values[key])
		if err != nil {
			return nil, err
		}
		buf.Write(v)
	}

	buf.WriteByte('}')

	return buf.Bytes(), nil
}

// Log collects removal records for one run. The log file name is fixed at
// construction time, so repeated saves rewrite the same file.
type Log struct {
	format  string
	path    string
	console logrus.FieldLogger
	records []Record
}

// New validates the format, creates the log directory and computes the
// timestamped log file path. format is case-insensitive.
func New(format, dir string, console logrus.FieldLogger) (*Log, error) {
	format = strings.ToLower(format)
	if format != FormatJSON && format != FormatCSV {
		return nil, fmt.Errorf("%w %q, must be one of: json, csv", ErrInvalidFormat, format)
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory %s: %w", dir, err)
	}

	filename := fmt.Sprintf("org_user_removal_%s.%s", time.Now().Format("20060102_150405"), format)

	return &Log{
		format:  format,
		path:    filepath.Join(dir, filename),
		console: console,
		records: []Record{},
	}, nil
}

// Path returns the log file path computed at construction.
func (l *Log) Path() string {
	return l.path
}

// Console returns the console sink shared by this run.
func (l *Log) Console() logrus.FieldLogger {
	return l.console
}

// Records returns the accumulated records in insertion order.
func (l *Log) Records() []Record {
	return l.records
}

// LogRemoval appends a record for the username and echoes a line to the
// console sink: info for SUCCESS and SKIPPED, error for FAILED and
// INVALID.
func (l *Log) LogRemoval(username string, status Status, errorMessage string, extra map[string]any) {
	record := Record{
		Timestamp:    time.Now().Format(time.RFC3339),
		Username:     username,
		Status:       status,
		ErrorMessage: errorMessage,
		Extra:        extra,
	}

	l.records = append(l.records, record)

	message := fmt.Sprintf("%s: %s", username, status)
	if errorMessage != "" {
		message += " - " + errorMessage
	}

	switch status {
	case StatusSuccess, StatusSkipped:
		l.console.Info(message)
	default:
		l.console.Error(message)
	}
}

// Save writes all accumulated records to the log file and returns its
// path. Saving twice rewrites the file with the latest state.
func (l *Log) Save() (string, error) {
	var (
		data []byte
		err  error
	)

	switch l.format {
	case FormatJSON:
		data, err = l.marshalJSON()
	case FormatCSV:
		data, err = l.marshalCSV()
	}
	if err != nil {
		return "", err
	}

	if err := os.WriteFile(l.path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write log file: %w", err)
	}

	l.console.Infof("Log saved to %s", l.path)

	return l.path, nil
}

func (l *Log) marshalJSON() ([]byte, error) {
	data, err := json.MarshalIndent(l.records, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal log records: %w", err)
	}

	return data, nil
}

func (l *Log) marshalCSV() ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if len(l.records) == 0 {
		if err := w.Write(defaultHeader); err != nil {
			return nil, fmt.Errorf("failed to write CSV header: %w", err)
		}
		w.Flush()

		return buf.Bytes(), w.Error()
	}

	// Header is the union of keys across all records, sorted
	union := map[string]bool{}
	rows := make([]map[string]any, 0, len(l.records))
	for _, record := range l.records {
		keys, values := record.fields()
		for _, key := range keys {
			union[key] = true
		}
		rows = append(rows, values)
	}

	header := make([]string, 0, len(union))
	for key := range union {
		header = append(header, key)
	}
	sort.Strings(header)

	if err := w.Write(header); err != nil {
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, values := range rows {
		row := make([]string, 0, len(header))
		for _, key := range header {
			value, ok := values[key]
			if !ok {
				row = append(row, "")
				continue
			}
			row = append(row, fmt.Sprint(value))
		}

		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	w.Flush()

	return buf.Bytes(), w.Error()
}
