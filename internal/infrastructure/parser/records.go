package parser

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"strconv"
	"strings"

	"ColdMailer/internal/ports"
)

var (
	fenceExpr = regexp.MustCompile("```(?:json)?")
	arrayExpr = regexp.MustCompile(`(?s)\[\s*\{.*?\}\s*\]`)
)

// ErrNotList is returned when the model answer decodes but is not an array of objects.
var ErrNotList = errors.New("expected a JSON list of objects")

// Record is one decoded object with every value rendered as text.
type Record = map[string]string

// ParseError keeps the original model output for postmortem inspection.
type ParseError struct {
	Raw string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("unable to decode valid JSON: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// RecordParser extracts a list of records from free-form model text.
type RecordParser struct {
	debugPath string
	logger    *slog.Logger
}

var _ ports.OutputParser = (*RecordParser)(nil)

// NewRecordParser writes undecodable output to debugPath when it is set.
func NewRecordParser(debugPath string, log *slog.Logger) *RecordParser {
	return &RecordParser{debugPath: debugPath, logger: log}
}

// Parse strips code fences, tries to decode the whole answer, then falls back
// to the first bracketed array of objects found anywhere in the text.
func (p *RecordParser) Parse(output string) ([]Record, error) {
	cleaned := strings.TrimSpace(fenceExpr.ReplaceAllString(output, ""))

	var decoded any
	err := json.Unmarshal([]byte(cleaned), &decoded)
	if err == nil {
		return toRecords(decoded)
	}

	if match := arrayExpr.FindString(cleaned); match != "" {
		var items []any
		innerErr := json.Unmarshal([]byte(match), &items)
		if innerErr == nil {
			return toRecords(items)
		}
		p.debug("embedded array did not decode", "error", innerErr)
		err = innerErr
	}

	p.dump(output)
	return nil, &ParseError{Raw: output, Err: err}
}

func (p *RecordParser) dump(output string) {
	if p.debugPath == "" {
		return
	}
	if err := os.WriteFile(p.debugPath, []byte(output), 0o644); err != nil && p.logger != nil {
		p.logger.Warn("write debug artifact", "path", p.debugPath, "error", err)
	}
}

func (p *RecordParser) debug(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Debug(msg, args...)
	}
}

func toRecords(decoded any) ([]Record, error) {
	items, ok := decoded.([]any)
	if !ok {
		return nil, fmt.Errorf("%w, got %T", ErrNotList, decoded)
	}

	records := make([]Record, 0, len(items))
	for i, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: item %d is %T", ErrNotList, i, item)
		}
		rec := make(Record, len(obj))
		for k, v := range obj {
			rec[k] = stringify(v)
		}
		records = append(records, rec)
	}
	return records, nil
}

func stringify(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		raw, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(raw)
	}
}
