package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"wallet/internal/core"
)

// maxBodyBytes bounds request bodies; an expense is a handful of short fields.
const maxBodyBytes = 64 << 10

// ParseFilterState reads month, category and search from query. A missing
// month defaults to the month of now; an explicitly empty month matches
// every date. A missing or empty category means all categories.
func ParseFilterState(query url.Values, now time.Time) (core.FilterState, error) {
	f := core.DefaultFilterState(now)

	if query.Has("month") {
		f.Month = sanitizeInput(query.Get("month"))
	}

	if v := sanitizeInput(query.Get("category")); v != "" && v != string(core.CategoryAll) {
		c, ok := core.ParseCategory(v)
		if !ok {
			return core.FilterState{}, fmt.Errorf("unknown category %q", v)
		}
		f.Category = c
	}

	// Whitespace is significant: a lone space matches notes containing one.
	f.Search = stripControl(query.Get("search"))
	return f, nil
}

// RequestBodyParser reads a JSON or form-encoded body once and exposes its
// fields as strings.
type RequestBodyParser struct {
	body        []byte
	contentType string
	jsonData    map[string]any
	formData    url.Values
	parsed      bool
	err         error
}

func NewRequestBodyParser(r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{contentType: r.Header.Get("Content-Type")}
	if r.Body != nil {
		p.body, p.err = io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
		if p.err == nil && len(p.body) > maxBodyBytes {
			p.err = fmt.Errorf("request body exceeds %d bytes", maxBodyBytes)
		}
	}
	return p
}

// Parse decodes the body. JSON is detected by content type or by a leading
// brace; anything else is parsed as a form.
func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true

	if p.err != nil {
		return p.err
	}

	trimmed := bytes.TrimSpace(p.body)
	if len(trimmed) == 0 {
		p.formData = url.Values{}
		return nil
	}

	if p.IsJSON() || trimmed[0] == '{' {
		dec := json.NewDecoder(bytes.NewReader(trimmed))
		dec.UseNumber()
		p.jsonData = make(map[string]any)
		if err := dec.Decode(&p.jsonData); err != nil {
			p.jsonData = nil
			p.err = fmt.Errorf("decode json body: %w", err)
			return p.err
		}
		return nil
	}

	p.formData, p.err = url.ParseQuery(string(trimmed))
	return p.err
}

// Get returns a sanitized field value, or "" when absent.
func (p *RequestBodyParser) Get(key string) string {
	if p.jsonData != nil {
		if val, ok := p.jsonData[key]; ok {
			return sanitizeInput(stringValue(val))
		}
		return ""
	}
	if p.formData != nil {
		return sanitizeInput(p.formData.Get(key))
	}
	return ""
}

// IsJSON reports whether the body was declared or decoded as JSON.
func (p *RequestBodyParser) IsJSON() bool {
	return p.jsonData != nil || strings.HasPrefix(strings.ToLower(p.contentType), "application/json")
}

// ExpenseInput maps the body fields onto a candidate expense. Every field,
// the note included, is trimmed and stripped of control characters other
// than tab and newlines before validation, so a stored note may differ from
// the submitted text by those characters.
func (p *RequestBodyParser) ExpenseInput() core.ExpenseInput {
	return core.ExpenseInput{
		Amount:   p.Get("amount"),
		Category: p.Get("category"),
		Date:     p.Get("date"),
		Note:     p.Get("note"),
	}
}

func stringValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case json.Number:
		return val.String()
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}
