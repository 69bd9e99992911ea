package httpapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

var errBadBody = errors.New("request body must be a JSON object")

// fieldError reports a missing or malformed request field.
type fieldError struct {
	field  string
	reason string
}

func (e *fieldError) Error() string { return e.field + " " + e.reason }

func isFieldError(err error) bool {
	var fe *fieldError
	return errors.As(err, &fe)
}

// fields is a decoded JSON request body. Numeric fields are read lazily so
// each can accept either a JSON number or a numeric string.
type fields map[string]json.RawMessage

func bindFields(c *gin.Context) (fields, error) {
	data, err := c.GetRawData()
	if err != nil {
		return nil, errBadBody
	}
	var f fields
	if err := json.Unmarshal(data, &f); err != nil || f == nil {
		return nil, errBadBody
	}
	return f, nil
}

// int64 reads an integer field. Whole-valued floats and strings holding an
// integer are accepted.
func (f fields) int64(name string) (int64, error) {
	raw, ok := f[name]
	if !ok || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return 0, &fieldError{name, "is required"}
	}
	return parseInt(name, raw)
}

func (f fields) int(name string) (int, error) {
	n, err := f.int64(name)
	if err != nil {
		return 0, err
	}
	if n > math.MaxInt32 || n < math.MinInt32 {
		return 0, &fieldError{name, "is out of range"}
	}
	return int(n), nil
}

// string reads a string field, returning "" when absent or not a string.
func (f fields) string(name string) string {
	var s string
	if raw, ok := f[name]; ok {
		_ = json.Unmarshal(raw, &s)
	}
	return strings.TrimSpace(s)
}

func parseInt(name string, raw json.RawMessage) (int64, error) {
	bad := &fieldError{name, "must be an integer"}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
		if err != nil {
			return 0, bad
		}
		return n, nil
	}

	var num json.Number
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&num); err != nil {
		return 0, bad
	}
	if n, err := num.Int64(); err == nil {
		return n, nil
	}
	fl, err := num.Float64()
	if err != nil || fl != math.Trunc(fl) || fl >= math.MaxInt64 || fl < math.MinInt64 {
		return 0, bad
	}
	return int64(fl), nil
}
