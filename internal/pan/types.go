package pan

import (
	"strings"

	"github.com/tidwall/gjson"
)

// Credentials authenticate the merchant account against PAN.
type Credentials struct {
	Username string
	Password string
}

// DateRange bounds a stats report. Dates are YYYY-MM-DD.
type DateRange struct {
	From string
	To   string
}

// ReportRange is the range every stats report is requested for.
// TODO: derive from the request time once reporting periods are configurable.
var ReportRange = DateRange{From: "2024-01-01", To: "2024-12-31"}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type statsRequest struct {
	SessionID string `json:"sessionId"`
	DateFrom  string `json:"dateFrom"`
	DateTo    string `json:"dateTo"`
}

// Row is one commission row of a stats report. Only the commission is
// interpreted; the remaining fields are kept verbatim.
type Row struct {
	data gjson.Result
}

// NewRow wraps the raw JSON of a single row.
func NewRow(raw string) Row {
	return Row{data: gjson.Parse(raw)}
}

// Raw returns the row JSON as received.
func (r Row) Raw() string {
	return r.data.Raw
}

// Commission returns the textual commission value and whether it is usable.
// Strings are returned as-is and numbers in their JSON form. Arrays read as
// their elements joined by commas, so [5] yields "5". Null, missing, booleans
// and objects are reported as absent.
func (r Row) Commission() (string, bool) {
	if !r.data.IsObject() {
		return "", false
	}
	v := r.data.Get("commission")
	switch {
	case v.Type == gjson.String:
		return v.Str, true
	case v.Type == gjson.Number:
		return v.Raw, true
	case v.IsArray():
		return joinArray(v), true
	default:
		return "", false
	}
}

func joinArray(v gjson.Result) string {
	items := v.Array()
	parts := make([]string, len(items))
	for i, item := range items {
		switch {
		case item.Type == gjson.Null:
		case item.Type == gjson.String:
			parts[i] = item.Str
		case item.IsArray():
			parts[i] = joinArray(item)
		case item.IsObject():
			parts[i] = "[object Object]"
		default:
			parts[i] = item.Raw
		}
	}
	return strings.Join(parts, ",")
}
