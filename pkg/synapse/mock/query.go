package mock

import (
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
)

var (
	selectPattern = regexp.MustCompile(`(?i)^\s*select\s+\*\s+from\s+([A-Za-z][A-Za-z0-9]*)(?:\s+where\s+(.+?))?(?:\s+limit\s+(\d+))?(?:\s+offset\s+(\d+))?\s*$`)
	condPattern   = regexp.MustCompile(`^\s*(?:([A-Za-z][A-Za-z0-9]*)\.)?([A-Za-z_][A-Za-z0-9_]*)\s*==\s*(?:"([^"]*)"|(-?[0-9]+(?:\.[0-9]+)?))\s*$`)
	andPattern    = regexp.MustCompile(`(?i)\s+and\s+`)
)

type condition struct {
	field string
	value string
}

type parsedQuery struct {
	kind       string
	conditions []condition
	limit      int
	offset     int
}

// parseQuery accepts
//
//	select * from <kind> [where <field> == <value> [and ...]] [limit N] [offset N]
//
// where a value is a double-quoted string or a number.
func parseQuery(q string) (*parsedQuery, error) {
	m := selectPattern.FindStringSubmatch(q)
	if m == nil {
		return nil, errors.New("unsupported query syntax")
	}
	out := &parsedQuery{kind: m[1]}
	if m[2] != "" {
		for _, clause := range andPattern.Split(m[2], -1) {
			cm := condPattern.FindStringSubmatch(clause)
			if cm == nil {
				return nil, fmt.Errorf("unsupported condition %q", strings.TrimSpace(clause))
			}
			if cm[1] != "" && cm[1] != out.kind {
				return nil, fmt.Errorf("condition %q does not refer to %s", strings.TrimSpace(clause), out.kind)
			}
			value := cm[3]
			if cm[4] != "" {
				value = cm[4]
			}
			out.conditions = append(out.conditions, condition{field: cm[2], value: value})
		}
	}
	out.limit, _ = strconv.Atoi(m[3])
	out.offset, _ = strconv.Atoi(m[4])
	return out, nil
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	q, err := parseQuery(r.URL.Query().Get("query"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	table, ok := s.kinds[q.kind]
	if !ok {
		writeError(w, http.StatusBadRequest, "unknown entity type "+q.kind)
		return
	}

	var matched []*record
	for _, rec := range sortedRecords(table) {
		if q.matches(rec.fields) {
			matched = append(matched, rec)
		}
	}
	rows := make([]any, 0, len(matched))
	for _, rec := range paginate(matched, q.limit, q.offset) {
		row := make(map[string]any, len(rec.fields))
		for k, v := range rec.fields {
			row[q.kind+"."+k] = v
		}
		rows = append(rows, row)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"totalNumberOfResults": len(matched),
		"results":              rows,
	})
}

func (q *parsedQuery) matches(fields map[string]any) bool {
	for _, c := range q.conditions {
		if scalar(fields[c.field]) != c.value {
			return false
		}
	}
	return true
}

func scalar(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	case int:
		return strconv.Itoa(val)
	default:
		return fmt.Sprint(val)
	}
}
