package mock

import (
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
)

var knownKinds = []string{"project", "dataset", "layer", "location", "preview", "user", "userGroup"}

// kinds whose entities expose a locations resource
var locatable = map[string]bool{"dataset": true, "layer": true}

type record struct {
	kind        string
	fields      map[string]any
	annotations map[string]any
	acl         map[string]any
}

func (s *Server) createLocked(kind, id string, fields map[string]any, createdBy string) (*record, error) {
	table := s.kinds[kind]
	if id == "" {
		s.nextID++
		id = strconv.Itoa(s.nextID)
	} else {
		if _, exists := table[id]; exists {
			return nil, errDuplicateID(kind, id)
		}
		if n, err := strconv.Atoi(id); err == nil && n > s.nextID {
			s.nextID = n
		}
	}

	uri := s.repoPrefix + "/" + kind + "/" + id
	now := s.now().UTC().Format(time.RFC3339)
	entity := copyMap(fields)
	entity["id"] = id
	entity["uri"] = uri
	entity["etag"] = uuid.NewString()
	entity["creationDate"] = now
	entity["annotations"] = uri + "/annotations"
	entity["accessControlList"] = uri + "/acl"
	if createdBy != "" {
		entity["createdBy"] = createdBy
	}
	if locatable[kind] {
		entity["locations"] = uri + "/locations"
	}

	rec := &record{
		kind:   kind,
		fields: entity,
		annotations: map[string]any{
			"id":                id,
			"uri":               uri + "/annotations",
			"etag":              uuid.NewString(),
			"creationDate":      now,
			"stringAnnotations": map[string]any{},
			"doubleAnnotations": map[string]any{},
			"longAnnotations":   map[string]any{},
			"dateAnnotations":   map[string]any{},
		},
		acl: map[string]any{
			"id":             id,
			"uri":            uri + "/acl",
			"etag":           uuid.NewString(),
			"creationDate":   now,
			"createdBy":      createdBy,
			"resourceAccess": []any{},
		},
	}
	table[id] = rec
	return rec, nil
}

func (s *Server) serveRepo(w http.ResponseWriter, r *http.Request, parts []string) {
	if len(parts) == 0 {
		writeError(w, http.StatusNotFound, "no resource")
		return
	}
	if r.Method != http.MethodGet && !s.authorized(r) {
		writeError(w, http.StatusForbidden, "a valid session token is required")
		return
	}

	switch parts[0] {
	case "query":
		if r.Method != http.MethodGet || len(parts) != 1 {
			writeError(w, http.StatusMethodNotAllowed, "query only supports GET")
			return
		}
		s.handleQuery(w, r)
		return
	case "startBackupDaemon", "startRestoreDaemon", "daemonStatus":
		s.serveDaemon(w, r, parts)
		return
	}

	kind := parts[0]
	s.mu.Lock()
	defer s.mu.Unlock()
	table, ok := s.kinds[kind]
	if !ok {
		writeError(w, http.StatusNotFound, "unknown resource "+kind)
		return
	}

	switch len(parts) {
	case 1:
		switch r.Method {
		case http.MethodGet:
			s.listLocked(w, r, kind)
		case http.MethodPost:
			s.createFromRequestLocked(w, r, kind)
		default:
			writeError(w, http.StatusMethodNotAllowed, r.Method+" not allowed on "+kind)
		}
		return
	case 2, 3:
	default:
		writeError(w, http.StatusNotFound, "unknown resource")
		return
	}

	rec, ok := table[parts[1]]
	if !ok {
		writeError(w, http.StatusNotFound, "The resource you are attempting to access cannot be found")
		return
	}
	if len(parts) == 2 {
		s.serveEntityLocked(w, r, rec)
		return
	}

	switch parts[2] {
	case "annotations":
		s.serveSubresourceLocked(w, r, rec.annotations)
	case "acl":
		s.serveSubresourceLocked(w, r, rec.acl)
	case "locations":
		if !locatable[kind] || r.Method != http.MethodGet {
			writeError(w, http.StatusNotFound, "no locations for "+kind)
			return
		}
		s.writeLocationsLocked(w, rec.fields["id"])
	default:
		writeError(w, http.StatusNotFound, "unknown sub-resource "+parts[2])
	}
}

func (s *Server) authorized(r *http.Request) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.sessions[r.Header.Get(sessionTokenHeader)]
	return ok
}

func (s *Server) createFromRequestLocked(w http.ResponseWriter, r *http.Request, kind string) {
	var fields map[string]any
	if err := decodeBody(r.Body, &fields); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if fields == nil {
		writeError(w, http.StatusBadRequest, "entity body is required")
		return
	}
	for _, key := range []string{"id", "uri", "etag"} {
		delete(fields, key)
	}
	rec, err := s.createLocked(kind, "", fields, s.sessions[r.Header.Get(sessionTokenHeader)])
	if err != nil {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, rec.fields)
}

func (s *Server) listLocked(w http.ResponseWriter, r *http.Request, kind string) {
	rows := sortedRecords(s.kinds[kind])
	limit, offset := pageParams(r)
	page := make([]any, 0, len(rows))
	for _, rec := range paginate(rows, limit, offset) {
		page = append(page, rec.fields)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"totalNumberOfResults": len(rows),
		"results":              page,
	})
}

func (s *Server) serveEntityLocked(w http.ResponseWriter, r *http.Request, rec *record) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, rec.fields)
	case http.MethodPut:
		var body map[string]any
		if !s.checkWrite(w, r, rec.fields, &body) {
			return
		}
		for _, key := range []string{"id", "uri", "etag", "creationDate", "createdBy", "annotations", "accessControlList", "locations"} {
			if v, ok := rec.fields[key]; ok {
				body[key] = v
			} else {
				delete(body, key)
			}
		}
		body["etag"] = uuid.NewString()
		rec.fields = body
		writeJSON(w, http.StatusOK, rec.fields)
	case http.MethodDelete:
		delete(s.kinds[rec.kind], rec.fields["id"].(string))
		w.WriteHeader(http.StatusNoContent)
	default:
		writeError(w, http.StatusMethodNotAllowed, r.Method+" not allowed")
	}
}

func (s *Server) serveSubresourceLocked(w http.ResponseWriter, r *http.Request, resource map[string]any) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, resource)
	case http.MethodPut:
		var body map[string]any
		if !s.checkWrite(w, r, resource, &body) {
			return
		}
		for key, value := range body {
			switch key {
			case "id", "uri", "etag", "creationDate":
				continue
			}
			resource[key] = value
		}
		resource["etag"] = uuid.NewString()
		writeJSON(w, http.StatusOK, resource)
	default:
		writeError(w, http.StatusMethodNotAllowed, r.Method+" not allowed")
	}
}

// checkWrite decodes the PUT body and enforces the ETag precondition.
func (s *Server) checkWrite(w http.ResponseWriter, r *http.Request, current map[string]any, body *map[string]any) bool {
	if err := decodeBody(r.Body, body); err != nil || *body == nil {
		writeError(w, http.StatusBadRequest, "entity body is required")
		return false
	}
	if etag := r.Header.Get("ETag"); etag == "" || etag != current["etag"] {
		writeError(w, http.StatusPreconditionFailed, "object has been updated since last retrieval")
		return false
	}
	return true
}

func (s *Server) writeLocationsLocked(w http.ResponseWriter, parentID any) {
	var results []any
	for _, rec := range sortedRecords(s.kinds["location"]) {
		if scalar(rec.fields["parentId"]) == scalar(parentID) {
			results = append(results, rec.fields)
		}
	}
	if results == nil {
		results = []any{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"totalNumberOfResults": len(results),
		"results":              results,
	})
}

func sortedRecords(table map[string]*record) []*record {
	rows := make([]*record, 0, len(table))
	for _, rec := range table {
		rows = append(rows, rec)
	}
	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i].fields["id"].(string), rows[j].fields["id"].(string)
		ai, aErr := strconv.Atoi(a)
		bi, bErr := strconv.Atoi(b)
		if aErr == nil && bErr == nil {
			return ai < bi
		}
		return a < b
	})
	return rows
}

func pageParams(r *http.Request) (limit, offset int) {
	q := r.URL.Query()
	limit, _ = strconv.Atoi(q.Get("limit"))
	offset, _ = strconv.Atoi(q.Get("offset"))
	return limit, offset
}

func paginate(rows []*record, limit, offset int) []*record {
	if offset > 0 {
		// offsets are 1-based on the service
		offset--
	}
	if offset >= len(rows) {
		return nil
	}
	rows = rows[offset:]
	if limit > 0 && limit < len(rows) {
		rows = rows[:limit]
	}
	return rows
}

func copyMap(src map[string]any) map[string]any {
	dst := make(map[string]any, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

type duplicateIDError struct {
	kind, id string
}

func (e duplicateIDError) Error() string {
	return "mock: " + e.kind + " " + e.id + " already exists"
}

func errDuplicateID(kind, id string) error {
	return duplicateIDError{kind: kind, id: id}
}
