package synapse

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Service selects one of the two endpoints a Client is bound to.
type Service int

const (
	// Repository is the service holding projects, datasets, layers, ...
	Repository Service = iota + 1
	// Authentication is the service issuing session tokens.
	Authentication
)

func (s Service) String() string {
	switch s {
	case Repository:
		return "repository"
	case Authentication:
		return "authentication"
	default:
		return fmt.Sprintf("service(%d)", int(s))
	}
}

// ResourceKind selects how Update merges a partial entity into the stored one.
type ResourceKind int

const (
	// KindEntity overwrites each top-level key of the stored entity.
	KindEntity ResourceKind = iota
	// KindAnnotations merges one level deeper: every top-level value is a
	// key/value bag whose keys are overwritten individually.
	KindAnnotations
)

func (k ResourceKind) String() string {
	switch k {
	case KindEntity:
		return "entity"
	case KindAnnotations:
		return "annotations"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Entity is a schema-flexible JSON object exchanged with the services. Values
// are the types encoding/json produces: nil, bool, float64, string, []any and
// map[string]any.
type Entity map[string]any

// ID returns the "id" field rendered as a string.
func (e Entity) ID() string { return e.String("id") }

// URI returns the "uri" field.
func (e Entity) URI() string { return e.String("uri") }

// ETag returns the "etag" field.
func (e Entity) ETag() string { return e.String("etag") }

// String renders a scalar field as a string; missing or non-scalar fields
// yield "".
func (e Entity) String(key string) string {
	if e == nil {
		return ""
	}
	return scalarString(e[key])
}

// Map returns a nested object field, or nil.
func (e Entity) Map(key string) map[string]any {
	if e == nil {
		return nil
	}
	return asMap(e[key])
}

// Clone returns a deep copy of e.
func (e Entity) Clone() Entity {
	if e == nil {
		return nil
	}
	return Entity(deepCopy(map[string]any(e)).(map[string]any))
}

// QueryResult is the response of the repository's query resource.
type QueryResult struct {
	TotalNumberOfResults int      `json:"totalNumberOfResults"`
	Results              []Entity `json:"results"`
}

// Status values reported by the daemon status resource.
const (
	StatusStarted   = "STARTED"
	StatusCompleted = "COMPLETED"
	StatusFailed    = "FAILED"
)

// OperationStatus describes a backup or restore daemon.
type OperationStatus struct {
	ID              string `mapstructure:"id"`
	Type            string `mapstructure:"type"`
	Status          string `mapstructure:"status"`
	ProgressMessage string `mapstructure:"progresssMessage"`
	ProgressCurrent int64  `mapstructure:"progresssCurrent"`
	ProgressTotal   int64  `mapstructure:"progresssTotal"`
	ErrorMessage    string `mapstructure:"errorMessage"`
	ErrorDetails    string `mapstructure:"errorDetails"`
	BackupURL       string `mapstructure:"backupUrl"`
	TotalTimeMS     int64  `mapstructure:"totalTimeMS"`
	Raw             Entity `mapstructure:"-"`
}

// Running reports whether the daemon has not reached a terminal state.
func (s *OperationStatus) Running() bool {
	return s != nil && s.Status == StatusStarted
}

// Project is a typed view of a project entity.
type Project struct {
	ID          string `mapstructure:"id"`
	Name        string `mapstructure:"name"`
	Description string `mapstructure:"description"`
	ParentID    string `mapstructure:"parentId"`
	ETag        string `mapstructure:"etag"`
	URI         string `mapstructure:"uri"`
	CreatedBy   string `mapstructure:"createdBy"`
	CreatedOn   string `mapstructure:"createdOn"`
	Annotations string `mapstructure:"annotations"`
	ACL         string `mapstructure:"accessControlList"`
}

// Dataset is a typed view of a dataset entity.
type Dataset struct {
	ID          string `mapstructure:"id"`
	Name        string `mapstructure:"name"`
	Description string `mapstructure:"description"`
	Status      string `mapstructure:"status"`
	Version     string `mapstructure:"version"`
	ParentID    string `mapstructure:"parentId"`
	ETag        string `mapstructure:"etag"`
	URI         string `mapstructure:"uri"`
	CreatedBy   string `mapstructure:"createdBy"`
	CreatedOn   string `mapstructure:"createdOn"`
	ReleaseDate string `mapstructure:"releaseDate"`
	Annotations string `mapstructure:"annotations"`
	Layers      string `mapstructure:"layers"`
	Locations   string `mapstructure:"locations"`
}

// Layer is a typed view of a layer entity.
type Layer struct {
	ID         string `mapstructure:"id"`
	Name       string `mapstructure:"name"`
	Type       string `mapstructure:"type"`
	ParentID   string `mapstructure:"parentId"`
	ETag       string `mapstructure:"etag"`
	URI        string `mapstructure:"uri"`
	NumSamples int64  `mapstructure:"numSamples"`
	Locations  string `mapstructure:"locations"`
	Previews   string `mapstructure:"previews"`
}

// Location is a typed view of a location entity.
type Location struct {
	ID          string `mapstructure:"id"`
	ParentID    string `mapstructure:"parentId"`
	Type        string `mapstructure:"type"`
	Path        string `mapstructure:"path"`
	MD5         string `mapstructure:"md5sum"`
	ContentType string `mapstructure:"contentType"`
	ETag        string `mapstructure:"etag"`
	URI         string `mapstructure:"uri"`
}

func scalarString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case json.Number:
		return val.String()
	case bool:
		return strconv.FormatBool(val)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	default:
		return ""
	}
}

func asMap(v any) map[string]any {
	switch m := v.(type) {
	case map[string]any:
		return m
	case Entity:
		return map[string]any(m)
	default:
		return nil
	}
}

func deepCopy(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = deepCopy(item)
		}
		return out
	case Entity:
		return deepCopy(map[string]any(val))
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = deepCopy(item)
		}
		return out
	default:
		return val
	}
}
