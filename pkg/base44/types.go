package base44

import (
	"encoding/json"
	"io"
)

// Entity is an untyped record in a named server-side collection. The only
// field the platform guarantees is "id"; "createdAt" and "updatedAt" are set
// by the server when present.
type Entity map[string]interface{}

// ID returns the record identifier, or "" if unset.
func (e Entity) ID() string {
	id, _ := e["id"].(string)

	return id
}

// User represents the identity record behind the built-in User entity.
// Beyond the fixed fields the server may attach arbitrary app-defined data.
type User struct {
	ID          string                 `json:"id"                    yaml:"id"`
	Email       string                 `json:"email,omitempty"       yaml:"email,omitempty"`
	Name        string                 `json:"name,omitempty"        yaml:"name,omitempty"`
	Role        string                 `json:"role,omitempty"        yaml:"role,omitempty"`
	Permissions []string               `json:"permissions,omitempty" yaml:"permissions,omitempty"`
	Preferences map[string]interface{} `json:"preferences,omitempty" yaml:"preferences,omitempty"`
	CreatedAt   string                 `json:"createdAt,omitempty"   yaml:"createdAt,omitempty"`
	UpdatedAt   string                 `json:"updatedAt,omitempty"   yaml:"updatedAt,omitempty"`
}

// QueryFilter maps field names to values or comparison sub-mappings, e.g.
// {"price": {"$gte": 100}}. It is serialized verbatim into the "q" query
// parameter; the SDK never interprets it.
type QueryFilter map[string]interface{}

// ListOptions narrows list and filter calls.
type ListOptions struct {
	// Sort is a field name, optionally "-" prefixed for descending order.
	Sort string
	// Limit caps the number of returned records (0 = server default).
	Limit int
	// Skip offsets into the result set.
	Skip int
	// Fields restricts returned record fields; joined with commas on the wire.
	Fields []string
}

// BulkUpdate pairs a record id with a partial update for BulkUpdate calls.
type BulkUpdate struct {
	ID   string `json:"id"`
	Data Entity `json:"data"`
}

// BulkResult reports the outcome of a bulk create or update.
type BulkResult struct {
	Success bool        `json:"success"          yaml:"success"`
	Created int         `json:"created"          yaml:"created"`
	Failed  int         `json:"failed"           yaml:"failed"`
	Errors  []BulkError `json:"errors,omitempty" yaml:"errors,omitempty"`
}

// BulkError describes one failed element of a bulk operation.
type BulkError struct {
	Index int    `json:"index" yaml:"index"`
	Error string `json:"error" yaml:"error"`
}

// ImportOptions tunes an entity import.
type ImportOptions struct {
	SkipDuplicates bool
	UpdateExisting bool
	// Mapping maps file columns to entity fields; JSON-encoded on the wire.
	Mapping map[string]string
}

// ImportResult reports the outcome of an entity import.
type ImportResult struct {
	Success  bool          `json:"success"          yaml:"success"`
	Imported int           `json:"imported"         yaml:"imported"`
	Skipped  int           `json:"skipped"          yaml:"skipped"`
	Errors   []ImportError `json:"errors,omitempty" yaml:"errors,omitempty"`
}

// ImportError describes one rejected row of an import.
type ImportError struct {
	Row   int    `json:"row"   yaml:"row"`
	Error string `json:"error" yaml:"error"`
}

// FileUpload is a named binary value. A FileUpload inside an integration
// payload forces the whole payload onto the multipart encoding; Import takes
// one directly.
type FileUpload struct {
	Name   string
	Reader io.Reader
}

// NewFileUpload wraps a reader as an upload with the given file name.
func NewFileUpload(name string, reader io.Reader) FileUpload {
	return FileUpload{Name: name, Reader: reader}
}

// Payload is the named-parameter mapping passed to integration endpoints.
type Payload map[string]interface{}

// RawResult is an undecoded server response body.
type RawResult = json.RawMessage
