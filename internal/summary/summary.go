// Package summary defines the structured shape produced by the external
// document analyzer. The build core never parses raw document text; it only
// consumes these types.
package summary

import (
	"encoding/json"
	"os"

	"github.com/codeloom/codeloom/internal/errors"
)

// DocumentSummary is the analyzer's structured view of a design document
type DocumentSummary struct {
	ProjectInfo     ProjectInfo      `json:"project_info"`
	BusinessModules []BusinessModule `json:"business_modules"`
	APIEndpoints    []APIEndpoint    `json:"api_endpoints"`
	DataTables      []DataTable      `json:"data_tables"`
	UIComponents    []UIComponent    `json:"ui_components"`

	// BranchHint names an explicit branch extracted from the document, if any
	BranchHint string `json:"branch_hint,omitempty"`

	// RemoteHint is a remote repository address extracted from the document
	RemoteHint string `json:"remote_hint,omitempty"`
}

// ProjectInfo describes the project as a whole
type ProjectInfo struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Version     string `json:"version,omitempty"`
}

// BusinessModule is a functional area identified in the document
type BusinessModule struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// APIEndpoint is a single API operation identified in the document
type APIEndpoint struct {
	Method      string `json:"method"`
	Path        string `json:"path"`
	Description string `json:"description,omitempty"`
}

// DataTable is a persistent table identified in the document
type DataTable struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Columns     []string `json:"columns,omitempty"`
}

// UIComponent is a user-facing component identified in the document
type UIComponent struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// Load reads a DocumentSummary from a JSON file
func Load(path string) (*DocumentSummary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewFileNotFoundError(path)
		}
		return nil, errors.Wrap(errors.ErrCodeFileReadFailed, "read summary file", err)
	}

	var s DocumentSummary
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, errors.NewFileUnmarshalError(path, "JSON", err)
	}

	return &s, nil
}

// IsEmpty reports whether the summary carries no extractable content.
// The planner falls back to a minimal task set for empty summaries.
func (s *DocumentSummary) IsEmpty() bool {
	return len(s.BusinessModules) == 0 &&
		len(s.APIEndpoints) == 0 &&
		len(s.DataTables) == 0 &&
		len(s.UIComponents) == 0
}
