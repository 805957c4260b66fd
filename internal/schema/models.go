package schema

// Valid schema types and version statuses. Unknown values are rejected at the
// ingest boundary, never coerced.
const (
	TypeOpenAPI    = "openapi"
	TypeAsyncAPI   = "asyncapi"
	TypeJSONSchema = "jsonschema"

	StatusStable     = "stable"
	StatusBeta       = "beta"
	StatusDeprecated = "deprecated"
)

// ValidTypes lists the accepted schema types.
var ValidTypes = []string{TypeOpenAPI, TypeAsyncAPI, TypeJSONSchema}

// ValidStatuses lists the accepted version statuses.
var ValidStatuses = []string{StatusStable, StatusBeta, StatusDeprecated}

// Schema is a named API schema with its ordered version history.
type Schema struct {
	Name string `json:"name" bson:"name"`
	// Type is one of openapi, asyncapi or jsonschema.
	Type     string    `json:"schema_type" bson:"schema_type"`
	Versions []Version `json:"versions" bson:"versions"`
}

// Version is one version entry of a schema. Versions are unique by version
// string within a schema.
type Version struct {
	// Version is the semantic version string, e.g. "1.0.0".
	Version string `json:"version" bson:"version"`
	// ContentKey locates the raw spec file in the blob store.
	ContentKey string `json:"content_key" bson:"content_key"`
	// Status is one of stable, beta or deprecated.
	Status string `json:"status" bson:"status"`
}

// IngestRequest is the payload accepted by POST /api/v1/schemas.
type IngestRequest struct {
	ServiceToken string `json:"service_token"`
	Name         string `json:"name"`
	Type         string `json:"schema_type"`
	Version      string `json:"version"`
	Status       string `json:"status"`
	Content      string `json:"content"`
}

// IngestResponse reports where an ingested schema version landed.
type IngestResponse struct {
	Message    string `json:"message"`
	Name       string `json:"name"`
	Version    string `json:"version"`
	ContentKey string `json:"content_key"`
}
