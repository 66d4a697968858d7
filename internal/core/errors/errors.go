package errors

const (
	HttpInternalError           = "internal_error"
	HttpInvalidJsonError        = "invalid_json"
	HttpNotFoundError           = "not_found"
	HttpInvalidQueryError       = "invalid_query"
	HttpMissingSeriesError      = "missing_series"
	HttpInvalidAggregationError = "invalid_aggregation"
	HttpDuplicateEntryError     = "duplicate_entry"
	HttpDiagramError            = "diagram_failed"
)

// ErrorResponse is the error response body for inspection API errors.
type ErrorResponse struct {
	ErrorType string      `json:"error_type"`
	Message   string      `json:"message"`
	Details   interface{} `json:"details,omitempty"`
}
