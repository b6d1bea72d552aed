// Package errors provides error code constants for the PDF viewer.
// Error codes are organized by category for consistent handling and lookup.
package errors

// -----------------------------------------------------------------------------
// Configuration Error Codes
// -----------------------------------------------------------------------------

const (
	// ErrConfigNotFound indicates the configuration file does not exist.
	ErrConfigNotFound = "CONFIG_NOT_FOUND"

	// ErrConfigParseFailed indicates the configuration file could not be parsed.
	// Usually a YAML syntax error or invalid structure.
	ErrConfigParseFailed = "CONFIG_PARSE_FAILED"

	// ErrConfigInvalid indicates configuration values are invalid.
	ErrConfigInvalid = "CONFIG_INVALID"

	// ErrConfigReadFailed indicates the config file could not be read.
	ErrConfigReadFailed = "CONFIG_READ_FAILED"

	// ErrConfigWriteFailed indicates the config file could not be written.
	ErrConfigWriteFailed = "CONFIG_WRITE_FAILED"
)

// -----------------------------------------------------------------------------
// Validation Error Codes
// -----------------------------------------------------------------------------
// Raised by the render pipeline while checking host data. They are shown to
// the user as warnings and never returned past the pipeline.

const (
	// ErrInputCardinality indicates the data view does not hold exactly one row.
	ErrInputCardinality = "INPUT_CARDINALITY"

	// ErrPayloadMissing indicates the pdf data cell is empty or unbound.
	ErrPayloadMissing = "PAYLOAD_MISSING"

	// ErrPayloadInvalid indicates the pdf data cell is not well-formed base64.
	ErrPayloadInvalid = "PAYLOAD_INVALID_BASE64"

	// ErrPayloadDecode indicates the payload passed validation but produced no bytes.
	ErrPayloadDecode = "PAYLOAD_DECODE_FAILED"

	// ErrDataViewInvalid indicates a malformed data view document.
	ErrDataViewInvalid = "DATAVIEW_INVALID"
)

// -----------------------------------------------------------------------------
// License Error Codes
// -----------------------------------------------------------------------------

const (
	// ErrLicenseRequired indicates a measure-bound field was used without a license.
	ErrLicenseRequired = "LICENSE_REQUIRED"

	// ErrLicenseExportBlocked indicates export was requested without a license.
	ErrLicenseExportBlocked = "LICENSE_EXPORT_BLOCKED"

	// ErrLicenseLookupFailed indicates the service plan lookup failed.
	ErrLicenseLookupFailed = "LICENSE_LOOKUP_FAILED"

	// ErrLicenseTokenInvalid indicates a license token failed verification.
	ErrLicenseTokenInvalid = "LICENSE_TOKEN_INVALID"
)

// -----------------------------------------------------------------------------
// Engine Error Codes
// -----------------------------------------------------------------------------

const (
	// ErrEngineNotFound indicates the requested engine is not registered.
	ErrEngineNotFound = "ENGINE_NOT_FOUND"

	// ErrEngineAlreadyRegistered indicates an engine with this name already exists.
	ErrEngineAlreadyRegistered = "ENGINE_ALREADY_REGISTERED"

	// ErrEngineUnavailable indicates the engine could not be initialized.
	ErrEngineUnavailable = "ENGINE_UNAVAILABLE"

	// ErrDocumentLoadFailed indicates the engine rejected the decoded bytes.
	ErrDocumentLoadFailed = "DOCUMENT_LOAD_FAILED"

	// ErrPageFetchFailed indicates the requested page could not be fetched.
	ErrPageFetchFailed = "PAGE_FETCH_FAILED"

	// ErrRenderFailed indicates the page render threw.
	ErrRenderFailed = "RENDER_FAILED"

	// ErrRenderCancelled indicates a render was superseded by a newer one.
	ErrRenderCancelled = "RENDER_CANCELLED"

	// ErrNoDocument indicates an operation needs a loaded document.
	ErrNoDocument = "NO_DOCUMENT"
)

// -----------------------------------------------------------------------------
// Command Error Codes
// -----------------------------------------------------------------------------

const (
	// ErrCommandMissingArgs indicates required arguments are missing.
	ErrCommandMissingArgs = "COMMAND_MISSING_ARGS"

	// ErrCommandInvalidArg indicates an argument value is invalid.
	ErrCommandInvalidArg = "COMMAND_INVALID_ARG"

	// ErrCommandNotFound indicates the command does not exist.
	ErrCommandNotFound = "COMMAND_NOT_FOUND"
)

// -----------------------------------------------------------------------------
// Network / IO / Internal Error Codes
// -----------------------------------------------------------------------------

const (
	// ErrNetworkRequestFailed indicates an outbound request failed.
	ErrNetworkRequestFailed = "NETWORK_REQUEST_FAILED"

	// ErrIOReadFailed indicates a file read failed.
	ErrIOReadFailed = "IO_READ_FAILED"

	// ErrIOWriteFailed indicates a file write failed.
	ErrIOWriteFailed = "IO_WRITE_FAILED"

	// ErrExportFailed indicates the export service rejected a download.
	ErrExportFailed = "EXPORT_FAILED"

	// ErrInternalError indicates an unexpected internal state.
	ErrInternalError = "INTERNAL_ERROR"
)
