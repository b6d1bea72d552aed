package errors

import (
	"runtime"
	"sort"
)

// Context keys used to select conditional suggestions.
const (
	ContextOS     = "os"
	ContextEngine = "engine"
	ContextPath   = "path"
)

// Engine values for engine-specific suggestions.
const (
	EnginePdfium  = "pdfium"
	EnginePreview = "preview"
)

// -----------------------------------------------------------------------------
// Suggestion Registry
// -----------------------------------------------------------------------------

// Suggestion is a remediation hint with optional context conditions.
type Suggestion struct {
	Text string

	// Conditions must all match the error context. Empty matches everything.
	Conditions map[string]string

	// Priority orders suggestions; higher first.
	Priority int
}

// Matches returns true if this suggestion's conditions match ctx.
func (s *Suggestion) Matches(ctx map[string]string) bool {
	for key, value := range s.Conditions {
		if ctx[key] != value {
			return false
		}
	}
	return true
}

// Registry maps error codes to their remediation suggestions.
type Registry struct {
	suggestions map[string][]Suggestion
}

// NewRegistry creates an empty suggestion registry.
func NewRegistry() *Registry {
	return &Registry{suggestions: make(map[string][]Suggestion)}
}

// Register adds an unconditional suggestion for an error code.
func (r *Registry) Register(code, text string) *Registry {
	return r.RegisterSuggestion(code, Suggestion{Text: text})
}

// RegisterWithCondition adds a suggestion that only applies when ctx matches.
func (r *Registry) RegisterWithCondition(code, text string, conditions map[string]string) *Registry {
	return r.RegisterSuggestion(code, Suggestion{Text: text, Conditions: conditions})
}

// RegisterSuggestion adds a complete Suggestion.
func (r *Registry) RegisterSuggestion(code string, s Suggestion) *Registry {
	r.suggestions[code] = append(r.suggestions[code], s)
	return r
}

// Get returns the suggestions for code matching ctx, highest priority first.
func (r *Registry) Get(code string, ctx map[string]string) []string {
	var matching []Suggestion
	for _, s := range r.suggestions[code] {
		if s.Matches(ctx) {
			matching = append(matching, s)
		}
	}
	sort.SliceStable(matching, func(i, j int) bool {
		return matching[i].Priority > matching[j].Priority
	})

	result := make([]string, len(matching))
	for i, s := range matching {
		result[i] = s.Text
	}
	return result
}

// HasSuggestions returns true if any suggestions exist for the error code.
func (r *Registry) HasSuggestions(code string) bool {
	return len(r.suggestions[code]) > 0
}

// Codes returns all error codes that have registered suggestions.
func (r *Registry) Codes() []string {
	codes := make([]string, 0, len(r.suggestions))
	for code := range r.suggestions {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// DefaultContext returns a context map with current platform information.
func DefaultContext() map[string]string {
	return map[string]string{ContextOS: runtime.GOOS}
}

// DefaultRegistry holds the built-in suggestions.
var DefaultRegistry = NewRegistry()

func init() {
	registerConfigSuggestions(DefaultRegistry)
	registerValidationSuggestions(DefaultRegistry)
	registerLicenseSuggestions(DefaultRegistry)
	registerEngineSuggestions(DefaultRegistry)
	registerCommandSuggestions(DefaultRegistry)
}

func registerConfigSuggestions(r *Registry) {
	r.Register(ErrConfigNotFound, "Run 'pdfviewer -init' to create a default configuration")
	r.Register(ErrConfigParseFailed, "Check the YAML syntax of the configuration file")
	r.Register(ErrConfigInvalid, "Compare the file against the output of 'pdfviewer -init'")
	r.RegisterWithCondition(ErrConfigWriteFailed, "Check permissions on ~/.config/pdfviewer",
		map[string]string{ContextOS: "linux"})
}

func registerValidationSuggestions(r *Registry) {
	r.Register(ErrInputCardinality, "Filter the report so exactly one document is selected")
	r.Register(ErrPayloadMissing, "Bind a column holding base64 pdf data to the pdfData role")
	r.Register(ErrPayloadInvalid, "Make sure the column holds plain base64 without line breaks")
	r.Register(ErrDataViewInvalid, "A data view needs 'columns' and 'rows' arrays")
}

func registerLicenseSuggestions(r *Registry) {
	r.Register(ErrLicenseRequired, "Bind static columns instead of measures, or activate a license")
	r.Register(ErrLicenseExportBlocked, "Exporting needs an active pdfviewer_plan license")
	r.Register(ErrLicenseTokenInvalid, "Check that license.token.public_key_file matches the issuer key")
}

func registerEngineSuggestions(r *Registry) {
	r.Register(ErrEngineNotFound, "Set engine.name to 'pdfium' or 'preview'")
	r.RegisterWithCondition(ErrEngineUnavailable, "Fall back to the pure-Go engine with engine.name: preview",
		map[string]string{ContextEngine: EnginePdfium})
	r.Register(ErrDocumentLoadFailed, "The decoded bytes are not a readable pdf document")
}

func registerCommandSuggestions(r *Registry) {
	r.Register(ErrCommandNotFound, "Type /help for available commands")
	r.Register(ErrCommandMissingArgs, "Type /help for command usage")
}

// AttachSuggestions copies registered suggestions for ve.Code onto ve.
// The error's own context is merged over the platform context before matching.
func AttachSuggestions(ve *ViewerError) *ViewerError {
	if ve == nil {
		return nil
	}
	ctx := DefaultContext()
	for k, v := range ve.Context {
		ctx[k] = v
	}
	ve.Suggestions = append(ve.Suggestions, DefaultRegistry.Get(ve.Code, ctx)...)
	return ve
}
