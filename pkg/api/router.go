// Package api exposes the viewer to its host over HTTP and a WebSocket.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"

	werrors "github.com/DanielSallander/Pdf-Viewer/pkg/errors"
)

// HandlerFunc is the function signature for API handlers.
type HandlerFunc func(w http.ResponseWriter, r *http.Request)

// Route is a registered method, pattern and handler.
type Route struct {
	Method  string
	Pattern string
	Handler HandlerFunc
}

// Router matches requests against patterns with :param segments.
type Router struct {
	routes []Route
	mu     sync.RWMutex

	// NotFound is called when no pattern matches.
	NotFound http.Handler
}

// NewRouter creates an empty router.
func NewRouter() *Router {
	return &Router{
		NotFound: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			WriteError(w, http.StatusNotFound, "not_found", "The requested resource was not found")
		}),
	}
}

// Handle registers handler for method and pattern, e.g. /api/controls/:action.
func (rt *Router) Handle(method, pattern string, handler HandlerFunc) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	rt.routes = append(rt.routes, Route{Method: method, Pattern: pattern, Handler: handler})
}

// GET registers a handler for GET requests.
func (rt *Router) GET(pattern string, handler HandlerFunc) {
	rt.Handle(http.MethodGet, pattern, handler)
}

// POST registers a handler for POST requests.
func (rt *Router) POST(pattern string, handler HandlerFunc) {
	rt.Handle(http.MethodPost, pattern, handler)
}

// ServeHTTP dispatches to the first matching route. A path that matches
// only under other methods gets 405.
func (rt *Router) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rt.mu.RLock()
	defer rt.mu.RUnlock()

	var allowed []string
	for _, route := range rt.routes {
		params, ok := matchPath(route.Pattern, r.URL.Path)
		if !ok {
			continue
		}
		if route.Method != r.Method {
			allowed = append(allowed, route.Method)
			continue
		}
		if len(params) > 0 {
			r = r.WithContext(context.WithValue(r.Context(), pathParamsKey, params))
		}
		route.Handler(w, r)
		return
	}

	if len(allowed) > 0 {
		w.Header().Set("Allow", strings.Join(allowed, ", "))
		WriteError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Method "+r.Method+" is not allowed")
		return
	}
	rt.NotFound.ServeHTTP(w, r)
}

// matchPath matches path against pattern and extracts :param segments.
func matchPath(pattern, path string) (map[string]string, bool) {
	patternParts := strings.Split(strings.Trim(pattern, "/"), "/")
	pathParts := strings.Split(strings.Trim(path, "/"), "/")
	if len(patternParts) != len(pathParts) {
		return nil, false
	}

	params := make(map[string]string)
	for i, part := range patternParts {
		if name, ok := strings.CutPrefix(part, ":"); ok {
			params[name] = pathParts[i]
		} else if part != pathParts[i] {
			return nil, false
		}
	}
	return params, true
}

type contextKey string

const pathParamsKey contextKey = "pathParams"

// PathParam returns a path parameter of the matched route.
func PathParam(r *http.Request, name string) string {
	params, ok := r.Context().Value(pathParamsKey).(map[string]string)
	if !ok {
		return ""
	}
	return params[name]
}

// -----------------------------------------------------------------------------
// Response Helpers
// -----------------------------------------------------------------------------

// APIResponse is the envelope of every JSON response.
type APIResponse struct {
	Success bool      `json:"success"`
	Data    any       `json:"data,omitempty"`
	Error   *APIError `json:"error,omitempty"`
}

// APIError is the error part of a response.
type APIError struct {
	Code        string            `json:"code"`
	Message     string            `json:"message"`
	Context     map[string]string `json:"context,omitempty"`
	Suggestions []string          `json:"suggestions,omitempty"`
}

// WriteJSON writes data in the response envelope.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(APIResponse{
		Success: status >= 200 && status < 300,
		Data:    data,
	})
}

// WriteError writes an error response.
func WriteError(w http.ResponseWriter, status int, code, message string) {
	writeAPIError(w, status, &APIError{Code: code, Message: message})
}

// WriteViewerError maps err to a status code by category and writes it with
// its context and suggestions.
func WriteViewerError(w http.ResponseWriter, err error) {
	ve, ok := werrors.AsViewerError(err)
	if !ok {
		WriteError(w, http.StatusInternalServerError, werrors.ErrInternalError, err.Error())
		return
	}
	writeAPIError(w, statusFor(ve.Category), &APIError{
		Code:        ve.Code,
		Message:     ve.Message,
		Context:     ve.Context,
		Suggestions: ve.Suggestions,
	})
}

func writeAPIError(w http.ResponseWriter, status int, apiErr *APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(APIResponse{Success: false, Error: apiErr})
}

func statusFor(cat werrors.Category) int {
	switch cat {
	case werrors.CategoryValidation, werrors.CategoryCommand, werrors.CategoryConfig:
		return http.StatusBadRequest
	case werrors.CategoryLicense:
		return http.StatusForbidden
	case werrors.CategoryEngine:
		return http.StatusConflict
	case werrors.CategoryNetwork:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// ReadJSON decodes the request body into target.
func ReadJSON(r *http.Request, target any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(target)
}
