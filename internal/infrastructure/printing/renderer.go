// Package printing renders business documents to PDF with headless Chrome.
package printing

import (
	"context"
	"time"
)

// Letter paper in millimetres, the default in Mexico
const (
	letterWidthMM  = 215.9
	letterHeightMM = 279.4
)

// Margins in millimetres
type Margins struct {
	Top    float64
	Right  float64
	Bottom float64
	Left   float64
}

// DefaultMargins are used when a request leaves every margin at zero
var DefaultMargins = Margins{Top: 12, Right: 12, Bottom: 14, Left: 12}

// RenderRequest contains the parameters for rendering HTML to PDF
type RenderRequest struct {
	HTML      string
	Title     string
	Landscape bool
	Margins   Margins
	// FooterHTML is Chrome's footer template; pageNumber and totalPages
	// spans are filled in by the browser
	FooterHTML string
	Timeout    time.Duration
}

// PDFRenderer converts an HTML document to PDF
type PDFRenderer interface {
	Render(ctx context.Context, req *RenderRequest) ([]byte, error)
	Close() error
}

// RenderError represents an error during PDF rendering
type RenderError struct {
	Code    string
	Message string
	Cause   error
}

func (e *RenderError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *RenderError) Unwrap() error {
	return e.Cause
}

// Error codes for rendering failures
const (
	ErrCodeRenderTimeout = "RENDER_TIMEOUT"
	ErrCodeRenderFailed  = "RENDER_FAILED"
	ErrCodeInvalidHTML   = "INVALID_HTML"
)

// NewRenderError creates a new RenderError
func NewRenderError(code, message string, cause error) *RenderError {
	return &RenderError{Code: code, Message: message, Cause: cause}
}
