// Package printing renders quotation documents to PDF with headless Chrome.
package printing

import (
	"context"
	"errors"
)

// PDFRenderer converts a complete HTML document to PDF
type PDFRenderer interface {
	RenderPDF(ctx context.Context, html string) ([]byte, error)
	Close() error
}

// Stage names the step of document generation that failed
type Stage string

const (
	StageInput    Stage = "input"
	StageTemplate Stage = "template"
	StageBrowser  Stage = "browser"
	StageTimeout  Stage = "timeout"
)

// RenderError is returned for every failed document
type RenderError struct {
	Stage Stage
	Msg   string
	Err   error
}

func (e *RenderError) Error() string {
	s := "printing " + string(e.Stage) + ": " + e.Msg
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}

func (e *RenderError) Unwrap() error { return e.Err }

func failAt(stage Stage, msg string, err error) *RenderError {
	return &RenderError{Stage: stage, Msg: msg, Err: err}
}

// StageOf reports where rendering failed; ok is false for foreign errors
func StageOf(err error) (stage Stage, ok bool) {
	var re *RenderError
	if errors.As(err, &re) {
		return re.Stage, true
	}
	return "", false
}
