package tools

import (
	"context"
	"errors"
	"fmt"

	"github.com/koopa0/codescope/internal/analysis"
)

// LanguageStatsInput defines input for the languageStats tool.
type LanguageStatsInput struct {
	Path string `json:"path,omitempty" jsonschema:"optional directory to scan, defaults to the project root"`
}

// FileMetricsInput defines input for the fileMetrics tool.
type FileMetricsInput struct {
	Path string `json:"path" jsonschema:"the file path to measure"`
}

// ValidatePathInput defines input for the validatePath tool.
type ValidatePathInput struct {
	Path string `json:"path" jsonschema:"the path to validate"`
	Base string `json:"base,omitempty" jsonschema:"optional base directory overriding the project root"`
}

// LanguageStats scans a directory tree and returns the per-language
// report.
func (k *Kit) LanguageStats(ctx context.Context, input LanguageStatsInput) Result {
	k.logger.Debug("LanguageStats called", "path", input.Path)

	base, failed := k.resolveBase(input.Path)
	if failed != nil {
		return *failed
	}

	report, err := k.analyzer.Scan(ctx, base)
	if err != nil {
		if errors.Is(err, analysis.ErrPathRejected) {
			return Result{
				Status:  StatusError,
				Message: "Security validation failed",
				Error:   &Error{Code: ErrCodeSecurity, Message: err.Error()},
			}
		}
		if ctx.Err() != nil {
			return validationResult("scan canceled: " + ctx.Err().Error())
		}
		return ioResult("scan directory", err)
	}

	return successResult(fmt.Sprintf("Scanned %d files", report.Files), map[string]any{
		"report": report,
	})
}

// ReportFromResult extracts the scan report from a LanguageStats result.
func ReportFromResult(result Result) (*analysis.Report, bool) {
	report, ok := result.Data["report"].(*analysis.Report)
	return report, ok
}

// FileMetrics measures line counts for one file.
func (k *Kit) FileMetrics(input FileMetricsInput) Result {
	k.logger.Debug("FileMetrics called", "path", input.Path)

	m, err := k.analyzer.FileMetrics(input.Path)
	if err != nil {
		if errors.Is(err, analysis.ErrPathRejected) {
			return Result{
				Status:  StatusError,
				Message: "Security validation failed",
				Error:   &Error{Code: ErrCodeSecurity, Message: err.Error()},
			}
		}
		return ioResult("measure file", err)
	}

	return successResult("File metrics", map[string]any{
		"metrics": m,
	})
}

// ValidatePath surfaces a raw path verdict. The verdict itself is the
// payload: a denial is a successful tool call.
func (k *Kit) ValidatePath(input ValidatePathInput) Result {
	verdict := k.validator.ValidateFilePathIn(input.Base, input.Path)
	return successResult("Path validated", map[string]any{
		"allowed": verdict.Allowed,
		"reason":  verdict.Reason,
	})
}
