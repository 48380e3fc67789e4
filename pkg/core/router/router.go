// Package router classifies input files and decides which extraction path
// handles them.
package router

import (
	"path/filepath"
	"strings"

	"hedgepnl/pkg/models"
)

// Classify maps a file path to its extraction path by extension.
// Unrecognized extensions yield FileTypeUnknown: the caller must report the
// file as unsupported and attempt no extraction or validation for it.
func Classify(path string) models.FileType {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xls":
		return models.FileTypeSpreadsheet
	case ".msg", ".eml":
		return models.FileTypeDocument
	default:
		return models.FileTypeUnknown
	}
}
