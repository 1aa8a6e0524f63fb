package constants

import "strings"

// AllowedExtensions holds the file extensions the batch and watch commands pick up.
var AllowedExtensions = map[string]struct{}{
	"pdf": {},
}

// InvoiceJSONSuffix replaces the document extension when a record is written next to its source.
const InvoiceJSONSuffix = ".invoice.json"

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// IsAllowedExt reports whether ext (with or without the dot) is processed.
func IsAllowedExt(ext string) bool {
	_, ok := AllowedExtensions[NormalizeExt(ext)]
	return ok
}
