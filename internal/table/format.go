package table

import (
	"net/url"
	"path"
	"strings"
)

// Canonical format tokens.
const (
	FormatCSV   = "csv"
	FormatTSV   = "tsv"
	FormatXLSX  = "xlsx"
	FormatJSON  = "json"
	FormatOther = ""
)

var formatAliases = map[string]string{
	"csv":              FormatCSV,
	"text/csv":         FormatCSV,
	"tsv":              FormatTSV,
	"tab":              FormatTSV,
	"xlsx":             FormatXLSX,
	"xlsm":             FormatXLSX,
	"excel":            FormatXLSX,
	"json":             FormatJSON,
	"application/json": FormatJSON,
}

// NormalizeFormat lowers a declared format ("CSV", ".xlsx", "text/csv") to a
// canonical token. Unknown formats are returned lowercased so they can be
// reported. When format is empty the extension of locator is used.
func NormalizeFormat(format, locator string) string {
	f := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(format)), ".")
	if f == "" {
		f = strings.TrimPrefix(strings.ToLower(path.Ext(locatorPath(locator))), ".")
	}
	if canon, ok := formatAliases[f]; ok {
		return canon
	}
	return f
}

// Supported reports whether format has a reader.
func Supported(format string) bool {
	switch format {
	case FormatCSV, FormatTSV, FormatXLSX, FormatJSON:
		return true
	}
	return false
}

func locatorPath(locator string) string {
	if u, err := url.Parse(locator); err == nil && u.Scheme != "" && u.Host != "" {
		return u.Path
	}
	return locator
}
