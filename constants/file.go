package constants

import "strings"

// SourceFormat is the physical representation a document arrived in.
type SourceFormat string

const (
	FormatPDF  SourceFormat = "pdf"
	FormatPNG  SourceFormat = "png"
	FormatJPEG SourceFormat = "jpeg"
	FormatGIF  SourceFormat = "gif"
	FormatBMP  SourceFormat = "bmp"
	FormatTIFF SourceFormat = "tiff"
	FormatWEBP SourceFormat = "webp"
	FormatXML  SourceFormat = "xml"
	FormatHTML SourceFormat = "html"
	FormatText SourceFormat = "text"
)

// extToFormat maps a normalized extension (see NormalizeExt) to its format.
var extToFormat = map[string]SourceFormat{
	"pdf":  FormatPDF,
	"png":  FormatPNG,
	"jpg":  FormatJPEG,
	"jpeg": FormatJPEG,
	"gif":  FormatGIF,
	"bmp":  FormatBMP,
	"tif":  FormatTIFF,
	"tiff": FormatTIFF,
	"webp": FormatWEBP,
	"xml":  FormatXML,
	"html": FormatHTML,
	"htm":  FormatHTML,
	"txt":  FormatText,
}

// AllowedExtensions holds the extensions accepted by directory ingestion.
var AllowedExtensions = func() map[string]struct{} {
	m := make(map[string]struct{}, len(extToFormat))
	for ext := range extToFormat {
		m[ext] = struct{}{}
	}
	return m
}()

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// FormatFromExt resolves a file extension (with or without the dot).
func FormatFromExt(ext string) (SourceFormat, bool) {
	f, ok := extToFormat[NormalizeExt(ext)]
	return f, ok
}

// IsImage reports whether the format is a raster image.
func (f SourceFormat) IsImage() bool {
	switch f {
	case FormatPNG, FormatJPEG, FormatGIF, FormatBMP, FormatTIFF, FormatWEBP:
		return true
	}
	return false
}

// UniversalCode is the class code used on the universal path.
func (f SourceFormat) UniversalCode() string {
	switch {
	case f == FormatPDF:
		return "PDF"
	case f == FormatXML:
		return "XML"
	case f == FormatHTML:
		return "HTML"
	case f.IsImage():
		return "IMG"
	default:
		return "TXT"
	}
}
