package extract

import (
	"bytes"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/joseph-ayodele/docid/constants"
)

var (
	sigPDF    = []byte("%PDF-")
	sigXML    = []byte("<?xml")
	sigTIFFLE = []byte("II*\x00")
	sigTIFFBE = []byte("MM\x00*")
	utf8BOM   = []byte("\xef\xbb\xbf")
)

// detectFormat resolves the format from the extension, falling back to the
// content signature when the extension is missing or unknown.
func detectFormat(path string, data []byte) (constants.SourceFormat, bool) {
	if f, ok := constants.FormatFromExt(filepath.Ext(path)); ok {
		return f, true
	}
	return sniffFormat(data)
}

func sniffFormat(data []byte) (constants.SourceFormat, bool) {
	if len(data) == 0 {
		return "", false
	}
	head := data
	if len(head) > 1024 {
		head = head[:1024]
	}
	trimmed := bytes.TrimLeft(bytes.TrimPrefix(head, utf8BOM), " \t\r\n")

	switch {
	case bytes.HasPrefix(data, sigPDF):
		return constants.FormatPDF, true
	case bytes.HasPrefix(data, sigTIFFLE), bytes.HasPrefix(data, sigTIFFBE):
		return constants.FormatTIFF, true
	case bytes.HasPrefix(trimmed, sigXML):
		if bytes.Contains(bytes.ToLower(trimmed), []byte("<html")) {
			return constants.FormatHTML, true
		}
		return constants.FormatXML, true
	}

	ct := http.DetectContentType(data)
	mediaType, _, _ := strings.Cut(ct, ";")
	switch strings.TrimSpace(mediaType) {
	case "application/pdf":
		return constants.FormatPDF, true
	case "image/png":
		return constants.FormatPNG, true
	case "image/jpeg":
		return constants.FormatJPEG, true
	case "image/gif":
		return constants.FormatGIF, true
	case "image/bmp":
		return constants.FormatBMP, true
	case "image/webp":
		return constants.FormatWEBP, true
	case "text/html":
		return constants.FormatHTML, true
	case "text/xml", "application/xml":
		return constants.FormatXML, true
	case "text/plain":
		return constants.FormatText, true
	}
	return "", false
}
