package extract

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding/htmlindex"
)

// parseXML flattens element text into lines and resolves structured hints.
// Only the first occurrence of each hint is kept.
func parseXML(data []byte) (string, map[string]string, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.CharsetReader = func(label string, input io.Reader) (io.Reader, error) {
		enc, err := htmlindex.Get(label)
		if err != nil {
			return nil, fmt.Errorf("unsupported xml charset %q: %w", label, err)
		}
		return enc.NewDecoder().Reader(input), nil
	}

	hints := make(map[string]string)
	var (
		lines []string
		stack []string
		bufs  []*strings.Builder
		root  string
	)

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", nil, fmt.Errorf("xml: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			name := strings.ToLower(t.Name.Local)
			if root == "" {
				root = t.Name.Local
			}
			stack = append(stack, name)
			bufs = append(bufs, &strings.Builder{})
		case xml.CharData:
			if len(bufs) > 0 {
				bufs[len(bufs)-1].Write(t)
			}
		case xml.EndElement:
			if len(stack) == 0 {
				continue
			}
			text := strings.Join(strings.Fields(bufs[len(bufs)-1].String()), " ")
			if text != "" {
				lines = append(lines, text)
				setHint(hints, xmlHint(stack), text)
			}
			stack = stack[:len(stack)-1]
			bufs = bufs[:len(bufs)-1]
		}
	}

	if root == "" {
		return "", nil, errors.New("xml: no root element")
	}
	setHint(hints, HintDocumentType, root)
	return strings.Join(lines, "\n"), hints, nil
}

func xmlHint(stack []string) string {
	for _, p := range xmlPathHints {
		if hasSuffix(stack, p.suffix) {
			return p.hint
		}
	}
	key := normalizeKey(stack[len(stack)-1])
	if h, ok := xmlOnlyHints[key]; ok {
		return h
	}
	return tagHints[key]
}
