// Package resume loads resume documents from JSON or YAML into the generic
// map form templates are evaluated against.
package resume

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrUnsupportedEncoding is returned for files that are neither JSON nor YAML.
var ErrUnsupportedEncoding = errors.New("resume: unsupported encoding")

// Encoding identifies the serialisation of a resume source.
type Encoding string

const (
	JSON Encoding = "json"
	YAML Encoding = "yaml"
)

// Document is a decoded resume. It is a plain map so evaluators see the same
// shape whichever encoding it came from.
type Document = map[string]any

// EncodingFor maps a file extension onto an encoding.
func EncodingFor(path string) (Encoding, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return JSON, nil
	case ".yaml", ".yml":
		return YAML, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedEncoding, path)
	}
}

// Load reads and decodes the resume at path.
func Load(path string) (Document, error) {
	enc, err := EncodingFor(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("resume: open: %w", err)
	}
	defer f.Close()

	doc, err := Decode(f, enc)
	if err != nil {
		return nil, fmt.Errorf("%w (%s)", err, path)
	}
	return doc, nil
}

// Decode parses r using enc. JSON numbers become int64 when they are whole
// and float64 otherwise, so templates compare and add them as numbers.
func Decode(r io.Reader, enc Encoding) (Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("resume: read: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.New("resume: empty document")
	}

	switch enc {
	case JSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		var doc Document
		if err := dec.Decode(&doc); err != nil {
			return nil, fmt.Errorf("resume: decode json: %w", err)
		}
		if err := dec.Decode(new(json.RawMessage)); !errors.Is(err, io.EOF) {
			return nil, errors.New("resume: decode json: trailing data after document")
		}
		return normalize(doc).(map[string]any), nil
	case YAML:
		var raw map[string]any
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("resume: decode yaml: %w", err)
		}
		return normalize(raw).(map[string]any), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedEncoding, enc)
	}
}

// normalize rewrites decoder output so nested maps are map[string]any and
// JSON numbers are native ints or floats.
func normalize(value any) any {
	switch v := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, item := range v {
			out[key] = normalize(item)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(v))
		for key, item := range v {
			out[fmt.Sprint(key)] = normalize(item)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = normalize(item)
		}
		return out
	case json.Number:
		return number(v)
	default:
		return v
	}
}

func number(n json.Number) any {
	if i, err := n.Int64(); err == nil {
		return i
	}
	if f, err := n.Float64(); err == nil {
		return f
	}
	return n.String()
}
