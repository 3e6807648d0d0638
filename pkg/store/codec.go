package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format is the structured text encoding of persisted documents.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat validates a format name; empty means JSON.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unknown document format %q (want json or yaml)", s)
	}
}

// Extension returns the file extension for documents in this format.
func (f Format) Extension() string {
	if f == FormatYAML {
		return "yaml"
	}
	return "json"
}

// Marshal encodes v.
func (f Format) Marshal(v any) ([]byte, error) {
	if f == FormatYAML {
		return yaml.Marshal(v)
	}
	return json.MarshalIndent(v, "", "  ")
}

// Unmarshal decodes data into v.
func (f Format) Unmarshal(data []byte, v any) error {
	if f == FormatYAML {
		return yaml.Unmarshal(data, v)
	}
	return json.Unmarshal(data, v)
}

// LoadState tells a caller what a read actually found.
type LoadState int

const (
	// LoadStateAbsent means no document (or an empty one) was stored.
	LoadStateAbsent LoadState = iota
	// LoadStateLoaded means the document decoded cleanly.
	LoadStateLoaded
	// LoadStateCorrupt means a document exists but could not be decoded.
	LoadStateCorrupt
)

func (s LoadState) String() string {
	switch s {
	case LoadStateLoaded:
		return "loaded"
	case LoadStateCorrupt:
		return "corrupt"
	default:
		return "absent"
	}
}

// decodeDocument decodes a Provider.Read result into v.
func decodeDocument(f Format, data []byte, present bool, v any) (LoadState, error) {
	if !present || len(bytes.TrimSpace(data)) == 0 {
		return LoadStateAbsent, nil
	}
	if err := f.Unmarshal(data, v); err != nil {
		return LoadStateCorrupt, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return LoadStateLoaded, nil
}
