// Package loader turns JSON, YAML and TOML input into the JSON document text
// the editing engines work on.
package loader

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Format is the syntax an input was written in.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// Document is loaded input rendered as JSON text.
type Document struct {
	Text   string
	Source Format
}

// Load converts input to JSON text, auto-detecting the format. JSON input is
// returned verbatim, even when malformed, so offsets and errors are
// preserved for the tolerant parser. YAML and TOML are decoded and
// re-encoded as indented JSON; multi-document YAML becomes an array.
func Load(input string) (Document, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return Document{}, fmt.Errorf("empty input")
	}
	switch DetectFormat(trimmed) {
	case FormatJSON:
		return Document{Text: input, Source: FormatJSON}, nil
	case FormatTOML:
		return convert(trimmed, FormatTOML)
	default:
		return convert(trimmed, FormatYAML)
	}
}

// LoadFile loads path. A .json, .yaml, .yml or .toml extension overrides
// content detection.
func LoadFile(path string) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Document{}, err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return Document{Text: string(data), Source: FormatJSON}, nil
	case ".yaml", ".yml":
		return convert(string(data), FormatYAML)
	case ".toml":
		return convert(string(data), FormatTOML)
	default:
		return Load(string(data))
	}
}

// DetectFormat guesses the format of trimmed input. TOML is checked before
// JSON because TOML [section] headers look like JSON arrays.
func DetectFormat(trimmed string) Format {
	if isLikelyTOML(trimmed) {
		return FormatTOML
	}
	if strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[") {
		return FormatJSON
	}
	return FormatYAML
}

func convert(input string, format Format) (Document, error) {
	var data any
	var err error
	switch format {
	case FormatTOML:
		err = toml.Unmarshal([]byte(input), &data)
		if err != nil {
			err = fmt.Errorf("invalid TOML: %w", err)
		}
	default:
		data, err = loadYAML(input)
	}
	if err != nil {
		return Document{}, err
	}
	out, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return Document{}, fmt.Errorf("encode %s as JSON: %w", format, err)
	}
	return Document{Text: string(out), Source: format}, nil
}

// loadYAML decodes every document in input; more than one becomes an array.
func loadYAML(input string) (any, error) {
	var docs []any
	decoder := yaml.NewDecoder(strings.NewReader(input))
	for {
		var doc any
		if err := decoder.Decode(&doc); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("invalid YAML: %w", err)
		}
		docs = append(docs, doc)
	}
	switch len(docs) {
	case 0:
		return nil, fmt.Errorf("no documents found in YAML")
	case 1:
		return docs[0], nil
	default:
		return docs, nil
	}
}

var (
	// [server], [[items]], ["table name"], [database.credentials]; not [1, 2, 3].
	tomlSectionPattern = regexp.MustCompile(`^\s*\[{1,2}(?:[a-zA-Z_][a-zA-Z0-9_-]*|"[^"]+"|'[^']+')+(?:\.(?:[a-zA-Z_][a-zA-Z0-9_-]*|"[^"]+"|'[^']+'))*\]{1,2}\s*$`)
	// name = "value", database.host = "localhost"; not YAML's key: value.
	tomlKeyValuePattern = regexp.MustCompile(`^\s*(?:[a-zA-Z_][a-zA-Z0-9_-]*|"[^"]+"|'[^']+')+(?:\.(?:[a-zA-Z_][a-zA-Z0-9_-]*|"[^"]+"|'[^']+'))*\s*=\s*.+$`)
)

// isLikelyTOML reports TOML when input has a section header or mostly
// key = value lines.
func isLikelyTOML(input string) bool {
	sectionCount, keyValueCount, nonEmptyCount := 0, 0, 0
	for _, line := range strings.Split(input, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		nonEmptyCount++
		if tomlSectionPattern.MatchString(line) {
			sectionCount++
		}
		if tomlKeyValuePattern.MatchString(line) {
			keyValueCount++
		}
	}
	if sectionCount > 0 {
		return true
	}
	return nonEmptyCount > 0 && keyValueCount > nonEmptyCount/2
}
