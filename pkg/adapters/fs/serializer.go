package fs

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/stage/pkg/core"
	"gopkg.in/yaml.v3"
)

// Serializer defines how to read and write a specific file format.
type Serializer interface {
	// Parse reads a stored value from r.
	Parse(r io.Reader) (core.Data, error)
	// Serialize converts data to bytes.
	Serialize(data core.Data) ([]byte, error)
}

// DefaultSerializers returns the standard set of serializers keyed by extension.
func DefaultSerializers(strict bool) map[string]Serializer {
	return map[string]Serializer{
		".json": NewJSONSerializer(strict),
		".yaml": NewYAMLSerializer(strict),
		".yml":  NewYAMLSerializer(strict),
		".md":   NewMarkdownSerializer(strict),
	}
}

// --- JSON Serializer ---

// JSONSerializer handles reading and writing JSON files.
type JSONSerializer struct {
	// Strict enables strict number parsing (as json.Number) to avoid precision loss.
	Strict bool
}

// NewJSONSerializer creates a new JSON serializer.
func NewJSONSerializer(strict bool) *JSONSerializer {
	return &JSONSerializer{Strict: strict}
}

func (s *JSONSerializer) Parse(r io.Reader) (core.Data, error) {
	decoder := json.NewDecoder(r)
	if s.Strict {
		decoder.UseNumber()
	}
	var payload map[string]any
	if err := decoder.Decode(&payload); err != nil {
		return nil, fmt.Errorf("invalid json: %w", err)
	}
	if payload == nil {
		payload = make(map[string]any)
	}
	return core.Data(payload), nil
}

func (s *JSONSerializer) Serialize(data core.Data) ([]byte, error) {
	return json.MarshalIndent(map[string]any(data), "", "  ")
}

// --- YAML Serializer ---

// YAMLSerializer handles reading and writing YAML files.
type YAMLSerializer struct {
	// Strict converts numbers to json.Number so they compare equal to
	// values read by a strict JSONSerializer.
	Strict bool
}

// NewYAMLSerializer creates a new YAML serializer.
func NewYAMLSerializer(strict bool) *YAMLSerializer {
	return &YAMLSerializer{Strict: strict}
}

func (s *YAMLSerializer) Parse(r io.Reader) (core.Data, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var payload map[string]any
	if err := yaml.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("invalid yaml: %w", err)
	}
	if payload == nil {
		payload = make(map[string]any)
	}
	if s.Strict {
		payload = normalize(payload).(map[string]any)
	}
	return core.Data(payload), nil
}

func (s *YAMLSerializer) Serialize(data core.Data) ([]byte, error) {
	return yaml.Marshal(map[string]any(data))
}

// --- Markdown Serializer ---

// MarkdownSerializer stores the "content" field as the document body and
// every other field as YAML frontmatter.
type MarkdownSerializer struct {
	Strict bool
}

// ContentField is the Data field holding a Markdown body.
const ContentField = "content"

// NewMarkdownSerializer creates a new Markdown serializer.
func NewMarkdownSerializer(strict bool) *MarkdownSerializer {
	return &MarkdownSerializer{Strict: strict}
}

func (s *MarkdownSerializer) Parse(r io.Reader) (core.Data, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	data := make(map[string]any)
	if !bytes.HasPrefix(raw, []byte("---\n")) && !bytes.HasPrefix(raw, []byte("---\r\n")) {
		data[ContentField] = string(raw)
		return core.Data(data), nil
	}

	parts := bytes.SplitN(raw[3:], []byte("---"), 2)
	if len(parts) == 1 {
		return nil, errors.New("frontmatter started but no closing delimiter found")
	}
	if err := yaml.Unmarshal(parts[0], &data); err != nil {
		return nil, fmt.Errorf("failed to parse frontmatter: %w", err)
	}
	if data == nil {
		data = make(map[string]any)
	}

	body := strings.TrimPrefix(string(parts[1]), "\n")
	body = strings.TrimPrefix(body, "\r\n")
	if body != "" {
		data[ContentField] = body
	}

	if s.Strict {
		data = normalize(data).(map[string]any)
	}
	return core.Data(data), nil
}

func (s *MarkdownSerializer) Serialize(data core.Data) ([]byte, error) {
	meta := make(map[string]any, len(data))
	var body string
	for k, v := range data {
		if k == ContentField {
			if str, ok := v.(string); ok {
				body = str
				continue
			}
		}
		meta[k] = v
	}

	var buf bytes.Buffer
	if len(meta) > 0 {
		buf.WriteString("---\n")
		encoder := yaml.NewEncoder(&buf)
		encoder.SetIndent(2)
		if err := encoder.Encode(meta); err != nil {
			return nil, err
		}
		encoder.Close()
		buf.WriteString("---\n")
	}
	buf.WriteString(body)
	return buf.Bytes(), nil
}

// normalize converts numeric values to json.Number, recursively.
func normalize(val any) any {
	switch v := val.(type) {
	case map[string]any:
		m := make(map[string]any, len(v))
		for k, item := range v {
			m[k] = normalize(item)
		}
		return m
	case []any:
		l := make([]any, len(v))
		for i, item := range v {
			l[i] = normalize(item)
		}
		return l
	case int:
		return json.Number(fmt.Sprintf("%d", v))
	case int64:
		return json.Number(fmt.Sprintf("%d", v))
	case uint64:
		return json.Number(fmt.Sprintf("%d", v))
	case float64:
		return json.Number(fmt.Sprintf("%v", v))
	default:
		return v
	}
}
