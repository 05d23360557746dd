package loader

import (
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/go-logr/logr"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// LoadRecords parses input into records, auto-detecting the format.
// Supports:
// - a YAML or JSON list of mappings
// - multi-document YAML (separated by ---), one mapping or list per document
// - newline-delimited JSON (NDJSON): one object per line
// - TOML with a single array of tables ([[name]])
//
// A document that is a single mapping holding exactly one list of mappings
// is unwrapped to that list; any other mapping is a single record.
func LoadRecords(input string) ([]Record, error) {
	return LoadRecordsWithLogger([]byte(input), logr.Discard())
}

// LoadRecordsBytes is LoadRecords for a byte slice.
func LoadRecordsBytes(data []byte) ([]Record, error) {
	return LoadRecordsWithLogger(data, logr.Discard())
}

// LoadFile reads path and parses it with LoadRecords.
func LoadFile(path string) ([]Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return LoadRecordsBytes(data)
}

// LoadRecordsWithLogger is like LoadRecordsBytes but logs the detected
// format at V(1).
func LoadRecordsWithLogger(data []byte, lgr logr.Logger) ([]Record, error) {
	input := strings.TrimSpace(string(data))
	if input == "" {
		return nil, fmt.Errorf("empty input")
	}

	lines := strings.Split(input, "\n")
	if len(lines) > 1 && isLikelyNDJSON(lines) {
		lgr.V(1).Info("detected input format", "format", "ndjson", "lines", len(lines))
		return loadNDJSON(lines)
	}

	// TOML [section] headers look like JSON arrays, so check TOML before YAML/JSON.
	if isLikelyTOML(input) {
		lgr.V(1).Info("detected input format", "format", "toml")
		return loadTOML(input)
	}

	lgr.V(1).Info("detected input format", "format", "yaml")
	return loadYAML(input)
}

// loadYAML decodes every YAML document (JSON included) into node trees so
// mapping keys keep their order.
func loadYAML(input string) ([]Record, error) {
	decoder := yaml.NewDecoder(strings.NewReader(input))
	var records []Record
	docs := 0
	for {
		var doc yaml.Node
		if err := decoder.Decode(&doc); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("invalid YAML: %w", err)
		}
		docs++
		recs, err := nodeRecords(&doc)
		if err != nil {
			return nil, fmt.Errorf("document %d: %w", docs, err)
		}
		records = append(records, recs...)
	}
	if docs == 0 {
		return nil, fmt.Errorf("no documents found in input")
	}
	return records, nil
}

// loadNDJSON parses one JSON object per non-empty line.
func loadNDJSON(lines []string) ([]Record, error) {
	records := make([]Record, 0, len(lines))
	for i, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		var node yaml.Node
		if err := yaml.Unmarshal([]byte(line), &node); err != nil {
			return nil, fmt.Errorf("line %d: invalid JSON: %w", i+1, err)
		}
		recs, err := nodeRecords(&node)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}
		records = append(records, recs...)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("no data found in input")
	}
	return records, nil
}

func nodeRecords(node *yaml.Node) ([]Record, error) {
	if node.Kind == yaml.DocumentNode {
		if len(node.Content) == 0 {
			return nil, nil
		}
		node = node.Content[0]
	}
	switch node.Kind {
	case yaml.SequenceNode:
		records := make([]Record, 0, len(node.Content))
		for i, item := range node.Content {
			if item.Kind != yaml.MappingNode {
				return nil, fmt.Errorf("item %d is not a mapping", i)
			}
			r, err := mappingRecord(item)
			if err != nil {
				return nil, fmt.Errorf("item %d: %w", i, err)
			}
			records = append(records, r)
		}
		return records, nil
	case yaml.MappingNode:
		if len(node.Content) == 2 && isListOfMappings(node.Content[1]) {
			return nodeRecords(node.Content[1])
		}
		r, err := mappingRecord(node)
		if err != nil {
			return nil, err
		}
		return []Record{r}, nil
	default:
		return nil, fmt.Errorf("expected a list or mapping, got %s", nodeKindName(node.Kind))
	}
}

func isListOfMappings(node *yaml.Node) bool {
	if node.Kind != yaml.SequenceNode || len(node.Content) == 0 {
		return false
	}
	for _, item := range node.Content {
		if item.Kind != yaml.MappingNode {
			return false
		}
	}
	return true
}

func mappingRecord(node *yaml.Node) (Record, error) {
	keys := make([]string, 0, len(node.Content)/2)
	values := make(map[string]any, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		keyNode, valNode := node.Content[i], node.Content[i+1]
		if keyNode.Kind != yaml.ScalarNode {
			return Record{}, fmt.Errorf("line %d: mapping keys must be scalars", keyNode.Line)
		}
		key := keyNode.Value
		if _, dup := values[key]; dup {
			return Record{}, fmt.Errorf("line %d: duplicate key %q", keyNode.Line, key)
		}
		var v any
		if err := valNode.Decode(&v); err != nil {
			return Record{}, fmt.Errorf("line %d: key %q: %w", valNode.Line, key, err)
		}
		keys = append(keys, key)
		values[key] = v
	}
	return Record{keys: keys, values: values}, nil
}

func nodeKindName(k yaml.Kind) string {
	switch k {
	case yaml.ScalarNode:
		return "scalar"
	case yaml.AliasNode:
		return "alias"
	case yaml.SequenceNode:
		return "list"
	case yaml.MappingNode:
		return "mapping"
	default:
		return "document"
	}
}

// loadTOML decodes TOML. TOML tables carry no key order once decoded, so
// keys are sorted.
func loadTOML(input string) ([]Record, error) {
	var data map[string]any
	if err := toml.Unmarshal([]byte(input), &data); err != nil {
		return nil, fmt.Errorf("invalid TOML: %w", err)
	}
	if len(data) == 1 {
		for _, v := range data {
			if list, ok := v.([]any); ok && len(list) > 0 {
				records := make([]Record, 0, len(list))
				for i, item := range list {
					m, ok := item.(map[string]any)
					if !ok {
						return nil, fmt.Errorf("item %d is not a table", i)
					}
					records = append(records, sortedRecord(m))
				}
				return records, nil
			}
		}
	}
	return []Record{sortedRecord(data)}, nil
}

func sortedRecord(m map[string]any) Record {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return Record{keys: keys, values: m}
}

// isLikelyNDJSON heuristic: a majority of non-empty lines must start with
// '{'. YAML lists ("- name: x") and pretty-printed JSON never qualify.
func isLikelyNDJSON(lines []string) bool {
	jsonCount := 0
	nonEmptyCount := 0

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		nonEmptyCount++
		if strings.HasPrefix(trimmed, "{") && strings.HasSuffix(trimmed, "}") {
			jsonCount++
		}
	}

	return nonEmptyCount > 1 && jsonCount > nonEmptyCount/2
}

var (
	// [server], [[items]], ["table name"], [database.credentials]; not [1, 2, 3].
	tomlSectionPattern = regexp.MustCompile(`^\s*\[{1,2}(?:[a-zA-Z_][a-zA-Z0-9_-]*|"[^"]+"|'[^']+')+(?:\.(?:[a-zA-Z_][a-zA-Z0-9_-]*|"[^"]+"|'[^']+'))*\]{1,2}\s*$`)
	// key = value, as opposed to YAML's key: value.
	tomlKeyValuePattern = regexp.MustCompile(`^\s*(?:[a-zA-Z_][a-zA-Z0-9_-]*|"[^"]+"|'[^']+')+(?:\.(?:[a-zA-Z_][a-zA-Z0-9_-]*|"[^"]+"|'[^']+'))*\s*=\s*.+$`)
)

// isLikelyTOML reports whether input has TOML section headers or mostly
// key = value lines.
func isLikelyTOML(input string) bool {
	sectionCount := 0
	keyValueCount := 0
	nonEmptyCount := 0

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
