package ingest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// AgentRecord is one upstream agent's output: the agent identifier plus the
// free-form key/value mapping it produced.
type AgentRecord struct {
	Agent  string
	Fields map[string]any
}

// Empty reports whether the record carries no data at all
func (r AgentRecord) Empty() bool {
	return len(r.Fields) == 0
}

// LoadResult contains the loaded records plus any boundary warnings
type LoadResult struct {
	Records  []AgentRecord
	Warnings []string
}

// Financial quantity fields must carry a usable number; a null or malformed
// value here aborts the load instead of being silently zeroed.
var financialFields = map[string]bool{
	"revenue":         true,
	"ebitda":          true,
	"valuation":       true,
	"net_debt":        true,
	"purchase_price":  true,
	"working_capital": true,
	"deal_value":      true,
}

// Descriptive text fields may be absent; they are replaced with an explicit
// marker and a recorded warning rather than an empty string.
const unavailableMarker = "unavailable"

// Loader reads agent-output records from a JSON file or a directory of JSON
// files (one record per agent). All numeric coercion happens here, once, at
// the boundary.
type Loader struct{}

// NewLoader creates a new loader
func NewLoader() *Loader {
	return &Loader{}
}

// Load reads agent records from the given path. A directory is read as one
// record per *.json file, keyed by file name; a single file must hold a JSON
// object mapping agent identifiers to their output records.
func (l *Loader) Load(path string) (*LoadResult, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat input: %w", err)
	}

	if info.IsDir() {
		return l.loadDir(path)
	}
	return l.loadFile(path)
}

func (l *Loader) loadFile(path string) (*LoadResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}

	var raw map[string]map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}

	result := &LoadResult{}

	// Deterministic record order regardless of map iteration
	agents := make([]string, 0, len(raw))
	for agent := range raw {
		agents = append(agents, agent)
	}
	sort.Strings(agents)

	for _, agent := range agents {
		record, warnings, err := sanitizeRecord(agent, raw[agent])
		if err != nil {
			return nil, err
		}
		result.Records = append(result.Records, record)
		result.Warnings = append(result.Warnings, warnings...)
	}

	return result, nil
}

func (l *Loader) loadDir(dir string) (*LoadResult, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read input dir: %w", err)
	}

	result := &LoadResult{}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", entry.Name(), err)
		}

		var fields map[string]any
		if err := json.Unmarshal(data, &fields); err != nil {
			return nil, fmt.Errorf("parse %s: %w", entry.Name(), err)
		}

		agent := strings.TrimSuffix(entry.Name(), ".json")
		record, warnings, err := sanitizeRecord(agent, fields)
		if err != nil {
			return nil, err
		}
		result.Records = append(result.Records, record)
		result.Warnings = append(result.Warnings, warnings...)
	}

	return result, nil
}

// sanitizeRecord applies the boundary coercion policy to one record:
// financial quantities fail fast on null or non-numeric values, descriptive
// text defaults to an explicit marker, and every defaulting event is recorded
// as a warning.
func sanitizeRecord(agent string, fields map[string]any) (AgentRecord, []string, error) {
	record := AgentRecord{Agent: agent, Fields: make(map[string]any, len(fields))}
	var warnings []string

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		value := fields[key]

		if financialFields[key] {
			n, ok := asNumber(value)
			if !ok {
				return AgentRecord{}, nil, fmt.Errorf("agent %s: financial field %q has non-numeric value %v", agent, key, value)
			}
			record.Fields[key] = n
			continue
		}

		switch v := value.(type) {
		case nil:
			record.Fields[key] = unavailableMarker
			warnings = append(warnings, fmt.Sprintf("agent %s: field %q was null, defaulted to %q", agent, key, unavailableMarker))
		case string:
			if strings.TrimSpace(v) == "" {
				record.Fields[key] = unavailableMarker
				warnings = append(warnings, fmt.Sprintf("agent %s: field %q was empty, defaulted to %q", agent, key, unavailableMarker))
			} else {
				record.Fields[key] = v
			}
		default:
			record.Fields[key] = value
		}
	}

	return record, warnings, nil
}

// asNumber accepts the numeric shapes encoding/json produces
func asNumber(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}
