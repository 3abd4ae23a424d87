package serializer

import (
	"encoding/json"
	"fmt"
	"os"
)

// JSONSaver persists a value as formatted JSON. It is the default
// human-inspectable side-channel format.
type JSONSaver struct{}

func (JSONSaver) Save(path string, value any) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("serializer: json marshal: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("serializer: json write %s: %w", path, err)
	}
	return nil
}

// JSONLoader reconstructs a value saved by JSONSaver as a generic
// map[string]any / []any / primitive tree, matching encoding/json's default
// unmarshal-into-any behaviour.
type JSONLoader struct{}

func (JSONLoader) Load(path string) (any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("serializer: json read %s: %w", path, err)
	}
	var value any
	if err := json.Unmarshal(data, &value); err != nil {
		return nil, fmt.Errorf("serializer: json unmarshal %s: %w", path, err)
	}
	return value, nil
}
