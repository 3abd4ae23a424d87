package serializer

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"os"
)

// GobSaver persists a value using encoding/gob, the format the Result Store
// itself uses for its inline blobs — registered here too so a node can
// explicitly request side-channel gob persistence (e.g. to keep a large
// value out of the SQLite file while still round-tripping exact Go types,
// unlike the JSON format's lossy decode-to-any).
type GobSaver struct{}

func (GobSaver) Save(path string, value any) error {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(&value); err != nil {
		return fmt.Errorf("serializer: gob encode: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("serializer: gob write %s: %w", path, err)
	}
	return nil
}

// GobLoader reconstructs a value saved by GobSaver.
type GobLoader struct{}

func (GobLoader) Load(path string) (any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("serializer: gob read %s: %w", path, err)
	}
	var value any
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&value); err != nil {
		return nil, fmt.Errorf("serializer: gob decode %s: %w", path, err)
	}
	return value, nil
}
