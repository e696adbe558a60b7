package forest

import (
	"fmt"
	"os"

	"github.com/vmihailenco/msgpack/v5"
)

// Save serializes the trained ensemble to path with msgpack. Only the
// model itself is written; out-of-bag training state is not.
func (f *Forest) Save(path string) error {
	data, err := msgpack.Marshal(f)
	if err != nil {
		return fmt.Errorf("forest: encoding model: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("forest: writing model: %w", err)
	}
	return nil
}

// LoadForest reads a model written by Save.
func LoadForest(path string) (*Forest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("forest: reading model: %w", err)
	}
	var f Forest
	if err := msgpack.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("forest: decoding model: %w", err)
	}
	if len(f.Roots) == 0 || f.NumFeatures < 1 {
		return nil, fmt.Errorf("forest: %s does not contain a trained model", path)
	}
	return &f, nil
}
