package index

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// ReadDataset decodes a dataset file: a JSON array of records, each an
// item plus its optional explicit connections.
func ReadDataset(r io.Reader) ([]Record, error) {
	var records []Record
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, fmt.Errorf("decode dataset: %w", err)
	}
	return records, nil
}

// ReadDatasetFile reads a dataset from path.
func ReadDatasetFile(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	return ReadDataset(f)
}
