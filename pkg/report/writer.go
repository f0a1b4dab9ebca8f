package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Write renders report.json into the output directory.
func Write(outputDir string, r *Report) error {
	if err := ensureDir(outputDir); err != nil {
		return fmt.Errorf("create report dir: %w", err)
	}
	if err := atomicWriteJSON(filepath.Join(outputDir, "report.json"), r); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// ensureDir creates the directory if it does not exist.
func ensureDir(path string) error {
	return os.MkdirAll(path, 0o755)
}

// atomicWriteJSON marshals v and writes it via a temp file plus rename so
// readers never see a partial file.
func atomicWriteJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
