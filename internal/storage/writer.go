package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"

	"github.com/wilayah-id/crawler/internal/entities"
)

// Writer persists one crawl result as a timestamped JSON file.
type Writer struct {
	dir string
}

func NewWriter(dir string) *Writer {
	return &Writer{dir: dir}
}

func (w *Writer) Save(doc *entities.Document) (string, error) {

	if err := os.MkdirAll(w.dir, 0755); err != nil {
		return "", errors.Wrap(err, "create output directory")
	}

	name := fmt.Sprintf("Hierarchy_data_%s.json", time.Now().Format("20060102_150405"))
	path := filepath.Join(w.dir, name)

	file, err := os.Create(path)
	if err != nil {
		return "", errors.Wrap(err, "create output file")
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	// Region names are Indonesian text, keep them readable in the artifact.
	encoder.SetEscapeHTML(false)

	if err := encoder.Encode(doc); err != nil {
		return "", errors.Wrap(err, "encode document")
	}
	return path, nil
}
