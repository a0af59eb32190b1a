package export

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/ivanoskov/equilibra/internal/model"
)

type JSONFile struct {
	filename string
}

func NewJSONFile(filename string) *JSONFile {
	return &JSONFile{filename: filename}
}

func (f *JSONFile) Write(_ context.Context, txns []model.Transaction) error {
	if txns == nil {
		txns = []model.Transaction{}
	}
	data, err := json.MarshalIndent(txns, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode transactions: %w", err)
	}
	if err := os.WriteFile(f.filename, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", f.filename, err)
	}
	return nil
}
