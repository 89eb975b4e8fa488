package board

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/isnad-dev/isnad/internal/isnaderr"
)

// WriteState serialises b as pretty JSON to jsonPath and the rendered
// markdown summary to mdPath, creating parent directories as needed.
// Both files are regenerated atomically (written whole, not streamed) on
// every call, matching the "regenerated atomically on every fold" contract.
func WriteState(jsonPath, mdPath string, b Board) error {
	if err := os.MkdirAll(filepath.Dir(jsonPath), 0755); err != nil {
		return isnaderr.IO(fmt.Sprintf("create dir for %s", jsonPath), err)
	}
	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return fmt.Errorf("encode board: %w", err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(jsonPath, data, 0644); err != nil {
		return isnaderr.IO(fmt.Sprintf("write %s", jsonPath), err)
	}
	if err := os.WriteFile(mdPath, []byte(RenderMarkdown(b)), 0644); err != nil {
		return isnaderr.IO(fmt.Sprintf("write %s", mdPath), err)
	}
	return nil
}
