package cli

import (
	"encoding/json"
	"fmt"
	"os"
)

// outputJSON writes v as indented JSON to stdout.
func outputJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode JSON output: %w", err)
	}
	fmt.Fprintln(os.Stdout, string(data))
	return nil
}
