package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/recapd/recap-cli/config"
)

// renderOutput writes v to w in the requested format. Text rendering is the
// caller's job; this helper only handles the structured formats and returns
// false when the caller should print text itself.
func renderOutput(w io.Writer, format config.OutputFormat, v interface{}) (bool, error) {
	switch format {
	case config.OutputFormatJSON:
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return true, fmt.Errorf("marshaling JSON: %w", err)
		}
		fmt.Fprintln(w, string(data))
		return true, nil
	case config.OutputFormatYAML:
		data, err := yaml.Marshal(v)
		if err != nil {
			return true, fmt.Errorf("marshaling YAML: %w", err)
		}
		fmt.Fprint(w, string(data))
		return true, nil
	default:
		return false, nil
	}
}

// readPayload reads a payload from path, or from stdin when path is "-".
func readPayload(path string) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("reading stdin: %w", err)
		}
		return data, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading payload file: %w", err)
	}
	return data, nil
}
