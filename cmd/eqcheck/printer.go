package main

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// printStructured writes v as json or yaml and reports whether the output
// format was structured. Text output is left to the caller.
func printStructured(w io.Writer, v any) (bool, error) {
	switch *output {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return true, enc.Encode(v)
	case "yaml":
		// Round-trip through JSON so field names follow the json tags.
		raw, err := json.Marshal(v)
		if err != nil {
			return true, err
		}
		var generic any
		if err := json.Unmarshal(raw, &generic); err != nil {
			return true, err
		}
		enc := yaml.NewEncoder(w)
		defer enc.Close()
		return true, enc.Encode(generic)
	case "text", "":
		return false, nil
	default:
		return true, fmt.Errorf("unknown output format %q", *output)
	}
}
