package cli

import (
	"encoding/json"
	"fmt"
)

// OutputFlags selects the rendering of command output.
type OutputFlags struct {
	Output string `name:"output" short:"o" help:"Output format: table or json." enum:"table,json" default:"table"`
}

// JSON reports whether JSON output was requested.
func (f *OutputFlags) JSON() bool { return f.Output == "json" }

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal output: %w", err)
	}
	fmt.Println(string(out))
	return nil
}
