package base

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Sage-Bionetworks/synapse_sdk_go/pkg/synapse"
)

// Stdin is read when an entity argument is "-".
var Stdin io.Reader = os.Stdin

// PrintJSON writes v to the UI as indented JSON.
func (c *Command) PrintJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	c.UI.Output(string(data))
	return nil
}

// ParseEntity decodes an entity argument: inline JSON, "@path" for a file or
// "-" for standard input.
func ParseEntity(arg string) (synapse.Entity, error) {
	var data []byte
	switch {
	case arg == "-":
		b, err := io.ReadAll(Stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		data = b
	case strings.HasPrefix(arg, "@"):
		b, err := os.ReadFile(strings.TrimPrefix(arg, "@"))
		if err != nil {
			return nil, err
		}
		data = b
	default:
		data = []byte(arg)
	}

	var entity synapse.Entity
	if err := json.Unmarshal(data, &entity); err != nil {
		return nil, fmt.Errorf("entity is not a JSON object: %w", err)
	}
	if entity == nil {
		return nil, fmt.Errorf("entity is not a JSON object")
	}
	return entity, nil
}

// ParseService maps the -service flag value to a synapse.Service.
func ParseService(name string) (synapse.Service, error) {
	switch strings.ToLower(name) {
	case "", "repo", "repository":
		return synapse.Repository, nil
	case "auth", "authentication":
		return synapse.Authentication, nil
	default:
		return 0, fmt.Errorf("unknown service %q: want repo or auth", name)
	}
}
