// Package format renders result values as JSON text.
//
// Three output modes are supported, selected by the run configuration:
// pretty (default, two-space indent), compact (-c), and raw (-r, top-level
// strings print without quotes). Raw combines with either of the other two.
package format

import (
	"encoding/json"

	"github.com/tidwall/pretty"

	"github.com/jnkit/zq/pkg/types"
)

// prettyOptions matches the default output style: two-space indentation,
// keys in document order.
var prettyOptions = &pretty.Options{
	Indent: "  ",
	Width:  80,
}

// Format renders a single result value according to the configuration.
// The returned string never ends with a newline; the caller owns record
// separation.
func Format(v interface{}, cfg types.Config) (string, error) {
	if cfg.Raw {
		if s, ok := v.(string); ok {
			return s, nil
		}
	}

	data, err := json.Marshal(v)
	if err != nil {
		return "", types.NewError(types.ErrInvalidInput, "Cannot encode result", -1).WithCause(err)
	}

	if cfg.Compact {
		return string(data), nil
	}

	out := pretty.PrettyOptions(data, prettyOptions)
	// pretty appends a trailing newline.
	for len(out) > 0 && out[len(out)-1] == '\n' {
		out = out[:len(out)-1]
	}
	return string(out), nil
}
