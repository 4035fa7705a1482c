package types

// Config is the immutable set of recognized run flags. It is resolved once
// at startup and passed explicitly through every evaluation and formatting
// call; there is no process-wide configuration state.
type Config struct {
	// Compact elides all insignificant whitespace in output.
	Compact bool
	// Raw prints a top-level string result without surrounding quotes.
	Raw bool
	// Slurp collects the entire input stream into one array value and
	// evaluates the query once, instead of once per line.
	Slurp bool
}
