// flags.go defines constants for all CLI flag names.
//
// Using constants instead of string literals prevents typos and enables
// compile-time checking when flag names are used in both Flags().Type()
// definitions and GetType() calls.
//
// Naming convention: Flag<PascalCaseName> where name matches the kebab-case
// CLI flag (e.g., "no-header" -> FlagNoHeader).

package extension

// Flag name constants for CLI commands.
const (
	// Boolean flags

	FlagGlobal   = "global"    // Use global scope (~/.tractome)
	FlagLocal    = "local"     // Use local scope (.tractome)
	FlagNoColour = "no-colour" // Disable ANSI colours in output
	FlagNoHeader = "no-header" // CSV files carry no header row
	FlagUnset    = "unset"     // Clear a config key back to its default

	// String flags

	FlagDelimiter = "delimiter" // CSV field delimiter
	FlagEncoding  = "encoding"  // CSV text encoding
	FlagReference = "reference" // NIfTI reference volume path
	FlagTexture   = "texture"   // Mesh texture image path

	// Integer flags

	FlagSample = "sample" // Number of sample rows to print
)
