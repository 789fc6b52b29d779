// Package errors provides structured, actionable error messages for reflow.
//
// Every error has a registered code (e.g., "E101") that maps to:
//   - A short message describing the error
//   - A detailed explanation
//   - A documentation URL
//
// # Error Categories
//
// Errors are organized into categories:
//   - render: reconciliation failures (hook order, bad paths, panics)
//   - protocol: wire and transcript errors
//   - config: reflow.json errors
//   - storage: transcript store errors
//   - cli: command line errors
//
// # Usage
//
//	err := errors.New("E101").
//	    WithPath("/c\"counter\"#0").
//	    WithSuggestion("Move the hook call out of the if statement")
//
//	fmt.Println(err.Format())
//	// Output:
//	// ERROR E101: More refs used than previous render
//	//
//	//   at /c"counter"#0
//	//
//	//   A component requested more hooks than it did on its previous
//	//   render. ...
//	//
//	//   Hint: Move the hook call out of the if statement
//	//
//	//   Learn more: https://reflow.dev/docs/errors/E101
//
// Errors from this package wrap the sentinel errors of the public packages,
// so callers use errors.Is against those sentinels rather than codes.
package errors
