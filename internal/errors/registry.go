package errors

import "sort"

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
	DocURL   string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Render Errors (E100-E119)
	// ============================================

	"E101": {
		Category: CategoryRender,
		Message:  "More refs used than previous render",
		Detail:   "A component requested more hooks than it did on its previous render. Hooks must be called unconditionally and in the same order on every render.",
		DocURL:   "https://reflow.dev/docs/errors/E101",
	},
	"E102": {
		Category: CategoryRender,
		Message:  "Fewer refs used than previous render",
		Detail:   "A component requested fewer hooks than it did on its previous render. Hooks must not be called inside conditions or loops whose length varies.",
		DocURL:   "https://reflow.dev/docs/errors/E102",
	},
	"E103": {
		Category: CategoryRender,
		Message:  "Text node cannot rerender",
		Detail:   "A text node was asked to update in place. Text nodes are either equal or replaced; this indicates a dirty path that points at text.",
		DocURL:   "https://reflow.dev/docs/errors/E103",
	},
	"E104": {
		Category: CategoryRender,
		Message:  "Path does not address a node",
		Detail:   "A key or index path did not resolve in the current tree. The node was probably removed by an earlier update.",
		DocURL:   "https://reflow.dev/docs/errors/E104",
	},
	"E105": {
		Category: CategoryRender,
		Message:  "Render function panicked",
		Detail:   "A component render function panicked. The update was abandoned and the tree stopped.",
		DocURL:   "https://reflow.dev/docs/errors/E105",
	},
	"E106": {
		Category: CategoryRender,
		Message:  "Event handler panicked",
		Detail:   "An event handler panicked. The event was dropped; the tree keeps running.",
		DocURL:   "https://reflow.dev/docs/errors/E106",
	},
	"E107": {
		Category: CategoryRender,
		Message:  "Scheduler not rendered",
		Detail:   "Rerender, Invoke or Close was called before Render or after Close.",
		DocURL:   "https://reflow.dev/docs/errors/E107",
	},

	// ============================================
	// Protocol Errors (E120-E139)
	// ============================================

	"E120": {
		Category: CategoryProtocol,
		Message:  "Malformed event message",
		Detail:   "An event message must be a JSON array: [eventType, ...path, payload].",
		DocURL:   "https://reflow.dev/docs/errors/E120",
	},
	"E121": {
		Category: CategoryProtocol,
		Message:  "Transcript decode error",
		Detail:   "A transcript frame could not be decoded. The file may be truncated or written by an incompatible version.",
		DocURL:   "https://reflow.dev/docs/errors/E121",
	},
	"E122": {
		Category: CategoryProtocol,
		Message:  "Frame too large",
		Detail:   "A transcript frame exceeds the maximum payload size.",
		DocURL:   "https://reflow.dev/docs/errors/E122",
	},
	"E123": {
		Category: CategoryProtocol,
		Message:  "Session not found",
		Detail:   "The session ID is invalid, already connected, or the session has expired.",
		DocURL:   "https://reflow.dev/docs/errors/E123",
	},
	"E124": {
		Category: CategoryProtocol,
		Message:  "WebSocket connection failed",
		Detail:   "The WebSocket upgrade or a read/write on the connection failed.",
		DocURL:   "https://reflow.dev/docs/errors/E124",
	},

	// ============================================
	// Config Errors (E140-E159)
	// ============================================

	"E140": {
		Category: CategoryConfig,
		Message:  "Invalid reflow.json",
		Detail:   "The configuration file could not be parsed as JSON.",
		DocURL:   "https://reflow.dev/docs/errors/E140",
	},
	"E141": {
		Category: CategoryConfig,
		Message:  "Invalid configuration value",
		Detail:   "A configuration value is out of range or refers to an unknown option.",
		DocURL:   "https://reflow.dev/docs/errors/E141",
	},

	// ============================================
	// Storage Errors (E160-E179)
	// ============================================

	"E160": {
		Category: CategoryStorage,
		Message:  "Transcript not found",
		Detail:   "No transcript exists with the given ID.",
		DocURL:   "https://reflow.dev/docs/errors/E160",
	},
	"E161": {
		Category: CategoryStorage,
		Message:  "Transcript store failed",
		Detail:   "Reading or writing the transcript store failed.",
		DocURL:   "https://reflow.dev/docs/errors/E161",
	},

	// ============================================
	// CLI Errors (E180-E199)
	// ============================================

	"E180": {
		Category: CategoryCLI,
		Message:  "Unknown demo",
		Detail:   "The requested demo application does not exist. Run 'reflow serve --help' for the list.",
		DocURL:   "https://reflow.dev/docs/errors/E180",
	},
	"E181": {
		Category: CategoryCLI,
		Message:  "Port already in use",
		Detail:   "The server could not listen on the configured address.",
		DocURL:   "https://reflow.dev/docs/errors/E181",
	},
}

// GetAllCodes returns all registered error codes in ascending order.
func GetAllCodes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// GetTemplate returns the template for an error code.
func GetTemplate(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}
