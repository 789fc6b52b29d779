package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		wantMsg string
		wantCat Category
	}{
		{
			name:    "render error",
			code:    "E101",
			wantMsg: "More refs used than previous render",
			wantCat: CategoryRender,
		},
		{
			name:    "protocol error",
			code:    "E120",
			wantMsg: "Malformed event message",
			wantCat: CategoryProtocol,
		},
		{
			name:    "storage error",
			code:    "E160",
			wantMsg: "Transcript not found",
			wantCat: CategoryStorage,
		},
		{
			name:    "unknown error code",
			code:    "E999",
			wantMsg: "Unknown error",
			wantCat: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code)
			if err.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", err.Message, tt.wantMsg)
			}
			if err.Category != tt.wantCat {
				t.Errorf("Category = %q, want %q", err.Category, tt.wantCat)
			}
			if err.Code != tt.code {
				t.Errorf("Code = %q, want %q", err.Code, tt.code)
			}
		})
	}
}

func TestNewf(t *testing.T) {
	err := Newf(CategoryConfig, "field %q out of range", "queue")
	if err.Message != `field "queue" out of range` {
		t.Errorf("Message = %q, want %q", err.Message, `field "queue" out of range`)
	}
	if err.Category != CategoryConfig {
		t.Errorf("Category = %q, want %q", err.Category, CategoryConfig)
	}
}

func TestError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{"code only", New("E103"), "E103: Text node cannot rerender"},
		{"without code", &Error{Message: "test error"}, "test error"},
		{"with path", New("E104").WithPath("/x"), "E104: Path does not address a node at /x"},
		{"wrapped", New("E161").Wrap(fmt.Errorf("disk full")), "E161: Transcript store failed: disk full"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestError_Builders(t *testing.T) {
	err := New("E105").
		WithPath("/a").
		WithSuggestion("fix it").
		WithDetail("Custom detail").
		WithStack([]byte("goroutine 1\n"))

	if err.Path != "/a" {
		t.Errorf("Path = %q", err.Path)
	}
	if err.Suggestion != "fix it" {
		t.Errorf("Suggestion = %q", err.Suggestion)
	}
	if err.Detail != "Custom detail" {
		t.Errorf("Detail = %q", err.Detail)
	}
	if err.Stack != "goroutine 1\n" {
		t.Errorf("Stack = %q", err.Stack)
	}
}

func TestError_Wrap(t *testing.T) {
	sentinel := stderrors.New("sentinel")
	outer := New("E101").Wrap(sentinel)

	if outer.Unwrap() != sentinel {
		t.Error("Unwrap() should return wrapped error")
	}
	if !stderrors.Is(fmt.Errorf("context: %w", outer), sentinel) {
		t.Error("errors.Is should see through the coded error")
	}
}

func TestFromError(t *testing.T) {
	// nil error
	if FromError(nil, "E101") != nil {
		t.Error("FromError(nil, ...) should return nil")
	}

	// Already an Error
	e := New("E101")
	if FromError(e, "E102") != e {
		t.Error("FromError should return *Error as-is")
	}

	// Standard error
	stdErr := &testError{msg: "test error"}
	result := FromError(stdErr, "E161")
	if result.Wrapped != stdErr {
		t.Error("Standard error should be wrapped")
	}
	if result.Code != "E161" {
		t.Errorf("Code = %q, want E161", result.Code)
	}
}

type testError struct {
	msg string
}

func (e *testError) Error() string {
	return e.msg
}

func TestCode(t *testing.T) {
	if got := Code(fmt.Errorf("outer: %w", New("E123"))); got != "E123" {
		t.Errorf("Code() = %q, want E123", got)
	}
	if got := Code(stderrors.New("plain")); got != "" {
		t.Errorf("Code(plain) = %q, want empty", got)
	}
	if got := Code(nil); got != "" {
		t.Errorf("Code(nil) = %q, want empty", got)
	}
}

func TestFormat(t *testing.T) {
	DisableColors()
	defer EnableColors()

	err := New("E101").
		WithPath("/c\"counter\"#0").
		WithSuggestion("Call hooks unconditionally").
		WithStack([]byte("main.go:12\n"))

	formatted := err.Format()

	for _, want := range []string{
		"E101",
		"More refs used than previous render",
		"at /c\"counter\"#0",
		"Hint:",
		"Stack:",
		"Learn more:",
	} {
		if !strings.Contains(formatted, want) {
			t.Errorf("Format should contain %q:\n%s", want, formatted)
		}
	}
}

func TestFormatCompact(t *testing.T) {
	err := New("E104").WithPath("/a")
	compact := err.FormatCompact()

	want := "E104: Path does not address a node (/a)"
	if compact != want {
		t.Errorf("FormatCompact() = %q, want %q", compact, want)
	}
}

func TestFormatJSON(t *testing.T) {
	err := New("E101").WithPath("/a")
	json := err.FormatJSON()

	for _, want := range []string{
		`"code":"E101"`,
		`"category":"render"`,
		`"message":"More refs used than previous render"`,
		`"path":"/a"`,
	} {
		if !strings.Contains(json, want) {
			t.Errorf("JSON should contain %s: %s", want, json)
		}
	}
}

func TestGetAllCodes(t *testing.T) {
	codes := GetAllCodes()
	if len(codes) == 0 {
		t.Fatal("GetAllCodes() should return codes")
	}
	for i := 1; i < len(codes); i++ {
		if codes[i-1] >= codes[i] {
			t.Errorf("codes not sorted: %v", codes)
			break
		}
	}
}

func TestGetTemplate(t *testing.T) {
	template, ok := GetTemplate("E105")
	if !ok {
		t.Error("E105 should exist")
	}
	if template.Message != "Render function panicked" {
		t.Error("Template message mismatch")
	}

	_, ok = GetTemplate("E999")
	if ok {
		t.Error("E999 should not exist")
	}
}

func TestPrintError(t *testing.T) {
	DisableColors()
	defer EnableColors()

	var b strings.Builder
	PrintError(&b, New("E160").WithDetail("no transcript abc"))
	if !strings.Contains(b.String(), "ERROR E160: Transcript not found") {
		t.Errorf("PrintError = %q", b.String())
	}

	b.Reset()
	PrintError(&b, stderrors.New("plain"))
	if b.String() != "\nERROR: plain\n\n" {
		t.Errorf("PrintError(plain) = %q", b.String())
	}
}

func TestPrintErrorJSON(t *testing.T) {
	var b strings.Builder
	PrintErrorJSON(&b, fmt.Errorf("replay: %w", New("E160")))
	if !strings.HasPrefix(b.String(), `{"code":"E160",`) || !strings.HasSuffix(b.String(), "}\n") {
		t.Errorf("PrintErrorJSON = %q", b.String())
	}

	b.Reset()
	PrintErrorJSON(&b, stderrors.New(`bad "quote"`))
	if b.String() != `{"message":"bad \"quote\""}`+"\n" {
		t.Errorf("PrintErrorJSON(plain) = %q", b.String())
	}
}

func TestWrapText(t *testing.T) {
	// Test short text that doesn't need wrapping
	got := wrapText("short text", 100)
	if len(got) != 1 || got[0] != "short text" {
		t.Errorf("wrapText short text: got %v", got)
	}

	// Test text that needs wrapping
	got = wrapText("this is a longer text that should be wrapped", 20)
	if len(got) != 3 {
		t.Errorf("wrapText long text: expected 3 lines, got %d: %v", len(got), got)
	}

	got = wrapText("", 10)
	if len(got) != 0 {
		t.Errorf("wrapText empty: expected empty, got %v", got)
	}
}

func TestColorFunctions(t *testing.T) {
	EnableColors()
	if !strings.Contains(red("test"), "\033[31m") {
		t.Error("red should contain ANSI code when colors enabled")
	}

	DisableColors()
	if strings.Contains(red("test"), "\033[") {
		t.Error("red should not contain ANSI code when colors disabled")
	}
	EnableColors()
}
