// Package simulator produces synthetic execution results for submitted
// source text without compiling or running anything. It is the seam where a
// real sandboxed execution engine would plug in later: callers depend only
// on the Simulator interface and the Result shape.
package simulator

import (
	"context"
	"fmt"
	"math/rand"
	"regexp"
	"strings"
	"time"
)

type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
	// StatusTimeout is declared for a future real-execution engine.
	// No current code path produces it.
	StatusTimeout Status = "timeout"
)

type Request struct {
	Code     string `json:"code"`
	Language string `json:"language"`
	Input    string `json:"input,omitempty"` // Accepted but not consumed by any rule
}

type Result struct {
	Output          string  `json:"output"`
	Error           *string `json:"error"`
	ExecutionTimeMs int64   `json:"execution_time_ms"`
	MemoryUsedKb    int     `json:"memory_used_kb"`
	Status          Status  `json:"status"`
}

// Simulator maps a request to a Result. Implementations never return an
// error to the caller; every failure path resolves to Status == StatusError
// inside the Result.
type Simulator interface {
	Execute(ctx context.Context, req Request) Result
}

const syntaxErrorMessage = "SyntaxError: Invalid syntax"

// Substrings that force a simulated syntax error regardless of language.
var errorTriggers = []string{"syntax_error", "undefined_variable"}

// String-literal extraction patterns per language. Only single- or
// double-quoted literal arguments are recognized; variables, expressions
// and f-strings extract nothing.
var (
	pythonPrintRe = regexp.MustCompile(`print\(['"]([^'"]*)['"]\)`)
	jsConsoleRe   = regexp.MustCompile(`console\.log\(['"]([^'"]*)['"]\)`)
	javaPrintRe   = regexp.MustCompile(`System\.out\.println\(['"]([^'"]*)['"]\)`)
)

type patternSimulator struct {
	now  func() time.Time
	intn func(n int) int
}

// New returns the pattern-matching Simulator backed by the wall clock and
// the global RNG.
func New() Simulator {
	return NewWithSources(time.Now, rand.Intn)
}

// NewWithSources injects the clock and RNG so results are deterministic
// under test doubles.
func NewWithSources(now func() time.Time, intn func(n int) int) Simulator {
	return &patternSimulator{now: now, intn: intn}
}

func (s *patternSimulator) Execute(ctx context.Context, req Request) (res Result) {
	start := s.now()

	defer func() {
		if r := recover(); r != nil {
			msg := fmt.Sprint(r)
			if msg == "" {
				msg = "Unknown execution error"
			}
			res = s.errorResult(start, msg)
		}
	}()

	for _, trigger := range errorTriggers {
		if strings.Contains(req.Code, trigger) {
			return s.errorResult(start, syntaxErrorMessage)
		}
	}

	output := simulateOutput(req.Code, req.Language)

	return Result{
		Output:          output,
		Error:           nil,
		ExecutionTimeMs: s.now().Sub(start).Milliseconds(),
		MemoryUsedKb:    s.memoryUsedKb(),
		Status:          StatusSuccess,
	}
}

func (s *patternSimulator) errorResult(start time.Time, message string) Result {
	return Result{
		Output:          "",
		Error:           &message,
		ExecutionTimeMs: s.now().Sub(start).Milliseconds(),
		MemoryUsedKb:    s.memoryUsedKb(),
		Status:          StatusError,
	}
}

// memoryUsedKb is a uniformly random figure in [500, 1499].
func (s *patternSimulator) memoryUsedKb() int {
	return s.intn(1000) + 500
}

func simulateOutput(code, language string) string {
	switch strings.ToLower(language) {
	case "python":
		if strings.Contains(code, "print(") {
			return extractLiterals(pythonPrintRe, code)
		}
		if strings.Contains(code, "def ") && strings.Contains(code, "return") {
			return functionOutput(code)
		}
		return "Code executed successfully"

	case "javascript":
		if strings.Contains(code, "console.log(") {
			return extractLiterals(jsConsoleRe, code)
		}
		if strings.Contains(code, "function ") && strings.Contains(code, "return") {
			if strings.Contains(code, "fibonacci") {
				return "5"
			}
			return "Function executed successfully"
		}
		return "Code executed successfully"

	case "java":
		if strings.Contains(code, "System.out.println(") {
			return extractLiterals(javaPrintRe, code)
		}
		return "Java code compiled and executed successfully"

	case "cpp", "c++":
		if strings.Contains(code, "cout") {
			return "Hello, World!"
		}
		return "C++ code compiled and executed successfully"

	default:
		return fmt.Sprintf("%s code executed successfully", language)
	}
}

// functionOutput is a hard-coded stand-in keyed by the function's apparent
// purpose. A real engine would replace this wholesale.
func functionOutput(code string) string {
	if strings.Contains(code, "fibonacci") {
		return "5"
	}
	if strings.Contains(code, "two_sum") {
		return "[0, 1]"
	}
	return "Function executed successfully"
}

// extractLiterals joins the quoted contents of every matching call with
// newlines. No matches yields an empty output.
func extractLiterals(re *regexp.Regexp, code string) string {
	matches := re.FindAllStringSubmatch(code, -1)
	if len(matches) == 0 {
		return ""
	}
	parts := make([]string, 0, len(matches))
	for _, m := range matches {
		parts = append(parts, m[1])
	}
	return strings.Join(parts, "\n")
}
