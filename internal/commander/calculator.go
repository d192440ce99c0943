package commander

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"regexp"
	"strings"
	"time"

	"yc/internal/action"
	"yc/internal/domain"
)

// ErrNotFormula is returned for input that the calculator refuses to evaluate.
var ErrNotFormula = errors.New("not a formula")

var (
	formulaRe = regexp.MustCompile(`^[0-9a-z.+\-*/%^(),= ]+$`)
	wordRe    = regexp.MustCompile(`[a-z]+`)
	digitRe   = regexp.MustCompile(`[0-9]`)
	// bc -l math library functions; any other name is a bc variable
	calcFunctions = map[string]bool{"sqrt": true, "s": true, "c": true, "a": true, "l": true, "e": true, "j": true}
)

// DefaultCalculatorProgram evaluates formulas when no program is configured.
const DefaultCalculatorProgram = "bc"

// Calculator evaluates the query as an arithmetic formula with bc.
type Calculator struct {
	program string
	score   int
	timeout time.Duration
}

func NewCalculator(program string, score int) *Calculator {
	if program == "" {
		program = DefaultCalculatorProgram
	}
	return &Calculator{program: program, score: score, timeout: 2 * time.Second}
}

func (c *Calculator) Order(ctx context.Context, keywords []string, sink domain.Sink) error {
	formula := strings.Join(keywords, "")
	if !IsFormula(formula) {
		return nil
	}
	answer, err := c.Evaluate(ctx, formula)
	if err != nil {
		if errors.Is(err, ErrNotFormula) || ctx.Err() != nil {
			return nil
		}
		return err
	}
	return sink.Put(ctx, &Calculation{formula: formula, answer: answer, score: c.score})
}

// IsFormula reports whether s only uses digits, operators and bc math
// function calls. A name must be called, as in s(1), or be scale being
// assigned; bc reads any other name as a variable that evaluates to 0.
func IsFormula(s string) bool {
	if !formulaRe.MatchString(s) || !digitRe.MatchString(s) {
		return false
	}
	for _, loc := range wordRe.FindAllStringIndex(s, -1) {
		word, next := s[loc[0]:loc[1]], s[loc[1]:]
		switch {
		case calcFunctions[word] && strings.HasPrefix(next, "("):
		case word == "scale" && strings.HasPrefix(next, "="):
		default:
			return false
		}
	}
	return true
}

// Evaluate runs formula through bc -l and returns the normalised result.
func (c *Calculator) Evaluate(ctx context.Context, formula string) (string, error) {
	runCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, c.program, "-l")
	cmd.Stdin = strings.NewReader(formula + "\n")
	var stdout, stderr bytes.Buffer
	cmd.Stdout, cmd.Stderr = &stdout, &stderr
	cmd.WaitDelay = 100 * time.Millisecond
	err := cmd.Run()
	if stderr.Len() > 0 {
		return "", fmt.Errorf("%w: %s", ErrNotFormula, strings.TrimSpace(stderr.String()))
	}
	if err != nil {
		return "", fmt.Errorf("run %s: %w", c.program, err)
	}
	out := strings.ReplaceAll(stdout.String(), "\\\n", "")
	out = strings.TrimSpace(out)
	if out == "" || strings.Contains(out, "\n") {
		return "", ErrNotFormula
	}
	return normalizeNumber(out), nil
}

func normalizeNumber(s string) string {
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	if strings.Contains(s, ".") {
		s = strings.TrimRight(s, "0")
		s = strings.TrimSuffix(s, ".")
	}
	if strings.HasPrefix(s, ".") {
		s = "0" + s
	}
	if s == "" {
		s = "0"
	}
	if neg && s != "0" {
		s = "-" + s
	}
	return s
}

// Calculation is the result of one evaluated formula.
type Calculation struct {
	formula string
	answer  string
	score   int
}

func (c *Calculation) Answer() string   { return c.answer }
func (c *Calculation) Score() int       { return c.score }
func (c *Calculation) String() string   { return c.formula + "=" + c.answer }
func (c *Calculation) CopyText() string { return c.answer }
func (c *Calculation) Marker() string   { return "= " }
func (c *Calculation) Execute() error   { return action.Inject(c.answer) }

func (c *Calculation) Preview() domain.Preview {
	return domain.Preview{}.Add("answer", c.answer)
}
