package license

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	apperrors "github.com/Varian-MedicalAffairsAppliedSolutions/MAAS-PlanComplexity/internal/errors"
)

// ConsolePrompter asks for an access code on a terminal. An empty
// submission, "q", or end of input counts as cancellation. The read is
// synchronous and unbounded: waiting for the user has no timeout.
type ConsolePrompter struct {
	In  io.Reader
	Out io.Writer

	scanner *bufio.Scanner
}

// NewConsolePrompter builds a prompter over the given streams,
// typically os.Stdin and os.Stdout.
func NewConsolePrompter(in io.Reader, out io.Writer) *ConsolePrompter {
	return &ConsolePrompter{
		In:      in,
		Out:     out,
		scanner: bufio.NewScanner(in),
	}
}

// RequestCode implements Prompter.
func (p *ConsolePrompter) RequestCode(ctx context.Context, req PromptRequest) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("%w: %v", apperrors.ErrPromptCancelled, err)
	}

	// Struct-literal construction skips NewConsolePrompter.
	if p.scanner == nil {
		p.scanner = bufio.NewScanner(p.In)
	}

	if req.LastInvalid {
		fmt.Fprintln(p.Out, "The code you entered is not valid for this version.")
	}
	fmt.Fprintf(p.Out, "%s %s requires an access code.\n", req.Product, req.Version)
	fmt.Fprint(p.Out, "Enter code (or press Enter to cancel): ")

	if !p.scanner.Scan() {
		if err := p.scanner.Err(); err != nil {
			return "", err
		}
		return "", apperrors.ErrPromptCancelled
	}

	code := strings.TrimSpace(p.scanner.Text())
	if code == "" || strings.EqualFold(code, "q") {
		return "", apperrors.ErrPromptCancelled
	}
	return code, nil
}
