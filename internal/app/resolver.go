package app

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"mcat-go/internal/mcat"
)

// PromptResolver asks the operator which source an unknown short code
// belongs to. When input is not interactive every unknown code is skipped.
type PromptResolver struct {
	in          *bufio.Reader
	out         io.Writer
	interactive bool
}

// NewPromptResolver prompts on out and reads answers from in. It only asks
// when in is a terminal.
func NewPromptResolver(in *os.File, out io.Writer) *PromptResolver {
	return &PromptResolver{
		in:          bufio.NewReader(in),
		out:         out,
		interactive: term.IsTerminal(int(in.Fd())),
	}
}

// newScriptedResolver reads answers from r without checking for a terminal.
func newScriptedResolver(r io.Reader, out io.Writer) *PromptResolver {
	return &PromptResolver{in: bufio.NewReader(r), out: out, interactive: true}
}

func (p *PromptResolver) ResolveUnknownSource(shortCode string) (string, error) {
	if !p.interactive {
		return "", nil
	}
	fmt.Fprintf(p.out, "Short code %q is not in the catalog.\nFull source name (empty to skip): ", shortCode)
	line, err := p.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("reading answer: %w", err)
	}
	return strings.TrimSpace(line), nil
}

var _ mcat.Resolver = (*PromptResolver)(nil)
