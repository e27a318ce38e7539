package cli

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// prompter reads form fields one after another. The first input error is
// kept in err and every later read becomes a no-op returning the current
// value.
type prompter struct {
	r   *bufio.Reader
	w   io.Writer
	err error
}

func newPrompter(r *bufio.Reader, w io.Writer) *prompter {
	return &prompter{r: r, w: w}
}

func (p *prompter) text(label, cur string) string {
	if p.err != nil {
		return cur
	}
	v, err := GetTextWithDefault(p.r, label, cur, p.w)
	if err != nil {
		p.err = err
		return cur
	}
	return v
}

func (p *prompter) multiline(label, cur string) string {
	if p.err != nil {
		return cur
	}
	if cur != "" {
		label += " (empty keeps the current text)"
	}
	v, err := GetMultiline(p.r, label, p.w)
	if err != nil {
		p.err = err
		return cur
	}
	if v == "" {
		return cur
	}
	return v
}

func (p *prompter) float(label string, cur float64) float64 {
	s := p.text(label, formatFloat(cur))
	if p.err != nil || s == "" {
		return cur
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		p.err = fmt.Errorf("%w: %s must be a number", errUsage, label)
		return cur
	}
	return v
}

func (p *prompter) int(label string, cur int) int {
	s := p.text(label, strconv.Itoa(cur))
	if p.err != nil || s == "" {
		return cur
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		p.err = fmt.Errorf("%w: %s must be a whole number", errUsage, label)
		return cur
	}
	return v
}

func (p *prompter) yesNo(label string, cur bool) bool {
	def := "n"
	if cur {
		def = "y"
	}
	s := strings.ToLower(p.text(label+" (y/n)", def))
	if p.err != nil {
		return cur
	}
	switch s {
	case "y", "yes", "true":
		return true
	case "n", "no", "false":
		return false
	}
	p.err = fmt.Errorf("%w: %s must be y or n", errUsage, label)
	return cur
}

func (p *prompter) list(label string, cur []string) []string {
	s := p.text(label+" (comma separated)", strings.Join(cur, ", "))
	if p.err != nil {
		return cur
	}
	return splitList(s)
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
