// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 EcoTech Solutions Contributors

package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/samber/oops"
	"golang.org/x/term"
)

// Prompter reads interactive input.
type Prompter interface {
	// Line reads one line of visible input.
	Line(prompt string) (string, error)
	// Secret reads one line without echo when input is a terminal.
	Secret(prompt string) (string, error)
}

type terminalPrompter struct {
	in  *bufio.Reader
	out io.Writer
	fd  int
	tty bool
}

func newTerminalPrompter(in io.Reader, out io.Writer) Prompter {
	p := &terminalPrompter{in: bufio.NewReader(in), out: out}
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		p.fd = int(f.Fd())
		p.tty = true
	}
	return p
}

func (p *terminalPrompter) Line(prompt string) (string, error) {
	fmt.Fprint(p.out, prompt)
	line, err := p.in.ReadString('\n')
	if err != nil && (!errors.Is(err, io.EOF) || line == "") {
		return "", oops.Code("CLI_INPUT_FAILED").Wrap(err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (p *terminalPrompter) Secret(prompt string) (string, error) {
	if !p.tty {
		return p.Line(prompt)
	}
	fmt.Fprint(p.out, prompt)
	secret, err := term.ReadPassword(p.fd)
	fmt.Fprintln(p.out)
	if err != nil {
		return "", oops.Code("CLI_INPUT_FAILED").Wrap(err)
	}
	return string(secret), nil
}
