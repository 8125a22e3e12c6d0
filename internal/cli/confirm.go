// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// confirm.go - The yes/no gate in front of destructive commands.
//
// The flow is:
//  1. --yes skips the prompt
//  2. --json requires --yes (no prompts in JSON mode)
//  3. a non-interactive stdin requires --yes
//  4. otherwise the user is asked, and only "y" or "yes" proceeds

package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrConfirmationRequired is returned when a prompt is needed but cannot
// be shown.
var ErrConfirmationRequired = errors.New("confirmation required")

// ConfirmationOptions describes where and whether a prompt may be shown.
type ConfirmationOptions struct {
	// ConfirmFlag is true when --yes was passed.
	ConfirmFlag bool
	JSONMode    bool

	// Interactive is true when In is a terminal.
	Interactive bool
	In          io.Reader
	Out         io.Writer

	// Details are printed above the question, in order.
	Details [][2]string
}

// RequireConfirmation asks the user to confirm action. It returns false
// with a nil error when the user declines.
func RequireConfirmation(action string, opts ConfirmationOptions) (bool, error) {
	if opts.ConfirmFlag {
		return true, nil
	}
	if opts.JSONMode {
		return false, fmt.Errorf("%w: use --yes to %s in JSON mode", ErrConfirmationRequired, action)
	}
	if !opts.Interactive || opts.In == nil {
		return false, fmt.Errorf("%w: %w", ErrConfirmationRequired,
			&TTYRequiredError{Operation: "confirm", Hint: "use --yes"})
	}

	if len(opts.Details) > 0 {
		fmt.Fprintln(opts.Out)
		for _, d := range opts.Details {
			fmt.Fprintf(opts.Out, "  %s%s\n", LabelStyle.Render(d[0]+":"), d[1])
		}
		fmt.Fprintln(opts.Out)
	}
	return PromptYesNo(opts.In, opts.Out, fmt.Sprintf("Are you sure you want to %s?", action))
}

// PromptYesNo writes question and reads one line from in. Anything other
// than y/yes is a no, including EOF.
func PromptYesNo(in io.Reader, out io.Writer, question string) (bool, error) {
	fmt.Fprintf(out, "%s [y/N]: ", question)

	input, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("failed to read confirmation: %w", err)
	}
	if errors.Is(err, io.EOF) && input == "" {
		fmt.Fprintln(out)
	}

	response := strings.ToLower(strings.TrimSpace(input))
	return response == "y" || response == "yes", nil
}
