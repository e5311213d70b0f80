package ui

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Choice is the user's answer to the version-control status prompt.
type Choice string

const (
	ChoiceStage    Choice = "stage"
	ChoiceContinue Choice = "continue"
	ChoiceCancel   Choice = "cancel"
)

// UI is the collaborator the workflows use for confirmations and status
// output.
type UI interface {
	Confirm(message string) bool
	ConfirmVCSStatus(hasUnstagedChanges bool) Choice
	NotifyInfo(message string)
	NotifyError(message string)
}

// Console is an interactive UI reading answers from stdin.
type Console struct {
	In  io.Reader
	Out io.Writer
}

func NewConsole() *Console {
	return &Console{In: os.Stdin, Out: os.Stdout}
}

func (c *Console) Confirm(message string) bool {
	fmt.Fprintf(c.Out, "%s [y/N]: ", message)
	return strings.EqualFold(c.readLine(), "y")
}

func (c *Console) ConfirmVCSStatus(hasUnstagedChanges bool) Choice {
	if !hasUnstagedChanges {
		return ChoiceContinue
	}
	fmt.Fprint(c.Out, "There are unstaged changes. (s)tage all, (c)ontinue, or c(a)ncel? ")
	switch strings.ToLower(c.readLine()) {
	case "s", "stage":
		return ChoiceStage
	case "c", "continue":
		return ChoiceContinue
	}
	return ChoiceCancel
}

func (c *Console) NotifyInfo(message string) {
	fmt.Fprintf(c.Out, "ℹ️  %s\n", message)
}

func (c *Console) NotifyError(message string) {
	fmt.Fprintf(c.Out, "❌ %s\n", message)
}

func (c *Console) readLine() string {
	reader := bufio.NewReader(c.In)
	line, _ := reader.ReadString('\n')
	return strings.TrimSpace(line)
}

// Auto is a non-interactive UI for scripted runs: it confirms everything and
// continues past the version-control prompt without staging.
type Auto struct {
	Out io.Writer
}

func NewAuto() *Auto {
	return &Auto{Out: os.Stdout}
}

func (a *Auto) Confirm(string) bool { return true }

func (a *Auto) ConfirmVCSStatus(bool) Choice { return ChoiceContinue }

func (a *Auto) NotifyInfo(message string) {
	fmt.Fprintf(a.Out, "ℹ️  %s\n", message)
}

func (a *Auto) NotifyError(message string) {
	fmt.Fprintf(a.Out, "❌ %s\n", message)
}
