// Package term implements the operator terminal for the approval workflow.
package term

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"outreachbot/internal/outreach"
)

// Prompter reads operator decisions from an input stream and renders the
// review screens to an output stream. It implements outreach.Prompter.
type Prompter struct {
	in  *bufio.Scanner
	out io.Writer
}

// New builds a prompter over the given streams (normally stdin/stdout).
func New(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: bufio.NewScanner(in), out: out}
}

func (p *Prompter) readLine() (string, error) {
	if !p.in.Scan() {
		if err := p.in.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return strings.TrimSpace(p.in.Text()), nil
}

func (p *Prompter) ask(prompt string, choices []string, def string) (string, error) {
	for {
		fmt.Fprintf(p.out, "%s [%s] (default %s): ", prompt, strings.Join(choices, "/"), def)
		line, err := p.readLine()
		if err != nil {
			return "", err
		}
		if line == "" {
			return def, nil
		}
		line = strings.ToLower(line)
		for _, c := range choices {
			if line == c {
				return c, nil
			}
		}
		fmt.Fprintf(p.out, "Invalid choice %q.\n", line)
	}
}

// ChooseMode asks which review mode to run over the staged queue.
func (p *Prompter) ChooseMode(staged int) (outreach.Mode, error) {
	fmt.Fprintf(p.out, "\nInteractive Outreach Session\n")
	fmt.Fprintf(p.out, "Found %d messages to review\n\n", staged)
	fmt.Fprintln(p.out, "Choose review mode:")
	fmt.Fprintln(p.out, "  1. Individual review - review each message separately")
	fmt.Fprintln(p.out, "  2. Batch approval    - review all recipients and approve in bulk")
	fmt.Fprintln(p.out, "  3. Auto-send all     - send all messages without review")

	choice, err := p.ask("Select mode", []string{"1", "2", "3"}, "1")
	if err != nil {
		return 0, err
	}
	switch choice {
	case "2":
		return outreach.ModeBatch, nil
	case "3":
		return outreach.ModeAuto, nil
	default:
		return outreach.ModeIndividual, nil
	}
}

// Review renders one entry and asks for a decision.
func (p *Prompter) Review(entry outreach.Pending, index, total int) (outreach.Decision, error) {
	c := entry.Contact
	fmt.Fprintf(p.out, "\nMessage %d of %d\n", index, total)
	fmt.Fprintln(p.out, strings.Repeat("-", 72))
	fmt.Fprintf(p.out, "Name:         %s\n", c.Name)
	fmt.Fprintf(p.out, "Email:        %s\n", c.Email)
	fmt.Fprintf(p.out, "Organization: %s\n", c.Organization)
	fmt.Fprintf(p.out, "Role:         %s\n", c.Role)
	fmt.Fprintf(p.out, "Category:     %s\n", c.Category)
	fmt.Fprintf(p.out, "Source:       %s\n", c.Source)
	fmt.Fprintln(p.out, strings.Repeat("-", 72))
	fmt.Fprintf(p.out, "Subject: %s\n\n", entry.Message.Subject)
	fmt.Fprintln(p.out, entry.Message.Body)
	fmt.Fprintln(p.out, strings.Repeat("-", 72))
	fmt.Fprintln(p.out, "  s - send    e - edit    k - skip    q - quit and save progress")

	choice, err := p.ask("What would you like to do?", []string{"s", "e", "k", "q"}, "s")
	if err != nil {
		return 0, err
	}
	switch choice {
	case "e":
		return outreach.DecisionEdit, nil
	case "k":
		return outreach.DecisionSkip, nil
	case "q":
		return outreach.DecisionQuit, nil
	default:
		return outreach.DecisionSend, nil
	}
}

// EditMessage lets the operator replace the subject and optionally the body.
// Body input ends with a line containing only "END".
func (p *Prompter) EditMessage(m outreach.Message) (outreach.Message, error) {
	fmt.Fprintf(p.out, "\nEdit Message\nSubject [%s]: ", m.Subject)
	line, err := p.readLine()
	if err != nil {
		return m, err
	}
	if line != "" {
		m.Subject = line
	}

	ok, err := p.Confirm("Edit the message body?")
	if err != nil {
		return m, err
	}
	if !ok {
		return m, nil
	}

	fmt.Fprintln(p.out, "Enter the new body (finish with a line containing only END):")
	var lines []string
	for {
		raw, err := p.readLine()
		if err != nil {
			return m, err
		}
		if raw == "END" {
			break
		}
		lines = append(lines, raw)
	}
	m.Body = strings.Join(lines, "\n")
	return m, nil
}

// ShowQueue prints the staged list as a table plus one sample message and
// asks for a batch action.
func (p *Prompter) ShowQueue(entries []outreach.Pending) (outreach.BatchAction, error) {
	if len(entries) == 0 {
		return outreach.BatchCancel, nil
	}
	fmt.Fprintf(p.out, "\nBatch Approval - %d pending messages\n\n", len(entries))
	fmt.Fprintf(p.out, "%-4s %-22s %-30s %-22s %s\n", "No.", "Name", "Email", "Organization", "Subject")
	for i, e := range entries {
		fmt.Fprintf(p.out, "%-4d %-22s %-30s %-22s %s\n",
			i+1, clip(e.Contact.Name, 22), clip(e.Contact.Email, 30),
			clip(e.Contact.Organization, 22), clip(e.Message.Subject, 50))
	}

	sample := entries[0]
	fmt.Fprintf(p.out, "\nSample message (to %s):\n", sample.Contact.Name)
	fmt.Fprintf(p.out, "Subject: %s\n\n%s\n", sample.Message.Subject, clip(sample.Message.Body, 500))

	fmt.Fprintln(p.out, "\nBatch actions:")
	fmt.Fprintln(p.out, "  1. Send all messages")
	fmt.Fprintln(p.out, "  2. Review individual messages first")
	fmt.Fprintln(p.out, "  3. Select specific messages to send")
	fmt.Fprintln(p.out, "  4. Cancel and return")

	choice, err := p.ask("Choose action", []string{"1", "2", "3", "4"}, "1")
	if err != nil {
		return 0, err
	}
	switch choice {
	case "2":
		return outreach.BatchReviewIndividually, nil
	case "3":
		return outreach.BatchSelect, nil
	case "4":
		return outreach.BatchCancel, nil
	default:
		return outreach.BatchSendAll, nil
	}
}

// SelectEntries asks for a comma-separated 1-based index list, or "all".
func (p *Prompter) SelectEntries(entries []outreach.Pending) ([]int, bool, error) {
	for i, e := range entries {
		fmt.Fprintf(p.out, "%d. %s (%s) - %s\n", i+1, e.Contact.Name, e.Contact.Email, e.Contact.Organization)
	}
	fmt.Fprint(p.out, "\nEnter message numbers to send (comma-separated, e.g. 1,3,5) or 'all': ")

	line, err := p.readLine()
	if err != nil {
		return nil, false, err
	}
	if line == "" || strings.EqualFold(line, "all") {
		return nil, true, nil
	}

	var indices []int
	for _, part := range strings.Split(line, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || n < 1 || n > len(entries) {
			fmt.Fprintf(p.out, "Invalid selection %q. Cancelling.\n", part)
			return nil, false, nil
		}
		indices = append(indices, n-1)
	}
	return indices, false, nil
}

// Confirm asks a yes/no question.
func (p *Prompter) Confirm(prompt string) (bool, error) {
	choice, err := p.ask(prompt, []string{"y", "n"}, "n")
	if err != nil {
		return false, err
	}
	return choice == "y", nil
}

// Notice prints an informational line.
func (p *Prompter) Notice(msg string) {
	fmt.Fprintln(p.out, msg)
}

// ShowSummary prints the end-of-session tally.
func (p *Prompter) ShowSummary(s outreach.Summary) {
	fmt.Fprintf(p.out, "\nSession Summary\n")
	fmt.Fprintf(p.out, "  Sent:      %d\n", s.Sent)
	fmt.Fprintf(p.out, "  Failed:    %d\n", s.Failed)
	fmt.Fprintf(p.out, "  Skipped:   %d\n", s.Skipped)
	fmt.Fprintf(p.out, "  Remaining: %d\n", s.Remaining)
}

func clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 3 {
		return s[:n]
	}
	return s[:n-3] + "..."
}
