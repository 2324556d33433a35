package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/lehigh-university-libraries/cardscan/internal/ui"
	"github.com/spf13/cobra"
)

const shellHelp = `Commands:
  select FRONT [BACK]   choose 1 or 2 card images
  submit                send the selection to the card service
  show [TAB]            print the current view (tabs: structured, vcard, raw)
  tab TAB               switch the result tab
  vcard                 save the displayed vCard as contact.vcf
  export                download every card of this session as CSV
  reset                 clear the selection and results
  format FORMAT         output format (text, json, yaml)
  session               print the session id
  help                  show this help
  quit                  leave the shell
`

func newShellCmd() *cobra.Command {
	var flags serviceFlags
	var format string

	cmd := &cobra.Command{
		Use:   "shell",
		Short: "Scan several cards in one interactive session",
		Long: `Starts an interactive session. All cards processed in the shell share one
session id, so "export" downloads them together as a single CSV.`,
		Example: `  cardscan shell --url http://localhost:8000 -o ./exports`,
		RunE: func(cmd *cobra.Command, args []string) error {
			outFormat, err := ui.ParseFormat(format)
			if err != nil {
				return err
			}

			alerts := ui.NewTerminalAlerter(cmd.ErrOrStderr())
			client, err := flags.newUploadClient("", alerts)
			if err != nil {
				return err
			}

			sh := &shell{
				client: client,
				alerts: alerts,
				out:    cmd.OutOrStdout(),
				format: outFormat,
			}
			return sh.run(cmd.Context(), cmd.InOrStdin())
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&format, "format", "f", "text", "Output format (text, json, yaml)")

	return cmd
}

type shell struct {
	client *ui.UploadClient
	alerts ui.Alerter
	out    io.Writer
	format ui.Format
}

func (s *shell) run(ctx context.Context, in io.Reader) error {
	fmt.Fprintf(s.out, "Session %s. Type \"help\" for commands.\n", s.client.View().SessionID)

	lines := make(chan string)
	readErr := make(chan error, 1)
	go func() {
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		readErr <- scanner.Err()
	}()

	for {
		fmt.Fprint(s.out, "cardscan> ")

		select {
		case <-ctx.Done():
			fmt.Fprintln(s.out)
			return nil
		case err := <-readErr:
			fmt.Fprintln(s.out)
			return err
		case line := <-lines:
			if quit := s.exec(ctx, line); quit {
				return nil
			}
		}
	}
}

// exec runs one shell command and reports whether the shell should exit
func (s *shell) exec(ctx context.Context, line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}
	name, args := strings.ToLower(fields[0]), fields[1:]

	var err error
	switch name {
	case "quit", "exit":
		return true
	case "help", "?":
		fmt.Fprint(s.out, shellHelp)
	case "select", "open":
		if err = s.client.SelectFiles(args); err == nil {
			s.show()
		}
	case "submit", "process":
		if err = s.client.Submit(ctx); err == nil {
			s.show()
		}
	case "show":
		if len(args) > 0 {
			if err = s.client.SwitchTab(args[0]); err != nil {
				s.alerts.Alert(err.Error())
				break
			}
		}
		s.show()
	case "tab":
		if len(args) != 1 {
			s.alerts.Alert("Usage: tab structured|vcard|raw")
			break
		}
		if err = s.client.SwitchTab(args[0]); err != nil {
			s.alerts.Alert(err.Error())
			break
		}
		s.show()
	case "vcard", "download":
		var path string
		if path, err = s.client.DownloadVCard(); err == nil {
			fmt.Fprintf(s.out, "Saved vCard to %s\n", path)
		}
	case "export":
		var path string
		if path, err = s.client.ExportCSV(ctx); err == nil {
			fmt.Fprintf(s.out, "Saved CSV to %s\n", path)
		}
	case "reset":
		s.client.Reset()
		s.show()
	case "format":
		if len(args) != 1 {
			s.alerts.Alert("Usage: format text|json|yaml")
			break
		}
		var f ui.Format
		if f, err = ui.ParseFormat(args[0]); err != nil {
			s.alerts.Alert(err.Error())
			break
		}
		s.format = f
	case "session":
		fmt.Fprintln(s.out, s.client.View().SessionID)
	default:
		s.alerts.Alert(fmt.Sprintf("Unknown command %q. Type \"help\" for commands.", name))
	}

	if err != nil {
		slog.Debug("Shell command failed", "command", name, "err", err)
	}
	return false
}

func (s *shell) show() {
	if err := ui.Write(s.out, s.client.View(), s.format); err != nil {
		slog.Error("Unable to write view", "err", err)
	}
}
