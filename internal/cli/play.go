package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func newPlayCmd() *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "play",
		Short: "Register and drive a session interactively",
		Long: `Register under --name and read session commands from stdin, one per line.

Commands:
  state            ask the server for the current state
  stored           show the locally tracked state
  search           enter the matchmaking pool
  idle             leave the pool
  request <id>     ask a player for a match
  requests         list players who asked you for a match
  say <text>       send an in-game message
  messages         fetch in-game messages
  end              end the current game
  players          list all players
  whoami           show your identity
  stats            show request counters
  help             list commands
  quit             leave

Press Ctrl+C to quit.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if name == "" {
				return fmt.Errorf("--name is required")
			}

			// Set up cancellation
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			sess, err := app.Client.Register(ctx, name)
			if err != nil {
				return err
			}

			out := newCmdOutput(cmd)
			id, _ := sess.Identity()
			out.Print(identityView(id))

			shell := NewShell(sess, app.Gatherer, out)
			return shell.Run(ctx, cmd.InOrStdin())
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Nickname (required)")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

// Run reads commands from in until quit, EOF or cancellation
func (sh *Shell) Run(ctx context.Context, in io.Reader) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines := make(chan string)
	scanErr := make(chan error, 1)

	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		scanErr <- scanner.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-scanErr:
					if err != nil {
						return fmt.Errorf("reading commands: %w", err)
					}
				default:
				}
				return nil
			}
			if quit := sh.Execute(ctx, line); quit {
				return nil
			}
		}
	}
}
