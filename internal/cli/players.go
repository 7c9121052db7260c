package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newPlayersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "players",
		Short: "List players known to the server",
		RunE: func(cmd *cobra.Command, args []string) error {
			players, err := app.Client.Players(cmd.Context())
			if err != nil {
				return err
			}

			out := newCmdOutput(cmd)
			out.Print(playerViews(players))
			return nil
		},
	}
}

func newDescribeErrorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "describe-error <id>",
		Short: "Look up the description of a server error id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid error id: %w", err)
			}

			desc, err := app.Client.ErrorDescription(cmd.Context(), id)
			if err != nil {
				return err
			}

			out := newCmdOutput(cmd)
			out.Print(ErrorDescription{ID: id, Description: desc})
			return nil
		},
	}
}

func newRegisterCmd() *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register a player and print the assigned identity",
		RunE: func(cmd *cobra.Command, args []string) error {
			if name == "" {
				return fmt.Errorf("--name is required")
			}

			sess, err := app.Client.Register(cmd.Context(), name)
			if err != nil {
				return err
			}

			id, err := sess.Identity()
			if err != nil {
				return err
			}

			out := newCmdOutput(cmd)
			out.Print(identityView(id))
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Nickname (required)")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}
