package main

import (
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/zhouzirui/kelly-poet/backend/internal/tui"
	"github.com/zhouzirui/kelly-poet/backend/pkg/log"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive conversation with Kelly",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		// the screen owns the terminal; logs only go out in debug mode
		var out io.Writer = io.Discard
		if debug {
			out = os.Stderr
		}
		ctx, flushLog := log.NewContextWithWriter(ctx, out, debug)
		defer flushLog()

		session, err := newSession(ctx)
		if err != nil {
			return err
		}

		return tui.Run(ctx, session)
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)
}
