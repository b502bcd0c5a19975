package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/balkashynov/punch/internal/attendance"
	"github.com/balkashynov/punch/internal/feed"
)

var errNoFeed = errors.New("change feed unavailable: set PUNCH_REDIS_ADDR to a reachable redis")

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Follow check-ins and check-outs as they happen",
	Long: `Print change-feed events for the user until Ctrl+C.
Events come from any punch process sharing the same redis.`,
	Args: cobra.NoArgs,
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		if a.redis == nil {
			return errNoFeed
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		out := cmd.OutOrStdout()
		loc := a.tracker.Location()
		fmt.Fprintf(out, "Watching %s on %s (Ctrl+C to stop)\n", a.user, feed.Channel(a.cfg.FeedPrefix, a.user))

		sub := feed.NewSubscriber(a.redis, a.cfg.FeedPrefix, a.logger)
		return sub.Subscribe(ctx, a.user, func(ev attendance.Event) {
			renderEvent(out, ev, loc)
		})
	}),
}

func renderEvent(out io.Writer, ev attendance.Event, loc *time.Location) {
	at := ev.At.In(loc).Format("15:04:05")
	switch ev.Type {
	case attendance.EventCheckedIn:
		fmt.Fprintf(out, "%s  ⏱️  %s checked in (%s)\n", at, ev.UserID, ev.Date)
	case attendance.EventCheckedOut:
		minutes := 0
		if ev.DurationMinutes != nil {
			minutes = *ev.DurationMinutes
		}
		fmt.Fprintf(out, "%s  ⏹️  %s checked out after %s\n", at, ev.UserID, attendance.FormatHoursMinutes(minutes))
	}
}
