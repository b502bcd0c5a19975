package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/balkashynov/punch/internal/attendance"
	"github.com/balkashynov/punch/internal/capture"
	"github.com/balkashynov/punch/internal/feed"
	"github.com/balkashynov/punch/internal/tui"
)

var inCmd = &cobra.Command{
	Use:   "in",
	Short: "Check in and start the clock",
	Long: `Check in for the day. Opens the live timer by default, use --no-ui for a plain check-in.

Examples:
  punch in                      # Check in with the live timer
  punch in --no-ui              # Check in and return immediately
  punch in --photo ~/snap.jpg   # Attach a photo to the check-in`,
	Args: cobra.NoArgs,
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		ctx := cmd.Context()
		session, err := a.tracker.CheckIn(ctx, a.user)
		if err != nil {
			return err
		}

		// Check if --no-ui flag is set
		noUI, _ := cmd.Flags().GetBool("no-ui")
		if noUI || !isInteractive() {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "⏱️  Checked in as %s\n", session.UserID)
			fmt.Fprintf(out, "Started at: %s\n", session.CheckInTime.In(a.tracker.Location()).Format("15:04:05"))
			return nil
		}
		return runTimer(ctx, cmd.OutOrStdout(), a, session)
	}, checkInPhoto),
}

var outCmd = &cobra.Command{
	Use:   "out",
	Short: "Check out and save the session",
	Long: `Check out of the open session. Asks for confirmation when the session
was opened on an earlier day, use --yes to skip the question.`,
	Args: cobra.NoArgs,
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		ctx := cmd.Context()
		open, active, err := a.tracker.Active(ctx, a.user)
		if err != nil {
			return err
		}
		if !active {
			return attendance.ErrNoActiveSession
		}

		yes, _ := cmd.Flags().GetBool("yes")
		today := attendance.DayOf(a.tracker.Now(), a.tracker.Location())
		if !yes && open.Date < today && isInteractive() {
			confirmed, err := confirmStaleCheckOut(open, a.tracker.Location())
			if err != nil {
				return err
			}
			if !confirmed {
				fmt.Fprintln(cmd.OutOrStdout(), "Check-out cancelled. Session is still open.")
				return nil
			}
		}

		closed, err := a.tracker.CheckOut(ctx, a.user)
		if err != nil {
			return err
		}
		renderCheckOut(cmd.OutOrStdout(), closed, a.tracker.Location())
		return nil
	}, checkOutPhoto),
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show current attendance status",
	Args:  cobra.NoArgs,
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		ctx := cmd.Context()
		open, active, err := a.tracker.Active(ctx, a.user)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if !active {
			fmt.Fprintf(out, "%s is not checked in\n", a.user)
			return nil
		}

		watch, _ := cmd.Flags().GetBool("watch")
		if !watch {
			renderStatus(out, open, a.tracker.Now(), a.tracker.Location())
			return nil
		}
		return watchStatus(ctx, out, a, open)
	}),
}

var timerCmd = &cobra.Command{
	Use:   "timer",
	Short: "Reopen the live timer for the open session",
	Args:  cobra.NoArgs,
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		ctx := cmd.Context()
		open, active, err := a.tracker.Active(ctx, a.user)
		if err != nil {
			return err
		}
		if !active {
			return attendance.ErrNoActiveSession
		}
		return runTimer(ctx, cmd.OutOrStdout(), a, open)
	}),
}

func init() {
	inCmd.Flags().Bool("no-ui", false, "Check in without the interactive timer")
	inCmd.Flags().String("photo", "", "Image file to attach to the check-in")
	outCmd.Flags().String("photo", "", "Image file to attach to the check-out")
	outCmd.Flags().BoolP("yes", "y", false, "Do not ask before closing a session from an earlier day")
	statusCmd.Flags().BoolP("watch", "w", false, "Keep refreshing the elapsed time until Ctrl+C")
}

// checkInPhoto attaches the --photo file to the check-in only; a check-out
// from the timer view captures nothing.
func checkInPhoto(cmd *cobra.Command) []attendance.Option {
	if cam, ok := photoCamera(cmd); ok {
		return []attendance.Option{attendance.WithCheckInCamera(cam)}
	}
	return nil
}

// checkOutPhoto attaches the --photo file to the check-out.
func checkOutPhoto(cmd *cobra.Command) []attendance.Option {
	if cam, ok := photoCamera(cmd); ok {
		return []attendance.Option{attendance.WithCheckOutCamera(cam)}
	}
	return nil
}

func photoCamera(cmd *cobra.Command) (capture.FileCamera, bool) {
	path, _ := cmd.Flags().GetString("photo")
	if path == "" {
		return capture.FileCamera{}, false
	}
	return capture.FileCamera{Path: path}, true
}

func isInteractive() bool {
	return isatty.IsTerminal(os.Stdin.Fd()) && isatty.IsTerminal(os.Stdout.Fd())
}

func runTimer(ctx context.Context, out io.Writer, a *app, open attendance.OpenSession) error {
	sessions, err := a.tracker.Day(ctx, a.user, open.Date)
	if err != nil {
		return err
	}
	var earlier []attendance.Session
	for _, s := range sessions {
		if s.SessionID() != open.ID {
			earlier = append(earlier, s)
		}
	}

	return tui.RunTimerTUI(tui.TimerConfig{
		Closer:   a.tracker,
		UserID:   a.user,
		Session:  open,
		Earlier:  earlier,
		Clock:    a.tracker.Now,
		Interval: a.cfg.TickInterval,
		Location: a.tracker.Location(),
	}, out)
}

func confirmStaleCheckOut(open attendance.OpenSession, loc *time.Location) (bool, error) {
	confirmed := false
	err := huh.NewConfirm().
		Title(fmt.Sprintf("Session open since %s", open.CheckInTime.In(loc).Format("Mon Jan 2 15:04"))).
		Description("It was started on an earlier day. Check out now anyway?").
		Affirmative("Check out").
		Negative("Cancel").
		Value(&confirmed).
		Run()
	if err != nil {
		return false, err
	}
	return confirmed, nil
}

// watchStatus redraws the elapsed time every tick until interrupted. With a
// change feed it also stops when the session is closed elsewhere.
func watchStatus(ctx context.Context, out io.Writer, a *app, open attendance.OpenSession) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	var events <-chan attendance.Event
	subscribed := make(chan struct{})
	if a.redis != nil {
		ch := make(chan attendance.Event)
		events = ch
		sub := feed.NewSubscriber(a.redis, a.cfg.FeedPrefix, a.logger)
		go func() {
			defer close(subscribed)
			err := sub.Subscribe(ctx, a.user, func(ev attendance.Event) {
				select {
				case ch <- ev:
				case <-ctx.Done():
				}
			})
			if err != nil {
				a.logger.Warn("status watch without change feed", zap.Error(err))
			}
		}()
	} else {
		close(subscribed)
	}

	err := followStatus(ctx, out, open, a.tracker.Now, a.tracker.Location(), a.cfg.TickInterval, events)
	stop()
	<-subscribed
	return err
}

// followStatus ticks the live display until ctx ends or events reports the
// session closed. A nil events channel never fires.
func followStatus(ctx context.Context, out io.Writer, open attendance.OpenSession, now func() time.Time,
	loc *time.Location, interval time.Duration, events <-chan attendance.Event) error {
	since := open.CheckInTime.In(loc).Format("15:04:05")
	ticker := attendance.StartTicker(ctx, interval, func(time.Time) {
		fmt.Fprintf(out, "\r⏱️  Checked in since %s  %s", since, open.Display(now()))
	})

	for {
		select {
		case <-ctx.Done():
			ticker.Stop()
			fmt.Fprintln(out)
			return nil
		case ev := <-events:
			if ev.Type != attendance.EventCheckedOut || ev.SessionID != open.ID {
				continue
			}
			ticker.Stop()
			closed := open.Close(ev.At, "")
			if ev.DurationMinutes != nil {
				closed.DurationMinutes = *ev.DurationMinutes
			}
			fmt.Fprintln(out)
			renderCheckOut(out, closed, loc)
			return nil
		}
	}
}

func renderStatus(out io.Writer, open attendance.OpenSession, now time.Time, loc *time.Location) {
	fmt.Fprintf(out, "⏱️  %s is checked in\n", open.UserID)
	fmt.Fprintf(out, "Started at: %s\n", open.CheckInTime.In(loc).Format("2006-01-02 15:04:05"))
	fmt.Fprintf(out, "Elapsed time: %s\n", open.Display(now))
}

func renderCheckOut(out io.Writer, closed attendance.ClosedSession, loc *time.Location) {
	fmt.Fprintf(out, "⏹️  Checked out at %s\n", closed.CheckOutTime.In(loc).Format("15:04:05"))
	fmt.Fprintf(out, "Session duration: %s\n", closed.Display(closed.CheckOutTime))
}
