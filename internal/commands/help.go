package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

var helpCmd = &cobra.Command{
	Use:   "help [command]",
	Short: "Show comprehensive help for punch",
	Long:  `Display detailed help for all punch commands and flags.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) > 0 {
			target, _, err := rootCmd.Find(args)
			if err != nil || target == rootCmd {
				return fmt.Errorf("unknown help topic %q", args[0])
			}
			return target.Help()
		}
		showCustomHelp(cmd.OutOrStdout())
		return nil
	},
}

func showCustomHelp(out io.Writer) {
	fmt.Fprint(out, `
██████╗ ██╗   ██╗███╗   ██╗ ██████╗██╗  ██╗
██╔══██╗██║   ██║████╗  ██║██╔════╝██║  ██║
██████╔╝██║   ██║██╔██╗ ██║██║     ███████║
██╔═══╝ ██║   ██║██║╚██╗██║██║     ██╔══██║
██║     ╚██████╔╝██║ ╚████║╚██████╗██║  ██║
╚═╝      ╚═════╝ ╚═╝  ╚═══╝ ╚═════╝╚═╝  ╚═╝

punch - CLI Attendance Tracker

COMMANDS:

  in                      Check in and start the clock
    --photo FILE          Attach an image to the check-in
    --no-ui               Skip the live timer

  out                     Check out of the open session
    --photo FILE          Attach an image to the check-out
    -y, --yes             Don't ask before closing a session from an earlier day

  status                  Show whether you are checked in and for how long
    -w, --watch           Keep refreshing until Ctrl+C

  timer                   Reopen the live timer
    Keys:
      o             Check out & save
      esc/q         Exit (session keeps running)
      ctrl+c        Force quit

  today                   List the day's sessions with the total
    -d, --date            today, yesterday, yyyy-mm-dd, dd/mm/yyyy, 3 days ago, -3d
    --json                JSON output

  week                    Monday to Sunday timesheet
    -d, --date            Any day in the week

  watch                   Follow check-ins and check-outs live (needs redis)

  version                 Print the version
  help [command]          Show this help, or help for one command

GLOBAL FLAGS:
  -u, --user              User id (default $PUNCH_USER, then $USER)
  --db                    sqlite database path (default ~/.punch/punch.db)

ENVIRONMENT:
  PUNCH_DATABASE_URL      Use postgres instead of sqlite
  PUNCH_TIMEZONE          Zone that decides which day a session belongs to
  PUNCH_TICK_INTERVAL     Timer refresh rate (default 1s)
  PUNCH_REDIS_ADDR        Publish and follow changes through redis
  PUNCH_LOG_LEVEL         debug|info|warn|error (default warn)
  PUNCH_LOG_FILE          Write JSON logs to a file

`)
}
