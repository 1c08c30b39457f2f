// Command livescorectl drives a running live-scoring server from the terminal.
//
//	livescorectl [--server URL] [--token TOKEN] <command> [args]
//
// Commands:
//
//	import-teams FILE     append teams from a CSV file
//	import-judges FILE    append judges from a CSV file
//	criteria FILE.yaml    replace the rubric
//	export FILE           download the results CSV
//	watch                 print the leaderboard whenever it changes
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/kripanshu-singh/congkong-livescore/logging"
)

const usage = `usage: livescorectl [--server URL] [--token TOKEN] <command> [args]

commands:
  import-teams FILE     append teams from a CSV file
  import-judges FILE    append judges from a CSV file
  criteria FILE.yaml    replace the rubric
  export FILE           download the results CSV
  watch                 print the leaderboard whenever it changes
`

func main() {
	flags := pflag.NewFlagSet("livescorectl", pflag.ExitOnError)
	flags.String("server", "http://localhost:8080", "server base URL")
	flags.String("token", "", "admin token (static x-admin-token or admin JWT)")
	flags.String("log-level", "warn", "log level")
	flags.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		flags.PrintDefaults()
	}
	_ = flags.Parse(os.Args[1:])

	viper.SetEnvPrefix("livescore")
	viper.AutomaticEnv()
	_ = viper.BindPFlags(flags)
	logging.BootstrapLogger(viper.GetString("log-level"), "text")

	args := flags.Args()
	if len(args) == 0 {
		flags.Usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c := newClient(viper.GetString("server"), viper.GetString("token"))
	if err := run(ctx, c, args[0], args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "livescorectl: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, c *client, cmd string, args []string) error {
	need := func(n int) error {
		if len(args) != n {
			return fmt.Errorf("%s expects %d argument(s), got %d", cmd, n, len(args))
		}
		return nil
	}

	switch cmd {
	case "import-teams":
		if err := need(1); err != nil {
			return err
		}
		return c.importCSV(ctx, "/api/meta/teams/import", args[0])
	case "import-judges":
		if err := need(1); err != nil {
			return err
		}
		return c.importCSV(ctx, "/api/meta/judges/import", args[0])
	case "criteria":
		if err := need(1); err != nil {
			return err
		}
		return c.saveCriteria(ctx, args[0])
	case "export":
		if err := need(1); err != nil {
			return err
		}
		return c.export(ctx, args[0])
	case "watch":
		return c.watch(ctx, os.Stdout)
	}
	return fmt.Errorf("unknown command %q", cmd)
}
