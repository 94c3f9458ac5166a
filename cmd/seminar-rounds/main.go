package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"seminar/grouping"
	"seminar/internal/logging"
)

func main() {
	if err := newRootCommand(os.Stdin, os.Stdout).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand(in io.Reader, out io.Writer) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("SEMINAR")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "seminar-rounds",
		Short:         "Draw team rounds until no participant can avoid someone they already met",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(v, in, out)
		},
	}

	flags := cmd.Flags()
	flags.Int("participants", -1, "number of participants (prompted when unset)")
	flags.Int("teams", -1, "number of teams per round (prompted when unset)")
	flags.Int("max-rounds", 0, "stop after this many successful rounds (0 = until failure)")
	flags.Bool("show", false, "print every partition")
	flags.Bool("incremental", false, "keep encounters recorded by a failed round")
	flags.String("log-format", "text", "log format: json or text")
	flags.String("log-level", "none", "log level: debug, info, warn, error or none")
	if err := v.BindPFlags(flags); err != nil {
		panic(err)
	}

	return cmd
}

func run(v *viper.Viper, in io.Reader, out io.Writer) error {
	logger, err := logging.New(v.GetString("log-format"), v.GetString("log-level"))
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	r := bufio.NewReader(in)

	fmt.Fprintln(out, "Holding the seminar.")
	participants := v.GetInt("participants")
	if participants < 0 {
		if participants, err = promptCount(r, out, "Enter the number of participants: "); err != nil {
			return err
		}
	}

	policy := grouping.CommitAtomic
	if v.GetBool("incremental") {
		policy = grouping.CommitIncremental
	}
	engine, err := grouping.New(participants, grouping.WithLogger(logger), grouping.WithCommitPolicy(policy))
	if err != nil {
		fmt.Fprintf(out, "error: %v\n", err)
		return err
	}

	fmt.Fprintln(out, "Making teams.")
	teams := v.GetInt("teams")
	if teams < 0 {
		if teams, err = promptCount(r, out, "Enter the number of teams: "); err != nil {
			return err
		}
	}

	maxRounds := v.GetInt("max-rounds")
	if teams == participants && maxRounds == 0 {
		logger.Warn("every team has one member, rounds never fail; set --max-rounds to stop",
			zap.Int("participants", participants))
	}

	made, stopErr := runRounds(engine, teams, maxRounds, v.GetBool("show"), out)
	logger.Info("rounds finished", zap.Int("rounds", made), zap.Error(stopErr))

	fmt.Fprintf(out, "\n%d rounds were made.\n", made)
	fmt.Fprintln(out, "--------------------")
	divisors := commonDivisors(participants, teams)
	fmt.Fprintf(out, "%d and %d have %d common divisors.\n", participants, teams, len(divisors))
	fmt.Fprintln(out, divisors)
	return nil
}
