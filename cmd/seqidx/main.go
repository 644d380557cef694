// Command seqidx builds and queries sequence index files.
//
// Usage:
//
//	seqidx build -o reads.bwt [--interval 32] [--dedup] reads.fa.gz ...
//	seqidx find reads.bwt ACGT GATTACA
//	seqidx stats reads.bwt
//	seqidx verify reads.bwt
//
// Every flag can also be set through a SEQIDX_<FLAG> environment variable
// (dashes become underscores) or a config file given with --config.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/pflag"
)

type command struct {
	name  string
	usage string
	flags func(fs *pflag.FlagSet)
	run   func(ctx context.Context, cfg *Config, args []string, out io.Writer) error
}

var commands = []command{
	{"build", "build -o OUTPUT [flags] INPUT...", buildFlags, runBuild},
	{"find", "find [flags] INDEX PATTERN...", findFlags, runFind},
	{"stats", "stats [flags] INDEX", statsFlags, runStats},
	{"verify", "verify [flags] INDEX", func(*pflag.FlagSet) {}, runVerify},
}

var errUsage = errors.New("usage")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, errUsage) {
			fmt.Fprintln(os.Stderr, "seqidx:", err)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		printUsage(stderr)
		return errUsage
	}
	for _, cmd := range commands {
		if cmd.name != args[0] {
			continue
		}
		fs := pflag.NewFlagSet(cmd.name, pflag.ContinueOnError)
		fs.SetOutput(stderr)
		fs.Usage = func() {
			fmt.Fprintf(stderr, "usage: seqidx %s\n", cmd.usage)
			fs.PrintDefaults()
		}
		commonFlags(fs)
		cmd.flags(fs)
		if err := fs.Parse(args[1:]); err != nil {
			if errors.Is(err, pflag.ErrHelp) {
				return nil
			}
			return errUsage
		}
		cfg, err := loadConfig(fs)
		if err != nil {
			return err
		}
		return cmd.run(ctx, cfg, fs.Args(), stdout)
	}
	printUsage(stderr)
	return errUsage
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "usage: seqidx COMMAND [flags] ARGS")
	for _, cmd := range commands {
		fmt.Fprintf(w, "  seqidx %s\n", cmd.usage)
	}
}
