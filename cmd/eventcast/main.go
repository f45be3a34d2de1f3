package main

import (
	"context"
	"errors"
	"fmt"
	"github.com/saylorsolutions/eventcast/appctx"
	"github.com/saylorsolutions/eventcast/cli"
	"github.com/saylorsolutions/eventcast/config"
	"github.com/saylorsolutions/eventcast/signalx"
	flag "github.com/spf13/pflag"
	"io"
	"os"
	"reflect"
	"strings"
	"syscall"
)

func main() {
	ctx, stop := signalx.ExitContext(context.Background(), os.Exit, os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	if err != nil {
		if !errors.Is(err, &cli.UsageError{}) {
			_, _ = fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

type runOptions struct {
	configPath string
	noCache    bool
	isolate    bool
	verbose    bool
	rounds     int
}

func addRunFlags(flags *flag.FlagSet) {
	flags.String("config", "", "Loads settings from a YAML or TOML `file`")
	flags.Bool("no-cache", false, "Disables the listener cache")
	flags.Bool("isolate", false, "Isolates listener failures, and adds a listener that fails")
	flags.BoolP("verbose", "v", false, "Logs at debug level")
}

func optionsFrom(flags *flag.FlagSet) runOptions {
	opts := runOptions{
		configPath: cli.MustGet(flags.GetString("config")),
		noCache:    cli.MustGet(flags.GetBool("no-cache")),
		isolate:    cli.MustGet(flags.GetBool("isolate")),
		verbose:    cli.MustGet(flags.GetBool("verbose")),
		rounds:     1,
	}
	if flags.Lookup("rounds") != nil {
		opts.rounds = cli.MustGet(flags.GetInt("rounds"))
	}
	return opts
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	set := cli.NewCommandSet("eventcast", cli.NewPrinter(stdout))

	trace := set.AddCommand("trace", "Publishes sample events and prints the order listeners receive them", "t").
		Usage("[FLAGS]")
	addRunFlags(trace.Flags())
	trace.Flags().Int("rounds", 2, "Publishes the sample events `n` times")
	trace.Does(func(flags *flag.FlagSet, p *cli.Printer) error {
		if flags.NArg() > 0 {
			return cli.NewUsageError("unexpected argument '%s'", flags.Arg(0))
		}
		opts := optionsFrom(flags)
		if opts.rounds < 1 {
			return cli.NewUsageError("rounds must be at least 1")
		}
		return runTrace(ctx, opts, p, stderr)
	})

	keys := set.AddCommand("keys", "Publishes sample events once and prints the resulting cache keys", "k")
	addRunFlags(keys.Flags())
	keys.Does(func(flags *flag.FlagSet, p *cli.Printer) error {
		if flags.NArg() > 0 {
			return cli.NewUsageError("unexpected argument '%s'", flags.Arg(0))
		}
		return runKeys(ctx, optionsFrom(flags), p, stderr)
	})

	return set.Exec(args)
}

func loadConfig(opts runOptions) (config.Config, error) {
	cfg := config.Default()
	if len(opts.configPath) > 0 {
		loaded, err := config.Load(opts.configPath)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	}
	cfg = config.FromEnv(cfg)
	if opts.noCache {
		cfg.Caching = false
	}
	if opts.isolate {
		cfg.Isolation = true
	}
	if opts.verbose {
		cfg.LogLevel = "debug"
	}
	return cfg, cfg.Validate()
}

type scenario struct {
	app   *appctx.Context
	trace *tracer
}

func newScenario(opts runOptions, stderr io.Writer) (*scenario, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}
	app, err := appctx.New(cfg.Name, appctx.WithConfig(cfg), appctx.WithLogger(cfg.Logger(stderr)))
	if err != nil {
		return nil, err
	}
	s := &scenario{app: app, trace: new(tracer)}
	if err := registerSamples(app, s.trace, cfg.Isolation); err != nil {
		_ = app.Close()
		return nil, err
	}
	if err := app.Refresh(); err != nil {
		_ = app.Close()
		return nil, err
	}
	if err := app.Start(); err != nil {
		_ = app.Close()
		return nil, err
	}
	s.trace.drain()
	return s, nil
}

type delivery struct {
	eventType string
	listeners []string
	err       error
}

// round publishes one set of sample events. Listener failures are reported in the result rather than returned,
// since they only occur when failures are isolated.
func (s *scenario) round(n int) []delivery {
	var result []delivery
	record := func(eventType string, err error) {
		result = append(result, delivery{eventType: eventType, listeners: s.trace.drain(), err: err})
	}
	for _, evt := range sampleEvents(n) {
		s.trace.drain()
		record(reflect.TypeOf(evt).String(), s.app.Publish(evt))
	}
	s.trace.drain()
	record("*listener.PayloadEvent[string]", appctx.PublishPayload(s.app, fmt.Sprintf("round %d", n)))
	return result
}

func runTrace(ctx context.Context, opts runOptions, p *cli.Printer, stderr io.Writer) error {
	s, err := newScenario(opts, stderr)
	if err != nil {
		return err
	}
	defer func() {
		_ = s.app.Close()
	}()
	for n := 1; n <= opts.rounds; n++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		p.Heading(fmt.Sprintf("round %d", n))
		for _, d := range s.round(n) {
			p.Printf("  %s <- %s\n", d.eventType, strings.Join(d.listeners, ", "))
			if d.err != nil {
				p.Println("    " + p.Dim("error: "+d.err.Error()))
			}
		}
	}
	p.Heading("named listeners")
	container := s.app.Container()
	for _, name := range container.Names() {
		p.Printf("  %s %s\n", name, p.Dim(fmt.Sprintf("(created %d)", container.Creations(name))))
	}
	printKeys(s, p)
	return nil
}

func runKeys(ctx context.Context, opts runOptions, p *cli.Printer, stderr io.Writer) error {
	s, err := newScenario(opts, stderr)
	if err != nil {
		return err
	}
	defer func() {
		_ = s.app.Close()
	}()
	if err := ctx.Err(); err != nil {
		return err
	}
	s.round(1)
	printKeys(s, p)
	return nil
}

func printKeys(s *scenario, p *cli.Printer) {
	p.Heading("cache keys")
	keys := s.app.Multicaster().CacheKeys()
	if len(keys) == 0 {
		p.Println("  " + p.Dim("(none)"))
		return
	}
	for _, key := range keys {
		p.Println("  " + key.String())
	}
}
