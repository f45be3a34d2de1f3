package cli

import (
	"errors"
	"fmt"
	flag "github.com/spf13/pflag"
	"regexp"
	"slices"
	"strings"
)

var (
	ErrUnknownCommand = errors.New("unknown command")
	HelpPatterns      = []string{"--help", "-h", "help"} // HelpPatterns trigger the output of usage information from a [CommandSet].

	keyCleansePattern = regexp.MustCompile(`\s`)
)

// CommandFunc is a function that may be executed within a [Command].
// Positional arguments left after flag parsing are available with [flag.FlagSet.Args].
type CommandFunc = func(flags *flag.FlagSet, printer *Printer) error

// Command is an executable function in a CLI, added to a [CommandSet] with [CommandSet.AddCommand].
type Command struct {
	flags      *flag.FlagSet
	exec       CommandFunc
	key        string
	parent     string
	shortUsage string
	usage      string
	printer    *Printer
	aliases    []string
}

func cleanseKey(key string) string {
	return keyCleansePattern.ReplaceAllString(strings.ToLower(key), "")
}

func newCommand(key, parent, shortUsage string, printer *Printer) *Command {
	fs := flag.NewFlagSet(key, flag.ContinueOnError)
	fs.BoolP("help", "h", false, "Prints this usage information")
	fs.SetInterspersed(false)
	fs.SetOutput(printer)
	cmd := &Command{flags: fs, key: key, parent: parent, shortUsage: shortUsage, printer: printer}
	fs.Usage = cmd.printUsage
	return cmd
}

// Does specifies the [CommandFunc] that should be executed by this [Command].
// A command that does nothing prints its usage.
func (c *Command) Does(commandFunc CommandFunc) *Command {
	c.exec = commandFunc
	return c
}

// Flags returns the [flag.FlagSet] for this [Command].
func (c *Command) Flags() *flag.FlagSet {
	return c.flags
}

// CommandPath returns the reference chain for this [Command].
func (c *Command) CommandPath() string {
	if len(c.parent) == 0 {
		return c.key
	}
	return c.parent + " " + c.key
}

// Usage sets the invocation hint shown when help is requested. The command path is prepended to it.
func (c *Command) Usage(format string, args ...any) *Command {
	c.usage = fmt.Sprintf(format, args...)
	return c
}

func (c *Command) printUsage() {
	p := c.printer
	p.Println(c.shortUsage)
	p.Println()
	p.Heading("USAGE")
	usage := c.usage
	if len(usage) == 0 {
		usage = "[FLAGS]"
	}
	p.Println(c.CommandPath() + " " + usage)
	p.Println()
	p.Heading("FLAGS")
	p.Print(c.flags.FlagUsages())
}

// Exec parses args as flags and executes the command.
// Flag parsing errors and [UsageError]s returned from the [CommandFunc] print usage information before they're returned.
func (c *Command) Exec(args []string) error {
	var err error
	if err = c.flags.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		err = &UsageError{wrapped: err}
	} else if MustGet(c.flags.GetBool("help")) || c.exec == nil {
		c.printUsage()
		return nil
	} else {
		err = c.exec(c.flags, c.printer)
	}
	if errors.Is(err, &UsageError{}) {
		c.printer.Println(err)
		c.printer.Println()
		c.printUsage()
	}
	return err
}

// CommandSet is a group of [Command].
type CommandSet struct {
	name     string
	commands map[string]*Command
	aliases  map[string]*Command
	printer  *Printer
}

// NewCommandSet is used to set up a top level [CommandSet] as the root of a CLI's command structure.
// The name should be the name used to invoke the CLI, since it's shown in usage information.
func NewCommandSet(name string, printer *Printer) *CommandSet {
	if printer == nil {
		printer = NewPrinter(nil)
	}
	return &CommandSet{name: name, printer: printer}
}

// AddCommand adds a sub-command to this [CommandSet].
// The key parameter will be cleansed to remove spaces, and normalize to lower-case.
// Aliases may be added as a way to support shorter variants of the same [Command].
func (s *CommandSet) AddCommand(key, shortUsage string, aliases ...string) *Command {
	key = cleanseKey(key)
	cmd := newCommand(key, s.name, shortUsage, s.printer)
	if s.commands == nil {
		s.commands = map[string]*Command{}
	}
	s.commands[key] = cmd
	for _, alias := range aliases {
		alias = cleanseKey(alias)
		if len(alias) == 0 {
			continue
		}
		if s.aliases == nil {
			s.aliases = map[string]*Command{}
		}
		s.aliases[alias] = cmd
		cmd.aliases = append(cmd.aliases, alias)
	}
	slices.Sort(cmd.aliases)
	return cmd
}

// Printer returns the [Printer] shared by every command in this [CommandSet].
func (s *CommandSet) Printer() *Printer {
	return s.printer
}

// Exec executes this [CommandSet].
// The first argument must be the key or alias of a sub-command, or one of [HelpPatterns].
func (s *CommandSet) Exec(args []string) error {
	if len(args) == 0 {
		s.PrintUsage()
		return fmt.Errorf("%w: no arguments", ErrUnknownCommand)
	}
	if slices.Contains(HelpPatterns, args[0]) {
		s.PrintUsage()
		return nil
	}
	key := strings.ToLower(args[0])
	cmd, ok := s.commands[key]
	if !ok {
		cmd, ok = s.aliases[key]
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnknownCommand, args[0])
		}
	}
	return cmd.Exec(args[1:])
}

// PrintUsage prints the top level usage information of this [CommandSet].
func (s *CommandSet) PrintUsage() {
	s.printer.Heading("USAGE")
	s.printer.Println(s.name + " COMMAND [FLAGS...] [ARGS...]")
	s.printer.Println()
	s.printer.Heading("COMMANDS")
	s.printer.Print(s.CommandUsages())
}

// CommandUsages returns a string including the usage information for sub-commands in this [CommandSet].
//
// The sub-command keys will be sorted alphabetically before output.
func (s *CommandSet) CommandUsages() string {
	var (
		buf    strings.Builder
		keys   = make([]string, 0, len(s.commands))
		labels = map[string]string{}
		maxLen int
	)
	for key, cmd := range s.commands {
		keys = append(keys, key)
		label := strings.Join(append([]string{key}, cmd.aliases...), ", ")
		labels[key] = label
		maxLen = max(maxLen, len(label))
	}
	slices.Sort(keys)
	fmtStr := fmt.Sprintf("  %%-%ds   %%s\n", maxLen)
	for _, key := range keys {
		buf.WriteString(fmt.Sprintf(fmtStr, labels[key], s.commands[key].shortUsage))
	}
	return buf.String()
}
