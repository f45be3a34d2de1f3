/*
Package cli provides a small, opinionated structure for a CLI with sub-commands.

  - User-visible output goes through a [Printer], which only styles output written to a terminal.
  - This package uses [pflag] for posix style flags.
  - Flags are not interspersed with arguments, which keeps parsing predictable.
  - Every command gets '-h' and '--help' flags that print its usage.
  - Sub-command aliases are supported as additional, optional parameters to [CommandSet.AddCommand].

Invoking a CLI built with this package always follows this form:

	CLI_NAME SUB-COMMAND [FLAGS...] [ARGS...]

[pflag]: https://github.com/spf13/pflag
*/
package cli
