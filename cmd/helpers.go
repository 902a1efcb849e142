package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/timesheets-app/timesheets/internal/model"
	"github.com/timesheets-app/timesheets/internal/output"
	"github.com/timesheets-app/timesheets/internal/parser"
)

// render prints v as JSON, or calls cli for the cli and plain formats.
func render(v any, cli func(c *output.CLIFormatter)) error {
	if ctx.IsJSON() {
		return ctx.Formatter.JSON(v)
	}
	cli(ctx.CLIFormatter())
	return nil
}

// report renders a mutation result and turns a failure into the command error.
// v is the full result value for JSON output.
func report(v any, r model.Result) error {
	if ctx.IsJSON() {
		if err := ctx.Formatter.JSON(v); err != nil {
			return err
		}
		if !r.Success {
			return silentError{resultError{r}}
		}
		return nil
	}
	if !r.Success {
		return resultError{r}
	}
	ctx.CLIFormatter().PrintResult(r)
	return nil
}

// silentError is a failure whose output was already written. Die only sets
// the exit status.
type silentError struct {
	error
}

func (e silentError) Unwrap() error {
	return e.error
}

// resultError carries a failed Result out of RunE. It is printed once by Die.
type resultError struct {
	model.Result
}

// ErrorKind reports the error kind recorded in the result.
func (e resultError) ErrorKind() string {
	return e.Kind
}

func (e resultError) Error() string {
	if e.Message == "" {
		return "operation failed"
	}
	return e.Message
}

// now is the command clock.
func now() time.Time {
	return time.Now()
}

// scope returns the account scope of list commands.
func scope(cmd *cobra.Command) int64 {
	return ctx.Scope(cmd.Context())
}

// writeAccount returns the account new records are created in. --account all
// is not a valid target, so it falls back to the default account.
func writeAccount(cmd *cobra.Command) int64 {
	if ctx.Account != nil && *ctx.Account != model.AllAccounts {
		return *ctx.Account
	}
	return ctx.Accounts.DefaultID(cmd.Context())
}

// optionalDate parses a date flag; empty means unset.
func optionalDate(s string) (*time.Time, error) {
	return parser.ParseOptionalDate(s, now())
}

// parseRefFlag parses a remote id flag; empty means unset.
func parseRefFlag(s string) (model.Ref, error) {
	if s == "" {
		return model.NoParent, nil
	}
	return parser.ParseRef(s)
}
