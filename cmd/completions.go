package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/timesheets-app/timesheets/internal/runtime"
)

// completionContext opens the stores for a completion request. Completions
// run without the root pre-run hook.
func completionContext(cmd *cobra.Command) bool {
	if ctx != nil {
		return true
	}
	rc, err := runtime.New(cmd.Context(), runtime.DefaultOptions())
	if err != nil {
		return false
	}
	ctx = rc
	cobra.OnFinalize(func() { _ = closeContext() })
	return true
}

// idCompletion formats one id candidate with its description.
func idCompletion(id int64, name string) string {
	return fmt.Sprintf("%d\t%s", id, name)
}

// completeTasks completes local task ids.
func completeTasks(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if !completionContext(cmd) {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	views, err := ctx.Records.Tasks(cmd.Context(), scope(cmd))
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	var out []string
	for _, v := range views {
		if id := fmt.Sprint(v.ID); strings.HasPrefix(id, toComplete) {
			out = append(out, idCompletion(v.ID, v.Name))
		}
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}

// completeProjects completes local project ids.
func completeProjects(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 || !completionContext(cmd) {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	views, err := ctx.Records.Projects(cmd.Context(), scope(cmd))
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	var out []string
	for _, v := range views {
		if id := fmt.Sprint(v.ID); strings.HasPrefix(id, toComplete) {
			out = append(out, idCompletion(v.ID, v.Name))
		}
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}

// completeTimesheets completes timesheet line ids, newest first.
func completeTimesheets(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 || !completionContext(cmd) {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	views, err := ctx.Records.Timesheets(cmd.Context(), scope(cmd))
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	var out []string
	for _, v := range views {
		if id := fmt.Sprint(v.ID); strings.HasPrefix(id, toComplete) {
			out = append(out, idCompletion(v.ID, v.Name+" ("+v.Duration+")"))
		}
	}
	return out, cobra.ShellCompDirectiveNoFileComp | cobra.ShellCompDirectiveKeepOrder
}
