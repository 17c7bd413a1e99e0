package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"workforce-mgmt/pkg/task"
	"workforce-mgmt/pkg/workforce"
)

func newTaskCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Inspect tasks in the configured storage",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "get <id>",
		Short: "Show one task with its comments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid task id %q", args[0])
			}
			return a.withService(cmd, func(svc *workforce.Service) error {
				v, err := svc.FindTaskByID(cmd.Context(), id)
				if err != nil {
					return err
				}
				printTask(cmd.OutOrStdout(), v)
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "by-priority <priority>",
		Short: "List every task with the given priority",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := task.ParsePriority(args[0])
			if err != nil {
				return err
			}
			return a.withService(cmd, func(svc *workforce.Service) error {
				views, err := svc.GetByPriority(cmd.Context(), p)
				if err != nil {
					return err
				}
				printTasks(cmd.OutOrStdout(), views)
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "overdue",
		Short: "List live tasks past their deadline or without one",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withService(cmd, func(svc *workforce.Service) error {
				views, err := svc.Overdue(cmd.Context(), svc.Now())
				if err != nil {
					return err
				}
				printTasks(cmd.OutOrStdout(), views)
				return nil
			})
		},
	})

	return cmd
}

func (a *app) withService(cmd *cobra.Command, fn func(*workforce.Service) error) error {
	st, err := openStores(cmd.Context(), a.cfg)
	if err != nil {
		return err
	}
	defer st.close()
	if err := st.ensureTables(cmd.Context()); err != nil {
		return err
	}
	return fn(workforce.New(st.tasks, st.comments, workforce.WithPublisher(st.activity)))
}

var titleCaser = cases.Title(language.English)

// label turns an enum constant such as COLLECT_PAYMENT into "Collect Payment".
func label[T ~string](v T) string {
	if v == "" {
		return "-"
	}
	return titleCaser.String(strings.ReplaceAll(strings.ToLower(string(v)), "_", " "))
}

func statusColor(s task.Status) *color.Color {
	switch s {
	case task.StatusAssigned:
		return color.New(color.FgYellow)
	case task.StatusStarted:
		return color.New(color.FgCyan)
	case task.StatusCompleted:
		return color.New(color.FgGreen)
	case task.StatusCancelled:
		return color.New(color.Faint)
	}
	return color.New(color.Reset)
}

func priorityColor(p task.Priority) *color.Color {
	switch p {
	case task.PriorityUrgent:
		return color.New(color.FgRed, color.Bold)
	case task.PriorityHigh:
		return color.New(color.FgRed)
	}
	return color.New(color.Reset)
}

func deadline(ms *int64) string {
	if ms == nil {
		return "-"
	}
	return time.UnixMilli(*ms).UTC().Format(time.RFC3339)
}

func printTasks(w io.Writer, views []workforce.TaskView) {
	if len(views) == 0 {
		fmt.Fprintln(w, "no tasks")
		return
	}
	// pad before coloring so escape codes don't skew the columns
	color.New(color.Bold).Fprintf(w, "%-6s %-18s %-32s %-9s %-10s %-9s %s\n",
		"ID", "REFERENCE", "TYPE", "ASSIGNEE", "STATUS", "PRIORITY", "DEADLINE")
	for _, v := range views {
		fmt.Fprintf(w, "%-6d %-18s %-32s %-9d %s %s %s\n",
			v.ID, fmt.Sprintf("%d/%s", v.ReferenceID, label(v.ReferenceType)), label(v.TaskType), v.AssigneeID,
			statusColor(v.Status).Sprintf("%-10s", label(v.Status)),
			priorityColor(v.Priority).Sprintf("%-9s", label(v.Priority)),
			deadline(v.TaskDeadlineTime))
	}
}

func printTask(w io.Writer, v workforce.TaskView) {
	bold := color.New(color.Bold)
	bold.Fprintf(w, "Task %d\n", v.ID)
	fmt.Fprintf(w, "  Reference:   %d (%s)\n", v.ReferenceID, label(v.ReferenceType))
	fmt.Fprintf(w, "  Type:        %s\n", label(v.TaskType))
	fmt.Fprintf(w, "  Assignee:    %d\n", v.AssigneeID)
	fmt.Fprintf(w, "  Status:      %s\n", statusColor(v.Status).Sprint(label(v.Status)))
	fmt.Fprintf(w, "  Priority:    %s\n", priorityColor(v.Priority).Sprint(label(v.Priority)))
	fmt.Fprintf(w, "  Deadline:    %s\n", deadline(v.TaskDeadlineTime))
	fmt.Fprintf(w, "  Description: %s\n", v.Description)
	if len(v.Comments) == 0 {
		return
	}
	bold.Fprintf(w, "Comments\n")
	for _, c := range v.Comments {
		fmt.Fprintf(w, "  #%d %s  %s\n", c.ID, time.UnixMilli(c.CreatedAt).UTC().Format(time.RFC3339), c.CommentText)
	}
}
