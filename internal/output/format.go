// Package output provides formatters for CLI output.
package output

import (
	"fmt"
	"io"
	"strings"

	"todo/internal/service"
)

const (
	// ListHeader opens the task list block.
	ListHeader = "To-Do List:"

	// ListSeparator frames the task list block.
	ListSeparator = "----------------------------------------"

	// EmptyList is printed when there are no tasks.
	EmptyList = "No tasks in the list."

	doneMark    = "✓"
	pendingMark = " "
)

// FormatTask formats one task line.
// Format: "{ID}. [{✓| }] {DESCRIPTION} (Added: {CREATED_AT})"
func FormatTask(w io.Writer, task service.Task) {
	mark := pendingMark
	if task.Completed {
		mark = doneMark
	}
	fmt.Fprintf(w, "%d. [%s] %s (Added: %s)\n",
		task.ID, mark, normalizeDescription(task.Description), service.FormatTime(task.CreatedAt))
}

// FormatList formats the framed task list, or EmptyList when tasks is empty.
func FormatList(w io.Writer, tasks []service.Task) {
	if len(tasks) == 0 {
		fmt.Fprintln(w, EmptyList)
		return
	}
	fmt.Fprintln(w, ListHeader)
	fmt.Fprintln(w, ListSeparator)
	for _, t := range tasks {
		FormatTask(w, t)
	}
	fmt.Fprintln(w, ListSeparator)
}

// normalizeDescription keeps each task on one line.
func normalizeDescription(desc string) string {
	desc = strings.ReplaceAll(desc, "\r", " ")
	return strings.ReplaceAll(desc, "\n", " ")
}
