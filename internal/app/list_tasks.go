package app

import (
	"fmt"
	"io"
	"sort"
)

const ungrouped = "Other tasks"

// ListTasks prints every task, grouped by its group and sorted by name.
func (a *App) ListTasks(w io.Writer) {
	groups := make(map[string][]string)
	for _, name := range a.project.SortedTaskNames() {
		task := a.project.Tasks[name]
		group := task.Group
		if group == "" {
			group = ungrouped
		} else {
			group += " tasks"
		}

		line := "- " + name
		if task.Description != "" {
			line += ": " + task.Description
		}
		groups[group] = append(groups[group], line)
	}

	names := make([]string, 0, len(groups))
	for name := range groups {
		if name != ungrouped {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	if _, ok := groups[ungrouped]; ok {
		names = append(names, ungrouped)
	}

	for i, name := range names {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "%s:\n", name)
		for _, line := range groups[name] {
			fmt.Fprintln(w, line)
		}
	}
}
