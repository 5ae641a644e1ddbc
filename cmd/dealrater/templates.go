package main

import (
	"fmt"
	"text/tabwriter"
)

// Run executes the templates command.
func (c *TemplatesCmd) Run(deps *Dependencies) error {
	tw := tabwriter.NewWriter(deps.Stdout, 0, 4, 2, ' ', 0)
	for i, t := range deps.Registry.Templates() {
		source := "external"
		if deps.Registry.Builtin(i) {
			source = "builtin"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", i+1, t.Brand, source, t.Container)
	}
	return tw.Flush()
}
