package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/mrovalidate/internal/core"
	"github.com/JonMunkholm/mrovalidate/internal/schema"
)

func tablesCmd(stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "tables [TABLE]",
		Short: "List the validated tables grouped by dependency stage",
		Long: `List the validated tables grouped by dependency stage.

With a table key, list that table's columns and the values accepted for
enumerated columns.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				return describeTable(stdout, args[0])
			}
			return listTables(stdout)
		},
	}
}

func listTables(w io.Writer) error {
	stages, err := core.Plan(core.All())
	if err != nil {
		return &exitError{code: exitFault, err: err}
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "STAGE\tTABLE\tFILE\tDEPENDS ON\tCOLUMNS")
	for i, stage := range stages {
		for _, def := range stage {
			deps := strings.Join(def.DependsOn, ", ")
			if deps == "" {
				deps = "-"
			}
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", i, def.Info.Key, def.Info.File, deps, joinColumns(schema.Names(def.FieldSpecs)))
		}
	}
	return tw.Flush()
}

func describeTable(w io.Writer, key string) error {
	def, ok := core.Get(key)
	if !ok {
		return &exitError{
			code: exitFault,
			err:  fmt.Errorf("%w %q (known tables: %s)", core.ErrUnknownTable, key, strings.Join(core.Keys(), ", ")),
		}
	}

	fmt.Fprintf(w, "%s (%s)\n", def.Info.Label, def.Info.File)
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "COLUMN\tREQUIRED\tVALUES")
	for _, spec := range def.FieldSpecs {
		values := "-"
		if len(spec.EnumValues) > 0 {
			values = strings.Join(spec.EnumValues, ", ")
		}
		fmt.Fprintf(tw, "%s\t%t\t%s\n", spec.Name, spec.Required, values)
	}
	return tw.Flush()
}

func joinColumns(cols []schema.Column) string {
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = string(c)
	}
	return strings.Join(names, ", ")
}
