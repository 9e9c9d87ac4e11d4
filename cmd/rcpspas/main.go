// Command rcpspas inspects RCPSP-AS and time-offs instances, validates
// schedules against the six scheduling policies, and drives external-solver
// benchmark suites.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/elektrolab-or/rcpspas-research/internal/bench"
	"github.com/elektrolab-or/rcpspas-research/internal/core"
	"github.com/elektrolab-or/rcpspas-research/internal/ctxlog"
	"github.com/elektrolab-or/rcpspas-research/internal/rcp"
	"github.com/elektrolab-or/rcpspas-research/internal/report"
	"github.com/elektrolab-or/rcpspas-research/internal/timeoffs"
	"github.com/elektrolab-or/rcpspas-research/internal/validate"
)

var flagVerbose bool

func main() {
	rootCmd := &cobra.Command{
		Use:   "rcpspas",
		Short: "RCPSP-AS and time-offs instance tooling",
		Long: `rcpspas loads project scheduling instances with alternative subgraphs
(ASlib two-file format) and flat time-offs instances (.data format),
validates candidate schedules under the six scheduling policies, and runs
external CP solvers over benchmark suites.`,
	}

	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Debug logging")

	rootCmd.AddCommand(inspectCmd())
	rootCmd.AddCommand(validateCmd())
	rootCmd.AddCommand(benchCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func logContext() context.Context {
	level := slog.LevelInfo
	if flagVerbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	return ctxlog.WithLogger(context.Background(), logger)
}

func inspectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect <instance>",
		Short: "Load an instance and print its structure",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			if strings.HasSuffix(strings.ToLower(path), ".data") {
				return inspectFlat(path)
			}
			return inspectAslib(path)
		},
	}
	return cmd
}

func inspectAslib(path string) error {
	res, err := rcp.Load(path)
	if err != nil {
		return err
	}
	inst := res.Resolved()

	fmt.Printf("instance  %s\n", inst.Name)
	fmt.Printf("activities %d, resources %d, subgraphs %d\n",
		len(inst.Activities), len(inst.Resources), len(inst.Subgraphs))
	for _, sg := range inst.Subgraphs {
		fmt.Printf("  subgraph %d: branches %v, principal activity %d\n",
			sg.ID, sg.Branches.Sorted(), sg.PrincipalActivity)
	}
	if res.Wt != nil {
		fmt.Printf("weighted tardiness: %d monitored activities\n", len(res.Wt.DueDates))
	} else {
		fmt.Printf("params: flex=%.2f nested=%.2f linked=%.2f\n",
			res.Aslib.Params.Flex, res.Aslib.Params.Nested, res.Aslib.Params.Linked)
	}
	return nil
}

func inspectFlat(path string) error {
	inst, err := timeoffs.LoadInstance(path)
	if err != nil {
		return err
	}
	fmt.Printf("instance  %s\n", inst.Name)
	fmt.Printf("tasks %d, types %d, units %d, precedences %d\n",
		len(inst.Tasks), len(inst.Types), len(inst.Units), len(inst.Precedences))
	for _, rt := range inst.Types {
		fmt.Printf("  type %d: %d unit(s)\n", rt.ID, len(rt.Units))
	}
	return nil
}

func validateCmd() *cobra.Command {
	var (
		flagPolicy    string
		flagFixed     []int
		flagMigrating []int
	)
	cmd := &cobra.Command{
		Use:   "validate <instance.data> <solution.json>",
		Short: "Validate a schedule against a scheduling policy",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			policy, err := validate.ParsePolicy(flagPolicy)
			if err != nil {
				return err
			}

			inst, err := timeoffs.LoadInstance(args[0])
			if err != nil {
				return err
			}
			sol, err := timeoffs.LoadSolution(args[1])
			if err != nil {
				return err
			}

			validator := validate.New(inst)
			var rep *validate.Report
			if policy == validate.Heterogeneous {
				rep, err = validator.ValidateHeterogeneous(sol, partitionFromFlags(flagFixed, flagMigrating))
			} else {
				rep, err = validator.Validate(sol, policy)
			}
			if err != nil {
				return err
			}

			report.Validation(os.Stdout, inst.Name, policy, rep)
			if !rep.Valid {
				os.Exit(1)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&flagPolicy, "policy", "p", "no-mig-no-delay", "Scheduling policy name or number (1-6)")
	cmd.Flags().IntSliceVar(&flagFixed, "fixed-types", nil, "Fixed resource types (heterogeneous policy)")
	cmd.Flags().IntSliceVar(&flagMigrating, "migration-types", nil, "Migrating resource types (heterogeneous policy)")
	return cmd
}

func partitionFromFlags(fixed, migrating []int) validate.Partition {
	part := validate.Partition{
		Fixed:     make(map[core.TypeID]bool, len(fixed)),
		Migrating: make(map[core.TypeID]bool, len(migrating)),
	}
	for _, t := range fixed {
		part.Fixed[core.TypeID(t)] = true
	}
	for _, t := range migrating {
		part.Migrating[core.TypeID(t)] = true
	}
	return part
}

func benchCmd() *cobra.Command {
	var (
		flagSuite  string
		flagOutput string
	)
	cmd := &cobra.Command{
		Use:   "bench <config.hcl>",
		Short: "Run external-solver benchmark suites",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := bench.LoadConfig(args[0])
			if err != nil {
				return err
			}

			suites := cfg.Suites
			if flagSuite != "" {
				suite := cfg.SuiteByName(flagSuite)
				if suite == nil {
					return fmt.Errorf("suite %q not found in %s", flagSuite, args[0])
				}
				suites = []*bench.Suite{suite}
			}

			ctx := logContext()
			if err := os.MkdirAll(flagOutput, 0o755); err != nil {
				return err
			}

			for _, suite := range suites {
				runner, err := bench.NewRunner(suite, filepath.Join(flagOutput, suite.Name))
				if err != nil {
					return err
				}
				results, err := runner.Run(ctx)
				if err != nil {
					return err
				}

				report.Results(os.Stdout, results)
				report.Summary(os.Stdout, bench.Summarize(suite.Name, results))

				if err := bench.SaveJSON(filepath.Join(flagOutput, suite.Name+"-results.json"), results); err != nil {
					return err
				}
				if err := bench.SaveCSV(filepath.Join(flagOutput, suite.Name+"-results.csv"), results); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&flagSuite, "suite", "s", "", "Run a single named suite")
	cmd.Flags().StringVarP(&flagOutput, "output", "o", "results", "Output directory")
	return cmd
}
