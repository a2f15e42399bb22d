package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hydrosched/hydrosched/config"
	"github.com/hydrosched/hydrosched/core/hydro"
	"github.com/hydrosched/hydrosched/core/solver"
)

var (
	scenarioPath  string
	maxIterations int
	tolerance     float64
)

var solveCmd = &cobra.Command{
	Use:   "solve",
	Short: "Solve a scheduling scenario and print the optimal schedule",
	RunE:  runSolve,
}

func init() {
	rootCmd.AddCommand(solveCmd)
	solveCmd.Flags().StringVarP(&scenarioPath, "scenario", "s", "scenario.yaml", "scenario file")
	solveCmd.Flags().IntVar(&maxIterations, "max-iterations", 0, "solver iteration cap (0 = default)")
	solveCmd.Flags().Float64Var(&tolerance, "tolerance", 0, "solver tolerance (0 = default)")
}

func runSolve(cmd *cobra.Command, args []string) error {
	sc, err := config.LoadScenario(scenarioPath)
	if err != nil {
		return fmt.Errorf("load scenario: %w", err)
	}

	sched, err := hydro.Solve(sc, solver.Settings{MaxIterations: maxIterations, Tolerance: tolerance})
	var cerr *hydro.ConvergenceError
	if errors.As(err, &cerr) {
		return fmt.Errorf("schedule is not optimal: %w", cerr)
	}
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "payoff: %.2f\n", sched.Payoff)
	fmt.Fprintf(out, "flows: %s\n", formatSeries(sched.Flows))
	fmt.Fprintf(out, "iterations: %d\n", sched.Iterations)
	return nil
}

func formatSeries(v []float64) string {
	parts := make([]string, len(v))
	for i, x := range v {
		parts[i] = fmt.Sprintf("%.2f", x)
	}
	return strings.Join(parts, " ")
}
