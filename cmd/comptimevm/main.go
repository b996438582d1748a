// Command comptimevm is a small driver over the comptime execution core,
// standing in for the real bozon compiler's comptime invocation path. It
// runs a handful of fixture Functions and prints the resulting value or
// the diagnostics the VM produced.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Il-Capitano/bozon-comptime/comptime"
	"github.com/Il-Capitano/bozon-comptime/internal/logging"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:           "comptimevm",
		Short:         "Run fixture programs through the compile-time execution core",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug-level VM tracing")

	root.AddCommand(newRunCmd(&verbose))
	root.AddCommand(newDisasmCmd())
	return root
}

func newRunCmd(verbose *bool) *cobra.Command {
	var stepBudget uint64

	cmd := &cobra.Command{
		Use:   "run <demo-name>",
		Short: "Execute a fixture comptime function (overflow, bounds)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			options := comptime.DefaultOptions()
			options.Verbose = *verbose
			options.Logger = logging.New(*verbose)
			options.StepBudget = stepBudget

			vm := comptime.NewVM(options, 1)
			fn, callArgs, ok := buildDemoFunction(vm.Registry, args[0])
			if !ok {
				return fmt.Errorf("no such demo function %q", args[0])
			}

			result, returned := vm.Run(fn, callArgs)
			vm.Teardown()
			if returned {
				fmt.Printf("%s returned 0x%x\n", fn.Name, result)
			} else {
				fmt.Printf("%s did not return a value\n", fn.Name)
			}

			for _, d := range vm.Diagnostics() {
				fmt.Printf("%s: %s\n", d.Severity, d.Message)
				for _, note := range d.Notes {
					fmt.Printf("  note: %s\n", note.Message)
				}
			}
			if vm.HasError() {
				return fmt.Errorf("run finished with %d diagnostic(s)", len(vm.Diagnostics()))
			}
			return nil
		},
	}
	cmd.Flags().Uint64Var(&stepBudget, "step-budget", 0, "abort after this many instructions (0 = unbounded)")
	return cmd
}

func newDisasmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "disasm <demo-name>",
		Short: "Print the instruction stream of a fixture comptime function",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			registry := comptime.NewTypeRegistry(8)
			fn, _, ok := buildDemoFunction(registry, args[0])
			if !ok {
				return fmt.Errorf("no such demo function %q", args[0])
			}
			fmt.Printf("%s:\n", fn.Name)
			for i, instr := range fn.Instructions {
				fmt.Printf("%4d: %s\n", i, instr)
			}
			return nil
		},
	}
}
