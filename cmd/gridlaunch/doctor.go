package main

import (
	"github.com/spf13/cobra"

	"github.com/kioskware/gridlaunch/internal/config"
	"github.com/kioskware/gridlaunch/internal/doctor"
	"github.com/kioskware/gridlaunch/internal/output"
)

func newDoctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Diagnose common kiosk setup issues",
		Long: `Run diagnostic checks against the terminal, the entries file, kill
triggers, input device permissions and the output capture location.`,
		Example: `  gridlaunch doctor`,
		Args:    noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := output.FromContext(cmd.Context())

			runner := doctor.New(&doctor.Environment{
				Config:   config.Load(),
				Terminal: out.Terminal(),
			})

			spin := out.Spinner("Running checks")
			spin.Start()

			results := runner.Run(cmd.Context())

			spin.Stop()
			renderDoctor(out, results)

			return nil
		},
	}
}

func renderDoctor(out *output.Writer, results []doctor.Result) {
	out.Println("gridlaunch doctor")
	out.Println("=================")
	out.Println()

	doctor.RenderResults(results, out.Print, out.Success, out.Warning, out.Failure, out.Muted)

	passed, failed, warnings := doctor.Summary(results)

	out.Println()
	out.Print("%d passed", passed)

	if failed > 0 {
		out.Print(", %d failed", failed)
	}

	if warnings > 0 {
		out.Print(", %d warning(s)", warnings)
	}

	out.Println()
}
