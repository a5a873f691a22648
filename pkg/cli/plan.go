package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/forgecad/mandrel/pkg/engine"
	"github.com/forgecad/mandrel/pkg/intent"
	"github.com/forgecad/mandrel/pkg/plan"
)

// newPlanCommand creates "plan", which evaluates a design source file and
// prints the planned feature sequence without touching a kernel.
func newPlanCommand(_ *Options) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "plan <design.lisp>",
		Short: "Evaluate a design and print the planned feature sequence",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := LoggerFromContext(cmd.Context())

			in, err := loadIntent(args[0])
			if err != nil {
				return err
			}
			logger.Debug("intent evaluated", "design", in.Name, "features", len(in.Features))

			planned, err := plan.Build(in)
			if err != nil {
				return err
			}

			switch strings.ToLower(output) {
			case "json":
				type step struct {
					Index int    `json:"index"`
					Kind  string `json:"kind"`
					Name  string `json:"name"`
				}
				out := make([]step, 0, len(planned))
				for _, pf := range planned {
					out = append(out, step{
						Index: pf.Index,
						Kind:  pf.Spec.Kind().String(),
						Name:  specName(pf.Spec),
					})
				}
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(out)
			default:
				for _, pf := range planned {
					fmt.Fprintf(cmd.OutOrStdout(), "%3d  %-8s %s\n",
						pf.Index, pf.Spec.Kind(), specName(pf.Spec))
				}
				return nil
			}
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "text", "Output format (text, json)")
	return cmd
}

// loadIntent reads a design source file and evaluates it into an intent.
// DSL-level errors are joined into a single error so the CLI surfaces each
// offending line.
func loadIntent(path string) (*intent.Intent, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read design source: %w", err)
	}

	eng := engine.NewEngine()
	in, evalErrs, err := eng.Evaluate(string(src))
	if err != nil {
		return nil, fmt.Errorf("evaluate %s: %w", path, err)
	}
	if len(evalErrs) > 0 {
		msgs := make([]string, 0, len(evalErrs))
		for _, e := range evalErrs {
			msgs = append(msgs, e.Error())
		}
		return nil, fmt.Errorf("evaluate %s: %s", path, strings.Join(msgs, "; "))
	}
	return in, nil
}

// specName extracts the user-facing name of a feature spec, if it has one.
func specName(spec intent.FeatureSpec) string {
	switch s := spec.(type) {
	case intent.PadSpec:
		return s.Name
	case intent.PocketSpec:
		return s.Name
	case intent.RevolveSpec:
		return s.Name
	case intent.FilletSpec:
		return s.Name
	case intent.SteppedCylinderSpec:
		return s.Name
	}
	return ""
}
