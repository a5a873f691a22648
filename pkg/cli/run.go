package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/forgecad/mandrel/pkg/export"
	"github.com/forgecad/mandrel/pkg/kernel/sdfx"
	"github.com/forgecad/mandrel/pkg/run"
)

// newRunCommand creates "run", which executes a design against the offline
// kernel backend and reports the resulting feature tree.
func newRunCommand(opts *Options) *cobra.Command {
	var (
		output  string
		stlPath string
	)

	cmd := &cobra.Command{
		Use:   "run <design.lisp>",
		Short: "Execute a design against the offline kernel and report the feature tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := LoggerFromContext(cmd.Context())

			in, err := loadIntent(args[0])
			if err != nil {
				return err
			}

			session := sdfx.NewSession()
			seq := run.NewSequencer(session, run.Options{
				ContinuityTolerance: opts.Tolerance,
				Logger:              logger,
			})

			report, err := seq.Run(cmd.Context(), in)
			if err != nil {
				return err
			}

			if stlPath != "" {
				mesh, err := session.Mesh()
				if err != nil {
					return fmt.Errorf("tessellate preview: %w", err)
				}
				if err := export.SaveSTL(stlPath, in.Name, mesh); err != nil {
					return err
				}
				logger.Info("preview written", "path", stlPath, "triangles", mesh.TriangleCount())
			}

			if err := printReport(cmd, output, report); err != nil {
				return err
			}
			if report.Status != run.StatusCompleted {
				return fmt.Errorf("run %s: step %d: %v",
					report.Status, report.Failing.Index, report.Failing.Err)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "text", "Output format (text, json)")
	cmd.Flags().StringVar(&stlPath, "stl", "", "Write a binary STL preview of the final solid")
	return cmd
}

func printReport(cmd *cobra.Command, output string, report *run.Report) error {
	switch strings.ToLower(output) {
	case "json":
		type node struct {
			Order  int    `json:"order"`
			Handle string `json:"handle"`
			Name   string `json:"name,omitempty"`
			Kind   string `json:"kind"`
			Parent int    `json:"parent"`
			Faces  int    `json:"faces"`
		}
		type out struct {
			RunID     string  `json:"run_id"`
			Status    string  `json:"status"`
			Duration  string  `json:"duration"`
			Confirmed []node  `json:"confirmed"`
			Failing   *string `json:"failing,omitempty"`
		}
		o := out{
			RunID:    report.RunID,
			Status:   report.Status.String(),
			Duration: report.Duration.String(),
		}
		for _, n := range report.Confirmed {
			o.Confirmed = append(o.Confirmed, node{
				Order:  n.Order,
				Handle: string(n.Handle),
				Name:   n.Name,
				Kind:   n.Kind.String(),
				Parent: n.Parent,
				Faces:  len(n.Faces),
			})
		}
		if report.Failing != nil {
			msg := report.Failing.Error()
			o.Failing = &msg
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(o)
	default:
		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "run %s: %s in %s\n", report.RunID, report.Status, report.Duration)
		for _, n := range report.Confirmed {
			name := n.Name
			if name == "" {
				name = string(n.Handle)
			}
			fmt.Fprintf(w, "%3d  %-8s %-20s parent=%d faces=%d\n",
				n.Order, n.Kind, name, n.Parent, len(n.Faces))
		}
		if report.Failing != nil {
			fmt.Fprintf(w, "failed at step %d: %v\n", report.Failing.Index, report.Failing.Err)
		}
		return nil
	}
}
