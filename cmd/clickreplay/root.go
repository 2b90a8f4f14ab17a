package main

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"graphclick/internal/clickgate"
	"graphclick/internal/replay"
)

var (
	singleColor = color.New(color.FgGreen)
	doubleColor = color.New(color.FgCyan, color.Bold)
	rightColor  = color.New(color.FgYellow)
	subtle      = color.New(color.FgHiBlack)
)

type options struct {
	jsonOut     bool
	window      time.Duration
	destination string
}

func newRootCmd(out io.Writer) *cobra.Command {
	var opts options
	cmd := &cobra.Command{
		Use:   "clickreplay <script.yaml>",
		Short: "Replay widget events through the click classifier",
		Long: "clickreplay feeds a scripted sequence of graph widget events through the\n" +
			"single/double/right click classifier on a simulated clock and prints the\n" +
			"notifications the parent page would receive.",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			script, err := replay.Load(args[0])
			if err != nil {
				return err
			}
			if opts.window > 0 {
				script.Window = opts.window
			}
			if opts.destination != "" {
				script.Destination = opts.destination
			}
			res := replay.Run(script)
			if opts.jsonOut {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(res)
			}
			printResult(out, res)
			return nil
		},
	}
	cmd.SetOut(out)
	cmd.Flags().BoolVar(&opts.jsonOut, "json", false, "print the result as JSON")
	cmd.Flags().DurationVar(&opts.window, "window", 0, "override the double click window")
	cmd.Flags().StringVar(&opts.destination, "destination", "", "override the target origin")
	return cmd
}

func printResult(out io.Writer, res replay.Result) {
	if len(res.Outputs) == 0 {
		fmt.Fprintln(out, subtle.Sprint("no notifications"))
	}
	for _, o := range res.Outputs {
		n := o.Notification
		label := typeColor(n.Type).Sprintf("%-16s", n.Type)
		switch n.Type {
		case clickgate.NodeDoubleClick:
			fmt.Fprintf(out, "%8s  %s %s %s\n", o.At, label, n.NodeID, subtle.Sprint("-> "+o.TargetOrigin))
		default:
			fmt.Fprintf(out, "%8s  %s %s (%g, %g) %s\n", o.At, label, n.NodeID, n.X, n.Y, subtle.Sprint("-> "+o.TargetOrigin))
		}
	}
	summary := fmt.Sprintf("%d notifications, %d dropped events, %d context menus suppressed",
		len(res.Outputs), res.Dropped, res.SuppressedMenus)
	if res.Gate != "" {
		summary += ", gate " + res.Gate
	}
	fmt.Fprintln(out, subtle.Sprint(summary))
}

func typeColor(t clickgate.NotificationType) *color.Color {
	switch t {
	case clickgate.NodeSingleClick:
		return singleColor
	case clickgate.NodeDoubleClick:
		return doubleColor
	default:
		return rightColor
	}
}
