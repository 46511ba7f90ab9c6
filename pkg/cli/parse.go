package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/slotcast-dev/slotcast/pkg/cli/config"
	"github.com/slotcast-dev/slotcast/pkg/domain/types"
	"github.com/slotcast-dev/slotcast/pkg/service/schedule"
)

// cmdParse previews how availability text expands into slots, without
// touching any workspace. Useful for checking a schedule before posting it.
func cmdParse() *cli.Command {
	var appCfg config.App
	var gapMinutes int

	flags := []cli.Flag{
		&cli.IntFlag{
			Name:        "gap",
			Usage:       "Gap between consecutive slots in minutes (0, 30 or 60)",
			Value:       0,
			Sources:     cli.EnvVars("SLOTCAST_GAP"),
			Destination: &gapMinutes,
		},
	}
	flags = append(flags, appCfg.Flags()...)

	return &cli.Command{
		Name:      "parse",
		Usage:     "Parse availability text and print the expanded slot listing",
		ArgsUsage: "[file]",
		Flags:     flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			if err := appCfg.Configure(); err != nil {
				return goerr.Wrap(err, "failed to load application configuration")
			}

			text, err := readInput(c.Args().First())
			if err != nil {
				return err
			}

			gap := types.NormalizeGap(gapMinutes)
			if int(gap) != gapMinutes {
				color.Yellow("gap %d is not supported, using %d", gapMinutes, gap)
			}

			parser := schedule.NewParser(appCfg.Location())
			planner := schedule.NewPlanner(parser, appCfg.SlotDuration())
			specs, skipped := planner.Plan(text, gap)

			heading := color.New(color.FgCyan, color.Bold)
			heading.Printf("Slots (%d):\n", len(specs))
			for i, spec := range specs {
				fmt.Printf("  %s %s\n", color.GreenString("%2d.", i+1), spec.Label())
			}

			if len(skipped) > 0 {
				heading.Printf("Skipped lines (%d):\n", len(skipped))
				for _, line := range skipped {
					fmt.Printf("  %s %s\n", color.RedString("!"), line)
				}
			}
			return nil
		},
	}
}

func readInput(path string) (string, error) {
	if path == "" || path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", goerr.Wrap(err, "failed to read stdin")
		}
		return string(data), nil
	}

	data, err := os.ReadFile(path) // #nosec G304 - operator-provided path
	if err != nil {
		return "", goerr.Wrap(err, "failed to read input file", goerr.V("path", path))
	}
	return string(data), nil
}
