package cli

import (
	"fmt"
	"strconv"
	"strings"

	"pickupwatch/pkg/challenge"

	"github.com/spf13/cobra"
)

func newSolveCommand() *cobra.Command {
	var maxVisits int

	cmd := &cobra.Command{
		Use:   "solve <target> <parts> <low> <high>",
		Short: "Find factors in [low, high] whose product is target",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			var nums [4]int64
			for i, arg := range args {
				n, err := strconv.ParseInt(arg, 10, 64)
				if err != nil {
					return fmt.Errorf("%w: %q is not an integer", challenge.ErrInput, arg)
				}
				nums[i] = n
			}

			factors, err := challenge.NewSolver(maxVisits).Solve(challenge.Challenge{
				Target:      nums[0],
				FactorCount: nums[1],
				Low:         nums[2],
				High:        nums[3],
			})
			if err != nil {
				return err
			}

			parts := make([]string, len(factors))
			for i, f := range factors {
				parts[i] = strconv.FormatInt(f, 10)
			}
			fmt.Fprintln(cmd.OutOrStdout(), strings.Join(parts, " "))
			return nil
		},
	}

	cmd.Flags().IntVar(&maxVisits, "max-visits", challenge.DefaultMaxVisits, "Search node ceiling, 0 for unlimited")
	return cmd
}
