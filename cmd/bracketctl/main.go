// Command bracketctl runs the scheduling core offline on JSON files.
//
// Usage:
//
//	bracketctl groups --in entrants.json --groups 4 --shuffle --seed 7
//	bracketctl schedule --in group.json --boards 1,2 --double
//	bracketctl seed --in standings.json --advance 2
//	bracketctl bracket --in standings.json --advance 2 --legs 1=3,4=6
//	bracketctl hash-password --password 'correct horse'
package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dowdarts/CGC-Tournament-Manager-sub000/brackets"
	"github.com/dowdarts/CGC-Tournament-Manager-sub000/utils"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "bracketctl",
		Short:        "Group draws, round-robin schedules and knockout brackets from JSON",
		SilenceUsage: true,
	}
	root.AddCommand(groupsCmd())
	root.AddCommand(scheduleCmd())
	root.AddCommand(seedCmd())
	root.AddCommand(bracketCmd())
	root.AddCommand(hashPasswordCmd())
	return root
}

func loggerFor(cmd *cobra.Command) *slog.Logger {
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: slog.LevelInfo}))
}

// readInput decodes JSON from the --in file, or stdin for "-".
func readInput(cmd *cobra.Command, path string, dst interface{}) error {
	var r io.Reader
	if path == "" || path == "-" {
		r = cmd.InOrStdin()
	} else {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("open input: %w", err)
		}
		defer f.Close()
		r = f
	}
	if err := json.NewDecoder(r).Decode(dst); err != nil {
		return fmt.Errorf("decode %s: %w", displayName(path), err)
	}
	return nil
}

func displayName(path string) string {
	if path == "" || path == "-" {
		return "stdin"
	}
	return path
}

func writeOutput(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func groupsCmd() *cobra.Command {
	var (
		in         string
		groupCount int
		shuffle    bool
		seed       int64
	)
	cmd := &cobra.Command{
		Use:   "groups",
		Short: "Deal seed-ordered entrants into groups",
		RunE: func(cmd *cobra.Command, args []string) error {
			var entrants []brackets.Entrant
			if err := readInput(cmd, in, &entrants); err != nil {
				return err
			}
			var opts []brackets.DistributeOption
			if shuffle {
				opts = append(opts, brackets.WithShuffle(rand.New(rand.NewSource(seed))))
			}
			groups, err := brackets.DistributeGroups(entrants, groupCount, opts...)
			if err != nil {
				return err
			}
			loggerFor(cmd).Info("groups drawn", "entrants", len(entrants), "groups", len(groups), "shuffle", shuffle)
			return writeOutput(cmd, groups)
		},
	}
	cmd.Flags().StringVar(&in, "in", "-", "JSON array of entrants in seed order")
	cmd.Flags().IntVar(&groupCount, "groups", 1, "Number of groups")
	cmd.Flags().BoolVar(&shuffle, "shuffle", false, "Draw in random order")
	cmd.Flags().Int64Var(&seed, "seed", 1, "Random seed for --shuffle")
	return cmd
}

func scheduleCmd() *cobra.Command {
	var (
		in     string
		boards []int
		double bool
	)
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Build a round-robin schedule for one group",
		RunE: func(cmd *cobra.Command, args []string) error {
			var ids []int
			if err := readInput(cmd, in, &ids); err != nil {
				return err
			}
			var opts []brackets.RoundRobinOption
			if double {
				opts = append(opts, brackets.WithDoubleRound())
			}
			schedule, err := brackets.ScheduleRoundRobin(ids, boards, opts...)
			if err != nil {
				return err
			}
			loggerFor(cmd).Info("schedule built", "entrants", len(ids), "rounds", schedule.Rounds,
				"fixtures", len(schedule.Fixtures), "byes", len(schedule.Byes))
			return writeOutput(cmd, schedule)
		},
	}
	cmd.Flags().StringVar(&in, "in", "-", "JSON array of entrant ids")
	cmd.Flags().IntSliceVar(&boards, "boards", []int{1}, "Board numbers assigned in rotation")
	cmd.Flags().BoolVar(&double, "double", false, "Play every pairing twice")
	return cmd
}

func seedCmd() *cobra.Command {
	var (
		in      string
		advance int
	)
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Seed group qualifiers for the knockout",
		RunE: func(cmd *cobra.Command, args []string) error {
			var standings []brackets.GroupStandings
			if err := readInput(cmd, in, &standings); err != nil {
				return err
			}
			seeded, err := brackets.SeedFromStandings(standings, advance)
			if err != nil {
				return err
			}
			loggerFor(cmd).Info("qualifiers seeded", "groups", len(standings), "qualifiers", len(seeded))
			return writeOutput(cmd, seeded)
		},
	}
	cmd.Flags().StringVar(&in, "in", "-", "JSON array of group standings")
	cmd.Flags().IntVar(&advance, "advance", 2, "Qualifiers per group")
	return cmd
}

type bracketOutput struct {
	Bracket *brackets.Bracket        `json:"bracket"`
	Seeded  []brackets.SeededEntrant `json:"seeded"`
}

func bracketCmd() *cobra.Command {
	var (
		in      string
		advance int
		legs    map[string]int
	)
	cmd := &cobra.Command{
		Use:   "bracket",
		Short: "Seed qualifiers and build the single-elimination bracket",
		RunE: func(cmd *cobra.Command, args []string) error {
			var standings []brackets.GroupStandings
			if err := readInput(cmd, in, &standings); err != nil {
				return err
			}
			formats, err := parseFormats(legs)
			if err != nil {
				return err
			}
			bracket, seeded, err := brackets.GenerateKnockout(brackets.KnockoutParams{
				Standings: standings,
				Advance:   advance,
				Formats:   formats,
			})
			if err != nil {
				return err
			}
			loggerFor(cmd).Info("bracket built", "size", bracket.Size, "rounds", bracket.Rounds, "byes", bracket.Byes)
			return writeOutput(cmd, bracketOutput{Bracket: bracket, Seeded: seeded})
		},
	}
	cmd.Flags().StringVar(&in, "in", "-", "JSON array of group standings")
	cmd.Flags().IntVar(&advance, "advance", 2, "Qualifiers per group")
	cmd.Flags().StringToIntVar(&legs, "legs", nil, "Legs to win per round, e.g. 1=3,3=5")
	return cmd
}

func parseFormats(legs map[string]int) (map[int]brackets.MatchFormat, error) {
	if len(legs) == 0 {
		return nil, nil
	}
	formats := make(map[int]brackets.MatchFormat, len(legs))
	for key, n := range legs {
		round, err := strconv.Atoi(key)
		if err != nil || round <= 0 {
			return nil, fmt.Errorf("invalid round %q in --legs", key)
		}
		if n <= 0 {
			return nil, fmt.Errorf("round %d: legs to win must be positive", round)
		}
		formats[round] = brackets.MatchFormat{LegsToWin: n}
	}
	return formats, nil
}

func hashPasswordCmd() *cobra.Command {
	var password string
	cmd := &cobra.Command{
		Use:   "hash-password",
		Short: "Print a bcrypt hash for ORGANIZER_PASSWORD_HASH",
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && !errors.Is(err, io.EOF) {
					return fmt.Errorf("read password: %w", err)
				}
				password = strings.TrimRight(line, "\r\n")
			}
			hash, err := utils.HashPassword(password)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), hash)
			return err
		},
	}
	cmd.Flags().StringVar(&password, "password", "", "Password to hash; read from stdin when empty")
	return cmd
}
