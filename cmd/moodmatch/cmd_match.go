package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/justestif/moodmatch/internal/batch"
	"github.com/justestif/moodmatch/internal/format"
	"github.com/justestif/moodmatch/internal/matching"
)

func newMatchCmd(a *app) *cobra.Command {
	var (
		explain     bool
		seed        uint64
		file        string
		concurrency int
	)

	cmd := &cobra.Command{
		Use:   "match [emotion=percent ...]",
		Short: "Match an emotion vector to a mood archetype",
		Example: "  moodmatch match happy=90 surprise=40\n" +
			"  moodmatch match --explain sad=30 neutral=25\n" +
			"  moodmatch match --file vectors.jsonl",
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, cleanup, err := a.openRepository(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()
			engine := matching.NewEngine(repo)
			sel := a.selector(seed)
			out := cmd.OutOrStdout()

			if file != "" {
				if len(args) > 0 {
					return fmt.Errorf("emotion arguments cannot be combined with --file")
				}
				vectors, err := readVectorsFile(file)
				if err != nil {
					return err
				}
				m := batch.NewMatcher(engine, batch.WithSelector(sel), batch.WithConcurrency(concurrency))
				outcomes, err := m.MatchAll(cmd.Context(), vectors)
				if err != nil {
					return err
				}

				tb := format.NewTable(format.ASCII)
				tb.Header("#", "Label", "Fallback", "Quote")
				for _, o := range outcomes {
					tb.Row(o.Index+1, o.Profile.Label, format.BoolMark(o.Fallback), o.Quote)
				}
				fmt.Fprintln(out, tb.String())
				return nil
			}

			v, err := parseVector(args)
			if err != nil {
				return err
			}
			res := engine.Explain(v)
			fmt.Fprintln(out, format.Detail(format.ASCII, res.Profile, sel.Select(res.Profile, v)))
			if explain {
				if res.Fallback {
					fmt.Fprintln(out, "No profile qualified; using the fallback.")
				} else {
					fmt.Fprintln(out, format.Candidates(format.ASCII, res.Candidates))
				}
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.BoolVar(&explain, "explain", false, "show every qualifying profile with its score")
	f.Uint64Var(&seed, "seed", 0, "seed for random quote selection (0 hashes the vector)")
	f.StringVarP(&file, "file", "f", "", "match every vector in a JSON Lines file")
	f.IntVar(&concurrency, "concurrency", batch.DefaultConcurrency, "vectors matched at once with --file")
	return cmd
}

// parseVector turns arguments like "happy=90" or "sad=21.5%" into an emotion vector.
func parseVector(args []string) (map[string]float64, error) {
	v := make(map[string]float64, len(args))
	for _, arg := range args {
		name, value, ok := strings.Cut(arg, "=")
		if !ok || strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("invalid emotion %q: want name=percent", arg)
		}
		pct, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(value), "%"), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid percent for %q: %w", name, err)
		}
		v[name] = pct
	}
	return v, nil
}

func readVectorsFile(path string) ([]map[string]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening vectors file: %w", err)
	}
	defer f.Close()
	return readVectors(f)
}

// readVectors reads one JSON object per line. Blank lines are skipped.
func readVectors(r io.Reader) ([]map[string]float64, error) {
	var vectors []map[string]float64
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		var v map[string]float64
		if err := json.Unmarshal([]byte(text), &v); err != nil {
			return nil, fmt.Errorf("parsing vector on line %d: %w", line, err)
		}
		vectors = append(vectors, v)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading vectors: %w", err)
	}
	return vectors, nil
}
