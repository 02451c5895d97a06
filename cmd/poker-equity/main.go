package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/lipgloss"

	"github.com/lox/pokerequity/internal/cardcode"
	"github.com/lox/pokerequity/internal/deck"
	"github.com/lox/pokerequity/internal/equity"
	"github.com/lox/pokerequity/internal/equityjob"
	"github.com/lox/pokerequity/internal/fileutil"
	"github.com/lox/pokerequity/internal/telemetry"
)

type CLI struct {
	Range         []string `short:"r" required:"true" help:"Hero hand, repeatable: name=AsKs"`
	Board         string   `short:"b" help:"Community board cards, e.g. Td7s8h"`
	Opponents     int      `short:"o" default:"1" help:"Number of opponents per trial"`
	Simulations   int      `short:"n" default:"100000" help:"Total Monte Carlo trials, split evenly across hero hands"`
	Algorithm     string   `short:"a" default:"cactus-kev" enum:"cactus-kev,naive" help:"Hand evaluation backend"`
	Optimizations []string `help:"Enable optimizations: multithreading, simd, perfect-hash, prefetching"`
	Workers       int      `short:"w" default:"1" help:"Worker count when multithreading is enabled"`
	Seed          int64    `help:"RNG seed (0 for time-based)"`
	JobID         string   `help:"Telemetry job id; shared memory is published at <shm-root>/poker_telemetry_<job-id> when set"`
	ShmRoot       string   `default:"/dev/shm" help:"Root directory for the telemetry shared-memory region"`
	Watch         bool     `help:"Show a live terminal progress view while the simulation runs"`
	Output        string   `help:"Write the per-hand summary as JSON to this path, atomically"`
}

// handResultJSON is the shape written by --output: a plain snapshot a
// downstream tool can poll safely even while this process is still
// running, since WriteFileAtomic never exposes a partially written file.
type handResultJSON struct {
	Hand   string  `json:"hand"`
	Win    float64 `json:"win"`
	Tie    float64 `json:"tie"`
	Loss   float64 `json:"loss"`
	Equity float64 `json:"equity"`
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15"))
	handStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14"))
	winStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	tieStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	lossStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

func main() {
	var cli CLI
	ctx := kong.Parse(&cli)

	req, err := buildRequest(cli)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		ctx.Exit(1)
	}

	if err := equityjob.ValidateRequest(req); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		ctx.Exit(1)
	}

	var tw *telemetry.Writer
	if cli.JobID != "" {
		tw, err = telemetry.Create(cli.ShmRoot, cli.JobID, nil, nil)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: telemetry unavailable: %v\n", err)
			tw = nil
		} else {
			defer tw.Close()
			tw.SetStatus(telemetry.StatusRunning)
		}
	}

	runCtx := context.Background()
	var onProgress func(frac float64, snapshot map[string]float64)
	var model *watchModel
	if cli.Watch {
		model = newWatchModel(len(req.Range))
		onProgress = model.onProgress
	}

	start := time.Now()

	var summaries map[string]*equity.HandSummary
	var runErr error

	// tw is typed as *telemetry.Writer; a nil *Writer boxed into the
	// unexported telemetrySink interface is a non-nil interface value,
	// so the nil case must be passed as a literal nil, never as tw
	// itself, or equity.Run's own nil check would be fooled.
	runEquity := func(onProgress func(float64, map[string]float64)) (map[string]*equity.HandSummary, error) {
		var err error
		var s map[string]*equity.HandSummary
		if tw != nil {
			_, s, err = equity.Run(runCtx, req, onProgress, tw)
		} else {
			_, s, err = equity.Run(runCtx, req, onProgress, nil)
		}
		return s, err
	}

	if cli.Watch {
		runDone := make(chan struct{})
		go func() {
			summaries, runErr = runEquity(onProgress)
			close(runDone)
		}()
		model.run(runDone)
	} else {
		summaries, runErr = runEquity(nil)
	}

	duration := time.Since(start)

	if tw != nil {
		if runErr != nil {
			tw.SetStatus(telemetry.StatusFailed)
		} else {
			tw.SetStatus(telemetry.StatusCompleted)
		}
	}

	if runErr != nil && !cardcode.IsKind(runErr, cardcode.SimulationAborted) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", runErr)
		ctx.Exit(1)
	}

	displaySummaries(summaries, req.Board, cli.Simulations, duration)

	if cli.Output != "" {
		if err := writeSummariesJSON(cli.Output, summaries); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to write --output: %v\n", err)
		}
	}
}

func writeSummariesJSON(path string, summaries map[string]*equity.HandSummary) error {
	names := make([]string, 0, len(summaries))
	for name := range summaries {
		names = append(names, name)
	}
	sort.Strings(names)

	rows := make([]handResultJSON, 0, len(names))
	for _, name := range names {
		s := summaries[name]
		rows = append(rows, handResultJSON{
			Hand:   name,
			Win:    pct(s.Bucket.Wins, s.Bucket.Total),
			Tie:    pct(s.Bucket.Ties, s.Bucket.Total),
			Loss:   pct(s.Bucket.Losses, s.Bucket.Total),
			Equity: s.Bucket.Equity(),
		})
	}

	data, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal results: %w", err)
	}
	return fileutil.WriteFileAtomic(path, data, 0o644)
}

func buildRequest(cli CLI) (equity.Request, error) {
	var req equity.Request

	hands := make(map[string][2]deck.Card)
	for _, entry := range cli.Range {
		name, cardsStr, ok := strings.Cut(entry, "=")
		if !ok {
			return req, fmt.Errorf("invalid --range entry %q, expected name=AsKs", entry)
		}
		cards, err := deck.ParseCards(cardsStr)
		if err != nil {
			return req, fmt.Errorf("--range %s: %w", entry, err)
		}
		if len(cards) != 2 {
			return req, fmt.Errorf("--range %s: must specify exactly 2 cards, got %d", entry, len(cards))
		}
		hands[name] = [2]deck.Card{cards[0], cards[1]}
	}

	var board []deck.Card
	if cli.Board != "" {
		var err error
		board, err = deck.ParseCards(cli.Board)
		if err != nil {
			return req, fmt.Errorf("--board: %w", err)
		}
	}

	algo := equityjob.CactusKev
	if cli.Algorithm == "naive" {
		algo = equityjob.Naive
	}

	var optimizations []equity.Optimization
	for _, opt := range cli.Optimizations {
		switch opt {
		case "multithreading":
			optimizations = append(optimizations, equity.Multithreading)
		case "simd":
			optimizations = append(optimizations, equity.SIMD)
		case "perfect-hash":
			optimizations = append(optimizations, equity.PerfectHash)
		case "prefetching":
			optimizations = append(optimizations, equity.Prefetching)
		default:
			return req, fmt.Errorf("unknown optimization %q", opt)
		}
	}

	seed := cli.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	req = equity.Request{
		Range:         hands,
		Board:         board,
		Opponents:     cli.Opponents,
		Simulations:   cli.Simulations,
		Algorithm:     algo.ToEquity(),
		Optimizations: optimizations,
		NumWorkers:    cli.Workers,
		Seed:          seed,
	}
	return req, nil
}

func displaySummaries(summaries map[string]*equity.HandSummary, board []deck.Card, simulations int, duration time.Duration) {
	if len(board) > 0 {
		fmt.Printf("%s\n", headerStyle.Render("board"))
		fmt.Printf("%s\n\n", formatCards(board))
	}

	names := make([]string, 0, len(summaries))
	for name := range summaries {
		names = append(names, name)
	}
	sort.Strings(names)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
		headerStyle.Render("hand"), headerStyle.Render("win"), headerStyle.Render("tie"), headerStyle.Render("loss"))

	for _, name := range names {
		s := summaries[name]
		win := pct(s.Bucket.Wins, s.Bucket.Total)
		tiePct := pct(s.Bucket.Ties, s.Bucket.Total)
		lossPct := pct(s.Bucket.Losses, s.Bucket.Total)

		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			handStyle.Render(name),
			winStyle.Render(fmt.Sprintf("%.1f%%", win)),
			tieStyle.Render(fmt.Sprintf("%.1f%%", tiePct)),
			lossStyle.Render(fmt.Sprintf("%.1f%%", lossPct)))
	}
	w.Flush()

	fmt.Printf("\n%d simulations in %v\n", simulations, duration.Truncate(time.Millisecond))
}

func pct(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) / float64(total) * 100
}

func formatCards(cards []deck.Card) string {
	parts := make([]string, len(cards))
	for i, c := range cards {
		parts[i] = c.String()
	}
	return strings.Join(parts, " ")
}
