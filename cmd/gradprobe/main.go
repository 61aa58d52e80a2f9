package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"gradprobe/pkg/gradient"
)

var (
	mode       = flag.String("mode", "minimize", "Search mode: minimize, maximize, descend-once, ascend-once")
	objective  = flag.String("objective", "distance", "Built-in objective: equality, distance, popcount")
	input      = flag.String("x0", "", "Comma-separated starting assignment, e.g. 0x80,0x10 (required)")
	target     = flag.String("target", "", "Comma-separated target bytes for the equality/distance objectives (defaults to all zero)")
	configPath = flag.String("config", "", "Optional YAML configuration file path")
	format     = flag.String("format", "text", "Output format: json, text")
	verbose    = flag.Bool("verbose", false, "Enable verbose logging")
)

func main() {
	flag.Parse()

	if *verbose {
		log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	} else {
		log.SetFlags(log.LstdFlags)
	}

	if *input == "" {
		fmt.Fprintf(os.Stderr, "Error: -x0 is required\n\n")
		flag.Usage()
		os.Exit(1)
	}

	x0, err := parseAssignment(*input)
	if err != nil {
		log.Fatalf("Invalid -x0: %v", err)
	}

	var cfg *gradient.Config
	if *configPath != "" {
		cfg, err = gradient.LoadConfig(*configPath)
		if err != nil {
			log.Printf("Warning: failed to load config file, using defaults: %v", err)
			cfg = gradient.DefaultConfig()
		}
	} else {
		cfg = gradient.DefaultConfig()
	}

	targetBytes, err := parseTarget(*target, len(x0))
	if err != nil {
		log.Fatalf("Invalid -target: %v", err)
	}

	f, err := buildObjective(*objective, targetBytes)
	if err != nil {
		log.Fatalf("Invalid -objective: %v", err)
	}

	engine, err := gradient.NewEngine(cfg)
	if err != nil {
		log.Fatalf("Failed to create engine: %v", err)
	}
	defer engine.Close()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Println("Received interrupt signal, exiting...")
		os.Exit(130)
	}()

	result, err := run(engine, f, x0, *mode)
	if err != nil {
		log.Fatalf("%s failed: %v", *mode, err)
	}

	if err := printResult(result, *format); err != nil {
		log.Fatalf("Failed to print result: %v", err)
	}
}

// runResult is the CLI's view of any of the engine's four entry points,
// flattened to a common shape for printing.
type runResult struct {
	Mode       string         `json:"mode"`
	InputX     []uint64       `json:"input_x"`
	OutputX    []uint64       `json:"output_x"`
	OutputF    int64          `json:"output_f"`
	AtExtremum bool           `json:"at_extremum,omitempty"`
	Stats      gradient.Stats `json:"stats"`
}

func run(e *gradient.Engine, f gradient.ObjectiveFunc, x0 []uint64, mode string) (runResult, error) {
	result := runResult{Mode: mode, InputX: x0}

	switch mode {
	case "minimize":
		outX, outF, err := e.Minimize(f, x0)
		if err != nil {
			return result, err
		}
		result.OutputX, result.OutputF = outX, outF

	case "maximize":
		outX, outF, err := e.Maximize(f, x0)
		if err != nil {
			return result, err
		}
		result.OutputX, result.OutputF = outX, outF

	case "descend-once":
		outX, outF, atExtremum, err := e.DescendOnce(f, x0)
		if err != nil {
			return result, err
		}
		result.OutputX, result.OutputF, result.AtExtremum = outX, outF, atExtremum

	case "ascend-once":
		outX, outF, atExtremum, err := e.AscendOnce(f, x0)
		if err != nil {
			return result, err
		}
		result.OutputX, result.OutputF, result.AtExtremum = outX, outF, atExtremum

	default:
		return result, fmt.Errorf("unsupported mode %q (want minimize, maximize, descend-once, or ascend-once)", mode)
	}

	result.Stats = e.Statistics()
	return result, nil
}

func printResult(r runResult, format string) error {
	switch format {
	case "json":
		data, err := json.MarshalIndent(r, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal result: %w", err)
		}
		fmt.Println(string(data))

	case "text":
		fmt.Printf("mode:        %s\n", r.Mode)
		fmt.Printf("input_x:     %s\n", formatHexSlice(r.InputX))
		fmt.Printf("output_x:    %s\n", formatHexSlice(r.OutputX))
		fmt.Printf("output_f:    %d\n", r.OutputF)
		if r.Mode == "descend-once" || r.Mode == "ascend-once" {
			fmt.Printf("at_extremum: %t\n", r.AtExtremum)
		}
		fmt.Printf("epochs:              %d\n", r.Stats.Epochs)
		fmt.Printf("objective_evals:     %d\n", r.Stats.ObjectiveEvals)
		fmt.Printf("line_search_probes:  %d\n", r.Stats.LineSearchProbes)
		fmt.Printf("random_escape_draws: %d\n", r.Stats.RandomEscapeDraws)
		fmt.Printf("rng_reseeds:         %d\n", r.Stats.RNGReseeds)

	default:
		return fmt.Errorf("unsupported format %q (want json or text)", format)
	}
	return nil
}

func formatHexSlice(xs []uint64) string {
	parts := make([]string, len(xs))
	for i, x := range xs {
		parts[i] = fmt.Sprintf("0x%x", x)
	}
	return strings.Join(parts, ",")
}

// parseAssignment parses a comma-separated list of decimal or 0x-prefixed
// hexadecimal uint64 values.
func parseAssignment(s string) ([]uint64, error) {
	fields := strings.Split(s, ",")
	out := make([]uint64, len(fields))
	for i, field := range fields {
		v, err := strconv.ParseUint(strings.TrimSpace(field), 0, 64)
		if err != nil {
			return nil, fmt.Errorf("coordinate %d (%q): %w", i, field, err)
		}
		out[i] = v
	}
	return out, nil
}

// parseTarget parses -target into n int64 byte targets, defaulting to all
// zero when empty.
func parseTarget(s string, n int) ([]int64, error) {
	if s == "" {
		return make([]int64, n), nil
	}

	fields := strings.Split(s, ",")
	if len(fields) != n {
		return nil, fmt.Errorf("expected %d target bytes, got %d", n, len(fields))
	}

	out := make([]int64, n)
	for i, field := range fields {
		v, err := strconv.ParseInt(strings.TrimSpace(field), 0, 64)
		if err != nil {
			return nil, fmt.Errorf("target %d (%q): %w", i, field, err)
		}
		out[i] = v
	}
	return out, nil
}

// buildObjective constructs one of the CLI's toy objectives so the engine
// can be exercised without writing Go.
func buildObjective(name string, targetBytes []int64) (gradient.ObjectiveFunc, error) {
	switch name {
	case "equality":
		return func(x []uint64) uint64 {
			var cost int64
			for i, v := range x {
				d := int64(v&0xFF) - targetBytes[i]
				if d != 0 {
					cost++
				}
			}
			return uint64(cost)
		}, nil

	case "distance":
		return func(x []uint64) uint64 {
			var cost int64
			for i, v := range x {
				d := int64(v&0xFF) - targetBytes[i]
				if d < 0 {
					d = -d
				}
				cost += d
			}
			return uint64(cost)
		}, nil

	case "popcount":
		return func(x []uint64) uint64 {
			var cost int64
			for _, v := range x {
				b := uint8(v & 0xFF)
				for b != 0 {
					cost += int64(b & 1)
					b >>= 1
				}
			}
			return uint64(cost)
		}, nil

	default:
		return nil, fmt.Errorf("unknown objective %q (want equality, distance, or popcount)", name)
	}
}
