// Command benchmark drives a matchbook order book at load and reports
// throughput and latency percentiles. Grounded on the teacher's
// cmd/benchmark (BenchmarkSuite/BenchmarkResult), switched from flag to
// cobra per the rest of this repo's CLI surface, and from hand-rolled
// sorting to gonum/stat for percentile computation.
package main

import (
	"fmt"
	"math/rand"
	"os"
	"runtime"
	"sort"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/stat"

	"github.com/abdoElHodaky/matchbook/pkg/orderbook"
)

// BenchmarkResult mirrors the teacher's BenchmarkResult shape, narrowed
// to the fields a submit-throughput run actually produces.
type BenchmarkResult struct {
	Name         string
	Operations   int
	Duration     time.Duration
	OpsPerSecond float64
	AvgLatency   time.Duration
	MinLatency   time.Duration
	MaxLatency   time.Duration
	P50Latency   time.Duration
	P95Latency   time.Duration
	P99Latency   time.Duration
}

func runSubmitBenchmark(b *orderbook.Book, iterations int, priceSpread int64) BenchmarkResult {
	latencies := make([]float64, iterations)
	rng := rand.New(rand.NewSource(1))

	start := time.Now()
	for i := 0; i < iterations; i++ {
		side := orderbook.Buy
		if i%2 == 1 {
			side = orderbook.Sell
		}
		price := 10_000 + rng.Int63n(priceSpread)
		qty := uint64(1 + rng.Intn(10))

		opStart := time.Now()
		_, _ = b.Submit(b.NextOrderID(), side, orderbook.Limit, price, qty, uint64(opStart.UnixNano()))
		latencies[i] = float64(time.Since(opStart).Nanoseconds())
	}
	duration := time.Since(start)

	sort.Float64s(latencies)
	var sum float64
	for _, l := range latencies {
		sum += l
	}

	return BenchmarkResult{
		Name:         "Submit",
		Operations:   iterations,
		Duration:     duration,
		OpsPerSecond: float64(iterations) / duration.Seconds(),
		AvgLatency:   time.Duration(sum / float64(iterations)),
		MinLatency:   time.Duration(latencies[0]),
		MaxLatency:   time.Duration(latencies[len(latencies)-1]),
		P50Latency:   time.Duration(stat.Quantile(0.50, stat.Empirical, latencies, nil)),
		P95Latency:   time.Duration(stat.Quantile(0.95, stat.Empirical, latencies, nil)),
		P99Latency:   time.Duration(stat.Quantile(0.99, stat.Empirical, latencies, nil)),
	}
}

func printReport(r BenchmarkResult) {
	fmt.Printf("# matchbook benchmark\n\n")
	fmt.Printf("Go version: %s, GOMAXPROCS: %d\n\n", runtime.Version(), runtime.GOMAXPROCS(0))
	fmt.Printf("| metric | value |\n|---|---|\n")
	fmt.Printf("| operations | %d |\n", r.Operations)
	fmt.Printf("| duration | %v |\n", r.Duration)
	fmt.Printf("| ops/sec | %.0f |\n", r.OpsPerSecond)
	fmt.Printf("| avg latency | %v |\n", r.AvgLatency)
	fmt.Printf("| min latency | %v |\n", r.MinLatency)
	fmt.Printf("| max latency | %v |\n", r.MaxLatency)
	fmt.Printf("| p50 latency | %v |\n", r.P50Latency)
	fmt.Printf("| p95 latency | %v |\n", r.P95Latency)
	fmt.Printf("| p99 latency | %v |\n", r.P99Latency)
}

func newRootCmd() *cobra.Command {
	var (
		iterations  int
		priceSpread int64
		symbol      string
	)

	cmd := &cobra.Command{
		Use:   "benchmark",
		Short: "Drive a matchbook order book at load and report latency percentiles",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := zap.NewProduction()
			if err != nil {
				return err
			}
			defer logger.Sync()

			cfg := orderbook.DefaultConfig(symbol)
			b := orderbook.New(cfg, logger)

			result := runSubmitBenchmark(b, iterations, priceSpread)
			printReport(result)
			return nil
		},
	}

	cmd.Flags().IntVar(&iterations, "iterations", 100_000, "number of orders to submit")
	cmd.Flags().Int64Var(&priceSpread, "price-spread", 200, "tick range orders are randomly priced across")
	cmd.Flags().StringVar(&symbol, "symbol", "BENCH-USD", "symbol to benchmark")

	return cmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
