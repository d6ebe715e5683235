package peer

import (
	"encoding/csv"
	"fmt"
	"github.com/ValentinKolb/dDiam/cmd/util"
	"github.com/ValentinKolb/dDiam/diam/message"
	gometrics "github.com/rcrowley/go-metrics"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"math"
	"os"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

var (
	perfTestCmd = &cobra.Command{
		Use:     "perf",
		Short:   "Measure round trips over one multiplexed connection",
		Long:    "Sends watchdog and credit control requests from many goroutines over a single connection and reports throughput and latency percentiles.",
		Args:    cobra.NoArgs,
		RunE:    runPerf,
		PreRunE: processPerfConfig,
	}
	perfNumThreads = 10
	perfSkip       = make([]string, 0)
	perfMetrics    = false
	perfCSV        = ""
)

func init() {
	key := "threads"
	perfTestCmd.Flags().Int(key, 10, util.WrapString("Number of goroutines per CPU sending concurrently"))
	key = "skip"
	perfTestCmd.Flags().String(key, "", util.WrapString("Benchmarks to skip (comma separated - e.g. dwr,ccr)"))
	key = "metrics"
	perfTestCmd.Flags().Bool(key, false, util.WrapString("Print the client metrics in Prometheus text format when done"))
	key = "csv"
	perfTestCmd.Flags().String(key, "", util.WrapString("Optional path to save benchmark results as CSV"))
}

func processPerfConfig(cmd *cobra.Command, _ []string) error {
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	perfNumThreads = viper.GetInt("threads")
	perfSkip = strings.Split(viper.GetString("skip"), ",")
	perfMetrics = viper.GetBool("metrics")
	perfCSV = viper.GetString("csv")
	return nil
}

// perfResult combines the benchmark result with the observed latencies
type perfResult struct {
	bench  testing.BenchmarkResult
	timer  gometrics.Timer
	failed int64
}

func runPerf(_ *cobra.Command, _ []string) error {
	fmt.Println("Performance testing tool for Diameter peers")

	fmt.Println()
	fmt.Println("Configuration:")
	fmt.Println(peerConfig.String())
	fmt.Printf("Threads: %d\n", perfNumThreads)
	fmt.Println()

	fmt.Println("starting tests...")

	results := make(map[string]perfResult)

	results["dwr"] = benchmark("dwr", func() *message.Message {
		return peerBuilder.DWR()
	})
	printResult("dwr", results["dwr"])

	results["ccr"] = benchmark("ccr", func() *message.Message {
		req, err := peerBuilder.CCR(ccrParams{
			destinationRealm: peerConfig.OriginRealm,
			serviceContext:   "32251@3gpp.org",
			requestType:      "event",
		})
		if err != nil {
			Logger.Panicf("invalid credit control request: %v", err)
		}
		return req
	})
	printResult("ccr", results["ccr"])

	if perfMetrics {
		fmt.Println()
		peerMetrics.WritePrometheus(os.Stdout)
	}

	if perfCSV != "" {
		if err := writeResultsToCSV(perfCSV, results); err != nil {
			return err
		}
		fmt.Printf("results written to %s\n", perfCSV)
	}
	return nil
}

// benchmark sends requests built by next from perfNumThreads goroutines per CPU
func benchmark(name string, next func() *message.Message) perfResult {
	result := perfResult{timer: gometrics.NewTimer()}
	if shouldSkip(name) {
		return result
	}

	var failed atomic.Int64
	result.bench = testing.Benchmark(func(b *testing.B) {
		b.SetParallelism(perfNumThreads)
		b.ResetTimer()

		b.RunParallel(func(pb *testing.PB) {
			for pb.Next() {
				ctx, cancel := requestContext()
				start := time.Now()
				_, err := peerClient.SendMessage(ctx, next())
				cancel()
				if err != nil {
					failed.Add(1)
					Logger.Warningf("(%s) - request failed: %v", name, err)
					continue
				}
				result.timer.UpdateSince(start)
			}
		})
	})
	result.failed = failed.Load()
	return result
}

func shouldSkip(test string) bool {
	for _, s := range perfSkip {
		if strings.TrimSpace(s) == test {
			return true
		}
	}
	return false
}

// printResult prints the result of a benchmark test in a formatted way
func printResult(test string, result perfResult) {
	if result.bench.NsPerOp() == 0 {
		fmt.Printf("%-10sskipped\n", test)
		return
	}

	nsPerOp := math.Max(float64(result.bench.NsPerOp()), 1) // prevent division by zero
	opsPerSec := 1.0 / (nsPerOp / 1e9)

	snapshot := result.timer.Snapshot()
	p := snapshot.Percentiles([]float64{0.5, 0.95, 0.99})
	fmt.Printf("%-10s%.0f ops/sec\tp50 %s\tp95 %s\tp99 %s\tmax %s\tfailed %d\n",
		test,
		opsPerSec,
		time.Duration(p[0]),
		time.Duration(p[1]),
		time.Duration(p[2]),
		time.Duration(snapshot.Max()),
		result.failed,
	)
}

// writeResultsToCSV writes benchmark results to a CSV file
func writeResultsToCSV(csvPath string, results map[string]perfResult) error {
	file, err := os.Create(csvPath)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	header := []string{
		"Test", "OpsPerSec", "P50", "P95", "P99", "Max", "Count", "Failed", "Skipped",
		"Endpoint", "Transport", "Threads",
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for test, result := range results {
		snapshot := result.timer.Snapshot()
		p := snapshot.Percentiles([]float64{0.5, 0.95, 0.99})

		opsPerSec := 0.0
		skipped := "true"
		if result.bench.NsPerOp() > 0 {
			opsPerSec = 1.0 / (math.Max(float64(result.bench.NsPerOp()), 1) / 1e9)
			skipped = "false"
		}

		row := []string{
			test,
			fmt.Sprintf("%.0f", opsPerSec),
			time.Duration(p[0]).String(),
			time.Duration(p[1]).String(),
			time.Duration(p[2]).String(),
			time.Duration(snapshot.Max()).String(),
			strconv.FormatInt(snapshot.Count(), 10),
			strconv.FormatInt(result.failed, 10),
			skipped,
			peerConfig.Endpoint,
			viper.GetString("transport"),
			strconv.Itoa(perfNumThreads),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write row for test %s: %w", test, err)
		}
	}
	return nil
}
