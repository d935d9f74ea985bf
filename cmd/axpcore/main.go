// Command axpcore runs the out-of-order execution core's worker goroutines
// against a flat demonstration memory until interrupted.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/jasonKoogler/axpcore/internal/config"
	"github.com/jasonKoogler/axpcore/internal/cpu"
	"github.com/jasonKoogler/axpcore/internal/dispatch"
	"github.com/jasonKoogler/axpcore/internal/engine"
)

func main() {
	configPath := flag.String("config", "configs/default.yaml", "Path to the configuration file")
	verbose := flag.Bool("v", false, "Enable verbose output")
	memSize := flag.Int("mem-size", 1<<20, "Size in bytes of the demonstration flat memory")
	flag.Parse()

	logger := log.New(os.Stdout, "", log.LstdFlags)
	if *verbose {
		logger.SetFlags(log.LstdFlags | log.Lmicroseconds | log.Lshortfile)
	}

	logger.Println("Out-of-order execution core")

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		logger.Printf("Failed to load configuration from %s: %v; falling back to defaults", *configPath, err)
		cfg = config.DefaultConfig()
	}

	fmt.Println("\nConfiguration Summary:")
	fmt.Printf("	Integer physical registers: %d\n", cfg.NumIntPhysRegs)
	fmt.Printf("	FP physical registers: %d\n", cfg.NumFPPhysRegs)
	fmt.Printf("	Unmapped register: %d\n", cfg.UnmappedReg)
	fmt.Printf("	EBox pool size: %d\n", cfg.EBoxPoolSize)
	fmt.Printf("	FBox pool size: %d\n", cfg.FBoxPoolSize)
	fmt.Printf("	Big-endian: %v\n", cfg.BigEndian)
	fmt.Printf("	FP enabled at startup: %v\n", cfg.FPEnabledAtStartup)

	mem := dispatch.NewFlatMemory(*memSize, cfg.BigEndian)

	c := cpu.New(cfg, nil)
	c.Dispatcher = dispatch.New(c, mem, cfg.BigEndian)

	eng := engine.New(c)
	eng.Start()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	logger.Println("Workers running. Press Ctrl-C to stop.")
	<-sigChan

	logger.Println("Received termination signal. Shutting down...")
	eng.Shutdown()

	stats := c.Stats()
	fmt.Println("\nExecution Summary:")
	fmt.Printf("	Executed: %d\n", stats.Executed)
	fmt.Printf("	Aborted: %d\n", stats.Aborted)
	fmt.Printf("	Faulted: %d\n", stats.Faulted)

	logger.Println("Execution core stopped")
}
