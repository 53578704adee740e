package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"strideos/internal/kernel"
	"strideos/internal/loader"
	"strideos/internal/task"
)

func main() {
	cfg := kernel.Load("config.yml")
	fmt.Printf("Loaded config: %+v\n", cfg)

	k := kernel.New(cfg, loader.Builtin())
	if cfg.TraceCSV != "" {
		if err := k.EnableCSVTrace(cfg.TraceCSV); err != nil {
			fmt.Fprintf(os.Stderr, "trace: %v\n", err)
			os.Exit(1)
		}
	}

	// boot workload: one high-priority init, two default-priority peers
	pids := make([]task.Pid, 0, 3)
	for _, img := range []string{"init", "shell", "spin"} {
		pid, err := k.Spawn(img)
		if err != nil {
			fmt.Fprintf(os.Stderr, "spawn %s: %v\n", img, err)
			os.Exit(1)
		}
		pids = append(pids, pid)
	}
	if err := k.SetPriority(pids[0], 2); err != nil {
		fmt.Fprintf(os.Stderr, "set_priority: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()
	ctx, timeout := context.WithTimeout(ctx, 3*time.Second)
	defer timeout()

	k.Run(ctx)
}
