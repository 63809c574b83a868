// Command trackerd runs one cluster participant: a JobTracker wired to
// a remote metadata store (cmd/metastored), a Discovery client, an
// in-process TaskExecutor and Shuffle, and a ctlapi control socket for
// cmd/trackctl. Grounded on cmd/joblet/main.go's config-load/
// logger-init/mode-dispatch shape.
package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/gridforge/jobtracker/internal/ctlapi"
	"github.com/gridforge/jobtracker/internal/discovery"
	"github.com/gridforge/jobtracker/internal/discovery/gossip"
	"github.com/gridforge/jobtracker/internal/discovery/static"
	"github.com/gridforge/jobtracker/internal/ids"
	"github.com/gridforge/jobtracker/internal/ipc"
	"github.com/gridforge/jobtracker/internal/job"
	"github.com/gridforge/jobtracker/internal/metadata"
	"github.com/gridforge/jobtracker/internal/plan/staticplan"
	"github.com/gridforge/jobtracker/internal/registry"
	shuffleinproc "github.com/gridforge/jobtracker/internal/shuffle/inproc"
	"github.com/gridforge/jobtracker/internal/taskexec"
	"github.com/gridforge/jobtracker/internal/taskexec/inproc"
	"github.com/gridforge/jobtracker/internal/tracker"
	"github.com/gridforge/jobtracker/pkg/config"
	"github.com/gridforge/jobtracker/pkg/logger"
)

func main() {
	cfg, path, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("trackerd: failed to load configuration: %v", err)
	}

	level, err := logger.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = logger.INFO
	}
	logger.SetLevel(level)
	mainLog := logger.WithField("component", "trackerd")
	mainLog.Info("configuration loaded", "path", path)

	nodeID := ids.NodeId(cfg.Node.ID)
	if nodeID == "" {
		hostname, _ := os.Hostname()
		nodeID = ids.NodeId(fmt.Sprintf("%s-%d", hostname, os.Getpid()))
	}

	storeClient := ipc.NewClient(cfg.Store.SocketPath, cfg.Store.PoolSize, logger.WithField("component", "trackerd-store"))
	defer storeClient.Close()

	disc, stopDiscovery, err := buildDiscovery(cfg, nodeID)
	if err != nil {
		mainLog.Error("failed to start discovery", "error", err)
		os.Exit(1)
	}
	defer stopDiscovery()

	shuf := shuffleinproc.New()
	planner := &staticplan.Planner{ReducerCount: cfg.Tracker.ReducerCount}
	reg := registry.New()

	// The executor reports completions back through trk.OnTaskFinished,
	// so it needs trk before trk can be built with it. The forward
	// reference closure below breaks the cycle the same way the test
	// harness's newHarness does.
	var trk *tracker.JobTracker
	exec := inproc.New(demoTaskFunc(mainLog), func(info taskexec.TaskInfo, status taskexec.TaskStatus, err error, counters metadata.Counters) {
		trk.OnTaskFinished(info, status, err, counters)
	}, cfg.Tracker.ExecutorWorkerPool)

	trk = tracker.New(tracker.Config{
		Store:          storeClient,
		Discovery:      disc,
		TaskExecutor:   exec,
		Shuffle:        shuf,
		Planner:        planner,
		Registry:       reg,
		LocalNode:      nodeID,
		FinishedJobTTL: cfg.Store.FinishedJobInfoTTL,
		Logger:         mainLog,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := trk.Start(ctx); err != nil {
		mainLog.Error("failed to start tracker", "error", err)
		os.Exit(1)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Node.ControlSocketPath), 0o755); err != nil {
		mainLog.Error("failed to create control socket directory", "error", err)
		os.Exit(1)
	}
	ctl := ctlapi.NewServer(cfg.Node.ControlSocketPath, trk, logger.WithField("component", "trackerd-ctlapi"))
	if err := ctl.Start(); err != nil {
		mainLog.Error("failed to start control socket", "error", err)
		os.Exit(1)
	}

	mainLog.Info("trackerd started", "node", string(nodeID), "control_socket", cfg.Node.ControlSocketPath)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	mainLog.Info("trackerd shutting down")
	_ = ctl.Stop()
	_ = trk.Stop()
}

func buildDiscovery(cfg *config.Config, nodeID ids.NodeId) (discovery.Discovery, func(), error) {
	switch cfg.Discovery.Mode {
	case "gossip":
		d, err := gossip.Join(gossip.Config{
			NodeName:  string(nodeID),
			JoinSeeds: cfg.Discovery.SeedAddresses,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("join gossip cluster: %w", err)
		}
		return d, func() { _ = d.Leave(5000) }, nil
	default:
		peers := make([]ids.NodeId, len(cfg.Discovery.SeedAddresses))
		for i, addr := range cfg.Discovery.SeedAddresses {
			peers[i] = ids.NodeId(addr)
		}
		d := static.New(nodeID, peers)
		return d, func() { _ = d.Close() }, nil
	}
}

// demoTaskFunc is the reference JobCode this daemon ships so the
// system runs end to end without a real execution engine: MAP counts
// the lines of its split's input file when one exists on disk, COMMIT
// reports a "tasksCommitted" counter of 1, and every other
// task type succeeds trivially. A real deployment replaces this with
// whatever JobInfo.Code actually names.
func demoTaskFunc(log *logger.Logger) inproc.TaskFunc {
	return func(ctx context.Context, j *job.Job, info taskexec.TaskInfo) (taskexec.TaskStatus, metadata.Counters, error) {
		switch info.Type {
		case taskexec.SETUP:
			return taskexec.OK, nil, nil
		case taskexec.MAP:
			split, ok := info.Split.(staticplan.Split)
			if !ok || split.URI == "" {
				return taskexec.COMPLETED, metadata.Counters{"lines": 0}, nil
			}
			lines, err := countLines(split.URI)
			if err != nil {
				log.Warn("demo map task: input unreadable, counting zero lines", "uri", split.URI, "error", err)
				return taskexec.COMPLETED, metadata.Counters{"lines": 0}, nil
			}
			return taskexec.COMPLETED, metadata.Counters{"lines": lines}, nil
		case taskexec.REDUCE:
			return taskexec.COMPLETED, nil, nil
		case taskexec.COMBINE:
			return taskexec.COMPLETED, nil, nil
		case taskexec.COMMIT:
			return taskexec.COMPLETED, metadata.Counters{"tasksCommitted": 1}, nil
		case taskexec.ABORT:
			return taskexec.COMPLETED, nil, nil
		default:
			return taskexec.COMPLETED, nil, nil
		}
	}
}

func countLines(path string) (int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	var lines int64
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lines++
	}
	return lines, scanner.Err()
}
