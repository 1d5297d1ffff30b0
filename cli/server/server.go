package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/enpitsuLin/taiyi/pkg/config"
	"github.com/enpitsuLin/taiyi/pkg/core"
	"github.com/enpitsuLin/taiyi/pkg/core/state"
	"github.com/enpitsuLin/taiyi/pkg/core/storage"
	"github.com/enpitsuLin/taiyi/pkg/services/metrics"
	"github.com/enpitsuLin/taiyi/pkg/services/rpcsrv"
	"github.com/enpitsuLin/taiyi/pkg/util"
)

// benchmarkFileName is the side file replay benchmarks are dumped to.
const benchmarkFileName = "replay_benchmark.json"

// NewCommands returns the 'node' and 'db' commands.
func NewCommands() []*cli.Command {
	cfgFlags := []cli.Flag{
		&cli.StringFlag{
			Name:  "config-file",
			Usage: "Node configuration file (YAML)",
		},
		&cli.StringFlag{
			Name:  "data-dir",
			Usage: "Base data directory of the node",
		},
		&cli.StringFlag{
			Name:  "state-storage-dir",
			Usage: "The location of the chain state files (absolute path or relative to the data dir)",
		},
		&cli.StringFlag{
			Name:  "database-cfg",
			Usage: "The storage configuration file location (JSON)",
			Value: "database.cfg",
		},
		&cli.BoolFlag{
			Name:    "debug",
			Aliases: []string{"d"},
			Usage:   "Enable debug logging",
		},
	}
	flags := append([]cli.Flag{}, cfgFlags...)
	flags = append(flags,
		&cli.BoolFlag{
			Name:  "replay-blockchain",
			Usage: "Clear chain state and replay all blocks",
		},
		&cli.BoolFlag{
			Name:  "resync-blockchain",
			Usage: "Clear chain state and block log",
		},
		&cli.UintFlag{
			Name:  "stop-replay-at-block",
			Usage: "Stop and exit after reaching the given block number",
		},
		&cli.BoolFlag{
			Name:  "force-open",
			Usage: "Force open the state, skipping the environment check",
		},
		&cli.StringSliceFlag{
			Name:    "checkpoint",
			Aliases: []string{"c"},
			Usage:   "Pairs of [BLOCK_NUM,BLOCK_ID] that should be enforced as checkpoints",
		},
		&cli.UintFlag{
			Name:  "flush-state-interval",
			Usage: "Flush state changes to disk every N blocks",
			Value: 10000,
		},
		&cli.BoolFlag{
			Name:  "check-locks",
			Usage: "Check correctness of state locking",
		},
		&cli.BoolFlag{
			Name:  "validate-database-invariants",
			Usage: "Validate all supply invariants check out after each block",
		},
		&cli.BoolFlag{
			Name:  "dump-memory-details",
			Usage: "Dump state objects memory usage info; use set-benchmark-interval to set the dump interval",
		},
		&cli.UintFlag{
			Name:  "set-benchmark-interval",
			Usage: "Print time and memory usage every given number of blocks",
		},
		&cli.BoolFlag{
			Name:  "advanced-benchmark",
			Usage: "Make profiling for every block applied",
		},
		&cli.BoolFlag{
			Name:    "memory-replay",
			Aliases: []string{"m"},
			Usage:   "Replay with state in memory instead of on disk",
		},
		&cli.StringSliceFlag{
			Name:  "memory-replay-indices",
			Usage: "Specify which indices should be in memory during replay",
		},
		&cli.StringFlag{
			Name:  "chain-id",
			Usage: "Chain ID to connect to (requires AllowChainIDOverride)",
		},
	)
	var dbWipeFlags = append([]cli.Flag{}, cfgFlags...)
	dbWipeFlags = append(dbWipeFlags,
		&cli.BoolFlag{
			Name:  "keep-block-log",
			Usage: "Wipe only the chain state, keeping the block log for a later replay",
		},
	)
	return []*cli.Command{
		{
			Name:      "node",
			Usage:     "Start a taiyi node",
			UsageText: "taiyiserver node [--config-file file] [options]",
			Action:    startServer,
			Flags:     flags,
		},
		{
			Name:  "db",
			Usage: "Database manipulations",
			Subcommands: []*cli.Command{
				{
					Name:      "wipe",
					Usage:     "Remove the chain state and block log (resync)",
					UsageText: "taiyiserver db wipe [--config-file file] [--keep-block-log]",
					Action:    wipeDB,
					Flags:     dbWipeFlags,
				},
			},
		},
	}
}

func newGraceContext() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)
	signal.Notify(stop, syscall.SIGTERM)
	go func() {
		<-stop
		cancel()
	}()
	return ctx
}

// getConfigFromContext loads the config file (or the defaults) and applies
// flag overrides.
func getConfigFromContext(ctx *cli.Context) (config.Config, error) {
	var (
		cfg config.Config
		err error
	)
	if path := ctx.String("config-file"); path != "" {
		cfg, err = config.LoadFile(path)
		if err != nil {
			return cfg, err
		}
	} else {
		cfg = config.Default()
	}
	if dir := ctx.String("data-dir"); dir != "" {
		cfg.ApplicationConfiguration.DataDir = dir
	}
	if dir := ctx.String("state-storage-dir"); dir != "" {
		cfg.ApplicationConfiguration.StateStorageDir = dir
	}
	if ctx.IsSet("flush-state-interval") {
		cfg.ApplicationConfiguration.FlushStateInterval = uint32(ctx.Uint("flush-state-interval"))
	}
	if ctx.Bool("debug") {
		cfg.ApplicationConfiguration.LogLevel = "debug"
	}
	return cfg, nil
}

// stateStorageDir resolves the state directory against the data dir.
func stateStorageDir(cfg config.Config) string {
	dir := cfg.ApplicationConfiguration.StateStorageDir
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(cfg.ApplicationConfiguration.DataDir, dir)
	}
	return dir
}

// parseCheckpoints parses repeated "[N,ID]" pairs.
func parseCheckpoints(specs []string) (map[uint32]util.Uint256, error) {
	if len(specs) == 0 {
		return nil, nil
	}
	checkpoints := make(map[uint32]util.Uint256, len(specs))
	for _, spec := range specs {
		var pair [2]json.RawMessage
		if err := json.Unmarshal([]byte(spec), &pair); err != nil {
			return nil, fmt.Errorf("invalid checkpoint %q: %w", spec, err)
		}
		var num uint32
		if err := json.Unmarshal(pair[0], &num); err != nil {
			return nil, fmt.Errorf("invalid checkpoint number in %q: %w", spec, err)
		}
		var idStr string
		if err := json.Unmarshal(pair[1], &idStr); err != nil {
			return nil, fmt.Errorf("invalid checkpoint id in %q: %w", spec, err)
		}
		id, err := util.Uint256DecodeStringLE(idStr)
		if err != nil {
			return nil, fmt.Errorf("invalid checkpoint id in %q: %w", spec, err)
		}
		checkpoints[num] = id
	}
	return checkpoints, nil
}

// loadDatabaseConfig reads the storage tuning JSON, writing the default one
// first if the file does not exist.
func loadDatabaseConfig(path string, cfg *config.Config, log *zap.Logger) error {
	if !filepath.IsAbs(path) {
		path = filepath.Join(cfg.ApplicationConfiguration.DataDir, path)
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		log.Info("writing database configuration", zap.String("path", path))
		data, err = json.MarshalIndent(cfg.ApplicationConfiguration.DBConfiguration, "", "  ")
		if err != nil {
			return err
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return err
		}
		return os.WriteFile(path, data, 0o644)
	}
	if err != nil {
		return err
	}
	return json.Unmarshal(data, &cfg.ApplicationConfiguration.DBConfiguration)
}

// buildOpenArgs assembles the chain boot options from the parsed flags.
func buildOpenArgs(ctx *cli.Context, cfg config.Config, store storage.Store, log *zap.Logger) (core.OpenArgs, error) {
	checkpoints, err := parseCheckpoints(ctx.StringSlice("checkpoint"))
	if err != nil {
		return core.OpenArgs{}, err
	}

	var chainID util.Uint256
	if cfg.ProtocolConfiguration.ChainID != "" {
		chainID, err = util.Uint256DecodeStringLE(cfg.ProtocolConfiguration.ChainID)
		if err != nil {
			return core.OpenArgs{}, fmt.Errorf("invalid ChainID: %w", err)
		}
	}
	if override := ctx.String("chain-id"); override != "" {
		if !cfg.ProtocolConfiguration.AllowChainIDOverride {
			return core.OpenArgs{}, errors.New("chain-id override is not allowed by the configuration")
		}
		chainID, err = util.Uint256DecodeStringLE(override)
		if err != nil {
			return core.OpenArgs{}, fmt.Errorf("invalid chain-id: %w", err)
		}
	}

	args := core.OpenArgs{
		Store:                  store,
		VM:                     &core.NullExecutor{},
		ChainID:                chainID,
		InitialSupply:          cfg.ProtocolConfiguration.InitialSupply,
		GenesisTime:            state.Timestamp(cfg.ProtocolConfiguration.GenesisTime),
		SkipEnvCheck:           ctx.Bool("force-open"),
		CheckLocks:             ctx.Bool("check-locks"),
		DoValidateInvariants:   ctx.Bool("validate-database-invariants"),
		DumpMemoryDetails:      ctx.Bool("dump-memory-details"),
		StopReplayAt:           uint32(ctx.Uint("stop-replay-at-block")),
		FlushInterval:          cfg.ApplicationConfiguration.FlushStateInterval,
		AllowFutureTimeSeconds: cfg.ProtocolConfiguration.AllowFutureBlockSeconds,
		Checkpoints:            checkpoints,
		ReplayInMemory:         ctx.Bool("memory-replay"),
		ReplayMemoryIndices:    ctx.StringSlice("memory-replay-indices"),
		Logger:                 log,
	}

	benchmarkInterval := uint32(ctx.Uint("set-benchmark-interval"))
	if ctx.Bool("advanced-benchmark") && benchmarkInterval == 0 {
		benchmarkInterval = 1
	}
	if benchmarkInterval > 0 {
		dumper := core.NewBenchmarkDumper(filepath.Join(cfg.ApplicationConfiguration.DataDir, benchmarkFileName))
		args.BenchmarkInterval = benchmarkInterval
		args.Benchmark = func(blockNum uint32, m core.Measurement) {
			dumper.Add(blockNum, m)
			log.Info("performance report",
				zap.Uint32("block", blockNum),
				zap.Int64("real_ms", m.RealMs),
				zap.Int64("cpu_ms", m.CPUMs),
				zap.Uint64("mem_kb", m.CurrentMem))
			if err := dumper.Dump(); err != nil {
				log.Warn("cannot dump benchmark file", zap.Error(err))
			}
		}
	}
	return args, nil
}

// openChainStore loads the config and opens the backing store the way both
// the node and the db commands need it.
func openChainStore(ctx *cli.Context) (config.Config, storage.Store, *zap.Logger, error) {
	cfg, err := getConfigFromContext(ctx)
	if err != nil {
		return cfg, nil, nil, err
	}
	log, _, err := cfg.ApplicationConfiguration.Logger.NewLogger()
	if err != nil {
		return cfg, nil, nil, err
	}

	if err := loadDatabaseConfig(ctx.String("database-cfg"), &cfg, log); err != nil {
		return cfg, nil, log, fmt.Errorf("database configuration: %w", err)
	}

	if cfg.ApplicationConfiguration.DBConfiguration.Type == "leveldb" &&
		cfg.ApplicationConfiguration.DBConfiguration.LevelDBOptions.DataDirectoryPath == "" {
		cfg.ApplicationConfiguration.DBConfiguration.LevelDBOptions.DataDirectoryPath = stateStorageDir(cfg)
	}
	store, err := storage.NewStore(cfg.ApplicationConfiguration.DBConfiguration)
	if err != nil {
		return cfg, nil, log, fmt.Errorf("could not initialize storage: %w", err)
	}
	return cfg, store, log, nil
}

// wipeDB implements 'db wipe': a full resync wipe, or a state-only wipe when
// the block log is kept for a later replay.
func wipeDB(ctx *cli.Context) error {
	_, store, log, err := openChainStore(ctx)
	if err != nil {
		return cli.Exit(err, 1)
	}
	defer func() { _ = store.Close() }()
	defer func() { _ = log.Sync() }()

	keepBlockLog := ctx.Bool("keep-block-log")
	if keepBlockLog {
		log.Warn("wiping chain state, keeping the block log")
	} else {
		log.Warn("wiping chain state and block log")
	}
	if err := core.Wipe(store, !keepBlockLog); err != nil {
		return cli.Exit(err, 1)
	}
	log.Info("wipe finished")
	return nil
}

func startServer(ctx *cli.Context) error {
	cfg, store, log, err := openChainStore(ctx)
	if err != nil {
		return cli.Exit(err, 1)
	}
	defer func() { _ = log.Sync() }()
	defer func() { _ = store.Close() }()

	if ctx.Bool("resync-blockchain") {
		log.Warn("resync requested: deleting block log and state")
		if err := core.Wipe(store, true); err != nil {
			return cli.Exit(err, 1)
		}
	}

	args, err := buildOpenArgs(ctx, cfg, store, log)
	if err != nil {
		return cli.Exit(err, 1)
	}

	var bc *core.Blockchain
	if ctx.Bool("replay-blockchain") {
		log.Info("replaying blockchain on user request")
		last, replayed, err := core.Reindex(args)
		if err != nil {
			return cli.Exit(err, 1)
		}
		if args.StopReplayAt > 0 && last == args.StopReplayAt {
			log.Info("stopped blockchain replaying on user request",
				zap.Uint32("last_block", last))
			return nil
		}
		bc = replayed
	} else {
		bc, err = core.NewBlockchain(args)
		if err != nil {
			if errors.Is(err, core.ErrEnvCheck) {
				log.Warn("error opening database; if the binary or configuration has changed, " +
					"replay the blockchain explicitly using `--replay-blockchain`")
				log.Warn("if you know what you are doing you can skip this check and force open " +
					"the database using `--force-open`; THIS MAY CORRUPT YOUR DATABASE, FORCE OPEN AT YOUR OWN RISK")
			}
			return cli.Exit(fmt.Errorf("could not initialize blockchain: %w", err), 1)
		}
	}
	log.Info("started on blockchain", zap.Uint32("blocks", bc.HeadBlockNum()))

	prometheus := metrics.NewPrometheusService(cfg.ApplicationConfiguration.Prometheus, log)
	if err := prometheus.Start(); err != nil {
		return cli.Exit(fmt.Errorf("failed to start Prometheus service: %w", err), 1)
	}
	defer prometheus.ShutDown()
	pprof := metrics.NewPprofService(cfg.ApplicationConfiguration.Pprof, log)
	if err := pprof.Start(); err != nil {
		return cli.Exit(fmt.Errorf("failed to start Pprof service: %w", err), 1)
	}
	defer pprof.ShutDown()

	bc.RegisterBlockGenerator("node", core.SimpleProducer{})
	writer := core.NewWriter(bc, log)
	writer.Start()
	defer writer.Stop()

	errChan := make(chan error)
	rpcServer := rpcsrv.New(writer, cfg.ApplicationConfiguration.RPC, log, errChan)
	rpcServer.Start()
	defer rpcServer.Shutdown()

	grace := newGraceContext()
	var shutdownErr error
Main:
	for {
		select {
		case err := <-errChan:
			shutdownErr = fmt.Errorf("server error: %w", err)
			break Main
		case <-grace.Done():
			break Main
		}
	}

	log.Info("closing chain database")
	writer.Stop()
	if err := bc.Close(); err != nil {
		return cli.Exit(err, 1)
	}
	log.Info("database closed successfully")

	if shutdownErr != nil {
		return cli.Exit(shutdownErr, 1)
	}
	return nil
}
