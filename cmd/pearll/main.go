// Command pearll trains and inspects reinforcement-learning and
// evolutionary agents on the built-in environments.
//
// Usage:
//
//	pearll demo                         # train DQN on CartPole
//	pearll demo -agent a2c -env Pendulum -steps 20000
//	pearll demo -config pearll.yaml     # full configuration file
//	pearll plot -run runs/dqn_CartPole_20260827_120000 -tag rollout/episode_reward
//	pearll version
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/pearll/pearll/agents"
	"github.com/pearll/pearll/buffers"
	"github.com/pearll/pearll/callbacks"
	"github.com/pearll/pearll/config"
	"github.com/pearll/pearll/env"
	"github.com/pearll/pearll/internal/database"
	"github.com/pearll/pearll/internal/metrics"
	"github.com/pearll/pearll/logging"
	"github.com/pearll/pearll/store"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "demo":
		runDemo(os.Args[2:])
	case "plot":
		runPlot(os.Args[2:])
	case "version":
		fmt.Printf("pearll %s (built %s)\n", Version, BuildTime)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`pearll - reinforcement learning and evolutionary computation

Commands:
  demo      train an agent on a built-in environment
  plot      render a run's metric series to a PNG
  version   print version information

Run 'pearll <command> -h' for command flags.`)
}

func runDemo(args []string) {
	fs := flag.NewFlagSet("demo", flag.ExitOnError)
	configPath := fs.String("config", "", "YAML configuration file")
	agentName := fs.String("agent", "", "agent to train: dqn, a2c, es, ga")
	envName := fs.String("env", "", "environment name (see -list-envs)")
	steps := fs.Int("steps", 0, "override train.num_steps")
	seed := fs.Int64("seed", -1, "override agent.seed")
	logDir := fs.String("logdir", "", "override agent.log_dir")
	listEnvs := fs.Bool("list-envs", false, "print registered environments and exit")
	fs.Parse(args)

	if *listEnvs {
		for _, name := range env.Names() {
			fmt.Println(name)
		}
		return
	}

	cfg, err := config.NewLoader().WithConfigPath(*configPath).Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	if *agentName != "" {
		cfg.Agent.Name = *agentName
	}
	if *envName != "" {
		cfg.Agent.Env = *envName
	}
	if *steps > 0 {
		cfg.Train.NumSteps = *steps
	}
	if *seed >= 0 {
		cfg.Agent.Seed = *seed
	}
	if *logDir != "" {
		cfg.Agent.LogDir = *logDir
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.NewLogger(cfg.Log)
	defer logger.Sync()

	if err := train(cfg, logger); err != nil {
		logger.Fatal("training failed", zap.Error(err))
	}
}

func train(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	writer, err := logging.NewRunWriter(cfg.Agent.LogDir, cfg.Agent.Name, cfg.Agent.Env, logger)
	if err != nil {
		return err
	}
	defer writer.Close()

	deps := agents.Deps{
		Logger: logger,
		Writer: writer,
	}

	if cfg.Metrics.Enabled {
		deps.Collector = metrics.NewCollector("pearll", nil, logger)
		go serveMetrics(cfg.Metrics.Addr, logger)
	}

	if cfg.Redis.Enabled {
		redisCfg := buffers.DefaultRedisConfig()
		redisCfg.Addr = cfg.Redis.Addr
		redisCfg.Password = cfg.Redis.Password
		redisCfg.DB = cfg.Redis.DB
		redisCfg.Key = cfg.Redis.Key
		redisCfg.Capacity = cfg.Buffer.Size
		if cfg.Redis.PoolSize > 0 {
			redisCfg.PoolSize = cfg.Redis.PoolSize
		}
		buf, err := buffers.NewRedisReplayBuffer(redisCfg, nil, logger)
		if err != nil {
			return err
		}
		defer buf.Close()
		deps.Buffer = buf
	}

	if cfg.Agent.CheckpointInterval > 0 {
		ckptStore, err := callbacks.NewFileCheckpointStore(filepath.Join(writer.Dir, "checkpoints"), logger)
		if err != nil {
			return err
		}
		deps.Callbacks = append(deps.Callbacks,
			callbacks.NewCheckpointCallback(ckptStore, cfg.Agent.CheckpointInterval, logger))
	}

	db, err := database.Open(cfg.Database, logger)
	if err != nil {
		return err
	}
	defer database.Close(db)
	runStore, err := store.New(db, logger)
	if err != nil {
		return err
	}

	cfgYAML, _ := yaml.Marshal(cfg)
	run, err := runStore.CreateRun(ctx, cfg.Agent.Name, cfg.Agent.Env, string(cfgYAML))
	if err != nil {
		return err
	}

	result, err := runAgent(ctx, cfg, deps)
	status := store.StatusFinished
	if err != nil {
		status = store.StatusFailed
	}
	if ferr := runStore.FinishRun(ctx, run.UUID, status, result); ferr != nil {
		logger.Warn("cannot record run result", zap.Error(ferr))
	}
	return err
}

// runAgent trains the configured agent and returns its final reward or
// fitness score.
func runAgent(ctx context.Context, cfg *config.Config, deps agents.Deps) (float64, error) {
	switch cfg.Agent.Name {
	case "dqn":
		e, err := env.Make(cfg.Agent.Env, cfg.Agent.Seed)
		if err != nil {
			return 0, err
		}
		defer e.Close()
		agentCfg := agents.DefaultDQNConfig()
		agentCfg.Train = cfg.Train
		agentCfg.Optimizer = cfg.Optimizer
		agentCfg.Explorer = cfg.Explorer
		agentCfg.Buffer = cfg.Buffer
		agentCfg.Seed = cfg.Agent.Seed
		a, err := agents.NewDQN(e, cfg.Agent.Env, agentCfg, deps)
		if err != nil {
			return 0, err
		}
		err = a.Learn(ctx)
		return a.SmoothedReward(), err

	case "a2c":
		e, err := env.Make(cfg.Agent.Env, cfg.Agent.Seed)
		if err != nil {
			return 0, err
		}
		defer e.Close()
		agentCfg := agents.DefaultA2CConfig()
		agentCfg.Train = cfg.Train
		agentCfg.Optimizer = cfg.Optimizer
		agentCfg.Seed = cfg.Agent.Seed
		a, err := agents.NewA2C(e, cfg.Agent.Env, agentCfg, deps)
		if err != nil {
			return 0, err
		}
		err = a.Learn(ctx)
		return a.SmoothedReward(), err

	case "es":
		maker, err := env.Lookup(cfg.Agent.Env)
		if err != nil {
			return 0, err
		}
		agentCfg := agents.DefaultESConfig()
		agentCfg.Population = cfg.Population
		agentCfg.Parallel = cfg.Agent.NumEnvs > 1
		agentCfg.Seed = cfg.Agent.Seed
		a, err := agents.NewES(maker, cfg.Agent.Env, agentCfg, deps)
		if err != nil {
			return 0, err
		}
		err = a.Learn(ctx)
		return a.BestFitness(), err

	case "ga":
		maker, err := env.Lookup(cfg.Agent.Env)
		if err != nil {
			return 0, err
		}
		agentCfg := agents.DefaultGAConfig()
		agentCfg.Population = cfg.Population
		agentCfg.Parallel = cfg.Agent.NumEnvs > 1
		agentCfg.Seed = cfg.Agent.Seed
		a, err := agents.NewGA(maker, cfg.Agent.Env, agentCfg, deps)
		if err != nil {
			return 0, err
		}
		err = a.Learn(ctx)
		return a.BestFitness(), err

	default:
		return 0, fmt.Errorf("unknown agent %q", cfg.Agent.Name)
	}
}

func serveMetrics(addr string, logger *zap.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	logger.Info("metrics endpoint listening", zap.String("addr", addr))
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Warn("metrics endpoint stopped", zap.Error(err))
	}
}
