// silostress drives a Context through configurable create/destroy/query
// rounds. It exists to shake out storage regressions under sustained churn
// and to give a quick read on scan throughput.
//
// Usage:
//
//	silostress [-config stress.toml]
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/TheBitDrifter/silo"
	"go.uber.org/zap"
)

type Config struct {
	Scenario ScenarioConfig `toml:"scenario"`
	Logging  LoggingConfig  `toml:"logging"`
}

type ScenarioConfig struct {
	Rounds       int `toml:"rounds"`
	Solo         int `toml:"solo"`          // entities with position only
	Movers       int `toml:"movers"`        // entities with position and velocity
	ChurnPercent int `toml:"churn_percent"` // share of movers destroyed and recreated per round
	Iterations   int `toml:"iterations"`    // query passes per round
}

type LoggingConfig struct {
	Development bool `toml:"development"`
}

func defaultConfig() Config {
	return Config{
		Scenario: ScenarioConfig{
			Rounds:       10,
			Solo:         10_000,
			Movers:       50_000,
			ChurnPercent: 10,
			Iterations:   100,
		},
	}
}

func load(path string) (Config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to load config %s: %w", path, err)
	}
	return cfg, nil
}

type Translation struct {
	X float64
	Y float64
}

type Motion struct {
	X float64
	Y float64
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to a TOML scenario file")
	flag.Parse()

	cfg, err := load(*configPath)
	if err != nil {
		return err
	}

	var log *zap.Logger
	if cfg.Logging.Development {
		log, err = zap.NewDevelopment()
	} else {
		log, err = zap.NewProduction()
	}
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer log.Sync()
	silo.Config.SetLogger(log)

	position := silo.FactoryNewComponent[Translation]()
	velocity := silo.FactoryNewComponent[Motion]()

	ctx := silo.Factory.NewContext()
	solo, err := ctx.DefineEntityType(position)
	if err != nil {
		return err
	}
	mover, err := ctx.DefineEntityType(position, velocity)
	if err != nil {
		return err
	}
	motion, err := ctx.DefineQuery(position, velocity)
	if err != nil {
		return err
	}
	if err := ctx.Setup(); err != nil {
		return err
	}

	sc := cfg.Scenario
	log.Info("scenario starting",
		zap.Int("rounds", sc.Rounds),
		zap.Int("solo", sc.Solo),
		zap.Int("movers", sc.Movers),
		zap.Int("churnPercent", sc.ChurnPercent),
		zap.Int("iterations", sc.Iterations))

	for i := 0; i < sc.Solo; i++ {
		if _, err := ctx.Create(solo); err != nil {
			return err
		}
	}
	movers := make([]silo.Entity, 0, sc.Movers)
	for i := 0; i < sc.Movers; i++ {
		e, err := ctx.Create(mover)
		if err != nil {
			return err
		}
		*velocity.GetFromEntity(ctx, e) = Motion{X: 1, Y: float64(i % 7)}
		movers = append(movers, e)
	}

	start := time.Now()
	var scanned uint64
	for round := 0; round < sc.Rounds; round++ {
		churn := len(movers) * sc.ChurnPercent / 100
		for i := 0; i < churn; i++ {
			victim := movers[(round*31+i*17)%len(movers)]
			if !ctx.IsAlive(victim) {
				continue
			}
			if err := ctx.Destroy(victim); err != nil {
				return err
			}
			e, err := ctx.Create(mover)
			if err != nil {
				return err
			}
			movers[(round*31+i*17)%len(movers)] = e
		}

		for it := 0; it < sc.Iterations; it++ {
			err := silo.RunQuery2(ctx, motion, func(p *Translation, v *Motion) {
				p.X += v.X
				p.Y += v.Y
				scanned++
			})
			if err != nil {
				return err
			}
		}
		log.Debug("round complete",
			zap.Int("round", round),
			zap.Int("aliveMovers", ctx.Alive(mover)))
	}
	elapsed := time.Since(start)

	log.Info("scenario complete",
		zap.Duration("elapsed", elapsed),
		zap.Uint64("entitiesScanned", scanned),
		zap.Float64("entitiesPerSecond", float64(scanned)/elapsed.Seconds()))
	return nil
}
