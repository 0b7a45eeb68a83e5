// Command lazykit runs a short workload against a few lazily constructed
// providers and reports how often each one was built.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/spf13/pflag"

	"github.com/kbukum/lazykit/bootstrap"
	"github.com/kbukum/lazykit/config"
	"github.com/kbukum/lazykit/logger"
	"github.com/kbukum/lazykit/singleton"
	"github.com/kbukum/lazykit/version"
)

const serviceName = "lazykit"

type appConfig struct {
	config.ServiceConfig `yaml:",inline" mapstructure:",squash"`

	Workers int    `yaml:"workers" mapstructure:"workers"`
	Region  string `yaml:"region" mapstructure:"region"`
}

func (c *appConfig) ApplyDefaults() {
	c.ServiceConfig.ApplyDefaults()
	if c.Workers <= 0 {
		c.Workers = 100
	}
	if c.Region == "" {
		c.Region = "eu-west-1"
	}
}

func main() {
	fs := pflag.NewFlagSet(serviceName, pflag.ExitOnError)
	config.RegisterFlags(fs)
	fs.Int("workers", 0, "number of concurrent goroutines calling Get")
	fs.String("region", "", "region reported by the settings provider")
	showVersion := fs.Bool("show-version", false, "print version and exit")
	_ = fs.Parse(os.Args[1:])

	if *showVersion {
		fmt.Println(version.Get().String())
		return
	}

	if err := run(fs); err != nil {
		logger.Error("lazykit failed", logger.Fields(logger.FieldError, err.Error()))
		os.Exit(1)
	}
}

func run(fs *pflag.FlagSet) error {
	cfg := &appConfig{}
	opts := append(config.FileOptions(fs), config.WithFlags(fs))
	if err := config.LoadConfig(serviceName, cfg, opts...); err != nil {
		return err
	}
	if cfg.Name == "" {
		cfg.Name = serviceName
	}

	app, err := bootstrap.NewApp(cfg)
	if err != nil {
		return err
	}
	app.Logger.Info("build", version.Get().Fields())

	settings, err := bootstrap.Provide(app, "settings", singleton.Func(func() *Settings {
		return loadSettings(cfg.Region)
	}))
	if err != nil {
		return err
	}
	pool, err := bootstrap.Provide(app, "pool", singleton.FuncErr(func() (*ConnPool, error) {
		return newConnPool(cfg.Workers / 10)
	}))
	if err != nil {
		return err
	}
	flaky, err := bootstrap.Provide(app, "flaky", flakyConstructor(2))
	if err != nil {
		return err
	}

	return app.RunTask(context.Background(), func(ctx context.Context) error {
		if err := demonstrateRetry(ctx, app.Logger, flaky); err != nil {
			return err
		}
		if err := hammer(ctx, app.Logger, cfg.Workers, settings, pool); err != nil {
			return err
		}

		for _, s := range []struct {
			name  string
			stats singleton.Stats
		}{
			{settings.Name(), settings.Stats()},
			{pool.Name(), pool.Stats()},
			{flaky.Name(), flaky.Stats()},
		} {
			app.Logger.Info("provider stats", logger.Fields(
				logger.FieldProvider, s.name,
				"attempts", s.stats.Attempts,
				"failures", s.stats.Failures,
				"constructions", s.stats.Constructions,
				"state", s.stats.State.String(),
			))
			if s.stats.Constructions != 1 {
				return fmt.Errorf("provider %s constructed %d times", s.name, s.stats.Constructions)
			}
		}
		return nil
	})
}

// demonstrateRetry calls Get until the flaky provider succeeds. Failed
// calls leave the provider empty, so the next call constructs again.
func demonstrateRetry(ctx context.Context, log *logger.Logger, p *singleton.Provider[*Token]) error {
	var first *Token
	for call := 1; call <= 5; call++ {
		tok, err := p.Get(ctx)
		if err != nil {
			log.Warn("flaky provider failed", logger.Fields("call", call, logger.FieldError, err.Error()))
			continue
		}
		if first == nil {
			first = tok
			log.Info("flaky provider ready", logger.Fields("call", call, "token", tok.Value))
			continue
		}
		if tok != first {
			return errors.New("flaky provider returned a second instance")
		}
	}
	if first == nil {
		return errors.New("flaky provider never succeeded")
	}
	return nil
}

// hammer starts workers goroutines behind a barrier so their first Get
// calls race, then checks every worker saw the same instances.
func hammer(ctx context.Context, log *logger.Logger, workers int, settings *singleton.Provider[*Settings], pool *singleton.Provider[*ConnPool]) error {
	var (
		wg      sync.WaitGroup
		start   = make(chan struct{})
		mu      sync.Mutex
		seenS   = map[*Settings]struct{}{}
		seenP   = map[*ConnPool]struct{}{}
		errs    []error
		checked atomic.Int64
	)
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			s, err := settings.Get(ctx)
			if err == nil {
				var c *ConnPool
				c, err = pool.Get(ctx)
				if err == nil {
					c.Acquire()
					mu.Lock()
					seenS[s] = struct{}{}
					seenP[c] = struct{}{}
					mu.Unlock()
					checked.Add(1)
					return
				}
			}
			mu.Lock()
			errs = append(errs, err)
			mu.Unlock()
		}()
	}
	close(start)
	wg.Wait()

	if err := errors.Join(errs...); err != nil {
		return err
	}
	if len(seenS) != 1 || len(seenP) != 1 {
		return fmt.Errorf("expected one instance per provider, got settings=%d pool=%d", len(seenS), len(seenP))
	}
	log.Info("workers done", logger.Fields("workers", checked.Load()))
	return nil
}

// flakyConstructor fails the first failures calls, then succeeds.
func flakyConstructor(failures int) singleton.Constructor[*Token] {
	var calls atomic.Int64
	return func(ctx context.Context) (*Token, error) {
		n := calls.Add(1)
		if n <= int64(failures) {
			return nil, fmt.Errorf("token service unavailable (call %d)", n)
		}
		return &Token{Value: fmt.Sprintf("tok-%d", time.Now().UnixNano())}, nil
	}
}
