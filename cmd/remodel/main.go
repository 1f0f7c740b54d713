// Remodel converts parsed database definition scripts into reverse-engineered documents.
//
// Each input is a JSON file with the original script text and the commands
// parsed from it:
//
//	{"script": "CREATE DATABASE shop; ...", "commands": [{"type": "createBucket", "name": "shop"}, ...]}
//
// Results are written to stdout (or to -out) and optionally published to a topic.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"strings"

	"github.com/birdie-ai/remodel/buildinfo"
	"github.com/birdie-ai/remodel/command"
	"github.com/birdie-ai/remodel/event"
	"github.com/birdie-ai/remodel/model"
	"github.com/birdie-ai/remodel/redoc"
	"github.com/birdie-ai/remodel/slog"
	"github.com/birdie-ai/remodel/tracing"
	"github.com/birdie-ai/remodel/xerrgroup"
	"github.com/caarlos0/env/v11"
	"github.com/prometheus/client_golang/prometheus"

	_ "gocloud.dev/pubsub/gcppubsub"
	_ "gocloud.dev/pubsub/mempubsub"
)

const envPrefix = "REMODEL"

// Config is the CLI configuration, loaded from REMODEL_* environment variables.
// Flags take precedence over the environment.
type Config struct {
	Format      string  `env:"FORMAT" envDefault:"json"`
	TopicURL    string  `env:"TOPIC_URL"`
	PublishRate float64 `env:"PUBLISH_RATE"`
	Concurrency int     `env:"CONCURRENCY" envDefault:"4"`
	MetricsFile string  `env:"METRICS_FILE"`
	OutDir      string  `env:"OUT_DIR"`
}

// job is the outcome of converting one input.
type job struct {
	index  int
	source string
	result redoc.Result
}

func main() {
	logcfg, err := slog.LoadConfig(envPrefix)
	if err != nil {
		log.Fatalf("loading log config: %v", err)
	}
	if err := slog.Configure(logcfg); err != nil {
		log.Fatalf("configuring log: %v", err)
	}

	cfg, err := loadConfig()
	if err != nil {
		slog.Fatal("loading config", "error", err)
	}

	flag.StringVar(&cfg.Format, "format", cfg.Format, "output format: json or yaml")
	flag.StringVar(&cfg.TopicURL, "topic", cfg.TopicURL, "topic URL to publish documents to, like gcppubsub://projects/p/topics/t")
	flag.Float64Var(&cfg.PublishRate, "publish-rate", cfg.PublishRate, "max events published per second, 0 for no limit")
	flag.IntVar(&cfg.Concurrency, "concurrency", cfg.Concurrency, "max inputs converted concurrently")
	flag.StringVar(&cfg.MetricsFile, "metrics", cfg.MetricsFile, "write prometheus metrics to this file when done")
	flag.StringVar(&cfg.OutDir, "out", cfg.OutDir, "write one <input>.redoc.<format> file per input to this dir instead of stdout")
	version := flag.Bool("version", false, "print build information and exit")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] input.json... (use - for stdin)\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	info := buildinfo.Read()
	if *version {
		fmt.Printf("remodel revision=%s modified=%t go=%s\n", info.Revision, info.Modified, info.GoVersion)
		return
	}

	inputs := flag.Args()
	if len(inputs) == 0 {
		flag.Usage()
		os.Exit(2)
	}
	format, err := redoc.ParseFormat(cfg.Format)
	if err != nil {
		slog.Fatal("invalid format", "error", err)
	}
	if cfg.Concurrency <= 0 {
		slog.Fatal("concurrency must be > 0", "concurrency", cfg.Concurrency)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	registry := prometheus.NewRegistry()
	model.MustRegisterMetrics(registry)
	event.MustRegisterMetrics(registry)
	buildinfo.MustRegisterMetrics(registry)
	buildinfo.Sample(info)

	var publisher *event.Publisher
	if cfg.TopicURL != "" {
		topic, err := event.OpenTopic(ctx, cfg.TopicURL)
		if err != nil {
			slog.Fatal("opening topic", "error", err)
		}
		publisher = event.NewPublisher(topic, event.WithRateLimit(cfg.PublishRate))
		defer func() {
			if err := publisher.Shutdown(context.Background()); err != nil {
				slog.Error("shutting down publisher", "error", err)
			}
		}()
	}

	jobs, err := convertAll(ctx, inputs, cfg.Concurrency, publisher)
	if err != nil {
		slog.Fatal("converting inputs", "error", err)
	}

	for _, j := range jobs {
		if err := output(j, cfg.OutDir, format, len(jobs) > 1); err != nil {
			slog.Fatal("writing output", "source", j.source, "error", err)
		}
	}

	if cfg.MetricsFile != "" {
		if err := prometheus.WriteToTextfile(cfg.MetricsFile, registry); err != nil {
			slog.Fatal("writing metrics", "error", err)
		}
	}
}

func loadConfig() (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: envPrefix + "_"}); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// convertAll converts all inputs with at most concurrency inputs at a time,
// returning the jobs in input order. It fails on the first failing input.
func convertAll(ctx context.Context, inputs []string, concurrency int, publisher *event.Publisher) ([]job, error) {
	g, ctx := xerrgroup.WithContext[job](ctx)
	g.SetLimit(concurrency)

	for i, source := range inputs {
		g.Go(func() (job, error) {
			ctx := tracing.StartRun(ctx, source)
			res, err := convert(ctx, source)
			if err != nil {
				return job{}, fmt.Errorf("%s: %w", source, err)
			}
			if publisher != nil {
				if err := publisher.Publish(ctx, res); err != nil {
					return job{}, fmt.Errorf("%s: %w", source, err)
				}
			}
			return job{index: i, source: source, result: res}, nil
		})
	}

	jobs, err := g.Wait()
	if err != nil {
		return nil, err
	}
	slices.SortFunc(jobs, func(a, b job) int {
		return a.index - b.index
	})
	return jobs, nil
}

func convert(ctx context.Context, source string) (redoc.Result, error) {
	log := slog.FromCtx(ctx)

	script, err := readScript(source)
	if err != nil {
		return redoc.Result{}, err
	}
	log.Debug("converting", "commands", len(script.Commands))

	res, err := redoc.Convert(ctx, script.Commands, script.Text)
	if err != nil {
		return redoc.Result{}, err
	}
	log.Info("converted",
		"commands", len(script.Commands),
		"documents", len(res.Documents),
		"relationships", len(res.Relationships))
	return res, nil
}

func readScript(source string) (command.Script, error) {
	if source == "-" {
		return command.DecodeScript(os.Stdin)
	}
	return command.DecodeScriptFile(source)
}

func output(j job, outDir string, format redoc.Format, multi bool) error {
	if outDir == "" {
		if multi && format == redoc.FormatYAML {
			if _, err := io.WriteString(os.Stdout, "---\n"); err != nil {
				return err
			}
		}
		return redoc.Encode(os.Stdout, j.result, format)
	}

	name := "stdin"
	if j.source != "-" {
		name = strings.TrimSuffix(filepath.Base(j.source), filepath.Ext(j.source))
	}
	path := filepath.Join(outDir, fmt.Sprintf("%s.redoc.%s", name, format))
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	if err := redoc.Encode(f, j.result, format); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
