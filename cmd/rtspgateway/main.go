package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v2"

	"github.com/rtspgateway/rtspgateway"
)

type cli struct {
	Config     string `help:"Path to a YAML config file." default:"rtspgateway.yml"`
	Port       int    `help:"Override the TCP control port."`
	ServerName string `help:"Override the advertised Server: header value." name:"server-name"`
	Verbose    bool   `help:"Enable debug-level logging." short:"v"`
}

func main() {
	var c cli
	kong.Parse(&c, kong.Description("RTSP aggregation and re-publishing server"))

	cfg, err := loadConfig(c.Config)
	if err != nil {
		zerolog.New(os.Stderr).With().Timestamp().Logger().
			Fatal().Err(err).Str("path", c.Config).Msg("failed to load config")
	}

	if c.Port != 0 {
		cfg.Port = c.Port
	}
	if c.ServerName != "" {
		cfg.ServerName = c.ServerName
	}

	level := zerolog.InfoLevel
	if c.Verbose {
		level = zerolog.DebugLevel
	}
	base := zerolog.New(os.Stderr).With().Timestamp().Logger().Level(level)

	sources := rtspgateway.NewSourceRegistry()
	for _, sc := range cfg.Sources {
		if err := sources.Add(sc.BuildSource()); err != nil {
			base.Error().Err(err).Str("source", sc.Name).Msg("failed to register source")
		}
	}

	srv := rtspgateway.NewServer(cfg, sources)
	srv.Logger = rtspgateway.NewZerologLogger(base)

	if err := srv.Start(); err != nil {
		base.Fatal().Err(err).Msg("failed to start server")
	}
	base.Info().Int("port", cfg.Port).Msg("rtspgateway listening")

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	base.Info().Msg("shutting down")
	srv.Stop()
}

func loadConfig(path string) (rtspgateway.Config, error) {
	var cfg rtspgateway.Config

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.ApplyDefaults()
			return cfg, nil
		}
		return cfg, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}

	cfg.ApplyDefaults()
	return cfg, nil
}
