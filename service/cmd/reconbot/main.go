// Command reconbot plays reconnaissance chess games locally between the
// belief-tracking agent and a random opponent.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	engine "github.com/superlintball/reconchess/engine"
	"github.com/superlintball/reconchess/service/internal/bot"
	"github.com/superlintball/reconchess/service/internal/config"
	"github.com/superlintball/reconchess/service/internal/match"
)

var version = "dev"

var (
	envFiles    []string
	games       int
	metricsAddr string
	agentBlack  bool
	clock       time.Duration
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "reconbot",
		Short:         "Reconnaissance chess agent with a particle-filter board tracker",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringSliceVar(&envFiles, "env", nil, ".env files to load before reading RECON_* variables")

	play := &cobra.Command{
		Use:   "play",
		Short: "Play games between the agent and a random opponent",
		RunE:  runPlay,
	}
	play.Flags().IntVarP(&games, "games", "n", 1, "number of games to play")
	play.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address, e.g. :9090")
	play.Flags().BoolVar(&agentBlack, "black", false, "agent plays black")
	play.Flags().DurationVar(&clock, "clock", 0, "thinking budget per side per game, 0 for none")

	root.AddCommand(play, &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	})
	return root
}

func runPlay(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(envFiles...)
	if err != nil {
		return err
	}
	if games < 1 {
		return fmt.Errorf("%w: --games must be at least 1", config.ErrInvalidValue)
	}

	log := logrus.New()
	log.SetLevel(cfg.LogLevel)
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	cfg.Seed = bot.ResolveSeed(cfg.Seed)
	log.WithField("seed", cfg.Seed).Debug("seeded")

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	if metricsAddr != "" {
		srv := &http.Server{Addr: metricsAddr, Handler: metricsMux(reg)}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.WithError(err).Error("metrics server stopped")
			}
		}()
		defer func() {
			shutdown, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdown)
		}()
		log.WithField("addr", metricsAddr).Info("serving metrics")
	}

	a, err := bot.FromConfig(cfg, log, reg)
	if err != nil {
		return err
	}

	var wins, losses, draws int
	for i := 0; i < games; i++ {
		opp := bot.NewRandomPlayer(cfg.Seed + uint64(i) + 1)
		white, black := bot.Player(a), bot.Player(opp)
		agentColor := engine.White
		if agentBlack {
			white, black = black, white
			agentColor = engine.Black
		}

		m := match.New(white, black, engine.Rules{TurnLimit: uint16(cfg.TurnLimit)}, log)
		m.Names = [2]string{"agent", "random"}
		if agentBlack {
			m.Names = [2]string{"random", "agent"}
		}
		m.Clock = clock

		res, err := m.Run(ctx)
		if err != nil {
			return err
		}
		switch {
		case !res.HasWinner:
			draws++
		case res.Winner == agentColor:
			wins++
		default:
			losses++
		}
		fmt.Fprintf(cmd.OutOrStdout(), "game %d: %s after %d plies (%s)\n", i+1, outcome(res, agentColor), res.Plies, res.Reason)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "agent %d-%d-%d\n", wins, losses, draws)
	return nil
}

func metricsMux(reg *prometheus.Registry) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	return mux
}

func outcome(res match.Result, agentColor engine.Color) string {
	switch {
	case !res.HasWinner:
		return "draw"
	case res.Winner == agentColor:
		return "win"
	}
	return "loss"
}
