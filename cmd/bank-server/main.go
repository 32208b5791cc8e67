package main

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sys/unix"

	"github.com/banklab/udpbank/internal/bank"
	"github.com/banklab/udpbank/internal/config"
	"github.com/banklab/udpbank/internal/server"
	"github.com/banklab/udpbank/logging"
)

func main() {
	var port int
	var lossReq float64
	var lossRep float64
	var dedupTTL time.Duration
	var seed int64
	var seedFile string
	var metricsOn bool
	var metricsAddr string
	var configFile string
	var verbose bool

	cmd := &cobra.Command{
		Use:   "bank-server",
		Short: "UDP banking RPC server",
		Long: `bank-server listens for Request datagrams and dispatches them to an
in-memory Bank, simulating configurable packet loss on both the request and
reply path.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadServerConfig(configFile)
			if err != nil {
				return errors.Wrap(err, "load config")
			}

			flags := cmd.Flags()
			if flags.Changed("port") {
				cfg.Port = port
			}
			if flags.Changed("lossReq") {
				cfg.LossReq = lossReq
			}
			if flags.Changed("lossRep") {
				cfg.LossRep = lossRep
			}
			if flags.Changed("dedupTTL") {
				cfg.DedupTTL = dedupTTL
			}
			if flags.Changed("seed") {
				cfg.Seed = seed
			}
			if flags.Changed("seedFile") {
				cfg.SeedFile = seedFile
			}
			if flags.Changed("metrics") {
				cfg.MetricsOn = metricsOn
			}
			if flags.Changed("metricsAddr") {
				cfg.MetricsAddr = metricsAddr
			}

			if err := config.Validate(cfg); err != nil {
				return errors.Wrap(err, "invalid configuration")
			}

			logFunc := func(l logging.Level, format string, a ...interface{}) {
				if !verbose && l == logging.Debug {
					return
				}
				log.Printf("%s: %s", l.String(), fmt.Sprintf(format, a...))
			}

			b := bank.NewInMemoryBank()
			if cfg.SeedFile != "" {
				accounts, err := bank.LoadSeed(cfg.SeedFile)
				if err != nil {
					return errors.Wrapf(err, "load seed file %s", cfg.SeedFile)
				}
				b.Seed(accounts)
			}

			conn, err := net.ListenUDP("udp", &net.UDPAddr{Port: cfg.Port})
			if err != nil {
				return errors.Wrap(err, "listen")
			}
			defer conn.Close()

			opts := []server.Option{
				server.WithLossReq(cfg.LossReq),
				server.WithLossRep(cfg.LossRep),
				server.WithDedupTTL(cfg.DedupTTL),
				server.WithLogFunc(logFunc),
				server.WithSeed(cfg.Seed),
			}

			if cfg.MetricsOn {
				reg := prometheus.NewRegistry()
				metrics := server.NewMetrics(reg)
				opts = append(opts, server.WithMetrics(metrics))

				mux := http.NewServeMux()
				mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
				listener, err := net.Listen("tcp", cfg.MetricsAddr)
				if err != nil {
					return errors.Wrap(err, "listen metrics")
				}
				go http.Serve(listener, mux)
				defer listener.Close()
			}

			s := server.New(conn, b, opts...)

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			runErr := make(chan error, 1)
			go func() {
				runErr <- s.Run(ctx)
			}()

			ch := make(chan os.Signal, 32)
			signal.Notify(ch, unix.SIGINT)
			signal.Notify(ch, unix.SIGTERM)

			select {
			case <-ch:
				cancel()
				<-runErr
			case err := <-runErr:
				if err != nil && errors.Is(err, context.Canceled) {
					return nil
				}
				return err
			}

			return nil
		},
	}

	flags := cmd.Flags()
	flags.IntVar(&port, "port", 9000, "UDP port to listen on")
	flags.Float64Var(&lossReq, "lossReq", 0, "probability of dropping an inbound request")
	flags.Float64Var(&lossRep, "lossRep", 0, "probability of dropping an outbound reply")
	flags.DurationVar(&dedupTTL, "dedupTTL", 60*time.Second, "dedup cache entry lifetime")
	flags.Int64Var(&seed, "seed", 1, "loss-simulation PRNG seed")
	flags.StringVar(&seedFile, "seedFile", "", "YAML file of accounts to seed the bank with")
	flags.BoolVar(&metricsOn, "metrics", false, "expose a Prometheus /metrics endpoint")
	flags.StringVar(&metricsAddr, "metricsAddr", "127.0.0.1:9100", "address for the metrics endpoint")
	flags.StringVar(&configFile, "config", "", "path to a YAML config file")
	flags.BoolVarP(&verbose, "verbose", "v", false, "verbose logging")

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
