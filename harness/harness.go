// Package harness drives the same DEPOSIT load through an AT_MOST_ONCE
// client and an AT_LEAST_ONCE client against independent lossy servers and
// reports how their final balances diverge.
package harness

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/banklab/udpbank/client"
	"github.com/banklab/udpbank/internal/bank"
	"github.com/banklab/udpbank/internal/server"
)

// Config parameterizes one comparison run.
type Config struct {
	LossReq       float64
	LossRep       float64
	Retries       uint
	Timeout       time.Duration
	DepositAmount float64
	InitialAmount float64
	Retransmits   int // number of simulated clients, each making one DEPOSIT call
	Concurrency   int64
}

// DefaultConfig picks a lossy-reply scenario: lossRep=0.5, retry=5,
// timeout=200ms, deposit amount 10.0.
func DefaultConfig() Config {
	return Config{
		LossReq:       0,
		LossRep:       0.5,
		Retries:       5,
		Timeout:       200 * time.Millisecond,
		DepositAmount: 10,
		InitialAmount: 100,
		Retransmits:   1,
		Concurrency:   4,
	}
}

// Result is one semantic's outcome from a single comparison run.
type Result struct {
	Semantic        string
	AccountNo       int32
	StartingBalance float64
	FinalBalance    float64
	SuccessfulCalls int
	FailedCalls     int
}

// Run executes both the at-most-once and the at-least-once arm of cfg
// against freshly started, independent servers and returns both results.
func Run(ctx context.Context, cfg Config) ([]Result, error) {
	g, gctx := errgroup.WithContext(ctx)

	results := make([]Result, 2)

	g.Go(func() error {
		r, err := runArm(gctx, cfg, true)
		if err != nil {
			return err
		}
		results[0] = r
		return nil
	})
	g.Go(func() error {
		r, err := runArm(gctx, cfg, false)
		if err != nil {
			return err
		}
		results[1] = r
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func runArm(ctx context.Context, cfg Config, atMostOnce bool) (Result, error) {
	semanticName := "atleast"
	if atMostOnce {
		semanticName = "atmost"
	}

	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	if err != nil {
		return Result{}, fmt.Errorf("listen: %w", err)
	}
	defer conn.Close()

	b := bank.NewInMemoryBank()
	srv := server.New(conn, b, server.WithLossReq(cfg.LossReq), server.WithLossRep(cfg.LossRep))

	srvCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	srvDone := make(chan struct{})
	go func() {
		srv.Run(srvCtx)
		close(srvDone)
	}()

	c, err := client.New(conn.LocalAddr().String(),
		client.WithAtMostOnce(atMostOnce),
		client.WithRetry(cfg.Retries),
		client.WithTimeout(cfg.Timeout),
	)
	if err != nil {
		return Result{}, fmt.Errorf("dial: %w", err)
	}

	accountNo, balance, err := c.Open(semanticName+"-account", "secret", 0, cfg.InitialAmount)
	c.Close()
	if err != nil {
		return Result{}, fmt.Errorf("open: %w", err)
	}

	res := &Result{
		Semantic:        semanticName,
		AccountNo:       accountNo,
		StartingBalance: balance,
		FinalBalance:    balance,
	}

	serverAddr := conn.LocalAddr().String()

	// cfg.Retransmits simulated clients deposit concurrently, each its
	// own socket (a Client serializes its own requests but the harness
	// wants to observe many clients racing the same account). The
	// semaphore bounds how many run at once, the same shape app.go uses
	// to bound concurrent node probes; errgroup collects them and
	// surfaces the first dial/transport error, if any.
	sem := semaphore.NewWeighted(cfg.Concurrency)
	g, gctx := errgroup.WithContext(ctx)
	var mu sync.Mutex

	for i := 0; i < cfg.Retransmits; i++ {
		g.Go(func() error {
			if err := sem.Acquire(gctx, 1); err != nil {
				return err
			}
			defer sem.Release(1)

			sim, err := client.New(serverAddr,
				client.WithAtMostOnce(atMostOnce),
				client.WithRetry(cfg.Retries),
				client.WithTimeout(cfg.Timeout),
			)
			if err != nil {
				return fmt.Errorf("dial simulated client: %w", err)
			}
			defer sim.Close()

			newBalance, err := sim.Deposit(semanticName+"-account", accountNo, "secret", 0, cfg.DepositAmount)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				res.FailedCalls++
				return nil
			}
			res.SuccessfulCalls++
			// Deposits only raise the balance, so the largest reported
			// balance is the latest one, whatever order replies land in.
			if newBalance > res.FinalBalance {
				res.FinalBalance = newBalance
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		cancel()
		<-srvDone
		return Result{}, err
	}

	cancel()
	<-srvDone

	return *res, nil
}
