package main

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/banklab/udpbank/client"
)

func main() {
	var server string
	var port int
	var sem string
	var timeoutMs int
	var retry uint

	root := &cobra.Command{
		Use:   "bank-client",
		Short: "UDP banking RPC client",
	}

	flags := root.PersistentFlags()
	flags.StringVar(&server, "server", "127.0.0.1", "server IP address")
	flags.IntVar(&port, "port", 9000, "server UDP port")
	flags.StringVar(&sem, "sem", "atleast", "invocation semantic: atmost (or at-most-once) | atleast")
	flags.IntVar(&timeoutMs, "timeout", 500, "per-attempt timeout in milliseconds")
	flags.UintVar(&retry, "retry", 3, "total send attempts before giving up")

	dial := func() (*client.Client, error) {
		atMostOnce := sem == "atmost" || sem == "at-most-once"
		addr := net.JoinHostPort(server, strconv.Itoa(port))
		return client.New(addr,
			client.WithAtMostOnce(atMostOnce),
			client.WithTimeout(time.Duration(timeoutMs)*time.Millisecond),
			client.WithRetry(retry),
		)
	}

	root.AddCommand(
		openCmd(dial),
		closeCmd(dial),
		depositCmd(dial),
		withdrawCmd(dial),
		queryCmd(dial),
		transferCmd(dial),
		monitorCmd(dial),
	)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

type dialFunc func() (*client.Client, error)

func openCmd(dial dialFunc) *cobra.Command {
	var name, password string
	var currency uint16
	var initial float64

	cmd := &cobra.Command{
		Use:   "open",
		Short: "Open a new account",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := dial()
			if err != nil {
				return err
			}
			defer c.Close()

			accountNo, balance, err := c.Open(name, password, currency, initial)
			if err != nil {
				return err
			}
			fmt.Printf("account %d opened, balance %.2f\n", accountNo, balance)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "account holder name")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	cmd.Flags().Uint16Var(&currency, "currency", 0, "currency code (0=CNY, 1=SGD)")
	cmd.Flags().Float64Var(&initial, "initial", 0, "initial balance")
	return cmd
}

func closeCmd(dial dialFunc) *cobra.Command {
	var name, password string
	var accountNo int32

	cmd := &cobra.Command{
		Use:   "close",
		Short: "Close an account",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := dial()
			if err != nil {
				return err
			}
			defer c.Close()

			info, err := c.CloseAccount(name, accountNo, password)
			if err != nil {
				return err
			}
			fmt.Println(info)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "account holder name")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	cmd.Flags().Int32Var(&accountNo, "account", 0, "account number")
	return cmd
}

func depositCmd(dial dialFunc) *cobra.Command {
	var name, password string
	var accountNo int32
	var currency uint16
	var amount float64

	cmd := &cobra.Command{
		Use:   "deposit",
		Short: "Deposit into an account",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := dial()
			if err != nil {
				return err
			}
			defer c.Close()

			newBalance, err := c.Deposit(name, accountNo, password, currency, amount)
			if err != nil {
				return err
			}
			fmt.Printf("new balance %.2f\n", newBalance)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "account holder name")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	cmd.Flags().Int32Var(&accountNo, "account", 0, "account number")
	cmd.Flags().Uint16Var(&currency, "currency", 0, "currency code")
	cmd.Flags().Float64Var(&amount, "amount", 0, "amount to deposit")
	return cmd
}

func withdrawCmd(dial dialFunc) *cobra.Command {
	var name, password string
	var accountNo int32
	var currency uint16
	var amount float64

	cmd := &cobra.Command{
		Use:   "withdraw",
		Short: "Withdraw from an account",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := dial()
			if err != nil {
				return err
			}
			defer c.Close()

			newBalance, err := c.Withdraw(name, accountNo, password, currency, amount)
			if err != nil {
				return err
			}
			fmt.Printf("new balance %.2f\n", newBalance)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "account holder name")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	cmd.Flags().Int32Var(&accountNo, "account", 0, "account number")
	cmd.Flags().Uint16Var(&currency, "currency", 0, "currency code")
	cmd.Flags().Float64Var(&amount, "amount", 0, "amount to withdraw")
	return cmd
}

func queryCmd(dial dialFunc) *cobra.Command {
	var name, password string
	var accountNo int32

	cmd := &cobra.Command{
		Use:   "query",
		Short: "Query an account's balance",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := dial()
			if err != nil {
				return err
			}
			defer c.Close()

			currency, balance, err := c.QueryBalance(name, accountNo, password)
			if err != nil {
				return err
			}
			fmt.Printf("currency %d, balance %.2f\n", currency, balance)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "account holder name")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	cmd.Flags().Int32Var(&accountNo, "account", 0, "account number")
	return cmd
}

func transferCmd(dial dialFunc) *cobra.Command {
	var name, password string
	var fromAcc, toAcc int32
	var currency uint16
	var amount float64

	cmd := &cobra.Command{
		Use:   "transfer",
		Short: "Transfer between two accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := dial()
			if err != nil {
				return err
			}
			defer c.Close()

			fromBal, toBal, err := c.Transfer(name, fromAcc, password, toAcc, currency, amount)
			if err != nil {
				return err
			}
			fmt.Printf("from balance %.2f, to balance %.2f\n", fromBal, toBal)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "source account holder name")
	cmd.Flags().StringVar(&password, "password", "", "source account password")
	cmd.Flags().Int32Var(&fromAcc, "from", 0, "source account number")
	cmd.Flags().Int32Var(&toAcc, "to", 0, "destination account number")
	cmd.Flags().Uint16Var(&currency, "currency", 0, "currency code")
	cmd.Flags().Float64Var(&amount, "amount", 0, "amount to transfer")
	return cmd
}

func monitorCmd(dial dialFunc) *cobra.Command {
	var seconds uint16

	cmd := &cobra.Command{
		Use:   "monitor",
		Short: "Subscribe to account update callbacks for a duration",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := dial()
			if err != nil {
				return err
			}
			defer c.Close()

			return c.Monitor(seconds, func(u client.Update) {
				fmt.Printf("update: account %d, currency %d, balance %.2f, %s\n",
					u.AccountNo, u.Currency, u.NewBalance, u.Info)
			}, nil)
		},
	}

	cmd.Flags().Uint16Var(&seconds, "seconds", 10, "subscription lifetime in seconds")
	return cmd
}
