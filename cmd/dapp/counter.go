package main

import (
	"fmt"
	"io"
	"strconv"

	"dapp-core-sol/internal/pkg/types"
	"dapp-core-sol/internal/service"
	"dapp-core-sol/internal/svc"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/spf13/cobra"
)

func newCounterCmd(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "counter",
		Short: "Create, update, close and list counter accounts",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Help()
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create a new counter account owned by the fee payer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCounter(cmd, flags, true, func(sc *svc.ServiceContext, s *service.CounterService) error {
				sig, account, err := s.Initialize(cmd.Context())
				if err != nil {
					return err
				}
				res := txResult{
					Action:    "initialize",
					Signature: sig,
					Explorer:  sc.Config.Cluster().ExplorerTxURL(sig),
					Account:   account.ToBase58(),
				}
				return render(cmd.OutOrStdout(), flags.output, res, res.writeText)
			})
		},
	})

	cmd.AddCommand(counterTxCmd(flags, "increment", "Increment a counter by one", func(cmd *cobra.Command, s *service.CounterService, target common.PublicKey, _ []string) (string, error) {
		return s.Increment(cmd.Context(), target)
	}))
	cmd.AddCommand(counterTxCmd(flags, "decrement", "Decrement a counter by one", func(cmd *cobra.Command, s *service.CounterService, target common.PublicKey, _ []string) (string, error) {
		return s.Decrement(cmd.Context(), target)
	}))
	cmd.AddCommand(counterTxCmd(flags, "close", "Close a counter and refund its rent to the fee payer", func(cmd *cobra.Command, s *service.CounterService, target common.PublicKey, _ []string) (string, error) {
		return s.Close(cmd.Context(), target)
	}))

	set := counterTxCmd(flags, "set", "Set a counter to the given value (0-255)", func(cmd *cobra.Command, s *service.CounterService, target common.PublicKey, rest []string) (string, error) {
		value, err := parseCounterValue(rest[0])
		if err != nil {
			return "", err
		}
		return s.Set(cmd.Context(), target, value)
	})
	set.Use = "set <counter> <value>"
	set.Args = cobra.ExactArgs(2)
	cmd.AddCommand(set)

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List all counter accounts of the program",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCounter(cmd, flags, false, func(sc *svc.ServiceContext, s *service.CounterService) error {
				records, err := s.List(cmd.Context())
				if err != nil {
					return err
				}
				return render(cmd.OutOrStdout(), flags.output, records, func(w io.Writer) {
					writeCounterTable(w, s.ProgramID(), records)
				})
			})
		},
	})

	cmd.AddCommand(newProgramCmd(flags, func(sc *svc.ServiceContext) types.Pubkey {
		return sc.CounterService().ProgramID()
	}))
	return cmd
}

type counterTxFunc func(cmd *cobra.Command, s *service.CounterService, target common.PublicKey, rest []string) (string, error)

// counterTxCmd 以 counter 地址为第一个参数的写操作
func counterTxCmd(flags *rootFlags, action, short string, fn counterTxFunc) *cobra.Command {
	return &cobra.Command{
		Use:   action + " <counter>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := types.TryPubkeyFromBase58(args[0])
			if err != nil {
				return fmt.Errorf("invalid counter address: %w", err)
			}
			return withCounter(cmd, flags, true, func(sc *svc.ServiceContext, s *service.CounterService) error {
				sig, err := fn(cmd, s, target.ToCommon(), args[1:])
				if err != nil {
					return err
				}
				res := txResult{
					Action:    action,
					Signature: sig,
					Explorer:  sc.Config.Cluster().ExplorerTxURL(sig),
					Account:   args[0],
				}
				return render(cmd.OutOrStdout(), flags.output, res, res.writeText)
			})
		},
	}
}

func withCounter(cmd *cobra.Command, flags *rootFlags, needWallet bool, fn func(*svc.ServiceContext, *service.CounterService) error) error {
	sc, err := flags.serviceContext(cmd, needWallet)
	if err != nil {
		return err
	}
	defer sc.Close()
	return fn(sc, sc.CounterService())
}

func parseCounterValue(s string) (uint8, error) {
	v, err := strconv.ParseUint(s, 10, 8)
	if err != nil {
		return 0, fmt.Errorf("counter value must be an integer in 0..255: %q", s)
	}
	return uint8(v), nil
}

func writeCounterTable(w io.Writer, program types.Pubkey, records []service.CounterRecord) {
	fmt.Fprintf(w, "program %s: %d counter(s)\n", program, len(records))
	for _, r := range records {
		fmt.Fprintf(w, "  %-44s  count=%-3d  lamports=%d\n", r.Address, r.Count, r.Lamports)
	}
}
