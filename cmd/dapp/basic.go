package main

import (
	"fmt"
	"io"

	"dapp-core-sol/internal/consts"
	"dapp-core-sol/internal/pkg/types"
	"dapp-core-sol/internal/svc"

	"github.com/spf13/cobra"
)

func newBasicCmd(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "basic",
		Short: "Interact with the basic program",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Help()
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "greet",
		Short: "Send a greet instruction and print the greeting from the program logs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, err := flags.serviceContext(cmd, true)
			if err != nil {
				return err
			}
			defer sc.Close()

			res, err := sc.BasicService().Greet(cmd.Context())
			if err != nil {
				return err
			}
			out := txResult{
				Action:    "greet",
				Signature: res.Signature,
				Explorer:  sc.Config.Cluster().ExplorerTxURL(res.Signature),
				Greeting:  res.Greeting,
			}
			return render(cmd.OutOrStdout(), flags.output, out, out.writeText)
		},
	})

	cmd.AddCommand(newProgramCmd(flags, func(sc *svc.ServiceContext) types.Pubkey {
		return sc.BasicService().ProgramID()
	}))
	return cmd
}

type balanceResult struct {
	Address  string  `json:"address" yaml:"address"`
	Lamports uint64  `json:"lamports" yaml:"lamports"`
	SOL      float64 `json:"sol" yaml:"sol"`
}

func newBalanceCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "balance [address]",
		Short: "Show the SOL balance of an address (defaults to the fee payer)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, err := flags.serviceContext(cmd, len(args) == 0)
			if err != nil {
				return err
			}
			defer sc.Close()

			var addr string
			if len(args) == 1 {
				pk, err := types.TryPubkeyFromBase58(args[0])
				if err != nil {
					return fmt.Errorf("invalid address: %w", err)
				}
				addr = pk.String()
			} else {
				addr = sc.Signer.PublicKey().ToBase58()
			}

			lamports, err := sc.Chain.GetBalance(cmd.Context(), addr)
			if err != nil {
				return err
			}
			res := balanceResult{Address: addr, Lamports: lamports, SOL: consts.LamportsToSOL(lamports)}
			return render(cmd.OutOrStdout(), flags.output, res, func(w io.Writer) {
				fmt.Fprintf(w, "%s: %.9f SOL (%d lamports)\n", res.Address, res.SOL, res.Lamports)
			})
		},
	}
}
