package main

import (
	"fmt"
	"io"

	"dapp-core-sol/internal/pkg/types"
	"dapp-core-sol/internal/service"
	"dapp-core-sol/internal/svc"

	"github.com/spf13/cobra"
)

// newProgramCmd 查询程序在当前集群上是否已部署
func newProgramCmd(flags *rootFlags, programOf func(sc *svc.ServiceContext) types.Pubkey) *cobra.Command {
	return &cobra.Command{
		Use:   "program",
		Short: "Show whether the program is deployed on the selected cluster",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, err := flags.serviceContext(cmd, false)
			if err != nil {
				return err
			}
			defer sc.Close()

			status, err := sc.ProgramStatus(cmd.Context(), programOf(sc))
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), flags.output, status, func(w io.Writer) {
				writeProgramStatus(w, status)
			})
		},
	}
}

func writeProgramStatus(w io.Writer, s *service.ProgramStatus) {
	cluster := s.Cluster
	if s.Version != "" {
		cluster = fmt.Sprintf("%s (solana-core %s)", s.Cluster, s.Version)
	}
	state := "deployed"
	switch {
	case !s.Exists:
		state = "not found, deploy the program to this cluster first"
	case !s.Executable:
		state = "account exists but is not executable"
	}
	fmt.Fprintf(w, "program  %s\n", s.Program)
	fmt.Fprintf(w, "cluster  %s\n", cluster)
	fmt.Fprintf(w, "status   %s\n", state)
	if s.Exists {
		fmt.Fprintf(w, "owner    %s\n", s.Owner)
	}
}
