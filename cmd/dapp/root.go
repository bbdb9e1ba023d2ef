package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"dapp-core-sol/internal/config"
	"dapp-core-sol/internal/svc"

	"github.com/spf13/cobra"
	"github.com/zeromicro/go-zero/core/conf"
)

const defaultConfigFile = "etc/dapp.yaml"

// rootFlags 全局参数，非空时覆盖配置文件
type rootFlags struct {
	configFile string
	cluster    string
	endpoint   string
	keypair    string
	output     string
	yes        bool
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}
	cmd := &cobra.Command{
		Use:   "dapp",
		Short: "Solana dApp client for the counter and basic programs",
		Long: `dapp builds, signs and submits transactions for the counter and basic
Anchor programs, and lists decoded program accounts.

Every submission fetches a fresh blockhash; failures are reported as one of
BlockhashUnavailable, BlockhashExpired, SimulationFailed, UserRejected,
InsufficientFunds or Unknown.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Help()
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&flags.configFile, "config", "f", defaultConfigFile, "the config file")
	pf.StringVar(&flags.cluster, "cluster", "", "cluster: devnet | testnet | mainnet | localnet")
	pf.StringVarP(&flags.endpoint, "url", "u", "", "RPC endpoint (defaults to the cluster endpoint)")
	pf.StringVarP(&flags.keypair, "keypair", "k", "", "fee payer keypair file")
	pf.StringVarP(&flags.output, "output", "o", outputText, "output format: text | json | yaml")
	pf.BoolVarP(&flags.yes, "yes", "y", false, "approve transactions without prompting")

	cmd.AddCommand(newCounterCmd(flags))
	cmd.AddCommand(newBasicCmd(flags))
	cmd.AddCommand(newBalanceCmd(flags))
	return cmd
}

// loadConfig 读取配置文件；默认路径不存在时使用内置默认值
func (f *rootFlags) loadConfig(cmd *cobra.Command) (config.AppConfig, error) {
	var c config.AppConfig
	if _, err := os.Stat(f.configFile); err == nil {
		if err := conf.Load(f.configFile, &c); err != nil {
			return c, fmt.Errorf("load config %s: %w", f.configFile, err)
		}
	} else if errors.Is(err, fs.ErrNotExist) && !cmd.Flags().Changed("config") {
		if err := conf.LoadFromYamlBytes([]byte("{}"), &c); err != nil {
			return c, fmt.Errorf("load default config: %w", err)
		}
	} else {
		return c, fmt.Errorf("load config %s: %w", f.configFile, err)
	}

	if f.cluster != "" {
		c.RpcConf.Cluster = f.cluster
		if f.endpoint == "" {
			c.RpcConf.Endpoint = ""
		}
	}
	if f.endpoint != "" {
		c.RpcConf.Endpoint = f.endpoint
	}
	if f.keypair != "" {
		c.WalletConf.KeypairPath = f.keypair
	}
	if f.yes {
		c.WalletConf.AutoApprove = true
	}

	if err := c.Validate(); err != nil {
		return c, fmt.Errorf("invalid config: %w", err)
	}
	return c, nil
}

func (f *rootFlags) serviceContext(cmd *cobra.Command, needWallet bool) (*svc.ServiceContext, error) {
	if _, err := parseOutput(f.output); err != nil {
		return nil, err
	}
	c, err := f.loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	return svc.NewServiceContext(c, svc.Options{
		NeedWallet: needWallet,
		PromptIn:   cmd.InOrStdin(),
		PromptOut:  cmd.ErrOrStderr(),
	})
}
