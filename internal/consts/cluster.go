package consts

import (
	"fmt"
	"strings"
)

// Cluster 表示 Solana 集群
type Cluster string

const (
	ClusterDevnet   Cluster = "devnet"
	ClusterTestnet  Cluster = "testnet"
	ClusterMainnet  Cluster = "mainnet"
	ClusterLocalnet Cluster = "localnet"
)

// ParseCluster 兼容 "solana:devnet"、"mainnet-beta" 等写法
func ParseCluster(s string) (Cluster, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.TrimPrefix(s, "solana:")
	switch s {
	case "devnet":
		return ClusterDevnet, nil
	case "testnet":
		return ClusterTestnet, nil
	case "mainnet", "mainnet-beta":
		return ClusterMainnet, nil
	case "localnet", "localhost":
		return ClusterLocalnet, nil
	default:
		return "", fmt.Errorf("unknown cluster: %q", s)
	}
}

// DefaultEndpoint 集群默认 RPC 地址
func (c Cluster) DefaultEndpoint() string {
	switch c {
	case ClusterDevnet:
		return "https://api.devnet.solana.com"
	case ClusterTestnet:
		return "https://api.testnet.solana.com"
	case ClusterLocalnet:
		return "http://127.0.0.1:8899"
	default:
		return "https://api.mainnet-beta.solana.com"
	}
}

// ExplorerTxURL 区块浏览器交易链接
func (c Cluster) ExplorerTxURL(signature string) string {
	switch c {
	case ClusterMainnet:
		return fmt.Sprintf("https://explorer.solana.com/tx/%s", signature)
	case ClusterLocalnet:
		return fmt.Sprintf("https://explorer.solana.com/tx/%s?cluster=custom&customUrl=%s", signature, ClusterLocalnet.DefaultEndpoint())
	default:
		return fmt.Sprintf("https://explorer.solana.com/tx/%s?cluster=%s", signature, c)
	}
}
