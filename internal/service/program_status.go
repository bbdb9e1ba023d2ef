package service

import (
	"context"

	"dapp-core-sol/internal/chain"
	"dapp-core-sol/internal/consts"
	"dapp-core-sol/internal/pkg/logger"
	"dapp-core-sol/internal/pkg/types"
)

// ProgramInfoRPC 查询程序账户与节点版本，由 *chain.Client 实现
type ProgramInfoRPC interface {
	GetAccountInfo(ctx context.Context, base58Addr string) (chain.AccountStatus, error)
	GetVersion(ctx context.Context) (string, error)
}

// ProgramStatus 程序在当前集群上的部署情况
type ProgramStatus struct {
	Program    string `json:"program" yaml:"program"`
	Cluster    string `json:"cluster" yaml:"cluster"`
	Version    string `json:"version,omitempty" yaml:"version,omitempty"` // 节点 solana-core 版本
	Exists     bool   `json:"exists" yaml:"exists"`
	Executable bool   `json:"executable" yaml:"executable"`
	Owner      string `json:"owner,omitempty" yaml:"owner,omitempty"`
	Lamports   uint64 `json:"lamports" yaml:"lamports"`
}

// Deployed 账户存在且可执行
func (s *ProgramStatus) Deployed() bool {
	return s.Exists && s.Executable
}

// CheckProgram 查询程序账户；节点版本只用于展示，查询失败不影响结果
func CheckProgram(ctx context.Context, rpc ProgramInfoRPC, cluster consts.Cluster, program types.Pubkey) (*ProgramStatus, error) {
	acc, err := rpc.GetAccountInfo(ctx, program.String())
	if err != nil {
		return nil, err
	}

	status := &ProgramStatus{
		Program:    program.String(),
		Cluster:    string(cluster),
		Exists:     acc.Exists,
		Executable: acc.Executable,
		Owner:      acc.Owner,
		Lamports:   acc.Lamports,
	}
	if version, err := rpc.GetVersion(ctx); err != nil {
		logger.Warnf("[ProgramStatus] 获取节点版本失败: %v", err)
	} else {
		status.Version = version
	}

	if !status.Deployed() {
		logger.Warnf("[ProgramStatus] 程序未部署: cluster=%s program=%s exists=%v", cluster, status.Program, status.Exists)
	}
	return status, nil
}
