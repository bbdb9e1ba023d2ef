package basic

import (
	"encoding/binary"
	"strings"

	"dapp-core-sol/internal/consts"
	"dapp-core-sol/internal/logic/txsubmit"
	"dapp-core-sol/internal/pkg/types"

	sdktypes "github.com/blocto/solana-go-sdk/types"
)

// Greet sha256("global:greet")[:8]
const Greet uint64 = 0xcbc20396e43ab53e

const (
	programLogPrefix = "Program log: "
	greetingMarker   = programLogPrefix + "GM"
)

// ProgramID Basic 程序在各集群使用同一地址
func ProgramID(consts.Cluster) types.Pubkey {
	return consts.BasicProgram
}

// NewGreetInstruction greet 指令不带任何账户
func NewGreetInstruction(program types.Pubkey) txsubmit.Instruction {
	data := make([]byte, 8)
	binary.BigEndian.PutUint64(data, Greet)
	return txsubmit.Instruction{
		Instruction: sdktypes.Instruction{
			ProgramID: program.ToCommon(),
			Data:      data,
		},
	}
}

// ExtractGreeting 从交易日志中找到 "Program log: GM..." 并去掉前缀
func ExtractGreeting(logs []string) (string, bool) {
	for _, line := range logs {
		if strings.Contains(line, greetingMarker) {
			return strings.Replace(line, programLogPrefix, "", 1), true
		}
	}
	return "", false
}
