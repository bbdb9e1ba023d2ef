package counter

import (
	"encoding/binary"

	"dapp-core-sol/internal/consts"
	"dapp-core-sol/internal/pkg/types"
)

// anchor 指令 discriminator: sha256("global:<name>")[:8]
const (
	Initialize uint64 = 0xafaf6d1f0d989bed
	Increment  uint64 = 0x0b12680968ae3b21
	Decrement  uint64 = 0x6ae3a83bf81b9665
	Set        uint64 = 0xc63335f1741d7ec2
	Close      uint64 = 0x62a5c9b16c41ce60
)

// AccountDiscriminator sha256("account:Counter")[:8]
const AccountDiscriminator uint64 = 0xffb004f5bcfd7c19

// AccountSize discriminator + count(u8)
const AccountSize = 8 + 1

// ProgramID 返回 Counter 程序在指定集群上的地址
func ProgramID(cluster consts.Cluster) types.Pubkey {
	switch cluster {
	case consts.ClusterDevnet:
		return consts.CounterProgramDevnet
	case consts.ClusterTestnet:
		return consts.CounterProgramTestnet
	default:
		return consts.CounterProgram
	}
}

// InstructionName 按 discriminator 返回指令名，未知返回空串
func InstructionName(data []byte) string {
	if len(data) < 8 {
		return ""
	}
	switch binary.BigEndian.Uint64(data[:8]) {
	case Initialize:
		return "initialize"
	case Increment:
		return "increment"
	case Decrement:
		return "decrement"
	case Set:
		return "set"
	case Close:
		return "close"
	default:
		return ""
	}
}

func discriminatorBytes(d uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, d)
	return b
}
