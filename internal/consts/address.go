package consts

import "dapp-core-sol/internal/pkg/types"

// Base58 地址常量（可读性高，适合配置与日志使用）
const (
	//  Programs
	SystemProgramStr = "11111111111111111111111111111111"

	// Counter 示例程序（anchor），不同集群部署地址不同
	CounterProgramDevnetStr  = "BbDVPD53NemX9wCk4Xie8A2jv8NrjNcUre9ruX9BW7TQ"
	CounterProgramTestnetStr = "6z68wfurCMYkZG51s1Et9BJEd9nJGUusjHXNt4dGbNNF"
	CounterProgramStr        = "Count3AcZucFDPSFBAeHkQ6AvttieKUkyJ8HiQGhQwe" // mainnet / localnet

	// Basic 示例程序（greet）
	BasicProgramStr = "JAVuBXeBZqXNtS73azhBDAoYaaAFfo4gWXoZe2e7Jf8H"
)

var (
	SystemProgram = types.PubkeyFromBase58(SystemProgramStr)

	CounterProgramDevnet  = types.PubkeyFromBase58(CounterProgramDevnetStr)
	CounterProgramTestnet = types.PubkeyFromBase58(CounterProgramTestnetStr)
	CounterProgram        = types.PubkeyFromBase58(CounterProgramStr)

	BasicProgram = types.PubkeyFromBase58(BasicProgramStr)
)
