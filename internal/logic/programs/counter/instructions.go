package counter

import (
	"fmt"

	"dapp-core-sol/internal/consts"
	"dapp-core-sol/internal/logic/txsubmit"
	"dapp-core-sol/internal/pkg/types"

	"github.com/blocto/solana-go-sdk/common"
	sdktypes "github.com/blocto/solana-go-sdk/types"
	"github.com/near/borsh-go"
)

// 指令构造均为纯函数，不访问网络

// NewInitializeInstruction 创建新的 counter 账户，counter keypair 作为附加 signer
func NewInitializeInstruction(program types.Pubkey, payer common.PublicKey, counter sdktypes.Account) txsubmit.Instruction {
	return txsubmit.Instruction{
		Instruction: sdktypes.Instruction{
			ProgramID: program.ToCommon(),
			Accounts: []sdktypes.AccountMeta{
				{PubKey: payer, IsSigner: true, IsWritable: true},
				{PubKey: counter.PublicKey, IsSigner: true, IsWritable: true},
				{PubKey: consts.SystemProgram.ToCommon(), IsSigner: false, IsWritable: false},
			},
			Data: discriminatorBytes(Initialize),
		},
		Signers: []sdktypes.Account{counter},
	}
}

func NewIncrementInstruction(program types.Pubkey, counter common.PublicKey) txsubmit.Instruction {
	return counterOnly(program, counter, discriminatorBytes(Increment))
}

func NewDecrementInstruction(program types.Pubkey, counter common.PublicKey) txsubmit.Instruction {
	return counterOnly(program, counter, discriminatorBytes(Decrement))
}

type setArgs struct {
	Value uint8
}

// NewSetInstruction 将 counter 设为 value
func NewSetInstruction(program types.Pubkey, counter common.PublicKey, value uint8) (txsubmit.Instruction, error) {
	args, err := borsh.Serialize(setArgs{Value: value})
	if err != nil {
		return txsubmit.Instruction{}, fmt.Errorf("serialize set args: %w", err)
	}
	data := append(discriminatorBytes(Set), args...)
	return counterOnly(program, counter, data), nil
}

// NewCloseInstruction 关闭 counter 账户，租金退回 payer
func NewCloseInstruction(program types.Pubkey, payer, counter common.PublicKey) txsubmit.Instruction {
	return txsubmit.Instruction{
		Instruction: sdktypes.Instruction{
			ProgramID: program.ToCommon(),
			Accounts: []sdktypes.AccountMeta{
				{PubKey: payer, IsSigner: true, IsWritable: true},
				{PubKey: counter, IsSigner: false, IsWritable: true},
			},
			Data: discriminatorBytes(Close),
		},
	}
}

func counterOnly(program types.Pubkey, counter common.PublicKey, data []byte) txsubmit.Instruction {
	return txsubmit.Instruction{
		Instruction: sdktypes.Instruction{
			ProgramID: program.ToCommon(),
			Accounts: []sdktypes.AccountMeta{
				{PubKey: counter, IsSigner: false, IsWritable: true},
			},
			Data: data,
		},
	}
}
