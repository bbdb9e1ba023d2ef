package consts

const (
	LamportsPerSOL uint64 = 1_000_000_000

	// DefaultMinFeePayerLamports 发送交易前 fee payer 的最低余额（0.002 SOL，覆盖账户租金 + 手续费）
	DefaultMinFeePayerLamports uint64 = 2_000_000
)

// LamportsToSOL 仅用于展示
func LamportsToSOL(lamports uint64) float64 {
	return float64(lamports) / float64(LamportsPerSOL)
}
