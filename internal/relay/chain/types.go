package chain

// Blockfrost 的交易视图，字段对齐 /txs/{hash}
type Transaction struct {
	Hash         string   `json:"hash"`
	Block        string   `json:"block"`
	BlockHeight  int64    `json:"block_height"`
	Slot         int64    `json:"slot"`
	OutputAmount []Amount `json:"output_amount"`
	Fees         string   `json:"fees"`
}

// Amount 多资产金额，ADA 对应 unit="lovelace"
// Quantity 是十进制字符串：lovelace 级别的数值会超出 float64 的安全整数范围，
// 任何比较都必须走 decimal，不许转 float
type Amount struct {
	Unit     string `json:"unit"`
	Quantity string `json:"quantity"`
}

// TxUTXOs 对齐 /txs/{hash}/utxos
type TxUTXOs struct {
	Hash    string       `json:"hash"`
	Inputs  []UTXOInput  `json:"inputs"`
	Outputs []UTXOOutput `json:"outputs"`
}

type UTXOInput struct {
	Address string   `json:"address"`
	Amount  []Amount `json:"amount"`
	TxHash  string   `json:"tx_hash"`
}

type UTXOOutput struct {
	Address string   `json:"address"`
	Amount  []Amount `json:"amount"`
}

// VerificationResult 校验结果
// Valid=false 时 Transaction/UTXOs 照样带回去，调用方可以打 near-miss 日志
// (打错地址 / 金额差一点 这类情况排查全靠它)
type VerificationResult struct {
	Valid       bool
	Transaction *Transaction
	UTXOs       *TxUTXOs
}
