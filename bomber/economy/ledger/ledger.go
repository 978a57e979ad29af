// Package ledger describes the value movements an operation asks the external
// ledger to perform. The core only produces requests; delivery happens after
// the operation's state is committed.
package ledger

type Kind string

const (
	KindMint           Kind = "mint"
	KindBurn           Kind = "burn"
	KindTransferNative Kind = "transfer_native"
)

// Request is one ledger instruction. From is only set for native transfers;
// Burn has neither side.
type Request struct {
	Kind   Kind   `json:"kind"`
	From   string `json:"from,omitempty"`
	To     string `json:"to,omitempty"`
	Amount uint64 `json:"amount"`
}

func Mint(to string, amount uint64) Request {
	return Request{Kind: KindMint, To: to, Amount: amount}
}

func Burn(amount uint64) Request {
	return Request{Kind: KindBurn, Amount: amount}
}

func TransferNative(from, to string, amount uint64) Request {
	return Request{Kind: KindTransferNative, From: from, To: to, Amount: amount}
}
