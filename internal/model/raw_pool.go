package model

// RawPool is the wire form of a pool inside a snapshot. Numeric fields are human-readable
// decimals as published by the Balancer subgraph.
type RawPool struct {
	ID              string         `json:"id"`
	Address         string         `json:"address"`
	PoolType        string         `json:"poolType"`
	PoolTypeVersion int            `json:"poolTypeVersion,omitempty"`
	ProtocolVersion int            `json:"protocolVersion,omitempty"`
	SwapFee         string         `json:"swapFee"`
	TotalShares     string         `json:"totalShares,omitempty"`
	Tokens          []RawPoolToken `json:"tokens"`

	Amp string `json:"amp,omitempty"`

	Alpha     string `json:"alpha,omitempty"`
	Beta      string `json:"beta,omitempty"`
	C         string `json:"c,omitempty"`
	S         string `json:"s,omitempty"`
	Lambda    string `json:"lambda,omitempty"`
	TauAlphaX string `json:"tauAlphaX,omitempty"`
	TauAlphaY string `json:"tauAlphaY,omitempty"`
	TauBetaX  string `json:"tauBetaX,omitempty"`
	TauBetaY  string `json:"tauBetaY,omitempty"`
	U         string `json:"u,omitempty"`
	V         string `json:"v,omitempty"`
	W         string `json:"w,omitempty"`
	Z         string `json:"z,omitempty"`
	DSq       string `json:"dSq,omitempty"`

	MainIndex    int    `json:"mainIndex,omitempty"`
	WrappedIndex int    `json:"wrappedIndex,omitempty"`
	LowerTarget  string `json:"lowerTarget,omitempty"`
	UpperTarget  string `json:"upperTarget,omitempty"`
}

// RawPoolToken is one pool member inside a RawPool.
type RawPoolToken struct {
	Address   string `json:"address"`
	Index     int    `json:"index"`
	Decimals  uint8  `json:"decimals"`
	Symbol    string `json:"symbol,omitempty"`
	Balance   string `json:"balance"`
	Weight    string `json:"weight,omitempty"`
	PriceRate string `json:"priceRate,omitempty"`
}

// PoolsResponse is what a pool provider returns: the pools plus opaque provider data
// that enrichers can reuse on refresh.
type PoolsResponse struct {
	Pools        []RawPool      `json:"pools"`
	ProviderData map[string]any `json:"provider_data,omitempty"`
}

// SnapshotRecord is one pool of a block-scoped snapshot, as persisted by storage.
type SnapshotRecord struct {
	ChainID     uint64  `json:"chain_id"`
	BlockNumber uint64  `json:"block_number"`
	Pool        RawPool `json:"pool"`
}
