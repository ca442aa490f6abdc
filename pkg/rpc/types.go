package rpc

import "time"

// BlockHeader is the slice of a CometBFT block header the estimator needs.
type BlockHeader struct {
	Height int64
	Time   time.Time
}

type blockResponse struct {
	Result struct {
		Block struct {
			Header struct {
				ChainID string    `json:"chain_id"`
				Height  string    `json:"height"`
				Time    time.Time `json:"time"`
			} `json:"header"`
		} `json:"block"`
	} `json:"result"`
}

type statusResponse struct {
	Result struct {
		NodeInfo struct {
			Network string `json:"network"`
		} `json:"node_info"`
	} `json:"result"`
}
