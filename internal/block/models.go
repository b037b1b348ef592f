package block

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Nonce accepts both JSON number and string encodings. Block explorers
// disagree on the wire type, and nonces above 2^31 overflow naive int
// handling, so the raw text is kept as-is.
type Nonce string

func (n *Nonce) UnmarshalJSON(data []byte) error {
	if len(data) == 0 {
		return fmt.Errorf("empty nonce value")
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("invalid nonce string: %w", err)
		}
		*n = Nonce(s)
		return nil
	}

	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		return fmt.Errorf("invalid nonce number: %w", err)
	}
	*n = Nonce(num.String())
	return nil
}

func (n Nonce) String() string {
	return string(n)
}

// Uint64 parses the nonce as a decimal or 0x-prefixed hex value.
func (n Nonce) Uint64() (uint64, error) {
	s := string(n)
	if len(s) > 2 && (s[:2] == "0x" || s[:2] == "0X") {
		return strconv.ParseUint(s[2:], 16, 64)
	}
	return strconv.ParseUint(s, 10, 64)
}

// Data is the subset of block fields the generation pipeline consumes.
type Data struct {
	Height        int64  `json:"height"`
	Hash          string `json:"hash"`
	Nonce         Nonce  `json:"nonce"`
	Timestamp     int64  `json:"timestamp"`
	Confirmations int64  `json:"confirmations"`
}

// apiBlock mirrors the esplora block response.
type apiBlock struct {
	ID        string `json:"id"`
	Height    int64  `json:"height"`
	Timestamp int64  `json:"timestamp"`
	Nonce     Nonce  `json:"nonce"`
}
