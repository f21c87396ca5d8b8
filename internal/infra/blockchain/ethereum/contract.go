package ethereum

import (
	"fmt"
	"math/big"
	"time"

	"github.com/herowatch/herowatch/internal/chainsub"
	"github.com/herowatch/herowatch/internal/deathwatch"
	"github.com/herowatch/herowatch/internal/revealwatch"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Contract event shapes:
//
//	event Staked(address indexed owner, uint256 indexed tokenId, uint256 timestamp)
//	event Death(uint256 indexed id)
var (
	stakedTopic = crypto.Keccak256Hash([]byte("Staked(address,uint256,uint256)"))
	deathTopic  = crypto.Keccak256Hash([]byte("Death(uint256)"))
)

// Decoder turns raw contract logs into typed domain events and builds the
// matching subscription filters.
type Decoder struct {
	contract string
}

// NewDecoder builds a Decoder for the staking contract at address.
func NewDecoder(contract string) *Decoder {
	return &Decoder{contract: contract}
}

// StakedFilter selects Staked logs from the contract.
func (d *Decoder) StakedFilter() chainsub.LogFilter {
	return chainsub.LogFilter{
		Address:    d.contract,
		EventTopic: stakedTopic.Hex(),
	}
}

// DeathFilter selects Death logs from the contract.
func (d *Decoder) DeathFilter() chainsub.LogFilter {
	return chainsub.LogFilter{
		Address:    d.contract,
		EventTopic: deathTopic.Hex(),
	}
}

// DecodeStaked extracts (owner, tokenId, timestamp) from a Staked log.
func (d *Decoder) DecodeStaked(l chainsub.Log) (revealwatch.StakedEvent, error) {
	if len(l.Topics) < 3 {
		return revealwatch.StakedEvent{}, fmt.Errorf("staked log has %d topics, want 3", len(l.Topics))
	}
	if l.Topics[0] != stakedTopic.Hex() {
		return revealwatch.StakedEvent{}, fmt.Errorf("unexpected event topic %s", l.Topics[0])
	}

	event := revealwatch.StakedEvent{
		Owner:   common.HexToAddress(l.Topics[1]).Hex(),
		TokenID: new(big.Int).SetBytes(common.HexToHash(l.Topics[2]).Bytes()).Uint64(),
	}

	if len(l.Data) >= 32 {
		ts := new(big.Int).SetBytes(l.Data[:32])
		if ts.IsInt64() {
			event.Timestamp = time.Unix(ts.Int64(), 0).UTC()
		}
	}

	return event, nil
}

// DecodeDeath extracts the token ID from a Death log.
func (d *Decoder) DecodeDeath(l chainsub.Log) (deathwatch.DeathEvent, error) {
	if len(l.Topics) < 2 {
		return deathwatch.DeathEvent{}, fmt.Errorf("death log has %d topics, want 2", len(l.Topics))
	}
	if l.Topics[0] != deathTopic.Hex() {
		return deathwatch.DeathEvent{}, fmt.Errorf("unexpected event topic %s", l.Topics[0])
	}

	return deathwatch.DeathEvent{
		TokenID: new(big.Int).SetBytes(common.HexToHash(l.Topics[1]).Bytes()).Uint64(),
	}, nil
}
