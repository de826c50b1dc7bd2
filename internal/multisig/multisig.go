// Package multisig implements the threshold-approval proposal state machine
// for multi-owner spending groups: Pending -> Ready -> Executed, with a
// Cancelled terminal reachable from either open state.
package multisig

import (
	"bytes"
	"encoding/binary"
	"math/big"
	"time"

	"github.com/duskvault/duskvault/internal/chainkit"
)

// Status is the lifecycle state of a Proposal.
type Status string

const (
	Pending   Status = "pending"
	Ready     Status = "ready"
	Executed  Status = "executed"
	Cancelled Status = "cancelled"
)

// terminal reports whether a status admits no further transitions.
func (s Status) terminal() bool {
	return s == Executed || s == Cancelled
}

// Group is a multi-owner spending policy: any transaction from the group
// requires approvals from at least Threshold of Owners.
type Group struct {
	ID           string
	Chain        chainkit.ID
	Threshold    int
	Owners       []string
	GroupAddress string
}

// hasOwner reports whether addr (case-sensitive, as chain adapters already
// normalize addresses to their canonical casing) is a member of the group.
func (g Group) hasOwner(addr string) bool {
	for _, o := range g.Owners {
		if o == addr {
			return true
		}
	}
	return false
}

// Proposal is a pending spend from a Group awaiting approvals.
type Proposal struct {
	ID        string
	GroupID   string
	To        string
	Amount    *big.Int
	CallData  []byte
	Approvals map[string]struct{}
	Status    Status
	Nonce     uint64
	CreatedAt time.Time

	// ProposerSig is the owner signature over CanonicalPayload that
	// authorized recording this proposal, kept for audit purposes.
	ProposerSig []byte
}

// CanonicalPayload deterministically encodes a proposal's spending intent
// for signing and verification: length-prefixed group id, recipient,
// amount, and call data, followed by an 8-byte big-endian nonce. Two
// proposals with the same fields hash to the same payload regardless of
// Go map/slice iteration order, since none of these fields are maps.
func CanonicalPayload(groupID, to string, amount *big.Int, data []byte, nonce uint64) []byte {
	var buf bytes.Buffer
	writeLenPrefixed(&buf, []byte(groupID))
	writeLenPrefixed(&buf, []byte(to))
	amt := []byte{}
	if amount != nil {
		amt = amount.Bytes()
	}
	writeLenPrefixed(&buf, amt)
	writeLenPrefixed(&buf, data)

	var nonceBytes [8]byte
	binary.BigEndian.PutUint64(nonceBytes[:], nonce)
	buf.Write(nonceBytes[:])

	return buf.Bytes()
}

func writeLenPrefixed(buf *bytes.Buffer, b []byte) {
	var lenBytes [4]byte
	binary.BigEndian.PutUint32(lenBytes[:], uint32(len(b)))
	buf.Write(lenBytes[:])
	buf.Write(b)
}

// NewProposal creates a Pending proposal with an empty approval set.
func NewProposal(id, groupID, to string, amount *big.Int, callData []byte, nonce uint64) Proposal {
	return Proposal{
		ID:        id,
		GroupID:   groupID,
		To:        to,
		Amount:    amount,
		CallData:  callData,
		Approvals: make(map[string]struct{}),
		Status:    Pending,
		Nonce:     nonce,
		CreatedAt: time.Now(),
	}
}

// clone returns a deep-enough copy for safe mutation by the caller without
// aliasing the receiver's Approvals map.
func (p Proposal) clone() Proposal {
	cp := p
	cp.Approvals = make(map[string]struct{}, len(p.Approvals))
	for k := range p.Approvals {
		cp.Approvals[k] = struct{}{}
	}
	cp.ProposerSig = append([]byte(nil), p.ProposerSig...)
	return cp
}
