package multisig

import (
	"context"

	"github.com/duskvault/duskvault/pkg/vaulterr"
)

// ProposalStore is the narrow slice of internal/store.Store the coordinator
// needs. Declaring it here instead of importing the store package keeps
// multisig free of a dependency on persistence details and avoids a import
// cycle with store, which itself references Group/Proposal.
type ProposalStore interface {
	GetGroup(ctx context.Context, id string) (Group, error)
	GetProposal(ctx context.Context, id string) (Proposal, error)
	CreateProposal(ctx context.Context, p Proposal) error
	UpdateProposal(ctx context.Context, p Proposal) error

	// Tx runs fn against a view of the store held exclusively for the
	// duration of the call, so a read-modify-write sequence cannot
	// interleave with a concurrent one.
	Tx(ctx context.Context, fn func(ProposalStore) error) error
}

// Signer produces the raw signed transaction bytes for an Execute call. The
// coordinator is deliberately ignorant of how the signature is produced
// (single combined key vs. per-approver contribution); that policy lives in
// whatever Signer implementation is wired in.
type Signer interface {
	SignProposal(ctx context.Context, g Group, p Proposal) (raw []byte, err error)
}

// Verifier checks a caller-supplied signature over a proposal's canonical
// payload against a group's owner addresses, returning whichever owner it
// matches.
type Verifier interface {
	VerifyOwner(ctx context.Context, g Group, digest, sig []byte) (owner string, err error)
}

// Coordinator drives proposals through their lifecycle against a backing
// ProposalStore, Signer, Verifier, and Broadcaster.
type Coordinator struct {
	store    ProposalStore
	signer   Signer
	verifier Verifier
	bcast    broadcastFunc
}

type broadcastFunc func(ctx context.Context, chainName string, raw []byte) (string, error)

// New constructs a Coordinator. broadcast may be nil, in which case Execute
// signs a Ready proposal and marks it Executed without broadcasting it.
func New(s ProposalStore, signer Signer, verifier Verifier, broadcast func(ctx context.Context, chainName string, raw []byte) (string, error)) *Coordinator {
	return &Coordinator{store: s, signer: signer, verifier: verifier, bcast: broadcast}
}

// Propose creates a new Pending proposal against group groupID. sig must be
// one of the group's owners' signatures over
// CanonicalPayload(groupID, p.To, p.Amount, p.CallData, p.Nonce); Propose
// fails with KindNotAnOwner if it is not.
func (c *Coordinator) Propose(ctx context.Context, groupID string, p Proposal, sig []byte) (Proposal, error) {
	group, err := c.store.GetGroup(ctx, groupID)
	if err != nil {
		return Proposal{}, err
	}

	digest := CanonicalPayload(group.ID, p.To, p.Amount, p.CallData, p.Nonce)
	owner, err := c.verifier.VerifyOwner(ctx, group, digest, sig)
	if err != nil {
		return Proposal{}, err
	}
	if !group.hasOwner(owner) {
		return Proposal{}, vaulterr.New(vaulterr.KindNotAnOwner, "%s is not an owner of group %s", owner, group.ID)
	}

	p.GroupID = group.ID
	p.Status = Pending
	p.ProposerSig = sig
	if p.Approvals == nil {
		p.Approvals = make(map[string]struct{})
	}

	if err := c.store.CreateProposal(ctx, p); err != nil {
		return Proposal{}, err
	}
	return p, nil
}

// Approve records owner's approval of proposal id. Re-approval by the same
// owner is a no-op. Once the approval count reaches the group's threshold,
// the proposal transitions atomically to Ready.
func (c *Coordinator) Approve(ctx context.Context, id, owner string) (Proposal, error) {
	p, err := c.store.GetProposal(ctx, id)
	if err != nil {
		return Proposal{}, err
	}
	if p.Status.terminal() {
		return Proposal{}, vaulterr.New(vaulterr.KindProposalTerminal, "proposal %s is %s", id, p.Status)
	}

	group, err := c.store.GetGroup(ctx, p.GroupID)
	if err != nil {
		return Proposal{}, err
	}
	if !group.hasOwner(owner) {
		return Proposal{}, vaulterr.New(vaulterr.KindNotAnOwner, "%s is not an owner of group %s", owner, group.ID)
	}

	next := p.clone()
	if _, already := next.Approvals[owner]; !already {
		next.Approvals[owner] = struct{}{}
	}
	if len(next.Approvals) >= group.Threshold {
		next.Status = Ready
	}

	if err := c.store.UpdateProposal(ctx, next); err != nil {
		return Proposal{}, err
	}
	return next, nil
}

// Cancel marks proposal id Cancelled on behalf of owner. Fails with
// NotAnOwner if owner is not a member of the proposal's group, or with
// ProposalTerminal if the proposal has already reached a terminal state.
func (c *Coordinator) Cancel(ctx context.Context, id, owner string) (Proposal, error) {
	p, err := c.store.GetProposal(ctx, id)
	if err != nil {
		return Proposal{}, err
	}
	if p.Status.terminal() {
		return Proposal{}, vaulterr.New(vaulterr.KindProposalTerminal, "proposal %s is %s", id, p.Status)
	}

	group, err := c.store.GetGroup(ctx, p.GroupID)
	if err != nil {
		return Proposal{}, err
	}
	if !group.hasOwner(owner) {
		return Proposal{}, vaulterr.New(vaulterr.KindNotAnOwner, "%s is not an owner of group %s", owner, group.ID)
	}

	next := p.clone()
	next.Status = Cancelled
	if err := c.store.UpdateProposal(ctx, next); err != nil {
		return Proposal{}, err
	}
	return next, nil
}

// Execute signs and broadcasts a Ready proposal. The whole read-sign-
// broadcast-write sequence runs inside a single store.Tx so two concurrent
// Execute calls against the same proposal cannot both observe it Ready and
// both broadcast. With a broadcast function set, it transitions to Executed
// only once the broadcast reports success; a broadcast failure leaves the
// proposal Ready so Execute can be retried.
func (c *Coordinator) Execute(ctx context.Context, id string) (Proposal, error) {
	var next Proposal
	err := c.store.Tx(ctx, func(tx ProposalStore) error {
		p, err := tx.GetProposal(ctx, id)
		if err != nil {
			return err
		}
		if p.Status != Ready {
			return vaulterr.New(vaulterr.KindThresholdNotMet, "proposal %s is %s, not ready", id, p.Status)
		}

		group, err := tx.GetGroup(ctx, p.GroupID)
		if err != nil {
			return err
		}

		raw, err := c.signer.SignProposal(ctx, group, p)
		if err != nil {
			return err
		}

		if c.bcast != nil {
			if _, err := c.bcast(ctx, string(group.Chain), raw); err != nil {
				return vaulterr.Broadcast(err.Error())
			}
		}

		next = p.clone()
		next.Status = Executed
		return tx.UpdateProposal(ctx, next)
	})
	if err != nil {
		return Proposal{}, err
	}
	return next, nil
}
