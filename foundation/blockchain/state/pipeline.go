package state

import (
	"context"
	"fmt"

	"github.com/ardanlabs/utxochain/foundation/blockchain/database"
	"github.com/ardanlabs/utxochain/foundation/blockchain/utxo"
	"github.com/looplab/fsm"
)

// Set of states a candidate block moves through on its way into the chain.
// Rejected is reachable from every state before Committed.
const (
	StatePending              = "pending"
	StateLinked               = "linked"
	StateProofVerified        = "proof_verified"
	StateMerkleVerified       = "merkle_verified"
	StateTimestampVerified    = "timestamp_verified"
	StateTransactionsVerified = "transactions_verified"
	StateCommitted            = "committed"
	StateRejected             = "rejected"
)

// Set of events that drive the pipeline forward.
const (
	eventLink         = "link"
	eventProve        = "prove"
	eventMerkle       = "merkle"
	eventTimestamp    = "timestamp"
	eventTransactions = "transactions"
	eventCommit       = "commit"
	eventReject       = "reject"
)

// stage is one check the block must pass to move to the next state.
type stage struct {
	event string
	check func() error
}

// pipeline validates a single candidate block against the tip and the
// unspent outputs. A pipeline is used once.
type pipeline struct {
	fsm   *fsm.FSM
	block database.Block
	tip   *database.Block
	utxos utxo.View
	err   error
}

// newPipeline constructs the state machine for the block. A nil tip means
// the block is offered as the genesis block.
func newPipeline(block database.Block, tip *database.Block, utxos utxo.View, ev EventHandler) *pipeline {
	p := pipeline{
		block: block,
		tip:   tip,
		utxos: utxos,
	}

	hash := block.Hash()

	p.fsm = fsm.NewFSM(
		StatePending,
		fsm.Events{
			{Name: eventLink, Src: []string{StatePending}, Dst: StateLinked},
			{Name: eventProve, Src: []string{StateLinked}, Dst: StateProofVerified},
			{Name: eventMerkle, Src: []string{StateProofVerified}, Dst: StateMerkleVerified},
			{Name: eventTimestamp, Src: []string{StateMerkleVerified}, Dst: StateTimestampVerified},
			{Name: eventTransactions, Src: []string{StateTimestampVerified}, Dst: StateTransactionsVerified},
			{Name: eventCommit, Src: []string{StateTransactionsVerified}, Dst: StateCommitted},
			{
				Name: eventReject,
				Src: []string{
					StatePending,
					StateLinked,
					StateProofVerified,
					StateMerkleVerified,
					StateTimestampVerified,
					StateTransactionsVerified,
				},
				Dst: StateRejected,
			},
		},
		fsm.Callbacks{
			"enter_state": func(_ context.Context, e *fsm.Event) {
				ev("state: pipeline: blk[%s]: %s: %s -> %s", hash, e.Event, e.Src, e.Dst)
			},
			"enter_" + StateRejected: func(_ context.Context, e *fsm.Event) {
				ev("state: pipeline: blk[%s]: REJECTED: %s", hash, p.err)
			},
		},
	)

	return &p
}

// stages returns the checks in the order they must be applied.
func (p *pipeline) stages() []stage {
	return []stage{
		{event: eventLink, check: func() error { return p.block.ValidateLinkage(p.tip) }},
		{event: eventProve, check: p.block.ValidateProof},
		{event: eventMerkle, check: p.block.ValidateMerkleRoot},
		{event: eventTimestamp, check: func() error { return p.block.ValidateTimestamp(p.tip) }},
		{event: eventTransactions, check: p.validateTransactions},
	}
}

// validateTransactions checks the transactions against the unspent outputs.
// Transactions in the genesis block are allocations.
func (p *pipeline) validateTransactions() error {
	if p.tip == nil {
		return utxo.VerifyGenesis(p.block.Trans, p.utxos)
	}

	return utxo.VerifyTransactions(p.block.Trans, p.utxos)
}

// run moves the block through every stage and calls commit once all of
// them pass. Nothing is committed when a stage fails.
func (p *pipeline) run(ctx context.Context, commit func() error) error {
	for _, stg := range p.stages() {
		if err := stg.check(); err != nil {
			return p.reject(ctx, err)
		}

		if err := p.fsm.Event(ctx, stg.event); err != nil {
			return fmt.Errorf("pipeline %s: %w", stg.event, err)
		}
	}

	if err := commit(); err != nil {
		return p.reject(ctx, fmt.Errorf("commit: %w", err))
	}

	if err := p.fsm.Event(ctx, eventCommit); err != nil {
		return fmt.Errorf("pipeline %s: %w", eventCommit, err)
	}

	return nil
}

// reject moves the pipeline to the rejected state and returns the reason.
func (p *pipeline) reject(ctx context.Context, err error) error {
	p.err = err

	if fsmErr := p.fsm.Event(ctx, eventReject); fsmErr != nil {
		return fmt.Errorf("%w: pipeline %s: %s", err, eventReject, fsmErr)
	}

	return err
}

// current returns the state the block is in.
func (p *pipeline) current() string {
	return p.fsm.Current()
}
