package pipeline

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/AvaProtocol/gasless-vote/core/chainio/signer"
	"github.com/AvaProtocol/gasless-vote/core/sponsor"
	"github.com/AvaProtocol/gasless-vote/core/vote"
	"github.com/AvaProtocol/gasless-vote/core/wallet"
	"github.com/AvaProtocol/gasless-vote/metrics"
	"github.com/AvaProtocol/gasless-vote/model"
	"github.com/AvaProtocol/gasless-vote/pkg/eip1559"
	"github.com/AvaProtocol/gasless-vote/pkg/erc4337/bundler"
	"github.com/AvaProtocol/gasless-vote/pkg/erc4337/userop"
	"github.com/AvaProtocol/gasless-vote/pkg/logger"
)

const (
	DefaultFallbackDelay  = 1500 * time.Millisecond
	DefaultBundlerTimeout = 30 * time.Second
)

type CostGuard interface {
	CanSponsor(ctx context.Context) (sponsor.Verdict, error)
}

type WalletResolver interface {
	ResolveAddress(ctx context.Context, owner common.Address, chainID *big.Int) (common.Address, error)
	HasDeployedWallet(ctx context.Context, owner common.Address, chainID *big.Int) (bool, error)
}

type Submitter interface {
	SendUserOperation(ctx context.Context, op *userop.UserOperation, fees eip1559.Fees, entrypoint common.Address) (string, error)
}

type EntryPointReader interface {
	GetNonce(ctx context.Context, sender common.Address) (*big.Int, error)
	GetUserOpHash(ctx context.Context, op *userop.UserOperation) ([32]byte, error)
}

// Prompter asks the voter to confirm the one-time smart wallet deployment.
type Prompter interface {
	ConfirmWalletCreation(ctx context.Context, owner, wallet common.Address) (bool, error)
}

type Recorder interface {
	Record(attempt *model.VoteAttempt) error
}

type Metrics interface {
	IncVoteAttempt(path string)
	IncVoteOutcome(path, status string)
	IncFallback()
	IncBundlerError(kind string)
}

type Config struct {
	Entrypoint common.Address
	ChainID    *big.Int

	FallbackDelay  time.Duration
	BundlerTimeout time.Duration

	FeePolicy   eip1559.FeePolicy
	PackGasFees bool

	DeploymentPolicy wallet.DeploymentPolicy
}

// Deps are the collaborators of the orchestrator. Creator, Prompter, Notifier,
// Journal and Metrics are optional.
type Deps struct {
	Eligibility *vote.EligibilityGuard
	Guard       CostGuard
	Resolver    WalletResolver
	Creator     wallet.Creator
	Prompter    Prompter
	Builder     *vote.Builder
	EntryPoint  EntryPointReader
	Nonces      *bundler.NonceManager
	Signer      signer.MessageSigner
	Bundler     Submitter
	Standard    vote.StandardVoter

	Notifier Notifier
	Journal  Recorder
	Metrics  Metrics
	Logger   logger.Logger
}

// Orchestrator runs vote attempts through the gasless or standard path and
// owns the pending state shared with the UI.
type Orchestrator struct {
	config Config
	deps   Deps
	logger logger.Logger
	now    func() time.Time
}

func New(config Config, deps Deps) (*Orchestrator, error) {
	switch {
	case deps.Eligibility == nil:
		return nil, fmt.Errorf("eligibility guard is required")
	case deps.Guard == nil:
		return nil, fmt.Errorf("cost guard is required")
	case deps.Resolver == nil:
		return nil, fmt.Errorf("wallet resolver is required")
	case deps.Builder == nil:
		return nil, fmt.Errorf("user operation builder is required")
	case deps.EntryPoint == nil:
		return nil, fmt.Errorf("entrypoint reader is required")
	case deps.Signer == nil:
		return nil, fmt.Errorf("signer is required")
	case deps.Bundler == nil:
		return nil, fmt.Errorf("bundler client is required")
	case config.ChainID == nil || config.ChainID.Sign() <= 0:
		return nil, fmt.Errorf("chain id is required")
	}

	deps.Logger = logger.EnsureLogger(deps.Logger)
	if deps.Nonces == nil {
		deps.Nonces = bundler.NewNonceManager(deps.Logger)
	}
	if deps.Notifier == nil {
		deps.Notifier = NewLogNotifier(deps.Logger)
	}
	if deps.Metrics == nil {
		deps.Metrics = metrics.NewNoopMetrics()
	}

	if config.FallbackDelay < 0 {
		config.FallbackDelay = 0
	}
	if config.BundlerTimeout <= 0 {
		config.BundlerTimeout = DefaultBundlerTimeout
	}
	if config.FeePolicy == (eip1559.FeePolicy{}) {
		config.FeePolicy = eip1559.DefaultFeePolicy()
	}
	if config.DeploymentPolicy == "" {
		config.DeploymentPolicy = wallet.PolicyStandard
	}

	return &Orchestrator{
		config: config,
		deps:   deps,
		logger: logger.Component(deps.Logger, "orchestrator"),
		now:    time.Now,
	}, nil
}

// Pending reports whether an attempt for intent's (voter, proposal) is in flight.
func (o *Orchestrator) Pending(intent *model.VoteIntent) bool {
	return o.deps.Eligibility.Pending().Has(intent.Key())
}

// CanVote is the UI precondition for enabling the submit action.
func (o *Orchestrator) CanVote(ctx context.Context, intent *model.VoteIntent) bool {
	return o.deps.Eligibility.CanVote(ctx, intent)
}

// CastGaslessVote tries to send the vote as a sponsored user operation and
// falls back to the standard path when sponsorship is not possible.
func (o *Orchestrator) CastGaslessVote(ctx context.Context, intent *model.VoteIntent) (*Result, error) {
	res, intent, release, err := o.admit(ctx, intent)
	if err != nil {
		return res, err
	}
	defer release()

	startedAt := o.now()
	o.run(ctx, intent, res)
	o.finish(ctx, intent, res, startedAt)
	return res, res.Err
}

// CastVote sends the vote directly from the voter's key.
func (o *Orchestrator) CastVote(ctx context.Context, intent *model.VoteIntent) (*Result, error) {
	res, intent, release, err := o.admit(ctx, intent)
	if err != nil {
		return res, err
	}
	defer release()

	startedAt := o.now()
	o.standardPath(ctx, intent, res)
	o.finish(ctx, intent, res, startedAt)
	return res, res.Err
}

// admit validates intent and claims its pending slot. Ineligible intents are
// not journaled or notified; they only disable submission.
func (o *Orchestrator) admit(ctx context.Context, intent *model.VoteIntent) (*Result, *model.VoteIntent, func(), error) {
	res := &Result{}
	res.moveTo(StateIdle)

	if err := intent.Validate(); err != nil {
		res.Err = newError(KindEligibility, StateIdle, fmt.Errorf("%w: %v", vote.ErrNotEligible, err))
		return res, nil, nil, res.Err
	}

	e, release, err := o.deps.Eligibility.Admit(ctx, intent)
	res.Eligibility = e
	if err != nil {
		o.fail(res, newError(KindChainRead, StateIdle, err))
		o.finish(ctx, intent, res, o.now())
		return res, nil, nil, res.Err
	}
	if !e.Eligible {
		o.logger.Debug("vote not eligible", "voter", intent.Voter.Hex(), "proposal", intent.ProposalID, "reason", e.Reason)
		res.Err = newError(KindEligibility, StateIdle, fmt.Errorf("%w: %s", vote.ErrNotEligible, e.Reason))
		return res, nil, nil, res.Err
	}

	res.moveTo(StateEligibilityChecked)

	// NFT strategies vote only with the tokens that have not voted yet
	if len(intent.Tokens) > 0 && len(e.Tokens) > 0 {
		scoped := *intent
		scoped.Tokens = e.Tokens
		intent = &scoped
	}
	return res, intent, release, nil
}

func (o *Orchestrator) run(ctx context.Context, intent *model.VoteIntent, res *Result) {
	created := false

	for {
		verdict, err := o.deps.Guard.CanSponsor(ctx)
		res.Verdict = verdict
		res.moveTo(StateCostChecked)
		if err != nil || !verdict.OK {
			o.logger.Info("sponsorship unavailable, using standard path",
				"voter", intent.Voter.Hex(),
				"proposal", intent.ProposalID,
				"reason", verdict.Reason,
				"error", err,
			)
			o.standardPath(ctx, intent, res)
			return
		}

		sender, err := o.deps.Resolver.ResolveAddress(ctx, intent.Voter, o.config.ChainID)
		if err != nil {
			o.fail(res, newError(KindChainRead, StateCostChecked, fmt.Errorf("failed to resolve smart wallet: %w", err)))
			return
		}
		res.Sender = sender

		deployed, err := o.deps.Resolver.HasDeployedWallet(ctx, intent.Voter, o.config.ChainID)
		if err != nil {
			res.Degraded = true
			o.logger.Warn("smart wallet deployment check failed, applying policy",
				"sender", sender.Hex(),
				"policy", string(o.config.DeploymentPolicy),
				"error", err,
			)
			if o.config.DeploymentPolicy != wallet.PolicyAssumeUndeployed {
				o.standardPath(ctx, intent, res)
				return
			}
			deployed = false
		}

		if deployed {
			o.gaslessPath(ctx, intent, sender, verdict, res)
			return
		}

		if created {
			o.fail(res, newError(KindWalletCreation, StateWalletCreationRequired,
				fmt.Errorf("smart wallet %s has no code after creation", sender.Hex())))
			return
		}

		res.moveTo(StateNoSmartWallet)
		res.moveTo(StateWalletCreationRequired)

		proceed, err := o.createWallet(ctx, intent.Voter, sender, res)
		if err != nil {
			o.fail(res, newError(KindWalletCreation, StateWalletCreationRequired, err))
			return
		}
		if !proceed {
			o.standardPath(ctx, intent, res)
			return
		}

		created = true
		res.moveTo(StateEligibilityChecked)
	}
}

// createWallet returns false when the voter declines or creation is not
// available, in which case the vote goes out on the standard path.
func (o *Orchestrator) createWallet(ctx context.Context, owner, sender common.Address, res *Result) (bool, error) {
	if o.deps.Prompter == nil || o.deps.Creator == nil {
		o.logger.Info("no smart wallet and creation is not available", "owner", owner.Hex(), "sender", sender.Hex())
		return false, nil
	}

	ok, err := o.deps.Prompter.ConfirmWalletCreation(ctx, owner, sender)
	if err != nil {
		return false, err
	}
	if !ok {
		o.logger.Info("smart wallet creation declined", "owner", owner.Hex())
		return false, nil
	}

	created, err := o.deps.Creator.CreateWallet(ctx, owner, o.config.ChainID)
	if err != nil {
		return false, err
	}
	if created != sender {
		return false, fmt.Errorf("factory created %s, expected %s", created.Hex(), sender.Hex())
	}
	return true, nil
}

func (o *Orchestrator) gaslessPath(ctx context.Context, intent *model.VoteIntent, sender common.Address, verdict sponsor.Verdict, res *Result) {
	res.moveTo(StateGaslessPath)
	res.Path = model.PathGasless
	o.deps.Metrics.IncVoteAttempt(string(model.PathGasless))

	if o.deps.Signer.Address() != intent.Voter {
		o.fail(res, newError(KindSigner, StateGaslessPath,
			fmt.Errorf("signer %s is not the voter %s", o.deps.Signer.Address().Hex(), intent.Voter.Hex())))
		return
	}

	nonce, err := o.deps.Nonces.NextNonce(ctx, sender, o.deps.EntryPoint.GetNonce)
	if err != nil {
		o.fail(res, newError(KindChainRead, StateGaslessPath, fmt.Errorf("failed to read nonce: %w", err)))
		return
	}

	op, err := o.deps.Builder.Build(intent, sender, nonce)
	if err != nil {
		o.fail(res, newError(KindBundler, StateGaslessPath, err))
		return
	}

	fees := o.config.FeePolicy.FeesFromGasPrice(verdict.GasPrice)
	if o.config.PackGasFees {
		if err := vote.ApplyFees(op, fees); err != nil {
			o.fail(res, newError(KindBundler, StateGaslessPath, err))
			return
		}
	}

	o.logger.Debug("user operation built", "op", op.String())

	hash, err := o.deps.EntryPoint.GetUserOpHash(ctx, op)
	if err != nil {
		o.fail(res, newError(KindChainRead, StateGaslessPath, fmt.Errorf("failed to get user operation hash: %w", err)))
		return
	}

	sig, err := o.deps.Signer.SignMessage(ctx, hash[:])
	if err != nil {
		o.fail(res, newError(KindSigner, StateGaslessPath, err))
		return
	}
	op.Signature = sig
	res.moveTo(StateSigned)

	submitCtx, cancel := context.WithTimeout(ctx, o.config.BundlerTimeout)
	res.moveTo(StateSubmitted)
	userOpHash, err := o.deps.Bundler.SendUserOperation(submitCtx, op, fees, o.config.Entrypoint)
	cancel()

	if err != nil {
		kind := classifySubmit(err)
		o.deps.Metrics.IncBundlerError(string(kind))

		if bundler.IsInvalidNonceError(err) {
			// drop the cached nonce so the next attempt starts from the chain
			o.deps.Nonces.Reset(sender)
		}
		if kind != KindPaymasterInsufficient {
			o.fail(res, newError(kind, StateSubmitted, err))
			return
		}

		o.logger.Warn("paymaster deposit rejected by bundler, falling back to standard vote",
			"sender", sender.Hex(),
			"proposal", intent.ProposalID,
			"delay", o.config.FallbackDelay.String(),
			"error", err,
		)
		if err := sleep(ctx, o.config.FallbackDelay); err != nil {
			o.fail(res, newError(KindPaymasterInsufficient, StateSubmitted, fmt.Errorf("fallback cancelled: %w", err)))
			return
		}
		// the gasless attempt is terminal here; the standard path reports its own outcome
		o.deps.Metrics.IncVoteOutcome(string(model.PathGasless), string(model.AttemptFailed))
		o.deps.Metrics.IncFallback()
		res.FellBack = true
		o.standardPath(ctx, intent, res)
		return
	}

	o.deps.Nonces.MarkSubmitted(sender, nonce)
	res.UserOpHash = userOpHash
	res.moveTo(StateSucceeded)
	o.logger.Info("gasless vote accepted",
		"voter", intent.Voter.Hex(),
		"sender", sender.Hex(),
		"proposal", intent.ProposalID,
		"nonce", nonce.String(),
		"totalGas", op.TotalGas().String(),
		"userOpHash", userOpHash,
	)
}

// standardPath runs at most once per attempt and never retries.
func (o *Orchestrator) standardPath(ctx context.Context, intent *model.VoteIntent, res *Result) {
	res.moveTo(StateStandardPath)
	res.Path = model.PathStandard
	o.deps.Metrics.IncVoteAttempt(string(model.PathStandard))

	if o.deps.Standard == nil {
		o.fail(res, newError(KindTransaction, StateStandardPath, fmt.Errorf("standard vote path is not configured")))
		return
	}

	txHash, err := o.deps.Standard.CastVote(ctx, intent)
	if err != nil {
		kind := KindTransaction
		if errors.Is(err, signer.ErrSignatureRejected) {
			kind = KindSigner
		}
		o.fail(res, newError(kind, StateStandardPath, err))
		return
	}

	res.TxHash = txHash
	res.moveTo(StateSigned)
	res.moveTo(StateSubmitted)
	res.moveTo(StateSucceeded)
	o.logger.Info("standard vote sent", "voter", intent.Voter.Hex(), "proposal", intent.ProposalID, "tx", txHash.Hex(), "fellBack", res.FellBack)
}

func (o *Orchestrator) fail(res *Result, err *Error) {
	res.Err = err
	res.moveTo(StateFailed)
	o.logger.Error("vote attempt failed", "kind", string(err.Kind), "stage", string(err.Stage), "error", err.Err)
}

// finish emits the one notification and journal record of a terminal attempt.
func (o *Orchestrator) finish(ctx context.Context, intent *model.VoteIntent, res *Result, startedAt time.Time) {
	status := model.AttemptSucceeded
	if !res.Succeeded() {
		status = model.AttemptFailed
	}
	// no path was chosen when admission failed on a chain read
	if res.Path != "" {
		o.deps.Metrics.IncVoteOutcome(string(res.Path), string(status))
	}

	if res.Succeeded() {
		o.deps.Notifier.Notify(ctx, successNotification(intent, res))
	} else {
		o.deps.Notifier.Notify(ctx, failureNotification(intent, res))
	}

	if o.deps.Journal == nil {
		return
	}

	attempt := model.NewVoteAttempt(intent, startedAt)
	attempt.Path = res.Path
	attempt.Status = status
	attempt.UserOpHash = res.UserOpHash
	attempt.FellBack = res.FellBack
	attempt.Degraded = res.Degraded
	attempt.CompletedAt = o.now().UnixMilli()
	if res.Sender != (common.Address{}) {
		sender := res.Sender
		attempt.Sender = &sender
	}
	if res.TxHash != (common.Hash{}) {
		attempt.TxHash = res.TxHash.Hex()
	}
	if res.Err != nil {
		attempt.Error = res.Err.Error()
		attempt.ErrorKind = string(Classify(res.Err))
	}

	if err := o.deps.Journal.Record(attempt); err != nil {
		o.logger.Warn("failed to journal vote attempt", "id", attempt.ID, "error", err)
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
