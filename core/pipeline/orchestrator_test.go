package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"math/big"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AvaProtocol/gasless-vote/core/chainio/aa"
	"github.com/AvaProtocol/gasless-vote/core/chainio/signer"
	"github.com/AvaProtocol/gasless-vote/core/sponsor"
	"github.com/AvaProtocol/gasless-vote/core/testutil"
	"github.com/AvaProtocol/gasless-vote/core/vote"
	"github.com/AvaProtocol/gasless-vote/core/wallet"
	"github.com/AvaProtocol/gasless-vote/model"
	"github.com/AvaProtocol/gasless-vote/pkg/eip1559"
	"github.com/AvaProtocol/gasless-vote/pkg/erc4337/bundler"
	"github.com/AvaProtocol/gasless-vote/pkg/erc4337/userop"
	"github.com/AvaProtocol/gasless-vote/storage"
)

var testSender = common.HexToAddress("0x7c3a76086588230c7B3f4839A4c1F5BBafcd57C6")

type fakeProposals struct {
	block uint64
	err   error
}

func (f *fakeProposals) Proposal(ctx context.Context, id uint32) (*model.Proposal, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &model.Proposal{ID: id, State: model.ProposalActive, StartBlock: 100, EndBlock: 200}, nil
}

func (f *fakeProposals) HasVoted(ctx context.Context, intent *model.VoteIntent) (bool, []model.NFTVote, error) {
	return false, nil, nil
}

func (f *fakeProposals) BlockNumber(ctx context.Context) (uint64, error) {
	return f.block, nil
}

type fakeGuard struct {
	verdict sponsor.Verdict
	err     error
	calls   atomic.Int32
}

func (f *fakeGuard) CanSponsor(ctx context.Context) (sponsor.Verdict, error) {
	f.calls.Add(1)
	return f.verdict, f.err
}

func okGuard() *fakeGuard {
	return &fakeGuard{verdict: sponsor.Verdict{OK: true, GasPrice: big.NewInt(1_000_000_000)}}
}

type fakeResolver struct {
	mu        sync.Mutex
	deployed  bool
	deployErr error
	checks    int
}

func (f *fakeResolver) ResolveAddress(ctx context.Context, owner common.Address, chainID *big.Int) (common.Address, error) {
	return testSender, nil
}

func (f *fakeResolver) HasDeployedWallet(ctx context.Context, owner common.Address, chainID *big.Int) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.checks++
	return f.deployed, f.deployErr
}

func (f *fakeResolver) setDeployed() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deployed = true
}

type fakeEntryPoint struct {
	nonce *big.Int
}

func (f *fakeEntryPoint) GetNonce(ctx context.Context, sender common.Address) (*big.Int, error) {
	return f.nonce, nil
}

func (f *fakeEntryPoint) GetUserOpHash(ctx context.Context, op *userop.UserOperation) ([32]byte, error) {
	return [32]byte{0xab}, nil
}

type fakeSigner struct {
	err   error
	calls atomic.Int32
}

func (f *fakeSigner) Address() common.Address {
	return testutil.TestVoter
}

func (f *fakeSigner) SignMessage(ctx context.Context, data []byte) ([]byte, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return make([]byte, 65), nil
}

type fakeBundler struct {
	err   error
	block chan struct{}
	calls atomic.Int32
	last  *userop.UserOperation
}

func (f *fakeBundler) SendUserOperation(ctx context.Context, op *userop.UserOperation, fees eip1559.Fees, entrypoint common.Address) (string, error) {
	f.calls.Add(1)
	f.last = op
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if f.err != nil {
		return "", f.err
	}
	return "0xuserop", nil
}

type fakeStandard struct {
	err   error
	calls atomic.Int32
}

func (f *fakeStandard) CastVote(ctx context.Context, intent *model.VoteIntent) (common.Hash, error) {
	f.calls.Add(1)
	if f.err != nil {
		return common.Hash{}, f.err
	}
	return common.HexToHash("0x01"), nil
}

type fakePrompter struct {
	confirm bool
	calls   atomic.Int32
}

func (f *fakePrompter) ConfirmWalletCreation(ctx context.Context, owner, wallet common.Address) (bool, error) {
	f.calls.Add(1)
	return f.confirm, nil
}

type fakeCreator struct {
	resolver *fakeResolver
	calls    atomic.Int32
}

func (f *fakeCreator) CreateWallet(ctx context.Context, owner common.Address, chainID *big.Int) (common.Address, error) {
	f.calls.Add(1)
	f.resolver.setDeployed()
	return testSender, nil
}

type notifications struct {
	mu   sync.Mutex
	list []Notification
}

func (n *notifications) Notify(ctx context.Context, msg Notification) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.list = append(n.list, msg)
}

func (n *notifications) all() []Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]Notification(nil), n.list...)
}

type fakeMetrics struct {
	mu       sync.Mutex
	outcomes []string
}

func (f *fakeMetrics) IncVoteAttempt(path string)  {}
func (f *fakeMetrics) IncFallback()                {}
func (f *fakeMetrics) IncBundlerError(kind string) {}

func (f *fakeMetrics) IncVoteOutcome(path, status string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.outcomes = append(f.outcomes, path+"/"+status)
}

func (f *fakeMetrics) all() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.outcomes...)
}

type harness struct {
	guard      *fakeGuard
	resolver   *fakeResolver
	signer     *fakeSigner
	bundler    *fakeBundler
	standard   *fakeStandard
	prompter   *fakePrompter
	creator    *fakeCreator
	notes      *notifications
	metrics    *fakeMetrics
	nonces     *bundler.NonceManager
	journal    *storage.Journal
	config     Config
	submitter  Submitter
	costGuard  CostGuard
	eligReader vote.ProposalReader
}

func newHarness() *harness {
	resolver := &fakeResolver{deployed: true}
	return &harness{
		guard:      okGuard(),
		resolver:   resolver,
		signer:     &fakeSigner{},
		bundler:    &fakeBundler{},
		standard:   &fakeStandard{},
		prompter:   &fakePrompter{},
		creator:    &fakeCreator{resolver: resolver},
		notes:      &notifications{},
		metrics:    &fakeMetrics{},
		nonces:     bundler.NewNonceManager(nil),
		eligReader: &fakeProposals{block: 150},
		config: Config{
			Entrypoint:    testutil.TestEntrypoint,
			ChainID:       big.NewInt(11155111),
			FallbackDelay: time.Millisecond,
		},
	}
}

func (h *harness) build(t *testing.T) *Orchestrator {
	t.Helper()

	db := testutil.TestMustDB()
	t.Cleanup(func() {
		storage.Destroy(db.(*storage.BadgerStorage))
	})
	h.journal = storage.NewJournal(db, nil)

	var submitter Submitter = h.bundler
	if h.submitter != nil {
		submitter = h.submitter
	}
	var guard CostGuard = h.guard
	if h.costGuard != nil {
		guard = h.costGuard
	}

	o, err := New(h.config, Deps{
		Eligibility: vote.NewEligibilityGuard(h.eligReader, nil, nil),
		Guard:       guard,
		Resolver:    h.resolver,
		Creator:     h.creator,
		Prompter:    h.prompter,
		Builder:     vote.NewBuilder(vote.Strategy{Kind: vote.FixedWeight, Address: testutil.TestStrategy}, testutil.TestPaymaster, sponsor.DefaultGasLimits()),
		EntryPoint:  &fakeEntryPoint{nonce: big.NewInt(7)},
		Nonces:      h.nonces,
		Signer:      h.signer,
		Bundler:     submitter,
		Standard:    h.standard,
		Notifier:    h.notes,
		Journal:     h.journal,
		Metrics:     h.metrics,
	})
	require.NoError(t, err)
	return o
}

func testIntent() *model.VoteIntent {
	return &model.VoteIntent{ProposalID: 42, Choice: model.VoteYes, Voter: testutil.TestVoter}
}

func TestCastGaslessVote_Succeeds(t *testing.T) {
	h := newHarness()
	o := h.build(t)

	res, err := o.CastGaslessVote(context.Background(), testIntent())
	require.NoError(t, err)

	assert.Equal(t, StateSucceeded, res.State)
	assert.Equal(t, model.PathGasless, res.Path)
	assert.Equal(t, testSender, res.Sender)
	assert.Equal(t, "0xuserop", res.UserOpHash)
	assert.False(t, res.FellBack)
	assert.Equal(t, []State{
		StateIdle, StateEligibilityChecked, StateCostChecked, StateGaslessPath,
		StateSigned, StateSubmitted, StateSucceeded,
	}, res.Transitions)

	assert.Equal(t, int32(1), h.bundler.calls.Load())
	assert.Equal(t, int32(0), h.standard.calls.Load())
	assert.Equal(t, [32]byte{}, h.bundler.last.GasFees, "gasFees stays zero by default")
	assert.Len(t, h.bundler.last.Signature, 65)

	notes := h.notes.all()
	require.Len(t, notes, 1)
	assert.True(t, notes[0].Success)

	attempts, err := h.journal.List(common.Address{}, 0)
	require.NoError(t, err)
	require.Len(t, attempts, 1)
	assert.Equal(t, model.AttemptSucceeded, attempts[0].Status)
	assert.Equal(t, "0xuserop", attempts[0].UserOpHash)
	assert.False(t, o.Pending(testIntent()), "pending slot is released once terminal")
}

func TestCastGaslessVote_PackGasFees(t *testing.T) {
	h := newHarness()
	h.config.PackGasFees = true
	o := h.build(t)

	_, err := o.CastGaslessVote(context.Background(), testIntent())
	require.NoError(t, err)

	priority, maxFee := userop.UnpackGasFees(h.bundler.last.GasFees)
	assert.Equal(t, big.NewInt(150_000_000), priority)
	assert.Equal(t, big.NewInt(1_200_000_000), maxFee)
}

func TestCastGaslessVote_FallbackExactlyOnce(t *testing.T) {
	depositErr := &bundler.RPCError{Code: -32500, Message: "AA31 paymaster deposit too low"}

	t.Run("fallback succeeds", func(t *testing.T) {
		h := newHarness()
		h.bundler.err = depositErr
		o := h.build(t)

		res, err := o.CastGaslessVote(context.Background(), testIntent())
		require.NoError(t, err)

		assert.Equal(t, int32(1), h.bundler.calls.Load(), "gasless path is not retried")
		assert.Equal(t, int32(1), h.standard.calls.Load())
		assert.True(t, res.FellBack)
		assert.Equal(t, model.PathStandard, res.Path)
		assert.Equal(t, StateSucceeded, res.State)
		assert.Contains(t, res.Transitions, StateSubmitted)

		notes := h.notes.all()
		require.Len(t, notes, 1, "a successful fallback shows only the success message")
		assert.True(t, notes[0].Success)
	})

	t.Run("fallback also fails", func(t *testing.T) {
		h := newHarness()
		h.bundler.err = depositErr
		h.standard.err = errors.New("insufficient funds for gas")
		o := h.build(t)

		res, err := o.CastGaslessVote(context.Background(), testIntent())
		require.Error(t, err)

		assert.Equal(t, int32(1), h.bundler.calls.Load())
		assert.Equal(t, int32(1), h.standard.calls.Load(), "no further automatic retry")
		assert.Equal(t, StateFailed, res.State)
		assert.Equal(t, KindTransaction, Classify(err))

		notes := h.notes.all()
		require.Len(t, notes, 1)
		assert.False(t, notes[0].Success)
	})
}

func TestCastGaslessVote_FallbackThroughBundlerClient(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		var req map[string]interface{}
		_ = json.NewDecoder(r.Body).Decode(&req)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"jsonrpc": "2.0",
			"id":      req["id"],
			"error":   map[string]interface{}{"code": -32500, "message": "AA31 paymaster deposit too low"},
		})
	}))
	defer server.Close()

	client, err := bundler.NewBundlerClient(server.URL, 2*time.Second, nil)
	require.NoError(t, err)
	defer client.Close()

	h := newHarness()
	h.submitter = client
	o := h.build(t)

	res, err := o.CastGaslessVote(context.Background(), testIntent())
	require.NoError(t, err)
	assert.True(t, res.FellBack)
	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, int32(1), h.standard.calls.Load())
}

func TestCastGaslessVote_OtherBundlerErrorIsTerminal(t *testing.T) {
	h := newHarness()
	h.bundler.err = &bundler.RPCError{Code: -32602, Message: "AA23 reverted: invalid signature"}
	o := h.build(t)

	res, err := o.CastGaslessVote(context.Background(), testIntent())
	require.Error(t, err)

	assert.Equal(t, KindBundler, Classify(err))
	assert.Equal(t, StateFailed, res.State)
	assert.Equal(t, int32(0), h.standard.calls.Load())

	notes := h.notes.all()
	require.Len(t, notes, 1)
	assert.Contains(t, notes[0].Message, "AA23", "bundler errors are surfaced verbatim")
}

func TestCastGaslessVote_InvalidNonceResetsCachedNonce(t *testing.T) {
	h := newHarness()
	o := h.build(t)
	ctx := context.Background()
	onChain := func(ctx context.Context, sender common.Address) (*big.Int, error) {
		return big.NewInt(7), nil
	}

	_, err := o.CastGaslessVote(ctx, testIntent())
	require.NoError(t, err)

	nonce, err := h.nonces.NextNonce(ctx, testSender, onChain)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(8), nonce, "accepted nonce is not handed out again")
	assert.Equal(t, []string{"gasless/succeeded"}, h.metrics.all())

	h.bundler.err = &bundler.RPCError{Code: -32602, Message: "AA25 invalid account nonce"}
	_, err = o.CastGaslessVote(ctx, testIntent())
	require.Error(t, err)
	assert.Equal(t, KindBundler, Classify(err))
	assert.Equal(t, int32(0), h.standard.calls.Load())

	nonce, err = h.nonces.NextNonce(ctx, testSender, onChain)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(7), nonce, "rejected nonce falls back to the chain value")
}

func TestCastGaslessVote_SignerRejects(t *testing.T) {
	h := newHarness()
	h.signer.err = signer.ErrSignatureRejected
	o := h.build(t)

	res, err := o.CastGaslessVote(context.Background(), testIntent())
	require.Error(t, err)

	assert.Equal(t, StateFailed, res.State)
	assert.Equal(t, KindSigner, Classify(err))
	assert.ErrorIs(t, err, signer.ErrSignatureRejected)
	assert.Equal(t, int32(0), h.bundler.calls.Load())
	assert.Equal(t, int32(0), h.standard.calls.Load())
	assert.NotContains(t, res.Transitions, StateSigned)
}

func TestCastGaslessVote_NoDoubleSubmission(t *testing.T) {
	h := newHarness()
	h.bundler.block = make(chan struct{})
	o := h.build(t)

	done := make(chan error, 1)
	go func() {
		_, err := o.CastGaslessVote(context.Background(), testIntent())
		done <- err
	}()

	require.Eventually(t, func() bool { return h.bundler.calls.Load() == 1 }, time.Second, time.Millisecond)
	assert.True(t, o.Pending(testIntent()))

	res, err := o.CastGaslessVote(context.Background(), testIntent())
	require.Error(t, err)
	assert.Equal(t, KindEligibility, Classify(err))
	assert.Equal(t, vote.ReasonPending, res.Eligibility.Reason)
	assert.False(t, o.CanVote(context.Background(), testIntent()))

	close(h.bundler.block)
	require.NoError(t, <-done)
	assert.Equal(t, int32(1), h.bundler.calls.Load())
	assert.False(t, o.Pending(testIntent()))
}

func TestCastGaslessVote_Timeout(t *testing.T) {
	h := newHarness()
	h.bundler.block = make(chan struct{})
	h.config.BundlerTimeout = 20 * time.Millisecond
	o := h.build(t)

	res, err := o.CastGaslessVote(context.Background(), testIntent())
	require.Error(t, err)

	assert.Equal(t, KindTimeout, Classify(err))
	assert.Equal(t, StateFailed, res.State)
	assert.Equal(t, int32(0), h.standard.calls.Load())

	attempts, err := h.journal.List(testutil.TestVoter, 0)
	require.NoError(t, err)
	require.Len(t, attempts, 1)
	assert.Equal(t, string(KindTimeout), attempts[0].ErrorKind)
}

func TestCastGaslessVote_DepositScenario(t *testing.T) {
	gasPrice := big.NewInt(2_115_384_615_385)

	newGuard := func(t *testing.T, deposit string) *sponsor.Guard {
		chain := testutil.NewFakeChain()
		chain.GasPrice = gasPrice
		parsed, err := aa.EntryPointMetaData.GetAbi()
		require.NoError(t, err)
		amount, err := sponsor.ParseEther(deposit)
		require.NoError(t, err)
		chain.Returns(testutil.TestEntrypoint, parsed, "balanceOf", amount)
		return sponsor.NewGuard(chain, sponsor.GuardConfig{
			Entrypoint: testutil.TestEntrypoint,
			Paymaster:  testutil.TestPaymaster,
		}, nil)
	}

	t.Run("deposit 1 ETH is sponsored", func(t *testing.T) {
		h := newHarness()
		h.costGuard = newGuard(t, "1")
		o := h.build(t)

		res, err := o.CastGaslessVote(context.Background(), testIntent())
		require.NoError(t, err)
		assert.Equal(t, model.PathGasless, res.Path)
		assert.True(t, res.Verdict.OK)
		assert.Equal(t, int32(1), h.bundler.calls.Load())
	})

	t.Run("deposit 0.9 ETH falls to standard without a bundler call", func(t *testing.T) {
		h := newHarness()
		h.costGuard = newGuard(t, "0.9")
		o := h.build(t)

		res, err := o.CastGaslessVote(context.Background(), testIntent())
		require.NoError(t, err)
		assert.Equal(t, model.PathStandard, res.Path)
		assert.False(t, res.Verdict.OK)
		assert.False(t, res.FellBack)
		assert.Equal(t, int32(0), h.bundler.calls.Load())
		assert.Equal(t, int32(1), h.standard.calls.Load())
	})
}

func TestCastGaslessVote_GuardErrorFailsClosed(t *testing.T) {
	h := newHarness()
	h.guard = &fakeGuard{err: errors.New("rpc down")}
	o := h.build(t)

	res, err := o.CastGaslessVote(context.Background(), testIntent())
	require.NoError(t, err)
	assert.Equal(t, model.PathStandard, res.Path)
	assert.Equal(t, int32(0), h.bundler.calls.Load())
}

func TestCastGaslessVote_WalletCreation(t *testing.T) {
	t.Run("confirmed", func(t *testing.T) {
		h := newHarness()
		h.resolver.deployed = false
		h.prompter.confirm = true
		o := h.build(t)

		res, err := o.CastGaslessVote(context.Background(), testIntent())
		require.NoError(t, err)

		assert.Equal(t, int32(1), h.prompter.calls.Load())
		assert.Equal(t, int32(1), h.creator.calls.Load())
		assert.Equal(t, model.PathGasless, res.Path)
		assert.Equal(t, int32(2), h.guard.calls.Load(), "cost is checked again after creation")
		assert.Equal(t, []State{
			StateIdle, StateEligibilityChecked, StateCostChecked,
			StateNoSmartWallet, StateWalletCreationRequired,
			StateEligibilityChecked, StateCostChecked, StateGaslessPath,
			StateSigned, StateSubmitted, StateSucceeded,
		}, res.Transitions)
	})

	t.Run("declined", func(t *testing.T) {
		h := newHarness()
		h.resolver.deployed = false
		h.prompter.confirm = false
		o := h.build(t)

		res, err := o.CastGaslessVote(context.Background(), testIntent())
		require.NoError(t, err)

		assert.Equal(t, int32(0), h.creator.calls.Load())
		assert.Equal(t, model.PathStandard, res.Path)
		assert.Equal(t, int32(0), h.bundler.calls.Load())
		assert.Equal(t, int32(1), h.standard.calls.Load())
	})
}

func TestCastGaslessVote_DeploymentCheckDegraded(t *testing.T) {
	t.Run("standard policy", func(t *testing.T) {
		h := newHarness()
		h.resolver.deployErr = errors.New("eth_getCode failed")
		o := h.build(t)

		res, err := o.CastGaslessVote(context.Background(), testIntent())
		require.NoError(t, err)
		assert.True(t, res.Degraded)
		assert.Equal(t, model.PathStandard, res.Path)
		assert.Equal(t, int32(0), h.prompter.calls.Load())
	})

	t.Run("assume undeployed policy", func(t *testing.T) {
		h := newHarness()
		h.resolver.deployErr = errors.New("eth_getCode failed")
		h.config.DeploymentPolicy = wallet.PolicyAssumeUndeployed
		o := h.build(t)

		res, err := o.CastGaslessVote(context.Background(), testIntent())
		require.NoError(t, err)
		assert.True(t, res.Degraded)
		assert.Equal(t, int32(1), h.prompter.calls.Load())
		assert.Equal(t, model.PathStandard, res.Path, "declined prompt goes to the standard path")
	})
}

func TestCastGaslessVote_NotEligible(t *testing.T) {
	h := newHarness()
	h.eligReader = &fakeProposals{block: 100}
	o := h.build(t)

	res, err := o.CastGaslessVote(context.Background(), testIntent())
	require.Error(t, err)
	assert.ErrorIs(t, err, vote.ErrNotEligible)
	assert.Equal(t, vote.ReasonTooEarly, res.Eligibility.Reason)
	assert.Equal(t, int32(0), h.guard.calls.Load())
	assert.Empty(t, h.notes.all(), "ineligible votes are not notified")
}

func TestCastGaslessVote_ChainReadAtAdmission(t *testing.T) {
	h := newHarness()
	h.eligReader = &fakeProposals{block: 150, err: errors.New("proposal read failed")}
	o := h.build(t)

	res, err := o.CastGaslessVote(context.Background(), testIntent())
	require.Error(t, err)

	assert.Equal(t, KindChainRead, Classify(err))
	assert.Equal(t, StateFailed, res.State)
	assert.Empty(t, res.Path)
	assert.Empty(t, h.metrics.all(), "no outcome series without a path")
	assert.Len(t, h.notes.all(), 1)
	assert.False(t, o.Pending(testIntent()))
}

func TestCastGaslessVote_InvalidIntent(t *testing.T) {
	h := newHarness()
	o := h.build(t)

	_, err := o.CastGaslessVote(context.Background(), &model.VoteIntent{ProposalID: 42, Choice: 9, Voter: testutil.TestVoter})
	require.Error(t, err)
	assert.Equal(t, KindEligibility, Classify(err))
}

func TestCastVote_StandardPath(t *testing.T) {
	h := newHarness()
	o := h.build(t)

	res, err := o.CastVote(context.Background(), testIntent())
	require.NoError(t, err)
	assert.Equal(t, model.PathStandard, res.Path)
	assert.Equal(t, common.HexToHash("0x01"), res.TxHash)
	assert.Equal(t, int32(0), h.guard.calls.Load())
	assert.Equal(t, int32(0), h.bundler.calls.Load())
}

func TestClassify(t *testing.T) {
	tests := []struct {
		err  error
		kind Kind
	}{
		{signer.ErrSignatureRejected, KindSigner},
		{bundler.ErrTimeout, KindTimeout},
		{&bundler.RPCError{Message: "AA31 paymaster deposit too low"}, KindPaymasterInsufficient},
		{&bundler.RPCError{Message: "bad request"}, KindBundler},
		{wallet.ErrWalletCreationDeclined, KindWalletCreation},
		{newError(KindChainRead, StateGaslessPath, errors.New("x")), KindChainRead},
		{errors.New("connection refused"), KindChainRead},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.kind, Classify(tt.err), tt.err.Error())
	}
	assert.Equal(t, Kind(""), Classify(nil))
}
