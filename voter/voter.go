// Package voter wires the vote pipeline from a config file.
package voter

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/allegro/bigcache/v3"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/Layr-Labs/eigensdk-go/chainio/clients/eth"
	sdklogging "github.com/Layr-Labs/eigensdk-go/logging"
	sdkmetrics "github.com/Layr-Labs/eigensdk-go/metrics"
	rpccalls "github.com/Layr-Labs/eigensdk-go/metrics/collectors/rpc_calls"

	"github.com/AvaProtocol/gasless-vote/core/chainio/aa"
	"github.com/AvaProtocol/gasless-vote/core/chainio/signer"
	"github.com/AvaProtocol/gasless-vote/core/config"
	"github.com/AvaProtocol/gasless-vote/core/pipeline"
	"github.com/AvaProtocol/gasless-vote/core/sponsor"
	"github.com/AvaProtocol/gasless-vote/core/vote"
	"github.com/AvaProtocol/gasless-vote/core/wallet"
	"github.com/AvaProtocol/gasless-vote/metrics"
	"github.com/AvaProtocol/gasless-vote/model"
	"github.com/AvaProtocol/gasless-vote/pkg/erc4337/bundler"
	"github.com/AvaProtocol/gasless-vote/storage"
)

const serviceName = "gasless-vote"

// Options are the interactive collaborators supplied by the caller.
type Options struct {
	// ConfirmSignature is asked before every signature; nil signs without asking.
	ConfirmSignature signer.ConfirmFunc
	Prompter         pipeline.Prompter
	Notifier         pipeline.Notifier
}

type Voter struct {
	config *config.Config
	logger sdklogging.Logger

	ethClient eth.Client
	chainID   *big.Int

	db      storage.Storage
	journal *storage.Journal
	cache   *bigcache.BigCache

	bundler      *bundler.BundlerClient
	entrypoint   *aa.EntryPoint
	resolver     *wallet.Resolver
	guard        *sponsor.Guard
	eligibility  *vote.EligibilityGuard
	chainVoter   *vote.ChainVoter
	orchestrator *pipeline.Orchestrator

	metricsReg *prometheus.Registry
	metrics    metrics.MetricsGenerator
}

func NewFromConfig(configPath string, opts Options) (*Voter, error) {
	c, err := config.NewConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", configPath, err)
	}
	return New(c, opts)
}

func New(c *config.Config, opts Options) (_ *Voter, err error) {
	logger := c.Logger
	reg := prometheus.NewRegistry()

	// release what was opened so far when construction fails
	var closers []func()
	defer func() {
		if err == nil {
			return
		}
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}()

	var voterMetrics metrics.MetricsGenerator = metrics.NewNoopMetrics()
	var ethClient eth.Client
	if c.EnableMetrics {
		eigenMetrics := sdkmetrics.NewEigenMetrics(serviceName, c.MetricsIpPortAddress, reg, logger)
		voterMetrics = metrics.NewVoteMetrics(eigenMetrics, reg)

		rpcCallsCollector := rpccalls.NewCollector(serviceName, reg)
		ethClient, err = eth.NewInstrumentedClient(c.EthRpcUrl, rpcCallsCollector)
	} else {
		ethClient, err = eth.NewClient(c.EthRpcUrl)
	}
	if err != nil {
		logger.Errorf("Cannot create http ethclient", "err", err)
		return nil, err
	}

	chainID := c.ChainID
	if chainID == nil {
		chainID, err = ethClient.ChainID(context.Background())
		if err != nil {
			logger.Error("Cannot get chainId", "err", err)
			return nil, err
		}
	}

	db, err := storage.NewWithPath(c.DbPath)
	if err != nil {
		return nil, fmt.Errorf("cannot open journal at %s: %w", c.DbPath, err)
	}
	closers = append(closers, func() { db.Close() })

	cache, err := bigcache.New(context.Background(), bigcache.Config{
		Shards:             64,
		LifeWindow:         120 * time.Minute,
		CleanWindow:        5 * time.Minute,
		MaxEntriesInWindow: 1000,
		// a wallet address is 20 bytes
		MaxEntrySize:     32,
		HardMaxCacheSize: 8,
	})
	if err != nil {
		return nil, fmt.Errorf("cannot initialize wallet cache: %w", err)
	}
	closers = append(closers, func() { cache.Close() })

	bundlerClient, err := bundler.NewBundlerClient(c.BundlerUrl, c.BundlerTimeout, logger)
	if err != nil {
		return nil, err
	}
	closers = append(closers, bundlerClient.Close)

	entrypoint, err := aa.NewEntryPoint(c.EntrypointAddress, ethClient)
	if err != nil {
		return nil, err
	}

	v := &Voter{
		config:     c,
		logger:     logger,
		ethClient:  ethClient,
		chainID:    chainID,
		db:         db,
		journal:    storage.NewJournal(db, logger),
		cache:      cache,
		bundler:    bundlerClient,
		entrypoint: entrypoint,
		resolver:   wallet.NewResolver(ethClient, c.FactoryAddress, cache, logger),
		guard: sponsor.NewGuard(ethClient, sponsor.GuardConfig{
			Entrypoint:        c.EntrypointAddress,
			Paymaster:         c.PaymasterAddress,
			Limits:            c.GasLimits,
			CostBufferPercent: c.CostBufferPercent,
			MinBalance:        c.MinPaymasterBalance,
		}, logger),
		metricsReg: reg,
		metrics:    voterMetrics,
	}

	proposals := vote.NewChainProposalReader(ethClient, c.AzoriusAddress, c.Strategy)
	v.eligibility = vote.NewEligibilityGuard(proposals, nil, logger)

	if c.EnableMetrics {
		reg.MustRegister(metrics.NewPaymasterCollector(v.guard, c.PaymasterAddress, logger))
	}

	deps := pipeline.Deps{
		Eligibility: v.eligibility,
		Guard:       v.guard,
		Resolver:    v.resolver,
		Prompter:    opts.Prompter,
		Builder:     vote.NewBuilder(c.Strategy, c.PaymasterAddress, c.GasLimits),
		EntryPoint:  entrypoint,
		Nonces:      bundler.NewNonceManager(logger),
		Bundler:     bundlerClient,
		Notifier:    opts.Notifier,
		Journal:     v.journal,
		Metrics:     voterMetrics,
		Logger:      logger,
	}

	if c.VoterEcdsaPrivateKey != nil {
		txOpts, err := bind.NewKeyedTransactorWithChainID(c.VoterEcdsaPrivateKey, chainID)
		if err != nil {
			return nil, err
		}

		var msgSigner signer.MessageSigner = signer.NewKeySigner(c.VoterEcdsaPrivateKey)
		if opts.ConfirmSignature != nil {
			msgSigner = signer.NewPromptSigner(msgSigner, opts.ConfirmSignature)
		}

		v.chainVoter = vote.NewChainVoter(ethClient, c.Strategy, txOpts, logger)
		deps.Signer = msgSigner
		deps.Standard = v.chainVoter
		deps.Creator = wallet.NewFactoryCreator(ethClient, v.resolver, txOpts, logger)

		v.orchestrator, err = pipeline.New(pipeline.Config{
			Entrypoint:       c.EntrypointAddress,
			ChainID:          chainID,
			FallbackDelay:    c.FallbackDelay,
			BundlerTimeout:   c.BundlerTimeout,
			FeePolicy:        c.FeePolicy,
			PackGasFees:      c.PackGasFees,
			DeploymentPolicy: c.DeploymentPolicy,
		}, deps)
		if err != nil {
			return nil, err
		}
	}

	return v, nil
}

// Start serves /metrics when enabled. The returned channel reports a failed server.
func (v *Voter) Start(ctx context.Context) <-chan error {
	if !v.config.EnableMetrics {
		return nil
	}
	v.logger.Info("starting metrics server", "address", v.config.MetricsIpPortAddress)
	return v.metrics.Start(ctx, v.metricsReg)
}

func (v *Voter) Close() {
	v.bundler.Close()
	if v.cache != nil {
		v.cache.Close()
	}
	if err := v.db.Close(); err != nil {
		v.logger.Warn("failed to close journal", "error", err)
	}
}

func (v *Voter) Config() *config.Config {
	return v.config
}

func (v *Voter) ChainID() *big.Int {
	return v.chainID
}

func (v *Voter) Logger() sdklogging.Logger {
	return v.logger
}

// Address is the voter EOA, zero when no key is configured.
func (v *Voter) Address() common.Address {
	return v.config.VoterAddress
}

func (v *Voter) Orchestrator() (*pipeline.Orchestrator, error) {
	if v.orchestrator == nil {
		return nil, fmt.Errorf("no voter key configured, set %s", config.EnvVoterPrivateKey)
	}
	return v.orchestrator, nil
}

// Vote runs one attempt. standard skips the gasless path entirely.
func (v *Voter) Vote(ctx context.Context, intent *model.VoteIntent, standard bool) (*pipeline.Result, error) {
	o, err := v.Orchestrator()
	if err != nil {
		return nil, err
	}
	if standard {
		return o.CastVote(ctx, intent)
	}
	return o.CastGaslessVote(ctx, intent)
}

// WaitForInclusion waits for the on-chain result of a successful attempt.
func (v *Voter) WaitForInclusion(ctx context.Context, res *pipeline.Result) (string, error) {
	switch res.Path {
	case model.PathGasless:
		receipt, err := v.bundler.WaitForReceipt(ctx, res.UserOpHash, 2*time.Second)
		if err != nil {
			return "", err
		}
		if !receipt.Success {
			return receipt.Receipt.TransactionHash.Hex(), fmt.Errorf("user operation %s reverted on-chain", res.UserOpHash)
		}
		return receipt.Receipt.TransactionHash.Hex(), nil
	case model.PathStandard:
		if v.chainVoter == nil {
			return "", fmt.Errorf("standard voter is not configured")
		}
		receipt, err := v.chainVoter.WaitVote(ctx, res.TxHash)
		if err != nil {
			return "", err
		}
		return receipt.TxHash.Hex(), nil
	}
	return "", fmt.Errorf("attempt has no path")
}

func (v *Voter) Wallet(ctx context.Context, owner common.Address) (*model.SmartWallet, error) {
	return v.resolver.Wallet(ctx, owner, v.chainID)
}

func (v *Voter) SponsorStatus(ctx context.Context) (sponsor.Verdict, error) {
	return v.guard.CanSponsor(ctx)
}

// Affordance returns a scheduled cache of the coarse threshold for display.
func (v *Voter) Affordance(interval time.Duration) *sponsor.Affordance {
	return sponsor.NewAffordance(v.guard, interval, v.logger)
}

func (v *Voter) History(voter common.Address, limit int) ([]*model.VoteAttempt, error) {
	return v.journal.List(voter, limit)
}

func (v *Voter) Eligibility(ctx context.Context, intent *model.VoteIntent) (vote.Eligibility, error) {
	return v.eligibility.Check(ctx, intent)
}
