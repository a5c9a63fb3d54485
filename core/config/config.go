package config

import (
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"os"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v2"

	sdkecdsa "github.com/Layr-Labs/eigensdk-go/crypto/ecdsa"
	sdklogging "github.com/Layr-Labs/eigensdk-go/logging"
	sdkutils "github.com/Layr-Labs/eigensdk-go/utils"

	"github.com/AvaProtocol/gasless-vote/core/chainio/aa"
	"github.com/AvaProtocol/gasless-vote/core/chainio/signer"
	"github.com/AvaProtocol/gasless-vote/core/sponsor"
	"github.com/AvaProtocol/gasless-vote/core/vote"
	"github.com/AvaProtocol/gasless-vote/core/wallet"
	"github.com/AvaProtocol/gasless-vote/pkg/eip1559"
)

const (
	DefaultBundlerTimeout = 30 * time.Second
	DefaultFallbackDelay  = 1500 * time.Millisecond
	DefaultDbPath         = "/tmp/gasless-vote/db"
	DefaultMetricsAddress = "localhost:9090"
)

// Config contains everything the voter needs to build the pipeline.
type Config struct {
	Environment sdklogging.LogLevel
	Logger      sdklogging.Logger `json:"-"`

	EthRpcUrl  string
	BundlerUrl string
	// ChainID is nil when the node should be asked.
	ChainID *big.Int

	EntrypointAddress common.Address
	FactoryAddress    common.Address
	PaymasterAddress  common.Address
	AzoriusAddress    common.Address
	Strategy          vote.Strategy

	MinPaymasterBalance *big.Int
	GasLimits           sponsor.GasLimits
	CostBufferPercent   int64
	FeePolicy           eip1559.FeePolicy
	PackGasFees         bool

	BundlerTimeout   time.Duration
	FallbackDelay    time.Duration
	DeploymentPolicy wallet.DeploymentPolicy

	DbPath               string
	EnableMetrics        bool
	MetricsIpPortAddress string

	// json:"-" keeps the key out of any rendering of the config
	VoterEcdsaPrivateKey *ecdsa.PrivateKey `json:"-"`
	VoterAddress         common.Address
}

// These are read from configPath
type ConfigRaw struct {
	Environment sdklogging.LogLevel `yaml:"environment" validate:"omitempty,oneof=development production"`
	EthRpcUrl   string              `yaml:"eth_rpc_url" validate:"required,url"`
	BundlerUrl  string              `yaml:"bundler_url" validate:"required,url"`
	ChainID     int64               `yaml:"chain_id" validate:"gte=0"`

	EntrypointAddress string      `yaml:"entrypoint_address" validate:"omitempty,eth_addr"`
	FactoryAddress    string      `yaml:"factory_address" validate:"omitempty,eth_addr"`
	PaymasterAddress  string      `yaml:"paymaster_address" validate:"required,eth_addr"`
	AzoriusAddress    string      `yaml:"azorius_address" validate:"required,eth_addr"`
	Strategy          StrategyRaw `yaml:"strategy"`

	MinPaymasterBalance string `yaml:"min_paymaster_balance"`
	Gas                 GasRaw `yaml:"gas"`
	CostBufferPercent   int64  `yaml:"cost_buffer_percent" validate:"gte=0"`
	MaxFeeBufferPercent int64  `yaml:"max_fee_buffer_percent" validate:"gte=0"`
	PriorityFeePercent  int64  `yaml:"priority_fee_percent" validate:"gte=0"`
	PackGasFees         bool   `yaml:"pack_gas_fees"`

	BundlerTimeout        string `yaml:"bundler_timeout"`
	FallbackDelay         string `yaml:"fallback_delay"`
	DeploymentCheckPolicy string `yaml:"deployment_check_policy" validate:"omitempty,oneof=standard assume-undeployed"`

	DbPath               string `yaml:"db_path"`
	EnableMetrics        bool   `yaml:"enable_metrics"`
	MetricsIpPortAddress string `yaml:"metrics_ip_port_address"`

	VoterEcdsaKeystorePath string `yaml:"voter_ecdsa_keystore_path"`
}

type StrategyRaw struct {
	Kind    string `yaml:"kind" validate:"omitempty,oneof=erc20 erc721 fixed nft"`
	Address string `yaml:"address" validate:"required,eth_addr"`
}

type GasRaw struct {
	VerificationGasLimit int64 `yaml:"verification_gas_limit" validate:"gte=0"`
	CallGasLimit         int64 `yaml:"call_gas_limit" validate:"gte=0"`
	PreVerificationGas   int64 `yaml:"pre_verification_gas" validate:"gte=0"`
}

var validate = validator.New()

// NewConfig reads configFilePath, loads the voter key from the environment and
// builds the logger. Chain clients are created by the caller.
func NewConfig(configFilePath string) (*Config, error) {
	var configRaw ConfigRaw
	if configFilePath != "" {
		if err := sdkutils.ReadYamlConfig(configFilePath, &configRaw); err != nil {
			return nil, fmt.Errorf("cannot read config %s: %w", configFilePath, err)
		}
	}

	config, err := ParseConfig(&configRaw)
	if err != nil {
		return nil, err
	}

	logger, err := sdklogging.NewZapLogger(config.Environment)
	if err != nil {
		return nil, err
	}
	config.Logger = logger

	key, err := loadVoterKey(configRaw.VoterEcdsaKeystorePath)
	if err != nil {
		logger.Error("Cannot load voter ecdsa key", "err", err)
		return nil, err
	}
	if key != nil {
		config.VoterEcdsaPrivateKey = key
		config.VoterAddress = crypto.PubkeyToAddress(key.PublicKey)
	} else {
		logger.Warnf("%s not set, votes cannot be signed", EnvVoterPrivateKey)
	}

	return config, nil
}

// ParseConfig validates raw and applies defaults. It does no I/O.
func ParseConfig(raw *ConfigRaw) (*Config, error) {
	if err := validate.Struct(raw); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	kind, err := vote.ParseStrategyKind(raw.Strategy.Kind)
	if err != nil {
		return nil, err
	}

	policy, err := wallet.ParseDeploymentPolicy(raw.DeploymentCheckPolicy)
	if err != nil {
		return nil, err
	}

	bundlerTimeout, err := parseDuration(raw.BundlerTimeout, DefaultBundlerTimeout)
	if err != nil {
		return nil, fmt.Errorf("invalid bundler_timeout: %w", err)
	}
	fallbackDelay, err := parseDuration(raw.FallbackDelay, DefaultFallbackDelay)
	if err != nil {
		return nil, fmt.Errorf("invalid fallback_delay: %w", err)
	}

	minBalance := sponsor.DefaultMinPaymasterBalance
	if raw.MinPaymasterBalance != "" {
		minBalance, err = sponsor.ParseEther(raw.MinPaymasterBalance)
		if err != nil {
			return nil, fmt.Errorf("invalid min_paymaster_balance: %w", err)
		}
	}

	environment := raw.Environment
	if environment == "" {
		environment = sdklogging.Development
	}

	config := &Config{
		Environment: environment,
		EthRpcUrl:   raw.EthRpcUrl,
		BundlerUrl:  raw.BundlerUrl,

		EntrypointAddress: addressOr(raw.EntrypointAddress, aa.EntrypointAddress),
		FactoryAddress:    addressOr(raw.FactoryAddress, aa.DefaultFactoryAddress),
		PaymasterAddress:  common.HexToAddress(raw.PaymasterAddress),
		AzoriusAddress:    common.HexToAddress(raw.AzoriusAddress),
		Strategy: vote.Strategy{
			Kind:    kind,
			Address: common.HexToAddress(raw.Strategy.Address),
		},

		MinPaymasterBalance: minBalance,
		GasLimits: sponsor.GasLimits{
			VerificationGasLimit: big.NewInt(int64Or(raw.Gas.VerificationGasLimit, sponsor.DefaultVerificationGasLimit)),
			CallGasLimit:         big.NewInt(int64Or(raw.Gas.CallGasLimit, sponsor.DefaultCallGasLimit)),
			PreVerificationGas:   big.NewInt(int64Or(raw.Gas.PreVerificationGas, sponsor.DefaultPreVerificationGas)),
		},
		CostBufferPercent: int64Or(raw.CostBufferPercent, sponsor.DefaultCostBufferPercent),
		FeePolicy: eip1559.FeePolicy{
			MaxFeeBufferPercent: int64Or(raw.MaxFeeBufferPercent, eip1559.DefaultMaxFeeBufferPercent),
			PriorityFeePercent:  int64Or(raw.PriorityFeePercent, eip1559.DefaultPriorityFeePercent),
		},
		PackGasFees: raw.PackGasFees,

		BundlerTimeout:   bundlerTimeout,
		FallbackDelay:    fallbackDelay,
		DeploymentPolicy: policy,

		DbPath:               stringOr(raw.DbPath, DefaultDbPath),
		EnableMetrics:        raw.EnableMetrics,
		MetricsIpPortAddress: stringOr(raw.MetricsIpPortAddress, DefaultMetricsAddress),
	}
	if raw.ChainID > 0 {
		config.ChainID = big.NewInt(raw.ChainID)
	}

	return config, nil
}

// loadVoterKey prefers the raw hex key, then the keystore. A nil key with a nil
// error means neither is configured.
func loadVoterKey(keystorePath string) (*ecdsa.PrivateKey, error) {
	if hexKey, ok := os.LookupEnv(EnvVoterPrivateKey); ok && hexKey != "" {
		return signer.ParsePrivateKey(hexKey)
	}
	if keystorePath == "" {
		return nil, nil
	}

	password, ok := os.LookupEnv(EnvVoterKeyPassword)
	if !ok {
		return nil, fmt.Errorf("%s env var not set for keystore %s", EnvVoterKeyPassword, keystorePath)
	}
	return sdkecdsa.ReadKey(keystorePath, password)
}

// Redacted renders the effective config as yaml without secrets.
func (c *Config) Redacted() ([]byte, error) {
	out := map[string]interface{}{
		"environment":             string(c.Environment),
		"eth_rpc_url":             c.EthRpcUrl,
		"bundler_url":             c.BundlerUrl,
		"entrypoint_address":      c.EntrypointAddress.Hex(),
		"factory_address":         c.FactoryAddress.Hex(),
		"paymaster_address":       c.PaymasterAddress.Hex(),
		"azorius_address":         c.AzoriusAddress.Hex(),
		"strategy":                map[string]string{"kind": c.Strategy.Kind.String(), "address": c.Strategy.Address.Hex()},
		"min_paymaster_balance":   sponsor.FormatEther(c.MinPaymasterBalance),
		"cost_buffer_percent":     c.CostBufferPercent,
		"max_fee_buffer_percent":  c.FeePolicy.MaxFeeBufferPercent,
		"priority_fee_percent":    c.FeePolicy.PriorityFeePercent,
		"pack_gas_fees":           c.PackGasFees,
		"bundler_timeout":         c.BundlerTimeout.String(),
		"fallback_delay":          c.FallbackDelay.String(),
		"deployment_check_policy": string(c.DeploymentPolicy),
		"db_path":                 c.DbPath,
		"enable_metrics":          c.EnableMetrics,
		"metrics_ip_port_address": c.MetricsIpPortAddress,
		"gas": map[string]string{
			"verification_gas_limit": c.GasLimits.VerificationGasLimit.String(),
			"call_gas_limit":         c.GasLimits.CallGasLimit.String(),
			"pre_verification_gas":   c.GasLimits.PreVerificationGas.String(),
		},
	}
	if c.ChainID != nil {
		out["chain_id"] = c.ChainID.Int64()
	}
	if c.VoterEcdsaPrivateKey != nil {
		out["voter_address"] = c.VoterAddress.Hex()
		out["voter_ecdsa_private_key"] = "<redacted>"
	}
	return yaml.Marshal(out)
}
