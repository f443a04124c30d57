package main

import (
	"context"
	"fmt"
	"io"
	"math/big"
	"os"
	"path/filepath"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/emb-protocol/issuance/pkg/eip712"
)

const (
	checkChainIdCallTimeout = 5 * time.Second
	deploymentFileName      = "deployment.yaml"
)

// DeploymentConfig describes one deployment of the protocol and its token.
type DeploymentConfig struct {
	Protocol ProtocolConfig `yaml:"protocol"`
	Token    TokenConfig    `yaml:"token"`
}

type ProtocolConfig struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
	ChainID uint64 `yaml:"chain_id" validate:"required"`
	// Address is the verifying contract of the domain and the identity the
	// protocol mints with.
	Address               string `yaml:"address" validate:"required,eth_addr"`
	Signer                string `yaml:"signer" validate:"required,eth_addr"`
	SignatureScheme       string `yaml:"signature_scheme" validate:"omitempty,oneof=typed_data personal"`
	ConsumeAuthorizations bool   `yaml:"consume_authorizations"`
}

type TokenConfig struct {
	Name   string `yaml:"name"`
	Symbol string `yaml:"symbol" validate:"omitempty,alphanum,max=16"`
	Owner  string `yaml:"owner" validate:"required,eth_addr"`
}

// LoadDeployment reads <configDirPath>/deployment.yaml.
func LoadDeployment(configDirPath string) (DeploymentConfig, error) {
	path := filepath.Join(configDirPath, deploymentFileName)
	f, err := os.Open(path)
	if err != nil {
		return DeploymentConfig{}, err
	}
	defer f.Close()

	cfg, err := ParseDeployment(f)
	if err != nil {
		return DeploymentConfig{}, fmt.Errorf("invalid %s: %w", path, err)
	}
	return cfg, nil
}

// ParseDeployment decodes a deployment description, fills defaults and
// validates it.
func ParseDeployment(r io.Reader) (DeploymentConfig, error) {
	var cfg DeploymentConfig
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return DeploymentConfig{}, err
	}

	cfg.applyDefaults()
	if err := validator.New().Struct(cfg); err != nil {
		return DeploymentConfig{}, err
	}
	return cfg, nil
}

func (cfg *DeploymentConfig) applyDefaults() {
	if cfg.Protocol.Name == "" {
		cfg.Protocol.Name = eip712.DefaultName
	}
	if cfg.Protocol.Version == "" {
		cfg.Protocol.Version = eip712.DefaultVersion
	}
	if cfg.Protocol.SignatureScheme == "" {
		cfg.Protocol.SignatureScheme = string(eip712.SchemeTypedData)
	}
	if cfg.Token.Name == "" {
		cfg.Token.Name = defaultTokenName
	}
	if cfg.Token.Symbol == "" {
		cfg.Token.Symbol = defaultTokenSymbol
	}
}

func (c ProtocolConfig) Domain() eip712.Domain {
	return eip712.Domain{
		Name:              c.Name,
		Version:           c.Version,
		ChainID:           new(big.Int).SetUint64(c.ChainID),
		VerifyingContract: common.HexToAddress(c.Address),
	}
}

func (c ProtocolConfig) Params() (ProtocolParams, error) {
	scheme, err := eip712.ParseScheme(c.SignatureScheme)
	if err != nil {
		return ProtocolParams{}, err
	}

	return ProtocolParams{
		Domain:                c.Domain(),
		Signer:                common.HexToAddress(c.Signer),
		Scheme:                scheme,
		ConsumeAuthorizations: c.ConsumeAuthorizations,
	}, nil
}

// verifyChainRPC connects to an RPC endpoint and verifies it serves the
// configured chain.
func verifyChainRPC(blockchainRPC string, expectedChainID uint64) error {
	ctx, cancel := context.WithTimeout(context.Background(), checkChainIdCallTimeout)
	defer cancel()

	client, err := ethclient.DialContext(ctx, blockchainRPC)
	if err != nil {
		return fmt.Errorf("failed to connect to blockchain RPC: %w", err)
	}
	defer client.Close()

	return checkChainId(ctx, client, expectedChainID)
}

type chainIDReader interface {
	ChainID(ctx context.Context) (*big.Int, error)
}

func checkChainId(ctx context.Context, reader chainIDReader, expectedChainID uint64) error {
	chainID, err := reader.ChainID(ctx)
	if err != nil {
		return fmt.Errorf("failed to get chain ID from blockchain RPC: %w", err)
	}

	if !chainID.IsUint64() || chainID.Uint64() != expectedChainID {
		return fmt.Errorf("unexpected chain ID from blockchain RPC: got %s, want %d", chainID, expectedChainID)
	}
	return nil
}
