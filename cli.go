package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/term"
	"gorm.io/gorm"

	"github.com/emb-protocol/issuance/pkg/log"
	"github.com/emb-protocol/issuance/pkg/sign"
)

// app wires the components a state-touching command needs.
type app struct {
	config   *Config
	db       *gorm.DB
	registry *prometheus.Registry
	token    *Token
	protocol *Protocol
}

func newApp(logger log.Logger) (*app, error) {
	config, err := LoadConfig(logger)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	db, err := ConnectToDB(config.dbConf, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to setup database: %w", err)
	}

	tokenConf := config.deployment.Token
	token, err := DeployToken(db, tokenConf.Name, tokenConf.Symbol, common.HexToAddress(tokenConf.Owner))
	if err != nil {
		return nil, err
	}

	params, err := config.deployment.Protocol.Params()
	if err != nil {
		return nil, fmt.Errorf("invalid protocol configuration: %w", err)
	}

	registry := prometheus.NewRegistry()
	protocol := NewProtocol(db, token, params, NewMetricsWithRegistry(registry), logger)

	return &app{
		config:   config,
		db:       db,
		registry: registry,
		token:    token,
		protocol: protocol,
	}, nil
}

func (a *app) pushMetrics(logger log.Logger) {
	if err := PushMetrics(context.Background(), a.config.metricsConf, a.registry); err != nil {
		logger.Warn("failed to push metrics", "error", err)
	}
}

func parseAddressArg(name, value string) (common.Address, error) {
	if !common.IsHexAddress(value) {
		return common.Address{}, fmt.Errorf("invalid %s address %q", name, value)
	}
	return common.HexToAddress(value), nil
}

// parseAmountArg parses a positive base-10 integer of at most 256 bits.
func parseAmountArg(value string) (*uint256.Int, error) {
	amount, err := uint256.FromDecimal(value)
	if err != nil {
		return nil, fmt.Errorf("invalid amount %q: %w", value, err)
	}
	if amount.IsZero() {
		return nil, ErrInvalidAmount
	}
	return amount, nil
}

// loadSigner builds a signer from keyHex, prompting on the terminal when it is empty.
func loadSigner(keyHex, envName string) (*sign.EthereumSigner, error) {
	if keyHex == "" {
		if !term.IsTerminal(int(os.Stdin.Fd())) {
			return nil, fmt.Errorf("%s is not set", envName)
		}

		fmt.Fprintf(os.Stderr, "Private key (%s): ", envName)
		raw, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return nil, fmt.Errorf("failed to read private key: %w", err)
		}
		keyHex = strings.TrimSpace(string(raw))
	}

	return sign.NewEthereumSigner(keyHex)
}
