package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/emb-protocol/issuance/pkg/eip712"
	"github.com/emb-protocol/issuance/pkg/log"
	"github.com/emb-protocol/issuance/pkg/sign"
)

// runDomainCli prints the deployment's domain.
// Example: emb domain
func runDomainCli(logger log.Logger) {
	logger = logger.WithName("domain")

	config, err := LoadConfig(logger)
	if err != nil {
		logger.Fatal("Failed to load configuration", "error", err)
	}

	protocolConf := config.deployment.Protocol
	hasher := eip712.NewDomainHasher(protocolConf.Domain())
	d := hasher.Domain()

	fmt.Printf("name:              %s\n", d.Name)
	fmt.Printf("version:           %s\n", d.Version)
	fmt.Printf("chainId:           %s\n", d.ChainID)
	fmt.Printf("verifyingContract: %s\n", d.VerifyingContract.Hex())
	fmt.Printf("signer:            %s\n", common.HexToAddress(protocolConf.Signer).Hex())
	fmt.Printf("signatureScheme:   %s\n", protocolConf.SignatureScheme)
	fmt.Printf("domainSeparator:   %s\n", hasher.Separator().Hex())
	fmt.Printf("domainTypeHash:    %s\n", eip712.DomainTypeHash.Hex())
	fmt.Printf("supportTypeHash:   %s\n", eip712.SupportTypeHash.Hex())
}

// runTypedDataCli prints the payload a wallet signs for an authorization.
// Example: emb typed-data 0x70997970C51812dc3A010C7d01b50e0d17dc79C8 100
func runTypedDataCli(logger log.Logger) {
	logger = logger.WithName("typed-data")
	if len(os.Args) != 4 {
		logger.Fatal("Usage: emb typed-data <recipient> <amount>")
	}

	recipient, err := parseAddressArg("recipient", os.Args[2])
	if err != nil {
		logger.Fatal("Invalid recipient", "error", err)
	}
	amount, err := parseAmountArg(os.Args[3])
	if err != nil {
		logger.Fatal("Invalid amount", "error", err)
	}

	config, err := LoadConfig(logger)
	if err != nil {
		logger.Fatal("Failed to load configuration", "error", err)
	}

	td := eip712.NewDomainHasher(config.deployment.Protocol.Domain()).TypedData(recipient, amount)
	out, err := json.MarshalIndent(td, "", "  ")
	if err != nil {
		logger.Fatal("Failed to encode typed data", "error", err)
	}
	fmt.Println(string(out))
}

// runSignCli signs an authorization with the authority key.
// Example: emb sign 0x70997970C51812dc3A010C7d01b50e0d17dc79C8 100
func runSignCli(logger log.Logger) {
	logger = logger.WithName("sign")
	if len(os.Args) != 4 {
		logger.Fatal("Usage: emb sign <recipient> <amount>")
	}

	recipient, err := parseAddressArg("recipient", os.Args[2])
	if err != nil {
		logger.Fatal("Invalid recipient", "error", err)
	}
	amount, err := parseAmountArg(os.Args[3])
	if err != nil {
		logger.Fatal("Invalid amount", "error", err)
	}

	config, err := LoadConfig(logger)
	if err != nil {
		logger.Fatal("Failed to load configuration", "error", err)
	}

	signer, err := loadSigner(config.authorityKeyHex, "EMB_AUTHORITY_PRIVATE_KEY")
	if err != nil {
		logger.Fatal("Failed to initialize signer", "error", err)
	}

	params, err := config.deployment.Protocol.Params()
	if err != nil {
		logger.Fatal("Invalid protocol configuration", "error", err)
	}
	if signer.Address() != params.Signer {
		logger.Warn("key does not belong to the registered signer, the authorization will be rejected",
			"key", signer.Address().Hex(), "registered", params.Signer.Hex())
	}

	authorizer := eip712.NewAuthorizer(signer, eip712.NewDomainHasher(params.Domain), params.Scheme)
	sig, err := authorizer.Authorize(recipient, amount)
	if err != nil {
		logger.Fatal("Failed to sign authorization", "error", err)
	}

	logger.Debug("signed authorization", "digest", authorizer.Digest(recipient, amount).Hex())
	fmt.Println(sig.String())
}

// runVerifyCli checks an authorization without touching the ledger.
// Example: emb verify 0x70997970C51812dc3A010C7d01b50e0d17dc79C8 100 0x...
func runVerifyCli(logger log.Logger) {
	logger = logger.WithName("verify")
	recipient, amount, sig := parseAuthorizationArgs(logger, "verify")

	config, err := LoadConfig(logger)
	if err != nil {
		logger.Fatal("Failed to load configuration", "error", err)
	}

	params, err := config.deployment.Protocol.Params()
	if err != nil {
		logger.Fatal("Invalid protocol configuration", "error", err)
	}
	verifier := eip712.NewVerifier(params.Signer, params.Scheme)
	separator := eip712.NewDomainHasher(params.Domain).Separator()

	recovered, err := verifier.Verify(separator, eip712.SupportTypeHash, recipient, amount, sig)
	if err != nil {
		logger.Fatal("Authorization rejected", "error", err)
	}
	fmt.Printf("valid, signed by %s\n", recovered.Hex())
}

// runMintCli mints with an authorization.
// Example: emb mint 0x70997970C51812dc3A010C7d01b50e0d17dc79C8 100 0x...
func runMintCli(logger log.Logger) {
	logger = logger.WithName("mint")
	recipient, amount, sig := parseAuthorizationArgs(logger, "mint")

	a, err := newApp(logger)
	if err != nil {
		logger.Fatal("Failed to initialize", "error", err)
	}

	issuance, err := a.protocol.SignatureMint(context.Background(), sig, recipient, amount)
	a.pushMetrics(logger)
	if err != nil {
		logger.Fatal("Mint rejected", "error", err)
	}

	fmt.Printf("minted %s %s to %s (issuance %s)\n", issuance.Amount, issuance.Symbol, issuance.Recipient, issuance.ID)
}

func parseAuthorizationArgs(logger log.Logger, cmd string) (common.Address, *uint256.Int, sign.Signature) {
	if len(os.Args) != 5 {
		logger.Fatal(fmt.Sprintf("Usage: emb %s <recipient> <amount> <signature>", cmd))
	}

	recipient, err := parseAddressArg("recipient", os.Args[2])
	if err != nil {
		logger.Fatal("Invalid recipient", "error", err)
	}
	amount, err := parseAmountArg(os.Args[3])
	if err != nil {
		logger.Fatal("Invalid amount", "error", err)
	}
	sig, err := sign.ParseSignature(os.Args[4])
	if err != nil {
		logger.Fatal("Invalid signature", "error", err)
	}
	return recipient, amount, sig
}
