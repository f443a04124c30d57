package main

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/emb-protocol/issuance/pkg/log"
)

// runSetControllerCli hands minting rights to a new controller. The caller
// is the address of EMB_OWNER_PRIVATE_KEY.
// Example: emb set-controller 0x5FbDB2315678afecb367f032d93F642f64180aa3
func runSetControllerCli(logger log.Logger) {
	logger = logger.WithName("set-controller")
	if len(os.Args) != 3 {
		logger.Fatal("Usage: emb set-controller <address>")
	}

	controller, err := parseAddressArg("controller", os.Args[2])
	if err != nil {
		logger.Fatal("Invalid controller", "error", err)
	}

	a, err := newApp(logger)
	if err != nil {
		logger.Fatal("Failed to initialize", "error", err)
	}

	owner, err := loadSigner(a.config.ownerKeyHex, "EMB_OWNER_PRIVATE_KEY")
	if err != nil {
		logger.Fatal("Failed to initialize owner signer", "error", err)
	}

	if err := a.token.SetController(owner.Address(), controller); err != nil {
		logger.Fatal("Failed to set controller", "caller", owner.Address().Hex(), "error", err)
	}
	logger.Info("controller updated", "controller", controller.Hex())
}

// runControllerCli prints the token registers.
func runControllerCli(logger log.Logger) {
	logger = logger.WithName("controller")

	a, err := newApp(logger)
	if err != nil {
		logger.Fatal("Failed to initialize", "error", err)
	}

	name, err := a.token.Name()
	if err != nil {
		logger.Fatal("Failed to read token", "error", err)
	}
	owner, err := a.token.Owner()
	if err != nil {
		logger.Fatal("Failed to read token", "error", err)
	}
	controller, err := a.token.Controller()
	if err != nil {
		logger.Fatal("Failed to read token", "error", err)
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Token", "Symbol", "Owner", "Controller", "Protocol"})
	t.AppendRow(table.Row{name, a.token.Symbol(), owner.Hex(), controller.Hex(), a.protocol.Address().Hex()})
	t.Render()

	if controller != a.protocol.Address() {
		logger.Warn("protocol is not the token controller, mints will be rejected")
	}
}

// runBalanceCli prints the balance of an account.
// Example: emb balance 0x70997970C51812dc3A010C7d01b50e0d17dc79C8
func runBalanceCli(logger log.Logger) {
	logger = logger.WithName("balance")
	if len(os.Args) != 3 {
		logger.Fatal("Usage: emb balance <address>")
	}

	account, err := parseAddressArg("account", os.Args[2])
	if err != nil {
		logger.Fatal("Invalid account", "error", err)
	}

	a, err := newApp(logger)
	if err != nil {
		logger.Fatal("Failed to initialize", "error", err)
	}

	balance, err := a.token.BalanceOf(account)
	if err != nil {
		logger.Fatal("Failed to get balance", "error", err)
	}
	fmt.Printf("%s %s\n", balance, a.token.Symbol())
}

func runSupplyCli(logger log.Logger) {
	logger = logger.WithName("supply")

	a, err := newApp(logger)
	if err != nil {
		logger.Fatal("Failed to initialize", "error", err)
	}

	supply, err := a.token.TotalSupply()
	if err != nil {
		logger.Fatal("Failed to get total supply", "error", err)
	}
	fmt.Printf("%s %s\n", supply, a.token.Symbol())
}
