package main

import (
	"embed"
	"fmt"
	"os"

	"github.com/emb-protocol/issuance/pkg/log"
)

//go:embed config/migrations/*/*.sql
var embedMigrations embed.FS

func main() {
	envPath, envErr := loadDotEnv()

	logConf, err := LoadLogConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to read log configuration:", err)
		os.Exit(1)
	}
	logger := log.NewZapLogger(logConf).WithName("emb")
	if envErr != nil {
		logger.Debug(".env file not loaded", "path", envPath)
	}

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(2)
	}
	runCli(logger, os.Args[1])
}

func runCli(logger log.Logger, name string) {
	switch name {
	case "domain":
		runDomainCli(logger)
	case "typed-data":
		runTypedDataCli(logger)
	case "sign":
		runSignCli(logger)
	case "verify":
		runVerifyCli(logger)
	case "mint":
		runMintCli(logger)
	case "set-controller":
		runSetControllerCli(logger)
	case "controller":
		runControllerCli(logger)
	case "balance":
		runBalanceCli(logger)
	case "supply":
		runSupplyCli(logger)
	case "issuances":
		runIssuancesCli(logger)
	case "export-issuances":
		runExportIssuancesCli(logger)
	case "help", "-h", "--help":
		printUsage()
	default:
		logger.Fatal("Unknown CLI command", "name", name)
	}
}

func printUsage() {
	fmt.Fprint(os.Stderr, `Usage: emb <command> [arguments]

Commands:
  domain                                     print the domain separator and type hashes
  typed-data <recipient> <amount>            print the eth_signTypedData_v4 payload
  sign <recipient> <amount>                  sign an authorization with the authority key
  verify <recipient> <amount> <signature>    recover and check the signer of an authorization
  mint <recipient> <amount> <signature>      mint with an authorization
  set-controller <address>                   replace the token controller (owner key)
  controller                                 print owner and controller
  balance <address>                          print the balance of an account
  supply                                     print the total supply
  issuances [recipient]                      list issuance receipts
  export-issuances [recipient]               export issuance receipts to CSV
`)
}
