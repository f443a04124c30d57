package main

import (
	"os"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/shopspring/decimal"

	"github.com/emb-protocol/issuance/pkg/log"
)

const defaultExportDir = "csv_export"

func optionalRecipientArg(logger log.Logger) *common.Address {
	if len(os.Args) < 3 {
		return nil
	}
	recipient, err := parseAddressArg("recipient", os.Args[2])
	if err != nil {
		logger.Fatal("Invalid recipient", "error", err)
	}
	return &recipient
}

// runIssuancesCli lists issuance receipts.
// Example: emb issuances [recipient]
func runIssuancesCli(logger log.Logger) {
	logger = logger.WithName("issuances")
	if len(os.Args) > 3 {
		logger.Fatal("Usage: emb issuances [recipient]")
	}
	recipient := optionalRecipientArg(logger)

	a, err := newApp(logger)
	if err != nil {
		logger.Fatal("Failed to initialize", "error", err)
	}

	issuances, err := ListIssuances(a.db, recipient)
	if err != nil {
		logger.Fatal("Failed to list issuances", "error", err)
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"ID", "Recipient", "Amount", "Signer", "Timestamp"})
	t.AppendSeparator()

	total := decimal.Zero
	for _, is := range issuances {
		t.AppendRow(table.Row{is.ID, is.Recipient, is.Amount.String(), is.Signer, is.CreatedAt.Format(time.RFC3339)})
		total = total.Add(is.Amount)
	}
	t.AppendFooter(table.Row{"", "TOTAL", total.String(), "", ""})
	t.Render()
}

// runExportIssuancesCli writes issuance receipts to csv_export/.
// Example: emb export-issuances [recipient]
func runExportIssuancesCli(logger log.Logger) {
	logger = logger.WithName("export-issuances")
	if len(os.Args) > 3 {
		logger.Fatal("Usage: emb export-issuances [recipient]")
	}
	recipient := optionalRecipientArg(logger)

	a, err := newApp(logger)
	if err != nil {
		logger.Fatal("Failed to initialize", "error", err)
	}

	fileName, err := NewIssuanceExporter(a.db).ExportToFile(defaultExportDir, recipient)
	if err != nil {
		logger.Fatal("Failed to export issuances", "error", err)
	}
	logger.Info("Successfully exported issuances", "file", fileName)
}
