package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Issuance is the receipt of one accepted mint authorization.
type Issuance struct {
	ID        string          `gorm:"column:id;primaryKey"`
	Digest    string          `gorm:"column:digest;not null;index"`
	Recipient string          `gorm:"column:recipient;not null;index"`
	Symbol    string          `gorm:"column:symbol;not null"`
	Amount    decimal.Decimal `gorm:"column:amount;type:varchar(78);not null"`
	Signer    string          `gorm:"column:signer;not null"`
	Signature string          `gorm:"column:signature;not null"`
	CreatedAt time.Time
}

func (Issuance) TableName() string {
	return "issuances"
}

// ConsumedAuthorization marks a digest as spent when single-use
// authorizations are enabled.
type ConsumedAuthorization struct {
	Digest     string `gorm:"column:digest;primaryKey"`
	IssuanceID string `gorm:"column:issuance_id;not null"`
	CreatedAt  time.Time
}

func (ConsumedAuthorization) TableName() string {
	return "consumed_authorizations"
}

// ListIssuances returns receipts oldest first, optionally only those of recipient.
func ListIssuances(db *gorm.DB, recipient *common.Address) ([]Issuance, error) {
	q := db.Model(&Issuance{})
	if recipient != nil {
		q = q.Where("recipient = ?", recipient.Hex())
	}

	var issuances []Issuance
	if err := q.Order("created_at ASC").Order("id ASC").Find(&issuances).Error; err != nil {
		return nil, fmt.Errorf("failed to list issuances: %w", err)
	}
	return issuances, nil
}

// IssuanceExporter writes issuance receipts as CSV.
type IssuanceExporter struct {
	db *gorm.DB
}

func NewIssuanceExporter(db *gorm.DB) *IssuanceExporter {
	return &IssuanceExporter{db: db}
}

func (e *IssuanceExporter) ExportToCSV(writer io.Writer, recipient *common.Address) error {
	issuances, err := ListIssuances(e.db, recipient)
	if err != nil {
		return err
	}

	csvWriter := csv.NewWriter(writer)

	header := []string{"ID", "Recipient", "Symbol", "Amount", "Signer", "Digest", "Signature", "CreatedAt"}
	if err := csvWriter.Write(header); err != nil {
		return fmt.Errorf("failed to write header to CSV: %w", err)
	}

	for _, is := range issuances {
		row := []string{
			is.ID,
			is.Recipient,
			is.Symbol,
			is.Amount.String(),
			is.Signer,
			is.Digest,
			is.Signature,
			is.CreatedAt.UTC().Format(time.RFC3339),
		}
		if err := csvWriter.Write(row); err != nil {
			return fmt.Errorf("failed to write row to CSV: %w", err)
		}
	}

	csvWriter.Flush()
	return csvWriter.Error()
}

// ExportToFile writes the CSV into outputDir and returns the file name.
func (e *IssuanceExporter) ExportToFile(outputDir string, recipient *common.Address) (string, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create directory %s: %w", outputDir, err)
	}

	name := "issuances.csv"
	if recipient != nil {
		name = fmt.Sprintf("issuances_%s.csv", recipient.Hex())
	}
	fileName := filepath.Join(outputDir, name)

	file, err := os.Create(fileName)
	if err != nil {
		return "", fmt.Errorf("failed to create CSV file %s: %w", fileName, err)
	}
	defer file.Close()

	if err := e.ExportToCSV(file, recipient); err != nil {
		return "", fmt.Errorf("failed to export to CSV: %w", err)
	}
	return fileName, nil
}
