package main

import (
	"bytes"
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emb-protocol/issuance/pkg/eip712"
)

func seedIssuances(t *testing.T) *protocolFixture {
	t.Helper()

	f := setupTestProtocol(t, eip712.SchemeTypedData, false)
	mints := []struct {
		recipient common.Address
		amount    uint64
	}{
		{testUser1, 100},
		{testUser2, 20},
		{testUser1, 3},
	}
	for _, m := range mints {
		_, err := f.protocol.SignatureMint(context.Background(), f.authorize(t, m.recipient, m.amount), m.recipient, uint256.NewInt(m.amount))
		require.NoError(t, err)
	}
	return f
}

func TestListIssuances(t *testing.T) {
	f := seedIssuances(t)

	all, err := ListIssuances(f.db, nil)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	recipient := testUser1
	own, err := ListIssuances(f.db, &recipient)
	require.NoError(t, err)
	require.Len(t, own, 2)
	for _, is := range own {
		assert.Equal(t, testUser1.Hex(), is.Recipient)
		assert.Equal(t, defaultTokenSymbol, is.Symbol)
	}
}

func TestIssuanceExporter_ExportToCSV(t *testing.T) {
	f := seedIssuances(t)

	var buf bytes.Buffer
	recipient := testUser2
	require.NoError(t, NewIssuanceExporter(f.db).ExportToCSV(&buf, &recipient))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, []string{"ID", "Recipient", "Symbol", "Amount", "Signer", "Digest", "Signature", "CreatedAt"}, records[0])
	assert.Equal(t, testUser2.Hex(), records[1][1])
	assert.Equal(t, "EMB", records[1][2])
	assert.Equal(t, "20", records[1][3])
	assert.Equal(t, f.authorizer.Address().Hex(), records[1][4])
	assert.Equal(t, f.authorizer.Digest(testUser2, uint256.NewInt(20)).Hex(), records[1][5])
}

func TestIssuanceExporter_ExportToFile(t *testing.T) {
	f := seedIssuances(t)
	dir := filepath.Join(t.TempDir(), "out")

	fileName, err := NewIssuanceExporter(f.db).ExportToFile(dir, nil)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "issuances.csv"), fileName)

	file, err := os.Open(fileName)
	require.NoError(t, err)
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	require.NoError(t, err)
	assert.Len(t, records, 4)

	recipient := testUser1
	fileName, err = NewIssuanceExporter(f.db).ExportToFile(dir, &recipient)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "issuances_"+testUser1.Hex()+".csv"), fileName)
}
