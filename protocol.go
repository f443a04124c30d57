package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/google/uuid"
	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/emb-protocol/issuance/pkg/eip712"
	"github.com/emb-protocol/issuance/pkg/log"
)

var ErrAuthorizationConsumed = errors.New("authorization already consumed")

var tracer = otel.Tracer("github.com/emb-protocol/issuance")

// ProtocolParams are fixed when the protocol is deployed.
type ProtocolParams struct {
	Domain                eip712.Domain
	Signer                common.Address
	Scheme                eip712.Scheme
	ConsumeAuthorizations bool
}

// Protocol mints tokens for holders of an authorization signed by the
// registered signer. Its address, the domain's verifying contract, must be
// the token controller.
type Protocol struct {
	db                    *gorm.DB
	token                 *Token
	hasher                *eip712.DomainHasher
	verifier              *eip712.Verifier
	consumeAuthorizations bool
	metrics               *Metrics
	logger                log.Logger
}

func NewProtocol(db *gorm.DB, token *Token, params ProtocolParams, metrics *Metrics, logger log.Logger) *Protocol {
	return &Protocol{
		db:                    db,
		token:                 token,
		hasher:                eip712.NewDomainHasher(params.Domain),
		verifier:              eip712.NewVerifier(params.Signer, params.Scheme),
		consumeAuthorizations: params.ConsumeAuthorizations,
		metrics:               metrics,
		logger:                logger.WithName("protocol"),
	}
}

// Address is the identity the protocol mints with.
func (p *Protocol) Address() common.Address {
	return p.hasher.Domain().VerifyingContract
}

func (p *Protocol) Signer() common.Address {
	return p.verifier.Signer()
}

func (p *Protocol) DomainSeparator() eip712.DomainSeparator {
	return p.hasher.Separator()
}

func (p *Protocol) SupportTypeHash() common.Hash {
	return eip712.SupportTypeHash
}

func (p *Protocol) Domain() eip712.Domain {
	return p.hasher.Domain()
}

func (p *Protocol) Token() *Token {
	return p.token
}

// Verify checks an authorization without minting.
func (p *Protocol) Verify(signature []byte, recipient common.Address, amount *uint256.Int) (common.Address, error) {
	return p.verifier.Verify(p.hasher.Separator(), eip712.SupportTypeHash, recipient, amount, signature)
}

// SignatureMint mints amount to recipient if signature is a valid Support
// authorization for exactly that pair. Nothing is written unless the whole
// mint succeeds.
func (p *Protocol) SignatureMint(ctx context.Context, signature []byte, recipient common.Address, amount *uint256.Int) (*Issuance, error) {
	ctx, span := tracer.Start(ctx, "Protocol.SignatureMint", trace.WithAttributes(
		attribute.String("recipient", recipient.Hex()),
	))
	defer span.End()

	ctx = log.SetContextLogger(ctx, p.logger.WithKV("recipient", recipient.Hex()))
	logger := log.FromContext(ctx)

	p.metrics.MintAttempts.Inc()

	issuance, err := p.signatureMint(ctx, signature, recipient, amount)
	if err != nil {
		p.metrics.recordFailure(err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())

		var mismatch *eip712.SignerMismatchError
		if errors.As(err, &mismatch) {
			p.metrics.UnauthorizedSignatures.Inc()
			logger.Warn("authorization signed by unregistered signer", "recovered", mismatch.Recovered.Hex(), "expected", mismatch.Expected.Hex())
		} else {
			logger.Error("signature mint failed", "error", err)
		}
		return nil, err
	}

	p.metrics.MintSuccess.Inc()
	span.SetAttributes(attribute.String("issuance_id", issuance.ID))
	logger.Info("minted", "amount", issuance.Amount.String(), "issuance", issuance.ID)
	return issuance, nil
}

func (p *Protocol) signatureMint(ctx context.Context, signature []byte, recipient common.Address, amount *uint256.Int) (*Issuance, error) {
	if amount == nil {
		return nil, ErrInvalidAmount
	}

	signer, err := p.Verify(signature, recipient, amount)
	if err != nil {
		return nil, err
	}
	log.FromContext(ctx).Debug("authorization verified", "signer", signer.Hex())

	digest := eip712.TypedDataDigest(p.hasher.Separator(), eip712.HashStruct(eip712.SupportTypeHash, recipient, amount))
	issuance := &Issuance{
		ID:        uuid.NewString(),
		Digest:    digest.Hex(),
		Recipient: recipient.Hex(),
		Symbol:    p.token.Symbol(),
		Amount:    decimal.NewFromBigInt(amount.ToBig(), 0),
		Signer:    signer.Hex(),
		Signature: hexutil.Encode(signature),
		CreatedAt: time.Now(),
	}

	err = p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if p.consumeAuthorizations {
			if err := consumeAuthorization(tx, issuance); err != nil {
				return err
			}
		}

		if err := p.token.WithTx(tx).Mint(p.Address(), recipient, amount); err != nil {
			return err
		}

		if err := tx.Create(issuance).Error; err != nil {
			return fmt.Errorf("failed to store issuance: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return issuance, nil
}

func consumeAuthorization(tx *gorm.DB, issuance *Issuance) error {
	var count int64
	if err := tx.Model(&ConsumedAuthorization{}).Where("digest = ?", issuance.Digest).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check authorization: %w", err)
	}
	if count > 0 {
		return ErrAuthorizationConsumed
	}

	return tx.Create(&ConsumedAuthorization{
		Digest:     issuance.Digest,
		IssuanceID: issuance.ID,
		CreatedAt:  issuance.CreatedAt,
	}).Error
}
