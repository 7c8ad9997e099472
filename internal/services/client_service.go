package services

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "fundledger/internal/errors"
	"fundledger/internal/models"
	"fundledger/internal/pagination"
)

// clientService handles client profiles and their deposited capital.
type clientService struct {
	db *gorm.DB
}

// NewClientService creates a new ClientServicer.
func NewClientService(db *gorm.DB) ClientServicer {
	return &clientService{db: db}
}

// CreateClient creates a client profile and, when initialDeposit is positive,
// the matching DEPOSIT row in the same database transaction.
func (s *clientService) CreateClient(name, email string, phoneNumber *string, initialDeposit decimal.Decimal) (*models.Profile, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, apperrors.WithField(apperrors.WithMessage(apperrors.ErrInvalidInput, "email is required"), "email")
	}
	if initialDeposit.IsNegative() {
		return nil, apperrors.WithField(apperrors.WithMessage(apperrors.ErrInvalidInput, "initial deposit cannot be negative"), "initial_deposit")
	}

	var count int64
	if err := s.db.Model(&models.Profile{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		return nil, apperrors.ErrDuplicateEmail
	}

	profile := &models.Profile{
		Name:              strings.TrimSpace(name),
		Email:             email,
		PhoneNumber:       phoneNumber,
		TotalDepositedUSD: initialDeposit,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(profile).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		if initialDeposit.IsPositive() {
			deposit := &models.Transaction{
				ProfileID: &profile.ID,
				Type:      models.TransactionTypeDeposit,
				ValueUSD:  initialDeposit,
				Asset:     cashAsset(),
				CreatedAt: time.Now().UTC(),
			}
			if err := tx.Create(deposit).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return profile, nil
}

// ListClients returns a page of clients ordered by name.
func (s *clientService) ListClients(page pagination.PageRequest) (*pagination.PageResponse[models.Profile], error) {
	result, err := pagination.Find[models.Profile](s.db.Model(&models.Profile{}), page, byName)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return result, nil
}

func byName(db *gorm.DB) *gorm.DB {
	return db.Order("name ASC, id ASC")
}

// GetClient retrieves a client by ID.
func (s *clientService) GetClient(id string) (*models.Profile, error) {
	var profile models.Profile
	if err := s.db.Where("id = ?", id).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrClientNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &profile, nil
}

// ManageFunds deposits or withdraws capital for a client. The balance update
// and the ledger row are written in one database transaction with the profile
// row locked, so neither can exist without the other. A withdrawal larger
// than the client's deposited total is rejected before anything is written.
func (s *clientService) ManageFunds(id string, action FundAction, amount decimal.Decimal) (*FundsChange, error) {
	if !amount.IsPositive() {
		return nil, apperrors.WithField(apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be greater than zero"), "amount")
	}

	var txType models.TransactionType
	switch action {
	case FundActionDeposit:
		txType = models.TransactionTypeDeposit
	case FundActionWithdraw:
		txType = models.TransactionTypeWithdrawal
	default:
		return nil, apperrors.WithField(apperrors.WithMessage(apperrors.ErrInvalidInput, "action must be deposit or withdraw"), "action")
	}

	var change FundsChange
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var profile models.Profile
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", id).First(&profile).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrClientNotFound
			}
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		total := profile.TotalDepositedUSD.Add(amount)
		if txType == models.TransactionTypeWithdrawal {
			if amount.GreaterThan(profile.TotalDepositedUSD) {
				return apperrors.WithMessage(apperrors.ErrInsufficientDeposit,
					"Withdrawal cannot exceed total deposited capital of $"+profile.TotalDepositedUSD.StringFixed(2))
			}
			total = profile.TotalDepositedUSD.Sub(amount)
		}

		if err := tx.Model(&profile).Update("total_deposited_usd", total).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		profile.TotalDepositedUSD = total

		row := &models.Transaction{
			ProfileID: &profile.ID,
			Type:      txType,
			ValueUSD:  amount,
			Asset:     cashAsset(),
			CreatedAt: time.Now().UTC(),
		}
		if err := tx.Create(row).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		change = FundsChange{Profile: &profile, Transaction: row}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &change, nil
}
