package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"storefront/internal/models"
	"storefront/internal/repositories"
	"storefront/internal/result"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// AddressService manages the shipping and billing addresses of users.
type AddressService struct {
	uow       *repositories.UnitOfWork
	addresses *repositories.AddressRepository
	validate  *validator.Validate
	log       *zap.Logger
}

// NewAddressService creates a new AddressService.
func NewAddressService(uow *repositories.UnitOfWork, addresses *repositories.AddressRepository, log *zap.Logger) *AddressService {
	if log == nil {
		log = zap.NewNop()
	}
	return &AddressService{uow: uow, addresses: addresses, validate: validator.New(), log: log}
}

// AddressRequest carries the fields of a new address.
type AddressRequest struct {
	Recipient  string `json:"recipient" validate:"required,max=150"`
	Line1      string `json:"line1" validate:"required,max=255"`
	Line2      string `json:"line2" validate:"omitempty,max=255"`
	City       string `json:"city" validate:"required,max=100"`
	PostalCode string `json:"postal_code" validate:"required,max=20"`
	Country    string `json:"country" validate:"required,len=2,alpha"`
}

// AddAddress stores a new address for userID.
func (s *AddressService) AddAddress(ctx context.Context, userID string, req AddressRequest) (result.DataResult[*models.Address], error) {
	if err := s.validate.Struct(req); err != nil {
		if r, ok := validationResult(err); ok {
			return result.FromResult[*models.Address](r), nil
		}
		return result.DataResult[*models.Address]{}, err
	}

	address := &models.Address{
		UserID:     userID,
		Recipient:  req.Recipient,
		Line1:      req.Line1,
		Line2:      req.Line2,
		City:       req.City,
		PostalCode: req.PostalCode,
		Country:    strings.ToUpper(req.Country),
	}
	err := s.uow.Do(ctx, func(tx *repositories.Tx) error {
		return s.addresses.Add(ctx, tx, address)
	})
	if err != nil {
		return result.DataResult[*models.Address]{}, fmt.Errorf("add address for user %s: %w", userID, err)
	}
	return result.OkData(address, "address added"), nil
}

// ListAddresses returns the live addresses of userID.
func (s *AddressService) ListAddresses(ctx context.Context, userID string) (result.DataResult[[]models.Address], error) {
	addresses, err := s.addresses.ListForUser(ctx, nil, userID)
	if err != nil {
		return result.DataResult[[]models.Address]{}, fmt.Errorf("list addresses of user %s: %w", userID, err)
	}
	return result.OkData(addresses, fmt.Sprintf("%d addresses found", len(addresses))), nil
}

// DeleteAddress soft-deletes one of the user's addresses. Orders keep referencing it.
func (s *AddressService) DeleteAddress(ctx context.Context, userID, id string) (result.Result, error) {
	err := s.uow.Do(ctx, func(tx *repositories.Tx) error {
		if _, err := s.addresses.GetForUser(ctx, tx, userID, id); err != nil {
			return err
		}
		return s.addresses.SoftDelete(ctx, tx, id)
	})
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return result.Fail(result.KindNotFound, result.CodeAddressNotFound,
				fmt.Sprintf("address %s not found", id)), nil
		}
		return result.Result{}, fmt.Errorf("delete address %s: %w", id, err)
	}
	s.log.Info("address deleted", zap.String("user_id", userID), zap.String("address_id", id))
	return result.Ok(fmt.Sprintf("address %s deleted", id)), nil
}
