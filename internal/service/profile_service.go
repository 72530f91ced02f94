package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"

	"invogen/internal/config"
	"invogen/internal/domain"
	"invogen/internal/port"
)

// UpsertProfileInput is the DTO for creating or updating a business profile.
type UpsertProfileInput struct {
	BusinessName       string  `json:"business_name" binding:"required"`
	Address            string  `json:"address"`
	City               string  `json:"city"`
	State              string  `json:"state"`
	Pincode            string  `json:"pincode"`
	Phone              string  `json:"phone"`
	Email              string  `json:"email" binding:"omitempty,email"`
	Website            string  `json:"website"`
	GSTNumber          string  `json:"gst_number"`
	BankName           string  `json:"bank_name"`
	AccountNumber      string  `json:"account_number"`
	IFSCCode           string  `json:"ifsc_code"`
	AccountHolderName  string  `json:"account_holder_name"`
	PrimaryColor       string  `json:"primary_color"`
	InvoicePrefix      string  `json:"invoice_prefix"`
	InvoiceStartNumber int64   `json:"invoice_start_number"`
	TaxRatePercent     float64 `json:"tax_rate_percent"`
	CurrencyCode       string  `json:"currency_code"`
}

// ProfileView is a profile plus a presigned logo URL for the frontend.
type ProfileView struct {
	domain.BusinessProfile
	LogoURL string `json:"logo_url,omitempty"`
}

// ProfileService manages business profiles and logo uploads.
type ProfileService interface {
	Get(ctx context.Context, accountID uuid.UUID) (*ProfileView, error)
	Upsert(ctx context.Context, accountID uuid.UUID, input UpsertProfileInput) (*domain.BusinessProfile, error)
	UploadLogo(ctx context.Context, accountID uuid.UUID, contentType string, size int64, body io.Reader) (*ProfileView, error)
}

type profileService struct {
	profileRepo port.ProfileRepository
	storage     port.ObjectStorage
	s3cfg       config.S3Config
}

// NewProfileService creates a new ProfileService implementation.
func NewProfileService(profileRepo port.ProfileRepository, storage port.ObjectStorage, s3cfg config.S3Config) ProfileService {
	return &profileService{profileRepo: profileRepo, storage: storage, s3cfg: s3cfg}
}

func (s *profileService) Get(ctx context.Context, accountID uuid.UUID) (*ProfileView, error) {
	profile, err := s.profileRepo.Get(ctx, accountID)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, profile), nil
}

func (s *profileService) Upsert(ctx context.Context, accountID uuid.UUID, input UpsertProfileInput) (*domain.BusinessProfile, error) {
	existing, err := s.profileRepo.Get(ctx, accountID)
	if err != nil && !errors.Is(err, domain.ErrProfileNotFound) {
		return nil, err
	}

	profile := &domain.BusinessProfile{
		AccountID:          accountID,
		BusinessName:       strings.TrimSpace(input.BusinessName),
		Address:            input.Address,
		City:               input.City,
		State:              input.State,
		Pincode:            input.Pincode,
		Phone:              input.Phone,
		Email:              input.Email,
		Website:            input.Website,
		GSTNumber:          strings.ToUpper(strings.TrimSpace(input.GSTNumber)),
		BankName:           input.BankName,
		AccountNumber:      input.AccountNumber,
		IFSCCode:           strings.ToUpper(strings.TrimSpace(input.IFSCCode)),
		AccountHolderName:  input.AccountHolderName,
		PrimaryColor:       input.PrimaryColor,
		InvoicePrefix:      strings.TrimSpace(input.InvoicePrefix),
		InvoiceStartNumber: input.InvoiceStartNumber,
		TaxRatePercent:     input.TaxRatePercent,
		CurrencyCode:       strings.ToUpper(strings.TrimSpace(input.CurrencyCode)),
	}
	if existing != nil {
		// The logo survives profile edits; it has its own upload path.
		profile.LogoS3Key = existing.LogoS3Key
	}
	applyProfileDefaults(profile)

	if err := s.profileRepo.Upsert(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

func (s *profileService) UploadLogo(ctx context.Context, accountID uuid.UUID, contentType string, size int64, body io.Reader) (*ProfileView, error) {
	ext, ok := domain.LogoContentTypes[contentType]
	if !ok {
		return nil, domain.ErrUnsupportedLogoType
	}
	maxBytes := s.s3cfg.MaxLogoSizeMB * 1024 * 1024
	if size > maxBytes {
		return nil, domain.ErrLogoTooLarge
	}

	profile, err := s.profileRepo.Get(ctx, accountID)
	if err != nil {
		return nil, err
	}

	// Re-check the size while buffering; Content-Length can lie.
	data, err := io.ReadAll(io.LimitReader(body, maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading logo upload: %w", err)
	}
	if int64(len(data)) > maxBytes {
		return nil, domain.ErrLogoTooLarge
	}

	key := fmt.Sprintf("logos/%s/logo.%s", accountID, ext)
	_, err = s.storage.Upload(ctx, port.UploadInput{
		Bucket:      s.s3cfg.Bucket,
		Key:         key,
		Body:        bytes.NewReader(data),
		ContentType: contentType,
		Size:        int64(len(data)),
	})
	if err != nil {
		return nil, err
	}

	profile.LogoS3Key = key
	if err := s.profileRepo.Upsert(ctx, profile); err != nil {
		return nil, err
	}
	return s.view(ctx, profile), nil
}

func (s *profileService) view(ctx context.Context, profile *domain.BusinessProfile) *ProfileView {
	view := &ProfileView{BusinessProfile: *profile}
	if profile.LogoS3Key != "" {
		url, err := s.storage.GetPresignedURL(ctx, s.s3cfg.Bucket, profile.LogoS3Key, s.s3cfg.PresignExpiry)
		if err == nil {
			view.LogoURL = url
		}
	}
	return view
}

func applyProfileDefaults(p *domain.BusinessProfile) {
	if p.InvoicePrefix == "" {
		p.InvoicePrefix = "INV"
	}
	if p.InvoiceStartNumber <= 0 {
		p.InvoiceStartNumber = 1
	}
	if p.TaxRatePercent <= 0 {
		p.TaxRatePercent = 18
	}
	if p.CurrencyCode == "" {
		p.CurrencyCode = "INR"
	}
	if p.PrimaryColor == "" {
		p.PrimaryColor = "#2563EB"
	}
}
