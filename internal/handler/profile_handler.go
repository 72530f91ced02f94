package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"invogen/internal/port"
	"invogen/internal/service"
)

// ProfileHandler handles business profile and account endpoints.
type ProfileHandler struct {
	profileService service.ProfileService
	accountRepo    port.AccountRepository
}

// NewProfileHandler creates a new ProfileHandler.
func NewProfileHandler(profileService service.ProfileService, accountRepo port.AccountRepository) *ProfileHandler {
	return &ProfileHandler{profileService: profileService, accountRepo: accountRepo}
}

// Get handles GET /api/v1/profile
func (h *ProfileHandler) Get(c *gin.Context) {
	accountID, ok := requireAccountID(c)
	if !ok {
		return
	}

	view, err := h.profileService.Get(c.Request.Context(), accountID)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, view)
}

// Upsert handles PUT /api/v1/profile
func (h *ProfileHandler) Upsert(c *gin.Context) {
	accountID, ok := requireAccountID(c)
	if !ok {
		return
	}

	var input service.UpsertProfileInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	profile, err := h.profileService.Upsert(c.Request.Context(), accountID, input)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, profile)
}

// UploadLogo handles POST /api/v1/profile/logo
func (h *ProfileHandler) UploadLogo(c *gin.Context) {
	accountID, ok := requireAccountID(c)
	if !ok {
		return
	}

	file, header, err := c.Request.FormFile("logo")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "MISSING_FILE", "logo field is required")
		return
	}
	defer func() { _ = file.Close() }()

	view, err := h.profileService.UploadLogo(c.Request.Context(), accountID,
		header.Header.Get("Content-Type"), header.Size, file)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, view)
}

// Account handles GET /api/v1/account
func (h *ProfileHandler) Account(c *gin.Context) {
	accountID, ok := requireAccountID(c)
	if !ok {
		return
	}

	acct, err := h.accountRepo.GetByID(c.Request.Context(), accountID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, gin.H{
		"id":                      acct.ID,
		"email":                   acct.Email,
		"full_name":               acct.FullName,
		"tier":                    acct.Tier,
		"credits_remaining":       acct.CreditsRemaining,
		"invoices_used":           acct.InvoicesUsed,
		"total_credits_purchased": acct.TotalCreditsPurchased,
	})
}
