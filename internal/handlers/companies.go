package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lenskyphoto/studio-backend/internal/services"
	"github.com/lenskyphoto/studio-backend/pkg/response"
)

// CompanyHandler manages tenant registration.
type CompanyHandler struct {
	companies *services.CompanyService
	accounts  *services.AccountService
}

func NewCompanyHandler(companies *services.CompanyService, accounts *services.AccountService) *CompanyHandler {
	return &CompanyHandler{companies: companies, accounts: accounts}
}

type createCompanyRequest struct {
	Name     string         `json:"name" validate:"required,min=2,max=128"`
	Settings map[string]any `json:"settings"`
}

// POST /api/crm/companies
func (h *CompanyHandler) Create(c *gin.Context) {
	actor, ok := currentUser(c, h.accounts)
	if !ok {
		return
	}

	var req createCompanyRequest
	if !bindAndValidate(c, &req) {
		return
	}

	company, err := h.companies.Create(requestContext(c), actor, services.CreateCompanyInput{
		Name:     req.Name,
		Settings: req.Settings,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, company)
}
