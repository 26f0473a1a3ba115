package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/parleylabs/canvass/internal/store"
)

type companyRequest struct {
	UUID     string  `json:"uuid"`
	Name     *string `json:"name"`
	Sector   *string `json:"sector"`
	Products *string `json:"products"`
	Details  *string `json:"details"`
}

func (s *Server) createCompany(w http.ResponseWriter, r *http.Request) {
	var req companyRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	if req.UUID == "" {
		s.writeError(w, http.StatusBadRequest, errValidation, "Missing required field: uuid")
		return
	}
	if req.Name == nil || *req.Name == "" {
		s.writeError(w, http.StatusBadRequest, errValidation, "Missing required field: name")
		return
	}
	id, err := uuid.Parse(req.UUID)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, errValidation, "Invalid UUID format")
		return
	}

	if _, err := s.store.CompanyByUUID(r.Context(), id); err == nil {
		s.writeError(w, http.StatusConflict, errDuplicate, "Company with this UUID already exists")
		return
	} else if !errors.Is(err, store.ErrNotFound) {
		s.writeStoreError(w, err, "")
		return
	}

	company := &store.Company{UUID: id, Name: *req.Name}
	if req.Sector != nil {
		company.Sector = *req.Sector
	}
	if req.Products != nil {
		company.Products = *req.Products
	}
	if req.Details != nil {
		company.Details = *req.Details
	}

	if err := s.store.CreateCompany(r.Context(), company); err != nil {
		s.writeStoreError(w, err, "")
		return
	}
	s.writeSuccess(w, http.StatusCreated, company, "Company created successfully")
}

func (s *Server) listCompanies(w http.ResponseWriter, r *http.Request) {
	page := queryInt(r, "page", 1)
	limit := queryInt(r, "limit", 20)
	if limit > 100 {
		limit = 100
	}
	if page < 1 {
		page = 1
	}

	companies, err := s.store.ListCompanies(r.Context(), limit, (page-1)*limit)
	if err != nil {
		s.writeStoreError(w, err, "")
		return
	}
	if companies == nil {
		companies = []store.Company{}
	}
	s.writeSuccess(w, http.StatusOK, map[string]any{
		"companies": companies,
		"page":      page,
		"limit":     limit,
		"count":     len(companies),
	}, "")
}

func (s *Server) getCompany(w http.ResponseWriter, r *http.Request) {
	id, ok := s.uuidParam(w, r, "companyUUID")
	if !ok {
		return
	}
	company, err := s.store.CompanyByUUID(r.Context(), id)
	if err != nil {
		s.writeStoreError(w, err, "Company not found")
		return
	}
	s.writeSuccess(w, http.StatusOK, company, "")
}

func (s *Server) updateCompany(w http.ResponseWriter, r *http.Request) {
	id, ok := s.uuidParam(w, r, "companyUUID")
	if !ok {
		return
	}
	var req companyRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	if req.Name == nil && req.Sector == nil && req.Products == nil && req.Details == nil {
		s.writeError(w, http.StatusBadRequest, errValidation, "No valid fields to update")
		return
	}

	company, err := s.store.CompanyByUUID(r.Context(), id)
	if err != nil {
		s.writeStoreError(w, err, "Company not found")
		return
	}
	if req.Name != nil {
		company.Name = *req.Name
	}
	if req.Sector != nil {
		company.Sector = *req.Sector
	}
	if req.Products != nil {
		company.Products = *req.Products
	}
	if req.Details != nil {
		company.Details = *req.Details
	}

	if err := s.store.UpdateCompany(r.Context(), company); err != nil {
		s.writeStoreError(w, err, "Company not found")
		return
	}
	s.writeSuccess(w, http.StatusOK, company, "Company updated successfully")
}

func (s *Server) deleteCompany(w http.ResponseWriter, r *http.Request) {
	id, ok := s.uuidParam(w, r, "companyUUID")
	if !ok {
		return
	}
	if err := s.store.DeleteCompany(r.Context(), id); err != nil {
		s.writeStoreError(w, err, "Company not found")
		return
	}
	s.writeSuccess(w, http.StatusOK, map[string]string{"uuid": id.String()}, "Company deleted successfully")
}

func queryInt(r *http.Request, key string, fallback int) int {
	if v := r.URL.Query().Get(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
