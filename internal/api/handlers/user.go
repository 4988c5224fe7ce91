package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rafaeltorres/user-registry/internal/domain"
	"github.com/rafaeltorres/user-registry/internal/service"
	"github.com/rafaeltorres/user-registry/internal/validation"
)

type UserHandler struct {
	userService *service.UserService
}

func NewUserHandler(userService *service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

type AddressPayload struct {
	Street     string `json:"street"`
	Number     string `json:"number"`
	Complement string `json:"complement,omitempty"`
	District   string `json:"district"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postalCode"`
}

type UserRequest struct {
	Name        string `json:"name"`
	Sex         string `json:"sex"`
	Email       string `json:"email"`
	BirthDate   string `json:"birthDate"`
	Nationality string `json:"nationality"`
	Birthplace  string `json:"birthplace"`
	CPF         string `json:"cpf"`

	// v2 only
	Address  *AddressPayload `json:"address,omitempty"`
	Password string          `json:"password,omitempty"`
}

type UserResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Sex         string    `json:"sex"`
	Email       string    `json:"email"`
	BirthDate   string    `json:"birthDate"`
	Nationality string    `json:"nationality"`
	Birthplace  string    `json:"birthplace"`
	CPF         string    `json:"cpf"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`

	// v2 responses only
	Address *AddressPayload `json:"address,omitempty"`
}

// Create handles v1 creates: no address, no password.
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req UserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.userService.Create(r.Context(), createInput(req, false))
	if err != nil {
		respondServiceError(w, err, "handlers.UserHandler.Create")
		return
	}

	respondJSON(w, http.StatusCreated, toUserResponse(user, false))
}

// CreateV2 requires address and password.
func (h *UserHandler) CreateV2(w http.ResponseWriter, r *http.Request) {
	var req UserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var errs []validation.FieldError
	if req.Address == nil {
		errs = append(errs, validation.FieldError{Field: "address", Message: "is required"})
	}
	if req.Password == "" {
		errs = append(errs, validation.FieldError{Field: "password", Message: "is required"})
	}
	if len(errs) > 0 {
		respondFieldErrors(w, errs)
		return
	}

	user, err := h.userService.Create(r.Context(), createInput(req, true))
	if err != nil {
		respondServiceError(w, err, "handlers.UserHandler.CreateV2")
		return
	}

	respondJSON(w, http.StatusCreated, toUserResponse(user, true))
}

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, false)
}

func (h *UserHandler) ListV2(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, true)
}

func (h *UserHandler) list(w http.ResponseWriter, r *http.Request, withAddress bool) {
	users, err := h.userService.List(r.Context())
	if err != nil {
		respondServiceError(w, err, "handlers.UserHandler.List")
		return
	}
	respondJSON(w, http.StatusOK, toUserResponses(users, withAddress))
}

func (h *UserHandler) Search(w http.ResponseWriter, r *http.Request) {
	h.search(w, r, false)
}

func (h *UserHandler) SearchV2(w http.ResponseWriter, r *http.Request) {
	h.search(w, r, true)
}

func (h *UserHandler) search(w http.ResponseWriter, r *http.Request, withAddress bool) {
	name := r.URL.Query().Get("name")
	if name == "" {
		respondError(w, http.StatusBadRequest, "name query parameter is required")
		return
	}

	users, err := h.userService.SearchByName(r.Context(), name)
	if err != nil {
		respondServiceError(w, err, "handlers.UserHandler.Search")
		return
	}
	respondJSON(w, http.StatusOK, toUserResponses(users, withAddress))
}

func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	h.get(w, r, false)
}

func (h *UserHandler) GetV2(w http.ResponseWriter, r *http.Request) {
	h.get(w, r, true)
}

func (h *UserHandler) get(w http.ResponseWriter, r *http.Request, withAddress bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	user, err := h.userService.GetByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, err, "handlers.UserHandler.Get")
		return
	}
	respondJSON(w, http.StatusOK, toUserResponse(user, withAddress))
}

func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	h.update(w, r, false)
}

func (h *UserHandler) UpdateV2(w http.ResponseWriter, r *http.Request) {
	h.update(w, r, true)
}

func (h *UserHandler) update(w http.ResponseWriter, r *http.Request, v2 bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	var req UserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if v2 && req.Address == nil {
		respondFieldErrors(w, []validation.FieldError{{Field: "address", Message: "is required"}})
		return
	}

	input := service.UpdateUserInput{
		Name:        req.Name,
		Sex:         req.Sex,
		Email:       req.Email,
		BirthDate:   req.BirthDate,
		Nationality: req.Nationality,
		Birthplace:  req.Birthplace,
	}
	if v2 {
		input.Address = addressInput(req.Address)
	}

	user, err := h.userService.Update(r.Context(), id, input)
	if err != nil {
		respondServiceError(w, err, "handlers.UserHandler.Update")
		return
	}
	respondJSON(w, http.StatusOK, toUserResponse(user, v2))
}

func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	if err := h.userService.Delete(r.Context(), id); err != nil {
		respondServiceError(w, err, "handlers.UserHandler.Delete")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func createInput(req UserRequest, v2 bool) service.CreateUserInput {
	input := service.CreateUserInput{
		Name:        req.Name,
		Sex:         req.Sex,
		Email:       req.Email,
		BirthDate:   req.BirthDate,
		Nationality: req.Nationality,
		Birthplace:  req.Birthplace,
		CPF:         req.CPF,
	}
	if v2 {
		input.Password = req.Password
		if req.Address != nil {
			input.Address = addressInput(req.Address)
		}
	}
	return input
}

func addressInput(a *AddressPayload) *service.AddressInput {
	return &service.AddressInput{
		Street:     a.Street,
		Number:     a.Number,
		Complement: a.Complement,
		District:   a.District,
		City:       a.City,
		State:      a.State,
		PostalCode: a.PostalCode,
	}
}

func toUserResponse(u *domain.User, withAddress bool) UserResponse {
	resp := UserResponse{
		ID:          u.ID.String(),
		Name:        u.Name,
		Sex:         string(u.Sex),
		Email:       u.Email,
		BirthDate:   u.BirthDate.Format("2006-01-02"),
		Nationality: u.Nationality,
		Birthplace:  u.Birthplace,
		CPF:         u.CPF,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
	if withAddress && u.HasAddress() {
		resp.Address = &AddressPayload{
			Street:     u.Address.Street,
			Number:     u.Address.Number,
			Complement: u.Address.Complement,
			District:   u.Address.District,
			City:       u.Address.City,
			State:      u.Address.State,
			PostalCode: u.Address.PostalCode,
		}
	}
	return resp
}

func toUserResponses(users []*domain.User, withAddress bool) []UserResponse {
	resp := make([]UserResponse, 0, len(users))
	for _, u := range users {
		resp = append(resp, toUserResponse(u, withAddress))
	}
	return resp
}
