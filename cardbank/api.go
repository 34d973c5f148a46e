package cardbank

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/alovak/cardbank-playground/cardbank/models"
	"github.com/alovak/cardbank-playground/internal/expiry"
)

// API is the HTTP presentation layer over the command processor. It owns
// the transport concerns only: decoding payloads, stamping commands with
// the wall clock, and mapping domain failures onto statuses.
type API struct {
	service *Service
	now     func() time.Time
}

func NewAPI(service *Service) *API {
	return &API{
		service: service,
		now:     time.Now,
	}
}

func (a *API) AppendRoutes(r chi.Router) {
	r.Route("/users", func(r chi.Router) {
		r.Post("/", a.createUser)
		r.Route("/{userID}", func(r chi.Router) {
			r.Get("/", a.getUser)
			r.Post("/cards", a.createCard)
		})
	})
	r.Route("/cards/{cardNumber}", func(r chi.Router) {
		r.Get("/", a.getCard)
		r.Post("/activate", a.activate)
		r.Post("/deactivate", a.deactivate)
		r.Post("/limit", a.setDailyLimit)
		r.Post("/payments", a.processPayment)
		r.Post("/topups", a.topUp)
	})
}

func (a *API) createUser(w http.ResponseWriter, r *http.Request) {
	create := models.CreateUser{}
	if err := json.NewDecoder(r.Body).Decode(&create); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	user, err := a.service.CreateUser(r.Context(), create)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, user)
}

func (a *API) getUser(w http.ResponseWriter, r *http.Request) {
	user, err := a.service.GetUser(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		respondError(w, err)
		return
	}
	if user == nil {
		http.Error(w, "user not found", http.StatusNotFound)
		return
	}
	respondJSON(w, http.StatusOK, user)
}

func (a *API) createCard(w http.ResponseWriter, r *http.Request) {
	create := models.CreateCard{}
	if err := json.NewDecoder(r.Body).Decode(&create); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	card, err := a.service.CreateCard(r.Context(), chi.URLParam(r, "userID"), create, a.now())
	if err != nil {
		respondError(w, err)
		return
	}
	respondCard(w, http.StatusCreated, card)
}

func (a *API) getCard(w http.ResponseWriter, r *http.Request) {
	card, err := a.service.GetCard(r.Context(), chi.URLParam(r, "cardNumber"))
	if err != nil {
		respondError(w, err)
		return
	}
	if card == nil {
		http.Error(w, "card not found", http.StatusNotFound)
		return
	}
	respondCard(w, http.StatusOK, card)
}

func (a *API) activate(w http.ResponseWriter, r *http.Request) {
	card, err := a.service.Activate(r.Context(), chi.URLParam(r, "cardNumber"), a.now())
	if err != nil {
		respondError(w, err)
		return
	}
	respondCard(w, http.StatusOK, card)
}

func (a *API) deactivate(w http.ResponseWriter, r *http.Request) {
	card, err := a.service.Deactivate(r.Context(), chi.URLParam(r, "cardNumber"), a.now())
	if err != nil {
		respondError(w, err)
		return
	}
	respondCard(w, http.StatusOK, card)
}

func (a *API) setDailyLimit(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Limit int64 `json:"limit"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	card, err := a.service.SetDailyLimit(r.Context(), chi.URLParam(r, "cardNumber"), req.Limit, a.now())
	if err != nil {
		respondError(w, err)
		return
	}
	respondCard(w, http.StatusOK, card)
}

func (a *API) processPayment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Amount int64 `json:"amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	amount, err := models.NewMoney(req.Amount)
	if err != nil {
		respondError(w, err)
		return
	}
	card, err := a.service.ProcessPayment(r.Context(), chi.URLParam(r, "cardNumber"), amount, a.now())
	if err != nil {
		respondError(w, err)
		return
	}
	respondCard(w, http.StatusOK, card)
}

func (a *API) topUp(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Amount int64 `json:"amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	amount, err := models.NewMoney(req.Amount)
	if err != nil {
		respondError(w, err)
		return
	}
	card, err := a.service.TopUp(r.Context(), chi.URLParam(r, "cardNumber"), amount, a.now())
	if err != nil {
		respondError(w, err)
		return
	}
	respondCard(w, http.StatusOK, card)
}

// cardResponse augments the snapshot with the card-face rendering of the
// expiration date (MM/YY) for clients.
type cardResponse struct {
	models.CardState
	CardFace string `json:"card_face,omitempty"`
}

func respondCard(w http.ResponseWriter, status int, card *models.CardState) {
	resp := cardResponse{CardState: *card}
	if face, err := expiry.CardFace(card.ExpirationDate); err == nil {
		resp.CardFace = face
	}
	respondJSON(w, status, resp)
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// respondError maps the failure taxonomy onto statuses. Bug is always an
// opaque 500; the underlying fault was already logged by the service.
func respondError(w http.ResponseWriter, err error) {
	var ve *models.ValidationError
	var ona *models.OperationNotAllowedError
	var de *models.DataError

	switch {
	case errors.As(err, &ve), errors.As(err, &ona):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	case errors.As(err, &de):
		if de.Kind == models.Conflict {
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}
		http.Error(w, err.Error(), http.StatusNotFound)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
