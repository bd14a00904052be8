package recipes

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/smartdalle/smartdalle/pkg/httpx"
	"github.com/smartdalle/smartdalle/pkg/logger"
	"github.com/smartdalle/smartdalle/svc/auth"
	"github.com/smartdalle/smartdalle/svc/recipes"
)

// RouterOptions configures the recipes module.
type RouterOptions struct {
	Service recipes.Service
	Logger  *slog.Logger

	RequireUser func(http.Handler) http.Handler
}

// Router mounts the recipe endpoints.
//
//	GET /           -> recipes visible to the user
//	GET /{recipeID} -> one recipe, premium-gated
//	GET /tip        -> daily nutrition tip
func Router(opts RouterOptions) chi.Router {
	if opts.Service == nil {
		panic("recipes module: Service is required")
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	h := &handlers{svc: opts.Service, log: opts.Logger}

	r := chi.NewRouter()
	if opts.RequireUser != nil {
		r.Use(opts.RequireUser)
	}
	r.Get("/", h.list)
	r.Get("/tip", h.dailyTip)
	r.Get("/{recipeID}", h.get)

	return r
}

type handlers struct {
	svc recipes.Service
	log *slog.Logger
}

func (h *handlers) list(w http.ResponseWriter, r *http.Request) {
	user, err := auth.RequireUserFromContext(r.Context())
	if err != nil {
		httpx.Error(w, http.StatusUnauthorized, "unauthenticated")
		return
	}

	list, err := h.svc.List(r.Context(), user.ID)
	if err != nil {
		h.log.LogAttrs(r.Context(), slog.LevelError, "recipe list failed",
			logger.UserID(user.ID),
			logger.Error(err),
		)
		httpx.Error(w, http.StatusInternalServerError, "failed to load recipes")
		return
	}
	if list == nil {
		list = []recipes.Recipe{}
	}

	httpx.JSON(w, http.StatusOK, map[string]any{"recipes": list})
}

func (h *handlers) get(w http.ResponseWriter, r *http.Request) {
	user, err := auth.RequireUserFromContext(r.Context())
	if err != nil {
		httpx.Error(w, http.StatusUnauthorized, "unauthenticated")
		return
	}

	recipeID, err := uuid.Parse(chi.URLParam(r, "recipeID"))
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid recipe ID")
		return
	}

	recipe, err := h.svc.Get(r.Context(), user.ID, recipeID)
	if err != nil {
		switch {
		case errors.Is(err, recipes.ErrRecipeNotFound):
			httpx.Error(w, http.StatusNotFound, "recipe not found")
		case errors.Is(err, recipes.ErrPremiumRequired):
			httpx.Error(w, http.StatusForbidden, "premium subscription required")
		default:
			httpx.Error(w, http.StatusInternalServerError, "failed to load recipe")
		}
		return
	}

	httpx.JSON(w, http.StatusOK, recipe)
}

func (h *handlers) dailyTip(w http.ResponseWriter, r *http.Request) {
	user, err := auth.RequireUserFromContext(r.Context())
	if err != nil {
		httpx.Error(w, http.StatusUnauthorized, "unauthenticated")
		return
	}

	tip, err := h.svc.DailyTip(r.Context(), user.ID)
	if err != nil {
		httpx.Error(w, http.StatusInternalServerError, "failed to get tip")
		return
	}

	httpx.JSON(w, http.StatusOK, map[string]string{"tip": tip})
}
