package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/okarpov/blogapi/internal/apperrors"
	"github.com/okarpov/blogapi/internal/handlers/render"
	"github.com/okarpov/blogapi/internal/handlers/userctx"
	"github.com/okarpov/blogapi/internal/logger"
	"github.com/okarpov/blogapi/internal/models"
)

type userService interface {
	// Delete the account with everything it owns. The password is
	// confirmed again before anything is removed.
	Withdraw(ctx context.Context, actor models.User, password string) error
}

type UserHandler struct {
	userService userService
	logger      logger.Logger
}

func NewUser(user userService, l logger.Logger) *UserHandler {
	return &UserHandler{userService: user, logger: l}
}

func (h *UserHandler) me(w http.ResponseWriter, r *http.Request) {
	type MeResponse struct {
		ID       string `json:"id"`
		Email    string `json:"email"`
		Nickname string `json:"nickname"`
	}

	user, ok := userctx.FromContext(r.Context())
	if !ok {
		render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	render.JSON(w, MeResponse{
		ID:       user.ID.String(),
		Email:    user.Email,
		Nickname: user.Nickname,
	})
}

func (h *UserHandler) withdraw(w http.ResponseWriter, r *http.Request) {
	type WithdrawRequest struct {
		Password string `json:"password" validate:"required"`
	}
	type WithdrawSuccessResponse struct {
		Message string `json:"message"`
	}

	user, ok := userctx.FromContext(r.Context())
	if !ok {
		render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	data, err := render.BindAndValidate[WithdrawRequest](w, r)
	if err != nil {
		return
	}

	err = h.userService.Withdraw(r.Context(), user, data.Password)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrInvalidPassword):
			render.ServiceError(w, "Invalid password", http.StatusUnauthorized)
		default:
			h.logger.Error("account withdrawal failed", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}

	h.logger.Info("user withdrawn", "userID", user.ID)
	render.JSON(w, WithdrawSuccessResponse{Message: "Account deleted successfully"})
}
