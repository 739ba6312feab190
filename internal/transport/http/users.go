package httpserver

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/michael-schlueter/cc-ecommerce-api/internal/events"
	"github.com/michael-schlueter/cc-ecommerce-api/internal/logging"
	"github.com/michael-schlueter/cc-ecommerce-api/internal/metrics"
	"github.com/michael-schlueter/cc-ecommerce-api/internal/middleware/auth"
	"github.com/michael-schlueter/cc-ecommerce-api/internal/service"
	"github.com/michael-schlueter/cc-ecommerce-api/internal/transport"
	"github.com/michael-schlueter/cc-ecommerce-api/internal/util"
)

type UsersHTTP struct {
	Users   *service.UserService
	Auth    *service.AuthService
	Events  events.Publisher
	Metrics *metrics.Metrics
}

func (h *UsersHTTP) List(c echo.Context) error {
	ctx := c.Request().Context()
	offset, limit := util.FromQuery(c.QueryParam("page"), c.QueryParam("size"))

	users, err := h.Users.List(ctx, offset, limit)
	if err != nil {
		return fail(c, "users_list", "list_users_failed", err)
	}
	return c.JSON(http.StatusOK, users)
}

func (h *UsersHTTP) Get(c echo.Context) error {
	id, err := util.ParseID(c.Param("id"))
	if err != nil {
		return badRequest("Expected id to be a number")
	}
	user, err := h.Users.Get(c.Request().Context(), id)
	if err != nil {
		return fail(c, "users_get", "get_user_failed", err)
	}
	return c.JSON(http.StatusOK, user)
}

func (h *UsersHTTP) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "users_register")

	var req transport.RegisterRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("register_error", "status", 400, "error", err)
		return badRequest("invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return fail(c, "users_register", "invalid_body", err)
	}

	user, pair, err := h.Users.Register(ctx, service.UserInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		return fail(c, "users_register", "register_failed", err)
	}

	publish(c, h.Events, events.TopicUsers, user.ID, events.UserEvent{
		Type:   events.UserRegistered,
		UserID: user.ID,
		Email:  user.Email,
		At:     time.Now().UTC(),
	})
	l.Info("register_successful", "user_id", user.ID)
	return c.JSON(http.StatusCreated, pair)
}

func (h *UsersHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "users_login")

	var req transport.LoginRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("login_error", "status", 400, "error", err)
		return badRequest("invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return fail(c, "users_login", "invalid_body", err)
	}

	user, pair, err := h.Users.Login(ctx, req.Email, req.Password)
	if err != nil {
		return fail(c, "users_login", "login_failed", err)
	}
	l.Info("login_successful", "user_id", user.ID)
	return c.JSON(http.StatusCreated, pair)
}

func (h *UsersHTTP) Update(c echo.Context) error {
	ctx := c.Request().Context()
	actor, _ := auth.UserID(c)

	id, err := util.ParseID(c.Param("id"))
	if err != nil {
		return badRequest("Expected id to be a number")
	}
	// Ownership is decided before the body is even read.
	if actor != id {
		return fail(c, "users_update", "update_forbidden",
			fmt.Errorf("%w: Not authorized to update user information", service.ErrForbidden))
	}

	var req transport.UpdateUserRequest
	if err := c.Bind(&req); err != nil {
		return badRequest("invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return fail(c, "users_update", "invalid_body", err)
	}

	user, err := h.Users.Update(ctx, actor, id, service.UserInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		return fail(c, "users_update", "update_failed", err)
	}
	return c.JSON(http.StatusOK, user)
}

func (h *UsersHTTP) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	actor, _ := auth.UserID(c)

	id, err := util.ParseID(c.Param("id"))
	if err != nil {
		return badRequest("Expected id to be a number")
	}
	if err := h.Users.Delete(ctx, actor, id); err != nil {
		return fail(c, "users_delete", "delete_failed", err)
	}

	publish(c, h.Events, events.TopicUsers, id, events.UserEvent{
		Type:   events.UserDeleted,
		UserID: id,
		At:     time.Now().UTC(),
	})
	return c.NoContent(http.StatusNoContent)
}

// Refresh rotates a refresh token passed in the body.
func (h *UsersHTTP) Refresh(c echo.Context) error {
	var req transport.RefreshRequest
	if err := c.Bind(&req); err != nil {
		return badRequest("invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return fail(c, "users_refresh", "invalid_body", err)
	}
	pair, err := h.Auth.Redeem(c.Request().Context(), req.RefreshToken)
	return h.refreshed(c, pair, err)
}

// RefreshForCaller is the bearer-protected variant; the token must belong
// to the authenticated user.
func (h *UsersHTTP) RefreshForCaller(c echo.Context) error {
	actor, _ := auth.UserID(c)
	var req transport.RefreshRequest
	if err := c.Bind(&req); err != nil {
		return badRequest("invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return fail(c, "users_refresh", "invalid_body", err)
	}
	pair, err := h.Auth.RedeemFor(c.Request().Context(), actor, req.RefreshToken)
	return h.refreshed(c, pair, err)
}

func (h *UsersHTTP) refreshed(c echo.Context, pair any, err error) error {
	if err != nil {
		h.Metrics.RefreshRotation("rejected")
		return fail(c, "users_refresh", "refresh_failed", err)
	}
	h.Metrics.RefreshRotation("ok")
	return c.JSON(http.StatusCreated, pair)
}

func (h *UsersHTTP) Logout(c echo.Context) error {
	var req transport.RefreshRequest
	if err := c.Bind(&req); err != nil {
		return badRequest("invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return fail(c, "users_logout", "invalid_body", err)
	}
	if err := h.Auth.Revoke(c.Request().Context(), req.RefreshToken); err != nil {
		return fail(c, "users_logout", "logout_failed", err)
	}
	logging.FromContext(c.Request().Context()).Info("successful_logout")
	return c.NoContent(http.StatusNoContent)
}

// RevokeTokens revokes every refresh token of a user. Admin only.
func (h *UsersHTTP) RevokeTokens(c echo.Context) error {
	id, err := util.ParseID(c.Param("id"))
	if err != nil {
		return badRequest("Expected id to be a number")
	}
	if _, err := h.Auth.RevokeAll(c.Request().Context(), id); err != nil {
		return fail(c, "users_revoke_tokens", "revoke_tokens_failed", err)
	}
	return c.NoContent(http.StatusNoContent)
}
