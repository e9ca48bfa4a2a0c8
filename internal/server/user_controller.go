package server

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/lqnhat/chatcore/internal/usecase"
)

type UserController interface {
	SyncUser(c echo.Context) error
	GetUserByExternalID(c echo.Context) error
	SearchUsers(c echo.Context) error
	Heartbeat(c echo.Context) error
	ListOnline(c echo.Context) error
}

type userController struct {
	userUsecase     usecase.UserUsecase
	presenceUsecase usecase.PresenceUsecase
}

func NewUserController(userUsecase usecase.UserUsecase, presenceUsecase usecase.PresenceUsecase) UserController {
	return &userController{
		userUsecase:     userUsecase,
		presenceUsecase: presenceUsecase,
	}
}

func (uc *userController) SyncUser(c echo.Context) error {
	var params usecase.SyncUserParams
	if err := c.Bind(&params); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(params); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user, err := uc.userUsecase.Sync(c.Request().Context(), params)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

func (uc *userController) GetUserByExternalID(c echo.Context) error {
	externalID := c.Param("externalID")
	if externalID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing external ID")
	}

	user, err := uc.userUsecase.FindByExternalID(c.Request().Context(), externalID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

func (uc *userController) SearchUsers(c echo.Context) error {
	users, err := uc.userUsecase.Search(c.Request().Context(), c.QueryParam("search"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, users)
}

type HeartbeatRequest struct {
	UserID string `json:"user_id" validate:"required"`
}

func (uc *userController) Heartbeat(c echo.Context) error {
	var req HeartbeatRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	userID, err := parseObjectID(req.UserID, "user ID")
	if err != nil {
		return err
	}

	if err := uc.presenceUsecase.Heartbeat(c.Request().Context(), userID); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "success"})
}

func (uc *userController) ListOnline(c echo.Context) error {
	online, err := uc.presenceUsecase.ListOnline(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, online)
}
