package controllers

import (
	"net/http"

	"github.com/shashiranjanraj/billmate/app/requests"
	"github.com/shashiranjanraj/billmate/app/services"
	"github.com/shashiranjanraj/billmate/pkg/bind"
	"github.com/shashiranjanraj/billmate/pkg/middleware"
	"github.com/shashiranjanraj/billmate/pkg/response"
)

type AuthController struct {
	service *services.AuthService
}

func NewAuthController() *AuthController {
	return &AuthController{service: services.NewAuthService()}
}

func (c *AuthController) Register(w http.ResponseWriter, r *http.Request) {
	var req requests.RegisterRequest
	if errs, err := bind.JSON(r, &req); err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	} else if errs != nil {
		response.ValidationError(w, errs)
		return
	}

	user, err := c.service.Register(req)
	if err != nil {
		renderError(w, err)
		return
	}
	response.Created(w, user)
}

func (c *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	var req requests.LoginRequest
	if errs, err := bind.JSON(r, &req); err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	} else if errs != nil {
		response.ValidationError(w, errs)
		return
	}

	tokens, err := c.service.Login(req)
	if err != nil {
		renderError(w, err)
		return
	}
	response.Success(w, tokens)
}

func (c *AuthController) Profile(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromCtx(r)
	if !ok {
		response.Unauthorized(w)
		return
	}

	user, err := c.service.Profile(userID)
	if err != nil {
		renderError(w, err)
		return
	}
	response.Success(w, user)
}
