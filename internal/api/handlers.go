package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/bytedance/sonic"
	errorvalues "github.com/limbo/fittrack/internal/error_values"
	"github.com/limbo/fittrack/internal/service"
	"github.com/limbo/fittrack/pkg/entity"
	"github.com/limbo/fittrack/pkg/httputil"
)

const genericAuthMessage = "Something went wrong, please try again later"

type SignUpRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SocialLoginRequest struct {
	Provider string `json:"provider"`
	IDToken  string `json:"id_token"`
}

type AuthResponse struct {
	UserID string       `json:"uid"`
	Token  string       `json:"token"`
	User   *entity.User `json:"user"`
}

type SessionResponse struct {
	Authenticated bool   `json:"authenticated"`
	UserID        string `json:"uid"`
}

type UpdateProfileRequest struct {
	DisplayName string   `json:"display_name"`
	Phone       string   `json:"phone"`
	WeightKg    *float64 `json:"weight_kg"`
	HeightCm    *float64 `json:"height_cm"`
	AvatarURI   string   `json:"avatar_uri"`
}

type FatLossRequest struct {
	WeightBefore float64 `json:"weight_before"`
	WeightAfter  float64 `json:"weight_after"`
}

// identityFailure maps a sign-in or sign-up error to its status, user message and metrics reason.
func identityFailure(err error) (int, string, string) {
	switch {
	case errors.Is(err, errorvalues.ErrUnknownUser):
		return http.StatusNotFound, "No account found with this email", "unknown_user"
	case errors.Is(err, errorvalues.ErrWrongPassword):
		return http.StatusUnauthorized, "Incorrect password", "wrong_password"
	case errors.Is(err, errorvalues.ErrPasswordNotSet):
		return http.StatusUnauthorized, "This account uses social sign-in", "password_not_set"
	case errors.Is(err, errorvalues.ErrInvalidEmail):
		return http.StatusBadRequest, "Please enter a valid email address.", "invalid_email"
	case errors.Is(err, errorvalues.ErrEmailInUse):
		return http.StatusConflict, "An account with this email already exists", "email_in_use"
	case errors.Is(err, errorvalues.ErrWeakPassword):
		return http.StatusBadRequest, "Password should be at least 6 characters long.", "weak_password"
	case errors.Is(err, errorvalues.ErrPasswordTooLong):
		return http.StatusBadRequest, "Password should be at most 72 characters long.", "password_too_long"
	case errors.Is(err, errorvalues.ErrInvalidDisplayName):
		return http.StatusBadRequest, "Display name should be at most 100 characters long.", "invalid_display_name"
	case errors.Is(err, errorvalues.ErrUnknownProvider):
		return http.StatusBadRequest, "Sign-in provider is not supported", "unknown_provider"
	case errors.Is(err, errorvalues.ErrInvalidProviderToken):
		return http.StatusUnauthorized, "Sign-in with provider failed", "invalid_provider_token"
	case errors.Is(err, errorvalues.ErrIdentityLinked):
		return http.StatusConflict, "This provider account is already linked", "identity_linked"
	default:
		return http.StatusInternalServerError, genericAuthMessage, "internal"
	}
}

func (s *Server) writeIdentityFailure(w http.ResponseWriter, logger *slog.Logger, action string, err error) {
	status, message, reason := identityFailure(err)
	if s.metrics != nil {
		s.metrics.CounterAuthFailures.WithLabelValues(reason).Inc()
	}
	if status == http.StatusInternalServerError {
		logger.Error(action+" error: service error", slog.String("error", err.Error()))
	} else {
		logger.Error(action+" error: "+reason, slog.String("error", err.Error()))
	}
	httputil.WriteErrorResponse(w, status, message, nil)
}

func (s *Server) writeSession(w http.ResponseWriter, logger *slog.Logger, status int, user *entity.User) {
	token, err := s.jwtService.GenerateToken(user)
	if err != nil {
		logger.Error("generating token error", slog.String("error", err.Error()))
		httputil.WriteErrorResponse(w, http.StatusInternalServerError, "error creating token", nil)
		return
	}
	httputil.WriteJSONResponse(w, status, AuthResponse{
		UserID: user.ID.String(),
		Token:  token,
		User:   user,
	})
}

func (s *Server) SignUp(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	var req SignUpRequest
	defer r.Body.Close()
	err := sonic.ConfigDefault.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		logger.Error("sign up error: invalid body")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), time.Second*10)
	defer cancel()
	user, err := s.userService.SignUp(ctx, &service.SignUpRequest{
		Email:       req.Email,
		Password:    req.Password,
		DisplayName: req.DisplayName,
	})
	if err != nil {
		s.writeIdentityFailure(w, logger, "sign up", err)
		return
	}
	s.writeSession(w, logger, http.StatusCreated, user)
	logger.Info("successful sign up", slog.String("uid", user.ID.String()))
}

func (s *Server) Login(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	var req LoginRequest
	defer r.Body.Close()
	err := sonic.ConfigDefault.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		logger.Error("login error: invalid body")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), time.Second*10)
	defer cancel()
	user, err := s.userService.SignIn(ctx, req.Email, req.Password)
	if err != nil {
		s.writeIdentityFailure(w, logger, "login", err)
		return
	}
	s.writeSession(w, logger, http.StatusOK, user)
	logger.Info("successful login", slog.String("uid", user.ID.String()))
}

func (s *Server) SocialLogin(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	var req SocialLoginRequest
	defer r.Body.Close()
	err := sonic.ConfigDefault.NewDecoder(r.Body).Decode(&req)
	if err != nil || req.Provider == "" || req.IDToken == "" {
		logger.Error("social login error: invalid body")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), time.Second*10)
	defer cancel()
	user, err := s.userService.SocialSignIn(ctx, req.Provider, req.IDToken)
	if err != nil {
		s.writeIdentityFailure(w, logger.With(slog.String("provider", req.Provider)), "social login", err)
		return
	}
	s.writeSession(w, logger, http.StatusOK, user)
	logger.Info("successful social login", slog.String("provider", req.Provider), slog.String("uid", user.ID.String()))
}

func (s *Server) Session(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	uid, err := GetUIDFromContext(r)
	if err != nil {
		logger.Error("session error: unauthorized")
		httputil.WriteErrorResponse(w, http.StatusUnauthorized, "no authorization", nil)
		return
	}
	httputil.WriteJSONResponse(w, http.StatusOK, SessionResponse{
		Authenticated: true,
		UserID:        uid.String(),
	})
}

func (s *Server) GetProfile(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	uid, err := GetUIDFromContext(r)
	if err != nil {
		logger.Error("get profile error: unauthorized")
		httputil.WriteErrorResponse(w, http.StatusUnauthorized, "no authorization", nil)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), time.Second*5)
	defer cancel()
	user, err := s.userService.GetByID(ctx, uid)
	if err != nil {
		if errors.Is(err, errorvalues.ErrUnknownUser) {
			logger.Error("get profile error: unexist user")
			httputil.WriteErrorResponse(w, http.StatusNotFound, "user not found", nil)
			return
		}
		logger.Error("get profile error: service error", slog.String("error", err.Error()))
		httputil.WriteErrorResponse(w, http.StatusInternalServerError, "internal error while loading profile", nil)
		return
	}
	httputil.WriteJSONResponse(w, http.StatusOK, user)
}

func (s *Server) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	uid, err := GetUIDFromContext(r)
	if err != nil {
		logger.Error("update profile error: unauthorized")
		httputil.WriteErrorResponse(w, http.StatusUnauthorized, "no authorization", nil)
		return
	}
	var req UpdateProfileRequest
	defer r.Body.Close()
	err = sonic.ConfigDefault.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		logger.Error("update profile error: invalid body")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), time.Second*10)
	defer cancel()
	user, err := s.userService.UpdateProfile(ctx, uid, &service.ProfileUpdateRequest{
		DisplayName: req.DisplayName,
		Phone:       req.Phone,
		WeightKg:    req.WeightKg,
		HeightCm:    req.HeightCm,
		AvatarURI:   req.AvatarURI,
	})
	if err != nil {
		switch {
		case errors.Is(err, errorvalues.ErrInvalidProfile):
			logger.Error("update profile error: invalid data", slog.String("error", err.Error()))
			httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid profile data", err)
		case errors.Is(err, errorvalues.ErrUnknownUser):
			logger.Error("update profile error: unexist user")
			httputil.WriteErrorResponse(w, http.StatusNotFound, "user not found", nil)
		default:
			logger.Error("update profile error: service error", slog.String("error", err.Error()))
			httputil.WriteErrorResponse(w, http.StatusInternalServerError, "internal error while updating profile", nil)
		}
		return
	}
	httputil.WriteJSONResponse(w, http.StatusOK, user)
	logger.Info("profile updated")
}

func (s *Server) EstimateFatLoss(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	var req FatLossRequest
	defer r.Body.Close()
	err := sonic.ConfigDefault.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		logger.Error("fat loss estimate error: invalid body")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	estimate, err := service.EstimateFatLoss(req.WeightBefore, req.WeightAfter)
	if err != nil {
		if errors.Is(err, errorvalues.ErrInvalidWeights) {
			httputil.WriteErrorResponse(w, http.StatusBadRequest, "weights must be positive numbers", nil)
			return
		}
		logger.Error("fat loss estimate error", slog.String("error", err.Error()))
		httputil.WriteErrorResponse(w, http.StatusInternalServerError, "internal error while estimating", nil)
		return
	}
	httputil.WriteJSONResponse(w, http.StatusOK, estimate)
}
