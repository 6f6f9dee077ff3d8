package auth

import (
	"crypto/subtle"
	"net/http"
	"time"

	"servecart/globals"
	"servecart/middleware"
	"servecart/utils"

	"github.com/golang-jwt/jwt/v5"
	"github.com/julienschmidt/httprouter"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

const accessTokenTTL = 12 * time.Hour

// Handler authenticates the single catalog administrator.
type Handler struct {
	Username     string
	PasswordHash string
	now          func() time.Time
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type TokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func (h *Handler) clock() time.Time {
	if h.now != nil {
		return h.now()
	}
	return time.Now()
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if h.PasswordHash == "" {
		utils.RespondWithError(w, http.StatusServiceUnavailable, "Admin login is not configured")
		return
	}

	var in credentials
	if err := utils.DecodeJSON(w, r, &in); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid input")
		return
	}
	if in.Username == "" || in.Password == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "Username and password are required")
		return
	}

	userOK := subtle.ConstantTimeCompare([]byte(in.Username), []byte(h.Username)) == 1
	passErr := bcrypt.CompareHashAndPassword([]byte(h.PasswordHash), []byte(in.Password))
	if !userOK || passErr != nil {
		log.Warn().Str("username", in.Username).Str("remote", r.RemoteAddr).Msg("admin login failed")
		utils.RespondWithError(w, http.StatusUnauthorized, "Invalid username or password")
		return
	}

	token, expires, err := h.generateAccessToken(in.Username)
	if err != nil {
		log.Error().Err(err).Msg("token signing failed")
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to generate token")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, TokenResponse{Token: token, ExpiresAt: expires})
}

func (h *Handler) generateAccessToken(username string) (string, time.Time, error) {
	now := h.clock()
	expires := now.Add(accessTokenTTL)
	claims := &middleware.Claims{
		Username: username,
		Role:     []string{globals.AdminRole},
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			ExpiresAt: jwt.NewNumericDate(expires),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(globals.JwtSecret)
	return signed, expires, err
}
