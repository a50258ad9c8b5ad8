package auth

import (
	"net/http"
	"strings"
	"time"

	"encoding/json"

	"github.com/Solairith/SC2006-app-creation/internal/db"
	"github.com/Solairith/SC2006-app-creation/internal/prefs"
	"github.com/Solairith/SC2006-app-creation/internal/utils"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type userOut struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// startSession upserts the user's session row and sets the session cookie.
// One session per user; logging in again rotates the session id.
func startSession(w http.ResponseWriter, userID string) {
	id := uuid.NewString()
	expires := time.Now().Add(6 * time.Hour)

	var existing Session
	db.DB.Where("user_id = ?", userID).First(&existing)
	if existing.UserID != "" {
		db.DB.Model(&existing).Updates(Session{
			SessionID: id,
			ExpiresAt: expires,
		})
	} else {
		db.DB.Create(&Session{
			SessionID: id,
			UserID:    userID,
			ExpiresAt: expires,
		})
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "session_id",
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   false,
	})
}

func SignupHandler(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "VALIDATION_ERROR")
		return
	}

	input.Name = strings.TrimSpace(input.Name)
	input.Email = normalizeEmail(input.Email)
	if input.Name == "" || input.Email == "" || input.Password == "" {
		utils.WriteError(w, http.StatusBadRequest, "NAME_EMAIL_PASSWORD_REQUIRED")
		return
	}

	var existing User
	if err := db.DB.First(&existing, "email = ?", input.Email).Error; err == nil {
		utils.WriteError(w, http.StatusConflict, "EMAIL_EXISTS")
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, "SERVER_ERROR")
		return
	}

	user := User{
		UserID:         uuid.NewString(),
		Name:           input.Name,
		Email:          input.Email,
		HashedPassword: string(hashed),
	}
	if err := db.DB.Create(&user).Error; err != nil {
		utils.WriteError(w, http.StatusInternalServerError, "SERVER_ERROR")
		return
	}

	startSession(w, user.UserID)
	utils.WriteJSON(w, http.StatusCreated, map[string]any{
		"ok":   true,
		"user": userOut{ID: user.UserID, Name: user.Name, Email: user.Email},
	})
}

func LoginHandler(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "VALIDATION_ERROR")
		return
	}

	input.Email = normalizeEmail(input.Email)
	if input.Email == "" || input.Password == "" {
		utils.WriteError(w, http.StatusBadRequest, "EMAIL_PASSWORD_REQUIRED")
		return
	}

	var user User
	if err := db.DB.First(&user, "email = ?", input.Email).Error; err != nil {
		utils.WriteError(w, http.StatusUnauthorized, "INVALID_CREDENTIALS")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(input.Password)); err != nil {
		utils.WriteError(w, http.StatusUnauthorized, "INVALID_CREDENTIALS")
		return
	}

	startSession(w, user.UserID)
	utils.WriteJSON(w, http.StatusOK, map[string]any{
		"ok":   true,
		"user": userOut{ID: user.UserID, Name: user.Name, Email: user.Email},
	})
}

func LogoutHandler(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie("session_id")
	if err == nil {
		var session Session
		if err := db.DB.First(&session, "session_id = ?", cookie.Value).Error; err == nil {
			db.DB.Delete(&session)
		}
	}

	// Replace the cookie with an expired/empty one either way
	http.SetCookie(w, &http.Cookie{
		Name:   "session_id",
		Value:  "",
		MaxAge: -1,
		Path:   "/",
	})

	utils.WriteJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// MeHandler reports the signed-in user plus saved preferences. Anonymous
// requests get {"user": null} with a 200 so the client can branch without
// error handling.
func MeHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := CurrentUser(r)
	if !ok {
		utils.WriteJSON(w, http.StatusOK, map[string]any{"user": nil})
		return
	}

	p, err := prefs.ReadPreferences(user.UserID)
	if err != nil {
		utils.WriteJSON(w, http.StatusOK, map[string]any{
			"user": userOut{ID: user.UserID, Name: user.Name, Email: user.Email},
		})
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]any{
		"user":        userOut{ID: user.UserID, Name: user.Name, Email: user.Email},
		"preferences": p,
	})
}

// CurrentUser resolves the session cookie to a user without requiring the
// session middleware. Used by endpoints that degrade rather than reject.
func CurrentUser(r *http.Request) (User, bool) {
	cookie, err := r.Cookie("session_id")
	if err != nil {
		return User{}, false
	}

	session, err := SessionInfo{}.FindSessionByID(cookie.Value)
	if err != nil || session.ExpiresAt.Before(time.Now()) {
		return User{}, false
	}

	var user User
	if err := db.DB.First(&user, "user_id = ?", session.UserID).Error; err != nil {
		return User{}, false
	}
	return user, true
}

func EmailExistsHandler(w http.ResponseWriter, r *http.Request) {
	email := normalizeEmail(r.URL.Query().Get("email"))
	if email == "" {
		utils.WriteError(w, http.StatusBadRequest, "VALIDATION_ERROR")
		return
	}

	var user User
	exists := db.DB.First(&user, "email = ?", email).Error == nil
	utils.WriteJSON(w, http.StatusOK, map[string]any{"exists": exists})
}

// PasswordResetLiteHandler resets a password when the caller can present the
// matching account name for the email. No email round-trip.
func PasswordResetLiteHandler(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Email    string `json:"email"`
		Name     string `json:"name"`
		Password string `json:"password"`
	}

	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "VALIDATION_ERROR")
		return
	}

	input.Email = normalizeEmail(input.Email)
	input.Name = strings.TrimSpace(input.Name)
	if input.Email == "" || input.Name == "" || input.Password == "" {
		utils.WriteError(w, http.StatusBadRequest, "NAME_EMAIL_PASSWORD_REQUIRED")
		return
	}

	var user User
	if err := db.DB.First(&user, "email = ?", input.Email).Error; err != nil {
		utils.WriteError(w, http.StatusNotFound, "NOT_FOUND")
		return
	}
	if !strings.EqualFold(user.Name, input.Name) {
		utils.WriteError(w, http.StatusNotFound, "NOT_FOUND")
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, "SERVER_ERROR")
		return
	}

	if err := db.DB.Model(&user).Update("hashed_password", string(hashed)).Error; err != nil {
		utils.WriteError(w, http.StatusInternalServerError, "SERVER_ERROR")
		return
	}

	// Invalidate any live session so the old credential can't ride it out
	db.DB.Where("user_id = ?", user.UserID).Delete(&Session{})

	utils.WriteJSON(w, http.StatusOK, map[string]any{"ok": true})
}
