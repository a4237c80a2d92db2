package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/staynest/staynest-backend/internal/middleware"
	"github.com/staynest/staynest-backend/internal/services"
)

// Signup handles local registration.
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var in services.SignupInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"errors": []string{"Invalid request body"}})
		return
	}

	if _, err := h.identity.RegisterLocal(r.Context(), in); err != nil {
		serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"message": "Signup successful"})
}

type loginRequest struct {
	// The original frontend posts the email under "username".
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (req *loginRequest) email() string {
	if req.Email != "" {
		return req.Email
	}
	return req.Username
}

// Login authenticates local credentials and issues a session.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"errors": []string{"Invalid request body"}})
		return
	}
	if req.email() == "" || req.Password == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"errors": []string{"Email and password are required"}})
		return
	}

	u, err := h.identity.Authenticate(r.Context(), req.email(), req.Password)
	if err != nil {
		serviceError(w, err)
		return
	}

	sessionUser := services.SessionUser{ID: u.ID.Hex(), Email: u.Email, Usertype: u.Usertype}
	token, err := h.sessions.Create(r.Context(), sessionUser)
	if err != nil {
		serviceError(w, err)
		return
	}
	h.setSessionCookie(w, token)

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Login successful",
		"user":    sessionUser,
	})
}

// Logout destroys the session. Always succeeds from the caller's view, even
// when the session is already gone.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	token := middleware.SessionToken(r)
	if err := h.sessions.Destroy(r.Context(), token); err != nil {
		// Session store trouble is not the caller's problem; the cookie is
		// cleared regardless.
		serviceError(w, err)
		return
	}
	h.clearSessionCookie(w)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out successfully"})
}

// CurrentUser returns the session's user projection or null.
func (h *Handler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	if user, ok := middleware.SessionUserFrom(r.Context()); ok {
		writeJSON(w, http.StatusOK, map[string]any{"user": user})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": nil})
}

type resetPasswordRequest struct {
	Email           string `json:"email"`
	OldPassword     string `json:"oldPassword"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
}

// ResetPassword changes the password for a known account, gated on the old
// password rather than a session.
func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		return
	}
	if req.Email == "" || req.OldPassword == "" || req.NewPassword == "" || req.ConfirmPassword == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "All fields are required"})
		return
	}
	if req.NewPassword != req.ConfirmPassword {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "New passwords do not match"})
		return
	}

	if err := h.identity.ChangePassword(r.Context(), req.Email, req.OldPassword, req.NewPassword); err != nil {
		serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Password reset successfully"})
}

// ForgotPasswordSendOTP issues a recovery code and emails it.
func (h *Handler) ForgotPasswordSendOTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Email is required"})
		return
	}

	if err := h.otp.Issue(r.Context(), req.Email); err != nil {
		serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "OTP sent successfully!"})
}

type verifyOTPRequest struct {
	Email           string `json:"email"`
	OTP             string `json:"otp"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
}

// ForgotPasswordVerifyOTP verifies the recovery code and sets the new
// password.
func (h *Handler) ForgotPasswordVerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req verifyOTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		return
	}

	if err := h.otp.Verify(r.Context(), req.Email, req.OTP, req.NewPassword, req.ConfirmPassword); err != nil {
		serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Password reset successfully. Please login with new password."})
}
