package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log"
	"math/big"
	"time"

	"github.com/staynest/staynest-backend/internal/store"
	"github.com/staynest/staynest-backend/pkg/utils"
)

// OTPTTL is how long an issued code stays valid.
const OTPTTL = 10 * time.Minute

// OTPService runs the forgot-password challenge. State lives on the user
// document, independent of sessions: issue writes code+expiry, verify checks
// them lazily. Expired codes are never swept, only rejected on verify.
type OTPService struct {
	users  store.UserStore
	mailer Mailer
	now    func() time.Time
}

func NewOTPService(users store.UserStore, mailer Mailer) *OTPService {
	return &OTPService{users: users, mailer: mailer, now: time.Now}
}

// generateOTP returns a uniformly random code in [100000, 999999].
// Codes never start with a zero.
func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%d", n.Int64()+100000), nil
}

// Issue generates and stores a fresh code for the account, invalidating any
// prior pending code, then emails it. A delivery failure is reported but the
// stored code stays valid; the user can retry with a code that did arrive.
func (s *OTPService) Issue(ctx context.Context, email string) error {
	u, err := s.users.FindByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrAccountNotFound
		}
		return err
	}

	code, err := generateOTP()
	if err != nil {
		return err
	}
	if err := s.users.SetOTP(ctx, u.ID, code, s.now().Add(OTPTTL)); err != nil {
		return err
	}

	if err := s.mailer.Send(u.Email, "Staynest Password Reset OTP", otpEmailBody(code)); err != nil {
		log.Printf("OTP mail to %s failed: %v", u.Email, err)
		return ErrDeliveryFailed
	}
	return nil
}

func otpEmailBody(code string) string {
	return fmt.Sprintf(`<div style="font-family: Arial, sans-serif; padding: 20px;">
  <h2>Password Reset Request</h2>
  <p>Your One-Time Password (OTP) is:</p>
  <h1 style="color: #FF385C; letter-spacing: 5px;">%s</h1>
  <p>This code expires in 10 minutes.</p>
</div>`, code)
}

// Verify checks the code and, on success, sets the new password and clears
// the challenge in one atomic store update. Wrong and expired codes are not
// distinguished externally, and neither changes any state.
func (s *OTPService) Verify(ctx context.Context, email, code, newPassword, confirmPassword string) error {
	var msgs []string
	if code == "" {
		msgs = append(msgs, "OTP is required")
	}
	if len(newPassword) < 6 {
		msgs = append(msgs, "new password must be at least 6 characters")
	}
	if newPassword != confirmPassword {
		msgs = append(msgs, "passwords do not match")
	}
	if len(msgs) > 0 {
		return &ValidationError{Messages: msgs}
	}

	hash, err := utils.HashPassword(newPassword)
	if err != nil {
		return err
	}

	matched, err := s.users.ResetPasswordWithOTP(ctx, NormalizeEmail(email), code, s.now(), hash)
	if err != nil {
		return err
	}
	if !matched {
		return ErrInvalidOrExpiredCode
	}
	return nil
}
