package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Stage is a step of the sign-up verification flow.
type Stage string

const (
	StageRegistered Stage = "registered"
	StageOTPPending Stage = "otp_pending"
	StageVerified   Stage = "verified"
)

// EnrollmentTTL bounds how long a registration can wait for its OTP.
const EnrollmentTTL = 15 * time.Minute

var (
	// ErrInvalidTransition is returned when a flow step is applied in the wrong stage.
	ErrInvalidTransition = errors.New("invalid enrollment transition")
	// ErrInvalidOTP is returned for codes that are not six digits.
	ErrInvalidOTP = errors.New("OTP must be 6 digits")
)

// Enrollment tracks one registration from sign-up to verified email.
type Enrollment struct {
	Email    string
	Stage    Stage
	Attempts int
}

// NewEnrollment starts a flow for an account the backend just registered.
func NewEnrollment(email string) *Enrollment {
	return &Enrollment{Email: strings.TrimSpace(email), Stage: StageRegistered}
}

// AwaitOTP moves registered → otp_pending once the code has been sent.
func (e *Enrollment) AwaitOTP() error {
	if e.Stage != StageRegistered {
		return fmt.Errorf("%w: await otp from %s", ErrInvalidTransition, e.Stage)
	}
	e.Stage = StageOTPPending
	return nil
}

// Verified moves otp_pending → verified after the backend accepted the code.
func (e *Enrollment) Verified() error {
	if e.Stage != StageOTPPending {
		return fmt.Errorf("%w: verify from %s", ErrInvalidTransition, e.Stage)
	}
	e.Stage = StageVerified
	return nil
}

// Rejected records a failed attempt. The flow stays in otp_pending so the code can be re-entered.
func (e *Enrollment) Rejected() error {
	if e.Stage != StageOTPPending {
		return fmt.Errorf("%w: reject from %s", ErrInvalidTransition, e.Stage)
	}
	e.Attempts++
	return nil
}

// NormalizeOTP trims code and checks it is exactly six digits.
func NormalizeOTP(code string) (string, error) {
	code = strings.TrimSpace(code)
	if len(code) != 6 {
		return "", ErrInvalidOTP
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return "", ErrInvalidOTP
		}
	}
	return code, nil
}

type enrollmentClaims struct {
	jwt.RegisteredClaims
	Stage    Stage `json:"stage"`
	Attempts int   `json:"attempts,omitempty"`
}

// EncodeEnrollment signs e for the pending-verification cookie.
func (t *TokenManager) EncodeEnrollment(e *Enrollment) (string, error) {
	return t.Generate(enrollmentClaims{
		RegisteredClaims: t.Registered(e.Email, EnrollmentTTL),
		Stage:            e.Stage,
		Attempts:         e.Attempts,
	})
}

// DecodeEnrollment verifies a pending-verification cookie value.
func (t *TokenManager) DecodeEnrollment(token string) (*Enrollment, error) {
	var claims enrollmentClaims
	if err := t.Parse(token, &claims); err != nil {
		return nil, err
	}
	if claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return &Enrollment{Email: claims.Subject, Stage: claims.Stage, Attempts: claims.Attempts}, nil
}
