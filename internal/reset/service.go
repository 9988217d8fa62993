package reset

import (
	"context"
	"errors"
	"fmt"

	"github.com/cropcareapp/cropcare-backend/pkg/config"
	"github.com/cropcareapp/cropcare-backend/pkg/db/models"
	pkgerrors "github.com/cropcareapp/cropcare-backend/pkg/errors"
	"github.com/cropcareapp/cropcare-backend/pkg/logger"
	"github.com/cropcareapp/cropcare-backend/pkg/mail"
	"github.com/cropcareapp/cropcare-backend/pkg/security"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const sessionExpiredMessage = "reset session expired, start the recovery flow again"

// GenerateResult carries the freshly issued code and the flow handle the
// rest of the recovery steps key on.
type GenerateResult struct {
	FlowID string `json:"flow"`
	Code   string `json:"code"`
}

// Service drives the password-recovery flow: issue a code, verify it,
// open the reset-session gate, then accept the new password once.
type Service interface {
	Generate(ctx context.Context, username string) (*GenerateResult, error)
	Verify(ctx context.Context, flowID, code string) error
	SessionOpen(ctx context.Context, flowID string) error
	ResetPassword(ctx context.Context, flowID, username, password string) error
}

type userRepository interface {
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	UpdatePasswordByUsername(ctx context.Context, username, passwordHash string) error
}

type service struct {
	store       FlowStore
	users       userRepository
	mailer      mail.Sender
	logg        *logger.Logger
	resetCfg    config.ResetConfig
	passwordCfg config.PasswordConfig
}

// ServiceParams bundles the dependencies required to build a reset service.
type ServiceParams struct {
	Store          FlowStore
	UserRepo       userRepository
	Mailer         mail.Sender
	Logger         *logger.Logger
	ResetConfig    config.ResetConfig
	PasswordConfig config.PasswordConfig
}

// NewService constructs the recovery service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Store == nil {
		return nil, fmt.Errorf("flow store is required")
	}
	if params.UserRepo == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	mailer := params.Mailer
	if mailer == nil {
		mailer = mail.Noop{}
	}
	return &service{
		store:       params.Store,
		users:       params.UserRepo,
		mailer:      mailer,
		logg:        params.Logger,
		resetCfg:    params.ResetConfig,
		passwordCfg: params.PasswordConfig,
	}, nil
}

// Generate issues a fresh numeric code bound to a new flow id. Issuing a
// new code for the same account does not disturb other in-flight flows.
func (s *service) Generate(ctx context.Context, username string) (*GenerateResult, error) {
	if username == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "username is required")
	}
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "username not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load user")
	}

	code, err := security.GenerateOTP(s.resetCfg.OTPDigits)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate code")
	}

	flowID := uuid.NewString()
	state := FlowState{Code: code, Username: user.Username}
	if err := s.store.SaveCode(ctx, flowID, state, s.resetCfg.OTPTTL); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save code")
	}

	// Mail delivery is best effort. The code is returned in the response
	// either way, so a relay outage never blocks recovery.
	if err := s.mailer.SendResetCode(user.Email, user.Username, code); err != nil && s.logg != nil {
		s.logg.Error(ctx, "sending reset code mail", err)
	}

	return &GenerateResult{FlowID: flowID, Code: code}, nil
}

// Verify consumes the flow's code. A correct code opens the reset-session
// gate; a wrong one burns the code without opening anything.
func (s *service) Verify(ctx context.Context, flowID, code string) error {
	if flowID == "" || code == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "flow and code are required")
	}
	state, err := s.store.TakeCode(ctx, flowID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return pkgerrors.New(pkgerrors.CodeValidation, "invalid otp")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load code")
	}
	if state.Code != code {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid otp")
	}
	if err := s.store.OpenGate(ctx, flowID, state.Username, s.resetCfg.SessionTTL); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "open gate")
	}
	return nil
}

// SessionOpen reports whether the flow may proceed to the password step.
func (s *service) SessionOpen(ctx context.Context, flowID string) error {
	_, err := s.gateOwner(ctx, flowID)
	return err
}

func (s *service) gateOwner(ctx context.Context, flowID string) (string, error) {
	if flowID == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "flow is required")
	}
	owner, err := s.store.GateOwner(ctx, flowID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", pkgerrors.New(pkgerrors.CodeSessionExpired, sessionExpiredMessage)
		}
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check gate")
	}
	return owner, nil
}

// ResetPassword stores the new credential and closes the gate so the flow
// cannot be replayed. The flow only resets the account it was opened for.
func (s *service) ResetPassword(ctx context.Context, flowID, username, password string) error {
	owner, err := s.gateOwner(ctx, flowID)
	if err != nil {
		return err
	}
	if username == "" || password == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "username and password are required")
	}
	if username != owner {
		return pkgerrors.New(pkgerrors.CodeValidation, "username does not match this recovery flow")
	}

	hash, err := security.HashPassword(password, s.passwordCfg)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	if err := s.users.UpdatePasswordByUsername(ctx, username, hash); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "username not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update password")
	}

	if err := s.store.CloseGate(ctx, flowID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "close gate")
	}
	return nil
}

// ValidateConfig guards against misconfigured recovery windows.
func ValidateConfig(cfg config.ResetConfig) error {
	if cfg.OTPTTL <= 0 || cfg.SessionTTL <= 0 {
		return fmt.Errorf("reset TTLs must be positive")
	}
	if cfg.OTPDigits < 4 {
		return fmt.Errorf("otp digits must be at least 4")
	}
	return nil
}
