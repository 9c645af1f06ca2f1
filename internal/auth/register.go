package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/nakawin/casino-backend/internal/users"
	pkgAuth "github.com/nakawin/casino-backend/pkg/auth"
	"github.com/nakawin/casino-backend/pkg/auth/session"
	"github.com/nakawin/casino-backend/internal/wallet"
	"github.com/nakawin/casino-backend/pkg/config"
	"github.com/nakawin/casino-backend/pkg/db"
	"github.com/nakawin/casino-backend/pkg/db/models"
	"github.com/nakawin/casino-backend/pkg/enums"
	pkgerrors "github.com/nakawin/casino-backend/pkg/errors"
	"github.com/nakawin/casino-backend/pkg/security"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RegisterService handles the player onboarding transaction.
type RegisterService interface {
	Register(ctx context.Context, req RegisterRequest) (*LoginResponse, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type registerUserRepository interface {
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	Create(ctx context.Context, dto users.CreateUserDTO) (*models.User, error)
}

type registerWallet interface {
	Credit(ctx context.Context, input wallet.MutationInput) (*models.WalletEntry, error)
}

// RegisterServiceParams packages the dependencies for the registration flow.
// The repo factories bind repositories to the transaction so the user row and
// its starting-balance ledger entry commit together.
type RegisterServiceParams struct {
	TxRunner        txRunner
	UserRepoFactory func(tx *gorm.DB) registerUserRepository
	WalletFactory   func(tx *gorm.DB) registerWallet
	SessionManager  sessionManager
	PasswordConfig  config.PasswordConfig
	JWTConfig       config.JWTConfig
	Rewards         config.RewardsConfig
}

type registerService struct {
	tx          txRunner
	userRepo    func(tx *gorm.DB) registerUserRepository
	wallet      func(tx *gorm.DB) registerWallet
	session     sessionManager
	passwordCfg config.PasswordConfig
	jwtCfg      config.JWTConfig
	rewards     config.RewardsConfig
}

// NewRegisterService builds a registration service with the provided dependencies.
func NewRegisterService(params RegisterServiceParams) (RegisterService, error) {
	if params.TxRunner == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "transaction runner required")
	}
	if params.UserRepoFactory == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "user repository factory required")
	}
	if params.WalletFactory == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "wallet factory required")
	}
	if params.SessionManager == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "session manager required")
	}
	if params.Rewards.StartingBalance <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "starting balance must be positive")
	}
	return &registerService{
		tx:          params.TxRunner,
		userRepo:    params.UserRepoFactory,
		wallet:      params.WalletFactory,
		session:     params.SessionManager,
		passwordCfg: params.PasswordConfig,
		jwtCfg:      params.JWTConfig,
		rewards:     params.Rewards,
	}, nil
}

// NewRegisterServiceWithDB wires the factories against a live database client.
func NewRegisterServiceWithDB(client *db.Client, walletSvc wallet.Service, sessions sessionManager, passwordCfg config.PasswordConfig, jwtCfg config.JWTConfig, rewards config.RewardsConfig) (RegisterService, error) {
	if client == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "database client required")
	}
	if walletSvc == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "wallet service required")
	}
	return NewRegisterService(RegisterServiceParams{
		TxRunner: client,
		UserRepoFactory: func(tx *gorm.DB) registerUserRepository {
			return users.NewRepository(tx)
		},
		WalletFactory: func(tx *gorm.DB) registerWallet {
			return walletSvc.WithTx(tx)
		},
		SessionManager: sessions,
		PasswordConfig: passwordCfg,
		JWTConfig:      jwtCfg,
		Rewards:        rewards,
	})
}

func (s *registerService) Register(ctx context.Context, req RegisterRequest) (*LoginResponse, error) {
	username := strings.ToLower(strings.TrimSpace(req.Username))
	if username == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "username is required")
	}
	if strings.TrimSpace(req.GameNickname) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "game nickname is required")
	}
	if strings.TrimSpace(req.GameServer) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "game server is required")
	}

	passwordHash, err := security.HashPassword(req.Password, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	var user *models.User
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.userRepo(tx)

		if _, err := repo.FindByUsername(ctx, username); err == nil {
			return pkgerrors.New(pkgerrors.CodeConflict, "username already taken")
		} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check username")
		}

		created, err := repo.Create(ctx, users.CreateUserDTO{
			Username:     username,
			PasswordHash: passwordHash,
			GameNickname: strings.TrimSpace(req.GameNickname),
			GameServer:   strings.TrimSpace(req.GameServer),
		})
		if err != nil {
			if db.IsUniqueViolation(err, "idx_users_username") {
				return pkgerrors.New(pkgerrors.CodeConflict, "username already taken")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create user")
		}

		entry, err := s.wallet(tx).Credit(ctx, wallet.MutationInput{
			UserID:        created.ID,
			Amount:        s.rewards.StartingBalance,
			Type:          enums.WalletEntryTypeStartingBalance,
			TransactionID: uuid.New(),
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "seed starting balance")
		}
		created.Balance = entry.BalanceAfter

		user = created
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.issueRegistrationTokens(ctx, user)
}

func (s *registerService) issueRegistrationTokens(ctx context.Context, user *models.User) (*LoginResponse, error) {
	accessID := session.NewAccessID()
	accessToken, err := pkgAuth.MintAccessToken(s.jwtCfg, time.Now().UTC(), pkgAuth.AccessTokenPayload{
		UserID: user.ID,
		Role:   enums.MemberRolePlayer,
		JTI:    accessID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint jwt")
	}
	refreshToken, err := s.session.Generate(ctx, accessID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "store refresh token")
	}

	return &LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         users.FromModel(user),
	}, nil
}
