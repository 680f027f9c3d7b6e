package service

import (
	"CloudVault/config"
	"CloudVault/internal/dto"
	"CloudVault/internal/errs"
	"CloudVault/internal/repo"
	"CloudVault/model"
	"CloudVault/utils"
	"context"
	"errors"
	"log"
	"strings"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

const (
	minPasswordLen   = 6
	userCodeAttempts = 10
)

var validate = validator.New()

// Register creates an account and signs the caller in.
func Register(ctx context.Context, req dto.RegisterRequest) (*dto.AuthResponse, error) {
	user, err := createUser(ctx, req.Username, req.Email, req.Password, model.RoleUser)
	if err != nil {
		return nil, err
	}
	return authResponse(user)
}

func createUser(ctx context.Context, username, email, password, role string) (*model.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(strings.ToLower(email))
	if username == "" || email == "" || password == "" {
		return nil, errs.Validation("username, email and password are required")
	}
	if err := validate.Var(email, "email"); err != nil {
		return nil, errs.Validation("invalid email address")
	}
	if len(password) < minPasswordLen {
		return nil, errs.Validation("password must be at least 6 characters")
	}
	hash, err := utils.GetPwd(password)
	if err != nil {
		return nil, errs.Internal("hash password", err)
	}

	user := &model.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
	}
	err = repo.Db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return errs.Conflict("username already taken")
		}
		if err := tx.Model(&model.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return errs.Conflict("email already registered")
		}
		code, err := newUserCode(tx)
		if err != nil {
			return err
		}
		user.UserCode = code
		return tx.Create(user).Error
	})
	if err != nil {
		return nil, errs.FromDB(err, "username or email already taken")
	}
	return user, nil
}

// newUserCode draws codes until one is unused.
func newUserCode(tx *gorm.DB) (string, error) {
	for i := 0; i < userCodeAttempts; i++ {
		code := utils.GenUserCode()
		var count int64
		if err := tx.Model(&model.User{}).Where("user_code = ?", code).Count(&count).Error; err != nil {
			return "", err
		}
		if count == 0 {
			return code, nil
		}
	}
	return "", errs.Internal("could not allocate a user code", nil)
}

// Login checks credentials; identifier may be a username or an email.
func Login(ctx context.Context, req dto.LoginRequest) (*dto.AuthResponse, error) {
	identifier := strings.TrimSpace(req.Username)
	if identifier == "" || req.Password == "" {
		return nil, errs.Validation("username and password are required")
	}
	var user model.User
	err := repo.Db.WithContext(ctx).
		Where("username = ? OR email = ?", identifier, strings.ToLower(identifier)).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.Unauthenticated("invalid username or password")
		}
		return nil, errs.FromDB(err, "")
	}
	// 使用 bcrypt 验证密码
	if !utils.CheckPwd(req.Password, user.PasswordHash) {
		return nil, errs.Unauthenticated("invalid username or password")
	}
	return authResponse(&user)
}

func authResponse(user *model.User) (*dto.AuthResponse, error) {
	token, err := utils.GenerateToken(user.ID, user.Username)
	if err != nil {
		return nil, errs.Internal("sign token", err)
	}
	return &dto.AuthResponse{User: dto.NewUserView(user), Token: token}, nil
}

// GetUser returns a user by id.
func GetUser(ctx context.Context, id uint64) (*model.User, error) {
	var user model.User
	if err := repo.Db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, errs.FromDB(err, "user not found")
	}
	return &user, nil
}

// BootstrapAdmin creates the configured admin account on first start.
// It reports whether an account was created.
func BootstrapAdmin(ctx context.Context) (bool, error) {
	cfg := config.AppConfig
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		return false, nil
	}
	var count int64
	if err := repo.Db.WithContext(ctx).Model(&model.User{}).
		Where("email = ?", strings.ToLower(cfg.AdminEmail)).Count(&count).Error; err != nil {
		return false, errs.FromDB(err, "")
	}
	if count > 0 {
		return false, nil
	}
	username := cfg.AdminUsername
	if username == "" {
		username = "admin"
	}
	if _, err := createUser(ctx, username, cfg.AdminEmail, cfg.AdminPassword, model.RoleAdmin); err != nil {
		return false, err
	}
	log.Printf("service: admin account %s created", username)
	return true, nil
}
