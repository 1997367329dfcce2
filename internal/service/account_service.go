package service

import (
	"net/mail"
	"regexp"
	"strings"
	"sync"

	"github.com/shopizen/internal/config"
	"github.com/shopizen/internal/constants"
	"github.com/shopizen/internal/kvstore"
	"github.com/shopizen/internal/logger"
	"github.com/shopizen/internal/models"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var mobilePattern = regexp.MustCompile(`^\+?[0-9]{10,15}$`)

// RegisterInput 注册参数
type RegisterInput struct {
	Name     string
	Email    string
	Mobile   string
	Password string
	Role     string
}

// AccountOptions 账号服务参数
type AccountOptions struct {
	PasswordPolicy config.PasswordPolicyConfig
	EmailPolicy    SessionPolicy // 邮箱密码登录的会话策略
	MobilePolicy   SessionPolicy // 手机号登录的会话策略
	Clock          Clock
}

// AccountService 本地账号注册表，所有客户端共享
type AccountService struct {
	store kvstore.Store
	opts  AccountOptions

	mu sync.Mutex
}

// NewAccountService 创建账号服务
func NewAccountService(store kvstore.Store, opts AccountOptions) *AccountService {
	return &AccountService{store: store, opts: opts}
}

// Register 注册邮箱密码账号
func (s *AccountService) Register(input RegisterInput) (models.Account, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return models.Account{}, ErrNameRequired
	}
	email, err := normalizeEmail(input.Email)
	if err != nil {
		return models.Account{}, err
	}
	mobile := strings.TrimSpace(input.Mobile)
	if mobile != "" && !mobilePattern.MatchString(mobile) {
		return models.Account{}, ErrInvalidMobile
	}
	if err := validatePassword(s.opts.PasswordPolicy, input.Password); err != nil {
		return models.Account{}, err
	}
	role := strings.TrimSpace(input.Role)
	if role == "" {
		role = constants.RoleUser
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return models.Account{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	accounts, err := s.loadLocked()
	if err != nil {
		return models.Account{}, err
	}
	for _, account := range accounts {
		if strings.EqualFold(account.Email, email) {
			return models.Account{}, ErrEmailExists
		}
	}
	account := models.Account{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		Mobile:       mobile,
		Role:         role,
		PasswordHash: string(hashed),
		CreatedAt:    s.opts.Clock.now(),
	}
	if err := saveList(s.store, constants.AccountRegistryKey, append(accounts, account)); err != nil {
		return models.Account{}, err
	}
	logger.Infow("account_registered", "account_id", account.ID, "role", role)
	return sanitizeAccount(account), nil
}

// AuthenticateEmail 校验邮箱密码，返回会话身份与会话策略
func (s *AccountService) AuthenticateEmail(email, password string) (models.Identity, SessionPolicy, error) {
	normalized, err := normalizeEmail(email)
	if err != nil {
		return models.Identity{}, SessionPolicy{}, ErrInvalidCredentials
	}
	s.mu.Lock()
	accounts, err := s.loadLocked()
	s.mu.Unlock()
	if err != nil {
		return models.Identity{}, SessionPolicy{}, err
	}
	for _, account := range accounts {
		if !strings.EqualFold(account.Email, normalized) || account.PasswordHash == "" {
			continue
		}
		if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
			break
		}
		return account.Identity(), s.opts.EmailPolicy, nil
	}
	logger.Warnw("account_login_failed", "method", "email")
	return models.Identity{}, SessionPolicy{}, ErrInvalidCredentials
}

// AuthenticateMobile 手机号登录，账号不存在时自动创建
func (s *AccountService) AuthenticateMobile(mobile string) (models.Identity, SessionPolicy, error) {
	mobile = strings.TrimSpace(mobile)
	if !mobilePattern.MatchString(mobile) {
		return models.Identity{}, SessionPolicy{}, ErrInvalidMobile
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	accounts, err := s.loadLocked()
	if err != nil {
		return models.Identity{}, SessionPolicy{}, err
	}
	for _, account := range accounts {
		if account.Mobile == mobile {
			return account.Identity(), s.opts.MobilePolicy, nil
		}
	}
	account := models.Account{
		ID:        uuid.NewString(),
		Mobile:    mobile,
		Role:      constants.RoleUser,
		CreatedAt: s.opts.Clock.now(),
	}
	if err := saveList(s.store, constants.AccountRegistryKey, append(accounts, account)); err != nil {
		return models.Identity{}, SessionPolicy{}, err
	}
	logger.Infow("account_created_by_mobile", "account_id", account.ID)
	return account.Identity(), s.opts.MobilePolicy, nil
}

// EnsureDefaultAdmin 不存在任何管理员时创建默认管理员
func (s *AccountService) EnsureDefaultAdmin(cfg config.AdminConfig) error {
	if strings.TrimSpace(cfg.Email) == "" || cfg.Password == "" {
		return nil
	}
	s.mu.Lock()
	accounts, err := s.loadLocked()
	s.mu.Unlock()
	if err != nil {
		return err
	}
	for _, account := range accounts {
		if account.Role == constants.RoleAdmin {
			return nil
		}
	}
	name := strings.TrimSpace(cfg.Name)
	if name == "" {
		name = "Admin"
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(cfg.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	email, err := normalizeEmail(cfg.Email)
	if err != nil {
		return err
	}
	account := models.Account{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		Role:         constants.RoleAdmin,
		PasswordHash: string(hashed),
		CreatedAt:    s.opts.Clock.now(),
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	accounts, err = s.loadLocked()
	if err != nil {
		return err
	}
	if err := saveList(s.store, constants.AccountRegistryKey, append(accounts, account)); err != nil {
		return err
	}
	logger.Infow("account_default_admin_created", "email", email)
	return nil
}

// List 账号列表（不含密码哈希）
func (s *AccountService) List() ([]models.Account, error) {
	s.mu.Lock()
	accounts, err := s.loadLocked()
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	result := make([]models.Account, 0, len(accounts))
	for _, account := range accounts {
		result = append(result, sanitizeAccount(account))
	}
	return result, nil
}

func (s *AccountService) loadLocked() ([]models.Account, error) {
	return loadList[models.Account](s.store, constants.AccountRegistryKey, "account_registry_decode_failed")
}

func sanitizeAccount(account models.Account) models.Account {
	account.PasswordHash = ""
	return account
}

func normalizeEmail(email string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(email))
	if normalized == "" {
		return "", ErrInvalidEmail
	}
	parsed, err := mail.ParseAddress(normalized)
	if err != nil || parsed.Address != normalized {
		return "", ErrInvalidEmail
	}
	return normalized, nil
}
