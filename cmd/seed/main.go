package main

import (
	"errors"

	"github.com/shopizen/internal/authz"
	"github.com/shopizen/internal/config"
	"github.com/shopizen/internal/constants"
	"github.com/shopizen/internal/kvstore"
	"github.com/shopizen/internal/logger"
	"github.com/shopizen/internal/models"
	"github.com/shopizen/internal/service"
)

type seedAccount struct {
	input service.RegisterInput
	roles []string
}

func main() {
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}
	if err := models.AutoMigrate(models.DB); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	store, err := kvstore.Open(cfg.Storage, models.DB)
	if err != nil {
		stdLog.Fatalf("Failed to open store: %v", err)
	}

	authzService, err := authz.NewService(models.DB)
	if err != nil {
		stdLog.Fatalf("Failed to init authz: %v", err)
	}
	if err := authzService.BootstrapBuiltinRoles(); err != nil {
		stdLog.Fatalf("Failed to bootstrap roles: %v", err)
	}

	accounts := service.NewAccountService(store, service.AccountOptions{PasswordPolicy: cfg.Security.PasswordPolicy})
	if err := accounts.EnsureDefaultAdmin(cfg.Admin); err != nil {
		stdLog.Fatalf("Failed to seed admin: %v", err)
	}

	// 演示账号，重复执行时跳过已存在的邮箱
	seeds := []seedAccount{
		{
			input: service.RegisterInput{Name: "Demo Shopper", Email: "shopper@shopizen.local", Mobile: "+919812345678", Password: "Shopper@2024", Role: constants.RoleUser},
		},
		{
			input: service.RegisterInput{Name: "Support Desk", Email: "support@shopizen.local", Password: "Support@2024", Role: constants.RoleUser},
			roles: []string{"support"},
		},
	}
	for _, seed := range seeds {
		account, err := accounts.Register(seed.input)
		if err != nil {
			if errors.Is(err, service.ErrEmailExists) {
				stdLog.Printf("Account %s already exists, skipped", seed.input.Email)
				continue
			}
			stdLog.Fatalf("Failed to seed account %s: %v", seed.input.Email, err)
		}
		if len(seed.roles) > 0 {
			identity := account.Identity()
			if err := authzService.SetAccountRoles(models.IdentityKey(&identity), seed.roles); err != nil {
				stdLog.Fatalf("Failed to bind roles for %s: %v", seed.input.Email, err)
			}
		}
		stdLog.Printf("Seeded account %s", seed.input.Email)
	}

	stdLog.Printf("Seed completed")
}
