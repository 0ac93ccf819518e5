package main

import (
	"flag"

	"github.com/aipath-api/internal/config"
	"github.com/aipath-api/internal/constants"
	"github.com/aipath-api/internal/logger"
	"github.com/aipath-api/internal/models"
	"github.com/aipath-api/internal/service"

	"github.com/shopspring/decimal"
)

func main() {
	var userID string
	var userEmail string
	flag.StringVar(&userID, "user", "demo-learner", "种子用户 uid")
	flag.StringVar(&userEmail, "email", "learner@example.com", "种子用户邮箱")
	flag.Parse()

	// 连接数据库
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

	// 自动迁移
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	// 添加课程
	courses := []models.Course{
		{
			ID:            "ai-foundations",
			Title:         "AI Foundations",
			Description:   "Core concepts of machine learning and modern AI systems.",
			Cost:          models.NewNullMoney(decimal.RequireFromString("49.99")),
			AffiliateLink: "https://partner.example/ai-foundations",
			Level:         "Beginner",
			RoleID:        "ai-generalist",
			IsActive:      true,
			SortOrder:     100,
		},
		{
			ID:            "applied-nlp",
			Title:         "Applied NLP",
			Description:   "Tokenization, embeddings and transformer fine-tuning in practice.",
			Cost:          models.NewNullMoney(decimal.RequireFromString("89.00")),
			AffiliateLink: "https://partner.example/applied-nlp",
			Level:         "Intermediate",
			RoleID:        "nlp-engineer",
			IsActive:      true,
			SortOrder:     90,
		},
		{
			ID:          "ml-systems",
			Title:       "ML Systems Design",
			Description: "Serving, monitoring and scaling models in production.",
			Cost:        models.NewNullMoney(decimal.RequireFromString("129.50")),
			Level:       "Advanced",
			RoleID:      "ml-engineer",
			IsActive:    true,
			SortOrder:   80,
		},
		{
			ID:          "ai-ethics-primer",
			Title:       "AI Ethics Primer",
			Description: "Free introduction to responsible AI practice.",
			Level:       "Beginner",
			RoleID:      "ethics-analyst",
			IsActive:    true,
			SortOrder:   70,
		},
	}

	for _, course := range courses {
		var existing models.Course
		if err := models.DB.Where("id = ?", course.ID).First(&existing).Error; err == nil {
			stdLog.Printf("Course already exists: %s", course.ID)
			continue
		}
		if err := models.DB.Create(&course).Error; err != nil {
			stdLog.Printf("Failed to create course %s: %v", course.ID, err)
			continue
		}
		stdLog.Printf("Created course: %s", course.ID)
	}

	// 添加用户
	user := models.User{ID: userID, Email: userEmail, DisplayName: "Demo Learner", Status: constants.UserStatusActive}
	var existingUser models.User
	if err := models.DB.Where("id = ?", user.ID).First(&existingUser).Error; err == nil {
		stdLog.Printf("User already exists: %s", user.ID)
	} else if err := models.DB.Create(&user).Error; err != nil {
		stdLog.Fatalf("Failed to create user %s: %v", user.ID, err)
	} else {
		stdLog.Printf("Created user: %s", user.ID)
	}

	// 输出联调用的用户令牌
	token, expiresAt, err := service.NewUserAuthService(cfg.UserJWT).GenerateUserJWT(user.ID, user.Email, 0)
	if err != nil {
		stdLog.Fatalf("Failed to sign user token: %v", err)
	}
	stdLog.Printf("User token for %s (expires %s): %s", user.ID, expiresAt.Format("2006-01-02 15:04"), token)
	stdLog.Println("Seed completed")
}
