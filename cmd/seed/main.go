package main

import (
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"gorm.io/gorm"

	"github.com/frello-ai/backend/config"
	"github.com/frello-ai/backend/internal/database"
	"github.com/frello-ai/backend/internal/models"
	"github.com/frello-ai/backend/internal/service"
)

// Seeds a demo user with a filled-in nutrition profile and prints a token
// for exercising the API locally.
func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	db, err := database.New(cfg)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	if err := database.RunMigrations(db); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}

	user := models.User{Username: "demo", Email: "demo@frello.ai"}
	if err := db.Where("username = ?", user.Username).FirstOrCreate(&user).Error; err != nil {
		log.Fatalf("failed to create demo user: %v", err)
	}

	birthDate := time.Date(1994, 3, 12, 0, 0, 0, 0, time.UTC)
	settings := models.UserSettings{
		UserID:        user.ID,
		Gender:        "женский",
		HeightCm:      167,
		WeightKg:      63,
		BirthDate:     &birthDate,
		ActivityLevel: []string{"Умеренная активность"},
		NutritionGoal: []string{"Поддержание здоровья"},
		MealFrequency: 4,
		Allergies:     []string{"Орехи"},
		DietType:      []string{"Обычное питание"},
		FavoriteFoods: []string{"Рыба", "Овощи"},
	}
	err = db.Where("user_id = ?", user.ID).First(&models.UserSettings{}).Error
	if err == gorm.ErrRecordNotFound {
		if err := db.Create(&settings).Error; err != nil {
			log.Fatalf("failed to create demo settings: %v", err)
		}
	} else if err != nil {
		log.Fatalf("failed to check demo settings: %v", err)
	}

	token, err := service.NewTokenService(cfg.JWTSecret, cfg.TokenTTL).GenerateToken(user.ID, user.Username)
	if err != nil {
		log.Fatalf("failed to issue token: %v", err)
	}

	fmt.Printf("demo user: %s (%s)\n", user.Username, user.ID)
	fmt.Printf("token: %s\n", token)
}
