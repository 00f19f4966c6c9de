package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"penpal/backend/internal/auth"
	"penpal/backend/internal/config"
	"penpal/backend/internal/db"
	"penpal/backend/internal/models"
	"penpal/backend/internal/storage"

	"github.com/joho/godotenv"
)

var defaultLanguages = []models.Language{
	{Name: "English", Code: "en"},
	{Name: "Spanish", Code: "es"},
	{Name: "French", Code: "fr"},
	{Name: "German", Code: "de"},
	{Name: "Italian", Code: "it"},
	{Name: "Portuguese", Code: "pt"},
	{Name: "Japanese", Code: "ja"},
	{Name: "Korean", Code: "ko"},
	{Name: "Chinese", Code: "zh"},
	{Name: "Ukrainian", Code: "uk"},
}

const usage = `Usage: admin <command> [args]
  seed-languages
  create-user <username> <email> <native-code> [learning-code...]
  set-available <username> on|off
  token <username> [hours]
  close-room <room_id>`

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	if len(os.Args) < 2 {
		fmt.Println(usage)
		os.Exit(1)
	}

	gdb, err := db.Open(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}
	if err := db.Migrate(gdb); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}
	storageSvc := storage.NewStorageService(gdb, nil) // No redis needed for admin CLI
	ctx := context.Background()

	args := os.Args[2:]
	switch os.Args[1] {
	case "seed-languages":
		n, err := seedLanguages(ctx, storageSvc)
		if err != nil {
			log.Fatalf("Error seeding languages: %v", err)
		}
		fmt.Printf("%d languages available.\n", n)
	case "create-user":
		if len(args) < 3 {
			fmt.Println("Usage: admin create-user <username> <email> <native-code> [learning-code...]")
			os.Exit(1)
		}
		user, err := createUser(ctx, storageSvc, args[0], args[1], args[2], args[3:])
		if err != nil {
			log.Fatalf("Error creating user: %v", err)
		}
		fmt.Printf("User %s created (ID: %s).\n", user.Username, user.ID)
	case "set-available":
		if len(args) != 2 || (args[1] != "on" && args[1] != "off") {
			fmt.Println("Usage: admin set-available <username> on|off")
			os.Exit(1)
		}
		if err := setAvailable(ctx, storageSvc, args[0], args[1] == "on"); err != nil {
			log.Fatalf("Error updating availability: %v", err)
		}
		fmt.Printf("User %s is now %s.\n", args[0], args[1])
	case "token":
		if len(args) < 1 {
			fmt.Println("Usage: admin token <username> [hours]")
			os.Exit(1)
		}
		ttl := cfg.TokenTTL
		if len(args) > 1 {
			hours, err := strconv.Atoi(args[1])
			if err != nil || hours <= 0 {
				fmt.Println("Invalid duration. Please provide a positive integer.")
				os.Exit(1)
			}
			ttl = time.Duration(hours) * time.Hour
		}
		user, err := storageSvc.GetUserByUsername(ctx, args[0])
		if err != nil {
			log.Fatalf("Error loading user %s: %v", args[0], err)
		}
		token, err := auth.IssueToken(cfg.JWTSecret, user, ttl)
		if err != nil {
			log.Fatalf("Error issuing token: %v", err)
		}
		fmt.Println(token)
	case "close-room":
		if len(args) != 1 {
			fmt.Println("Usage: admin close-room <room_id>")
			os.Exit(1)
		}
		if err := storageSvc.CloseRoom(ctx, args[0]); err != nil {
			log.Fatalf("Error closing room: %v", err)
		}
		fmt.Printf("Room %s has been closed.\n", args[0])
	default:
		fmt.Println("Unknown command")
		fmt.Println(usage)
		os.Exit(1)
	}
}

func seedLanguages(ctx context.Context, s storage.Storage) (int, error) {
	for _, l := range defaultLanguages {
		lang := l
		if err := s.SaveLanguage(ctx, &lang); err != nil {
			return 0, fmt.Errorf("save %s: %w", l.Code, err)
		}
	}
	return len(defaultLanguages), nil
}

func createUser(ctx context.Context, s storage.Storage, username, email, nativeCode string, learningCodes []string) (*models.User, error) {
	native, err := s.GetLanguageByCode(ctx, nativeCode)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("unknown language %q (run seed-languages first)", nativeCode)
	}
	if err != nil {
		return nil, err
	}

	profile := models.NewUserProfile()
	profile.NativeLanguageID = &native.ID
	for _, code := range learningCodes {
		l, err := s.GetLanguageByCode(ctx, code)
		if err != nil {
			return nil, fmt.Errorf("learning language %q: %w", code, err)
		}
		profile.LearningLanguages = append(profile.LearningLanguages, *l)
	}

	user := &models.User{Username: username, Email: email, Profile: profile}
	if err := s.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func setAvailable(ctx context.Context, s storage.Storage, username string, available bool) error {
	user, err := s.GetUserByUsername(ctx, username)
	if err != nil {
		return err
	}
	profile, err := s.GetProfile(ctx, user.ID)
	if err != nil {
		return err
	}
	profile.IsAvailable = available
	return s.UpdateProfile(ctx, profile)
}
