package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"github.com/inkwell-labs/bookstore-api/internal/config"
	"github.com/inkwell-labs/bookstore-api/internal/database"
	"github.com/inkwell-labs/bookstore-api/internal/models"
	"github.com/inkwell-labs/bookstore-api/internal/repositories"
	pkgauth "github.com/inkwell-labs/bookstore-api/pkg/auth"
)

var categoryNames = []string{
	"Fiction", "Science Fiction", "Mystery", "Biography",
	"History", "Science", "Self-Help", "Children",
}

var authorNames = []string{
	"Ursula Hale", "Marcus Webb", "Elena Navarro", "Tomasz Krol",
	"Priya Raman", "Jonah Fields", "Astrid Lund", "Caleb Mercer",
}

var titleWords = []string{
	"Silent", "Garden", "Winter", "Echoes", "Paper", "River",
	"Hollow", "Lantern", "Atlas", "Ember", "Glass", "Harbor",
}

func main() {
	books := flag.Int("books", 40, "number of books to seed")
	accounts := flag.Int("accounts", 10, "number of accounts to seed")
	comments := flag.Int("comments", 60, "number of comments to seed")
	clear := flag.Bool("clear", false, "truncate seeded tables first")
	seed := flag.Int64("seed", 1, "random seed for reproducible data")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	db, err := database.NewConnection(&cfg.Database, logger)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	ctx := context.Background()
	rng := rand.New(rand.NewSource(*seed))

	if *clear {
		if err := truncate(ctx, db); err != nil {
			logger.Error("failed to clear tables", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("tables cleared")
	}

	if err := run(ctx, db, rng, *books, *accounts, *comments, logger); err != nil {
		logger.Error("seeding failed", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("seeding finished",
		slog.Int("books", *books),
		slog.Int("accounts", *accounts),
		slog.Int("comments", *comments))
}

func truncate(ctx context.Context, db *database.DB) error {
	_, err := db.Pool.Exec(ctx, `TRUNCATE TABLE comments, books, categories, accounts RESTART IDENTITY CASCADE`)
	return err
}

func run(ctx context.Context, db *database.DB, rng *rand.Rand, bookCount, accountCount, commentCount int, logger *slog.Logger) error {
	categoryRepo := repositories.NewCategoryRepository(db)
	bookRepo := repositories.NewBookRepository(db)
	accountRepo := repositories.NewAccountRepository(db)
	commentRepo := repositories.NewCommentRepository(db)

	// Seeding twice would trip the unique email and category constraints.
	existing, err := accountRepo.List(ctx, 1, 0)
	if err != nil {
		return fmt.Errorf("failed to check for existing accounts: %w", err)
	}
	if len(existing) > 0 {
		return fmt.Errorf("database already has accounts; rerun with -clear to reseed")
	}

	var categories []*models.Category
	for _, name := range categoryNames {
		created, err := categoryRepo.Create(ctx, &models.Category{Name: name})
		if err != nil {
			return fmt.Errorf("failed to seed category %q: %w", name, err)
		}
		categories = append(categories, created)
	}

	var books []*models.Book
	for i := 0; i < bookCount; i++ {
		title := fmt.Sprintf("The %s %s", titleWords[rng.Intn(len(titleWords))], titleWords[rng.Intn(len(titleWords))])
		photo := fmt.Sprintf("/media/books/%d.jpg", i+1)
		published := time.Date(1990+rng.Intn(35), time.Month(1+rng.Intn(12)), 1+rng.Intn(28), 0, 0, 0, 0, time.UTC)

		created, err := bookRepo.Create(ctx, &models.Book{
			Title:         title,
			AuthorName:    authorNames[rng.Intn(len(authorNames))],
			PublishedDate: &published,
			UnitPrice:     float64(500+rng.Intn(4500)) / 100,
			PhotoPath:     &photo,
			CategoryID:    categories[rng.Intn(len(categories))].ID,
		})
		if err != nil {
			return fmt.Errorf("failed to seed book %d: %w", i+1, err)
		}
		books = append(books, created)
	}

	hash, err := pkgauth.HashPassword("password123")
	if err != nil {
		return fmt.Errorf("failed to hash seed password: %w", err)
	}

	var seededAccounts []*models.Account
	for i := 0; i < accountCount; i++ {
		phone := fmt.Sprintf("555-01%02d", i)
		birthday := time.Date(1970+rng.Intn(35), time.Month(1+rng.Intn(12)), 1+rng.Intn(28), 0, 0, 0, 0, time.UTC)

		created, err := accountRepo.Create(ctx, &models.Account{
			Email:        fmt.Sprintf("reader%d@example.com", i+1),
			PasswordHash: hash,
			FullName:     fmt.Sprintf("Reader %d", i+1),
			Phone:        &phone,
			Birthday:     &birthday,
			IsActive:     true,
		})
		if err != nil {
			return fmt.Errorf("failed to seed account %d: %w", i+1, err)
		}
		seededAccounts = append(seededAccounts, created)
	}

	if len(books) == 0 || len(seededAccounts) == 0 {
		return nil
	}

	seeded := 0
	for _, account := range seededAccounts {
		perAccount := (commentCount + len(seededAccounts) - 1) / len(seededAccounts)
		// Each account reviews distinct books; the unique constraint
		// forbids a second review of the same one.
		for _, bookIdx := range rng.Perm(len(books))[:min(perAccount, len(books))] {
			if seeded >= commentCount {
				return nil
			}
			content := fmt.Sprintf("Review %d: worth a read.", seeded+1)
			_, err := commentRepo.Create(ctx, &models.Comment{
				Rating:    1 + rng.Intn(5),
				Content:   &content,
				AccountID: account.ID,
				BookID:    books[bookIdx].ID,
			})
			if err != nil {
				return fmt.Errorf("failed to seed comment: %w", err)
			}
			seeded++
		}
	}

	logger.Info("seeded comments", slog.Int("count", seeded))
	return nil
}
