// Package cli implements the shelfwise command line subcommands.
package cli

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/shelfwise/shelfwise/internal/auth"
	"github.com/shelfwise/shelfwise/internal/config"
	"github.com/shelfwise/shelfwise/internal/database"
	"github.com/shelfwise/shelfwise/internal/database/catalog"
	"github.com/shelfwise/shelfwise/internal/entities"
)

// sampleCatalog is the starter collection loaded by the seed command.
var sampleCatalog = []entities.Book{
	{
		Title:           "Introduction to Algorithms",
		Author:          "Thomas H. Cormen",
		ISBN:            "9780262033848",
		Category:        "Computer Science",
		TotalCopies:     5,
		AvailableCopies: 5,
	},
	{
		Title:           "Clean Code",
		Author:          "Robert C. Martin",
		ISBN:            "9780132350884",
		Category:        "Software Engineering",
		TotalCopies:     3,
		AvailableCopies: 3,
	},
	{
		Title:           "Data Structures and Algorithms",
		Author:          "Alfred V. Aho",
		ISBN:            "9780201000238",
		Category:        "Computer Science",
		TotalCopies:     4,
		AvailableCopies: 4,
	},
	{
		Title:           "Design Patterns",
		Author:          "Gang of Four",
		ISBN:            "9780201633610",
		Category:        "Software Engineering",
		TotalCopies:     2,
		AvailableCopies: 2,
	},
}

// SeedCommand loads the sample catalog and creates the first librarian
// account.
type SeedCommand struct {
	DatabasePath      string
	LibrarianEmail    string
	LibrarianName     string
	LibrarianPassword string
	SkipCatalog       bool
}

func NewSeedCommand() *SeedCommand {
	return &SeedCommand{}
}

func (cmd *SeedCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("seed", flag.ExitOnError)

	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the database file")
	fs.StringVar(&cmd.LibrarianEmail, "email", "", "Email for the first librarian account (required)")
	fs.StringVar(&cmd.LibrarianName, "name", "Librarian", "Display name for the librarian account")
	fs.StringVar(&cmd.LibrarianPassword, "password", "", "Password for the librarian account (required, min 12 characters)")
	fs.BoolVar(&cmd.SkipCatalog, "skip-catalog", false, "Only create the librarian account, skip the sample catalog")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s seed -email <email> -password <password> [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Load the sample catalog and create the first librarian account.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if cmd.LibrarianEmail == "" {
		return fmt.Errorf("required flag -email not provided")
	}
	if cmd.LibrarianPassword == "" {
		return fmt.Errorf("required flag -password not provided")
	}

	return nil
}

func (cmd *SeedCommand) Run() error {
	db, err := database.NewDatabase(cmd.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	cfg := config.NewConfig()
	authService := auth.NewService(db.DB, cfg.Auth)

	_, err = authService.Register(auth.RegisterParams{
		Email:    cmd.LibrarianEmail,
		Name:     cmd.LibrarianName,
		Password: cmd.LibrarianPassword,
		Role:     entities.UserRoleLibrarian,
	})
	switch {
	case errors.Is(err, auth.ErrUserExists):
		fmt.Printf("Librarian account %s already exists, skipping\n", cmd.LibrarianEmail)
	case err != nil:
		return fmt.Errorf("failed to create librarian account: %w", err)
	default:
		fmt.Printf("Created librarian account %s\n", cmd.LibrarianEmail)
	}

	if cmd.SkipCatalog {
		return nil
	}

	repo := catalog.NewRepository(db.DB)
	existing, err := repo.List()
	if err != nil {
		return fmt.Errorf("failed to read catalog: %w", err)
	}
	if len(existing) > 0 {
		fmt.Printf("Catalog already has %d books, skipping sample data\n", len(existing))
		return nil
	}

	for _, book := range sampleCatalog {
		if _, err := repo.Add(&book); err != nil {
			return fmt.Errorf("failed to seed book %q: %w", book.Title, err)
		}
		fmt.Printf("Added %q by %s (%d copies)\n", book.Title, book.Author, book.TotalCopies)
	}

	fmt.Printf("Seeded %d books\n", len(sampleCatalog))
	return nil
}
