// Command generate_demo creates a demo database with a sample catalog,
// accounts and reservations in every lifecycle state.
// Usage: go run cmd/generate_demo/main.go [-db path/to/demo.db]
package main

import (
	"flag"
	"log"
	"os"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/shelfwise/shelfwise/internal/auth"
	"github.com/shelfwise/shelfwise/internal/config"
	"github.com/shelfwise/shelfwise/internal/database"
	"github.com/shelfwise/shelfwise/internal/database/catalog"
	"github.com/shelfwise/shelfwise/internal/database/reservations"
	"github.com/shelfwise/shelfwise/internal/entities"
	"github.com/shelfwise/shelfwise/internal/services"
)

const defaultDemoDatabasePath = "./demo/demo.db"

// DemoPassword is shared by every demo account.
const DemoPassword = "demo-password-123"

func main() {
	dbPath := flag.String("db", defaultDemoDatabasePath, "path to the demo database file")
	flag.Parse()

	log.Printf("Generating demo database at %s...", *dbPath)

	// Delete existing demo database to start fresh
	if err := os.Remove(*dbPath); err != nil && !os.IsNotExist(err) {
		log.Fatalf("Failed to remove existing demo database: %v", err)
	}

	db, err := database.NewDatabase(*dbPath)
	if err != nil {
		log.Fatalf("Failed to create database: %v", err)
	}
	defer db.Close()

	users := createAccounts(db)
	books := createCatalog(db)
	createReservations(db, users, books)

	log.Println("Demo database generated successfully!")
	log.Printf("All accounts use the password %q", DemoPassword)
}

func createAccounts(db *database.Database) map[string]*entities.User {
	service := auth.NewService(db.DB, config.Auth{BcryptCost: bcrypt.DefaultCost})

	accounts := []auth.RegisterParams{
		{Email: "librarian@demo.local", Name: "Dana Librarian", Role: entities.UserRoleLibrarian},
		{Email: "alice@demo.local", Name: "Alice Student", Role: entities.UserRoleStudent, StudentID: "S-1001"},
		{Email: "bob@demo.local", Name: "Bob Student", Role: entities.UserRoleStudent, StudentID: "S-1002"},
	}

	users := make(map[string]*entities.User)
	for _, params := range accounts {
		params.Password = DemoPassword
		user, err := service.Register(params)
		if err != nil {
			log.Fatalf("Failed to create account %s: %v", params.Email, err)
		}
		log.Printf("Created %s account: %s", user.Role, user.Email)
		users[params.Email] = user
	}
	return users
}

func createCatalog(db *database.Database) map[string]*entities.Book {
	repo := catalog.NewRepository(db.DB)

	demoBooks := []entities.Book{
		{
			Title:           "Introduction to Algorithms",
			Author:          "Thomas H. Cormen",
			ISBN:            "9780262033848",
			Category:        "Computer Science",
			Description:     "A comprehensive textbook covering a broad range of algorithms in depth.",
			PublicationYear: 2009,
			TotalCopies:     5,
			AvailableCopies: 5,
		},
		{
			Title:           "Clean Code",
			Author:          "Robert C. Martin",
			ISBN:            "9780132350884",
			Category:        "Software Engineering",
			Description:     "A handbook of agile software craftsmanship.",
			PublicationYear: 2008,
			TotalCopies:     3,
			AvailableCopies: 3,
		},
		{
			Title:           "Data Structures and Algorithms",
			Author:          "Alfred V. Aho",
			ISBN:            "9780201000238",
			Category:        "Computer Science",
			PublicationYear: 1983,
			TotalCopies:     4,
			AvailableCopies: 4,
		},
		{
			Title:           "Design Patterns",
			Author:          "Gang of Four",
			ISBN:            "9780201633610",
			Category:        "Software Engineering",
			Description:     "Elements of reusable object-oriented software.",
			PublicationYear: 1994,
			TotalCopies:     2,
			AvailableCopies: 2,
		},
		{
			Title:           "The Pragmatic Programmer",
			Author:          "Andrew Hunt",
			ISBN:            "9780201616224",
			Category:        "Software Engineering",
			PublicationYear: 1999,
			TotalCopies:     1,
			AvailableCopies: 1,
		},
	}

	books := make(map[string]*entities.Book)
	for i := range demoBooks {
		book, err := repo.Add(&demoBooks[i])
		if err != nil {
			log.Fatalf("Failed to add book %q: %v", demoBooks[i].Title, err)
		}
		log.Printf("Added: %s by %s (%d copies)", book.Title, book.Author, book.TotalCopies)
		books[book.Title] = book
	}
	return books
}

// createReservations walks a few reservations through their lifecycle so
// the demo shows pending, approved, rejected, returned and overdue states.
func createReservations(db *database.Database, users map[string]*entities.User, books map[string]*entities.Book) {
	catalogRepo := catalog.NewRepository(db.DB)
	ledger := reservations.NewRepository(db.DB)
	coordinator := services.NewCoordinator(catalogRepo, ledger, 0)

	alice := users["alice@demo.local"]
	bob := users["bob@demo.local"]

	// Pending request awaiting librarian review
	if _, err := coordinator.Reserve(books["Clean Code"].ID, alice.ID); err != nil {
		log.Fatalf("Failed to create pending reservation: %v", err)
	}

	// Approved loan with a copy checked out
	loan, err := coordinator.Reserve(books["Introduction to Algorithms"].ID, bob.ID)
	if err != nil {
		log.Fatalf("Failed to create reservation: %v", err)
	}
	if _, err := coordinator.Approve(loan.ID); err != nil {
		log.Fatalf("Failed to approve reservation: %v", err)
	}

	// Rejected request
	rejected, err := coordinator.Reserve(books["Design Patterns"].ID, alice.ID)
	if err != nil {
		log.Fatalf("Failed to create reservation: %v", err)
	}
	if _, err := coordinator.Reject(rejected.ID); err != nil {
		log.Fatalf("Failed to reject reservation: %v", err)
	}

	// Completed loan: approved then returned
	done, err := coordinator.Reserve(books["Data Structures and Algorithms"].ID, alice.ID)
	if err != nil {
		log.Fatalf("Failed to create reservation: %v", err)
	}
	if _, err := coordinator.Approve(done.ID); err != nil {
		log.Fatalf("Failed to approve reservation: %v", err)
	}
	if _, err := coordinator.Return(done.ID); err != nil {
		log.Fatalf("Failed to return reservation: %v", err)
	}

	// Overdue loan: approved, then the due date forced into the past so
	// the overdue scan has something to flag
	late, err := coordinator.Reserve(books["The Pragmatic Programmer"].ID, bob.ID)
	if err != nil {
		log.Fatalf("Failed to create reservation: %v", err)
	}
	if _, err := coordinator.Approve(late.ID); err != nil {
		log.Fatalf("Failed to approve reservation: %v", err)
	}
	pastDue := time.Now().Add(-72 * time.Hour)
	if err := db.DB.Model(&entities.Reservation{}).Where("id = ?", late.ID).Update("due_date", pastDue).Error; err != nil {
		log.Fatalf("Failed to backdate due date: %v", err)
	}

	log.Println("Created reservations across all lifecycle states")
}
