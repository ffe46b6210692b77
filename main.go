package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"syscall"

	"catalog-cli/library"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var dataDir string

func main() {
	root := &cobra.Command{
		Use:           "catalog-cli",
		Short:         "Manage a small library's catalog, accounts, and reservations",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInteractive()
		},
	}
	root.PersistentFlags().StringVar(&dataDir, "dir", ".",
		"directory holding books.txt, users.txt and reservations.txt")

	root.AddCommand(&cobra.Command{
		Use:   "export",
		Short: "Dump the catalog and reservations as JSON to stdout",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport()
		},
	})

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// openLibrary loads the catalog, then the accounts and reservations, in the
// same order the program has always started up.
func openLibrary() (*library.Library, error) {
	lib, err := library.New(dataDir)
	if err != nil {
		return nil, err
	}
	if err := lib.LoadUsers(); err != nil {
		return nil, err
	}
	if err := lib.LoadReservations(); err != nil {
		return nil, err
	}
	return lib, nil
}

func runExport() error {
	lib, err := openLibrary()
	if err != nil {
		return err
	}
	dump := struct {
		Books        []library.Book        `json:"books"`
		Reservations []library.Reservation `json:"reservations"`
	}{lib.Items(), lib.Reservations()}

	out, err := json.MarshalIndent(dump, "", "  ")
	if err != nil {
		return fmt.Errorf("encode export: %w", err)
	}
	fmt.Println(string(out))
	return nil
}

// readPassword securely reads a password with masking.
func readPassword(prompt string) (string, error) {
	fmt.Print(prompt)
	bytePassword, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		return "", err
	}
	fmt.Println() // Add newline after password input
	return strings.TrimSpace(string(bytePassword)), nil
}

// promptLine prints prompt and reads one trimmed line. The second return is
// false when stdin is closed.
func promptLine(sc *bufio.Scanner, prompt string) (string, bool) {
	fmt.Print(prompt)
	if !sc.Scan() {
		return "", false
	}
	return strings.TrimSpace(sc.Text()), true
}

// promptInt reads one line and parses it as an integer. Non-numeric input
// yields -1, which no menu or book ID accepts, so the caller's range check
// turns it into a retry.
func promptInt(sc *bufio.Scanner, prompt string) (int, bool) {
	text, ok := promptLine(sc, prompt)
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(text)
	if err != nil {
		return -1, true
	}
	return n, true
}

func runInteractive() error {
	lib, err := openLibrary()
	if err != nil {
		return err
	}
	sc := bufio.NewScanner(os.Stdin)

	fmt.Println("Welcome to the library!")
	for {
		fmt.Println("\n---- Main Menu ----")
		fmt.Println("1. Log in")
		fmt.Println("2. Register")
		fmt.Println("3. Browse as guest")
		fmt.Println("4. Exit")
		choice, ok := promptInt(sc, "Choice: ")
		if !ok {
			break
		}
		switch choice {
		case 1:
			handleLogin(sc, lib)
		case 2:
			handleRegister(sc, lib)
		case 3:
			guestMenu(sc, lib)
		case 4:
			if err := lib.Save(); err != nil {
				fmt.Fprintf(os.Stderr, "Error saving data: %v\n", err)
			}
			fmt.Println("Thank you for using the library!")
			return nil
		default:
			fmt.Println("Choice must be a number from 1 to 4.")
		}
	}
	// stdin closed; save what we have
	return lib.Save()
}

func handleRegister(sc *bufio.Scanner, lib *library.Library) {
	name, ok := promptLine(sc, "Name: ")
	if !ok || name == "" {
		return
	}
	password, err := readPassword(fmt.Sprintf("Enter password for %s: ", name))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading password: %v\n", err)
		return
	}
	if err := lib.Register(name, password); err != nil {
		fmt.Fprintf(os.Stderr, "Error registering: %v\n", err)
		return
	}
	fmt.Printf("Account '%s' registered.\n", name)
}

func handleLogin(sc *bufio.Scanner, lib *library.Library) {
	name, ok := promptLine(sc, "Name: ")
	if !ok {
		return
	}
	password, err := readPassword("Password: ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading password: %v\n", err)
		return
	}
	session, err := lib.Login(name, password)
	if err != nil {
		fmt.Println("Login failed: invalid name or password.")
		return
	}
	fmt.Printf("Welcome back, %s!\n", session.Name)
	userMenu(sc, lib, session)
}

func userMenu(sc *bufio.Scanner, lib *library.Library, session library.Session) {
	for {
		fmt.Printf("\n---- Member Menu (%s) ----\n", session.Name)
		fmt.Println("1. List all books")
		fmt.Println("2. List available books")
		fmt.Println("3. Filter by category")
		fmt.Println("4. Reserve a book")
		fmt.Println("5. My reservations")
		fmt.Println("6. Cancel a reservation")
		fmt.Println("7. Log out")
		choice, ok := promptInt(sc, "Choice: ")
		if !ok {
			return
		}
		switch choice {
		case 1:
			printBooks(lib.Items())
		case 2:
			printBooks(lib.AvailableItems())
		case 3:
			handleFilter(sc, lib)
		case 4:
			handleReserve(sc, lib, session)
		case 5:
			handleMyReservations(lib, session)
		case 6:
			handleCancel(sc, lib, session)
		case 7:
			fmt.Println("Logged out.")
			return
		default:
			fmt.Println("Choice must be a number from 1 to 7.")
		}
	}
}

func guestMenu(sc *bufio.Scanner, lib *library.Library) {
	for {
		fmt.Println("\n---- Guest Menu ----")
		fmt.Println("1. List all books")
		fmt.Println("2. List available books")
		fmt.Println("3. Filter by category")
		fmt.Println("4. Reserve a book")
		fmt.Println("5. Back to main menu")
		choice, ok := promptInt(sc, "Choice: ")
		if !ok {
			return
		}
		switch choice {
		case 1:
			printBooks(lib.Items())
		case 2:
			printBooks(lib.AvailableItems())
		case 3:
			handleFilter(sc, lib)
		case 4:
			// Reserving requires an account; the model reports it.
			handleReserve(sc, lib, library.Session{})
		case 5:
			return
		default:
			fmt.Println("Choice must be a number from 1 to 5.")
		}
	}
}

func handleFilter(sc *bufio.Scanner, lib *library.Library) {
	query, ok := promptLine(sc, "Category: ")
	if !ok {
		return
	}
	books := lib.FilterByCategory(query)
	if len(books) == 0 {
		fmt.Printf("No books found in category '%s'.\n", query)
		return
	}
	printBooks(books)
}

func handleReserve(sc *bufio.Scanner, lib *library.Library, session library.Session) {
	printBooks(lib.AvailableItems())
	id, ok := promptInt(sc, "Book ID: ")
	if !ok {
		return
	}
	res, err := lib.Reserve(session, id)
	switch {
	case err == nil:
		book, _ := lib.Item(res.ItemID)
		fmt.Printf("Reserved '%s'. Please pick it up by %s.\n",
			book.Title, res.DueAt.Format(library.DateLayout))
	case errors.Is(err, library.ErrNotLoggedIn):
		fmt.Println("You must be logged in to reserve a book. Please register or log in first.")
	case errors.Is(err, library.ErrItemNotFound):
		fmt.Printf("No book with ID %d.\n", id)
	case errors.Is(err, library.ErrItemUnavailable):
		fmt.Println("That book is already reserved. Please pick another one.")
	default:
		fmt.Fprintf(os.Stderr, "Error reserving book: %v\n", err)
	}
}

func handleMyReservations(lib *library.Library, session library.Session) {
	reservations, err := lib.ReservationsFor(session)
	if err != nil {
		fmt.Println("You must be logged in to view reservations.")
		return
	}
	if len(reservations) == 0 {
		fmt.Println("You have no active reservations.")
		return
	}
	fmt.Printf("%-4s %-30s %-20s %-20s\n", "No.", "Title", "Reserved", "Due")
	fmt.Println(strings.Repeat("-", 78))
	for i, r := range reservations {
		title := fmt.Sprintf("(book %d)", r.ItemID)
		if book, ok := lib.Item(r.ItemID); ok {
			title = book.Title
		}
		fmt.Printf("%-4d %-30s %-20s %-20s\n", i+1, truncateString(title, 30),
			r.ReservedAt.Format(library.DateLayout), r.DueAt.Format(library.DateLayout))
	}
}

func handleCancel(sc *bufio.Scanner, lib *library.Library, session library.Session) {
	reservations, err := lib.ReservationsFor(session)
	if err != nil {
		fmt.Println("You must be logged in to cancel reservations.")
		return
	}
	if len(reservations) == 0 {
		fmt.Println("You have no active reservations.")
		return
	}
	handleMyReservations(lib, session)
	n, ok := promptInt(sc, "Reservation number to cancel (0 to go back): ")
	if !ok || n == 0 {
		return
	}
	switch err := lib.CancelReservation(session, n); {
	case err == nil:
		fmt.Println("Reservation cancelled.")
	case errors.Is(err, library.ErrInvalidSelection):
		fmt.Printf("Selection must be between 1 and %d.\n", len(reservations))
	default:
		fmt.Fprintf(os.Stderr, "Error cancelling reservation: %v\n", err)
	}
}

func printBooks(books []library.Book) {
	if len(books) == 0 {
		fmt.Println("No books to show.")
		return
	}
	fmt.Printf("%-5s %-30s %-25s %-6s %-15s %s\n", "ID", "Title", "Author", "Year", "Category", "Status")
	fmt.Println(strings.Repeat("-", 95))
	for _, b := range books {
		status := "Free"
		if !b.Available {
			status = "Taken"
		}
		fmt.Printf("%-5d %-30s %-25s %-6d %-15s %s\n",
			b.ID,
			truncateString(b.Title, 30),
			truncateString(b.Author, 25),
			b.Year,
			truncateString(b.Category, 15),
			status)
	}
}

func truncateString(s string, maxLength int) string {
	if len(s) <= maxLength {
		return s
	}
	return s[:maxLength-3] + "..."
}
