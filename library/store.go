package library

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Fixed file names inside the data directory.
const (
	booksFile        = "books.txt"
	usersFile        = "users.txt"
	reservationsFile = "reservations.txt"
)

// DateLayout is the timestamp format used in reservations.txt.
const DateLayout = "2006-01-02 15:04:05"

// Store reads and writes the three flat files backing a Library. Records are
// pipe-delimited lines, except users.txt which is whitespace-separated.
// Writes always rewrite the whole file; there is no incremental append.
type Store struct {
	dir string
}

// NewStore returns a Store rooted at dir, creating the directory if needed.
// An empty dir means the current working directory.
func NewStore(dir string) (*Store, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

func (s *Store) path(name string) string { return filepath.Join(s.dir, name) }

// open opens a data file for reading. A missing file is not an error: it is
// created empty and a nil file is returned, meaning "no records".
func (s *Store) open(name string) (*os.File, error) {
	f, err := os.Open(s.path(name))
	if os.IsNotExist(err) {
		created, cerr := os.Create(s.path(name))
		if cerr != nil {
			return nil, fmt.Errorf("create %s: %w", name, cerr)
		}
		created.Close()
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", name, err)
	}
	return f, nil
}

func (s *Store) write(name, content string) error {
	if err := os.WriteFile(s.path(name), []byte(content), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}

// LoadBooks parses books.txt. Each record is `title|author|year|category`,
// category running to end of line. Rows with the wrong field count or a
// non-numeric year are skipped. Returned books have no ID yet; the Library
// assigns IDs in load order.
func (s *Store) LoadBooks() ([]Book, error) {
	f, err := s.open(booksFile)
	if err != nil || f == nil {
		return nil, err
	}
	defer f.Close()

	var books []Book
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := sc.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		parts := strings.SplitN(line, "|", 4)
		if len(parts) != 4 {
			continue
		}
		year, err := strconv.Atoi(strings.TrimSpace(parts[2]))
		if err != nil {
			continue
		}
		books = append(books, Book{
			Title:     parts[0],
			Author:    parts[1],
			Year:      year,
			Category:  parts[3],
			Available: true,
		})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", booksFile, err)
	}
	return books, nil
}

// LoadUsers parses users.txt: one `name password` pair per line. Names and
// passwords containing whitespace are not supported by the format.
func (s *Store) LoadUsers() ([]User, error) {
	f, err := s.open(usersFile)
	if err != nil || f == nil {
		return nil, err
	}
	defer f.Close()

	var users []User
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) < 2 {
			continue
		}
		users = append(users, User{Name: fields[0], Password: fields[1]})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", usersFile, err)
	}
	return users, nil
}

// SaveUsers rewrites users.txt in full.
func (s *Store) SaveUsers(users []User) error {
	var b strings.Builder
	for _, u := range users {
		fmt.Fprintf(&b, "%s %s\n", u.Name, u.Password)
	}
	return s.write(usersFile, b.String())
}

// ReservationRow is one parsed reservations.txt record before it has been
// resolved against the catalog and accounts.
type ReservationRow struct {
	UserName   string
	Title      string
	Author     string
	Category   string
	Available  bool
	ReservedAt time.Time
	DueAt      time.Time
}

// LoadReservations parses reservations.txt. Each record is
// `userName|title|author|category|0or1|reservationDate|returnDate`.
// Rows with the wrong field count or unparseable dates are skipped.
func (s *Store) LoadReservations() ([]ReservationRow, error) {
	f, err := s.open(reservationsFile)
	if err != nil || f == nil {
		return nil, err
	}
	defer f.Close()

	var rows []ReservationRow
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := sc.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		parts := strings.Split(line, "|")
		if len(parts) != 7 {
			continue
		}
		reservedAt, err := time.ParseInLocation(DateLayout, parts[5], time.Local)
		if err != nil {
			continue
		}
		dueAt, err := time.ParseInLocation(DateLayout, parts[6], time.Local)
		if err != nil {
			continue
		}
		rows = append(rows, ReservationRow{
			UserName:   parts[0],
			Title:      parts[1],
			Author:     parts[2],
			Category:   parts[3],
			Available:  parts[4] != "0",
			ReservedAt: reservedAt,
			DueAt:      dueAt,
		})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", reservationsFile, err)
	}
	return rows, nil
}

// SaveReservations rewrites reservations.txt in full. Each row carries the
// item's descriptive fields and its availability at save time, so the file
// can be read back without the catalog being identical. Reservations whose
// item cannot be found are dropped from the file.
func (s *Store) SaveReservations(reservations []Reservation, items []Book) error {
	byID := make(map[int]Book, len(items))
	for _, it := range items {
		byID[it.ID] = it
	}

	var b strings.Builder
	for _, r := range reservations {
		item, ok := byID[r.ItemID]
		if !ok {
			continue
		}
		avail := 0
		if item.Available {
			avail = 1
		}
		fmt.Fprintf(&b, "%s|%s|%s|%s|%d|%s|%s\n",
			r.UserName, item.Title, item.Author, item.Category, avail,
			r.ReservedAt.Format(DateLayout), r.DueAt.Format(DateLayout))
	}
	return s.write(reservationsFile, b.String())
}
