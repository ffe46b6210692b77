package library

import (
	"strings"
	"time"
)

// loanPeriod is how long a reservation holds an item before it is due back.
const loanPeriod = 10 * 24 * time.Hour

// Session identifies the logged-in account. The zero value means nobody is
// logged in; the driver holds at most one at a time and discards it on
// logout.
type Session struct {
	Name string
}

func (s Session) active() bool { return s.Name != "" }

// Library owns the catalog, the accounts, and the reservation list, and
// enforces the reservation/availability invariants. It is single-threaded
// by design: the interactive driver calls it from one goroutine and every
// operation runs to completion.
type Library struct {
	store        *Store
	items        []Book
	users        []User
	reservations []Reservation
	nextID       int

	now func() time.Time // stubbed in tests
}

// New creates a Library backed by the flat files under dir and loads the
// catalog. Accounts and reservations are loaded separately via LoadUsers
// and LoadReservations, mirroring the driver's startup sequence.
func New(dir string) (*Library, error) {
	store, err := NewStore(dir)
	if err != nil {
		return nil, err
	}
	lib := &Library{store: store, nextID: 1, now: time.Now}

	books, err := store.LoadBooks()
	if err != nil {
		return nil, err
	}
	for _, b := range books {
		b.ID = lib.nextID
		lib.nextID++
		lib.items = append(lib.items, b)
	}
	return lib, nil
}

// LoadUsers reads the accounts file into memory, replacing any accounts
// already held.
func (l *Library) LoadUsers() error {
	users, err := l.store.LoadUsers()
	if err != nil {
		return err
	}
	l.users = users
	return nil
}

// LoadReservations reads the reservations file and resolves each row against
// the accounts and the catalog. An unknown user name gets a placeholder
// account with an empty password. Items are matched by title only and the
// first match wins; rows whose title matches nothing are dropped. A stored 0
// flag transitions the matched item to unavailable.
func (l *Library) LoadReservations() error {
	rows, err := l.store.LoadReservations()
	if err != nil {
		return err
	}
	for _, row := range rows {
		if l.findUser(row.UserName) == nil {
			l.users = append(l.users, User{Name: row.UserName})
		}
		item := l.findItemByTitle(row.Title)
		if item == nil {
			continue
		}
		if !row.Available {
			item.Available = false
		}
		l.reservations = append(l.reservations, Reservation{
			UserName:   row.UserName,
			ItemID:     item.ID,
			ReservedAt: row.ReservedAt,
			DueAt:      row.DueAt,
		})
	}
	return nil
}

// Save rewrites the accounts and reservations files. The driver calls it on
// exit; mutating operations persist their own changes as they happen.
func (l *Library) Save() error {
	if err := l.store.SaveUsers(l.users); err != nil {
		return err
	}
	return l.store.SaveReservations(l.reservations, l.items)
}

// ------------------ Catalog queries ------------------

// Items returns the full catalog in load order.
func (l *Library) Items() []Book {
	out := make([]Book, len(l.items))
	copy(out, l.items)
	return out
}

// AvailableItems returns the items that can currently be reserved.
func (l *Library) AvailableItems() []Book {
	var out []Book
	for _, b := range l.items {
		if b.Available {
			out = append(out, b)
		}
	}
	return out
}

// FilterByCategory returns items whose category equals query, ignoring case.
// An empty result is a normal outcome, not a failure.
func (l *Library) FilterByCategory(query string) []Book {
	var out []Book
	for _, b := range l.items {
		if strings.EqualFold(b.Category, query) {
			out = append(out, b)
		}
	}
	return out
}

// Item returns the catalog item with the given ID.
func (l *Library) Item(id int) (Book, bool) {
	if item := l.findItem(id); item != nil {
		return *item, true
	}
	return Book{}, false
}

// ------------------ Accounts ------------------

// Register appends a new account and rewrites the accounts file. Duplicate
// names are not rejected; Login resolves a name to the earliest record whose
// password also matches.
func (l *Library) Register(name, password string) error {
	l.users = append(l.users, User{Name: name, Password: password})
	return l.store.SaveUsers(l.users)
}

// Login scans the accounts in insertion order for an exact name and password
// match and returns a session for the first one found. The error carries no
// detail about which part was wrong.
func (l *Library) Login(name, password string) (Session, error) {
	for _, u := range l.users {
		if u.Name == name && u.Password == password {
			return Session{Name: u.Name}, nil
		}
	}
	return Session{}, ErrInvalidCredentials
}

// ------------------ Reservations ------------------

// Reserve places a reservation on the item for the session's account, marks
// the item unavailable, and rewrites the reservations file. The due date is
// ten days after the reservation time.
func (l *Library) Reserve(s Session, itemID int) (Reservation, error) {
	if !s.active() {
		return Reservation{}, ErrNotLoggedIn
	}
	item := l.findItem(itemID)
	if item == nil {
		return Reservation{}, ErrItemNotFound
	}
	if !item.Available {
		return Reservation{}, ErrItemUnavailable
	}

	now := l.now()
	res := Reservation{
		UserName:   s.Name,
		ItemID:     item.ID,
		ReservedAt: now,
		DueAt:      now.Add(loanPeriod),
	}
	item.Available = false
	l.reservations = append(l.reservations, res)
	if err := l.store.SaveReservations(l.reservations, l.items); err != nil {
		return Reservation{}, err
	}
	return res, nil
}

// ReservationsFor returns the session's reservations in creation order.
func (l *Library) ReservationsFor(s Session) ([]Reservation, error) {
	if !s.active() {
		return nil, ErrNotLoggedIn
	}
	var out []Reservation
	for _, r := range l.reservations {
		if r.UserName == s.Name {
			out = append(out, r)
		}
	}
	return out, nil
}

// Reservations returns every reservation in the system.
func (l *Library) Reservations() []Reservation {
	out := make([]Reservation, len(l.reservations))
	copy(out, l.reservations)
	return out
}

// CancelReservation cancels the n-th reservation, 1-based, of the session's
// OWN reservation list — the same numbering ReservationsFor produces, not an
// index into the global collection. The item becomes available again and the
// reservations file is rewritten.
func (l *Library) CancelReservation(s Session, n int) error {
	if !s.active() {
		return ErrNotLoggedIn
	}
	count := 0
	for i, r := range l.reservations {
		if r.UserName != s.Name {
			continue
		}
		count++
		if count != n {
			continue
		}
		if item := l.findItem(r.ItemID); item != nil {
			item.Available = true
		}
		l.reservations = append(l.reservations[:i], l.reservations[i+1:]...)
		return l.store.SaveReservations(l.reservations, l.items)
	}
	return ErrInvalidSelection
}

// ------------------ Lookups ------------------

func (l *Library) findItem(id int) *Book {
	for i := range l.items {
		if l.items[i].ID == id {
			return &l.items[i]
		}
	}
	return nil
}

// findItemByTitle matches by title only; with duplicate titles the first
// catalog entry wins, matching how reservation rows have always resolved.
func (l *Library) findItemByTitle(title string) *Book {
	for i := range l.items {
		if l.items[i].Title == title {
			return &l.items[i]
		}
	}
	return nil
}

func (l *Library) findUser(name string) *User {
	for i := range l.users {
		if l.users[i].Name == name {
			return &l.users[i]
		}
	}
	return nil
}
