package library

import "time"

// Book represents metadata and current availability of one catalog item.
// IDs are assigned by the Library when the catalog is loaded, start at 1,
// and are never reused within a process.
type Book struct {
	ID        int    `json:"id"`
	Title     string `json:"title"`
	Author    string `json:"author"`
	Year      int    `json:"year"`
	Category  string `json:"category"`
	Available bool   `json:"available"`
}

// User is a registered account. The name doubles as the identifier; the
// password is stored as-is because that is the users.txt format.
type User struct {
	Name     string `json:"name"`
	Password string `json:"-"` // Don't serialize passwords
}

// Reservation links an account to a catalog item. The links are stable
// identifiers rather than pointers, so reloading the collections cannot
// leave a reservation dangling.
type Reservation struct {
	UserName   string    `json:"user_name"`
	ItemID     int       `json:"item_id"`
	ReservedAt time.Time `json:"reserved_at"`
	DueAt      time.Time `json:"due_at"`
}
