package library

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestLibrary builds a Library over a temp directory whose books.txt
// holds the given records, then runs the full startup load sequence.
func newTestLibrary(t *testing.T, bookLines ...string) *Library {
	t.Helper()
	dir := t.TempDir()
	if len(bookLines) > 0 {
		content := strings.Join(bookLines, "\n") + "\n"
		require.NoError(t, os.WriteFile(filepath.Join(dir, "books.txt"), []byte(content), 0o644))
	}
	lib, err := New(dir)
	require.NoError(t, err)
	require.NoError(t, lib.LoadUsers())
	require.NoError(t, lib.LoadReservations())
	return lib
}

func loginAs(t *testing.T, lib *Library, name, password string) Session {
	t.Helper()
	require.NoError(t, lib.Register(name, password))
	session, err := lib.Login(name, password)
	require.NoError(t, err)
	return session
}

func TestCatalogIDsUniqueAndOrdered(t *testing.T) {
	lib := newTestLibrary(t,
		"Dune|Frank Herbert|1965|Science Fiction",
		"1984|George Orwell|1949|Dystopia",
		"The Hobbit|J.R.R. Tolkien|1937|Fantasy")

	items := lib.Items()
	require.Len(t, items, 3)
	for i, b := range items {
		assert.Equal(t, i+1, b.ID)
		assert.True(t, b.Available)
	}
}

func TestEmptyCatalog(t *testing.T) {
	lib := newTestLibrary(t)
	assert.Empty(t, lib.Items())
	assert.Empty(t, lib.AvailableItems())
}

func TestFilterByCategoryIsCaseInsensitiveExactMatch(t *testing.T) {
	lib := newTestLibrary(t,
		"Dune|Frank Herbert|1965|Science Fiction",
		"1984|George Orwell|1949|Dystopia",
		"Neuromancer|William Gibson|1984|science fiction")

	matches := lib.FilterByCategory("SCIENCE FICTION")
	require.Len(t, matches, 2)
	assert.Equal(t, "Dune", matches[0].Title)
	assert.Equal(t, "Neuromancer", matches[1].Title)

	// Exact match, not substring.
	assert.Empty(t, lib.FilterByCategory("Science"))
	// Empty result is a normal outcome.
	assert.Empty(t, lib.FilterByCategory("Cooking"))
}

func TestReserveAndCancelRoundTrip(t *testing.T) {
	lib := newTestLibrary(t, "Dune|Frank Herbert|1965|Science Fiction")
	alice := loginAs(t, lib, "alice", "pw")

	res, err := lib.Reserve(alice, 1)
	require.NoError(t, err)
	assert.Equal(t, "alice", res.UserName)
	assert.Equal(t, 1, res.ItemID)

	book, ok := lib.Item(1)
	require.True(t, ok)
	assert.False(t, book.Available)

	mine, err := lib.ReservationsFor(alice)
	require.NoError(t, err)
	require.Len(t, mine, 1)

	// Second reservation of the same item must fail and create nothing.
	_, err = lib.Reserve(alice, 1)
	assert.ErrorIs(t, err, ErrItemUnavailable)
	mine, err = lib.ReservationsFor(alice)
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	require.NoError(t, lib.CancelReservation(alice, 1))
	book, _ = lib.Item(1)
	assert.True(t, book.Available)
	mine, err = lib.ReservationsFor(alice)
	require.NoError(t, err)
	assert.Empty(t, mine)
}

func TestReserveRequiresSession(t *testing.T) {
	lib := newTestLibrary(t, "Dune|Frank Herbert|1965|Science Fiction")

	_, err := lib.Reserve(Session{}, 1)
	assert.ErrorIs(t, err, ErrNotLoggedIn)

	_, err = lib.ReservationsFor(Session{})
	assert.ErrorIs(t, err, ErrNotLoggedIn)

	assert.ErrorIs(t, lib.CancelReservation(Session{}, 1), ErrNotLoggedIn)

	// No state changed.
	book, _ := lib.Item(1)
	assert.True(t, book.Available)
}

func TestReserveUnknownItem(t *testing.T) {
	lib := newTestLibrary(t, "Dune|Frank Herbert|1965|Science Fiction")
	alice := loginAs(t, lib, "alice", "pw")

	_, err := lib.Reserve(alice, 99)
	assert.ErrorIs(t, err, ErrItemNotFound)
}

func TestCancelReservationSelectionBounds(t *testing.T) {
	lib := newTestLibrary(t, "Dune|Frank Herbert|1965|Science Fiction")
	alice := loginAs(t, lib, "alice", "pw")
	_, err := lib.Reserve(alice, 1)
	require.NoError(t, err)

	for _, n := range []int{0, -1, 2} {
		assert.ErrorIs(t, lib.CancelReservation(alice, n), ErrInvalidSelection)
	}

	// Nothing changed.
	book, _ := lib.Item(1)
	assert.False(t, book.Available)
	mine, err := lib.ReservationsFor(alice)
	require.NoError(t, err)
	assert.Len(t, mine, 1)
}

func TestCancelIndexesOwnReservationsNotGlobalList(t *testing.T) {
	lib := newTestLibrary(t,
		"Dune|Frank Herbert|1965|Science Fiction",
		"1984|George Orwell|1949|Dystopia",
		"The Hobbit|J.R.R. Tolkien|1937|Fantasy")
	alice := loginAs(t, lib, "alice", "pw")
	bob := loginAs(t, lib, "bob", "pw")

	_, err := lib.Reserve(bob, 1)
	require.NoError(t, err)
	_, err = lib.Reserve(alice, 2)
	require.NoError(t, err)
	_, err = lib.Reserve(alice, 3)
	require.NoError(t, err)

	// Alice's list is [1984, The Hobbit]; cancelling her #1 must release
	// 1984, not Bob's globally-first reservation of Dune.
	require.NoError(t, lib.CancelReservation(alice, 1))

	dune, _ := lib.Item(1)
	orwell, _ := lib.Item(2)
	hobbit, _ := lib.Item(3)
	assert.False(t, dune.Available)
	assert.True(t, orwell.Available)
	assert.False(t, hobbit.Available)

	bobs, err := lib.ReservationsFor(bob)
	require.NoError(t, err)
	assert.Len(t, bobs, 1)
}

func TestLoginFailureDoesNotLeakWhichPartWasWrong(t *testing.T) {
	lib := newTestLibrary(t)
	require.NoError(t, lib.Register("alice", "secret"))

	_, wrongPassword := lib.Login("alice", "nope")
	_, unknownName := lib.Login("nobody", "secret")

	assert.ErrorIs(t, wrongPassword, ErrInvalidCredentials)
	assert.ErrorIs(t, unknownName, ErrInvalidCredentials)
	assert.Equal(t, wrongPassword, unknownName)
}

func TestDuplicateNamesResolveByFirstMatchingRecord(t *testing.T) {
	lib := newTestLibrary(t)
	require.NoError(t, lib.Register("bob", "pw1"))
	require.NoError(t, lib.Register("bob", "pw2"))

	// Login matches on name AND password, scanning insertion order, so both
	// records are reachable with their own passwords.
	s1, err := lib.Login("bob", "pw1")
	require.NoError(t, err)
	assert.Equal(t, "bob", s1.Name)

	s2, err := lib.Login("bob", "pw2")
	require.NoError(t, err)
	assert.Equal(t, "bob", s2.Name)
}

func TestDueDateIsTenDaysAfterReservation(t *testing.T) {
	lib := newTestLibrary(t, "Dune|Frank Herbert|1965|Science Fiction")
	fixed := time.Date(2026, 8, 30, 12, 0, 0, 0, time.Local)
	lib.now = func() time.Time { return fixed }
	alice := loginAs(t, lib, "alice", "pw")

	res, err := lib.Reserve(alice, 1)
	require.NoError(t, err)
	assert.Equal(t, fixed, res.ReservedAt)
	assert.Equal(t, fixed.Add(10*24*time.Hour), res.DueAt)
}

func TestPersistedReservationsReloadToSameState(t *testing.T) {
	dir := t.TempDir()
	books := "Dune|Frank Herbert|1965|Science Fiction\n1984|George Orwell|1949|Dystopia\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "books.txt"), []byte(books), 0o644))

	lib, err := New(dir)
	require.NoError(t, err)
	require.NoError(t, lib.LoadUsers())
	require.NoError(t, lib.LoadReservations())
	alice := loginAs(t, lib, "alice", "pw")
	_, err = lib.Reserve(alice, 2)
	require.NoError(t, err)

	// A fresh Library over the same directory reconstructs the same
	// (user, item, availability) state.
	reloaded, err := New(dir)
	require.NoError(t, err)
	require.NoError(t, reloaded.LoadUsers())
	require.NoError(t, reloaded.LoadReservations())

	all := reloaded.Reservations()
	require.Len(t, all, 1)
	assert.Equal(t, "alice", all[0].UserName)
	assert.Equal(t, 2, all[0].ItemID)

	dune, _ := reloaded.Item(1)
	orwell, _ := reloaded.Item(2)
	assert.True(t, dune.Available)
	assert.False(t, orwell.Available)

	// Cancelling in the reloaded instance round-trips too.
	session, err := reloaded.Login("alice", "pw")
	require.NoError(t, err)
	require.NoError(t, reloaded.CancelReservation(session, 1))

	again, err := New(dir)
	require.NoError(t, err)
	require.NoError(t, again.LoadUsers())
	require.NoError(t, again.LoadReservations())
	assert.Empty(t, again.Reservations())
	orwell, _ = again.Item(2)
	assert.True(t, orwell.Available)
}

func TestOrphanReservationRowCreatesPlaceholderAccount(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "books.txt"),
		[]byte("Dune|Frank Herbert|1965|Science Fiction\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "reservations.txt"),
		[]byte("ghost|Dune|Frank Herbert|Science Fiction|0|2026-08-30 14:30:00|2026-09-09 14:30:00\n"), 0o644))

	lib, err := New(dir)
	require.NoError(t, err)
	require.NoError(t, lib.LoadUsers())
	require.NoError(t, lib.LoadReservations())

	require.NotNil(t, lib.findUser("ghost"))
	assert.Equal(t, "", lib.findUser("ghost").Password)

	require.Len(t, lib.Reservations(), 1)
	dune, _ := lib.Item(1)
	assert.False(t, dune.Available)
}

func TestReservationRowsResolveByTitleFirstMatch(t *testing.T) {
	dir := t.TempDir()
	books := "Collected Poems|First Author|1990|Poetry\nCollected Poems|Second Author|2001|Poetry\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "books.txt"), []byte(books), 0o644))
	// The row names the second author, but resolution is by title only.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "reservations.txt"),
		[]byte("alice|Collected Poems|Second Author|Poetry|0|2026-08-30 14:30:00|2026-09-09 14:30:00\n"), 0o644))

	lib, err := New(dir)
	require.NoError(t, err)
	require.NoError(t, lib.LoadUsers())
	require.NoError(t, lib.LoadReservations())

	all := lib.Reservations()
	require.Len(t, all, 1)
	assert.Equal(t, 1, all[0].ItemID)

	first, _ := lib.Item(1)
	second, _ := lib.Item(2)
	assert.False(t, first.Available)
	assert.True(t, second.Available)
}

func TestReservationRowsWithUnknownTitleAreDropped(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "books.txt"),
		[]byte("Dune|Frank Herbert|1965|Science Fiction\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "reservations.txt"),
		[]byte("alice|Gone Book|Nobody|None|0|2026-08-30 14:30:00|2026-09-09 14:30:00\n"), 0o644))

	lib, err := New(dir)
	require.NoError(t, err)
	require.NoError(t, lib.LoadUsers())
	require.NoError(t, lib.LoadReservations())

	assert.Empty(t, lib.Reservations())
	dune, _ := lib.Item(1)
	assert.True(t, dune.Available)
}

func TestRegisterPersistsAccountsImmediately(t *testing.T) {
	dir := t.TempDir()
	lib, err := New(dir)
	require.NoError(t, err)
	require.NoError(t, lib.LoadUsers())
	require.NoError(t, lib.Register("alice", "pw"))

	raw, err := os.ReadFile(filepath.Join(dir, "users.txt"))
	require.NoError(t, err)
	assert.Equal(t, "alice pw\n", string(raw))
}
