package main

import (
	"fmt"
	"os"
	"strings"
)

// Starter catalog in books.txt format: title|author|year|category.
var sampleBooks = []string{
	"Dune|Frank Herbert|1965|Science Fiction",
	"1984|George Orwell|1949|Dystopia",
	"Animal Farm|George Orwell|1945|Satire",
	"The Hobbit|J.R.R. Tolkien|1937|Fantasy",
	"The Fellowship of the Ring|J.R.R. Tolkien|1954|Fantasy",
	"Romeo and Juliet|William Shakespeare|1597|Drama",
	"The Art of War|Sun Tzu|1910|Philosophy",
	"The Three Musketeers|Alexandre Dumas|1844|Adventure",
	"Crime and Punishment|Fyodor Dostoevsky|1866|Classic",
	"The Master and Margarita|Mikhail Bulgakov|1967|Classic",
}

func main() {
	const path = "books.txt"

	if _, err := os.Stat(path); err == nil {
		fmt.Fprintf(os.Stderr, "%s already exists, refusing to overwrite\n", path)
		os.Exit(1)
	}

	content := strings.Join(sampleBooks, "\n") + "\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", path, err)
		os.Exit(1)
	}

	fmt.Printf("Wrote %d books to %s\n", len(sampleBooks), path)
}
