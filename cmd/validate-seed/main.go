package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/marcelsud/book-catalog/seed"
)

/* validate-seed - Standalone CLI tool to validate a catalog seed file
 * Usage: go run cmd/validate-seed/main.go [books.yaml]
 * Exit codes: 0 = valid, 1 = invalid
 */

func main() {
	seedFile := "books.yaml"
	if len(os.Args) > 1 {
		seedFile = os.Args[1]
	}

	fmt.Printf("Validating seed file: %s\n", seedFile)
	fmt.Println(strings.Repeat("-", 50))

	loader := seed.NewLoader()
	if err := loader.Load(seedFile); err != nil {
		fmt.Fprintf(os.Stderr, "❌ VALIDATION FAILED\n\n")
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	books := loader.List()
	fmt.Printf("✓ VALIDATION PASSED\n\n")
	fmt.Printf("Loaded %d book(s):\n", len(books))

	for i, b := range books {
		fmt.Printf("\n%d. %s\n", i+1, b.Title)
		fmt.Printf("   Author:    %s\n", b.Author)
		if b.Publisher != "" {
			fmt.Printf("   Publisher: %s\n", b.Publisher)
		}
		if b.PublicationYear != "" {
			fmt.Printf("   Year:      %s\n", b.PublicationYear)
		}
		if b.Price != "" {
			fmt.Printf("   Price:     %s\n", b.Price)
		}
	}

	fmt.Printf("\n✓ All books are valid!\n")
}
