package main

import (
	"context"
	"fmt"

	"github.com/marcelsud/book-catalog/book"
	"github.com/marcelsud/book-catalog/config"
	"github.com/marcelsud/book-catalog/internal/store"
)

/*
CLI - Exemplo de uso do catálogo fora do HTTP

Usa o repositório escolhido em STORE_DRIVER (memory, sqlite ou postgres),
com o cache Redis na frente quando REDIS_ADDR está definido.

Execute com:
  go run cmd/cli/main.go
*/

func main() {
	// 1. Carregar configuração
	cfg, err := config.GetConfig()
	if err != nil {
		fmt.Printf("❌ Error loading config: %v\n", err)
		return
	}

	ctx := context.Background()

	// 2. Abrir o repositório
	repo, err := store.Open(ctx, cfg)
	if err != nil {
		fmt.Printf("❌ Error opening %s store: %v\n", cfg.StoreDriver, err)
		return
	}
	defer repo.Close(ctx)
	fmt.Printf("✅ Using %s store\n", cfg.StoreDriver)

	// 3. Criar service
	s := book.NewService(repo)

	// 4. Criar um livro de exemplo
	fmt.Println("\n📝 Creating a new book...")
	newBook, err := s.Create(ctx, book.Book{
		Title:           "Neuromancer",
		Author:          "William Gibson",
		Publisher:       "Ace",
		PublicationYear: "1984",
		Price:           "59.90",
	})
	if err != nil {
		fmt.Printf("❌ Error creating book: %v\n", err)
		return
	}
	fmt.Println("✅ Book created successfully!")
	fmt.Printf("   ID:     %d\n", newBook.ID)
	fmt.Printf("   Title:  %s\n", newBook.Title)
	fmt.Printf("   Author: %s\n", newBook.Author)

	// 5. O mesmo título de novo é recusado
	if _, err := s.Create(ctx, book.Book{Title: "Neuromancer", Author: "Someone Else"}); err != nil {
		fmt.Printf("\n🚫 Duplicate rejected: %v\n", err)
	}

	// 6. Listar todos os livros
	fmt.Println("\n📚 All books:")
	printBooks(ctx, s)

	// 7. Buscar, atualizar e deletar
	fmt.Printf("\n🔍 Fetching book with ID %d...\n", newBook.ID)
	retrieved, err := s.Get(ctx, newBook.ID)
	if err != nil {
		fmt.Printf("❌ Error retrieving book: %v\n", err)
		return
	}
	fmt.Printf("✅ Found: %s by %s\n", retrieved.Title, retrieved.Author)

	fmt.Printf("\n✏️  Updating book %d...\n", retrieved.ID)
	retrieved.Price = "49.90"
	updated, err := s.Update(ctx, retrieved.ID, retrieved)
	if err != nil {
		fmt.Printf("❌ Error updating book: %v\n", err)
		return
	}
	fmt.Printf("✅ Book updated! New price: %s\n", updated.Price)

	fmt.Printf("\n🗑️  Deleting book %d...\n", retrieved.ID)
	if err := s.Delete(ctx, retrieved.ID); err != nil {
		fmt.Printf("❌ Error deleting book: %v\n", err)
		return
	}
	fmt.Println("✅ Book deleted!")

	// 8. Listar novamente
	fmt.Println("\n📚 Books after deletion:")
	printBooks(ctx, s)

	fmt.Println("\n✅ CLI completed successfully!")
}

func printBooks(ctx context.Context, s book.UseCase) {
	books, err := s.List(ctx)
	if err != nil {
		fmt.Printf("❌ Error listing books: %v\n", err)
		return
	}
	if len(books) == 0 {
		fmt.Println("   (no books yet)")
		return
	}
	for _, b := range books {
		fmt.Printf("   [%d] %s by %s\n", b.ID, b.Title, b.Author)
	}
}
