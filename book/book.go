package book

/* Sobre pacotes
 *
 * Os pacotes devem fornecer algo e não conter algo (ex: modelos, utilitários, auxiliares).
 * O pacote book fornece o catálogo: entidade, regras de validação e o caso de uso.
 */

// Book is a catalog entry. It carries no tags: the web and storage layers have their own representations.
type Book struct {
	ID              int64
	Title           string
	Author          string
	Publisher       string
	PublicationYear string
	Cover           string
	Description     string
	Price           string
}
