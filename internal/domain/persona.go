package domain

// Persona is the fixed identity the assistant speaks as. Biography is the
// concatenated text of the persona's documents, assembled once at startup
// and read-only for the life of the process.
type Persona struct {
	Name      string
	Biography string
}
