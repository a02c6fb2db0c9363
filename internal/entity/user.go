package entity

import "github.com/Marco3041/linkedin-clone/internal/docstore"

type User struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Email       string   `json:"email"`
	PhotoURL    string   `json:"photoUrl"`
	Bio         string   `json:"bio"`
	Skills      string   `json:"skills"`
	Experience  string   `json:"experience"`
	Connections []string `json:"connections"`
}

func UserFromDocument(doc docstore.Document) User {
	return User{
		ID:          doc.ID,
		Name:        docstore.String(doc.Data, "name"),
		Email:       docstore.String(doc.Data, "email"),
		PhotoURL:    docstore.String(doc.Data, "photoUrl"),
		Bio:         docstore.String(doc.Data, "bio"),
		Skills:      docstore.String(doc.Data, "skills"),
		Experience:  docstore.String(doc.Data, "experience"),
		Connections: docstore.Strings(doc.Data, FieldConnections),
	}
}

// Credential is the local sign-in record stored at credentials/{email}.
type Credential struct {
	UID          string
	Email        string
	PasswordHash string
}

func CredentialFromDocument(doc docstore.Document) Credential {
	return Credential{
		UID:          docstore.String(doc.Data, "uid"),
		Email:        doc.ID,
		PasswordHash: docstore.String(doc.Data, "passwordHash"),
	}
}
