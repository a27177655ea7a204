package models

// ErrorResponse représente une réponse d'erreur
type ErrorResponse struct {
	Success bool     `json:"success"`
	Message string   `json:"message"`
	Error   string   `json:"error,omitempty"`
	Errors  []string `json:"errors,omitempty"`
	Stack   string   `json:"stack,omitempty"`
}

// SuccessResponse représente une réponse de succès générique
type SuccessResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// ListResponse représente une liste de ressources
type ListResponse struct {
	Success bool        `json:"success"`
	Count   int         `json:"count"`
	Data    interface{} `json:"data"`
}

// PaginatedResponse représente une liste paginée
type PaginatedResponse struct {
	Success    bool        `json:"success"`
	Count      int         `json:"count"`
	Pagination Pagination  `json:"pagination"`
	Data       interface{} `json:"data"`
}

// PageRef désigne une page voisine
type PageRef struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

// Pagination contient les pages suivante/précédente quand elles existent
type Pagination struct {
	Next *PageRef `json:"next,omitempty"`
	Prev *PageRef `json:"prev,omitempty"`
}

// NewPagination calcule les pages voisines à partir du total
func NewPagination(page, limit int, total int64) Pagination {
	var p Pagination
	startIndex := (page - 1) * limit
	endIndex := page * limit
	if int64(endIndex) < total {
		p.Next = &PageRef{Page: page + 1, Limit: limit}
	}
	if startIndex > 0 {
		p.Prev = &PageRef{Page: page - 1, Limit: limit}
	}
	return p
}
