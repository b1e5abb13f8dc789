package news

// Article is one news entry as served by the remote API.
type Article struct {
	Feed  Feed  `json:"feed"`
	Story Story `json:"story"`
}

type Feed struct {
	Title string `json:"title"`
}

type Story struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	ImageURL    string `json:"imageUrl,omitempty"`
	Link        string `json:"link,omitempty"`
}
