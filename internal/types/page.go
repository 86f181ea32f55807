package types

// Page is the paginated list envelope.
type Page[T any] struct {
	Count    int64   `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

// DetailResponse carries a single human-readable message.
type DetailResponse struct {
	Detail string `json:"detail"`
}
