package models

// Document is one line of the documents index.
type Document struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}
