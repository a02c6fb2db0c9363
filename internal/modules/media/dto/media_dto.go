package dto

type UploadMediaResponse struct {
	ID       string `json:"id"`
	FileURL  string `json:"url"`
	FileType string `json:"contentType"`
}
