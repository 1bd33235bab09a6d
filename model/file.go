package model

type File struct {
	ID      uint  `gorm:"primaryKey;autoIncrement;index" json:"id"`
	OwnerID int64 `gorm:"index;not null" json:"-"`

	// Object key inside the bucket. Namespaced by owner id and suffixed
	// with a random id so two users can upload files with the same name
	StorageKey string `gorm:"not null" json:"storage_key"`

	// File name as the user sent it (or the name of the HTML entry
	// picked out of a ZIP archive)
	OriginalName string `json:"name"`

	// Durable download URL returned by the storage client
	StorageURL string `json:"storage_url"`

	// Shortened alias, or a copy of StorageURL when shortening failed.
	// Shortening is best-effort so this is always safe to hand out
	ShortURL string `json:"short_url"`

	Size      int64 `json:"size"`
	CreatedAt int64 `gorm:"not null" json:"created_at"`
}
