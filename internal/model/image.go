package model

import "time"

// Image is a stored, owner-scoped image with its base64 payload inline.
type Image struct {
	ID          string    `json:"id" bson:"id" gorm:"type:char(36);primaryKey"`
	UserID      string    `json:"user_id" bson:"user_id" gorm:"type:char(36);not null;index:idx_images_user_created,priority:1"`
	Filename    string    `json:"filename" bson:"filename" gorm:"size:255"`
	Caption     string    `json:"caption" bson:"caption" gorm:"type:text"`
	IsPrivate   bool      `json:"is_private" bson:"is_private" gorm:"default:false;index"`
	ImageData   string    `json:"image_data" bson:"image_data" gorm:"type:longtext;not null"`
	ContentType string    `json:"content_type" bson:"content_type" gorm:"size:32;not null"`
	FileSize    int       `json:"file_size" bson:"file_size" gorm:"not null"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at" gorm:"index:idx_images_user_created,priority:2,sort:desc"`
}

// ImageResponse is the public view of an image record.
type ImageResponse struct {
	ID          string    `json:"id"`
	Filename    string    `json:"filename"`
	Caption     string    `json:"caption"`
	IsPrivate   bool      `json:"is_private"`
	ImageData   string    `json:"image_data"`
	ContentType string    `json:"content_type"`
	FileSize    int       `json:"file_size"`
	CreatedAt   time.Time `json:"created_at"`
}

// ToResponse drops the owner id.
func (i *Image) ToResponse() ImageResponse {
	return ImageResponse{
		ID:          i.ID,
		Filename:    i.Filename,
		Caption:     i.Caption,
		IsPrivate:   i.IsPrivate,
		ImageData:   i.ImageData,
		ContentType: i.ContentType,
		FileSize:    i.FileSize,
		CreatedAt:   i.CreatedAt,
	}
}
