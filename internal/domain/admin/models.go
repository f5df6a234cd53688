package admin

import (
	"time"
)

// Admin is the operator account bound to one enforcement center.
type Admin struct {
	ID         int64     `json:"id"`
	CenterID   string    `json:"center_id"`
	CenterName string    `json:"center_name"`
	Lat        float64   `json:"lat"`
	Lng        float64   `json:"lng"`
	CreatedAt  time.Time `json:"created_at"`
}

type RegisterPayload struct {
	CenterID   string   `json:"center_id" binding:"required,max=64"`
	Password   string   `json:"password" binding:"required,min=8,max=72"`
	Lat        *float64 `json:"lat" binding:"required"`
	Lng        *float64 `json:"lng" binding:"required"`
	CenterName string   `json:"center_name" binding:"required,max=128"`
}

type LoginPayload struct {
	CenterID string `json:"center_id" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type Session struct {
	Token     string    `json:"token"`
	CenterID  string    `json:"center_id"`
	ExpiresAt time.Time `json:"expires_at"`
}
