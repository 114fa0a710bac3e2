package model

import "time"

// ShortLink представляет запись алиаса в таблице shortlink.
type ShortLink struct {
	Alias     string    `json:"alias"`
	URL       string    `json:"url"`
	Count     uint64    `json:"count"`
	CreatedAt time.Time `json:"createdAt"`
}

// Clone возвращает независимую копию записи.
func (l *ShortLink) Clone() *ShortLink {
	c := *l
	return &c
}
